package reqctx

import (
	"context"
	"time"
)

// Identity headers exchanged between the domain service and LFD.
const (
	HeaderUserID    = "X-User-ID"
	HeaderAdvisorID = "X-Advisor-ID"
	HeaderRequestID = "X-Request-ID"
	HeaderTimestamp = "X-Timestamp"
)

// RequiredHeaders must be present and non-blank on every internal call.
var RequiredHeaders = []string{HeaderUserID, HeaderAdvisorID, HeaderRequestID}

// RequestContext identifies the caller of one internal request.
type RequestContext struct {
	UserID    string    `json:"userId"`
	AdvisorID string    `json:"advisorId"`
	RequestID string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
	ClientIP  string    `json:"clientIp"`
}

type ctxKey struct{}

func WithContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

func FromContext(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(ctxKey{}).(RequestContext)
	return rc, ok
}

// RequestID returns the request id carried by ctx, or "" outside a request.
func RequestID(ctx context.Context) string {
	rc, _ := FromContext(ctx)
	return rc.RequestID
}
