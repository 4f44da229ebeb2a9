package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{NotFound("account", "acc-9"), http.StatusNotFound},
		{Unauthorized("missing header"), http.StatusUnauthorized},
		{UpstreamUnavailable("account acc-1", 503, nil), http.StatusBadGateway},
		{Unavailable("busy", nil), http.StatusServiceUnavailable},
		{Database("parse", nil), http.StatusInternalServerError},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestFrom_UnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("%w: can't load holdings", NotFound("account", "acc-9"))

	e := From(wrapped)
	assert.Equal(t, KindNotFound, e.Kind)
	assert.Equal(t, "acc-9", e.Resource)
	assert.True(t, Is(wrapped, KindNotFound))

	internal := From(errors.New("nil pointer"))
	assert.Equal(t, KindInternal, internal.Kind)
	assert.Equal(t, "An unexpected error occurred", internal.PublicMessage())
}

func TestUpstreamUnavailable_Message(t *testing.T) {
	e := UpstreamUnavailable("advisor advisor-001", 502, errors.New("bad gateway"))
	assert.Equal(t, "upstream service unavailable for advisor advisor-001 (status 502)", e.Message)
	assert.ErrorContains(t, e, "bad gateway")
}
