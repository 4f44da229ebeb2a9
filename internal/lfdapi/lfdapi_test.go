package lfdapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/metrics"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/STTM-NSU/advisor-workspace/internal/reqctx"
	"github.com/STTM-NSU/advisor-workspace/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeServices struct {
	mu       sync.Mutex
	invoked  int
	contexts []reqctx.RequestContext

	GetAdvisorClientsFunc   func(ctx context.Context, advisorID string, pageOffset, pageSize int) (*model.AdvisorClientsResponse, error)
	SearchClientsFunc       func(ctx context.Context, req model.ClientSearchRequest) (*model.ClientSearchResponse, error)
	GetAccountHoldingsFunc  func(ctx context.Context, req model.HoldingsRequest) (*model.AccountHoldingsResponse, error)
	GetPortfolioSummaryFunc func(ctx context.Context, accountID string) (*model.PortfolioSummaryResponse, error)
	GetAccountFunc          func(ctx context.Context, accountID string) (*model.Account, error)
}

func (f *fakeServices) record(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoked++
	rc, _ := reqctx.FromContext(ctx)
	f.contexts = append(f.contexts, rc)
}

func (f *fakeServices) GetAdvisorClients(ctx context.Context, advisorID string, pageOffset, pageSize int) (*model.AdvisorClientsResponse, error) {
	f.record(ctx)
	if f.GetAdvisorClientsFunc != nil {
		return f.GetAdvisorClientsFunc(ctx, advisorID, pageOffset, pageSize)
	}
	return &model.AdvisorClientsResponse{Clients: []model.Client{}, PageOffset: pageOffset, PageSize: pageSize}, nil
}

func (f *fakeServices) SearchClients(ctx context.Context, req model.ClientSearchRequest) (*model.ClientSearchResponse, error) {
	f.record(ctx)
	if f.SearchClientsFunc != nil {
		return f.SearchClientsFunc(ctx, req)
	}
	return &model.ClientSearchResponse{Clients: []model.Client{}}, nil
}

func (f *fakeServices) GetAccountHoldings(ctx context.Context, req model.HoldingsRequest) (*model.AccountHoldingsResponse, error) {
	f.record(ctx)
	if f.GetAccountHoldingsFunc != nil {
		return f.GetAccountHoldingsFunc(ctx, req)
	}
	return &model.AccountHoldingsResponse{Holdings: []model.Holding{}}, nil
}

func (f *fakeServices) GetPortfolioSummary(ctx context.Context, accountID string) (*model.PortfolioSummaryResponse, error) {
	f.record(ctx)
	if f.GetPortfolioSummaryFunc != nil {
		return f.GetPortfolioSummaryFunc(ctx, accountID)
	}
	return &model.PortfolioSummaryResponse{PortfolioSummary: model.PortfolioSummary{AccountID: accountID}}, nil
}

func (f *fakeServices) GetAccount(ctx context.Context, accountID string) (*model.Account, error) {
	f.record(ctx)
	if f.GetAccountFunc != nil {
		return f.GetAccountFunc(ctx, accountID)
	}
	return &model.Account{AccountID: accountID}, nil
}

func newRouter(f *fakeServices) *gin.Engine {
	return NewRouter(NewHandler(f, f, f, logger.NewNop()), map[string]web.HealthCheck{
		"database": func(context.Context) error { return nil },
	}, logger.NewNop())
}

func identity(requestID string) map[string]string {
	return map[string]string{
		reqctx.HeaderUserID:    "advisor-workspace",
		reqctx.HeaderAdvisorID: "advisor-001",
		reqctx.HeaderRequestID: requestID,
	}
}

func do(e *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	e.ServeHTTP(w, req)
	return w
}

var _internalRoutes = []struct {
	method, path, body string
}{
	{http.MethodGet, "/internal/advisors/advisor-001/clients", ""},
	{http.MethodPost, "/internal/clients/search", `{"advisorId":"advisor-001"}`},
	{http.MethodPost, "/internal/accounts/acc-001/holdings", `{}`},
	{http.MethodGet, "/internal/accounts/acc-001/summary", ""},
	{http.MethodGet, "/internal/accounts/acc-001", ""},
}

func TestRequireIdentity_EveryRouteEveryHeader(t *testing.T) {
	f := &fakeServices{}
	e := newRouter(f)

	for _, r := range _internalRoutes {
		for _, missing := range reqctx.RequiredHeaders {
			for _, blank := range []bool{false, true} {
				headers := identity("req-1")
				if blank {
					headers[missing] = "   "
				} else {
					delete(headers, missing)
				}
				w := do(e, r.method, r.path, r.body, headers)
				assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s without %s", r.method, r.path, missing)

				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "Unauthorized", body["error"])
				assert.Contains(t, body["message"], missing)
			}
		}
	}
	assert.Zero(t, f.invoked)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.InternalRequestsInFlight))
}

func TestAdvisorClients_WithoutUserID(t *testing.T) {
	f := &fakeServices{}
	headers := identity("req-1")
	delete(headers, reqctx.HeaderUserID)

	w := do(newRouter(f), http.MethodGet, "/internal/advisors/advisor-001/clients", "", headers)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, f.invoked)
}

func TestRequireIdentity_ParallelContexts(t *testing.T) {
	f := &fakeServices{}
	e := newRouter(f)

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := "req-" + strconv.Itoa(i)
			w := do(e, http.MethodGet, "/internal/accounts/acc-001", "", identity(id))
			assert.Equal(t, http.StatusOK, w.Code)
		}()
	}
	wg.Wait()

	assert.Equal(t, 32, f.invoked)
	seen := make(map[string]bool)
	for _, rc := range f.contexts {
		assert.Equal(t, "advisor-001", rc.AdvisorID)
		assert.False(t, rc.Timestamp.IsZero())
		seen[rc.RequestID] = true
	}
	assert.Len(t, seen, 32)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.InternalRequestsInFlight))
}

func TestRequireIdentity_ClientIPIgnoresForwardingHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"no forwarding headers", nil},
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "6.6.6.6"}},
		{"x-real-ip", map[string]string{"X-Real-IP": "6.6.6.6"}},
		{"both", map[string]string{"X-Forwarded-For": "6.6.6.6, 10.0.0.1", "X-Real-IP": "7.7.7.7"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeServices{}
			headers := identity("req-ip")
			for k, v := range tt.headers {
				headers[k] = v
			}

			w := do(newRouter(f), http.MethodGet, "/internal/accounts/acc-001", "", headers)
			require.Equal(t, http.StatusOK, w.Code)
			require.Len(t, f.contexts, 1)
			// httptest requests come from 192.0.2.1:1234
			assert.Equal(t, "192.0.2.1", f.contexts[0].ClientIP)
		})
	}
}

func TestAdvisorClients_Paging(t *testing.T) {
	var gotOffset, gotSize int
	f := &fakeServices{GetAdvisorClientsFunc: func(_ context.Context, advisorID string, pageOffset, pageSize int) (*model.AdvisorClientsResponse, error) {
		gotOffset, gotSize = pageOffset, pageSize
		return &model.AdvisorClientsResponse{
			Clients:    []model.Client{{ClientID: "client-001", ClientName: "John Smith", AdvisorID: advisorID}},
			TotalCount: 3,
			PageOffset: pageOffset,
			PageSize:   pageSize,
		}, nil
	}}
	e := newRouter(f)

	w := do(e, http.MethodGet, "/internal/advisors/advisor-001/clients", "", identity("r"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, gotOffset)
	assert.Equal(t, 50, gotSize)

	var resp model.AdvisorClientsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalCount)
	assert.Equal(t, 0, resp.ResultCode)
	assert.Nil(t, resp.ErrorMessage)

	for _, q := range []string{"pageSize=0", "pageSize=101", "pageOffset=-1", "pageSize=ten"} {
		w := do(e, http.MethodGet, "/internal/advisors/advisor-001/clients?"+q, "", identity("r"))
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}

	w = do(e, http.MethodGet, "/internal/advisors/advisor-001/clients?pageOffset=100&pageSize=100", "", identity("r"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, gotOffset)
	assert.Equal(t, 100, gotSize)

	long := strings.Repeat("a", 51)
	w = do(e, http.MethodGet, "/internal/advisors/"+long+"/clients", "", identity("r"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchClients_Validation(t *testing.T) {
	f := &fakeServices{}
	e := newRouter(f)

	cases := []string{
		`{}`,
		`{"advisorId":"  "}`,
		`{"advisorId":"advisor-001","pageSize":500}`,
		`{"advisorId":"advisor-001","pageOffset":-1}`,
		`{"advisorId":"advisor-001","searchQuery":"` + strings.Repeat("x", 201) + `"}`,
		`{"advisorId":`,
	}
	for _, body := range cases {
		w := do(e, http.MethodPost, "/internal/clients/search", body, identity("r"))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.Zero(t, f.invoked)

	w := do(e, http.MethodPost, "/internal/clients/search", `{"advisorId":"advisor-001","accountTypes":["ira"],"sortBy":"MARKET_VALUE"}`, identity("r"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.invoked)
}

func TestAccountHoldings_PathWinsAndEmptyBody(t *testing.T) {
	var got model.HoldingsRequest
	f := &fakeServices{GetAccountHoldingsFunc: func(_ context.Context, req model.HoldingsRequest) (*model.AccountHoldingsResponse, error) {
		got = req
		return &model.AccountHoldingsResponse{Holdings: []model.Holding{}, PageSize: req.PageSizeOrDefault()}, nil
	}}
	e := newRouter(f)

	w := do(e, http.MethodPost, "/internal/accounts/acc-001/holdings", `{"accountId":"acc-999","pageSize":25}`, identity("r"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "acc-001", got.AccountID)
	assert.Equal(t, 25, got.PageSizeOrDefault())

	w = do(e, http.MethodPost, "/internal/accounts/acc-002/holdings", "", identity("r"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "acc-002", got.AccountID)

	w = do(e, http.MethodPost, "/internal/accounts/acc-001/holdings", `{"symbol":"`+strings.Repeat("S", 21)+`"}`, identity("r"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccount_NotFoundAndDatabaseErrors(t *testing.T) {
	f := &fakeServices{GetAccountFunc: func(_ context.Context, accountID string) (*model.Account, error) {
		if accountID == "acc-404" {
			return nil, apperror.NotFound("Account", accountID)
		}
		return nil, apperror.Database("Failed to parse account data", nil)
	}}
	e := newRouter(f)

	w := do(e, http.MethodGet, "/internal/accounts/acc-404", "", identity("r"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 404, resp.Status)
	assert.Equal(t, "Resource Not Found", resp.Error)
	assert.Contains(t, resp.Message, "acc-404")

	w = do(e, http.MethodGet, "/internal/accounts/acc-500", "", identity("r"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Database Operation Failed", resp.Error)
}

func TestSummary_InBandErrorIsOK(t *testing.T) {
	msg := "Query timeout: context deadline exceeded"
	f := &fakeServices{GetPortfolioSummaryFunc: func(_ context.Context, accountID string) (*model.PortfolioSummaryResponse, error) {
		return &model.PortfolioSummaryResponse{
			PortfolioSummary: model.PortfolioSummary{AccountID: accountID},
			Result:           model.Result{ResultCode: -3, ErrorMessage: &msg},
		}, nil
	}}

	w := do(newRouter(f), http.MethodGet, "/internal/accounts/acc-001/summary", "", identity("r"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"resultCode":-3`)
	assert.Contains(t, w.Body.String(), `"accountId":"acc-001"`)
}

func TestHealthIsPublic(t *testing.T) {
	w := do(newRouter(&fakeServices{}), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
