package upstream

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/STTM-NSU/advisor-workspace/internal/config"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/metrics"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/STTM-NSU/advisor-workspace/internal/reqctx"
	"github.com/google/uuid"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const (
	_advisorClientsURL = "/internal/advisors/{advisorId}/clients"
	_searchClientsURL  = "/internal/clients/search"
	_holdingsURL       = "/internal/accounts/{accountId}/holdings"
	_summaryURL        = "/internal/accounts/{accountId}/summary"
	_accountURL        = "/internal/accounts/{accountId}"
	_healthURL         = "/health"
)

// RESTClient calls the LFD internal API.
type RESTClient struct {
	c       *resty.Client
	cfg     config.LFDAPIConfig
	limiter ratelimit.Limiter
	tr      translator

	logger logger.Logger
}

func NewRESTClient(cfg config.LFDAPIConfig, logger logger.Logger) *RESTClient {
	logger = logger.With("component", "lfd-client")
	client := resty.New().
		SetLogger(logger).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	limiter := ratelimit.NewUnlimited()
	if cfg.RateLimit > 0 {
		limiter = ratelimit.New(cfg.RateLimit)
	}

	return &RESTClient{
		c:       client,
		cfg:     cfg,
		limiter: limiter,
		tr:      translator{logger: logger},
		logger:  logger,
	}
}

func (r *RESTClient) Close() error {
	return r.c.Close()
}

func (r *RESTClient) GetAdvisorClients(ctx context.Context, advisorID string) ([]model.Client, error) {
	req := r.request(ctx, advisorID).
		SetPathParam("advisorId", advisorID).
		SetQueryParams(map[string]string{
			"pageOffset": "0",
			"pageSize":   strconv.Itoa(r.cfg.MaxPageSize),
		}).
		SetResult(&model.AdvisorClientsResponse{})

	resp, err := r.do(req, http.MethodGet, _advisorClientsURL, "advisor_clients", "Advisor", advisorID)
	if err != nil {
		return nil, err
	}
	body := resp.Result().(*model.AdvisorClientsResponse)
	if err := envelopeError(body.Result, "Advisor", advisorID); err != nil {
		return nil, err
	}

	r.warnTruncated("advisor clients", advisorID, body.TotalCount, len(body.Clients))
	r.logger.Infof("received %d clients for advisor %s", len(body.Clients), advisorID)
	return r.tr.clients(body.Clients), nil
}

func (r *RESTClient) SearchClients(ctx context.Context, search model.ClientSearchRequest) ([]model.Client, error) {
	search.Page, search.Size = nil, nil
	search.PageOffset = model.IntPtr(0)
	search.PageSize = model.IntPtr(r.cfg.MaxPageSize)

	req := r.request(ctx, search.AdvisorID).
		SetBody(search).
		SetResult(&model.ClientSearchResponse{})

	resp, err := r.do(req, http.MethodPost, _searchClientsURL, "search_clients", "Advisor", search.AdvisorID)
	if err != nil {
		return nil, err
	}
	body := resp.Result().(*model.ClientSearchResponse)
	if err := envelopeError(body.Result, "Advisor", search.AdvisorID); err != nil {
		return nil, err
	}

	r.warnTruncated("client search", search.AdvisorID, body.TotalCount, len(body.Clients))
	return r.tr.clients(body.Clients), nil
}

func (r *RESTClient) GetAccountHoldings(ctx context.Context, accountID string, page, size int) (model.PaginatedResponse[model.Holding], error) {
	req := r.request(ctx, "").
		SetPathParam("accountId", accountID).
		SetBody(model.HoldingsRequest{
			AccountID:  accountID,
			PageOffset: model.IntPtr(page),
			PageSize:   model.IntPtr(size),
		}).
		SetResult(&model.AccountHoldingsResponse{})

	resp, err := r.do(req, http.MethodPost, _holdingsURL, "account_holdings", "Account", accountID)
	if err != nil {
		return model.PaginatedResponse[model.Holding]{}, err
	}
	body := resp.Result().(*model.AccountHoldingsResponse)
	if err := envelopeError(body.Result, "Account", accountID); err != nil {
		return model.PaginatedResponse[model.Holding]{}, err
	}

	return model.NewPage(r.tr.holdings(body.Holdings), page, size, int64(body.TotalCount)), nil
}

func (r *RESTClient) GetPortfolioSummary(ctx context.Context, accountID string) (*model.PortfolioSummary, error) {
	req := r.request(ctx, "").
		SetPathParam("accountId", accountID).
		SetResult(&model.PortfolioSummaryResponse{})

	resp, err := r.do(req, http.MethodGet, _summaryURL, "portfolio_summary", "Account", accountID)
	if err != nil {
		return nil, err
	}
	body := resp.Result().(*model.PortfolioSummaryResponse)
	if err := envelopeError(body.Result, "Account", accountID); err != nil {
		return nil, err
	}

	summary := r.tr.summary(body.PortfolioSummary)
	summary.AccountID = cmp.Or(summary.AccountID, accountID)
	if summary.AsOfDate == nil {
		now := model.Now()
		summary.AsOfDate = &now
	}
	return &summary, nil
}

func (r *RESTClient) GetAccount(ctx context.Context, accountID string) (*model.Account, error) {
	req := r.request(ctx, "").
		SetPathParam("accountId", accountID).
		SetResult(&model.Account{})

	resp, err := r.do(req, http.MethodGet, _accountURL, "account", "Account", accountID)
	if err != nil {
		return nil, err
	}
	account := r.tr.account(*resp.Result().(*model.Account))
	if account.AccountID == "" {
		return nil, apperror.NotFound("Account", accountID)
	}
	return &account, nil
}

// Ping checks that LFD answers its health endpoint.
func (r *RESTClient) Ping(ctx context.Context) error {
	resp, err := r.c.R().SetContext(ctx).Get(_healthURL)
	if err != nil {
		return fmt.Errorf("%w: can't reach lfd", err)
	}
	defer resp.Body.Close()
	if !resp.IsSuccess() {
		return fmt.Errorf("lfd health returned %s", resp.Status())
	}
	return nil
}

// request builds a call carrying the identity headers. Account scoped calls have no
// advisor and send the configured placeholder.
func (r *RESTClient) request(ctx context.Context, advisorID string) *resty.Request {
	return r.c.R().
		SetHeaders(map[string]string{
			reqctx.HeaderUserID:    r.cfg.UserID,
			reqctx.HeaderAdvisorID: cmp.Or(advisorID, r.cfg.AdvisorPlaceholder),
			reqctx.HeaderRequestID: uuid.NewString(),
			reqctx.HeaderTimestamp: model.Now().String(),
		}).
		SetError(&model.ErrorResponse{}).
		SetContext(ctx)
}

func (r *RESTClient) do(req *resty.Request, method, url, operation, resource, id string) (*resty.Response, error) {
	r.limiter.Take()
	if err := req.Context().Err(); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(operation, "cancelled").Inc()
		return nil, fmt.Errorf("%w: can't send %s request", err, operation)
	}

	timer := metrics.NewTimer(metrics.UpstreamRequestDuration.WithLabelValues(operation))
	resp, err := req.Execute(method, url)
	timer.ObserveDuration()
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(operation, "io_error").Inc()
		r.logger.Errorf("lfd %s for %s %s failed: %v", operation, resource, id, err)
		return nil, apperror.UpstreamUnavailable(resource, 0, fmt.Errorf("%w: can't send %s request", err, operation))
	}
	defer resp.Body.Close()

	r.logger.Debugf("got response %s status: %s, %s", resp.Request.URL, resp.Status(), resp.Duration())

	if resp.IsError() {
		metrics.UpstreamRequestsTotal.WithLabelValues(operation, strconv.Itoa(resp.StatusCode())).Inc()
		msg := resp.Status()
		if e, ok := resp.Error().(*model.ErrorResponse); ok && e.Message != "" {
			msg = e.Message
		}
		r.logger.Warnf("lfd %s for %s %s returned %s: %s", operation, resource, id, resp.Status(), msg)
		return nil, statusError(resp.StatusCode(), msg, resource, id)
	}
	if !resp.IsSuccess() {
		metrics.UpstreamRequestsTotal.WithLabelValues(operation, "unexpected").Inc()
		return nil, apperror.UpstreamUnavailable(resource, resp.StatusCode(), fmt.Errorf("unexpected status %s", resp.Status()))
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(operation, "success").Inc()
	return resp, nil
}

func (r *RESTClient) warnTruncated(what, advisorID string, total, got int) {
	if total > got {
		r.logger.Warnf("%s for advisor %s truncated: %d of %d returned by lfd", what, advisorID, got, total)
	}
}

// statusError maps an upstream HTTP failure: 400 is a validation error, other 4xx mean
// the target is absent and 5xx mean the upstream is unavailable.
func statusError(status int, msg, resource, id string) error {
	switch {
	case status == http.StatusBadRequest:
		return apperror.Validation("%s", msg)
	case status >= 400 && status < 500:
		return apperror.NotFound(resource, id)
	default:
		return apperror.UpstreamUnavailable(resource, status, errors.New(msg))
	}
}

// envelopeError maps an in-band failure. Positive result codes are procedure level
// outcomes for the target, negative ones are database failures inside LFD.
func envelopeError(res model.Result, resource, id string) error {
	switch {
	case res.OK():
		return nil
	case res.ResultCode > 0:
		return apperror.NotFound(resource, id)
	default:
		return apperror.UpstreamUnavailable(resource, 0, fmt.Errorf("result code %d: %s", res.ResultCode, res.Message()))
	}
}
