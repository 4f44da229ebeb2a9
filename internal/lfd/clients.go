package lfd

import (
	"context"

	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/STTM-NSU/advisor-workspace/internal/storedproc"
)

const (
	ProcGetAdvisorClients = "sp_get_advisor_clients"
	ProcSearchClients     = "sp_search_clients"
)

// Executor runs read procedures. *storedproc.Executor implements it.
type Executor interface {
	ExecuteRead(ctx context.Context, name string, params map[string]any) (*storedproc.Response, error)
}

type ClientDataService struct {
	exec Executor

	logger logger.Logger
}

func NewClientDataService(exec Executor, logger logger.Logger) *ClientDataService {
	return &ClientDataService{
		exec:   exec,
		logger: logger.With("component", "client-data"),
	}
}

func (s *ClientDataService) GetAdvisorClients(ctx context.Context, advisorID string, pageOffset, pageSize int) (*model.AdvisorClientsResponse, error) {
	logger.WithRequest(ctx, s.logger).Debugf("getting clients for advisor %s, offset %d, size %d", advisorID, pageOffset, pageSize)

	resp, err := s.exec.ExecuteRead(ctx, ProcGetAdvisorClients, map[string]any{
		"p_advisor_id":  advisorID,
		"p_page_offset": pageOffset,
		"p_page_size":   pageSize,
	})
	if err != nil {
		return nil, err
	}

	clients, err := mapRows(resp.Data, clientFromRow)
	if err != nil {
		return nil, apperror.Database("Failed to parse client data", err)
	}

	return &model.AdvisorClientsResponse{
		Clients:    clients,
		TotalCount: s.totalCount(resp),
		PageOffset: pageOffset,
		PageSize:   pageSize,
		Result:     resp.Result(),
	}, nil
}

func (s *ClientDataService) SearchClients(ctx context.Context, req model.ClientSearchRequest) (*model.ClientSearchResponse, error) {
	logger.WithRequest(ctx, s.logger).Debugf("searching clients for advisor %s", req.AdvisorID)

	query := req.SearchQuery
	if query == "" {
		query = req.ClientName
	}
	pageOffset, pageSize := req.PageOffsetOrDefault(), req.PageSizeOrDefault()

	resp, err := s.exec.ExecuteRead(ctx, ProcSearchClients, map[string]any{
		"p_advisor_id":       req.AdvisorID,
		"p_search_query":     nilIfEmpty(query),
		"p_account_types":    req.AccountTypes,
		"p_min_market_value": req.MinMarketValue,
		"p_max_market_value": req.MaxMarketValue,
		"p_activity_status":  nilIfEmpty(string(req.ActivityStatus)),
		"p_risk_profile":     req.RiskProfiles,
		"p_sort_field":       nilIfEmpty(string(req.SortBy)),
		"p_sort_direction":   nilIfEmpty(string(req.SortDirection)),
		"p_page_offset":      pageOffset,
		"p_page_size":        pageSize,
	})
	if err != nil {
		return nil, err
	}

	clients, err := mapRows(resp.Data, clientFromRow)
	if err != nil {
		return nil, apperror.Database("Failed to parse client data", err)
	}

	return &model.ClientSearchResponse{
		Clients:    clients,
		TotalCount: s.totalCount(resp),
		PageOffset: pageOffset,
		PageSize:   pageSize,
		Result:     resp.Result(),
	}, nil
}

func (s *ClientDataService) totalCount(resp *storedproc.Response) int {
	return totalCount(resp, s.logger)
}

func totalCount(resp *storedproc.Response, logger logger.Logger) int {
	outputs := resp.Outputs()
	n := outputs.Int(storedproc.ParamTotalCount)
	if err := outputs.Err(); err != nil {
		logger.Warnf("%s: can't read total count", err)
		return 0
	}
	return n
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
