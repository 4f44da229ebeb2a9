package lfd

import (
	"context"

	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
)

const (
	ProcGetAccountHoldings  = "sp_get_account_holdings"
	ProcGetPortfolioSummary = "sp_get_portfolio_summary"
)

type HoldingsDataService struct {
	exec Executor

	logger logger.Logger
}

func NewHoldingsDataService(exec Executor, logger logger.Logger) *HoldingsDataService {
	return &HoldingsDataService{
		exec:   exec,
		logger: logger.With("component", "holdings-data"),
	}
}

func (s *HoldingsDataService) GetAccountHoldings(ctx context.Context, req model.HoldingsRequest) (*model.AccountHoldingsResponse, error) {
	logger.WithRequest(ctx, s.logger).Debugf("getting holdings for account %s", req.AccountID)

	pageOffset, pageSize := req.PageOffsetOrDefault(), req.PageSizeOrDefault()
	resp, err := s.exec.ExecuteRead(ctx, ProcGetAccountHoldings, map[string]any{
		"p_account_id":     req.AccountID,
		"p_symbol":         nilIfEmpty(req.Symbol),
		"p_as_of_date":     req.AsOfDate,
		"p_asset_classes":  req.AssetClasses,
		"p_sort_field":     nilIfEmpty(req.SortField),
		"p_sort_direction": nilIfEmpty(string(req.SortDirection)),
		"p_page_offset":    pageOffset,
		"p_page_size":      pageSize,
	})
	if err != nil {
		return nil, err
	}

	holdings, err := mapRows(resp.Data, holdingFromRow)
	if err != nil {
		return nil, apperror.Database("Failed to parse holdings data", err)
	}

	return &model.AccountHoldingsResponse{
		Holdings:   holdings,
		TotalCount: totalCount(resp, s.logger),
		PageOffset: pageOffset,
		PageSize:   pageSize,
		Result:     resp.Result(),
	}, nil
}

func (s *HoldingsDataService) GetPortfolioSummary(ctx context.Context, accountID string) (*model.PortfolioSummaryResponse, error) {
	logger.WithRequest(ctx, s.logger).Debugf("getting portfolio summary for account %s", accountID)

	resp, err := s.exec.ExecuteRead(ctx, ProcGetPortfolioSummary, map[string]any{"p_account_id": accountID})
	if err != nil {
		return nil, err
	}

	out := &model.PortfolioSummaryResponse{
		PortfolioSummary: model.PortfolioSummary{AccountID: accountID, AssetAllocation: []model.AssetAllocation{}},
		Result:           resp.Result(),
	}
	if !resp.Success() {
		return out, nil
	}

	allocation, err := mapRows(resp.Data, allocationFromRow)
	if err != nil {
		s.logger.Warnf("%s: can't parse asset allocation for %s", err, accountID)
		allocation = []model.AssetAllocation{}
	}

	outputs := resp.Outputs()
	now := model.Now()
	out.PortfolioSummary = model.PortfolioSummary{
		AccountID:                      accountID,
		TotalMarketValue:               outputs.Decimal("p_total_market_value"),
		TotalCostBasis:                 outputs.Decimal("p_total_cost_basis"),
		TotalUnrealizedGainLoss:        outputs.Decimal("p_total_unrealized_gain_loss"),
		TotalUnrealizedGainLossPercent: outputs.Decimal("p_unrealized_gain_loss_percent"),
		TotalRealizedGainLossYTD:       outputs.Decimal("p_realized_gain_loss_ytd"),
		PortfolioBeta:                  outputs.Decimal("p_portfolio_beta"),
		DividendYield:                  outputs.Decimal("p_annual_dividend_yield"),
		HoldingsCount:                  outputs.Int("p_holdings_count"),
		AssetAllocation:                allocation,
		AsOfDate:                       &now,
	}
	if err := outputs.Err(); err != nil {
		return nil, apperror.Database("Failed to parse portfolio summary", err)
	}
	return out, nil
}
