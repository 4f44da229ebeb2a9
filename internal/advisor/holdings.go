package advisor

import (
	"context"
	"fmt"

	"github.com/STTM-NSU/advisor-workspace/internal/cache"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/STTM-NSU/advisor-workspace/internal/upstream"
	"github.com/STTM-NSU/advisor-workspace/internal/worker"
)

type HoldingsService struct {
	upstream upstream.Client
	holdings *cache.Cache[model.HoldingsResponse]
	summary  *cache.Cache[model.PortfolioSummary]
	pool     *worker.Pool

	logger logger.Logger
}

func NewHoldingsService(up upstream.Client, holdings *cache.Cache[model.HoldingsResponse], summary *cache.Cache[model.PortfolioSummary], pool *worker.Pool, logger logger.Logger) *HoldingsService {
	return &HoldingsService{
		upstream: up,
		holdings: holdings,
		summary:  summary,
		pool:     pool,
		logger:   logger.With("component", "holdings-service"),
	}
}

// ClampSize limits a requested holdings page size.
func ClampSize(size int) int {
	return min(size, model.MaxHoldingsPage)
}

// GetAccountHoldings returns one page of holdings together with the account and its
// summary, which are fetched concurrently on the worker pool.
func (s *HoldingsService) GetAccountHoldings(ctx context.Context, accountID string, page, size int) (model.HoldingsResponse, error) {
	size = ClampSize(size)
	return s.holdings.GetOrLoad(ctx, cache.HoldingsKey(accountID, page, size), func(ctx context.Context) (model.HoldingsResponse, error) {
		holdings, err := s.upstream.GetAccountHoldings(ctx, accountID, page, size)
		if err != nil {
			return model.HoldingsResponse{}, fmt.Errorf("%w: can't get holdings of account %s", err, accountID)
		}

		resp := model.HoldingsResponse{
			Holdings:      holdings.Content,
			Page:          page,
			Size:          size,
			TotalElements: holdings.TotalElements,
			TotalPages:    holdings.TotalPages,
		}
		if len(holdings.Content) == 0 && holdings.TotalElements == 0 {
			return resp, nil
		}

		accountF := worker.Go(s.pool, func() (*model.Account, error) {
			return s.upstream.GetAccount(ctx, accountID)
		})
		summaryF := worker.Go(s.pool, func() (model.PortfolioSummary, error) {
			return s.loadSummary(ctx, accountID)
		})

		account, err := accountF.Await(ctx)
		if err != nil {
			return model.HoldingsResponse{}, fmt.Errorf("%w: can't get account %s", err, accountID)
		}
		summary, err := summaryF.Await(ctx)
		if err != nil {
			return model.HoldingsResponse{}, fmt.Errorf("%w: can't get summary of account %s", err, accountID)
		}

		resp.AccountInfo = account
		resp.Summary = &summary
		return resp, nil
	})
}

func (s *HoldingsService) GetPortfolioSummary(ctx context.Context, accountID string) (model.PortfolioSummary, error) {
	return s.loadSummary(ctx, accountID)
}

func (s *HoldingsService) loadSummary(ctx context.Context, accountID string) (model.PortfolioSummary, error) {
	return s.summary.GetOrLoad(ctx, cache.SummaryKey(accountID), func(ctx context.Context) (model.PortfolioSummary, error) {
		summary, err := s.upstream.GetPortfolioSummary(ctx, accountID)
		if err != nil {
			return model.PortfolioSummary{}, fmt.Errorf("%w: can't get summary of account %s", err, accountID)
		}
		return *summary, nil
	})
}
