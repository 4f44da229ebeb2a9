package upstream

import (
	"context"

	"github.com/STTM-NSU/advisor-workspace/internal/model"
)

// Client reads advisor data from the LFD service.
type Client interface {
	// GetAdvisorClients returns every client of the advisor that fits the upstream window.
	GetAdvisorClients(ctx context.Context, advisorID string) ([]model.Client, error)
	// SearchClients forwards the search criteria and returns the upstream window of matches.
	SearchClients(ctx context.Context, req model.ClientSearchRequest) ([]model.Client, error)
	GetAccountHoldings(ctx context.Context, accountID string, page, size int) (model.PaginatedResponse[model.Holding], error)
	GetPortfolioSummary(ctx context.Context, accountID string) (*model.PortfolioSummary, error)
	GetAccount(ctx context.Context, accountID string) (*model.Account, error)
}
