package lfdapi

import (
	"context"

	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/STTM-NSU/advisor-workspace/internal/web"
	"github.com/gin-gonic/gin"
)

const ServiceName = "lfd-api"

type ClientService interface {
	GetAdvisorClients(ctx context.Context, advisorID string, pageOffset, pageSize int) (*model.AdvisorClientsResponse, error)
	SearchClients(ctx context.Context, req model.ClientSearchRequest) (*model.ClientSearchResponse, error)
}

type HoldingsService interface {
	GetAccountHoldings(ctx context.Context, req model.HoldingsRequest) (*model.AccountHoldingsResponse, error)
	GetPortfolioSummary(ctx context.Context, accountID string) (*model.PortfolioSummaryResponse, error)
}

type AccountService interface {
	GetAccount(ctx context.Context, accountID string) (*model.Account, error)
}

type Handler struct {
	clients  ClientService
	holdings HoldingsService
	accounts AccountService

	logger logger.Logger
}

func NewHandler(clients ClientService, holdings HoldingsService, accounts AccountService, logger logger.Logger) *Handler {
	return &Handler{
		clients:  clients,
		holdings: holdings,
		accounts: accounts,
		logger:   logger.With("component", "internal-api"),
	}
}

// NewRouter mounts the internal API behind the identity gate, plus health and metrics.
func NewRouter(h *Handler, health map[string]web.HealthCheck, logger logger.Logger) *gin.Engine {
	e := web.NewEngine(ServiceName, logger)
	e.GET("/health", web.Health(health))

	internal := e.Group("/internal", RequireIdentity(logger))
	{
		internal.GET("/advisors/:advisorId/clients", h.getAdvisorClients)
		internal.POST("/clients/search", h.searchClients)
		internal.POST("/accounts/:accountId/holdings", h.getAccountHoldings)
		internal.GET("/accounts/:accountId/summary", h.getPortfolioSummary)
		internal.GET("/accounts/:accountId", h.getAccount)
	}
	return e
}
