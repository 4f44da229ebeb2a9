package domainapi

import (
	"context"

	"github.com/STTM-NSU/advisor-workspace/internal/advisor"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/STTM-NSU/advisor-workspace/internal/web"
	"github.com/gin-gonic/gin"
)

const ServiceName = "domain-api"

type ClientService interface {
	GetAdvisorClients(ctx context.Context, advisorID string, page, size int) (advisor.ClientPage, error)
	SearchClients(ctx context.Context, req model.ClientSearchRequest) (advisor.ClientPage, error)
}

type HoldingsService interface {
	GetAccountHoldings(ctx context.Context, accountID string, page, size int) (model.HoldingsResponse, error)
	GetPortfolioSummary(ctx context.Context, accountID string) (model.PortfolioSummary, error)
}

type ExportService interface {
	ExportHoldings(ctx context.Context, req model.ExportRequest) (advisor.Export, error)
}

type Handler struct {
	clients  ClientService
	holdings HoldingsService
	exports  ExportService

	logger logger.Logger
}

func NewHandler(clients ClientService, holdings HoldingsService, exports ExportService, logger logger.Logger) *Handler {
	return &Handler{
		clients:  clients,
		holdings: holdings,
		exports:  exports,
		logger:   logger.With("component", "public-api"),
	}
}

// NewRouter mounts the public API under /api/v1, plus health and metrics.
func NewRouter(h *Handler, health map[string]web.HealthCheck, logger logger.Logger) *gin.Engine {
	e := web.NewEngine(ServiceName, logger)
	e.GET("/health", web.Health(health))

	api := e.Group("/api/v1")
	{
		api.GET("/advisor/:advisorId/clients", h.getAdvisorClients)
		api.POST("/clients/search", h.searchClients)

		accounts := api.Group("/accounts/:accountId")
		{
			accounts.GET("/holdings", h.getAccountHoldings)
			accounts.GET("/holdings/summary", h.getPortfolioSummary)
			accounts.GET("/holdings/:symbol/taxlots", h.getTaxLots)
		}

		api.POST("/export/holdings", h.exportHoldings)
	}
	return e
}
