package advisor

import (
	"context"
	"fmt"

	"github.com/STTM-NSU/advisor-workspace/internal/cache"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/STTM-NSU/advisor-workspace/internal/upstream"
)

type ClientPage = model.PaginatedResponse[model.Client]

type ClientService struct {
	upstream upstream.Client
	clients  *cache.Cache[ClientPage]
	search   *cache.Cache[ClientPage]

	logger logger.Logger
}

func NewClientService(up upstream.Client, clients, search *cache.Cache[ClientPage], logger logger.Logger) *ClientService {
	return &ClientService{
		upstream: up,
		clients:  clients,
		search:   search,
		logger:   logger.With("component", "client-service"),
	}
}

// GetAdvisorClients pages the advisor's full client list.
func (s *ClientService) GetAdvisorClients(ctx context.Context, advisorID string, page, size int) (ClientPage, error) {
	return s.clients.GetOrLoad(ctx, cache.ClientsKey(advisorID, page, size), func(ctx context.Context) (ClientPage, error) {
		all, err := s.upstream.GetAdvisorClients(ctx, advisorID)
		if err != nil {
			return ClientPage{}, fmt.Errorf("%w: can't get clients of advisor %s", err, advisorID)
		}
		return model.SlicePage(all, page, size), nil
	})
}

// SearchClients asks the upstream for candidates, then filters, sorts and pages them.
func (s *ClientService) SearchClients(ctx context.Context, req model.ClientSearchRequest) (ClientPage, error) {
	key, err := cache.SearchKey(req)
	if err != nil {
		return ClientPage{}, err
	}
	return s.search.GetOrLoad(ctx, key, func(ctx context.Context) (ClientPage, error) {
		candidates, err := s.upstream.SearchClients(ctx, req)
		if err != nil {
			return ClientPage{}, fmt.Errorf("%w: can't search clients of advisor %s", err, req.AdvisorID)
		}

		matched := make([]model.Client, 0, len(candidates))
		for _, c := range candidates {
			if Matches(c, req) {
				matched = append(matched, c)
			}
		}
		SortClients(matched, req.SortBy, req.SortDirection)

		s.logger.Debugf("search for advisor %s matched %d of %d clients", req.AdvisorID, len(matched), len(candidates))
		return model.SlicePage(matched, req.PageOrDefault(), req.SizeOrDefault()), nil
	})
}
