package upstream

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/shopspring/decimal"
)

// FixtureClient serves a fixed advisor book from memory. It is selected when the
// mock provider is enabled.
type FixtureClient struct {
	clients  []model.Client
	accounts map[string]model.Account
	holdings []model.Holding

	logger logger.Logger
}

func NewFixtureClient(now time.Time, logger logger.Logger) *FixtureClient {
	f := &FixtureClient{
		accounts: make(map[string]model.Account),
		logger:   logger.With("component", "lfd-fixture"),
	}
	f.seed(now)
	return f
}

func daysAgo(now time.Time, days int) *model.DateTime {
	t := model.NewDateTime(now.AddDate(0, 0, -days))
	return &t
}

func date(year int, month time.Month, day int) *model.Date {
	d := model.NewDate(year, month, day)
	return &d
}

func (f *FixtureClient) seed(now time.Time) {
	const advisorID = "advisor-001"

	account := func(id, number string, t model.AccountType, name, mv, cost, gain, ytd, cash string, inception *model.Date, lastDays int) model.Account {
		return model.Account{
			AccountID:          id,
			AccountNumber:      number,
			AccountName:        name,
			AccountType:        t,
			MarketValue:        model.Dec(mv),
			CostBasis:          model.Dec(cost),
			UnrealizedGainLoss: model.Dec(gain),
			YTDPerformance:     model.Dec(ytd),
			CashBalance:        model.Dec(cash),
			InceptionDate:      inception,
			LastUpdated:        daysAgo(now, lastDays),
		}
	}
	client := func(id, name, taxID string, risk model.RiskProfile, mv, cost, gain, ytd string, lastAccessed time.Time, accounts ...model.Account) model.Client {
		for i := range accounts {
			accounts[i].ClientID = id
			accounts[i].ClientName = name
			accounts[i].RiskProfile = risk
			f.accounts[accounts[i].AccountID] = accounts[i]
		}
		accessed := model.NewDateTime(lastAccessed)
		lastActivity := model.NewDate(lastAccessed.Year(), lastAccessed.Month(), lastAccessed.Day())
		return model.Client{
			ClientID:                id,
			ClientName:              name,
			AdvisorID:               advisorID,
			AdvisorName:             "Jane Advisor",
			TaxID:                   taxID,
			RiskProfile:             risk,
			ActivityStatus:          model.Active,
			AccountCount:            len(accounts),
			TotalMarketValue:        model.Dec(mv),
			TotalCostBasis:          model.Dec(cost),
			TotalUnrealizedGainLoss: model.Dec(gain),
			YTDPerformance:          model.Dec(ytd),
			LastActivityDate:        &lastActivity,
			LastAccessed:            &accessed,
			Accounts:                accounts,
		}
	}

	f.clients = []model.Client{
		client("client-001", "John Smith", "123-45-6789", model.Moderate,
			"3650000.00", "3100000.00", "550000.00", "10.8", now.Add(-3*time.Hour),
			account("acc-001", "12345678", model.Individual, "Personal Investment Account",
				"2450000.00", "2000000.00", "450000.00", "12.5", "50000.00", date(2020, time.January, 15), 2),
			account("acc-002", "87654321", model.IRA, "Traditional IRA",
				"1200000.00", "1100000.00", "100000.00", "8.3", "20000.00", date(2018, time.March, 20), 5),
		),
		client("client-002", "Sarah Johnson", "987-65-4321", model.Aggressive,
			"5000000.00", "4500000.00", "500000.00", "15.2", now.AddDate(0, 0, -1),
			account("acc-003", "11223344", model.Joint, "Joint Investment Account",
				"5000000.00", "4500000.00", "500000.00", "15.2", "100000.00", date(2019, time.June, 10), 1),
		),
		client("client-003", "Michael Williams", "456-78-9012", model.Conservative,
			"10000000.00", "9000000.00", "1000000.00", "6.5", now.AddDate(0, 0, -10),
			account("acc-004", "55667788", model.Trust, "Family Trust",
				"10000000.00", "9000000.00", "1000000.00", "6.5", "500000.00", date(2015, time.September, 1), 7),
		),
	}

	holding := func(symbol, name string, class model.AssetClass, sector, qty, price, change, changePct, cost, portfolioPct string, lots int) model.Holding {
		h := model.Holding{
			Symbol:             symbol,
			SecurityName:       name,
			AssetClass:         class,
			Sector:             sector,
			Quantity:           model.Dec(qty),
			CurrentPrice:       model.Dec(price),
			PriceChange:        model.Dec(change),
			PriceChangePercent: model.Dec(changePct),
			CostBasis:          model.Dec(cost),
			PortfolioPercent:   model.Dec(portfolioPct),
			TaxLotCount:        lots,
		}
		h.Derive()
		return h
	}

	f.holdings = []model.Holding{
		holding("AAPL", "Apple Inc.", model.Equity, "Technology", "500", "175.50", "2.30", "1.33", "75000", "35.1", 3),
		holding("MSFT", "Microsoft Corporation", model.Equity, "Technology", "300", "380.25", "-1.75", "-0.46", "96000", "45.6", 2),
		holding("BND", "Vanguard Total Bond Market ETF", model.FixedIncome, "Fixed Income", "600", "75.80", "0.15", "0.20", "46800", "18.2", 1),
		holding("CASH", "Cash", model.Cash, "Cash", "2695", "1", "0", "0", "2695", "1.1", 0),
	}
}

func (f *FixtureClient) GetAdvisorClients(_ context.Context, advisorID string) ([]model.Client, error) {
	out := make([]model.Client, 0, len(f.clients))
	for _, c := range f.clients {
		if c.AdvisorID == advisorID {
			out = append(out, c)
		}
	}
	return out, nil
}

// SearchClients narrows by advisor and free-text query only; the remaining criteria
// are applied by the caller.
func (f *FixtureClient) SearchClients(ctx context.Context, req model.ClientSearchRequest) ([]model.Client, error) {
	clients, err := f.GetAdvisorClients(ctx, req.AdvisorID)
	if err != nil {
		return nil, err
	}
	query := strings.ToLower(strings.TrimSpace(req.SearchQuery))
	if query == "" {
		return clients, nil
	}
	return slices.DeleteFunc(clients, func(c model.Client) bool {
		return !strings.Contains(strings.ToLower(c.ClientName), query) &&
			!c.HasAccountNumber(req.SearchQuery) && c.TaxID != req.SearchQuery
	}), nil
}

func (f *FixtureClient) GetAccountHoldings(_ context.Context, accountID string, page, size int) (model.PaginatedResponse[model.Holding], error) {
	all := make([]model.Holding, len(f.holdings))
	for i, h := range f.holdings {
		h.AccountID = accountID
		all[i] = h
	}
	return model.SlicePage(all, page, size), nil
}

func (f *FixtureClient) GetPortfolioSummary(_ context.Context, accountID string) (*model.PortfolioSummary, error) {
	total, cost, gain := decimal.Zero, decimal.Zero, decimal.Zero
	for _, h := range f.holdings {
		total = total.Add(model.DecOrZero(h.MarketValue))
		cost = cost.Add(model.DecOrZero(h.CostBasis))
		gain = gain.Add(model.DecOrZero(h.UnrealizedGainLoss))
	}
	var gainPct *decimal.Decimal
	if !cost.IsZero() {
		gainPct = model.DecPtr(gain.Div(cost).Mul(decimal.NewFromInt(100)).Round(2))
	}
	asOf := model.Now()

	return &model.PortfolioSummary{
		AccountID:                      accountID,
		TotalMarketValue:               model.DecPtr(total),
		TotalCostBasis:                 model.DecPtr(cost),
		TotalUnrealizedGainLoss:        model.DecPtr(gain),
		TotalUnrealizedGainLossPercent: gainPct,
		TotalRealizedGainLossYTD:       model.Dec("5420.75"),
		PortfolioBeta:                  model.Dec("0.92"),
		DividendYield:                  model.Dec("1.85"),
		HoldingsCount:                  len(f.holdings),
		AssetAllocation:                model.Allocate(f.holdings),
		AsOfDate:                       &asOf,
	}, nil
}

func (f *FixtureClient) GetAccount(_ context.Context, accountID string) (*model.Account, error) {
	a, ok := f.accounts[accountID]
	if !ok {
		f.logger.Debugf("account %s is not in the fixture book", accountID)
		return nil, apperror.NotFound("Account", accountID)
	}
	return &a, nil
}
