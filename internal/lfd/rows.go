package lfd

import (
	"fmt"

	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/STTM-NSU/advisor-workspace/internal/storedproc"
)

func canonical[T ~string](s string, parse func(string) (T, bool)) T {
	if v, ok := parse(s); ok {
		return v
	}
	return T(s)
}

func clientFromRow(row storedproc.Row) (model.Client, error) {
	rr := row.Reader()
	c := model.Client{
		ClientID:                rr.String("client_id"),
		ClientName:              rr.String("client_name"),
		AdvisorID:               rr.String("advisor_id"),
		AdvisorName:             rr.String("advisor_name"),
		TaxID:                   rr.String("tax_id"),
		RiskProfile:             canonical(rr.String("risk_profile"), model.ParseRiskProfile),
		ActivityStatus:          canonical(rr.String("activity_status"), model.ParseActivityStatus),
		AccountCount:            rr.Int("account_count"),
		TotalMarketValue:        rr.Decimal("total_market_value"),
		TotalCostBasis:          rr.Decimal("total_cost_basis"),
		TotalUnrealizedGainLoss: rr.Decimal("total_unrealized_gain_loss"),
		YTDPerformance:          rr.Decimal("ytd_performance"),
		LastActivityDate:        rr.Date("last_activity_date"),
		LastAccessed:            rr.DateTime("last_accessed"),
		CreatedDate:             rr.DateTime("created_date"),
	}
	return c, rr.Err()
}

func holdingFromRow(row storedproc.Row) (model.Holding, error) {
	rr := row.Reader()
	h := model.Holding{
		AccountID:                 rr.String("account_id"),
		Symbol:                    rr.String("symbol"),
		Cusip:                     rr.String("cusip"),
		SecurityName:              rr.String("security_name"),
		AssetClass:                canonical(rr.String("asset_class"), model.ParseAssetClass),
		Sector:                    rr.String("sector"),
		Quantity:                  rr.Decimal("quantity"),
		CurrentPrice:              rr.Decimal("current_price"),
		PriceChange:               rr.Decimal("price_change"),
		PriceChangePercent:        rr.Decimal("price_change_percent"),
		CostBasis:                 rr.Decimal("cost_basis"),
		MarketValue:               rr.Decimal("market_value"),
		UnrealizedGainLoss:        rr.Decimal("unrealized_gain_loss"),
		UnrealizedGainLossPercent: rr.Decimal("unrealized_gain_loss_percent"),
		PortfolioPercent:          rr.Decimal("portfolio_percent"),
		PurchaseDate:              rr.Date("purchase_date"),
		PriceDate:                 rr.Date("price_date"),
		TaxLotCount:               rr.Int("tax_lot_count"),
		HasAlerts:                 rr.Bool("has_alerts"),
	}
	h.Derive()
	return h, rr.Err()
}

func accountFromRow(row storedproc.Row) (model.Account, error) {
	rr := row.Reader()
	a := model.Account{
		AccountID:          rr.String("account_id"),
		AccountNumber:      rr.String("account_number"),
		AccountName:        rr.String("account_name"),
		AccountType:        canonical(rr.String("account_type"), model.ParseAccountType),
		ClientID:           rr.String("client_id"),
		ClientName:         rr.String("client_name"),
		MarketValue:        rr.Decimal("market_value"),
		CostBasis:          rr.Decimal("cost_basis"),
		UnrealizedGainLoss: rr.Decimal("unrealized_gain_loss"),
		CashBalance:        rr.Decimal("cash_balance"),
		YTDPerformance:     rr.Decimal("ytd_performance"),
		RiskProfile:        canonical(rr.String("risk_profile"), model.ParseRiskProfile),
		InceptionDate:      rr.Date("inception_date"),
		LastUpdated:        rr.DateTime("last_updated"),
	}
	return a, rr.Err()
}

func allocationFromRow(row storedproc.Row) (model.AssetAllocation, error) {
	rr := row.Reader()
	a := model.AssetAllocation{
		AssetClass:    canonical(rr.String("asset_class"), model.ParseAssetClass),
		MarketValue:   rr.Decimal("market_value"),
		Percentage:    rr.Decimal("percentage"),
		HoldingsCount: rr.Int("holdings_count"),
	}
	return a, rr.Err()
}

func mapRows[T any](rows []storedproc.Row, mapper func(storedproc.Row) (T, error)) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		v, err := mapper(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d", err, i)
		}
		out = append(out, v)
	}
	return out, nil
}
