package model

import "github.com/shopspring/decimal"

type AssetAllocation struct {
	AssetClass    AssetClass       `json:"assetClass"`
	MarketValue   *decimal.Decimal `json:"marketValue"`
	Percentage    *decimal.Decimal `json:"percentage"`
	HoldingsCount int              `json:"holdingsCount"`
}

type PortfolioSummary struct {
	AccountID                      string            `json:"accountId"`
	TotalMarketValue               *decimal.Decimal  `json:"totalMarketValue"`
	TotalCostBasis                 *decimal.Decimal  `json:"totalCostBasis"`
	TotalUnrealizedGainLoss        *decimal.Decimal  `json:"totalUnrealizedGainLoss"`
	TotalUnrealizedGainLossPercent *decimal.Decimal  `json:"totalUnrealizedGainLossPercent"`
	TotalRealizedGainLossYTD       *decimal.Decimal  `json:"totalRealizedGainLossYTD,omitempty"`
	PortfolioBeta                  *decimal.Decimal  `json:"portfolioBeta"`
	DividendYield                  *decimal.Decimal  `json:"dividendYield"`
	HoldingsCount                  int               `json:"holdingsCount"`
	AssetAllocation                []AssetAllocation `json:"assetAllocation"`
	AsOfDate                       *DateTime         `json:"asOfDate,omitempty"`
}

// Allocate groups holdings by asset class in first-seen order. Percentages are of the
// combined market value and rounded to two places.
func Allocate(holdings []Holding) []AssetAllocation {
	total := decimal.Zero
	index := make(map[AssetClass]int)
	var out []AssetAllocation
	for _, h := range holdings {
		mv := DecOrZero(h.MarketValue)
		total = total.Add(mv)
		i, ok := index[h.AssetClass]
		if !ok {
			i = len(out)
			index[h.AssetClass] = i
			out = append(out, AssetAllocation{AssetClass: h.AssetClass, MarketValue: DecPtr(decimal.Zero)})
		}
		out[i].MarketValue = DecPtr(out[i].MarketValue.Add(mv))
		out[i].HoldingsCount++
	}
	for i := range out {
		pct := decimal.Zero
		if !total.IsZero() {
			pct = out[i].MarketValue.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
		}
		out[i].Percentage = DecPtr(pct)
	}
	return out
}
