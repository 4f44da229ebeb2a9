package model

import "github.com/shopspring/decimal"

// Holding is a position in one account. CostBasis is the total cost of the position.
type Holding struct {
	AccountID                 string           `json:"accountId"`
	Symbol                    string           `json:"symbol"`
	Cusip                     string           `json:"cusip,omitempty"`
	SecurityName              string           `json:"securityName"`
	AssetClass                AssetClass       `json:"assetClass"`
	Sector                    string           `json:"sector,omitempty"`
	Quantity                  *decimal.Decimal `json:"quantity"`
	CurrentPrice              *decimal.Decimal `json:"currentPrice"`
	PriceChange               *decimal.Decimal `json:"priceChange,omitempty"`
	PriceChangePercent        *decimal.Decimal `json:"priceChangePercent,omitempty"`
	CostBasis                 *decimal.Decimal `json:"costBasis"`
	MarketValue               *decimal.Decimal `json:"marketValue"`
	UnrealizedGainLoss        *decimal.Decimal `json:"unrealizedGainLoss"`
	UnrealizedGainLossPercent *decimal.Decimal `json:"unrealizedGainLossPercent"`
	PortfolioPercent          *decimal.Decimal `json:"portfolioPercent,omitempty"`
	PurchaseDate              *Date            `json:"purchaseDate,omitempty"`
	PriceDate                 *Date            `json:"priceDate,omitempty"`
	TaxLotCount               int              `json:"taxLotCount"`
	HasAlerts                 bool             `json:"hasAlerts"`
}

// Derive fills market value, unrealized gain/loss and its percentage from quantity,
// price and cost basis where they are missing.
func (h *Holding) Derive() {
	if h.MarketValue == nil && h.Quantity != nil && h.CurrentPrice != nil {
		h.MarketValue = DecPtr(h.Quantity.Mul(*h.CurrentPrice).Round(2))
	}
	if h.UnrealizedGainLoss == nil && h.MarketValue != nil && h.CostBasis != nil {
		h.UnrealizedGainLoss = DecPtr(h.MarketValue.Sub(*h.CostBasis))
	}
	if h.UnrealizedGainLossPercent == nil && h.UnrealizedGainLoss != nil && h.CostBasis != nil && !h.CostBasis.IsZero() {
		h.UnrealizedGainLossPercent = DecPtr(h.UnrealizedGainLoss.Div(*h.CostBasis).Mul(decimal.NewFromInt(100)).Round(2))
	}
}

// Consistent checks the value identities within tolerance.
func (h Holding) Consistent(tolerance decimal.Decimal) bool {
	if h.Quantity == nil || h.CurrentPrice == nil || h.MarketValue == nil {
		return false
	}
	if h.Quantity.Mul(*h.CurrentPrice).Sub(*h.MarketValue).Abs().GreaterThan(tolerance) {
		return false
	}
	if h.CostBasis != nil && h.UnrealizedGainLoss != nil {
		return h.MarketValue.Sub(*h.CostBasis).Sub(*h.UnrealizedGainLoss).Abs().LessThanOrEqual(tolerance)
	}
	return true
}
