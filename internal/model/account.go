package model

import "github.com/shopspring/decimal"

type Account struct {
	AccountID          string           `json:"accountId"`
	AccountNumber      string           `json:"accountNumber"`
	AccountName        string           `json:"accountName,omitempty"`
	AccountType        AccountType      `json:"accountType"`
	ClientID           string           `json:"clientId"`
	ClientName         string           `json:"clientName,omitempty"`
	MarketValue        *decimal.Decimal `json:"marketValue"`
	CostBasis          *decimal.Decimal `json:"costBasis,omitempty"`
	UnrealizedGainLoss *decimal.Decimal `json:"unrealizedGainLoss,omitempty"`
	CashBalance        *decimal.Decimal `json:"cashBalance"`
	YTDPerformance     *decimal.Decimal `json:"ytdPerformance"`
	RiskProfile        RiskProfile      `json:"riskProfile"`
	InceptionDate      *Date            `json:"inceptionDate,omitempty"`
	LastUpdated        *DateTime        `json:"lastUpdated"`
}
