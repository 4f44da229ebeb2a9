package model

import "github.com/shopspring/decimal"

// Client is an end investor managed by one advisor. Accounts are value copies without a back reference.
type Client struct {
	ClientID                string           `json:"clientId"`
	ClientName              string           `json:"clientName"`
	AdvisorID               string           `json:"advisorId"`
	AdvisorName             string           `json:"advisorName,omitempty"`
	TaxID                   string           `json:"taxId,omitempty"`
	RiskProfile             RiskProfile      `json:"riskProfile"`
	ActivityStatus          ActivityStatus   `json:"activityStatus"`
	AccountCount            int              `json:"accountCount"`
	TotalMarketValue        *decimal.Decimal `json:"totalMarketValue"`
	TotalCostBasis          *decimal.Decimal `json:"totalCostBasis,omitempty"`
	TotalUnrealizedGainLoss *decimal.Decimal `json:"totalUnrealizedGainLoss,omitempty"`
	YTDPerformance          *decimal.Decimal `json:"ytdPerformance"`
	LastActivityDate        *Date            `json:"lastActivityDate"`
	LastAccessed            *DateTime        `json:"lastAccessed"`
	CreatedDate             *DateTime        `json:"createdDate,omitempty"`
	Accounts                []Account        `json:"accounts,omitempty"`
}

// HasAccountNumber reports whether any owned account carries number.
func (c Client) HasAccountNumber(number string) bool {
	for _, a := range c.Accounts {
		if a.AccountNumber == number {
			return true
		}
	}
	return false
}

func (c Client) HasAccountType(types []AccountType) bool {
	for _, a := range c.Accounts {
		for _, t := range types {
			if a.AccountType == t {
				return true
			}
		}
	}
	return false
}
