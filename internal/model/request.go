package model

import "github.com/shopspring/decimal"

const (
	DefaultPageSize = 50
	MaxInternalPage = 100
	MaxHoldingsPage = 1000
	MaxIDLength     = 50
	MaxSymbolLength = 20
	MaxQueryLength  = 200
)

// PerformanceFilter is reserved: it is accepted on search requests and does not filter yet.
type PerformanceFilter struct {
	MinYTDPerformance *decimal.Decimal `json:"minYtdPerformance,omitempty"`
	MaxYTDPerformance *decimal.Decimal `json:"maxYtdPerformance,omitempty"`
}

// ClientSearchRequest is shared by the public search endpoint (page/size) and the internal
// one (pageOffset/pageSize).
type ClientSearchRequest struct {
	AdvisorID         string             `json:"advisorId" binding:"required,notblank,max=50"`
	SearchQuery       string             `json:"searchQuery,omitempty" binding:"max=200"`
	ClientName        string             `json:"clientName,omitempty" binding:"max=200"`
	AccountNumber     string             `json:"accountNumber,omitempty" binding:"max=50"`
	TaxID             string             `json:"taxId,omitempty" binding:"max=50"`
	AccountTypes      []AccountType      `json:"accountTypes,omitempty"`
	RiskProfiles      []RiskProfile      `json:"riskProfiles,omitempty"`
	MinMarketValue    *decimal.Decimal   `json:"minMarketValue,omitempty"`
	MaxMarketValue    *decimal.Decimal   `json:"maxMarketValue,omitempty"`
	ActivityStatus    ActivityStatus     `json:"activityStatus,omitempty"`
	PerformanceFilter *PerformanceFilter `json:"performanceFilter,omitempty"`
	SortBy            SortField          `json:"sortBy,omitempty"`
	SortDirection     SortDirection      `json:"sortDirection,omitempty"`
	Page              *int               `json:"page,omitempty"`
	Size              *int               `json:"size,omitempty"`
	PageOffset        *int               `json:"pageOffset,omitempty"`
	PageSize          *int               `json:"pageSize,omitempty"`
}

func (r ClientSearchRequest) PageOrDefault() int {
	return intOr(r.Page, 0)
}

func (r ClientSearchRequest) SizeOrDefault() int {
	return intOr(r.Size, DefaultPageSize)
}

func (r ClientSearchRequest) PageOffsetOrDefault() int {
	return intOr(r.PageOffset, 0)
}

func (r ClientSearchRequest) PageSizeOrDefault() int {
	return intOr(r.PageSize, DefaultPageSize)
}

type HoldingsRequest struct {
	AccountID      string        `json:"accountId" binding:"max=50"`
	Symbol         string        `json:"symbol,omitempty" binding:"max=20"`
	AsOfDate       *Date         `json:"asOfDate,omitempty"`
	AssetClasses   []AssetClass  `json:"assetClasses,omitempty"`
	SortField      string        `json:"sortField,omitempty" binding:"max=50"`
	SortDirection  SortDirection `json:"sortDirection,omitempty"`
	IncludeTaxLots bool          `json:"includeTaxLots,omitempty"`
	PageOffset     *int          `json:"pageOffset,omitempty"`
	PageSize       *int          `json:"pageSize,omitempty"`
}

func (r HoldingsRequest) PageOffsetOrDefault() int {
	return intOr(r.PageOffset, 0)
}

func (r HoldingsRequest) PageSizeOrDefault() int {
	return intOr(r.PageSize, DefaultPageSize)
}

type ExportRequest struct {
	AccountID string       `json:"accountId" binding:"required,notblank,max=50"`
	Format    ExportFormat `json:"format,omitempty"`
}

func IntPtr(v int) *int {
	return &v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
