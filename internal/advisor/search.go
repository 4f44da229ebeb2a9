package advisor

import (
	"cmp"
	"slices"
	"strings"

	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/shopspring/decimal"
)

// Matches applies the search criteria to one client. Blank criteria match everything.
// The performance filter is reserved and never excludes a client. Clients listed
// without accounts were already filtered by account upstream, so account criteria
// pass for them.
func Matches(c model.Client, req model.ClientSearchRequest) bool {
	noAccounts := len(c.Accounts) == 0
	if q := strings.TrimSpace(req.SearchQuery); q != "" && !noAccounts {
		if !containsFold(c.ClientName, q) && !c.HasAccountNumber(q) && c.TaxID != q {
			return false
		}
	}
	if name := strings.TrimSpace(req.ClientName); name != "" && !containsFold(c.ClientName, name) {
		return false
	}
	if n := strings.TrimSpace(req.AccountNumber); n != "" && !noAccounts && !c.HasAccountNumber(n) {
		return false
	}
	if id := strings.TrimSpace(req.TaxID); id != "" && c.TaxID != id {
		return false
	}
	if len(req.AccountTypes) > 0 && !noAccounts && !c.HasAccountType(req.AccountTypes) {
		return false
	}
	if len(req.RiskProfiles) > 0 && !slices.Contains(req.RiskProfiles, c.RiskProfile) {
		return false
	}
	if req.ActivityStatus != "" && c.ActivityStatus != req.ActivityStatus {
		return false
	}
	mv := c.TotalMarketValue
	if req.MinMarketValue != nil && (mv == nil || mv.LessThan(*req.MinMarketValue)) {
		return false
	}
	if req.MaxMarketValue != nil && (mv == nil || mv.GreaterThan(*req.MaxMarketValue)) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// SortClients orders clients in place by field. The sort is stable, so ties keep the
// upstream order. Missing keys go last ascending and first descending. An empty field
// keeps the upstream order.
func SortClients(clients []model.Client, field model.SortField, dir model.SortDirection) {
	compare := comparator(field)
	if compare == nil {
		return
	}
	if dir == model.Desc {
		slices.SortStableFunc(clients, func(a, b model.Client) int { return compare(b, a) })
		return
	}
	slices.SortStableFunc(clients, compare)
}

func comparator(field model.SortField) func(a, b model.Client) int {
	switch field {
	case model.SortByClientName:
		return func(a, b model.Client) int {
			return cmp.Compare(strings.ToLower(a.ClientName), strings.ToLower(b.ClientName))
		}
	case model.SortByMarketValue:
		return func(a, b model.Client) int { return compareDecimal(a.TotalMarketValue, b.TotalMarketValue) }
	case model.SortByYTDPerformance:
		return func(a, b model.Client) int { return compareDecimal(a.YTDPerformance, b.YTDPerformance) }
	case model.SortByLastActivity:
		return func(a, b model.Client) int {
			at, bt := a.LastAccessed, b.LastAccessed
			switch {
			case at == nil && bt == nil:
				return 0
			case at == nil:
				return 1
			case bt == nil:
				return -1
			}
			return at.Compare(bt.Time)
		}
	default:
		return nil
	}
}

// compareDecimal orders nil after every value.
func compareDecimal(a, b *decimal.Decimal) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Cmp(*b)
}
