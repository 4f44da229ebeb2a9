package upstream

import (
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
)

// translator canonicalises upstream values. Unknown enum strings become empty (null)
// and are logged.
type translator struct {
	logger logger.Logger
}

func (t translator) accountType(v model.AccountType) model.AccountType {
	if v == "" || v.Known() {
		return v
	}
	t.logger.Warnf("unknown account type %q from upstream", string(v))
	return ""
}

func (t translator) assetClass(v model.AssetClass) model.AssetClass {
	if v == "" || v.Known() {
		return v
	}
	t.logger.Warnf("unknown asset class %q from upstream", string(v))
	return ""
}

func (t translator) riskProfile(v model.RiskProfile) model.RiskProfile {
	if v == "" || v.Known() {
		return v
	}
	t.logger.Warnf("unknown risk profile %q from upstream", string(v))
	return ""
}

func (t translator) activityStatus(v model.ActivityStatus) model.ActivityStatus {
	if v == "" || v.Known() {
		return v
	}
	t.logger.Warnf("unknown activity status %q from upstream", string(v))
	return ""
}

func (t translator) account(a model.Account) model.Account {
	a.AccountType = t.accountType(a.AccountType)
	a.RiskProfile = t.riskProfile(a.RiskProfile)
	return a
}

func (t translator) clients(in []model.Client) []model.Client {
	out := make([]model.Client, 0, len(in))
	for _, c := range in {
		c.RiskProfile = t.riskProfile(c.RiskProfile)
		c.ActivityStatus = t.activityStatus(c.ActivityStatus)
		if c.Accounts != nil {
			accounts := make([]model.Account, len(c.Accounts))
			for i, a := range c.Accounts {
				accounts[i] = t.account(a)
			}
			c.Accounts = accounts
		}
		out = append(out, c)
	}
	return out
}

func (t translator) holdings(in []model.Holding) []model.Holding {
	out := make([]model.Holding, 0, len(in))
	for _, h := range in {
		h.AssetClass = t.assetClass(h.AssetClass)
		h.Derive()
		out = append(out, h)
	}
	return out
}

func (t translator) summary(s model.PortfolioSummary) model.PortfolioSummary {
	allocation := make([]model.AssetAllocation, 0, len(s.AssetAllocation))
	for _, a := range s.AssetAllocation {
		a.AssetClass = t.assetClass(a.AssetClass)
		allocation = append(allocation, a)
	}
	s.AssetAllocation = allocation
	return s
}
