package model

import (
	"strings"

	"github.com/bytedance/sonic"
)

type AccountType string

const (
	Individual AccountType = "INDIVIDUAL"
	Joint      AccountType = "JOINT"
	IRA        AccountType = "IRA"
	Trust      AccountType = "TRUST"
	Corporate  AccountType = "CORPORATE"
	UMA        AccountType = "UMA"
)

type AssetClass string

const (
	Equity      AssetClass = "EQUITY"
	FixedIncome AssetClass = "FIXED_INCOME"
	Alternative AssetClass = "ALTERNATIVE"
	Cash        AssetClass = "CASH"
	Derivative  AssetClass = "DERIVATIVE"
)

type RiskProfile string

const (
	Conservative RiskProfile = "CONSERVATIVE"
	Moderate     RiskProfile = "MODERATE"
	Aggressive   RiskProfile = "AGGRESSIVE"
)

type ActivityStatus string

const (
	Active   ActivityStatus = "ACTIVE"
	Inactive ActivityStatus = "INACTIVE"
	Dormant  ActivityStatus = "DORMANT"
)

type SortField string

const (
	SortByClientName     SortField = "CLIENT_NAME"
	SortByMarketValue    SortField = "MARKET_VALUE"
	SortByLastActivity   SortField = "LAST_ACTIVITY"
	SortByYTDPerformance SortField = "YTD_PERFORMANCE"
)

type SortDirection string

const (
	Asc  SortDirection = "ASC"
	Desc SortDirection = "DESC"
)

type ExportFormat string

const (
	ExportExcel ExportFormat = "EXCEL"
	ExportCSV   ExportFormat = "CSV"
	ExportPDF   ExportFormat = "PDF"
)

var (
	_accountTypes   = []AccountType{Individual, Joint, IRA, Trust, Corporate, UMA}
	_assetClasses   = []AssetClass{Equity, FixedIncome, Alternative, Cash, Derivative}
	_riskProfiles   = []RiskProfile{Conservative, Moderate, Aggressive}
	_activityStatus = []ActivityStatus{Active, Inactive, Dormant}
	_sortFields     = []SortField{SortByClientName, SortByMarketValue, SortByLastActivity, SortByYTDPerformance}
	_sortDirections = []SortDirection{Asc, Desc}
	_exportFormats  = []ExportFormat{ExportExcel, ExportCSV, ExportPDF}
)

func AccountTypes() []AccountType        { return append([]AccountType(nil), _accountTypes...) }
func AssetClasses() []AssetClass         { return append([]AssetClass(nil), _assetClasses...) }
func RiskProfiles() []RiskProfile        { return append([]RiskProfile(nil), _riskProfiles...) }
func ActivityStatuses() []ActivityStatus { return append([]ActivityStatus(nil), _activityStatus...) }
func SortFields() []SortField            { return append([]SortField(nil), _sortFields...) }
func ExportFormats() []ExportFormat      { return append([]ExportFormat(nil), _exportFormats...) }

func ParseAccountType(s string) (AccountType, bool)       { return parseEnum(s, _accountTypes) }
func ParseAssetClass(s string) (AssetClass, bool)         { return parseEnum(s, _assetClasses) }
func ParseRiskProfile(s string) (RiskProfile, bool)       { return parseEnum(s, _riskProfiles) }
func ParseActivityStatus(s string) (ActivityStatus, bool) { return parseEnum(s, _activityStatus) }
func ParseSortField(s string) (SortField, bool)           { return parseEnum(s, _sortFields) }
func ParseSortDirection(s string) (SortDirection, bool)   { return parseEnum(s, _sortDirections) }
func ParseExportFormat(s string) (ExportFormat, bool)     { return parseEnum(s, _exportFormats) }

func (t AccountType) Known() bool    { _, ok := ParseAccountType(string(t)); return ok }
func (a AssetClass) Known() bool     { _, ok := ParseAssetClass(string(a)); return ok }
func (r RiskProfile) Known() bool    { _, ok := ParseRiskProfile(string(r)); return ok }
func (s ActivityStatus) Known() bool { _, ok := ParseActivityStatus(string(s)); return ok }

func parseEnum[T ~string](s string, known []T) (T, bool) {
	s = strings.TrimSpace(s)
	for _, k := range known {
		if strings.EqualFold(s, string(k)) {
			return k, true
		}
	}
	return "", false
}

// Empty enum values are written as JSON null.
func marshalEnum(s string) ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return sonic.ConfigStd.Marshal(s)
}

// unmarshalEnum canonicalises the case of known values and keeps unknown ones verbatim,
// so translation can report them.
func unmarshalEnum[T ~string](data []byte, known []T) (T, error) {
	if string(data) == "null" {
		return "", nil
	}
	var raw string
	if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
		return "", err
	}
	if v, ok := parseEnum(raw, known); ok {
		return v, nil
	}
	return T(raw), nil
}

func (t AccountType) MarshalJSON() ([]byte, error) { return marshalEnum(string(t)) }
func (t *AccountType) UnmarshalJSON(b []byte) (err error) {
	*t, err = unmarshalEnum(b, _accountTypes)
	return err
}

func (a AssetClass) MarshalJSON() ([]byte, error) { return marshalEnum(string(a)) }
func (a *AssetClass) UnmarshalJSON(b []byte) (err error) {
	*a, err = unmarshalEnum(b, _assetClasses)
	return err
}

func (r RiskProfile) MarshalJSON() ([]byte, error) { return marshalEnum(string(r)) }
func (r *RiskProfile) UnmarshalJSON(b []byte) (err error) {
	*r, err = unmarshalEnum(b, _riskProfiles)
	return err
}

func (s ActivityStatus) MarshalJSON() ([]byte, error) { return marshalEnum(string(s)) }
func (s *ActivityStatus) UnmarshalJSON(b []byte) (err error) {
	*s, err = unmarshalEnum(b, _activityStatus)
	return err
}

func (f SortField) MarshalJSON() ([]byte, error) { return marshalEnum(string(f)) }
func (f *SortField) UnmarshalJSON(b []byte) (err error) {
	*f, err = unmarshalEnum(b, _sortFields)
	return err
}

func (d SortDirection) MarshalJSON() ([]byte, error) { return marshalEnum(string(d)) }
func (d *SortDirection) UnmarshalJSON(b []byte) (err error) {
	*d, err = unmarshalEnum(b, _sortDirections)
	return err
}

func (f ExportFormat) MarshalJSON() ([]byte, error) { return marshalEnum(string(f)) }
func (f *ExportFormat) UnmarshalJSON(b []byte) (err error) {
	*f, err = unmarshalEnum(b, _exportFormats)
	return err
}
