package model

// Result is the in-band outcome carried by every internal response.
type Result struct {
	ResultCode   int     `json:"resultCode"`
	ErrorMessage *string `json:"errorMessage"`
}

func (r Result) OK() bool {
	return r.ResultCode == 0
}

func (r Result) Message() string {
	if r.ErrorMessage == nil {
		return ""
	}
	return *r.ErrorMessage
}

type AdvisorClientsResponse struct {
	Clients    []Client `json:"clients"`
	TotalCount int      `json:"totalCount"`
	PageOffset int      `json:"pageOffset"`
	PageSize   int      `json:"pageSize"`
	Result
}

type ClientSearchResponse struct {
	Clients    []Client `json:"clients"`
	TotalCount int      `json:"totalCount"`
	PageOffset int      `json:"pageOffset"`
	PageSize   int      `json:"pageSize"`
	Result
}

type AccountHoldingsResponse struct {
	Holdings   []Holding `json:"holdings"`
	TotalCount int       `json:"totalCount"`
	PageOffset int       `json:"pageOffset"`
	PageSize   int       `json:"pageSize"`
	Result
}

type PortfolioSummaryResponse struct {
	PortfolioSummary
	Result
}

// HoldingsResponse is the public holdings page with the account and its summary.
type HoldingsResponse struct {
	AccountInfo   *Account          `json:"accountInfo"`
	Summary       *PortfolioSummary `json:"summary"`
	Holdings      []Holding         `json:"holdings"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
}

type ErrorResponse struct {
	Timestamp DateTime `json:"timestamp"`
	Status    int      `json:"status"`
	Error     string   `json:"error"`
	Message   string   `json:"message"`
}
