package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/bytedance/sonic"
)

const (
	AdvisorClients   = "advisorClients"
	ClientSearch     = "clientSearch"
	AccountHoldings  = "accountHoldings"
	PortfolioSummary = "portfolioSummary"
)

func ClientsKey(advisorID string, page, size int) string {
	return strings.Join([]string{advisorID, strconv.Itoa(page), strconv.Itoa(size)}, "|")
}

// SearchKey fingerprints the whole request, so equal criteria share an entry.
func SearchKey(req model.ClientSearchRequest) (string, error) {
	b, err := sonic.ConfigStd.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%w: can't fingerprint search request", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func HoldingsKey(accountID string, page, size int) string {
	return strings.Join([]string{accountID, strconv.Itoa(page), strconv.Itoa(size)}, "|")
}

func SummaryKey(accountID string) string {
	return accountID
}
