package storedproc

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/STTM-NSU/advisor-workspace/internal/database"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		code      int
		errorCode string
		prefix    string
	}{
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), CodeQueryTimeout, ErrorCodeQueryTimeout, "Query timeout: "},
		{"mysql timeout", &mysql.MySQLError{Number: 3024, Message: "maximum statement execution time exceeded"}, CodeQueryTimeout, ErrorCodeQueryTimeout, "Query timeout: "},
		{"mysql lock wait", &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}, CodeQueryTimeout, ErrorCodeQueryTimeout, "Query timeout: "},
		{"pq canceled", &pq.Error{Code: "57014", Message: "canceling statement due to statement timeout"}, CodeQueryTimeout, ErrorCodeQueryTimeout, "Query timeout: "},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, CodeIntegrityViolation, ErrorCodeIntegrityViolation, "Data integrity violation: "},
		{"mysql foreign key", &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}, CodeIntegrityViolation, ErrorCodeIntegrityViolation, "Data integrity violation: "},
		{"pq unique", &pq.Error{Code: "23505", Message: "duplicate key value"}, CodeIntegrityViolation, ErrorCodeIntegrityViolation, "Data integrity violation: "},
		{"acquire timeout", fmt.Errorf("%w: pool primary", database.ErrAcquireTimeout), CodeDataAccessError, ErrorCodeDataAccess, "Database access error: "},
		{"pool closed", database.ErrPoolClosed, CodeDataAccessError, ErrorCodeDataAccess, "Database access error: "},
		{"bad conn", driver.ErrBadConn, CodeDataAccessError, ErrorCodeDataAccess, "Database access error: "},
		{"conn done", sql.ErrConnDone, CodeDataAccessError, ErrorCodeDataAccess, "Database access error: "},
		{"invalid conn", mysql.ErrInvalidConn, CodeDataAccessError, ErrorCodeDataAccess, "Database access error: "},
		{"missing procedure", fmt.Errorf("%w: sp_nope", ErrProcedureNotFound), CodeDataAccessError, ErrorCodeDataAccess, "Database access error: "},
		{"contract", contractError("sp_x", ParamResultCode), CodeDataAccessError, ErrorCodeDataAccess, "Database access error: "},
		{"pq connection", &pq.Error{Code: "08006", Message: "connection failure"}, CodeDataAccessError, ErrorCodeDataAccess, "Database access error: "},
		{"mysql other", &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, 1146, "SQL_ERROR_1146", "SQL error: "},
		{"pq other", &pq.Error{Code: "42P01", Message: "relation does not exist"}, CodeSQLState, "SQL_ERROR_42P01", "SQL error: "},
		{"unknown", errors.New("boom"), CodeUnknownError, ErrorCodeUnknown, "Unexpected database error: "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := MapError(tc.err)
			assert.Equal(t, tc.code, f.Code)
			assert.Equal(t, tc.errorCode, f.ErrorCode)
			assert.True(t, strings.HasPrefix(f.Message, tc.prefix), f.Message)
			assert.NotEqual(t, CodeSuccess, f.Code)
		})
	}

	assert.Equal(t, Failure{Code: CodeSuccess}, MapError(nil))
}

func TestMapParameters(t *testing.T) {
	at := time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)
	mapped, err := mapParameters(map[string]any{
		"p_as_of":     model.NewDateTime(at),
		"p_date":      model.NewDate(2024, time.March, 1),
		"p_nil_date":  (*model.Date)(nil),
		"p_amount":    model.Dec("1250.50"),
		"p_price":     decimal.RequireFromString("10.01"),
		"p_types":     []model.AccountType{model.IRA, model.Trust},
		"p_empty":     []model.AssetClass{},
		"p_risk":      model.Moderate,
		"p_offset":    10,
		"p_size":      model.IntPtr(50),
		"p_taxlots":   true,
		"p_zero_time": time.Time{},
	})
	require.NoError(t, err)

	assert.Equal(t, at, mapped["p_as_of"])
	assert.Equal(t, "2024-03-01", mapped["p_date"])
	assert.Nil(t, mapped["p_nil_date"])
	assert.Equal(t, "1250.5", mapped["p_amount"])
	assert.Equal(t, "10.01", mapped["p_price"])
	assert.Equal(t, `["IRA","TRUST"]`, mapped["p_types"])
	assert.Nil(t, mapped["p_empty"])
	assert.Equal(t, "MODERATE", mapped["p_risk"])
	assert.Equal(t, int64(10), mapped["p_offset"])
	assert.Equal(t, int64(50), mapped["p_size"])
	assert.Equal(t, true, mapped["p_taxlots"])
	assert.Nil(t, mapped["p_zero_time"])

	_, err = mapParameters(map[string]any{"p_bad": struct{}{}})
	require.Error(t, err)
}

func TestRowReader(t *testing.T) {
	row := Row{
		"CLIENT_ID":          "client-001",
		"account_count":      int64(2),
		"total_market_value": "3650000.00",
		"ytd_performance":    10.8,
		"last_activity_date": time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		"created_date":       "2020-03-15 09:00:00",
		"has_alerts":         int64(1),
		"missing":            nil,
	}
	rr := row.Reader()

	assert.Equal(t, "client-001", rr.String("client_id"))
	assert.Equal(t, 2, rr.Int("account_count"))
	assert.True(t, model.Dec("3650000").Equal(*rr.Decimal("total_market_value")))
	assert.True(t, model.Dec("10.8").Equal(*rr.Decimal("ytd_performance")))
	assert.Nil(t, rr.Decimal("missing"))
	assert.Equal(t, "2024-01-15", rr.Date("last_activity_date").String())
	assert.Equal(t, 2020, rr.DateTime("created_date").Year())
	assert.True(t, rr.Bool("has_alerts"))
	assert.Nil(t, rr.Date("missing"))
	require.NoError(t, rr.Err())

	rr.Int("client_id")
	require.Error(t, rr.Err())
}
