package storedproc

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/STTM-NSU/advisor-workspace/internal/config"
	"github.com/STTM-NSU/advisor-workspace/internal/database"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _testCatalog = StaticCatalog{
	"sp_get_advisor_clients": {
		{Name: "p_advisor_id", Mode: In},
		{Name: "p_page_offset", Mode: In},
		{Name: "p_page_size", Mode: In},
		{Name: ParamTotalCount, Mode: Out},
		{Name: ParamResultCode, Mode: Out},
		{Name: ParamErrorMessage, Mode: Out},
	},
	"sp_get_portfolio_summary": {
		{Name: "p_account_id", Mode: In},
		{Name: "p_total_market_value", Mode: Out},
		{Name: ParamResultCode, Mode: Out},
		{Name: ParamErrorMessage, Mode: Out},
	},
	"sp_update_client": {
		{Name: "p_client_id", Mode: In},
		{Name: ParamResultCode, Mode: Out},
		{Name: ParamErrorMessage, Mode: Out},
	},
	"sp_legacy": {
		{Name: "p_client_id", Mode: In},
		{Name: ParamResultCode, Mode: Out},
	},
}

type panicCatalog struct{}

func (panicCatalog) Parameters(context.Context, sqlx.QueryerContext, database.Dialect, string) ([]Parameter, error) {
	panic("driver exploded")
}

func newMockPool(t *testing.T, name string, readOnly bool) (*database.Pool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	p, err := database.NewPool(sqlx.NewDb(db, "sqlmock"), database.MySQL, database.Options{Name: name, ReadOnly: readOnly}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		mock.ExpectClose()
		_ = p.Close()
	})
	return p, mock
}

func assertEnvelope(t *testing.T, resp *Response) {
	t.Helper()
	require.NotNil(t, resp)
	if resp.ResultCode == CodeSuccess {
		assert.Nil(t, resp.ErrorMessage)
	} else {
		require.NotNil(t, resp.ErrorMessage)
		assert.NotEmpty(t, *resp.ErrorMessage)
	}
	assert.NotNil(t, resp.Data)
	assert.NotNil(t, resp.OutputParameters)
}

func TestExecuteRead_ReturnsRowsAndOutputs(t *testing.T) {
	pool, mock := newMockPool(t, "exec-read", false)
	exec := NewExecutor(pool, nil, _testCatalog, 0, logger.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET @p_total_count = NULL, @p_result_code = NULL, @p_error_message = NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("CALL sp_get_advisor_clients(?, ?, ?, @p_total_count, @p_result_code, @p_error_message)")).
		WithArgs("advisor-001", int64(0), int64(50)).
		WillReturnRows(sqlmock.NewRows([]string{"client_id", "client_name"}).
			AddRow("client-001", []byte("John Smith")).
			AddRow("client-002", "Sarah Johnson"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT @p_total_count AS p_total_count, @p_result_code AS p_result_code, @p_error_message AS p_error_message")).
		WillReturnRows(sqlmock.NewRows([]string{"p_total_count", "p_result_code", "p_error_message"}).AddRow(int64(3), int64(0), nil))
	mock.ExpectCommit()

	resp, err := exec.ExecuteRead(context.Background(), "sp_get_advisor_clients", map[string]any{
		"p_advisor_id":  "advisor-001",
		"p_page_offset": 0,
		"p_page_size":   50,
	})
	require.NoError(t, err)
	assertEnvelope(t, resp)

	assert.True(t, resp.Success())
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "John Smith", resp.Data[0]["client_name"])
	assert.Equal(t, 3, resp.Outputs().Int(ParamTotalCount))
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 0, pool.Outstanding())
}

func TestExecuteRead_QueryTimeout(t *testing.T) {
	pool, mock := newMockPool(t, "exec-timeout", false)
	exec := NewExecutor(pool, nil, _testCatalog, 0, logger.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec("SET @p_total_market_value = NULL").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("CALL sp_get_portfolio_summary(?")).
		WithArgs("acc-001").
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	resp, err := exec.ExecuteRead(context.Background(), "sp_get_portfolio_summary", map[string]any{"p_account_id": "acc-001"})
	require.NoError(t, err)
	assertEnvelope(t, resp)

	assert.Equal(t, CodeQueryTimeout, resp.ResultCode)
	assert.Equal(t, ErrorCodeQueryTimeout, resp.ErrorCode)
	assert.True(t, strings.HasPrefix(resp.Message(), "Query timeout"), resp.Message())
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 0, pool.Outstanding())
}

func TestExecuteWrite_ProcedureResultPassesThrough(t *testing.T) {
	cases := []struct {
		name    string
		code    int64
		message any
		want    string
	}{
		{"with message", 1001, "Client not found", "Client not found"},
		{"without message", 5, nil, "Procedure sp_update_client failed with result code 5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pool, mock := newMockPool(t, "exec-write", false)
			exec := NewExecutor(pool, nil, _testCatalog, 0, logger.NewNop())

			mock.ExpectBegin()
			mock.ExpectExec("SET @p_result_code = NULL").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(regexp.QuoteMeta("CALL sp_update_client(?, @p_result_code, @p_error_message)")).
				WithArgs("client-404").
				WillReturnRows(sqlmock.NewRows([]string{"client_id"}))
			mock.ExpectQuery("SELECT @p_result_code").
				WillReturnRows(sqlmock.NewRows([]string{"p_result_code", "p_error_message"}).AddRow(tc.code, tc.message))
			mock.ExpectCommit()

			resp, err := exec.ExecuteWrite(context.Background(), "sp_update_client", map[string]any{"p_client_id": "client-404"})
			require.NoError(t, err)
			assertEnvelope(t, resp)
			assert.Equal(t, int(tc.code), resp.ResultCode)
			assert.Equal(t, tc.want, resp.Message())
			assert.Empty(t, resp.ErrorCode)
			assert.Empty(t, resp.Data)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestExecute_StatementCacheOnSingleConnectionPool(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	enabled := true
	pool, err := database.NewPool(sqlx.NewDb(db, "sqlmock"), database.MySQL, database.Options{
		Name:       "exec-stmts",
		Pool:       config.PoolConfig{MaximumPoolSize: 1, MinimumIdle: 1, ConnectionTimeout: time.Second},
		Statements: config.StatementCacheConfig{Enabled: &enabled, Size: 8, SQLLimit: 2048},
	}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		mock.ExpectClose()
		_ = pool.Close()
	})
	exec := NewExecutor(pool, nil, _testCatalog, 300*time.Millisecond, logger.NewNop())

	const call = "CALL sp_update_client(?, @p_result_code, @p_error_message)"
	expectCall := func() {
		mock.ExpectBegin()
		mock.ExpectExec("SET @p_result_code = NULL").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(call)).
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows([]string{"client_id"}))
		mock.ExpectQuery("SELECT @p_result_code").
			WillReturnRows(sqlmock.NewRows([]string{"p_result_code", "p_error_message"}).AddRow(int64(0), nil))
		mock.ExpectCommit()
	}

	// cold call: runs unprepared, the prepare follows once the connection is back
	expectCall()
	mock.ExpectPrepare(regexp.QuoteMeta(call))
	start := time.Now()
	resp, err := exec.ExecuteWrite(context.Background(), "sp_update_client", map[string]any{"p_client_id": "c1"})
	require.NoError(t, err)
	assert.True(t, resp.Success(), resp.Message())
	assert.Less(t, time.Since(start), 200*time.Millisecond)

	pool.Statements().Wait()
	assert.Equal(t, 1, pool.Statements().Len())

	// warm call: the cached statement is bound to the transaction's own connection
	expectCall()
	resp, err = exec.ExecuteWrite(context.Background(), "sp_update_client", map[string]any{"p_client_id": "c1"})
	require.NoError(t, err)
	assert.True(t, resp.Success(), resp.Message())

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 0, pool.Outstanding())
}

func TestExecuteWrite_IntegrityViolation(t *testing.T) {
	pool, mock := newMockPool(t, "exec-integrity", false)
	exec := NewExecutor(pool, nil, _testCatalog, 0, logger.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec("SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("CALL sp_update_client").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'client-001'"})
	mock.ExpectRollback()

	resp, err := exec.ExecuteWrite(context.Background(), "sp_update_client", map[string]any{"p_client_id": "client-001"})
	require.NoError(t, err)
	assertEnvelope(t, resp)
	assert.Equal(t, CodeIntegrityViolation, resp.ResultCode)
	assert.Equal(t, "Data integrity violation: Duplicate entry 'client-001'", resp.Message())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_MissingStandardOutputs(t *testing.T) {
	pool, mock := newMockPool(t, "exec-contract", false)
	exec := NewExecutor(pool, nil, _testCatalog, 0, logger.NewNop())

	mock.ExpectBegin()
	mock.ExpectRollback()

	resp, err := exec.ExecuteWrite(context.Background(), "sp_legacy", map[string]any{"p_client_id": "client-001"})
	require.NoError(t, err)
	assertEnvelope(t, resp)
	assert.Equal(t, CodeDataAccessError, resp.ResultCode)
	assert.Contains(t, resp.Message(), ParamErrorMessage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_UnknownProcedure(t *testing.T) {
	pool, mock := newMockPool(t, "exec-unknown", false)
	exec := NewExecutor(pool, nil, _testCatalog, 0, logger.NewNop())

	mock.ExpectBegin()
	mock.ExpectRollback()

	resp, err := exec.ExecuteRead(context.Background(), "sp_does_not_exist", nil)
	require.NoError(t, err)
	assertEnvelope(t, resp)
	assert.Equal(t, CodeDataAccessError, resp.ResultCode)
	assert.True(t, strings.HasPrefix(resp.Message(), "Database access error"))
}

func TestExecute_PanicIsContained(t *testing.T) {
	pool, mock := newMockPool(t, "exec-panic", false)
	exec := NewExecutor(pool, nil, panicCatalog{}, 0, logger.NewNop())

	mock.ExpectBegin()
	mock.ExpectRollback()

	var resp *Response
	require.NotPanics(t, func() {
		var err error
		resp, err = exec.ExecuteRead(context.Background(), "sp_get_portfolio_summary", map[string]any{"p_account_id": "acc-001"})
		require.NoError(t, err)
	})
	assertEnvelope(t, resp)
	assert.Equal(t, CodeUnknownError, resp.ResultCode)
	assert.Equal(t, 0, pool.Outstanding())
}

func TestExecute_ClosedPool(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	pool, err := database.NewPool(sqlx.NewDb(db, "sqlmock"), database.MySQL, database.Options{Name: "exec-closed"}, logger.NewNop())
	require.NoError(t, err)
	mock.ExpectClose()
	require.NoError(t, pool.Close())

	exec := NewExecutor(pool, nil, _testCatalog, 0, logger.NewNop())
	resp, err := exec.ExecuteWrite(context.Background(), "sp_update_client", map[string]any{"p_client_id": "client-001"})
	require.NoError(t, err)
	assertEnvelope(t, resp)
	assert.Equal(t, CodeDataAccessError, resp.ResultCode)
	assert.Equal(t, ErrorCodeDataAccess, resp.ErrorCode)
}

func TestExecute_ReadsUseReadOnlyPool(t *testing.T) {
	primary, primaryMock := newMockPool(t, "exec-primary", false)
	replica, replicaMock := newMockPool(t, "exec-replica", true)
	exec := NewExecutor(primary, replica, _testCatalog, 0, logger.NewNop())

	replicaMock.ExpectBegin()
	replicaMock.ExpectExec("SET").WillReturnResult(sqlmock.NewResult(0, 0))
	replicaMock.ExpectQuery("CALL sp_get_portfolio_summary").WillReturnRows(sqlmock.NewRows([]string{"client_id"}))
	replicaMock.ExpectQuery("SELECT @p_total_market_value").
		WillReturnRows(sqlmock.NewRows([]string{"p_total_market_value", "p_result_code", "p_error_message"}).AddRow("250000.00", int64(0), nil))
	replicaMock.ExpectCommit()

	resp, err := exec.ExecuteRead(context.Background(), "sp_get_portfolio_summary", map[string]any{"p_account_id": "acc-001"})
	require.NoError(t, err)
	assert.True(t, resp.Success())
	assert.Equal(t, "250000", resp.Outputs().Decimal("p_total_market_value").String())

	require.NoError(t, replicaMock.ExpectationsWereMet())
	require.NoError(t, primaryMock.ExpectationsWereMet())
}

func TestExecute_ValidationIsReturned(t *testing.T) {
	pool, mock := newMockPool(t, "exec-validation", false)
	exec := NewExecutor(pool, nil, _testCatalog, 0, logger.NewNop())

	resp, err := exec.ExecuteRead(context.Background(), "sp_x", map[string]any{"p_name": "Robert'); DROP TABLE clients;--"})
	assert.Nil(t, resp)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	require.NoError(t, mock.ExpectationsWereMet())
}
