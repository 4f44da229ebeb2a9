package storedproc

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/STTM-NSU/advisor-workspace/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCatalog(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	q := sqlx.NewDb(db, "sqlmock")

	mock.ExpectQuery("FROM information_schema.PARAMETERS").
		WithArgs("sp_get_portfolio_summary").
		WillReturnRows(sqlmock.NewRows([]string{"name", "mode", "data_type"}).
			AddRow("P_ACCOUNT_ID", "in", "VARCHAR").
			AddRow("p_result_code", "OUT", "int").
			AddRow("p_error_message", "OUT", "varchar"))

	catalog := NewSchemaCatalog()
	params, err := catalog.Parameters(context.Background(), q, database.MySQL, "sp_get_portfolio_summary")
	require.NoError(t, err)
	require.Len(t, params, 3)
	assert.Equal(t, Parameter{Name: "p_account_id", Mode: In, DataType: "varchar"}, params[0])
	assert.True(t, params[1].IsOutput())

	// served from memory
	again, err := catalog.Parameters(context.Background(), q, database.MySQL, "sp_get_portfolio_summary")
	require.NoError(t, err)
	assert.Equal(t, params, again)

	mock.ExpectQuery("FROM information_schema.PARAMETERS").
		WithArgs("sp_missing").
		WillReturnRows(sqlmock.NewRows([]string{"name", "mode", "data_type"}))
	mock.ExpectQuery("FROM information_schema.ROUTINES").
		WithArgs("sp_missing").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err = catalog.Parameters(context.Background(), q, database.MySQL, "sp_missing")
	require.ErrorIs(t, err, ErrProcedureNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStaticCatalog(t *testing.T) {
	c := StaticCatalog{"sp_a": {{Name: ParamResultCode, Mode: Out}}}

	params, err := c.Parameters(context.Background(), nil, database.MySQL, "sp_a")
	require.NoError(t, err)
	assert.Len(t, params, 1)

	_, err = c.Parameters(context.Background(), nil, database.MySQL, "sp_b")
	require.ErrorIs(t, err, ErrProcedureNotFound)
}
