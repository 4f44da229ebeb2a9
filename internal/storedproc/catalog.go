package storedproc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/STTM-NSU/advisor-workspace/internal/database"
	"github.com/jmoiron/sqlx"
)

var ErrProcedureNotFound = errors.New("stored procedure not found")

const (
	ParamResultCode   = "p_result_code"
	ParamErrorMessage = "p_error_message"
	ParamTotalCount   = "p_total_count"
)

type ParamMode string

const (
	In    ParamMode = "IN"
	Out   ParamMode = "OUT"
	InOut ParamMode = "INOUT"
)

type Parameter struct {
	Name     string    `db:"name"`
	Mode     ParamMode `db:"mode"`
	DataType string    `db:"data_type"`
}

func (p Parameter) IsOutput() bool {
	return p.Mode == Out || p.Mode == InOut
}

// Catalog resolves a procedure's ordered signature.
type Catalog interface {
	Parameters(ctx context.Context, q sqlx.QueryerContext, dialect database.Dialect, procedure string) ([]Parameter, error)
}

const (
	_mysqlParametersQuery = `SELECT PARAMETER_NAME AS name, PARAMETER_MODE AS mode, DATA_TYPE AS data_type
FROM information_schema.PARAMETERS
WHERE SPECIFIC_SCHEMA = DATABASE() AND SPECIFIC_NAME = ? AND ROUTINE_TYPE = 'PROCEDURE'
ORDER BY ORDINAL_POSITION`
	_mysqlRoutineQuery = `SELECT COUNT(*) FROM information_schema.ROUTINES
WHERE ROUTINE_SCHEMA = DATABASE() AND ROUTINE_NAME = ? AND ROUTINE_TYPE = 'PROCEDURE'`

	_postgresParametersQuery = `SELECT p.parameter_name AS name, p.parameter_mode AS mode, p.data_type AS data_type
FROM information_schema.routines r
JOIN information_schema.parameters p ON p.specific_schema = r.specific_schema AND p.specific_name = r.specific_name
WHERE r.routine_schema = current_schema() AND r.routine_name = $1 AND r.routine_type = 'PROCEDURE'
ORDER BY p.ordinal_position`
	_postgresRoutineQuery = `SELECT COUNT(*) FROM information_schema.routines
WHERE routine_schema = current_schema() AND routine_name = $1 AND routine_type = 'PROCEDURE'`
)

// SchemaCatalog reads signatures from information_schema once per procedure.
type SchemaCatalog struct {
	mu    sync.RWMutex
	cache map[string][]Parameter
}

func NewSchemaCatalog() *SchemaCatalog {
	return &SchemaCatalog{cache: make(map[string][]Parameter)}
}

func (c *SchemaCatalog) Parameters(ctx context.Context, q sqlx.QueryerContext, dialect database.Dialect, procedure string) ([]Parameter, error) {
	key := string(dialect) + ":" + procedure

	c.mu.RLock()
	params, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return params, nil
	}

	paramsQuery, routineQuery := _mysqlParametersQuery, _mysqlRoutineQuery
	if dialect == database.Postgres {
		paramsQuery, routineQuery = _postgresParametersQuery, _postgresRoutineQuery
	}

	if err := sqlx.SelectContext(ctx, q, &params, paramsQuery, procedure); err != nil {
		return nil, fmt.Errorf("%w: can't read signature of %s", err, procedure)
	}
	if len(params) == 0 {
		var n int
		if err := sqlx.GetContext(ctx, q, &n, routineQuery, procedure); err != nil {
			return nil, fmt.Errorf("%w: can't look up %s", err, procedure)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: %s", ErrProcedureNotFound, procedure)
		}
	}
	for i := range params {
		params[i].Name = strings.ToLower(params[i].Name)
		params[i].Mode = ParamMode(strings.ToUpper(string(params[i].Mode)))
		params[i].DataType = strings.ToLower(params[i].DataType)
	}

	c.mu.Lock()
	c.cache[key] = params
	c.mu.Unlock()

	return params, nil
}

// Invalidate drops cached signatures, e.g. after a procedure was redeployed.
func (c *SchemaCatalog) Invalidate() {
	c.mu.Lock()
	c.cache = make(map[string][]Parameter)
	c.mu.Unlock()
}

// StaticCatalog serves fixed signatures.
type StaticCatalog map[string][]Parameter

func (s StaticCatalog) Parameters(_ context.Context, _ sqlx.QueryerContext, _ database.Dialect, procedure string) ([]Parameter, error) {
	params, ok := s[procedure]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProcedureNotFound, procedure)
	}
	return params, nil
}
