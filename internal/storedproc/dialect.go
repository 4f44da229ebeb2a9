package storedproc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/STTM-NSU/advisor-workspace/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// call is one procedure invocation inside an open transaction.
type call struct {
	tx        *sqlx.Tx
	stmts     *database.StatementCache
	procedure string
	signature []Parameter
	args      map[string]any
}

type dialect interface {
	invoke(ctx context.Context, c call) (data []Row, out map[string]any, err error)
}

func dialectFor(d database.Dialect) dialect {
	if d == database.Postgres {
		return postgresDialect{}
	}
	return mysqlDialect{}
}

func (c call) query(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	if c.stmts != nil {
		if stmt := c.stmts.Get(query); stmt != nil {
			return c.tx.StmtxContext(ctx, stmt).QueryxContext(ctx, args...)
		}
	}
	return c.tx.QueryxContext(ctx, query, args...)
}

// mysqlDialect binds OUT parameters to session variables and reads them back after the CALL.
type mysqlDialect struct{}

func (mysqlDialect) invoke(ctx context.Context, c call) ([]Row, map[string]any, error) {
	var (
		resets, placeholders, selects []string
		resetArgs, callArgs           []any
	)
	for _, p := range c.signature {
		switch p.Mode {
		case Out:
			resets = append(resets, "@"+p.Name+" = NULL")
			placeholders = append(placeholders, "@"+p.Name)
			selects = append(selects, "@"+p.Name+" AS "+p.Name)
		case InOut:
			resets = append(resets, "@"+p.Name+" = ?")
			resetArgs = append(resetArgs, c.args[p.Name])
			placeholders = append(placeholders, "@"+p.Name)
			selects = append(selects, "@"+p.Name+" AS "+p.Name)
		default:
			placeholders = append(placeholders, "?")
			callArgs = append(callArgs, c.args[p.Name])
		}
	}

	if len(resets) > 0 {
		if _, err := c.tx.ExecContext(ctx, "SET "+strings.Join(resets, ", "), resetArgs...); err != nil {
			return nil, nil, fmt.Errorf("%w: can't reset output variables", err)
		}
	}

	rows, err := c.query(ctx, "CALL "+c.procedure+"("+strings.Join(placeholders, ", ")+")", callArgs...)
	if err != nil {
		return nil, nil, err
	}
	data, err := scanFirstResultSet(rows)
	if err != nil {
		return nil, nil, err
	}

	out := make(map[string]any, len(selects))
	if len(selects) > 0 {
		if err := c.tx.QueryRowxContext(ctx, "SELECT "+strings.Join(selects, ", ")).MapScan(out); err != nil {
			return nil, nil, fmt.Errorf("%w: can't read output parameters", err)
		}
	}
	return data, normalize(out), nil
}

// postgresDialect passes NULL for OUT parameters; CALL returns them as a single row.
// A refcursor OUT parameter carries the result set.
type postgresDialect struct{}

func (postgresDialect) invoke(ctx context.Context, c call) ([]Row, map[string]any, error) {
	var (
		placeholders []string
		args         []any
		cursor       string
	)
	for _, p := range c.signature {
		if p.Mode == Out {
			placeholders = append(placeholders, "NULL")
			if p.DataType == "refcursor" && cursor == "" {
				cursor = p.Name
			}
			continue
		}
		args = append(args, c.args[p.Name])
		placeholders = append(placeholders, "$"+strconv.Itoa(len(args)))
	}

	rows, err := c.query(ctx, "CALL "+c.procedure+"("+strings.Join(placeholders, ", ")+")", args...)
	if err != nil {
		return nil, nil, err
	}
	outRows, err := scanFirstResultSet(rows)
	if err != nil {
		return nil, nil, err
	}
	out := map[string]any{}
	if len(outRows) > 0 {
		out = outRows[0]
	}

	data := []Row{}
	if name, ok := out[cursor].(string); ok && name != "" {
		cur, err := c.tx.QueryxContext(ctx, "FETCH ALL FROM "+pq.QuoteIdentifier(name))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: can't fetch cursor %s", err, name)
		}
		if data, err = scanFirstResultSet(cur); err != nil {
			return nil, nil, err
		}
		delete(out, cursor)
	}
	return data, out, nil
}

// scanFirstResultSet keeps the first result set and drains the rest.
func scanFirstResultSet(rows *sqlx.Rows) ([]Row, error) {
	defer rows.Close()

	data := []Row{}
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("%w: can't scan row", err)
		}
		data = append(data, normalize(row))
	}
	for rows.NextResultSet() {
		for rows.Next() {
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

func normalize(row map[string]any) Row {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return row
}
