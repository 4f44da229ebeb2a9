package storedproc

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/STTM-NSU/advisor-workspace/internal/database"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/metrics"
)

const _queryTimeoutDefault = 30 * time.Second

// Executor runs named procedures and reports every driver outcome as a Response.
type Executor struct {
	primary      *database.Pool
	readOnly     *database.Pool
	catalog      Catalog
	queryTimeout time.Duration

	logger logger.Logger
}

// NewExecutor builds an executor; readOnly may be nil, in which case reads use primary.
func NewExecutor(primary, readOnly *database.Pool, catalog Catalog, queryTimeout time.Duration, logger logger.Logger) *Executor {
	return &Executor{
		primary:      primary,
		readOnly:     readOnly,
		catalog:      catalog,
		queryTimeout: cmp.Or(queryTimeout, _queryTimeoutDefault),
		logger:       logger.With("component", "executor"),
	}
}

// ExecuteRead runs the procedure in a read-only READ COMMITTED transaction.
func (e *Executor) ExecuteRead(ctx context.Context, name string, params map[string]any) (*Response, error) {
	return e.Execute(ctx, name, params, ModeRead)
}

// ExecuteWrite runs the procedure in a SERIALIZABLE transaction.
func (e *Executor) ExecuteWrite(ctx context.Context, name string, params map[string]any) (*Response, error) {
	return e.Execute(ctx, name, params, ModeWrite)
}

// Execute returns an error only for invalid input. Database failures come back as a
// Response with a non-zero result code.
func (e *Executor) Execute(ctx context.Context, name string, params map[string]any, mode Mode) (*Response, error) {
	if err := ValidateProcedureParameters(name, params); err != nil {
		return nil, err
	}
	args, err := mapParameters(params)
	if err != nil {
		return nil, apperror.Validation("%s", err)
	}

	pool := e.primary
	if mode == ModeRead && e.readOnly != nil {
		pool = e.readOnly
	}

	// the call outlives a disconnected caller but not the query timeout
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.queryTimeout)
	defer cancel()

	timer := metrics.NewTimer(metrics.ProcedureDuration.WithLabelValues(name, string(mode)))
	resp := e.run(ctx, pool, name, args, mode)
	elapsed := timer.ObserveDuration()

	outcome := "success"
	switch {
	case resp.ErrorCode != "":
		outcome = "driver_error"
	case !resp.Success():
		outcome = "procedure_error"
	}
	metrics.ProcedureCallsTotal.WithLabelValues(name, string(mode), outcome).Inc()
	e.logger.Debugf("procedure %s (%s) finished in %s with result code %d", name, mode, elapsed.Round(time.Millisecond), resp.ResultCode)

	return resp, nil
}

func (e *Executor) run(ctx context.Context, pool *database.Pool, name string, args map[string]any, mode Mode) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("procedure %s panicked: %v", name, r)
			resp = failed(MapError(fmt.Errorf("panic: %v", r)))
		}
	}()

	lease, err := pool.Acquire(ctx, name)
	if err != nil {
		return e.fail(name, err)
	}
	defer func() {
		if err := lease.Release(); err != nil {
			e.logger.Warnf("%s: can't release connection after %s", err, name)
		}
	}()

	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	if mode == ModeRead {
		opts = &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true}
	}
	tx, err := lease.Conn.BeginTxx(ctx, opts)
	if err != nil {
		return e.fail(name, err)
	}
	// must run before the lease is released: the connection is held until the tx ends
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			e.logger.Warnf("%s: can't roll back %s", err, name)
		}
	}()

	data, out, err := e.invoke(ctx, pool, call{tx: tx, stmts: pool.Statements(), procedure: name, args: args})
	if err != nil {
		return e.fail(name, err)
	}
	if err := tx.Commit(); err != nil {
		return e.fail(name, err)
	}

	return buildResponse(name, data, out)
}

func (e *Executor) invoke(ctx context.Context, pool *database.Pool, c call) ([]Row, map[string]any, error) {
	signature, err := e.catalog.Parameters(ctx, c.tx, pool.Dialect(), c.procedure)
	if err != nil {
		return nil, nil, err
	}
	if err := requireStandardOutputs(c.procedure, signature); err != nil {
		return nil, nil, err
	}
	c.signature = signature
	return dialectFor(pool.Dialect()).invoke(ctx, c)
}

func (e *Executor) fail(name string, err error) *Response {
	f := MapError(err)
	e.logger.Errorf("%s: procedure %s failed as %s", err, name, f.ErrorCode)
	return failed(f)
}

func requireStandardOutputs(procedure string, signature []Parameter) error {
	for _, name := range []string{ParamResultCode, ParamErrorMessage} {
		declared := false
		for _, p := range signature {
			if p.Name == name && p.IsOutput() {
				declared = true
				break
			}
		}
		if !declared {
			return contractError(procedure, name)
		}
	}
	return nil
}

func buildResponse(name string, data []Row, out map[string]any) *Response {
	outputs := Row(out).Reader()
	code := outputs.Int(ParamResultCode)
	if outputs.Err() != nil {
		return failed(MapError(outputs.Err()))
	}

	resp := &Response{ResultCode: code, Data: data, OutputParameters: out}
	if code != CodeSuccess {
		msg := outputs.String(ParamErrorMessage)
		if msg == "" {
			msg = fmt.Sprintf("Procedure %s failed with result code %d", name, code)
		}
		resp.ErrorMessage = &msg
	}
	return resp
}
