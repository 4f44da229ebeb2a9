package storedproc

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/STTM-NSU/advisor-workspace/internal/database"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

const (
	CodeSuccess            = 0
	CodeUnknownError       = -1
	CodeIntegrityViolation = -2
	CodeQueryTimeout       = -3
	CodeDataAccessError    = -4
	CodeSQLState           = -5
)

const (
	ErrorCodeUnknown            = "UNKNOWN_ERROR"
	ErrorCodeIntegrityViolation = "INTEGRITY_VIOLATION"
	ErrorCodeQueryTimeout       = "QUERY_TIMEOUT"
	ErrorCodeDataAccess         = "DATA_ACCESS_ERROR"
	ErrorCodeValidation         = "VALIDATION_ERROR"
	_errorCodeSQLPrefix         = "SQL_ERROR_"
)

// mysql server error numbers
const (
	_erDupEntry            uint16 = 1062
	_erRowIsReferenced     uint16 = 1451
	_erNoReferencedRow     uint16 = 1452
	_erBadNullError        uint16 = 1048
	_erNoReferencedRowOld  uint16 = 1216
	_erRowIsReferencedOld  uint16 = 1217
	_erNoDefaultForField   uint16 = 1364
	_erDupUnique           uint16 = 1169
	_erLockWaitTimeout     uint16 = 1205
	_erQueryInterrupted    uint16 = 1317
	_erQueryTimeoutExceded uint16 = 3024
)

var (
	_mysqlIntegrity = map[uint16]bool{
		_erDupEntry: true, _erRowIsReferenced: true, _erNoReferencedRow: true, _erBadNullError: true,
		_erNoReferencedRowOld: true, _erRowIsReferencedOld: true, _erNoDefaultForField: true, _erDupUnique: true,
	}
	_mysqlTimeout = map[uint16]bool{
		_erLockWaitTimeout: true, _erQueryInterrupted: true, _erQueryTimeoutExceded: true,
	}
)

// Failure is the envelope form of a driver error.
type Failure struct {
	Code      int
	ErrorCode string
	Message   string
}

// MapError classifies a driver or pool error into an in-band failure.
func MapError(err error) Failure {
	switch {
	case err == nil:
		return Failure{Code: CodeSuccess}
	case errors.Is(err, context.DeadlineExceeded):
		return Failure{CodeQueryTimeout, ErrorCodeQueryTimeout, "Query timeout: " + err.Error()}
	case isDataAccess(err):
		return Failure{CodeDataAccessError, ErrorCodeDataAccess, "Database access error: " + err.Error()}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch {
		case _mysqlIntegrity[myErr.Number]:
			return Failure{CodeIntegrityViolation, ErrorCodeIntegrityViolation, "Data integrity violation: " + myErr.Message}
		case _mysqlTimeout[myErr.Number]:
			return Failure{CodeQueryTimeout, ErrorCodeQueryTimeout, "Query timeout: " + myErr.Message}
		default:
			return Failure{int(myErr.Number), _errorCodeSQLPrefix + strconv.Itoa(int(myErr.Number)), "SQL error: " + myErr.Message}
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "23":
			return Failure{CodeIntegrityViolation, ErrorCodeIntegrityViolation, "Data integrity violation: " + pqErr.Message}
		case pqErr.Code == "57014":
			return Failure{CodeQueryTimeout, ErrorCodeQueryTimeout, "Query timeout: " + pqErr.Message}
		case pqErr.Code.Class() == "08":
			return Failure{CodeDataAccessError, ErrorCodeDataAccess, "Database access error: " + pqErr.Message}
		default:
			return Failure{CodeSQLState, _errorCodeSQLPrefix + string(pqErr.Code), "SQL error: " + pqErr.Message}
		}
	}

	return Failure{CodeUnknownError, ErrorCodeUnknown, "Unexpected database error: " + err.Error()}
}

func isDataAccess(err error) bool {
	var netErr net.Error
	return errors.Is(err, database.ErrAcquireTimeout) ||
		errors.Is(err, database.ErrPoolClosed) ||
		errors.Is(err, ErrProcedureNotFound) ||
		errors.Is(err, errContract) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, sql.ErrTxDone) ||
		errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.As(err, &netErr)
}

// errContract marks a procedure whose signature lacks the standard output parameters.
var errContract = errors.New("procedure contract violation")

func contractError(procedure, param string) error {
	return fmt.Errorf("%w: %s does not declare OUT parameter %s", errContract, procedure, param)
}
