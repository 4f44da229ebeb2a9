package storedproc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/shopspring/decimal"
)

type Mode string

const (
	ModeRead  Mode = "read"
	ModeWrite Mode = "write"
)

// Row is one result-set row keyed by column name.
type Row map[string]any

// Response is the uniform outcome of a procedure call. ResultCode 0 means success.
type Response struct {
	ResultCode       int            `json:"resultCode"`
	ErrorMessage     *string        `json:"errorMessage"`
	ErrorCode        string         `json:"errorCode,omitempty"`
	Data             []Row          `json:"data"`
	OutputParameters map[string]any `json:"outputParameters"`
}

func (r *Response) Success() bool {
	return r.ResultCode == CodeSuccess
}

func (r *Response) Message() string {
	if r.ErrorMessage == nil {
		return ""
	}
	return *r.ErrorMessage
}

// Result projects the envelope outcome onto an internal response.
func (r *Response) Result() model.Result {
	return model.Result{ResultCode: r.ResultCode, ErrorMessage: r.ErrorMessage}
}

// Outputs reads OUT parameters with the same conversions as rows.
func (r *Response) Outputs() *RowReader {
	return Row(r.OutputParameters).Reader()
}

func failed(f Failure) *Response {
	msg := f.Message
	return &Response{
		ResultCode:       f.Code,
		ErrorMessage:     &msg,
		ErrorCode:        f.ErrorCode,
		Data:             []Row{},
		OutputParameters: map[string]any{},
	}
}

func (r Row) lookup(col string) (any, bool) {
	if v, ok := r[col]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, col) {
			return v, true
		}
	}
	return nil, false
}

func (r Row) Reader() *RowReader {
	return &RowReader{row: r}
}

// RowReader converts column values and keeps the first conversion error.
type RowReader struct {
	row Row
	err error
}

func (rr *RowReader) Err() error {
	return rr.err
}

func (rr *RowReader) fail(col string, v any, kind string) {
	if rr.err == nil {
		rr.err = fmt.Errorf("column %s: can't convert %T to %s", col, v, kind)
	}
}

func (rr *RowReader) String(col string) string {
	v, _ := rr.row.lookup(col)
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(model.DateTimeLayout)
	default:
		return fmt.Sprint(val)
	}
}

func (rr *RowReader) Int(col string) int {
	v, _ := rr.row.lookup(col)
	n, ok := asInt64(v)
	if !ok {
		rr.fail(col, v, "int")
	}
	return int(n)
}

func (rr *RowReader) Decimal(col string) *decimal.Decimal {
	v, _ := rr.row.lookup(col)
	if v == nil {
		return nil
	}
	d, ok := asDecimal(v)
	if !ok {
		rr.fail(col, v, "decimal")
		return nil
	}
	return &d
}

func (rr *RowReader) Bool(col string) bool {
	v, _ := rr.row.lookup(col)
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(val)
		if err != nil {
			rr.fail(col, v, "bool")
		}
		return b
	default:
		n, ok := asInt64(v)
		if !ok {
			rr.fail(col, v, "bool")
		}
		return n != 0
	}
}

func (rr *RowReader) Date(col string) *model.Date {
	t, ok := rr.time(col)
	if !ok {
		return nil
	}
	return &model.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (rr *RowReader) DateTime(col string) *model.DateTime {
	t, ok := rr.time(col)
	if !ok {
		return nil
	}
	dt := model.NewDateTime(t)
	return &dt
}

func (rr *RowReader) time(col string) (time.Time, bool) {
	v, _ := rr.row.lookup(col)
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return val, !val.IsZero()
	case string:
		if val == "" {
			return time.Time{}, false
		}
		dt, err := model.ParseDateTime(val)
		if err != nil {
			rr.fail(col, v, "time")
			return time.Time{}, false
		}
		return dt.Time, true
	default:
		rr.fail(col, v, "time")
		return time.Time{}, false
	}
}

func asInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, true
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		return int64(val), true
	case float32:
		return int64(val), true
	case float64:
		return int64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case []byte:
		return asInt64(string(val))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			d, derr := decimal.NewFromString(strings.TrimSpace(val))
			if derr != nil {
				return 0, false
			}
			return d.IntPart(), true
		}
		return n, true
	case decimal.Decimal:
		return val.IntPart(), true
	default:
		return 0, false
	}
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, true
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat32(val), true
	case []byte:
		return asDecimal(string(val))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		return d, err == nil
	default:
		n, ok := asInt64(v)
		return decimal.NewFromInt(n), ok
	}
}
