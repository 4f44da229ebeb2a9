package storedproc

import (
	"fmt"
	"reflect"
	"time"

	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
)

// mapParameters converts request values into driver arguments: date-times become
// timestamps, decimals their exact text and lists JSON text. Empty lists become NULL.
func mapParameters(params map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(params))
	for k, v := range params {
		mapped, err := mapValue(v)
		if err != nil {
			return nil, fmt.Errorf("%w: can't map parameter %s", err, k)
		}
		out[k] = mapped
	}
	return out, nil
}

func mapValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		if val.IsZero() {
			return nil, nil
		}
		return val, nil
	case model.DateTime:
		return mapValue(val.Time)
	case *model.DateTime:
		if val == nil {
			return nil, nil
		}
		return mapValue(val.Time)
	case model.Date:
		if val.IsZero() {
			return nil, nil
		}
		return val.Format(model.DateLayout), nil
	case *model.Date:
		if val == nil {
			return nil, nil
		}
		return mapValue(*val)
	case decimal.Decimal:
		return val.String(), nil
	case *decimal.Decimal:
		if val == nil {
			return nil, nil
		}
		return val.String(), nil
	case []byte:
		return val, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return mapValue(rv.Elem().Interface())
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return nil, nil
		}
		b, err := sonic.ConfigStd.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return nil, fmt.Errorf("unsupported parameter type %T", v)
	}
}
