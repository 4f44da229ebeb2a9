package storedproc

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/shopspring/decimal"
)

const (
	_maxStringLength  = 1000
	_maxDecimalPlaces = 6
)

var (
	_identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// Comment starters and statement terminators are rejected anywhere in a value.
	_symbolTokens = []string{"--", ";", "/*", "*/"}

	// Meta-commands and statement verbs are rejected when the value also carries a quote,
	// which is what breaking out of a literal needs. Plain text such as "Union Bank" passes.
	_keywordTokens = regexp.MustCompile(`(?i)(\b(exec|execute|select|insert|update|delete|drop|create|alter|truncate|union|join|grant)\b|\b(xp|sp)_\w*)`)
	_quotes        = "'\"`"
)

// InjectionTokens lists the symbolic and keyword tokens the validator refuses.
func InjectionTokens() []string {
	return append(append([]string(nil), _symbolTokens...),
		"exec", "execute", "select", "insert", "update", "delete", "drop", "create", "alter",
		"truncate", "union", "join", "grant", "xp_", "sp_")
}

func ValidateProcedureName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperror.FieldError("procedureName", "procedure name cannot be empty")
	}
	if !_identifier.MatchString(name) {
		return apperror.FieldError("procedureName", "procedure name contains invalid characters")
	}
	return nil
}

// ValidateProcedureParameters checks the procedure name and every parameter before a call.
func ValidateProcedureParameters(name string, params map[string]any) error {
	if err := ValidateProcedureName(name); err != nil {
		return err
	}
	for key, value := range params {
		if strings.TrimSpace(key) == "" || !_identifier.MatchString(key) {
			return apperror.FieldError("parameters", fmt.Sprintf("invalid parameter name %q", key))
		}
		if err := validateValue(key, reflect.ValueOf(value)); err != nil {
			return err
		}
	}
	return nil
}

func ContainsSQLInjection(s string) bool {
	for _, tok := range _symbolTokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return strings.ContainsAny(s, _quotes) && _keywordTokens.MatchString(s)
}

func validateValue(name string, v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}

	switch val := v.Interface().(type) {
	case decimal.Decimal:
		return validateDecimal(name, val)
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		return validateDecimal(name, *val)
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return validateValue(name, v.Elem())
	case reflect.String:
		return validateString(name, v.String())
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := range v.Len() {
			if err := validateValue(name, v.Index(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateString(name, s string) error {
	if len(s) > _maxStringLength {
		return apperror.FieldError(name, fmt.Sprintf("parameter '%s' exceeds maximum length of %d characters", name, _maxStringLength))
	}
	if ContainsSQLInjection(s) {
		return apperror.FieldError(name, fmt.Sprintf("parameter '%s' contains potentially malicious content", name))
	}
	return nil
}

func validateDecimal(name string, d decimal.Decimal) error {
	if -d.Exponent() > _maxDecimalPlaces && !d.Equal(d.Round(_maxDecimalPlaces)) {
		return apperror.FieldError(name, fmt.Sprintf("parameter '%s' exceeds %d decimal places", name, _maxDecimalPlaces))
	}
	return nil
}
