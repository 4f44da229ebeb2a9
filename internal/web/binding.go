package web

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var _registerOnce sync.Once

// RegisterValidations reports json field names in validation errors and adds the
// notblank tag. It is safe to call more than once.
func RegisterValidations() {
	_registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
}

// BindJSON decodes and validates the request body into obj.
func BindJSON(c *gin.Context, obj any) error {
	RegisterValidations()
	if err := c.ShouldBindJSON(obj); err != nil {
		return BindingError(err)
	}
	return nil
}

// BindingError turns decoding and validator failures into a validation error with
// one message per field.
func BindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fe.Field()+": "+fieldMessage(fe))
		}
		return apperror.Validation("%s", strings.Join(msgs, "; "))
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return apperror.Validation("invalid number %q", numErr.Num)
	}
	return apperror.Validation("malformed request: %s", err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "must not be blank"
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be less than or equal to " + fe.Param()
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be greater than or equal to " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

// QueryInt reads an optional integer query parameter and checks it against [lo, hi].
// A negative hi means no upper bound.
func QueryInt(c *gin.Context, name string, def, lo, hi int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.FieldError(name, "must be an integer")
	}
	if v < lo {
		return 0, apperror.FieldError(name, fmt.Sprintf("must be greater than or equal to %d", lo))
	}
	if hi >= 0 && v > hi {
		return 0, apperror.FieldError(name, fmt.Sprintf("must be less than or equal to %d", hi))
	}
	return v, nil
}

// PathID reads a required identifier path parameter.
func PathID(c *gin.Context, name string, maxLen int) (string, error) {
	id := strings.TrimSpace(c.Param(name))
	if id == "" {
		return "", apperror.FieldError(name, "must not be blank")
	}
	if len(id) > maxLen {
		return "", apperror.FieldError(name, fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return id, nil
}
