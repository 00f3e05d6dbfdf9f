// Package validation checks request DTOs with go-playground/validator and
// reports failures per JSON field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/dto"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

// FieldError is one failed field, keyed by its JSON path (e.g. bill_items[0].name).
type FieldError struct {
	Field   string
	Message string
}

// Error is returned by Struct when validation fails.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Messages renders the failures as [{field: message}, ...].
func (e *Error) Messages() []interface{} {
	out := make([]interface{}, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, map[string]string{f.Field: f.Message})
	}
	return out
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		switch d := field.Interface().(type) {
		case decimal.Decimal:
			f, _ := d.Float64()
			return f
		case decimal.NullDecimal:
			if !d.Valid {
				return nil
			}
			f, _ := d.Decimal.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{}, decimal.NullDecimal{})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(dto.BillRequest)
		if !req.Subtotal.Valid {
			sl.ReportError(req.Subtotal, "subtotal", "Subtotal", "required", "")
		} else if req.Subtotal.Decimal.IsNegative() {
			sl.ReportError(req.Subtotal, "subtotal", "Subtotal", "gte", "0")
		}
		if !req.Total.Valid {
			sl.ReportError(req.Total, "total", "Total", "required", "")
		} else if req.Total.Decimal.IsNegative() {
			sl.ReportError(req.Total, "total", "Total", "gte", "0")
		}
	}, dto.BillRequest{})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(dto.BillParticipantRequest)
		if !p.Amount.Valid {
			sl.ReportError(p.Amount, "amount", "Amount", "required", "")
		}
	}, dto.BillParticipantRequest{})

	return v
}

// Struct validates s and returns an *Error describing every failed field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := &Error{Fields: make([]FieldError, 0, len(ve))}
	for _, fe := range ve {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
