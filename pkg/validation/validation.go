// Package validation runs go-playground/validator rules and turns failures into
// field -> human readable messages.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a field path such as "email" or "addresses.0.address" to its messages.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: validate}
}

// Struct validates s using its `validate` tags. Only the first failing rule of
// each field is reported.
func (v *Validator) Struct(s interface{}) Errors {
	errs := Errors{}

	err := v.validate.Struct(s)
	if err == nil {
		return errs
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		errs.Add("request", err.Error())
		return errs
	}

	for _, fe := range validationErrs {
		field := fieldPath(fe.Namespace())
		errs.Add(field, message(field, fe))
	}

	return errs
}

// Var checks value against each tag in turn and records every failure. A failed
// "required" stops the remaining rules for that field.
func (v *Validator) Var(errs Errors, field string, value interface{}, tags ...string) {
	for _, tag := range tags {
		err := v.validate.Var(value, tag)
		if err == nil {
			continue
		}

		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			errs.Add(field, err.Error())
			return
		}

		for _, fe := range validationErrs {
			errs.Add(field, message(field, fe))
		}

		if tag == "required" {
			return
		}
	}
}

// Confirmed adds the confirmation mismatch message when value is set and differs
// from its confirmation.
func (v *Validator) Confirmed(errs Errors, field, value, confirmation string) {
	if value != "" && value != confirmation {
		errs.Add(field, fmt.Sprintf("The %s field confirmation does not match.", displayName(field)))
	}
}

// Prices decodes a currency-code -> amount object. It must be a non-empty JSON
// object; a JSON-encoded string is rejected.
func (v *Validator) Prices(errs Errors, field string, raw json.RawMessage) map[string]float64 {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) ||
		bytes.Equal(trimmed, []byte(`""`)) || bytes.Equal(trimmed, []byte("[]")) {
		errs.Add(field, requiredMessage(field))
		return nil
	}

	if trimmed[0] != '{' {
		errs.Add(field, fmt.Sprintf("The %s field must be an object.", displayName(field)))
		return nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		errs.Add(field, fmt.Sprintf("The %s field must be an object.", displayName(field)))
		return nil
	}

	if len(entries) == 0 {
		errs.Add(field, requiredMessage(field))
		return nil
	}

	codes := make([]string, 0, len(entries))
	for code := range entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	prices := make(map[string]float64, len(entries))
	before := len(errs)
	for _, code := range codes {
		entryField := field + "." + code
		v.Var(errs, entryField, code, "iso4217")

		var amount float64
		if err := json.Unmarshal(entries[code], &amount); err != nil {
			errs.Add(entryField, fmt.Sprintf("The %s field must be a number.", entryField))
			continue
		}

		v.Var(errs, entryField, amount, "gte=0")
		prices[code] = amount
	}

	if len(errs) != before {
		return nil
	}

	return prices
}

// TypeMismatch turns a JSON type error, possibly wrapped, into a field error.
// It reports false for any other error or when the offending value has no
// field name.
func TypeMismatch(err error) (Errors, bool) {
	var ute *json.UnmarshalTypeError
	if !errors.As(err, &ute) || ute.Field == "" || ute.Type == nil {
		return nil, false
	}

	errs := Errors{}
	errs.Add(ute.Field, typeMessage(ute.Field, ute.Type))
	return errs, true
}

func typeMessage(field string, t reflect.Type) string {
	name := displayName(field)

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("The %s field must be an integer.", name)
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("The %s field must be a number.", name)
	case reflect.String:
		return fmt.Sprintf("The %s field must be a string.", name)
	case reflect.Bool:
		return fmt.Sprintf("The %s field must be true or false.", name)
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("The %s field must be an array.", name)
	case reflect.Map, reflect.Struct:
		return fmt.Sprintf("The %s field must be an object.", name)
	default:
		return fmt.Sprintf("The %s field is invalid.", name)
	}
}

func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		namespace = namespace[idx+1:]
	}

	namespace = strings.ReplaceAll(namespace, "[", ".")
	return strings.ReplaceAll(namespace, "]", "")
}

func displayName(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func requiredMessage(field string) string {
	return fmt.Sprintf("The %s field is required.", displayName(field))
}

func message(field string, fe validator.FieldError) string {
	name := displayName(field)

	switch fe.Tag() {
	case "required":
		return requiredMessage(field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", name)
	case "min", "gte":
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("The %s field must be at least %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s.", name, fe.Param())
	case "max", "lte":
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("The %s field must not be greater than %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s.", name, fe.Param())
	case "iso4217":
		return fmt.Sprintf("The %s field must be a valid currency code.", name)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	default:
		return fmt.Sprintf("The %s field is invalid.", name)
	}
}

func isLengthKind(kind reflect.Kind) bool {
	return kind == reflect.String || kind == reflect.Slice || kind == reflect.Map || kind == reflect.Array
}
