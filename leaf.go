package validy

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"

	"github.com/spf13/cast"
)

// leafValidator checks a value against a flat set of constraints of one kind. The engine is passed
// so that a leaf may recurse (arrays do for OfType).
type leafValidator func(ctx context.Context, value any, s *Schema, e *Engine) (Result, error)

// leafFor returns the leaf validator of k, or nil for kinds validated elsewhere (object).
func leafFor(k Kind) leafValidator {
	switch k {
	case KindNumber:
		return validateNumber
	case KindString:
		return validateString
	case KindArray:
		return validateArray
	}
	return nil
}

// typeName names the runtime type of v the way error messages report it.
func typeName(v any) string {
	if isNil(v) {
		return "nil"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Func:
		return "function"
	case reflect.Pointer:
		if reflect.ValueOf(v).Elem().Kind() == reflect.Struct {
			return "object"
		}
	}
	return fmt.Sprintf("%T", v)
}

func typeMismatch(want Kind, v any) Result {
	return Invalid(fmt.Sprintf("expected to have type='%s', but saw '%s' instead", want, typeName(v)))
}

// checkAbsent handles nil values. done is false when value is present and must be checked further.
func checkAbsent(value any, s *Schema) (res Result, done bool) {
	if !isNil(value) {
		return Result{}, false
	}
	if isFalse(s.IsRequired) || isTrue(s.IsNullable) {
		return Valid(), true
	}
	return Invalid("is required"), true
}

func validateNumber(_ context.Context, value any, s *Schema, _ *Engine) (Result, error) {
	if res, done := checkAbsent(value, s); done {
		return res, nil
	}
	rv := reflect.ValueOf(value)
	var n float64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n = float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		n = rv.Float()
	default:
		return typeMismatch(KindNumber, value), nil
	}

	var errs []string
	if isTrue(s.EnsureNotNaN) && math.IsNaN(n) {
		errs = append(errs, "expected not to be NaN")
	}
	if isTrue(s.EnsureIsFinite) && math.IsInf(n, 0) {
		errs = append(errs, "expected to be a finite number")
	}
	if isTrue(s.IsInteger) && n != math.Trunc(n) {
		errs = append(errs, fmt.Sprintf("expected to be an integer, but saw %v", n))
	}
	if s.Min != nil && n < *s.Min {
		errs = append(errs, fmt.Sprintf("expected to be greater than or equal to %v, but saw %v", *s.Min, n))
	}
	if s.Max != nil && n > *s.Max {
		errs = append(errs, fmt.Sprintf("expected to be less than or equal to %v, but saw %v", *s.Max, n))
	}
	if s.Equals != nil {
		want, err := cast.ToFloat64E(s.Equals)
		if err != nil {
			return Result{}, schemaErrorf(ErrUnknownSchema, "number schema equals %v: %v", s.Equals, err)
		}
		if n != want {
			errs = append(errs, fmt.Sprintf("expected to be equal to %v, but saw %v", want, n))
		}
	}
	if len(errs) > 0 {
		return Invalid(errs...), nil
	}
	return Valid(), nil
}

func validateString(_ context.Context, value any, s *Schema, _ *Engine) (Result, error) {
	if res, done := checkAbsent(value, s); done {
		return res, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.String {
		return typeMismatch(KindString, value), nil
	}
	str := rv.String()

	var errs []string
	if s.Equals != nil {
		if want, ok := s.Equals.(string); !ok || want != str {
			errs = append(errs, fmt.Sprintf("expected to be equal to %q, but saw %q", fmt.Sprint(s.Equals), str))
		}
	}
	n := utf8.RuneCountInString(str)
	if s.MinLength != nil && n < *s.MinLength {
		errs = append(errs, fmt.Sprintf("expected to be at least %d characters long, but was %d", *s.MinLength, n))
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		errs = append(errs, fmt.Sprintf("expected to be at most %d characters long, but was %d", *s.MaxLength, n))
	}
	if s.Matches != nil && !s.Matches.MatchString(str) {
		errs = append(errs, fmt.Sprintf("expected to match %s", s.Matches))
	}
	if len(errs) > 0 {
		return Invalid(errs...), nil
	}
	return Valid(), nil
}

func validateArray(ctx context.Context, value any, s *Schema, e *Engine) (Result, error) {
	if res, done := checkAbsent(value, s); done {
		return res, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return typeMismatch(KindArray, value), nil
	}

	var errs []string
	n := rv.Len()
	if s.MinLength != nil && n < *s.MinLength {
		errs = append(errs, fmt.Sprintf("expected to have at least %d items, but had %d", *s.MinLength, n))
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		errs = append(errs, fmt.Sprintf("expected to have at most %d items, but had %d", *s.MaxLength, n))
	}
	if s.OfType != nil {
		for i := range n {
			res, err := e.validateRef(ctx, s.OfType, rv.Index(i).Interface())
			if err != nil {
				return Result{}, err
			}
			errs = append(errs, res.prefixed(fmt.Sprintf("[%d]", i)).Errors...)
		}
	}
	if len(errs) > 0 {
		return Invalid(errs...), nil
	}
	return Valid(), nil
}
