package validators

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/tailored-agentic-units/formstate/fieldpath"
	"github.com/tailored-agentic-units/formstate/form"
)

// Every rule except Required passes empty values, so optional fields only
// fail when something was entered.

// Required fails on nil, the empty string, and empty lists or maps.
func Required(message string) form.FieldValidator {
	message = orDefault(message, "required")
	return func(value any, _ map[string]any) any {
		if isEmpty(value) {
			return message
		}
		return nil
	}
}

// MinLength fails when a string has fewer than n characters or a list fewer
// than n items.
func MinLength(n int, message string) form.FieldValidator {
	message = orDefault(message, fmt.Sprintf("must be at least %d characters", n))
	return func(value any, _ map[string]any) any {
		if l, ok := length(value); ok && !isEmpty(value) && l < n {
			return message
		}
		return nil
	}
}

// MaxLength fails when a string has more than n characters or a list more
// than n items.
func MaxLength(n int, message string) form.FieldValidator {
	message = orDefault(message, fmt.Sprintf("must be at most %d characters", n))
	return func(value any, _ map[string]any) any {
		if l, ok := length(value); ok && l > n {
			return message
		}
		return nil
	}
}

// Pattern fails when a string value does not match re.
func Pattern(re *regexp.Regexp, message string) form.FieldValidator {
	message = orDefault(message, "invalid format")
	return func(value any, _ map[string]any) any {
		if isEmpty(value) {
			return nil
		}
		s, ok := value.(string)
		if !ok || !re.MatchString(s) {
			return message
		}
		return nil
	}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func Email(message string) form.FieldValidator {
	return Pattern(emailPattern, orDefault(message, "invalid email"))
}

// OneOf fails when the value is not structurally equal to any option.
func OneOf(options []any, message string) form.FieldValidator {
	message = orDefault(message, "not an allowed value")
	return func(value any, _ map[string]any) any {
		if isEmpty(value) {
			return nil
		}
		if slices.ContainsFunc(options, func(o any) bool { return fieldpath.Equal(o, value) }) {
			return nil
		}
		return message
	}
}

// Min fails when a numeric value, or a numeric string, is below n.
func Min(n float64, message string) form.FieldValidator {
	message = orDefault(message, fmt.Sprintf("must be at least %v", n))
	return func(value any, _ map[string]any) any {
		if isEmpty(value) {
			return nil
		}
		if f, ok := number(value); !ok || f < n {
			return message
		}
		return nil
	}
}

// Max fails when a numeric value, or a numeric string, is above n.
func Max(n float64, message string) form.FieldValidator {
	message = orDefault(message, fmt.Sprintf("must be at most %v", n))
	return func(value any, _ map[string]any) any {
		if isEmpty(value) {
			return nil
		}
		if f, ok := number(value); !ok || f > n {
			return message
		}
		return nil
	}
}

func requiredFactory(_ any, message string) (form.FieldValidator, error) {
	return Required(message), nil
}

func minLengthFactory(arg any, message string) (form.FieldValidator, error) {
	n, err := intArg(arg)
	if err != nil {
		return nil, err
	}
	return MinLength(n, message), nil
}

func maxLengthFactory(arg any, message string) (form.FieldValidator, error) {
	n, err := intArg(arg)
	if err != nil {
		return nil, err
	}
	return MaxLength(n, message), nil
}

func patternFactory(arg any, message string) (form.FieldValidator, error) {
	expr, ok := arg.(string)
	if !ok {
		return nil, fmt.Errorf("%w: pattern must be a string, got %T", ErrInvalidArgument, arg)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return Pattern(re, message), nil
}

func emailFactory(_ any, message string) (form.FieldValidator, error) {
	return Email(message), nil
}

func oneOfFactory(arg any, message string) (form.FieldValidator, error) {
	options, ok := arg.([]any)
	if !ok || len(options) == 0 {
		return nil, fmt.Errorf("%w: oneOf needs a non-empty list", ErrInvalidArgument)
	}
	return OneOf(options, message), nil
}

func minFactory(arg any, message string) (form.FieldValidator, error) {
	n, ok := number(arg)
	if !ok {
		return nil, fmt.Errorf("%w: min must be a number, got %v", ErrInvalidArgument, arg)
	}
	return Min(n, message), nil
}

func maxFactory(arg any, message string) (form.FieldValidator, error) {
	n, ok := number(arg)
	if !ok {
		return nil, fmt.Errorf("%w: max must be a number, got %v", ErrInvalidArgument, arg)
	}
	return Max(n, message), nil
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func length(value any) (int, bool) {
	switch v := value.(type) {
	case string:
		return utf8.RuneCountInString(v), true
	case []any:
		return len(v), true
	}
	return 0, false
}

// number accepts any Go numeric kind and strings holding a decimal number.
func number(value any) (float64, bool) {
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func intArg(arg any) (int, error) {
	f, ok := number(arg)
	if !ok || f < 0 || f != float64(int(f)) {
		return 0, fmt.Errorf("%w: want a non-negative integer, got %v", ErrInvalidArgument, arg)
	}
	return int(f), nil
}
