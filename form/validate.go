package form

import (
	"math"
	"reflect"

	"github.com/tailored-agentic-units/formstate/fieldpath"
)

// Run executes every registered validator against s and returns the merged
// error map, which may contain FormErrorKey.
//
// Field validators run first, field by field in registration order and
// validator by validator in list order; each truthy result is written at the
// field's path, so a later validator for the same field overwrites an earlier
// one. The form validator then sees the projected view of s and its result is
// deep-merged over the field errors.
func Run(s State) map[string]any {
	view := Project(s)
	errs := map[string]any{}

	for _, field := range s.validatorOrder {
		for _, fn := range s.fieldValidators[field] {
			if fn == nil {
				continue
			}
			if err := fn(view.FieldValue(field), s.Values); Truthy(err) {
				errs = fieldpath.Set(errs, field, err)
			}
		}
	}

	if s.formValidator != nil {
		errs = fieldpath.Merge(errs, s.formValidator(view))
	}

	return errs
}

// Truthy reports whether an error value signals an error: anything except
// nil, false, the empty string, numeric zero and NaN.
func Truthy(v any) bool {
	if v == nil {
		return false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}
