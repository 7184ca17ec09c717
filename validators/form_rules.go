package validators

import (
	"github.com/tailored-agentic-units/formstate/fieldpath"
	"github.com/tailored-agentic-units/formstate/form"
)

// EqualFields reports message at the last listed field when the fields do
// not all hold the same value. Typical use is a password confirmation.
func EqualFields(fields []string, message string) form.FormValidator {
	message = orDefault(message, "fields do not match")
	return func(v form.View) map[string]any {
		if len(fields) < 2 {
			return nil
		}
		first := v.FieldValue(fields[0])
		for _, f := range fields[1:] {
			if !fieldpath.Equal(first, v.FieldValue(f)) {
				return fieldpath.Set(nil, fields[len(fields)-1], message)
			}
		}
		return nil
	}
}

// RequireAny reports message as the form error when none of the fields
// holds a value. Once satisfied it reports an empty form error, which
// replaces its earlier message; a form error is otherwise kept until a
// validator reports a new one.
func RequireAny(fields []string, message string) form.FormValidator {
	message = orDefault(message, "at least one field is required")
	return func(v form.View) map[string]any {
		for _, f := range fields {
			if !isEmpty(v.FieldValue(f)) {
				return map[string]any{form.FormErrorKey: ""}
			}
		}
		return map[string]any{form.FormErrorKey: message}
	}
}

// Combine runs form validators in order and deep-merges their results, so a
// later validator wins where two report the same path. A falsy form error
// never replaces a truthy one.
func Combine(validators ...form.FormValidator) form.FormValidator {
	return func(v form.View) map[string]any {
		var out map[string]any
		for _, fn := range validators {
			if fn == nil {
				continue
			}
			errs := fn(v)
			if msg, ok := errs[form.FormErrorKey]; ok && !form.Truthy(msg) && form.Truthy(out[form.FormErrorKey]) {
				errs = fieldpath.Unset(errs, form.FormErrorKey)
			}
			out = fieldpath.Merge(out, errs)
		}
		return out
	}
}
