package form

import (
	"github.com/tailored-agentic-units/formstate/fieldpath"
)

// View is a FormState plus the helpers derived from it. It is recomputed for
// every snapshot and never cached.
type View struct {
	FormState
	Dirty    bool `json:"dirty" yaml:"dirty"`
	Pristine bool `json:"pristine" yaml:"pristine"`

	initialValues map[string]any
}

// Project derives the read-only view of s.
func Project(s State) View {
	return RestoreView(s.FormState, s.initialValues)
}

// RestoreView rebuilds a view from a FormState that travelled without its
// initial values, such as one decoded from JSON. Without them the per-field
// pristine helpers compare against nothing.
func RestoreView(fs FormState, initialValues map[string]any) View {
	if initialValues == nil {
		initialValues = map[string]any{}
	}
	pristine := fieldpath.Equal(initialValues, fs.Values)
	return View{
		FormState:     fs,
		Dirty:         !pristine,
		Pristine:      pristine,
		initialValues: initialValues,
	}
}

// FieldValue returns the current value at a field path, or nil when any part
// of the path is missing.
func (v View) FieldValue(field string) any {
	return fieldpath.Value(v.Values, field)
}

// FieldError returns the error recorded at a field path, or nil.
func (v View) FieldError(field string) any {
	return fieldpath.Value(v.FieldErrors, field)
}

// InitialValue returns the construction-time value at a field path.
func (v View) InitialValue(field string) any {
	return fieldpath.Value(v.initialValues, field)
}

func (v View) FieldActive(field string) bool {
	return v.FieldStates[field].Active
}

// FieldTouched is true once the field has been blurred, or for every field
// after TouchAll.
func (v View) FieldTouched(field string) bool {
	return v.AllTouched || v.FieldStates[field].Touched
}

func (v View) FieldVisited(field string) bool {
	return v.FieldStates[field].Visited
}

// FieldPristine compares the field's current value with its initial value.
// A field without an initial value is pristine while it has no value either.
func (v View) FieldPristine(field string) bool {
	return fieldpath.Equal(v.InitialValue(field), v.FieldValue(field))
}

func (v View) FieldDirty(field string) bool {
	return !v.FieldPristine(field)
}

// Valid reports that no field error and no form error is present.
func (v View) Valid() bool {
	return !Truthy(v.FormError) && !hasError(v.FieldErrors)
}

func (v View) Invalid() bool {
	return !v.Valid()
}

func hasError(node any) bool {
	switch n := node.(type) {
	case map[string]any:
		for _, child := range n {
			if hasError(child) {
				return true
			}
		}
		return false
	case []any:
		for _, child := range n {
			if hasError(child) {
				return true
			}
		}
		return false
	default:
		return Truthy(n)
	}
}
