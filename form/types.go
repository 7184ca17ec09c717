package form

import "slices"

// FormErrorKey is the reserved key that carries a whole-form error inside an
// error map returned by a form validator or carried by a SubmissionError.
const FormErrorKey = "__formError"

// FieldState is the interaction status of a single field.
type FieldState struct {
	Active  bool `json:"active,omitempty" yaml:"active,omitempty"`
	Touched bool `json:"touched,omitempty" yaml:"touched,omitempty"`
	Visited bool `json:"visited,omitempty" yaml:"visited,omitempty"`
}

// FormState is the consumer-visible form state. A value is an immutable
// snapshot: reducers replace maps rather than writing into them.
type FormState struct {
	Values      map[string]any        `json:"values" yaml:"values"`
	FieldErrors map[string]any        `json:"fieldErrors" yaml:"fieldErrors"`
	FormError   any                   `json:"formError,omitempty" yaml:"formError,omitempty"`
	FieldStates map[string]FieldState `json:"fieldStates" yaml:"fieldStates"`
	ActiveField string                `json:"activeField,omitempty" yaml:"activeField,omitempty"`
	AllTouched  bool                  `json:"allTouched" yaml:"allTouched"`
	AnyTouched  bool                  `json:"anyTouched" yaml:"anyTouched"`
	Submitting  bool                  `json:"submitting" yaml:"submitting"`
}

// FieldValidator checks one field. It receives the field's current value and
// all form values, and returns an error value; any truthy result (non-nil,
// not false, not "", not numeric zero) marks the field invalid.
type FieldValidator func(value any, values map[string]any) any

// FormValidator checks the whole form. Its result is deep-merged over the
// field errors; a value under FormErrorKey becomes the form error. Nil values
// are skipped by the merge, so {FormErrorKey: nil} keeps the previous form
// error; return {FormErrorKey: ""} to clear it.
type FormValidator func(view View) map[string]any

// State is the full reducer state: FormState plus the internal fields that
// consumers never see.
type State struct {
	FormState

	validatorOrder  []string
	fieldValidators map[string][]FieldValidator
	formValidator   FormValidator
	initialValues   map[string]any
}

// NewState builds the initial state for a form. Values start equal to
// initialValues; a nil map is treated as empty.
func NewState(initialValues map[string]any) State {
	if initialValues == nil {
		initialValues = map[string]any{}
	}
	return State{
		FormState: FormState{
			Values:      initialValues,
			FieldErrors: map[string]any{},
			FieldStates: map[string]FieldState{},
		},
		fieldValidators: map[string][]FieldValidator{},
		initialValues:   initialValues,
	}
}

// InitialValues returns the values captured at construction. Callers must
// treat the map as read-only.
func (s State) InitialValues() map[string]any {
	return s.initialValues
}

// Validators returns the validators registered for a field, in run order.
func (s State) Validators(field string) []FieldValidator {
	return slices.Clone(s.fieldValidators[field])
}

// ValidatedFields returns fields with a validator registration, in
// registration order.
func (s State) ValidatedFields() []string {
	return slices.Clone(s.validatorOrder)
}

// HasFormValidator reports whether a whole-form validator is registered.
func (s State) HasFormValidator() bool {
	return s.formValidator != nil
}
