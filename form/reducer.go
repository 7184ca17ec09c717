package form

import (
	"maps"
	"slices"

	"github.com/tailored-agentic-units/formstate/fieldpath"
)

// Reduce applies an action to a state and returns the next state. The second
// result is false when the action type is unknown; the input state is then
// returned untouched. Reduce never mutates s: every changed map is copied.
func Reduce(s State, a Action) (State, bool) {
	switch a.Type {
	case ActionFocus:
		states := cloneFieldStates(s.FieldStates)
		if prev, ok := states[s.ActiveField]; ok && s.ActiveField != "" {
			prev.Active = false
			states[s.ActiveField] = prev
		}
		fs := states[a.Field]
		fs.Active = true
		fs.Visited = true
		states[a.Field] = fs

		s.ActiveField = a.Field
		s.FieldStates = states
		return s, true

	case ActionBlur:
		if s.ActiveField == a.Field {
			s.ActiveField = ""
		}
		s.AnyTouched = true

		states := cloneFieldStates(s.FieldStates)
		fs, exists := states[a.Field]
		fs.Active = false
		// Under AllTouched the individual flag is not tracked.
		if !s.AllTouched {
			fs.Touched = true
			exists = true
		}
		if exists {
			states[a.Field] = fs
		}
		s.FieldStates = states
		return s, true

	case ActionChangeValue:
		s.Values = fieldpath.Set(s.Values, a.Field, a.Payload)
		return withValidation(s), true

	case ActionSetFieldValidators:
		validators := toFieldValidators(a.Payload)
		if _, exists := s.fieldValidators[a.Field]; !exists {
			s.validatorOrder = append(slices.Clone(s.validatorOrder), a.Field)
		}
		registry := make(map[string][]FieldValidator, len(s.fieldValidators)+1)
		maps.Copy(registry, s.fieldValidators)
		registry[a.Field] = validators
		s.fieldValidators = registry
		return withValidation(s), true

	case ActionSetFormValidator:
		s.formValidator = toFormValidator(a.Payload)
		return withValidation(s), true

	case ActionTouchAll:
		s.AllTouched = true
		s.AnyTouched = true
		return s, true

	case ActionValidate:
		return withValidation(s), true

	case ActionSetErrors:
		s.FormError, s.FieldErrors = splitFormError(toErrorMap(a.Payload))
		return s, true

	case ActionStartSubmit:
		s.Submitting = true
		return s, true

	case ActionSetSubmitSucceeded:
		// Field errors are left as they were.
		s.Submitting = false
		s.FormError = nil
		return s, true

	case ActionSetSubmitFailed:
		s.Submitting = false
		s.FormError, s.FieldErrors = splitFormError(toErrorMap(a.Payload))
		return s, true

	default:
		return s, false
	}
}

// withValidation recomputes errors. Field errors are always replaced; the
// form error only changes when the result carries FormErrorKey.
func withValidation(s State) State {
	formErr, fieldErrs := splitFormError(Run(s))
	s.FieldErrors = fieldErrs
	if formErr != nil {
		s.FormError = formErr
	}
	return s
}

// splitFormError separates the FormErrorKey entry from an error map. The
// returned field error map is always a fresh, non-nil map.
func splitFormError(errs map[string]any) (any, map[string]any) {
	fieldErrs := make(map[string]any, len(errs))
	var formErr any
	for k, v := range errs {
		if k == FormErrorKey {
			formErr = v
			continue
		}
		fieldErrs[k] = v
	}
	return formErr, fieldErrs
}

func cloneFieldStates(states map[string]FieldState) map[string]FieldState {
	out := make(map[string]FieldState, len(states)+1)
	maps.Copy(out, states)
	return out
}

func toFieldValidators(payload any) []FieldValidator {
	switch p := payload.(type) {
	case []FieldValidator:
		return slices.Clone(p)
	case FieldValidator:
		return []FieldValidator{p}
	case func(any, map[string]any) any:
		return []FieldValidator{p}
	default:
		return nil
	}
}

func toFormValidator(payload any) FormValidator {
	switch p := payload.(type) {
	case FormValidator:
		return p
	case func(View) map[string]any:
		return p
	default:
		return nil
	}
}

func toErrorMap(payload any) map[string]any {
	m, _ := payload.(map[string]any)
	return m
}
