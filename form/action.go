package form

// ActionType identifies a state transition.
type ActionType string

const (
	ActionFocus              ActionType = "FOCUS"
	ActionBlur               ActionType = "BLUR"
	ActionChangeValue        ActionType = "CHANGE_VALUE"
	ActionSetFieldValidators ActionType = "SET_FIELD_VALIDATORS"
	ActionSetFormValidator   ActionType = "SET_FORM_VALIDATOR"
	ActionTouchAll           ActionType = "TOUCH_ALL"
	ActionValidate           ActionType = "VALIDATE"
	ActionSetErrors          ActionType = "SET_ERRORS"
	ActionStartSubmit        ActionType = "START_SUBMIT"
	ActionSetSubmitSucceeded ActionType = "SET_SUBMIT_SUCCEEDED"
	ActionSetSubmitFailed    ActionType = "SET_SUBMIT_FAILED"
)

// Action is a dispatched transition. Field names the target field for
// field-scoped actions; Payload carries the action's data.
//
//	CHANGE_VALUE          any (the new value)
//	SET_FIELD_VALIDATORS  []FieldValidator, FieldValidator, or nil to clear
//	SET_FORM_VALIDATOR    FormValidator or nil
//	SET_ERRORS            map[string]any, may hold FormErrorKey
//	SET_SUBMIT_FAILED     map[string]any, may hold FormErrorKey
type Action struct {
	Type    ActionType
	Field   string
	Payload any
}

func Focus(field string) Action {
	return Action{Type: ActionFocus, Field: field}
}

func Blur(field string) Action {
	return Action{Type: ActionBlur, Field: field}
}

func ChangeValue(field string, value any) Action {
	return Action{Type: ActionChangeValue, Field: field, Payload: value}
}

// SetFieldValidators replaces the validators of a field. Calling it with no
// validators removes the registration's effect while keeping its position.
func SetFieldValidators(field string, validators ...FieldValidator) Action {
	return Action{Type: ActionSetFieldValidators, Field: field, Payload: validators}
}

func SetFormValidator(validator FormValidator) Action {
	return Action{Type: ActionSetFormValidator, Payload: validator}
}

func TouchAll() Action {
	return Action{Type: ActionTouchAll}
}

func Validate() Action {
	return Action{Type: ActionValidate}
}

// SetErrors replaces field and form errors with errs.
func SetErrors(errs map[string]any) Action {
	return Action{Type: ActionSetErrors, Payload: errs}
}

func StartSubmit() Action {
	return Action{Type: ActionStartSubmit}
}

func SetSubmitSucceeded() Action {
	return Action{Type: ActionSetSubmitSucceeded}
}

func SetSubmitFailed(errs map[string]any) Action {
	return Action{Type: ActionSetSubmitFailed, Payload: errs}
}
