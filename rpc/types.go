package rpc

import (
	"fmt"

	"github.com/tailored-agentic-units/formstate/fieldpath"
	"github.com/tailored-agentic-units/formstate/form"
	"github.com/tailored-agentic-units/formstate/schema"
)

const (
	ServiceName = "formstate.v1.FormService"

	OpenProcedure     = "/" + ServiceName + "/Open"
	DispatchProcedure = "/" + ServiceName + "/Dispatch"
	GetProcedure      = "/" + ServiceName + "/Get"
	CloseProcedure    = "/" + ServiceName + "/Close"
)

// ActionSubmit runs the server's submit handler through Form.HandleSubmit.
// It is the only wire action that is not a reducer action.
const ActionSubmit = "SUBMIT"

// OpenRequest starts a session. Definition selects a catalog entry; without
// one the form starts from InitialValues and has no rules. CheckpointID
// resumes a saved form from the configured checkpoint store instead.
type OpenRequest struct {
	Definition    string         `json:"definition,omitempty"`
	InitialValues map[string]any `json:"initialValues,omitempty"`
	CheckpointID  string         `json:"checkpointId,omitempty"`
}

type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

type DispatchRequest struct {
	SessionID string `json:"sessionId"`
	Action    Action `json:"action"`
}

// CloseRequest ends a session. With Checkpoint set the form is saved to the
// configured store first.
type CloseRequest struct {
	SessionID  string `json:"sessionId"`
	Checkpoint bool   `json:"checkpoint,omitempty"`
}

type CloseResponse struct {
	CheckpointID string `json:"checkpointId,omitempty"`
}

// Action is the wire form of a form.Action. Validators cannot travel as
// code, so SET_FIELD_VALIDATORS carries rule references instead.
//
//	FOCUS, BLUR                  field
//	CHANGE_VALUE                 field, value
//	SET_FIELD_VALIDATORS         field, rules
//	TOUCH_ALL, VALIDATE          -
//	SET_ERRORS                   errors
//	START_SUBMIT                 -
//	SET_SUBMIT_SUCCEEDED         -
//	SET_SUBMIT_FAILED            errors
//	SUBMIT                       -
type Action struct {
	Type   string         `json:"type"`
	Field  string         `json:"field,omitempty"`
	Value  any            `json:"value,omitempty"`
	Rules  []schema.Rule  `json:"rules,omitempty"`
	Errors map[string]any `json:"errors,omitempty"`
}

// Session is the state of a session after a call. A View decoded from JSON
// carries no initial values; Client restores them from InitialValues, other
// decoders should call form.RestoreView.
type Session struct {
	SessionID     string         `json:"sessionId"`
	Name          string         `json:"name,omitempty"`
	View          form.View      `json:"view"`
	InitialValues map[string]any `json:"initialValues"`
	Phase         string         `json:"phase"`
	Changed       bool           `json:"changed,omitempty"`
}

// toAction converts a wire action to a reducer action. ActionSubmit is
// handled by the caller.
func toAction(a Action) (form.Action, error) {
	t := form.ActionType(a.Type)
	switch t {
	case form.ActionFocus, form.ActionBlur:
		if err := checkField(a); err != nil {
			return form.Action{}, err
		}
		return form.Action{Type: t, Field: a.Field}, nil

	case form.ActionChangeValue:
		if err := checkField(a); err != nil {
			return form.Action{}, err
		}
		return form.ChangeValue(a.Field, a.Value), nil

	case form.ActionSetFieldValidators:
		if err := checkField(a); err != nil {
			return form.Action{}, err
		}
		fns, err := schema.BuildRules(a.Rules)
		if err != nil {
			return form.Action{}, fmt.Errorf("%w: %w", ErrInvalidAction, err)
		}
		return form.SetFieldValidators(a.Field, fns...), nil

	case form.ActionTouchAll, form.ActionValidate, form.ActionStartSubmit, form.ActionSetSubmitSucceeded:
		return form.Action{Type: t}, nil

	case form.ActionSetErrors:
		return form.SetErrors(a.Errors), nil

	case form.ActionSetSubmitFailed:
		return form.SetSubmitFailed(a.Errors), nil

	default:
		return form.Action{}, fmt.Errorf("%w: unknown type %q", ErrInvalidAction, a.Type)
	}
}

func checkField(a Action) error {
	if a.Field == "" {
		return fmt.Errorf("%w: %s needs a field", ErrInvalidAction, a.Type)
	}
	if err := fieldpath.Check(a.Field); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}
	return nil
}
