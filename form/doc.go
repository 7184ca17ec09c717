// Package form implements a reducer-driven form-state engine.
//
// A form tracks nested field values, per-field focus and touch status,
// field-level and whole-form validation, and the submission lifecycle. All
// mutation goes through Reduce, a pure function from (State, Action) to the
// next State. Read-only helpers such as Dirty, Pristine and FieldError are
// derived from a State by Project and are never stored.
//
// # State
//
// FormState is the part of the state consumers see. State wraps it together
// with the registered validators and the initial values captured at
// construction:
//
//	s := form.NewState(map[string]any{"email": ""})
//	s, _ = form.Reduce(s, form.SetFieldValidators("email", required))
//	s, _ = form.Reduce(s, form.ChangeValue("email", "a@b.com"))
//	v := form.Project(s)
//	v.FieldError("email") // nil
//	v.Dirty               // true
//
// # Form
//
// Form owns a State, serializes dispatch, runs the submission protocol and
// delivers snapshots to subscribers and render functions:
//
//	f, err := form.New(config.DefaultFormConfig("signup"),
//	    form.WithInitialValues(map[string]any{"email": ""}),
//	    form.WithFieldValidators("email", required),
//	)
//	f.Focus("email")
//	f.ChangeValue("email", "a@b.com")
//	f.Blur("email")
//	err = f.Submit(ctx, func(ctx context.Context) error {
//	    return api.Save(ctx, f.View().Values)
//	})
//
// A submit function reports field-level rejections by returning a
// *SubmissionError; the errors land in FieldErrors and FormError and Submit
// returns nil. Any other error is returned unchanged and the form stays in
// the submitting state.
//
// # Field names
//
// Field names are paths into the values tree ("address.street",
// "items[0].sku"), resolved by package fieldpath. Field status entries
// (active, touched, visited) are keyed by the field name as given.
package form
