package replay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tailored-agentic-units/formstate/fieldpath"
	"github.com/tailored-agentic-units/formstate/form"
	"github.com/tailored-agentic-units/formstate/observability"
	"github.com/tailored-agentic-units/formstate/schema"
)

const (
	EventReplayStart    observability.EventType = "replay.start"
	EventReplayStep     observability.EventType = "replay.step"
	EventReplayComplete observability.EventType = "replay.complete"
)

// StepError reports the step a replay stopped at.
type StepError struct {
	Index int
	Kind  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ProgressFunc is called after each completed step.
type ProgressFunc func(completed, total int, snap form.Snapshot)

type Option func(*runner)

func WithObserver(observer observability.Observer) Option {
	return func(r *runner) {
		r.observer = observer
	}
}

func WithProgress(progress ProgressFunc) Option {
	return func(r *runner) {
		r.progress = progress
	}
}

// Result is the outcome of a replay. Final is the form's snapshot after the
// last completed step.
type Result struct {
	Steps int
	Final form.Snapshot
}

type runner struct {
	observer observability.Observer
	progress ProgressFunc
}

// Run applies the script's steps to f in order and stops at the first step
// that fails, returning a *StepError. Context cancellation is checked before
// each step.
func Run(ctx context.Context, f *form.Form, script *Script, opts ...Option) (Result, error) {
	r := &runner{observer: observability.NoOpObserver{}}
	for _, opt := range opts {
		opt(r)
	}

	total := len(script.Steps)
	r.emit(ctx, EventReplayStart, observability.LevelInfo, map[string]any{
		"script":                script.Name,
		observability.KeyFormID: f.ID(),
		"steps":                 total,
	})

	result := Result{Final: f.Snapshot()}
	for i, step := range script.Steps {
		kind := step.Kind()

		err := ctx.Err()
		if err == nil {
			err = apply(ctx, f, step)
		}
		if err != nil {
			r.emit(ctx, EventReplayComplete, observability.LevelWarning, map[string]any{
				"script":          script.Name,
				"steps_completed": i,
				"error":           err.Error(),
			})
			result.Final = f.Snapshot()
			return result, &StepError{Index: i, Kind: kind, Err: err}
		}

		result.Steps = i + 1
		result.Final = f.Snapshot()

		r.emit(ctx, EventReplayStep, observability.LevelVerbose, map[string]any{
			"step_index": i,
			"kind":       kind,
		})
		if r.progress != nil {
			r.progress(i+1, total, result.Final)
		}
	}

	r.emit(ctx, EventReplayComplete, observability.LevelInfo, map[string]any{
		"script":          script.Name,
		"steps_completed": total,
	})
	return result, nil
}

func apply(ctx context.Context, f *form.Form, step Step) error {
	switch step.Kind() {
	case "focus":
		f.Focus(step.Focus)
	case "blur":
		f.Blur(step.Blur)
	case "change":
		f.ChangeValue(step.Change.Field, step.Change.Value)
	case "rules":
		fns, err := schema.BuildRules(step.Rules.Rules)
		if err != nil {
			return err
		}
		f.SetFieldValidators(step.Rules.Field, fns...)
	case "touchAll":
		f.TouchAll()
	case "validate":
		f.Dispatch(form.Validate())
	case "errors":
		f.SetErrors(step.Errors)
	case "submit":
		return submit(ctx, f, step.Submit)
	case "expect":
		return check(f, step.Expect)
	default:
		return fmt.Errorf("%w: step has %v", ErrInvalidScript, step.kinds())
	}
	return nil
}

// submit goes through HandleSubmit, so an invalid form is touched and not
// submitted. That outcome is part of the script, not a failure.
func submit(ctx context.Context, f *form.Form, s *Submit) error {
	var unrecognized error
	if s.Error != "" {
		unrecognized = errors.New(s.Error)
	}

	err := f.HandleSubmit(ctx, func(context.Context, map[string]any) error {
		switch {
		case s.Fail != nil:
			return form.NewSubmissionError(s.Fail)
		case unrecognized != nil:
			return unrecognized
		}
		return nil
	})

	switch {
	case err == nil, errors.Is(err, form.ErrInvalid):
		return nil
	case unrecognized != nil && errors.Is(err, unrecognized):
		return nil
	}
	return err
}

func check(f *form.Form, e *Expect) error {
	v := f.View()
	var diffs []string

	if e.Values != nil && !fieldpath.Equal(e.Values, v.Values) {
		diffs = append(diffs, "values (-want +got):\n"+cmp.Diff(e.Values, v.Values))
	}
	if e.FieldErrors != nil && !fieldpath.Equal(e.FieldErrors, v.FieldErrors) {
		diffs = append(diffs, "fieldErrors (-want +got):\n"+cmp.Diff(e.FieldErrors, v.FieldErrors))
	}
	if e.FormError != nil && !fieldpath.Equal(e.FormError, v.FormError) {
		diffs = append(diffs, fmt.Sprintf("formError = %v, want %v", v.FormError, e.FormError))
	}
	if e.Valid != nil && v.Valid() != *e.Valid {
		diffs = append(diffs, fmt.Sprintf("valid = %t, want %t", v.Valid(), *e.Valid))
	}
	if e.Dirty != nil && v.Dirty != *e.Dirty {
		diffs = append(diffs, fmt.Sprintf("dirty = %t, want %t", v.Dirty, *e.Dirty))
	}
	if e.Submitting != nil && v.Submitting != *e.Submitting {
		diffs = append(diffs, fmt.Sprintf("submitting = %t, want %t", v.Submitting, *e.Submitting))
	}
	if e.Active != nil && v.ActiveField != *e.Active {
		diffs = append(diffs, fmt.Sprintf("active = %q, want %q", v.ActiveField, *e.Active))
	}
	for _, field := range e.Touched {
		if !v.FieldTouched(field) {
			diffs = append(diffs, fmt.Sprintf("%s not touched", field))
		}
	}
	if e.Phase != "" && f.SubmitPhase().String() != e.Phase {
		diffs = append(diffs, fmt.Sprintf("phase = %s, want %s", f.SubmitPhase(), e.Phase))
	}

	if len(diffs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrExpectation, diffs)
}

func (r *runner) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	r.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "replay.Run",
		Data:      data,
	})
}
