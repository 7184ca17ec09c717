package form

import (
	"context"
	"errors"

	"github.com/tailored-agentic-units/formstate/observability"
)

// SubmitFunc performs the actual submission, typically a network or storage
// call. Returning a *SubmissionError rejects the submission with field-level
// errors.
type SubmitFunc func(ctx context.Context) error

// OnSubmit receives the values being submitted.
type OnSubmit func(ctx context.Context, values map[string]any) error

// SubmitPhase tracks the most recent submission.
type SubmitPhase int

const (
	SubmitIdle SubmitPhase = iota
	SubmitPending
	SubmitSucceeded
	// SubmitFailed: the submit function returned a *SubmissionError.
	SubmitFailed
	// SubmitErrored: the submit function returned any other error. The form
	// stays in the submitting state.
	SubmitErrored
)

func (p SubmitPhase) String() string {
	switch p {
	case SubmitIdle:
		return "idle"
	case SubmitPending:
		return "pending"
	case SubmitSucceeded:
		return "succeeded"
	case SubmitFailed:
		return "failed"
	case SubmitErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// SubmitPhase returns the phase of the most recent Submit call.
func (f *Form) SubmitPhase() SubmitPhase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *Form) setPhase(p SubmitPhase) {
	f.mu.Lock()
	f.phase = p
	f.mu.Unlock()
}

// Submit runs fn between START_SUBMIT and its outcome.
//
// When fn returns nil the submission succeeds: Submitting clears, FormError
// clears, and the checkpoint is dropped unless the config preserves it. When
// fn returns a *SubmissionError (anywhere in its chain) its errors are
// committed through SET_SUBMIT_FAILED and Submit returns nil. Any other error
// is returned as is and Submitting stays true.
func (f *Form) Submit(ctx context.Context, fn SubmitFunc) error {
	if fn == nil {
		return ErrNilSubmit
	}

	f.setPhase(SubmitPending)
	f.Dispatch(StartSubmit())
	f.emit(ctx, EventSubmitStart, observability.LevelInfo, nil)

	err := fn(ctx)
	if err == nil {
		f.Dispatch(SetSubmitSucceeded())
		f.setPhase(SubmitSucceeded)
		f.emit(ctx, EventSubmitSucceed, observability.LevelInfo, nil)
		f.dropCheckpoint(ctx)
		return nil
	}

	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		f.Dispatch(SetSubmitFailed(subErr.Errors))
		f.setPhase(SubmitFailed)
		f.emit(ctx, EventSubmitFail, observability.LevelWarning, map[string]any{
			"field_errors": len(subErr.Errors),
		})
		return nil
	}

	f.setPhase(SubmitErrored)
	return err
}

// HandleSubmit marks every field touched, refuses to submit an invalid form
// with ErrInvalid, and otherwise submits the current values through
// onSubmit.
func (f *Form) HandleSubmit(ctx context.Context, onSubmit OnSubmit) error {
	if onSubmit == nil {
		return ErrNilSubmit
	}

	f.TouchAll()
	view := f.View()
	if view.Invalid() {
		return ErrInvalid
	}

	return f.Submit(ctx, func(ctx context.Context) error {
		return onSubmit(ctx, view.Values)
	})
}

func (f *Form) dropCheckpoint(ctx context.Context) {
	if f.store == nil || f.cpConfig.Preserve {
		return
	}
	if err := f.store.Delete(f.id); err != nil {
		f.emit(ctx, EventCheckpointDelete, observability.LevelError, map[string]any{
			"error": err.Error(),
		})
		return
	}
	f.emit(ctx, EventCheckpointDelete, observability.LevelVerbose, nil)
}
