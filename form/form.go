package form

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/formstate/config"
	"github.com/tailored-agentic-units/formstate/observability"
)

// Actions is the sender surface handed to render functions and listeners.
// *Form implements it.
type Actions interface {
	Blur(field string)
	Focus(field string)
	ChangeValue(field string, value any)
	SetFieldValidators(field string, validators ...FieldValidator)
	TouchAll()
	Submit(ctx context.Context, fn SubmitFunc) error
}

// Snapshot is what consumers receive after every committed update: the
// projected view plus the senders that act on the form.
type Snapshot struct {
	View
	Actions Actions `json:"-" yaml:"-"`
}

// Listener is called with a fresh snapshot after each committed update.
type Listener func(Snapshot)

// RenderFunc consumes a snapshot. ctx carries the same snapshot, retrievable
// with FromContext, for code further down the call chain.
type RenderFunc func(ctx context.Context, snap Snapshot) error

// Option customizes a Form during New.
type Option func(*Form)

// WithObserver overrides the observer named in the config.
func WithObserver(observer observability.Observer) Option {
	return func(f *Form) {
		f.observer = observer
	}
}

// WithCheckpointStore overrides the store named in the config.
func WithCheckpointStore(store CheckpointStore) Option {
	return func(f *Form) {
		f.store = store
	}
}

// WithID fixes the form ID instead of generating one.
func WithID(id string) Option {
	return func(f *Form) {
		f.id = id
	}
}

// WithInitialValues sets the values the form starts from and compares
// against for Dirty/Pristine.
func WithInitialValues(values map[string]any) Option {
	return func(f *Form) {
		f.state = NewState(values)
	}
}

// WithFieldValidators registers validators before the initial validation.
func WithFieldValidators(field string, validators ...FieldValidator) Option {
	return func(f *Form) {
		f.state, _ = Reduce(f.state, SetFieldValidators(field, validators...))
	}
}

// WithFormValidator registers a whole-form validator before the initial
// validation.
func WithFormValidator(validator FormValidator) Option {
	return func(f *Form) {
		f.state, _ = Reduce(f.state, SetFormValidator(validator))
	}
}

// Form owns a form's state. Dispatch is serialized: each action is reduced to
// completion before the next one is accepted. Submit does not hold the lock
// while the submit function runs, so edits may interleave with a pending
// submission; Submitting is advisory.
type Form struct {
	id       string
	name     string
	observer observability.Observer
	store    CheckpointStore
	cpConfig config.CheckpointConfig

	mu         sync.Mutex
	state      State
	updates    int
	phase      SubmitPhase
	delivering bool
	pending    []delivery

	subMu     sync.Mutex
	listeners map[int]Listener
	nextSub   int
}

// New builds a form from cfg and runs the initial validation, so the first
// snapshot already reflects validators against the initial values.
//
// Options are applied in order; WithInitialValues resets any validators
// registered by earlier options, so pass it first.
func New(cfg config.FormConfig, opts ...Option) (*Form, error) {
	f, err := newForm(cfg, opts)
	if err != nil {
		return nil, err
	}

	f.emit(context.Background(), EventFormCreate, observability.LevelInfo, map[string]any{
		"validators": len(f.state.validatorOrder),
	})
	f.Dispatch(Validate())
	return f, nil
}

// Resume rebuilds a form from a checkpoint: same ID, same initial values,
// same form state. The initial validation is not repeated, because the
// checkpoint's errors may come from a failed submission that validators
// cannot reproduce; registering validators again revalidates.
func Resume(cfg config.FormConfig, cp Checkpoint, opts ...Option) (*Form, error) {
	opts = append([]Option{WithID(cp.FormID), WithInitialValues(cp.InitialValues)}, opts...)
	if cp.Name != "" && cfg.Name == "" {
		cfg.Name = cp.Name
	}

	f, err := newForm(cfg, opts)
	if err != nil {
		return nil, err
	}
	f.state.FormState = cp.restore()

	f.emit(context.Background(), EventCheckpointLoad, observability.LevelInfo, map[string]any{
		"checkpoint": cp.Timestamp,
	})
	return f, nil
}

func newForm(cfg config.FormConfig, opts []Option) (*Form, error) {
	f := &Form{
		id:        uuid.NewString(),
		name:      cfg.Name,
		cpConfig:  cfg.Checkpoint,
		state:     NewState(nil),
		listeners: make(map[int]Listener),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.observer == nil {
		observer, err := observability.GetObserver(cfg.Observer)
		if err != nil {
			return nil, fmt.Errorf("form %s: %w", cfg.Name, err)
		}
		f.observer = observer
	}

	if f.store == nil && cfg.Checkpoint.Store != "" {
		store, err := GetCheckpointStore(cfg.Checkpoint.Store)
		if err != nil {
			return nil, fmt.Errorf("form %s: %w", cfg.Name, err)
		}
		f.store = store
	}

	return f, nil
}

func (f *Form) ID() string {
	return f.id
}

func (f *Form) Name() string {
	return f.name
}

// State returns the current full state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// View returns the projection of the current state.
func (f *Form) View() View {
	return Project(f.State())
}

// Snapshot returns the current view bound to this form's senders.
func (f *Form) Snapshot() Snapshot {
	return Snapshot{View: f.View(), Actions: f}
}

// Dispatch reduces an action against the current state and commits the
// result. It reports whether the state changed; unknown action types do not.
//
// Everything that follows a commit (events, the automatic checkpoint and
// listener notification) is delivered outside the state lock, strictly in
// commit order. While one caller is delivering, commits made by listeners or
// by other goroutines are queued and delivered by that caller, so Dispatch
// may return before its own listeners have run.
func (f *Form) Dispatch(action Action) bool {
	d, changed, drain := f.commit(action)
	if !changed {
		f.emit(context.Background(), EventNoUpdate, observability.LevelVerbose, map[string]any{
			"action": string(action.Type),
		})
		return false
	}
	if drain {
		f.drain(d)
	}
	return true
}

// delivery is the post-commit work for one update.
type delivery struct {
	action Action
	state  State
	snap   Snapshot
	cp     Checkpoint
	due    bool
}

// commit reduces under the state lock. A panicking validator leaves the state
// as it was and the lock released. drain reports that the caller must
// deliver d and then whatever is queued behind it.
func (f *Form) commit(action Action) (d delivery, changed, drain bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next, changed := Reduce(f.state, action)
	if !changed {
		return delivery{}, false, false
	}
	f.state = next
	f.updates++

	d = delivery{
		action: action,
		state:  next,
		snap:   Snapshot{View: Project(next), Actions: f},
		due:    f.cpConfig.Interval > 0 && f.updates%f.cpConfig.Interval == 0,
	}
	if d.due {
		d.cp = f.checkpointLocked()
	}

	if f.delivering {
		f.pending = append(f.pending, d)
		return d, true, false
	}
	f.delivering = true
	return d, true, true
}

func (f *Form) drain(d delivery) {
	done := false
	defer func() {
		if !done {
			// A listener panicked; drop what is queued so later commits
			// can deliver again.
			f.mu.Lock()
			f.delivering = false
			f.pending = nil
			f.mu.Unlock()
		}
	}()

	for {
		f.deliver(d)

		f.mu.Lock()
		if len(f.pending) == 0 {
			f.delivering = false
			f.mu.Unlock()
			done = true
			return
		}
		d = f.pending[0]
		f.pending = f.pending[1:]
		f.mu.Unlock()
	}
}

func (f *Form) deliver(d delivery) {
	ctx := context.Background()

	data := map[string]any{"action": string(d.action.Type)}
	if d.action.Field != "" {
		data[observability.KeyField] = d.action.Field
	}
	f.emit(ctx, EventAction, observability.LevelVerbose, data)
	if validates(d.action.Type) {
		f.emit(ctx, EventValidate, observability.LevelVerbose, map[string]any{
			"field_errors": len(d.state.FieldErrors),
			"form_error":   d.state.FormError != nil,
		})
	}

	if d.due {
		f.save(ctx, d.cp)
	}

	f.notify(d.snap)
}

func validates(t ActionType) bool {
	switch t {
	case ActionChangeValue, ActionSetFieldValidators, ActionSetFormValidator, ActionValidate:
		return true
	}
	return false
}

func (f *Form) Blur(field string) {
	f.Dispatch(Blur(field))
}

func (f *Form) Focus(field string) {
	f.Dispatch(Focus(field))
}

func (f *Form) ChangeValue(field string, value any) {
	f.Dispatch(ChangeValue(field, value))
}

func (f *Form) SetFieldValidators(field string, validators ...FieldValidator) {
	f.Dispatch(SetFieldValidators(field, validators...))
}

func (f *Form) SetFormValidator(validator FormValidator) {
	f.Dispatch(SetFormValidator(validator))
}

func (f *Form) SetErrors(errs map[string]any) {
	f.Dispatch(SetErrors(errs))
}

func (f *Form) TouchAll() {
	f.Dispatch(TouchAll())
}

// Subscribe registers a listener for committed updates and returns a
// function that removes it.
func (f *Form) Subscribe(listener Listener) (cancel func()) {
	f.subMu.Lock()
	defer f.subMu.Unlock()

	id := f.nextSub
	f.nextSub++
	f.listeners[id] = listener

	return func() {
		f.subMu.Lock()
		defer f.subMu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *Form) notify(snap Snapshot) {
	f.subMu.Lock()
	ids := make([]int, 0, len(f.listeners))
	for id := range f.listeners {
		ids = append(ids, id)
	}
	listeners := make([]Listener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		listeners = append(listeners, f.listeners[id])
	}
	f.subMu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

// Render hands the current snapshot to fn, both directly and through ctx.
func (f *Form) Render(ctx context.Context, fn RenderFunc) error {
	if fn == nil {
		return ErrNilRender
	}
	snap := f.Snapshot()
	return fn(NewContext(ctx, snap), snap)
}

// Checkpoint saves the current state to the configured store.
func (f *Form) Checkpoint() (Checkpoint, error) {
	if f.store == nil {
		return Checkpoint{}, ErrNoCheckpointStore
	}

	f.mu.Lock()
	cp := f.checkpointLocked()
	f.mu.Unlock()

	if err := f.save(context.Background(), cp); err != nil {
		return Checkpoint{}, err
	}
	return cp, nil
}

// Export returns the current state as a checkpoint without saving it.
func (f *Form) Export() Checkpoint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checkpointLocked()
}

func (f *Form) checkpointLocked() Checkpoint {
	return Checkpoint{
		FormID:        f.id,
		Name:          f.name,
		InitialValues: f.state.initialValues,
		State:         f.state.FormState,
		Timestamp:     time.Now(),
	}
}

func (f *Form) save(ctx context.Context, cp Checkpoint) error {
	if f.store == nil {
		return ErrNoCheckpointStore
	}

	if err := f.store.Save(cp); err != nil {
		f.emit(ctx, EventCheckpointSave, observability.LevelError, map[string]any{
			"error": err.Error(),
		})
		return fmt.Errorf("checkpoint %s: %w", f.id, err)
	}

	f.emit(ctx, EventCheckpointSave, observability.LevelVerbose, nil)
	return nil
}

func (f *Form) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	if data == nil {
		data = make(map[string]any, 2)
	}
	data[observability.KeyFormID] = f.id
	if f.name != "" {
		data[observability.KeyForm] = f.name
	}

	f.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "form.Form",
		Data:      data,
	})
}

type snapshotKey struct{}

// NewContext returns a copy of ctx carrying snap.
func NewContext(ctx context.Context, snap Snapshot) context.Context {
	return context.WithValue(ctx, snapshotKey{}, snap)
}

// FromContext returns the snapshot stored by NewContext or Render.
func FromContext(ctx context.Context) (Snapshot, bool) {
	snap, ok := ctx.Value(snapshotKey{}).(Snapshot)
	return snap, ok
}
