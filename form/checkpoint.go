package form

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Checkpoint is a persisted form: enough to rebuild it with Resume.
// Validators are code and are not part of a checkpoint; the resuming caller
// registers them again.
type Checkpoint struct {
	FormID        string         `json:"form_id" yaml:"form_id"`
	Name          string         `json:"name" yaml:"name"`
	InitialValues map[string]any `json:"initial_values" yaml:"initial_values"`
	State         FormState      `json:"state" yaml:"state"`
	Timestamp     time.Time      `json:"timestamp" yaml:"timestamp"`
}

// CheckpointStore persists checkpoints keyed by form ID. Implementations must
// be safe for concurrent use by many forms.
type CheckpointStore interface {
	// Save stores cp, replacing any checkpoint with the same FormID.
	Save(cp Checkpoint) error

	// Load returns the checkpoint for formID, or an error wrapping
	// ErrCheckpointNotFound.
	Load(formID string) (Checkpoint, error)

	// Delete removes the checkpoint for formID. Missing IDs are not an error.
	Delete(formID string) error

	// List returns the stored form IDs in sorted order.
	List() ([]string, error)
}

type memoryCheckpointStore struct {
	checkpoints map[string]Checkpoint
	mu          sync.RWMutex
}

// NewMemoryCheckpointStore keeps checkpoints in process memory. It is
// registered as "memory".
func NewMemoryCheckpointStore() CheckpointStore {
	return &memoryCheckpointStore{
		checkpoints: make(map[string]Checkpoint),
	}
}

func (m *memoryCheckpointStore) Save(cp Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkpoints[cp.FormID] = cp
	return nil
}

func (m *memoryCheckpointStore) Load(formID string) (Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, exists := m.checkpoints[formID]
	if !exists {
		return Checkpoint{}, fmt.Errorf("%w: %s", ErrCheckpointNotFound, formID)
	}
	return cp, nil
}

func (m *memoryCheckpointStore) Delete(formID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.checkpoints, formID)
	return nil
}

func (m *memoryCheckpointStore) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.checkpoints))
	for id := range m.checkpoints {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

var (
	checkpointStores = map[string]CheckpointStore{
		"memory": NewMemoryCheckpointStore(),
	}
	mutex sync.RWMutex
)

// GetCheckpointStore resolves a store name from FormConfig.
func GetCheckpointStore(name string) (CheckpointStore, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	store, exists := checkpointStores[name]
	if !exists {
		return nil, fmt.Errorf("unknown checkpoint store: %s", name)
	}
	return store, nil
}

// RegisterCheckpointStore adds or replaces a named store. Register durable
// stores before building forms that name them.
func RegisterCheckpointStore(name string, store CheckpointStore) {
	mutex.Lock()
	defer mutex.Unlock()

	checkpointStores[name] = store
}

// restore copies a checkpoint's form state, filling in maps a decoder may
// have left nil.
func (cp Checkpoint) restore() FormState {
	fs := cp.State
	if fs.Values == nil {
		fs.Values = map[string]any{}
	}
	if fs.FieldErrors == nil {
		fs.FieldErrors = map[string]any{}
	}
	if fs.FieldStates == nil {
		fs.FieldStates = map[string]FieldState{}
	}
	return fs
}
