package config

// CheckpointConfig controls form snapshot persistence.
//
//   - Store: name of a registered checkpoint store ("memory", "bolt", "file")
//   - Interval: save after every N committed updates (0 = only explicit saves)
//   - Preserve: keep the checkpoint after a successful submit
type CheckpointConfig struct {
	Store    string `json:"store" yaml:"store"`
	Interval int    `json:"interval" yaml:"interval"`
	Preserve bool   `json:"preserve" yaml:"preserve"`
}

// DefaultCheckpointConfig returns an in-memory store with automatic saving
// disabled.
func DefaultCheckpointConfig() CheckpointConfig {
	return CheckpointConfig{
		Store:    "memory",
		Interval: 0,
		Preserve: false,
	}
}

func (c *CheckpointConfig) Merge(source *CheckpointConfig) {
	if source.Store != "" {
		c.Store = source.Store
	}

	if source.Interval > 0 {
		c.Interval = source.Interval
	}

	if source.Preserve {
		c.Preserve = source.Preserve
	}
}

// FormConfig is read once when a form is constructed. Observer and
// Checkpoint.Store are names resolved through their registries, which keeps
// the struct serializable.
//
// Example JSON:
//
//	{
//	  "name": "signup",
//	  "observer": "slog",
//	  "checkpoint": {"store": "bolt", "interval": 5}
//	}
type FormConfig struct {
	Name       string           `json:"name" yaml:"name"`
	Observer   string           `json:"observer" yaml:"observer"`
	Checkpoint CheckpointConfig `json:"checkpoint" yaml:"checkpoint"`
}

// DefaultFormConfig logs through slog and keeps checkpoints in memory.
func DefaultFormConfig(name string) FormConfig {
	return FormConfig{
		Name:       name,
		Observer:   "slog",
		Checkpoint: DefaultCheckpointConfig(),
	}
}

func (c *FormConfig) Merge(source *FormConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}

	c.Checkpoint.Merge(&source.Checkpoint)
}
