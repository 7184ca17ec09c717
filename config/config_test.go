package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/formstate/config"
)

func TestDefaultFormConfig(t *testing.T) {
	cfg := config.DefaultFormConfig("signup")

	if cfg.Name != "signup" {
		t.Errorf("Name = %q, want %q", cfg.Name, "signup")
	}
	if cfg.Observer != "slog" {
		t.Errorf("Observer = %q, want %q", cfg.Observer, "slog")
	}
	if cfg.Checkpoint.Store != "memory" || cfg.Checkpoint.Interval != 0 || cfg.Checkpoint.Preserve {
		t.Errorf("Checkpoint = %+v, want memory store with saving disabled", cfg.Checkpoint)
	}
}

func TestFormConfig_Merge(t *testing.T) {
	tests := []struct {
		name   string
		source config.FormConfig
		want   config.FormConfig
	}{
		{
			name:   "empty source keeps defaults",
			source: config.FormConfig{},
			want:   config.DefaultFormConfig("base"),
		},
		{
			name: "overrides non-zero fields",
			source: config.FormConfig{
				Observer:   "noop",
				Checkpoint: config.CheckpointConfig{Store: "bolt", Interval: 3, Preserve: true},
			},
			want: config.FormConfig{
				Name:       "base",
				Observer:   "noop",
				Checkpoint: config.CheckpointConfig{Store: "bolt", Interval: 3, Preserve: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultFormConfig("base")
			cfg.Merge(&tt.source)
			if cfg != tt.want {
				t.Errorf("Merge() = %+v, want %+v", cfg, tt.want)
			}
		})
	}
}

func TestFormConfig_JSONUnmarshal(t *testing.T) {
	var cfg config.FormConfig
	data := `{"name":"checkout","observer":"noop","checkpoint":{"store":"file","interval":2}}`
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	if cfg.Name != "checkout" || cfg.Observer != "noop" {
		t.Errorf("got %+v", cfg)
	}
	if cfg.Checkpoint.Store != "file" || cfg.Checkpoint.Interval != 2 {
		t.Errorf("Checkpoint = %+v", cfg.Checkpoint)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		wantAddr string
		wantObs  string
		wantBolt string
	}{
		{
			name:     "json",
			file:     "config.json",
			content:  `{"form":{"observer":"noop"},"server":{"addr":":9000"}}`,
			wantAddr: ":9000",
			wantObs:  "noop",
		},
		{
			name:     "yaml",
			file:     "config.yaml",
			content:  "form:\n  observer: slog\nstore:\n  bolt_path: /tmp/forms.db\n",
			wantAddr: "127.0.0.1:8080",
			wantObs:  "slog",
			wantBolt: "/tmp/forms.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg, err := config.LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.Server.Addr != tt.wantAddr {
				t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, tt.wantAddr)
			}
			if cfg.Form.Observer != tt.wantObs {
				t.Errorf("Form.Observer = %q, want %q", cfg.Form.Observer, tt.wantObs)
			}
			if cfg.Store.BoltPath != tt.wantBolt {
				t.Errorf("Store.BoltPath = %q, want %q", cfg.Store.BoltPath, tt.wantBolt)
			}
			if cfg.Form.Checkpoint.Store != "memory" {
				t.Errorf("Checkpoint.Store = %q, want default memory", cfg.Form.Checkpoint.Store)
			}
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadConfig() on missing file returned nil error")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadConfig(path); err == nil {
		t.Error("LoadConfig() on malformed file returned nil error")
	}
}
