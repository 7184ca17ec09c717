// Package config holds initialization parameters for the form engine, its
// checkpoint stores and the RPC server. Configuration exists only while
// components are being built; nothing here is consulted at runtime.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultAddr = "127.0.0.1:8080"

// StoreConfig locates durable checkpoint stores. Empty paths leave the
// corresponding store unregistered.
type StoreConfig struct {
	BoltPath string `json:"bolt_path,omitempty" yaml:"bolt_path,omitempty"`
	FileDir  string `json:"file_dir,omitempty" yaml:"file_dir,omitempty"`
}

func DefaultStoreConfig() StoreConfig {
	return StoreConfig{}
}

func (c *StoreConfig) Merge(source *StoreConfig) {
	if source.BoltPath != "" {
		c.BoltPath = source.BoltPath
	}
	if source.FileDir != "" {
		c.FileDir = source.FileDir
	}
}

// ServerConfig configures the RPC service.
type ServerConfig struct {
	Addr        string `json:"addr" yaml:"addr"`
	Definitions string `json:"definitions,omitempty" yaml:"definitions,omitempty"` // directory of YAML form definitions
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{Addr: defaultAddr}
}

func (c *ServerConfig) Merge(source *ServerConfig) {
	if source.Addr != "" {
		c.Addr = source.Addr
	}
	if source.Definitions != "" {
		c.Definitions = source.Definitions
	}
}

// Config is the top-level configuration file.
type Config struct {
	Form   FormConfig   `json:"form" yaml:"form"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Server ServerConfig `json:"server" yaml:"server"`
}

// DefaultConfig returns defaults for every section.
func DefaultConfig() Config {
	return Config{
		Form:   DefaultFormConfig("form"),
		Store:  DefaultStoreConfig(),
		Server: DefaultServerConfig(),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	c.Form.Merge(&source.Form)
	c.Store.Merge(&source.Store)
	c.Server.Merge(&source.Server)
}

// LoadConfig reads a config file, merges it over the defaults and returns
// the result. Files ending in .yaml or .yml are parsed as YAML, anything else
// as JSON.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
