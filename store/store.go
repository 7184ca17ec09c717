// Package store provides durable form.CheckpointStore implementations: a
// bbolt database holding protobuf-encoded checkpoints, and a directory of
// YAML files.
package store

import (
	"errors"
	"io"

	"github.com/tailored-agentic-units/formstate/config"
	"github.com/tailored-agentic-units/formstate/form"
)

// Store names under which Register installs stores in the form registry.
const (
	NameBolt = "bolt"
	NameFile = "file"
)

var (
	_ form.CheckpointStore = (*BoltStore)(nil)
	_ form.CheckpointStore = (*FileStore)(nil)
)

// Register opens the stores configured in cfg and registers them with
// form.RegisterCheckpointStore. Stores with an empty path are skipped. The
// returned closer releases whatever was opened.
func Register(cfg config.StoreConfig) (io.Closer, error) {
	var closers multiCloser

	if cfg.BoltPath != "" {
		bolt, err := OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		closers = append(closers, bolt.Close)
		form.RegisterCheckpointStore(NameBolt, bolt)
	}

	if cfg.FileDir != "" {
		files, err := NewFileStore(cfg.FileDir)
		if err != nil {
			closers.Close()
			return nil, err
		}
		form.RegisterCheckpointStore(NameFile, files)
	}

	return closers, nil
}

type multiCloser []func() error

func (c multiCloser) Close() error {
	var errs []error
	for _, fn := range c {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}
