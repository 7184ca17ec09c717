package store

import "errors"

// Sentinel errors for checkpoint storage. Load on a missing form wraps
// form.ErrCheckpointNotFound instead.
var (
	ErrInvalidID  = errors.New("invalid form id")
	ErrLoadFailed = errors.New("load failed")
	ErrSaveFailed = errors.New("save failed")
	ErrCodec      = errors.New("checkpoint codec")
)
