package validators

import "errors"

// Sentinel errors for the rule registry.
var (
	ErrUnknownRule     = errors.New("unknown rule")
	ErrAlreadyExists   = errors.New("rule already registered")
	ErrEmptyName       = errors.New("rule name is empty")
	ErrInvalidArgument = errors.New("invalid rule argument")
)
