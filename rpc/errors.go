package rpc

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/tailored-agentic-units/formstate/form"
	"github.com/tailored-agentic-units/formstate/schema"
	"github.com/tailored-agentic-units/formstate/validators"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrUnknownDefinition = errors.New("unknown form definition")
	ErrInvalidAction     = errors.New("invalid action")
)

// connectError maps package errors onto connect codes.
func connectError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, form.ErrCheckpointNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrUnknownDefinition),
		errors.Is(err, ErrInvalidAction),
		errors.Is(err, schema.ErrInvalidDefinition),
		errors.Is(err, validators.ErrUnknownRule),
		errors.Is(err, validators.ErrInvalidArgument):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, form.ErrNoCheckpointStore):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, fmt.Errorf("form service: %w", err))
	}
}
