package store

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/formstate/form"
)

// EncodeCheckpoint serializes a checkpoint as a protobuf google.protobuf.Struct.
// Values and errors must be JSON-representable; after a round trip every
// number is a float64, which fieldpath.Equal treats as equal to the original.
func EncodeCheckpoint(cp form.Checkpoint) ([]byte, error) {
	plain, err := toPlain(cp)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCodec, cp.FormID, err)
	}

	st, err := structpb.NewStruct(plain)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCodec, cp.FormID, err)
	}

	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCodec, cp.FormID, err)
	}
	return data, nil
}

// DecodeCheckpoint reverses EncodeCheckpoint.
func DecodeCheckpoint(data []byte) (form.Checkpoint, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return form.Checkpoint{}, fmt.Errorf("%w: %v", ErrCodec, err)
	}

	raw, err := json.Marshal(st.AsMap())
	if err != nil {
		return form.Checkpoint{}, fmt.Errorf("%w: %v", ErrCodec, err)
	}

	var cp form.Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return form.Checkpoint{}, fmt.Errorf("%w: %v", ErrCodec, err)
	}
	return cp, nil
}

// toPlain reduces a checkpoint to the map/slice/scalar shapes structpb
// accepts, using the checkpoint's JSON field names.
func toPlain(cp form.Checkpoint) (map[string]any, error) {
	raw, err := json.Marshal(cp)
	if err != nil {
		return nil, err
	}

	var plain map[string]any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, err
	}
	return plain, nil
}
