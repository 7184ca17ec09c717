package rpc

import (
	"encoding/json"
)

// codecNameJSON is the name connect uses for the application/json content
// type, so this codec replaces the protojson codec.
const codecNameJSON = "json"

// Codec marshals plain Go request and response structs as JSON. Form values
// are free-form maps, which have no protobuf schema.
type Codec struct{}

func (Codec) Name() string {
	return codecNameJSON
}

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}
