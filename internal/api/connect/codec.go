// Package connect provides the Connect RPC surface of the player.
//
// The service is schema-free: requests and responses are plain Go structs
// carried by a JSON codec, and the handlers are registered with the generic
// connect constructors instead of generated glue.
package connect

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// jsonCodec implements connect.Codec over encoding/json for plain structs.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, message); err != nil {
		return errors.Wrap(err, "decode json message")
	}
	return nil
}
