package podcastrv1

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// JSONCodec marshals the podcastr.v1 messages as plain JSON. It replaces
// Connect's default "json" codec, which only accepts protobuf messages.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string {
	return "json"
}

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(message any) ([]byte, error) {
	data, err := json.Marshal(message)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %T", message)
	}
	return data, nil
}

// Unmarshal implements connect.Codec. An empty body leaves the message zero.
func (JSONCodec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, message); err != nil {
		return errors.Wrapf(err, "failed to unmarshal %T", message)
	}
	return nil
}
