package request

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"github.com/golang/snappy"
)

// ConfKey is the job configuration key every task reads the encoded DataRequest from.
const ConfKey = "litetable.input.data.request"

// Encode serializes the request to JSON, compresses it with snappy and base64-encodes the
// result so it can be stored as a job configuration value.
func Encode(d *DataRequest) (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to serialize data request: %w", err)
	}
	return base64.StdEncoding.EncodeToString(snappy.Encode(nil, raw)), nil
}

// Decode reverses Encode.
func Decode(s string) (*DataRequest, error) {
	if s == "" {
		return nil, ErrMissingRequest
	}

	compressed, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, newError(ErrCorruptRequest, "base64: %v", err)
	}

	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, newError(ErrCorruptRequest, "snappy: %v", err)
	}

	var d DataRequest
	if err = json.Unmarshal(raw, &d); err != nil {
		return nil, newError(ErrCorruptRequest, "json: %v", err)
	}

	if err = d.TimeRange.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
