package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/petrijr/onboard/pkg/api"
)

// Snapshots cross the persistence boundary as JSON so external stores
// (and humans debugging them) can read the payloads. Decode failures
// surface as errors here; callers treat them like any other store
// failure and fall back to schema defaults.

// EncodeProfile serializes a profile for storage.
func EncodeProfile(p api.Profile) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return data, nil
}

// DecodeProfile deserializes a stored profile. Corrupt payloads return
// an error rather than a partial profile.
func DecodeProfile(data []byte) (api.Profile, error) {
	if len(data) == 0 {
		return api.Profile{}, nil
	}
	var p api.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

// EncodeFlowState serializes a position for storage.
func EncodeFlowState(fs api.FlowState) ([]byte, error) {
	data, err := json.Marshal(fs)
	if err != nil {
		return nil, fmt.Errorf("encode flow state: %w", err)
	}
	return data, nil
}

// DecodeFlowState deserializes a stored position.
func DecodeFlowState(data []byte) (api.FlowState, error) {
	if len(data) == 0 {
		return api.NewFlowState(), nil
	}
	var fs api.FlowState
	if err := json.Unmarshal(data, &fs); err != nil {
		return api.FlowState{}, fmt.Errorf("decode flow state: %w", err)
	}
	if fs.Completed == nil {
		fs.Completed = make(map[string]bool)
	}
	return fs, nil
}
