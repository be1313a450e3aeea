// internal/game/utils.go
package game

import (
	"encoding/json"
	"fmt"
)

// Encode marshals the save state for storage.
func (st SaveState) Encode() ([]byte, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal save state: %w", err)
	}
	return data, nil
}

// DecodeSaveState parses stored save state bytes. The result still needs
// Validate, which RestoreSession runs.
func DecodeSaveState(data []byte) (SaveState, error) {
	var st SaveState
	if err := json.Unmarshal(data, &st); err != nil {
		return SaveState{}, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	return st, nil
}
