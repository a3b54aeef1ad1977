package models

import "encoding/json"

// ToRecord flattens an entity into the generic record shape the storage
// layer operates on. Field names follow the json tags, so the record keys
// match the public API payloads.
func ToRecord(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// FromRecord rehydrates a typed entity from a generic record.
func FromRecord(rec map[string]any, dest any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
