package models

import (
	"encoding/json"
	"errors"
)

// ChangeOp is the row operation that produced a change event.
type ChangeOp string

const (
	ChangeInsert ChangeOp = "INSERT"
	ChangeUpdate ChangeOp = "UPDATE"
	ChangeDelete ChangeOp = "DELETE"
)

// ErrNoRecord is returned when decoding a side of a change event that is
// absent (the new row of a DELETE, the old row of an INSERT).
var ErrNoRecord = errors.New("no record in change event")

// ChangeEvent is a row-level change on one table, as published by the
// notify_change trigger.
type ChangeEvent struct {
	Table     string          `json:"table"`
	Type      ChangeOp        `json:"type"`
	Record    json.RawMessage `json:"record"`
	OldRecord json.RawMessage `json:"old_record"`
}

// DecodeRecord unmarshals the new row into v.
func (e ChangeEvent) DecodeRecord(v any) error {
	return decodeRaw(e.Record, v)
}

// DecodeOldRecord unmarshals the previous row into v.
func (e ChangeEvent) DecodeOldRecord(v any) error {
	return decodeRaw(e.OldRecord, v)
}

func decodeRaw(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return ErrNoRecord
	}
	return json.Unmarshal(raw, v)
}
