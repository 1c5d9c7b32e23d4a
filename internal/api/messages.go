package api

import (
	"encoding/json"
	"time"
)

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// Empty is the request of calls that take no arguments.
type Empty struct{}

type TrackerState struct {
	ID               string     `json:"id"`
	MorningCompleted bool       `json:"morning_completed"`
	MorningTimestamp *time.Time `json:"morning_timestamp,omitempty"`
	EveningCompleted bool       `json:"evening_completed"`
	EveningTimestamp *time.Time `json:"evening_timestamp,omitempty"`
	PuffCount        int        `json:"puff_count"`
	LastResetDate    string     `json:"last_reset_date"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type ExtraPuff struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

type StateResponse struct {
	State *TrackerState `json:"state"`
}

// UpdateStateRequest carries a partial update. Nil fields are left alone.
// A Clear* flag empties the matching timestamp and wins over a value.
type UpdateStateRequest struct {
	MorningCompleted      *bool      `json:"morning_completed,omitempty"`
	MorningTimestamp      *time.Time `json:"morning_timestamp,omitempty"`
	ClearMorningTimestamp bool       `json:"clear_morning_timestamp,omitempty"`
	EveningCompleted      *bool      `json:"evening_completed,omitempty"`
	EveningTimestamp      *time.Time `json:"evening_timestamp,omitempty"`
	ClearEveningTimestamp bool       `json:"clear_evening_timestamp,omitempty"`
	PuffCount             *int       `json:"puff_count,omitempty"`
	LastResetDate         *string    `json:"last_reset_date,omitempty"`
}

type ToggleDoseRequest struct {
	Dose string `json:"dose"`
}

type ListExtraPuffsResponse struct {
	ExtraPuffs []ExtraPuff `json:"extra_puffs"`
}

type ExtraPuffResponse struct {
	ExtraPuff *ExtraPuff `json:"extra_puff"`
}

type DeleteExtraPuffRequest struct {
	ID string `json:"id"`
}

type DeleteExtraPuffResponse struct {
	Deleted bool `json:"deleted"`
}

type RefillInhalerRequest struct {
	PuffCount int `json:"puff_count"`
}

type CheckDailyResetResponse struct {
	State *TrackerState `json:"state"`
	Reset bool          `json:"reset"`
}

// WatchRequest names the table to stream changes of: "tracker_state" or
// "extra_puffs".
type WatchRequest struct {
	Table string `json:"table"`
}

// ChangeEvent is one row change. Record is null for deletes and OldRecord is
// null for inserts.
type ChangeEvent struct {
	Table     string          `json:"table"`
	Type      string          `json:"type"`
	Record    json.RawMessage `json:"record,omitempty"`
	OldRecord json.RawMessage `json:"old_record,omitempty"`
}
