// Package models holds the server-side domain types persisted in PostgreSQL.
package models

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/puffkeeper/internal/common"
)

// DefaultPuffCount is the puff count of a freshly created tracker.
const DefaultPuffCount = 120

// DoseType names one of the two scheduled doses of a day.
type DoseType string

const (
	DoseMorning DoseType = "morning"
	DoseEvening DoseType = "evening"
)

// ParseDoseType validates s and returns it as a DoseType.
func ParseDoseType(s string) (DoseType, error) {
	switch DoseType(s) {
	case DoseMorning, DoseEvening:
		return DoseType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrInvalidDoseType, s)
	}
}

// TrackerState is the singleton row of tracker_state. JSON tags follow the
// column names so that change notification payloads decode into it.
type TrackerState struct {
	ID               string     `json:"id"`
	MorningCompleted bool       `json:"morning_completed"`
	MorningTimestamp *time.Time `json:"morning_timestamp"`
	EveningCompleted bool       `json:"evening_completed"`
	EveningTimestamp *time.Time `json:"evening_timestamp"`
	PuffCount        int        `json:"puff_count"`
	LastResetDate    Date       `json:"last_reset_date"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Completed reports whether the given dose is marked as taken.
func (s *TrackerState) Completed(dose DoseType) bool {
	if dose == DoseEvening {
		return s.EveningCompleted
	}
	return s.MorningCompleted
}

// ExtraPuff is an off-schedule inhaler use.
type ExtraPuff struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

// StatePatch is a partial update of TrackerState. Nil fields are left as
// they are. For timestamps a non-nil NullTime with Valid=false clears the
// column.
type StatePatch struct {
	MorningCompleted *bool
	MorningTimestamp *sql.NullTime
	EveningCompleted *bool
	EveningTimestamp *sql.NullTime
	PuffCount        *int
	LastResetDate    *Date
}

// ClearDoses returns a patch that unmarks both doses and drops their
// timestamps.
func ClearDoses() StatePatch {
	f := false
	return StatePatch{
		MorningCompleted: &f,
		MorningTimestamp: &sql.NullTime{},
		EveningCompleted: &f,
		EveningTimestamp: &sql.NullTime{},
	}
}

// StateDefaults are the values used when the singleton row is created lazily.
type StateDefaults struct {
	ID            string
	PuffCount     int
	LastResetDate Date
	UpdatedAt     time.Time
}
