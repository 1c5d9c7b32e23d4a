package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/dmitrijs2005/puffkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDoseType(t *testing.T) {
	d, err := ParseDoseType("morning")
	require.NoError(t, err)
	assert.Equal(t, DoseMorning, d)

	d, err = ParseDoseType("evening")
	require.NoError(t, err)
	assert.Equal(t, DoseEvening, d)

	_, err = ParseDoseType("noon")
	assert.True(t, errors.Is(err, common.ErrInvalidDoseType))
}

func TestDateOf_UsesLocation(t *testing.T) {
	riga, err := time.LoadLocation("Europe/Riga")
	require.NoError(t, err)

	instant := time.Date(2026, 10, 17, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, Date{2026, time.October, 17}, DateOf(instant))
	assert.Equal(t, Date{2026, time.October, 18}, DateOf(instant.In(riga)))
}

func TestDate_ScanForms(t *testing.T) {
	var d Date

	require.NoError(t, d.Scan(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-01-02", d.String())

	require.NoError(t, d.Scan("2025-12-31"))
	assert.Equal(t, Date{2025, time.December, 31}, d)

	require.NoError(t, d.Scan([]byte("2024-02-29")))
	assert.Equal(t, Date{2024, time.February, 29}, d)

	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("yesterday"))
}

func TestDate_ValueAndJSON(t *testing.T) {
	d := Date{2026, time.October, 18}

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", v)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-10-18"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)
	assert.False(t, back.IsZero())
	assert.True(t, Date{}.IsZero())
}

func TestChangeEvent_DecodeTrackerStatePayload(t *testing.T) {
	payload := `{
		"table": "tracker_state",
		"type": "UPDATE",
		"record": {"id": "7d0c", "morning_completed": true, "morning_timestamp": "2026-10-18T07:45:10.123456+00:00",
		           "evening_completed": false, "evening_timestamp": null, "puff_count": 119,
		           "last_reset_date": "2026-10-18", "updated_at": "2026-10-18T07:45:10.123456+00:00", "singleton": true},
		"old_record": {"id": "7d0c", "morning_completed": false, "morning_timestamp": null,
		           "evening_completed": false, "evening_timestamp": null, "puff_count": 120,
		           "last_reset_date": "2026-10-18", "updated_at": "2026-10-18T00:00:00+00:00", "singleton": true}
	}`

	var ev ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &ev))
	assert.Equal(t, ChangeUpdate, ev.Type)

	var now, before TrackerState
	require.NoError(t, ev.DecodeRecord(&now))
	require.NoError(t, ev.DecodeOldRecord(&before))

	assert.True(t, now.MorningCompleted)
	require.NotNil(t, now.MorningTimestamp)
	assert.Equal(t, 7, now.MorningTimestamp.UTC().Hour())
	assert.Nil(t, now.EveningTimestamp)
	assert.Equal(t, 119, now.PuffCount)
	assert.Equal(t, Date{2026, time.October, 18}, now.LastResetDate)
	assert.Equal(t, 120, before.PuffCount)
}

func TestChangeEvent_MissingSide(t *testing.T) {
	ev := ChangeEvent{Table: common.TableExtraPuffs, Type: ChangeDelete, Record: json.RawMessage("null"),
		OldRecord: json.RawMessage(`{"id":"p1","timestamp":"2026-10-18T10:00:00Z","created_at":"2026-10-18T10:00:01Z"}`)}

	var p ExtraPuff
	assert.ErrorIs(t, ev.DecodeRecord(&p), ErrNoRecord)
	require.NoError(t, ev.DecodeOldRecord(&p))
	assert.Equal(t, "p1", p.ID)
}

func TestClearDoses(t *testing.T) {
	p := ClearDoses()
	require.NotNil(t, p.MorningCompleted)
	require.NotNil(t, p.EveningCompleted)
	assert.False(t, *p.MorningCompleted)
	assert.False(t, *p.EveningCompleted)
	require.NotNil(t, p.MorningTimestamp)
	assert.False(t, p.MorningTimestamp.Valid)
	assert.False(t, p.EveningTimestamp.Valid)
	assert.Nil(t, p.PuffCount)
	assert.Nil(t, p.LastResetDate)
}

func TestTrackerState_Completed(t *testing.T) {
	s := &TrackerState{EveningCompleted: true}
	assert.False(t, s.Completed(DoseMorning))
	assert.True(t, s.Completed(DoseEvening))
}
