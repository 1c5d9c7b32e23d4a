// Package trackerstate provides the PostgreSQL repository for the
// tracker_state singleton row.
package trackerstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/puffkeeper/internal/common"
	"github.com/dmitrijs2005/puffkeeper/internal/dbx"
	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
)

const stateColumns = `id, morning_completed, morning_timestamp, evening_completed, evening_timestamp, puff_count, last_reset_date, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
// Every statement addresses the row through the singleton constraint or its id,
// so there is never more than one row to pick from.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Ensure returns the singleton row, inserting it with defaults when the table
// is empty. The insert is keyed on the singleton constraint, so concurrent
// callers end up with the same row.
func (r *PostgresRepository) Ensure(ctx context.Context, d models.StateDefaults) (*models.TrackerState, error) {
	query := `
		WITH inserted AS (
			INSERT INTO tracker_state (id, morning_completed, evening_completed, puff_count, last_reset_date, updated_at)
			VALUES ($1, FALSE, FALSE, $2, $3, $4)
			ON CONFLICT (singleton) DO NOTHING
			RETURNING ` + stateColumns + `
		)
		SELECT ` + stateColumns + ` FROM inserted
		UNION ALL
		SELECT ` + stateColumns + ` FROM tracker_state
		WHERE singleton AND NOT EXISTS (SELECT 1 FROM inserted)
	`

	state, err := scanState(r.db.QueryRowContext(ctx, query, d.ID, d.PuffCount, d.LastResetDate, d.UpdatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		// A concurrent insert committed after this statement took its snapshot.
		return r.Get(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return state, nil
}

// Get returns the singleton row or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context) (*models.TrackerState, error) {
	query := `SELECT ` + stateColumns + ` FROM tracker_state WHERE singleton`

	state, err := scanState(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return state, nil
}

// Update writes the non-nil fields of patch to the row with the given id and
// stamps updated_at with now.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.StatePatch, now time.Time) (*models.TrackerState, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.MorningCompleted != nil {
		set("morning_completed", *patch.MorningCompleted)
	}
	if patch.MorningTimestamp != nil {
		set("morning_timestamp", *patch.MorningTimestamp)
	}
	if patch.EveningCompleted != nil {
		set("evening_completed", *patch.EveningCompleted)
	}
	if patch.EveningTimestamp != nil {
		set("evening_timestamp", *patch.EveningTimestamp)
	}
	if patch.PuffCount != nil {
		set("puff_count", *patch.PuffCount)
	}
	if patch.LastResetDate != nil {
		set("last_reset_date", *patch.LastResetDate)
	}
	set("updated_at", now)

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tracker_state SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), stateColumns)

	state, err := scanState(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return state, nil
}

// ToggleDose flips the dose flag in a single statement. The timestamp is set
// to now on completion and cleared otherwise; puff_count moves by one in the
// opposite direction of the flag. Column references on the right-hand side
// see the row before the update.
func (r *PostgresRepository) ToggleDose(ctx context.Context, dose models.DoseType, now time.Time) (*models.TrackerState, error) {
	completed, timestamp, err := doseColumns(dose)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE tracker_state SET
			%[1]s = NOT %[1]s,
			%[2]s = CASE WHEN %[1]s THEN NULL ELSE $1::timestamptz END,
			puff_count = CASE WHEN %[1]s THEN puff_count + 1 ELSE puff_count - 1 END,
			updated_at = $1
		WHERE singleton
		RETURNING %[3]s
	`, completed, timestamp, stateColumns)

	state, err := scanState(r.db.QueryRowContext(ctx, query, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return state, nil
}

// AdjustPuffCount adds delta to puff_count without reading it first.
func (r *PostgresRepository) AdjustPuffCount(ctx context.Context, delta int, now time.Time) (*models.TrackerState, error) {
	query := `
		UPDATE tracker_state SET puff_count = puff_count + $1, updated_at = $2
		WHERE singleton
		RETURNING ` + stateColumns

	state, err := scanState(r.db.QueryRowContext(ctx, query, delta, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return state, nil
}

// ResetIfStale clears both doses and moves last_reset_date to today, but only
// when last_reset_date differs from today. The boolean reports whether the
// reset happened; when it did not, the current row is returned.
func (r *PostgresRepository) ResetIfStale(ctx context.Context, today models.Date, now time.Time) (*models.TrackerState, bool, error) {
	query := `
		UPDATE tracker_state SET
			morning_completed = FALSE,
			morning_timestamp = NULL,
			evening_completed = FALSE,
			evening_timestamp = NULL,
			last_reset_date = $1,
			updated_at = $2
		WHERE singleton AND last_reset_date <> $1
		RETURNING ` + stateColumns

	state, err := scanState(r.db.QueryRowContext(ctx, query, today, now))
	if err == nil {
		return state, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("db error: %w", err)
	}

	state, err = r.Get(ctx)
	if err != nil {
		return nil, false, err
	}
	return state, false, nil
}

func doseColumns(dose models.DoseType) (completed, timestamp string, err error) {
	switch dose {
	case models.DoseMorning:
		return "morning_completed", "morning_timestamp", nil
	case models.DoseEvening:
		return "evening_completed", "evening_timestamp", nil
	default:
		return "", "", fmt.Errorf("%w: %q", common.ErrInvalidDoseType, dose)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanState(row rowScanner) (*models.TrackerState, error) {
	var (
		s                models.TrackerState
		morning, evening sql.NullTime
	)
	err := row.Scan(&s.ID, &s.MorningCompleted, &morning, &s.EveningCompleted, &evening,
		&s.PuffCount, &s.LastResetDate, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.MorningTimestamp = timePtr(morning)
	s.EveningTimestamp = timePtr(evening)
	return &s, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
