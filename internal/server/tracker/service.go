// Package tracker implements the inhaler tracker store: the singleton
// TrackerState row, the log of extra puffs and the change streams on both.
//
// Every method logs its failure with the operation name and returns a nil
// result together with the error. Callers treat a non-nil error as "nothing
// happened"; there are no retries.
package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/puffkeeper/internal/common"
	"github.com/dmitrijs2005/puffkeeper/internal/dbx"
	"github.com/dmitrijs2005/puffkeeper/internal/logging"
	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
	"github.com/dmitrijs2005/puffkeeper/internal/server/notify"
	"github.com/dmitrijs2005/puffkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Subscriber opens change streams on a table.
type Subscriber interface {
	Subscribe(ctx context.Context, table string) (*notify.Subscription, error)
}

type Service struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	subscriber  Subscriber
	logger      logging.Logger
	now         func() time.Time
	location    *time.Location
	initialPuff int
}

type Option func(*Service)

func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithInitialPuffCount sets the puff count of a lazily created tracker.
func WithInitialPuffCount(n int) Option {
	return func(s *Service) { s.initialPuff = n }
}

func NewService(db *sql.DB, m repomanager.RepositoryManager, sub Subscriber, opts ...Option) *Service {
	s := &Service{
		db:          db,
		repomanager: m,
		subscriber:  sub,
		logger:      logging.Nop{},
		now:         time.Now,
		location:    time.UTC,
		initialPuff: models.DefaultPuffCount,
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("module", "tracker")
	return s
}

// Today is the current calendar date in the configured location.
func (s *Service) Today() models.Date {
	return models.DateOf(s.now().In(s.location))
}

func (s *Service) fail(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, "operation failed", "op", op, "error", err)
	return err
}

func (s *Service) defaults() models.StateDefaults {
	now := s.now()
	return models.StateDefaults{
		ID:            uuid.NewString(),
		PuffCount:     s.initialPuff,
		LastResetDate: models.DateOf(now.In(s.location)),
		UpdatedAt:     now.UTC(),
	}
}

// GetState returns the tracker, creating it with defaults on first use.
func (s *Service) GetState(ctx context.Context) (*models.TrackerState, error) {
	st, err := s.repomanager.TrackerState(s.db).Ensure(ctx, s.defaults())
	if err != nil {
		return nil, s.fail(ctx, "getState", fmt.Errorf("error ensuring tracker state: %w", err))
	}
	return st, nil
}

// EnsureStateID returns the id of the singleton row, creating it if needed.
// Concurrent callers always observe the same id.
func (s *Service) EnsureStateID(ctx context.Context) (string, error) {
	st, err := s.repomanager.TrackerState(s.db).Ensure(ctx, s.defaults())
	if err != nil {
		return "", s.fail(ctx, "ensureStateId", fmt.Errorf("error ensuring tracker state: %w", err))
	}
	return st.ID, nil
}

// UpdateState applies patch to the tracker and stamps updated_at.
func (s *Service) UpdateState(ctx context.Context, patch models.StatePatch) (*models.TrackerState, error) {
	id, err := s.EnsureStateID(ctx)
	if err != nil {
		return nil, err
	}

	st, err := s.repomanager.TrackerState(s.db).Update(ctx, id, patch, s.now().UTC())
	if err != nil {
		return nil, s.fail(ctx, "updateState", fmt.Errorf("error updating tracker state: %w", err))
	}
	return st, nil
}

// ToggleDose flips the completion of dose. Completing takes a puff off the
// counter and un-completing gives it back.
func (s *Service) ToggleDose(ctx context.Context, dose models.DoseType) (*models.TrackerState, error) {
	if _, err := models.ParseDoseType(string(dose)); err != nil {
		return nil, s.fail(ctx, "toggleDose", err)
	}

	if _, err := s.EnsureStateID(ctx); err != nil {
		return nil, err
	}

	st, err := s.repomanager.TrackerState(s.db).ToggleDose(ctx, dose, s.now().UTC())
	if err != nil {
		return nil, s.fail(ctx, "toggleDose", fmt.Errorf("error toggling %s dose: %w", dose, err))
	}

	s.logger.Debug(ctx, "dose toggled", "dose", dose, "completed", st.Completed(dose), "puff_count", st.PuffCount)
	return st, nil
}

// ListExtraPuffs returns the extra puffs, newest first. The slice is never nil.
func (s *Service) ListExtraPuffs(ctx context.Context) ([]models.ExtraPuff, error) {
	puffs, err := s.repomanager.ExtraPuffs(s.db).List(ctx)
	if err != nil {
		return []models.ExtraPuff{}, s.fail(ctx, "listExtraPuffs", fmt.Errorf("error listing extra puffs: %w", err))
	}
	if puffs == nil {
		puffs = []models.ExtraPuff{}
	}
	return puffs, nil
}

// AddExtraPuff records an off-schedule puff and takes it off the counter in
// one transaction.
func (s *Service) AddExtraPuff(ctx context.Context) (*models.ExtraPuff, error) {
	defaults := s.defaults()
	now := defaults.UpdatedAt

	var created *models.ExtraPuff
	err := dbx.WithTx(ctx, s.db, s.logger, nil, func(ctx context.Context, tx dbx.DBTX) error {
		states := s.repomanager.TrackerState(tx)
		if _, err := states.Ensure(ctx, defaults); err != nil {
			return fmt.Errorf("error ensuring tracker state: %w", err)
		}

		p, err := s.repomanager.ExtraPuffs(tx).Insert(ctx, &models.ExtraPuff{
			ID:        uuid.NewString(),
			Timestamp: now,
		})
		if err != nil {
			return fmt.Errorf("error inserting extra puff: %w", err)
		}

		if _, err := states.AdjustPuffCount(ctx, -1, now); err != nil {
			return fmt.Errorf("error adjusting puff count: %w", err)
		}

		created = p
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "addExtraPuff", err)
	}

	return created, nil
}

// DeleteExtraPuff removes an extra puff and gives it back to the counter.
// It reports false, and leaves the counter alone, when no such puff exists.
// Any form uuid.Parse accepts is reduced to the canonical one Postgres reads.
func (s *Service) DeleteExtraPuff(ctx context.Context, rawID string) (bool, error) {
	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return false, s.fail(ctx, "deleteExtraPuff", fmt.Errorf("%w: %q", common.ErrInvalidID, rawID))
	}
	id := parsed.String()

	now := s.now().UTC()

	var deleted bool
	err = dbx.WithTx(ctx, s.db, s.logger, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := s.repomanager.ExtraPuffs(tx).Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("error deleting extra puff: %w", err)
		}
		if !ok {
			return nil
		}

		if _, err := s.repomanager.TrackerState(tx).AdjustPuffCount(ctx, 1, now); err != nil {
			return fmt.Errorf("error adjusting puff count: %w", err)
		}

		deleted = true
		return nil
	})
	if err != nil {
		return false, s.fail(ctx, "deleteExtraPuff", err)
	}

	if !deleted {
		s.logger.Info(ctx, "extra puff not found", "id", id)
	}
	return deleted, nil
}

// ResetDay clears both doses. Calling it again changes nothing but
// updated_at.
func (s *Service) ResetDay(ctx context.Context) (*models.TrackerState, error) {
	return s.UpdateState(ctx, models.ClearDoses())
}

// RefillInhaler sets the puff counter to n. No bounds are enforced.
func (s *Service) RefillInhaler(ctx context.Context, n int) (*models.TrackerState, error) {
	return s.UpdateState(ctx, models.StatePatch{PuffCount: &n})
}

// CheckDailyReset clears the doses and advances last_reset_date when the
// tracker was last reset on another day. It reports whether it did.
func (s *Service) CheckDailyReset(ctx context.Context) (*models.TrackerState, bool, error) {
	if _, err := s.EnsureStateID(ctx); err != nil {
		return nil, false, err
	}

	today := s.Today()
	st, reset, err := s.repomanager.TrackerState(s.db).ResetIfStale(ctx, today, s.now().UTC())
	if err != nil {
		return nil, false, s.fail(ctx, "checkDailyReset", fmt.Errorf("error resetting day: %w", err))
	}

	if reset {
		s.logger.Info(ctx, "daily reset", "date", today.String())
	}
	return st, reset, nil
}

// SubscribeToState streams changes of the tracker row.
func (s *Service) SubscribeToState(ctx context.Context) (*notify.Subscription, error) {
	return s.subscribe(ctx, "subscribeToState", common.TableTrackerState)
}

// SubscribeToExtraPuffs streams inserts and deletes of extra puffs.
func (s *Service) SubscribeToExtraPuffs(ctx context.Context) (*notify.Subscription, error) {
	return s.subscribe(ctx, "subscribeToExtraPuffs", common.TableExtraPuffs)
}

func (s *Service) subscribe(ctx context.Context, op, table string) (*notify.Subscription, error) {
	if s.subscriber == nil {
		return nil, s.fail(ctx, op, fmt.Errorf("change notifications are not configured"))
	}
	sub, err := s.subscriber.Subscribe(ctx, table)
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}
	return sub, nil
}
