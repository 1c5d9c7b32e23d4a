// Package scheduler runs the server's periodic jobs: the daily dose reset
// and, when object storage is configured, the tracker snapshot.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/puffkeeper/internal/logging"
	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
	"github.com/robfig/cron/v3"
)

const jobTimeout = time.Minute

// DailyResetter clears yesterday's doses.
type DailyResetter interface {
	CheckDailyReset(ctx context.Context) (*models.TrackerState, bool, error)
}

// Snapshotter stores a copy of the tracker and returns where it went.
type Snapshotter interface {
	Snapshot(ctx context.Context) (string, error)
}

type Scheduler struct {
	cron        *cron.Cron
	resetter    DailyResetter
	snapshotter Snapshotter
	logger      logging.Logger
	ctx         context.Context
}

// New registers the reset job on resetSpec and, if snapshotter is not nil,
// the backup job on backupSpec. Schedules are evaluated in loc.
func New(resetter DailyResetter, snapshotter Snapshotter, loc *time.Location, resetSpec, backupSpec string, l logging.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:        cron.New(cron.WithLocation(loc)),
		resetter:    resetter,
		snapshotter: snapshotter,
		logger:      l.With("module", "scheduler"),
		ctx:         context.Background(),
	}

	if _, err := s.cron.AddFunc(resetSpec, s.runReset); err != nil {
		return nil, fmt.Errorf("failed to add reset job %q: %w", resetSpec, err)
	}

	if snapshotter != nil {
		if _, err := s.cron.AddFunc(backupSpec, s.runBackup); err != nil {
			return nil, fmt.Errorf("failed to add backup job %q: %w", backupSpec, err)
		}
	}

	return s, nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Run performs one reset check, starts the cron and blocks until ctx is
// cancelled. Running jobs are waited for before it returns.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx

	s.logger.Info(ctx, "Starting scheduler", "jobs", s.Jobs())
	s.runReset()
	s.cron.Start()

	<-ctx.Done()

	s.logger.Info(ctx, "Stopping scheduler...")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runReset() {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	st, reset, err := s.resetter.CheckDailyReset(ctx)
	if err != nil {
		s.logger.Error(ctx, "daily reset failed", "error", err)
		return
	}
	if reset {
		s.logger.Info(ctx, "daily reset done", "date", st.LastResetDate.String())
	}
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	key, err := s.snapshotter.Snapshot(ctx)
	if err != nil {
		s.logger.Error(ctx, "snapshot failed", "error", err)
		return
	}
	s.logger.Info(ctx, "snapshot stored", "key", key)
}
