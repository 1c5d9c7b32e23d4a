package tracker

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/puffkeeper/internal/common"
	"github.com/dmitrijs2005/puffkeeper/internal/dbx"
	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
	"github.com/dmitrijs2005/puffkeeper/internal/server/repositories/extrapuffs"
	"github.com/dmitrijs2005/puffkeeper/internal/server/repositories/trackerstate"
)

// memDB is an in-memory stand-in for both tables.
type memDB struct {
	mu    sync.Mutex
	state *models.TrackerState
	puffs []models.ExtraPuff

	ensureErr error
	updateErr error
	listErr   error
	insertErr error
	deleteErr error
	adjustErr error

	ensureCalls int
	adjustCalls int
}

type memStateRepo struct{ m *memDB }

func (r memStateRepo) Ensure(_ context.Context, d models.StateDefaults) (*models.TrackerState, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.ensureCalls++
	if r.m.ensureErr != nil {
		return nil, r.m.ensureErr
	}
	if r.m.state == nil {
		r.m.state = &models.TrackerState{
			ID:            d.ID,
			PuffCount:     d.PuffCount,
			LastResetDate: d.LastResetDate,
			UpdatedAt:     d.UpdatedAt,
		}
	}
	cp := *r.m.state
	return &cp, nil
}

func (r memStateRepo) Get(context.Context) (*models.TrackerState, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.state == nil {
		return nil, common.ErrorNotFound
	}
	cp := *r.m.state
	return &cp, nil
}

func nullTimePtr(nt *sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func (r memStateRepo) Update(_ context.Context, id string, p models.StatePatch, now time.Time) (*models.TrackerState, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.updateErr != nil {
		return nil, r.m.updateErr
	}
	if r.m.state == nil || r.m.state.ID != id {
		return nil, common.ErrorNotFound
	}
	s := r.m.state
	if p.MorningCompleted != nil {
		s.MorningCompleted = *p.MorningCompleted
	}
	if p.MorningTimestamp != nil {
		s.MorningTimestamp = nullTimePtr(p.MorningTimestamp)
	}
	if p.EveningCompleted != nil {
		s.EveningCompleted = *p.EveningCompleted
	}
	if p.EveningTimestamp != nil {
		s.EveningTimestamp = nullTimePtr(p.EveningTimestamp)
	}
	if p.PuffCount != nil {
		s.PuffCount = *p.PuffCount
	}
	if p.LastResetDate != nil {
		s.LastResetDate = *p.LastResetDate
	}
	s.UpdatedAt = now
	cp := *s
	return &cp, nil
}

func (r memStateRepo) ToggleDose(_ context.Context, dose models.DoseType, now time.Time) (*models.TrackerState, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.state == nil {
		return nil, common.ErrorNotFound
	}
	s := r.m.state
	flag, ts := &s.MorningCompleted, &s.MorningTimestamp
	if dose == models.DoseEvening {
		flag, ts = &s.EveningCompleted, &s.EveningTimestamp
	}
	if *flag {
		*flag, *ts = false, nil
		s.PuffCount++
	} else {
		t := now
		*flag, *ts = true, &t
		s.PuffCount--
	}
	s.UpdatedAt = now
	cp := *s
	return &cp, nil
}

func (r memStateRepo) AdjustPuffCount(_ context.Context, delta int, now time.Time) (*models.TrackerState, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.adjustCalls++
	if r.m.adjustErr != nil {
		return nil, r.m.adjustErr
	}
	if r.m.state == nil {
		return nil, common.ErrorNotFound
	}
	r.m.state.PuffCount += delta
	r.m.state.UpdatedAt = now
	cp := *r.m.state
	return &cp, nil
}

func (r memStateRepo) ResetIfStale(_ context.Context, today models.Date, now time.Time) (*models.TrackerState, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.state == nil {
		return nil, false, common.ErrorNotFound
	}
	s := r.m.state
	reset := s.LastResetDate != today
	if reset {
		s.MorningCompleted, s.MorningTimestamp = false, nil
		s.EveningCompleted, s.EveningTimestamp = false, nil
		s.LastResetDate = today
		s.UpdatedAt = now
	}
	cp := *s
	return &cp, reset, nil
}

type memPuffRepo struct{ m *memDB }

func (r memPuffRepo) Insert(_ context.Context, p *models.ExtraPuff) (*models.ExtraPuff, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.insertErr != nil {
		return nil, r.m.insertErr
	}
	out := *p
	out.CreatedAt = p.Timestamp
	r.m.puffs = append(r.m.puffs, out)
	return &out, nil
}

func (r memPuffRepo) Delete(_ context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.deleteErr != nil {
		return false, r.m.deleteErr
	}
	for i, p := range r.m.puffs {
		if p.ID == id {
			r.m.puffs = append(r.m.puffs[:i], r.m.puffs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r memPuffRepo) List(context.Context) ([]models.ExtraPuff, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.listErr != nil {
		return nil, r.m.listErr
	}
	if len(r.m.puffs) == 0 {
		return nil, nil
	}
	out := append([]models.ExtraPuff(nil), r.m.puffs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

type memRepoManager struct {
	m *memDB
}

func (f *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *memRepoManager) TrackerState(dbx.DBTX) trackerstate.Repository {
	return memStateRepo{f.m}
}
func (f *memRepoManager) ExtraPuffs(dbx.DBTX) extrapuffs.Repository {
	return memPuffRepo{f.m}
}
