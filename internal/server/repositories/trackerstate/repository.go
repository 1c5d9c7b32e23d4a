package trackerstate

import (
	"context"
	"time"

	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
)

type Repository interface {
	Ensure(ctx context.Context, defaults models.StateDefaults) (*models.TrackerState, error)
	Get(ctx context.Context) (*models.TrackerState, error)
	Update(ctx context.Context, id string, patch models.StatePatch, now time.Time) (*models.TrackerState, error)
	ToggleDose(ctx context.Context, dose models.DoseType, now time.Time) (*models.TrackerState, error)
	AdjustPuffCount(ctx context.Context, delta int, now time.Time) (*models.TrackerState, error)
	ResetIfStale(ctx context.Context, today models.Date, now time.Time) (*models.TrackerState, bool, error)
}
