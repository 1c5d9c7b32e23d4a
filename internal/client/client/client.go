package client

import (
	"context"

	"github.com/dmitrijs2005/puffkeeper/internal/api"
)

// Client is the tracker as seen from the CLI.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	GetState(ctx context.Context) (*api.TrackerState, error)
	UpdateState(ctx context.Context, patch *api.UpdateStateRequest) (*api.TrackerState, error)
	ToggleDose(ctx context.Context, dose string) (*api.TrackerState, error)
	ListExtraPuffs(ctx context.Context) ([]api.ExtraPuff, error)
	AddExtraPuff(ctx context.Context) (*api.ExtraPuff, error)
	DeleteExtraPuff(ctx context.Context, id string) (bool, error)
	ResetDay(ctx context.Context) (*api.TrackerState, error)
	RefillInhaler(ctx context.Context, n int) (*api.TrackerState, error)
	CheckDailyReset(ctx context.Context) (*api.TrackerState, bool, error)
	Watch(ctx context.Context, table string) (*Stream, error)
}
