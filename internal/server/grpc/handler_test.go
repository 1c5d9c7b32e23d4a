package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/puffkeeper/internal/api"
	"github.com/dmitrijs2005/puffkeeper/internal/common"
	"github.com/dmitrijs2005/puffkeeper/internal/server/auth"
	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
	"github.com/dmitrijs2005/puffkeeper/internal/server/notify"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ---- fakes ----

type fakeStore struct {
	state *models.TrackerState
	puffs []models.ExtraPuff
	reset bool
	err   error

	deleted   bool
	lastPatch models.StatePatch
	lastDose  models.DoseType
	lastN     int

	payloads []string
}

func (f *fakeStore) GetState(context.Context) (*models.TrackerState, error) {
	return f.state, f.err
}
func (f *fakeStore) UpdateState(_ context.Context, p models.StatePatch) (*models.TrackerState, error) {
	f.lastPatch = p
	return f.state, f.err
}
func (f *fakeStore) ToggleDose(_ context.Context, d models.DoseType) (*models.TrackerState, error) {
	f.lastDose = d
	return f.state, f.err
}
func (f *fakeStore) ListExtraPuffs(context.Context) ([]models.ExtraPuff, error) {
	return f.puffs, f.err
}
func (f *fakeStore) AddExtraPuff(context.Context) (*models.ExtraPuff, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.puffs[0], nil
}
func (f *fakeStore) DeleteExtraPuff(context.Context, string) (bool, error) {
	return f.deleted, f.err
}
func (f *fakeStore) ResetDay(context.Context) (*models.TrackerState, error) {
	return f.state, f.err
}
func (f *fakeStore) RefillInhaler(_ context.Context, n int) (*models.TrackerState, error) {
	f.lastN = n
	return f.state, f.err
}
func (f *fakeStore) CheckDailyReset(context.Context) (*models.TrackerState, bool, error) {
	return f.state, f.reset, f.err
}
func (f *fakeStore) SubscribeToState(ctx context.Context) (*notify.Subscription, error) {
	return f.subscribe(ctx, common.TableTrackerState)
}
func (f *fakeStore) SubscribeToExtraPuffs(ctx context.Context) (*notify.Subscription, error) {
	return f.subscribe(ctx, common.TableExtraPuffs)
}

func (f *fakeStore) subscribe(ctx context.Context, table string) (*notify.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	conn := &replayConn{payloads: f.payloads}
	return notify.NewListener(func(context.Context) (notify.Conn, error) { return conn, nil }, nopLogger{}).Subscribe(ctx, table)
}

// replayConn hands out its payloads, then ends the stream with io.EOF.
type replayConn struct {
	payloads []string
}

func (c *replayConn) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("LISTEN"), nil
}

func (c *replayConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	if len(c.payloads) == 0 {
		return nil, io.EOF
	}
	p := c.payloads[0]
	c.payloads = c.payloads[1:]
	return &pgconn.Notification{Payload: p}, nil
}

func (c *replayConn) Close(context.Context) error { return nil }

func sampleState() *models.TrackerState {
	ts := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	return &models.TrackerState{
		ID:               "6a1f3c0e-7d2b-4c59-8f43-1b2a3c4d5e6f",
		MorningCompleted: true,
		MorningTimestamp: &ts,
		PuffCount:        119,
		LastResetDate:    models.Date{Year: 2025, Month: time.March, Day: 10},
		UpdatedAt:        ts,
	}
}

// ---- tests ----

func TestHandlers_RejectMissingKey(t *testing.T) {
	c := startBufconn(t, NewGRPCServer("", nopLogger{}, &fakeStore{state: sampleState()}, testSecret))

	pong, err := c.Ping(context.Background(), &api.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "OK", pong.Status)

	_, err = c.GetState(context.Background(), &api.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	stream, err := c.Watch(context.Background(), &api.WatchRequest{Table: common.TableTrackerState})
	if err == nil {
		_, err = stream.Recv()
	}
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestHandlers_StateCalls(t *testing.T) {
	store := &fakeStore{state: sampleState(), reset: true}
	c := startBufconn(t, NewGRPCServer("", nopLogger{}, store, testSecret))
	ctx := withKey(t, auth.RoleAnon)

	got, err := c.GetState(ctx, &api.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", got.State.LastResetDate)
	assert.Equal(t, 119, got.State.PuffCount)
	require.NotNil(t, got.State.MorningTimestamp)
	assert.True(t, got.State.MorningTimestamp.Equal(*sampleState().MorningTimestamp))

	_, err = c.ToggleDose(ctx, &api.ToggleDoseRequest{Dose: "evening"})
	require.NoError(t, err)
	assert.Equal(t, models.DoseEvening, store.lastDose)

	_, err = c.RefillInhaler(ctx, &api.RefillInhalerRequest{PuffCount: 40})
	require.NoError(t, err)
	assert.Equal(t, 40, store.lastN)

	_, err = c.ResetDay(ctx, &api.Empty{})
	require.NoError(t, err)

	cr, err := c.CheckDailyReset(ctx, &api.Empty{})
	require.NoError(t, err)
	assert.True(t, cr.Reset)
	assert.Equal(t, sampleState().ID, cr.State.ID)
}

func TestHandlers_UpdateStatePatch(t *testing.T) {
	store := &fakeStore{state: sampleState()}
	c := startBufconn(t, NewGRPCServer("", nopLogger{}, store, testSecret))
	ctx := withKey(t, auth.RoleService)

	yes := true
	n := 7
	date := "2025-03-09"
	_, err := c.UpdateState(ctx, &api.UpdateStateRequest{
		MorningCompleted:      &yes,
		ClearEveningTimestamp: true,
		PuffCount:             &n,
		LastResetDate:         &date,
	})
	require.NoError(t, err)

	p := store.lastPatch
	require.NotNil(t, p.MorningCompleted)
	assert.True(t, *p.MorningCompleted)
	assert.Nil(t, p.MorningTimestamp)
	require.NotNil(t, p.EveningTimestamp)
	assert.False(t, p.EveningTimestamp.Valid)
	assert.Equal(t, 7, *p.PuffCount)
	assert.Equal(t, "2025-03-09", p.LastResetDate.String())

	bad := "yesterday"
	_, err = c.UpdateState(ctx, &api.UpdateStateRequest{LastResetDate: &bad})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHandlers_UpdateStateNeedsServiceRole(t *testing.T) {
	store := &fakeStore{state: sampleState()}
	c := startBufconn(t, NewGRPCServer("", nopLogger{}, store, testSecret))

	n := 7
	_, err := c.UpdateState(withKey(t, auth.RoleAnon), &api.UpdateStateRequest{PuffCount: &n})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.Nil(t, store.lastPatch.PuffCount)

	_, err = c.RefillInhaler(withKey(t, auth.RoleAnon), &api.RefillInhalerRequest{PuffCount: 120})
	require.NoError(t, err)
	assert.Equal(t, 120, store.lastN)
}

func TestHandlers_ExtraPuffs(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		state:   sampleState(),
		puffs:   []models.ExtraPuff{{ID: "p1", Timestamp: ts, CreatedAt: ts}},
		deleted: true,
	}
	c := startBufconn(t, NewGRPCServer("", nopLogger{}, store, testSecret))
	ctx := withKey(t, auth.RoleAnon)

	added, err := c.AddExtraPuff(ctx, &api.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "p1", added.ExtraPuff.ID)

	list, err := c.ListExtraPuffs(ctx, &api.Empty{})
	require.NoError(t, err)
	require.Len(t, list.ExtraPuffs, 1)
	assert.True(t, ts.Equal(list.ExtraPuffs[0].Timestamp))

	del, err := c.DeleteExtraPuff(ctx, &api.DeleteExtraPuffRequest{ID: "p1"})
	require.NoError(t, err)
	assert.True(t, del.Deleted)

	store.puffs = []models.ExtraPuff{}
	list, err = c.ListExtraPuffs(ctx, &api.Empty{})
	require.NoError(t, err)
	assert.Empty(t, list.ExtraPuffs)
}

func TestHandlers_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{fmt.Errorf("wrap: %w", common.ErrInvalidDoseType), codes.InvalidArgument},
		{fmt.Errorf("wrap: %w", common.ErrInvalidID), codes.InvalidArgument},
		{common.ErrorNotFound, codes.NotFound},
		{fmt.Errorf("wrap: %w", common.ErrorUnauthorized), codes.PermissionDenied},
		{errors.New("db error: connection refused"), codes.Internal},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			store := &fakeStore{err: tc.err}
			c := startBufconn(t, NewGRPCServer("", nopLogger{}, store, testSecret))

			_, err := c.DeleteExtraPuff(withKey(t, auth.RoleAnon), &api.DeleteExtraPuffRequest{ID: "x"})
			assert.Equal(t, tc.code, status.Code(err))
		})
	}
}

func TestHandlers_InternalErrorHidesDetails(t *testing.T) {
	store := &fakeStore{err: errors.New("password authentication failed for user tracker")}
	c := startBufconn(t, NewGRPCServer("", nopLogger{}, store, testSecret))

	_, err := c.GetState(withKey(t, auth.RoleAnon), &api.Empty{})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, common.ErrorInternal.Error(), status.Convert(err).Message())
}

func TestHandlers_ToggleDoseInvalid(t *testing.T) {
	store := &fakeStore{state: sampleState()}
	c := startBufconn(t, NewGRPCServer("", nopLogger{}, store, testSecret))

	_, err := c.ToggleDose(withKey(t, auth.RoleAnon), &api.ToggleDoseRequest{Dose: "noon"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Empty(t, store.lastDose)
}

func TestWatch_ForwardsEvents(t *testing.T) {
	store := &fakeStore{payloads: []string{
		`{"table":"extra_puffs","type":"INSERT","record":{"id":"p1"},"old_record":null}`,
		`garbage`,
		`{"table":"extra_puffs","type":"DELETE","record":null,"old_record":{"id":"p1"}}`,
	}}
	c := startBufconn(t, NewGRPCServer("", nopLogger{}, store, testSecret))

	stream, err := c.Watch(withKey(t, auth.RoleAnon), &api.WatchRequest{Table: common.TableExtraPuffs})
	require.NoError(t, err)

	var got []*api.ChangeEvent
	for {
		ev, err := stream.Recv()
		if err != nil {
			// the replay connection fails after its payloads
			assert.Equal(t, codes.Unavailable, status.Code(err))
			break
		}
		got = append(got, ev)
	}

	require.Len(t, got, 2)
	assert.Equal(t, "INSERT", got[0].Type)
	assert.JSONEq(t, `{"id":"p1"}`, string(got[0].Record))
	assert.Equal(t, "DELETE", got[1].Type)
	assert.JSONEq(t, `{"id":"p1"}`, string(got[1].OldRecord))
}

func TestWatch_UnknownTable(t *testing.T) {
	c := startBufconn(t, NewGRPCServer("", nopLogger{}, &fakeStore{}, testSecret))

	stream, err := c.Watch(withKey(t, auth.RoleAnon), &api.WatchRequest{Table: "users"})
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
