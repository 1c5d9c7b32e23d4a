package grpc

import (
	"context"

	"github.com/dmitrijs2005/puffkeeper/internal/api"
	"github.com/dmitrijs2005/puffkeeper/internal/common"
	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
	"github.com/dmitrijs2005/puffkeeper/internal/server/notify"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) GetState(ctx context.Context, req *api.Empty) (*api.StateResponse, error) {

	st, err := s.store.GetState(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.StateResponse{State: toAPIState(st)}, nil

}

func (s *GRPCServer) UpdateState(ctx context.Context, req *api.UpdateStateRequest) (*api.StateResponse, error) {

	patch, err := toPatch(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	st, err := s.store.UpdateState(ctx, patch)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.StateResponse{State: toAPIState(st)}, nil

}

func (s *GRPCServer) ToggleDose(ctx context.Context, req *api.ToggleDoseRequest) (*api.StateResponse, error) {

	dose, err := models.ParseDoseType(req.Dose)
	if err != nil {
		return nil, toStatus(err)
	}

	st, err := s.store.ToggleDose(ctx, dose)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Dose toggled", "dose", dose, "completed", st.Completed(dose))
	return &api.StateResponse{State: toAPIState(st)}, nil

}

func (s *GRPCServer) ListExtraPuffs(ctx context.Context, req *api.Empty) (*api.ListExtraPuffsResponse, error) {

	puffs, err := s.store.ListExtraPuffs(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	out := make([]api.ExtraPuff, 0, len(puffs))
	for _, p := range puffs {
		out = append(out, toAPIPuff(p))
	}

	return &api.ListExtraPuffsResponse{ExtraPuffs: out}, nil

}

func (s *GRPCServer) AddExtraPuff(ctx context.Context, req *api.Empty) (*api.ExtraPuffResponse, error) {

	p, err := s.store.AddExtraPuff(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Extra puff added", "id", p.ID)
	out := toAPIPuff(*p)
	return &api.ExtraPuffResponse{ExtraPuff: &out}, nil

}

func (s *GRPCServer) DeleteExtraPuff(ctx context.Context, req *api.DeleteExtraPuffRequest) (*api.DeleteExtraPuffResponse, error) {

	deleted, err := s.store.DeleteExtraPuff(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.DeleteExtraPuffResponse{Deleted: deleted}, nil

}

func (s *GRPCServer) ResetDay(ctx context.Context, req *api.Empty) (*api.StateResponse, error) {

	st, err := s.store.ResetDay(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.StateResponse{State: toAPIState(st)}, nil

}

func (s *GRPCServer) RefillInhaler(ctx context.Context, req *api.RefillInhalerRequest) (*api.StateResponse, error) {

	st, err := s.store.RefillInhaler(ctx, req.PuffCount)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Inhaler refilled", "puff_count", st.PuffCount)
	return &api.StateResponse{State: toAPIState(st)}, nil

}

func (s *GRPCServer) CheckDailyReset(ctx context.Context, req *api.Empty) (*api.CheckDailyResetResponse, error) {

	st, reset, err := s.store.CheckDailyReset(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.CheckDailyResetResponse{State: toAPIState(st), Reset: reset}, nil

}

// Watch forwards change events of one table until the client goes away, the
// subscription ends or the server shuts down.
func (s *GRPCServer) Watch(req *api.WatchRequest, stream grpc.ServerStreamingServer[api.ChangeEvent]) error {
	ctx := stream.Context()

	var (
		sub *notify.Subscription
		err error
	)
	switch req.Table {
	case common.TableTrackerState:
		sub, err = s.store.SubscribeToState(ctx)
	case common.TableExtraPuffs:
		sub, err = s.store.SubscribeToExtraPuffs(ctx)
	default:
		return status.Errorf(codes.InvalidArgument, "unknown table %q", req.Table)
	}
	if err != nil {
		return toStatus(err)
	}
	defer sub.Close()

	s.logger.Info(ctx, "Watch started", "table", req.Table)

	shutdown := s.shuttingDown()
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				if err := sub.Err(); err != nil {
					s.logger.Error(ctx, "subscription failed", "table", req.Table, "error", err)
					return status.Error(codes.Unavailable, "subscription ended")
				}
				return nil
			}
			if err := stream.Send(toAPIEvent(ev)); err != nil {
				return err
			}
		case <-shutdown:
			return status.Error(codes.Unavailable, "server is shutting down")
		case <-ctx.Done():
			return nil
		}
	}
}
