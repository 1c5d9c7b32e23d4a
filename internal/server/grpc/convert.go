package grpc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/puffkeeper/internal/api"
	"github.com/dmitrijs2005/puffkeeper/internal/common"
	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toAPIState(st *models.TrackerState) *api.TrackerState {
	if st == nil {
		return nil
	}
	return &api.TrackerState{
		ID:               st.ID,
		MorningCompleted: st.MorningCompleted,
		MorningTimestamp: st.MorningTimestamp,
		EveningCompleted: st.EveningCompleted,
		EveningTimestamp: st.EveningTimestamp,
		PuffCount:        st.PuffCount,
		LastResetDate:    st.LastResetDate.String(),
		UpdatedAt:        st.UpdatedAt,
	}
}

func toAPIPuff(p models.ExtraPuff) api.ExtraPuff {
	return api.ExtraPuff{ID: p.ID, Timestamp: p.Timestamp, CreatedAt: p.CreatedAt}
}

func toAPIEvent(ev models.ChangeEvent) *api.ChangeEvent {
	return &api.ChangeEvent{
		Table:     ev.Table,
		Type:      string(ev.Type),
		Record:    ev.Record,
		OldRecord: ev.OldRecord,
	}
}

func toPatch(req *api.UpdateStateRequest) (models.StatePatch, error) {
	p := models.StatePatch{
		MorningCompleted: req.MorningCompleted,
		EveningCompleted: req.EveningCompleted,
		PuffCount:        req.PuffCount,
	}

	switch {
	case req.ClearMorningTimestamp:
		p.MorningTimestamp = &sql.NullTime{}
	case req.MorningTimestamp != nil:
		p.MorningTimestamp = &sql.NullTime{Time: *req.MorningTimestamp, Valid: true}
	}

	switch {
	case req.ClearEveningTimestamp:
		p.EveningTimestamp = &sql.NullTime{}
	case req.EveningTimestamp != nil:
		p.EveningTimestamp = &sql.NullTime{Time: *req.EveningTimestamp, Valid: true}
	}

	if req.LastResetDate != nil {
		d, err := models.ParseDate(*req.LastResetDate)
		if err != nil {
			return models.StatePatch{}, fmt.Errorf("last_reset_date: %w", err)
		}
		p.LastResetDate = &d
	}

	return p, nil
}

// toStatus maps store errors onto gRPC codes. Details of internal failures
// stay in the server log.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidDoseType),
		errors.Is(err, common.ErrInvalidID),
		errors.Is(err, common.ErrUnknownTable):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}
