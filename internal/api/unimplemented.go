package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnimplementedTrackerServiceServer answers every call with
// codes.Unimplemented. Embed it to stay forward compatible.
type UnimplementedTrackerServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedTrackerServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedTrackerServiceServer) GetState(context.Context, *Empty) (*StateResponse, error) {
	return nil, unimplemented(MethodGetState)
}
func (UnimplementedTrackerServiceServer) UpdateState(context.Context, *UpdateStateRequest) (*StateResponse, error) {
	return nil, unimplemented(MethodUpdateState)
}
func (UnimplementedTrackerServiceServer) ToggleDose(context.Context, *ToggleDoseRequest) (*StateResponse, error) {
	return nil, unimplemented(MethodToggleDose)
}
func (UnimplementedTrackerServiceServer) ListExtraPuffs(context.Context, *Empty) (*ListExtraPuffsResponse, error) {
	return nil, unimplemented(MethodListExtraPuffs)
}
func (UnimplementedTrackerServiceServer) AddExtraPuff(context.Context, *Empty) (*ExtraPuffResponse, error) {
	return nil, unimplemented(MethodAddExtraPuff)
}
func (UnimplementedTrackerServiceServer) DeleteExtraPuff(context.Context, *DeleteExtraPuffRequest) (*DeleteExtraPuffResponse, error) {
	return nil, unimplemented(MethodDeleteExtraPuff)
}
func (UnimplementedTrackerServiceServer) ResetDay(context.Context, *Empty) (*StateResponse, error) {
	return nil, unimplemented(MethodResetDay)
}
func (UnimplementedTrackerServiceServer) RefillInhaler(context.Context, *RefillInhalerRequest) (*StateResponse, error) {
	return nil, unimplemented(MethodRefillInhaler)
}
func (UnimplementedTrackerServiceServer) CheckDailyReset(context.Context, *Empty) (*CheckDailyResetResponse, error) {
	return nil, unimplemented(MethodCheckDailyReset)
}
func (UnimplementedTrackerServiceServer) Watch(*WatchRequest, grpc.ServerStreamingServer[ChangeEvent]) error {
	return unimplemented(MethodWatch)
}
