package api

import (
	"context"

	"google.golang.org/grpc"
)

// TrackerServiceClient is the client side of TrackerService.
type TrackerServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	GetState(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StateResponse, error)
	UpdateState(ctx context.Context, in *UpdateStateRequest, opts ...grpc.CallOption) (*StateResponse, error)
	ToggleDose(ctx context.Context, in *ToggleDoseRequest, opts ...grpc.CallOption) (*StateResponse, error)
	ListExtraPuffs(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListExtraPuffsResponse, error)
	AddExtraPuff(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ExtraPuffResponse, error)
	DeleteExtraPuff(ctx context.Context, in *DeleteExtraPuffRequest, opts ...grpc.CallOption) (*DeleteExtraPuffResponse, error)
	ResetDay(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StateResponse, error)
	RefillInhaler(ctx context.Context, in *RefillInhalerRequest, opts ...grpc.CallOption) (*StateResponse, error)
	CheckDailyReset(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*CheckDailyResetResponse, error)
	Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ChangeEvent], error)
}

type trackerServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTrackerServiceClient(cc grpc.ClientConnInterface) TrackerServiceClient {
	return &trackerServiceClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	cOpts := append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *trackerServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingRequest, PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *trackerServiceClient) GetState(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StateResponse, error) {
	return invoke[Empty, StateResponse](ctx, c.cc, MethodGetState, in, opts)
}

func (c *trackerServiceClient) UpdateState(ctx context.Context, in *UpdateStateRequest, opts ...grpc.CallOption) (*StateResponse, error) {
	return invoke[UpdateStateRequest, StateResponse](ctx, c.cc, MethodUpdateState, in, opts)
}

func (c *trackerServiceClient) ToggleDose(ctx context.Context, in *ToggleDoseRequest, opts ...grpc.CallOption) (*StateResponse, error) {
	return invoke[ToggleDoseRequest, StateResponse](ctx, c.cc, MethodToggleDose, in, opts)
}

func (c *trackerServiceClient) ListExtraPuffs(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListExtraPuffsResponse, error) {
	return invoke[Empty, ListExtraPuffsResponse](ctx, c.cc, MethodListExtraPuffs, in, opts)
}

func (c *trackerServiceClient) AddExtraPuff(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ExtraPuffResponse, error) {
	return invoke[Empty, ExtraPuffResponse](ctx, c.cc, MethodAddExtraPuff, in, opts)
}

func (c *trackerServiceClient) DeleteExtraPuff(ctx context.Context, in *DeleteExtraPuffRequest, opts ...grpc.CallOption) (*DeleteExtraPuffResponse, error) {
	return invoke[DeleteExtraPuffRequest, DeleteExtraPuffResponse](ctx, c.cc, MethodDeleteExtraPuff, in, opts)
}

func (c *trackerServiceClient) ResetDay(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StateResponse, error) {
	return invoke[Empty, StateResponse](ctx, c.cc, MethodResetDay, in, opts)
}

func (c *trackerServiceClient) RefillInhaler(ctx context.Context, in *RefillInhalerRequest, opts ...grpc.CallOption) (*StateResponse, error) {
	return invoke[RefillInhalerRequest, StateResponse](ctx, c.cc, MethodRefillInhaler, in, opts)
}

func (c *trackerServiceClient) CheckDailyReset(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*CheckDailyResetResponse, error) {
	return invoke[Empty, CheckDailyResetResponse](ctx, c.cc, MethodCheckDailyReset, in, opts)
}

func (c *trackerServiceClient) Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ChangeEvent], error) {
	cOpts := append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &TrackerService_ServiceDesc.Streams[0], FullMethod(MethodWatch), cOpts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchRequest, ChangeEvent]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
