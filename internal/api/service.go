package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "puffkeeper.TrackerService"

const (
	MethodPing            = "Ping"
	MethodGetState        = "GetState"
	MethodUpdateState     = "UpdateState"
	MethodToggleDose      = "ToggleDose"
	MethodListExtraPuffs  = "ListExtraPuffs"
	MethodAddExtraPuff    = "AddExtraPuff"
	MethodDeleteExtraPuff = "DeleteExtraPuff"
	MethodResetDay        = "ResetDay"
	MethodRefillInhaler   = "RefillInhaler"
	MethodCheckDailyReset = "CheckDailyReset"
	MethodWatch           = "Watch"
)

// FullMethod returns the gRPC method path, e.g. "/puffkeeper.TrackerService/Ping".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// TrackerServiceServer is implemented by the puffkeeper server.
type TrackerServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	GetState(context.Context, *Empty) (*StateResponse, error)
	UpdateState(context.Context, *UpdateStateRequest) (*StateResponse, error)
	ToggleDose(context.Context, *ToggleDoseRequest) (*StateResponse, error)
	ListExtraPuffs(context.Context, *Empty) (*ListExtraPuffsResponse, error)
	AddExtraPuff(context.Context, *Empty) (*ExtraPuffResponse, error)
	DeleteExtraPuff(context.Context, *DeleteExtraPuffRequest) (*DeleteExtraPuffResponse, error)
	ResetDay(context.Context, *Empty) (*StateResponse, error)
	RefillInhaler(context.Context, *RefillInhalerRequest) (*StateResponse, error)
	CheckDailyReset(context.Context, *Empty) (*CheckDailyResetResponse, error)
	Watch(*WatchRequest, grpc.ServerStreamingServer[ChangeEvent]) error
}

func RegisterTrackerServiceServer(s grpc.ServiceRegistrar, srv TrackerServiceServer) {
	s.RegisterService(&TrackerService_ServiceDesc, srv)
}

func unary[Req, Resp any](method string, call func(TrackerServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(TrackerServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(TrackerServiceServer).Watch(in, &grpc.GenericServerStream[WatchRequest, ChangeEvent]{ServerStream: stream})
}

var TrackerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TrackerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, TrackerServiceServer.Ping),
		unary(MethodGetState, TrackerServiceServer.GetState),
		unary(MethodUpdateState, TrackerServiceServer.UpdateState),
		unary(MethodToggleDose, TrackerServiceServer.ToggleDose),
		unary(MethodListExtraPuffs, TrackerServiceServer.ListExtraPuffs),
		unary(MethodAddExtraPuff, TrackerServiceServer.AddExtraPuff),
		unary(MethodDeleteExtraPuff, TrackerServiceServer.DeleteExtraPuff),
		unary(MethodResetDay, TrackerServiceServer.ResetDay),
		unary(MethodRefillInhaler, TrackerServiceServer.RefillInhaler),
		unary(MethodCheckDailyReset, TrackerServiceServer.CheckDailyReset),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    MethodWatch,
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "puffkeeper/tracker",
}
