package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/puffkeeper/internal/api"
	"github.com/dmitrijs2005/puffkeeper/internal/client/config"
	"github.com/dmitrijs2005/puffkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL    string
	apiKey         string
	requestTimeout time.Duration
	conn           *grpc.ClientConn
	client         api.TrackerServiceClient
}

func withAPIKey(ctx context.Context, key string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.APIKeyHeaderName, key)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) apiKeyInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	ctx = withAPIKey(ctx, s.apiKey)

	if _, ok := ctx.Deadline(); !ok && s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

func (s *GRPCClient) apiKeyStreamInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	return streamer(withAPIKey(ctx, s.apiKey), desc, cc, method, opts...)
}

// NewGRPCClient validates cfg and prepares a connection to the server. The
// connection is established lazily on the first call. Extra dial options
// are appended to the defaults.
func NewGRPCClient(cfg *config.Config, opts ...grpc.DialOption) (*GRPCClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &GRPCClient{
		endpointURL:    cfg.ServerEndpointAddr,
		apiKey:         cfg.APIKey,
		requestTimeout: cfg.RequestTimeout,
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.apiKeyInterceptor),
		grpc.WithStreamInterceptor(c.apiKeyStreamInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(c.endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewTrackerServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) GetState(ctx context.Context) (*api.TrackerState, error) {
	resp, err := s.client.GetState(ctx, &api.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.State, nil
}

func (s *GRPCClient) UpdateState(ctx context.Context, patch *api.UpdateStateRequest) (*api.TrackerState, error) {
	resp, err := s.client.UpdateState(ctx, patch)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.State, nil
}

func (s *GRPCClient) ToggleDose(ctx context.Context, dose string) (*api.TrackerState, error) {
	resp, err := s.client.ToggleDose(ctx, &api.ToggleDoseRequest{Dose: dose})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.State, nil
}

// ListExtraPuffs returns the extra puffs, newest first. The slice is never nil.
func (s *GRPCClient) ListExtraPuffs(ctx context.Context) ([]api.ExtraPuff, error) {
	resp, err := s.client.ListExtraPuffs(ctx, &api.Empty{})
	if err != nil {
		return []api.ExtraPuff{}, s.mapError(err)
	}
	if resp.ExtraPuffs == nil {
		return []api.ExtraPuff{}, nil
	}
	return resp.ExtraPuffs, nil
}

func (s *GRPCClient) AddExtraPuff(ctx context.Context) (*api.ExtraPuff, error) {
	resp, err := s.client.AddExtraPuff(ctx, &api.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.ExtraPuff, nil
}

func (s *GRPCClient) DeleteExtraPuff(ctx context.Context, id string) (bool, error) {
	resp, err := s.client.DeleteExtraPuff(ctx, &api.DeleteExtraPuffRequest{ID: id})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Deleted, nil
}

func (s *GRPCClient) ResetDay(ctx context.Context) (*api.TrackerState, error) {
	resp, err := s.client.ResetDay(ctx, &api.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.State, nil
}

func (s *GRPCClient) RefillInhaler(ctx context.Context, n int) (*api.TrackerState, error) {
	resp, err := s.client.RefillInhaler(ctx, &api.RefillInhalerRequest{PuffCount: n})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.State, nil
}

func (s *GRPCClient) CheckDailyReset(ctx context.Context) (*api.TrackerState, bool, error) {
	resp, err := s.client.CheckDailyReset(ctx, &api.Empty{})
	if err != nil {
		return nil, false, s.mapError(err)
	}
	return resp.State, resp.Reset, nil
}

// Watch opens a change stream on table ("tracker_state" or "extra_puffs").
// The caller owns the returned Stream and must Close it.
func (s *GRPCClient) Watch(ctx context.Context, table string) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)

	st, err := s.client.Watch(ctx, &api.WatchRequest{Table: table})
	if err != nil {
		cancel()
		return nil, s.mapError(err)
	}

	return newStream(ctx, cancel, st, s.mapError), nil
}
