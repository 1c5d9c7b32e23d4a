package grpc

import (
	"context"
	"net"
	"sync"

	"github.com/dmitrijs2005/puffkeeper/internal/api"
	"github.com/dmitrijs2005/puffkeeper/internal/logging"
	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
	"github.com/dmitrijs2005/puffkeeper/internal/server/notify"
	"google.golang.org/grpc"
)

// TrackerStore is what the transport needs from the tracker service.
type TrackerStore interface {
	GetState(ctx context.Context) (*models.TrackerState, error)
	UpdateState(ctx context.Context, patch models.StatePatch) (*models.TrackerState, error)
	ToggleDose(ctx context.Context, dose models.DoseType) (*models.TrackerState, error)
	ListExtraPuffs(ctx context.Context) ([]models.ExtraPuff, error)
	AddExtraPuff(ctx context.Context) (*models.ExtraPuff, error)
	DeleteExtraPuff(ctx context.Context, id string) (bool, error)
	ResetDay(ctx context.Context) (*models.TrackerState, error)
	RefillInhaler(ctx context.Context, n int) (*models.TrackerState, error)
	CheckDailyReset(ctx context.Context) (*models.TrackerState, bool, error)
	SubscribeToState(ctx context.Context) (*notify.Subscription, error)
	SubscribeToExtraPuffs(ctx context.Context) (*notify.Subscription, error)
}

type GRPCServer struct {
	api.UnimplementedTrackerServiceServer
	address   string
	store     TrackerStore
	logger    logging.Logger
	apiSecret []byte

	mu       sync.Mutex
	shutdown chan struct{}
	stopping bool
}

// shuttingDown is closed once Serve begins to stop. Open streams watch it
// because GracefulStop does not cancel their contexts.
func (s *GRPCServer) shuttingDown() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown == nil {
		s.shutdown = make(chan struct{})
	}
	return s.shutdown
}

func (s *GRPCServer) beginShutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown == nil {
		s.shutdown = make(chan struct{})
	}
	if !s.stopping {
		s.stopping = true
		close(s.shutdown)
	}
}

func NewGRPCServer(a string, l logging.Logger, store TrackerStore, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		store:     store,
		apiSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.apiKeyInterceptor),
		grpc.ChainStreamInterceptor(s.apiKeyStreamInterceptor),
	)
	api.RegisterTrackerServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			s.beginShutdown()
			srv.GracefulStop()
		case <-stopped:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
