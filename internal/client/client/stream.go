package client

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dmitrijs2005/puffkeeper/internal/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Stream delivers change events from the server until it is closed, the
// server ends the stream or the connection fails.
type Stream struct {
	events chan api.ChangeEvent
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func newStream(ctx context.Context, cancel context.CancelFunc, rx grpc.ServerStreamingClient[api.ChangeEvent], mapErr func(error) error) *Stream {
	s := &Stream{
		events: make(chan api.ChangeEvent, 16),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(ctx, rx, mapErr)
	return s
}

func (s *Stream) run(ctx context.Context, rx grpc.ServerStreamingClient[api.ChangeEvent], mapErr func(error) error) {
	defer close(s.done)
	defer close(s.events)

	for {
		ev, err := rx.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) && status.Code(err) != codes.Canceled && ctx.Err() == nil {
				s.mu.Lock()
				s.err = mapErr(err)
				s.mu.Unlock()
			}
			return
		}

		select {
		case s.events <- *ev:
		case <-ctx.Done():
			return
		}
	}
}

// Events is closed when the stream ends.
func (s *Stream) Events() <-chan api.ChangeEvent {
	return s.events
}

// Close stops the stream and waits for the receiver to exit. It is safe to
// call more than once.
func (s *Stream) Close() error {
	s.cancel()
	<-s.done
	return nil
}

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
