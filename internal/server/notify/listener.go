package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/puffkeeper/internal/common"
	"github.com/dmitrijs2005/puffkeeper/internal/logging"
	"github.com/dmitrijs2005/puffkeeper/internal/server/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	eventBuffer  = 16
	closeTimeout = 5 * time.Second
)

// Conn is the part of *pgx.Conn a subscription uses.
type Conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// Dialer opens a fresh connection for one subscription.
type Dialer func(ctx context.Context) (Conn, error)

// PgxDialer dials dsn with pgx.
func PgxDialer(dsn string) Dialer {
	return func(ctx context.Context) (Conn, error) {
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// ChannelFor returns the notification channel of a table.
func ChannelFor(table string) (string, error) {
	switch table {
	case common.TableTrackerState, common.TableExtraPuffs:
		return table + "_changes", nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnknownTable, table)
	}
}

type Listener struct {
	dial   Dialer
	logger logging.Logger
}

func NewListener(dial Dialer, logger logging.Logger) *Listener {
	return &Listener{dial: dial, logger: logger.With("module", "notify")}
}

// Subscribe starts listening for changes of table. The subscription ends when
// ctx is cancelled, when Close is called or when the connection fails.
func (l *Listener) Subscribe(ctx context.Context, table string) (*Subscription, error) {
	channel, err := ChannelFor(table)
	if err != nil {
		return nil, err
	}

	conn, err := l.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("listen connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		closeConn(conn)
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		channel: channel,
		conn:    conn,
		logger:  l.logger.With("channel", channel),
		events:  make(chan models.ChangeEvent, eventBuffer),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	go s.run(subCtx)

	l.logger.Debug(ctx, "subscribed", "channel", channel)
	return s, nil
}

// Subscription is a live change stream on one table.
type Subscription struct {
	channel string
	conn    Conn
	logger  logging.Logger
	events  chan models.ChangeEvent
	done    chan struct{}
	cancel  context.CancelFunc

	mu  sync.Mutex
	err error
}

// Events delivers decoded change events. It is closed when the
// subscription ends.
func (s *Subscription) Events() <-chan models.ChangeEvent {
	return s.events
}

// Channel returns the NOTIFY channel name.
func (s *Subscription) Channel() string {
	return s.channel
}

// Close stops the subscription and waits for its connection to be released.
// It is safe to call more than once.
func (s *Subscription) Close() error {
	s.cancel()
	<-s.done
	return nil
}

// Done is closed once the subscription has fully stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err returns the connection error that ended the subscription, if any.
// Cancellation is not an error.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.events)
	defer closeConn(s.conn)

	for {
		n, err := s.conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
				s.logger.Error(ctx, "notification wait failed", "error", err)
			}
			return
		}

		var ev models.ChangeEvent
		if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
			s.logger.Warn(ctx, "malformed change payload", "error", err)
			continue
		}

		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func closeConn(conn Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	_ = conn.Close(ctx)
}
