// Package server assembles the puffkeeper server: database and migrations,
// the tracker store, the gRPC endpoint and the background scheduler. It also
// handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/puffkeeper/internal/logging"
	"github.com/dmitrijs2005/puffkeeper/internal/server/backup"
	"github.com/dmitrijs2005/puffkeeper/internal/server/config"
	"github.com/dmitrijs2005/puffkeeper/internal/server/notify"
	"github.com/dmitrijs2005/puffkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/puffkeeper/internal/server/scheduler"
	"github.com/dmitrijs2005/puffkeeper/internal/server/tracker"

	gs "github.com/dmitrijs2005/puffkeeper/internal/server/grpc"
)

var ErrShutdownTimeout = errors.New("shutdown timed out")

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	tracker   *tracker.Service
	server    *gs.GRPCServer
	scheduler *scheduler.Scheduler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	listener := notify.NewListener(notify.PgxDialer(c.DatabaseDSN), logger)

	ts := tracker.NewService(db, rm, listener,
		tracker.WithLogger(logger),
		tracker.WithLocation(loc),
		tracker.WithInitialPuffCount(c.InitialPuffCount),
	)

	var snap scheduler.Snapshotter
	if c.SnapshotsEnabled() {
		client, err := backup.NewS3Client(ctx, backup.S3Settings{
			User:         c.S3RootUser,
			Password:     c.S3RootPassword,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		snap = backup.NewSnapshotter(ts, client, c.S3Bucket)
	}

	sch, err := scheduler.New(ts, snap, loc, c.ResetSchedule, c.BackupSchedule, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		tracker:   ts,
		server:    gs.NewGRPCServer(c.EndpointAddrGRPC, logger, ts, c.SecretKey),
		scheduler: sch,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a signal arrives or ctx is cancelled, then waits up to
// ShutdownTimeout for the components to stop.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.scheduler.Run(ctx)
	}()

	<-ctx.Done()

	stopped := make(chan struct{})
	go func() {
		wg.Wait()
		close(stopped)
	}()

	var err error
	select {
	case <-stopped:
	case <-time.After(app.config.ShutdownTimeout):
		err = ErrShutdownTimeout
	}

	if cerr := app.db.Close(); cerr != nil && err == nil {
		err = cerr
	}

	app.logger.Info(context.Background(), "App stopped")
	return err
}
