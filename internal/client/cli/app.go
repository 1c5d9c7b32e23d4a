package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dmitrijs2005/puffkeeper/internal/client/client"
	"github.com/dmitrijs2005/puffkeeper/internal/client/config"
	"github.com/dmitrijs2005/puffkeeper/internal/logging"
	"golang.org/x/term"
)

type App struct {
	config      *config.Config
	client      client.Client
	logger      logging.Logger
	interactive bool

	mu        sync.Mutex
	puffCount *int
	watch     *client.Stream
	watchDone chan struct{}
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	apiClient, err := client.NewGRPCClient(c)
	if err != nil {
		return nil, err
	}

	return newApp(c, apiClient, logger, term.IsTerminal(int(os.Stdin.Fd()))), nil
}

func newApp(c *config.Config, cl client.Client, logger logging.Logger, interactive bool) *App {
	return &App{config: c, client: cl, logger: logger, interactive: interactive}
}

// Run performs the daily reset check, prints the state and then serves
// commands from stdin until EOF or "exit".
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		return err
	}

	runREPL(ctx, a, a.prompt, bufio.NewScanner(os.Stdin))
	return nil
}

// Start runs the daily reset check and prints the resulting state. Only an
// authorization failure is fatal; other errors are reported and the REPL
// still starts.
func (a *App) Start(ctx context.Context) error {
	printlnFn("Welcome to puffkeeper (type 'help' for commands)")

	st, reset, err := a.client.CheckDailyReset(ctx)
	if err != nil {
		a.report(err)
		if errors.Is(err, client.ErrUnauthorized) {
			return err
		}
		return nil
	}

	if reset {
		printlnFn("New day: doses cleared.")
	}
	a.showState(st)
	return nil
}

// Close stops an active watch and closes the connection.
func (a *App) Close() {
	_ = a.Unwatch(context.Background())
	if err := a.client.Close(); err != nil {
		a.logger.Warn(context.Background(), "close client", "error", err)
	}
}

func (a *App) prompt() string {
	if !a.interactive {
		return ""
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.puffCount == nil {
		return "puff> "
	}
	return fmt.Sprintf("puff (%d left)> ", *a.puffCount)
}

func (a *App) rememberCount(n int) {
	a.mu.Lock()
	a.puffCount = &n
	a.mu.Unlock()
}

func (a *App) report(err error) {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		printlnFn("Error: the API key was rejected. Check PUFFKEEPER_API_KEY.")
	case errors.Is(err, client.ErrUnavailable):
		printlnFn("Error: server unavailable, try again later.")
	case errors.Is(err, client.ErrNotFound):
		printlnFn("Error: not found.")
	case errors.Is(err, client.ErrInvalidArgument):
		printlnFn("Error:", err.Error())
	default:
		a.logger.Error(context.Background(), "request failed", "error", err)
		printlnFn("Error: request failed.")
	}
}
