package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/puffkeeper/internal/api"
	"github.com/dmitrijs2005/puffkeeper/internal/common"
)

var errUsage = errors.New("usage")

func (a *App) showState(st *api.TrackerState) {
	if st == nil {
		return
	}
	a.rememberCount(st.PuffCount)
	printlnFn(formatState(st))
}

func (a *App) Status(ctx context.Context) error {
	st, err := a.client.GetState(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	a.showState(st)
	return nil
}

// ToggleDose flips the given dose between taken and not taken.
func (a *App) ToggleDose(ctx context.Context, dose string) error {
	st, err := a.client.ToggleDose(ctx, dose)
	if err != nil {
		a.report(err)
		return err
	}
	a.showState(st)
	return nil
}

func (a *App) AddPuff(ctx context.Context) error {
	p, err := a.client.AddExtraPuff(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	printlnFn(fmt.Sprintf("Extra puff recorded at %s (id %s).", p.Timestamp.Local().Format("15:04"), p.ID))

	return a.Status(ctx)
}

func (a *App) ListPuffs(ctx context.Context) error {
	puffs, err := a.client.ListExtraPuffs(ctx)
	if err != nil {
		a.report(err)
		return err
	}

	if len(puffs) == 0 {
		printlnFn("No extra puffs.")
		return nil
	}
	for _, p := range puffs {
		printlnFn(formatPuff(p))
	}
	return nil
}

// Undo deletes the extra puff with the given id and gives the puff back.
func (a *App) Undo(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: undo <id>")
		return errUsage
	}

	deleted, err := a.client.DeleteExtraPuff(ctx, args[0])
	if err != nil {
		a.report(err)
		return err
	}
	if !deleted {
		printlnFn("No extra puff with id", args[0])
		return nil
	}
	printlnFn("Extra puff removed.")

	return a.Status(ctx)
}

func (a *App) Reset(ctx context.Context) error {
	st, err := a.client.ResetDay(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	printlnFn("Doses cleared.")
	a.showState(st)
	return nil
}

func (a *App) Refill(ctx context.Context, args []string) error {
	n := a.config.RefillPuffCount
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			printlnFn("Usage: refill [puffs]")
			return errUsage
		}
		n = v
	}

	st, err := a.client.RefillInhaler(ctx, n)
	if err != nil {
		a.report(err)
		return err
	}
	printlnFn("Inhaler refilled.")
	a.showState(st)
	return nil
}

// Watch starts printing live changes of the tracker state ("state") or
// the extra puffs ("puffs") in the background. A running watch is replaced.
func (a *App) Watch(ctx context.Context, args []string) error {
	table := common.TableTrackerState
	if len(args) > 0 {
		switch args[0] {
		case "state":
		case "puffs":
			table = common.TableExtraPuffs
		default:
			printlnFn("Usage: watch [state|puffs]")
			return errUsage
		}
	}

	_ = a.Unwatch(ctx)

	s, err := a.client.Watch(ctx, table)
	if err != nil {
		a.report(err)
		return err
	}

	done := make(chan struct{})
	a.mu.Lock()
	a.watch = s
	a.watchDone = done
	a.mu.Unlock()

	go func() {
		defer close(done)
		for ev := range s.Events() {
			if ev.Table == common.TableTrackerState && ev.Record != nil {
				var st api.TrackerState
				if err := decode(ev.Record, &st); err == nil {
					a.rememberCount(st.PuffCount)
				}
			}
			printlnFn(formatEvent(ev))
		}
		if err := s.Err(); err != nil {
			a.logger.Warn(ctx, "watch ended", "table", table, "error", err)
			printlnFn("Watch ended.")
		}
	}()

	printlnFn("Watching", table, "(type 'unwatch' to stop).")
	return nil
}

func (a *App) Unwatch(ctx context.Context) error {
	a.mu.Lock()
	s, done := a.watch, a.watchDone
	a.watch, a.watchDone = nil, nil
	a.mu.Unlock()

	if s == nil {
		return nil
	}
	err := s.Close()
	<-done
	return err
}
