package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// printFn writes the prompt without a trailing newline.
var printFn = fmt.Print

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Status(ctx context.Context) error
	ToggleDose(ctx context.Context, dose string) error
	AddPuff(ctx context.Context) error
	ListPuffs(ctx context.Context) error
	Undo(ctx context.Context, args []string) error
	Reset(ctx context.Context) error
	Refill(ctx context.Context, args []string) error
	Watch(ctx context.Context, args []string) error
	Unwatch(ctx context.Context) error
}

const helpText = `Available commands:
  status               show today's doses and the puff count
  morning | evening    toggle a dose
  puff                 record an extra puff
  puffs                list extra puffs, newest first
  undo <id>            remove an extra puff
  reset                clear both doses
  refill [puffs]       refill the inhaler
  watch [state|puffs]  print live changes
  unwatch              stop watching
  exit | quit          leave the program`

// runREPL starts a simple read–eval–print loop for the puffkeeper CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF, on context cancellation
// or when the user types "exit" or "quit". An empty prompt is not printed.
//
// Any errors returned by command handlers are ignored here; handlers
// report their own errors.
func runREPL(ctx context.Context, a execIface, promptFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		if p := promptFn(); p != "" {
			printFn(p)
		}
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "s", "status":
			_ = a.Status(ctx)

		case "morning", "evening":
			_ = a.ToggleDose(ctx, cmd)

		case "puff":
			_ = a.AddPuff(ctx)

		case "puffs":
			_ = a.ListPuffs(ctx)

		case "undo":
			_ = a.Undo(ctx, args)

		case "reset":
			_ = a.Reset(ctx)

		case "refill":
			_ = a.Refill(ctx, args)

		case "watch":
			_ = a.Watch(ctx, args)

		case "unwatch":
			_ = a.Unwatch(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
