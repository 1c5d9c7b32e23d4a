// Package cli provides the interactive puffkeeper command-line client.
//
// It wires configuration, the gRPC client and an interactive REPL. On start
// the App asks the server to run the daily reset check and prints the
// current tracker state, then reads commands until the user exits.
//
// Key features:
//   - Mark the morning or evening dose as taken (toggle)
//   - Record, list and undo extra puffs
//   - Reset the day or refill the inhaler
//   - Watch live changes of the tracker state or the extra puffs
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
