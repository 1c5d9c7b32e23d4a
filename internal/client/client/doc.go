// Package client talks to the puffkeeper server.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering the
//     tracker operations: state, doses, extra puffs, reset, refill and the
//     daily reset check, plus change streams.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, attaches the API key to every call through interceptors,
//     applies a per-call timeout and maps gRPC status codes to sentinel
//     errors.
//  3. Stream, an owned handle over a server-side change stream.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound and
// ErrInvalidArgument.
package client
