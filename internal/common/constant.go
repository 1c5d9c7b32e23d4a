// Package common contains shared constants and sentinel errors used across
// puffkeeper components.
package common

// APIKeyHeaderName is the gRPC metadata key used to carry the public API
// key on outbound requests.
const APIKeyHeaderName = "apikey"

// Table names, also used to pick a change notification channel.
const (
	TableTrackerState = "tracker_state"
	TableExtraPuffs   = "extra_puffs"
)
