// Package notify turns PostgreSQL LISTEN/NOTIFY into Go event streams.
//
// The notify_change trigger (see the migrations package) publishes every
// row change of tracker_state and extra_puffs as JSON on the channels
// tracker_state_changes and extra_puffs_changes. A Listener opens a
// dedicated connection per Subscription, listens on the table's channel and
// decodes payloads into models.ChangeEvent values.
//
// A Subscription is owned by its caller: read from Events() and call Close()
// when done. Closing releases the connection and the pump goroutine, and the
// Events channel is closed afterwards. Delivery order and guarantees are
// those of NOTIFY itself: events sent while nobody listens are lost.
package notify
