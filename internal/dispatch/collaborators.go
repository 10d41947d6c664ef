// Package dispatch executes the render -> resolve -> send pipeline for one
// matched rule action, isolating failures per action.
package dispatch

import (
	"context"

	"github.com/aiba-2502/denco-notify/internal/types"
)

// StaffDirectory resolves staff ids to per-channel contact records.
// Implemented by the host (internal/core/db ships a database-backed one).
// Lookup returns types.ErrStaffNotFound when no record exists.
type StaffDirectory interface {
	Lookup(ctx context.Context, id types.StaffID) (*types.StaffRecord, error)
}

// Summarizer condenses recognized text for templates with use_summary set.
// Optional enrichment: a failing summarizer degrades to rendering without a
// summary, never aborting the action.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Sender delivers one rendered message through a channel transport.
// Implementations classify failures via types.TransientSend and
// types.PermanentSend; unclassified errors are treated as permanent.
type Sender interface {
	Send(ctx context.Context, channel types.Channel, address, message string) error
}
