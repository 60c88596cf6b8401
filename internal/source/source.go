// Package source defines the ledger sources the projector reads escrow events from.
package source

import (
	"context"

	"github.com/feral-file/ff-bounty-ledger/internal/domain"
)

// Page is one slice of a source's event log
type Page struct {
	// Events are ordered by position inside the source
	Events []domain.LedgerEvent
	// Next is the cursor to persist once Events are applied; it is also the next query start
	Next domain.Cursor
	// HasMore is false once the page reached the current (finalized) head
	HasMore bool
}

// Source is an append-only escrow event log on one chain
//
//go:generate mockgen -source=source.go -destination=../mocks/source.go -package=mocks -mock_names=Source=MockSource,PushSource=MockPushSource,CursorComparer=MockCursorComparer
type Source interface {
	// Key identifies the source (chain + contract or package)
	Key() domain.SourceKey
	// StartCursor returns the cursor to backfill from, given the persisted one.
	// Sources with numeric positions return max(persisted, head - safetyWindow).
	StartCursor(ctx context.Context, persisted domain.Cursor, safetyWindow uint64) (domain.Cursor, error)
	// QueryEvents returns the events strictly after cursor, at most pageSize blocks or events
	QueryEvents(ctx context.Context, cursor domain.Cursor, pageSize int) (Page, error)
}

// PushSource is a Source that can also stream new events as they are produced
type PushSource interface {
	Source
	// Subscribe delivers events after from to onEvents until ctx is canceled or the stream fails.
	// Every call to onEvents carries the cursor to persist after applying it.
	Subscribe(ctx context.Context, from domain.Cursor, onEvents func(ctx context.Context, page Page) error) error
}

// CursorComparer is implemented by sources whose cursors are ordered.
// The projector uses it to refuse moving a persisted cursor backwards.
type CursorComparer interface {
	// CompareCursors returns -1, 0 or 1 as a is before, equal to or after b
	CompareCursors(a, b domain.Cursor) (int, error)
}
