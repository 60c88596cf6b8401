// Package sweeper holds the background maintenance loops of the settlement process.
package sweeper

import (
	"context"
)

// Sweeper is a long-running background loop with a graceful stop.
// The settlement orchestrator follows the same contract so both run side by side.
//
//go:generate mockgen -source=sweeper.go -destination=../mocks/sweeper.go -package=mocks -mock_names=Sweeper=MockSweeper
type Sweeper interface {
	// Start runs the loop until the context is canceled or Stop is called
	Start(ctx context.Context) error

	// Stop asks the loop to exit and waits for the cycle in progress, bounded by ctx
	Stop(ctx context.Context) error

	// Name identifies the loop in logs
	Name() string
}
