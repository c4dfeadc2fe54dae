package cce

import (
	"context"
	"sync"
	"time"
)

// Ledger records which file ids have been handed to the transport for
// retrieval. Retrieval consumes a file, so a second claim must fail.
type Ledger interface {
	Claim(ctx context.Context, id FileID) error
}

// MemoryLedger is a process-local Ledger
type MemoryLedger struct {
	mu      sync.Mutex
	clock   Clock
	claimed map[FileID]time.Time
}

// NewMemoryLedger creates an empty in-memory ledger stamping claims with
// clock. A nil clock uses SystemClock.
func NewMemoryLedger(clock Clock) *MemoryLedger {
	if clock == nil {
		clock = SystemClock
	}
	return &MemoryLedger{clock: clock, claimed: make(map[FileID]time.Time)}
}

// Claim marks id as consumed, failing if it was claimed before
func (l *MemoryLedger) Claim(ctx context.Context, id FileID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if at, ok := l.claimed[id]; ok {
		return newError(KindAlreadyConsumed, id, "file %s was already retrieved at %s", id, at.Format(time.RFC3339))
	}
	l.claimed[id] = l.clock.Now()
	return nil
}

// Claimed reports whether id has been claimed
func (l *MemoryLedger) Claimed(id FileID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.claimed[id]
	return ok
}
