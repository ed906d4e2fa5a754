// Package lock provides keyed mutual exclusion so that a patient's score for
// one date is never computed by two callers at once.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotAcquired is returned when ctx ends before the key is free.
	ErrNotAcquired = errors.New("lock not acquired")
	// ErrLeaseLost means the lease expired and another holder took the key.
	ErrLeaseLost = errors.New("lock lease lost")
)

// Unlock releases a held key. Calling it more than once is a no-op.
type Unlock func(ctx context.Context) error

type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// ScoreKey names the lock for one patient's score on one calendar date.
func ScoreKey(profileID uuid.UUID, date time.Time) string {
	return "crrs:" + profileID.String() + ":" + date.Format("2006-01-02")
}
