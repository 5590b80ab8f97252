package reservation

import (
	"context"
	"time"
)

// Store is the persistence boundary for registrations. Each method is a single
// atomic call; callers never assume multi-statement transactions.
type Store interface {
	// CountByResource returns the number of records holding resourceID.
	CountByResource(ctx context.Context, resourceID string) (int, error)
	// CountAll returns record counts keyed by resource id. Unlocked records are not counted.
	CountAll(ctx context.Context) (map[string]int, error)
	// FindByHolder returns ErrNotRegistered when the holder has no record.
	FindByHolder(ctx context.Context, holderID string) (Record, error)
	// Insert returns ErrAlreadyRegistered when the holder already has a record.
	Insert(ctx context.Context, rec Record) (Record, error)
	// AttachLock sets lock fields on a record that has none. It returns
	// ErrAlreadyLocked if the record is locked, ErrNotRegistered if missing.
	AttachLock(ctx context.Context, holderID string, lock LockFields, now time.Time) (Record, error)
	// UpdateTeam replaces the team payload and leaves lock fields untouched.
	UpdateTeam(ctx context.Context, holderID string, team Team, now time.Time) (Record, error)
	// Delete removes the holder's record and returns it.
	Delete(ctx context.Context, holderID string) (Record, error)
}
