package reservation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// runStoreContract exercises the behaviour every Store implementation shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	lock := func(resource string) *LockFields {
		return &LockFields{ResourceID: resource, Title: "Title " + resource, LockedAt: now.Add(-time.Minute), CapacitySnapshot: 10}
	}
	rec := func(holder string, l *LockFields) Record {
		id, err := newULID(now)
		if err != nil {
			t.Fatalf("ulid: %v", err)
		}
		return Record{
			ID:        id,
			HolderID:  holder,
			Team:      Team{Name: "Team " + holder, LeadName: "Lead", LeadEmail: holder + "@example.com", Members: []Member{{Name: "M", Email: "m-" + holder + "@example.com"}}},
			Lock:      l,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("insert find count", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		if _, err := st.FindByHolder(ctx, "user-1"); !errors.Is(err, ErrNotRegistered) {
			t.Fatalf("expected ErrNotRegistered, got %v", err)
		}

		in := rec("user-1", lock("ps-01"))
		if _, err := st.Insert(ctx, in); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if _, err := st.Insert(ctx, rec("user-2", lock("ps-01"))); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if _, err := st.Insert(ctx, rec("user-3", lock("ps-02"))); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if _, err := st.Insert(ctx, rec("user-4", nil)); err != nil {
			t.Fatalf("insert unlocked: %v", err)
		}

		got, err := st.FindByHolder(ctx, "user-1")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got.ID != in.ID || got.Team.Name != in.Team.Name || len(got.Team.Members) != 1 {
			t.Fatalf("unexpected record: %+v", got)
		}
		if got.Lock == nil || got.Lock.ResourceID != "ps-01" || !got.Lock.LockedAt.Equal(in.Lock.LockedAt) || got.Lock.CapacitySnapshot != 10 {
			t.Fatalf("unexpected lock: %+v", got.Lock)
		}

		n, err := st.CountByResource(ctx, "ps-01")
		if err != nil || n != 2 {
			t.Fatalf("expected 2 for ps-01, got %d (%v)", n, err)
		}
		n, err = st.CountByResource(ctx, "ps-09")
		if err != nil || n != 0 {
			t.Fatalf("expected 0 for ps-09, got %d (%v)", n, err)
		}
		all, err := st.CountAll(ctx)
		if err != nil {
			t.Fatalf("count all: %v", err)
		}
		if all["ps-01"] != 2 || all["ps-02"] != 1 || len(all) != 2 {
			t.Fatalf("unexpected counts: %v", all)
		}
	})

	t.Run("duplicate holder", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		if _, err := st.Insert(ctx, rec("user-1", lock("ps-01"))); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if _, err := st.Insert(ctx, rec("user-1", lock("ps-02"))); !errors.Is(err, ErrAlreadyRegistered) {
			t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
		}
		n, _ := st.CountByResource(ctx, "ps-02")
		if n != 0 {
			t.Fatalf("duplicate insert must not count, got %d", n)
		}
	})

	t.Run("attach lock", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		if _, err := st.AttachLock(ctx, "nobody", *lock("ps-01"), now); !errors.Is(err, ErrNotRegistered) {
			t.Fatalf("expected ErrNotRegistered, got %v", err)
		}
		if _, err := st.Insert(ctx, rec("user-1", nil)); err != nil {
			t.Fatalf("insert: %v", err)
		}
		got, err := st.AttachLock(ctx, "user-1", *lock("ps-03"), now.Add(time.Hour))
		if err != nil {
			t.Fatalf("attach: %v", err)
		}
		if got.ResourceID() != "ps-03" || !got.UpdatedAt.Equal(now.Add(time.Hour)) {
			t.Fatalf("unexpected record after attach: %+v", got)
		}
		if _, err := st.AttachLock(ctx, "user-1", *lock("ps-04"), now); !errors.Is(err, ErrAlreadyLocked) {
			t.Fatalf("expected ErrAlreadyLocked, got %v", err)
		}
		n, _ := st.CountByResource(ctx, "ps-03")
		if n != 1 {
			t.Fatalf("expected attached lock to count, got %d", n)
		}
	})

	t.Run("update team keeps lock", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		in := rec("user-1", lock("ps-01"))
		if _, err := st.Insert(ctx, in); err != nil {
			t.Fatalf("insert: %v", err)
		}
		team := Team{Name: "Renamed", LeadName: "Lead", LeadEmail: "lead@example.com"}
		got, err := st.UpdateTeam(ctx, "user-1", team, now.Add(time.Minute))
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if got.Team.Name != "Renamed" || len(got.Team.Members) != 0 {
			t.Fatalf("unexpected team: %+v", got.Team)
		}
		if got.Lock == nil || got.Lock.ResourceID != "ps-01" || !got.Lock.LockedAt.Equal(in.Lock.LockedAt) {
			t.Fatalf("lock fields changed: %+v", got.Lock)
		}
		if _, err := st.UpdateTeam(ctx, "nobody", team, now); !errors.Is(err, ErrNotRegistered) {
			t.Fatalf("expected ErrNotRegistered, got %v", err)
		}
	})

	t.Run("delete frees slot", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			if _, err := st.Insert(ctx, rec(fmt.Sprintf("user-%d", i), lock("ps-05"))); err != nil {
				t.Fatalf("insert: %v", err)
			}
		}
		deleted, err := st.Delete(ctx, "user-1")
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if deleted.HolderID != "user-1" || deleted.ResourceID() != "ps-05" {
			t.Fatalf("unexpected deleted record: %+v", deleted)
		}
		n, _ := st.CountByResource(ctx, "ps-05")
		if n != 2 {
			t.Fatalf("expected 2 after delete, got %d", n)
		}
		if _, err := st.Delete(ctx, "user-1"); !errors.Is(err, ErrNotRegistered) {
			t.Fatalf("expected ErrNotRegistered on second delete, got %v", err)
		}
		if _, err := st.FindByHolder(ctx, "user-1"); !errors.Is(err, ErrNotRegistered) {
			t.Fatalf("expected ErrNotRegistered after delete, got %v", err)
		}
	})
}
