package reservation

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/catalog"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/locktoken"
)

// DefaultCapacity is the number of committed records allowed per problem statement.
const DefaultCapacity = 10

// TokenCodec mints and verifies lock tokens. *locktoken.Codec implements it.
type TokenCodec interface {
	Mint(resourceID, holderID string, ttl time.Duration) (locktoken.Token, error)
	Verify(token, resourceID, holderID string, now time.Time) (locktoken.Payload, error)
}

// Grant is a successfully issued lock.
type Grant struct {
	Token            string
	IssuedAt         time.Time
	ExpiresAt        time.Time
	ProblemStatement catalog.ProblemStatement
	// Taken is the advisory count observed when the lock was issued.
	Taken    int
	Capacity int
}

// CommitInput describes a registration commit.
type CommitInput struct {
	Token      string
	ResourceID string
	HolderID   string
	Team       Team
	Now        time.Time
}

// AttachInput describes attaching a lock to a record created without one.
type AttachInput struct {
	Token      string
	ResourceID string
	HolderID   string
	Now        time.Time
}

// Availability is the per-problem-statement capacity view.
type Availability struct {
	ProblemStatement catalog.ProblemStatement
	Taken            int
	Capacity         int
	Remaining        int
	Full             bool
}

// Service runs the reservation protocol against a Store.
type Service struct {
	codec    TokenCodec
	store    Store
	catalog  *catalog.Catalog
	capacity int
	lockTTL  time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// Option configures the Service.
type Option func(*Service) error

// WithCapacity sets the global per-resource capacity.
func WithCapacity(n int) Option {
	return func(s *Service) error {
		if n <= 0 {
			return ErrInvalidInput
		}
		s.capacity = n
		return nil
	}
}

// WithLockTTL sets the lifetime of issued locks. Zero keeps the codec default.
func WithLockTTL(d time.Duration) Option {
	return func(s *Service) error {
		if d < 0 || (d > 0 && d < time.Millisecond) {
			return ErrInvalidInput
		}
		s.lockTTL = d
		return nil
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		if now == nil {
			return ErrInvalidInput
		}
		s.now = now
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) error {
		if l != nil {
			s.log = l
		}
		return nil
	}
}

// NewService constructs a Service. A nil codec is allowed: lock operations
// then fail closed with locktoken.ErrConfiguration.
func NewService(codec TokenCodec, store Store, cat *catalog.Catalog, opts ...Option) (*Service, error) {
	if store == nil || cat == nil {
		return nil, ErrInvalidInput
	}
	s := &Service{
		codec:    codec,
		store:    store,
		catalog:  cat,
		capacity: DefaultCapacity,
		now:      func() time.Time { return time.Now().UTC() },
		log:      slog.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Capacity returns the configured per-resource capacity.
func (s *Service) Capacity() int { return s.capacity }

// Catalog returns the problem statement catalog.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// RequestLock checks availability of resourceID and issues a lock token for
// holderID. The count check here is advisory; Commit checks again.
func (s *Service) RequestLock(ctx context.Context, resourceID, holderID string) (Grant, error) {
	const op = "reservation.RequestLock"
	if err := ctx.Err(); err != nil {
		return Grant{}, err
	}
	resourceID = strings.TrimSpace(resourceID)
	holderID = strings.TrimSpace(holderID)
	if resourceID == "" || holderID == "" {
		return Grant{}, opErr(op, ErrInvalidInput, "resource and holder are required")
	}

	ps, ok := s.catalog.Lookup(resourceID)
	if !ok {
		return Grant{}, opErr(op, ErrResourceNotFound, resourceID)
	}

	taken, err := s.store.CountByResource(ctx, resourceID)
	if err != nil {
		return Grant{}, err
	}
	if taken >= s.capacity {
		s.log.Info("reservation.lock.full", "resource", resourceID, "holder", holderID, "taken", taken, "capacity", s.capacity)
		return Grant{}, opErr(op, ErrCapacityExceeded, resourceID)
	}

	if s.codec == nil {
		return Grant{}, locktoken.ErrConfiguration
	}
	tok, err := s.codec.Mint(resourceID, holderID, s.lockTTL)
	if err != nil {
		return Grant{}, err
	}

	s.log.Info("reservation.lock.ok",
		"resource", resourceID,
		"holder", holderID,
		"taken", taken,
		"capacity", s.capacity,
		"expires_at", tok.Payload.ExpiresAt(),
	)
	return Grant{
		Token:            tok.Value,
		IssuedAt:         tok.Payload.IssuedAt(),
		ExpiresAt:        tok.Payload.ExpiresAt(),
		ProblemStatement: ps,
		Taken:            taken,
		Capacity:         s.capacity,
	}, nil
}

// Commit verifies the lock token, re-checks capacity and writes the holder's
// record. Token failures are returned unchanged from the codec.
func (s *Service) Commit(ctx context.Context, in CommitInput) (Record, error) {
	const op = "reservation.Commit"
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	holderID := strings.TrimSpace(in.HolderID)
	resourceID := strings.TrimSpace(in.ResourceID)
	if holderID == "" || resourceID == "" {
		return Record{}, opErr(op, ErrInvalidInput, "resource and holder are required")
	}
	team, msg, ok := NormalizeTeam(in.Team)
	if !ok {
		return Record{}, opErr(op, ErrInvalidInput, msg)
	}

	now := s.clock(in.Now)
	payload, err := s.verify(in.Token, resourceID, holderID, now)
	if err != nil {
		s.log.Info("reservation.commit.reject", "resource", resourceID, "holder", holderID, "err", err)
		return Record{}, err
	}

	ps, ok := s.catalog.Lookup(resourceID)
	if !ok {
		return Record{}, opErr(op, ErrResourceNotFound, resourceID)
	}

	if _, err := s.store.FindByHolder(ctx, holderID); err == nil {
		return Record{}, opErr(op, ErrAlreadyRegistered, "")
	} else if !errors.Is(err, ErrNotRegistered) {
		return Record{}, err
	}

	if err := s.checkCapacity(ctx, op, resourceID); err != nil {
		return Record{}, err
	}

	id, err := newULID(now)
	if err != nil {
		return Record{}, err
	}
	rec, err := s.store.Insert(ctx, Record{
		ID:        id,
		HolderID:  holderID,
		Team:      team,
		Lock:      s.lockFields(ps, payload),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Record{}, wrapStore(op, err)
	}

	s.log.Info("reservation.commit.ok", "id", rec.ID, "resource", resourceID, "holder", holderID, "locked_at", rec.Lock.LockedAt)
	return rec, nil
}

// AttachLock stamps lock fields onto an existing record that has none, with
// the same verify and capacity sequence as Commit.
func (s *Service) AttachLock(ctx context.Context, in AttachInput) (Record, error) {
	const op = "reservation.AttachLock"
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	holderID := strings.TrimSpace(in.HolderID)
	resourceID := strings.TrimSpace(in.ResourceID)
	if holderID == "" || resourceID == "" {
		return Record{}, opErr(op, ErrInvalidInput, "resource and holder are required")
	}

	now := s.clock(in.Now)
	payload, err := s.verify(in.Token, resourceID, holderID, now)
	if err != nil {
		s.log.Info("reservation.attach.reject", "resource", resourceID, "holder", holderID, "err", err)
		return Record{}, err
	}

	ps, ok := s.catalog.Lookup(resourceID)
	if !ok {
		return Record{}, opErr(op, ErrResourceNotFound, resourceID)
	}

	existing, err := s.store.FindByHolder(ctx, holderID)
	if err != nil {
		return Record{}, wrapStore(op, err)
	}
	if existing.Lock != nil {
		return Record{}, opErr(op, ErrAlreadyLocked, existing.Lock.ResourceID)
	}

	if err := s.checkCapacity(ctx, op, resourceID); err != nil {
		return Record{}, err
	}

	rec, err := s.store.AttachLock(ctx, holderID, *s.lockFields(ps, payload), now)
	if err != nil {
		return Record{}, wrapStore(op, err)
	}

	s.log.Info("reservation.attach.ok", "id", rec.ID, "resource", resourceID, "holder", holderID)
	return rec, nil
}

// Get returns the holder's own record.
func (s *Service) Get(ctx context.Context, holderID string) (Record, error) {
	const op = "reservation.Get"
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	holderID = strings.TrimSpace(holderID)
	if holderID == "" {
		return Record{}, opErr(op, ErrInvalidInput, "holder is required")
	}
	rec, err := s.store.FindByHolder(ctx, holderID)
	if err != nil {
		return Record{}, wrapStore(op, err)
	}
	return rec, nil
}

// UpdateTeam applies upd to the holder's team. Lock fields are never changed here.
func (s *Service) UpdateTeam(ctx context.Context, holderID string, upd TeamUpdate) (Record, error) {
	const op = "reservation.UpdateTeam"
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	holderID = strings.TrimSpace(holderID)
	if holderID == "" {
		return Record{}, opErr(op, ErrInvalidInput, "holder is required")
	}
	if upd.Empty() {
		return Record{}, opErr(op, ErrInvalidInput, "nothing to update")
	}

	existing, err := s.store.FindByHolder(ctx, holderID)
	if err != nil {
		return Record{}, wrapStore(op, err)
	}
	team, msg, ok := NormalizeTeam(upd.apply(existing.Team))
	if !ok {
		return Record{}, opErr(op, ErrInvalidInput, msg)
	}

	rec, err := s.store.UpdateTeam(ctx, holderID, team, s.clock(time.Time{}))
	if err != nil {
		return Record{}, wrapStore(op, err)
	}
	s.log.Info("reservation.team.update", "id", rec.ID, "holder", holderID)
	return rec, nil
}

// Withdraw deletes the holder's record and frees its slot.
func (s *Service) Withdraw(ctx context.Context, holderID string) (Record, error) {
	const op = "reservation.Withdraw"
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	holderID = strings.TrimSpace(holderID)
	if holderID == "" {
		return Record{}, opErr(op, ErrInvalidInput, "holder is required")
	}
	rec, err := s.store.Delete(ctx, holderID)
	if err != nil {
		return Record{}, wrapStore(op, err)
	}
	s.log.Info("reservation.withdraw", "id", rec.ID, "holder", holderID, "resource", rec.ResourceID())
	return rec, nil
}

// Availability returns the capacity view for every catalog entry, in catalog order.
func (s *Service) Availability(ctx context.Context) ([]Availability, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	counts, err := s.store.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	items := s.catalog.All()
	out := make([]Availability, 0, len(items))
	for _, ps := range items {
		taken := counts[ps.ID]
		remaining := s.capacity - taken
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, Availability{
			ProblemStatement: ps,
			Taken:            taken,
			Capacity:         s.capacity,
			Remaining:        remaining,
			Full:             taken >= s.capacity,
		})
	}
	return out, nil
}

func (s *Service) verify(tok, resourceID, holderID string, now time.Time) (locktoken.Payload, error) {
	if s.codec == nil {
		return locktoken.Payload{}, locktoken.ErrConfiguration
	}
	return s.codec.Verify(strings.TrimSpace(tok), resourceID, holderID, now)
}

func (s *Service) checkCapacity(ctx context.Context, op, resourceID string) error {
	taken, err := s.store.CountByResource(ctx, resourceID)
	if err != nil {
		return err
	}
	if taken >= s.capacity {
		s.log.Info("reservation.capacity.full", "op", op, "resource", resourceID, "taken", taken, "capacity", s.capacity)
		return opErr(op, ErrCapacityExceeded, resourceID)
	}
	return nil
}

func (s *Service) lockFields(ps catalog.ProblemStatement, p locktoken.Payload) *LockFields {
	return &LockFields{
		ResourceID:       ps.ID,
		Title:            ps.Title,
		LockedAt:         p.IssuedAt(),
		CapacitySnapshot: s.capacity,
	}
}

func (s *Service) clock(now time.Time) time.Time {
	if now.IsZero() {
		return s.now().UTC()
	}
	return now.UTC()
}

func newULID(now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
