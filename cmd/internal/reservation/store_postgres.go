package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// PostgresStore persists registrations in PostgreSQL.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// StoreOption configures PostgresStore.
type StoreOption func(*PostgresStore) error

// WithSchema sets the DB schema used by the store (default: "foundathon").
func WithSchema(schema string) StoreOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return ErrInvalidInput
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...StoreOption) (*PostgresStore, error) {
	st := &PostgresStore{pool: pool, schema: "foundathon"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, ErrInvalidInput
	}
	return st, nil
}

const recordColumns = `id, holder_id, team_name, lead_name, lead_email, institution, members,
	problem_statement_id, problem_statement_title, locked_at, capacity_snapshot,
	created_at, updated_at`

func (s *PostgresStore) CountByResource(ctx context.Context, resourceID string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM `+s.table()+` WHERE problem_statement_id = $1`,
		resourceID,
	).Scan(&n)
	return n, err
}

func (s *PostgresStore) CountAll(ctx context.Context) (map[string]int, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT problem_statement_id, count(*)
		   FROM `+s.table()+`
		  WHERE problem_statement_id IS NOT NULL
		  GROUP BY problem_statement_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindByHolder(ctx context.Context, holderID string) (Record, error) {
	if err := s.ready(ctx); err != nil {
		return Record{}, err
	}
	return scanRecord(s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM `+s.table()+` WHERE holder_id = $1`,
		holderID,
	))
}

func (s *PostgresStore) Insert(ctx context.Context, rec Record) (Record, error) {
	if err := s.ready(ctx); err != nil {
		return Record{}, err
	}
	if strings.TrimSpace(rec.ID) == "" || strings.TrimSpace(rec.HolderID) == "" {
		return Record{}, ErrInvalidInput
	}
	members, err := json.Marshal(membersOrEmpty(rec.Team.Members))
	if err != nil {
		return Record{}, err
	}

	var (
		psID, psTitle *string
		lockedAt      *time.Time
		snapshot      *int
	)
	if rec.Lock != nil {
		psID, psTitle = &rec.Lock.ResourceID, &rec.Lock.Title
		lockedAt, snapshot = &rec.Lock.LockedAt, &rec.Lock.CapacitySnapshot
	}

	out, err := scanRecord(s.pool.QueryRow(ctx,
		`INSERT INTO `+s.table()+` (
		     id, holder_id, team_name, lead_name, lead_email, institution, members,
		     problem_statement_id, problem_statement_title, locked_at, capacity_snapshot,
		     created_at, updated_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+recordColumns,
		rec.ID,
		rec.HolderID,
		rec.Team.Name,
		rec.Team.LeadName,
		rec.Team.LeadEmail,
		rec.Team.Institution,
		members,
		psID,
		psTitle,
		lockedAt,
		snapshot,
		rec.CreatedAt,
		rec.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return Record{}, ErrAlreadyRegistered
		}
		return Record{}, err
	}
	return out, nil
}

func (s *PostgresStore) AttachLock(ctx context.Context, holderID string, lock LockFields, now time.Time) (Record, error) {
	if err := s.ready(ctx); err != nil {
		return Record{}, err
	}
	out, err := scanRecord(s.pool.QueryRow(ctx,
		`UPDATE `+s.table()+`
		    SET problem_statement_id = $2,
		        problem_statement_title = $3,
		        locked_at = $4,
		        capacity_snapshot = $5,
		        updated_at = $6
		  WHERE holder_id = $1
		    AND problem_statement_id IS NULL
		RETURNING `+recordColumns,
		holderID,
		lock.ResourceID,
		lock.Title,
		lock.LockedAt,
		lock.CapacitySnapshot,
		now,
	))
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, ErrNotRegistered) {
		return Record{}, err
	}

	// Distinguish missing vs already locked.
	if _, selErr := s.FindByHolder(ctx, holderID); selErr != nil {
		return Record{}, selErr
	}
	return Record{}, ErrAlreadyLocked
}

func (s *PostgresStore) UpdateTeam(ctx context.Context, holderID string, team Team, now time.Time) (Record, error) {
	if err := s.ready(ctx); err != nil {
		return Record{}, err
	}
	members, err := json.Marshal(membersOrEmpty(team.Members))
	if err != nil {
		return Record{}, err
	}
	return scanRecord(s.pool.QueryRow(ctx,
		`UPDATE `+s.table()+`
		    SET team_name = $2,
		        lead_name = $3,
		        lead_email = $4,
		        institution = $5,
		        members = $6,
		        updated_at = $7
		  WHERE holder_id = $1
		RETURNING `+recordColumns,
		holderID,
		team.Name,
		team.LeadName,
		team.LeadEmail,
		team.Institution,
		members,
		now,
	))
}

func (s *PostgresStore) Delete(ctx context.Context, holderID string) (Record, error) {
	if err := s.ready(ctx); err != nil {
		return Record{}, err
	}
	return scanRecord(s.pool.QueryRow(ctx,
		`DELETE FROM `+s.table()+` WHERE holder_id = $1 RETURNING `+recordColumns,
		holderID,
	))
}

func (s *PostgresStore) ready(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return ErrInvalidInput
	}
	return ctx.Err()
}

func (s *PostgresStore) table() string {
	return pgIdent(s.schema, "registrations")
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		out      Record
		members  []byte
		psID     *string
		psTitle  *string
		lockedAt *time.Time
		snapshot *int
	)
	err := row.Scan(
		&out.ID,
		&out.HolderID,
		&out.Team.Name,
		&out.Team.LeadName,
		&out.Team.LeadEmail,
		&out.Team.Institution,
		&members,
		&psID,
		&psTitle,
		&lockedAt,
		&snapshot,
		&out.CreatedAt,
		&out.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotRegistered
		}
		return Record{}, err
	}
	if len(members) > 0 {
		if err := json.Unmarshal(members, &out.Team.Members); err != nil {
			return Record{}, err
		}
		if len(out.Team.Members) == 0 {
			out.Team.Members = nil
		}
	}
	if psID != nil {
		out.Lock = &LockFields{ResourceID: *psID}
		if psTitle != nil {
			out.Lock.Title = *psTitle
		}
		if lockedAt != nil {
			out.Lock.LockedAt = lockedAt.UTC()
		}
		if snapshot != nil {
			out.Lock.CapacitySnapshot = *snapshot
		}
	}
	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()
	return out, nil
}

func membersOrEmpty(m []Member) []Member {
	if m == nil {
		return []Member{}
	}
	return m
}

func pgIdent(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}
