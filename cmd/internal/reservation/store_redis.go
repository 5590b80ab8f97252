package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisMaxTxRetries = 8

// redisInsertScript writes a record only when the holder has none.
// KEYS[1] = record key, KEYS[2] = resource holder set, KEYS[3] = resource index
// ARGV[1] = record JSON, ARGV[2] = holder id, ARGV[3] = resource id ("" if unlocked)
var redisInsertScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
    return 0
end
redis.call("SET", KEYS[1], ARGV[1])
if ARGV[3] ~= "" then
    redis.call("SADD", KEYS[2], ARGV[2])
    redis.call("SADD", KEYS[3], ARGV[3])
end
return 1
`)

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore keeps one JSON record per holder plus a holder set per resource.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures RedisStore.
type RedisOption func(*RedisStore) error

// WithKeyPrefix sets the key namespace (default: "foundathon").
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) error {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			return ErrInvalidInput
		}
		s.prefix = prefix
		return nil
	}
}

// NewRedisStore constructs a RedisStore over an existing client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) (*RedisStore, error) {
	st := &RedisStore{client: client, prefix: "foundathon"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.client == nil {
		return nil, ErrInvalidInput
	}
	return st, nil
}

func (s *RedisStore) CountByResource(ctx context.Context, resourceID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := s.client.SCard(ctx, s.resourceKey(resourceID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis count: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) CountAll(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis index: %w", err)
	}

	cmds := make([]*redis.IntCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = p.SCard(ctx, s.resourceKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis count all: %w", err)
	}

	out := make(map[string]int, len(ids))
	for i, id := range ids {
		if n := cmds[i].Val(); n > 0 {
			out[id] = int(n)
		}
	}
	return out, nil
}

func (s *RedisStore) FindByHolder(ctx context.Context, holderID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	return s.get(ctx, s.client, holderID)
}

func (s *RedisStore) Insert(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if strings.TrimSpace(rec.ID) == "" || strings.TrimSpace(rec.HolderID) == "" {
		return Record{}, ErrInvalidInput
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return Record{}, err
	}

	resourceID := rec.ResourceID()
	ok, err := redisInsertScript.Run(ctx, s.client,
		[]string{s.recordKey(rec.HolderID), s.resourceKey(resourceID), s.indexKey()},
		string(raw), rec.HolderID, resourceID,
	).Int()
	if err != nil {
		return Record{}, fmt.Errorf("redis insert: %w", err)
	}
	if ok != 1 {
		return Record{}, ErrAlreadyRegistered
	}
	return rec.clone(), nil
}

func (s *RedisStore) AttachLock(ctx context.Context, holderID string, lock LockFields, now time.Time) (Record, error) {
	return s.mutate(ctx, holderID, func(r Record) (Record, error) {
		if r.Lock != nil {
			return Record{}, ErrAlreadyLocked
		}
		l := lock
		r.Lock = &l
		r.UpdatedAt = now
		return r, nil
	})
}

func (s *RedisStore) UpdateTeam(ctx context.Context, holderID string, team Team, now time.Time) (Record, error) {
	return s.mutate(ctx, holderID, func(r Record) (Record, error) {
		r.Team = team
		r.UpdatedAt = now
		return r, nil
	})
}

func (s *RedisStore) Delete(ctx context.Context, holderID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	key := s.recordKey(holderID)

	var out Record
	txf := func(tx *redis.Tx) error {
		r, err := s.get(ctx, tx, holderID)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, key)
			if id := r.ResourceID(); id != "" {
				p.SRem(ctx, s.resourceKey(id), holderID)
			}
			return nil
		})
		if err == nil {
			out = r
		}
		return err
	}
	if err := s.watch(ctx, txf, key); err != nil {
		return Record{}, err
	}
	return out, nil
}

// mutate applies fn to the holder's record under WATCH and writes the result,
// keeping the resource sets in step with the record's lock.
func (s *RedisStore) mutate(ctx context.Context, holderID string, fn func(Record) (Record, error)) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	key := s.recordKey(holderID)

	var out Record
	txf := func(tx *redis.Tx) error {
		current, err := s.get(ctx, tx, holderID)
		if err != nil {
			return err
		}
		next, err := fn(current.clone())
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, raw, 0)
			if before, after := current.ResourceID(), next.ResourceID(); before != after {
				if before != "" {
					p.SRem(ctx, s.resourceKey(before), holderID)
				}
				if after != "" {
					p.SAdd(ctx, s.resourceKey(after), holderID)
					p.SAdd(ctx, s.indexKey(), after)
				}
			}
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}
	if err := s.watch(ctx, txf, key); err != nil {
		return Record{}, err
	}
	return out, nil
}

func (s *RedisStore) watch(ctx context.Context, txf func(*redis.Tx) error, key string) error {
	for i := 0; i < redisMaxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis: record %s kept changing", key)
}

func (s *RedisStore) get(ctx context.Context, c redisGetter, holderID string) (Record, error) {
	raw, err := c.Get(ctx, s.recordKey(holderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrNotRegistered
		}
		return Record{}, fmt.Errorf("redis get: %w", err)
	}
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return Record{}, fmt.Errorf("redis decode: %w", err)
	}
	return r, nil
}

func (s *RedisStore) recordKey(holderID string) string {
	return s.prefix + ":registration:" + holderID
}

func (s *RedisStore) resourceKey(resourceID string) string {
	return s.prefix + ":problem_statement:" + resourceID
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":problem_statements"
}
