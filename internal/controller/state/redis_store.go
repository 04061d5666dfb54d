package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis so dialogs survive restarts. Idle
// sessions expire through the key TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: "availability:session:",
	}
}

var _ Store = (*RedisStore)(nil)

func (r *RedisStore) key(telegramID int64) string {
	return r.prefix + strconv.FormatInt(telegramID, 10)
}

func (r *RedisStore) Get(ctx context.Context, telegramID int64) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(telegramID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decodeSession(data)
}

func (r *RedisStore) Save(ctx context.Context, telegramID int64, s *Session) error {
	if s.State == StateNone {
		return r.Clear(ctx, telegramID)
	}

	s.UpdatedAt = time.Now()
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(telegramID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, telegramID int64) error {
	if err := r.client.Del(ctx, r.key(telegramID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

const takeRetries = 3

// Take reads and deletes the key inside WATCH/MULTI, so a concurrent writer
// makes the transaction fail and the read is retried.
func (r *RedisStore) Take(ctx context.Context, telegramID int64, want ...UserState) (*Session, error) {
	key := r.key(telegramID)

	for i := 0; i < takeRetries; i++ {
		var taken *Session
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return nil
				}
				return err
			}
			s, err := decodeSession(data)
			if err != nil {
				return err
			}
			if !inStates(s, want) {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			if err != nil {
				return err
			}
			taken = s
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("take session: %w", err)
		}
		return taken, nil
	}
	return nil, fmt.Errorf("take session: %w", redis.TxFailedErr)
}

// Ping checks the connection; used by the readiness probe.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
