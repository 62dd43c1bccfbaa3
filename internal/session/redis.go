package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kdduha/audioflow/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix     = "audioflow:session:"
	channelPrefix = "audioflow:events:"

	maxUpdateRetries = 10
)

// RedisStore lets several API replicas share sessions. Every write refreshes
// the TTL. Update runs under WATCH so concurrent writers from any replica
// never both win the same transition.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreWithClient(rdb, ttl)
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisStore) Client() *redis.Client {
	return r.client
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Save(ctx context.Context, s *models.Session) error {
	data, err := sonic.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.Set(ctx, keyPrefix+s.ID, data, r.ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	return load(ctx, r.client, id)
}

func (r *RedisStore) Update(ctx context.Context, id string, fn func(*models.Session) error) (*models.Session, error) {
	key := keyPrefix + id

	var updated *models.Session
	txf := func(tx *redis.Tx) error {
		s, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		data, err := sonic.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err == nil {
			updated = s
		}
		return err
	}

	for range maxUpdateRetries {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update session %s: too many concurrent writers", id)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// getter is satisfied by *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, c getter, id string) (*models.Session, error) {
	val, err := c.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var s models.Session
	if err := sonic.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

// RedisBroker fans state events out over Redis pub/sub so a subscriber on
// any replica sees changes made by the replica running the pipeline.
type RedisBroker struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedisBroker(client *redis.Client, logger zerolog.Logger) *RedisBroker {
	return &RedisBroker{client: client, logger: logger}
}

func (b *RedisBroker) Publish(ctx context.Context, evt models.StateEvent) error {
	data, err := sonic.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return b.client.Publish(ctx, channelPrefix+evt.SessionID, data).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, id string) (<-chan models.StateEvent, func(), error) {
	pubsub := b.client.Subscribe(ctx, channelPrefix+id)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe to session %s: %w", id, err)
	}

	out := make(chan models.StateEvent, subscriberBuffer)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var evt models.StateEvent
			if err := sonic.UnmarshalString(msg.Payload, &evt); err != nil {
				b.logger.Warn().Err(err).Str("session_id", id).Msg("malformed state event")
				continue
			}
			select {
			case out <- evt:
			case <-done:
				return
			default:
				b.logger.Warn().Str("session_id", id).Msg("subscriber is slow, event dropped")
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}
