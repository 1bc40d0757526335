package store

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RedisStore implements Store over a Redis keyspace. Each path is a key
// under keyPrefix; writes publish the new raw value on a channel of the
// same name so subscribers see updates without polling. Consistency is
// last writer wins per path.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "lifeline:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) key(path string) string {
	return s.keyPrefix + path
}

func (s *RedisStore) Get(ctx context.Context, path string) (string, error) {
	val, err := s.client.Get(ctx, s.key(path)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, path string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(path), raw, 0)
	pipe.Publish(ctx, s.key(path), raw)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Delete(ctx context.Context, path string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(path))
	pipe.Publish(ctx, s.key(path), "")
	_, err := pipe.Exec(ctx)
	return err
}

// Subscribe opens a Redis pub/sub subscription for the path. The current
// value, when present, is delivered before live updates begin.
func (s *RedisStore) Subscribe(ctx context.Context, path string, fn Handler) (func(), error) {
	pubsub := s.client.Subscribe(ctx, s.key(path))

	// Force the subscription onto the wire before snapshotting, so no
	// write can slip between the snapshot and the live stream.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	if current, err := s.Get(ctx, path); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("store: snapshot read failed")
	} else if current != "" {
		fn(current)
	}

	go func() {
		for msg := range pubsub.Channel() {
			fn(msg.Payload)
		}
	}()

	return func() { pubsub.Close() }, nil
}
