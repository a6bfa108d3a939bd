package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps documents as plain string values under a namespace and
// publishes every write on <namespace>:changes.
type RedisStore struct {
	client    *redis.Client
	namespace string
	origin    string
}

func NewRedis(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace, origin: uuid.NewString()}
}

func (r *RedisStore) Origin() string { return r.origin }

func (r *RedisStore) key(k string) string {
	return r.namespace + ":" + k
}

func (r *RedisStore) channel() string {
	return r.namespace + ":changes"
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (r *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return err
	}
	return r.publish(ctx, key)
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return err
	}
	return r.publish(ctx, key)
}

func (r *RedisStore) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	payloads := make([][]byte, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
		payload, err := r.change(k)
		if err != nil {
			return err
		}
		payloads[i] = payload
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, full...)
	for _, payload := range payloads {
		pipe.Publish(ctx, r.channel(), payload)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	ns := r.namespace + ":"
	iter := r.client.Scan(ctx, 0, ns+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), ns))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) change(key string) ([]byte, error) {
	return json.Marshal(Change{Key: key, Origin: r.origin})
}

func (r *RedisStore) publish(ctx context.Context, key string) error {
	payload, err := r.change(key)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel(), payload).Err()
}

func (r *RedisStore) Watch(ctx context.Context) (<-chan Change, error) {
	sub := r.client.Subscribe(ctx, r.channel())
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Change, 64)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				c, err := decodeChange(msg.Payload)
				if err != nil {
					continue
				}
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
