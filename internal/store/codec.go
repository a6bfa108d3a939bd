package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/metrics"
	"github.com/wichananm65/grocery-store/internal/validation"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Lookup decodes the document under key. It reports false when the key is
// absent or when the stored value cannot be decoded or fails validation; the
// latter cases are logged and counted, never returned.
func Lookup[T any](ctx context.Context, s Store, key string, log *zap.Logger) (T, bool) {
	var out T
	family := Family(key)

	raw, found, err := s.Get(ctx, key)
	if err != nil {
		metrics.StoreOps.WithLabelValues("get", family, "error").Inc()
		log.Warn("store read failed", zap.String("key", key), zap.Error(err))
		return out, false
	}
	if !found {
		metrics.StoreOps.WithLabelValues("get", family, "miss").Inc()
		return out, false
	}
	metrics.StoreOps.WithLabelValues("get", family, "hit").Inc()

	if err := json.Unmarshal(raw, &out); err != nil {
		metrics.DecodeFailures.WithLabelValues(family).Inc()
		log.Warn("stored value is not valid json, using default", zap.String("key", key), zap.Error(err))
		var zero T
		return zero, false
	}
	if isStruct(out) {
		if err := validation.Struct(out); err != nil {
			metrics.DecodeFailures.WithLabelValues(family).Inc()
			log.Warn("stored value failed validation, using default", zap.String("key", key), zap.Error(err))
			var zero T
			return zero, false
		}
	}
	return out, true
}

// Read returns the decoded document under key or def.
func Read[T any](ctx context.Context, s Store, key string, def T, log *zap.Logger) T {
	if v, ok := Lookup[T](ctx, s, key, log); ok {
		return v
	}
	return def
}

// ReadList decodes a JSON array under key. Elements failing validation are
// dropped individually. The result is never nil.
func ReadList[T any](ctx context.Context, s Store, key string, log *zap.Logger) []T {
	items, ok := Lookup[[]T](ctx, s, key, log)
	if !ok || len(items) == 0 {
		return []T{}
	}
	var sample T
	if !isStruct(sample) {
		return items
	}
	out := items[:0]
	for i, item := range items {
		if err := validation.Struct(item); err != nil {
			metrics.DecodeFailures.WithLabelValues(Family(key)).Inc()
			log.Warn("dropping invalid stored record", zap.String("key", key), zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, item)
	}
	return out
}

// Write encodes v and stores it under key.
func Write(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Put(ctx, key, raw); err != nil {
		metrics.StoreOps.WithLabelValues("put", Family(key), "error").Inc()
		return fmt.Errorf("write %s: %w", key, err)
	}
	metrics.StoreOps.WithLabelValues("put", Family(key), "ok").Inc()
	return nil
}

// Remove deletes key.
func Remove(ctx context.Context, s Store, key string) error {
	if err := s.Delete(ctx, key); err != nil {
		metrics.StoreOps.WithLabelValues("delete", Family(key), "error").Inc()
		return fmt.Errorf("delete %s: %w", key, err)
	}
	metrics.StoreOps.WithLabelValues("delete", Family(key), "ok").Inc()
	return nil
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	return t != nil && t.Kind() == reflect.Struct
}

func decodeChange(payload string) (Change, error) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, err
	}
	if c.Key == "" {
		return Change{}, errors.New("change without key")
	}
	return c, nil
}
