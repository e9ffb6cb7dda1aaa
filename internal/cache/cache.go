package cache

import (
	"context"
	"encoding"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("key not found in cache")
	ErrInvalidValue = errors.New("invalid value for cache")
	ErrClosed       = errors.New("cache is closed")
)

// Cache stores values that Encode accepts and reads them back into
// targets that Decode accepts. A zero ttl means the backend default.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, value interface{}) error
	Close() error
}

// Options configures either backend. An empty RedisAddr selects the
// in-process cache.
type Options struct {
	DefaultTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func DefaultOptions() Options {
	return Options{
		DefaultTTL: 15 * time.Minute,
	}
}

// Encode accepts strings, byte slices and encoding.BinaryMarshaler values.
func Encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return append([]byte(nil), v...), nil
	case encoding.BinaryMarshaler:
		return v.MarshalBinary()
	default:
		return nil, ErrInvalidValue
	}
}

// Decode fills a *string or an encoding.BinaryUnmarshaler from data.
func Decode(data []byte, value interface{}) error {
	switch v := value.(type) {
	case *string:
		*v = string(data)
		return nil
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(data)
	default:
		return ErrInvalidValue
	}
}
