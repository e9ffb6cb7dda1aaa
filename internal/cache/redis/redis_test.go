package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"hirefeed/internal/cache"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	other := errors.New("i/o timeout")

	assert.ErrorIs(t, mapError(redis.Nil), cache.ErrNotFound)
	assert.ErrorIs(t, mapError(redis.ErrClosed), cache.ErrClosed)
	assert.Equal(t, other, mapError(other))
	assert.NoError(t, mapError(nil))
}

func TestNew_DefaultTTL(t *testing.T) {
	c := New(cache.Options{RedisAddr: "localhost:6379"})
	defer c.Close()

	assert.Equal(t, cache.DefaultOptions().DefaultTTL, c.defaultTTL)
}

func TestSet_RejectsUnsupportedValues(t *testing.T) {
	c := New(cache.Options{RedisAddr: "localhost:6379", DefaultTTL: time.Minute})
	defer c.Close()

	require.ErrorIs(t, c.Set(context.Background(), "k", 42, 0), cache.ErrInvalidValue)
}
