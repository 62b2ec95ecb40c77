package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisCacheErrors(t *testing.T) {
	_, err := NewRedisCache(t.Context(), "")
	assert.EqualError(t, err, "REDIS_URL not found")

	_, err = NewRedisCache(t.Context(), "redis://localhost:6379/notadb")
	assert.ErrorContains(t, err, "parse REDIS_URL")

	_, err = NewRedisCache(t.Context(), "127.0.0.1:1")
	assert.ErrorContains(t, err, "could not connect to redis")
}
