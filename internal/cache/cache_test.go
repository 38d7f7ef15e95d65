package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_NilReceiverIsDisabled(t *testing.T) {
	var c *Cache

	assert.False(t, c.Enabled())

	var dest string
	hit, err := c.Get(context.Background(), "users:all", &dest)
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, dest)

	assert.NoError(t, c.Set(context.Background(), "users:all", "value"))
	assert.NoError(t, c.Delete(context.Background(), "users:all"))
}

func TestCache_NilClientIsDisabled(t *testing.T) {
	c := New(nil, time.Minute)

	assert.False(t, c.Enabled())

	var dest []string
	hit, err := c.Get(context.Background(), "users:all", &dest)
	assert.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, c.Set(context.Background(), "users:all", []string{"a"}))
	assert.NoError(t, c.Delete(context.Background(), "users:all"))
}
