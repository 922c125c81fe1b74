//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisReportCache_Integration(t *testing.T) {
	url := os.Getenv("STUDYTRACK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("STUDYTRACK_TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	c, err := NewRedisReportCache(ctx, url, time.Minute, nil)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	userID := time.Now().UnixNano()
	before, err := c.Version(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), before)

	key := Key("calendar", userID, before, "2024", "3")
	require.NoError(t, c.Set(ctx, key, []byte("payload")))
	data, found, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, c.Bump(ctx, userID))
	after, err := c.Version(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after)

	_, found, err = c.Get(ctx, Key("calendar", userID, after, "2024", "3"))
	require.NoError(t, err)
	assert.False(t, found)
}
