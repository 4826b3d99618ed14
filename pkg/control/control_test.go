package control

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

type countingInvalidator struct {
	calls atomic.Int32
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls.Add(1)
	return nil
}

func TestRedisWatcher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresher := &countingRefresher{}
	cache := &countingInvalidator{}
	w := NewRedisWatcher(client, "wordgate_updates", cache, refresher)
	require.NoError(t, w.Start(ctx))

	require.NoError(t, client.Publish(ctx, "wordgate_updates", "bad_words changed").Err())
	require.Eventually(t, func() bool { return refresher.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), cache.calls.Load())

	require.NoError(t, client.Publish(ctx, "other_channel", "ignored").Err())
	require.NoError(t, client.Publish(ctx, "wordgate_updates", "again").Err())
	require.Eventually(t, func() bool { return refresher.calls.Load() == 2 }, time.Second, 10*time.Millisecond)
}

func TestRedisWatcher_RefreshFailureKeepsWatching(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresher := &countingRefresher{err: errors.New("store down")}
	require.NoError(t, NewRedisWatcher(client, "updates", nil, refresher).Start(ctx))

	for i := 0; i < 2; i++ {
		require.NoError(t, client.Publish(ctx, "updates", "x").Err())
	}
	require.Eventually(t, func() bool { return refresher.calls.Load() == 2 }, time.Second, 10*time.Millisecond)
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("bad\n"), 0644))

	refresher := &countingRefresher{}
	cache := &countingInvalidator{}
	w, err := NewFileWatcher([]string{bad}, cache, refresher)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	time.Sleep(2 * debounceInterval)
	assert.Equal(t, int32(0), refresher.calls.Load())

	// A burst of writes collapses into one refresh.
	for _, content := range []string{"bad\nworse\n", "bad\nworse\nugly\n"} {
		require.NoError(t, os.WriteFile(bad, []byte(content), 0644))
	}
	require.Eventually(t, func() bool { return refresher.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(2 * debounceInterval)
	assert.Equal(t, int32(1), refresher.calls.Load())
	assert.Equal(t, int32(1), cache.calls.Load())
}
