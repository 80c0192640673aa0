package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewInboxAdapter(t *testing.T) {
	_, err := NewInboxAdapter("", "*.json", zap.NewNop())
	assert.Error(t, err)

	_, err = NewInboxAdapter(t.TempDir(), "[", zap.NewNop())
	assert.Error(t, err)

	a, err := NewInboxAdapter("/srv/drops", "", zap.NewNop())
	require.NoError(t, err)
	assert.True(t, a.matches("/srv/drops/load.json"))
	assert.False(t, a.matches("/srv/drops/load.json.tmp"))
}

func TestInboxAdapter_Scan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	a, err := NewInboxAdapter(dir, "*.json", zap.NewNop())
	require.NoError(t, err)

	got, err := a.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}, got)
}

func TestInboxAdapter_Watch(t *testing.T) {
	dir := t.TempDir()
	a, err := NewInboxAdapter(dir, "*.json", zap.NewNop())
	require.NoError(t, err)
	a.settle = 40 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	delivered := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, func(_ context.Context, path string) { delivered <- path })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	drop := filepath.Join(dir, "drop.json")
	require.NoError(t, os.WriteFile(drop, []byte(`{"a":`), 0644))
	require.NoError(t, os.WriteFile(drop, []byte(`{"a": 1}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0644))

	select {
	case got := <-delivered:
		assert.Equal(t, drop, got)
	case <-time.After(3 * time.Second):
		t.Fatal("drop was not delivered")
	}

	select {
	case extra := <-delivered:
		t.Fatalf("unexpected second delivery of %s", extra)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestSettled(t *testing.T) {
	now := time.Now()
	pending := map[string]time.Time{
		"b": now.Add(-time.Second),
		"a": now.Add(-time.Second),
		"c": now,
	}
	assert.Equal(t, []string{"a", "b"}, settled(pending, now, 500*time.Millisecond))
}
