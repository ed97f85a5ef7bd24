package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestDocumentFilter(t *testing.T) {
	filter := DocumentFilter("*.md")
	assert.True(t, filter("/docs/guide.md"))
	assert.True(t, filter("/docs/GUIDE.MD"))
	assert.False(t, filter("/docs/notes.txt"))
}

func TestNoHiddenFilter(t *testing.T) {
	assert.True(t, NoHiddenFilter("/docs/guide.md"))
	assert.False(t, NoHiddenFilter("/docs/.drafts/wip.md"))
	assert.False(t, NoHiddenFilter("/docs/.hidden.md"))
}

func TestWatcherDeliversDebouncedBatch(t *testing.T) {
	dir := t.TempDir()

	fw, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(DocumentFilter("*.md"))

	var mu sync.Mutex
	var received []ChangeEvent
	done := make(chan struct{}, 1)
	fw.AddHandler(func(events []ChangeEvent) {
		mu.Lock()
		received = append(received, events...)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	})

	require.NoError(t, fw.AddRecursive(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	target := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(target, []byte("one"), 0644))
	require.NoError(t, os.WriteFile(target, []byte("two"), 0644))
	// A non-document change must be filtered out.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0644))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change batch")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, received)
	for _, e := range received {
		assert.Equal(t, target, e.Path, "only the document change should arrive")
	}
	// Rapid writes to one path collapse into very few batched events.
	assert.LessOrEqual(t, len(received), 2)
}

func TestStopIsSafeWithoutStart(t *testing.T) {
	fw, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	assert.NoError(t, fw.Stop())
}
