// Package watcher observes a disk document root for changes and delivers
// debounced change batches to registered handlers. It feeds the live-reload
// channel: rapid editor save bursts collapse into a single notification.
package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mdserve/mdserve/internal/logging"
)

// ChangeEvent represents one file change.
type ChangeEvent struct {
	Type EventType
	Path string
}

// EventType represents the type of file change.
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType.
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter decides whether a changed path is interesting.
type FileFilter func(path string) bool

// ChangeHandler receives a debounced batch of change events.
type ChangeHandler func(events []ChangeEvent)

// DocumentFilter accepts document files by extension pattern.
func DocumentFilter(pattern string) FileFilter {
	return func(path string) bool {
		base := filepath.Base(path)
		ok, err := filepath.Match(strings.ToLower(pattern), strings.ToLower(base))
		return err == nil && ok
	}
}

// NoHiddenFilter rejects paths with a hidden component.
func NoHiddenFilter(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return false
		}
	}
	return true
}

// FileWatcher watches a directory tree with debounced change delivery.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   logging.Logger
	delay    time.Duration
	filters  []FileFilter
	handlers []ChangeHandler

	mu      sync.Mutex
	pending map[string]ChangeEvent
	timer   *time.Timer
}

// NewFileWatcher creates a watcher with the given debounce delay.
func NewFileWatcher(debounceDelay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FileWatcher{
		watcher: w,
		logger:  logger.WithComponent("watcher"),
		delay:   debounceDelay,
		pending: make(map[string]ChangeEvent),
	}, nil
}

// AddFilter adds a file filter; all filters must accept a path.
func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.filters = append(fw.filters, filter)
}

// AddHandler registers a handler for debounced change batches.
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.handlers = append(fw.handlers, handler)
}

// AddRecursive watches root and all non-hidden subdirectories.
func (fw *FileWatcher) AddRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.watcher.Add(path)
	})
}

// Start begins delivering events until ctx is canceled.
func (fw *FileWatcher) Start(ctx context.Context) {
	go fw.watchLoop(ctx)
}

// Stop stops the watcher and releases its OS resources.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "watch error")
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	for _, filter := range fw.filters {
		if !filter(event.Name) {
			return
		}
	}

	var eventType EventType
	switch {
	case event.Op.Has(fsnotify.Create):
		eventType = EventTypeCreated
	case event.Op.Has(fsnotify.Write):
		eventType = EventTypeModified
	case event.Op.Has(fsnotify.Remove):
		eventType = EventTypeDeleted
	case event.Op.Has(fsnotify.Rename):
		eventType = EventTypeRenamed
	default:
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	// Deduplicate by path; the latest event type wins.
	fw.pending[event.Name] = ChangeEvent{Type: eventType, Path: event.Name}

	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.delay, fw.flush)
}

func (fw *FileWatcher) flush() {
	fw.mu.Lock()
	if len(fw.pending) == 0 {
		fw.mu.Unlock()
		return
	}
	events := make([]ChangeEvent, 0, len(fw.pending))
	for _, e := range fw.pending {
		events = append(events, e)
	}
	fw.pending = make(map[string]ChangeEvent)
	fw.mu.Unlock()

	for _, handler := range fw.handlers {
		handler(events)
	}
}
