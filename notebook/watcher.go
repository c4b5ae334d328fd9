package notebook

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-publishes a notebook after its source changes. Bursts of
// events within the debounce window trigger one publish.
type Watcher struct {
	publisher *Publisher
	watcher   *fsnotify.Watcher
	debounce  time.Duration
	logger    *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	// published receives the source name after each re-publish; used by tests.
	published chan string
}

func NewWatcher(publisher *Publisher, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(publisher.SourceDir()); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", publisher.SourceDir(), err)
	}
	return &Watcher{
		publisher: publisher,
		watcher:   fw,
		debounce:  debounce,
		logger:    logger.Named("notebook_watcher"),
		timers:    make(map[string]*time.Timer),
	}, nil
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			doc, ok := w.publisher.Lookup(filepath.Base(event.Name))
			if !ok {
				continue
			}
			w.schedule(doc)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule(doc Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduleLocked(doc)
}

// scheduleLocked must be called with w.mu held.
func (w *Watcher) scheduleLocked(doc Document) {
	if t, ok := w.timers[doc.Source]; ok {
		// A timer that already fired is about to publish and will read the
		// latest source, so it is not re-armed.
		if t.Stop() {
			t.Reset(w.debounce)
		}
		return
	}
	w.timers[doc.Source] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, doc.Source)
		w.mu.Unlock()

		if err := w.publisher.Publish(doc); err != nil {
			w.logger.Error("republish notebook failed", zap.String("source", doc.Source), zap.Error(err))
			return
		}
		if w.published != nil {
			w.published <- doc.Source
		}
	})
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = map[string]*time.Timer{}
	w.mu.Unlock()
	return w.watcher.Close()
}
