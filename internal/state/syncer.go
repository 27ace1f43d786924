package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"malim/internal/ports"
)

// DefaultDebounce is the quiescence window between the last mutation and the
// actual snapshot write.
const DefaultDebounce = 500 * time.Millisecond

// Syncer keeps the persisted snapshot in step with the Store. Writes are
// debounced: every mutation restarts the window, and the snapshot is read at
// fire time rather than schedule time, so a burst of mutations coalesces into
// a single consistent write.
type Syncer struct {
	store    *Store
	snaps    ports.SnapshotStore
	interval time.Duration
	log      *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

func NewSyncer(store *Store, snaps ports.SnapshotStore, interval time.Duration, log *slog.Logger) *Syncer {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{store: store, snaps: snaps, interval: interval, log: log}
}

// Watch subscribes the syncer to store mutations. Call once after Restore so
// the restore itself does not trigger a write-back.
func (s *Syncer) Watch() {
	s.store.Subscribe(s.schedule)
}

func (s *Syncer) schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.interval, s.flush)
}

func (s *Syncer) flush() {
	snap := s.store.Snapshot()
	if err := s.snaps.Save(context.Background(), snap); err != nil {
		// Not retried here; the next debounced mutation writes again.
		s.log.Error("snapshot save failed", "error", err)
	}
}

// Flush cancels any pending timer and writes the current snapshot now.
// Used at shutdown.
func (s *Syncer) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flush()
}

// Restore performs the single startup load. Each snapshot field present in
// the payload overwrites the corresponding store value; absent fields leave
// defaults untouched. A missing or malformed payload restores nothing.
func (s *Syncer) Restore(ctx context.Context) {
	snap, err := s.snaps.Load(ctx)
	if err != nil {
		s.log.Warn("snapshot load failed, starting empty", "error", err)
		return
	}
	if snap == nil {
		return
	}
	if snap.Articles != nil {
		s.store.SetArticles(snap.Articles)
	}
	if snap.Draft != nil {
		s.store.SetDraft(*snap.Draft)
	}
	if snap.Settings != nil {
		s.store.SetSettings(*snap.Settings)
	}
	// Articles left in parsing state by an interrupted run are not requeued;
	// the user re-edits them to resubmit.
}
