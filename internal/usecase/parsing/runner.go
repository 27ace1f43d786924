// Package parsing drives queued articles through the analysis service one at
// a time and applies the resulting state transitions.
package parsing

import (
	"context"
	"log/slog"
	"sync"

	"malim/internal/domain"
	"malim/internal/ports"
	"malim/internal/state"
)

// EventParsingProgress is emitted to the frontend for every progress update.
const EventParsingProgress = "parsing-progress"

// EventArticleUpdated is emitted after an article finishes (done or error).
const EventArticleUpdated = "article.updated"

// Runner is the queue orchestrator. At most one analysis call is in flight
// system-wide; the busy flag makes Kick safe to call after every enqueue.
type Runner struct {
	store    *state.Store
	analyzer ports.Analyzer
	bus      *Bus
	log      *slog.Logger

	mu    sync.Mutex
	busy  bool
	em    ports.EventEmitter
	alert ports.Alerter
}

func NewRunner(store *state.Store, analyzer ports.Analyzer, bus *Bus, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{store: store, analyzer: analyzer, bus: bus, log: log}
}

// SetEmitter wires the frontend event channel once the UI context exists.
func (r *Runner) SetEmitter(em ports.EventEmitter) {
	r.mu.Lock()
	r.em = em
	r.mu.Unlock()
}

// SetAlerter wires the blocking error dialog.
func (r *Runner) SetAlerter(a ports.Alerter) {
	r.mu.Lock()
	r.alert = a
	r.mu.Unlock()
}

// Kick starts the drain loop unless one is already running. No-op on an
// empty queue.
func (r *Runner) Kick() {
	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return
	}
	if _, ok := r.store.PeekQueue(); !ok {
		r.mu.Unlock()
		return
	}
	r.busy = true
	r.mu.Unlock()
	go r.drain()
}

func (r *Runner) drain() {
	for {
		id, ok := r.store.PeekQueue()
		if !ok {
			r.mu.Lock()
			r.busy = false
			r.mu.Unlock()
			// An enqueue may have raced the drain; check once more.
			if _, ok := r.store.PeekQueue(); ok {
				r.Kick()
			}
			return
		}
		r.runOne(id)
		r.store.PopQueue()
	}
}

// runOne executes a single job. The head id stays queued until it returns so
// the single-flight invariant holds across the whole call.
func (r *Runner) runOne(id string) {
	art, ok := r.store.Article(id)
	if !ok {
		// Deleted while queued; skip without contacting the service.
		r.log.Debug("skipping missing article", "article", id)
		return
	}

	// Subscribe before dispatch so no early progress event is lost.
	events, cancel := r.bus.Subscribe(id)
	defer cancel()
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for ev := range events {
			r.store.SetParsingProgress(ev.ID, ev.Percent)
			r.emit(EventParsingProgress, ev)
		}
	}()

	settings := r.store.Settings()
	sentences, err := r.analyzer.Analyze(context.Background(), ports.AnalyzeRequest{
		ID:             id,
		Text:           art.DraftContent,
		Language:       art.Language,
		APIKey:         settings.APIKey,
		APIURL:         settings.APIURL,
		ModelName:      settings.ModelName,
		Concurrency:    settings.Concurrency,
		PreCacheAudio:  settings.PreCacheAudio,
		TTSConcurrency: settings.TTSConcurrency,
		OldSentences:   art.Sentences,
	})

	cancel()
	<-forwarded

	// The article may have been edited or deleted while the call was out;
	// apply the result to the current record if it still exists.
	cur, ok := r.store.Article(id)
	if !ok {
		r.log.Debug("article removed mid-flight, dropping result", "article", id)
		return
	}
	if err != nil {
		cur.Status = domain.StatusError
		cur.ParsingProgress = 0
		r.store.ReplaceArticle(cur)
		r.log.Error("analysis failed", "article", id, "error", err)
		r.emit(EventArticleUpdated, cur)
		r.showAlert("Parsing failed", err.Error())
		return
	}
	cur.Sentences = sentences
	cur.Status = domain.StatusDone
	cur.ParsingProgress = 100
	r.store.ReplaceArticle(cur)
	r.log.Info("analysis done", "article", id, "sentences", len(sentences))
	r.emit(EventArticleUpdated, cur)
}

func (r *Runner) emit(name string, payload any) {
	r.mu.Lock()
	em := r.em
	r.mu.Unlock()
	if em != nil {
		em.Emit(name, payload)
	}
}

func (r *Runner) showAlert(title, message string) {
	r.mu.Lock()
	a := r.alert
	r.mu.Unlock()
	if a != nil {
		a.Alert(title, message)
	}
}
