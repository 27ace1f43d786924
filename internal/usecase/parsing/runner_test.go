package parsing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"malim/internal/domain"
	"malim/internal/ports"
	"malim/internal/state"
)

type recordingAnalyzer struct {
	mu          sync.Mutex
	order       []string
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	failFor     map[string]error
	result      []domain.Sentence
	bus         *Bus
	publish     []ports.ProgressEvent // published while the job is in flight
}

func (a *recordingAnalyzer) Analyze(_ context.Context, req ports.AnalyzeRequest) ([]domain.Sentence, error) {
	n := a.inFlight.Add(1)
	defer a.inFlight.Add(-1)
	a.mu.Lock()
	if n > a.maxInFlight.Load() {
		a.maxInFlight.Store(n)
	}
	a.order = append(a.order, req.ID)
	a.mu.Unlock()
	time.Sleep(10 * time.Millisecond)
	if a.bus != nil {
		for _, ev := range a.publish {
			a.bus.Publish(ev)
		}
	}
	if err := a.failFor[req.ID]; err != nil {
		return nil, err
	}
	return a.result, nil
}

func (a *recordingAnalyzer) calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingAlerter) Alert(_, message string) {
	r.mu.Lock()
	r.messages = append(r.messages, message)
	r.mu.Unlock()
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingEmitter) Emit(name string, _ any) {
	r.mu.Lock()
	r.events = append(r.events, name)
	r.mu.Unlock()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func seedArticle(store *state.Store, id string) {
	store.InsertArticleFront(domain.Article{
		ID:           id,
		Status:       domain.StatusParsing,
		DraftContent: "Text for " + id + ".",
		Language:     "RU",
	})
}

func TestRunner_FIFOAndSingleFlight(t *testing.T) {
	store := state.New()
	bus := NewBus()
	analyzer := &recordingAnalyzer{}
	r := NewRunner(store, analyzer, bus, nil)

	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		seedArticle(store, id)
		store.Enqueue(id)
		r.Kick()
	}

	waitFor(t, "queue drain", func() bool { return store.QueueLen() == 0 && len(analyzer.calls()) == len(ids) })

	got := analyzer.calls()
	for i, id := range ids {
		if got[i] != id {
			t.Fatalf("dispatch order = %v, want %v", got, ids)
		}
	}
	if analyzer.maxInFlight.Load() != 1 {
		t.Errorf("max in flight = %d, want 1", analyzer.maxInFlight.Load())
	}
}

func TestRunner_FailureDoesNotStallQueue(t *testing.T) {
	store := state.New()
	bus := NewBus()
	analyzer := &recordingAnalyzer{
		failFor: map[string]error{"x": errors.New("boom")},
		result:  []domain.Sentence{{ID: "ok_0", Original: "Fine."}},
	}
	r := NewRunner(store, analyzer, bus, nil)
	alerter := &recordingAlerter{}
	r.SetAlerter(alerter)

	seedArticle(store, "x")
	seedArticle(store, "y")
	store.Enqueue("x")
	store.Enqueue("y")
	r.Kick()

	waitFor(t, "both jobs", func() bool { return store.QueueLen() == 0 && len(analyzer.calls()) == 2 })

	x, _ := store.Article("x")
	if x.Status != domain.StatusError || x.ParsingProgress != 0 {
		t.Errorf("x = %s/%d, want error/0", x.Status, x.ParsingProgress)
	}
	y, _ := store.Article("y")
	waitFor(t, "y done", func() bool {
		y, _ = store.Article("y")
		return y.Status == domain.StatusDone
	})
	if y.ParsingProgress != 100 || len(y.Sentences) != 1 {
		t.Errorf("y = %s/%d with %d sentences, want done/100 with 1", y.Status, y.ParsingProgress, len(y.Sentences))
	}

	alerter.mu.Lock()
	defer alerter.mu.Unlock()
	if len(alerter.messages) != 1 || alerter.messages[0] != "boom" {
		t.Errorf("alerts = %v, want the failure detail", alerter.messages)
	}
}

func TestRunner_SkipsDeletedArticle(t *testing.T) {
	store := state.New()
	bus := NewBus()
	analyzer := &recordingAnalyzer{}
	r := NewRunner(store, analyzer, bus, nil)

	seedArticle(store, "kept")
	store.Enqueue("gone") // never added to the article list
	store.Enqueue("kept")
	r.Kick()

	waitFor(t, "drain", func() bool { return store.QueueLen() == 0 })

	calls := analyzer.calls()
	if len(calls) != 1 || calls[0] != "kept" {
		t.Errorf("analyzer calls = %v, want only the existing article", calls)
	}
}

func TestRunner_ProgressAppliesOnlyToMatchingArticle(t *testing.T) {
	store := state.New()
	bus := NewBus()
	analyzer := &recordingAnalyzer{
		bus: bus,
		publish: []ports.ProgressEvent{
			{ID: "job", Current: 1, Total: 2, Percent: 50},
			{ID: "other", Current: 9, Total: 10, Percent: 90},
		},
		result: []domain.Sentence{},
	}
	r := NewRunner(store, analyzer, bus, nil)
	emitter := &recordingEmitter{}
	r.SetEmitter(emitter)

	seedArticle(store, "job")
	seedArticle(store, "other")
	store.Enqueue("job")
	r.Kick()

	waitFor(t, "job done", func() bool {
		a, _ := store.Article("job")
		return a.Status == domain.StatusDone
	})

	other, _ := store.Article("other")
	if other.ParsingProgress != 0 {
		t.Errorf("unrelated article progress = %d, want 0 (untouched)", other.ParsingProgress)
	}
	job, _ := store.Article("job")
	if job.ParsingProgress != 100 {
		t.Errorf("job progress = %d, want 100", job.ParsingProgress)
	}
}

func TestRunner_KickOnEmptyQueueIsNoop(t *testing.T) {
	store := state.New()
	analyzer := &recordingAnalyzer{}
	r := NewRunner(store, analyzer, NewBus(), nil)

	r.Kick()
	r.Kick()

	time.Sleep(20 * time.Millisecond)
	if len(analyzer.calls()) != 0 {
		t.Errorf("analyzer called with an empty queue")
	}
}

func TestRunner_EnqueueDuringDrainIsPickedUp(t *testing.T) {
	store := state.New()
	bus := NewBus()
	analyzer := &recordingAnalyzer{}
	r := NewRunner(store, analyzer, bus, nil)

	seedArticle(store, "first")
	store.Enqueue("first")
	r.Kick()
	seedArticle(store, "second")
	store.Enqueue("second")
	r.Kick()

	waitFor(t, "both processed", func() bool { return len(analyzer.calls()) == 2 && store.QueueLen() == 0 })
}
