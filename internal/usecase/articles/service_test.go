package articles

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"malim/internal/domain"
	"malim/internal/ports"
	"malim/internal/state"
	"malim/internal/usecase/parsing"
)

type stubAnalyzer struct {
	mu       sync.Mutex
	requests []ports.AnalyzeRequest
	result   []domain.Sentence
	err      error
	release  chan struct{} // when non-nil, Analyze blocks until closed
}

func (a *stubAnalyzer) Analyze(_ context.Context, req ports.AnalyzeRequest) ([]domain.Sentence, error) {
	a.mu.Lock()
	a.requests = append(a.requests, req)
	a.mu.Unlock()
	if a.release != nil {
		<-a.release
	}
	return a.result, a.err
}

func (a *stubAnalyzer) calls() []ports.AnalyzeRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ports.AnalyzeRequest, len(a.requests))
	copy(out, a.requests)
	return out
}

type stubArtifacts struct {
	mu      sync.Mutex
	deleted []string
}

func (s *stubArtifacts) DeleteArticleAudio(id string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, id)
	s.mu.Unlock()
	return nil
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

func newGate(analyzer *stubAnalyzer) (*Service, *state.Store, *stubArtifacts) {
	store := state.New()
	store.SetSettings(domain.Settings{APIKey: "key", APIURL: "http://example", ModelName: "m"})
	bus := parsing.NewBus()
	runner := parsing.NewRunner(store, analyzer, bus, nil)
	arts := &stubArtifacts{}
	return New(store, runner, arts, nil), store, arts
}

func TestCreate_Validation(t *testing.T) {
	analyzer := &stubAnalyzer{}
	svc, store, _ := newGate(analyzer)

	if _, err := svc.Create("   \n ", "RU"); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("empty content: err = %v, want ErrEmptyContent", err)
	}

	store.SetSettings(domain.Settings{})
	if _, err := svc.Create("Привет.", "RU"); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("missing key: err = %v, want ErrMissingAPIKey", err)
	}

	if len(store.Articles()) != 0 {
		t.Errorf("rejected create mutated the article list")
	}
	if store.QueueLen() != 0 {
		t.Errorf("rejected create touched the queue")
	}
	if len(analyzer.calls()) != 0 {
		t.Errorf("rejected create reached the analyzer")
	}
}

func TestCreate_InsertsFrontAndEnqueues(t *testing.T) {
	analyzer := &stubAnalyzer{release: make(chan struct{})}
	svc, store, _ := newGate(analyzer)

	first, err := svc.Create("First article. Body", "RU")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	waitFor(t, "first dispatch", func() bool { return len(analyzer.calls()) == 1 })

	second, err := svc.Create("Second article. Body", "RU")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list := store.Articles()
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("new article is not at the front of the list")
	}
	if list[0].Status != domain.StatusParsing || list[0].ParsingProgress != 0 {
		t.Errorf("new article status = %s/%d, want parsing/0", list[0].Status, list[0].ParsingProgress)
	}
	if first.Title != "First article." {
		t.Errorf("title = %q, want %q", first.Title, "First article.")
	}

	close(analyzer.release)
	waitFor(t, "both jobs", func() bool { return len(analyzer.calls()) == 2 })
}

func TestEdit_KeepsIDPositionAndForwardsOldSentences(t *testing.T) {
	analyzer := &stubAnalyzer{result: []domain.Sentence{{ID: "x_0", Original: "Done."}}}
	svc, store, _ := newGate(analyzer)

	a, err := svc.Create("Old text. Body", "RU")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := svc.Create("Another. Body", "RU")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	waitFor(t, "initial parses", func() bool {
		cur, _ := store.Article(a.ID)
		return cur.Status == domain.StatusDone && store.QueueLen() == 0
	})

	prev, _ := store.Article(a.ID)
	edited, err := svc.Edit(a.ID, "New text. Body", "RU")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.ID != a.ID {
		t.Errorf("edit changed the article id")
	}

	list := store.Articles()
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Errorf("edit moved the article in the list")
	}

	waitFor(t, "re-parse dispatch", func() bool {
		for _, req := range analyzer.calls() {
			if req.Text == "New text. Body" {
				return true
			}
		}
		return false
	})
	var req ports.AnalyzeRequest
	for _, r := range analyzer.calls() {
		if r.Text == "New text. Body" {
			req = r
		}
	}
	if len(req.OldSentences) != len(prev.Sentences) || len(req.OldSentences) == 0 {
		t.Errorf("edit did not forward prior sentences as the reuse hint")
	}
}

func TestEdit_MissingArticle(t *testing.T) {
	svc, _, _ := newGate(&stubAnalyzer{})
	if _, err := svc.Edit("nope", "Text.", "RU"); err == nil {
		t.Error("expected error for unknown article id")
	}
}

func TestDelete_RemovesAndCleansArtifacts(t *testing.T) {
	analyzer := &stubAnalyzer{}
	svc, store, arts := newGate(analyzer)

	a, err := svc.Create("Hello world. More", "RU")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !svc.Delete(a.ID) {
		t.Fatal("delete returned false")
	}
	if _, ok := store.Article(a.ID); ok {
		t.Error("article still present after delete")
	}
	waitFor(t, "artifact cleanup", func() bool {
		arts.mu.Lock()
		defer arts.mu.Unlock()
		return len(arts.deleted) == 1 && arts.deleted[0] == a.ID
	})
	if svc.Delete(a.ID) {
		t.Error("second delete reported success")
	}
}
