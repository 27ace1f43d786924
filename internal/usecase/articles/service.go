// Package articles holds the lifecycle entry points that admit work into the
// parsing queue.
package articles

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"malim/internal/domain"
	"malim/internal/ports"
	"malim/internal/state"
	"malim/internal/usecase/parsing"
)

// EventArticleDeleted tells the UI to deselect and navigate away from a
// removed article.
const EventArticleDeleted = "article.deleted"

// Validation errors surfaced inline to the user; no state is mutated when
// these are returned.
var (
	ErrEmptyContent  = errors.New("article text is empty")
	ErrMissingAPIKey = errors.New("API key is not configured")
)

type Service struct {
	store     *state.Store
	runner    *parsing.Runner
	artifacts ports.ArtifactStore
	log       *slog.Logger

	mu sync.Mutex
	em ports.EventEmitter
}

func New(store *state.Store, runner *parsing.Runner, artifacts ports.ArtifactStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, runner: runner, artifacts: artifacts, log: log}
}

func (s *Service) SetEmitter(em ports.EventEmitter) {
	s.mu.Lock()
	s.em = em
	s.mu.Unlock()
}

func (s *Service) validate(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if strings.TrimSpace(s.store.Settings().APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Create admits a new article: derives title and preview, inserts it at the
// front of the list with status parsing, enqueues it and kicks the runner.
func (s *Service) Create(content, language string) (*domain.Article, error) {
	if err := s.validate(content); err != nil {
		return nil, err
	}
	title, preview := deriveTitlePreview(content)
	art := domain.Article{
		ID:           uuid.NewString(),
		Title:        title,
		Preview:      preview,
		Status:       domain.StatusParsing,
		Sentences:    []domain.Sentence{},
		DraftContent: content,
		Language:     language,
	}
	s.store.InsertArticleFront(art)
	s.store.Enqueue(art.ID)
	s.runner.Kick()
	s.log.Info("article created", "article", art.ID, "title", title)
	return &art, nil
}

// Edit resubmits an existing article. The id and list position are kept, and
// the previously computed sentences stay on the record as the reuse hint the
// runner forwards to the analysis service.
func (s *Service) Edit(id, content, language string) (*domain.Article, error) {
	if err := s.validate(content); err != nil {
		return nil, err
	}
	art, ok := s.store.Article(id)
	if !ok {
		return nil, fmt.Errorf("article %s not found", id)
	}
	title, preview := deriveTitlePreview(content)
	art.Title = title
	art.Preview = preview
	art.Status = domain.StatusParsing
	art.ParsingProgress = 0
	art.DraftContent = content
	art.Language = language
	s.store.ReplaceArticle(art)
	s.store.Enqueue(art.ID)
	s.runner.Kick()
	s.log.Info("article resubmitted", "article", art.ID, "title", title)
	return &art, nil
}

// Delete removes the article from the list and cleans up its audio artifacts.
// Any queued id is left behind; the runner's existence check skips it.
func (s *Service) Delete(id string) bool {
	removed := s.store.RemoveArticle(id)
	if !removed {
		return false
	}
	s.emit(EventArticleDeleted, map[string]any{"id": id})
	go func() {
		if err := s.artifacts.DeleteArticleAudio(id); err != nil {
			s.log.Debug("audio cleanup failed", "article", id, "error", err)
		}
	}()
	s.log.Info("article deleted", "article", id)
	return true
}

func (s *Service) emit(name string, payload any) {
	s.mu.Lock()
	em := s.em
	s.mu.Unlock()
	if em != nil {
		em.Emit(name, payload)
	}
}
