// Package state holds the in-memory source of truth for articles, draft,
// settings and the parsing queue, with change notification for persistence.
package state

import (
	"sync"

	"malim/internal/domain"
)

// Store owns all mutable application state. Mutation happens only through
// whole-value replacement; every mutation of the persisted trio (articles,
// draft, settings) notifies subscribers. The queue is transient and does not
// notify.
type Store struct {
	mu       sync.RWMutex
	articles []domain.Article
	draft    domain.Draft
	settings domain.Settings
	queue    []string
	subs     []func()
}

func New() *Store {
	return &Store{}
}

// Subscribe registers fn to run after every mutation of articles, draft or
// settings. Callbacks run outside the store lock.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notifyLocked() []func() {
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	return subs
}

func fire(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}

// Articles returns a copy of the article list.
func (s *Store) Articles() []domain.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Article, len(s.articles))
	copy(out, s.articles)
	return out
}

func (s *Store) SetArticles(articles []domain.Article) {
	s.mu.Lock()
	s.articles = make([]domain.Article, len(articles))
	copy(s.articles, articles)
	subs := s.notifyLocked()
	s.mu.Unlock()
	fire(subs)
}

// Article looks up one article by id.
func (s *Store) Article(id string) (domain.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.articles {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Article{}, false
}

// InsertArticleFront puts a at the head of the article list.
func (s *Store) InsertArticleFront(a domain.Article) {
	s.mu.Lock()
	s.articles = append([]domain.Article{a}, s.articles...)
	subs := s.notifyLocked()
	s.mu.Unlock()
	fire(subs)
}

// ReplaceArticle swaps the stored article with the same id, keeping its list
// position. Returns false when no such article exists.
func (s *Store) ReplaceArticle(a domain.Article) bool {
	s.mu.Lock()
	replaced := false
	for i := range s.articles {
		if s.articles[i].ID == a.ID {
			s.articles[i] = a
			replaced = true
			break
		}
	}
	var subs []func()
	if replaced {
		subs = s.notifyLocked()
	}
	s.mu.Unlock()
	fire(subs)
	return replaced
}

// RemoveArticle deletes the article with the given id, if present.
func (s *Store) RemoveArticle(id string) bool {
	s.mu.Lock()
	removed := false
	for i := range s.articles {
		if s.articles[i].ID == id {
			s.articles = append(s.articles[:i], s.articles[i+1:]...)
			removed = true
			break
		}
	}
	var subs []func()
	if removed {
		subs = s.notifyLocked()
	}
	s.mu.Unlock()
	fire(subs)
	return removed
}

// SetParsingProgress updates only ParsingProgress on the matching article.
// All other fields are untouched.
func (s *Store) SetParsingProgress(id string, percent int) bool {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	s.mu.Lock()
	updated := false
	for i := range s.articles {
		if s.articles[i].ID == id {
			s.articles[i].ParsingProgress = percent
			updated = true
			break
		}
	}
	var subs []func()
	if updated {
		subs = s.notifyLocked()
	}
	s.mu.Unlock()
	fire(subs)
	return updated
}

func (s *Store) Draft() domain.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

func (s *Store) SetDraft(d domain.Draft) {
	s.mu.Lock()
	s.draft = d
	subs := s.notifyLocked()
	s.mu.Unlock()
	fire(subs)
}

func (s *Store) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Store) SetSettings(st domain.Settings) {
	s.mu.Lock()
	s.settings = st
	subs := s.notifyLocked()
	s.mu.Unlock()
	fire(subs)
}

// Snapshot reads articles, draft and settings in one atomic step, so a flush
// never captures a mix of before/after states.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	articles := make([]domain.Article, len(s.articles))
	copy(articles, s.articles)
	draft := s.draft
	settings := s.settings
	return domain.Snapshot{Articles: articles, Draft: &draft, Settings: &settings}
}

// Enqueue appends an article id to the parsing queue.
func (s *Store) Enqueue(id string) {
	s.mu.Lock()
	s.queue = append(s.queue, id)
	s.mu.Unlock()
}

// PeekQueue returns the head id without removing it.
func (s *Store) PeekQueue() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.queue) == 0 {
		return "", false
	}
	return s.queue[0], true
}

// PopQueue removes and returns the head id.
func (s *Store) PopQueue() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return "", false
	}
	id := s.queue[0]
	s.queue = s.queue[1:]
	return id, true
}

// QueueLen reports the number of ids waiting in the queue.
func (s *Store) QueueLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.queue)
}
