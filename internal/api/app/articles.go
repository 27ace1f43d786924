package app

import (
	"malim/internal/domain"
	"malim/internal/state"
	"malim/internal/usecase/articles"
)

type ArticlesAPI struct {
	svc   *articles.Service
	store *state.Store
}

func NewArticlesAPI(svc *articles.Service, store *state.Store) *ArticlesAPI {
	return &ArticlesAPI{svc: svc, store: store}
}

type SubmitArticleRequest struct {
	Content  string `json:"content"`
	Language string `json:"language"`
}

func (a *ArticlesAPI) List() []domain.Article {
	return a.store.Articles()
}

func (a *ArticlesAPI) Get(id string) (*domain.Article, error) {
	art, ok := a.store.Article(id)
	if !ok {
		return nil, nil
	}
	return &art, nil
}

func (a *ArticlesAPI) Create(req SubmitArticleRequest) (*domain.Article, error) {
	return a.svc.Create(req.Content, req.Language)
}

type EditArticleRequest struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

func (a *ArticlesAPI) Edit(req EditArticleRequest) (*domain.Article, error) {
	return a.svc.Edit(req.ID, req.Content, req.Language)
}

func (a *ArticlesAPI) Delete(id string) bool {
	return a.svc.Delete(id)
}
