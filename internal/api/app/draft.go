package app

import (
	"malim/internal/domain"
	"malim/internal/state"
)

// DraftAPI exposes the transient edit buffer. It lives in the snapshot, so an
// unconfirmed edit survives a restart.
type DraftAPI struct {
	store *state.Store
}

func NewDraftAPI(store *state.Store) *DraftAPI { return &DraftAPI{store: store} }

func (a *DraftAPI) Get() domain.Draft {
	return a.store.Draft()
}

func (a *DraftAPI) Set(d domain.Draft) {
	a.store.SetDraft(d)
}

func (a *DraftAPI) Clear() {
	a.store.SetDraft(domain.Draft{})
}
