package app

import (
	"malim/internal/domain"
	"malim/internal/state"
)

type SettingsAPI struct {
	store *state.Store
}

func NewSettingsAPI(store *state.Store) *SettingsAPI { return &SettingsAPI{store: store} }

func (a *SettingsAPI) Get() domain.Settings {
	return a.store.Settings()
}

func (a *SettingsAPI) Update(s domain.Settings) domain.Settings {
	a.store.SetSettings(s)
	return a.store.Settings()
}
