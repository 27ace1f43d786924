package main

import (
	"context"
	"embed"
	"log"
	"path/filepath"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"malim/internal/adapters/llm/httpclient"
	"malim/internal/adapters/persist/jsonfile"
	dbsqlite "malim/internal/adapters/persist/sqlite"
	"malim/internal/adapters/tts"
	apiapp "malim/internal/api/app"
	"malim/internal/artifacts"
	"malim/internal/config"
	"malim/internal/logging"
	"malim/internal/ports"
	"malim/internal/state"
	articlesusecase "malim/internal/usecase/articles"
	"malim/internal/usecase/parsing"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Logging.Level)

	app := NewApp()

	// Snapshot persistence backend
	var snaps ports.SnapshotStore
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := dbsqlite.Init(filepath.Join(cfg.DataDir, "malim.db"))
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		snaps = dbsqlite.NewSnapshotRepo(db)
	default:
		snaps = jsonfile.New(cfg.DataDir)
	}

	store := state.New()
	syncer := state.NewSyncer(store, snaps, time.Duration(cfg.DebounceMS)*time.Millisecond, logger.With("component", "syncer"))
	syncer.Restore(context.Background())
	syncer.Watch()

	// Audio artifacts; the analyzer only pre-caches when a TTS service is
	// configured.
	speech := tts.New(cfg.TTS.URL)
	audio := artifacts.NewAudioCache(cfg.DataDir, speech, logger.With("component", "audio"))
	var analyzerAudio httpclient.AudioCache
	if cfg.TTS.URL != "" {
		analyzerAudio = audio
	}

	bus := parsing.NewBus()
	analyzer := httpclient.New(bus, analyzerAudio, logger.With("component", "analyzer"))
	runner := parsing.NewRunner(store, analyzer, bus, logger.With("component", "runner"))
	app.SetRunner(runner)

	gate := articlesusecase.New(store, runner, audio, logger.With("component", "articles"))
	app.SetGate(gate)

	articlesAPI := apiapp.NewArticlesAPI(gate, store)
	draftAPI := apiapp.NewDraftAPI(store)
	settingsAPI := apiapp.NewSettingsAPI(store)

	err = wails.Run(&options.App{
		Title:  "malim",
		Width:  1024,
		Height: 768,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnShutdown: func(ctx context.Context) {
			syncer.Flush()
		},
		Bind: []interface{}{
			app,
			articlesAPI,
			draftAPI,
			settingsAPI,
		},
	})

	if err != nil {
		log.Fatalf("run: %v", err)
	}
}
