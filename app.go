package main

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"malim/internal/usecase/articles"
	"malim/internal/usecase/parsing"
)

// App struct
type App struct {
	ctx    context.Context
	runner *parsing.Runner
	gate   *articles.Service
}

func NewApp() *App {
	return &App{}
}

// startup is called when the app starts. The context is saved so we can call
// the runtime methods; the runner and gate get their UI channels here.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	notifier := wailsNotifier{ctx: ctx}
	if a.runner != nil {
		a.runner.SetEmitter(notifier)
		a.runner.SetAlerter(notifier)
	}
	if a.gate != nil {
		a.gate.SetEmitter(notifier)
	}
}

// SetRunner allows main() to provide the queue runner before startup wires
// the event emitter.
func (a *App) SetRunner(r *parsing.Runner) {
	a.runner = r
}

func (a *App) SetGate(g *articles.Service) {
	a.gate = g
}

type wailsNotifier struct{ ctx context.Context }

func (w wailsNotifier) Emit(name string, payload any) {
	runtime.EventsEmit(w.ctx, name, payload)
}

// Alert shows a blocking error dialog.
func (w wailsNotifier) Alert(title, message string) {
	_, _ = runtime.MessageDialog(w.ctx, runtime.MessageDialogOptions{
		Type:    runtime.ErrorDialog,
		Title:   title,
		Message: message,
	})
}
