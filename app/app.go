package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/monster-detector-go/config"
	"github.com/soocke/monster-detector-go/debug"
	"github.com/soocke/monster-detector-go/domain/session"
	"github.com/soocke/monster-detector-go/ui/presenter"
	"github.com/soocke/monster-detector-go/ui/theme"
	"github.com/soocke/monster-detector-go/ui/view"
)

const tick = 100 * time.Millisecond

type app struct {
	c       *AppContainer
	loop    *presenter.Loop
	afterID string
	cancel  context.CancelFunc
	closed  bool
}

// NewApp builds the container and sizes the main window. The UI is built by Start.
func NewApp(title string, width, height int, cfg *config.Config, cfgPath string, logger *slog.Logger) (*app, error) {
	c, err := BuildContainer(cfg, cfgPath, logger)
	if err != nil {
		return nil, err
	}
	a := &app{c: c}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a, nil
}

// Start builds the widgets, starts the update loop and blocks until the window closes.
func (a *app) Start() {
	cfg := a.c.Config
	theme.SetDark(cfg.DarkMode)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	if cfg.Debug {
		debug.StartRuntimeLogger(ctx, 5*time.Second, a.c.Logger)
	}

	a.c.RootView.Build(view.Handlers{
		ToggleDetection: a.c.CapturePresenter.Toggle,
		SelectRegion:    a.c.Selection.OpenOrFocus,
		MoveCursor:      a.moveCursor,
		ResetStats:      a.resetStats,
		ReloadTemplate:  a.reloadTemplate,
		ToggleTheme:     a.toggleTheme,
		Exit:            a.exitHandler,
		ConfigApplied:   a.c.ApplyConfig,
	})

	a.loop = presenter.NewLoop(a.c.SessionPresenter, a.c.StatusPresenter, a.c.DetectionPresenter, a.scheduleUpdate)
	a.scheduleUpdate()
	App.Wait()
	a.shutdown()
}

func (a *app) scheduleUpdate() {
	if a.closed {
		return
	}
	// TclAfter keeps the loop on Tk's event thread.
	a.afterID = TclAfter(tick, func() { a.loop.Tick() })
}

func (a *app) moveCursor() {
	err := a.c.Tracker.MoveToLast()
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNoTarget):
		a.c.Logger.Info("no target to move to")
	default:
		a.c.Logger.Warn("cursor move failed", "error", err)
	}
}

func (a *app) resetStats() {
	a.c.Tracker.Reset()
	a.c.Detection.Clear()
	a.c.Logger.Info("session stats reset")
}

func (a *app) reloadTemplate() {
	a.c.DetectionPresenter.RequestReload()
	a.c.Logger.Info("template reload requested", "path", a.c.Config.TemplatePath)
}

func (a *app) toggleTheme() {
	a.c.Config.DarkMode = theme.ToggleDark()
	if err := a.c.Config.Save(a.c.ConfigPath); err != nil {
		a.c.Logger.Error("config save failed", "error", err)
	}
}

func (a *app) exitHandler() {
	// Ends a running session while the widgets still exist.
	a.c.CapturePresenter.Disable()
	a.closed = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	Destroy(App)
}

func (a *app) shutdown() {
	a.closed = true
	if a.cancel != nil {
		a.cancel()
	}
	a.c.Close()
	a.c.Logger.Info("detector closed")
}
