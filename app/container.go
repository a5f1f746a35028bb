package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/monster-detector-go/assets"
	"github.com/soocke/monster-detector-go/config"
	"github.com/soocke/monster-detector-go/domain/action"
	"github.com/soocke/monster-detector-go/domain/capture"
	"github.com/soocke/monster-detector-go/domain/detection"
	"github.com/soocke/monster-detector-go/domain/history"
	"github.com/soocke/monster-detector-go/domain/session"
	"github.com/soocke/monster-detector-go/ui/model"
	"github.com/soocke/monster-detector-go/ui/presenter"
	"github.com/soocke/monster-detector-go/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger

	Capture    *model.CaptureModel
	Detection  *model.DetectionModel
	Engine     *detection.Engine
	Journal    *history.Journal
	Tracker    *session.Tracker
	CaptureSvc capture.Service
	Selection  view.SelectionOverlay
	RootView   *view.RootView

	SessionPresenter   *presenter.SessionPresenter
	StatusPresenter    *presenter.StatusPresenter
	DetectionPresenter *presenter.DetectionPresenter
	CapturePresenter   *presenter.CapturePresenter
}

// BuildContainer constructs every component except the Tk widgets, which are built
// by RootView.Build once the window exists.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger}

	tmpl, err := c.loadTemplate()
	if err != nil {
		return nil, err
	}
	c.Engine, err = detection.New(tmpl, detection.OptionsFromConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("detection engine: %w", err)
	}
	c.Journal, err = history.Open(cfg.HistoryDBPath)
	if err != nil {
		c.Engine.Close()
		return nil, fmt.Errorf("history journal: %w", err)
	}

	c.Capture = &model.CaptureModel{}
	c.Detection = model.NewDetectionModel()
	c.Tracker = session.NewTracker(action.MoveCursor)
	c.configureTracker()

	c.Selection = view.NewSelectionOverlay(cfg, cfgPath, logger)
	c.CaptureSvc = capture.NewService(logger, capture.PlatformGrabber(cfg.CaptureFallback, logger), captureInterval(cfg))
	c.CaptureSvc.SetSelectionProvider(c.Selection.ActiveRect)

	c.RootView = view.NewRootView(cfg, cfgPath, logger)

	c.SessionPresenter = presenter.NewSessionPresenter(c.Tracker, c.Capture, c.RootView)
	c.StatusPresenter = presenter.NewStatusPresenter(c.Capture, c.Detection, c.RootView)
	dp := presenter.NewDetectionPresenter(c.Capture.Enabled, c.CaptureSvc, c.Engine, c.loadTemplate, c.RootView, cfg, logger)
	dp.Session = c.Capture.SessionID
	dp.Tracker = c.Tracker
	dp.Model = c.Detection
	if c.Journal != nil {
		dp.History = c.Journal
	}
	c.DetectionPresenter = dp
	c.CapturePresenter = presenter.NewCapturePresenter(c.Capture, c.CaptureSvc, captureHooks{c}, c.RootView)
	return c, nil
}

// loadTemplate reads the configured template, falling back to the bundled sprite
// when the file is missing or unreadable.
func (c *AppContainer) loadTemplate() (image.Image, error) {
	img, err := detection.LoadTemplate(c.Config.TemplatePath)
	if err == nil {
		return img, nil
	}
	c.Logger.Warn("template file unavailable, using bundled sprite", "path", c.Config.TemplatePath, "error", err)
	return assets.DefaultTemplate()
}

func (c *AppContainer) configureTracker() {
	c.Tracker.Configure(image.Pt(c.Config.PositionOffsetX, c.Config.PositionOffsetY), c.Config.AutoMoveCursor)
}

// ApplyConfig pushes saved config changes into running components. Detection
// options are read per frame and the worker reloads the template itself when
// preprocessing changed, so only the tracker and capture rate need updates.
func (c *AppContainer) ApplyConfig(prev, next config.Config) {
	c.configureTracker()
	c.CaptureSvc.SetInterval(captureInterval(c.Config))
	c.Logger.Info("config applied",
		"enhance_changed", prev.UseEnhancement != next.UseEnhancement,
		"fps", next.DetectionFPS,
		"use_template", next.UseTemplate,
		"use_orb", next.UseORB,
		"enhance", next.UseEnhancement,
	)
}

// Close releases the capture loop, the worker, the engine and the journal. It does
// not touch widgets, so it is safe after the window is destroyed.
func (c *AppContainer) Close() {
	c.CaptureSvc.Stop()
	c.DetectionPresenter.Close()
	c.Engine.Close()
	if err := c.Journal.Close(); err != nil {
		c.Logger.Error("history close failed", "error", err)
	}
}

func captureInterval(cfg *config.Config) time.Duration {
	fps := cfg.DetectionFPS
	if fps <= 0 {
		fps = 10
	}
	return time.Second / time.Duration(fps)
}

// captureHooks logs run boundaries and the persisted per-run summary.
type captureHooks struct{ c *AppContainer }

func (h captureHooks) OnCaptureStarted(id string) {
	h.c.Logger.Info("detection started", "session", id, "selection", h.c.Selection.ActiveRect())
}

func (h captureHooks) OnCaptureStopped(id string) {
	cs := h.c.CaptureSvc.Stats()
	st := h.c.Tracker.Stats()
	h.c.Logger.Info("detection stopped",
		"session", id,
		"captures", cs.Captures,
		"skipped", cs.Skipped,
		"avg_capture", cs.AvgCapture,
		"detections", st.Total,
		"found", st.Success,
	)
	if h.c.Journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sum, err := h.c.Journal.Summary(ctx, id)
	if err != nil {
		h.c.Logger.Warn("history summary failed", "session", id, "error", err)
		return
	}
	h.c.Logger.Info("history summary",
		"session", id,
		"stored", sum.Total,
		"by_method", sum.ByMethod,
		"mean_confidence", sum.MeanConfidence,
	)
}
