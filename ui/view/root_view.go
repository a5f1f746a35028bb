package view

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/monster-detector-go/config"
	"github.com/soocke/monster-detector-go/domain/session"
	"github.com/soocke/monster-detector-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are the user actions wired to the root view buttons.
type Handlers struct {
	ToggleDetection func()
	SelectRegion    func()
	MoveCursor      func()
	ResetStats      func()
	ReloadTemplate  func()
	ToggleTheme     func()
	Exit            func()
	// ConfigApplied runs after the config panel saved new values.
	ConfigApplied func(prev, next config.Config)
}

// RootView composes the top-level application layout and wires UI callbacks.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	Session     SessionStats
	ConfigPanel ConfigPanel
	CapturePrev CapturePreview

	StateLabel *TLabelWidget
}

// UI is the subset of view operations needed by presenters.
type UI interface {
	SetStateLabel(text string)
	ConfigEditable(enabled bool)
	PreviewReset()
	UpdateCapture(img image.Image)
	UpdateDetection(img image.Image)
	SetSession(session, total time.Duration)
	SetCounters(st session.Stats)
}

var _ UI = (*RootView)(nil)

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout and binds h to the controls.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	statsFrame := Frame()
	Grid(statsFrame, Row(0), Column(0), Columnspan(4), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	rv.Session = NewSessionStats(statsFrame, 0, 0)
	rv.StateLabel = TLabel(Txt("State: idle"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, In(statsFrame), Row(1), Column(0), Columnspan(5), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Rowspan(2), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	buttons := []struct {
		text  string
		style string
		fn    func()
	}{
		{"Start / Stop Detection", theme.StylePrimaryButton, h.ToggleDetection},
		{"Select Region", "", h.SelectRegion},
		{"Move Cursor to Target", "", h.MoveCursor},
		{"Reset Stats", "", h.ResetStats},
		{"Reload Template", "", h.ReloadTemplate},
		{"Toggle Dark Mode", "", h.ToggleTheme},
		{"Exit", theme.StyleDangerButton, h.Exit},
	}
	for i, b := range buttons {
		if b.fn == nil {
			continue
		}
		opts := []Opt{Txt(b.text), Command(b.fn)}
		if b.style != "" {
			opts = append(opts, Style(b.style))
		}
		Grid(TButton(opts...), In(btnFrame), Row(i), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}

	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger, h.ConfigApplied)
	endRow := rv.ConfigPanel.Build(2)
	rv.CapturePrev = NewCapturePreview(endRow)
}

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// ConfigEditable toggles config panel editability.
func (rv *RootView) ConfigEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
}

// PreviewReset clears the capture preview.
func (rv *RootView) PreviewReset() {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.Reset()
	}
}

func (rv *RootView) UpdateCapture(img image.Image) {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.UpdateCapture(img)
	}
}

func (rv *RootView) UpdateDetection(img image.Image) {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.UpdateDetection(img)
	}
}

// SetSession updates both session and total run durations.
func (rv *RootView) SetSession(session, total time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(session)
	rv.Session.SetTotal(total)
}

func (rv *RootView) SetCounters(st session.Stats) {
	if rv != nil && rv.Session != nil {
		rv.Session.SetCounters(st)
	}
}
