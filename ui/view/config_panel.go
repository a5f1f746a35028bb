package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/monster-detector-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the configuration form widgets and apply logic.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
type ConfigPanel interface {
	Build(startRow int) (endRow int)
	SetEditable(enabled bool)
	ApplyChanges()
}

type configPanel struct {
	cfg       *config.Config
	cfgPath   string
	logger    *slog.Logger
	onApplied func(prev, next config.Config)
	applyBtn  *ButtonWidget
	widgets   map[string]*TextWidget
}

type field struct {
	id, label string
	get       func(c *config.Config) string
	set       func(c *config.Config, s string) bool
}

func floatField(id, label, format string, p func(*config.Config) *float64) field {
	return field{id, label,
		func(c *config.Config) string { return fmt.Sprintf(format, *p(c)) },
		func(c *config.Config, s string) bool {
			f, ok := parseFloatField(s)
			if ok {
				*p(c) = f
			}
			return ok
		}}
}

func intField(id, label string, p func(*config.Config) *int) field {
	return field{id, label,
		func(c *config.Config) string { return strconv.Itoa(*p(c)) },
		func(c *config.Config, s string) bool {
			i, ok := parseIntField(s)
			if ok {
				*p(c) = i
			}
			return ok
		}}
}

func boolField(id, label string, p func(*config.Config) *bool) field {
	return field{id, label + " (true/false)",
		func(c *config.Config) string { return strconv.FormatBool(*p(c)) },
		func(c *config.Config, s string) bool {
			b, ok := parseBoolLoose(s)
			if ok {
				*p(c) = b
			}
			return ok
		}}
}

var configFields = []field{
	{"scales", "Scales (comma separated)",
		func(c *config.Config) string { return c.FormatScales() },
		func(c *config.Config, s string) bool {
			v, ok := config.ParseScales(s)
			if ok {
				c.Scales = v
			}
			return ok
		}},
	floatField("threshold", "Template Threshold", "%.3f", func(c *config.Config) *float64 { return &c.TemplateThreshold }),
	intField("orbMinMatches", "ORB Min Matches", func(c *config.Config) *int { return &c.ORBMinMatches }),
	intField("orbFeatures", "ORB Features", func(c *config.Config) *int { return &c.ORBFeatures }),
	floatField("ransac", "RANSAC Reproj Threshold", "%.2f", func(c *config.Config) *float64 { return &c.RansacReprojThreshold }),
	boolField("enhance", "Enhance (bilateral + CLAHE)", func(c *config.Config) *bool { return &c.UseEnhancement }),
	intField("bilateralD", "Bilateral Diameter", func(c *config.Config) *int { return &c.BilateralD }),
	floatField("claheClip", "CLAHE Clip Limit", "%.2f", func(c *config.Config) *float64 { return &c.CLAHEClipLimit }),
	boolField("useTemplate", "Use Template Matching", func(c *config.Config) *bool { return &c.UseTemplate }),
	boolField("useORB", "Use ORB Matching", func(c *config.Config) *bool { return &c.UseORB }),
	boolField("center", "Report Centre Position", func(c *config.Config) *bool { return &c.UseCenterPosition }),
	intField("offsetX", "Cursor Offset X", func(c *config.Config) *int { return &c.PositionOffsetX }),
	intField("offsetY", "Cursor Offset Y", func(c *config.Config) *int { return &c.PositionOffsetY }),
	boolField("autoMove", "Auto Move Cursor", func(c *config.Config) *bool { return &c.AutoMoveCursor }),
	intField("fps", "Detection FPS", func(c *config.Config) *int { return &c.DetectionFPS }),
	boolField("debugImages", "Save Debug Images", func(c *config.Config) *bool { return &c.SaveDebugImages }),
}

// NewConfigPanel creates the view bound to cfg. onApplied, if set, runs after a
// successful save with the previous and new values.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger, onApplied func(prev, next config.Config)) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, onApplied: onApplied, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) Build(startRow int) (row int) {
	row = startRow
	for _, f := range configFields {
		lbl := Label(Txt(f.label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(24))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", f.get(v.cfg))
		v.widgets[f.id] = w
		row++
	}
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *configPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
}

// ApplyChanges parses every field into a copy of the config, validates, saves and
// refreshes the widgets with the normalised values. Unparseable fields keep their
// previous value.
func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	prev := *v.cfg
	next := prev
	next.Scales = append([]float64(nil), prev.Scales...)
	for _, f := range configFields {
		if w := v.widgets[f.id]; w != nil {
			if !f.set(&next, v.text(w)) && v.logger != nil {
				v.logger.Warn("config field ignored", "field", f.id)
			}
		}
	}
	if err := next.Validate(); err != nil {
		if v.logger != nil {
			v.logger.Error("config invalid", "error", err)
		}
		return
	}
	*v.cfg = next
	for _, f := range configFields {
		if w := v.widgets[f.id]; w != nil {
			w.Delete("1.0", END)
			w.Insert("1.0", f.get(v.cfg))
		}
	}
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
	if v.onApplied != nil {
		v.onApplied(prev, next)
	}
}

func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
