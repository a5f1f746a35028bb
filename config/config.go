package config

import (
	"encoding/json"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultScales lists the template scale factors searched by default.
var DefaultScales = []float64{0.0625, 0.125, 0.25, 0.5, 0.75, 1.0, 1.25, 1.5}

// Overlay colour defaults (hex).
const (
	DefaultHighConfidenceColor = "#00ff00"
	DefaultLowConfidenceColor  = "#ffff00"
	DefaultMarkerColor         = "#ff0000"
)

// Config holds runtime configuration for detection and app behavior.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug    bool `json:"debug"`
	DarkMode bool `json:"dark_mode"`

	TemplatePath string `json:"template_path"`

	// Template matching
	Scales            []float64 `json:"scales"`
	TemplateThreshold float64   `json:"template_threshold"`

	// Feature matching
	ORBMinMatches         int     `json:"orb_min_matches"`
	ORBFeatures           int     `json:"orb_features"`
	RansacReprojThreshold float64 `json:"ransac_reproj_threshold"`

	// Preprocessing. Changing any of these requires a template reload.
	UseEnhancement      bool    `json:"use_preprocessing_enhancement"`
	BilateralD          int     `json:"bilateral_d"`
	BilateralSigmaColor float64 `json:"bilateral_sigma_color"`
	BilateralSigmaSpace float64 `json:"bilateral_sigma_space"`
	CLAHEClipLimit      float64 `json:"clahe_clip_limit"`
	CLAHETileSize       int     `json:"clahe_tile_size"`

	UseTemplate       bool `json:"use_template"`
	UseORB            bool `json:"use_orb"`
	UseCenterPosition bool `json:"use_center_position"`

	// Cursor calibration applied to absolute positions.
	PositionOffsetX int  `json:"position_offset_x"`
	PositionOffsetY int  `json:"position_offset_y"`
	AutoMoveCursor  bool `json:"auto_move_cursor"`

	DetectionFPS         int  `json:"detection_fps"`
	DetectionLogInterval int  `json:"detection_log_interval"`
	CaptureFallback      bool `json:"capture_fallback"`

	HighConfidenceColor string `json:"high_confidence_color"`
	LowConfidenceColor  string `json:"low_confidence_color"`
	MarkerColor         string `json:"marker_color"`

	HistoryDBPath   string `json:"history_db_path"`
	SaveDebugImages bool   `json:"save_debug_images"`
	DebugDir        string `json:"debug_dir"`

	// Selection rectangle persistence
	SelectionX int `json:"selection_x"`
	SelectionY int `json:"selection_y"`
	SelectionW int `json:"selection_w"`
	SelectionH int `json:"selection_h"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		TemplatePath:          "monster.png",
		Scales:                append([]float64(nil), DefaultScales...),
		TemplateThreshold:     0.65,
		ORBMinMatches:         10,
		ORBFeatures:           500,
		RansacReprojThreshold: 5.0,
		UseEnhancement:        true,
		BilateralD:            9,
		BilateralSigmaColor:   75,
		BilateralSigmaSpace:   75,
		CLAHEClipLimit:        1.5,
		CLAHETileSize:         8,
		UseTemplate:           true,
		UseORB:                true,
		UseCenterPosition:     true,
		DetectionFPS:          10,
		DetectionLogInterval:  30,
		CaptureFallback:       true,
		HighConfidenceColor:   DefaultHighConfidenceColor,
		LowConfidenceColor:    DefaultLowConfidenceColor,
		MarkerColor:           DefaultMarkerColor,
		DebugDir:              "debug",
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	scales := c.Scales[:0:0]
	for _, s := range c.Scales {
		if s > 0 && !math.IsInf(s, 0) && !math.IsNaN(s) {
			scales = append(scales, s)
		}
	}
	if len(scales) == 0 {
		scales = append(scales, DefaultScales...)
	}
	c.Scales = scales
	if c.TemplateThreshold <= 0 || c.TemplateThreshold > 1 {
		c.TemplateThreshold = 0.65
	}
	// A homography needs at least four correspondences.
	if c.ORBMinMatches < 4 {
		c.ORBMinMatches = 4
	}
	if c.ORBFeatures <= 0 {
		c.ORBFeatures = 500
	}
	if c.RansacReprojThreshold <= 0 {
		c.RansacReprojThreshold = 5.0
	}
	if c.BilateralD <= 0 {
		c.BilateralD = 9
	}
	if c.BilateralSigmaColor <= 0 {
		c.BilateralSigmaColor = 75
	}
	if c.BilateralSigmaSpace <= 0 {
		c.BilateralSigmaSpace = 75
	}
	if c.CLAHEClipLimit <= 0 {
		c.CLAHEClipLimit = 1.5
	}
	if c.CLAHETileSize <= 0 {
		c.CLAHETileSize = 8
	}
	c.PositionOffsetX = clampInt(c.PositionOffsetX, -100, 100)
	c.PositionOffsetY = clampInt(c.PositionOffsetY, -100, 100)
	if c.DetectionFPS <= 0 {
		c.DetectionFPS = 10
	}
	if c.DetectionFPS > 60 {
		c.DetectionFPS = 60
	}
	if c.DetectionLogInterval <= 0 {
		c.DetectionLogInterval = 30
	}
	c.HighConfidenceColor = normalizeHex(c.HighConfidenceColor, DefaultHighConfidenceColor)
	c.LowConfidenceColor = normalizeHex(c.LowConfidenceColor, DefaultLowConfidenceColor)
	c.MarkerColor = normalizeHex(c.MarkerColor, DefaultMarkerColor)
	if strings.TrimSpace(c.DebugDir) == "" {
		c.DebugDir = "debug"
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionW, c.SelectionH = 0, 0
	}
	return nil
}

// FormatScales renders the scale list as a comma separated string.
func (c *Config) FormatScales() string {
	parts := make([]string, 0, len(c.Scales))
	for _, s := range c.Scales {
		parts = append(parts, strconv.FormatFloat(s, 'g', -1, 64))
	}
	return strings.Join(parts, ", ")
}

// ParseScales parses a comma or space separated list of positive scale factors.
func ParseScales(s string) ([]float64, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || v <= 0 {
			return nil, false
		}
		out = append(out, v)
	}
	return out, len(out) > 0
}

func normalizeHex(s, fallback string) string {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return c.Hex()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
