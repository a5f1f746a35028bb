package detection

import (
	"github.com/soocke/monster-detector-go/config"
)

// minTemplateSide is the smallest resized template edge submitted to correlation.
const minTemplateSide = 8

// PreprocessOptions configures the grayscale/enhancement pipeline. The same values
// must be applied to the template and to every scene; changing them requires Reload.
type PreprocessOptions struct {
	Enhance             bool
	BilateralD          int
	BilateralSigmaColor float64
	BilateralSigmaSpace float64
	CLAHEClipLimit      float64
	CLAHETileSize       int
}

// MatchOptions are the per-call tunables accepted by DetectWith.
type MatchOptions struct {
	UseTemplate     bool
	UseORB          bool
	Scales          []float64
	Threshold       float64
	MinMatches      int
	ReprojThreshold float64
	CenterPosition  bool
}

// Options is the explicit engine configuration. Preprocess and ORBFeatures shape the
// cached template state; Match provides the defaults used by Detect.
type Options struct {
	Preprocess  PreprocessOptions
	ORBFeatures int
	Match       MatchOptions
	Palette     Palette
	// DebugDir receives processed template/scene dumps when non-empty.
	DebugDir string
}

// DefaultOptions returns the stock detection configuration.
func DefaultOptions() Options {
	return Options{
		Preprocess: PreprocessOptions{
			Enhance:             true,
			BilateralD:          9,
			BilateralSigmaColor: 75,
			BilateralSigmaSpace: 75,
			CLAHEClipLimit:      1.5,
			CLAHETileSize:       8,
		},
		ORBFeatures: 500,
		Match: MatchOptions{
			UseTemplate:     true,
			UseORB:          true,
			Scales:          append([]float64(nil), config.DefaultScales...),
			Threshold:       0.65,
			MinMatches:      10,
			ReprojThreshold: 5.0,
			CenterPosition:  true,
		},
		Palette: DefaultPalette(),
	}
}

// OptionsFromConfig maps the persisted application config onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	pal, err := ParsePalette(cfg.HighConfidenceColor, cfg.LowConfidenceColor, cfg.MarkerColor)
	if err != nil {
		pal = DefaultPalette()
	}
	o := Options{
		Preprocess: PreprocessOptions{
			Enhance:             cfg.UseEnhancement,
			BilateralD:          cfg.BilateralD,
			BilateralSigmaColor: cfg.BilateralSigmaColor,
			BilateralSigmaSpace: cfg.BilateralSigmaSpace,
			CLAHEClipLimit:      cfg.CLAHEClipLimit,
			CLAHETileSize:       cfg.CLAHETileSize,
		},
		ORBFeatures: cfg.ORBFeatures,
		Match: MatchOptions{
			UseTemplate:     cfg.UseTemplate,
			UseORB:          cfg.UseORB,
			Scales:          append([]float64(nil), cfg.Scales...),
			Threshold:       cfg.TemplateThreshold,
			MinMatches:      cfg.ORBMinMatches,
			ReprojThreshold: cfg.RansacReprojThreshold,
			CenterPosition:  cfg.UseCenterPosition,
		},
		Palette: pal,
	}
	if cfg.SaveDebugImages {
		o.DebugDir = cfg.DebugDir
	}
	return o.normalized()
}

// normalized replaces unusable zero values with defaults. Scales are left as given:
// an empty list is a legitimate "no template search".
func (o Options) normalized() Options {
	d := DefaultOptions()
	p := &o.Preprocess
	if p.BilateralD <= 0 {
		p.BilateralD = d.Preprocess.BilateralD
	}
	if p.BilateralSigmaColor <= 0 {
		p.BilateralSigmaColor = d.Preprocess.BilateralSigmaColor
	}
	if p.BilateralSigmaSpace <= 0 {
		p.BilateralSigmaSpace = d.Preprocess.BilateralSigmaSpace
	}
	if p.CLAHEClipLimit <= 0 {
		p.CLAHEClipLimit = d.Preprocess.CLAHEClipLimit
	}
	if p.CLAHETileSize <= 0 {
		p.CLAHETileSize = d.Preprocess.CLAHETileSize
	}
	if o.ORBFeatures <= 0 {
		o.ORBFeatures = d.ORBFeatures
	}
	o.Match = o.Match.normalized()
	if o.Palette == (Palette{}) {
		o.Palette = d.Palette
	}
	return o
}

func (m MatchOptions) normalized() MatchOptions {
	if m.Threshold <= 0 || m.Threshold > 1 {
		m.Threshold = 0.65
	}
	if m.MinMatches <= 0 {
		m.MinMatches = 10
	}
	if m.ReprojThreshold <= 0 {
		m.ReprojThreshold = 5.0
	}
	return m
}
