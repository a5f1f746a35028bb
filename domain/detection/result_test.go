package detection

import (
	"image"
	"testing"

	"github.com/soocke/monster-detector-go/config"
)

func TestFuse(t *testing.T) {
	a := Result{Found: true, Confidence: 0.7, Method: MethodTemplate}
	b := Result{Found: true, Confidence: 0.9, Method: MethodORB}
	tie := Result{Found: true, Confidence: 0.7, Method: MethodORB}

	if got := Fuse(); got != NotFound() {
		t.Fatalf("empty: %+v", got)
	}
	if got := Fuse(a, b); got != b {
		t.Fatalf("max: %+v", got)
	}
	if got := Fuse(a, tie); got != a {
		t.Fatalf("tie should keep first: %+v", got)
	}
	if got := Fuse(NotFound(), a); got != a {
		t.Fatalf("not-found candidates must be ignored: %+v", got)
	}
}

func TestResultBounds(t *testing.T) {
	r := Result{Found: true, Position: image.Pt(100, 50), Size: image.Pt(40, 20)}
	if got := r.Bounds(true); got != image.Rect(80, 40, 120, 60) {
		t.Fatalf("centered bounds %v", got)
	}
	if got := r.Bounds(false); got != image.Rect(100, 50, 140, 70) {
		t.Fatalf("top-left bounds %v", got)
	}
	if got := NotFound().Bounds(true); !got.Empty() {
		t.Fatalf("not-found bounds %v", got)
	}
	if NotFound().String() != "no monster detected" {
		t.Fatalf("unexpected string %q", NotFound().String())
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.UseEnhancement = false
	cfg.TemplateThreshold = 0.8
	cfg.DebugDir = "dumps"
	o := OptionsFromConfig(cfg)
	if o.Preprocess.Enhance || o.Match.Threshold != 0.8 {
		t.Fatalf("config not mapped: %+v", o)
	}
	if o.DebugDir != "" {
		t.Fatalf("debug dir set without SaveDebugImages")
	}
	cfg.SaveDebugImages = true
	if o := OptionsFromConfig(cfg); o.DebugDir != "dumps" {
		t.Fatalf("expected debug dir, got %q", o.DebugDir)
	}

	cfg.HighConfidenceColor = "bogus"
	if o := OptionsFromConfig(cfg); o.Palette != DefaultPalette() {
		t.Fatalf("invalid colours should fall back to defaults")
	}

	cfg.Scales[0] = 9
	if o.Match.Scales[0] == 9 {
		t.Fatalf("scales must be copied")
	}
}
