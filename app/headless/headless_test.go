package headless

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/soocke/monster-detector-go/assets"
	"github.com/soocke/monster-detector-go/config"
	"github.com/soocke/monster-detector-go/domain/detection"
	"github.com/soocke/monster-detector-go/domain/history"
)

func writeScene(t *testing.T, dir string) string {
	t.Helper()
	tmpl, err := assets.DefaultTemplate()
	if err != nil {
		t.Fatal(err)
	}
	scene := imaging.New(320, 240, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	scene = imaging.Paste(scene, tmpl, image.Pt(100, 80))
	path := filepath.Join(dir, "scene.png")
	if err := imaging.Save(scene, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.TemplatePath = filepath.Join(dir, "missing.png")
	cfg.Scales = []float64{1.0}
	cfg.UseORB = false
	cfg.UseEnhancement = false
	cfg.HistoryDBPath = filepath.Join(dir, "history.db")
	return cfg
}

func TestRun_FindsBundledSprite(t *testing.T) {
	dir := t.TempDir()
	req := Request{
		Config:    testConfig(dir),
		ScenePath: writeScene(t, dir),
		OutPath:   filepath.Join(dir, "out.png"),
	}
	rep, err := Run(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	r := rep.Result
	if !r.Found || r.Method != detection.MethodTemplate {
		t.Fatalf("expected template match, got %+v", r)
	}
	if r.Position != image.Pt(124, 104) {
		t.Fatalf("expected centre (124,104) got %v", r.Position)
	}
	if _, err := os.Stat(req.OutPath); err != nil {
		t.Fatalf("annotated output missing: %v", err)
	}

	j, err := history.Open(req.Config.HistoryDBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	sum, err := j.Summary(context.Background(), rep.Session)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Total != 1 || sum.ByMethod[detection.MethodTemplate] != 1 {
		t.Fatalf("unexpected history summary %+v", sum)
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	if _, err := Run(context.Background(), Request{Config: cfg}, nil); err == nil {
		t.Fatalf("expected error without scene")
	}
	if _, err := Run(context.Background(), Request{Config: cfg, ScenePath: filepath.Join(dir, "nope.png")}, nil); err == nil {
		t.Fatalf("expected error for missing scene")
	}
	req := Request{Config: cfg, ScenePath: writeScene(t, dir), TemplatePath: filepath.Join(dir, "nope.png")}
	if _, err := Run(context.Background(), req, nil); err == nil {
		t.Fatalf("expected error for explicit missing template")
	}
}
