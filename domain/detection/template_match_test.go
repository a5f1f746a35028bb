package detection

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

func processedPair(t *testing.T, scene, tmpl image.Image, enhance bool) (gocv.Mat, gocv.Mat) {
	t.Helper()
	opts := DefaultOptions().Preprocess
	opts.Enhance = enhance
	prep := func(img image.Image) gocv.Mat {
		bgr, err := imageToBGR(img)
		if err != nil {
			t.Fatalf("convert: %v", err)
		}
		defer bgr.Close()
		out, err := Preprocess(bgr, opts)
		if err != nil {
			t.Fatalf("preprocess: %v", err)
		}
		return out
	}
	s, tm := prep(scene), prep(tmpl)
	t.Cleanup(func() { s.Close(); tm.Close() })
	return s, tm
}

func TestScaledTemplateSize_Boundaries(t *testing.T) {
	tmpl := image.Pt(64, 64)
	scene := image.Pt(200, 150)
	cases := []struct {
		scale float64
		ok    bool
		size  image.Point
	}{
		{0.1, false, image.Pt(6, 6)},
		{0.125, true, image.Pt(8, 8)},
		{1.0, true, image.Pt(64, 64)},
		{2.34375, true, image.Pt(150, 150)},
		{2.4, false, image.Pt(153, 153)},
		{0, false, image.Point{}},
		{-1, false, image.Point{}},
	}
	for _, c := range cases {
		sz, ok := scaledTemplateSize(tmpl, scene, c.scale)
		if ok != c.ok || sz != c.size {
			t.Fatalf("scale %v: got %v ok=%v want %v ok=%v", c.scale, sz, ok, c.size, c.ok)
		}
	}
}

func TestMatchTemplateScales_ExactCopy(t *testing.T) {
	scene := uniformScene(200, 150, 128)
	paste(scene, spriteTemplate(), image.Pt(50, 40))
	s, tm := processedPair(t, scene, spriteTemplate(), false)

	m := DefaultOptions().Match
	m.Scales = []float64{1.0}
	r, ok := MatchTemplateScales(s, tm, m, nil)
	if !ok || !r.Found {
		t.Fatalf("expected match")
	}
	if r.Scale != 1.0 || r.Confidence < m.Threshold || r.Method != MethodTemplate {
		t.Fatalf("unexpected result %+v", r)
	}
	if r.Position != image.Pt(82, 72) || r.Size != image.Pt(64, 64) {
		t.Fatalf("unexpected geometry %+v", r)
	}

	m.CenterPosition = false
	r, _ = MatchTemplateScales(s, tm, m, nil)
	if r.Position != image.Pt(50, 40) {
		t.Fatalf("top-left mode expected (50,40) got %v", r.Position)
	}
}

func TestMatchTemplateScales_SkipsInvalidScales(t *testing.T) {
	scene := uniformScene(200, 150, 128)
	paste(scene, spriteTemplate(), image.Pt(50, 40))
	s, tm := processedPair(t, scene, spriteTemplate(), false)

	m := DefaultOptions().Match
	m.Scales = []float64{0.1, 4.0}
	if r, ok := MatchTemplateScales(s, tm, m, nil); ok || r != NotFound() {
		t.Fatalf("invalid scales should yield no result, got %+v", r)
	}
	m.Scales = []float64{0.1, 1.0, 4.0}
	if r, ok := MatchTemplateScales(s, tm, m, nil); !ok || r.Scale != 1.0 {
		t.Fatalf("valid scale between invalid ones should match, got %+v", r)
	}
	m.Scales = nil
	if _, ok := MatchTemplateScales(s, tm, m, nil); ok {
		t.Fatalf("empty scale list should yield no result")
	}
}

func TestMatchTemplateScales_FirstScaleWinsTies(t *testing.T) {
	scene := uniformScene(200, 150, 128)
	paste(scene, spriteTemplate(), image.Pt(50, 40))
	s, tm := processedPair(t, scene, spriteTemplate(), false)

	m := DefaultOptions().Match
	// Both factors resize to 64x64 and therefore score identically.
	m.Scales = []float64{1.0, 1.0000001}
	r, ok := MatchTemplateScales(s, tm, m, nil)
	if !ok || r.Scale != 1.0 {
		t.Fatalf("expected first scale to win tie, got %+v", r)
	}
}

func TestMatchTemplateScales_SceneSmallerThanTemplate(t *testing.T) {
	s, tm := processedPair(t, uniformScene(40, 40, 128), spriteTemplate(), false)
	m := DefaultOptions().Match
	m.Scales = []float64{1.0, 1.5}
	if _, ok := MatchTemplateScales(s, tm, m, nil); ok {
		t.Fatalf("template larger than scene must not match")
	}
}

func TestPreprocess_GrayAndEnhanced(t *testing.T) {
	bgr, err := imageToBGR(uniformScene(32, 24, 90))
	if err != nil {
		t.Fatal(err)
	}
	defer bgr.Close()

	opts := DefaultOptions().Preprocess
	opts.Enhance = false
	plain, err := Preprocess(bgr, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer plain.Close()
	if plain.Channels() != 1 || plain.Cols() != 32 || plain.Rows() != 24 {
		t.Fatalf("unexpected plain output %dx%d c=%d", plain.Cols(), plain.Rows(), plain.Channels())
	}
	if v := plain.GetUCharAt(5, 5); v != 90 {
		t.Fatalf("expected gray 90 got %d", v)
	}

	opts.Enhance = true
	enh, err := Preprocess(bgr, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer enh.Close()
	if enh.Channels() != 1 || enh.Cols() != 32 || enh.Rows() != 24 {
		t.Fatalf("unexpected enhanced output %dx%d c=%d", enh.Cols(), enh.Rows(), enh.Channels())
	}

	empty := gocv.NewMat()
	defer empty.Close()
	if _, err := Preprocess(empty, opts); err == nil {
		t.Fatalf("expected error for empty input")
	}
}
