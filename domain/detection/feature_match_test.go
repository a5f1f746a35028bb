package detection

import (
	"errors"
	"image"
	"testing"
)

// orbScene places textureTemplate rotated by 15 degrees and scaled 1.4x on a gray
// background and returns the scene with the pasted patch's centre.
func orbScene() (*image.RGBA, image.Point) {
	patch := rotatedScaled(textureTemplate(), 15, 1.4)
	scene := uniformScene(640, 480, 128)
	at := image.Pt(200, 100)
	paste(scene, patch, at)
	size := patch.Bounds().Size()
	return scene, at.Add(image.Pt(size.X/2, size.Y/2))
}

func textureTemplate() *image.RGBA { return blockTexture(160, 160, 8, 7) }

func orbOptions() Options {
	o := DefaultOptions()
	o.Preprocess.Enhance = false
	o.Match.MinMatches = 10
	return o
}

func TestMatchFeatures_UniformSceneHasNoResult(t *testing.T) {
	opts := orbOptions()
	st, err := newTemplateState(textureTemplate(), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if len(st.keypoints) == 0 {
		t.Fatalf("texture template should yield keypoints")
	}

	s, _ := processedPair(t, uniformScene(320, 240, 128), textureTemplate(), false)
	r, err := matchFeatures(s, st, opts.Match)
	if !errors.Is(err, ErrNoFeatureMatch) {
		t.Fatalf("expected ErrNoFeatureMatch, got %v", err)
	}
	if r != NotFound() {
		t.Fatalf("expected canonical not-found, got %+v", r)
	}
}

func TestMatchFeatures_TemplateWithoutKeypoints(t *testing.T) {
	opts := orbOptions()
	st, err := newTemplateState(uniformScene(64, 64, 10), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	s, _ := processedPair(t, noiseScene(200, 200, 3), textureTemplate(), false)
	if _, err := matchFeatures(s, st, opts.Match); !errors.Is(err, ErrNoFeatureMatch) {
		t.Fatalf("expected ErrNoFeatureMatch for flat template, got %v", err)
	}
}

func TestEngine_ORBRotatedAndScaled(t *testing.T) {
	e, err := New(textureTemplate(), orbOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	scene, centre := orbScene()
	r := e.Detect(scene, false, true)
	if !r.Found || r.Method != MethodORB {
		t.Fatalf("expected ORB detection, got %+v", r)
	}
	if r.Scale < 1.2 || r.Scale > 1.6 {
		t.Fatalf("scale %.3f outside [1.2, 1.6]", r.Scale)
	}
	if r.Confidence <= 0 || r.Confidence > 1 {
		t.Fatalf("confidence %.3f outside (0, 1]", r.Confidence)
	}
	if abs(r.Position.X-centre.X) > 12 || abs(r.Position.Y-centre.Y) > 12 {
		t.Fatalf("position %v too far from %v", r.Position, centre)
	}
}
