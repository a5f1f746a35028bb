package images

import (
	"image"
	"image/color"
	"testing"
)

func TestExtractROI_Rects(t *testing.T) {
	cases := []struct {
		name         string
		frame        int
		cx, cy, size int
		want         image.Rectangle
	}{
		{"centred", 100, 50, 50, 40, image.Rect(30, 30, 70, 70)},
		{"near origin", 20, 2, 2, 10, image.Rect(0, 0, 10, 10)},
		{"larger than frame", 30, 5, 5, 50, image.Rect(0, 0, 30, 30)},
		{"zero size", 10, 0, 0, 0, image.Rect(0, 0, 1, 1)},
		{"near far edge", 100, 95, 95, 20, image.Rect(85, 85, 100, 100)},
		{"outside frame", 100, 150, 150, 10, image.Rect(99, 99, 100, 100)},
	}
	for _, c := range cases {
		frame := image.NewRGBA(image.Rect(0, 0, c.frame, c.frame))
		roi, rect, err := ExtractROI(frame, c.cx, c.cy, c.size)
		if err != nil || roi == nil {
			t.Fatalf("%s: err=%v", c.name, err)
		}
		if rect != c.want {
			t.Fatalf("%s: got %v want %v", c.name, rect, c.want)
		}
	}
}

func TestExtractROI_KeepsMatchedPixels(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 100, 100))
	red := color.RGBA{R: 255, A: 255}
	frame.SetRGBA(50, 50, red)
	roi, _, err := ExtractROI(frame, 50, 50, 16)
	if err != nil {
		t.Fatal(err)
	}
	if roi.RGBAAt(50, 50) != red {
		t.Fatalf("centre pixel lost: %v", roi.RGBAAt(50, 50))
	}
	if _, _, err := ExtractROI(nil, 0, 0, 10); err == nil {
		t.Fatalf("expected error for nil frame")
	}
}
