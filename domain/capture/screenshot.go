package capture

import (
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

// screenshotGrab captures via the portable screenshot package, clipping sel to the
// primary screen.
func screenshotGrab(sel image.Rectangle) (*image.RGBA, error) {
	screen, err := screenshot.ScreenRect()
	if err != nil {
		return nil, fmt.Errorf("capture: screen bounds: %w", err)
	}
	r := screen
	if !sel.Empty() {
		r = sel.Intersect(screen)
		if r.Empty() {
			return nil, fmt.Errorf("capture: selection out of bounds sel=%v screen=%v", sel, screen)
		}
	}
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return placeAt(img, r.Min), nil
}

// placeAt rebases img so its bounds start at at.
func placeAt(img *image.RGBA, at image.Point) *image.RGBA {
	if img == nil {
		return nil
	}
	out := *img
	out.Rect = image.Rectangle{Min: at, Max: at.Add(img.Rect.Size())}
	return &out
}

// normalizeOrigin rebases img so its bounds start at (0,0).
func normalizeOrigin(img *image.RGBA) *image.RGBA {
	if img == nil || img.Rect.Min == (image.Point{}) {
		return img
	}
	out := *img
	out.Rect = image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy())
	return &out
}
