package images

import (
	"errors"
	"image"
	"image/draw"
)

// ExtractROI crops a square of side size centred at (cx, cy), used for the matched
// sprite thumbnail. The rectangle is clamped to the frame and is at least 1x1.
// It returns the crop and its rectangle relative to the frame.
func ExtractROI(frame *image.RGBA, cx, cy, size int) (*image.RGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	if size < 1 {
		size = 1
	}
	b := frame.Bounds()
	x0 := clamp(cx-size/2, b.Min.X, b.Max.X-1)
	y0 := clamp(cy-size/2, b.Min.Y, b.Max.Y-1)
	w := max(1, min(size, b.Max.X-x0))
	h := max(1, min(size, b.Max.Y-y0))
	roi := image.Rect(x0, y0, x0+w, y0+h)
	sub := frame.SubImage(roi)
	if rgba, ok := sub.(*image.RGBA); ok {
		return rgba, roi, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, roi.Dx(), roi.Dy()))
	draw.Draw(out, out.Bounds(), sub, roi.Min, draw.Src)
	return out, roi, nil
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
