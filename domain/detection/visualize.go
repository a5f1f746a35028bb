package detection

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"
)

// highConfidence is the score above which boxes use Palette.High.
const highConfidence = 0.8

const markerArm = 5

// Palette holds overlay colours.
type Palette struct {
	High   color.RGBA
	Low    color.RGBA
	Marker color.RGBA
}

// DefaultPalette is green / yellow boxes with a red marker.
func DefaultPalette() Palette {
	return Palette{
		High:   color.RGBA{R: 0, G: 255, B: 0, A: 255},
		Low:    color.RGBA{R: 255, G: 255, B: 0, A: 255},
		Marker: color.RGBA{R: 255, G: 0, B: 0, A: 255},
	}
}

// ParsePalette builds a Palette from hex colour strings such as "#00ff00".
func ParsePalette(high, low, marker string) (Palette, error) {
	var p Palette
	for _, f := range []struct {
		dst *color.RGBA
		hex string
	}{{&p.High, high}, {&p.Low, low}, {&p.Marker, marker}} {
		c, err := colorful.Hex(strings.TrimSpace(f.hex))
		if err != nil {
			return DefaultPalette(), fmt.Errorf("parse colour %q: %w", f.hex, err)
		}
		r, g, b := c.RGB255()
		*f.dst = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return p, nil
}

// Annotate returns a copy of scene with the detection drawn on it: the matched box
// coloured by confidence, a cross and dot at the reported position, a method/confidence
// label and the position coordinates. Not-found results return an unannotated copy.
func Annotate(scene image.Image, r Result, centered bool, p Palette) (image.Image, error) {
	mat, err := imageToBGR(scene)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	defer mat.Close()

	if r.Found {
		box := r.Bounds(centered)
		boxColor := p.Low
		if r.Confidence > highConfidence {
			boxColor = p.High
		}
		gocv.Rectangle(&mat, box, boxColor, 2)

		pt := r.Position
		gocv.Line(&mat, image.Pt(pt.X-markerArm, pt.Y), image.Pt(pt.X+markerArm, pt.Y), p.Marker, 2)
		gocv.Line(&mat, image.Pt(pt.X, pt.Y-markerArm), image.Pt(pt.X, pt.Y+markerArm), p.Marker, 2)
		gocv.Circle(&mat, pt, 3, p.Marker, -1)

		label := fmt.Sprintf("%s %.1f%%", strings.ToUpper(string(r.Method)), r.Confidence*100)
		gocv.PutText(&mat, label, image.Pt(box.Min.X, box.Min.Y-10), gocv.FontHersheySimplex, 0.5, boxColor, 2)
		coords := fmt.Sprintf("(%d, %d)", pt.X, pt.Y)
		gocv.PutText(&mat, coords, image.Pt(pt.X+5, pt.Y-5), gocv.FontHersheySimplex, 0.4, p.Marker, 1)
	}

	out, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	return out, nil
}
