package detection

import (
	"fmt"
	"image"
)

// Method names the matcher that produced a Result.
type Method string

const (
	MethodNone     Method = "none"
	MethodTemplate Method = "template"
	MethodORB      Method = "orb"
)

// Result describes a single detection. Position is either the matched region's
// centre or its top-left corner depending on MatchOptions.CenterPosition.
type Result struct {
	Found      bool
	Confidence float64
	Scale      float64
	Position   image.Point
	Size       image.Point // width, height in scene pixels
	Method     Method
}

// NotFound returns the canonical empty result.
func NotFound() Result {
	return Result{Method: MethodNone}
}

// Bounds returns the matched rectangle in scene coordinates.
func (r Result) Bounds(centered bool) image.Rectangle {
	if !r.Found {
		return image.Rectangle{}
	}
	tl := r.Position
	if centered {
		tl = r.Position.Sub(image.Pt(r.Size.X/2, r.Size.Y/2))
	}
	return image.Rectangle{Min: tl, Max: tl.Add(r.Size)}
}

func (r Result) String() string {
	if !r.Found {
		return "no monster detected"
	}
	return fmt.Sprintf("method=%s confidence=%.1f%% scale=%.2fx position=(%d, %d) size=%dx%d",
		r.Method, r.Confidence*100, r.Scale, r.Position.X, r.Position.Y, r.Size.X, r.Size.Y)
}

// Fuse returns the candidate with the strictly highest confidence. Earlier candidates
// win exact ties. An empty candidate set yields NotFound.
func Fuse(candidates ...Result) Result {
	best := NotFound()
	have := false
	for _, c := range candidates {
		if !c.Found {
			continue
		}
		if !have || c.Confidence > best.Confidence {
			best = c
			have = true
		}
	}
	return best
}
