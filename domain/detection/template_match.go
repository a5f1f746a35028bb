package detection

import (
	"image"
	"log/slog"
	"math"

	"gocv.io/x/gocv"
)

// belowThresholdLogFloor is the score above which rejected peaks are logged.
const belowThresholdLogFloor = 0.5

// correlationModes are evaluated per scale; the higher peak wins.
var correlationModes = []gocv.TemplateMatchMode{gocv.TmCcoeffNormed, gocv.TmCcorrNormed}

// scaledTemplateSize returns the resized template dimensions for scale s and whether
// they are admissible for a scene of the given size.
func scaledTemplateSize(tmpl, scene image.Point, s float64) (image.Point, bool) {
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return image.Point{}, false
	}
	sz := image.Pt(int(float64(tmpl.X)*s), int(float64(tmpl.Y)*s))
	if sz.X < minTemplateSide || sz.Y < minTemplateSide {
		return sz, false
	}
	if sz.X > scene.X || sz.Y > scene.Y {
		return sz, false
	}
	return sz, true
}

// MatchTemplateScales sweeps m.Scales in list order, resizing the processed template with
// cubic interpolation and scoring it against the processed scene. It returns the globally
// best peak that reaches m.Threshold; the first scale to reach a given score keeps it.
func MatchTemplateScales(scene, tmpl gocv.Mat, m MatchOptions, logger *slog.Logger) (Result, bool) {
	if scene.Empty() || tmpl.Empty() {
		return NotFound(), false
	}
	sceneSize := image.Pt(scene.Cols(), scene.Rows())
	tmplSize := image.Pt(tmpl.Cols(), tmpl.Rows())

	best := NotFound()
	found := false
	bestScore := 0.0
	for _, s := range m.Scales {
		sz, ok := scaledTemplateSize(tmplSize, sceneSize, s)
		if !ok {
			continue
		}
		score, loc := peakAtScale(scene, tmpl, sz)
		if score <= bestScore {
			continue
		}
		if score < m.Threshold {
			if logger != nil && score > belowThresholdLogFloor {
				logger.Debug("detect.template.below_threshold", "score", score, "threshold", m.Threshold, "scale", s)
			}
			continue
		}
		bestScore = score
		pos := loc
		if m.CenterPosition {
			pos = loc.Add(image.Pt(sz.X/2, sz.Y/2))
		}
		best = Result{
			Found:      true,
			Confidence: score,
			Scale:      s,
			Position:   pos,
			Size:       sz,
			Method:     MethodTemplate,
		}
		found = true
	}
	return best, found
}

// peakAtScale resizes tmpl to sz and returns the best normalized correlation peak
// across correlationModes along with its top-left location.
func peakAtScale(scene, tmpl gocv.Mat, sz image.Point) (float64, image.Point) {
	resized := gocv.NewMat()
	defer resized.Close()
	if sz.X == tmpl.Cols() && sz.Y == tmpl.Rows() {
		tmpl.CopyTo(&resized)
	} else {
		gocv.Resize(tmpl, &resized, sz, 0, 0, gocv.InterpolationCubic)
	}

	mask := gocv.NewMat()
	defer mask.Close()
	res := gocv.NewMat()
	defer res.Close()

	bestVal := 0.0
	var bestLoc image.Point
	for _, mode := range correlationModes {
		gocv.MatchTemplate(scene, resized, &res, mode, mask)
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(res)
		v := clampScore(float64(maxVal))
		if v > bestVal {
			bestVal = v
			bestLoc = maxLoc
		}
	}
	return bestVal, bestLoc
}

// clampScore maps float32 rounding overshoot and NaN peaks into [0,1].
func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
