package detection

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"
)

// ErrNoFeatureMatch marks a legitimate feature-matching miss (too few keypoints or
// correspondences, no homography). Any other error from matchFeatures is a fault.
var ErrNoFeatureMatch = errors.New("no feature match")

const (
	ransacMaxIters   = 2000
	ransacConfidence = 0.995
	// minHomographyPoints is the smallest correspondence set findHomography accepts.
	minHomographyPoints = 4
)

func noMatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNoFeatureMatch, fmt.Sprintf(format, args...))
}

// newORB builds the detector used for both the template and scenes.
func newORB(features int) gocv.ORB {
	return gocv.NewORBWithParams(features, 1.2, 8, 31, 0, 2, gocv.ORBScoreTypeHarris, 31, 20)
}

// matchFeatures localizes the template inside an already processed scene using ORB
// keypoints, cross-checked Hamming matching and a RANSAC homography.
func matchFeatures(scene gocv.Mat, t *templateState, m MatchOptions) (Result, error) {
	if t == nil || len(t.keypoints) == 0 || t.descriptors.Empty() {
		return NotFound(), noMatch("template has no keypoints")
	}
	if scene.Empty() {
		return NotFound(), noMatch("empty scene")
	}

	orb := newORB(t.features)
	defer orb.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	sceneKP, sceneDesc := orb.DetectAndCompute(scene, mask)
	defer sceneDesc.Close()
	if sceneDesc.Empty() || len(sceneKP) < m.MinMatches {
		return NotFound(), noMatch("scene keypoints %d below %d", len(sceneKP), m.MinMatches)
	}

	bf := gocv.NewBFMatcherWithParams(gocv.NormHamming, true)
	defer bf.Close()
	matches := bf.Match(t.descriptors, sceneDesc)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if len(matches) < m.MinMatches || len(matches) < minHomographyPoints {
		return NotFound(), noMatch("correspondences %d below %d", len(matches), m.MinMatches)
	}

	src := make([]gocv.Point2f, 0, len(matches))
	dst := make([]gocv.Point2f, 0, len(matches))
	for _, dm := range matches {
		if dm.QueryIdx < 0 || dm.QueryIdx >= len(t.keypoints) || dm.TrainIdx < 0 || dm.TrainIdx >= len(sceneKP) {
			return NotFound(), fmt.Errorf("match index out of range query=%d train=%d", dm.QueryIdx, dm.TrainIdx)
		}
		q, s := t.keypoints[dm.QueryIdx], sceneKP[dm.TrainIdx]
		src = append(src, gocv.Point2f{X: float32(q.X), Y: float32(q.Y)})
		dst = append(dst, gocv.Point2f{X: float32(s.X), Y: float32(s.Y)})
	}

	h, inliers, err := estimateHomography(src, dst, m.ReprojThreshold)
	if err != nil {
		return NotFound(), err
	}

	w, ht := float64(t.size.X), float64(t.size.Y)
	corners := [4][2]float64{{0, 0}, {w, 0}, {w, ht}, {0, ht}}
	var quad [4][2]float64
	for i, c := range corners {
		x, y, ok := project(h, c[0], c[1])
		if !ok {
			return NotFound(), noMatch("degenerate homography")
		}
		quad[i] = [2]float64{x, y}
	}

	minX, maxX := quad[0][0], quad[0][0]
	minY, maxY := quad[0][1], quad[0][1]
	for _, p := range quad[1:] {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	x0, x1 := int(minX), int(maxX)
	y0, y1 := int(minY), int(maxY)
	bw, bh := x1-x0, y1-y0
	if bw <= 0 || bh <= 0 {
		return NotFound(), noMatch("collapsed region %dx%d", bw, bh)
	}

	pos := image.Pt(x0, y0)
	if m.CenterPosition {
		pos = image.Pt((x0+x1)/2, (y0+y1)/2)
	}
	return Result{
		Found:      true,
		Confidence: float64(inliers) / float64(len(matches)),
		Scale:      quadScale(quad, w, ht),
		Position:   pos,
		Size:       image.Pt(bw, bh),
		Method:     MethodORB,
	}, nil
}

// estimateHomography fits a template->scene perspective transform with RANSAC and
// returns it row-major along with the inlier count.
func estimateHomography(src, dst []gocv.Point2f, reproj float64) ([9]float64, int, error) {
	var h [9]float64
	srcMat, err := pointsMat(src)
	if err != nil {
		return h, 0, err
	}
	defer srcMat.Close()
	dstMat, err := pointsMat(dst)
	if err != nil {
		return h, 0, err
	}
	defer dstMat.Close()

	inlierMask := gocv.NewMat()
	defer inlierMask.Close()
	hm := gocv.FindHomography(srcMat, dstMat, gocv.HomographyMethodRANSAC, reproj, &inlierMask, ransacMaxIters, ransacConfidence)
	defer hm.Close()
	if hm.Empty() || hm.Rows() != 3 || hm.Cols() != 3 {
		return h, 0, noMatch("homography not found")
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			h[r*3+c] = hm.GetDoubleAt(r, c)
		}
	}
	inliers := 0
	if !inlierMask.Empty() {
		inliers = gocv.CountNonZero(inlierMask)
	}
	return h, inliers, nil
}

// pointsMat packs points into an Nx1 CV_32FC2 Mat.
func pointsMat(pts []gocv.Point2f) (gocv.Mat, error) {
	buf := make([]byte, 0, len(pts)*8)
	for _, p := range pts {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(p.X))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(p.Y))
	}
	mat, err := gocv.NewMatFromBytes(len(pts), 1, gocv.MatTypeCV32FC2, buf)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("points mat: %w", err)
	}
	return mat, nil
}

// project maps (x, y) through the row-major homography h.
func project(h [9]float64, x, y float64) (float64, float64, bool) {
	w := h[6]*x + h[7]*y + h[8]
	if math.Abs(w) < 1e-12 {
		return 0, 0, false
	}
	px := (h[0]*x + h[1]*y + h[2]) / w
	py := (h[3]*x + h[4]*y + h[5]) / w
	if math.IsNaN(px) || math.IsNaN(py) || math.IsInf(px, 0) || math.IsInf(py, 0) {
		return 0, 0, false
	}
	return px, py, true
}

// quadScale averages the width and height ratios of the projected quad measured along
// its edges. For an axis-aligned match this equals the bounding box ratio; unlike the
// bounding box it does not grow with in-plane rotation. Result.Size still reports the
// axis-aligned bounding box.
func quadScale(q [4][2]float64, w, h float64) float64 {
	top := math.Hypot(q[1][0]-q[0][0], q[1][1]-q[0][1])
	bottom := math.Hypot(q[2][0]-q[3][0], q[2][1]-q[3][1])
	left := math.Hypot(q[3][0]-q[0][0], q[3][1]-q[0][1])
	right := math.Hypot(q[2][0]-q[1][0], q[2][1]-q[1][1])
	sx := (top + bottom) / 2 / w
	sy := (left + right) / 2 / h
	return (sx + sy) / 2
}
