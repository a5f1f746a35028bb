package detection

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	// Additional template formats beyond imaging's png/jpeg/gif/bmp/tiff.
	_ "golang.org/x/image/webp"
)

// ErrTemplateLoad is returned when a template cannot be found, decoded or is empty.
var ErrTemplateLoad = errors.New("template load failed")

// LoadTemplate reads a template image from disk. Transparent pixels are composited
// onto white.
func LoadTemplate(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTemplateLoad, path, err)
	}
	return prepareTemplate(img)
}

// DecodeTemplate decodes a template from r. Transparent pixels are composited onto white.
func DecodeTemplate(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplateLoad, err)
	}
	return prepareTemplate(img)
}

func prepareTemplate(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrTemplateLoad)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: zero-sized image %dx%d", ErrTemplateLoad, b.Dx(), b.Dy())
	}
	return flattenOnWhite(img), nil
}

// flattenOnWhite composites img over an opaque white background. Opaque images are
// returned unchanged.
func flattenOnWhite(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// templateState is the per-engine precomputed template: the colour source, its
// processed single-channel form and ORB keypoints/descriptors extracted once.
type templateState struct {
	raw         gocv.Mat
	processed   gocv.Mat
	keypoints   []gocv.KeyPoint
	descriptors gocv.Mat
	size        image.Point
	features    int
	preprocess  PreprocessOptions
}

func newTemplateState(img image.Image, o Options) (*templateState, error) {
	flat, err := prepareTemplate(img)
	if err != nil {
		return nil, err
	}
	raw, err := imageToBGR(flat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplateLoad, err)
	}
	processed, err := Preprocess(raw, o.Preprocess)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("%w: %w", ErrTemplateLoad, err)
	}

	orb := newORB(o.ORBFeatures)
	defer orb.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	kp, desc := orb.DetectAndCompute(processed, mask)
	if desc.Empty() || desc.Rows() != len(kp) {
		// Keep the counts consistent; the feature matcher treats this as "no keypoints".
		desc.Close()
		desc = gocv.NewMat()
		kp = nil
	}
	return &templateState{
		raw:         raw,
		processed:   processed,
		keypoints:   kp,
		descriptors: desc,
		size:        image.Pt(processed.Cols(), processed.Rows()),
		features:    o.ORBFeatures,
		preprocess:  o.Preprocess,
	}, nil
}

func (t *templateState) Close() {
	if t == nil {
		return
	}
	t.raw.Close()
	t.processed.Close()
	t.descriptors.Close()
}
