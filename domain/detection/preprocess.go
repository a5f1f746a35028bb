package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Preprocess converts src to a single-channel intensity image and, when enabled,
// applies a bilateral filter followed by CLAHE. The caller owns the returned Mat.
func Preprocess(src gocv.Mat, o PreprocessOptions) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), fmt.Errorf("preprocess: empty input")
	}
	gray := gocv.NewMat()
	switch src.Channels() {
	case 1:
		src.CopyTo(&gray)
	case 3:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("preprocess: unsupported channel count %d", src.Channels())
	}
	if !o.Enhance {
		return gray, nil
	}
	defer gray.Close()

	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.BilateralFilter(gray, &denoised, o.BilateralD, o.BilateralSigmaColor, o.BilateralSigmaSpace)

	tile := o.CLAHETileSize
	if tile <= 0 {
		tile = 8
	}
	clahe := gocv.NewCLAHEWithParams(o.CLAHEClipLimit, image.Pt(tile, tile))
	defer clahe.Close()
	enhanced := gocv.NewMat()
	clahe.Apply(denoised, &enhanced)
	return enhanced, nil
}

// imageToBGR converts a Go image into a 3-channel BGR Mat owned by the caller.
func imageToBGR(img image.Image) (gocv.Mat, error) {
	if img == nil {
		return gocv.NewMat(), fmt.Errorf("nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return gocv.NewMat(), fmt.Errorf("zero-sized image %dx%d", b.Dx(), b.Dy())
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("convert image: %w", err)
	}
	return mat, nil
}
