package view

import (
	"image"

	"github.com/soocke/monster-detector-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CapturePreview shows the annotated frame and a crop around the last match.
type CapturePreview interface {
	UpdateCapture(img image.Image)
	UpdateDetection(img image.Image)
	Reset()
}

type capturePreview struct {
	captureLabel   *LabelWidget
	detectionLabel *LabelWidget
	// Previous photos are deleted on replacement so Tk does not keep stale pixel data.
	capturePhoto   *Img
	detectionPhoto *Img
}

const (
	maxPreviewW = 480
	maxPreviewH = 270
	thumbSide   = 128
)

var placeholderPNG = images.EncodePNG(image.NewRGBA(image.Rect(0, 0, 200, 120)))

// NewCapturePreview grids the preview labels at row. The annotated frame spans
// columns 0-3 and the match crop sits in column 4.
func NewCapturePreview(row int) CapturePreview {
	capPhoto := NewPhoto(Data(placeholderPNG))
	detPhoto := NewPhoto(Data(placeholderPNG))
	capture := Label(Image(capPhoto), Borderwidth(1), Relief("sunken"))
	detection := Label(Image(detPhoto), Borderwidth(1), Relief("sunken"))
	Grid(capture, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	Grid(detection, Row(row), Column(4), Sticky("n"), Padx("0.4m"), Pady("0.4m"))
	return &capturePreview{captureLabel: capture, detectionLabel: detection, capturePhoto: capPhoto, detectionPhoto: detPhoto}
}

func replacePhoto(label *LabelWidget, prev **Img, png []byte) {
	if *prev != nil {
		(*prev).Delete()
	}
	*prev = NewPhoto(Data(png))
	label.Configure(Image(*prev))
}

func (v *capturePreview) UpdateCapture(img image.Image) {
	if v.captureLabel == nil || img == nil {
		return
	}
	replacePhoto(v.captureLabel, &v.capturePhoto, images.EncodePNG(images.ScaleToFit(img, maxPreviewW, maxPreviewH)))
}

func (v *capturePreview) UpdateDetection(img image.Image) {
	if v.detectionLabel == nil || img == nil {
		return
	}
	replacePhoto(v.detectionLabel, &v.detectionPhoto, images.EncodePNG(images.ScaleToFit(img, thumbSide, thumbSide)))
}

func (v *capturePreview) Reset() {
	if v.captureLabel != nil {
		replacePhoto(v.captureLabel, &v.capturePhoto, placeholderPNG)
	}
	if v.detectionLabel != nil {
		replacePhoto(v.detectionLabel, &v.detectionPhoto, placeholderPNG)
	}
}
