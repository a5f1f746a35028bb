package capture

import (
	"image"
	"time"
)

// GrabFunc captures sel in screen coordinates. An empty rectangle requests the
// full primary screen. The returned image's bounds are the screen area actually
// captured, which is sel clipped to the screen.
type GrabFunc func(sel image.Rectangle) (*image.RGBA, error)

// FrameSnapshot carries the latest captured frame and metadata. Origin is the
// screen position of the frame's top-left pixel.
type FrameSnapshot struct {
	Image      *image.RGBA
	Origin     image.Point
	CapturedAt time.Time
	Sequence   uint64
}

// FrameSource provides read-only access to captured frames.
type FrameSource interface {
	LatestFrame() FrameSnapshot
	Running() bool
}

// Stats summarises capture loop behaviour for instrumentation.
type Stats struct {
	Captures       uint64
	Skipped        uint64
	AvgCapture     time.Duration
	LastCapture    time.Time
	LatestFrameAge time.Duration
	Sequence       uint64
}
