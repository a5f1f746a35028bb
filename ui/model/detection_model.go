package model

import (
	"image"

	"github.com/soocke/monster-detector-go/domain/detection"
)

// DetectionModel holds the most recent detection outcome. Updates occur on the UI
// thread tick, so no synchronization is needed. The zero value is usable.
type DetectionModel struct {
	result   detection.Result
	origin   image.Point
	centered bool
	sequence uint64
}

func NewDetectionModel() *DetectionModel { return &DetectionModel{} }

// SetResult stores r as detected in a frame whose top-left pixel sits at origin.
func (m *DetectionModel) SetResult(r detection.Result, origin image.Point, centered bool, seq uint64) {
	if m == nil {
		return
	}
	m.result, m.origin, m.centered, m.sequence = r, origin, centered, seq
}

// Result returns the last stored result and its frame sequence.
func (m *DetectionModel) Result() (detection.Result, uint64) {
	if m == nil {
		return detection.NotFound(), 0
	}
	if !m.result.Found {
		return detection.NotFound(), m.sequence
	}
	return m.result, m.sequence
}

// TargetRect returns the matched rectangle in screen coordinates, or an empty
// rectangle when the last frame had no detection.
func (m *DetectionModel) TargetRect() image.Rectangle {
	if m == nil || !m.result.Found {
		return image.Rectangle{}
	}
	return m.result.Bounds(m.centered).Add(m.origin)
}

// Clear forgets the last result.
func (m *DetectionModel) Clear() {
	if m == nil {
		return
	}
	*m = DetectionModel{}
}
