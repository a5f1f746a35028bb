package model

import (
	"image"
	"testing"

	"github.com/soocke/monster-detector-go/domain/detection"
)

func TestCaptureModel_SessionLifecycle(t *testing.T) {
	var m CaptureModel
	if m.Enabled() || m.SessionID() != "" {
		t.Fatalf("zero value should be disabled")
	}
	m.SetEnabled(true, "run-1")
	if !m.Enabled() || m.SessionID() != "run-1" {
		t.Fatalf("enable failed")
	}
	m.SetEnabled(false, "ignored")
	if m.Enabled() || m.SessionID() != "run-1" {
		t.Fatalf("disable should keep last session, got %q", m.SessionID())
	}

	var nilModel *CaptureModel
	nilModel.SetEnabled(true, "x")
	if nilModel.Enabled() {
		t.Fatalf("nil model enabled")
	}
}

func TestDetectionModel_TargetRect(t *testing.T) {
	m := NewDetectionModel()
	if !m.TargetRect().Empty() {
		t.Fatalf("empty model should have no target")
	}
	r := detection.Result{Found: true, Confidence: 0.9, Position: image.Pt(50, 40), Size: image.Pt(20, 10), Method: detection.MethodTemplate}
	m.SetResult(r, image.Pt(100, 200), true, 7)
	if got := m.TargetRect(); got != image.Rect(140, 235, 160, 245) {
		t.Fatalf("centered target %v", got)
	}
	m.SetResult(r, image.Pt(100, 200), false, 8)
	if got := m.TargetRect(); got != image.Rect(150, 240, 170, 250) {
		t.Fatalf("top-left target %v", got)
	}
	if _, seq := m.Result(); seq != 8 {
		t.Fatalf("sequence %d", seq)
	}
	m.Clear()
	if res, _ := m.Result(); res.Found {
		t.Fatalf("clear failed")
	}
}
