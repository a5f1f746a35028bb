package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/soocke/monster-detector-go/domain/detection"
)

// ResultSource exposes the last processed detection.
type ResultSource interface {
	Result() (detection.Result, uint64)
}

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatusPresenter renders the detector state into a single label.
type StatusPresenter struct {
	capture CaptureEnabledModel
	results ResultSource
	view    StateView
	latest  string
}

func NewStatusPresenter(capture CaptureEnabledModel, results ResultSource, view StateView) *StatusPresenter {
	return &StatusPresenter{capture: capture, results: results, view: view}
}

// Tick pushes the label text to the view when it changed.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.capture == nil || p.results == nil || p.view == nil {
		return
	}
	text := p.label()
	if text == p.latest {
		return
	}
	p.latest = text
	p.view.SetStateLabel(text)
}

func (p *StatusPresenter) label() string {
	if !p.capture.Enabled() {
		return "State: idle"
	}
	r, seq := p.results.Result()
	if seq == 0 {
		return "State: starting"
	}
	if !r.Found {
		return "State: searching"
	}
	return fmt.Sprintf("State: %s %.1f%% at (%d, %d)",
		strings.ToUpper(string(r.Method)), r.Confidence*100, r.Position.X, r.Position.Y)
}
