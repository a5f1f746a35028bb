// Package session keeps per-run detection statistics and the last target position.
package session

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/soocke/monster-detector-go/domain/detection"
)

// ErrNoTarget is returned by MoveToLast before any successful detection.
var ErrNoTarget = errors.New("no detection to move to")

// MoveFunc moves the OS cursor to absolute screen coordinates.
type MoveFunc func(x, y int) error

// Stats is a snapshot of the tracker counters.
type Stats struct {
	Total     int
	Success   int
	Last      detection.Result
	Target    image.Point
	HasTarget bool
	Session   time.Duration
	Active    time.Duration
}

// SuccessRate returns the found percentage in [0, 100].
func (s Stats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Total) * 100
}

// Tracker accumulates detection outcomes. It is safe for concurrent use: the
// detection worker records while the UI reads.
type Tracker struct {
	mu       sync.Mutex
	move     MoveFunc
	offset   image.Point
	autoMove bool

	total     int
	success   int
	last      detection.Result
	target    image.Point
	hasTarget bool

	active       bool
	captureStart time.Time
	session      time.Duration
	accumulated  time.Duration
}

// NewTracker returns a tracker that actuates through move (which may be nil).
func NewTracker(move MoveFunc) *Tracker { return &Tracker{move: move} }

// Configure sets the target offset applied to detected positions and whether the
// cursor follows every successful detection.
func (t *Tracker) Configure(offset image.Point, autoMove bool) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.offset = offset
	t.autoMove = autoMove
	t.mu.Unlock()
}

// Record counts r. origin is the screen position of the scene's top-left pixel. The
// returned error comes from the auto-move actuation, if any.
func (t *Tracker) Record(r detection.Result, origin image.Point) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	t.total++
	t.last = r
	if !r.Found {
		t.mu.Unlock()
		return nil
	}
	t.success++
	t.target = origin.Add(r.Position).Add(t.offset)
	t.hasTarget = true
	target, auto, move := t.target, t.autoMove, t.move
	t.mu.Unlock()

	if auto && move != nil {
		return move(target.X, target.Y)
	}
	return nil
}

// MoveToLast moves the cursor to the last successful detection.
func (t *Tracker) MoveToLast() error {
	if t == nil {
		return ErrNoTarget
	}
	t.mu.Lock()
	target, ok, move := t.target, t.hasTarget, t.move
	t.mu.Unlock()
	if !ok {
		return ErrNoTarget
	}
	if move == nil {
		return errors.ErrUnsupported
	}
	return move(target.X, target.Y)
}

// Reset clears counters and the last target. Durations are kept.
func (t *Tracker) Reset() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.total, t.success = 0, 0
	t.last = detection.Result{}
	t.target, t.hasTarget = image.Point{}, false
	t.mu.Unlock()
}

// OnTick updates session durations from the capture state. Call periodically.
func (t *Tracker) OnTick(capturing bool, now time.Time) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if capturing {
		if !t.active {
			t.active = true
			t.captureStart = now
		}
		t.session = now.Sub(t.captureStart)
	} else if t.active {
		t.session = now.Sub(t.captureStart)
		t.accumulated += t.session
		t.active = false
	}
}

// Stats returns a snapshot. Active includes the ongoing session.
func (t *Tracker) Stats() Stats {
	if t == nil {
		return Stats{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	active := t.accumulated
	if t.active {
		active += t.session
	}
	return Stats{
		Total:     t.total,
		Success:   t.success,
		Last:      t.last,
		Target:    t.target,
		HasTarget: t.hasTarget,
		Session:   t.session,
		Active:    active,
	}
}
