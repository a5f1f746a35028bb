package presenter

import (
	"time"

	"github.com/soocke/monster-detector-go/domain/session"
)

// CaptureEnabledModel reports whether capture is enabled.
type CaptureEnabledModel interface{ Enabled() bool }

// SessionTracker is the statistics surface read by the presenter.
type SessionTracker interface {
	OnTick(capturing bool, now time.Time)
	Stats() session.Stats
}

// SessionView displays durations and detection counters.
type SessionView interface {
	SetSession(session, total time.Duration)
	SetCounters(st session.Stats)
}

// SessionPresenter pushes tracker durations and counters to the view.
type SessionPresenter struct {
	tracker SessionTracker
	cap     CaptureEnabledModel
	view    SessionView
	last    session.Stats
	pushed  bool
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(tracker SessionTracker, cap CaptureEnabledModel, view SessionView) *SessionPresenter {
	return &SessionPresenter{tracker: tracker, cap: cap, view: view}
}

// Tick advances the tracker clock and updates the view. Counters are only
// re-rendered when they changed.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.tracker == nil || p.cap == nil || p.view == nil {
		return
	}
	p.tracker.OnTick(p.cap.Enabled(), now)
	st := p.tracker.Stats()
	p.view.SetSession(st.Session, st.Active)
	if p.pushed && countersEqual(st, p.last) {
		return
	}
	p.last, p.pushed = st, true
	p.view.SetCounters(st)
}

func countersEqual(a, b session.Stats) bool {
	return a.Total == b.Total && a.Success == b.Success && a.Target == b.Target && a.HasTarget == b.HasTarget
}
