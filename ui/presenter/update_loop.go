package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick/ProcessFrame on the sub-presenters and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Session  *SessionPresenter
	Status   *StatusPresenter
	Detect   *DetectionPresenter
	Schedule func()
}

func NewLoop(sess *SessionPresenter, status *StatusPresenter, detect *DetectionPresenter, schedule func()) *Loop {
	return &Loop{Session: sess, Status: status, Detect: detect, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	// Results first so status and counters reflect the newest frame.
	if l.Detect != nil {
		l.Detect.ProcessFrame()
	}
	if l.Status != nil {
		l.Status.Tick(now)
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
