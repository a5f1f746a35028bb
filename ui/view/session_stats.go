package view

import (
	"fmt"
	"time"

	"github.com/soocke/monster-detector-go/domain/session"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows run durations and detection counters.
type SessionStats interface {
	SetSession(d time.Duration)
	SetTotal(d time.Duration)
	SetCounters(st session.Stats)
}

type sessionStats struct {
	sessionLbl *LabelWidget
	totalLbl   *LabelWidget
	framesLbl  *LabelWidget
	rateLbl    *LabelWidget
	targetLbl  *LabelWidget
}

// NewSessionStats grids the stat labels inside parent at row, starting at startCol.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{
		sessionLbl: Label(Width(14)),
		totalLbl:   Label(Width(14)),
		framesLbl:  Label(Width(18)),
		rateLbl:    Label(Width(14)),
		targetLbl:  Label(Width(20)),
	}
	for i, l := range []*LabelWidget{s.sessionLbl, s.totalLbl, s.framesLbl, s.rateLbl, s.targetLbl} {
		if parent != nil {
			Grid(l, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		} else {
			Grid(l, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		}
	}
	s.SetSession(0)
	s.SetTotal(0)
	s.SetCounters(session.Stats{})
	return s
}

func formatClock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// SetSession updates the session duration display.
func (s *sessionStats) SetSession(d time.Duration) {
	if s == nil || s.sessionLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Session: " + formatClock(d)))
}

// SetTotal updates the total duration display.
func (s *sessionStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Total: " + formatClock(d)))
}

// SetCounters renders frame counts, success rate and the last target.
func (s *sessionStats) SetCounters(st session.Stats) {
	if s == nil || s.framesLbl == nil {
		return
	}
	s.framesLbl.Configure(Txt(fmt.Sprintf("Found: %d / %d", st.Success, st.Total)))
	s.rateLbl.Configure(Txt(fmt.Sprintf("Rate: %.1f%%", st.SuccessRate())))
	target := "Target: -"
	if st.HasTarget {
		target = fmt.Sprintf("Target: (%d, %d)", st.Target.X, st.Target.Y)
	}
	s.targetLbl.Configure(Txt(target))
}
