package capture

import (
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	statsLogInterval = 5 * time.Second
	minInterval      = time.Millisecond
	retryDelay       = 50 * time.Millisecond
)

// Service acquires frames (selection or full screen) on a background loop and
// exposes the latest one alongside instrumentation data.
type Service interface {
	FrameSource
	Start()
	Stop()
	SetSelectionProvider(func() *image.Rectangle)
	SetInterval(time.Duration)
	Stats() Stats
}

type service struct {
	grab     GrabFunc
	logger   *slog.Logger
	interval atomic.Int64

	mu    sync.Mutex
	selFn func() *image.Rectangle
	stop  chan struct{}
	done  chan struct{}

	running      atomic.Bool
	latest       atomic.Pointer[FrameSnapshot]
	captures     atomic.Uint64
	skipped      atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
}

// NewService builds a capture service. A nil grab uses the platform grabber
// without fallback.
func NewService(logger *slog.Logger, grab GrabFunc, interval time.Duration) Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if grab == nil {
		grab = PlatformGrabber(false, logger)
	}
	s := &service{grab: grab, logger: logger}
	s.SetInterval(interval)
	return s
}

func (s *service) SetSelectionProvider(fn func() *image.Rectangle) {
	s.mu.Lock()
	s.selFn = fn
	s.mu.Unlock()
}

// SetInterval sets the pause between captures; it takes effect on the next frame.
func (s *service) SetInterval(d time.Duration) {
	if d < minInterval {
		d = minInterval
	}
	s.interval.Store(int64(d))
}

func (s *service) LatestFrame() FrameSnapshot {
	snap := s.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

func (s *service) Running() bool { return s.running.Load() }

func (s *service) Stats() Stats {
	captures := s.captures.Load()
	var avg time.Duration
	if captures > 0 {
		avg = time.Duration(s.captureNanos.Load() / captures)
	}
	snap := s.LatestFrame()
	var age time.Duration
	if !snap.CapturedAt.IsZero() {
		age = time.Since(snap.CapturedAt)
	}
	return Stats{
		Captures:       captures,
		Skipped:        s.skipped.Load(),
		AvgCapture:     avg,
		LastCapture:    snap.CapturedAt,
		LatestFrameAge: age,
		Sequence:       snap.Sequence,
	}
}

func (s *service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running.Store(true)
	go s.loop(s.stop, s.done)
}

// Stop halts the loop and waits for the in-flight capture to finish.
func (s *service) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	s.running.Store(false)
}

func (s *service) selection() image.Rectangle {
	s.mu.Lock()
	fn := s.selFn
	s.mu.Unlock()
	if fn == nil {
		return image.Rectangle{}
	}
	if r := fn(); r != nil && !r.Empty() {
		return *r
	}
	return image.Rectangle{}
}

func (s *service) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("capture loop panic", "panic", r)
		}
	}()
	logTicker := time.NewTicker(statsLogInterval)
	defer logTicker.Stop()
	for {
		wait := time.Duration(s.interval.Load())
		if !s.captureOnce() {
			wait = retryDelay
		}
		select {
		case <-stop:
			return
		case <-logTicker.C:
			s.logStats()
		case <-time.After(wait):
		}
	}
}

// captureOnce grabs a single frame and publishes it. It reports false when the
// grab failed and the frame was skipped.
func (s *service) captureOnce() bool {
	sel := s.selection()
	start := time.Now()
	img, err := s.grab(sel)
	if err != nil || img == nil {
		s.skipped.Add(1)
		if err != nil {
			s.logger.Error("capture grab", "selection", sel, "error", err)
		}
		return false
	}
	s.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
	s.captures.Add(1)
	seq := s.sequence.Add(1)
	s.latest.Store(&FrameSnapshot{Image: normalizeOrigin(img), Origin: img.Rect.Min, CapturedAt: time.Now(), Sequence: seq})
	return true
}

func (s *service) logStats() {
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"skipped", stats.Skipped,
		"avg_capture", stats.AvgCapture,
		"age", stats.LatestFrameAge,
	)
}
