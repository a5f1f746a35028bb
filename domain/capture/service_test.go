package capture

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"
)

type fakeGrabber struct {
	mu    sync.Mutex
	calls []image.Rectangle
	fail  bool
}

func (f *fakeGrabber) grab(sel image.Rectangle) (*image.RGBA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sel)
	if f.fail {
		return nil, errors.New("boom")
	}
	r := image.Rect(0, 0, 32, 24)
	if !sel.Empty() {
		r = sel.Intersect(image.Rect(0, 0, 1920, 1080))
	}
	return image.NewRGBA(r), nil
}

func (f *fakeGrabber) lastCall() (image.Rectangle, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return image.Rectangle{}, 0
	}
	return f.calls[len(f.calls)-1], len(f.calls)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestService_CapturesSelection(t *testing.T) {
	fg := &fakeGrabber{}
	s := NewService(nil, fg.grab, time.Millisecond)
	sel := image.Rect(10, 20, 50, 60)
	s.SetSelectionProvider(func() *image.Rectangle { return &sel })

	s.Start()
	defer s.Stop()
	waitFor(t, func() bool { return s.LatestFrame().Sequence >= 2 })

	snap := s.LatestFrame()
	if snap.Image.Bounds().Size() != sel.Size() || snap.Origin != sel.Min {
		t.Fatalf("unexpected snapshot %v origin %v", snap.Image.Bounds(), snap.Origin)
	}
	if got, _ := fg.lastCall(); got != sel {
		t.Fatalf("grabber got %v want %v", got, sel)
	}
	if st := s.Stats(); st.Captures == 0 || st.Skipped != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestService_OriginFollowsClippedSelection(t *testing.T) {
	fg := &fakeGrabber{}
	s := NewService(nil, fg.grab, time.Millisecond)
	sel := image.Rect(-30, -10, 50, 60)
	s.SetSelectionProvider(func() *image.Rectangle { return &sel })
	s.Start()
	waitFor(t, func() bool { return s.LatestFrame().Sequence >= 1 })
	s.Stop()

	snap := s.LatestFrame()
	if snap.Origin != image.Pt(0, 0) {
		t.Fatalf("origin should be the clipped corner, got %v", snap.Origin)
	}
	if snap.Image.Bounds() != image.Rect(0, 0, 50, 60) {
		t.Fatalf("unexpected bounds %v", snap.Image.Bounds())
	}
}

func TestService_FullScreenWithoutSelection(t *testing.T) {
	fg := &fakeGrabber{}
	s := NewService(nil, fg.grab, time.Millisecond)
	s.SetSelectionProvider(func() *image.Rectangle { return nil })
	s.Start()
	waitFor(t, func() bool { return s.LatestFrame().Sequence >= 1 })
	s.Stop()

	if got, _ := fg.lastCall(); !got.Empty() {
		t.Fatalf("expected full screen request, got %v", got)
	}
	if snap := s.LatestFrame(); snap.Origin != (image.Point{}) {
		t.Fatalf("full screen origin %v", snap.Origin)
	}
}

func TestService_FailuresAreSkipped(t *testing.T) {
	fg := &fakeGrabber{fail: true}
	s := NewService(nil, fg.grab, time.Millisecond)
	s.Start()
	waitFor(t, func() bool { return s.Stats().Skipped >= 2 })
	s.Stop()
	if s.LatestFrame().Image != nil {
		t.Fatalf("failed grabs must not publish frames")
	}
}

func TestService_StopHaltsLoop(t *testing.T) {
	fg := &fakeGrabber{}
	s := NewService(nil, fg.grab, time.Millisecond)
	s.Start()
	s.Start()
	waitFor(t, func() bool { return s.Running() && s.LatestFrame().Sequence >= 1 })
	s.Stop()
	if s.Running() {
		t.Fatalf("still running after Stop")
	}
	_, n := fg.lastCall()
	time.Sleep(20 * time.Millisecond)
	if _, m := fg.lastCall(); m != n {
		t.Fatalf("grabber called after Stop: %d -> %d", n, m)
	}
	s.Stop()
}

func TestNormalizeOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 15, 25))
	img.Set(5, 5, color.White)
	out := normalizeOrigin(img)
	if out.Bounds() != image.Rect(0, 0, 10, 20) {
		t.Fatalf("bounds %v", out.Bounds())
	}
	if out.RGBAAt(0, 0) != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("pixel not carried over: %v", out.RGBAAt(0, 0))
	}
	placed := placeAt(out, image.Pt(-3, 7))
	if placed.Bounds() != image.Rect(-3, 7, 7, 27) || placed.RGBAAt(-3, 7) != out.RGBAAt(0, 0) {
		t.Fatalf("placeAt bounds %v", placed.Bounds())
	}
}
