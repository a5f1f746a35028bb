package presenter

import (
	"testing"
)

type mockModel struct {
	enabled bool
	session string
}

func (m *mockModel) Enabled() bool { return m.enabled }
func (m *mockModel) SetEnabled(b bool, session string) {
	m.enabled = b
	if b {
		m.session = session
	}
}

type mockService struct{ started, stopped int }

func (s *mockService) Start() { s.started++ }
func (s *mockService) Stop()  { s.stopped++ }

type mockHooks struct{ started, stopped []string }

func (h *mockHooks) OnCaptureStarted(id string) { h.started = append(h.started, id) }
func (h *mockHooks) OnCaptureStopped(id string) { h.stopped = append(h.stopped, id) }

type mockView struct {
	reset, editableCalls int
	lastEditable         bool
}

func (v *mockView) PreviewReset()         { v.reset++ }
func (v *mockView) ConfigEditable(b bool) { v.editableCalls++; v.lastEditable = b }

func TestCapturePresenter_EnableDisable_Idempotent(t *testing.T) {
	m := &mockModel{}
	svc := &mockService{}
	hooks := &mockHooks{}
	view := &mockView{}
	p := NewCapturePresenter(m, svc, hooks, view)

	p.Enable()
	if !m.Enabled() || svc.started != 1 || len(hooks.started) != 1 || view.lastEditable || view.editableCalls != 1 {
		t.Fatalf("enable failed: enabled=%v started=%d hooks=%v editableCalls=%d lastEditable=%v", m.Enabled(), svc.started, hooks.started, view.editableCalls, view.lastEditable)
	}
	if m.session == "" || m.session != hooks.started[0] {
		t.Fatalf("session id not propagated: model=%q hooks=%v", m.session, hooks.started)
	}
	p.Enable()
	if svc.started != 1 || len(hooks.started) != 1 {
		t.Fatalf("enable not idempotent: started=%d hooks=%v", svc.started, hooks.started)
	}

	p.Disable()
	if m.Enabled() || svc.stopped != 1 || view.reset != 1 || !view.lastEditable || view.editableCalls != 2 {
		t.Fatalf("disable failed: enabled=%v stopped=%d reset=%d editableCalls=%d lastEditable=%v", m.Enabled(), svc.stopped, view.reset, view.editableCalls, view.lastEditable)
	}
	if len(hooks.stopped) != 1 || hooks.stopped[0] != hooks.started[0] {
		t.Fatalf("stop hook should carry the run id: %v", hooks.stopped)
	}
	p.Disable()
	if svc.stopped != 1 || view.reset != 1 {
		t.Fatalf("disable not idempotent: stopped=%d reset=%d", svc.stopped, view.reset)
	}
}

func TestCapturePresenter_ToggleStartsNewSession(t *testing.T) {
	m := &mockModel{}
	svc := &mockService{}
	hooks := &mockHooks{}
	p := NewCapturePresenter(m, svc, hooks, &mockView{})
	p.Toggle()
	p.Toggle()
	p.Toggle()
	if !m.Enabled() || svc.started != 2 || svc.stopped != 1 {
		t.Fatalf("toggle sequence failed: started=%d stopped=%d", svc.started, svc.stopped)
	}
	if len(hooks.started) != 2 || hooks.started[0] == hooks.started[1] {
		t.Fatalf("each run should get a distinct id: %v", hooks.started)
	}
}

func TestCapturePresenter_NilHooks(t *testing.T) {
	m := &mockModel{}
	p := NewCapturePresenter(m, &mockService{}, nil, &mockView{})
	p.Toggle()
	p.Toggle()
	if m.Enabled() {
		t.Fatalf("expected disabled")
	}
}
