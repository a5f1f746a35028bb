package presenter

import (
	"github.com/google/uuid"
)

// CaptureModel provides enabled state access.
type CaptureModel interface {
	Enabled() bool
	SetEnabled(enabled bool, session string)
}

// LifecycleContract narrows what the presenter needs from the capture layer.
type LifecycleContract interface {
	Start()
	Stop()
}

// CaptureHooks are notified when a detection run starts or stops.
type CaptureHooks interface {
	OnCaptureStarted(session string)
	OnCaptureStopped(session string)
}

// CaptureView updates UI elements affected by capture toggling.
type CaptureView interface {
	PreviewReset()
	ConfigEditable(bool)
}

// CapturePresenter owns presentation logic for toggling detection.
type CapturePresenter struct {
	model   CaptureModel
	service LifecycleContract
	hooks   CaptureHooks
	view    CaptureView
	newID   func() string
	session string
}

// NewCapturePresenter wires the presenter. hooks may be nil.
func NewCapturePresenter(model CaptureModel, service LifecycleContract, hooks CaptureHooks, view CaptureView) *CapturePresenter {
	return &CapturePresenter{model: model, service: service, hooks: hooks, view: view, newID: uuid.NewString}
}

func (c *CapturePresenter) ready() bool {
	return c != nil && c.model != nil && c.service != nil && c.view != nil
}

// Enable starts the capture service under a fresh session id. Idempotent.
func (c *CapturePresenter) Enable() {
	if !c.ready() || c.model.Enabled() {
		return
	}
	c.session = c.newID()
	c.service.Start()
	c.model.SetEnabled(true, c.session)
	c.view.ConfigEditable(false)
	if c.hooks != nil {
		c.hooks.OnCaptureStarted(c.session)
	}
}

// Disable stops the capture service and resets the preview. Idempotent.
func (c *CapturePresenter) Disable() {
	if !c.ready() || !c.model.Enabled() {
		return
	}
	c.service.Stop()
	c.model.SetEnabled(false, c.session)
	c.view.PreviewReset()
	c.view.ConfigEditable(true)
	if c.hooks != nil {
		c.hooks.OnCaptureStopped(c.session)
	}
}

// Toggle flips enabled state delegating to Enable/Disable.
func (c *CapturePresenter) Toggle() {
	if !c.ready() {
		return
	}
	if c.model.Enabled() {
		c.Disable()
		return
	}
	c.Enable()
}
