package presenter

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/monster-detector-go/config"
	"github.com/soocke/monster-detector-go/domain/capture"
	"github.com/soocke/monster-detector-go/domain/detection"
	"github.com/soocke/monster-detector-go/domain/history"
	"github.com/soocke/monster-detector-go/ui/images"
)

// thumbnailSide is the edge of the square crop shown next to the capture preview.
const thumbnailSide = 96

// FrameSource supplies the most recent captured frame.
type FrameSource interface {
	Running() bool
	LatestFrame() capture.FrameSnapshot
}

// Detector is the detection engine surface used by the worker. All calls happen on
// the worker goroutine, which serialises Reload against detection.
type Detector interface {
	DetectWith(scene image.Image, m detection.MatchOptions) detection.Result
	NeedsReload(opts detection.Options) bool
	Reload(tmpl image.Image, opts detection.Options) error
}

// TemplateLoader returns the template image used on reload.
type TemplateLoader func() (image.Image, error)

// ResultRecorder receives every processed detection on the UI thread.
type ResultRecorder interface {
	Record(r detection.Result, origin image.Point) error
}

// HistoryRecorder persists found results.
type HistoryRecorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// ResultModel stores the last outcome for other presenters.
type ResultModel interface {
	SetResult(r detection.Result, origin image.Point, centered bool, seq uint64)
}

// DetectionView describes the UI surface updated by the presenter.
type DetectionView interface {
	UpdateCapture(img image.Image)
	UpdateDetection(img image.Image)
}

type detectionTask struct {
	snapshot capture.FrameSnapshot
	opts     detection.Options
	reload   bool
	session  string
}

type detectionResult struct {
	sequence  uint64
	origin    image.Point
	centered  bool
	result    detection.Result
	annotated image.Image
	thumbnail image.Image
	duration  time.Duration
}

// DetectionPresenter feeds captured frames to the detection worker and applies its
// results to the view, the session tracker and the model.
type DetectionPresenter struct {
	Enabled  func() bool
	Session  func() string
	Source   FrameSource
	Detector Detector
	Template TemplateLoader
	View     DetectionView
	Config   *config.Config
	Tracker  ResultRecorder
	History  HistoryRecorder
	Model    ResultModel
	logger   *slog.Logger

	workerOnce sync.Once
	closeOnce  sync.Once
	workCh     chan detectionTask
	resultCh   chan detectionResult
	workerDone chan struct{}
	started    bool

	closed        bool
	lastSeq       uint64
	lastDispatch  time.Time
	pendingReload bool

	frames     int
	found      int
	detectTime time.Duration
}

// NewDetectionPresenter constructs a detection presenter.
func NewDetectionPresenter(enabled func() bool, source FrameSource, det Detector, tmpl TemplateLoader, view DetectionView, cfg *config.Config, logger *slog.Logger) *DetectionPresenter {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DetectionPresenter{
		Enabled:  enabled,
		Source:   source,
		Detector: det,
		Template: tmpl,
		View:     view,
		Config:   cfg,
		logger:   logger,
		workCh:   make(chan detectionTask, 1),
		resultCh: make(chan detectionResult, 1),

		workerDone: make(chan struct{}),
	}
}

// RequestReload makes the next dispatched frame reload the template first.
func (p *DetectionPresenter) RequestReload() {
	if p != nil {
		p.pendingReload = true
	}
}

// ProcessFrame applies finished worker results and dispatches the latest frame
// when the detection rate allows it. Call from the UI tick.
func (p *DetectionPresenter) ProcessFrame() {
	if p == nil || p.closed || p.Enabled == nil || p.Source == nil || p.Detector == nil || p.View == nil {
		return
	}
	p.ensureWorker()

	for drained := false; !drained; {
		select {
		case res := <-p.resultCh:
			p.handleResult(res)
		default:
			drained = true
		}
	}

	if !p.Enabled() || !p.Source.Running() {
		return
	}
	snapshot := p.Source.LatestFrame()
	if snapshot.Image == nil || snapshot.Sequence == 0 || snapshot.Sequence == p.lastSeq {
		return
	}
	if !p.lastDispatch.IsZero() && time.Since(p.lastDispatch) < p.frameInterval() {
		return
	}
	p.lastSeq = snapshot.Sequence
	p.lastDispatch = time.Now()
	task := detectionTask{
		snapshot: snapshot,
		opts:     detection.OptionsFromConfig(p.Config),
		reload:   p.pendingReload,
	}
	if p.Session != nil {
		task.session = p.Session()
	}
	p.pendingReload = false
	p.dispatchTask(task)
}

// Close stops the worker and waits for an in-flight frame to finish, after which
// the detector is no longer used. Pending tasks are dropped.
func (p *DetectionPresenter) Close() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() {
		p.closed = true
		p.workerOnce.Do(func() {})
		select {
		case <-p.workCh:
		default:
		}
		close(p.workCh)
		if p.started {
			<-p.workerDone
		}
	})
}

func (p *DetectionPresenter) frameInterval() time.Duration {
	fps := p.Config.DetectionFPS
	if fps <= 0 {
		fps = 10
	}
	return time.Second / time.Duration(fps)
}

func (p *DetectionPresenter) ensureWorker() {
	p.workerOnce.Do(func() {
		p.started = true
		go p.runWorker()
	})
}

func (p *DetectionPresenter) runWorker() {
	defer close(p.workerDone)
	for task := range p.workCh {
		res, ok := p.executeTask(task)
		if !ok {
			continue
		}
		select {
		case p.resultCh <- res:
		default:
			select {
			case <-p.resultCh:
			default:
			}
			select {
			case p.resultCh <- res:
			default:
			}
		}
	}
}

// dispatchTask queues task, replacing a task the worker has not picked up yet. A
// pending reload request survives the replacement.
func (p *DetectionPresenter) dispatchTask(task detectionTask) {
	select {
	case p.workCh <- task:
	default:
		select {
		case old := <-p.workCh:
			task.reload = task.reload || old.reload
		default:
		}
		select {
		case p.workCh <- task:
		default:
		}
	}
}

// executeTask runs on the worker goroutine. A panic inside the engine drops the
// frame instead of killing the worker.
func (p *DetectionPresenter) executeTask(task detectionTask) (res detectionResult, ok bool) {
	defer recoverLog(p.logger, "detection worker panic")

	if task.reload || p.Detector.NeedsReload(task.opts) {
		p.reload(task.opts)
	}

	frame := task.snapshot.Image
	start := time.Now()
	r := p.Detector.DetectWith(frame, task.opts.Match)
	res = detectionResult{
		sequence: task.snapshot.Sequence,
		origin:   task.snapshot.Origin,
		centered: task.opts.Match.CenterPosition,
		result:   r,
		duration: time.Since(start),
	}

	annotated, err := detection.Annotate(frame, r, task.opts.Match.CenterPosition, task.opts.Palette)
	if err != nil {
		p.logger.Warn("detection annotate", "error", err)
		annotated = frame
	}
	res.annotated = annotated

	if r.Found {
		centre := r.Position
		if !task.opts.Match.CenterPosition {
			centre = centre.Add(image.Pt(r.Size.X/2, r.Size.Y/2))
		}
		if thumb, _, err := images.ExtractROI(frame, centre.X, centre.Y, thumbnailSide); err == nil {
			res.thumbnail = thumb
		}
		if p.History != nil {
			entry := history.Entry{Session: task.session, CapturedAt: task.snapshot.CapturedAt, Result: r}
			if err := p.History.Record(context.Background(), entry); err != nil {
				p.logger.Warn("detection history", "error", err)
			}
		}
	}
	return res, true
}

func (p *DetectionPresenter) reload(opts detection.Options) {
	if p.Template == nil {
		p.logger.Warn("template reload skipped: no loader")
		return
	}
	img, err := p.Template()
	if err == nil {
		err = p.Detector.Reload(img, opts)
	}
	if err != nil {
		p.logger.Error("template reload", "error", err)
		return
	}
	p.logger.Info("template reloaded", "enhance", opts.Preprocess.Enhance)
}

func (p *DetectionPresenter) handleResult(res detectionResult) {
	r := res.result
	p.frames++
	p.detectTime += res.duration
	if r.Found {
		p.found++
	}
	if p.Model != nil {
		p.Model.SetResult(r, res.origin, res.centered, res.sequence)
	}
	if p.Tracker != nil {
		if err := p.Tracker.Record(r, res.origin); err != nil {
			p.logger.Warn("cursor move", "error", err)
		}
	}
	if res.annotated != nil {
		p.View.UpdateCapture(res.annotated)
	}
	if res.thumbnail != nil {
		p.View.UpdateDetection(res.thumbnail)
	}
	if r.Found {
		p.logger.Debug("detect.found",
			"method", r.Method,
			"confidence", r.Confidence,
			"scale", r.Scale,
			"x", res.origin.X+r.Position.X,
			"y", res.origin.Y+r.Position.Y,
		)
	}
	if n := p.Config.DetectionLogInterval; n > 0 && p.frames%n == 0 {
		p.logger.Info("detection.progress",
			"frames", p.frames,
			"found", p.found,
			"rate", float64(p.found)/float64(p.frames)*100,
			"avg_detect", p.detectTime/time.Duration(p.frames),
		)
	}
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
