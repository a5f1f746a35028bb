package detection

import (
	"errors"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// Engine owns the precomputed template state and runs detections against scenes.
//
// Detect and DetectWith only read template state and may be called concurrently.
// Reload and Close mutate it and must not overlap any other call.
type Engine struct {
	opts   Options
	tmpl   *templateState
	logger *slog.Logger
}

// New builds an engine for tmpl. Construction either fully succeeds or returns an
// error wrapping ErrTemplateLoad.
func New(tmpl image.Image, opts Options, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts = opts.normalized()
	st, err := newTemplateState(tmpl, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("detection template loaded",
		"width", st.size.X,
		"height", st.size.Y,
		"keypoints", len(st.keypoints),
		"enhance", opts.Preprocess.Enhance,
	)
	return &Engine{opts: opts, tmpl: st, logger: logger}, nil
}

// Options returns the engine's current configuration.
func (e *Engine) Options() Options { return e.opts }

// TemplateSize returns the native template dimensions.
func (e *Engine) TemplateSize() image.Point {
	if e == nil || e.tmpl == nil {
		return image.Point{}
	}
	return e.tmpl.size
}

// NeedsReload reports whether opts would change the cached template state.
func (e *Engine) NeedsReload(opts Options) bool {
	if e == nil || e.tmpl == nil {
		return true
	}
	n := opts.normalized()
	return n.Preprocess != e.tmpl.preprocess || n.ORBFeatures != e.tmpl.features
}

// Reload rebuilds template state from tmpl with opts. On failure the previous state
// is kept intact.
func (e *Engine) Reload(tmpl image.Image, opts Options) error {
	opts = opts.normalized()
	st, err := newTemplateState(tmpl, opts)
	if err != nil {
		return err
	}
	old := e.tmpl
	e.tmpl = st
	e.opts = opts
	old.Close()
	e.logger.Info("detection template reloaded",
		"width", st.size.X,
		"height", st.size.Y,
		"keypoints", len(st.keypoints),
		"enhance", opts.Preprocess.Enhance,
	)
	return nil
}

// Close releases native resources.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.tmpl.Close()
	e.tmpl = nil
}

// Detect runs the enabled matchers with the engine's match options.
func (e *Engine) Detect(scene image.Image, useTemplate, useORB bool) Result {
	m := e.opts.Match
	m.UseTemplate, m.UseORB = useTemplate, useORB
	return e.DetectWith(scene, m)
}

// DetectWith runs the matchers enabled in m and fuses their candidates. It never
// fails: unusable scenes and matcher misses yield NotFound.
func (e *Engine) DetectWith(scene image.Image, m MatchOptions) Result {
	if e == nil || e.tmpl == nil || (!m.UseTemplate && !m.UseORB) {
		return NotFound()
	}
	m = m.normalized()

	bgr, err := imageToBGR(scene)
	if err != nil {
		e.logger.Debug("detect.scene_rejected", "error", err)
		return NotFound()
	}
	defer bgr.Close()
	processed, err := Preprocess(bgr, e.tmpl.preprocess)
	if err != nil {
		e.logger.Debug("detect.scene_rejected", "error", err)
		return NotFound()
	}
	defer processed.Close()
	e.dumpDebug(processed)

	var candidates []Result
	if m.UseTemplate {
		if r, ok := MatchTemplateScales(processed, e.tmpl.processed, m, e.logger); ok {
			candidates = append(candidates, r)
		}
	}
	if m.UseORB {
		r, err := matchFeatures(processed, e.tmpl, m)
		switch {
		case err == nil:
			candidates = append(candidates, r)
		case errors.Is(err, ErrNoFeatureMatch):
			e.logger.Debug("detect.orb.no_result", "reason", err)
		default:
			e.logger.Error("detect.orb.fault", "error", err)
		}
	}
	return Fuse(candidates...)
}

// Visualize annotates scene with r using the engine's position mode and palette.
func (e *Engine) Visualize(scene image.Image, r Result) (image.Image, error) {
	return Annotate(scene, r, e.opts.Match.CenterPosition, e.opts.Palette)
}

// dumpDebug writes the processed template and scene to DebugDir. Failures are logged.
func (e *Engine) dumpDebug(scene gocv.Mat) {
	dir := e.opts.DebugDir
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.logger.Warn("debug image dir", "dir", dir, "error", err)
		return
	}
	for name, m := range map[string]gocv.Mat{
		"debug_template_processed.png": e.tmpl.processed,
		"debug_scene_processed.png":    scene,
	} {
		path := filepath.Join(dir, name)
		if !gocv.IMWrite(path, m) {
			e.logger.Warn("debug image write failed", "path", path)
		}
	}
}
