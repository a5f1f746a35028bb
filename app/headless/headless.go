// Package headless runs a single detection against an image file without the UI.
package headless

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/soocke/monster-detector-go/assets"
	"github.com/soocke/monster-detector-go/config"
	"github.com/soocke/monster-detector-go/domain/detection"
	"github.com/soocke/monster-detector-go/domain/history"
)

// Request describes one offline run. An empty TemplatePath uses Config.TemplatePath
// and falls back to the bundled sprite; an explicit one must load.
type Request struct {
	Config       *config.Config
	TemplatePath string
	ScenePath    string
	OutPath      string
}

// Report is the outcome of Run.
type Report struct {
	Session string
	Result  detection.Result
}

// Run detects the template in the scene file, writes the annotated scene to
// OutPath when set and records a found result in the history journal.
func Run(ctx context.Context, req Request, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg := req.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if req.ScenePath == "" {
		return Report{}, errors.New("headless: scene path is required")
	}

	tmpl, err := loadTemplate(req.TemplatePath, cfg.TemplatePath, logger)
	if err != nil {
		return Report{}, err
	}
	scene, err := imaging.Open(req.ScenePath)
	if err != nil {
		return Report{}, fmt.Errorf("headless: open scene: %w", err)
	}

	eng, err := detection.New(tmpl, detection.OptionsFromConfig(cfg), logger)
	if err != nil {
		return Report{}, err
	}
	defer eng.Close()

	rep := Report{Session: uuid.NewString()}
	rep.Result = eng.DetectWith(scene, eng.Options().Match)
	logger.Info("headless detection",
		"scene", req.ScenePath,
		"found", rep.Result.Found,
		"method", rep.Result.Method,
		"confidence", rep.Result.Confidence,
		"scale", rep.Result.Scale,
		"position", rep.Result.Position,
	)

	if req.OutPath != "" {
		if err := writeAnnotated(eng, scene, rep.Result, req.OutPath); err != nil {
			return rep, err
		}
		logger.Info("annotated scene written", "path", req.OutPath)
	}

	j, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		return rep, err
	}
	defer j.Close()
	entry := history.Entry{Session: rep.Session, CapturedAt: time.Now(), Result: rep.Result}
	if err := j.Record(ctx, entry); err != nil {
		return rep, err
	}
	return rep, nil
}

func loadTemplate(explicit, configured string, logger *slog.Logger) (image.Image, error) {
	if explicit != "" {
		return detection.LoadTemplate(explicit)
	}
	img, err := detection.LoadTemplate(configured)
	if err == nil {
		return img, nil
	}
	logger.Warn("template file unavailable, using bundled sprite", "path", configured, "error", err)
	return assets.DefaultTemplate()
}

func writeAnnotated(eng *detection.Engine, scene image.Image, r detection.Result, path string) error {
	out, err := eng.Visualize(scene, r)
	if err != nil {
		return fmt.Errorf("headless: annotate: %w", err)
	}
	if err := imaging.Save(out, path); err != nil {
		return fmt.Errorf("headless: save %s: %w", path, err)
	}
	return nil
}
