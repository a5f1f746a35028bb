// Command monster-scan runs one detection against an image file and exits. It
// does not load Tk, so it works on machines without a display.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/soocke/monster-detector-go/app/headless"
	"github.com/soocke/monster-detector-go/config"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to the JSON config file")
	tmplPath := flag.String("template", "", "template image, overrides template_path")
	scenePath := flag.String("scene", "", "image to search (required)")
	outPath := flag.String("out", "", "write the annotated scene here")
	debugFlag := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *scenePath == "" {
		flag.Usage()
		os.Exit(2)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Warn("config load failed, using defaults", "path", *cfgPath, "error", err)
	}

	req := headless.Request{Config: cfg, TemplatePath: *tmplPath, ScenePath: *scenePath, OutPath: *outPath}
	rep, err := headless.Run(context.Background(), req, logger)
	if err != nil {
		logger.Error("detection failed", "error", err)
		os.Exit(1)
	}
	if !rep.Result.Found {
		os.Exit(3)
	}
}
