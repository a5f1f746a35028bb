package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/soocke/monster-detector-go/app"
	"github.com/soocke/monster-detector-go/config"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to the JSON config file")
	tmplPath := flag.String("template", "", "template image, overrides template_path")
	debugFlag := flag.Bool("debug", false, "verbose logging and runtime stats")
	flag.Parse()

	logger := NewLogger(slog.LevelInfo)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Warn("config load failed, using defaults", "path", *cfgPath, "error", err)
	}
	if *debugFlag {
		cfg.Debug = true
	}
	if cfg.Debug {
		logger = NewLogger(slog.LevelDebug)
	}
	if *tmplPath != "" {
		cfg.TemplatePath = *tmplPath
	}

	application, err := app.NewApp("Monster Detector", 960, 720, cfg, *cfgPath, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	application.Start()
}
