// Package main provides the console battle game on stdin and stdout.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/app"
	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/frontend/handlers"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (empty for defaults and environment only)")
	color := flag.Bool("color", true, "style output with ANSI colors")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Logs go to stderr so they never interleave with the game on stdout.
	logger, err := observability.NewLogger(cfg.Logging, "stderr")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	rt, err := app.Build(cfg, logger)
	if err != nil {
		logger.Fatal("building runtime", zap.Error(err))
	}
	defer rt.Close()

	s, err := rt.NewSession()
	if err != nil {
		logger.Fatal("creating session", zap.Error(err))
	}
	defer s.Close()
	if err := rt.Sessions.Add(s); err != nil {
		logger.Fatal("registering session", zap.Error(err))
	}
	console := handlers.NewConsole(os.Stdin, os.Stdout, s, rt.Registry, *color, logger)

	ctx, cancel := context.WithCancel(context.Background())
	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("console", &server.FuncService{
		StartFn: func() error { return console.Run(ctx) },
		StopFn:  cancel,
	})

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("console error", zap.Error(err))
	}
}
