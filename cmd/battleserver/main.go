// Package main provides the Telnet battle server. Every connection plays its
// own independent battle session.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/app"
	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/frontend/handlers"
	"github.com/cory-johannsen/skirmish/internal/frontend/telnet"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file (empty for defaults and environment only)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting battle server",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Int64("seed", cfg.Battle.Seed),
	)

	rt, err := app.Build(cfg, logger)
	if err != nil {
		logger.Fatal("building runtime", zap.Error(err))
	}
	defer rt.Close()

	handler := handlers.NewBattleHandler(rt.NewSession, rt.Sessions, rt.Registry, handlers.IdleSettings{
		Timeout:     cfg.Telnet.IdleTimeout,
		GracePeriod: cfg.Telnet.IdleGracePeriod,
	}, logger)
	acceptor := telnet.NewAcceptor(cfg.Telnet, handler, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("battle server initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
