package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/pulsekit/pulse/app/server"
	"github.com/pulsekit/pulse/handlers"
	"github.com/pulsekit/pulse/internal/config"
	"github.com/pulsekit/pulse/internal/logging"
	"github.com/pulsekit/pulse/internal/services"
)

func main() {
	log, _ := logging.Init()

	if err := run(log); err != nil {
		// A misconfigured process never starts serving; one line says why.
		log.Error("startup failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(log *zap.Logger) error {
	// Configuration is loaded exactly once and is immutable afterwards.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	app := server.New(cfg, log)
	if err := app.WithPool(context.Background()); err != nil {
		return err
	}
	app.WithCache()

	svcs := services.InitServices(app.DB, app.Cache)

	var cache handlers.Pinger
	if app.Cache != nil {
		cache = redisProbe{app.Cache}
	}
	handlers.Init(svcs.Users, app.DB, cache)

	app.WithRouter(newRouter(log))
	return app.Serve()
}
