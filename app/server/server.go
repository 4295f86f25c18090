// Package server composes the bootstrap sequence: validated configuration
// in, then pool, cache, router and finally a listener raced against the
// shutdown coordinator.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/pulsekit/pulse/internal/config"
	"github.com/pulsekit/pulse/internal/database/dbpool"
	"github.com/pulsekit/pulse/internal/shutdown"
)

// drainTimeout bounds the graceful drain of in-flight requests.
const drainTimeout = 30 * time.Second

// BindError reports a failure to bind the listen address, as opposed to a
// transport failure after serving has started.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("server: failed to bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Application holds application-wide dependencies and configuration.
type Application struct {
	Config *config.Configuration
	Log    *zap.Logger
	DB     *dbpool.Pool
	Cache  *redis.Client

	handler http.Handler
	coord   *shutdown.Coordinator

	mu   sync.Mutex
	addr string
}

// New creates an Application around an already-validated configuration.
func New(cfg *config.Configuration, log *zap.Logger) *Application {
	return &Application{Config: cfg, Log: log}
}

// WithPool constructs the database pool. Configuration is complete by the
// time this runs; a pool failure aborts startup before the listener binds.
func (app *Application) WithPool(ctx context.Context) error {
	pool, err := dbpool.New(ctx, app.Config.DatabaseURL, app.Config.Pool)
	if err != nil {
		return err
	}
	app.DB = pool
	return nil
}

// WithCache initializes the Redis client when a cache address is configured.
func (app *Application) WithCache() *Application {
	if app.Config.RedisURL == "" {
		return app
	}
	app.Cache = redis.NewClient(&redis.Options{Addr: app.Config.RedisURL})
	return app
}

// WithRouter registers the HTTP handler the listener will serve.
func (app *Application) WithRouter(h http.Handler) *Application {
	app.handler = h
	return app
}

// WithShutdown overrides the default signal-driven shutdown coordinator.
func (app *Application) WithShutdown(c *shutdown.Coordinator) *Application {
	app.coord = c
	return app
}

// Addr returns the bound listen address once Serve has bound it. With a
// configured port of zero this is where the OS-assigned port shows up.
func (app *Application) Addr() string {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.addr
}

// Serve binds the listener and serves until the shutdown coordinator fires
// or the transport fails. On shutdown it stops accepting, drains in-flight
// requests and closes the pool and cache before returning.
func (app *Application) Serve() error {
	coord := app.coord
	if coord == nil {
		coord = shutdown.New(app.Log)
	}

	ln, err := net.Listen("tcp", app.Config.Addr())
	if err != nil {
		app.closeResources()
		return &BindError{Addr: app.Config.Addr(), Err: err}
	}

	app.mu.Lock()
	app.addr = ln.Addr().String()
	app.mu.Unlock()

	srv := &http.Server{Handler: app.handler}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	app.Log.Info("server listening", zap.String("addr", ln.Addr().String()))

	// The shutdown wait races the accept loop from the moment the
	// listener is up.
	select {
	case err := <-errChan:
		app.closeResources()
		return fmt.Errorf("server: serve failed: %w", err)
	case <-coord.Done():
		app.Log.Info("shutdown signal received, draining in-flight requests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		app.Log.Warn("graceful drain incomplete", zap.Error(err))
	}

	app.closeResources()
	app.Log.Info("shutdown complete")
	return nil
}

func (app *Application) closeResources() {
	if app.DB != nil {
		app.DB.Close()
	}
	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			app.Log.Warn("cache close failed", zap.Error(err))
		}
	}
}
