package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/pulsekit/pulse/app/middleware"
	"github.com/pulsekit/pulse/handlers"
)

// redisProbe adapts the redis client to the handlers' probe contract.
type redisProbe struct {
	c *redis.Client
}

func (p redisProbe) Ping(ctx context.Context) error {
	return p.c.Ping(ctx).Err()
}

// newRouter builds the route table.
func newRouter(log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))

	r.Get("/health", handlers.HealthCheck)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", handlers.ListUsers)
		r.Post("/", handlers.CreateUser)
		r.Get("/{id}", handlers.GetUser)
		r.Put("/{id}", handlers.UpdateUser)
		r.Delete("/{id}", handlers.DeleteUser)
	})

	return r
}
