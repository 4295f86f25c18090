package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Cache     string    `json:"cache,omitempty"`
}

// HealthCheck reports service liveness plus the state of the database pool
// and, when configured, the cache.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		Database:  "up",
	}
	code := http.StatusOK

	if dbProbe == nil || dbProbe.Ping(ctx) != nil {
		resp.Status = "unavailable"
		resp.Database = "down"
		code = http.StatusServiceUnavailable
	}

	if cacheProbe != nil {
		resp.Cache = "up"
		if cacheProbe.Ping(ctx) != nil {
			// A cold cache degrades performance, not availability.
			resp.Cache = "down"
		}
	}

	render.Status(r, code)
	render.JSON(w, r, resp)
}
