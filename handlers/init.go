// Package handlers contains the HTTP handlers. They depend only on the
// narrow contracts handed out by the bootstrap: the pool's probe surface and
// the service layer, never the raw configuration loader or pool builder.
package handlers

import (
	"context"

	"github.com/pulsekit/pulse/internal/services"
)

// UserStore is the slice of the user service the handlers consume.
type UserStore interface {
	Create(ctx context.Context, name, email string) (*services.User, error)
	Get(ctx context.Context, id int32) (*services.User, error)
	List(ctx context.Context) ([]services.User, error)
	Update(ctx context.Context, id int32, name, email string) (*services.User, error)
	Delete(ctx context.Context, id int32) error
}

// Pinger is a lightweight connectivity probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	userStore  UserStore
	dbProbe    Pinger
	cacheProbe Pinger
)

// Init wires the handler package's dependencies. The cache probe may be nil
// when no cache is configured.
func Init(users UserStore, db Pinger, cache Pinger) {
	userStore = users
	dbProbe = db
	cacheProbe = cache
}
