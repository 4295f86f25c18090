package services

import (
	"github.com/go-redis/redis/v8"

	"github.com/pulsekit/pulse/internal/database/dbpool"
)

// Services holds all the service instances.
type Services struct {
	Users *UserService
}

// InitServices initializes all services with their dependencies. The cache
// client may be nil, in which case caching is disabled.
func InitServices(db *dbpool.Pool, cache *redis.Client) *Services {
	return &Services{
		Users: NewUserService(db, cache),
	}
}
