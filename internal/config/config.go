// Package config resolves the service configuration from the process
// environment. A `.env` file in the working directory is consulted first and
// only fills variables that are not already set.
//
// Parsing is strict: a variable that is present but unparseable fails the
// load instead of silently falling back to a default, matching the
// fail-fast startup policy of the rest of the bootstrap.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/pulsekit/pulse/internal/env"
)

// Named defaults for every optional setting.
const (
	DefaultPort           uint16 = 3000
	DefaultMaxConns       uint32 = 10
	DefaultMinConns       uint32 = 2
	DefaultAcquireTimeout        = 3 * time.Second
	DefaultConnectTimeout        = 5 * time.Second
	DefaultIdleTimeout           = 10 * time.Minute
	DefaultMaxLifetime           = 30 * time.Minute
)

// ErrorKind discriminates configuration failures.
type ErrorKind int

const (
	// KindMissing marks a required variable that is not set.
	KindMissing ErrorKind = iota
	// KindInvalidEncoding marks a variable whose value is not valid text.
	KindInvalidEncoding
	// KindInvalidValue marks a variable whose value could not be parsed or
	// is out of bounds for its type.
	KindInvalidValue
	// KindInvalidRange marks a cross-field violation between the minimum
	// and maximum pool sizes.
	KindInvalidRange
)

// ConfigError is the canonical configuration failure. It names the offending
// variable and value so the process can exit with a single-line diagnostic.
type ConfigError struct {
	Kind  ErrorKind
	Var   string
	Value string
	Min   uint32 // populated for KindInvalidRange
	Max   uint32 // populated for KindInvalidRange
	Err   error
}

func (e *ConfigError) Error() string {
	switch e.Kind {
	case KindMissing:
		return fmt.Sprintf("config: required environment variable %s is not set", e.Var)
	case KindInvalidEncoding:
		return fmt.Sprintf("config: environment variable %s does not hold valid text", e.Var)
	case KindInvalidRange:
		return fmt.Sprintf("config: DATABASE_MIN_CONNECTIONS %d exceeds DATABASE_MAX_CONNECTIONS %d", e.Min, e.Max)
	default:
		return fmt.Sprintf("config: environment variable %s has invalid value %q: %v", e.Var, e.Value, e.Err)
	}
}

func (e *ConfigError) Unwrap() error { return e.Err }

// PoolSettings tunes the database connection pool.
type PoolSettings struct {
	MaxConns       uint32
	MinConns       uint32
	AcquireTimeout time.Duration
	ConnectTimeout time.Duration
	IdleTimeout    time.Duration // zero disables idle recycling
	MaxLifetime    time.Duration // zero disables the lifetime cap
}

// Configuration is the immutable service configuration, built exactly once
// at process start and handed read-only to every collaborator.
type Configuration struct {
	DatabaseURL string
	ServerHost  net.IP
	ServerPort  uint16 // zero lets the OS pick an ephemeral port
	RedisURL    string // empty disables the cache
	Pool        PoolSettings
}

// Addr returns the host:port the listener should bind.
func (c *Configuration) Addr() string {
	return net.JoinHostPort(c.ServerHost.String(), strconv.Itoa(int(c.ServerPort)))
}

// Load reads the `.env` override file and the process environment and
// returns a validated Configuration. All failures are *ConfigError.
func Load() (*Configuration, error) {
	env.Load()

	databaseURL, exists, err := env.Lookup("DATABASE_URL")
	if err != nil {
		return nil, asConfigError("DATABASE_URL", err)
	}
	if !exists || databaseURL == "" {
		return nil, &ConfigError{Kind: KindMissing, Var: "DATABASE_URL"}
	}

	port, err := env.Uint16("SERVER_PORT", DefaultPort).Get()
	if err != nil {
		return nil, asConfigError("SERVER_PORT", err)
	}

	host := net.IPv4zero
	raw, ok, err := env.Lookup("SERVER_HOST")
	if err != nil {
		return nil, asConfigError("SERVER_HOST", err)
	}
	if ok {
		host = net.ParseIP(raw)
		if host == nil {
			return nil, &ConfigError{
				Kind:  KindInvalidValue,
				Var:   "SERVER_HOST",
				Value: raw,
				Err:   errors.New("not an IP literal"),
			}
		}
	}

	redisURL, err := env.String("REDIS_URL", "").Get()
	if err != nil {
		return nil, asConfigError("REDIS_URL", err)
	}

	pool, err := loadPoolSettings()
	if err != nil {
		return nil, err
	}

	return &Configuration{
		DatabaseURL: databaseURL,
		ServerHost:  host,
		ServerPort:  port,
		RedisURL:    redisURL,
		Pool:        pool,
	}, nil
}

func loadPoolSettings() (PoolSettings, error) {
	var s PoolSettings

	maxConns, err := env.Uint32("DATABASE_MAX_CONNECTIONS", DefaultMaxConns).Get()
	if err != nil {
		return s, asConfigError("DATABASE_MAX_CONNECTIONS", err)
	}
	if maxConns < 1 {
		return s, &ConfigError{
			Kind:  KindInvalidValue,
			Var:   "DATABASE_MAX_CONNECTIONS",
			Value: "0",
			Err:   errors.New("must be at least 1"),
		}
	}

	minConns, err := env.Uint32("DATABASE_MIN_CONNECTIONS", DefaultMinConns).Get()
	if err != nil {
		return s, asConfigError("DATABASE_MIN_CONNECTIONS", err)
	}

	acquireTimeout, err := env.Seconds("DATABASE_ACQUIRE_TIMEOUT_SECS", DefaultAcquireTimeout).Get()
	if err != nil {
		return s, asConfigError("DATABASE_ACQUIRE_TIMEOUT_SECS", err)
	}

	connectTimeout, err := env.Seconds("DATABASE_CONNECT_TIMEOUT_SECS", DefaultConnectTimeout).Get()
	if err != nil {
		return s, asConfigError("DATABASE_CONNECT_TIMEOUT_SECS", err)
	}

	idleTimeout, err := env.Seconds("DATABASE_IDLE_TIMEOUT_SECS", DefaultIdleTimeout).Get()
	if err != nil {
		return s, asConfigError("DATABASE_IDLE_TIMEOUT_SECS", err)
	}

	maxLifetime, err := env.Seconds("DATABASE_MAX_LIFETIME_SECS", DefaultMaxLifetime).Get()
	if err != nil {
		return s, asConfigError("DATABASE_MAX_LIFETIME_SECS", err)
	}

	// Cross-field validation happens once, after every field has parsed.
	if minConns > maxConns {
		return s, &ConfigError{Kind: KindInvalidRange, Var: "DATABASE_MIN_CONNECTIONS", Min: minConns, Max: maxConns}
	}

	s = PoolSettings{
		MaxConns:       maxConns,
		MinConns:       minConns,
		AcquireTimeout: acquireTimeout,
		ConnectTimeout: connectTimeout,
		IdleTimeout:    idleTimeout,
		MaxLifetime:    maxLifetime,
	}
	return s, nil
}

func asConfigError(name string, err error) *ConfigError {
	var perr *env.ParseError
	if errors.As(err, &perr) {
		if errors.Is(perr.Err, env.ErrNotText) {
			return &ConfigError{Kind: KindInvalidEncoding, Var: name, Err: perr.Err}
		}
		return &ConfigError{Kind: KindInvalidValue, Var: name, Value: perr.Value, Err: perr.Err}
	}
	return &ConfigError{Kind: KindInvalidValue, Var: name, Err: err}
}
