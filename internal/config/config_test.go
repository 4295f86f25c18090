package config

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

// configVars is every variable Load consults; clearEnv unsets them all and
// restores the previous values when the test ends.
var configVars = []string{
	"DATABASE_URL",
	"SERVER_PORT",
	"SERVER_HOST",
	"REDIS_URL",
	"DATABASE_MAX_CONNECTIONS",
	"DATABASE_MIN_CONNECTIONS",
	"DATABASE_ACQUIRE_TIMEOUT_SECS",
	"DATABASE_CONNECT_TIMEOUT_SECS",
	"DATABASE_IDLE_TIMEOUT_SECS",
	"DATABASE_MAX_LIFETIME_SECS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configVars {
		// t.Setenv registers the restore; the explicit unset removes the
		// variable for the duration of the test.
		if value, ok := os.LookupEnv(key); ok {
			t.Setenv(key, value)
		}
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/pulse")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://u:p@localhost:5432/pulse" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.ServerPort != DefaultPort {
		t.Errorf("ServerPort = %d want %d", cfg.ServerPort, DefaultPort)
	}
	if cfg.ServerHost.String() != "0.0.0.0" {
		t.Errorf("ServerHost = %v want 0.0.0.0", cfg.ServerHost)
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q want empty", cfg.RedisURL)
	}

	want := PoolSettings{
		MaxConns:       DefaultMaxConns,
		MinConns:       DefaultMinConns,
		AcquireTimeout: DefaultAcquireTimeout,
		ConnectTimeout: DefaultConnectTimeout,
		IdleTimeout:    DefaultIdleTimeout,
		MaxLifetime:    DefaultMaxLifetime,
	}
	if cfg.Pool != want {
		t.Errorf("Pool = %+v want %+v", cfg.Pool, want)
	}
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cerr.Kind != KindMissing || cerr.Var != "DATABASE_URL" {
		t.Errorf("got kind %d var %q, want missing DATABASE_URL", cerr.Kind, cerr.Var)
	}
	if !strings.Contains(cerr.Error(), "DATABASE_URL") {
		t.Errorf("diagnostic %q does not name the variable", cerr.Error())
	}
}

func TestLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/d")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("DATABASE_MAX_CONNECTIONS", "20")
	t.Setenv("DATABASE_MIN_CONNECTIONS", "4")
	t.Setenv("DATABASE_ACQUIRE_TIMEOUT_SECS", "7")
	t.Setenv("DATABASE_CONNECT_TIMEOUT_SECS", "9")
	t.Setenv("DATABASE_IDLE_TIMEOUT_SECS", "120")
	t.Setenv("DATABASE_MAX_LIFETIME_SECS", "900")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d want 8080", cfg.ServerPort)
	}
	if cfg.ServerHost.String() != "127.0.0.1" {
		t.Errorf("ServerHost = %v want 127.0.0.1", cfg.ServerHost)
	}
	if cfg.RedisURL != "localhost:6379" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr = %q want 127.0.0.1:8080", cfg.Addr())
	}

	want := PoolSettings{
		MaxConns:       20,
		MinConns:       4,
		AcquireTimeout: 7 * time.Second,
		ConnectTimeout: 9 * time.Second,
		IdleTimeout:    2 * time.Minute,
		MaxLifetime:    15 * time.Minute,
	}
	if cfg.Pool != want {
		t.Errorf("Pool = %+v want %+v", cfg.Pool, want)
	}
}

func TestLoadPort(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    uint16
		wantErr bool
	}{
		{name: "explicit port", value: "4100", want: 4100},
		{name: "zero means ephemeral", value: "0", want: 0},
		{name: "above 65535 rejected", value: "70000", wantErr: true},
		{name: "unparseable rejected", value: "eight-thousand", wantErr: true},
		{name: "negative rejected", value: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/d")
			t.Setenv("SERVER_PORT", tt.value)

			cfg, err := Load()
			if tt.wantErr {
				var cerr *ConfigError
				if !errors.As(err, &cerr) {
					t.Fatalf("expected ConfigError, got %v", err)
				}
				if cerr.Kind != KindInvalidValue || cerr.Var != "SERVER_PORT" {
					t.Errorf("got kind %d var %q", cerr.Kind, cerr.Var)
				}
				if !strings.Contains(cerr.Error(), tt.value) {
					t.Errorf("diagnostic %q does not name the value", cerr.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.ServerPort != tt.want {
				t.Errorf("ServerPort = %d want %d", cfg.ServerPort, tt.want)
			}
		})
	}
}

func TestLoadInvalidHost(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/d")
	t.Setenv("SERVER_HOST", "not-a-host")

	_, err := Load()
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cerr.Kind != KindInvalidValue || cerr.Var != "SERVER_HOST" {
		t.Errorf("got kind %d var %q", cerr.Kind, cerr.Var)
	}
}

func TestLoadConnectionRange(t *testing.T) {
	t.Run("min above max fails naming both values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/d")
		t.Setenv("DATABASE_MIN_CONNECTIONS", "10")
		t.Setenv("DATABASE_MAX_CONNECTIONS", "5")

		_, err := Load()
		var cerr *ConfigError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected ConfigError, got %v", err)
		}
		if cerr.Kind != KindInvalidRange {
			t.Errorf("kind = %d want range violation", cerr.Kind)
		}
		msg := cerr.Error()
		if !strings.Contains(msg, "10") || !strings.Contains(msg, "5") {
			t.Errorf("diagnostic %q does not mention both values", msg)
		}
	})

	t.Run("min equal to max is allowed", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/d")
		t.Setenv("DATABASE_MIN_CONNECTIONS", "5")
		t.Setenv("DATABASE_MAX_CONNECTIONS", "5")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Pool.MinConns != 5 || cfg.Pool.MaxConns != 5 {
			t.Errorf("pool bounds = %d/%d want 5/5", cfg.Pool.MinConns, cfg.Pool.MaxConns)
		}
	})

	t.Run("max of zero rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/d")
		t.Setenv("DATABASE_MAX_CONNECTIONS", "0")

		_, err := Load()
		var cerr *ConfigError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected ConfigError, got %v", err)
		}
		if cerr.Kind != KindInvalidValue || cerr.Var != "DATABASE_MAX_CONNECTIONS" {
			t.Errorf("got kind %d var %q", cerr.Kind, cerr.Var)
		}
	})
}

func TestLoadZeroDisablesRecycling(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/d")
	t.Setenv("DATABASE_IDLE_TIMEOUT_SECS", "0")
	t.Setenv("DATABASE_MAX_LIFETIME_SECS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pool.IdleTimeout != 0 {
		t.Errorf("IdleTimeout = %v want 0", cfg.Pool.IdleTimeout)
	}
	if cfg.Pool.MaxLifetime != 0 {
		t.Errorf("MaxLifetime = %v want 0", cfg.Pool.MaxLifetime)
	}
}

func TestLoadScenarioA(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/d")
	t.Setenv("SERVER_PORT", "4100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabaseURL != "postgres://u:p@h:5432/d" || cfg.ServerPort != 4100 {
		t.Errorf("got %q port %d", cfg.DatabaseURL, cfg.ServerPort)
	}

	defaults := PoolSettings{
		MaxConns:       DefaultMaxConns,
		MinConns:       DefaultMinConns,
		AcquireTimeout: DefaultAcquireTimeout,
		ConnectTimeout: DefaultConnectTimeout,
		IdleTimeout:    DefaultIdleTimeout,
		MaxLifetime:    DefaultMaxLifetime,
	}
	if cfg.Pool != defaults {
		t.Errorf("Pool = %+v want defaults", cfg.Pool)
	}
}
