package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

// ErrNotText marks a variable whose value is not valid UTF-8 text.
var ErrNotText = errors.New("value is not valid UTF-8 text")

// ParseError reports an environment variable whose value could not be
// converted to the requested type.
type ParseError struct {
	Key   string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("environment variable %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads dotenv-style files into the process environment. Variables
// already set in the environment are never overridden; local files only fill
// gaps. A missing file is not an error.
func Load(files ...string) {
	_ = godotenv.Load(files...)
}

// Lookup returns the raw value of an environment variable, whether it was
// set, and an error when the value is not valid text.
func Lookup(key string) (string, bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return "", false, nil
	}
	if !utf8.ValidString(value) {
		return "", true, &ParseError{Key: key, Value: value, Err: ErrNotText}
	}
	return value, true, nil
}

// Env describes a single typed environment variable with a fallback used
// when the variable is absent.
type Env[T any] struct {
	Key      string
	Fallback T
}

// Get retrieves the variable and converts it to the desired type. An absent
// variable yields the fallback; a present but unconvertible value yields a
// ParseError. Duration values are encoded as whole seconds.
func (e Env[T]) Get() (T, error) {
	value, exists, err := Lookup(e.Key)
	if err != nil {
		return e.Fallback, err
	}
	if !exists {
		return e.Fallback, nil
	}

	var result T
	switch any(e.Fallback).(type) {
	case string:
		result = any(value).(T)
	case uint16:
		v, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return e.Fallback, &ParseError{Key: e.Key, Value: value, Err: err}
		}
		result = any(uint16(v)).(T)
	case uint32:
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return e.Fallback, &ParseError{Key: e.Key, Value: value, Err: err}
		}
		result = any(uint32(v)).(T)
	case time.Duration:
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return e.Fallback, &ParseError{Key: e.Key, Value: value, Err: err}
		}
		result = any(time.Duration(v) * time.Second).(T)
	default:
		return e.Fallback, &ParseError{Key: e.Key, Value: value, Err: errors.New("unsupported type")}
	}

	return result, nil
}

// String declares a string environment variable.
func String(key string, fallback string) Env[string] {
	return Env[string]{Key: key, Fallback: fallback}
}

// Uint16 declares an unsigned 16-bit environment variable.
func Uint16(key string, fallback uint16) Env[uint16] {
	return Env[uint16]{Key: key, Fallback: fallback}
}

// Uint32 declares an unsigned 32-bit environment variable.
func Uint32(key string, fallback uint32) Env[uint32] {
	return Env[uint32]{Key: key, Fallback: fallback}
}

// Seconds declares a duration environment variable encoded as whole seconds.
func Seconds(key string, fallback time.Duration) Env[time.Duration] {
	return Env[time.Duration]{Key: key, Fallback: fallback}
}
