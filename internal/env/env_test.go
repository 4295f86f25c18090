package env

import (
	"errors"
	"testing"
	"time"
)

func TestGet(t *testing.T) {
	t.Run("string value", func(t *testing.T) {
		t.Setenv("PULSE_TEST_STR", "hello")
		got, err := String("PULSE_TEST_STR", "fallback").Get()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "hello" {
			t.Errorf("got %q want %q", got, "hello")
		}
	})

	t.Run("absent yields fallback", func(t *testing.T) {
		got, err := Uint16("PULSE_TEST_ABSENT", 3000).Get()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 3000 {
			t.Errorf("got %d want 3000", got)
		}
	})

	t.Run("uint16 value", func(t *testing.T) {
		t.Setenv("PULSE_TEST_PORT", "8080")
		got, err := Uint16("PULSE_TEST_PORT", 3000).Get()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 8080 {
			t.Errorf("got %d want 8080", got)
		}
	})

	t.Run("uint16 overflow rejected", func(t *testing.T) {
		t.Setenv("PULSE_TEST_PORT", "70000")
		_, err := Uint16("PULSE_TEST_PORT", 3000).Get()
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected ParseError, got %v", err)
		}
		if perr.Key != "PULSE_TEST_PORT" || perr.Value != "70000" {
			t.Errorf("ParseError missing context: %+v", perr)
		}
	})

	t.Run("unparseable uint32 carries key and value", func(t *testing.T) {
		t.Setenv("PULSE_TEST_MAX", "ten")
		_, err := Uint32("PULSE_TEST_MAX", 10).Get()
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected ParseError, got %v", err)
		}
		if perr.Key != "PULSE_TEST_MAX" || perr.Value != "ten" {
			t.Errorf("ParseError missing context: %+v", perr)
		}
	})

	t.Run("seconds value", func(t *testing.T) {
		t.Setenv("PULSE_TEST_TIMEOUT", "45")
		got, err := Seconds("PULSE_TEST_TIMEOUT", 5*time.Second).Get()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 45*time.Second {
			t.Errorf("got %v want 45s", got)
		}
	})

	t.Run("invalid text value", func(t *testing.T) {
		t.Setenv("PULSE_TEST_RAW", "ok\xff\xfe")
		_, _, err := Lookup("PULSE_TEST_RAW")
		if !errors.Is(err, ErrNotText) {
			t.Fatalf("expected ErrNotText, got %v", err)
		}
	})
}
