package logging

import "testing"

func TestInitOnce(t *testing.T) {
	first, already := Init()
	if first == nil {
		t.Fatal("Init returned nil logger")
	}

	second, again := Init()
	if !again {
		t.Error("second Init did not report already-initialized")
	}
	if second != first {
		t.Error("second Init returned a different logger")
	}
	_ = already // first call may or may not be the very first in the test binary
}
