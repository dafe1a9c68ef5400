package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op; the previous logger must no longer fire
	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestSetVerbose(t *testing.T) {
	originalLog, originalDebug := Logf, Debugf
	defer func() {
		Logf = originalLog
		Debugf = originalDebug
	}()

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	SetVerbose(false)
	Debugf("frame %d", 1)
	if len(lines) != 0 {
		t.Fatalf("muted Debugf wrote %d lines", len(lines))
	}

	SetVerbose(true)
	Debugf("frame %d", 2)
	if len(lines) != 1 || lines[0] != "frame 2" {
		t.Fatalf("verbose Debugf lines = %v, want [frame 2]", lines)
	}

	SetVerbose(false)
	Debugf("frame %d", 3)
	if len(lines) != 1 {
		t.Errorf("Debugf should be muted again, got %v", lines)
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
	if Debugf == nil {
		t.Error("Debugf should not be nil by default")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()

	Logf("test message: %s", "value")
	Debugf("test message: %s", "value")
}
