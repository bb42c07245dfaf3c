package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		log, err := New("debug", env)
		if err != nil {
			t.Fatalf("New(%q): %v", env, err)
		}
		if !log.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("%s: debug level should be enabled", env)
		}
	}

	if _, err := New("loud", "production"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
