package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/krishnasingh5/redis-learning/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		cfg  config.LogConfig
		want zapcore.Level
	}{
		{config.LogConfig{Level: "debug", Encoding: "json"}, zapcore.DebugLevel},
		{config.LogConfig{Level: "WARN", Encoding: "console", Development: true}, zapcore.WarnLevel},
		{config.LogConfig{Level: "loud", Encoding: "xml"}, zapcore.InfoLevel},
	}
	for _, tt := range tests {
		l, err := New(tt.cfg)
		if err != nil {
			t.Fatalf("New(%+v): %v", tt.cfg, err)
		}
		if !l.Core().Enabled(tt.want) {
			t.Fatalf("New(%+v): level %s not enabled", tt.cfg, tt.want)
		}
		if tt.want > zapcore.DebugLevel && l.Core().Enabled(tt.want-1) {
			t.Fatalf("New(%+v): level %s should be disabled", tt.cfg, tt.want-1)
		}
	}
}
