package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"WARN", zerolog.WarnLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.input), "level %q", tt.input)
	}
}

func TestNew(t *testing.T) {
	log := New("info", "json", "development")
	assert.NotNil(t, log)

	// 파생 로거는 새 인스턴스를 반환해야 함
	child := log.WithField("component", "test")
	assert.NotSame(t, log, child)

	withErr := log.WithError(assert.AnError)
	assert.NotSame(t, log, withErr)
}
