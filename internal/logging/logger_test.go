package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	tests := []struct {
		level string
		env   string
		want  zapcore.Level
	}{
		{"debug", "dev", zapcore.DebugLevel},
		{"WARN", "prod", zapcore.WarnLevel},
		{"nonsense", "dev", zapcore.InfoLevel},
		{"", "prod", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.env, func(t *testing.T) {
			log, err := Init(tt.level, tt.env)
			require.NoError(t, err)
			defer log.Closer()

			assert.Equal(t, tt.want, log.Level.Level())
			assert.NotNil(t, log.Sugar)
		})
	}
}
