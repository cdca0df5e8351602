package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewParsesLevel(t *testing.T) {
	for level, want := range map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"verbose": zapcore.InfoLevel,
	} {
		l, err := New(level, false)
		require.NoError(t, err)
		require.True(t, l.Core().Enabled(want), level)
		if want > zapcore.DebugLevel {
			require.False(t, l.Core().Enabled(want-1), level)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	require.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	require.Same(t, l, FromContext(WithLogger(context.Background(), l)))
}
