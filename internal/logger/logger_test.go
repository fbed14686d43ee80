package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	l, err := New("debug", "json")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("warn", "")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", "console")
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestMust_FallsBack(t *testing.T) {
	l := Must("loud", "console")
	require.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}
