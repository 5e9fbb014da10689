package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestBuildLoggerSetsLevelFromVerbose(t *testing.T) {
	log, err := buildLogger(false, false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = buildLogger(true, false)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestBuildLoggerAcceptsJSONMode(t *testing.T) {
	_, err := buildLogger(false, true)
	assert.NoError(t, err)
}
