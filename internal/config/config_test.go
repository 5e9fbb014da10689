package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.String("out", "", "")
	fs.StringSlice("decoder", nil, "")
	fs.Int("call-count-threshold", 100, "")
	fs.Int("array-size-threshold", 100, "")
	fs.Int("iteration-cap", 100, "")
	fs.StringSlice("mark", nil, "")
	fs.Bool("verbose", false, "")
	fs.Bool("log-json", false, "")
	fs.String("debug-dir", "", "")
	return fs
}

func TestLoadUsesDefaultsWhenNothingSet(t *testing.T) {
	cfg, err := Load("", newRunFlags())
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.CallCountThreshold)
	assert.Equal(t, 100, cfg.ArraySizeThreshold)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "", cfg.Out)
}

func TestLoadPrefersExplicitFlagOverDefault(t *testing.T) {
	fs := newRunFlags()
	require.NoError(t, fs.Set("call-count-threshold", "42"))
	require.NoError(t, fs.Set("verbose", "true"))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.CallCountThreshold)
	assert.True(t, cfg.Verbose)
}

func TestLoadPrefersEnvOverDefaultWhenFlagUnset(t *testing.T) {
	t.Setenv("JSD_ARRAY_SIZE_THRESHOLD", "7")

	cfg, err := Load("", newRunFlags())
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.ArraySizeThreshold)
}

func TestLoadRejectsUnreadableConfigFile(t *testing.T) {
	_, err := Load("/nonexistent/jsd-config.yaml", newRunFlags())
	assert.Error(t, err)
}
