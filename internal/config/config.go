// Package config loads the CLI's run options from flags, environment
// variables, and an optional config file, in that precedence order, via
// viper — the same layering and env-prefix-binding idiom
// whit3rabbit-phpmixer's internal/config package uses for GOPHO_*,
// adapted here to JSD_*.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the resolved set of run options, independent of how each
// value was supplied.
type Config struct {
	Out                string
	Decoders           []string
	CallCountThreshold int
	ArraySizeThreshold int
	IterationCap       int
	MarkKeywords       []string
	Verbose            bool
	LogJSON            bool
	DebugDir           string
}

// Load builds a Config by layering, highest precedence first: flags
// explicitly set on the command line, JSD_*-prefixed environment
// variables, the config file at configPath (if any), then defaults.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("jsd")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("config: binding flags: %w", err)
	}

	return &Config{
		Out:                v.GetString("out"),
		Decoders:           v.GetStringSlice("decoder"),
		CallCountThreshold: v.GetInt("call-count-threshold"),
		ArraySizeThreshold: v.GetInt("array-size-threshold"),
		IterationCap:       v.GetInt("iteration-cap"),
		MarkKeywords:       v.GetStringSlice("mark"),
		Verbose:            v.GetBool("verbose"),
		LogJSON:            v.GetBool("log-json"),
		DebugDir:           v.GetString("debug-dir"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("out", "")
	v.SetDefault("call-count-threshold", 100)
	v.SetDefault("array-size-threshold", 100)
	v.SetDefault("iteration-cap", 100)
	v.SetDefault("verbose", false)
	v.SetDefault("log-json", false)
	v.SetDefault("debug-dir", "")
}
