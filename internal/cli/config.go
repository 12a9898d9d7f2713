package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// defaultConfigFile is picked up from the working directory when no
// --config flag is given.
const defaultConfigFile = "ptroute.toml"

// Config supplies defaults for trace and render parameters. Explicit flags
// always win over config values; the config only moves the flag defaults.
type Config struct {
	Trace  TraceConfig  `toml:"trace"`
	Render RenderConfig `toml:"render"`
}

// TraceConfig mirrors the probe-related flags.
type TraceConfig struct {
	MaxHops     int `toml:"max_hops"`
	Probes      int `toml:"probes"`
	TimeoutMs   int `toml:"timeout_ms"`
	Concurrency int `toml:"concurrency"`
	Repeat      int `toml:"repeat"`
	IntervalMs  int `toml:"interval_ms"`
}

// RenderConfig mirrors the render-related flags.
type RenderConfig struct {
	Width            int    `toml:"width"`
	Height           int    `toml:"height"`
	SamplesPerPixel  int    `toml:"spp"`
	Bounces          int    `toml:"bounces"`
	Seed             uint64 `toml:"seed"`
	ProgressEvery    int    `toml:"progress_every"`
	Threads          int    `toml:"threads"`
	ProgressiveEvery int    `toml:"progressive_every"`
}

// DefaultConfig returns the built-in parameter defaults.
func DefaultConfig() Config {
	return Config{
		Trace: TraceConfig{
			MaxHops:     30,
			Probes:      3,
			TimeoutMs:   2000,
			Concurrency: 4,
			Repeat:      1,
		},
		Render: RenderConfig{
			Width:           1600,
			Height:          900,
			SamplesPerPixel: 64,
			Bounces:         6,
			Seed:            1,
			ProgressEvery:   32,
		},
	}
}

// loadConfig merges the config file, when one exists, over the built-in
// defaults. A missing default file is fine; a missing explicit --config
// path is an error.
func (c *CLI) loadConfig() error {
	path := c.configPath
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("config %s: %w", path, err)
		}
		return nil
	}

	if _, err := toml.DecodeFile(path, &c.config); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	c.Logger.Debugf("loaded config from %s", path)
	return nil
}

// Flags parse before the config file loads, so flag defaults cannot carry
// config values. pickInt resolves a parameter after both are known: an
// explicitly set flag wins, then a non-zero config value, then the flag's
// built-in default.
func pickInt(cmd *cobra.Command, name string, flagVal, configVal int) int {
	if cmd.Flags().Changed(name) || configVal == 0 {
		return flagVal
	}
	return configVal
}

// pickUint64 is pickInt for uint64 parameters.
func pickUint64(cmd *cobra.Command, name string, flagVal, configVal uint64) uint64 {
	if cmd.Flags().Changed(name) || configVal == 0 {
		return flagVal
	}
	return configVal
}
