// Package cli implements the ptroute command-line interface.
//
// The pipeline stages each get a command (trace, build, layout, render),
// plus run (the whole pipeline into one output directory), graph (2D
// node-link export), serve (progressive render over HTTP), invade (live
// probe dashboard), and doctor (environment checks). Commands log through
// charmbracelet/log; verbosity is a persistent flag.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ptroute/ptroute/pkg/buildinfo"
	"github.com/ptroute/ptroute/pkg/cache"
)

// appName is the application name used for directories and display.
const appName = "ptroute"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     Config
}

// New creates a new CLI instance with a default logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands
// registered. Flag defaults come from the optional config file, so the
// config is loaded in PersistentPreRunE before any command runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "ptroute renders measured network paths as 3D path-traced images",
		Long:         `ptroute probes network paths with traceroute, aggregates the runs into a statistics graph, lays the graph out in 3D, and renders it with a CPU path tracer. Only target networks you own or have permission to test.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.registerHooks()
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./ptroute.toml if present)")

	root.AddCommand(c.traceCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.invadeCommand())
	root.AddCommand(c.doctorCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCache returns the probe cache: file-backed under the XDG cache dir, or
// the null cache when disabled or the directory is unusable.
func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.Null{}
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.Null{}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.Null{}
	}
	return fc
}

// cacheDir returns the cache directory using the XDG convention
// (~/.cache/ptroute/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
