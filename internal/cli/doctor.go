package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ptroute/ptroute/pkg/buildinfo"
)

// doctorCommand creates the doctor command, which checks that the
// environment can run the pipeline.
func (c *CLI) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the environment can run the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDoctor()
		},
	}
}

// runDoctor runs every environment check and reports each one. Only a
// missing traceroute binary fails the command; everything else degrades.
func (c *CLI) runDoctor() error {
	printInfo("%s %s (%s/%s)", appName, buildinfo.Version, runtime.GOOS, runtime.GOARCH)

	ok := true

	if path, err := exec.LookPath("traceroute"); err != nil {
		ok = false
		printError("traceroute not found in PATH")
		printDetail("install it via your package manager, e.g. apt install traceroute")
	} else {
		printSuccess("traceroute at %s", path)
	}

	if dir, err := cacheDir(); err != nil {
		printWarning("cache dir unavailable: %v (probes will not be cached)", err)
	} else if err := checkWritable(dir); err != nil {
		printWarning("cache dir %s not writable: %v (probes will not be cached)", dir, err)
	} else {
		printSuccess("cache dir %s writable", dir)
	}

	if c.configPath != "" || fileExists(defaultConfigFile) {
		path := c.configPath
		if path == "" {
			path = defaultConfigFile
		}
		printSuccess("config %s loaded", path)
	} else {
		printDetail("no config file (using built-in defaults)")
	}

	if !ok {
		return fmt.Errorf("environment checks failed")
	}
	return nil
}

// checkWritable creates the directory and probes it with a throwaway file.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".doctor")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
