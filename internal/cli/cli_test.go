package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".cache", "ptroute")
	if dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-test")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-test", "ptroute") {
		t.Errorf("cacheDir() = %q, want under XDG_CACHE_HOME", dir)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := newTestCLI()
	root := c.RootCommand()

	want := []string{"trace", "build", "layout", "render", "run", "graph", "serve", "invade", "doctor", "completion"}
	have := map[string]bool{}
	for _, cmd := range root.Commands() {
		have[strings.Fields(cmd.Use)[0]] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestPickInt(t *testing.T) {
	cmd := &cobra.Command{}
	val := 10
	cmd.Flags().IntVar(&val, "n", 10, "")

	// Unset flag, config present: config wins.
	if got := pickInt(cmd, "n", val, 25); got != 25 {
		t.Errorf("pickInt() = %d, want 25 (config)", got)
	}

	// Unset flag, zero config: flag default wins.
	if got := pickInt(cmd, "n", val, 0); got != 10 {
		t.Errorf("pickInt() = %d, want 10 (default)", got)
	}

	// Set flag beats the config.
	if err := cmd.Flags().Set("n", "99"); err != nil {
		t.Fatal(err)
	}
	if got := pickInt(cmd, "n", val, 25); got != 99 {
		t.Errorf("pickInt() = %d, want 99 (flag)", got)
	}
}

func TestHostInfo(t *testing.T) {
	info := hostInfo()
	if info.OS == "" || info.Arch == "" {
		t.Errorf("hostInfo() = %+v, want OS and Arch set", info)
	}
}
