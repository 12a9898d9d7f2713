package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	pterrors "github.com/ptroute/ptroute/pkg/errors"
)

// errNoTargets is returned when neither arguments nor a targets file yield
// any target to probe.
var errNoTargets = errors.New("no targets given")

// resolveTargets merges positional arguments with the optional targets
// file, preserving order and dropping duplicates. The file format is one
// target per line; blank lines and #-comments are skipped.
func resolveTargets(args []string, file string) ([]string, error) {
	var targets []string
	var invalid error
	seen := map[string]bool{}

	add := func(t string) {
		if t == "" || seen[t] {
			return
		}
		if err := pterrors.ValidateTarget(t); err != nil {
			if invalid == nil {
				invalid = err
			}
			return
		}
		seen[t] = true
		targets = append(targets, t)
	}

	for _, arg := range args {
		add(strings.TrimSpace(arg))
	}

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("targets file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			add(line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("targets file: %w", err)
		}
	}

	if invalid != nil {
		return nil, invalid
	}
	if len(targets) == 0 {
		return nil, errNoTargets
	}
	return targets, nil
}
