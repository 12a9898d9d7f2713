// Package trace invokes the system traceroute tool and parses its numeric
// output into probe runs. It only ever shells out; there is no raw-socket
// probing in this repository, so no elevated privileges are needed beyond
// what traceroute itself requires.
package trace

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ptroute/ptroute/pkg/errors"
)

// Settings control a single traceroute invocation.
type Settings struct {
	MaxHops   int
	Probes    int
	TimeoutMs int
}

// DefaultSettings mirror the traceroute defaults most systems ship with.
func DefaultSettings() Settings {
	return Settings{MaxHops: 30, Probes: 3, TimeoutMs: 2000}
}

// Runner produces raw traceroute output for a target. The system
// implementation shells out; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, target string, settings Settings) (string, error)
}

// SystemRunner invokes the traceroute binary in numeric mode.
type SystemRunner struct{}

// Run executes `traceroute -n -q <probes> -m <maxhops> -w <timeout>` and
// returns its stdout. A non-zero exit is an error carrying both output
// streams for diagnosis.
func (SystemRunner) Run(ctx context.Context, target string, settings Settings) (string, error) {
	timeoutSecs := max((settings.TimeoutMs+999)/1000, 1)

	cmd := exec.CommandContext(ctx, "traceroute",
		"-n",
		"-q", strconv.Itoa(settings.Probes),
		"-m", strconv.Itoa(settings.MaxHops),
		"-w", strconv.Itoa(timeoutSecs),
		target,
	)

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", errors.Wrap(errors.ErrCodeProbeFailed, err,
				"traceroute %s: %s", target, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("traceroute %s: %w", target, err)
	}
	return string(out), nil
}
