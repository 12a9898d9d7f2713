package trace

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// EventKind discriminates streamed trace events.
type EventKind int

const (
	// EventHop carries an updated hop row.
	EventHop EventKind = iota
	// EventDone reports process exit; Status holds the exit code.
	EventDone
	// EventError carries traceroute's stderr, collapsed to one message.
	EventError
)

// Event is one update from a streaming traceroute. Hop is set for EventHop,
// Message for EventError, Status for EventDone.
type Event struct {
	Kind    EventKind
	Hop     ParsedHop
	Message string
	Status  int
}

// ParsedHop is a hop row as it appears live, before run aggregation.
type ParsedHop struct {
	TTL   int
	IP    *string
	RTTMs []*float64
}

// Stream launches traceroute for a single target and emits hop updates as
// lines arrive, so a UI can draw the path while probing is still under way.
// The returned channel closes after EventDone. Cancelling the context kills
// the process.
func Stream(ctx context.Context, target string, settings Settings) (<-chan Event, error) {
	timeoutSecs := max((settings.TimeoutMs+999)/1000, 1)

	cmd := exec.CommandContext(ctx, "traceroute",
		"-n",
		"-q", strconv.Itoa(settings.Probes),
		"-m", strconv.Itoa(settings.MaxHops),
		"-w", strconv.Itoa(timeoutSecs),
		target,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("traceroute stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("traceroute stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start traceroute: %w", err)
	}

	events := make(chan Event, 16)
	stderrDone := make(chan string, 1)

	go func() {
		var parts []string
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				parts = append(parts, line)
			}
		}
		stderrDone <- strings.Join(parts, " ")
	}()

	go func() {
		defer close(events)

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || line[0] < '0' || line[0] > '9' {
				continue
			}
			hop, err := parseHopLine(line)
			if err != nil {
				continue
			}
			events <- Event{Kind: EventHop, Hop: ParsedHop{TTL: hop.TTL, IP: hop.IP, RTTMs: hop.RTTMs}}
		}

		if msg := <-stderrDone; msg != "" {
			events <- Event{Kind: EventError, Message: msg}
		}

		status := 0
		if err := cmd.Wait(); err != nil {
			status = -1
			if exitErr, ok := err.(*exec.ExitError); ok {
				status = exitErr.ExitCode()
			}
		}
		events <- Event{Kind: EventDone, Status: status}
	}()

	return events, nil
}
