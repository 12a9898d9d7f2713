package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ptroute/ptroute/pkg/trace"
)

// invadeOpts holds the command-line flags for the invade command.
type invadeOpts struct {
	targetsFile string // file with one target per line
	maxHops     int    // traceroute -m
	probes      int    // traceroute -q
	timeoutMs   int    // traceroute -w, in milliseconds
	plain       bool   // line output instead of the TUI
}

// invadeCommand creates the invade command, a live dashboard that shows
// hops appearing while traceroute is still probing.
func (c *CLI) invadeCommand() *cobra.Command {
	defaults := DefaultConfig().Trace
	opts := invadeOpts{
		maxHops:   defaults.MaxHops,
		probes:    defaults.Probes,
		timeoutMs: defaults.TimeoutMs,
	}

	cmd := &cobra.Command{
		Use:   "invade [targets...]",
		Short: "Watch paths unfold live while probing",
		Long: `Probe targets and draw each path as its hops answer, one section per
target. Use --plain for plain line output when no terminal is attached.
Only probe networks you own or have permission to test.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config.Trace
			opts.maxHops = pickInt(cmd, "max-hops", opts.maxHops, cfg.MaxHops)
			opts.probes = pickInt(cmd, "probes", opts.probes, cfg.Probes)
			opts.timeoutMs = pickInt(cmd, "timeout-ms", opts.timeoutMs, cfg.TimeoutMs)
			return c.runInvade(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.targetsFile, "targets", "", "file with one target per line")
	cmd.Flags().IntVar(&opts.maxHops, "max-hops", opts.maxHops, "maximum TTL to probe")
	cmd.Flags().IntVar(&opts.probes, "probes", opts.probes, "probes per hop")
	cmd.Flags().IntVar(&opts.timeoutMs, "timeout-ms", opts.timeoutMs, "per-probe timeout in milliseconds")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "plain line output instead of the dashboard")

	return cmd
}

// targetEvent tags a streamed trace event with the target it belongs to,
// so all targets can share one channel.
type targetEvent struct {
	target string
	event  trace.Event
}

func (c *CLI) runInvade(ctx context.Context, args []string, opts *invadeOpts) error {
	targets, err := resolveTargets(args, opts.targetsFile)
	if err != nil {
		return err
	}

	settings := trace.Settings{
		MaxHops:   opts.maxHops,
		Probes:    opts.probes,
		TimeoutMs: opts.timeoutMs,
	}

	events := make(chan targetEvent)
	var wg sync.WaitGroup
	for _, target := range targets {
		stream, err := trace.Stream(ctx, target, settings)
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
		wg.Add(1)
		go func(target string, stream <-chan trace.Event) {
			defer wg.Done()
			for ev := range stream {
				events <- targetEvent{target: target, event: ev}
			}
		}(target, stream)
	}
	go func() {
		wg.Wait()
		close(events)
	}()

	if opts.plain {
		return c.invadePlain(events)
	}

	model := newInvadeModel(targets, events)
	program := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(invadeModel); ok && m.failed > 0 {
		return fmt.Errorf("%d of %d targets failed", m.failed, len(targets))
	}
	return nil
}

// invadePlain consumes the event stream as log lines, for terminals that
// cannot host the dashboard.
func (c *CLI) invadePlain(events <-chan targetEvent) error {
	failed := map[string]bool{}
	for te := range events {
		switch te.event.Kind {
		case trace.EventHop:
			fmt.Printf("%s hop %2d %s\n", te.target, te.event.Hop.TTL, formatHop(te.event.Hop))
		case trace.EventError:
			c.Logger.Warnf("%s: %s", te.target, te.event.Message)
		case trace.EventDone:
			if te.event.Status != 0 {
				failed[te.target] = true
				printError("%s exited with status %d", te.target, te.event.Status)
			} else {
				printSuccess("%s done", te.target)
			}
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d targets failed", len(failed))
	}
	return nil
}

// invadeModel is the bubbletea model for the live dashboard: one section
// per target, hop rows filling in as probes answer.
type invadeModel struct {
	targets []string
	events  <-chan targetEvent

	hops    map[string][]trace.ParsedHop
	status  map[string]string
	running int
	failed  int
}

func newInvadeModel(targets []string, events <-chan targetEvent) invadeModel {
	status := make(map[string]string, len(targets))
	for _, t := range targets {
		status[t] = "probing"
	}
	return invadeModel{
		targets: targets,
		events:  events,
		hops:    make(map[string][]trace.ParsedHop, len(targets)),
		status:  status,
		running: len(targets),
	}
}

// streamClosedMsg reports that every target's stream has drained.
type streamClosedMsg struct{}

// waitForEvent blocks on the shared event channel as a bubbletea command.
func waitForEvent(events <-chan targetEvent) tea.Cmd {
	return func() tea.Msg {
		te, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return te
	}
}

func (m invadeModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m invadeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case targetEvent:
		switch msg.event.Kind {
		case trace.EventHop:
			m.recordHop(msg.target, msg.event.Hop)
		case trace.EventError:
			m.status[msg.target] = msg.event.Message
		case trace.EventDone:
			m.running--
			if msg.event.Status != 0 {
				m.failed++
				m.status[msg.target] = fmt.Sprintf("exit %d", msg.event.Status)
			} else {
				m.status[msg.target] = "done"
			}
		}
		return m, waitForEvent(m.events)

	case streamClosedMsg:
		return m, tea.Quit
	}
	return m, nil
}

// recordHop places a hop row at its TTL slot, growing the table as deeper
// hops answer.
func (m invadeModel) recordHop(target string, hop trace.ParsedHop) {
	rows := m.hops[target]
	for len(rows) < hop.TTL {
		rows = append(rows, trace.ParsedHop{})
	}
	rows[hop.TTL-1] = hop
	m.hops[target] = rows
}

func (m invadeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("ptroute invade"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n\n")

	for _, target := range m.targets {
		b.WriteString(StyleValue.Render(target))
		b.WriteString("  ")
		b.WriteString(StyleDim.Render(m.status[target]))
		b.WriteString("\n")

		for i, hop := range m.hops[target] {
			if hop.TTL == 0 {
				b.WriteString(StyleDim.Render(fmt.Sprintf("  %2d  ...", i+1)))
				b.WriteString("\n")
				continue
			}
			b.WriteString(fmt.Sprintf("  %2d  %s\n", hop.TTL, formatHop(hop)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// formatHop renders one hop row: address (or *) and its probe RTTs.
func formatHop(hop trace.ParsedHop) string {
	addr := "*"
	if hop.IP != nil {
		addr = *hop.IP
	}

	var rtts []string
	for _, rtt := range hop.RTTMs {
		if rtt == nil {
			rtts = append(rtts, "*")
			continue
		}
		rtts = append(rtts, fmt.Sprintf("%.1fms", *rtt))
	}
	return fmt.Sprintf("%-40s %s", addr, strings.Join(rtts, "  "))
}
