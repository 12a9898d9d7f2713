package trace

import (
	"errors"
	"testing"
)

const sampleOutput = `traceroute to example.com (93.184.216.34), 30 hops max, 60 byte packets
 1  192.168.1.1  1.234 ms  1.100 ms  0.987 ms
 2  10.0.0.1  5.5 ms  *  6.1 ms
 3  * * *
 4  203.0.113.9  20.0 ms !X  21.5 ms  19.8 ms
`

func TestParse(t *testing.T) {
	run, err := Parse(sampleOutput)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if run.Target != "93.184.216.34" {
		t.Errorf("Target = %q, want %q", run.Target, "93.184.216.34")
	}
	if len(run.Hops) != 4 {
		t.Fatalf("len(Hops) = %d, want 4", len(run.Hops))
	}

	hop1 := run.Hops[0]
	if hop1.TTL != 1 {
		t.Errorf("hop 1 TTL = %d, want 1", hop1.TTL)
	}
	if hop1.IP == nil || *hop1.IP != "192.168.1.1" {
		t.Errorf("hop 1 IP = %v, want 192.168.1.1", hop1.IP)
	}
	if len(hop1.RTTMs) != 3 {
		t.Fatalf("hop 1 len(RTTMs) = %d, want 3", len(hop1.RTTMs))
	}
	if hop1.RTTMs[0] == nil || *hop1.RTTMs[0] != 1.234 {
		t.Errorf("hop 1 RTTMs[0] = %v, want 1.234", hop1.RTTMs[0])
	}

	hop2 := run.Hops[1]
	if len(hop2.RTTMs) != 3 {
		t.Fatalf("hop 2 len(RTTMs) = %d, want 3", len(hop2.RTTMs))
	}
	if hop2.RTTMs[1] != nil {
		t.Errorf("hop 2 RTTMs[1] = %v, want nil (lost probe)", *hop2.RTTMs[1])
	}

	hop3 := run.Hops[2]
	if hop3.IP != nil {
		t.Errorf("hop 3 IP = %q, want nil (silent hop)", *hop3.IP)
	}
	for i, rtt := range hop3.RTTMs {
		if rtt != nil {
			t.Errorf("hop 3 RTTMs[%d] = %v, want nil", i, *rtt)
		}
	}

	// The !X annotation must not become an RTT.
	hop4 := run.Hops[3]
	if len(hop4.RTTMs) != 3 {
		t.Errorf("hop 4 len(RTTMs) = %d, want 3", len(hop4.RTTMs))
	}
}

func TestParseAttachedMsSuffix(t *testing.T) {
	out := "traceroute to host (10.1.1.1), 30 hops max\n 1  10.0.0.1  12.3ms  14.0ms  13.1ms\n"
	run, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(run.Hops) != 1 {
		t.Fatalf("len(Hops) = %d, want 1", len(run.Hops))
	}
	rtts := run.Hops[0].RTTMs
	if len(rtts) != 3 || rtts[0] == nil || *rtts[0] != 12.3 {
		t.Errorf("RTTMs = %v, want three values starting with 12.3", rtts)
	}
}

func TestParseHeaderWithoutParens(t *testing.T) {
	out := "traceroute to 198.51.100.7, 30 hops max\n 1  198.51.100.1  1.0 ms\n"
	run, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if run.Target != "198.51.100.7" {
		t.Errorf("Target = %q, want 198.51.100.7", run.Target)
	}
}

func TestParseMissingTarget(t *testing.T) {
	if _, err := Parse(" 1  10.0.0.1  1.0 ms\n"); !errors.Is(err, ErrNoTarget) {
		t.Errorf("Parse() error = %v, want ErrNoTarget", err)
	}
}

func TestParseIgnoresNoise(t *testing.T) {
	out := "some wrapper banner\ntraceroute to host (10.1.1.1), 30 hops max\nwarning: bla\n 1  10.0.0.1  1.0 ms\n"
	run, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(run.Hops) != 1 {
		t.Errorf("len(Hops) = %d, want 1", len(run.Hops))
	}
}

func TestParseIPv6Hop(t *testing.T) {
	out := "traceroute to host (2001:db8::1), 30 hops max\n 1  2001:db8::ff  3.2 ms\n"
	run, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if run.Hops[0].IP == nil || *run.Hops[0].IP != "2001:db8::ff" {
		t.Errorf("IP = %v, want 2001:db8::ff", run.Hops[0].IP)
	}
}

func TestIsAddress(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{"10.0.0.1", true},
		{"255.255.255.255", true},
		{"2001:db8::1", true},
		{"256.1.1.1", false},
		{"1.2.3", false},
		{"12.3ms", false},
		{"hostname", false},
	}
	for _, tc := range cases {
		if got := isAddress(tc.token); got != tc.want {
			t.Errorf("isAddress(%q) = %v, want %v", tc.token, got, tc.want)
		}
	}
}
