package trace

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ptroute/ptroute/pkg/model"
)

// ErrNoTarget is returned when traceroute output lacks the header line
// naming the target.
var ErrNoTarget = errors.New("missing target in traceroute output")

// ParsedRun is one parsed traceroute invocation.
type ParsedRun struct {
	Target string
	Hops   []model.Hop
}

// Parse reads traceroute -n output: a header line naming the target,
// followed by one line per TTL. Lines that are neither are ignored, which
// keeps the parser tolerant of banner noise from wrapper scripts.
func Parse(text string) (*ParsedRun, error) {
	var target string
	var hops []model.Hop

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(strings.ToLower(line), "traceroute") {
			if target == "" {
				target = parseTarget(line)
			}
			continue
		}

		if line[0] < '0' || line[0] > '9' {
			continue
		}

		hop, err := parseHopLine(line)
		if err != nil {
			return nil, err
		}
		hops = append(hops, hop)
	}

	if target == "" {
		return nil, ErrNoTarget
	}
	return &ParsedRun{Target: target, Hops: hops}, nil
}

// parseTarget extracts the traced address from the header, preferring the
// parenthesized numeric form: "traceroute to host (1.2.3.4), 30 hops max".
func parseTarget(line string) string {
	if start := strings.IndexByte(line, '('); start >= 0 {
		if end := strings.IndexByte(line[start+1:], ')'); end >= 0 {
			if inside := strings.TrimSpace(line[start+1 : start+1+end]); inside != "" {
				return inside
			}
		}
	}

	lower := strings.ToLower(line)
	if idx := strings.Index(lower, "traceroute to "); idx >= 0 {
		rest := line[idx+len("traceroute to "):]
		token := strings.FieldsFunc(rest, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ','
		})
		if len(token) > 0 && token[0] != "" {
			return token[0]
		}
	}

	return ""
}

// parseHopLine reads one TTL line. The first address token becomes the hop
// ip; every "*" is a lost probe; "N ms" pairs and "Nms" tokens are RTTs;
// "!X" annotations are skipped.
func parseHopLine(line string) (model.Hop, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return model.Hop{}, errors.New("empty hop line")
	}

	ttl, err := strconv.Atoi(tokens[0])
	if err != nil {
		return model.Hop{}, errors.New("invalid ttl token: " + tokens[0])
	}

	hop := model.Hop{TTL: ttl}

	for i := 1; i < len(tokens); {
		tok := tokens[i]

		switch {
		case tok == "*":
			hop.RTTMs = append(hop.RTTMs, nil)
			i++
		case strings.HasPrefix(tok, "!"):
			i++
		case isAddress(tok):
			if hop.IP == nil {
				ip := tok
				hop.IP = &ip
			}
			i++
		default:
			var next string
			if i+1 < len(tokens) {
				next = tokens[i+1]
			}
			if val, consumedNext, ok := parseRTT(tok, next); ok {
				rtt := val
				hop.RTTMs = append(hop.RTTMs, &rtt)
				if consumedNext {
					i += 2
					continue
				}
			}
			i++
		}
	}

	return hop, nil
}

func isAddress(token string) bool {
	if strings.HasSuffix(token, "ms") {
		return false
	}
	return isIPv4(token) || isIPv6(token)
}

func isIPv4(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if part == "" || len(part) > 3 {
			return false
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

func isIPv6(token string) bool {
	if !strings.Contains(token, ":") {
		return false
	}
	for _, r := range token {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F', r == ':':
		default:
			return false
		}
	}
	return true
}

// parseRTT handles both "12.3ms" and the split "12.3 ms" token pair.
// The second return reports whether the next token was consumed.
func parseRTT(token, next string) (float64, bool, bool) {
	if num, ok := strings.CutSuffix(token, "ms"); ok {
		if val, err := strconv.ParseFloat(num, 64); err == nil {
			return val, false, true
		}
	}

	if val, err := strconv.ParseFloat(token, 64); err == nil {
		if next == "ms" || strings.HasPrefix(next, "ms") {
			return val, true, true
		}
	}

	return 0, false, false
}
