package errors

import (
	"strings"
	"testing"
)

func TestValidateTargetAccepts(t *testing.T) {
	valid := []string{
		"example.com",
		"sub.domain.example.com",
		"10.0.0.1",
		"2001:db8::1",
		"host-with-dash.net",
		"node_1.local",
	}
	for _, target := range valid {
		if err := ValidateTarget(target); err != nil {
			t.Errorf("ValidateTarget(%q) = %v, want nil", target, err)
		}
	}
}

func TestValidateTargetRejects(t *testing.T) {
	invalid := []string{
		"",
		"-m",
		"--flag",
		"host name",
		"host\tname",
		"host\nname",
		"host;rm -rf /",
		"$(whoami)",
		strings.Repeat("a", 254),
	}
	for _, target := range invalid {
		err := ValidateTarget(target)
		if err == nil {
			t.Errorf("ValidateTarget(%q) accepted", target)
			continue
		}
		if !Is(err, ErrCodeInvalidTarget) {
			t.Errorf("ValidateTarget(%q) code = %v, want %v", target, GetCode(err), ErrCodeInvalidTarget)
		}
	}
}
