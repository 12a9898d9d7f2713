package errors

import (
	"strings"
	"unicode"
)

// ValidateTarget validates a probe target before it is handed to the
// traceroute binary as an argument. Targets are hostnames or IP addresses;
// anything else is rejected before a process is spawned.
//
// The validation rules are intentionally conservative:
//   - No empty targets
//   - No control characters or whitespace
//   - No leading dash (would parse as a traceroute flag)
//   - Maximum length of 253 characters (DNS name limit)
//
// Whether the target actually resolves is left to traceroute itself.
func ValidateTarget(target string) error {
	if target == "" {
		return New(ErrCodeInvalidTarget, "target cannot be empty")
	}

	if len(target) > 253 {
		return New(ErrCodeInvalidTarget, "target too long (max 253 characters)")
	}

	if strings.HasPrefix(target, "-") {
		return New(ErrCodeInvalidTarget, "target cannot start with a dash: %q", target)
	}

	for _, r := range target {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidTarget, "target contains whitespace or control characters: %q", target)
		}
	}

	// Hostnames and IP literals only use a narrow character set; anything
	// outside it is a typo or an injection attempt.
	for _, r := range target {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune(".-:%_[]", r) {
			return New(ErrCodeInvalidTarget, "target contains invalid character %q", r)
		}
	}

	return nil
}
