package cache

import (
	"strings"
	"testing"
)

func TestKeyStable(t *testing.T) {
	k1 := Key("trace", "example.com", 30, 3)
	k2 := Key("trace", "example.com", 30, 3)
	if k1 != k2 {
		t.Errorf("same parts gave different keys: %q vs %q", k1, k2)
	}
}

func TestKeyDistinguishesParts(t *testing.T) {
	base := Key("trace", "example.com", 30)
	if base == Key("trace", "example.com", 10) {
		t.Error("different parts collided")
	}
	if base == Key("graph", "example.com", 30) {
		t.Error("different prefixes collided")
	}
}

func TestKeyPrefix(t *testing.T) {
	k := Key("trace", "example.com")
	if !strings.HasPrefix(k, "trace-") {
		t.Errorf("key %q missing prefix", k)
	}
}
