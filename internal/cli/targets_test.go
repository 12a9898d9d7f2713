package cli

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	pterrors "github.com/ptroute/ptroute/pkg/errors"
)

func TestResolveTargetsArgsOnly(t *testing.T) {
	targets, err := resolveTargets([]string{"a.example", "b.example", "a.example"}, "")
	if err != nil {
		t.Fatalf("resolveTargets() error: %v", err)
	}
	if want := []string{"a.example", "b.example"}; !reflect.DeepEqual(targets, want) {
		t.Errorf("targets = %v, want %v", targets, want)
	}
}

func TestResolveTargetsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.txt")
	content := "# backbone\nc.example\n\n  d.example  \nc.example\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	targets, err := resolveTargets([]string{"a.example"}, path)
	if err != nil {
		t.Fatalf("resolveTargets() error: %v", err)
	}
	if want := []string{"a.example", "c.example", "d.example"}; !reflect.DeepEqual(targets, want) {
		t.Errorf("targets = %v, want %v", targets, want)
	}
}

func TestResolveTargetsEmpty(t *testing.T) {
	if _, err := resolveTargets(nil, ""); !errors.Is(err, errNoTargets) {
		t.Errorf("error = %v, want errNoTargets", err)
	}
}

func TestResolveTargetsMissingFile(t *testing.T) {
	if _, err := resolveTargets(nil, filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("missing targets file accepted")
	}
}

func TestResolveTargetsInvalidTarget(t *testing.T) {
	_, err := resolveTargets([]string{"ok.example", "-badflag"}, "")
	if err == nil {
		t.Fatal("invalid target accepted")
	}
	if !pterrors.Is(err, pterrors.ErrCodeInvalidTarget) {
		t.Errorf("error = %v, want INVALID_TARGET code", err)
	}
}
