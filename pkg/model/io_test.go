package model

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")

	want := &GraphFile{
		Version: SchemaVersion,
		Nodes: []Node{
			{ID: "10.0.0.1", Seen: 2, LossProbes: 1},
			{ID: "unknown", Seen: 1, LossProbes: 3},
		},
		Edges: []Edge{
			{From: "10.0.0.1", To: "unknown", Seen: 2, RTTDeltaMsAvg: 4.25},
		},
	}

	if err := ExportJSON(path, want); err != nil {
		t.Fatalf("ExportJSON() error: %v", err)
	}

	got, err := ImportGraph(path)
	if err != nil {
		t.Fatalf("ImportGraph() error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip changed the document:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestExportUsesCamelCaseKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")

	doc := &GraphFile{
		Version: SchemaVersion,
		Nodes:   []Node{{ID: "a", LossProbes: 1}},
		Edges:   []Edge{{From: "a", To: "b", RTTDeltaMsAvg: 1}},
	}
	if err := ExportJSON(path, doc); err != nil {
		t.Fatalf("ExportJSON() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	for _, key := range []string{`"lossProbes"`, `"rttDeltaMsAvg"`, `"version"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("output missing key %s", key)
		}
	}
}

func TestImportRejectsWrongVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	if err := os.WriteFile(path, []byte(`{"version": 2, "nodes": [], "edges": []}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ImportGraph(path); !errors.Is(err, ErrVersion) {
		t.Errorf("ImportGraph() error = %v, want ErrVersion", err)
	}
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "traces.json")
	if err := os.WriteFile(path, []byte(`{"version": 1, "runs": [`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ImportTraces(path); err == nil {
		t.Error("ImportTraces() accepted truncated JSON")
	}
}

func TestImportMissingFile(t *testing.T) {
	if _, err := ImportScene(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("ImportScene() accepted a missing file")
	}
}

func TestImportToleratesDanglingEdges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	doc := `{"version": 1, "nodes": [{"id": "a", "seen": 1, "lossProbes": 0}],
		"edges": [{"from": "a", "to": "ghost", "seen": 1, "rttDeltaMsAvg": 0}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	g, err := ImportGraph(path)
	if err != nil {
		t.Fatalf("ImportGraph() error: %v", err)
	}
	if len(g.Edges) != 1 || g.Edges[0].To != "ghost" {
		t.Errorf("dangling edge not preserved: %+v", g.Edges)
	}
}

func TestWriteAtomicLeavesNoDebris(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := WriteAtomic(path, []byte("{}")); err != nil {
		t.Fatalf("WriteAtomic() error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory contains %v, want only out.json", names)
	}
}

func TestWriteAtomicReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := WriteAtomic(path, []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := WriteAtomic(path, []byte("new")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Errorf("content = %q, want %q", data, "new")
	}
}

func TestWriteAtomicCreatesParents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "out.json")
	if err := WriteAtomic(path, []byte("{}")); err != nil {
		t.Fatalf("WriteAtomic() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestHopID(t *testing.T) {
	ip := "10.0.0.1"
	if got := (Hop{TTL: 1, IP: &ip}).ID(); got != "10.0.0.1" {
		t.Errorf("ID() = %q, want 10.0.0.1", got)
	}
	if got := (Hop{TTL: 2}).ID(); got != UnknownHopID {
		t.Errorf("ID() = %q, want %q", got, UnknownHopID)
	}
}
