package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrVersion is returned when a document carries an unsupported schema version.
var ErrVersion = errors.New("unsupported document version")

// ImportTraces reads and validates a TraceFile from path.
func ImportTraces(path string) (*TraceFile, error) {
	var doc TraceFile
	if err := importJSON(path, &doc); err != nil {
		return nil, err
	}
	if doc.Version != SchemaVersion {
		return nil, fmt.Errorf("%s: %w %d", path, ErrVersion, doc.Version)
	}
	return &doc, nil
}

// ImportGraph reads and validates a GraphFile from path.
func ImportGraph(path string) (*GraphFile, error) {
	var doc GraphFile
	if err := importJSON(path, &doc); err != nil {
		return nil, err
	}
	if doc.Version != SchemaVersion {
		return nil, fmt.Errorf("%s: %w %d", path, ErrVersion, doc.Version)
	}
	return &doc, nil
}

// ImportScene reads and validates a SceneFile from path.
func ImportScene(path string) (*SceneFile, error) {
	var doc SceneFile
	if err := importJSON(path, &doc); err != nil {
		return nil, err
	}
	if doc.Version != SchemaVersion {
		return nil, fmt.Errorf("%s: %w %d", path, ErrVersion, doc.Version)
	}
	return &doc, nil
}

func importJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// ExportJSON encodes v with two-space indentation and writes it to path via
// WriteAtomic, creating parent directories as needed.
func ExportJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteAtomic(path, buf.Bytes())
}

// WriteAtomic writes data to path through a temp file in the same directory
// followed by a rename, so readers never observe a partial file and a failed
// write never corrupts a previously written one.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp := tempPath(path)
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func tempPath(path string) string {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return filepath.Join(dir, fmt.Sprintf(".%s.part-%d-%d", name, os.Getpid(), time.Now().UnixNano()))
}
