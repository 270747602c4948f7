package graph

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// =============================================================================
// Model Serialization API
// =============================================================================

// Marshal converts a Model to compact JSON bytes. The output is stable for a
// given model and is used as the artifact cache key input.
func Marshal(m Model) ([]byte, error) {
	data, err := json.Marshal(normalize(m))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// Unmarshal decodes JSON bytes into a Model.
func Unmarshal(data []byte) (Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return Model{}, fmt.Errorf("decode: %w", err)
	}
	return normalize(m), nil
}

// Write writes a Model as indented JSON to w.
func Write(m Model, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalize(m)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a Model to a JSON file.
func WriteFile(m Model, path string) error {
	var buf bytes.Buffer
	if err := Write(m, &buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadFile reads a Model from a JSON file.
func ReadFile(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Model{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}

// normalize replaces nil slices so JSON output always has arrays.
func normalize(m Model) Model {
	if m.Nodes == nil {
		m.Nodes = []Node{}
	}
	if m.Edges == nil {
		m.Edges = []Edge{}
	}
	for i := range m.Nodes {
		if m.Nodes[i].Lines == nil {
			m.Nodes[i].Lines = []string{}
		}
	}
	return m
}
