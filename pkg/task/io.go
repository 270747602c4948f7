package task

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format identifies a task file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension. Unknown extensions
// are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// document is the on-disk shape. A bare array of records is also accepted
// when reading.
type document struct {
	Tasks []Record `json:"tasks" yaml:"tasks"`
}

// Read decodes a task batch from r.
//
// The input is either an array of records or an object with a "tasks" array:
//
//	[{"id": 1, "text": "write", "completed": false, "successorIds": [2]},
//	 {"id": 2, "text": "ship", "completed": false, "successorIds": []}]
//
// Record order is preserved; it drives column assignment. Read does not
// check successor references, that is left to the graph builder.
func Read(r io.Reader, format Format) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []Record{}, nil
	}

	switch format {
	case FormatYAML:
		return decodeYAML(trimmed)
	case FormatJSON, "":
		return decodeJSON(trimmed)
	default:
		return nil, fmt.Errorf("unsupported task format %q", format)
	}
}

func decodeJSON(data []byte) ([]Record, error) {
	if data[0] == '[' {
		var records []Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return nonNil(records), nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return nonNil(doc.Tasks), nil
}

func decodeYAML(data []byte) ([]Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		var records []Record
		if err := node.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return nonNil(records), nil
	}
	var doc document
	if err := node.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return nonNil(doc.Tasks), nil
}

func nonNil(records []Record) []Record {
	if records == nil {
		return []Record{}
	}
	for i := range records {
		if records[i].SuccessorIDs == nil {
			records[i].SuccessorIDs = []int{}
		}
	}
	return records
}

// ReadFile reads a task file, picking the decoder from its extension.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	records, err := Read(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Write encodes records to w as a {"tasks": [...]} document.
func Write(w io.Writer, records []Record, format Format) error {
	doc := document{Tasks: nonNil(CloneAll(records))}
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported task format %q", format)
	}
}

// WriteFile writes records to path. The write is atomic (temp file + rename)
// so file watchers never observe a half-written batch.
func WriteFile(path string, records []Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := Write(tmp, records, FormatFromPath(path)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
