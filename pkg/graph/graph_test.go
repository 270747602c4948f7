package graph

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func sampleModel() Model {
	return Model{
		Nodes: []Node{
			{ID: 1, Title: "a", X: 200, Y: 300, Type: NodeTypeDone, Lines: []string{"a"}},
			{ID: 2, Title: "b", X: 200, Y: 500, Type: NodeTypeActionable, Lines: []string{"b"}},
		},
		Edges: []Edge{{Source: 1, Target: 2, Type: EdgeTypeNormal}},
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(sampleModel())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(got, sampleModel()) {
		t.Errorf("round trip = %+v, want %+v", got, sampleModel())
	}
}

func TestMarshalEmpty(t *testing.T) {
	data, err := Marshal(Model{})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"nodes":[],"edges":[]}`; string(data) != want {
		t.Errorf("Marshal(Model{}) = %s, want %s", data, want)
	}
}

func TestMarshalStable(t *testing.T) {
	a, _ := Marshal(sampleModel())
	b, _ := Marshal(sampleModel())
	if !bytes.Equal(a, b) {
		t.Errorf("Marshal() not stable:\n%s\n%s", a, b)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"nodes":"x"}`)); err == nil {
		t.Error("Unmarshal() expected error")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := WriteFile(sampleModel(), path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !reflect.DeepEqual(got, sampleModel()) {
		t.Errorf("ReadFile() = %+v", got)
	}
}

func TestWriteIndented(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(sampleModel(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\n  \"nodes\": [") {
		t.Errorf("Write() not indented:\n%s", buf.String())
	}
}

func TestModelNode(t *testing.T) {
	m := sampleModel()
	n, ok := m.Node(2)
	if !ok || n.Title != "b" {
		t.Errorf("Node(2) = %+v, %v", n, ok)
	}
	if _, ok := m.Node(3); ok {
		t.Error("Node(3) found a node")
	}
}

func TestBoundsEmpty(t *testing.T) {
	var m Model
	w, h := m.Bounds()
	if w != 400 || h != 500 {
		t.Errorf("Bounds() = %v, %v, want 400, 500", w, h)
	}
	if !m.Empty() {
		t.Error("Empty() = false")
	}
}
