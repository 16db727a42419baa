package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestJSONWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	w := &JSONWriter{Precision: 0, SaveIndices: true, SaveLabels: true, SaveSources: true, Measure: "dist_osa"}
	if err := w.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := w.Write(buildMatrix()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var doc jsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.Measure != "dist_osa" {
		t.Fatalf("measure = %q, want dist_osa", doc.Measure)
	}
	if len(doc.Matrix) != 2 || len(doc.Matrix[0]) != 2 {
		t.Fatalf("matrix shape = %v, want 2x2", doc.Matrix)
	}
	if doc.Matrix[0][1] != 0.5 {
		t.Fatalf("matrix[0][1] = %v, want 0.5", doc.Matrix[0][1])
	}
	if len(doc.Indices) != 2 || len(doc.Labels) != 2 || len(doc.Sources) != 2 {
		t.Fatalf("expected indices/labels/sources of length 2, got %d/%d/%d", len(doc.Indices), len(doc.Labels), len(doc.Sources))
	}
}

func TestJSONWriterOmitsEmptyOptionalFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	w := &JSONWriter{Measure: "dist_osa"}
	if err := w.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := w.Write(buildMatrix()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"labels", "sources", "indices"} {
		if _, present := generic[key]; present {
			t.Fatalf("expected %q to be omitted when not requested", key)
		}
	}
}
