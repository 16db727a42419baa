package output

import (
	"encoding/json"
	"os"

	"github.com/krieck-labs/strmx/internal/matrix"
)

// JSONWriter generalizes
// _examples/original_source/src/output/output_json.h's interface: one
// object with matrix, labels, sources, indices and measure fields.
type JSONWriter struct {
	Precision   int
	SaveIndices bool
	SaveLabels  bool
	SaveSources bool
	Measure     string

	path string
}

type jsonDoc struct {
	Matrix  [][]float64 `json:"matrix"`
	Labels  []float64   `json:"labels,omitempty"`
	Sources []string    `json:"sources,omitempty"`
	Indices []int       `json:"indices,omitempty"`
	Measure string      `json:"measure"`
}

func (w *JSONWriter) Open(path string) error {
	w.path = path
	return nil
}

func (w *JSONWriter) Write(m *matrix.HMatrix) (int, error) {
	doc := jsonDoc{Measure: w.Measure}
	k := 0
	for i := m.Y.I; i < m.Y.N; i++ {
		row := make([]float64, 0, m.X.Len())
		for j := m.X.I; j < m.X.N; j++ {
			row = append(row, Round(float64(m.Get(j, i)), w.Precision))
			k++
		}
		doc.Matrix = append(doc.Matrix, row)
	}
	if w.SaveIndices {
		for j := m.X.I; j < m.X.N; j++ {
			doc.Indices = append(doc.Indices, j)
		}
	}
	if w.SaveLabels {
		for j := m.X.I; j < m.X.N; j++ {
			doc.Labels = append(doc.Labels, labelAt(m, j))
		}
	}
	if w.SaveSources {
		for j := m.X.I; j < m.X.N; j++ {
			doc.Sources = append(doc.Sources, sourceAt(m, j))
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return 0, err
	}
	if w.path == "" || w.path == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return k, err
	}
	return k, os.WriteFile(w.path, data, 0644)
}

func (w *JSONWriter) Close() error { return nil }
