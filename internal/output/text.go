package output

import (
	"bufio"
	"fmt"
	"os"

	"github.com/krieck-labs/strmx/internal/matrix"
)

// TextWriter generalizes
// _examples/original_source/src/output/output_stdout.c: one row per
// matrix row, separator-joined values, optional '#'-prefixed header
// lines and per-row trailer columns for indices/labels/sources.
type TextWriter struct {
	Separator   string
	Precision   int
	SaveIndices bool
	SaveLabels  bool
	SaveSources bool

	f *os.File
	w *bufio.Writer
}

func (t *TextWriter) Open(path string) error {
	if path == "" || path == "-" {
		t.w = bufio.NewWriter(os.Stdout)
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	t.f = f
	t.w = bufio.NewWriter(f)
	return nil
}

func (t *TextWriter) Write(m *matrix.HMatrix) (int, error) {
	sep := t.Separator
	if sep == "" {
		sep = ","
	}
	if t.SaveIndices {
		fmt.Fprint(t.w, "#")
		for j := m.X.I; j < m.X.N; j++ {
			fmt.Fprintf(t.w, " %d", j)
		}
		fmt.Fprintln(t.w)
	}
	if t.SaveLabels {
		fmt.Fprint(t.w, "#")
		for j := m.X.I; j < m.X.N; j++ {
			fmt.Fprintf(t.w, " %g", labelAt(m, j))
		}
		fmt.Fprintln(t.w)
	}
	if t.SaveSources {
		fmt.Fprint(t.w, "#")
		for j := m.X.I; j < m.X.N; j++ {
			fmt.Fprintf(t.w, " %s", sourceAt(m, j))
		}
		fmt.Fprintln(t.w)
	}

	k := 0
	for i := m.Y.I; i < m.Y.N; i++ {
		for j := m.X.I; j < m.X.N; j++ {
			v := Round(float64(m.Get(j, i)), t.Precision)
			fmt.Fprintf(t.w, "%g", v)
			if j < m.X.N-1 {
				fmt.Fprint(t.w, sep)
			}
			k++
		}
		if t.SaveIndices || t.SaveLabels || t.SaveSources {
			fmt.Fprint(t.w, " #")
		}
		if t.SaveIndices {
			fmt.Fprintf(t.w, " %d", i)
		}
		if t.SaveLabels {
			fmt.Fprintf(t.w, " %g", labelAt(m, i))
		}
		if t.SaveSources {
			fmt.Fprintf(t.w, " %s", sourceAt(m, i))
		}
		fmt.Fprintln(t.w)
	}
	if err := t.w.Flush(); err != nil {
		return k, err
	}
	return k, nil
}

func (t *TextWriter) Close() error {
	if t.f == nil {
		return nil
	}
	return t.f.Close()
}

func labelAt(m *matrix.HMatrix, idx int) float64 {
	if idx < 0 || idx >= len(m.Labels) {
		return 0
	}
	return m.Labels[idx]
}

func sourceAt(m *matrix.HMatrix, idx int) string {
	if idx < 0 || idx >= len(m.Sources) {
		return ""
	}
	return m.Sources[idx]
}
