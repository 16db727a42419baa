package output

import (
	"bufio"
	"fmt"
	"os"

	"github.com/krieck-labs/strmx/internal/matrix"
)

// LibSVMWriter emits "label index:value ..." per row, sparse (values
// below a small epsilon are omitted) or dense per config, per spec.md
// section 6.
type LibSVMWriter struct {
	Sparse    bool
	Precision int

	f *os.File
	w *bufio.Writer
}

const libsvmEpsilon = 1e-9

func (l *LibSVMWriter) Open(path string) error {
	if path == "" || path == "-" {
		l.w = bufio.NewWriter(os.Stdout)
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	l.f = f
	l.w = bufio.NewWriter(f)
	return nil
}

func (l *LibSVMWriter) Write(m *matrix.HMatrix) (int, error) {
	k := 0
	for i := m.Y.I; i < m.Y.N; i++ {
		fmt.Fprintf(l.w, "%g", labelAt(m, i))
		for j := m.X.I; j < m.X.N; j++ {
			v := Round(float64(m.Get(j, i)), l.Precision)
			if l.Sparse && v > -libsvmEpsilon && v < libsvmEpsilon {
				k++
				continue
			}
			fmt.Fprintf(l.w, " %d:%g", j+1, v) // libsvm feature indices are 1-based
			k++
		}
		fmt.Fprintln(l.w)
	}
	if err := l.w.Flush(); err != nil {
		return k, err
	}
	return k, nil
}

func (l *LibSVMWriter) Close() error {
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}
