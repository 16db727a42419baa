// Package output implements the writer collaborators specified only at
// their interface in spec.md section 4.6/6: text, JSON and libsvm,
// sharing one Writer interface.
package output

import "github.com/krieck-labs/strmx/internal/matrix"

// Writer consumes one HMatrix, per spec.md section 4.6.
type Writer interface {
	Open(path string) error
	Write(m *matrix.HMatrix) (int, error)
	Close() error
}

// New returns the Writer registered under name ("text", "json", "libsvm").
// measureName is the configured measure's name (e.g. cfg.Measures.Type);
// the JSON writer carries it into the document's "measure" field
// (spec.md section 6), other writers ignore it.
func New(name string, separator string, precision int, saveIndices, saveLabels, saveSources, sparse bool, measureName string) (Writer, error) {
	switch name {
	case "text", "":
		return &TextWriter{Separator: separator, Precision: precision, SaveIndices: saveIndices, SaveLabels: saveLabels, SaveSources: saveSources}, nil
	case "json":
		return &JSONWriter{Measure: measureName, Precision: precision, SaveIndices: saveIndices, SaveLabels: saveLabels, SaveSources: saveSources}, nil
	case "libsvm":
		return &LibSVMWriter{Sparse: sparse, Precision: precision}, nil
	default:
		return nil, errUnknownWriter(name)
	}
}

type unknownWriterErr string

func (e unknownWriterErr) Error() string { return "output: unknown writer " + string(e) }
func errUnknownWriter(name string) error { return unknownWriterErr(name) }

// Round implements spec.md section 6's rounding rule: round(v*10^p)/10^p
// with p chosen so the most significant digit survives; precision==0
// means no rounding (the Open Question in spec.md section 9, resolved
// this way, matching section 6's explicit statement).
func Round(v float64, precision int) float64 {
	if precision <= 0 {
		return v
	}
	if v == 0 {
		return 0
	}
	abs := v
	if abs < 0 {
		abs = -abs
	}
	// Choose p so the most significant digit survives: shift by the
	// number of leading zeros after the decimal point (or extra integer
	// digits) relative to precision significant digits.
	exp := 0
	for abs >= 1 {
		abs /= 10
		exp++
	}
	for abs < 0.1 {
		abs *= 10
		exp--
	}
	p := precision - exp
	scale := pow10(p)
	return roundHalfAwayFromZero(v*scale) / scale
}

func pow10(p int) float64 {
	scale := 1.0
	if p >= 0 {
		for i := 0; i < p; i++ {
			scale *= 10
		}
	} else {
		for i := 0; i < -p; i++ {
			scale /= 10
		}
	}
	return scale
}

func roundHalfAwayFromZero(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return -float64(int64(-v + 0.5))
}
