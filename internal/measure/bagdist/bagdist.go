// Package bagdist implements the bag/set distance family (SPEC_FULL
// section 4.4): Jaccard distance and Bag distance over symbol multisets.
// Token form operates on token-identifier histograms; byte form falls
// back to a 256-bucket byte histogram.
package bagdist

import (
	"math"

	"github.com/krieck-labs/strmx/internal/config"
	"github.com/krieck-labs/strmx/internal/hstring"
	"github.com/krieck-labs/strmx/internal/measure"
	"github.com/krieck-labs/strmx/internal/vcache"
)

func init() {
	measure.Register("dist_jaccard", func(name string, settings any) (measure.Measure, error) {
		cfg, _ := settings.(config.MeasureNormConfig)
		return &jaccard{norm: measure.ParseNorm(cfg.Norm)}, nil
	})
	measure.Register("dist_bag", func(name string, settings any) (measure.Measure, error) {
		cfg, _ := settings.(config.MeasureNormConfig)
		return &bagDistance{norm: measure.ParseNorm(cfg.Norm)}, nil
	})
}

// histogram builds a multiset count over s's symbols: token identifiers
// in token form, byte values (0-255) in byte form.
func histogram(s *hstring.HString) map[uint64]int {
	n := hstring.Len(s)
	h := make(map[uint64]int, n)
	for i := 0; i < n; i++ {
		h[hstring.SymAt(s, i)]++
	}
	return h
}

type jaccard struct {
	norm measure.Norm
}

func (m *jaccard) Name() string           { return "dist_jaccard" }
func (m *jaccard) Family() measure.Family { return measure.Family{Symmetric: true, Kernel: false} }
func (m *jaccard) Tag() uint32            { return 20 }

// Compare computes 1 - |intersection|/|union| over the symbol multisets,
// treated as sets (membership only; multiplicities collapse to presence).
func (m *jaccard) Compare(x, y *hstring.HString, vc *vcache.Cache) float32 {
	if x.Hash() == y.Hash() {
		return 0
	}
	hx := histogram(x)
	hy := histogram(y)
	if len(hx) == 0 && len(hy) == 0 {
		return 0
	}
	inter := 0
	union := len(hx)
	for sym := range hy {
		if _, ok := hx[sym]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	d := 1 - float64(inter)/float64(union)
	return float32(measure.Normalize(m.norm, d, hstring.Len(x), hstring.Len(y)))
}

type bagDistance struct {
	norm measure.Norm
}

func (m *bagDistance) Name() string           { return "dist_bag" }
func (m *bagDistance) Family() measure.Family { return measure.Family{Symmetric: true, Kernel: false} }
func (m *bagDistance) Tag() uint32            { return 21 }

// Compare computes Bag distance: max(|bag(x) \ bag(y)|, |bag(y) \ bag(x)|)
// over symbol multisets with multiplicity, a cheap lower bound on edit
// distance often used as a fast pre-filter.
func (m *bagDistance) Compare(x, y *hstring.HString, vc *vcache.Cache) float32 {
	if x.Hash() == y.Hash() {
		return 0
	}
	hx := histogram(x)
	hy := histogram(y)
	diffXY := 0
	for sym, cx := range hx {
		cy := hy[sym]
		if cx > cy {
			diffXY += cx - cy
		}
	}
	diffYX := 0
	for sym, cy := range hy {
		cx := hx[sym]
		if cy > cx {
			diffYX += cy - cx
		}
	}
	d := math.Max(float64(diffXY), float64(diffYX))
	return float32(measure.Normalize(m.norm, d, hstring.Len(x), hstring.Len(y)))
}
