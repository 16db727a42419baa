// Package kernel implements the subsequence/substring kernel family
// (SPEC_FULL section 4.4): spectrum kernel, weighted-degree kernel, and
// the gap-weighted subsequence kernel (SSK). All are symmetric
// similarities; self-kernel values needed for l2 normalization are
// retrieved through the value cache.
package kernel

import (
	"math"

	"github.com/krieck-labs/strmx/internal/config"
	"github.com/krieck-labs/strmx/internal/hstring"
	"github.com/krieck-labs/strmx/internal/measure"
	"github.com/krieck-labs/strmx/internal/vcache"
)

func init() {
	measure.Register("kern_spectrum", func(name string, settings any) (measure.Measure, error) {
		cfg, _ := settings.(config.MeasureSpectrumConfig)
		if cfg.K <= 0 {
			cfg.K = 3
		}
		return &spectrum{k: cfg.K, norm: parseKNorm(cfg.Norm)}, nil
	})
	measure.Register("kern_wdegree", func(name string, settings any) (measure.Measure, error) {
		cfg, _ := settings.(config.MeasureWdegreeConfig)
		if cfg.K <= 0 {
			cfg.K = 3
		}
		if cfg.D <= 0 {
			cfg.D = 3
		}
		return &wdegree{k: cfg.K, d: cfg.D, norm: parseKNorm(cfg.Norm)}, nil
	})
	measure.Register("kern_subsequence", func(name string, settings any) (measure.Measure, error) {
		cfg, _ := settings.(config.MeasureSSKConfig)
		if cfg.K <= 0 {
			cfg.K = 3
		}
		if cfg.Lambda <= 0 || cfg.Lambda > 1 {
			cfg.Lambda = 0.5
		}
		return &ssk{k: cfg.K, lambda: cfg.Lambda, norm: parseKNorm(cfg.Norm)}, nil
	})
}

// kernNorm is the kernel counterpart of measure.Norm, with the choices
// "none | l2 | unit" (spec.md section 4.4: none, l2, normalized to [0,1]).
type kernNorm int

const (
	kernNone kernNorm = iota
	kernL2
	kernUnit
)

func parseKNorm(s string) kernNorm {
	switch s {
	case "l2":
		return kernL2
	case "unit":
		return kernUnit
	default:
		return kernNone
	}
}

// rawKernel is implemented by each family's core DP/counting routine so
// the shared self-kernel-cached normalization wrapper can call it
// uniformly.
type rawKernel interface {
	tag() uint32
	raw(x, y *hstring.HString) float64
	norm() kernNorm
}

// compareKernel applies the norm-dependent self-kernel lookups (and a
// zero result when the normalizing denominator is 0, e.g. for empty
// inputs) shared by all three kernel families, per spec.md
// section 4.4: "Self-kernel values are retrieved via the value cache."
func compareKernel(rk rawKernel, x, y *hstring.HString, vc *vcache.Cache) float32 {
	kxy := rk.raw(x, y)
	switch rk.norm() {
	case kernNone:
		return float32(measure.SanitizeSimilarity(kxy, func() {}))
	case kernL2:
		kxx := selfKernel(rk, x, vc)
		kyy := selfKernel(rk, y, vc)
		denom := math.Sqrt(kxx * kyy)
		if denom == 0 {
			return 0
		}
		return float32(measure.SanitizeSimilarity(kxy/denom, func() {}))
	case kernUnit:
		kxx := selfKernel(rk, x, vc)
		kyy := selfKernel(rk, y, vc)
		denom := kxx + kyy - kxy
		if denom == 0 {
			return 0
		}
		return float32(measure.SanitizeSimilarity(kxy/denom, func() {}))
	default:
		return float32(kxy)
	}
}

func selfKernel(rk rawKernel, s *hstring.HString, vc *vcache.Cache) float64 {
	if vc == nil {
		return rk.raw(s, s)
	}
	key := vcache.SelfFingerprint(rk.tag(), s.Hash())
	if v, ok := vc.Lookup(key); ok {
		return float64(v)
	}
	k := rk.raw(s, s)
	vc.Store(key, float32(k))
	return k
}

// --- Spectrum kernel -----------------------------------------------------

type spectrum struct {
	k    int
	norm kernNorm
}

func (m *spectrum) Name() string           { return "kern_spectrum" }
func (m *spectrum) Family() measure.Family { return measure.Family{Symmetric: true, Kernel: true} }
func (m *spectrum) Tag() uint32            { return 30 }
func (m *spectrum) tag() uint32            { return m.Tag() }
func (m *spectrum) norm() kernNorm         { return m.norm }

func (m *spectrum) Compare(x, y *hstring.HString, vc *vcache.Cache) float32 {
	return compareKernel(m, x, y, vc)
}

// raw computes the inner product of k-gram frequency vectors. K(e,e)=0
// by convention (spec.md section 4.4: no k-grams exist when the string
// is shorter than k, including the empty string).
func (m *spectrum) raw(x, y *hstring.HString) float64 {
	fx := kmerFreq(x, m.k)
	fy := kmerFreq(y, m.k)
	if len(fx) == 0 || len(fy) == 0 {
		return 0
	}
	small, large := fx, fy
	if len(fy) < len(fx) {
		small, large = fy, fx
	}
	var sum float64
	for g, c := range small {
		sum += float64(c) * float64(large[g])
	}
	return sum
}

func kmerFreq(s *hstring.HString, k int) map[string]int {
	n := hstring.Len(s)
	if n < k {
		return nil
	}
	freq := make(map[string]int, n-k+1)
	buf := make([]byte, k*8)
	for i := 0; i+k <= n; i++ {
		for j := 0; j < k; j++ {
			v := hstring.SymAt(s, i+j)
			off := j * 8
			buf[off] = byte(v)
			buf[off+1] = byte(v >> 8)
			buf[off+2] = byte(v >> 16)
			buf[off+3] = byte(v >> 24)
			buf[off+4] = byte(v >> 32)
			buf[off+5] = byte(v >> 40)
			buf[off+6] = byte(v >> 48)
			buf[off+7] = byte(v >> 56)
		}
		freq[string(buf)]++
	}
	return freq
}

// --- Weighted-degree kernel -----------------------------------------------

type wdegree struct {
	k, d int
	norm kernNorm
}

func (m *wdegree) Name() string           { return "kern_wdegree" }
func (m *wdegree) Family() measure.Family { return measure.Family{Symmetric: true, Kernel: true} }
func (m *wdegree) Tag() uint32            { return 31 }
func (m *wdegree) tag() uint32            { return m.Tag() }
func (m *wdegree) norm() kernNorm         { return m.norm }

func (m *wdegree) Compare(x, y *hstring.HString, vc *vcache.Cache) float32 {
	return compareKernel(m, x, y, vc)
}

// raw sums, over degrees 1..d, the count of position-aligned k-gram
// matches at each aligned start position, weighted 1/degree (the
// standard weighted-degree weighting that favors shorter matched
// k-mers).
func (m *wdegree) raw(x, y *hstring.HString) float64 {
	nx, ny := hstring.Len(x), hstring.Len(y)
	n := nx
	if ny < n {
		n = ny
	}
	var total float64
	for deg := 1; deg <= m.d; deg++ {
		weight := 1.0 / float64(deg)
		for i := 0; i+deg <= n; i++ {
			match := true
			for j := 0; j < deg; j++ {
				if !hstring.SymEq(x, i+j, y, i+j) {
					match = false
					break
				}
			}
			if match {
				total += weight
			}
		}
	}
	_ = m.k // k reserved for future k-mer-window variants; degree loop
	// already subsumes plain k-gram matching at deg==k.
	return total
}

// --- Subsequence kernel (SSK) ---------------------------------------------

type ssk struct {
	k      int
	lambda float64
	norm   kernNorm
}

func (m *ssk) Name() string           { return "kern_subsequence" }
func (m *ssk) Family() measure.Family { return measure.Family{Symmetric: true, Kernel: true} }
func (m *ssk) Tag() uint32            { return 32 }
func (m *ssk) tag() uint32            { return m.Tag() }
func (m *ssk) norm() kernNorm         { return m.norm }

func (m *ssk) Compare(x, y *hstring.HString, vc *vcache.Cache) float32 {
	return compareKernel(m, x, y, vc)
}

// raw computes the standard gap-weighted subsequence kernel via the
// Lodhi et al. recurrence: Kp tracks partial match weight decaying by
// lambda per gap symbol, K accumulates the length-k kernel value.
func (m *ssk) raw(x, y *hstring.HString) float64 {
	nx, ny := hstring.Len(x), hstring.Len(y)
	k := m.k
	if nx < k || ny < k {
		return 0
	}
	lambda := m.lambda

	// Kp[l][i][j]: contribution of subsequences of length l ending at or
	// before positions i,j, decayed by gaps. Kp[0] is all ones.
	kp := make([][][]float64, k)
	for l := 0; l < k; l++ {
		kp[l] = make([][]float64, nx+1)
		for i := range kp[l] {
			kp[l][i] = make([]float64, ny+1)
		}
	}
	for i := 0; i <= nx; i++ {
		for j := 0; j <= ny; j++ {
			kp[0][i][j] = 1
		}
	}

	for l := 1; l < k; l++ {
		for i := l; i <= nx; i++ {
			var kpp float64
			for j := l; j <= ny; j++ {
				kpp = lambda * (kpp + lambda*boolf(hstring.SymEq(x, i-1, y, j-1))*kp[l-1][i-1][j-1])
				kp[l][i][j] = lambda*kp[l][i-1][j] + kpp
			}
		}
	}

	var k_ float64
	for i := k; i <= nx; i++ {
		for j := k; j <= ny; j++ {
			if hstring.SymEq(x, i-1, y, j-1) {
				k_ += lambda * lambda * kp[k-1][i-1][j-1]
			}
		}
	}
	return k_
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
