package kernel

import (
	"math"
	"testing"

	"github.com/krieck-labs/strmx/internal/config"
	"github.com/krieck-labs/strmx/internal/hstring"
	"github.com/krieck-labs/strmx/internal/measure"
	"github.com/krieck-labs/strmx/internal/vcache"
)

func str(s string) *hstring.HString { return hstring.New([]byte(s), "") }

func TestSpectrumL2NormalizedSelfSimilarityIsOne(t *testing.T) {
	m, err := measure.Configure("kern_spectrum", config.MeasureSpectrumConfig{K: 2, Norm: "l2"})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	got := float64(m.Compare(str("banana"), str("banana"), nil))
	if math.Abs(got-1) > 1e-6 {
		t.Fatalf("self similarity = %v, want 1", got)
	}
}

func TestSpectrumDisjointAlphabetsIsZero(t *testing.T) {
	m, _ := measure.Configure("kern_spectrum", config.MeasureSpectrumConfig{K: 2, Norm: "none"})
	got := m.Compare(str("aaaa"), str("bbbb"), nil)
	if got != 0 {
		t.Fatalf("spectrum(aaaa,bbbb) = %v, want 0 (no shared 2-grams)", got)
	}
}

func TestSpectrumShorterThanKIsZero(t *testing.T) {
	m, _ := measure.Configure("kern_spectrum", config.MeasureSpectrumConfig{K: 3, Norm: "none"})
	got := m.Compare(str("ab"), str("ab"), nil)
	if got != 0 {
		t.Fatalf("spectrum with |s|<k = %v, want 0 per convention", got)
	}
}

func TestWdegreeIdenticalStringsPositive(t *testing.T) {
	m, _ := measure.Configure("kern_wdegree", config.MeasureWdegreeConfig{K: 3, D: 3, Norm: "none"})
	got := m.Compare(str("sequence"), str("sequence"), nil)
	if got <= 0 {
		t.Fatalf("wdegree(sequence,sequence) = %v, want > 0", got)
	}
}

func TestSSKIdenticalStringsPositive(t *testing.T) {
	m, _ := measure.Configure("kern_subsequence", config.MeasureSSKConfig{K: 2, Lambda: 0.5, Norm: "none"})
	got := m.Compare(str("gattaca"), str("gattaca"), nil)
	if got <= 0 {
		t.Fatalf("ssk(gattaca,gattaca) = %v, want > 0", got)
	}
}

func TestSSKShorterThanKIsZero(t *testing.T) {
	m, _ := measure.Configure("kern_subsequence", config.MeasureSSKConfig{K: 5, Lambda: 0.5, Norm: "none"})
	got := m.Compare(str("ab"), str("ab"), nil)
	if got != 0 {
		t.Fatalf("ssk with |s|<k = %v, want 0", got)
	}
}

// A whole-pair cache entry stored under vcache.Fingerprint(tag, h, h, true)
// for a diagonal (x==x) cell must not leak into selfKernel's lookup, which
// is keyed by vcache.SelfFingerprint(tag, h); otherwise a pair-level
// Compare result (e.g. the normalized value 1.0) would poison the self-
// kernel cache and corrupt every later cell normalized against that
// string.
func TestSelfKernelDoesNotShareKeyWithPairCache(t *testing.T) {
	vc := vcache.New(64)
	s := str("banana")
	sp := &spectrum{k: 2, norm: kernL2}

	pairKey := vcache.Fingerprint(sp.Tag(), s.Hash(), s.Hash(), true)
	vc.Store(pairKey, 1.0)

	got := selfKernel(sp, s, vc)
	want := sp.raw(s, s)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("selfKernel = %v, want %v (got the poisoned pair-cache value, not the real self-kernel)", got, want)
	}
}

func TestDistKernelWrapsSpectrumAndIsZeroForIdentical(t *testing.T) {
	cfg := config.Default().Measures
	settings := cfg.SettingsFor("dist_kernel")
	m, err := measure.Configure("dist_kernel", settings)
	if err != nil {
		t.Fatalf("Configure(dist_kernel): %v", err)
	}
	got := float64(m.Compare(str("identical"), str("identical"), nil))
	if math.Abs(got) > 1e-6 {
		t.Fatalf("dist_kernel self distance = %v, want ~0", got)
	}
}
