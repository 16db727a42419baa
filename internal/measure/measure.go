// Package measure defines the shared Measure contract (SPEC_FULL section
// 4.4) and the name -> constructor registry every family registers into.
// Per the teacher's "no function-pointer globals" re-architecture (spec.md
// section 9), a Measure is a small interface value, not a bare func, and
// the registry only ever hands the orchestrator a configured instance.
package measure

import (
	"fmt"
	"math"

	"github.com/krieck-labs/strmx/internal/hstring"
	"github.com/krieck-labs/strmx/internal/vcache"
)

// Family declares whether a measure is symmetric and whether it is a
// kernel (higher = more similar) or a distance (higher = more dissimilar).
// Not negotiable at runtime per pair, per spec.md section 4.4.
type Family struct {
	Symmetric bool
	Kernel    bool
}

// Measure is the contract every pairwise function implements.
type Measure interface {
	// Name returns the canonical measure name it was configured under.
	Name() string
	// Family reports the symmetric/kernel attributes driving orchestrator
	// optimizations.
	Family() Family
	// Tag returns a small stable identifier folded into cache
	// fingerprints, so the same pair under two different measures never
	// collides in the value cache.
	Tag() uint32
	// Compare returns a single similarity or distance value for (x, y).
	// vc may be nil when the caller (e.g. a unit test) doesn't want
	// sub-call memoization; measures must tolerate a nil cache.
	Compare(x, y *hstring.HString, vc *vcache.Cache) float32
}

// Factory builds a configured Measure from its config subsection.
// settings is the per-measure struct that internal/config's SettingsFor
// returns for name; factories type-assert it to the concrete config type
// they need. The config package is not imported here to avoid a cycle (measure is a
// leaf consumed by config's sibling, internal/matrix); instead Configure
// takes the already-extracted per-measure struct as an any and each
// family package asserts its own concrete type.
type Factory func(name string, settings any) (Measure, error)

var registry = map[string]Factory{}

// Register adds a factory under name. Called from each family's init().
func Register(name string, f Factory) {
	if _, dup := registry[name]; dup {
		panic("measure: duplicate registration for " + name)
	}
	registry[name] = f
}

// Configure looks up name in the registry and builds a Measure from
// settings. An unknown name is the one fatal error a measure can raise
// outside Compare, per spec.md section 4.4/7.
func Configure(name string, settings any) (Measure, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("measure: unknown measure %q", name)
	}
	return f(name, settings)
}

// Names returns the registered measure names, for CLI help text.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	return out
}

// Norm is the final normalization step applied by distance measures
// (spec.md section 4.4: norm in {none, min, max, avg, length}).
type Norm int

const (
	NormNone Norm = iota
	NormMin
	NormMax
	NormAvg
	NormLength
)

// ParseNorm parses the norm config string, defaulting to NormNone for an
// empty or unrecognized value; an unrecognized value is not reported.
// Families call it once at Configure time, not per Compare call.
func ParseNorm(s string) Norm {
	switch s {
	case "min":
		return NormMin
	case "max":
		return NormMax
	case "avg":
		return NormAvg
	case "length":
		return NormLength
	default:
		return NormNone
	}
}

// Normalize applies n to a raw distance d computed between strings of
// length lx and ly.
func Normalize(n Norm, d float64, lx, ly int) float64 {
	switch n {
	case NormMin:
		m := math.Min(float64(lx), float64(ly))
		if m == 0 {
			return 0
		}
		return d / m
	case NormMax:
		m := math.Max(float64(lx), float64(ly))
		if m == 0 {
			return 0
		}
		return d / m
	case NormAvg:
		m := (float64(lx) + float64(ly)) / 2
		if m == 0 {
			return 0
		}
		return d / m
	case NormLength:
		m := float64(lx + ly)
		if m == 0 {
			return 0
		}
		return d / m
	default:
		return d
	}
}

// SanitizeDistance replaces a non-finite raw distance with lx+ly, and
// logs a once-per-run-per-measure warning via the caller-supplied warn
// func, per spec.md section 4.4's edge-case rule.
func SanitizeDistance(v float64, lx, ly int, warn func()) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		warn()
		return float64(lx + ly)
	}
	return v
}

// SanitizeSimilarity replaces a non-finite raw similarity with 0.
func SanitizeSimilarity(v float64, warn func()) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		warn()
		return 0
	}
	return v
}

// WarnOnce returns a func() that passes a fixed warning message to the
// caller-supplied log func the first time it's invoked and is a no-op
// thereafter, implementing the "once per run per measure" rule without a
// package-global logger dependency leaking into every family.
func WarnOnce(log func(msg string)) func() {
	done := false
	return func() {
		if done {
			return
		}
		done = true
		log("non-finite intermediate result replaced")
	}
}
