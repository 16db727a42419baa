// Package editdist implements the edit-distance family of SPEC_FULL
// section 4.4: Levenshtein, OSA/Damerau, Hamming, Jaro, Jaro-Winkler and
// Lee distance. All are symmetric distances. Levenshtein and OSA are
// classical dynamic programming over an (|x|+1) x (|y|+1) grid:
// Levenshtein keeps two rolling rows, OSA keeps the full grid. Jaro uses
// a matching-window scan; Hamming and Lee compare aligned positions.
package editdist

import (
	"math"

	"github.com/krieck-labs/strmx/internal/config"
	"github.com/krieck-labs/strmx/internal/hstring"
	"github.com/krieck-labs/strmx/internal/measure"
	"github.com/krieck-labs/strmx/internal/vcache"
)

func init() {
	measure.Register("dist_levenshtein", func(name string, settings any) (measure.Measure, error) {
		cfg, _ := settings.(config.MeasureEditConfig)
		return &levenshtein{cfg: cfg, norm: measure.ParseNorm(cfg.Norm), warn: measure.WarnOnce(noopWarn)}, nil
	})
	measure.Register("dist_osa", func(name string, settings any) (measure.Measure, error) {
		cfg, _ := settings.(config.MeasureEditConfig)
		return &osa{cfg: cfg, norm: measure.ParseNorm(cfg.Norm), warn: measure.WarnOnce(noopWarn)}, nil
	})
	measure.Register("dist_hamming", func(name string, settings any) (measure.Measure, error) {
		cfg, _ := settings.(config.MeasureHammingConfig)
		return &hamming{cfg: cfg}, nil
	})
	measure.Register("dist_jaro", func(name string, settings any) (measure.Measure, error) {
		cfg, _ := settings.(config.MeasureJaroConfig)
		return &jaro{cfg: cfg, norm: measure.ParseNorm(cfg.Norm), winkler: false}, nil
	})
	measure.Register("dist_jarowinkler", func(name string, settings any) (measure.Measure, error) {
		cfg, _ := settings.(config.MeasureJaroConfig)
		return &jaro{cfg: cfg, norm: measure.ParseNorm(cfg.Norm), winkler: true}, nil
	})
	measure.Register("dist_lee", func(name string, settings any) (measure.Measure, error) {
		cfg, _ := settings.(config.MeasureLeeConfig)
		if cfg.Alph <= 0 {
			cfg.Alph = 256
		}
		return &lee{cfg: cfg, norm: measure.ParseNorm(cfg.Norm)}, nil
	})
}

// noopWarn is the warning sink the Levenshtein and OSA measures hand to
// measure.WarnOnce. It discards the message: no logger is wired into the
// edit-distance measures, so a replaced non-finite result is not logged.
func noopWarn(string) {}

// twoRows is the memory-optimal DP scratch: two rolling rows reused
// across the grid instead of allocating the full (|x|+1) x (|y|+1)
// matrix, per spec.md section 4.4.
type twoRows struct {
	prev, cur []float64
}

func newTwoRows(width int) *twoRows {
	return &twoRows{prev: make([]float64, width), cur: make([]float64, width)}
}

// --- Levenshtein -----------------------------------------------------

type levenshtein struct {
	cfg  config.MeasureEditConfig
	norm measure.Norm
	warn func()
}

func (m *levenshtein) Name() string          { return "dist_levenshtein" }
func (m *levenshtein) Family() measure.Family { return measure.Family{Symmetric: true, Kernel: false} }
func (m *levenshtein) Tag() uint32           { return 1 }

func (m *levenshtein) Compare(x, y *hstring.HString, vc *vcache.Cache) float32 {
	if x.Hash() == y.Hash() {
		return 0
	}
	d := levenshteinRaw(x, y, m.cfg.CostIns, m.cfg.CostDel, m.cfg.CostSub)
	d = measure.SanitizeDistance(d, hstring.Len(x), hstring.Len(y), m.warn)
	return float32(measure.Normalize(m.norm, d, hstring.Len(x), hstring.Len(y)))
}

func levenshteinRaw(x, y *hstring.HString, insCost, delCost, subCost float64) float64 {
	nx, ny := hstring.Len(x), hstring.Len(y)
	if nx == 0 {
		return float64(ny) * insCost
	}
	if ny == 0 {
		return float64(nx) * delCost
	}
	rows := newTwoRows(ny + 1)
	for j := 0; j <= ny; j++ {
		rows.prev[j] = float64(j) * insCost
	}
	for i := 1; i <= nx; i++ {
		rows.cur[0] = float64(i) * delCost
		for j := 1; j <= ny; j++ {
			cost := subCost
			if hstring.SymEq(x, i-1, y, j-1) {
				cost = 0
			}
			del := rows.prev[j] + delCost
			ins := rows.cur[j-1] + insCost
			sub := rows.prev[j-1] + cost
			rows.cur[j] = math.Min(del, math.Min(ins, sub))
		}
		rows.prev, rows.cur = rows.cur, rows.prev
	}
	return rows.prev[ny]
}

// --- OSA / Damerau -----------------------------------------------------

type osa struct {
	cfg  config.MeasureEditConfig
	norm measure.Norm
	warn func()
}

func (m *osa) Name() string           { return "dist_osa" }
func (m *osa) Family() measure.Family { return measure.Family{Symmetric: true, Kernel: false} }
func (m *osa) Tag() uint32            { return 2 }

func (m *osa) Compare(x, y *hstring.HString, vc *vcache.Cache) float32 {
	if x.Hash() == y.Hash() {
		return 0
	}
	d := osaRaw(x, y, m.cfg.CostIns, m.cfg.CostDel, m.cfg.CostSub, m.cfg.CostTra)
	d = measure.SanitizeDistance(d, hstring.Len(x), hstring.Len(y), m.warn)
	return float32(measure.Normalize(m.norm, d, hstring.Len(x), hstring.Len(y)))
}

// osaRaw computes Optimal String Alignment distance: Levenshtein plus
// adjacent transpositions, under the restriction that no substring is
// edited more than once (the restriction that distinguishes OSA from
// true Damerau-Levenshtein). Needs the full grid (not two rows) since
// the transposition term looks back two rows.
func osaRaw(x, y *hstring.HString, insCost, delCost, subCost, traCost float64) float64 {
	nx, ny := hstring.Len(x), hstring.Len(y)
	if nx == 0 {
		return float64(ny) * insCost
	}
	if ny == 0 {
		return float64(nx) * delCost
	}
	d := make([][]float64, nx+1)
	for i := range d {
		d[i] = make([]float64, ny+1)
	}
	for i := 0; i <= nx; i++ {
		d[i][0] = float64(i) * delCost
	}
	for j := 0; j <= ny; j++ {
		d[0][j] = float64(j) * insCost
	}
	for i := 1; i <= nx; i++ {
		for j := 1; j <= ny; j++ {
			cost := subCost
			if hstring.SymEq(x, i-1, y, j-1) {
				cost = 0
			}
			del := d[i-1][j] + delCost
			ins := d[i][j-1] + insCost
			sub := d[i-1][j-1] + cost
			best := math.Min(del, math.Min(ins, sub))
			if i > 1 && j > 1 && hstring.SymEq(x, i-1, y, j-2) && hstring.SymEq(x, i-2, y, j-1) {
				tra := d[i-2][j-2] + traCost
				best = math.Min(best, tra)
			}
			d[i][j] = best
		}
	}
	return d[nx][ny]
}

// --- Hamming -----------------------------------------------------------

type hamming struct {
	cfg config.MeasureHammingConfig
}

func (m *hamming) Name() string           { return "dist_hamming" }
func (m *hamming) Family() measure.Family { return measure.Family{Symmetric: true, Kernel: false} }
func (m *hamming) Tag() uint32            { return 3 }

func (m *hamming) Compare(x, y *hstring.HString, vc *vcache.Cache) float32 {
	if x.Hash() == y.Hash() {
		return 0
	}
	nx, ny := hstring.Len(x), hstring.Len(y)
	if nx != ny {
		switch m.cfg.Norm {
		case "length":
			return float32(nx + ny)
		case "max":
			return float32(math.Max(float64(nx), float64(ny)))
		default:
			return float32(nx + ny) // spec.md default when mismatched and norm=="none"
		}
	}
	var d int
	for i := 0; i < nx; i++ {
		if !hstring.SymEq(x, i, y, i) {
			d++
		}
	}
	return float32(d)
}

// --- Jaro / Jaro-Winkler -------------------------------------------------

type jaro struct {
	cfg     config.MeasureJaroConfig
	norm    measure.Norm
	winkler bool
}

func (m *jaro) Name() string {
	if m.winkler {
		return "dist_jarowinkler"
	}
	return "dist_jaro"
}
func (m *jaro) Family() measure.Family { return measure.Family{Symmetric: true, Kernel: false} }
func (m *jaro) Tag() uint32 {
	if m.winkler {
		return 5
	}
	return 4
}

func (m *jaro) Compare(x, y *hstring.HString, vc *vcache.Cache) float32 {
	if x.Hash() == y.Hash() {
		return 0
	}
	sim := jaroSimilarity(x, y)
	if m.winkler {
		sim = jaroWinklerBoost(sim, x, y, m.cfg.PrefixLen, m.cfg.PrefixWeight)
	}
	// Jaro is a similarity in [0,1]; the family is specified as a
	// distance, so report 1-similarity.
	d := 1 - sim
	return float32(measure.Normalize(m.norm, d, hstring.Len(x), hstring.Len(y)))
}

// jaroSimilarity implements the matching-window algorithm: two symbols
// match if they are equal and within floor(max(|x|,|y|)/2)-1 of each
// other's position; the similarity blends match count and transposition
// count across the two strings.
func jaroSimilarity(x, y *hstring.HString) float64 {
	nx, ny := hstring.Len(x), hstring.Len(y)
	if nx == 0 && ny == 0 {
		return 1
	}
	if nx == 0 || ny == 0 {
		return 0
	}
	window := int(math.Max(float64(nx), float64(ny))/2) - 1
	if window < 0 {
		window = 0
	}
	xMatched := make([]bool, nx)
	yMatched := make([]bool, ny)
	matches := 0
	for i := 0; i < nx; i++ {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > ny {
			hi = ny
		}
		for j := lo; j < hi; j++ {
			if yMatched[j] || !hstring.SymEq(x, i, y, j) {
				continue
			}
			xMatched[i] = true
			yMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}
	transpositions := 0
	k := 0
	for i := 0; i < nx; i++ {
		if !xMatched[i] {
			continue
		}
		for !yMatched[k] {
			k++
		}
		if hstring.SymAt(x, i) != hstring.SymAt(y, k) {
			transpositions++
		}
		k++
	}
	t := float64(transpositions) / 2
	m := float64(matches)
	return (m/float64(nx) + m/float64(ny) + (m-t)/m) / 3
}

// jaroWinklerBoost applies the Winkler common-prefix scaling: with l the
// number of leading symbols (at most prefixLen) that match exactly, the
// result is sim + l*prefixWeight*(1-sim).
func jaroWinklerBoost(sim float64, x, y *hstring.HString, prefixLen int, weight float64) float64 {
	if prefixLen <= 0 {
		prefixLen = 4
	}
	if weight <= 0 {
		weight = 0.1
	}
	maxPrefix := prefixLen
	nx, ny := hstring.Len(x), hstring.Len(y)
	if nx < maxPrefix {
		maxPrefix = nx
	}
	if ny < maxPrefix {
		maxPrefix = ny
	}
	l := 0
	for l < maxPrefix && hstring.SymEq(x, l, y, l) {
		l++
	}
	return sim + float64(l)*weight*(1-sim)
}

// --- Lee distance --------------------------------------------------------

type lee struct {
	cfg  config.MeasureLeeConfig
	norm measure.Norm
}

func (m *lee) Name() string           { return "dist_lee" }
func (m *lee) Family() measure.Family { return measure.Family{Symmetric: true, Kernel: false} }
func (m *lee) Tag() uint32            { return 6 }

// Compare computes Lee distance on a modular alphabet of size cfg.Alph:
// sum over aligned positions of min(|a-b|, alph-|a-b|), undefined for
// unequal lengths (treated as the padded tail costing alph/2 per extra
// symbol, the maximal possible per-symbol Lee cost).
func (m *lee) Compare(x, y *hstring.HString, vc *vcache.Cache) float32 {
	if x.Hash() == y.Hash() {
		return 0
	}
	nx, ny := hstring.Len(x), hstring.Len(y)
	n := nx
	if ny < n {
		n = ny
	}
	alph := float64(m.cfg.Alph)
	var d float64
	for i := 0; i < n; i++ {
		diff := math.Abs(float64(hstring.SymAt(x, i)) - float64(hstring.SymAt(y, i)))
		d += math.Min(diff, alph-diff)
	}
	extra := nx + ny - 2*n
	d += float64(extra) * (alph / 2)
	return float32(measure.Normalize(m.norm, d, nx, ny))
}
