package matrix

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/krieck-labs/strmx/internal/errs"
	"github.com/krieck-labs/strmx/internal/hstring"
	"github.com/krieck-labs/strmx/internal/measure"
	"github.com/krieck-labs/strmx/internal/vcache"
)

// sliceTarget is the target number of cells per dispatched slice: a few
// thousand, to amortize scheduling overhead while keeping workers
// balanced at matrix edges. The exact value is not part of the observable
// contract (spec.md section 4.5).
const sliceTarget = 4096

// Progress receives a monotonic progress count; it may lag arbitrarily
// behind the true completion state but never goes backwards.
type Progress interface {
	Report(done, total int64)
}

// noopProgress is used when the caller doesn't want progress reporting.
type noopProgress struct{}

func (noopProgress) Report(int64, int64) {}

// Options configures a Fill call.
type Options struct {
	Workers     int // 0 -> runtime.GOMAXPROCS(0)
	GlobalCache bool
	Progress    Progress
}

// Fill allocates an HMatrix over x columns by y rows and dispatches its
// cells across a fixed worker pool, per spec.md section 4.5. inputs is
// the full preprocessed input array; x and y index into it. The measure's
// Family().Symmetric attribute (not a runtime choice) decides whether a
// coincident x==y range is stored triangular. ctx is polled for
// cancellation between slices, never inside a measure's inner DP loop.
//
// On abort, or when a measure panics, Fill returns a nil matrix with the
// error, so a partially filled matrix never reaches a writer, per spec.md
// section 5's "no output ever emitted after abort" rule.
func Fill(ctx context.Context, inputs []*hstring.HString, x, y Range, ms measure.Measure, vc *vcache.Cache, opts Options, labels []float64, sources []string) (*HMatrix, error) {
	symmetric := ms.Family().Symmetric
	m := New(x, y, symmetric, labels, sources)

	total := len(m.values)
	if total == 0 {
		return m, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	progress := opts.Progress
	if progress == nil {
		progress = noopProgress{}
	}

	numSlices := (total + sliceTarget - 1) / sliceTarget

	var nextSlice atomic.Int64
	var doneCells atomic.Int64
	var firstErr atomic.Value // stores error

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					firstErr.CompareAndSwap(nil, errs.Measure(ms.Name(), recoverToErr(r)))
				}
			}()
			for {
				if ctx.Err() != nil {
					return
				}
				idx := nextSlice.Add(1) - 1
				if idx >= int64(numSlices) {
					return
				}
				start := int(idx) * sliceTarget
				end := start + sliceTarget
				if end > total {
					end = total
				}
				for linear := start; linear < end; linear++ {
					j, i := unpack(m, linear)
					v := cellValue(ms, inputs, j, i, vc, opts.GlobalCache, symmetric)
					m.values[linear] = v
				}
				doneCells.Add(int64(end - start))
				progress.Report(doneCells.Load(), int64(total))
			}
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil, errs.Abort()
	}
	if e := firstErr.Load(); e != nil {
		return nil, e.(error)
	}
	return m, nil
}

func recoverToErr(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}

// cellValue computes one matrix cell, consulting the global cache when
// enabled, per spec.md section 4.5 step 4. Identity and kernel
// self-similarity edge cases are handled inside the measure itself (most
// distances short-circuit on equal hashes; NCD and kernels compute a real
// self-value), so the orchestrator needs no special case for the diagonal
// beyond routing through the same call. The key stored here is a
// whole-pair vcache.Fingerprint, kept in a disjoint namespace from any
// single-string sub-call a measure makes internally (vcache.SelfFingerprint)
// so a diagonal cell's final result never overwrites a measure's own
// self-similarity cache entry for that same string.
func cellValue(ms measure.Measure, inputs []*hstring.HString, j, i int, vc *vcache.Cache, globalCache bool, symmetric bool) float32 {
	x, y := inputs[j], inputs[i]
	if !globalCache || vc == nil {
		return ms.Compare(x, y, vc)
	}
	key := vcache.Fingerprint(ms.Tag(), x.Hash(), y.Hash(), symmetric)
	if v, ok := vc.Lookup(key); ok {
		return v
	}
	v := ms.Compare(x, y, vc)
	vc.Store(key, v)
	return v
}

// unpack converts a linear slice-addressed cell index back to absolute
// (column j, row i) input-array indices, inverting packedIndex.
func unpack(m *HMatrix, linear int) (j, i int) {
	if m.Triangular {
		li := triInverse(linear)
		lj := linear - li*(li+1)/2
		return m.X.I + lj, m.Y.I + li
	}
	width := m.X.Len()
	li := linear / width
	lj := linear % width
	return m.X.I + lj, m.Y.I + li
}

// triInverse returns the row li such that li*(li+1)/2 <= linear <
// (li+1)*(li+2)/2, correcting for floating-point error in the closed-form
// inverse-triangular-number estimate.
func triInverse(linear int) int {
	li := int((math.Sqrt(8*float64(linear)+1) - 1) / 2)
	for li*(li+1)/2 > linear {
		li--
	}
	for (li+1)*(li+2)/2 <= linear {
		li++
	}
	return li
}
