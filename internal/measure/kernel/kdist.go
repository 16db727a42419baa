package kernel

import (
	"math"

	"github.com/krieck-labs/strmx/internal/config"
	"github.com/krieck-labs/strmx/internal/hstring"
	"github.com/krieck-labs/strmx/internal/measure"
	"github.com/krieck-labs/strmx/internal/vcache"
)

func init() {
	measure.Register("dist_kernel", func(name string, settings any) (measure.Measure, error) {
		cfg, _ := settings.(config.KernelDistConfig)
		base := cfg.Base
		if base == "" {
			base = "kern_spectrum"
		}
		baseSettings := cfg.BaseSettings
		inner, err := measure.Configure(base, baseSettings)
		if err != nil {
			return nil, err
		}
		rk, ok := inner.(rawKernel)
		if !ok {
			return nil, errNotAKernel(base)
		}
		return &kdist{base: inner, rk: rk}, nil
	})
}

type notKernelErr string

func (e notKernelErr) Error() string { return "measure: " + string(e) + " is not a kernel" }
func errNotAKernel(name string) error { return notKernelErr(name) }

// kdist derives a distance from any registered kernel measure:
// d(x,y) = sqrt(K(x,x) + K(y,y) - 2K(x,y)), clamped to 0 on tiny
// negative results from floating-point error, per spec.md section 4.4.
type kdist struct {
	base measure.Measure
	rk   rawKernel
}

func (m *kdist) Name() string           { return "dist_kernel" }
func (m *kdist) Family() measure.Family { return measure.Family{Symmetric: true, Kernel: false} }
func (m *kdist) Tag() uint32            { return 33 }

func (m *kdist) Compare(x, y *hstring.HString, vc *vcache.Cache) float32 {
	if x.Hash() == y.Hash() {
		return 0
	}
	kxx := selfKernel(m.rk, x, vc)
	kyy := selfKernel(m.rk, y, vc)
	kxy := m.rk.raw(x, y)
	v := kxx + kyy - 2*kxy
	if v < 0 {
		v = 0
	}
	return float32(math.Sqrt(v))
}
