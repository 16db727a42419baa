// Package config loads the nested measures/input/output configuration
// tree described in SPEC_FULL section 3 and 10.2. It follows the
// teacher's AppConfig/DefaultConfig pattern (a package-level default,
// overridden field-by-field by a loaded file) but hierarchical, and reads
// TOML via github.com/pelletier/go-toml/v2 instead of a vendored parser.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/krieck-labs/strmx/internal/errs"
)

// Config is the root of the configuration tree.
type Config struct {
	Input    InputConfig    `toml:"input"`
	Measures MeasuresConfig `toml:"measures"`
	Output   OutputConfig   `toml:"output"`
}

// InputConfig mirrors spec.md's input.* group (reader selection is an
// external collaborator; the core only reads the normalization knobs).
type InputConfig struct {
	Reader         string `toml:"reader"`          // "dir" | "lines" | "archive"
	DecodeLabel    string `toml:"decode_label"`    // regex applied to filenames
	DecodeEscapes  bool   `toml:"decode_escapes"`
	CaseFold       bool   `toml:"case_fold"`
	Tokenize       bool   `toml:"tokenize"`
	Delimiters     string `toml:"delimiters"`
	StopTokenFile  string `toml:"stop_token_file"`
	Reverse        bool   `toml:"reverse"`
}

// MeasuresConfig mirrors spec.md's measures.* group.
type MeasuresConfig struct {
	Type        string `toml:"type"`
	GlobalCache bool   `toml:"global_cache"`
	CacheSize   int    `toml:"cache_size"`

	DistLevenshtein MeasureEditConfig    `toml:"dist_levenshtein"`
	DistOSA         MeasureEditConfig    `toml:"dist_osa"`
	DistHamming     MeasureHammingConfig `toml:"dist_hamming"`
	DistJaro        MeasureJaroConfig    `toml:"dist_jaro"`
	DistJaroWinkler MeasureJaroConfig    `toml:"dist_jarowinkler"`
	DistLee         MeasureLeeConfig     `toml:"dist_lee"`
	DistCompression MeasureCompressionConfig `toml:"dist_compression"`
	DistJaccard     MeasureNormConfig    `toml:"dist_jaccard"`
	DistBag         MeasureNormConfig    `toml:"dist_bag"`
	KernSpectrum    MeasureSpectrumConfig `toml:"kern_spectrum"`
	KernWdegree     MeasureWdegreeConfig  `toml:"kern_wdegree"`
	KernSubsequence MeasureSSKConfig      `toml:"kern_subsequence"`
	DistKernel      KernelDistConfig      `toml:"dist_kernel"`
}

// KernelDistConfig selects which registered kernel backs the derived
// kernel-distance measure (spec.md section 4.4's "token-based distance").
type KernelDistConfig struct {
	Base         string `toml:"base"` // e.g. "kern_spectrum"
	BaseSettings any    `toml:"-"`
}

// MeasureEditConfig covers the classical edit-distance cost knobs shared
// by Levenshtein and OSA/Damerau.
type MeasureEditConfig struct {
	CostIns float64 `toml:"cost_ins"`
	CostDel float64 `toml:"cost_del"`
	CostSub float64 `toml:"cost_sub"`
	CostTra float64 `toml:"cost_tra"` // OSA only
	Norm    string  `toml:"norm"`
}

type MeasureHammingConfig struct {
	Norm string `toml:"norm"` // none | length | max
}

type MeasureJaroConfig struct {
	PrefixLen int     `toml:"prefix_len"`
	PrefixWeight float64 `toml:"prefix_weight"`
	Norm      string  `toml:"norm"`
}

type MeasureLeeConfig struct {
	Alph int    `toml:"alph"`
	Norm string `toml:"norm"`
}

type MeasureCompressionConfig struct {
	Level   int    `toml:"level"`   // 1-9, flate backend
	Backend string `toml:"backend"` // "flate" (default) | "fsst"
}

type MeasureNormConfig struct {
	Norm string `toml:"norm"`
}

type MeasureSpectrumConfig struct {
	K    int    `toml:"k"`
	Norm string `toml:"norm"`
}

type MeasureWdegreeConfig struct {
	K    int    `toml:"k"`
	D    int    `toml:"d"`
	Norm string `toml:"norm"`
}

type MeasureSSKConfig struct {
	K      int     `toml:"k"`
	Lambda float64 `toml:"lambda"`
	Norm   string  `toml:"norm"`
}

// OutputConfig mirrors spec.md's output.* group.
type OutputConfig struct {
	Writer      string `toml:"writer"` // "text" | "json" | "libsvm"
	Separator   string `toml:"separator"`
	Precision   int    `toml:"precision"`
	SaveIndices bool   `toml:"save_indices"`
	SaveLabels  bool   `toml:"save_labels"`
	SaveSources bool   `toml:"save_sources"`
	Sparse      bool   `toml:"sparse"` // libsvm only
}

// Default returns the configuration used when no file is supplied,
// mirroring the teacher's package-level DefaultConfig value.
func Default() Config {
	return Config{
		Input: InputConfig{
			Reader:     "lines",
			CaseFold:   false,
			Delimiters: " \t\n",
		},
		Measures: MeasuresConfig{
			Type:        "dist_osa",
			GlobalCache: true,
			CacheSize:   1 << 16,
			DistLevenshtein: MeasureEditConfig{CostIns: 1, CostDel: 1, CostSub: 1, Norm: "none"},
			DistOSA:         MeasureEditConfig{CostIns: 1, CostDel: 1, CostSub: 1, CostTra: 1, Norm: "none"},
			DistHamming:     MeasureHammingConfig{Norm: "none"},
			DistJaro:        MeasureJaroConfig{Norm: "none"},
			DistJaroWinkler: MeasureJaroConfig{PrefixLen: 4, PrefixWeight: 0.1, Norm: "none"},
			DistLee:         MeasureLeeConfig{Alph: 256, Norm: "none"},
			DistCompression: MeasureCompressionConfig{Level: 9, Backend: "flate"},
			DistJaccard:     MeasureNormConfig{Norm: "none"},
			DistBag:         MeasureNormConfig{Norm: "none"},
			KernSpectrum:    MeasureSpectrumConfig{K: 3, Norm: "l2"},
			KernWdegree:     MeasureWdegreeConfig{K: 3, D: 3, Norm: "l2"},
			KernSubsequence: MeasureSSKConfig{K: 3, Lambda: 0.5, Norm: "l2"},
			DistKernel:      KernelDistConfig{Base: "kern_spectrum"},
		},
		Output: OutputConfig{
			Writer:    "text",
			Separator: ",",
			Precision: 6,
		},
	}
}

// SettingsFor returns the per-measure settings struct for name, as an
// `any` that each measure family type-asserts back to its own concrete
// config type. This indirection is what lets internal/measure stay free
// of a dependency on internal/config's full tree while every family's
// Factory still receives strongly-typed settings.
func (m MeasuresConfig) SettingsFor(name string) any {
	switch name {
	case "dist_levenshtein":
		return m.DistLevenshtein
	case "dist_osa":
		return m.DistOSA
	case "dist_hamming":
		return m.DistHamming
	case "dist_jaro":
		return m.DistJaro
	case "dist_jarowinkler":
		return m.DistJaroWinkler
	case "dist_lee":
		return m.DistLee
	case "dist_compression":
		return m.DistCompression
	case "dist_jaccard":
		return m.DistJaccard
	case "dist_bag":
		return m.DistBag
	case "kern_spectrum":
		return m.KernSpectrum
	case "kern_wdegree":
		return m.KernWdegree
	case "kern_subsequence":
		return m.KernSubsequence
	case "dist_kernel":
		kd := m.DistKernel
		if kd.Base == "" {
			kd.Base = "kern_spectrum"
		}
		kd.BaseSettings = m.SettingsFor(kd.Base)
		return kd
	default:
		return nil
	}
}

// Load reads and decodes a TOML config file over the defaults. Unknown
// top-level keys are reported via the returned warnings slice (fatal
// decode errors are returned as an *errs.Error of kind config).
func Load(path string) (Config, []string, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, nil, errs.Config(path, err)
	}

	// Decode once into a generic map to detect unknown top-level keys,
	// then decode into the typed struct. The typed decode is not strict:
	// unknown keys inside a known group are ignored without a warning.
	var generic map[string]any
	if err := toml.Unmarshal(data, &generic); err != nil {
		return cfg, nil, errs.Config(path, fmt.Errorf("malformed config: %w", err))
	}
	var warnings []string
	for k := range generic {
		switch k {
		case "input", "measures", "output":
		default:
			warnings = append(warnings, fmt.Sprintf("unknown config key %q", k))
		}
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, warnings, errs.Config(path, fmt.Errorf("malformed config: %w", err))
	}
	return cfg, warnings, nil
}
