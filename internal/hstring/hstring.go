// Package hstring implements the unified sequence type that every measure
// in internal/measure operates on: a preprocessed, immutable string in
// either byte form or token form, with a lazily-computed stable content
// hash. See SPEC_FULL.md section 3/4.1.
package hstring

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Form selects how a HString's symbols are addressed.
type Form int

const (
	// FormBytes: symbols are the raw bytes of the string.
	FormBytes Form = iota
	// FormTokens: symbols are 64-bit identifiers, one per delimited token.
	FormTokens
)

// HString is an immutable, preprocessed input string. Construct one with
// New, then transform it with the passes in preproc.go; the zero value is
// not useful.
type HString struct {
	form   Form
	raw    []byte   // FormBytes
	tokens []uint64 // FormTokens

	label    float64
	hasLabel bool
	source   string
	reversed bool // set once the Reverse preprocessing pass has run

	once sync.Once
	hash uint64
}

// New wraps a raw byte sequence in byte form. No hash is computed until
// Hash is first called.
func New(raw []byte, source string) *HString {
	return &HString{
		form: FormBytes,
		raw:  append([]byte(nil), raw...),
		source: source,
	}
}

// WithLabel returns a copy of s carrying the given numeric label.
func (s *HString) WithLabel(label float64) *HString {
	cp := *s
	cp.label = label
	cp.hasLabel = true
	cp.once = sync.Once{}
	return &cp
}

// Label returns the string's numeric label, if any.
func (s *HString) Label() (float64, bool) { return s.label, s.hasLabel }

// Source returns the string's source tag (e.g. a filename), if any.
func (s *HString) Source() string { return s.source }

// Form reports whether s is in byte or token form.
func (s *HString) Form() Form { return s.form }

// tokenForm constructs a HString directly in token form; used internally by
// the tokenize preprocessing pass. reversed carries forward the source
// value's reversal state, since tokenizing doesn't itself reverse anything.
func tokenForm(tokens []uint64, source string, reversed bool) *HString {
	return &HString{form: FormTokens, tokens: tokens, source: source, reversed: reversed}
}

// Len returns the number of symbols in s (bytes, or tokens in token form).
func Len(s *HString) int {
	if s.form == FormTokens {
		return len(s.tokens)
	}
	return len(s.raw)
}

// SymAt returns the i'th symbol of s, widened to uint64 for uniform
// comparison regardless of form.
func SymAt(s *HString, i int) uint64 {
	if s.form == FormTokens {
		return s.tokens[i]
	}
	return uint64(s.raw[i])
}

// SymEq reports whether symbol i of x equals symbol j of y. Comparing
// across forms is never meaningful to a measure and always returns false.
func SymEq(x *HString, i int, y *HString, j int) bool {
	if x.form != y.form {
		return false
	}
	return SymAt(x, i) == SymAt(y, j)
}

// Bytes returns the backing bytes of a byte-form HString. Panics if called
// on a token-form HString; measures that need raw bytes (e.g. the
// compression family) only ever see byte-form inputs by configuration
// convention.
func (s *HString) Bytes() []byte {
	if s.form != FormBytes {
		panic("hstring: Bytes called on token-form HString")
	}
	return s.raw
}

// Tokens returns the backing identifiers of a token-form HString.
func (s *HString) Tokens() []uint64 {
	if s.form != FormTokens {
		panic("hstring: Tokens called on byte-form HString")
	}
	return s.tokens
}

// Hash returns the 64-bit content hash of s, computed once and cached.
// It depends only on the symbol sequence and the form flag, per SPEC_FULL
// section 4.1: two strings with identical post-preprocessing symbols and
// form have equal Hash.
func (s *HString) Hash() uint64 {
	s.once.Do(func() {
		d := xxhash.New()
		if s.form == FormTokens {
			d.Write([]byte{byte(FormTokens)})
			buf := make([]byte, 8)
			for _, t := range s.tokens {
				putUint64(buf, t)
				d.Write(buf)
			}
		} else {
			d.Write([]byte{byte(FormBytes)})
			d.Write(s.raw)
		}
		s.hash = d.Sum64()
	})
	return s.hash
}

// HashToken computes the stable 64-bit identifier for a token surface.
// Used by the tokenize pass and by stop-token filtering configuration.
func HashToken(surface []byte) uint64 {
	return xxhash.Sum64(surface)
}

func putUint64(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}
