package hstring

import "testing"

func TestDecodeEscapes(t *testing.T) {
	s := New([]byte("a%20b"), "s")
	out := Preprocess(s, PreprocConfig{DecodeEscapes: true})
	if string(out.Bytes()) != "a b" {
		t.Fatalf("got %q, want %q", out.Bytes(), "a b")
	}
}

func TestDecodeEscapesMalformedKeepsPercent(t *testing.T) {
	s := New([]byte("a%2zb"), "s")
	out := Preprocess(s, PreprocConfig{DecodeEscapes: true})
	if string(out.Bytes()) != "a%2zb" {
		t.Fatalf("malformed escape should retain literal %%, got %q", out.Bytes())
	}
}

func TestCaseFoldASCIIOnly(t *testing.T) {
	s := New([]byte("AbC"), "s")
	out := Preprocess(s, PreprocConfig{CaseFold: true})
	if string(out.Bytes()) != "abc" {
		t.Fatalf("got %q, want %q", out.Bytes(), "abc")
	}
}

func TestTokenizeNoEmptyTokens(t *testing.T) {
	s := New([]byte("  a  b "), "s")
	out := Preprocess(s, PreprocConfig{Tokenize: true, Delimiters: NewDelimiterSet([]byte(" "))})
	if Len(out) != 2 {
		t.Fatalf("Len = %d, want 2 (no empty tokens for repeated/leading/trailing delimiters)", Len(out))
	}
}

func TestTokenizeIdentifiesEqualSurfaces(t *testing.T) {
	s := New([]byte("foo foo"), "s")
	out := Preprocess(s, PreprocConfig{Tokenize: true, Delimiters: NewDelimiterSet([]byte(" "))})
	if SymAt(out, 0) != SymAt(out, 1) {
		t.Fatalf("identical token surfaces must hash identically")
	}
}

func TestFilterStopTokens(t *testing.T) {
	stop := map[uint64]struct{}{HashToken([]byte("the")): {}}
	s := New([]byte("the cat sat"), "s")
	out := Preprocess(s, PreprocConfig{
		Tokenize:   true,
		Delimiters: NewDelimiterSet([]byte(" ")),
		StopTokens: stop,
	})
	if Len(out) != 2 {
		t.Fatalf("Len = %d, want 2 after dropping one stop token", Len(out))
	}
}

func TestReverseBytes(t *testing.T) {
	s := New([]byte("abc"), "s")
	out := Preprocess(s, PreprocConfig{Reverse: true})
	if string(out.Bytes()) != "cba" {
		t.Fatalf("got %q, want %q", out.Bytes(), "cba")
	}
}

func TestReverseTokens(t *testing.T) {
	s := New([]byte("a b c"), "s")
	out := Preprocess(s, PreprocConfig{
		Tokenize:   true,
		Delimiters: NewDelimiterSet([]byte(" ")),
		Reverse:    true,
	})
	// "a b c" tokenizes to [a, b, c]; reversed is [c, b, a].
	a := New([]byte("a"), "")
	c := New([]byte("c"), "")
	if SymAt(out, 0) != HashToken(c.Bytes()) {
		t.Fatalf("first token after reverse should be 'c'")
	}
	if SymAt(out, 2) != HashToken(a.Bytes()) {
		t.Fatalf("last token after reverse should be 'a'")
	}
}

func TestPreprocessIdempotent(t *testing.T) {
	cfg := PreprocConfig{CaseFold: true, Tokenize: true, Delimiters: NewDelimiterSet([]byte(" "))}
	s := New([]byte("Foo Bar"), "s")
	once := Preprocess(s, cfg)
	twice := Preprocess(once, cfg)
	if once.Hash() != twice.Hash() {
		t.Fatalf("Preprocess is not idempotent: %d != %d", once.Hash(), twice.Hash())
	}
}

func TestPreprocessIdempotentWithReverse(t *testing.T) {
	cfg := PreprocConfig{Reverse: true}
	s := New([]byte("hello"), "s")
	once := Preprocess(s, cfg)
	twice := Preprocess(once, cfg)
	if once.Hash() != twice.Hash() {
		t.Fatalf("Preprocess with Reverse is not idempotent: second call undid the first reversal (%q != %q)", once.Bytes(), twice.Bytes())
	}
	if string(once.Bytes()) != "olleh" {
		t.Fatalf("got %q, want %q", once.Bytes(), "olleh")
	}
}

func TestPreprocessIdempotentWithCaseFoldAndReverse(t *testing.T) {
	cfg := PreprocConfig{CaseFold: true, Reverse: true}
	s := New([]byte("HeLLo"), "s")
	once := Preprocess(s, cfg)
	twice := Preprocess(once, cfg)
	if once.Hash() != twice.Hash() {
		t.Fatalf("a pass that rebuilds the HString (CaseFold) must carry the reversed flag forward, else a later Preprocess call reverses again: %q != %q", once.Bytes(), twice.Bytes())
	}
}

func TestTrim(t *testing.T) {
	s := New([]byte("  hi  "), "s")
	out := Trim(s)
	if string(out.Bytes()) != "hi" {
		t.Fatalf("got %q, want %q", out.Bytes(), "hi")
	}
}
