package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/krieck-labs/strmx/internal/hstring"
)

func TestLineReaderSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lines.txt")
	if err := os.WriteFile(path, []byte("hello\n\nworld\n"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	r := &LineReader{}
	if err := r.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	buf := make([]*hstring.HString, 10)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d lines, want 2 (blank line skipped)", n)
	}
	if string(buf[0].Bytes()) != "hello" || string(buf[1].Bytes()) != "world" {
		t.Fatalf("unexpected line contents: %q, %q", buf[0].Bytes(), buf[1].Bytes())
	}
}

func TestLineReaderParsesLabelPrefix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lines.txt")
	if err := os.WriteFile(path, []byte("1:positive example\n0:negative example\n"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	r := &LineReader{}
	if err := r.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	buf := make([]*hstring.HString, 10)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d lines, want 2", n)
	}
	l0, ok0 := buf[0].Label()
	if !ok0 || l0 != 1 {
		t.Fatalf("line 0 label = (%v, %v), want (1, true)", l0, ok0)
	}
	if string(buf[0].Bytes()) != "positive example" {
		t.Fatalf("line 0 content = %q, want %q", buf[0].Bytes(), "positive example")
	}
}

func TestLineReaderEndOfInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lines.txt")
	if err := os.WriteFile(path, []byte("one\n"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	r := &LineReader{}
	if err := r.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	buf := make([]*hstring.HString, 10)
	n, _ := r.Read(buf)
	if n != 1 {
		t.Fatalf("got %d, want 1", n)
	}
	n2, err := r.Read(buf)
	if n2 != 0 || err != nil {
		t.Fatalf("second Read = (%d, %v), want (0, nil) at end of input", n2, err)
	}
}
