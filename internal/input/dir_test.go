package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/krieck-labs/strmx/internal/hstring"
)

func TestDirReaderOneFilePerString(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{"1_foo.txt": "foo content", "0_bar.txt": "bar content"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	r := &DirReader{LabelRegex: `^(\d+)_`}
	if err := r.Open(dir); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	buf := make([]*hstring.HString, 10)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d files, want 2", n)
	}
	seen := map[string]float64{}
	for i := 0; i < n; i++ {
		l, ok := buf[i].Label()
		if !ok {
			t.Fatalf("expected a label parsed from filename for %s", buf[i].Source())
		}
		seen[buf[i].Source()] = l
	}
	if seen["1_foo.txt"] != 1 || seen["0_bar.txt"] != 0 {
		t.Fatalf("unexpected labels: %v", seen)
	}
}

func TestDirReaderSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	r := &DirReader{}
	if err := r.Open(dir); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	buf := make([]*hstring.HString, 10)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 1 {
		t.Fatalf("got %d entries, want 1 (subdirectory skipped)", n)
	}
}
