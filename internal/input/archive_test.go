package input

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"

	"github.com/krieck-labs/strmx/internal/hstring"
)

func writeTar(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	tw := tar.NewWriter(f)
	for name, content := range members {
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestArchiveReaderReadsTarMembers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.tar")
	writeTar(t, path, map[string]string{"a.txt": "content a", "b.txt": "content b"})

	r := &ArchiveReader{}
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
		t.Fatalf("got %d members, want 2", n)
	}
	names := map[string]bool{}
	for i := 0; i < n; i++ {
		names[buf[i].Source()] = true
	}
	if !names["a.txt"] || !names["b.txt"] {
		t.Fatalf("unexpected member names: %v", names)
	}
}

func TestArchiveReaderEndOfInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.tar")
	writeTar(t, path, map[string]string{"only.txt": "x"})

	r := &ArchiveReader{}
	if err := r.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	buf := make([]*hstring.HString, 1)
	n, _ := r.Read(buf)
	if n != 1 {
		t.Fatalf("got %d, want 1", n)
	}
	n2, err := r.Read(buf)
	if n2 != 0 || err != nil {
		t.Fatalf("second Read = (%d, %v), want (0, nil)", n2, err)
	}
}
