package input

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/krieck-labs/strmx/internal/hstring"
)

// ArchiveReader turns each member of a tar or tar.gz stream into one
// string; the member name becomes the source tag, per spec.md section 6.
// This realizes the original tool's libarchive-backed "archive stream"
// bullet with the stdlib archive/tar + compress/gzip pair, since no pack
// repo demonstrates a libarchive binding (see DESIGN.md).
type ArchiveReader struct {
	f  *os.File
	gz *gzip.Reader
	tr *tar.Reader
}

func (r *ArchiveReader) Open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	r.f = f
	var rdr io.Reader = f
	if strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".tgz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return err
		}
		r.gz = gz
		rdr = gz
	}
	r.tr = tar.NewReader(rdr)
	return nil
}

func (r *ArchiveReader) Read(buf []*hstring.HString) (int, error) {
	n := 0
	for n < len(buf) {
		hdr, err := r.tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(r.tr)
		if err != nil {
			continue
		}
		buf[n] = hstring.New(data, hdr.Name)
		n++
	}
	return n, nil
}

func (r *ArchiveReader) Close() error {
	var err error
	if r.gz != nil {
		err = r.gz.Close()
	}
	if r.f != nil {
		if cerr := r.f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
