package input

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/krieck-labs/strmx/internal/hstring"
)

// DirReader turns each regular file in a directory into one HString: the
// source tag is the filename, and a numeric label is parsed from the
// filename via a configurable regex, per spec.md section 6.
type DirReader struct {
	LabelRegex string // e.g. `^(\d+)_`; first capture group parses as float64

	dir     string
	entries []os.DirEntry
	pos     int
	re      *regexp.Regexp
}

func (r *DirReader) Open(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	var files []os.DirEntry
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e)
		}
	}
	r.dir = path
	r.entries = files
	r.pos = 0
	if r.LabelRegex != "" {
		re, err := regexp.Compile(r.LabelRegex)
		if err != nil {
			return err
		}
		r.re = re
	}
	return nil
}

func (r *DirReader) Read(buf []*hstring.HString) (int, error) {
	n := 0
	for n < len(buf) && r.pos < len(r.entries) {
		entry := r.entries[r.pos]
		r.pos++
		full := filepath.Join(r.dir, entry.Name())
		data, err := os.ReadFile(full)
		if err != nil {
			// per spec.md section 7: a per-item input error is a
			// warning, the item is skipped, unless it blocks progress.
			slog.Warn("skipping unreadable input file", "path", full, "err", err)
			continue
		}
		s := hstring.New(data, entry.Name())
		if r.re != nil {
			if m := r.re.FindStringSubmatch(entry.Name()); len(m) > 1 {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					s = s.WithLabel(v)
				}
			}
		}
		buf[n] = s
		n++
	}
	return n, nil
}

func (r *DirReader) Close() error { return nil }
