package input

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/krieck-labs/strmx/internal/hstring"
)

// LineReader treats each non-empty line of a file as one string. A line
// may carry a leading "label:" prefix assigning a numeric label, per
// spec.md section 6.
type LineReader struct {
	f       *os.File
	scanner *bufio.Scanner
	lineNo  int
}

func (r *LineReader) Open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	r.f = f
	r.scanner = bufio.NewScanner(f)
	r.scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	r.lineNo = 0
	return nil
}

func (r *LineReader) Read(buf []*hstring.HString) (int, error) {
	n := 0
	for n < len(buf) {
		if !r.scanner.Scan() {
			break
		}
		r.lineNo++
		line := r.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		label, rest, hasLabel := splitLabel(line)
		s := hstring.New([]byte(rest), "line:"+strconv.Itoa(r.lineNo))
		if hasLabel {
			s = s.WithLabel(label)
		}
		buf[n] = s
		n++
	}
	if err := r.scanner.Err(); err != nil {
		return n, err
	}
	return n, nil
}

func (r *LineReader) Close() error {
	if r.f == nil {
		return nil
	}
	return r.f.Close()
}

// splitLabel parses an optional leading "label:" prefix off line.
func splitLabel(line string) (label float64, rest string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx <= 0 {
		return 0, line, false
	}
	v, err := strconv.ParseFloat(line[:idx], 64)
	if err != nil {
		return 0, line, false
	}
	return v, line[idx+1:], true
}
