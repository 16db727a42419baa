// Package input implements the reader collaborators specified only at
// their interface in spec.md section 4.6/6: a directory reader, a
// line-oriented reader, and an archive (tar/tar.gz) reader, all behind
// one Reader interface. Supplements
// _examples/original_source/src/input/input.h's opaque
// open/read/close lifecycle with concrete implementations.
package input

import "github.com/krieck-labs/strmx/internal/hstring"

// Reader is the stateful iterator every input format implements.
type Reader interface {
	// Open prepares path for reading.
	Open(path string) error
	// Read fills up to len(buf) fresh HStrings and returns how many were
	// written. A return of (0, nil) means end of input.
	Read(buf []*hstring.HString) (int, error)
	// Close releases resources acquired by Open.
	Close() error
}

// New returns the Reader registered under name ("dir", "lines",
// "archive"), or an error if name is unrecognized.
func New(name string) (Reader, error) {
	switch name {
	case "dir":
		return &DirReader{}, nil
	case "lines":
		return &LineReader{}, nil
	case "archive":
		return &ArchiveReader{}, nil
	default:
		return nil, errUnknownReader(name)
	}
}

type unknownReaderErr string

func (e unknownReaderErr) Error() string { return "input: unknown reader " + string(e) }
func errUnknownReader(name string) error { return unknownReaderErr(name) }
