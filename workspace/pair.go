package workspace

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFile marks a file that is neither a C source nor a C
	// header. Callers treat it as a silent no-op, not a failure.
	ErrUnsupportedFile = errors.New("not a .c or .h file")

	// ErrHeaderInaccessible marks a counterpart header that could not be
	// read or staged for creation.
	ErrHeaderInaccessible = errors.New("header inaccessible")
)

// Pair is the resolved source/header couple for one synchronization run.
// Header is nil when the run operates on a lone source file. A Header with
// Missing set does not exist on disk yet; the transaction creates it.
type Pair struct {
	Source *Document
	Header *Document
	// Missing is true when Header was resolved but absent from disk, so
	// its snapshot is empty and the file itself still has to be created.
	Missing bool
}

// ResolvePair decides which of (source, header) the given path is, and
// locates the counterpart. headerMode controls whether a .c file gets a
// header counterpart at all; a .h file always implies its source.
func (s *Store) ResolvePair(path string, headerMode bool) (*Pair, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c":
		source, err := s.Open(path)
		if err != nil {
			return nil, err
		}
		if !headerMode {
			return &Pair{Source: source}, nil
		}
		return s.withHeader(source, counterpart(path, ".h"))
	case ".h":
		sourcePath := counterpart(path, ".c")
		if !s.Exists(sourcePath) {
			if err := s.CreateEmpty(sourcePath); err != nil {
				return nil, err
			}
		}
		source, err := s.Open(sourcePath)
		if err != nil {
			return nil, err
		}
		return s.withHeader(source, path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFile)
	}
}

func (s *Store) withHeader(source *Document, headerPath string) (*Pair, error) {
	if !s.Exists(headerPath) {
		return &Pair{
			Source:  source,
			Header:  &Document{Path: headerPath},
			Missing: true,
		}, nil
	}
	header, err := s.Open(headerPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", headerPath, ErrHeaderInaccessible, err)
	}
	return &Pair{Source: source, Header: header}, nil
}

// counterpart swaps the file extension, keeping directory and base name.
func counterpart(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
