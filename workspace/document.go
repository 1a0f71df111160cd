// Package workspace is the tool's view of the files it synchronizes: document
// snapshots, source/header pairing, and the transaction that applies every
// computed edit in one step.
package workspace

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lexcodex/protosync/prototype"
)

// Document is an immutable snapshot of one file's content. The synthesis
// functions read it; new content is produced as whole strings and applied
// through a Transaction, never by mutating the snapshot.
type Document struct {
	Path string
	Text string
}

// Lines returns the snapshot split into lines without terminators.
func (d *Document) Lines() []string {
	return prototype.SplitLines(d.Text)
}

// LineCount counts the snapshot's lines.
func (d *Document) LineCount() int {
	return len(d.Lines())
}

// BaseName is the file name without directory or extension, the input to
// guard macro and include derivation.
func (d *Document) BaseName() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Store opens document snapshots from disk.
type Store struct{}

// NewStore returns a file-backed store.
func NewStore() *Store {
	return &Store{}
}

// Open reads a snapshot of the file at path.
func (s *Store) Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Text: string(data)}, nil
}

// Exists reports whether path is present on disk.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateEmpty creates an empty file at path without clobbering an existing
// one.
func (s *Store) CreateEmpty(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
