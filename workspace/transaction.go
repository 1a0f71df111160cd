package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lexcodex/protosync/prototype"
)

// Transaction accumulates edits across one or more documents and applies
// them in one step. All new contents are staged in memory first; no file is
// touched until every staged result has been computed, so a failure while
// staging applies nothing.
type Transaction struct {
	store *Store
	order []string
	files map[string]*fileEdits
}

type fileEdits struct {
	create    bool
	replace   *string
	deletions []prototype.LineRange
	inserts   []string
}

// Begin starts an empty transaction against the store.
func (s *Store) Begin() *Transaction {
	return &Transaction{store: s, files: make(map[string]*fileEdits)}
}

func (t *Transaction) edits(path string) *fileEdits {
	fe, ok := t.files[path]
	if !ok {
		fe = &fileEdits{}
		t.files[path] = fe
		t.order = append(t.order, path)
	}
	return fe
}

// CreateFile records that path should exist after apply, starting empty
// unless other edits fill it.
func (t *Transaction) CreateFile(path string) {
	t.edits(path).create = true
}

// ReplaceAll replaces the file's entire content.
func (t *Transaction) ReplaceAll(path, text string) {
	fe := t.edits(path)
	fe.replace = &text
}

// DeleteLines removes a run of whole lines, addressed against the document
// snapshot the edit was computed from.
func (t *Transaction) DeleteLines(path string, r prototype.LineRange) {
	fe := t.edits(path)
	fe.deletions = append(fe.deletions, r)
}

// InsertTop inserts a line at the very top of the file.
func (t *Transaction) InsertTop(path, line string) {
	fe := t.edits(path)
	fe.inserts = append(fe.inserts, line)
}

// Empty reports whether the transaction carries no edits.
func (t *Transaction) Empty() bool {
	return len(t.files) == 0
}

// Paths lists the touched files in first-touch order.
func (t *Transaction) Paths() []string {
	return append([]string(nil), t.order...)
}

// Stage computes the post-apply content of every touched file without
// writing anything. Dry runs print this; Apply writes it.
func (t *Transaction) Stage() (map[string]string, error) {
	staged := make(map[string]string, len(t.files))
	for _, path := range t.order {
		fe := t.files[path]
		text, err := t.baseText(path, fe)
		if err != nil {
			return nil, err
		}
		if fe.replace != nil {
			text = *fe.replace
		}
		text = deleteLineRanges(text, fe.deletions)
		for _, line := range fe.inserts {
			text = line + "\n" + text
		}
		staged[path] = text
	}
	return staged, nil
}

// Apply stages every edit and then writes each file via a temp file and
// rename.
func (t *Transaction) Apply() error {
	staged, err := t.Stage()
	if err != nil {
		return err
	}
	for _, path := range t.order {
		if err := writeAtomic(path, staged[path]); err != nil {
			return fmt.Errorf("apply %s: %w", path, err)
		}
	}
	return nil
}

func (t *Transaction) baseText(path string, fe *fileEdits) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if fe.create && os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// deleteLineRanges removes the given whole-line ranges, each line together
// with its terminator. Ranges are applied highest-first so earlier deletions
// do not shift later ones.
func deleteLineRanges(text string, ranges []prototype.LineRange) string {
	if len(ranges) == 0 {
		return text
	}
	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	sorted := append([]prototype.LineRange(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })
	for _, r := range sorted {
		start, end := r.Start, r.End
		if start < 0 {
			start = 0
		}
		if end > len(lines) {
			end = len(lines)
		}
		if start >= end {
			continue
		}
		lines = append(lines[:start], lines[end:]...)
	}
	return strings.Join(lines, "")
}

func writeAtomic(path, text string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".protosync-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
