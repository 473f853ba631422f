// Package udiff generates and applies GNU unified diffs. It backs both the
// manifest hot-swap path and the patch host service.
package udiff

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// ErrNoChange is returned by Generate when old and new are identical.
var ErrNoChange = errors.New("no change between old and new")

// Stats captures basic statistics about a unified-diff.
type Stats struct {
	Hunks      int
	Insertions int
	Deletions  int
}

// Generate produces a unified diff between old and new labelled with path.
func Generate(old, new []byte, path string, contextLines int) (string, Stats, error) {
	if bytes.Equal(old, new) {
		return "", Stats{}, ErrNoChange
	}
	if path == "" {
		path = "file"
	}
	if contextLines <= 0 {
		contextLines = 3
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(old)),
		B:        difflib.SplitLines(string(new)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  contextLines,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", Stats{}, fmt.Errorf("diff generation: %w", err)
	}

	var stats Stats
	for _, l := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(l, "@@"):
			stats.Hunks++
		case strings.HasPrefix(l, "+") && !strings.HasPrefix(l, "+++"):
			stats.Insertions++
		case strings.HasPrefix(l, "-") && !strings.HasPrefix(l, "---"):
			stats.Deletions++
		}
	}
	return patch, stats, nil
}

// Apply applies diff hunks to oldData and writes the patched document to w.
// It walks the original lines sequentially, verifies every context and
// delete line for consistency, and emits additions. Any mismatch aborts.
func Apply(oldData []byte, hunks []*sgdiff.Hunk, w io.Writer) error {
	// Preserve original newline layout.
	oldLines := strings.SplitAfter(string(oldData), "\n")
	origIdx := 0 // 0-based index into oldLines

	linesEqual := func(a, b string) bool {
		if a == b {
			return true
		}
		// Newline-at-EOF equivalence: SplitAfter leaves an empty string as
		// the last element whereas a diff encodes it as "\n" context line.
		if (a == "" && b == "\n") || (a == "\n" && b == "") {
			return true
		}
		return false
	}

	for _, h := range hunks {
		// Copy untouched lines that appear before this hunk. OrigStartLine
		// is 1-based; everything < that line passes through.
		targetIdx := int(h.OrigStartLine) - 1
		for origIdx < targetIdx && origIdx < len(oldLines) {
			if _, err := io.WriteString(w, oldLines[origIdx]); err != nil {
				return err
			}
			origIdx++
		}

		for _, hl := range strings.SplitAfter(string(h.Body), "\n") {
			if hl == "" { // final split can be empty
				continue
			}
			tag := hl[0]
			line := hl[1:] // includes trailing newline (if present)

			switch tag {
			case ' ': // context — must match original, then copy through
				if origIdx >= len(oldLines) || !linesEqual(oldLines[origIdx], line) {
					return fmt.Errorf("patch failed: context mismatch at original line %d", origIdx+1)
				}
				// An implicit final newline has already been emitted as part
				// of the previous line; skip it to avoid a spurious blank.
				if !(oldLines[origIdx] == "" && line == "\n") {
					if _, err := io.WriteString(w, line); err != nil {
						return err
					}
				}
				origIdx++

			case '-': // deletion — must match original, *do not* copy
				if origIdx >= len(oldLines) || !linesEqual(oldLines[origIdx], line) {
					return fmt.Errorf("patch failed: delete mismatch at original line %d", origIdx+1)
				}
				origIdx++

			case '+': // addition — write to output, do not advance original
				if _, err := io.WriteString(w, line); err != nil {
					return err
				}

			case '\\': // "\ No newline at end of file" — ignore
				continue

			default:
				return fmt.Errorf("patch failed: unexpected hunk tag %q", tag)
			}
		}
	}

	// Copy any remainder after the last hunk.
	for ; origIdx < len(oldLines); origIdx++ {
		if _, err := io.WriteString(w, oldLines[origIdx]); err != nil {
			return err
		}
	}
	return nil
}
