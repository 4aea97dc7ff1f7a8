// Package textdiff computes content fingerprints and line-level diffs for
// conflict display. Diffs are never used for merging.
package textdiff

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines kept on each side of a hunk.
// Changed runs separated by at most twice this many lines collapse into one hunk.
const contextLines = 3

// Fingerprint returns the SHA-256 hex digest of content.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Line types within a hunk.
const (
	LineAdd     = "add"
	LineRemove  = "remove"
	LineContext = "context"
)

// Line is a single diff line. OldLineNumber is 0 for added lines,
// NewLineNumber is 0 for removed lines; both are 1-based otherwise.
type Line struct {
	Type          string `json:"type"`
	Content       string `json:"content"`
	OldLineNumber int    `json:"oldLineNumber,omitempty"`
	NewLineNumber int    `json:"newLineNumber,omitempty"`
}

// Hunk covers one changed region. Old/New starts are 0 when the hunk has no
// lines on that side (pure insert into an empty file, or full deletion).
type Hunk struct {
	OldStart int    `json:"oldStart"`
	OldLines int    `json:"oldLines"`
	NewStart int    `json:"newStart"`
	NewLines int    `json:"newLines"`
	Lines    []Line `json:"lines"`
}

// Result is a full line diff. Hunks describe transforming base into other.
type Result struct {
	Hunks []Hunk `json:"hunks"`
}

// Diff computes a deterministic line-based diff between base and other.
func Diff(base, other string) Result {
	dmp := diffmatchpatch.New()
	a, b, arr := dmp.DiffLinesToChars(base, other)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), arr)

	var ops []Line
	oldN, newN := 1, 1
	for _, d := range diffs {
		for _, content := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, Line{Type: LineContext, Content: content, OldLineNumber: oldN, NewLineNumber: newN})
				oldN++
				newN++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, Line{Type: LineRemove, Content: content, OldLineNumber: oldN})
				oldN++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, Line{Type: LineAdd, Content: content, NewLineNumber: newN})
				newN++
			}
		}
	}
	return Result{Hunks: group(ops)}
}

// Summarize renders a one-line change description, e.g. "+12 lines, -4 lines".
func Summarize(r Result) string {
	var adds, dels int
	for _, h := range r.Hunks {
		for _, l := range h.Lines {
			switch l.Type {
			case LineAdd:
				adds++
			case LineRemove:
				dels++
			}
		}
	}
	if adds == 0 && dels == 0 {
		return "No changes"
	}
	var parts []string
	if adds > 0 {
		parts = append(parts, fmt.Sprintf("+%d %s", adds, plural(adds)))
	}
	if dels > 0 {
		parts = append(parts, fmt.Sprintf("-%d %s", dels, plural(dels)))
	}
	return strings.Join(parts, ", ")
}

func plural(n int) string {
	if n == 1 {
		return "line"
	}
	return "lines"
}

// splitLines splits a diff chunk into lines without trailing newlines. A
// chunk ending mid-line (no final \n) keeps its last fragment.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// group slices the flat op sequence into hunks with surrounding context.
func group(ops []Line) []Hunk {
	var hunks []Hunk
	n := len(ops)
	i := 0
	for i < n {
		if ops[i].Type == LineContext {
			i++
			continue
		}
		start, end := i, i
		j := i
		for j < n {
			if ops[j].Type != LineContext {
				end = j
				j++
				continue
			}
			k := j
			for k < n && ops[k].Type == LineContext {
				k++
			}
			if k == n || k-j > 2*contextLines {
				break
			}
			j = k
		}
		lo := start - contextLines
		if lo < 0 {
			lo = 0
		}
		hi := end + contextLines + 1
		if hi > n {
			hi = n
		}
		hunks = append(hunks, buildHunk(ops[lo:hi]))
		i = hi
	}
	return hunks
}

func buildHunk(lines []Line) Hunk {
	h := Hunk{Lines: append([]Line(nil), lines...)}
	for _, l := range lines {
		if l.Type != LineAdd {
			h.OldLines++
			if h.OldStart == 0 {
				h.OldStart = l.OldLineNumber
			}
		}
		if l.Type != LineRemove {
			h.NewLines++
			if h.NewStart == 0 {
				h.NewStart = l.NewLineNumber
			}
		}
	}
	return h
}
