// Package diff computes line diffs between a shader on disk and its freshly
// generated text, using the sergi/go-diff library.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines shown around a change.
const DefaultContext = 3

// LineType represents the type of diff line
type LineType int

const (
	LineContext LineType = iota // Unchanged context line
	LineAdded                   // Present only in the generated text
	LineRemoved                 // Present only on disk
)

// Line represents a single line in the diff
type Line struct {
	LineNum int
	Content string
	Type    LineType
}

// Hunk represents a group of changes
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// FileDiff represents the changes a regeneration would make to one file.
type FileDiff struct {
	Path  string
	Hunks []Hunk
	IsNew bool // no file on disk yet
}

// Empty reports whether the diff has no changes.
func (d *FileDiff) Empty() bool {
	return d == nil || (len(d.Hunks) == 0 && !d.IsNew)
}

// Engine computes line diffs.
type Engine struct {
	dmp     *diffmatchpatch.DiffMatchPatch
	context int
}

// NewEngine creates a diff engine showing contextLines around each change.
func NewEngine(contextLines int) *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // shaders are small; prefer exact diffs
	if contextLines < 0 {
		contextLines = 0
	}
	return &Engine{dmp: dmp, context: contextLines}
}

// Compute diffs current (the file on disk, empty when missing) against
// generated.
func (e *Engine) Compute(path, current, generated string, exists bool) *FileDiff {
	fd := &FileDiff{Path: path, IsNew: !exists}

	// Line-level reduction avoids newline boundary artifacts.
	a, b, lineArray := e.dmp.DiffLinesToChars(current, generated)
	diffs := e.dmp.DiffMain(a, b, false)
	diffs = e.dmp.DiffCharsToLines(diffs, lineArray)

	fd.Hunks = groupIntoHunks(toOperations(diffs), e.context)
	return fd
}

// Compute diffs with DefaultContext.
func Compute(path, current, generated string, exists bool) *FileDiff {
	return NewEngine(DefaultContext).Compute(path, current, generated, exists)
}

type operation struct {
	typ     LineType
	oldLine int
	newLine int
	content string
}

func toOperations(diffs []diffmatchpatch.Diff) []operation {
	var ops []operation
	oldLine, newLine := 0, 0

	for _, d := range diffs {
		lines := strings.Split(d.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}

		for _, line := range lines {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, operation{typ: LineContext, oldLine: oldLine, newLine: newLine, content: line})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, operation{typ: LineRemoved, oldLine: oldLine, newLine: -1, content: line})
				oldLine++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, operation{typ: LineAdded, oldLine: -1, newLine: newLine, content: line})
				newLine++
			}
		}
	}
	return ops
}

// groupIntoHunks groups operations into hunks with up to contextLines of
// unchanged lines on either side of a change.
func groupIntoHunks(ops []operation, contextLines int) []Hunk {
	var changes []int
	for i, op := range ops {
		if op.typ != LineContext {
			changes = append(changes, i)
		}
	}
	if len(changes) == 0 {
		return nil
	}

	var hunks []Hunk
	start := max(changes[0]-contextLines, 0)
	end := min(changes[0]+contextLines, len(ops)-1)
	for _, c := range changes[1:] {
		if c-contextLines <= end+1 {
			end = min(c+contextLines, len(ops)-1)
			continue
		}
		hunks = append(hunks, newHunk(ops[start:end+1]))
		start = max(c-contextLines, 0)
		end = min(c+contextLines, len(ops)-1)
	}
	return append(hunks, newHunk(ops[start:end+1]))
}

func newHunk(ops []operation) Hunk {
	h := Hunk{OldStart: -1, NewStart: -1}
	for _, op := range ops {
		lineNum := op.oldLine + 1
		if op.typ == LineAdded {
			lineNum = op.newLine + 1
		}
		h.Lines = append(h.Lines, Line{LineNum: lineNum, Content: op.content, Type: op.typ})

		if op.typ != LineAdded {
			if h.OldStart < 0 {
				h.OldStart = op.oldLine + 1
			}
			h.OldCount++
		}
		if op.typ != LineRemoved {
			if h.NewStart < 0 {
				h.NewStart = op.newLine + 1
			}
			h.NewCount++
		}
	}
	// Unified diff convention: an empty side starts at 0.
	if h.OldStart < 0 {
		h.OldStart = 0
	}
	if h.NewStart < 0 {
		h.NewStart = 0
	}
	return h
}

// Header returns the @@ line of a hunk.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

// Prefix returns the unified diff marker for a line type.
func (t LineType) Prefix() string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// Part classifies a line of unified diff output.
type Part int

const (
	PartFileHeader Part = iota // --- and +++ lines
	PartHunkHeader             // @@ lines
	PartContext
	PartAdded
	PartRemoved
)

// StyleFunc decorates one line of unified diff output.
type StyleFunc func(part Part, line string) string

func (t LineType) part() Part {
	switch t {
	case LineAdded:
		return PartAdded
	case LineRemoved:
		return PartRemoved
	default:
		return PartContext
	}
}

// Unified renders fd as a unified diff. A non-nil style decorates each line
// before its newline is written.
func Unified(fd *FileDiff, style StyleFunc) string {
	if fd.Empty() {
		return ""
	}
	var sb strings.Builder
	emit := func(part Part, line string) {
		if style != nil {
			line = style(part, line)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if fd.IsNew {
		emit(PartFileHeader, "--- /dev/null")
	} else {
		emit(PartFileHeader, "--- "+fd.Path)
	}
	emit(PartFileHeader, "+++ "+fd.Path+" (generated)")
	for _, h := range fd.Hunks {
		emit(PartHunkHeader, h.Header())
		for _, l := range h.Lines {
			emit(l.Type.part(), l.Type.Prefix()+l.Content)
		}
	}
	return sb.String()
}
