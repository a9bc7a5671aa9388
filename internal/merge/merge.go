// Package merge combines the common and tessellation property blocks into
// the ordered sections substituted into the toon shader templates.
//
// Properties are deduplicated within their own source, last declaration
// winning, except that a hidden re-declaration never replaces a visible one.
// A property declared by the tessellation source is dropped from the common
// section of the tessellated shader so the compiled shader does not declare
// it twice.
package merge

import (
	"strings"

	"toongen/internal/shaderblock"
)

// Source identifies which property block a line came from.
type Source int

const (
	SourceCommon Source = iota
	SourceTessellation
)

func (s Source) String() string {
	switch s {
	case SourceCommon:
		return "common"
	case SourceTessellation:
		return "tessellation"
	default:
		return "unknown"
	}
}

// Entry is one retained line of a property block.
type Entry struct {
	Line        string // trimmed declaration text, possibly empty or a comment
	Source      Source
	Name        string // property identifier, empty when HasName is false
	HasName     bool
	Hidden      bool
	SkipForTess bool // common entry overridden by the tessellation source
}

// Sections holds the rendered blocks for both shader targets.
type Sections struct {
	Common        string // common block for the base shader
	CommonForTess string // common block minus tessellation overrides
	Tess          string // tessellation block
	Count         int    // distinct (source, name) pairs
}

type entryKey struct {
	source Source
	name   string
}

// builder folds lines into an ordered entry list with a (source, name) index.
type builder struct {
	entries []Entry
	index   map[entryKey]int
}

func (b *builder) add(text string, source Source) {
	if text == "" {
		return
	}
	for _, raw := range shaderblock.SplitLines(text) {
		line := strings.TrimSpace(raw)
		entry := Entry{
			Line:   line,
			Source: source,
			Hidden: shaderblock.IsHidden(line),
		}
		if line == "" {
			b.entries = append(b.entries, entry)
			continue
		}

		entry.Name, entry.HasName = shaderblock.ParseName(line)
		if !entry.HasName {
			b.entries = append(b.entries, entry)
			continue
		}

		key := entryKey{source: source, name: entry.Name}
		if i, seen := b.index[key]; seen {
			if shouldReplace(b.entries[i], entry) {
				b.entries[i] = entry
			}
			continue
		}
		b.index[key] = len(b.entries)
		b.entries = append(b.entries, entry)
	}
}

// shouldReplace keeps a visible declaration over a later hidden one; in every
// other combination the later declaration wins.
func shouldReplace(existing, candidate Entry) bool {
	return existing.Hidden || !candidate.Hidden
}

// Entries returns the retained entries, in order, after deduplication and
// override marking.
func Entries(commonText, tessText string) []Entry {
	b := &builder{index: make(map[entryKey]int)}
	b.add(commonText, SourceCommon)
	b.add(tessText, SourceTessellation)

	overrides := make(map[string]bool)
	for key := range b.index {
		if key.source == SourceTessellation {
			overrides[key.name] = true
		}
	}
	for i := range b.entries {
		e := &b.entries[i]
		e.SkipForTess = e.Source == SourceCommon && e.HasName && overrides[e.Name]
	}
	return b.entries
}

// Merge builds the three property sections. Non-empty lines are prefixed with
// indent; blank lines stay empty.
func Merge(commonText, tessText, indent string) Sections {
	entries := Entries(commonText, tessText)

	var common, commonForTess, tess []string
	pairs := make(map[entryKey]struct{})
	for _, e := range entries {
		if e.HasName {
			pairs[entryKey{source: e.Source, name: e.Name}] = struct{}{}
		}

		line := e.Line
		if line != "" {
			line = indent + line
		}

		switch e.Source {
		case SourceTessellation:
			tess = append(tess, line)
		case SourceCommon:
			common = append(common, line)
			if !e.SkipForTess {
				commonForTess = append(commonForTess, line)
			}
		}
	}

	return Sections{
		Common:        strings.Join(CleanupLines(common), "\n"),
		CommonForTess: strings.Join(CleanupLines(commonForTess), "\n"),
		Tess:          strings.Join(CleanupLines(tess), "\n"),
		Count:         len(pairs),
	}
}

// CleanupLines strips leading and trailing blank lines and collapses runs of
// blank lines to one. The input is not modified.
func CleanupLines(lines []string) []string {
	first, last := 0, len(lines)
	for first < last && lines[first] == "" {
		first++
	}
	for last > first && lines[last-1] == "" {
		last--
	}

	cleaned := make([]string, 0, last-first)
	for _, line := range lines[first:last] {
		if line == "" && len(cleaned) > 0 && cleaned[len(cleaned)-1] == "" {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return cleaned
}
