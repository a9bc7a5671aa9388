// Package shaderblock reads Unity shader property blocks: it locates the
// brace-delimited Properties section of a shader or .shaderblock file and
// parses the property names declared on each line.
package shaderblock

import (
	"regexp"
	"strings"
)

var (
	propertiesOpen = regexp.MustCompile(`Properties\s*\{`)
	lineBreaks     = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Block is the result of extracting a Properties section.
type Block struct {
	// Content is the trimmed inner text of the block, one declaration per line.
	Content string

	// Matched is false when no balanced Properties block was found and
	// Content holds the whole input, trimmed.
	Matched bool
}

// SplitLines splits text on \r\n, \n or \r. Lines are returned untrimmed.
func SplitLines(text string) []string {
	return strings.Split(lineBreaks.Replace(text), "\n")
}

// Extract returns the inner content of the first Properties { ... } block in
// text. It reports false only for empty input; a missing keyword or unmatched
// braces fall back to the whole input trimmed, with Matched unset.
func Extract(text string) (Block, bool) {
	if text == "" {
		return Block{}, false
	}

	loc := propertiesOpen.FindStringIndex(text)
	if loc == nil {
		return Block{Content: strings.TrimSpace(text)}, true
	}

	open := loc[1] - 1
	end := matchingBrace(text, open)
	if end < 0 {
		return Block{Content: strings.TrimSpace(text)}, true
	}

	lines := SplitLines(text[open+1 : end])
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	first, last := 0, len(lines)
	for first < last && lines[first] == "" {
		first++
	}
	for last > first && lines[last-1] == "" {
		last--
	}

	return Block{Content: strings.Join(lines[first:last], "\n"), Matched: true}, true
}

// matchingBrace returns the index of the brace closing the one at open, or -1.
func matchingBrace(text string, open int) int {
	depth := 1
	for i := open + 1; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
