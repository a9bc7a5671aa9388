// Package template fills the placeholder tokens of a shader template with
// generated property blocks and stamps the auto-generated comment line.
package template

import (
	"strings"
)

const (
	// DefaultCommonPlaceholder marks where the common property block goes.
	DefaultCommonPlaceholder = "[COMMON_PROPERTIES]"
	// DefaultTessellationPlaceholder marks where the tessellation block goes.
	DefaultTessellationPlaceholder = "[TESSELLATION_PROPERTIES]"
	// DefaultIndent is the indentation of a property inside a Properties block.
	DefaultIndent = "        "
	// AutoGeneratedPrefix starts the comment line stamped on generated shaders.
	AutoGeneratedPrefix = "//Auto-generated on "

	byteOrderMark = "\ufeff"
)

// Placeholders are the literal tokens replaced in a template.
type Placeholders struct {
	Common       string
	Tessellation string
}

// DefaultPlaceholders returns the tokens used by the toon shader templates.
func DefaultPlaceholders() Placeholders {
	return Placeholders{
		Common:       DefaultCommonPlaceholder,
		Tessellation: DefaultTessellationPlaceholder,
	}
}

// Report records which placeholders were present in a template.
type Report struct {
	CommonFound       bool
	TessellationFound bool
}

// Applier renders templates with a fixed set of placeholders, indent and
// comment prefix.
type Applier struct {
	Placeholders  Placeholders
	Indent        string
	CommentPrefix string
}

// NewApplier returns an Applier with the toon shader defaults.
func NewApplier() *Applier {
	return &Applier{
		Placeholders:  DefaultPlaceholders(),
		Indent:        DefaultIndent,
		CommentPrefix: AutoGeneratedPrefix,
	}
}

// Substitute replaces every placeholder occurrence with its block in a single
// pass, so tokens inside an inserted block are left as they are. At each
// position the indented form of a token wins over the bare token, which keeps
// the block's own indentation from being doubled.
func (a *Applier) Substitute(text, commonBlock, tessBlock string) (string, Report) {
	text = StripBOM(text)

	var report Report
	var pairs []string
	pairs, report.CommonFound = tokenPairs(pairs, text, a.Indent, a.Placeholders.Common, commonBlock)
	pairs, report.TessellationFound = tokenPairs(pairs, text, a.Indent, a.Placeholders.Tessellation, tessBlock)
	if len(pairs) == 0 {
		return text, report
	}
	return strings.NewReplacer(pairs...).Replace(text), report
}

// Apply substitutes both blocks, stamps commentLine and normalizes the result.
func (a *Applier) Apply(templateText, commonBlock, tessBlock, commentLine string) (string, Report) {
	text, report := a.Substitute(templateText, commonBlock, tessBlock)
	text = normalizeLineEndings(text)
	text = ApplyAutoGeneratedComment(text, a.CommentPrefix, commentLine)
	return Normalize(text), report
}

// Apply renders templateText with the default placeholders.
func Apply(templateText, commonBlock, tessBlock, commentLine string) string {
	out, _ := NewApplier().Apply(templateText, commonBlock, tessBlock, commentLine)
	return out
}

// tokenPairs appends the replacer pairs for token when text contains it.
func tokenPairs(pairs []string, text, indent, token, block string) ([]string, bool) {
	if token == "" || !strings.Contains(text, token) {
		return pairs, false
	}
	if indent != "" {
		pairs = append(pairs, indent+token, block)
	}
	return append(pairs, token, block), true
}

// ApplyAutoGeneratedComment replaces line 0 with commentLine when it already
// starts with prefix, and inserts commentLine as line 0 otherwise.
func ApplyAutoGeneratedComment(text, prefix, commentLine string) string {
	lines := strings.Split(text, "\n")
	if prefix != "" && strings.HasPrefix(lines[0], prefix) {
		lines[0] = commentLine
	} else {
		lines = append([]string{commentLine}, lines...)
	}
	return strings.Join(lines, "\n")
}

// Normalize converts line endings to \n and ends text with exactly one \n.
func Normalize(text string) string {
	text = normalizeLineEndings(StripBOM(text))
	return strings.TrimRight(text, "\n") + "\n"
}

// StripBOM removes leading UTF-8 byte order marks.
func StripBOM(text string) string {
	for strings.HasPrefix(text, byteOrderMark) {
		text = text[len(byteOrderMark):]
	}
	return text
}

// StripAutoGeneratedComment drops line 0 when it is an auto-generated
// comment, so two renders can be compared regardless of their timestamps.
func StripAutoGeneratedComment(text, prefix string) string {
	first, rest, found := strings.Cut(text, "\n")
	if prefix != "" && strings.HasPrefix(first, prefix) {
		if !found {
			return ""
		}
		return rest
	}
	return text
}

func normalizeLineEndings(text string) string {
	return strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")
}
