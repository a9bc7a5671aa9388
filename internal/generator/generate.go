// Package generator produces the toon shader sources from the shared property
// blocks and the shader templates.
//
// Generate and Render are pure: they map input texts to output texts. Runner
// performs the file I/O around them and never writes an output until every
// output of a shader set has been computed.
package generator

import (
	"time"

	"toongen/internal/merge"
	"toongen/internal/shaderblock"
	"toongen/internal/template"
)

// DefaultTimestampLayout formats the auto-generated comment timestamp,
// e.g. "Tue Oct 14 09:30:00 UTC 2026".
const DefaultTimestampLayout = "Mon Jan 02 15:04:05 UTC 2006"

// Options configures rendering.
type Options struct {
	Applier         *template.Applier
	TimestampLayout string
	Clock           func() time.Time

	// Strict rejects property sources without a balanced Properties block
	// instead of using their whole text.
	Strict bool
}

func (o Options) withDefaults() Options {
	if o.Applier == nil {
		o.Applier = template.NewApplier()
	}
	if o.TimestampLayout == "" {
		o.TimestampLayout = DefaultTimestampLayout
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// CommentLine returns the auto-generated comment for the current time.
func (o Options) CommentLine() string {
	o = o.withDefaults()
	return o.Applier.CommentPrefix + o.Clock().UTC().Format(o.TimestampLayout)
}

// Inputs are the four texts a shader pair is generated from.
type Inputs struct {
	CommonProperties       string
	TessellationProperties string
	BaseTemplate           string
	TessellatedTemplate    string
}

// Outputs are the generated shader pair.
type Outputs struct {
	Base        string
	Tessellated string
	Sections    merge.Sections
}

// Generate renders the base and tessellated shaders from one merge and one
// timestamp.
func Generate(in Inputs, opts Options) (*Outputs, error) {
	opts = opts.withDefaults()

	common, err := extract(in.CommonProperties, "", "common", true, opts.Strict)
	if err != nil {
		return nil, err
	}
	tess, err := extract(in.TessellationProperties, "", "tessellation", false, opts.Strict)
	if err != nil {
		return nil, err
	}

	sections := merge.Merge(common, tess, opts.Applier.Indent)
	comment := opts.CommentLine()

	base, _ := Render(opts.Applier, in.BaseTemplate, sections, false, comment)
	tessellated, _ := Render(opts.Applier, in.TessellatedTemplate, sections, true, comment)

	return &Outputs{
		Base:        base,
		Tessellated: tessellated,
		Sections:    sections,
	}, nil
}

// Render fills one template. A tessellated target gets the common block with
// tessellation overrides removed, or the full common block when that is
// empty, plus the tessellation block.
func Render(a *template.Applier, templateText string, sections merge.Sections, tessellated bool, comment string) (string, template.Report) {
	if !tessellated {
		return a.Apply(templateText, sections.Common, "", comment)
	}
	common := sections.CommonForTess
	if common == "" {
		common = sections.Common
	}
	return a.Apply(templateText, common, sections.Tess, comment)
}

// extract pulls the Properties block out of text. The common block must not
// be empty; the tessellation block may be.
func extract(text, path, descriptor string, required, strict bool) (string, error) {
	block, ok := shaderblock.Extract(template.StripBOM(text))
	if !ok {
		return "", &ExtractionError{Path: path, Descriptor: descriptor, Err: ErrEmptyInput}
	}
	if strict && !block.Matched {
		return "", &ExtractionError{Path: path, Descriptor: descriptor, Err: ErrNoPropertiesBlock}
	}
	if required && block.Content == "" {
		return "", &ExtractionError{Path: path, Descriptor: descriptor, Err: ErrEmptyPropertiesBlock}
	}
	return block.Content, nil
}
