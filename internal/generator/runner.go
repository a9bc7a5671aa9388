package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"toongen/internal/diff"
	"toongen/internal/logging"
	"toongen/internal/merge"
	"toongen/internal/template"
)

// Target is one generated shader.
type Target struct {
	Name        string
	Template    string // template path; the existing Output is used when missing
	Output      string
	Tessellated bool
}

// ShaderSet is a group of targets generated from the same property sources.
type ShaderSet struct {
	Name         string
	Common       string // common property block path
	Tessellation string // tessellation property block path, optional
	Targets      []Target
}

// Rendered is a computed, not yet written, target.
type Rendered struct {
	Target   Target
	Source   string // the template or existing shader that was read
	Content  string
	Report   template.Report
	Previous string // content on disk before generation
	Existed  bool
}

// Result describes one shader set run.
type Result struct {
	Set      string
	RunID    string
	Sections merge.Sections
	Outputs  []Rendered
}

// Drift is a target whose file on disk differs from what would be generated.
type Drift struct {
	Target Target
	Diff   *diff.FileDiff
}

// Runner generates shader sets through a FileSystem.
type Runner struct {
	fs     FileSystem
	opts   Options
	logger *zap.Logger
}

// NewRunner creates a Runner. A nil logger discards output.
func NewRunner(fsys FileSystem, opts Options, logger *zap.Logger) *Runner {
	return &Runner{
		fs:     fsys,
		opts:   opts.withDefaults(),
		logger: logging.For(logger, logging.CategoryGenerate),
	}
}

// Render reads the inputs of set and computes every target in memory.
func (r *Runner) Render(ctx context.Context, set ShaderSet) (*Result, error) {
	result := &Result{Set: set.Name, RunID: uuid.NewString()[:8]}
	log := r.logger.With(zap.String("set", set.Name), zap.String("run_id", result.RunID))

	common, err := r.loadProperties(set.Common, "common", true, log)
	if err != nil {
		return nil, err
	}
	var tess string
	if set.Tessellation != "" {
		if tess, err = r.loadProperties(set.Tessellation, "tessellation", false, log); err != nil {
			return nil, err
		}
	}

	result.Sections = merge.Merge(common, tess, r.opts.Applier.Indent)
	comment := r.opts.CommentLine()
	log.Debug("Merged property sections",
		zap.Int("entries", result.Sections.Count),
		zap.Int("common_length", len(result.Sections.Common)),
		zap.Int("tess_length", len(result.Sections.Tess)))

	for _, target := range set.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rendered, err := r.renderTarget(target, result.Sections, comment, log)
		if err != nil {
			return nil, err
		}
		result.Outputs = append(result.Outputs, *rendered)
	}
	return result, nil
}

// Run renders set and writes every target. Nothing is written unless all
// targets rendered successfully.
func (r *Runner) Run(ctx context.Context, set ShaderSet) (*Result, error) {
	result, err := r.Render(ctx, set)
	if err != nil {
		r.logger.Error("Shader generation failed", zap.String("set", set.Name), zap.Error(err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, out := range result.Outputs {
		if err := r.fs.WriteFile(out.Target.Output, []byte(out.Content)); err != nil {
			werr := &WriteError{Path: out.Target.Output, Err: err}
			r.logger.Error("Shader generation failed", zap.String("set", set.Name), zap.Error(werr))
			return nil, werr
		}
		r.logger.Info("Wrote shader",
			zap.String("set", set.Name),
			zap.String("run_id", result.RunID),
			zap.String("path", out.Target.Output),
			zap.Int("length", len(out.Content)))
	}
	return result, nil
}

// RunAll runs independent shader sets concurrently. A failing set does not
// stop the others; results are in the order of sets, nil for a set that
// failed, and the per-set errors are joined.
func (r *Runner) RunAll(ctx context.Context, sets []ShaderSet) ([]*Result, error) {
	results := make([]*Result, len(sets))
	errs := make([]error, len(sets))
	var eg errgroup.Group
	for i, set := range sets {
		eg.Go(func() error {
			res, err := r.Run(ctx, set)
			if err != nil {
				errs[i] = fmt.Errorf("shader set %q: %w", set.Name, err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = eg.Wait()
	return results, errors.Join(errs...)
}

// Check renders set without writing and reports targets whose file on disk
// differs from the generated text. The auto-generated comment line is
// ignored so timestamps alone never count as drift.
func (r *Runner) Check(ctx context.Context, set ShaderSet) ([]Drift, error) {
	result, err := r.Render(ctx, set)
	if err != nil {
		return nil, err
	}

	prefix := r.opts.Applier.CommentPrefix
	var drifts []Drift
	for _, out := range result.Outputs {
		current := ""
		if out.Existed {
			current = template.StripAutoGeneratedComment(template.Normalize(out.Previous), prefix)
		}
		generated := template.StripAutoGeneratedComment(out.Content, prefix)
		if out.Existed && current == generated {
			continue
		}
		drifts = append(drifts, Drift{
			Target: out.Target,
			Diff:   diff.Compute(out.Target.Output, current, generated, out.Existed),
		})
	}
	return drifts, nil
}

func (r *Runner) loadProperties(path, descriptor string, required bool, log *zap.Logger) (string, error) {
	text, err := r.read(path)
	if err != nil {
		return "", err
	}
	content, err := extract(text, path, descriptor, required, r.opts.Strict)
	if err != nil {
		return "", err
	}
	log.Info(fmt.Sprintf("Extracted %s properties block", descriptor),
		zap.String("path", path),
		zap.Int("length", len(content)))
	return content, nil
}

func (r *Runner) renderTarget(target Target, sections merge.Sections, comment string, log *zap.Logger) (*Rendered, error) {
	rendered := &Rendered{Target: target}

	previous, err := r.fs.ReadFile(target.Output)
	switch {
	case err == nil:
		rendered.Previous = string(previous)
		rendered.Existed = true
	case !errors.Is(err, fs.ErrNotExist):
		return nil, &ReadError{Path: target.Output, Err: err}
	}

	source, text, err := r.readTemplate(target, rendered)
	if err != nil {
		return nil, err
	}
	rendered.Source = source
	rendered.Content, rendered.Report = Render(r.opts.Applier, text, sections, target.Tessellated, comment)

	if !rendered.Report.CommonFound {
		log.Warn("Common properties placeholder not found",
			zap.String("target", target.Name),
			zap.String("template", source),
			zap.String("placeholder", r.opts.Applier.Placeholders.Common))
	}
	if target.Tessellated && !rendered.Report.TessellationFound {
		log.Warn("Tessellation properties placeholder not found",
			zap.String("target", target.Name),
			zap.String("template", source),
			zap.String("placeholder", r.opts.Applier.Placeholders.Tessellation))
	}
	log.Debug("Rendered shader",
		zap.String("target", target.Name),
		zap.String("template", source),
		zap.Int("length", len(rendered.Content)))
	return rendered, nil
}

// readTemplate reads the target's template, falling back to the shader it
// previously generated.
func (r *Runner) readTemplate(target Target, rendered *Rendered) (string, string, error) {
	if target.Template != "" {
		text, err := r.read(target.Template)
		if err == nil {
			return target.Template, text, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", "", err
		}
	}
	if !rendered.Existed {
		return "", "", &ReadError{Path: target.Output, Err: ErrNoTemplate}
	}
	text := template.StripBOM(rendered.Previous)
	if text == "" {
		return "", "", &ReadError{Path: target.Output, Err: ErrEmptyInput}
	}
	return target.Output, text, nil
}

// read returns the BOM-stripped content of path; empty files are errors.
func (r *Runner) read(path string) (string, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return "", &ReadError{Path: path, Err: err}
	}
	text := template.StripBOM(string(data))
	if text == "" {
		return "", &ReadError{Path: path, Err: ErrEmptyInput}
	}
	return text, nil
}
