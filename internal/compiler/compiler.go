// Package compiler walks a course source tree and emits the OLX package:
// chapters, sequentials, verticals and their html, video and problem
// components, then the course manifest and static documents.
package compiler

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"time"

	"github.com/goliatone/go-coursegen/internal/classify"
	"github.com/goliatone/go-coursegen/internal/course"
	"github.com/goliatone/go-coursegen/internal/emitter"
	"github.com/goliatone/go-coursegen/internal/logging"
	"github.com/goliatone/go-coursegen/internal/markdown"
	"github.com/goliatone/go-coursegen/internal/scan"
)

// Options control a single run.
type Options struct {
	// KeepGoing collects unit failures instead of stopping at the first one.
	// Failed units are left out of their sequential.
	KeepGoing bool
	// DryRun leaves the output root untouched. Pair it with a dry-run writer.
	DryRun bool
}

// UnitFailure is a unit skipped in keep-going mode.
type UnitFailure struct {
	Path string
	Err  error
}

// Result summarises a run.
type Result struct {
	Tree     *course.Tree
	Counts   course.Counts
	Assets   []string
	Written  []string
	Failures []UnitFailure
	DryRun   bool
	Duration time.Duration
}

// Compiler runs compiles against one CompileContext.
type Compiler struct {
	cc  CompileContext
	now func() time.Time
}

// New validates cc and fills defaults.
func New(cc CompileContext) (*Compiler, error) {
	resolved, err := cc.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Compiler{cc: resolved, now: time.Now}, nil
}

// Compile performs one full run. On keep-going failures it returns the
// Result together with the joined unit errors.
func (c *Compiler) Compile(ctx context.Context, opts Options) (*Result, error) {
	started := c.now()
	logger := c.cc.Logger

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := c.cc.Metadata.Course()
	if err != nil {
		return nil, err
	}
	structure, err := c.cc.Metadata.Structure()
	if err != nil {
		return nil, err
	}

	plan, err := scan.Enumerate(c.cc.SourceFS, c.cc.Scan)
	if err != nil {
		return nil, &course.IOError{Op: "scan", Path: c.cc.Source, Err: err}
	}
	logger.Info("compiler.plan", "chapters", len(plan.Chapters), "units", plan.Units(), "dry_run", opts.DryRun)

	if !opts.DryRun {
		if err := c.cc.Emitter.Reset(ctx); err != nil {
			return nil, err
		}
	}

	run := &run{
		Compiler: c,
		opts:     opts,
		result: &Result{
			Tree:   &course.Tree{Root: root, Structure: structure},
			DryRun: opts.DryRun,
		},
	}

	chapterIDs := make([]string, 0, len(plan.Chapters))
	for _, chapter := range plan.Chapters {
		compiled, err := run.chapter(ctx, chapter)
		if err != nil {
			return nil, err
		}
		run.result.Tree.Chapters = append(run.result.Tree.Chapters, compiled)
		chapterIDs = append(chapterIDs, compiled.ID)
	}

	if err := c.cc.Emitter.Emit(ctx, emitter.TemplateCourseStructure, emitter.CourseStructurePath, emitter.Vars{
		"element":  structure,
		"children": chapterIDs,
	}); err != nil {
		return nil, err
	}
	if err := c.cc.Emitter.Emit(ctx, emitter.TemplateCourse, emitter.CoursePath, emitter.Vars{
		"element": root,
	}); err != nil {
		return nil, err
	}
	if err := c.cc.Emitter.EmitStatic(ctx); err != nil {
		return nil, err
	}

	result := run.result
	result.Counts = result.Tree.Counts()
	result.Written = c.cc.Emitter.Written()
	result.Duration = c.now().Sub(started)

	logger.Info("compiler.done",
		"chapters", result.Counts.Chapters,
		"sequentials", result.Counts.Sequentials,
		"verticals", result.Counts.Verticals,
		"assets", len(result.Assets),
		"failures", len(result.Failures),
		"elapsed", result.Duration,
	)

	if len(result.Failures) > 0 {
		errs := make([]error, 0, len(result.Failures))
		for _, failure := range result.Failures {
			errs = append(errs, failure.Err)
		}
		return result, errors.Join(errs...)
	}
	return result, nil
}

// run holds the state of one Compile call.
type run struct {
	*Compiler
	opts   Options
	result *Result
}

func (r *run) chapter(ctx context.Context, plan scan.Chapter) (course.Chapter, error) {
	prefix := AssetPrefix(plan.Dir)
	logger := logging.WithUnitContext(r.cc.Logger, plan.Dir, "", "")

	assets := make([]emitter.Asset, 0, len(plan.Images)+len(plan.Files))
	for _, rel := range append(append([]string(nil), plan.Images...), plan.Files...) {
		assets = append(assets, emitter.Asset{
			Source: filepath.Join(r.cc.Source, filepath.FromSlash(rel)),
			Name:   path.Base(rel),
		})
	}
	copied, err := r.cc.Emitter.CopyAssets(ctx, prefix, assets)
	if err != nil {
		return course.Chapter{}, atPath(err, plan.Dir, "", "")
	}
	r.result.Assets = append(r.result.Assets, copied...)

	chapter := course.Chapter{Dir: plan.Dir, AssetPrefix: prefix}
	for _, section := range plan.Sections {
		seq, err := r.sequential(ctx, plan.Dir, prefix, section)
		if err != nil {
			return course.Chapter{}, err
		}
		chapter.Sequentials = append(chapter.Sequentials, seq)
	}

	title, err := r.cc.Metadata.ChapterTitle(plan.Dir)
	if err != nil {
		return course.Chapter{}, atPath(err, plan.Dir, "", "")
	}
	chapter.ID = r.cc.IDs.NewID()
	chapter.Title = title

	children := make([]string, 0, len(chapter.Sequentials))
	for _, seq := range chapter.Sequentials {
		children = append(children, seq.ID)
	}
	if err := r.cc.Emitter.Emit(ctx, emitter.TemplateChapter, emitter.ChapterPath(chapter.ID), emitter.Vars{
		"title":    chapter.Title,
		"children": children,
	}); err != nil {
		return course.Chapter{}, atPath(err, plan.Dir, "", "")
	}
	logger.Info("compiler.chapter.emitted", "id", chapter.ID, "sequentials", len(children), "assets", len(copied))
	return chapter, nil
}

func (r *run) sequential(ctx context.Context, chapterDir, prefix string, plan scan.Section) (course.Sequential, error) {
	seq := course.Sequential{Dir: plan.Dir}

	for _, unitPath := range plan.Units {
		if err := ctx.Err(); err != nil {
			return course.Sequential{}, err
		}
		vertical, err := r.unit(ctx, prefix, unitPath)
		if err != nil {
			err = atPath(err, chapterDir, plan.Dir, unitPath)
			if r.opts.KeepGoing && course.IsUnitLevel(err) {
				r.cc.Logger.Warn("compiler.unit.skipped", "unit", unitPath, "error", err)
				r.result.Failures = append(r.result.Failures, UnitFailure{Path: unitPath, Err: err})
				continue
			}
			return course.Sequential{}, err
		}
		if _, ok := vertical.Payload.(course.ProblemPayload); ok {
			seq.Graded = true
		}
		seq.Verticals = append(seq.Verticals, vertical)
	}

	title, err := r.cc.Metadata.SectionTitle(plan.Dir)
	if err != nil {
		return course.Sequential{}, atPath(err, chapterDir, plan.Dir, "")
	}
	seq.ID = r.cc.IDs.NewID()
	seq.Title = title

	children := make([]string, 0, len(seq.Verticals))
	for _, vertical := range seq.Verticals {
		children = append(children, vertical.ID)
	}
	if err := r.cc.Emitter.Emit(ctx, emitter.TemplateSequential, emitter.SequentialPath(seq.ID), emitter.Vars{
		"title":    seq.Title,
		"graded":   seq.Graded,
		"children": children,
	}); err != nil {
		return course.Sequential{}, atPath(err, chapterDir, plan.Dir, "")
	}
	return seq, nil
}

// unit classifies and converts one file and only then writes its
// documents, so a failing unit leaves nothing behind.
func (r *run) unit(ctx context.Context, prefix, unitPath string) (course.Vertical, error) {
	logger := logging.WithUnitContext(r.cc.Logger, "", "", unitPath)

	source, err := fs.ReadFile(r.cc.SourceFS, unitPath)
	if err != nil {
		return course.Vertical{}, &course.IOError{Op: "read", Path: unitPath, Err: err}
	}
	front, body, err := markdown.ParseFrontMatter(source)
	if err != nil {
		return course.Vertical{}, &course.MalformedUnitError{Path: unitPath, Reason: err.Error()}
	}
	unit, err := classify.Classify(string(body))
	if err != nil {
		return course.Vertical{}, course.WithPath(err, unitPath)
	}

	title := unit.Title()
	if front.Title != "" {
		title = front.Title
	}
	vertical := course.Vertical{ID: r.cc.IDs.NewID(), Title: title, Source: unitPath}

	switch u := unit.(type) {
	case course.HTMLUnit:
		rendered, err := r.cc.Renderer.Render(ctx, u.Body, prefix)
		if err != nil {
			return course.Vertical{}, course.WithPath(err, unitPath)
		}
		payload := course.HTMLPayload{HTMLID: r.cc.IDs.NewID()}
		if err := r.writeHTML(ctx, payload.HTMLID, title, rendered); err != nil {
			return course.Vertical{}, err
		}
		if err := r.cc.Emitter.Emit(ctx, emitter.TemplateVertical, emitter.VerticalPath(vertical.ID), emitter.Vars{
			"title":   title,
			"html_id": payload.HTMLID,
		}); err != nil {
			return course.Vertical{}, err
		}
		vertical.Payload = payload

	case course.VideoUnit:
		rendered, err := r.cc.Renderer.Render(ctx, u.Body, prefix)
		if err != nil {
			return course.Vertical{}, course.WithPath(err, unitPath)
		}
		payload := course.VideoPayload{VideoID: r.cc.IDs.NewID(), HTMLID: r.cc.IDs.NewID(), ExternalRef: u.Ref}
		if err := r.cc.Emitter.Emit(ctx, emitter.TemplateVideo, emitter.VideoPath(payload.VideoID), emitter.Vars{
			"title":    title,
			"video_id": payload.VideoID,
			"ref":      payload.ExternalRef,
		}); err != nil {
			return course.Vertical{}, err
		}
		if err := r.writeHTML(ctx, payload.HTMLID, title, rendered); err != nil {
			return course.Vertical{}, err
		}
		if err := r.cc.Emitter.Emit(ctx, emitter.TemplateVerticalVideo, emitter.VerticalPath(vertical.ID), emitter.Vars{
			"title":    title,
			"video_id": payload.VideoID,
			"html_id":  payload.HTMLID,
		}); err != nil {
			return course.Vertical{}, err
		}
		vertical.Payload = payload

	case course.ProblemUnit:
		payload := course.ProblemPayload{ItemIDs: make([]string, 0, len(u.Fragments))}
		for _, fragment := range u.Fragments {
			id := r.cc.IDs.NewID()
			if err := r.cc.Emitter.WriteRaw(ctx, emitter.ProblemPath(id), []byte(fragment)); err != nil {
				return course.Vertical{}, err
			}
			payload.ItemIDs = append(payload.ItemIDs, id)
		}
		if err := r.cc.Emitter.Emit(ctx, emitter.TemplateVerticalProblem, emitter.VerticalPath(vertical.ID), emitter.Vars{
			"title":    title,
			"children": payload.ItemIDs,
		}); err != nil {
			return course.Vertical{}, err
		}
		vertical.Payload = payload

	default:
		return course.Vertical{}, &course.MalformedUnitError{Path: unitPath, Reason: "unsupported unit kind " + string(unit.Kind())}
	}

	logger.Debug("compiler.unit.emitted", "kind", unit.Kind(), "vertical", vertical.ID)
	return vertical, nil
}

func (r *run) writeHTML(ctx context.Context, id, title, rendered string) error {
	if err := r.cc.Emitter.Emit(ctx, emitter.TemplateHTML, emitter.HTMLPath(id), emitter.Vars{
		"title":   title,
		"html_id": id,
	}); err != nil {
		return err
	}
	return r.cc.Emitter.WriteRaw(ctx, emitter.HTMLBodyPath(id), []byte(rendered))
}
