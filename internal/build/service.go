package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitegen/internal/config"
	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/git"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/markdown"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/observability"
	"git.home.luguber.info/inful/sitegen/internal/output"
	"git.home.luguber.info/inful/sitegen/internal/templates"
	"git.home.luguber.info/inful/sitegen/internal/theme"
	"git.home.luguber.info/inful/sitegen/internal/tree"
)

// Stage names, also used as metric labels.
const (
	StageTheme    = "theme"
	StageDiscover = "discover"
	StageRender   = "render"
	StageAssets   = "assets"
)

// Status represents the outcome of a build.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Request contains the inputs of one build.
type Request struct {
	Config *config.Config
}

// Result describes a finished build, successful or not.
type Result struct {
	ID     string
	Status Status
	// Revision is the source repository HEAD, empty outside a repository.
	Revision string
	// Counts holds discovered nodes by kind.
	Counts         Counts
	AssetsMirrored bool
	BytesWritten   int64

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Info is exposed to templates as "build".
type Info struct {
	ID       string
	Revision string
	Time     time.Time
}

// Service runs builds.
type Service struct {
	recorder metrics.Recorder
	revision func(dir string) (string, error)
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithRevisionFunc replaces git revision detection.
func WithRevisionFunc(fn func(dir string) (string, error)) Option {
	return func(s *Service) { s.revision = fn }
}

// WithClock sets the time source for build timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(opts ...Option) *Service {
	s := &Service{
		recorder: metrics.NoopRecorder{},
		revision: git.HeadRevision,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes theme, discover, render and assets in order. Cancellation is
// checked between stages. The returned Result is never nil.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{ID: uuid.NewString(), StartTime: s.now()}
	ctx = observability.WithBuildID(ctx, result.ID)

	err := s.run(ctx, req, result)

	result.EndTime = s.now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	s.recorder.ObserveBuildDuration(result.Duration)
	switch {
	case err == nil:
		result.Status = StatusSuccess
		s.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
		observability.InfoContext(ctx, "Build complete",
			logfields.Count(result.Counts.Total()),
			logfields.DurationMS(float64(result.Duration.Milliseconds())))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result.Status = StatusCanceled
		s.recorder.IncBuildOutcome(metrics.OutcomeCanceled)
		observability.WarnContext(ctx, "Build canceled")
	default:
		result.Status = StatusFailed
		s.recorder.IncBuildOutcome(metrics.OutcomeFailed)
	}
	return result, err
}

func (s *Service) run(ctx context.Context, req Request, result *Result) error {
	cfg := req.Config
	if cfg == nil {
		return ferrors.ConfigError("config required").Build()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sourceDir, err := filepath.Abs(cfg.SourceDir)
	if err != nil {
		return ferrors.FileSystemError("failed to resolve source directory").WithCause(err).
			WithContext("path", cfg.SourceDir).Build()
	}
	observability.InfoContext(ctx, "Starting build",
		logfields.Source(sourceDir), logfields.Dest(cfg.DestDir))

	var th *theme.Theme
	err = s.stage(ctx, StageTheme, func(ctx context.Context) error {
		var err error
		if th, err = theme.Load(cfg.Theme); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "failed to load theme").
				Fatal().WithContext("path", cfg.Theme).Build()
		}
		rev, err := s.revision(sourceDir)
		if err != nil {
			if ferrors.GetSeverity(err) == ferrors.SeverityFatal {
				return err
			}
			observability.WarnContext(ctx, "Failed to read source revision", logfields.Error(err))
		}
		result.Revision = rev
		return nil
	})
	if err != nil {
		return err
	}

	sourceFS := os.DirFS(sourceDir)
	var root *tree.Directory
	err = s.stage(ctx, StageDiscover, func(ctx context.Context) error {
		info, err := os.Stat(sourceDir)
		if errors.Is(err, fs.ErrNotExist) {
			return ferrors.WrapError(err, ferrors.CategoryNotFound, "source directory does not exist").
				Fatal().WithContext("path", sourceDir).Build()
		}
		if err == nil && !info.IsDir() {
			err = fmt.Errorf("%s is not a directory", sourceDir)
		}
		if err != nil {
			return ferrors.FileSystemError("source directory is not readable").WithCause(err).
				Fatal().WithContext("path", sourceDir).Build()
		}
		var counts Counts
		builder := NewBuilder(cfg, sourceDir)
		if rel, ok := nestedDir(sourceDir, cfg.DestDir); ok {
			builder.Exclude(rel)
		}
		root, counts, err = builder.Build(ctx, sourceFS)
		if err != nil {
			return ferrors.BuildError("failed to discover source tree").WithCause(err).Build()
		}
		result.Counts = counts
		observability.InfoContext(ctx, "Discovered source tree", logfields.Count(counts.Total()))
		return nil
	})
	if err != nil {
		return err
	}

	out := output.NewDisk(cfg.DestDir)
	defer func() {
		result.BytesWritten = out.BytesWritten()
		s.recorder.AddBytesWritten(int(result.BytesWritten))
	}()

	err = s.stage(ctx, StageRender, func(ctx context.Context) error {
		env := &tree.Env{
			Source:    sourceFS,
			Output:    out,
			Templates: templates.NewEngine(append(th.SearchPath(), os.DirFS("."))...),
			Pages:     markdown.NewConverter(),
			Globals: map[string]any{
				"config": cfg.AsMap(),
				"build":  Info{ID: result.ID, Revision: git.Short(result.Revision), Time: result.StartTime},
			},
			DirIndex: cfg.DirIndex,
		}
		if err := RenderAll(ctx, env, root, s.recorder); err != nil {
			return classifyRenderError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.stage(ctx, StageAssets, func(ctx context.Context) error {
		assets, ok := th.Assets()
		if !ok {
			observability.DebugContext(ctx, "Theme has no assets")
			return nil
		}
		if err := MirrorAssets(ctx, out, assets, cfg.ThemeAssetsPath); err != nil {
			return ferrors.FileSystemError("failed to mirror theme assets").WithCause(err).
				WithContext("path", cfg.ThemeAssetsPath).Build()
		}
		result.AssetsMirrored = true
		return nil
	})
}

// stage times fn and records its result. A canceled context stops the build
// before fn starts. Classified failures are tagged with the stage name.
func (s *Service) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		s.recorder.IncStageResult(name, metrics.ResultCanceled)
		return err
	}
	ctx = observability.WithStage(ctx, name)
	start := time.Now()
	observability.DebugContext(ctx, "Stage started")

	err := fn(ctx)
	s.recorder.ObserveStageDuration(name, time.Since(start))
	if err != nil {
		s.recorder.IncStageResult(name, metrics.ResultFatal)
		observability.ErrorContext(ctx, "Stage failed", logfields.Elapsed(start), logfields.Error(err))
		if classified, ok := ferrors.AsClassified(err); ok {
			if _, tagged := classified.Context().GetString("stage"); !tagged {
				return classified.WithContext("stage", name)
			}
		}
		return err
	}
	s.recorder.IncStageResult(name, metrics.ResultSuccess)
	observability.DebugContext(ctx, "Stage complete", logfields.Elapsed(start))
	return nil
}

// nestedDir reports dir relative to parent when dir lies strictly inside it.
func nestedDir(parent, dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(parent, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func classifyRenderError(err error) error {
	var (
		b       *ferrors.ErrorBuilder
		tplErr  *templates.Error
		pathErr *fs.PathError
	)
	switch {
	case errors.As(err, &tplErr), errors.Is(err, templates.ErrTemplateNotFound):
		b = ferrors.TemplateError("template failed")
	case errors.Is(err, markdown.ErrInvalidPage):
		b = ferrors.NewError(ferrors.CategoryMarkdown, "markdown page is invalid")
	case errors.As(err, &pathErr):
		b = ferrors.FileSystemError("failed to write output")
	default:
		b = ferrors.BuildError("render failed")
	}
	b = b.WithCause(err).WithContext("stage", StageRender)
	var renderErr *RenderError
	if errors.As(err, &renderErr) {
		b = b.WithContext("path", renderErr.Path).WithContext("source", renderErr.Source)
	}
	return b.Build()
}
