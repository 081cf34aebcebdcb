package commands

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/git"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/watch"
)

// runner owns the build service shared by the initial build and rebuilds.
type runner struct {
	cfg  *config.Config
	svc  *build.Service
	prom *metrics.PrometheusRecorder
}

func newRunner(cfg *config.Config, opts ...build.Option) *runner {
	r := &runner{cfg: cfg}
	if cfg.MetricsFile != "" {
		r.prom = metrics.NewPrometheusRecorder(nil)
		opts = append([]build.Option{build.WithRecorder(r.prom)}, opts...)
	}
	r.svc = build.NewService(opts...)
	return r
}

func (r *runner) build(ctx context.Context) error {
	result, err := r.svc.Run(ctx, build.Request{Config: r.cfg})
	if r.prom != nil {
		if werr := r.prom.WriteTextfile(r.cfg.MetricsFile); werr != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(r.cfg.MetricsFile), logfields.Error(werr))
		}
	}
	if err != nil {
		return err
	}
	slog.Info("Site generated",
		logfields.Dest(r.cfg.DestDir),
		logfields.Count(result.Counts.Total()),
		logfields.Revision(git.Short(result.Revision)),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return nil
}

func (r *runner) watch(ctx context.Context, every time.Duration) error {
	roots := []string{r.cfg.SourceDir}
	if r.cfg.Theme != "" {
		roots = append(roots, r.cfg.Theme)
	}
	w := watch.New(r.build, watch.Options{
		Roots:        roots,
		Ignore:       []string{r.cfg.DestDir},
		RebuildEvery: every,
	})
	if err := w.Run(ctx); err != nil {
		return ferrors.RuntimeError("watch mode failed").WithCause(err).Build()
	}
	return nil
}
