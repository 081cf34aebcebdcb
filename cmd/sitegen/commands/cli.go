// Package commands implements the sitegen command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitegen/internal/config"
	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// LogLevelEnv overrides the log level when --debug is not given.
const LogLevelEnv = "SITEGEN_LOG_LEVEL"

// CLI is the root command. SOURCEDIR and DESTDIR override the configuration file.
type CLI struct {
	SourceDir string `arg:"" optional:"" name:"sourcedir" help:"Source directory (SOURCEDIR)"`
	DestDir   string `arg:"" optional:"" name:"destdir" help:"Output directory (DESTDIR)"`

	Config       string           `short:"c" help:"Configuration file to use" default:"siteconf.yaml"`
	Debug        bool             `short:"D" help:"Debug mode"`
	LogFormat    string           `name:"log-format" help:"Log format (text|json)" default:"text" enum:"text,json"`
	Watch        bool             `short:"w" help:"Rebuild when sources change"`
	RebuildEvery time.Duration    `name:"rebuild-every" help:"In watch mode, also rebuild on this interval"`
	MetricsFile  string           `name:"metrics-file" help:"Write Prometheus metrics to this file after each build"`
	Version      kong.VersionFlag `name:"version" help:"Show version and exit"`

	stderr io.Writer
}

// Run loads the configuration and builds the site, then keeps rebuilding
// in watch mode until ctx is canceled.
func (c *CLI) Run(ctx context.Context) error {
	c.setupLogging(false)

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	cfg.Apply(config.Overrides{
		SourceDir:   c.SourceDir,
		DestDir:     c.DestDir,
		Debug:       c.Debug,
		MetricsFile: c.MetricsFile,
	})
	if cfg.Debug && !c.Debug {
		c.setupLogging(true)
	}
	for k, v := range cfg.AsMap() {
		slog.Debug("Configuration", slog.String("key", k), slog.String("value", fmt.Sprint(v)))
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r := newRunner(cfg)
	err = r.build(ctx)
	if !c.Watch {
		return err
	}
	if err != nil {
		// Source edits cannot repair a bad theme or configuration.
		if ferrors.HasCategory(err, ferrors.CategoryConfig) {
			return err
		}
		slog.Error("Initial build failed; watching for changes", logfields.Error(err))
	}
	return r.watch(ctx, c.RebuildEvery)
}

func (c *CLI) setupLogging(debug bool) {
	level := config.NormalizeLogLevel(os.Getenv(LogLevelEnv)).Slog()
	if c.Debug || debug {
		level = slog.LevelDebug
	}
	w := c.stderr
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	format, err := config.ParseLogFormat(c.LogFormat)
	if err == nil && format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
	if err != nil {
		slog.Warn("Ignoring log format", logfields.Error(err))
	}
}
