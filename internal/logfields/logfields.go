package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeySource     = "source"
	KeyDest       = "dest"
	KeyKind       = "kind"
	KeyTemplate   = "template"
	KeyConfigFile = "config_file"
	KeyRevision   = "revision"
	KeyEvent      = "event"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Source(s string) slog.Attr        { return slog.String(KeySource, s) }
func Dest(d string) slog.Attr          { return slog.String(KeyDest, d) }
func Kind(k string) slog.Attr          { return slog.String(KeyKind, k) }
func Template(id string) slog.Attr     { return slog.String(KeyTemplate, id) }
func ConfigFile(path string) slog.Attr { return slog.String(KeyConfigFile, path) }
func Revision(rev string) slog.Attr    { return slog.String(KeyRevision, rev) }
func Event(e string) slog.Attr         { return slog.String(KeyEvent, e) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }

// Elapsed reports the time since start in milliseconds.
func Elapsed(start time.Time) slog.Attr {
	return DurationMS(float64(time.Since(start).Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
