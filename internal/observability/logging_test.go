package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestContextValues(t *testing.T) {
	ctx := WithStage(WithBuildID(context.Background(), "build-1"), "render")
	ctx = WithWatch(ctx)

	lc := GetContext(ctx)
	assert.Equal(t, "build-1", lc.BuildID)
	assert.Equal(t, "render", lc.Stage)
	assert.True(t, lc.Watch)

	assert.Equal(t, LogContext{}, GetContext(context.Background()))
}

func TestStageOverridesKeepBuildID(t *testing.T) {
	ctx := WithBuildID(context.Background(), "b")
	discover := WithStage(ctx, "discover")
	render := WithStage(discover, "render")

	assert.Equal(t, "discover", GetContext(discover).Stage)
	assert.Equal(t, "render", GetContext(render).Stage)
	assert.Equal(t, "b", GetContext(render).BuildID)
}

func TestLogHelpersIncludeContext(t *testing.T) {
	buf := captureLogs(t)
	ctx := WithStage(WithBuildID(context.Background(), "build-42"), "assets")

	InfoContext(ctx, "copied", slog.String("dest", "out/assets"))
	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "build.id=build-42")
	assert.Contains(t, out, "stage=assets")
	assert.Contains(t, out, "dest=out/assets")

	buf.Reset()
	WarnContext(ctx, "w")
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	ErrorContext(ctx, "e")
	assert.Contains(t, buf.String(), "level=ERROR")

	buf.Reset()
	DebugContext(context.Background(), "d")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.NotContains(t, buf.String(), "build.id")
}
