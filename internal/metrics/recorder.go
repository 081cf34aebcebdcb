package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel is the final status of a build.
type BuildOutcomeLabel string

const (
	OutcomeSuccess  BuildOutcomeLabel = "success"
	OutcomeFailed   BuildOutcomeLabel = "failed"
	OutcomeCanceled BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for build, stage and node metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	IncNodeRendered(kind string)
	AddBytesWritten(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)          {}
func (NoopRecorder) IncNodeRendered(string)                     {}
func (NoopRecorder) AddBytesWritten(int)                        {}
