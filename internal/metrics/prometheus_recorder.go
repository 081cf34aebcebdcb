package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitegen"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	stageResults  *prom.CounterVec
	buildOutcome  *prom.CounterVec
	nodesRendered *prom.CounterVec
	bytesWritten  prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A fresh registry is created when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		nodesRendered: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_rendered_total",
			Help:      "Rendered tree nodes by kind",
		}, []string{"kind"}),
		bytesWritten: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "output_bytes_total",
			Help:      "Bytes written to the destination directory",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome, pr.nodesRendered, pr.bytesWritten)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncNodeRendered(kind string) {
	if p == nil {
		return
	}
	p.nodesRendered.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) AddBytesWritten(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.bytesWritten.Add(float64(n))
}

// WriteTextfile writes the current metric values to path in the Prometheus text format,
// for pickup by a node_exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
