// Package metrics records build observations.
//
// Components receive a Recorder. NoopRecorder is the default and does nothing;
// PrometheusRecorder keeps real counters and histograms and can dump them to a
// textfile after each build:
//
//	rec := metrics.NewPrometheusRecorder(nil)
//	svc := build.NewService(build.WithRecorder(rec))
//	...
//	_ = rec.WriteTextfile("/var/lib/node_exporter/sitegen.prom")
package metrics
