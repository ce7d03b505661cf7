// Package metrics defines the Recorder interface the gated bus reports to.
// Recorders are created from configuration through a factory registry; the
// Prometheus implementation lives in infra/metrics and several recorders can
// be combined with infra/metrics.NewMultiRecorder.
package metrics
