// Package infra contains technical adapters: the zerolog logger and the
// Prometheus recorder and exporter. These packages depend only on the
// interfaces defined in the core packages.
package infra
