package metrics

import "github.com/kilianp07/gatedbus/core/factory"

// Config defines the recorders to build and the optional Prometheus endpoint.
type Config struct {
	Recorders []factory.ModuleConfig `json:"recorders"`
	// PrometheusAddr exposes /metrics when not empty, e.g. ":9100".
	PrometheusAddr string `json:"prometheus_addr"`
}
