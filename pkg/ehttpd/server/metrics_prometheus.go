//go:build prometheus
// +build prometheus

package server

import "github.com/X-Ryl669/eHTTPd/pkg/ehttpd"

// observeMetrics snapshots the scratch pool's hit/miss counters into the
// Prometheus gauges ehttpd.ObservePrometheusMetrics registers. A server
// built with ParanoidZero holds a *SecureScratchPool, which this type
// assertion does not match, so its counters are not exported.
func (s *Server) observeMetrics() {
	if pool, ok := s.scratch.(*ehttpd.ScratchPool); ok {
		ehttpd.ObservePrometheusMetrics(pool)
	}
}
