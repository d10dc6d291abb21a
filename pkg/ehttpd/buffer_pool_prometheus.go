//go:build prometheus
// +build prometheus

package ehttpd

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the scratch-buffer pool. Only compiled into a
// build that opts into the "prometheus" tag -- a build without it pays
// no cost for metrics collection, matching the core's "no
// runtime-configurable" stance: observability is a build-time choice,
// not a request-time branch.
var (
	scratchPoolGets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ehttpd",
		Subsystem: "scratch_pool",
		Name:      "gets_total",
		Help:      "Total number of scratch buffer Get operations.",
	})

	scratchPoolPuts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ehttpd",
		Subsystem: "scratch_pool",
		Name:      "puts_total",
		Help:      "Total number of scratch buffer Put operations.",
	})

	scratchPoolMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ehttpd",
		Subsystem: "scratch_pool",
		Name:      "misses_total",
		Help:      "Total number of Gets that found the fixed pool exhausted.",
	})

	scratchPoolHitRate = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ehttpd",
		Subsystem: "scratch_pool",
		Name:      "hit_rate",
		Help:      "Current scratch pool hit rate (0-100), expected to sit at 100 when the pool is sized to MaxClients.",
	})
)

var observeMu sync.Mutex
var lastGets, lastPuts, lastMisses uint64

// ObservePrometheusMetrics snapshots p's counters into the registered
// Prometheus metrics. Call this periodically (e.g. from the server's
// select-timeout tick) rather than on every Get/Put -- the counters
// themselves are cheap atomics, so the scrape cost is what this
// function amortizes. Counters only ever grow, so each call adds the
// delta since the previous observation.
func ObservePrometheusMetrics(p *ScratchPool) {
	gets, puts, misses := p.Stats()

	observeMu.Lock()
	defer observeMu.Unlock()
	scratchPoolGets.Add(float64(gets - lastGets))
	scratchPoolPuts.Add(float64(puts - lastPuts))
	scratchPoolMisses.Add(float64(misses - lastMisses))
	lastGets, lastPuts, lastMisses = gets, puts, misses

	if gets > 0 {
		hits := gets - misses
		scratchPoolHitRate.Set(float64(hits) / float64(gets) * 100.0)
	}
}
