// Package metrics exposes Prometheus counters and gauges for pattern
// discovery, Monte Carlo permutation testing, and multiple-testing
// correction.
//
//   - pal_patterns_discovered_total{side}  – candidates that passed
//     PerformanceCriteria before correction
//   - pal_patterns_kept_total{policy}      – survivors after a correction
//     policy runs
//   - pal_permutations_run_total           – synthetic backtests executed
//     by an MCPT driver
//   - pal_mcpt_pvalue                      – most recent MCPT p-value
//     (gauge; one observation per strategy run)
//   - pal_discovery_anchors_total          – anchor bars processed by a
//     discovery engine run
//
// Registered once via init(), served by the caller's own HTTP handler at
// /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PatternsDiscovered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pal_patterns_discovered_total",
			Help: "Pattern candidates that passed PerformanceCriteria before correction.",
		},
		[]string{"side"}, // long|short
	)

	PatternsKept = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pal_patterns_kept_total",
			Help: "Strategies kept as survivors after a correction policy runs.",
		},
		[]string{"policy"},
	)

	PermutationsRun = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pal_permutations_run_total",
			Help: "Synthetic backtests executed across all MCPT driver runs.",
		},
	)

	MCPTPValue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pal_mcpt_pvalue",
			Help: "Most recently computed MCPT p-value.",
		},
	)

	DiscoveryAnchors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pal_discovery_anchors_total",
			Help: "Anchor bars processed by a discovery engine run.",
		},
	)
)

func init() {
	prometheus.MustRegister(PatternsDiscovered, PatternsKept)
	prometheus.MustRegister(PermutationsRun, MCPTPValue, DiscoveryAnchors)
}

func IncPatternsDiscovered(side string) { PatternsDiscovered.WithLabelValues(side).Inc() }
func IncPatternsKept(policy string)     { PatternsKept.WithLabelValues(policy).Inc() }
func IncPermutationsRun()               { PermutationsRun.Inc() }
func SetMCPTPValue(p float64)           { MCPTPValue.Set(p) }
func IncDiscoveryAnchors()              { DiscoveryAnchors.Inc() }
