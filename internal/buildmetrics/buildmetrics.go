// Package buildmetrics exposes the prometheus counters and histograms
// cmd/tzcompile records while compiling a tzdata snapshot, optionally
// served over an HTTP /metrics endpoint for CI dashboards.
package buildmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the registry all build metrics are registered against. It is
// separate from prometheus.DefaultRegisterer so tests can construct a fresh
// Registry without colliding with package-level registration.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// ZonesCompiled counts zones successfully compiled, labeled "rules" for
	// a zone with at least one transition and "fixed" for a zone with none.
	ZonesCompiled = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "tzcompile_zones_compiled_total",
		Help: "Number of zones successfully compiled into transition histories.",
	}, []string{"rules_form"})

	// ZonesFailed counts zones that failed to compile.
	ZonesFailed = factory.NewCounter(prometheus.CounterOpts{
		Name: "tzcompile_zones_failed_total",
		Help: "Number of zones that failed to compile.",
	})

	// CompileDuration observes the wall-clock time of a full
	// parse-compile-pack run.
	CompileDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "tzcompile_run_duration_seconds",
		Help:    "Duration of a full tzcompile compile run.",
		Buckets: prometheus.DefBuckets,
	})

	// ArtifactBytes observes the size of the packed dataset written.
	ArtifactBytes = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "tzcompile_artifact_bytes",
		Help:    "Size in bytes of the packed dataset artifact.",
		Buckets: prometheus.ExponentialBuckets(1<<10, 2, 12),
	})
)
