// Package metrics counts resolution activity on a private Prometheus
// registry. Nothing is served; callers may dump the registry to a textfile
// for a node exporter to pick up.
package metrics

import (
	"fmt"

	"github.com/ppiankov/paradox/internal/lattice"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the resolution metrics
type Collector struct {
	registry *prometheus.Registry

	resolutions  *prometheus.CounterVec
	iterations   prometheus.Counter
	changes      prometheus.Counter
	truths       *prometheus.CounterVec
	anchorsUsed  *prometheus.CounterVec
	activeAnchor prometheus.Histogram
}

// New creates a collector with its own registry
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paradox_resolutions_total",
			Help: "Resolution requests by result",
		}, []string{"result"}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paradox_fixpoint_iterations_total",
			Help: "Fixpoint iterations run",
		}),
		changes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paradox_fixpoint_changes_total",
			Help: "Node value changes applied by the fixpoint loop",
		}),
		truths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paradox_truth_values_total",
			Help: "Resolved propositions by truth value",
		}, []string{"value"}),
		anchorsUsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paradox_anchor_activations_total",
			Help: "Times each anchor was active in a resolution",
		}, []string{"anchor"}),
		activeAnchor: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "paradox_active_anchors",
			Help:    "Active anchors per resolution",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		}),
	}

	c.registry.MustRegister(c.resolutions, c.iterations, c.changes, c.truths, c.anchorsUsed, c.activeAnchor)
	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveIteration records one fixpoint pass
func (c *Collector) ObserveIteration(_ int, changed int) {
	c.iterations.Inc()
	c.changes.Add(float64(changed))
}

// ObserveSelection records the anchors active in one resolution
func (c *Collector) ObserveSelection(anchorIDs []string) {
	c.activeAnchor.Observe(float64(len(anchorIDs)))
	for _, id := range anchorIDs {
		c.anchorsUsed.WithLabelValues(id).Inc()
	}
}

// ObserveTruth records one resolved proposition
func (c *Collector) ObserveTruth(v lattice.Value) {
	c.truths.WithLabelValues(v.String()).Inc()
}

// ObserveResult records the outcome of one request
func (c *Collector) ObserveResult(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.resolutions.WithLabelValues(result).Inc()
}

// WriteTextfile writes the registry in the text exposition format
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
