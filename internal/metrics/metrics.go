// Package metrics records the outcome of a subsampling invocation as
// Prometheus gauges and exports them in the textfile collector format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/subsamplr/internal/report"
)

const namespace = "subsamplr"

// Phases timed by Recorder.
const (
	PhaseIngest = "ingest"
	PhaseSelect = "select"
)

// Recorder holds the gauges of one invocation on a private registry, so
// that repeated invocations in one process never collide.
type Recorder struct {
	reg *prometheus.Registry

	units      prometheus.Gauge
	bins       prometheus.Gauge
	exclusions prometheus.Gauge
	selected   prometheus.Gauge
	duration   *prometheus.GaugeVec
}

// New creates a Recorder with all gauges registered at zero.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		units: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "units",
			Help:      "Units held in bins after ingestion.",
		}),
		bins: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bins",
			Help:      "Populated bins after ingestion.",
		}),
		exclusions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "exclusions",
			Help:      "Units excluded because a value fell outside its partition.",
		}),
		selected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "selected_units",
			Help:      "Distinct units in the selected subsample.",
		}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall-clock duration of each phase of the last invocation.",
		}, []string{"phase"}),
	}
	r.reg.MustRegister(r.units, r.bins, r.exclusions, r.selected, r.duration)
	return r
}

// Gatherer exposes the registry, for tests and HTTP handlers.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveSummary records a collection's totals.
func (r *Recorder) ObserveSummary(s report.Summary) {
	r.units.Set(float64(s.Units))
	r.bins.Set(float64(s.Bins))
	r.exclusions.Set(float64(s.Exclusions))
}

// ObserveSelection records the size of a selection.
func (r *Recorder) ObserveSelection(n int) {
	r.selected.Set(float64(n))
}

// ObservePhase records how long a phase took.
func (r *Recorder) ObservePhase(phase string, d time.Duration) {
	r.duration.WithLabelValues(phase).Set(d.Seconds())
}

// Time starts timing phase; call the returned function when it ends.
func (r *Recorder) Time(phase string) func() {
	start := time.Now()
	return func() { r.ObservePhase(phase, time.Since(start)) }
}

// WriteTextfile writes every gauge to path atomically, in the format read
// by the node exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
