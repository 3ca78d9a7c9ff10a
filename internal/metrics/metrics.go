// Package metrics records the outcome of validation runs as Prometheus metrics.
package metrics

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spot-validator/spot-validator/internal/report"
)

const namespace = "spot_validator"

// File and item results.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultFailed  = "failed"
)

// Recorder holds the run metrics.
type Recorder struct {
	gatherer prometheus.Gatherer

	files        *prometheus.CounterVec
	items        *prometheus.CounterVec
	errors       *prometheus.CounterVec
	compliant    *prometheus.CounterVec
	itemsPerFile *prometheus.HistogramVec
}

// New registers the run metrics in reg.
func New(reg *prometheus.Registry) *Recorder {
	return &Recorder{
		gatherer: reg,
		files: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_total",
				Help:      "Number of payload files processed, by result.",
			}, []string{"mode", "result"},
		),
		items: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_total",
				Help:      "Number of payload records validated, by result.",
			}, []string{"mode", "result"},
		),
		errors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Number of validation errors, by kind.",
			}, []string{"mode", "kind"},
		),
		compliant: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compliant_items_total",
				Help:      "Number of records carrying exactly the required secondary filters.",
			}, []string{"mode"},
		),
		itemsPerFile: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "items_per_file",
				Help:      "Distribution of the number of records per payload file.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			}, []string{"mode"},
		),
	}
}

// Observe adds the outcome of run to the metrics.
func (r *Recorder) Observe(run report.Run) {
	mode := string(run.Mode)

	for _, f := range run.Files {
		switch {
		case f.Failed:
			r.files.WithLabelValues(mode, ResultFailed).Inc()
			continue
		case f.Valid():
			r.files.WithLabelValues(mode, ResultValid).Inc()
		default:
			r.files.WithLabelValues(mode, ResultInvalid).Inc()
		}

		r.itemsPerFile.WithLabelValues(mode).Observe(float64(f.Items))
		r.items.WithLabelValues(mode, ResultValid).Add(float64(f.ValidItems))
		r.items.WithLabelValues(mode, ResultInvalid).Add(float64(f.InvalidItems()))
	}

	if run.Log == nil {
		return
	}
	for _, kc := range run.Log.ErrorsByKind() {
		r.errors.WithLabelValues(mode, string(kc.Kind)).Add(float64(kc.Count))
	}
	r.compliant.WithLabelValues(mode).Add(float64(len(run.Log.Compliant())))
}

// WriteTextfile writes every gathered metric to path in the Prometheus text format, for the node exporter
// textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("could not create metrics directory: %v", err)
	}
	if err := prometheus.WriteToTextfile(path, r.gatherer); err != nil {
		return fmt.Errorf("could not write metrics file: %v", err)
	}

	slog.Info("Wrote metrics", "file", path)
	return nil
}
