package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "posrecon"

// Pass outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Reconcile records reconciliation passes. A nil *Reconcile is a no-op.
type Reconcile struct {
	duration prometheus.Histogram
	passes   *prometheus.CounterVec
	records  *prometheus.CounterVec
}

// NewReconcile registers the reconciliation metrics on reg. A nil reg yields a no-op collector.
func NewReconcile(reg prometheus.Registerer) *Reconcile {
	if reg == nil {
		return &Reconcile{}
	}

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reconcile_pass_duration_seconds",
		Help:      "Duration of reconciliation passes in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
	passes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_passes_total",
		Help:      "Reconciliation passes by outcome.",
	}, []string{"outcome"})
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_records_total",
		Help:      "Staged records processed by reconciliation, by result.",
	}, []string{"result"})

	reg.MustRegister(duration, passes, records)

	return &Reconcile{duration: duration, passes: passes, records: records}
}

func (r *Reconcile) ObservePass(took time.Duration, synced, errs int, outcome string) {
	if r == nil || r.passes == nil {
		return
	}

	r.duration.Observe(took.Seconds())
	r.passes.WithLabelValues(outcome).Inc()
	r.records.WithLabelValues("synced").Add(float64(synced))
	r.records.WithLabelValues("error").Add(float64(errs))
}

// Ingest records uploads. A nil *Ingest is a no-op.
type Ingest struct {
	uploads *prometheus.CounterVec
	rows    *prometheus.CounterVec
}

func NewIngest(reg prometheus.Registerer) *Ingest {
	if reg == nil {
		return &Ingest{}
	}

	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_uploads_total",
		Help:      "Uploaded files by outcome.",
	}, []string{"outcome"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_rows_total",
		Help:      "Ingested rows by result.",
	}, []string{"result"})

	reg.MustRegister(uploads, rows)

	return &Ingest{uploads: uploads, rows: rows}
}

func (i *Ingest) ObserveUpload(outcome string, accepted, rejected, stageFailures int) {
	if i == nil || i.uploads == nil {
		return
	}

	i.uploads.WithLabelValues(normalizeLabel(outcome)).Inc()
	i.rows.WithLabelValues("accepted").Add(float64(accepted))
	i.rows.WithLabelValues("rejected").Add(float64(rejected))
	i.rows.WithLabelValues("stage_failed").Add(float64(stageFailures))
}

func normalizeLabel(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}
