package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/posrecon/internal/metrics"
)

func TestReconcile_ObservePass(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewReconcile(reg)

	m.ObservePass(250*time.Millisecond, 98, 2, metrics.OutcomeOK)
	m.ObservePass(0, 0, 0, metrics.OutcomeSkipped)

	n, err := testutil.GatherAndCount(reg, "posrecon_reconcile_passes_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	var synced float64

	for _, mf := range mfs {
		if mf.GetName() != "posrecon_reconcile_records_total" {
			continue
		}

		for _, metric := range mf.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "result" && l.GetValue() == "synced" {
					synced = metric.GetCounter().GetValue()
				}
			}
		}
	}

	assert.Equal(t, 98.0, synced)
}

func TestIngest_ObserveUpload(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewIngest(reg)

	m.ObserveUpload("partial_success", 98, 2, 0)
	m.ObserveUpload("", 0, 0, 0)

	n, err := testutil.GatherAndCount(reg, "posrecon_ingest_uploads_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNilCollectorsAreNoOps(t *testing.T) {
	var r *metrics.Reconcile
	var i *metrics.Ingest

	assert.NotPanics(t, func() {
		r.ObservePass(time.Second, 1, 1, metrics.OutcomeFailed)
		i.ObserveUpload("success", 1, 0, 0)
		metrics.NewReconcile(nil).ObservePass(time.Second, 1, 1, metrics.OutcomeOK)
		metrics.NewIngest(nil).ObserveUpload("success", 1, 0, 0)
	})
}
