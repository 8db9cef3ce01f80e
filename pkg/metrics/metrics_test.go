package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.Observe("accept", time.Now(), nil)
	m.Observe("accept", time.Now(), errors.New("boom"))
	m.Observe("accept", time.Now(), nil)
	m.Retry("accept")
	m.Swept("completed", 2)
	m.Swept("completed", 0)

	require.Equal(t, 2.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("accept", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("accept", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Retries.WithLabelValues("accept")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.Sweeps.WithLabelValues("completed")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.Observe("accept", time.Now(), nil)
		m.Retry("accept")
		m.Swept("activated", 1)
	})
}
