package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photo-cycler/backend/internal/cycler"
	"github.com/photo-cycler/backend/internal/storage"
)

func TestPrometheusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPrometheusMetrics(registry)

	m.ObserveCycle(cycler.ResultPublished, 3)
	m.ObserveCycle(cycler.ResultPublished, 2)
	m.ObserveCycle(cycler.ResultEmpty, 0)
	m.ObserveCycleError(cycler.StagePublish)
	m.SetUpdateRate(7.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cycles.WithLabelValues(cycler.ResultPublished)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues(cycler.ResultEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycleErrors.WithLabelValues(cycler.StagePublish)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.candidates))
	assert.Equal(t, 7.5, testutil.ToFloat64(m.updateRate))
}

func TestPrometheusMetricsFromCycler(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPrometheusMetrics(registry)

	photos := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(photos, "a.jpg"), []byte("a"), 0644))
	pub, err := storage.NewLinkPublisher(t.TempDir(), "")
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	c := cycler.New(photos, pub, cycler.WithMetrics(m), cycler.WithLogger(logger))
	_, ok := c.Cycle()
	require.True(t, ok)

	require.NoError(t, os.Remove(filepath.Join(photos, "a.jpg")))
	_, ok = c.Cycle()
	require.False(t, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues(cycler.ResultPublished)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues(cycler.ResultEmpty)))

	count, err := testutil.GatherAndCount(registry, "photo_cycler_cycles_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
