package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func getCounterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.(prometheus.Metric).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getGaugeValue(g prometheus.Gauge) float64 {
	var m dto.Metric
	if err := g.(prometheus.Metric).Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

func getCounterVecValue(cv *prometheus.CounterVec, labels ...string) float64 {
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestMetrics_TasksTotal(t *testing.T) {
	for _, status := range []string{"completed", "failed", "cancelled"} {
		before := getCounterVecValue(TasksTotal, status)
		TasksTotal.WithLabelValues(status).Inc()
		assert.Equal(t, before+1, getCounterVecValue(TasksTotal, status), status)
	}
}

func TestMetrics_QueueGauges(t *testing.T) {
	QueuePending.Set(3)
	QueueActive.Set(1)

	assert.Equal(t, 3.0, getGaugeValue(QueuePending))
	assert.Equal(t, 1.0, getGaugeValue(QueueActive))
}

func TestMetrics_EnumerationsTotal(t *testing.T) {
	before := getCounterVecValue(EnumerationsTotal, "error")
	EnumerationsTotal.WithLabelValues("error").Inc()
	assert.Equal(t, before+1, getCounterVecValue(EnumerationsTotal, "error"))
}

func TestMetrics_TitleCacheCounters(t *testing.T) {
	hits := getCounterValue(TitleCacheHitsTotal)
	misses := getCounterValue(TitleCacheMissesTotal)

	TitleCacheHitsTotal.Inc()
	TitleCacheMissesTotal.Inc()

	assert.Equal(t, hits+1, getCounterValue(TitleCacheHitsTotal))
	assert.Equal(t, misses+1, getCounterValue(TitleCacheMissesTotal))
}

func TestMetrics_TaskDuration(t *testing.T) {
	TaskDurationSeconds.Observe(12)

	var m dto.Metric
	assert.NoError(t, TaskDurationSeconds.(prometheus.Metric).Write(&m))
	assert.GreaterOrEqual(t, m.GetHistogram().GetSampleCount(), uint64(1))
}
