package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Task metrics
var (
	TasksQueuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sstube_tasks_queued_total",
			Help: "Total number of download tasks accepted into the queue.",
		},
	)

	TasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sstube_tasks_total",
			Help: "Total number of finished download tasks by terminal status.",
		},
		[]string{"status"},
	)

	TaskFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sstube_task_failures_total",
			Help: "Total number of failed download tasks by error kind.",
		},
		[]string{"kind"},
	)

	TaskDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sstube_task_duration_seconds",
			Help:    "Wall time of a supervised download run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)
)

// Queue metrics
var (
	QueuePending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sstube_queue_pending",
			Help: "Number of tasks waiting in the queue.",
		},
	)

	QueueActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sstube_queue_active",
			Help: "1 while a download is running, 0 otherwise.",
		},
	)
)

// Collection metrics
var (
	EnumerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sstube_enumerations_total",
			Help: "Total number of playlist and channel enumerations by status.",
		},
		[]string{"status"},
	)

	TitleCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sstube_title_cache_hits_total",
			Help: "Total number of title lookups served from the cache.",
		},
	)

	TitleCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sstube_title_cache_misses_total",
			Help: "Total number of title lookups that required a metadata query.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TasksQueuedTotal,
		TasksTotal,
		TaskFailuresTotal,
		TaskDurationSeconds,
		QueuePending,
		QueueActive,
		EnumerationsTotal,
		TitleCacheHitsTotal,
		TitleCacheMissesTotal,
	)
}
