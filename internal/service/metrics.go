package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fyrsmithlabs/devrunnerd/internal/task"
)

// Metrics holds the execution core's prometheus instruments.
type Metrics struct {
	tasksTotal   *prometheus.CounterVec
	tasksRunning prometheus.Gauge
	taskDuration prometheus.Histogram
}

// NewMetrics creates and registers the instruments. reg may be nil, in
// which case nothing is registered (tests, or metrics disabled).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devrunner_tasks_total",
			Help: "Tasks reaching a terminal state, labeled by status (completed, failed, rejected).",
		}, []string{"status"}),
		tasksRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "devrunner_tasks_running",
			Help: "Agent processes currently executing.",
		}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "devrunner_task_duration_seconds",
			Help:    "Wall-clock task duration from gate entry to terminal state.",
			Buckets: []float64{1, 5, 15, 60, 120, 300, 600, 900},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.tasksTotal, m.tasksRunning, m.taskDuration)
	}
	return m
}

// TaskStarted records a task entering running.
func (m *Metrics) TaskStarted() {
	m.tasksRunning.Inc()
}

// TaskStopped records a running task leaving running.
func (m *Metrics) TaskStopped() {
	m.tasksRunning.Dec()
}

// TaskFinished records a terminal outcome.
func (m *Metrics) TaskFinished(status task.Status, elapsed time.Duration) {
	m.tasksTotal.WithLabelValues(string(status)).Inc()
	m.taskDuration.Observe(elapsed.Seconds())
}
