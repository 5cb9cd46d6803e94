package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/devrunnerd/internal/task"
)

func TestMetrics_TaskLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.TaskStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasksRunning))

	m.TaskStopped()
	m.TaskFinished(task.StatusCompleted, 2*time.Second)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.tasksRunning))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasksTotal.WithLabelValues("completed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.tasksTotal.WithLabelValues("failed")))
}

func TestMetrics_NilRegisterer(t *testing.T) {
	m := NewMetrics(nil)
	// Instruments work unregistered; nothing panics.
	m.TaskStarted()
	m.TaskStopped()
	m.TaskFinished(task.StatusFailed, time.Second)
}
