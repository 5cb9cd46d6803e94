// Package service wires the execution core together: registry, policy
// gate, prompt builder, process runner, and audit writer. It exposes the
// three operations callers get — Submit, GetStatus, ListRecent — and
// drives each submitted task through its lifecycle on an independent
// goroutine.
package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/devrunnerd/internal/audit"
	"github.com/fyrsmithlabs/devrunnerd/internal/logging"
	"github.com/fyrsmithlabs/devrunnerd/internal/policy"
	"github.com/fyrsmithlabs/devrunnerd/internal/prompt"
	"github.com/fyrsmithlabs/devrunnerd/internal/runner"
	"github.com/fyrsmithlabs/devrunnerd/internal/task"
)

// DefaultListLimit is used when a caller asks for a recent-task listing
// without a limit.
const DefaultListLimit = 10

// Service is the task-execution core. Construct once at startup and
// share by handle; it holds no global state.
type Service struct {
	registry *task.Registry
	gate     *policy.Gate
	runner   *runner.Runner
	audit    *audit.Writer
	log      *logging.Logger
	metrics  *Metrics

	wg sync.WaitGroup
}

// New assembles a service. metrics may be nil when no collection is
// wanted (tests).
func New(reg *task.Registry, gate *policy.Gate, run *runner.Runner, aud *audit.Writer, log *logging.Logger, metrics *Metrics) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Service{
		registry: reg,
		gate:     gate,
		runner:   run,
		audit:    aud,
		log:      log,
		metrics:  metrics,
	}
}

// Submit registers a new task and schedules its execution. It returns
// the task id immediately; gating and execution happen asynchronously on
// a dedicated goroutine. Every submission produces exactly one record —
// the registry never deduplicates by content.
func (s *Service) Submit(instruction, requester string, extra map[string]any) string {
	t := task.New(instruction, requester)
	if err := s.registry.Register(t); err != nil {
		// A uuid collision is practically impossible; regenerate rather
		// than overwrite the existing record.
		t.ID = task.NewID()
		if err := s.registry.Register(t); err != nil {
			s.log.Error(context.Background(), "task registration failed", zap.Error(err))
			return t.ID
		}
	}

	ctx := logging.WithTaskID(context.Background(), t.ID)
	s.log.Info(ctx, "task submitted",
		zap.String("requester", requester),
		zap.Int("instruction_len", len(instruction)))

	s.wg.Add(1)
	go s.execute(ctx, t.ID, instruction, extra)

	return t.ID
}

// GetStatus returns the bounded view of a task.
func (s *Service) GetStatus(id string) (task.View, bool) {
	t, ok := s.registry.Get(id)
	if !ok {
		return task.View{}, false
	}
	return t.View(), true
}

// ListRecent returns up to limit task views, most recently started
// first. limit <= 0 selects DefaultListLimit.
func (s *Service) ListRecent(limit int) []task.View {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	tasks := s.registry.ListRecent(limit)
	views := make([]task.View, 0, len(tasks))
	for i := range tasks {
		views = append(views, tasks[i].View())
	}
	return views
}

// Drain blocks until all in-flight tasks have reached a terminal state
// or ctx expires. Used during shutdown; running agent processes are
// bounded by their own deadlines.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// execute drives one task end to end: gate, run, classify. Every path
// out of this function finalizes the record and writes its audit entry.
func (s *Service) execute(ctx context.Context, id, instruction string, extra map[string]any) {
	defer s.wg.Done()
	defer s.finalize(ctx, id)

	start := time.Now()

	if reason, violated := s.gate.Check(instruction); violated {
		s.log.Warn(ctx, "task rejected by policy gate", zap.String("reason", reason))
		if err := s.registry.Update(id, func(t *task.Task) error {
			return t.Reject(reason, time.Now().UTC())
		}); err != nil {
			s.log.Error(ctx, "reject transition failed", zap.Error(err))
		}
		s.metrics.TaskFinished(task.StatusRejected, time.Since(start))
		return
	}

	if err := s.registry.Update(id, func(t *task.Task) error {
		return t.Start(time.Now().UTC())
	}); err != nil {
		s.log.Error(ctx, "start transition failed", zap.Error(err))
		return
	}
	s.metrics.TaskStarted()
	defer s.metrics.TaskStopped()

	outcome := s.runner.Run(ctx, prompt.Build(instruction, extra))

	if err := s.registry.Update(id, func(t *task.Task) error {
		return t.Finish(outcome.Status, outcome.Output, outcome.Error, outcome.ResultMarker, time.Now().UTC())
	}); err != nil {
		s.log.Error(ctx, "finish transition failed", zap.Error(err))
		return
	}
	s.metrics.TaskFinished(outcome.Status, time.Since(start))

	s.log.Info(ctx, "task finished",
		zap.String("status", string(outcome.Status)),
		zap.String("result_marker", outcome.ResultMarker),
		zap.Duration("elapsed", time.Since(start)))
}

// finalize guarantees the terminal bookkeeping on every path: the record
// carries a completion time and exactly one audit entry exists for it.
// Audit write failures are logged, never raised — the task's terminal
// status is already settled.
func (s *Service) finalize(ctx context.Context, id string) {
	_ = s.registry.Update(id, func(t *task.Task) error {
		if t.CompletedAt == nil {
			now := time.Now().UTC()
			t.CompletedAt = &now
		}
		return nil
	})

	t, ok := s.registry.Get(id)
	if !ok {
		return
	}
	if err := s.audit.Write(ctx, t.View()); err != nil {
		s.log.Error(ctx, "audit write failed", zap.Error(err))
	}
}
