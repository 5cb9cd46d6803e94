// Package task defines the development task record, its lifecycle state
// machine, and the in-memory registry that owns all records for the
// lifetime of the process.
//
// A task moves through exactly one of two paths:
//
//	pending -> running -> completed | failed
//	pending -> rejected
//
// Transitions are one-directional. Terminal states (completed, failed,
// rejected) never transition further. A rejected task never entered
// running, so it carries no StartedAt and no Output.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRejected  Status = "rejected"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusRejected:
		return true
	}
	return false
}

// Errors for illegal lifecycle transitions.
var (
	ErrNotPending = errors.New("task is not pending")
	ErrNotRunning = errors.New("task is not running")
)

// View truncation bounds. Instruction is cut at the head, output keeps
// its tail (the end of an agent transcript is where the result lives).
const (
	maxViewInstruction = 200
	maxViewOutput      = 2000
)

// Task is one submitted instruction and its execution outcome. ID,
// Instruction, and Requester are immutable after creation; everything
// else is mutated only by the one pipeline that owns the task, through
// the registry's lock.
type Task struct {
	ID          string
	Instruction string
	Requester   string
	Status      Status

	StartedAt   *time.Time
	CompletedAt *time.Time

	// Output and Error hold the full captured streams. Bounded views
	// are produced by View for anything that leaves the process.
	Output string
	Error  string

	// ResultMarker is evidence of completed work supplied by the agent's
	// environment (the repository HEAD after the run). Best effort, may
	// be empty, never fabricated.
	ResultMarker string
}

// New creates a pending task with a fresh collision-resistant id.
func New(instruction, requester string) *Task {
	return &Task{
		ID:          NewID(),
		Instruction: instruction,
		Requester:   requester,
		Status:      StatusPending,
	}
}

// NewID generates a unique task identifier.
func NewID() string {
	return "dev_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Start transitions pending -> running and records the start time.
func (t *Task) Start(now time.Time) error {
	if t.Status != StatusPending {
		return fmt.Errorf("start %s: %w (status %s)", t.ID, ErrNotPending, t.Status)
	}
	t.Status = StatusRunning
	t.StartedAt = &now
	return nil
}

// Reject transitions pending -> rejected. The task never ran: no process
// was spawned, no timer started, StartedAt and Output stay empty.
func (t *Task) Reject(reason string, now time.Time) error {
	if t.Status != StatusPending {
		return fmt.Errorf("reject %s: %w (status %s)", t.ID, ErrNotPending, t.Status)
	}
	t.Status = StatusRejected
	t.Error = "instruction rejected by content policy: " + reason
	t.CompletedAt = &now
	return nil
}

// Finish transitions running -> completed or failed with the captured
// process outcome.
func (t *Task) Finish(status Status, output, errText, marker string, now time.Time) error {
	if t.Status != StatusRunning {
		return fmt.Errorf("finish %s: %w (status %s)", t.ID, ErrNotRunning, t.Status)
	}
	if status != StatusCompleted && status != StatusFailed {
		return fmt.Errorf("finish %s: %q is not a terminal execution status", t.ID, status)
	}
	t.Status = status
	t.Output = output
	t.Error = errText
	t.ResultMarker = marker
	t.CompletedAt = &now
	return nil
}

// View is the bounded serialization of a task used by the audit log and
// returned to API callers. Instruction is truncated beyond 200 characters
// with an ellipsis marker; Output keeps only its trailing 2000 characters.
type View struct {
	ID           string `json:"task_id"`
	Instruction  string `json:"instruction"`
	Requester    string `json:"requester"`
	Status       Status `json:"status"`
	StartedAt    string `json:"started_at,omitempty"`
	CompletedAt  string `json:"completed_at,omitempty"`
	Output       string `json:"output"`
	Error        string `json:"error"`
	ResultMarker string `json:"result_marker,omitempty"`
}

// View produces the bounded serialization of t.
func (t *Task) View() View {
	v := View{
		ID:           t.ID,
		Instruction:  truncateHead(t.Instruction, maxViewInstruction),
		Requester:    t.Requester,
		Status:       t.Status,
		Output:       truncateTail(t.Output, maxViewOutput),
		Error:        t.Error,
		ResultMarker: t.ResultMarker,
	}
	if t.StartedAt != nil {
		v.StartedAt = t.StartedAt.UTC().Format(time.RFC3339)
	}
	if t.CompletedAt != nil {
		v.CompletedAt = t.CompletedAt.UTC().Format(time.RFC3339)
	}
	return v
}

// truncateHead keeps the first max characters and appends an ellipsis
// marker when anything was cut.
func truncateHead(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// truncateTail keeps the last max characters.
func truncateTail(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[len(r)-max:])
}
