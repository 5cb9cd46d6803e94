package task

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Errors for registry operations.
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrDuplicateID  = errors.New("task id already registered")
)

// DefaultRetentionCap bounds how many records the registry holds before
// it starts evicting the oldest terminal ones. The registry is an
// in-process placeholder for a durable store; without a cap it grows
// for the lifetime of the daemon.
const DefaultRetentionCap = 1000

// Registry is the process-wide index of task records. It is constructed
// once at startup and passed by handle to the submission path, the
// execution pipeline, and status pollers. All record mutation happens
// under the registry's lock via Update; Get and ListRecent return
// snapshot copies so readers never observe a torn write.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	cap   int
}

// NewRegistry creates a registry holding at most capacity records.
// capacity <= 0 selects DefaultRetentionCap.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultRetentionCap
	}
	return &Registry{
		tasks: make(map[string]*Task),
		cap:   capacity,
	}
}

// Register inserts a new record. The id must not already be present;
// the registry never overwrites one task with another.
func (r *Registry) Register(t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; ok {
		return fmt.Errorf("register %s: %w", t.ID, ErrDuplicateID)
	}
	r.evictLocked()
	r.tasks[t.ID] = t
	return nil
}

// Get returns a snapshot copy of the record, if present.
func (r *Registry) Get(id string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// Update applies fn to the record under the registry's write lock. This
// is the only mutation path after registration; status transitions
// therefore become atomically visible to concurrent readers.
func (r *Registry) Update(id string, fn func(*Task) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("update %s: %w", id, ErrTaskNotFound)
	}
	return fn(t)
}

// ListRecent returns snapshot copies of up to limit records, most
// recently started first. Records that never started (still pending, or
// rejected before running) sort as the oldest.
func (r *Registry) ListRecent(limit int) []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		return startedOrZero(&out[i]).After(startedOrZero(&out[j]))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Len returns the number of records currently held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

func startedOrZero(t *Task) time.Time {
	if t.StartedAt == nil {
		return time.Time{}
	}
	return *t.StartedAt
}

// evictLocked makes room for one more record when the registry is at
// capacity. Only terminal records are candidates; in-flight tasks are
// never dropped, so the map can transiently exceed the cap when more
// than cap tasks are running at once.
func (r *Registry) evictLocked() {
	if len(r.tasks) < r.cap {
		return
	}
	var (
		victim string
		oldest time.Time
		found  bool
	)
	for id, t := range r.tasks {
		if !t.Status.Terminal() {
			continue
		}
		at := completedOrZero(t)
		if !found || at.Before(oldest) {
			victim, oldest, found = id, at, true
		}
	}
	if found {
		delete(r.tasks, victim)
	}
}

func completedOrZero(t *Task) time.Time {
	if t.CompletedAt == nil {
		return time.Time{}
	}
	return *t.CompletedAt
}
