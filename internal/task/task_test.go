package task

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	tk := New("add a health-check endpoint", "clawdbot")

	assert.True(t, strings.HasPrefix(tk.ID, "dev_"))
	assert.Equal(t, StatusPending, tk.Status)
	assert.Equal(t, "add a health-check endpoint", tk.Instruction)
	assert.Equal(t, "clawdbot", tk.Requester)
	assert.Nil(t, tk.StartedAt)
	assert.Nil(t, tk.CompletedAt)
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusRejected.Terminal())
}

func TestTask_Start(t *testing.T) {
	tk := New("x", "r")
	now := time.Now().UTC()

	require.NoError(t, tk.Start(now))
	assert.Equal(t, StatusRunning, tk.Status)
	require.NotNil(t, tk.StartedAt)
	assert.Equal(t, now, *tk.StartedAt)

	// Running tasks cannot start again.
	assert.ErrorIs(t, tk.Start(now), ErrNotPending)
}

func TestTask_Reject(t *testing.T) {
	tk := New("x", "r")
	now := time.Now().UTC()

	require.NoError(t, tk.Reject("instruction contains restricted phrase \"real name\"", now))
	assert.Equal(t, StatusRejected, tk.Status)
	assert.Contains(t, tk.Error, "rejected by content policy")
	assert.Contains(t, tk.Error, "real name")

	// Rejection happens before any process is spawned.
	assert.Nil(t, tk.StartedAt)
	assert.Empty(t, tk.Output)
	require.NotNil(t, tk.CompletedAt)
}

func TestTask_RejectAfterStart(t *testing.T) {
	tk := New("x", "r")
	require.NoError(t, tk.Start(time.Now()))
	assert.ErrorIs(t, tk.Reject("too late", time.Now()), ErrNotPending)
}

func TestTask_Finish(t *testing.T) {
	started := time.Now().UTC()
	finished := started.Add(3 * time.Second)

	tk := New("x", "r")
	require.NoError(t, tk.Start(started))
	require.NoError(t, tk.Finish(StatusCompleted, "done\n", "", "abc1234 fix things", finished))

	assert.Equal(t, StatusCompleted, tk.Status)
	assert.Equal(t, "done\n", tk.Output)
	assert.Equal(t, "abc1234 fix things", tk.ResultMarker)
	require.NotNil(t, tk.CompletedAt)
	assert.False(t, tk.CompletedAt.Before(*tk.StartedAt))
}

func TestTask_FinishRequiresRunning(t *testing.T) {
	tk := New("x", "r")
	assert.ErrorIs(t, tk.Finish(StatusCompleted, "", "", "", time.Now()), ErrNotRunning)
}

func TestTask_FinishRejectsNonTerminalStatus(t *testing.T) {
	tk := New("x", "r")
	require.NoError(t, tk.Start(time.Now()))
	assert.Error(t, tk.Finish(StatusPending, "", "", "", time.Now()))
	assert.Error(t, tk.Finish(StatusRejected, "", "", "", time.Now()))
}

func TestTask_TerminalStatesAreFinal(t *testing.T) {
	tk := New("x", "r")
	require.NoError(t, tk.Start(time.Now()))
	require.NoError(t, tk.Finish(StatusFailed, "", "boom", "", time.Now()))

	assert.Error(t, tk.Start(time.Now()))
	assert.Error(t, tk.Reject("nope", time.Now()))
	assert.Error(t, tk.Finish(StatusCompleted, "", "", "", time.Now()))
}

func TestView_InstructionTruncation(t *testing.T) {
	exact := strings.Repeat("a", 200)
	long := strings.Repeat("b", 201)

	tk := New(exact, "r")
	assert.Equal(t, exact, tk.View().Instruction, "exactly 200 chars is not truncated")

	tk = New(long, "r")
	v := tk.View()
	assert.Len(t, v.Instruction, 203)
	assert.Equal(t, strings.Repeat("b", 200)+"...", v.Instruction)
}

func TestView_OutputKeepsTrailing2000(t *testing.T) {
	head := strings.Repeat("x", 500)
	tail := strings.Repeat("y", 2000)

	tk := New("i", "r")
	require.NoError(t, tk.Start(time.Now()))
	require.NoError(t, tk.Finish(StatusCompleted, head+tail, "", "", time.Now()))

	v := tk.View()
	assert.Equal(t, tail, v.Output, "only the trailing 2000 chars survive")

	// At the boundary nothing is cut.
	tk2 := New("i", "r")
	require.NoError(t, tk2.Start(time.Now()))
	require.NoError(t, tk2.Finish(StatusCompleted, tail, "", "", time.Now()))
	assert.Equal(t, tail, tk2.View().Output)
}

func TestView_Timestamps(t *testing.T) {
	tk := New("i", "r")
	v := tk.View()
	assert.Empty(t, v.StartedAt)
	assert.Empty(t, v.CompletedAt)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, tk.Start(started))
	require.NoError(t, tk.Finish(StatusCompleted, "", "", "", started.Add(time.Minute)))

	v = tk.View()
	assert.Equal(t, "2026-03-01T12:00:00Z", v.StartedAt)
	assert.Equal(t, "2026-03-01T12:01:00Z", v.CompletedAt)
}
