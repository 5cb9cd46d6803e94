package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Defaults(t *testing.T) {
	log, err := NewLogger(nil)
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	_, err := NewLogger(&Config{Level: "loud", Format: "json", OutputPaths: []string{"stderr"}})
	assert.Error(t, err)

	_, err = NewLogger(&Config{Level: "info", Format: "xml", OutputPaths: []string{"stderr"}})
	assert.Error(t, err)

	_, err = NewLogger(&Config{Level: "info", Format: "json"})
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Format = "console"
	require.NoError(t, cfg.Validate())
}

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ContextFields(ctx))

	ctx = WithTaskID(ctx, "dev_abc123")
	ctx = WithRequestID(ctx, "req-42")

	fields := ContextFields(ctx)
	require.Len(t, fields, 2)
	assert.Equal(t, "dev_abc123", TaskIDFromContext(ctx))
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
}

func TestLogger_EmitsContextFields(t *testing.T) {
	log := NewTestLogger()
	ctx := WithTaskID(context.Background(), "dev_abc123")

	log.Info(ctx, "task submitted", zap.String("requester", "clawdbot"))

	log.AssertLogged(t, zapcore.InfoLevel, "task submitted")
	entries := log.FilterMessage("task submitted").All()
	require.Len(t, entries, 1)

	got := entries[0].ContextMap()
	assert.Equal(t, "dev_abc123", got["task.id"])
	assert.Equal(t, "clawdbot", got["requester"])
}

func TestLogger_With(t *testing.T) {
	log := NewTestLogger()
	child := log.With(zap.String("component", "runner"))
	child.Info(context.Background(), "spawned")

	entries := log.FilterMessage("spawned").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "runner", entries[0].ContextMap()["component"])
}
