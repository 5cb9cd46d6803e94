// Package config provides configuration loading for devrunnerd.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DEVRUNNER_SERVER_PORT, DEVRUNNER_AGENT_PATH, ...)
//  2. YAML config file
//  3. Hardcoded defaults
package config

import (
	"fmt"
	"time"
)

// Config is the full daemon configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Agent   AgentConfig   `koanf:"agent"`
	Tasks   TasksConfig   `koanf:"tasks"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	// Port the echo server listens on.
	Port int `koanf:"port"`
	// AuthToken, when set, is required as a bearer token on the dev API.
	AuthToken string `koanf:"auth_token"`
	// RateLimit caps dev-API requests per second per client. Zero
	// disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// AgentConfig locates the external coding agent.
type AgentConfig struct {
	// Path is the agent executable.
	Path string `koanf:"path"`
	// WorkDir is the repository the agent operates in.
	WorkDir string `koanf:"work_dir"`
}

// TasksConfig tunes the execution core.
type TasksConfig struct {
	// Deadline is the hard per-task wall-clock limit.
	Deadline time.Duration `koanf:"deadline"`
	// LogDir receives one audit entry per task.
	LogDir string `koanf:"log_dir"`
	// RetentionCap bounds the in-memory registry.
	RetentionCap int `koanf:"retention_cap"`
}

// LoggingConfig mirrors logging.Config for koanf unmarshalling.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DefaultConfig returns the hardcoded defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8420,
			RateLimit:       10,
			ShutdownTimeout: 10 * time.Second,
		},
		Agent: AgentConfig{
			Path:    "claude",
			WorkDir: ".",
		},
		Tasks: TasksConfig{
			Deadline:     600 * time.Second,
			LogDir:       "/var/log/devrunnerd",
			RetentionCap: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for startup errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d: out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit %v: must not be negative", c.Server.RateLimit)
	}
	if c.Agent.Path == "" {
		return fmt.Errorf("agent.path must not be empty")
	}
	if c.Agent.WorkDir == "" {
		return fmt.Errorf("agent.work_dir must not be empty")
	}
	if c.Tasks.Deadline <= 0 {
		return fmt.Errorf("tasks.deadline %v: must be positive", c.Tasks.Deadline)
	}
	if c.Tasks.LogDir == "" {
		return fmt.Errorf("tasks.log_dir must not be empty")
	}
	if c.Tasks.RetentionCap < 0 {
		return fmt.Errorf("tasks.retention_cap %d: must not be negative", c.Tasks.RetentionCap)
	}
	return nil
}
