package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces devrunnerd environment variables.
const envPrefix = "DEVRUNNER_"

// sections are the top-level config keys the env transformer recognizes.
var sections = []string{"server", "agent", "tasks", "logging"}

// Load builds the configuration from defaults, an optional YAML file,
// and environment overrides.
//
// Environment variables use underscore separators and are uppercased:
//
//	DEVRUNNER_SERVER_PORT       -> server.port
//	DEVRUNNER_AGENT_WORK_DIR    -> agent.work_dir
//	DEVRUNNER_TASKS_DEADLINE    -> tasks.deadline
//
// configPath may be empty, in which case only defaults and environment
// apply. A configured-but-missing file is an error; silent fallback to
// defaults would mask typos in deployment manifests.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", transformEnvKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// transformEnvKey maps DEVRUNNER_SECTION_FIELD_NAME to section.field_name.
// Only the first underscore after a known section becomes a dot; the
// rest stay underscores so compound field names survive.
func transformEnvKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, section := range sections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}
