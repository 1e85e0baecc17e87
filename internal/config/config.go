// Package config provides configuration management for the application.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pontohub/pontohub/pkg/logger"
	"github.com/pontohub/pontohub/pkg/telemetry"
)

// Default configuration values
const (
	defaultQueueServiceTimeout = 15
	defaultLogPollInterval     = 2
	defaultQueuePollInterval   = 2
	defaultWatchPollInterval   = 2
	defaultBufferCapacity      = 1000
	defaultDedupCapacity       = 2000
	defaultCurrentActionWindow = 20
	defaultRetentionDays       = 30
	defaultPrometheusPort      = 9090
)

// Config represents the complete application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	QueueService QueueServiceConfig `yaml:"queue_service"`
	Polling      PollingConfig      `yaml:"polling"`
	Buffer       BufferConfig       `yaml:"buffer"`
	Schedules    SchedulesConfig    `yaml:"schedules"`
	Logging      logger.Config      `yaml:"logging"`
	Telemetry    telemetry.Config   `yaml:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Debug       bool     `yaml:"debug"`
	CORSOrigins []string `yaml:"cors_origins"` // Allowed CORS origins whitelist
}

// QueueServiceConfig holds the remote queue service connection settings
type QueueServiceConfig struct {
	// BaseURL is the root URL of the queue service, e.g. "http://localhost:8000"
	BaseURL string `yaml:"base_url"`
	// Timeout is the per-request timeout in seconds
	Timeout int `yaml:"timeout"`
}

// PollingConfig holds poller intervals, all in seconds
type PollingConfig struct {
	LogInterval   int `yaml:"log_interval"`   // remote log tail poll
	QueueInterval int `yaml:"queue_interval"` // task list poll
	WatchInterval int `yaml:"watch_interval"` // single-task status poll
}

// BufferConfig holds log ingestion buffer sizing
type BufferConfig struct {
	// Capacity bounds the number of retained log entries
	Capacity int `yaml:"capacity"`
	// DedupCapacity bounds the dedup key set; must not be below Capacity
	DedupCapacity int `yaml:"dedup_capacity"`
	// CurrentActionWindow is how many recent entries the progress engine
	// scans for the current-action line
	CurrentActionWindow int `yaml:"current_action_window"`
}

// SchedulesConfig holds recurrence scheduler settings
type SchedulesConfig struct {
	// Enabled starts the minute evaluation tick
	Enabled bool `yaml:"enabled"`
	// RemoteSync pushes rule changes to the queue service after each
	// local mutation (best effort)
	RemoteSync bool `yaml:"remote_sync"`
	// RetentionDays is how long soft-deleted rules are kept before the
	// daily prune removes them
	RetentionDays int `yaml:"retention_days"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:  "0.0.0.0",
			Port:  8080,
			Debug: false,
			CORSOrigins: []string{
				"http://localhost:5173",
				"http://localhost:8080",
			},
		},
		QueueService: QueueServiceConfig{
			BaseURL: "http://localhost:8000",
			Timeout: defaultQueueServiceTimeout,
		},
		Polling: PollingConfig{
			LogInterval:   defaultLogPollInterval,
			QueueInterval: defaultQueuePollInterval,
			WatchInterval: defaultWatchPollInterval,
		},
		Buffer: BufferConfig{
			Capacity:            defaultBufferCapacity,
			DedupCapacity:       defaultDedupCapacity,
			CurrentActionWindow: defaultCurrentActionWindow,
		},
		Schedules: SchedulesConfig{
			Enabled:       true,
			RemoteSync:    true,
			RetentionDays: defaultRetentionDays,
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "text", // Default to human-readable text format instead of JSON
			File:       "",
			MaxSize:    100, // Max 100MB per log file
			MaxAge:     7,   // Retain logs for 7 days
			MaxBackups: 5,   // Keep 5 backup files
			Compress:   false,
		},
		Telemetry: telemetry.Config{
			Enabled: false,
			Prometheus: telemetry.PrometheusConfig{
				Enabled: false,
				Port:    defaultPrometheusPort,
			},
		},
	}
}

// Load loads configuration from a YAML file with environment variable expansion
func Load(path string) (*Config, error) {
	cfg := Default()

	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables in the configuration
	expanded := expandEnvVars(string(data))

	// Parse YAML
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values
// Only matches ${VAR_NAME} format (not $VAR_NAME) to avoid mangling literal
// dollar signs elsewhere in the file
func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := match[2 : len(match)-1]

		// Support default values: ${VAR_NAME:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]

		if value := os.Getenv(varName); value != "" {
			return value
		}

		// Return default value if provided
		if len(parts) > 1 {
			return parts[1]
		}

		return ""
	})
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
