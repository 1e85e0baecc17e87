// Package config provides configuration management for the application.
// This file contains validation functions for configuration values.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pontohub/pontohub/pkg/errors"
)

// Validate checks the configuration for values that would prevent the
// service from operating. It returns the first problem found; startup
// should treat any error as fatal.
func (c *Config) Validate() *errors.AppError {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if strings.TrimSpace(c.QueueService.BaseURL) == "" {
		return errors.New(errors.ErrCodeConfigInvalid,
			"queue_service.base_url cannot be empty")
	}
	u, err := url.Parse(c.QueueService.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("queue_service.base_url is not a valid URL: %q", c.QueueService.BaseURL))
	}
	if c.QueueService.Timeout < 1 {
		return errors.New(errors.ErrCodeConfigInvalid,
			"queue_service.timeout must be at least 1 second")
	}

	if c.Polling.LogInterval < 1 || c.Polling.QueueInterval < 1 || c.Polling.WatchInterval < 1 {
		return errors.New(errors.ErrCodeConfigInvalid,
			"polling intervals must be at least 1 second")
	}

	if c.Buffer.Capacity < 1 {
		return errors.New(errors.ErrCodeConfigInvalid,
			"buffer.capacity must be positive")
	}
	if c.Buffer.DedupCapacity < c.Buffer.Capacity {
		return errors.New(errors.ErrCodeConfigInvalid,
			"buffer.dedup_capacity must not be below buffer.capacity")
	}
	if c.Buffer.CurrentActionWindow < 1 {
		return errors.New(errors.ErrCodeConfigInvalid,
			"buffer.current_action_window must be positive")
	}

	if c.Schedules.RetentionDays < 1 {
		return errors.New(errors.ErrCodeConfigInvalid,
			"schedules.retention_days must be at least 1")
	}

	return nil
}
