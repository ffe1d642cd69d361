// Package config provides configuration management for CalmDesk services.
package config

import (
	"fmt"
	"net/url"
)

// Config holds configuration for the automation sweep service.
type Config struct {
	DatabaseURL    string
	RulesFile      string
	SweepSchedule  string // cron expression for time-based rule sweeps
	OrganizationID int64
	ActorID        int64 // acting agent for "me" ownership conditions
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		SweepSchedule: "@every 10m",
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required")
	}
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("invalid database_url: %w", err)
	}
	if u.Scheme != "sqlite" && u.Scheme != "postgres" {
		return fmt.Errorf("unsupported database scheme: %s (expected sqlite or postgres)", u.Scheme)
	}
	if c.SweepSchedule == "" {
		return fmt.Errorf("sweep_schedule is required")
	}
	if c.OrganizationID <= 0 {
		return fmt.Errorf("organization_id must be positive, got %d", c.OrganizationID)
	}
	if c.ActorID < 0 {
		return fmt.Errorf("actor_id must not be negative, got %d", c.ActorID)
	}
	return nil
}
