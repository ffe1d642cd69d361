package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from an optional file using viper.
// Precedence: CLI flags (applied by the caller) > environment > config
// file > defaults. Environment variables use the CALMDESK_ prefix, e.g.
// CALMDESK_DATABASE_URL.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("database_url", defaults.DatabaseURL)
	v.SetDefault("rules_file", defaults.RulesFile)
	v.SetDefault("sweep_schedule", defaults.SweepSchedule)
	v.SetDefault("organization_id", defaults.OrganizationID)
	v.SetDefault("actor_id", defaults.ActorID)

	v.SetEnvPrefix("CALMDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:    v.GetString("database_url"),
		RulesFile:      v.GetString("rules_file"),
		SweepSchedule:  v.GetString("sweep_schedule"),
		OrganizationID: v.GetInt64("organization_id"),
		ActorID:        v.GetInt64("actor_id"),
	}
	return cfg, nil
}
