package config

import (
	"errors"
	"fmt"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type BoardConfig struct {
	// CandidateLimit bounds how many filtered postings are loaded to rank
	// Hot, Top and Fake views.
	CandidateLimit      int    `mapstructure:"candidate_limit"`
	ExpirationInDays    int    `mapstructure:"expiration_in_days"`
	MaintenanceSchedule string `mapstructure:"maintenance_schedule"`
}

func (config BoardConfig) validate() error {
	var errs []error

	if config.CandidateLimit <= 0 {
		errs = append(errs, fmt.Errorf("candidate_limit must be greater than zero"))
	}
	if config.ExpirationInDays <= 0 {
		errs = append(errs, fmt.Errorf("expiration_in_days must be greater than zero"))
	}
	if _, err := cron.ParseStandard(config.MaintenanceSchedule); err != nil {
		errs = append(errs, fmt.Errorf("invalid maintenance_schedule: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config BoardConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("board.expiration_in_days", "EXPIRATION_IN_DAYS")
}
