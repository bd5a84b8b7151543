package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"time"
)

// APIConfig enables the HTTP API when Addr is set.
type APIConfig struct {
	Addr      string        `mapstructure:"addr"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

const minSecretLength = 16

func (config APIConfig) Enabled() bool {
	return config.Addr != ""
}

func (config APIConfig) validate() error {
	if !config.Enabled() {
		return nil
	}

	var errs []error
	if len(config.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("jwt_secret must be at least %d characters", minSecretLength))
	}
	if config.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token_ttl must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}
	return nil
}

func (config APIConfig) bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error

	if err := v.BindEnv("api.addr", "API_ADDR"); err != nil {
		errs = append(errs, err)
	}
	if err := v.BindEnv("api.jwt_secret", "API_JWT_SECRET"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}
	return nil
}
