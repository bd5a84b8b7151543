package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"time"
)

type aiProvider string

const (
	ProviderGemini aiProvider = "gemini"
	ProviderOpenAI aiProvider = "openai"
)

// AIConfig configures the sentiment classifier. An empty key is allowed:
// comments are then stored as neutral.
type AIConfig struct {
	Provider             aiProvider    `mapstructure:"provider"`
	Key                  string        `mapstructure:"key"`
	Model                string        `mapstructure:"model"`
	Timeout              time.Duration `mapstructure:"timeout"`
	MaxRequestsPerMinute float32       `mapstructure:"max_requests_per_minute"`
	MaxRequestsPerDay    float32       `mapstructure:"max_requests_per_day"`
}

func (config AIConfig) validate() error {
	var errs []error

	if config.Provider != ProviderGemini && config.Provider != ProviderOpenAI {
		errs = append(errs, fmt.Errorf("unsupported ai provider: %q", config.Provider))
	}
	if config.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	if config.MaxRequestsPerMinute <= 0 || config.MaxRequestsPerDay <= 0 {
		errs = append(errs, fmt.Errorf("rate limits must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config AIConfig) bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error
	bindings := map[string]string{
		"ai.provider": "AI_PROVIDER",
		"ai.key":      "AI_KEY",
		"ai.model":    "AI_MODEL",
		"ai.timeout":  "AI_TIMEOUT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
