package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger LoggerConfig `mapstructure:"logger"`
	Bot    BotConfig    `mapstructure:"bot"`
	DB     DBConfig     `mapstructure:"db"`
	AI     AIConfig     `mapstructure:"ai"`
	Board  BoardConfig  `mapstructure:"board"`
	API    APIConfig    `mapstructure:"api"`
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("can't load .env file: %v", err)
	}

	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		configFile = value
	} else if value, _ := os.LookupEnv("MODE"); value == "test" {
		configFile = "../../configs/config.yaml"
	}

	config, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	v := viper.New()
	v.SetConfigFile(file)
	v.AutomaticEnv()

	setDefaults(v)

	err := bindEnvironmentVariables(v)
	if err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}

	config := Config{}
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.log_level", LevelInfo)
	v.SetDefault("logger.output_file", "./logs/errors.log")
	v.SetDefault("logger.app_name", "realjobs")
	v.SetDefault("logger.metrics_addr", ":8080")
	v.SetDefault("db.driver", DriverSqlite)
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.timeout", "10s")
	v.SetDefault("ai.max_requests_per_minute", 15)
	v.SetDefault("ai.max_requests_per_day", 1500)
	v.SetDefault("board.candidate_limit", 500)
	v.SetDefault("board.expiration_in_days", 30)
	v.SetDefault("board.maintenance_schedule", "0 3 * * *")
	v.SetDefault("api.addr", "")
	v.SetDefault("api.token_ttl", "24h")
}

func bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error

	bot, db, logger, ai, board, api := BotConfig{}, DBConfig{}, LoggerConfig{}, AIConfig{}, BoardConfig{}, APIConfig{}

	if err := bot.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("BotConfig: %w", err))
	}

	if err := db.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := ai.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("AIConfig: %w", err))
	}

	if err := board.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("BoardConfig: %w", err))
	}

	if err := api.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("APIConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if err := config.DB.validate(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := config.Bot.validate(); err != nil {
		errs = append(errs, fmt.Errorf("BotConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := config.AI.validate(); err != nil {
		errs = append(errs, fmt.Errorf("AIConfig: %w", err))
	}

	if err := config.Board.validate(); err != nil {
		errs = append(errs, fmt.Errorf("BoardConfig: %w", err))
	}

	if err := config.API.validate(); err != nil {
		errs = append(errs, fmt.Errorf("APIConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}
