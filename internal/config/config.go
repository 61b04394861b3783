package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/spf13/viper"
)

const EnvPrefix = "EXAMTABLING"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type SchedulerConfig struct {
	Algorithm      string        `mapstructure:"algorithm"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxIterations  int           `mapstructure:"max_iterations"`
	PopulationSize int           `mapstructure:"population_size"`
	MutationRate   float64       `mapstructure:"mutation_rate"`
	Seed           uint64        `mapstructure:"seed"`
	RoomPolicy     string        `mapstructure:"room_policy"`
}

func (cfg SchedulerConfig) SearchOptions() model.SearchOptions {
	return model.SearchOptions{
		Timeout:        cfg.Timeout,
		MaxIterations:  cfg.MaxIterations,
		PopulationSize: cfg.PopulationSize,
		MutationRate:   cfg.MutationRate,
		Seed:           cfg.Seed,
	}
}

// New returns a viper instance carrying the defaults and the environment binding. Callers may bind
// flags into it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.dsn", "./examtabling.db")

	defaults := model.DefaultSearchOptions()
	v.SetDefault("scheduler.algorithm", string(model.GraphColoring))
	v.SetDefault("scheduler.timeout", defaults.Timeout)
	v.SetDefault("scheduler.max_iterations", defaults.MaxIterations)
	v.SetDefault("scheduler.population_size", defaults.PopulationSize)
	v.SetDefault("scheduler.mutation_rate", defaults.MutationRate)
	v.SetDefault("scheduler.seed", defaults.Seed)
	v.SetDefault("scheduler.room_policy", string(model.FirstFit))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration with precedence env > file > defaults. An empty path looks for
// examtabling.yaml in . and ./config; a missing file is not an error.
func Load(path string) (*Config, error) {
	return LoadWith(New(), path)
}

func LoadWith(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("examtabling")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535, got %v", cfg.Server.Port)
	}
	if cfg.Scheduler.Timeout <= 0 {
		return fmt.Errorf("invalid config: scheduler.timeout must be positive, got %v", cfg.Scheduler.Timeout)
	}
	if cfg.Scheduler.MaxIterations <= 0 {
		return fmt.Errorf("invalid config: scheduler.max_iterations must be positive, got %v", cfg.Scheduler.MaxIterations)
	}
	if cfg.Scheduler.MutationRate < 0 || cfg.Scheduler.MutationRate > 1 {
		return fmt.Errorf("invalid config: scheduler.mutation_rate must be within [0, 1], got %v", cfg.Scheduler.MutationRate)
	}
	if _, err := model.NewRoomAllocator(model.RoomPolicy(cfg.Scheduler.RoomPolicy)); err != nil {
		return fmt.Errorf("invalid config: scheduler.room_policy: %w", err)
	}
	return nil
}
