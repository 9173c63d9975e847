package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"agvfaults/internal/bootstrap/logging"
	"agvfaults/internal/errs"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Categories CategoriesConfig `mapstructure:"categories"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// RateLimitConfig drives the serve command's token bucket. An empty
// RedisAddr disables rate limiting entirely.
type RateLimitConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	Capacity        int           `mapstructure:"capacity"`
	RefillPerSecond float64       `mapstructure:"refill_per_second"`
	TTL             time.Duration `mapstructure:"ttl"`
}

type CategoriesConfig struct {
	RulesFile string `mapstructure:"rules_file"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AGV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
	)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "agvfaults")
	v.SetDefault("app.env", "dev")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/faults.sqlite")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("ratelimit.redis_addr", "")
	v.SetDefault("ratelimit.capacity", 10)
	v.SetDefault("ratelimit.refill_per_second", 0.17)
	v.SetDefault("ratelimit.ttl", time.Hour)
	v.SetDefault("categories.rules_file", "")
}
