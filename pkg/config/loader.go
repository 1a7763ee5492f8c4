package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("ocpp.port", "OCPP_PORT", "APP_OCPP_PORT")
	viper.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	viper.BindEnv("nats.url", "NATS_URL", "APP_NATS_URL")
	viper.BindEnv("notification.push.access_token", "PUSH_ACCESS_TOKEN", "APP_PUSH_ACCESS_TOKEN")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	viper.SetDefault("http.port", 8000)
	viper.SetDefault("ocpp.port", 9000)
	viper.SetDefault("ocpp.heartbeat_interval", 300)
	viper.SetDefault("database.auto_migrate", true)
	viper.SetDefault("database.seed", true)
	viper.SetDefault("holiday.dir", "./holidays")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: env vars and defaults only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
