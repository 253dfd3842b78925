package config

import (
	"fmt"
	"strings"
	"time"

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

	// Allow common env vars without the APP_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	viper.BindEnv("queue.nats_url", "NATS_URL", "APP_QUEUE_NATS_URL")
	viper.BindEnv("queue.rabbitmq_url", "RABBITMQ_URL", "APP_QUEUE_RABBITMQ_URL")
	viper.BindEnv("agent.webhook_url", "AGENT_WEBHOOK_URL", "N8N_WEBHOOK_URL")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine, env vars carry the rest.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "configurador")
	viper.SetDefault("http.port", 5000)
	viper.SetDefault("queue.provider", "none")
	viper.SetDefault("agent.timeout", 30*time.Second)
	viper.SetDefault("agent.breaker.max_requests", 3)
	viper.SetDefault("agent.breaker.interval", time.Minute)
	viper.SetDefault("agent.breaker.timeout", 30*time.Second)
	viper.SetDefault("agent.breaker.failure_threshold", 0.6)
	viper.SetDefault("playback.ready_timeout", 8*time.Second)
	viper.SetDefault("playback.retention_window", 5*time.Minute)
	viper.SetDefault("voice.language", "es-ES")
	viper.SetDefault("voice.toggle_debounce", 300*time.Millisecond)
	viper.SetDefault("cache.dashboard_ttl", time.Minute)
	viper.SetDefault("cache.user_ttl", 5*time.Minute)
	viper.SetDefault("prometheus.path", "/metrics")
}
