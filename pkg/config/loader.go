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
	viper.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	viper.BindEnv("queue.nats.url", "NATS_URL", "APP_QUEUE_NATS_URL")
	viper.BindEnv("queue.rabbitmq.url", "RABBITMQ_URL", "APP_QUEUE_RABBITMQ_URL")
	viper.BindEnv("jwt.secret", "JWT_SECRET", "APP_JWT_SECRET")
	viper.BindEnv("vault.address", "VAULT_ADDR", "APP_VAULT_ADDRESS")
	viper.BindEnv("vault.token", "VAULT_TOKEN", "APP_VAULT_TOKEN")
	viper.BindEnv("email.api_key", "SENDGRID_API_KEY", "APP_EMAIL_API_KEY")
	viper.BindEnv("alerts.webhook_url", "ALERT_WEBHOOK_URL")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; env vars and defaults apply.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "forecourt-backoffice")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("database.auto_migrate", true)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.conn_max_lifetime", "30m")
	viper.SetDefault("redis.url", "redis://localhost:6379")
	viper.SetDefault("queue.type", "nats")
	viper.SetDefault("queue.nats.url", "nats://localhost:4222")
	viper.SetDefault("jwt.access_token_duration", "15m")
	viper.SetDefault("jwt.refresh_token_duration", "168h")
	viper.SetDefault("jwt.issuer", "forecourt-backoffice")
	viper.SetDefault("prometheus.path", "/metrics")
	viper.SetDefault("rate_limiting.max_requests", 100)
	viper.SetDefault("rate_limiting.window", "1m")
	viper.SetDefault("thresholds.warn_variance_percent", 0.5)
	viper.SetDefault("thresholds.fail_variance_percent", 1.0)
	viper.SetDefault("thresholds.warn_loss_percent", 1.0)
	viper.SetDefault("thresholds.fail_loss_percent", 2.0)
	viper.SetDefault("cache.previous_shift_ttl", "24h")
	viper.SetDefault("cache.customers_ttl", "10m")
	viper.SetDefault("email.provider", "smtp")
	viper.SetDefault("email.from", "noreply@forecourt.local")
	viper.SetDefault("email.from_name", "Forecourt Back Office")
	viper.SetDefault("email.base_url", "http://localhost:3000")
	viper.SetDefault("email.smtp.host", "localhost")
	viper.SetDefault("email.smtp.port", 1025)
	viper.SetDefault("jobs.daily_report.hour", 6)
	viper.SetDefault("station.name", "Fuel Station")
	viper.SetDefault("station.timezone", "UTC")
	viper.SetDefault("station.currency", "USD")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("prometheus.enabled", true)
}
