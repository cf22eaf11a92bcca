package config

import "time"

type Config struct {
	App           AppConfig           `mapstructure:"app"`
	HTTP          HTTPConfig          `mapstructure:"http"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Queue         QueueConfig         `mapstructure:"queue"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Vault         VaultConfig         `mapstructure:"vault"`
	OpenTelemetry OpenTelemetryConfig `mapstructure:"opentelemetry"`
	Prometheus    PrometheusConfig    `mapstructure:"prometheus"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	RateLimiting  RateLimitingConfig  `mapstructure:"rate_limiting"`
	Email         EmailConfig         `mapstructure:"email"`
	Alerts        AlertsConfig        `mapstructure:"alerts"`
	Thresholds    ThresholdsConfig    `mapstructure:"thresholds"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Jobs          JobsConfig          `mapstructure:"jobs"`
	Station       StationConfig       `mapstructure:"station"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
}

// QueueConfig selects the message broker. Type is "nats" or "rabbitmq".
type QueueConfig struct {
	Type     string         `mapstructure:"type"`
	NATS     NATSConfig     `mapstructure:"nats"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret               string        `mapstructure:"secret"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
	Issuer               string        `mapstructure:"issuer"`
}

// VaultConfig enables pulling secrets (database URL, JWT secret, SendGrid
// key) from HashiCorp Vault at startup. When disabled, the plain config
// values are used as-is.
type VaultConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
}

type OpenTelemetryConfig struct {
	Enabled bool         `mapstructure:"enabled"`
	Jaeger  JaegerConfig `mapstructure:"jaeger"`
}

type JaegerConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

type EmailConfig struct {
	Provider string     `mapstructure:"provider"` // sendgrid or smtp
	APIKey   string     `mapstructure:"api_key"`
	From     string     `mapstructure:"from"`
	FromName string     `mapstructure:"from_name"`
	BaseURL  string     `mapstructure:"base_url"` // dashboard link in outbound mail
	SMTP     SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

// AlertsConfig controls where FAIL reconciliations are escalated.
// IncludeWarnings raises WARNING verdicts too.
type AlertsConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	IncludeWarnings bool   `mapstructure:"include_warnings"`
	WebhookURL      string `mapstructure:"webhook_url"`
	ManagerEmail    string `mapstructure:"manager_email"`
}

// ThresholdsConfig overrides the reconciliation verdict boundaries,
// expressed in percent.
type ThresholdsConfig struct {
	WarnVariancePercent float64 `mapstructure:"warn_variance_percent"`
	FailVariancePercent float64 `mapstructure:"fail_variance_percent"`
	WarnLossPercent     float64 `mapstructure:"warn_loss_percent"`
	FailLossPercent     float64 `mapstructure:"fail_loss_percent"`
}

type CacheConfig struct {
	PreviousShiftTTL time.Duration `mapstructure:"previous_shift_ttl"`
	CustomersTTL     time.Duration `mapstructure:"customers_ttl"`
}

type JobsConfig struct {
	DailyReport DailyReportJob `mapstructure:"daily_report"`
}

// DailyReportJob emails the previous day's summary at the given local hour.
type DailyReportJob struct {
	Enabled bool `mapstructure:"enabled"`
	Hour    int  `mapstructure:"hour"`
}

type StationConfig struct {
	Name     string `mapstructure:"name"`
	Timezone string `mapstructure:"timezone"`
	Currency string `mapstructure:"currency"`
}
