// Package config loads the message-dispatch core's configuration from a
// YAML file with environment-variable overrides, using viper the way the
// teacher's doctor package reads bd's own config.yaml.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the fully-resolved, immutable configuration the core depends
// on. No viper type leaks past Load.
type Config struct {
	Server    ServerConfig
	Heartbeat HeartbeatConfig
	RateLimit RateLimitConfig
	Handler   HandlerConfig
	Breaker   BreakerConfig
	Retry     RetryConfig
	Validate  ValidateConfig
	Auth      AuthConfig
	Shutdown  ShutdownConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	MaxConnections int
	CORSEnabled    bool
	AllowedOrigins []string
}

type HeartbeatConfig struct {
	IntervalSecs    int
	TimeoutSecs     int
	SendBufferSize  int
}

type RateLimitConfig struct {
	MaxRequests int
	WindowSecs  int
}

type HandlerConfig struct {
	TimeoutSecs int
}

type BreakerConfig struct {
	FailureThreshold          int
	FailureWindowSecs         int
	OpenDurationSecs          int
	HalfOpenSuccessThreshold int
}

type RetryConfig struct {
	MaxAttempts        int
	InitialDelayMs     int
	BackoffMultiplier  float64
	MaxDelayMs         int
	JitterFraction     float64
}

type ValidateConfig struct {
	MaxTitleLength       int
	MaxDescriptionLength int
	MaxCommentLength     int
}

type AuthConfig struct {
	Enabled       bool
	JWTSecret     string
	JWTPEMPath    string
	DesktopUserID string
}

type ShutdownConfig struct {
	DrainDeadlineSecs int
}

type LoggingConfig struct {
	Level      string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads configPath (a YAML file; "" skips file loading) and overlays
// environment variables prefixed BOARDWIRE_ (e.g. BOARDWIRE_SERVER_PORT),
// falling back to built-in defaults for anything unset.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOARDWIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			MaxConnections: v.GetInt("server.max_connections"),
			CORSEnabled:    v.GetBool("server.cors_enabled"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		},
		Heartbeat: HeartbeatConfig{
			IntervalSecs:   v.GetInt("heartbeat.interval_secs"),
			TimeoutSecs:    v.GetInt("heartbeat.timeout_secs"),
			SendBufferSize: v.GetInt("heartbeat.send_buffer_size"),
		},
		RateLimit: RateLimitConfig{
			MaxRequests: v.GetInt("rate_limit.max_requests"),
			WindowSecs:  v.GetInt("rate_limit.window_secs"),
		},
		Handler: HandlerConfig{
			TimeoutSecs: v.GetInt("handler.timeout_secs"),
		},
		Breaker: BreakerConfig{
			FailureThreshold:         v.GetInt("circuit_breaker.failure_threshold"),
			FailureWindowSecs:        v.GetInt("circuit_breaker.failure_window_secs"),
			OpenDurationSecs:         v.GetInt("circuit_breaker.open_duration_secs"),
			HalfOpenSuccessThreshold: v.GetInt("circuit_breaker.half_open_success_threshold"),
		},
		Retry: RetryConfig{
			MaxAttempts:       v.GetInt("retry.max_attempts"),
			InitialDelayMs:    v.GetInt("retry.initial_delay_ms"),
			BackoffMultiplier: v.GetFloat64("retry.backoff_multiplier"),
			MaxDelayMs:        v.GetInt("retry.max_delay_ms"),
			JitterFraction:    v.GetFloat64("retry.jitter_fraction"),
		},
		Validate: ValidateConfig{
			MaxTitleLength:       v.GetInt("validation.max_title_length"),
			MaxDescriptionLength: v.GetInt("validation.max_description_length"),
			MaxCommentLength:     v.GetInt("validation.max_comment_length"),
		},
		Auth: AuthConfig{
			Enabled:       v.GetBool("auth.enabled"),
			JWTSecret:     v.GetString("auth.jwt_secret"),
			JWTPEMPath:    v.GetString("auth.jwt_pem_path"),
			DesktopUserID: v.GetString("auth.desktop_user_id"),
		},
		Shutdown: ShutdownConfig{
			DrainDeadlineSecs: v.GetInt("shutdown.drain_deadline_secs"),
		},
		Logging: LoggingConfig{
			Level:      v.GetString("logging.level"),
			FilePath:   v.GetString("logging.file_path"),
			MaxSizeMB:  v.GetInt("logging.max_size_mb"),
			MaxBackups: v.GetInt("logging.max_backups"),
			MaxAgeDays: v.GetInt("logging.max_age_days"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_connections", 1000)
	v.SetDefault("server.cors_enabled", false)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("heartbeat.interval_secs", 30)
	v.SetDefault("heartbeat.timeout_secs", 90)
	v.SetDefault("heartbeat.send_buffer_size", 100)

	v.SetDefault("rate_limit.max_requests", 100)
	v.SetDefault("rate_limit.window_secs", 1)

	v.SetDefault("handler.timeout_secs", 10)

	v.SetDefault("circuit_breaker.failure_threshold", 5)
	v.SetDefault("circuit_breaker.failure_window_secs", 30)
	v.SetDefault("circuit_breaker.open_duration_secs", 30)
	v.SetDefault("circuit_breaker.half_open_success_threshold", 2)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_delay_ms", 100)
	v.SetDefault("retry.backoff_multiplier", 2.0)
	v.SetDefault("retry.max_delay_ms", 2000)
	v.SetDefault("retry.jitter_fraction", 0.2)

	v.SetDefault("validation.max_title_length", 200)
	v.SetDefault("validation.max_description_length", 10000)
	v.SetDefault("validation.max_comment_length", 5000)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.desktop_user_id", "local-user")

	v.SetDefault("shutdown.drain_deadline_secs", 30)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 28)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Heartbeat.TimeoutSecs <= c.Heartbeat.IntervalSecs {
		return fmt.Errorf("heartbeat.timeout_secs must exceed heartbeat.interval_secs")
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" && c.Auth.JWTPEMPath == "" {
		return fmt.Errorf("auth.enabled requires auth.jwt_secret or auth.jwt_pem_path")
	}
	return nil
}

// HandlerTimeout returns Handler.TimeoutSecs as a time.Duration.
func (c *Config) HandlerTimeout() time.Duration {
	return time.Duration(c.Handler.TimeoutSecs) * time.Second
}

// DrainDeadline returns Shutdown.DrainDeadlineSecs as a time.Duration.
func (c *Config) DrainDeadline() time.Duration {
	return time.Duration(c.Shutdown.DrainDeadlineSecs) * time.Second
}
