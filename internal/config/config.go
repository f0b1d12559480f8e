package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"adpulse/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Ads        AdsConfig        `yaml:"ads"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Engine     EngineConfig     `yaml:"engine"`
	API        APIConfig        `yaml:"api"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// AdsConfig настройки клиента внешнего рекламного API
type AdsConfig struct {
	BaseURL        string  `yaml:"base_url"`
	TokenURL       string  `yaml:"token_url"`
	ClientID       string  `yaml:"client_id"`
	ClientSecret   string  `yaml:"client_secret"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

type SchedulerConfig struct {
	TickSeconds           int         `yaml:"tick_seconds"`
	MaxConcurrentAccounts int         `yaml:"max_concurrent_accounts"`
	Retry                 RetryConfig `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMs int `yaml:"base_delay_ms"`
	MaxDelayMs  int `yaml:"max_delay_ms"`
}

type EngineConfig struct {
	DefaultACOSThreshold   float64 `yaml:"default_acos_threshold"`
	DefaultSpendThreshold  float64 `yaml:"default_spend_threshold"`
	DefaultClicksThreshold float64 `yaml:"default_clicks_threshold"`
	DefaultLookbackDays    int     `yaml:"default_lookback_days"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен, отсутствие файла не ошибка
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Ads.BaseURL == "" {
		return errors.New("ads base_url is required")
	}

	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return errors.New("telegram bot token is required when telegram is enabled")
	}

	if c.API.Enabled && c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth enabled but no api keys configured")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}

	if c.Scheduler.TickSeconds == 0 {
		c.Scheduler.TickSeconds = models.DefaultSchedulerTick
	}
	if c.Scheduler.MaxConcurrentAccounts == 0 {
		c.Scheduler.MaxConcurrentAccounts = models.DefaultMaxConcurrentAccounts
	}
	if c.Scheduler.Retry.MaxAttempts == 0 {
		c.Scheduler.Retry.MaxAttempts = 5
	}
	if c.Scheduler.Retry.BaseDelayMs == 0 {
		c.Scheduler.Retry.BaseDelayMs = 1000
	}
	if c.Scheduler.Retry.MaxDelayMs == 0 {
		c.Scheduler.Retry.MaxDelayMs = 60000
	}

	if c.Engine.DefaultACOSThreshold == 0 {
		c.Engine.DefaultACOSThreshold = 30
	}
	if c.Engine.DefaultSpendThreshold == 0 {
		c.Engine.DefaultSpendThreshold = 100
	}
	if c.Engine.DefaultClicksThreshold == 0 {
		c.Engine.DefaultClicksThreshold = 50
	}
	if c.Engine.DefaultLookbackDays == 0 {
		c.Engine.DefaultLookbackDays = models.DefaultLookbackDays
	}

	if c.Ads.TimeoutSeconds == 0 {
		c.Ads.TimeoutSeconds = 30
	}
	if c.Ads.RateLimitRPS == 0 {
		c.Ads.RateLimitRPS = 5
	}
	if c.Ads.RateLimitBurst == 0 {
		c.Ads.RateLimitBurst = 10
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}

// Tick возвращает период основного цикла планировщика
func (c *SchedulerConfig) Tick() time.Duration {
	return time.Duration(c.TickSeconds) * time.Second
}
