package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Holiday    HolidayConfig    `yaml:"holiday"`
	Scheduling SchedulingConfig `yaml:"scheduling"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// HolidayConfig holds the public-holiday feed configuration.
type HolidayConfig struct {
	Enabled        bool          `yaml:"enabled"`
	URL            string        `yaml:"url"`
	CountryCode    string        `yaml:"country_code"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// SchedulingConfig holds the dispatch scheduling defaults.
type SchedulingConfig struct {
	DefaultDurationMinutes int           `yaml:"default_duration_minutes"`
	DefaultStartTime       string        `yaml:"default_start_time"`
	SettleDelaySeconds     int           `yaml:"settle_delay_seconds"`
	SettleDelay            time.Duration `yaml:"-"` // Ignored by YAML parser
	BoardPageSize          int           `yaml:"board_page_size"`
	BoardSessionTTLMinutes int           `yaml:"board_session_ttl_minutes"`
	MonthlyCapacityHours   float64       `yaml:"monthly_capacity_hours"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Holiday.TimeoutSeconds <= 0 {
		cfg.Holiday.TimeoutSeconds = 15
	}
	cfg.Holiday.Timeout = time.Duration(cfg.Holiday.TimeoutSeconds) * time.Second

	if cfg.Holiday.CountryCode == "" {
		cfg.Holiday.CountryCode = "JP"
	}

	if cfg.Scheduling.DefaultDurationMinutes <= 0 {
		cfg.Scheduling.DefaultDurationMinutes = 120
	}
	if cfg.Scheduling.DefaultStartTime == "" {
		cfg.Scheduling.DefaultStartTime = "09:00"
	}
	if cfg.Scheduling.SettleDelaySeconds <= 0 {
		cfg.Scheduling.SettleDelaySeconds = 3
	}
	cfg.Scheduling.SettleDelay = time.Duration(cfg.Scheduling.SettleDelaySeconds) * time.Second

	if cfg.Scheduling.BoardPageSize <= 0 {
		cfg.Scheduling.BoardPageSize = 10
	}
	if cfg.Scheduling.BoardSessionTTLMinutes <= 0 {
		cfg.Scheduling.BoardSessionTTLMinutes = 30
	}
	if cfg.Scheduling.MonthlyCapacityHours <= 0 {
		// 22 working days at 8 hours.
		cfg.Scheduling.MonthlyCapacityHours = 176
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
