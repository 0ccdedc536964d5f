package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseURL string
	SQLitePath  string
	LogPath     string
	LogLevel    string

	Scheduler SchedulerConfig
	Scanner   ScannerConfig
	Uptime    UptimeConfig
}

type SchedulerConfig struct {
	UptimeCron string
	ScanCron   string
}

// ScannerConfig tunes the crawler; loaded from scanner.yaml when present
type ScannerConfig struct {
	MaxPages         int `yaml:"max_pages"`
	FetchTimeoutSec  int `yaml:"fetch_timeout_sec"`
	CrawlDelayMS     int `yaml:"crawl_delay_ms"`
	RescanAfterHours int `yaml:"rescan_after_hours"`
	RescanBatch      int `yaml:"rescan_batch"`
}

type UptimeConfig struct {
	TimeoutSec         int `yaml:"timeout_sec"`
	Workers            int `yaml:"workers"`
	DefaultIntervalMin int `yaml:"default_interval_min"`
}

func (c ScannerConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

func (c ScannerConfig) CrawlDelay() time.Duration {
	return time.Duration(c.CrawlDelayMS) * time.Millisecond
}

func (c ScannerConfig) RescanAfter() time.Duration {
	return time.Duration(c.RescanAfterHours) * time.Hour
}

func (c UptimeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnv("SQLITE_PATH", "seolens.db"),
		LogPath:     getEnv("LOG_PATH", "daemon.log"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Scheduler: SchedulerConfig{
			UptimeCron: getEnv("UPTIME_CRON", "*/5 * * * *"),
			ScanCron:   os.Getenv("SCAN_CRON"),
		},
		Scanner: ScannerConfig{
			MaxPages:         50,
			FetchTimeoutSec:  15,
			CrawlDelayMS:     getEnvInt("CRAWL_DELAY_MS", 0),
			RescanAfterHours: 24,
			RescanBatch:      10,
		},
		Uptime: UptimeConfig{
			TimeoutSec:         10,
			Workers:            8,
			DefaultIntervalMin: 10,
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if err := cfg.loadTunables(getEnv("SCANNER_CONFIG", "scanner.yaml")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadTunables overlays scanner.yaml on the defaults when the file exists
func (c *Config) loadTunables(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var file struct {
		Scanner ScannerConfig `yaml:"scanner"`
		Uptime  UptimeConfig  `yaml:"uptime"`
	}
	file.Scanner = c.Scanner
	file.Uptime = c.Uptime

	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	c.Scanner = file.Scanner
	c.Uptime = file.Uptime
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
