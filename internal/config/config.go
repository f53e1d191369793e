package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Host    string `yaml:"host" json:"host"`
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Listing struct {
		DefaultLayout string `yaml:"default_layout" json:"default_layout"`
		DebounceMS    int    `yaml:"debounce_ms" json:"debounce_ms"`
		// Window limits listings to recent records: 24h, 7d, 30d or all.
		Window string `yaml:"window" json:"window"`
	} `yaml:"listing" json:"listing"`

	Cache struct {
		RedisURL   string `yaml:"redis_url" json:"redis_url"`
		Prefix     string `yaml:"prefix" json:"prefix"`
		TTLSeconds int    `yaml:"ttl_seconds" json:"ttl_seconds"`
	} `yaml:"cache" json:"cache"`

	Maintenance struct {
		CleanupCron   string `yaml:"cleanup_cron" json:"cleanup_cron"`
		RetentionDays int    `yaml:"retention_days" json:"retention_days"`
	} `yaml:"maintenance" json:"maintenance"`

	RateLimit struct {
		PerSecond float64 `yaml:"per_second" json:"per_second"`
		Burst     int     `yaml:"burst" json:"burst"`
	} `yaml:"rate_limit" json:"rate_limit"`

	Seed struct {
		File    string `yaml:"file" json:"file"`
		OnStart bool   `yaml:"on_start" json:"on_start"`
	} `yaml:"seed" json:"seed"`
}

// Default is the config written on first start.
func Default() Config {
	var cfg Config
	cfg.App.Host = "127.0.0.1"
	cfg.App.Port = 38471
	cfg.App.DataDir = "data"
	cfg.Listing.DefaultLayout = "grid"
	cfg.Listing.Window = "all"
	cfg.Cache.Prefix = "kaamkhojo:"
	cfg.Cache.TTLSeconds = 60
	cfg.Maintenance.CleanupCron = "@daily"
	cfg.Maintenance.RetentionDays = 90
	cfg.RateLimit.PerSecond = 20
	cfg.RateLimit.Burst = 40
	cfg.Seed.OnStart = true
	return cfg
}

// Load reads path on top of Default, so sections missing from the file keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
