package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDataDir  = "KAAMKHOJO_DATA_DIR"
	EnvHost     = "KAAMKHOJO_HOST"
	EnvPort     = "KAAMKHOJO_PORT"
	EnvRedisURL = "REDIS_URL"
)

// LoadDotenv loads .env files into the process environment. Missing files
// are fine; variables already set win.
func LoadDotenv(paths ...string) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("level=warn msg=\"dotenv load failed\" path=%s err=%v", p, err)
		}
	}
}

// OverlayEnv applies environment overrides on top of cfg.
func OverlayEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.App.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHost)); v != "" {
		cfg.App.Host = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(EnvPort + " must be a number")
		}
		cfg.App.Port = port
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		cfg.Cache.RedisURL = v
	}
	return nil
}
