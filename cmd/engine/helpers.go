package main

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"kaamkhojo-engine/internal/config"
	"kaamkhojo-engine/internal/domain"
	"kaamkhojo-engine/internal/store"
)

var ErrLocked = errors.New("data dir is in use by another engine")

type engineEnv struct {
	dataDir     string
	userCfgPath string
	cfg         config.Config
}

func resolveDataDir() string {
	if dataDirFlag != "" {
		return dataDirFlag
	}
	if v := strings.TrimSpace(os.Getenv(config.EnvDataDir)); v != "" {
		return v
	}
	return "data"
}

// loadRuntime bootstraps the data dir and reads config with env overrides.
func loadRuntime() (engineEnv, error) {
	dataDir := resolveDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return engineEnv{}, err
	}

	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultConfigFlag)
	if err != nil {
		return engineEnv{}, fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := loadConfig(userCfgPath)
	if err != nil {
		return engineEnv{}, err
	}
	cfg.App.DataDir = dataDir
	return engineEnv{dataDir: dataDir, userCfgPath: userCfgPath, cfg: cfg}, nil
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := config.OverlayEnv(&cfg); err != nil {
		return cfg, err
	}
	normalized, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		log.Printf("level=warn msg=\"config\" warning=%q", w)
	}
	if !vr.OK() {
		return cfg, errors.New("config validation failed:\n- " + strings.Join(vr.Errors, "\n- "))
	}
	return normalized, nil
}

// lockDataDir makes sure only one engine writes to dataDir.
func lockDataDir(dataDir string) (*flock.Flock, error) {
	fl := flock.New(filepath.Join(dataDir, "engine.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", dataDir, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return fl, nil
}

func openStore(dataDir string) (*store.DB, error) {
	return store.Open(filepath.Join(dataDir, "kaamkhojo.db"))
}

// seedRecords reads file when set, else the built-in sample data.
func seedRecords(file string) ([]domain.Record, error) {
	if file == "" {
		return store.MockRecords(), nil
	}
	return store.LoadSeedFile(file)
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownHandler lets a local supervisor stop the engine.
func shutdownHandler(token string, stop func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// Local-only guard
		host := r.RemoteAddr
		if i := strings.LastIndexByte(host, ':'); i >= 0 {
			host = strings.Trim(host[:i], "[]")
		}
		if host != "127.0.0.1" && host != "::1" && host != "localhost" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		// Token guard
		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))
		stop()
	}
}
