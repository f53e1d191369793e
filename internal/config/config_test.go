package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	_, vr := NormalizeAndValidate(Default())
	assert.True(t, vr.OK(), vr.Errors)
}

func TestLoad_KeepsDefaultsForMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  port: 9000\n  data_dir: /tmp/kk\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, "/tmp/kk", cfg.App.DataDir)
	assert.Equal(t, "grid", cfg.Listing.DefaultLayout)
	assert.Equal(t, "@daily", cfg.Maintenance.CleanupCron)
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := Default()
	cfg.App.Port = 0
	cfg.Listing.DefaultLayout = " LIST "
	cfg.Listing.Window = "1y"
	cfg.Cache.RedisURL = "localhost:6379"
	cfg.Maintenance.CleanupCron = "every tuesday"
	cfg.RateLimit.PerSecond = 5
	cfg.RateLimit.Burst = 0

	out, vr := NormalizeAndValidate(cfg)
	assert.False(t, vr.OK())
	assert.Equal(t, "list", out.Listing.DefaultLayout)

	joined := func() string {
		s := ""
		for _, e := range vr.Errors {
			s += e + "\n"
		}
		return s
	}()
	assert.Contains(t, joined, "app.port")
	assert.Contains(t, joined, "listing.window")
	assert.Contains(t, joined, "cache.redis_url")
	assert.Contains(t, joined, "maintenance.cleanup_cron")
	assert.Contains(t, joined, "rate_limit.burst")
	assert.NotContains(t, joined, "default_layout")
}

func TestNormalizeAndValidate_Warnings(t *testing.T) {
	cfg := Default()
	cfg.App.Host = "0.0.0.0"
	cfg.Listing.DebounceMS = 5000
	cfg.Maintenance.RetentionDays = 0

	_, vr := NormalizeAndValidate(cfg)
	assert.True(t, vr.OK())
	assert.Len(t, vr.Warnings, 4)
}

func TestSaveAtomic_KeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")

	first := Default()
	require.NoError(t, SaveAtomic(path, first))

	second := Default()
	second.App.Port = 9100
	require.NoError(t, SaveAtomic(path, second))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, got.App.Port)

	bak, err := Load(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, first.App.Port, bak.App.Port)

	_, err = os.Stat(path + ".tmp")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveAtomic_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := Default()
	cfg.App.Port = -1

	err := SaveAtomic(path, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.port")
	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestEnsureUserConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	path, err := EnsureUserConfig(dir, filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.App.DataDir)

	// an existing file is left alone
	require.NoError(t, os.WriteFile(path, []byte("app:\n  port: 1234\n  data_dir: x\n"), 0o644))
	_, err = EnsureUserConfig(dir, "")
	require.NoError(t, err)
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.App.Port)
}

func TestEnsureUserConfig_CopiesDefaultFile(t *testing.T) {
	root := t.TempDir()
	def := filepath.Join(root, "default.yml")
	require.NoError(t, os.WriteFile(def, []byte("app:\n  port: 4321\n"), 0o644))

	path, err := EnsureUserConfig(filepath.Join(root, "data"), def)
	require.NoError(t, err)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4321, cfg.App.Port)
}

func TestOverlayEnv(t *testing.T) {
	t.Setenv(EnvDataDir, "/var/lib/kaamkhojo")
	t.Setenv(EnvPort, "8088")
	t.Setenv(EnvRedisURL, "redis://cache:6379/0")

	cfg := Default()
	require.NoError(t, OverlayEnv(&cfg))
	assert.Equal(t, "/var/lib/kaamkhojo", cfg.App.DataDir)
	assert.Equal(t, 8088, cfg.App.Port)
	assert.Equal(t, "redis://cache:6379/0", cfg.Cache.RedisURL)
	assert.Equal(t, "127.0.0.1", cfg.App.Host)

	t.Setenv(EnvPort, "eighty")
	assert.Error(t, OverlayEnv(&cfg))
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("KAAMKHOJO_TEST_ONLY=from-dotenv\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("KAAMKHOJO_TEST_ONLY") })

	LoadDotenv(filepath.Join(t.TempDir(), "nope.env"), path)
	assert.Equal(t, "from-dotenv", os.Getenv("KAAMKHOJO_TEST_ONLY"))
}
