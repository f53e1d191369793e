package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// CronParser accepts standard five-field specs and descriptors like @daily.
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NormalizeAndValidate returns a normalized copy of cfg with the problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.App.Host = strings.TrimSpace(out.App.Host)
	out.App.DataDir = strings.TrimSpace(out.App.DataDir)
	out.Listing.DefaultLayout = strings.ToLower(strings.TrimSpace(out.Listing.DefaultLayout))
	out.Listing.Window = strings.ToLower(strings.TrimSpace(out.Listing.Window))
	out.Cache.RedisURL = strings.TrimSpace(out.Cache.RedisURL)
	out.Maintenance.CleanupCron = strings.TrimSpace(out.Maintenance.CleanupCron)
	out.Seed.File = strings.TrimSpace(out.Seed.File)

	if out.Listing.DefaultLayout == "" {
		out.Listing.DefaultLayout = "grid"
	}
	if out.Listing.Window == "" {
		out.Listing.Window = "all"
	}

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if out.App.DataDir == "" {
		res.addErr("app.data_dir is required")
	}
	if out.App.Host != "" && out.App.Host != "127.0.0.1" && out.App.Host != "localhost" && out.App.Host != "::1" {
		res.addWarn("app.host is %q; the engine has no auth and will be reachable from the network.", out.App.Host)
	}

	switch out.Listing.DefaultLayout {
	case "grid", "list":
	default:
		res.addErr("listing.default_layout must be grid or list")
	}
	switch out.Listing.Window {
	case "24h", "7d", "30d", "all":
	default:
		res.addErr("listing.window must be one of 24h, 7d, 30d, all")
	}
	if out.Listing.DebounceMS < 0 {
		res.addErr("listing.debounce_ms must be >= 0")
	} else if out.Listing.DebounceMS > 2000 {
		res.addWarn("listing.debounce_ms is %d; URL updates will feel sluggish.", out.Listing.DebounceMS)
	}

	if out.Cache.TTLSeconds < 0 {
		res.addErr("cache.ttl_seconds must be >= 0")
	}
	if out.Cache.RedisURL != "" && !strings.HasPrefix(out.Cache.RedisURL, "redis://") && !strings.HasPrefix(out.Cache.RedisURL, "rediss://") {
		res.addErr("cache.redis_url must start with redis:// or rediss://")
	}

	if out.Maintenance.CleanupCron != "" {
		if _, err := CronParser.Parse(out.Maintenance.CleanupCron); err != nil {
			res.addErr("maintenance.cleanup_cron is invalid: %v", err)
		}
	}
	if out.Maintenance.RetentionDays < 0 {
		res.addErr("maintenance.retention_days must be >= 0")
	} else if out.Maintenance.CleanupCron != "" && out.Maintenance.RetentionDays == 0 {
		res.addWarn("maintenance.retention_days is 0; cleanup is disabled.")
	}

	if out.RateLimit.PerSecond < 0 {
		res.addErr("rate_limit.per_second must be >= 0")
	}
	if out.RateLimit.PerSecond > 0 && out.RateLimit.Burst <= 0 {
		res.addErr("rate_limit.burst must be > 0 when rate_limit.per_second is set")
	}

	if out.Seed.OnStart && out.Seed.File == "" {
		res.addWarn("seed.file is empty; the built-in sample records will be used.")
	}

	return out, res
}
