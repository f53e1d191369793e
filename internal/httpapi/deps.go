package httpapi

import (
	"database/sql"
	"net/http"
	"sync/atomic"
	"time"

	"kaamkhojo-engine/internal/cache"
	"kaamkhojo-engine/internal/config"
	"kaamkhojo-engine/internal/events"
	"kaamkhojo-engine/internal/listing"
)

type Deps struct {
	DB *sql.DB

	// Source feeds the listing screens and the JSON API.
	Source listing.Source

	Hub   *events.Hub
	Cache cache.Cache

	// Actions receives apply/save/contact/... clicks.
	Actions Actions

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Shutdown, when set, is mounted at /shutdown. It does its own guarding.
	Shutdown http.HandlerFunc
}

func (d Deps) cfg() config.Config {
	if d.CfgVal == nil {
		return config.Default()
	}
	if c, ok := d.CfgVal.Load().(config.Config); ok {
		return c
	}
	return config.Default()
}

func (d Deps) cacheTTL() time.Duration {
	return time.Duration(d.cfg().Cache.TTLSeconds) * time.Second
}
