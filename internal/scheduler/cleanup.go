package scheduler

import (
	"context"
	"database/sql"
	"log"
	"time"

	"kaamkhojo-engine/internal/store"
)

// Cleanup deletes records older than Retention. OnExpired runs after rows
// were actually removed.
type Cleanup struct {
	DB        *sql.DB
	Retention time.Duration
	OnExpired func(ctx context.Context, deleted int64)
}

func (c Cleanup) Run(ctx context.Context) error {
	if c.Retention <= 0 {
		return nil
	}
	n, err := store.CleanupExpired(ctx, c.DB, c.Retention)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	log.Printf("[cleanup] removed %d expired records", n)
	if c.OnExpired != nil {
		c.OnExpired(ctx, n)
	}
	return nil
}
