package httpapi

import (
	"context"
	"log"

	"kaamkhojo-engine/internal/domain"
)

// Actions handles the per-record buttons (apply, save, contact, book, hire,
// message, read, share). The engine only forwards them.
type Actions interface {
	Perform(ctx context.Context, kind domain.Kind, id int64, action string) error
}

type ActionsFunc func(ctx context.Context, kind domain.Kind, id int64, action string) error

func (f ActionsFunc) Perform(ctx context.Context, kind domain.Kind, id int64, action string) error {
	return f(ctx, kind, id, action)
}

// LogActions records actions in the log. It is used until a real
// application/booking backend is attached.
type LogActions struct{}

func (LogActions) Perform(ctx context.Context, kind domain.Kind, id int64, action string) error {
	log.Printf("level=info msg=\"record action\" request_id=%s kind=%s id=%d action=%s",
		RequestIDFrom(ctx), kind, id, action)
	return nil
}
