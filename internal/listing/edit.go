package listing

import (
	"context"
	"log"

	"kaamkhojo-engine/internal/domain"
	"kaamkhojo-engine/internal/querysync"
	"kaamkhojo-engine/internal/state"
)

// Edit applies one filter edit to the page at rawURL without loading any
// records and returns the URL the browser should land on. The store is
// seeded from rawURL, edited, and the synchronizer's navigation is captured.
func Edit(ctx context.Context, kind domain.Kind, rawURL string, edit func(*state.Store)) (string, error) {
	_, _, initial, err := querysync.Seed(rawURL)
	if err != nil {
		log.Printf("level=warn msg=\"malformed listing url\" url=%q err=%v", rawURL, err)
	}

	var target string
	nav := querysync.NavigatorFunc(func(_ context.Context, t string) error {
		target = t
		return nil
	})

	st := state.New(initial)
	s := querysync.New(rawURL, nav, querysync.WithPath(kind.Screen()))
	s.Attach(st)
	edit(st)
	if err := s.Flush(ctx); err != nil {
		return "", err
	}
	_ = s.Close()

	if target == "" {
		target = s.URL()
	}
	return target, nil
}
