package httpapi

import (
	"net/http"

	"kaamkhojo-engine/internal/domain"
)

// NewMux wires every route without middleware. Servers use NewHandler.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Listing screens
	lh := ListingHandler{Deps: d}
	for _, k := range domain.Kinds {
		screen := k.Screen()
		mux.HandleFunc(screen, methodMux(map[string]http.HandlerFunc{
			http.MethodGet: lh.Page,
		}))
		mux.HandleFunc(screen+"/", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: lh.Post, // filter, filter/clear, {id}/{action}
		}))
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			WriteError(w, r, http.StatusNotFound, "not_found", "not found")
			return
		}
		http.Redirect(w, r, domain.KindJob.Screen(), http.StatusFound)
	})

	// JSON API
	ah := APIHandler{Deps: d}
	mux.HandleFunc("/api/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.Jobs,
	}))
	mux.HandleFunc("/api/records", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.Records,
	}))
	mux.HandleFunc("/api/records/", methodMux(map[string]http.HandlerFunc{
		http.MethodDelete: ah.DeleteByPath, // expects /api/records/{id}
	}))
	mux.HandleFunc("/seed", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Seed,
	}))

	// Config
	ch := ConfigHandler{Deps: d}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Ops
	hh := HealthHandler{DB: d.DB, Hub: d.Hub}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))
	dh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}))
	if d.Shutdown != nil {
		mux.HandleFunc("/shutdown", d.Shutdown)
	}

	return mux
}

// NewHandler is NewMux behind the standard middleware chain.
func NewHandler(d Deps, limiter *ClientLimiter) http.Handler {
	return Chain(NewMux(d), RequestID, Recover, AccessLog, RateLimit(limiter), Cors)
}
