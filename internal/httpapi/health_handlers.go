package httpapi

import (
	"database/sql"
	"net/http"

	"kaamkhojo-engine/internal/events"
	"kaamkhojo-engine/internal/store"
)

type HealthHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"ok": true}
	if h.DB != nil {
		n, err := store.CountRecords(r.Context(), h.DB)
		if err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		out["records"] = n
	}
	if h.Hub != nil {
		out["subscribers"] = h.Hub.Subscribers()
	}
	writeJSON(w, out)
}
