package httpapi

import (
	"database/sql"
	"net/http"
)

// DBHandler exposes maintenance hooks for the local database. Only
// loopback callers are allowed.
type DBHandler struct {
	DB *sql.DB
}

func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	switch clientIP(r) {
	case "127.0.0.1", "::1", "localhost":
	default:
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}

	if _, err := h.DB.ExecContext(r.Context(), `PRAGMA wal_checkpoint(FULL);`); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "checkpoint_failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
