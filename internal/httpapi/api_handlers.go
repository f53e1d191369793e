package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"kaamkhojo-engine/internal/cache"
	"kaamkhojo-engine/internal/domain"
	"kaamkhojo-engine/internal/events"
	"kaamkhojo-engine/internal/filter"
	"kaamkhojo-engine/internal/querysync"
	"kaamkhojo-engine/internal/store"
)

const jobsCacheKey = "api:jobs"

// InvalidateListings drops cached API payloads after records change.
func InvalidateListings(ctx context.Context, c cache.Cache) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, jobsCacheKey); err != nil {
		log.Printf("level=warn msg=\"cache invalidate failed\" err=%v", err)
	}
}

// JobSummary is the shape served by GET /api/jobs.
type JobSummary struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	Location string   `json:"location"`
	Salary   string   `json:"salary"`
	Type     string   `json:"type"`
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

type RecordsResponse struct {
	Kind     domain.Kind     `json:"kind"`
	Criteria filter.Criteria `json:"criteria"`
	Total    int             `json:"total"`
	Count    int             `json:"count"`
	Records  []domain.Record `json:"records"`
}

type APIHandler struct {
	Deps
}

// Jobs serves every job, cached for cache.ttl_seconds.
func (h APIHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Cache != nil {
		b, ok, err := h.Cache.Get(ctx, jobsCacheKey)
		if err != nil {
			log.Printf("level=warn msg=\"cache get failed\" request_id=%s err=%v", RequestIDFrom(ctx), err)
		}
		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			_, _ = w.Write(b)
			return
		}
	}

	recs, err := h.Source.Records(ctx, domain.KindJob)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "source_failed", err.Error())
		return
	}
	out := make([]JobSummary, 0, len(recs))
	for _, rec := range recs {
		skills := rec.Skills
		if skills == nil {
			skills = []string{}
		}
		out = append(out, JobSummary{
			ID: rec.ID, Title: rec.Title, Company: rec.Company, Location: rec.Location,
			Salary: rec.Salary, Type: rec.Type, Category: rec.Category, Skills: skills,
		})
	}
	b, err := json.Marshal(out)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	b = append(b, '\n')

	if h.Cache != nil {
		if err := h.Cache.Set(ctx, jobsCacheKey, b, h.cacheTTL()); err != nil {
			log.Printf("level=warn msg=\"cache set failed\" request_id=%s err=%v", RequestIDFrom(ctx), err)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	_, _ = w.Write(b)
}

// Records filters one kind with the same parameters the listing URLs use,
// e.g. /api/records?kind=job&q=react&category=white-collar.
func (h APIHandler) Records(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kindStr := q.Get("kind")
	if kindStr == "" {
		kindStr = string(domain.KindJob)
	}
	kind, ok := domain.ParseKind(kindStr)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_kind", "kind must be job, service, freelancer or article")
		return
	}

	crit := querysync.FromValues(q)
	recs, err := h.Source.Records(r.Context(), kind)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "source_failed", err.Error())
		return
	}
	matched := filter.Apply(recs, crit)
	writeJSON(w, RecordsResponse{
		Kind:     kind,
		Criteria: crit,
		Total:    len(recs),
		Count:    len(matched),
		Records:  matched,
	})
}

// DeleteByPath expects /api/records/{id}.
func (h APIHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/records/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	if err := store.DeleteRecord(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_found", "record not found")
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	InvalidateListings(r.Context(), h.Cache)

	reqID := RequestIDFrom(r.Context())
	if h.Hub != nil {
		h.Hub.Publish(events.MakeEvent(reqID, events.TypeRecordDeleted, 1, map[string]any{"id": id}))
	}
	writeJSON(w, map[string]any{"ok": true, "id": id})
}

// Seed inserts the built-in sample records, or the YAML records in the
// request body when one is sent.
func (h APIHandler) Seed(w http.ResponseWriter, r *http.Request) {
	recs := store.MockRecords()
	if r.ContentLength > 0 {
		parsed, err := store.ParseSeed(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_seed", err.Error())
			return
		}
		recs = parsed
	}

	n, err := store.Seed(r.Context(), h.DB, recs)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "seed_failed", err.Error())
		return
	}
	InvalidateListings(r.Context(), h.Cache)

	reqID := RequestIDFrom(r.Context())
	if h.Hub != nil {
		h.Hub.Publish(events.MakeEvent(reqID, events.TypeRecordsSeeded, 1, map[string]any{"count": n}))
	}
	writeJSON(w, map[string]any{"ok": true, "count": n})
}
