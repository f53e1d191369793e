package httpapi

import (
	"log"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"kaamkhojo-engine/internal/domain"
	"kaamkhojo-engine/internal/events"
	"kaamkhojo-engine/internal/filter"
	"kaamkhojo-engine/internal/listing"
	"kaamkhojo-engine/internal/state"
	"kaamkhojo-engine/internal/view"
)

// ListingHandler serves the HTML listing screens. Every GET is one
// navigation; filter edits are form posts answered with 303 to the
// synchronized URL.
type ListingHandler struct {
	Deps
}

func (h ListingHandler) Page(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.KindForScreen(r.URL.Path)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "not_found", "no such screen")
		return
	}

	cfg := h.cfg()
	page, err := listing.Open(r.Context(), h.Source, kind, r.URL.RequestURI(), nil,
		listing.WithDefaultLayout(view.Layout(cfg.Listing.DefaultLayout)),
		listing.WithDebounce(time.Duration(cfg.Listing.DebounceMS)*time.Millisecond),
	)
	if err != nil {
		log.Printf("level=error msg=\"listing load failed\" request_id=%s kind=%s err=%v", RequestIDFrom(r.Context()), kind, err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		_ = view.ErrorPage(kind, "The listing service did not respond. Please try again.").Render(r.Context(), w)
		return
	}
	defer page.Close()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Page(page.Props()).Render(r.Context(), w); err != nil {
		log.Printf("level=warn msg=\"render failed\" request_id=%s err=%v", RequestIDFrom(r.Context()), err)
	}
}

// Post dispatches /{screen}/filter, /{screen}/filter/clear and
// /{screen}/{id}/{action}.
func (h ListingHandler) Post(w http.ResponseWriter, r *http.Request) {
	screen, rest := splitScreen(r.URL.Path)
	kind, ok := domain.KindForScreen(screen)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "not_found", "no such screen")
		return
	}
	if err := r.ParseForm(); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_form", "invalid form body")
		return
	}
	current := screen
	if ret := strings.TrimPrefix(r.PostFormValue("return"), "?"); ret != "" {
		current += "?" + ret
	}

	switch {
	case rest == "filter":
		h.filter(w, r, kind, current)
	case rest == "filter/clear":
		h.edit(w, r, kind, current, func(st *state.Store) { st.Clear() })
	default:
		h.action(w, r, kind, current, rest)
	}
}

func (h ListingHandler) filter(w http.ResponseWriter, r *http.Request, kind domain.Kind, current string) {
	form := r.PostForm

	if form.Has("key") {
		key := filter.Key(form.Get("key"))
		if !slices.Contains(filter.Keys, key) {
			WriteError(w, r, http.StatusBadRequest, "unknown_filter", "unknown filter key")
			return
		}
		value := form.Get("value")
		h.edit(w, r, kind, current, func(st *state.Store) { st.Update(filter.Patch{key: value}) })
		return
	}

	if form.Has("q") || form.Has("location") {
		q, loc := form.Get("q"), form.Get("location")
		h.edit(w, r, kind, current, func(st *state.Store) {
			switch {
			case form.Has("q") && form.Has("location"):
				st.SetSearch(q, loc)
			case form.Has("q"):
				st.Update(filter.Patch{filter.KeyKeyword: q})
			default:
				st.Update(filter.Patch{filter.KeyLocation: loc})
			}
		})
		return
	}

	WriteError(w, r, http.StatusBadRequest, "bad_form", "expected key and value, or q and location")
}

func (h ListingHandler) edit(w http.ResponseWriter, r *http.Request, kind domain.Kind, current string, fn func(*state.Store)) {
	target, err := listing.Edit(r.Context(), kind, current, fn)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "edit_failed", err.Error())
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h ListingHandler) action(w http.ResponseWriter, r *http.Request, kind domain.Kind, current, rest string) {
	idStr, action, ok := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if !ok || err != nil || id <= 0 || !view.IsAction(kind, action) {
		WriteError(w, r, http.StatusNotFound, "not_found", "unknown action")
		return
	}

	actions := h.Actions
	if actions == nil {
		actions = LogActions{}
	}
	if err := actions.Perform(r.Context(), kind, id, action); err != nil {
		WriteError(w, r, http.StatusBadGateway, "action_failed", err.Error())
		return
	}

	if h.Hub != nil {
		reqID := RequestIDFrom(r.Context())
		h.Hub.Publish(events.MakeEvent(reqID, events.TypeRecordAction, 1, map[string]any{
			"kind": kind, "id": id, "action": action,
		}))
	}
	http.Redirect(w, r, current, http.StatusSeeOther)
}

// splitScreen turns /jobs/filter/clear into ("/jobs", "filter/clear").
func splitScreen(p string) (screen, rest string) {
	p = strings.TrimPrefix(p, "/")
	first, rest, _ := strings.Cut(p, "/")
	return "/" + first, strings.Trim(rest, "/")
}

