package view

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"kaamkhojo-engine/internal/domain"
)

// Layout is how results are arranged. It is read from the "view" URL
// parameter and never changes which records are shown.
type Layout string

const (
	LayoutGrid Layout = "grid"
	LayoutList Layout = "list"

	LayoutParam = "view"
)

// ParseLayout falls back when s is not a known layout.
func ParseLayout(s string, fallback Layout) Layout {
	switch Layout(s) {
	case LayoutGrid, LayoutList:
		return Layout(s)
	}
	return fallback
}

// Action is a per-record button handed off to whatever handles it.
type Action struct {
	Name  string
	Label string
}

var actions = map[domain.Kind][2]Action{
	domain.KindJob:        {{"apply", "Apply now"}, {"save", "Save"}},
	domain.KindService:    {{"contact", "Contact"}, {"book", "Book"}},
	domain.KindFreelancer: {{"hire", "Hire"}, {"message", "Message"}},
	domain.KindArticle:    {{"read", "Read more"}, {"share", "Share"}},
}

// Actions returns the two actions offered on records of kind k.
func Actions(k domain.Kind) []Action {
	a, ok := actions[k]
	if !ok {
		return nil
	}
	return a[:]
}

func IsAction(k domain.Kind, name string) bool {
	for _, a := range Actions(k) {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Noun is the plural used in counts and empty states.
func Noun(k domain.Kind) string {
	switch k {
	case domain.KindJob:
		return "jobs"
	case domain.KindService:
		return "services"
	case domain.KindFreelancer:
		return "freelancers"
	case domain.KindArticle:
		return "articles"
	}
	return "results"
}

type ResultsProps struct {
	Kind    domain.Kind
	Records []domain.Record
	Layout  Layout
	// Query is the raw query of the current page. Forms send it back so the
	// handler can rebuild the page state.
	Query string
}

func ResultList(p ResultsProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		screen := p.Kind.Screen()
		layout := ParseLayout(string(p.Layout), LayoutGrid)

		if len(p.Records) == 0 {
			h.raw(`<section class="results results--empty" data-count="0">`)
			h.raw(`<div class="empty">`)
			h.rawf(`<p class="empty__title">No %s match your filters.</p>`, templ.EscapeString(Noun(p.Kind)))
			h.raw(`<p class="empty__hint">Try a different keyword or location, or start over.</p>`)
			h.raw(`<form method="post"`)
			h.attr("action", screen+"/filter/clear")
			h.raw(`>`)
			h.hidden("return", p.Query)
			h.raw(`<button type="submit" class="empty__clear">Clear all filters</button></form>`)
			h.raw(`</div></section>`)
			return h.err
		}

		h.rawf(`<section class="results results--%s" data-layout="%s" data-count="%d">`, layout, layout, len(p.Records))
		h.rawf(`<p class="results__count">%d %s</p>`, len(p.Records), templ.EscapeString(Noun(p.Kind)))
		if layout == LayoutList {
			h.raw(`<ol class="results__items">`)
		} else {
			h.raw(`<ul class="results__items">`)
		}
		for _, r := range p.Records {
			if layout == LayoutList {
				writeRow(h, screen, p.Query, r)
			} else {
				writeCard(h, screen, p.Query, r)
			}
		}
		if layout == LayoutList {
			h.raw(`</ol>`)
		} else {
			h.raw(`</ul>`)
		}
		// pagination is not wired yet
		h.raw(`<button type="button" class="results__more" disabled>Load more</button>`)
		h.raw(`</section>`)
		return h.err
	})
}

func writeCard(h *html, screen, query string, r domain.Record) {
	h.raw(`<li class="card"`)
	h.attr("data-id", strconv.FormatInt(r.ID, 10))
	h.raw(`>`)
	h.raw(`<h3 class="card__title">`)
	h.text(r.Title)
	h.raw(`</h3><p class="card__company">`)
	h.text(r.Company)
	h.raw(`</p>`)
	writeMeta(h, r)
	if r.Summary != "" {
		h.raw(`<p class="card__summary">`)
		h.text(r.Summary)
		h.raw(`</p>`)
	}
	if len(r.Skills) > 0 {
		h.raw(`<ul class="card__skills">`)
		for _, s := range r.Skills {
			h.raw(`<li>`)
			h.text(s)
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
	}
	writeActions(h, screen, query, r)
	h.raw(`</li>`)
}

func writeRow(h *html, screen, query string, r domain.Record) {
	h.raw(`<li class="row"`)
	h.attr("data-id", strconv.FormatInt(r.ID, 10))
	h.raw(`>`)
	h.raw(`<span class="row__title">`)
	h.text(r.Title)
	h.raw(`</span> <span class="row__company">`)
	h.text(r.Company)
	h.raw(`</span>`)
	writeMeta(h, r)
	writeActions(h, screen, query, r)
	h.raw(`</li>`)
}

func writeMeta(h *html, r domain.Record) {
	h.raw(`<p class="meta">`)
	for _, f := range []struct{ class, val string }{
		{"meta__location", r.Location},
		{"meta__type", r.Type},
		{"meta__experience", experienceLabel(r.Experience)},
		{"meta__salary", r.Salary},
	} {
		if f.val == "" {
			continue
		}
		h.rawf(`<span class="%s">`, f.class)
		h.text(f.val)
		h.raw(`</span>`)
	}
	h.raw(`</p>`)
}

func writeActions(h *html, screen, query string, r domain.Record) {
	h.raw(`<div class="actions">`)
	for _, a := range Actions(r.Kind) {
		h.raw(`<form method="post"`)
		h.attr("action", fmt.Sprintf("%s/%d/%s", screen, r.ID, a.Name))
		h.raw(`>`)
		h.hidden("return", query)
		h.rawf(`<button type="submit" class="actions__%s">`, a.Name)
		h.text(a.Label)
		h.raw(`</button></form>`)
	}
	h.raw(`</div>`)
}

func experienceLabel(v string) string {
	switch v {
	case "":
		return ""
	case "fresher":
		return "Fresher"
	}
	return v + " yrs"
}
