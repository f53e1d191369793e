package view

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"kaamkhojo-engine/internal/domain"
	"kaamkhojo-engine/internal/filter"
)

type PageProps struct {
	Kind     domain.Kind
	Criteria filter.Criteria
	Records  []domain.Record
	Layout   Layout
	// URL is the current listing URL (path and query).
	URL   string
	Query string
}

func Title(k domain.Kind) string {
	switch k {
	case domain.KindJob:
		return "Jobs"
	case domain.KindService:
		return "Services"
	case domain.KindFreelancer:
		return "Freelancers"
	case domain.KindArticle:
		return "News"
	}
	return "KaamKhojo"
}

// Page is a full listing screen.
func Page(p PageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		writeHead(h, Title(p.Kind)+" | KaamKhojo")
		writeNav(h, p.Kind)

		h.raw(`<main class="listing"`)
		h.attr("data-kind", string(p.Kind))
		h.raw(`>`)
		h.component(ctx, SearchBar(SearchProps{Kind: p.Kind, Criteria: p.Criteria, Query: p.Query}))

		layout := ParseLayout(string(p.Layout), LayoutGrid)
		h.raw(`<div class="layout-toggle">`)
		for _, l := range []Layout{LayoutGrid, LayoutList} {
			h.raw(`<a`)
			h.attr("href", withParam(p.URL, LayoutParam, string(l)))
			if l == layout {
				h.raw(` aria-current="true"`)
			}
			h.raw(`>`)
			h.text(string(l))
			h.raw(`</a>`)
		}
		h.raw(`</div>`)

		h.component(ctx, Panel(PanelProps{Kind: p.Kind, Criteria: p.Criteria, Query: p.Query}))
		h.component(ctx, ResultList(ResultsProps{Kind: p.Kind, Records: p.Records, Layout: layout, Query: p.Query}))
		h.raw(`</main>`)
		writeFoot(h)
		return h.err
	})
}

type SearchProps struct {
	Kind     domain.Kind
	Criteria filter.Criteria
	Query    string
}

// SearchBar posts keyword and location together.
func SearchBar(p SearchProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<form method="post" class="search"`)
		h.attr("action", p.Kind.Screen()+"/filter")
		h.raw(`>`)
		h.hidden("return", p.Query)
		h.raw(`<input type="search" name="q"`)
		h.attr("value", p.Criteria.Keyword)
		h.attr("placeholder", "Search "+Noun(p.Kind))
		h.raw(`><input type="text" name="location"`)
		h.attr("value", p.Criteria.Location)
		h.raw(` placeholder="Location"><button type="submit">Search</button></form>`)
		return h.err
	})
}

// ErrorPage is shown when the listing could not be loaded.
func ErrorPage(k domain.Kind, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		writeHead(h, "Something went wrong | KaamKhojo")
		writeNav(h, k)
		h.raw(`<main class="error"><h1>We could not load `)
		h.text(Noun(k))
		h.raw(`</h1><p>`)
		h.text(message)
		h.raw(`</p><a`)
		h.attr("href", k.Screen())
		h.raw(`>Try again</a></main>`)
		writeFoot(h)
		return h.err
	})
}

func writeHead(h *html, title string) {
	h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	h.raw(`<title>`)
	h.text(title)
	h.raw(`</title></head><body>`)
}

func writeNav(h *html, active domain.Kind) {
	h.raw(`<nav class="nav"><a href="/jobs" class="nav__brand">KaamKhojo</a>`)
	for _, k := range domain.Kinds {
		h.raw(`<a`)
		h.attr("href", k.Screen())
		if k == active {
			h.raw(` aria-current="page"`)
		}
		h.raw(`>`)
		h.text(Title(k))
		h.raw(`</a>`)
	}
	h.raw(`</nav>`)
}

func writeFoot(h *html) {
	// reload when records change server side
	h.raw(`<script>new EventSource("/events").addEventListener("message",function(e){try{var t=JSON.parse(e.data).type;if(t==="records_seeded"||t==="record_deleted"||t==="records_expired")location.reload()}catch(_){}})</script>`)
	h.raw(`</body></html>`)
}
