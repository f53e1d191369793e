package view

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"kaamkhojo-engine/internal/domain"
	"kaamkhojo-engine/internal/filter"
)

type PanelProps struct {
	Kind     domain.Kind
	Criteria filter.Criteria
	Query    string
}

// Panel renders one form per control. Each form posts only its own key, so
// editing one filter never resets another.
func Panel(p PanelProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		action := p.Kind.Screen() + "/filter"

		h.raw(`<aside class="filters">`)
		h.raw(`<div class="filters__head"><h2>Filters</h2>`)
		if p.Criteria.HasActive() {
			h.raw(`<form method="post" class="filters__clear"`)
			h.attr("action", action+"/clear")
			h.raw(`>`)
			h.hidden("return", p.Query)
			h.raw(`<button type="submit">Clear All</button></form>`)
		}
		h.raw(`</div>`)

		for _, c := range Controls(p.Kind) {
			writeControl(h, action, p.Query, c, p.Criteria.Get(c.Key))
		}
		h.raw(`</aside>`)
		return h.err
	})
}

func writeControl(h *html, action, query string, c Control, current string) {
	h.raw(`<div class="filter"`)
	h.attr("data-key", string(c.Key))
	h.raw(`>`)

	h.raw(`<form method="post"`)
	h.attr("action", action)
	h.raw(`>`)
	h.hidden("return", query)
	h.hidden("key", string(c.Key))
	h.raw(`<fieldset><legend>`)
	h.text(c.Label)
	h.raw(`</legend>`)

	switch c.Input {
	case InputRadio:
		if current == "" {
			current = filter.All
		}
		for _, o := range c.Options {
			h.raw(`<label><input type="radio" name="value"`)
			h.attr("value", o.Value)
			if o.Value == current {
				h.raw(` checked`)
			}
			h.raw(`> `)
			h.text(o.Label)
			h.raw(`</label>`)
		}
	case InputSelect:
		if current == "" {
			current = filter.All
		}
		h.raw(`<select name="value">`)
		for _, o := range c.Options {
			h.raw(`<option`)
			h.attr("value", o.Value)
			if o.Value == current {
				h.raw(` selected`)
			}
			h.raw(`>`)
			h.text(o.Label)
			h.raw(`</option>`)
		}
		h.raw(`</select>`)
	default:
		h.rawf(`<input type="%s" name="value"`, c.Input)
		h.attr("value", current)
		h.attr("placeholder", c.Placeholder)
		h.raw(`>`)
	}
	h.raw(`<button type="submit">Apply</button></fieldset></form>`)

	// Quick picks get their own forms so the text box value is not sent too.
	if len(c.QuickPicks) > 0 {
		h.raw(`<div class="filter__picks">`)
		for _, v := range c.QuickPicks {
			h.raw(`<form method="post"`)
			h.attr("action", action)
			h.raw(`>`)
			h.hidden("return", query)
			h.hidden("key", string(c.Key))
			h.raw(`<button type="submit" name="value"`)
			h.attr("value", v)
			h.raw(`>`)
			h.text(v)
			h.raw(`</button></form>`)
		}
		h.raw(`</div>`)
	}
	h.raw(`</div>`)
}
