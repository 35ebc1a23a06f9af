package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"impostor/internal/views"
	"impostor/internal/views/layouts"
)

// Home is the landing page. resumeCode links back to the visitor's last session when set.
func Home(resumeCode string) templ.Component {
	return page("Impostor", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := views.NewHTML(w)
		h.Raw(`<header><h1>Impostor</h1><p class="tagline">One secret word. Two agents. One of you is lying.</p></header>`)
		h.Raw(`<section class="rules"><p>Everyone but the Impostor gets the secret word. `)
		h.Raw(`Take turns giving one-sentence clues, then vote for who you think is bluffing.</p></section>`)
		h.Raw(`<form method="POST" action="/game/new"><button type="submit">New game</button></form>`)
		if resumeCode != "" {
			h.Rawf(`<p class="resume"><a id="resume" href="/game/%s">Resume game %s</a></p>`,
				views.Esc(resumeCode), views.Esc(resumeCode))
		}
		return h.Err()
	}))
}

// page wraps body in the base layout
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layouts.Base(title).Render(templ.WithChildren(ctx, body), w)
	})
}
