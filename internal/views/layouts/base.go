package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"impostor/internal/views"
)

// DatastarScript is the client bundle matching the server SDK's event format
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

const baseStyle = `
body { font-family: system-ui, sans-serif; margin: 0; background: #1d1f2b; color: #f2f2f7; }
.container { max-width: 720px; margin: 0 auto; padding: 1.5rem; }
h1, h2 { margin: 0 0 1rem; }
a { color: #8fb8ff; }
button, .button { background: #5865f2; color: #fff; border: 0; border-radius: 6px; padding: .6rem 1.2rem; font-size: 1rem; cursor: pointer; }
button.secondary { background: #3a3d52; }
input[type=text] { padding: .55rem; border-radius: 6px; border: 1px solid #44475a; background: #282a3a; color: inherit; font-size: 1rem; }
.players { display: flex; gap: 1rem; list-style: none; padding: 0; }
.player { text-align: center; padding: .5rem; border-radius: 8px; }
.player.current { outline: 2px solid #f1c40f; }
.avatar { width: 64px; height: 64px; border-radius: 50%; object-fit: cover; background: #2f3245; }
.transcript { list-style: none; padding: 0; }
.transcript li { padding: .4rem 0; border-bottom: 1px solid #2f3245; }
.role-impostor { color: #ff6b6b; }
.role-innocent { color: #5ee08a; }
.countdown { font-size: 3rem; text-align: center; }
.error { color: #ff6b6b; }
table.scores { width: 100%; border-collapse: collapse; }
table.scores td, table.scores th { padding: .4rem; border-bottom: 1px solid #2f3245; text-align: left; }
`

// Base renders the document shell around the component's children
func Base(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := views.NewHTML(w)
		h.Raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		h.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
		h.Rawf(`<title>%s</title>`, views.Esc(title))
		h.Rawf(`<script type="module" src="%s"></script>`, DatastarScript)
		h.Rawf(`<style>%s</style>`, baseStyle)
		h.Raw(`</head><body><div class="container">`)
		h.Component(ctx, templ.GetChildren(ctx))
		h.Raw(`</div></body></html>`)
		return h.Err()
	})
}
