// Package views holds the shared helpers of the server-rendered pages.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// HTML writes markup to w and remembers the first write error so that
// components can emit a page without checking every call.
type HTML struct {
	w   io.Writer
	err error
}

// NewHTML wraps w
func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

// Raw writes s unescaped
func (h *HTML) Raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// Rawf formats unescaped markup. Callers escape dynamic arguments with Esc.
func (h *HTML) Rawf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

// Text writes s escaped for element content
func (h *HTML) Text(s string) {
	h.Raw(templ.EscapeString(s))
}

// Component renders a nested component into the same writer
func (h *HTML) Component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// Err returns the first write error
func (h *HTML) Err() error {
	return h.err
}

// Esc escapes s for use in text or a double-quoted attribute
func Esc(s string) string {
	return templ.EscapeString(s)
}

// AvatarSrc resolves an avatar reference to an image URL. Uploaded avatars are
// stored as data URIs; everything else names a preset under /static/avatars.
func AvatarSrc(avatar string) string {
	if strings.HasPrefix(avatar, "data:") {
		return avatar
	}
	if avatar == "" {
		avatar = "avatar-user"
	}
	return "/static/avatars/" + avatar + ".svg"
}
