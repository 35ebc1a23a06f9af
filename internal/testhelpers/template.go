package testhelpers

import (
	"bytes"
	"context"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TemplateRenderer renders templ components and runs chained assertions on the markup
type TemplateRenderer struct {
	t    *testing.T
	buf  bytes.Buffer
	html string
}

// NewTemplateRenderer creates a renderer bound to t
func NewTemplateRenderer(t *testing.T) *TemplateRenderer {
	return &TemplateRenderer{t: t}
}

// Render renders the component and keeps its HTML for the following assertions
func (r *TemplateRenderer) Render(component templ.Component) *TemplateRenderer {
	r.t.Helper()
	r.buf.Reset()
	require.NoError(r.t, component.Render(context.Background(), &r.buf), "rendering component")
	r.html = r.buf.String()
	return r
}

// Use asserts on markup produced elsewhere, such as an SSE patch payload
func (r *TemplateRenderer) Use(html string) *TemplateRenderer {
	r.html = html
	return r
}

// GetHTML returns the last rendered HTML
func (r *TemplateRenderer) GetHTML() string {
	return r.html
}

// AssertContains checks the HTML contains substring
func (r *TemplateRenderer) AssertContains(substring string) *TemplateRenderer {
	r.t.Helper()
	assert.Contains(r.t, r.html, substring)
	return r
}

// AssertNotContains checks the HTML does not contain substring
func (r *TemplateRenderer) AssertNotContains(substring string) *TemplateRenderer {
	r.t.Helper()
	assert.NotContains(r.t, r.html, substring)
	return r
}

// AssertMatches checks the HTML matches a regular expression
func (r *TemplateRenderer) AssertMatches(pattern string) *TemplateRenderer {
	r.t.Helper()
	assert.Regexp(r.t, regexp.MustCompile(pattern), r.html)
	return r
}

// AssertInOrder checks that the substrings appear in the given order
func (r *TemplateRenderer) AssertInOrder(substrings ...string) *TemplateRenderer {
	r.t.Helper()
	rest := r.html
	for _, s := range substrings {
		i := strings.Index(rest, s)
		if !assert.GreaterOrEqual(r.t, i, 0, "expected %q after the previous match", s) {
			return r
		}
		rest = rest[i+len(s):]
	}
	return r
}

// AssertHasDatastarAttribute checks for data-<attribute>="value". Values are
// compared after HTML escaping, the way they appear in the markup.
func (r *TemplateRenderer) AssertHasDatastarAttribute(attribute, value string) *TemplateRenderer {
	r.t.Helper()
	assert.Contains(r.t, r.html, `data-`+attribute+`="`+templ.EscapeString(value)+`"`)
	return r
}

// AssertHasElement checks an element with the tag exists
func (r *TemplateRenderer) AssertHasElement(tagName string) *TemplateRenderer {
	r.t.Helper()
	assert.Positive(r.t, r.CountElements(tagName), "expected a <%s> element", tagName)
	return r
}

// AssertHasElementWithID checks an element with the id exists
func (r *TemplateRenderer) AssertHasElementWithID(id string) *TemplateRenderer {
	r.t.Helper()
	assert.Contains(r.t, r.html, `id="`+id+`"`)
	return r
}

// AssertNoElementWithID checks no element carries the id
func (r *TemplateRenderer) AssertNoElementWithID(id string) *TemplateRenderer {
	r.t.Helper()
	assert.NotContains(r.t, r.html, `id="`+id+`"`)
	return r
}

// AssertHasClass checks some element carries the class
func (r *TemplateRenderer) AssertHasClass(className string) *TemplateRenderer {
	r.t.Helper()
	pattern := `class="[^"]*\b` + regexp.QuoteMeta(className) + `\b[^"]*"`
	assert.Regexp(r.t, regexp.MustCompile(pattern), r.html)
	return r
}

// AssertFormAction checks a form posts to action
func (r *TemplateRenderer) AssertFormAction(action string) *TemplateRenderer {
	r.t.Helper()
	pattern := `<form[^>]*action="` + regexp.QuoteMeta(action) + `"`
	assert.Regexp(r.t, regexp.MustCompile(pattern), r.html)
	return r
}

// AssertInputValue checks an input named name carries value
func (r *TemplateRenderer) AssertInputValue(name, value string) *TemplateRenderer {
	r.t.Helper()
	pattern := `<input[^>]*name="` + regexp.QuoteMeta(name) + `"[^>]*value="` + regexp.QuoteMeta(templ.EscapeString(value)) + `"`
	assert.Regexp(r.t, regexp.MustCompile(pattern), r.html)
	return r
}

// CountElements counts the opening tags of an element
func (r *TemplateRenderer) CountElements(tagName string) int {
	return len(regexp.MustCompile(`<`+tagName+`[\s>]`).FindAllString(r.html, -1))
}

// AssertElementCount checks the number of elements with the tag
func (r *TemplateRenderer) AssertElementCount(tagName string, expected int) *TemplateRenderer {
	r.t.Helper()
	assert.Equal(r.t, expected, r.CountElements(tagName), "count of <%s>", tagName)
	return r
}

// AssertNotEmpty checks something was rendered
func (r *TemplateRenderer) AssertNotEmpty() *TemplateRenderer {
	r.t.Helper()
	assert.NotEmpty(r.t, strings.TrimSpace(r.html))
	return r
}

var (
	openTag  = regexp.MustCompile(`<(\w+)(?:\s[^>]*)?>`)
	closeTag = regexp.MustCompile(`</(\w+)>`)
)

var voidElements = []string{
	"area", "base", "br", "col", "embed", "hr", "img", "input",
	"link", "meta", "param", "source", "track", "wbr",
}

// AssertValid checks that every non-void tag is closed. It is a balance
// count, not a parser.
func (r *TemplateRenderer) AssertValid() *TemplateRenderer {
	r.t.Helper()
	counts := make(map[string]int)
	for _, m := range openTag.FindAllStringSubmatch(r.html, -1) {
		if !slices.Contains(voidElements, m[1]) {
			counts[m[1]]++
		}
	}
	for _, m := range closeTag.FindAllStringSubmatch(r.html, -1) {
		counts[m[1]]--
	}
	for tag, n := range counts {
		assert.Zero(r.t, n, "<%s> opened %d more times than closed", tag, n)
	}
	return r
}
