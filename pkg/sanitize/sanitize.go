package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips all markup from user supplied free text and trims it. Entities
// are unescaped again so "Tom & Jerry" round-trips unchanged.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// SingleLine is Text with internal whitespace collapsed, used for index
// documents and notification bodies.
func SingleLine(s string) string {
	s = strings.NewReplacer("</p>", " ", "<br>", " ", "<br/>", " ", "</div>", " ").Replace(s)
	return strings.Join(strings.Fields(Text(s)), " ")
}
