// Package nav holds the site's shared header and navigation markup.
//
// The template is reference material for hand edits and for the header
// command; the patch pass never inserts it.
package nav

import (
	_ "embed"
	"strings"

	"github.com/phobologic/sitepatch/internal/rewrite"
)

const (
	basePlaceholder   = "{base_path}"
	assetsPlaceholder = "{assets_path}"
)

//go:embed header.html
var headerTemplate string

// Render returns the header with links made relative for a page at depth.
// At depth 0 the home links become "index.html" rather than an empty href.
func Render(depth int) string {
	base, assets := rewrite.Prefixes(depth)
	home := base
	if home == "" {
		home = "index.html"
	}
	r := strings.NewReplacer(
		`href="`+basePlaceholder+`"`, `href="`+home+`"`,
		basePlaceholder, base,
		assetsPlaceholder, assets,
	)
	return strings.TrimRight(r.Replace(headerTemplate), "\n")
}
