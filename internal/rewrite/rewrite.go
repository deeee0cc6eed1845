// Package rewrite applies sitepatch's textual fixes to page content.
//
// Every transform works on raw text with regular expressions. Nothing here
// understands markup, so text that merely looks like an attribute (inside a
// comment or a script, say) is rewritten the same way as a real one.
package rewrite

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/phobologic/sitepatch/internal/config"
)

const assetsDir = "assets/"

// rootRefRe finds attribute values starting with "/". The "not followed by
// http" rule is checked in code because RE2 has no lookahead.
var rootRefRe = regexp.MustCompile(`(href|src)="/`)

// Depth returns how many directories separate a root-relative path from the
// site root. A file directly in the root has depth 0.
func Depth(rel string) int {
	rel = filepath.ToSlash(filepath.Clean(rel))
	return strings.Count(rel, "/")
}

// Prefixes returns the relative path back to the site root for depth, and the
// same prefix pointing into the assets directory.
func Prefixes(depth int) (base, assets string) {
	if depth > 0 {
		base = strings.Repeat("../", depth)
	}
	return base, base + assetsDir
}

// Rewriter holds the compiled patterns for one configuration. It is safe for
// concurrent use.
type Rewriter struct {
	services   []string
	stylesheet config.Stylesheet
	anchorRe   *regexp.Regexp

	mu        sync.Mutex
	serviceRe map[int][]*regexp.Regexp // by depth, parallel to services
}

// New compiles a Rewriter from cfg.
func New(cfg config.Config) *Rewriter {
	anchor := `<link rel="stylesheet" href="[^"]*` + regexp.QuoteMeta(cfg.Stylesheet.Anchor) + `"[^>]*>`
	return &Rewriter{
		services:   append([]string(nil), cfg.Services...),
		stylesheet: cfg.Stylesheet,
		anchorRe:   regexp.MustCompile(anchor),
		serviceRe:  make(map[int][]*regexp.Regexp),
	}
}

// Apply runs Links then Stylesheet for a page at depth.
func (r *Rewriter) Apply(content string, depth int) string {
	_, assets := Prefixes(depth)
	return r.Stylesheet(r.Links(content, depth), assets)
}

// Links rewrites root-relative references to depth-relative ones, then
// collapses per-city service page links to the service index.
func (r *Rewriter) Links(content string, depth int) string {
	base, _ := Prefixes(depth)
	content = relativize(content, base)

	for i, re := range r.servicePatterns(depth) {
		content = re.ReplaceAllLiteralString(content, fmt.Sprintf(`href="%sservices/%s/"`, base, r.services[i]))
	}
	return content
}

// Stylesheet inserts a link to the configured stylesheet after the first
// anchor stylesheet link, unless the marker already appears in content.
// Content without an anchor is returned unchanged.
func (r *Rewriter) Stylesheet(content, assets string) string {
	if r.HasStylesheet(content) {
		return content
	}
	loc := r.anchorRe.FindStringIndex(content)
	if loc == nil {
		return content
	}
	line := fmt.Sprintf("\n  <link rel=\"stylesheet\" href=\"%s%s\">", assets, r.stylesheet.Href)
	return content[:loc[1]] + line + content[loc[1]:]
}

// HasStylesheet reports whether content already carries the stylesheet marker.
func (r *Rewriter) HasStylesheet(content string) bool {
	return strings.Contains(content, r.stylesheet.Marker)
}

// HasAnchor reports whether content contains the anchor stylesheet link.
func (r *Rewriter) HasAnchor(content string) bool {
	return r.anchorRe.MatchString(content)
}

func relativize(content, base string) string {
	matches := rootRefRe.FindAllStringSubmatchIndex(content, -1)
	if matches == nil {
		return content
	}

	var b strings.Builder
	b.Grow(len(content) + len(matches)*len(base))
	last := 0
	for _, m := range matches {
		end := m[1]
		if strings.HasPrefix(content[end:], "http") {
			continue
		}
		b.WriteString(content[last:m[0]])
		b.WriteString(content[m[2]:m[3]]) // attribute name
		b.WriteString(`="`)
		b.WriteString(base)
		last = end
	}
	b.WriteString(content[last:])
	return b.String()
}

func (r *Rewriter) servicePatterns(depth int) []*regexp.Regexp {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res, ok := r.serviceRe[depth]; ok {
		return res
	}
	base, _ := Prefixes(depth)
	res := make([]*regexp.Regexp, len(r.services))
	for i, s := range r.services {
		res[i] = regexp.MustCompile(`href="` + regexp.QuoteMeta(base) + `services/` + regexp.QuoteMeta(s) + `/[a-z-]+-ma\.html"`)
	}
	r.serviceRe[depth] = res
	return res
}
