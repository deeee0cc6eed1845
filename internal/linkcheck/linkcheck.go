// Package linkcheck classifies page links against the files of a site.
package linkcheck

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/phobologic/sitepatch/internal/model"
)

const indexFile = "index.html"

// Checker resolves links relative to a site root. Filesystem lookups are
// cached, so a Checker is meant for a single run. It is safe for concurrent use.
type Checker struct {
	root string

	mu    sync.Mutex
	stats map[string]fileKind
}

type fileKind int

const (
	kindMissing fileKind = iota
	kindFile
	kindDir
)

// New creates a Checker for the site at root.
func New(root string) *Checker {
	return &Checker{root: root, stats: make(map[string]fileKind)}
}

// Classify returns the status of a link found in the page at pagePath
// (relative to the root).
func (c *Checker) Classify(pagePath, value string) model.LinkStatus {
	if IsExternal(value) {
		return model.StatusExternal
	}
	if strings.HasPrefix(value, "/") {
		return model.StatusAbsolute
	}

	target := stripQueryAndFragment(value)
	if target == "" {
		return model.StatusExternal
	}

	dir := path.Dir(filepath.ToSlash(pagePath))
	resolved := path.Clean(path.Join(dir, target))
	if resolved == ".." || strings.HasPrefix(resolved, "../") {
		return model.StatusBroken
	}

	if strings.HasSuffix(target, "/") {
		return c.status(path.Join(resolved, indexFile))
	}

	switch c.lookup(resolved) {
	case kindFile:
		return model.StatusOK
	case kindDir:
		return c.status(path.Join(resolved, indexFile))
	}

	// Clean URLs: "about" served from about.html.
	if path.Ext(resolved) == "" {
		return c.status(resolved + ".html")
	}
	return model.StatusBroken
}

// IsExternal reports whether value points outside the site or nowhere at all:
// empty, fragment-only, scheme-qualified or protocol-relative.
func IsExternal(value string) bool {
	switch {
	case value == "":
		return true
	case strings.HasPrefix(value, "#"):
		return true
	case strings.HasPrefix(value, "//"):
		return true
	}
	colon := strings.IndexByte(value, ':')
	if colon <= 0 {
		return false
	}
	// A colon after the first slash, query or fragment belongs to the path.
	if i := strings.IndexAny(value, "/?#"); i >= 0 && i < colon {
		return false
	}
	return true
}

func stripQueryAndFragment(value string) string {
	if i := strings.IndexAny(value, "?#"); i >= 0 {
		return value[:i]
	}
	return value
}

func (c *Checker) status(rel string) model.LinkStatus {
	if c.lookup(rel) == kindFile {
		return model.StatusOK
	}
	return model.StatusBroken
}

func (c *Checker) lookup(rel string) fileKind {
	c.mu.Lock()
	defer c.mu.Unlock()

	if k, ok := c.stats[rel]; ok {
		return k
	}

	k := kindMissing
	if fi, err := os.Stat(filepath.Join(c.root, filepath.FromSlash(rel))); err == nil {
		if fi.IsDir() {
			k = kindDir
		} else {
			k = kindFile
		}
	}
	c.stats[rel] = k
	return k
}
