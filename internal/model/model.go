// Package model defines core data structures for sitepatch.
package model

// LinkStatus classifies an extracted link.
type LinkStatus string

const (
	StatusOK       LinkStatus = "ok"
	StatusAbsolute LinkStatus = "absolute"
	StatusBroken   LinkStatus = "broken"
	StatusExternal LinkStatus = "external"
)

// Page is a discovered HTML file.
type Page struct {
	Path  string // Relative to site root
	Depth int
}

// Link is a single href or src attribute value found in a page.
type Link struct {
	File   string
	Line   int
	Attr   string
	Value  string
	Status LinkStatus
}

// IsIssue reports whether the link needs attention.
func (l Link) IsIssue() bool {
	return l.Status == StatusAbsolute || l.Status == StatusBroken
}

// PageSummary holds per-page link counts for a check report.
type PageSummary struct {
	Path  string
	Depth int
	Links int
}

// Report is the result of checking a site, ready for serialization.
type Report struct {
	Site   string
	Pages  []PageSummary
	Issues []Link
}
