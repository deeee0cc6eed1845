// Package markup wraps the tree-sitter HTML grammar and its embedded link
// query.
package markup

import (
	"embed"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
)

//go:embed queries/*.scm
var queryFS embed.FS

var (
	language = html.GetLanguage()

	queryOnce sync.Once
	query     *sitter.Query
	queryErr  error
)

// NewParser creates a fresh HTML parser.
// Each goroutine must use its own parser (not thread-safe).
func NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(language)
	return p
}

// LinkQuery returns the compiled attribute query (safe to share across goroutines).
func LinkQuery() (*sitter.Query, error) {
	queryOnce.Do(func() {
		data, err := queryFS.ReadFile("queries/links.scm")
		if err != nil {
			queryErr = fmt.Errorf("reading query file: %w", err)
			return
		}
		q, err := sitter.NewQuery(data, language)
		if err != nil {
			queryErr = fmt.Errorf("compiling query: %w", err)
			return
		}
		query = q
	})
	return query, queryErr
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
