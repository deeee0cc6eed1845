// Package parse extracts link attributes from HTML pages using tree-sitter.
package parse

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/sitepatch/internal/markup"
	"github.com/phobologic/sitepatch/internal/model"
)

// LinkAttrs are the attribute names treated as links.
var LinkAttrs = map[string]struct{}{
	"href": {},
	"src":  {},
}

// ExtractLinks parses a page and returns every href/src value in document
// order. filePath is used only for Link.File and should be the site-relative
// path. Returned links carry no Status.
func ExtractLinks(parser *sitter.Parser, query *sitter.Query, source []byte, filePath string) []model.Link {
	if len(source) == 0 {
		return nil
	}

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var links []model.Link

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}

		var nameNode, valueNode *sitter.Node
		for _, c := range match.Captures {
			switch query.CaptureNameForId(c.Index) {
			case "name":
				nameNode = c.Node
			case "value":
				valueNode = c.Node
			}
		}
		if nameNode == nil || valueNode == nil {
			continue
		}

		name := strings.ToLower(markup.NodeText(nameNode, source))
		if _, ok := LinkAttrs[name]; !ok {
			continue
		}

		links = append(links, model.Link{
			File:  filePath,
			Line:  int(valueNode.StartPoint().Row) + 1,
			Attr:  name,
			Value: strings.TrimSpace(markup.NodeText(valueNode, source)),
		})
	}

	return links
}
