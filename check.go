package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/sitepatch/internal/linkcheck"
	"github.com/phobologic/sitepatch/internal/markup"
	"github.com/phobologic/sitepatch/internal/model"
	"github.com/phobologic/sitepatch/internal/parse"
	"github.com/phobologic/sitepatch/internal/toon"
)

// runCheck implements `sitepatch check`, which reports root-relative and
// broken internal links without modifying any page.
func runCheck(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sitepatch check", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var site siteOptions
	site.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: sitepatch check [flags] [site-root]

Parse every HTML page under site-root and report links that are still
root-relative ("absolute") or point at files that do not exist ("broken").
External links, fragments and mailto:/tel: links are ignored. Exits non-zero
when any issue is found.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	root, cfg, err := site.open(fs, stderr)
	if err != nil {
		return err
	}

	pages, err := site.discover(root, cfg)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no HTML files found")
	}

	query, err := markup.LinkQuery()
	if err != nil {
		return fmt.Errorf("loading link query: %w", err)
	}

	links := extractLinksConcurrent(root, pages, query, stderr)
	report := buildReport(filepath.Base(root), pages, links, linkcheck.New(root))

	_, _ = fmt.Fprintln(stdout, toon.Encode(report))

	if n := len(report.Issues); n > 0 {
		return fmt.Errorf("%d link issues found", n)
	}
	return nil
}

// buildReport classifies every link and keeps the issues. links is parallel
// to pages; a nil entry means the page could not be read.
func buildReport(site string, pages []model.Page, links [][]model.Link, checker *linkcheck.Checker) *model.Report {
	r := &model.Report{Site: site}

	for i, p := range pages {
		if links[i] == nil {
			r.Pages = append(r.Pages, model.PageSummary{Path: p.Path, Depth: p.Depth})
			continue
		}
		r.Pages = append(r.Pages, model.PageSummary{Path: p.Path, Depth: p.Depth, Links: len(links[i])})

		for _, l := range links[i] {
			l.Status = checker.Classify(p.Path, l.Value)
			if l.IsIssue() {
				r.Issues = append(r.Issues, l)
			}
		}
	}

	log.WithFields(log.Fields{"pages": len(r.Pages), "issues": len(r.Issues)}).Info("check complete")
	return r
}

func extractLinksConcurrent(root string, pages []model.Page, query *sitter.Query, stderr io.Writer) [][]model.Link {
	type result struct {
		index int
		links []model.Link
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(pages) {
		numWorkers = len(pages)
	}

	work := make(chan int, len(pages))
	results := make(chan result, len(pages))

	var wg sync.WaitGroup
	var stderrMu sync.Mutex

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parser
			parser := markup.NewParser()

			for idx := range work {
				p := pages[idx]
				source, err := os.ReadFile(filepath.Join(root, p.Path))
				if err != nil {
					stderrMu.Lock()
					_, _ = fmt.Fprintf(stderr, "Warning: failed to read %s: %v\n", p.Path, err)
					stderrMu.Unlock()
					continue
				}

				links := parse.ExtractLinks(parser, query, source, p.Path)
				if links == nil {
					links = []model.Link{}
				}
				results <- result{index: idx, links: links}
			}
		}()
	}

	for i := range pages {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([][]model.Link, len(pages))
	for r := range results {
		indexed[r.index] = r.links
	}
	return indexed
}
