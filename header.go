package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/phobologic/sitepatch/internal/nav"
	"github.com/phobologic/sitepatch/internal/rewrite"
)

const (
	sentinelStart = "<!-- sitepatch:header:start -->"
	sentinelEnd   = "<!-- sitepatch:header:end -->"
)

// runHeader implements `sitepatch header`, which prints the shared site header
// rendered for a page depth, or splices it into a page.
func runHeader(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sitepatch header", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		depth  int
		page   string
		root   string
		write  string
		dryRun bool
	)
	fs.IntVar(&depth, "depth", -1, "directory depth of the target page")
	fs.StringVar(&page, "page", "", "site-relative page path to take the depth from")
	fs.StringVar(&root, "root", ".", "site root the -w file is resolved against")
	fs.StringVar(&write, "w", "", "splice the header into this file between sentinel comments")
	fs.BoolVar(&dryRun, "dry-run", false, "with -w, print the updated file instead of writing it")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: sitepatch header [flags]

Print the site header and navigation with links made relative for a page.
The depth comes from -depth, else from -page, else from the -w file's path
relative to -root (default "."), else 0. A -w file outside -root is an error
unless -depth or -page is given.

With -w the header is wrapped in sentinel comments and written into the
file, replacing a previous sentinel block or appending when there is none.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if depth < 0 {
		switch {
		case page != "":
			depth = rewrite.Depth(page)
		case write != "":
			rel, err := siteRelative(root, write)
			if err != nil {
				return err
			}
			depth = rewrite.Depth(rel)
		default:
			depth = 0
		}
	}

	header := nav.Render(depth)

	if write == "" {
		_, _ = fmt.Fprintln(stdout, header)
		return nil
	}

	existing, err := os.ReadFile(write)
	if err != nil {
		return fmt.Errorf("reading %s: %w", write, err)
	}
	updated := applySection(string(existing), sentinelStart+"\n"+header+"\n  "+sentinelEnd)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(write, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", write, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote header (depth %d) to %s\n", depth, write)
	return nil
}

// siteRelative returns path relative to root. Both may be relative to the
// working directory; a path outside root is an error.
func siteRelative(root, path string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside site root %s; pass -root, -page or -depth", path, absRoot)
	}
	return rel, nil
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
