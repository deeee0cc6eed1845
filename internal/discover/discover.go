// Package discover finds the HTML pages of a site.
package discover

import (
	"os"
	"path/filepath"
	"sort"

	ignore "github.com/sabhiram/go-gitignore"
	log "github.com/sirupsen/logrus"

	"github.com/phobologic/sitepatch/internal/model"
	"github.com/phobologic/sitepatch/internal/rewrite"
)

// Options controls which files Pages returns.
type Options struct {
	Extension string   // Defaults to ".html"
	Exclude   []string // gitignore-syntax patterns matched against root-relative paths
	Gitignore bool     // Also honor <root>/.gitignore
}

// Pages discovers every page under root, sorted by path.
func Pages(root string, opts Options) ([]model.Page, error) {
	ext := opts.Extension
	if ext == "" {
		ext = ".html"
	}

	var matchers []*ignore.GitIgnore
	if len(opts.Exclude) > 0 {
		matchers = append(matchers, ignore.CompileIgnoreLines(opts.Exclude...))
	}
	if opts.Gitignore {
		if gi := loadGitignore(root); gi != nil {
			matchers = append(matchers, gi)
		}
	}

	var results []model.Page

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("skipping unreadable path")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		if filepath.Ext(d.Name()) != ext {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		slashed := filepath.ToSlash(rel)
		for _, m := range matchers {
			if m.MatchesPath(slashed) {
				log.WithField("path", rel).Debug("excluded")
				return nil
			}
		}

		results = append(results, model.Page{Path: rel, Depth: rewrite.Depth(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
