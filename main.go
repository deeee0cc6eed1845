// sitepatch rewrites the links of a static site so every page works from its
// own directory depth.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"github.com/phobologic/sitepatch/internal/config"
	"github.com/phobologic/sitepatch/internal/discover"
	"github.com/phobologic/sitepatch/internal/logging"
	"github.com/phobologic/sitepatch/internal/model"
	"github.com/phobologic/sitepatch/internal/rewrite"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "check":
			return runCheck(args[1:], stdout, stderr)
		case "header":
			return runHeader(args[1:], stdout, stderr)
		}
	}

	fs := flag.NewFlagSet("sitepatch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		site        siteOptions
		dryRun      bool
		showVersion bool
	)

	site.register(fs)
	fs.BoolVar(&dryRun, "dry-run", false, "report which pages would change without writing them")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: sitepatch [flags] [site-root]
       sitepatch check [flags] [site-root]
       sitepatch header [flags]

Rewrite root-relative links in every HTML page under site-root (default ".")
to links relative to the page, collapse links to per-city service pages to
the service index, and add the premium stylesheet where it is missing.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "sitepatch %s\n", version)
		return nil
	}

	root, cfg, err := site.open(fs, stderr)
	if err != nil {
		return err
	}

	pages, err := site.discover(root, cfg)
	if err != nil {
		return err
	}

	if dryRun {
		log.Info("running in dry-run mode, no pages will be written")
	}

	_, _ = fmt.Fprintf(stdout, "Found %d HTML files\n", len(pages))

	sum := patchPages(root, pages, rewrite.New(cfg), dryRun, stdout)

	log.WithFields(log.Fields{
		"changed":   sum.changed,
		"unchanged": sum.unchanged,
		"failed":    sum.failed,
	}).Info("patch complete")

	_, _ = fmt.Fprintln(stdout, "\nDone!")
	return nil
}

// siteOptions are the flags shared by the patch and check commands.
type siteOptions struct {
	configPath string
	gitignore  bool
	logLevel   string
	logFormat  string
}

func (o *siteOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "config file (default <site-root>/"+config.FileName+" if present)")
	fs.BoolVar(&o.gitignore, "gitignore", false, "also skip paths matched by <site-root>/.gitignore")
	fs.StringVar(&o.logLevel, "log-level", "warn", "diagnostic log level: debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "text", "diagnostic log format: text, json")
}

// open configures logging, resolves the site root from the first positional
// argument and loads the config.
func (o *siteOptions) open(fs *flag.FlagSet, stderr io.Writer) (string, config.Config, error) {
	if err := logging.Setup(stderr, o.logLevel, o.logFormat); err != nil {
		return "", config.Config{}, err
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return "", config.Config{}, fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", config.Config{}, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return "", config.Config{}, fmt.Errorf("%s: not a directory", root)
	}

	cfg, err := config.Load(root, o.configPath)
	if err != nil {
		return "", config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	log.WithFields(log.Fields{
		"root":     root,
		"services": len(cfg.Services),
		"exclude":  cfg.Exclude,
	}).Debug("config loaded")

	return root, cfg, nil
}

func (o *siteOptions) discover(root string, cfg config.Config) ([]model.Page, error) {
	pages, err := discover.Pages(root, discover.Options{
		Extension: cfg.Extension,
		Exclude:   cfg.Exclude,
		Gitignore: o.gitignore,
	})
	if err != nil {
		return nil, fmt.Errorf("discovering pages: %w", err)
	}
	return pages, nil
}

type patchSummary struct {
	changed   int
	unchanged int
	failed    int
}

// patchPages rewrites each page in order. A page that cannot be read or
// written is reported and skipped; it never stops the run.
func patchPages(root string, pages []model.Page, rw *rewrite.Rewriter, dryRun bool, stdout io.Writer) patchSummary {
	var sum patchSummary

	for _, p := range pages {
		path := filepath.Join(root, p.Path)
		_, _ = fmt.Fprintf(stdout, "Processing: %s\n", path)

		changed, err := patchFile(path, p.Depth, rw, dryRun)
		if err != nil {
			sum.failed++
			verb := "reading"
			if model.IsKind(err, model.KindWrite) {
				verb = "writing"
			}
			cause := err
			var oe *model.OpError
			if errors.As(err, &oe) && oe.Err != nil {
				cause = oe.Err
			}
			_, _ = fmt.Fprintf(stdout, "  Error %s: %v\n", verb, cause)
			log.WithError(err).Debug("page skipped")
			continue
		}

		if changed {
			sum.changed++
		} else {
			sum.unchanged++
		}

		switch {
		case !dryRun:
			_, _ = fmt.Fprintln(stdout, "  Updated successfully")
		case changed:
			_, _ = fmt.Fprintln(stdout, "  Would update")
		default:
			_, _ = fmt.Fprintln(stdout, "  No changes")
		}
	}

	return sum
}

// patchFile reads, rewrites and (unless dryRun) writes back a single page.
// The page is written even when nothing changed. Content that is not valid
// UTF-8 is a read failure and the page is left untouched.
func patchFile(path string, depth int, rw *rewrite.Rewriter, dryRun bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, &model.OpError{Op: "patch.read", Kind: model.KindRead, Path: path, Err: err}
	}

	if !utf8.Valid(data) {
		return false, &model.OpError{Op: "patch.read", Kind: model.KindRead, Path: path, Err: errNotUTF8}
	}

	raw := string(data)
	content := normalizeNewlines(raw)
	updated := rw.Apply(content, depth)

	if !rw.HasStylesheet(content) && !rw.HasAnchor(content) {
		log.WithField("path", path).Debug("stylesheet anchor not found, stylesheet not added")
	}

	if dryRun {
		return updated != raw, nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return false, &model.OpError{Op: "patch.write", Kind: model.KindWrite, Path: path, Err: err}
	}
	return updated != raw, nil
}

var errNotUTF8 = errors.New("content is not valid UTF-8")

// normalizeNewlines converts CRLF and lone CR line endings to LF, so pages are
// always written back with LF endings.
func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-config": true, "--config": true,
	"-log-level": true, "--log-level": true,
	"-log-format": true, "--log-format": true,
	"-depth": true, "--depth": true,
	"-page": true, "--page": true,
	"-root": true, "--root": true,
	"-w": true, "--w": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
