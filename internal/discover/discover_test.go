package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phobologic/sitepatch/internal/model"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func paths(pages []model.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = filepath.ToSlash(p.Path)
	}
	return out
}

func TestPagesSortedWithDepth(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "index.html", "")
	writeFile(t, dir, "services/deep-cleaning/index.html", "")
	writeFile(t, dir, "locations/natick-ma.html", "")
	writeFile(t, dir, "assets/css/main.css", "")
	writeFile(t, dir, "readme.txt", "")

	pages, err := Pages(dir, Options{})
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}

	want := []model.Page{
		{Path: "index.html", Depth: 0},
		{Path: filepath.Join("locations", "natick-ma.html"), Depth: 1},
		{Path: filepath.Join("services", "deep-cleaning", "index.html"), Depth: 2},
	}
	if diff := cmp.Diff(want, pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
}

func TestPagesExcludeBuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "index.html", "")
	writeFile(t, dir, "build/index.html", "")
	writeFile(t, dir, "build/out/about.html", "")
	writeFile(t, dir, "blog/rebuild-your-routine.html", "")
	writeFile(t, dir, "blog/spring-cleaning.html", "")

	pages, err := Pages(dir, Options{Exclude: []string{"*build*"}})
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}

	want := []string{"blog/spring-cleaning.html", "index.html"}
	if diff := cmp.Diff(want, paths(pages)); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestPagesNoExclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "build/index.html", "")

	pages, err := Pages(dir, Options{})
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("expected build page without exclude patterns, got %v", paths(pages))
	}
}

func TestPagesExtensionCaseSensitive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "index.html", "")
	writeFile(t, dir, "LEGACY.HTML", "")
	writeFile(t, dir, "page.htm", "")

	pages, err := Pages(dir, Options{})
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if diff := cmp.Diff([]string{"index.html"}, paths(pages)); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}

	pages, err = Pages(dir, Options{Extension: ".htm"})
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if diff := cmp.Diff([]string{"page.htm"}, paths(pages)); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestPagesGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "drafts/\n")
	writeFile(t, dir, "index.html", "")
	writeFile(t, dir, "drafts/new.html", "")

	pages, err := Pages(dir, Options{})
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 2 {
		t.Errorf("without Gitignore expected 2 pages, got %v", paths(pages))
	}

	pages, err = Pages(dir, Options{Gitignore: true})
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if diff := cmp.Diff([]string{"index.html"}, paths(pages)); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestPagesMissingGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "index.html", "")

	pages, err := Pages(dir, Options{Gitignore: true})
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("expected 1 page, got %v", paths(pages))
	}
}
