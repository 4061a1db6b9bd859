package builder

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docsearch/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		SourceDir:  t.TempDir(),
		OutputPath: filepath.Join(t.TempDir(), "ui", "search-index.json"),
		Extensions: []string{".md"},
		URLSuffix:  ".html",
	}
}

func TestBuild_IndexesDirectoryNonRecursively(t *testing.T) {
	opts := testOptions(t)
	writeFile(t, opts.SourceDir, "b.md", "# Configuration\n\nEvery server option.\n")
	writeFile(t, opts.SourceDir, "a.md", "# Install Guide\n\nstep one step two\n")
	writeFile(t, opts.SourceDir, "notes.txt", "not a configured extension")
	writeFile(t, opts.SourceDir, "nested/c.md", "# Nested\n\nignored\n")

	report, err := New(opts, quietLogger()).Build()
	require.NoError(t, err)
	assert.Equal(t, 2, report.Indexed)
	assert.Empty(t, report.Skipped)
	assert.NotEmpty(t, report.Fingerprint)

	ix, err := index.LoadFile(opts.OutputPath)
	require.NoError(t, err)
	defer ix.Close()

	recs := ix.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "a.md", recs[0].ID)
	assert.Equal(t, "b.md", recs[1].ID)
	assert.Equal(t, "Install Guide", recs[0].Title)
	assert.Equal(t, "a.html", recs[0].URL)
	assert.Contains(t, recs[0].Text, "step one step two")
	assert.NotContains(t, recs[0].Text, "<p>")

	hits, err := ix.Search("install", 0)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "a.md", hits[0].ID)
}

func TestBuild_MissingSourceDir(t *testing.T) {
	opts := testOptions(t)
	opts.SourceDir = filepath.Join(opts.SourceDir, "does-not-exist")

	_, err := New(opts, quietLogger()).Build()
	require.ErrorIs(t, err, ErrNoSourceDir)

	_, statErr := os.Stat(opts.OutputPath)
	assert.True(t, os.IsNotExist(statErr), "no artifact may be written on fatal errors")
}

func TestBuild_SourceIsAFile(t *testing.T) {
	opts := testOptions(t)
	writeFile(t, opts.SourceDir, "file.md", "# x")
	opts.SourceDir = filepath.Join(opts.SourceDir, "file.md")

	_, err := New(opts, quietLogger()).Build()
	assert.ErrorIs(t, err, ErrNoSourceDir)
}

func TestBuild_SkipsUnparseableDocuments(t *testing.T) {
	opts := testOptions(t)
	writeFile(t, opts.SourceDir, "good.md", "# Good\n\nfine\n")
	writeFile(t, opts.SourceDir, "broken.md", "---\ntitle: [unclosed\n---\nbody\n")

	report, err := New(opts, quietLogger()).Build()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Indexed)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "broken.md", report.Skipped[0].File)
	assert.Contains(t, report.Skipped[0].Reason, "front matter")

	ix, err := index.LoadFile(opts.OutputPath)
	require.NoError(t, err)
	defer ix.Close()
	_, ok := ix.Lookup("broken.md")
	assert.False(t, ok)
}

func TestBuild_EmptyDirectory(t *testing.T) {
	opts := testOptions(t)

	report, err := New(opts, quietLogger()).Build()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Indexed)

	ix, err := index.LoadFile(opts.OutputPath)
	require.NoError(t, err)
	defer ix.Close()
	assert.Equal(t, 0, ix.Len())
}

func TestBuild_Deterministic(t *testing.T) {
	opts := testOptions(t)
	writeFile(t, opts.SourceDir, "a.md", "# Install Guide\n\nstep one\n")
	writeFile(t, opts.SourceDir, "b.md", "# Setup\n\nsetup steps\n")
	b := New(opts, quietLogger())

	_, err := b.Build()
	require.NoError(t, err)
	first, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)

	_, err = b.Build()
	require.NoError(t, err)
	second, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestBuild_OverwritesPreviousArtifact(t *testing.T) {
	opts := testOptions(t)
	writeFile(t, opts.SourceDir, "a.md", "# A\n")
	writeFile(t, filepath.Dir(opts.OutputPath), filepath.Base(opts.OutputPath), "stale garbage")

	_, err := New(opts, quietLogger()).Build()
	require.NoError(t, err)

	ix, err := index.LoadFile(opts.OutputPath)
	require.NoError(t, err)
	defer ix.Close()
	assert.Equal(t, 1, ix.Len())
}

func TestBuild_UnsupportedExtension(t *testing.T) {
	opts := testOptions(t)
	opts.Extensions = []string{".adoc"}

	_, err := New(opts, quietLogger()).Build()
	require.Error(t, err)

	_, statErr := os.Stat(opts.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuild_MixedFormats(t *testing.T) {
	opts := testOptions(t)
	opts.Extensions = []string{"md", "HTML", ".txt"}
	writeFile(t, opts.SourceDir, "guide.md", "# Guide\n")
	writeFile(t, opts.SourceDir, "page.html", "<title>Page Title</title><p>html body</p>")
	writeFile(t, opts.SourceDir, "readme.txt", "plain words")

	report, err := New(opts, quietLogger()).Build()
	require.NoError(t, err)
	assert.Equal(t, 3, report.Indexed)

	ix, err := index.LoadFile(opts.OutputPath)
	require.NoError(t, err)
	defer ix.Close()

	rec, ok := ix.Lookup("page.html")
	require.True(t, ok)
	assert.Equal(t, "Page Title", rec.Title)
	assert.Equal(t, "page.html", rec.URL)
	assert.Equal(t, "html body", rec.Text)
}

func TestRecordURL(t *testing.T) {
	tests := []struct {
		id, prefix, suffix, want string
	}{
		{"install.adoc", "", ".html", "install.html"},
		{"install.md", "/docs/", ".html", "/docs/install.html"},
		{"install.md", "https://example.com/", "/", "https://example.com/install/"},
		{"archive.tar.md", "", "", "archive.tar"},
		{"noext", "", ".html", "noext.html"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RecordURL(tt.id, tt.prefix, tt.suffix), "id=%q", tt.id)
	}
}

func TestOptionsFromConfigFields(t *testing.T) {
	b := New(Options{SourceDir: "x", OutputPath: "y"}, quietLogger())
	assert.Equal(t, index.DefaultFields(), b.opts.Fields)
	assert.Equal(t, []string{".md"}, b.opts.Extensions)
}

func TestWatch_RebuildsOnChange(t *testing.T) {
	opts := testOptions(t)
	writeFile(t, opts.SourceDir, "a.md", "# A\n")
	b := New(opts, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rebuilt := make(chan *Report, 16)
	done := make(chan error, 1)
	go func() {
		done <- b.Watch(ctx, 20*time.Millisecond, func(r *Report, err error) {
			if err == nil {
				rebuilt <- r
			}
		})
	}()

	// The watcher may not be registered yet, so keep touching the file
	// until a rebuild is observed.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	var report *Report
	for report == nil {
		select {
		case report = <-rebuilt:
		case <-tick.C:
			writeFile(t, opts.SourceDir, "b.md", "# Watched Page\n")
		case <-deadline:
			t.Fatal("timed out waiting for rebuild")
		}
	}
	assert.Equal(t, 2, report.Indexed)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
