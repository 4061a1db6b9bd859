package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var envKeys = []string{
	"DOCSEARCH_CONFIG", "PORT", "DOCSEARCH_SOURCE_DIR", "DOCSEARCH_OUTPUT",
	"DOCSEARCH_EXTENSIONS", "DOCSEARCH_URL_PREFIX", "DOCSEARCH_URL_SUFFIX",
	"DOCSEARCH_TITLE_BOOST", "DOCSEARCH_TEXT_BOOST", "DOCSEARCH_INDEX_URL",
	"DOCSEARCH_RESULT_LIMIT", "DOCSEARCH_WATCH_DELAY", "PDF_FALLBACK_PDFTOTEXT",
	"LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected port %q, got %q", "8090", cfg.Port)
	}
	if cfg.OutputPath != "ui/search-index.json" {
		t.Errorf("expected output %q, got %q", "ui/search-index.json", cfg.OutputPath)
	}
	if cfg.IndexURL != cfg.OutputPath {
		t.Errorf("expected index url to default to output path, got %q", cfg.IndexURL)
	}
	if !reflect.DeepEqual(cfg.Extensions, []string{".md"}) {
		t.Errorf("expected default extensions [.md], got %v", cfg.Extensions)
	}
	if cfg.TitleBoost != 10 || cfg.TextBoost != 1 {
		t.Errorf("expected boosts 10/1, got %v/%v", cfg.TitleBoost, cfg.TextBoost)
	}
	if cfg.URLSuffix != ".html" {
		t.Errorf("expected url suffix %q, got %q", ".html", cfg.URLSuffix)
	}
	if cfg.WatchDelay != 500*time.Millisecond {
		t.Errorf("expected watch delay 500ms, got %v", cfg.WatchDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCSEARCH_SOURCE_DIR", "/srv/pages")
	t.Setenv("DOCSEARCH_EXTENSIONS", "md, HTML,.md")
	t.Setenv("DOCSEARCH_TITLE_BOOST", "4.5")
	t.Setenv("DOCSEARCH_RESULT_LIMIT", "25")
	t.Setenv("DOCSEARCH_WATCH_DELAY", "2s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SourceDir != "/srv/pages" {
		t.Errorf("expected source dir %q, got %q", "/srv/pages", cfg.SourceDir)
	}
	if !reflect.DeepEqual(cfg.Extensions, []string{".md", ".html"}) {
		t.Errorf("expected normalized extensions, got %v", cfg.Extensions)
	}
	if cfg.TitleBoost != 4.5 {
		t.Errorf("expected title boost 4.5, got %v", cfg.TitleBoost)
	}
	if cfg.ResultLimit != 25 {
		t.Errorf("expected result limit 25, got %d", cfg.ResultLimit)
	}
	if cfg.WatchDelay != 2*time.Second {
		t.Errorf("expected watch delay 2s, got %v", cfg.WatchDelay)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "docsearch.toml")
	body := `
source_dir = "content"
output = "public/index.json"
extensions = [".md", ".htm"]
url_prefix = "/docs/"
title_boost = 3.0
watch_delay = "1s"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCSEARCH_OUTPUT", "override.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SourceDir != "content" {
		t.Errorf("expected source dir from file, got %q", cfg.SourceDir)
	}
	if cfg.OutputPath != "override.json" {
		t.Errorf("expected env to override file output, got %q", cfg.OutputPath)
	}
	if cfg.URLPrefix != "/docs/" {
		t.Errorf("expected url prefix from file, got %q", cfg.URLPrefix)
	}
	if cfg.TitleBoost != 3 {
		t.Errorf("expected title boost 3, got %v", cfg.TitleBoost)
	}
	if cfg.WatchDelay != time.Second {
		t.Errorf("expected watch delay 1s, got %v", cfg.WatchDelay)
	}
	// URL suffix was not in the file, so the default survives.
	if cfg.URLSuffix != ".html" {
		t.Errorf("expected default url suffix, got %q", cfg.URLSuffix)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCSEARCH_TITLE_BOOST", "-2")
	t.Setenv("DOCSEARCH_RESULT_LIMIT", "-1")
	t.Setenv("DOCSEARCH_EXTENSIONS", " , ")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TitleBoost != 10 {
		t.Errorf("expected title boost to fall back to 10, got %v", cfg.TitleBoost)
	}
	if cfg.ResultLimit != 0 {
		t.Errorf("expected result limit 0, got %d", cfg.ResultLimit)
	}
	if !reflect.DeepEqual(cfg.Extensions, []string{".md"}) {
		t.Errorf("expected extensions to fall back to [.md], got %v", cfg.Extensions)
	}
}

func TestValidate_RequiresPaths(t *testing.T) {
	cfg := Config{OutputPath: "out.json", IndexURL: "out.json"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty source dir")
	}
	cfg = Config{SourceDir: "docs", IndexURL: "x"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty output path")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		got := Config{LogLevel: tt.in}.SlogLevel()
		if got != tt.want {
			t.Errorf("level %q: expected %v, got %v", tt.in, tt.want, got)
		}
	}
}
