package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
)

type Config struct {
	Port string

	// Index builder
	SourceDir  string
	OutputPath string
	Extensions []string

	// Record URLs are URLPrefix + page name + URLSuffix.
	URLPrefix string
	URLSuffix string

	// Field weights shared by builder and widget
	TitleBoost float64
	TextBoost  float64

	// Search widget
	IndexURL    string
	ResultLimit int

	// Watch mode
	WatchDelay time.Duration

	// PDF
	PDFFallbackPdftotext bool

	LogLevel string
}

// fileConfig mirrors Config for the optional TOML file. Values found there
// become the fallbacks for the environment lookups in Load.
type fileConfig struct {
	Port                 string   `toml:"port"`
	SourceDir            string   `toml:"source_dir"`
	Output               string   `toml:"output"`
	Extensions           []string `toml:"extensions"`
	URLPrefix            string   `toml:"url_prefix"`
	URLSuffix            string   `toml:"url_suffix"`
	TitleBoost           float64  `toml:"title_boost"`
	TextBoost            float64  `toml:"text_boost"`
	IndexURL             string   `toml:"index_url"`
	ResultLimit          int      `toml:"result_limit"`
	WatchDelay           string   `toml:"watch_delay"`
	PDFFallbackPdftotext bool     `toml:"pdf_fallback_pdftotext"`
	LogLevel             string   `toml:"log_level"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Port:                 "8090",
		SourceDir:            "docs/modules/ROOT/pages",
		Output:               "ui/search-index.json",
		Extensions:           []string{".md"},
		URLSuffix:            ".html",
		TitleBoost:           10,
		TextBoost:            1,
		WatchDelay:           "500ms",
		PDFFallbackPdftotext: true,
		LogLevel:             "info",
	}
}

// Load reads configuration from the TOML file at path (or $DOCSEARCH_CONFIG
// when path is empty), then applies environment overrides. A missing path
// means defaults plus environment only.
func Load(path string) (Config, error) {
	fc := defaultFileConfig()
	if path == "" {
		path = os.Getenv("DOCSEARCH_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	watchDelay, err := time.ParseDuration(fc.WatchDelay)
	if err != nil {
		watchDelay = 500 * time.Millisecond
	}

	cfg := Config{
		Port: envOr("PORT", fc.Port),

		SourceDir:  envOr("DOCSEARCH_SOURCE_DIR", fc.SourceDir),
		OutputPath: envOr("DOCSEARCH_OUTPUT", fc.Output),
		Extensions: envList("DOCSEARCH_EXTENSIONS", fc.Extensions),

		URLPrefix: envOr("DOCSEARCH_URL_PREFIX", fc.URLPrefix),
		URLSuffix: envOr("DOCSEARCH_URL_SUFFIX", fc.URLSuffix),

		TitleBoost: envFloat("DOCSEARCH_TITLE_BOOST", fc.TitleBoost),
		TextBoost:  envFloat("DOCSEARCH_TEXT_BOOST", fc.TextBoost),

		IndexURL:    envOr("DOCSEARCH_INDEX_URL", fc.IndexURL),
		ResultLimit: envInt("DOCSEARCH_RESULT_LIMIT", fc.ResultLimit),

		WatchDelay: envDuration("DOCSEARCH_WATCH_DELAY", watchDelay),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", fc.PDFFallbackPdftotext),

		LogLevel: envOr("LOG_LEVEL", fc.LogLevel),
	}

	cfg.Extensions = NormalizeExtensions(cfg.Extensions)
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".md"}
	}
	if cfg.TitleBoost <= 0 {
		cfg.TitleBoost = 10
	}
	if cfg.TextBoost <= 0 {
		cfg.TextBoost = 1
	}
	if cfg.ResultLimit < 0 {
		cfg.ResultLimit = 0
	}
	if cfg.WatchDelay <= 0 {
		cfg.WatchDelay = 500 * time.Millisecond
	}
	if cfg.IndexURL == "" {
		cfg.IndexURL = cfg.OutputPath
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("DOCSEARCH_SOURCE_DIR is required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("DOCSEARCH_OUTPUT is required")
	}
	if c.IndexURL == "" {
		return fmt.Errorf("DOCSEARCH_INDEX_URL is required")
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NormalizeExtensions lowercases extensions, adds a missing leading dot and
// drops blanks and duplicates while keeping order.
func NormalizeExtensions(exts []string) []string {
	out := lo.Map(exts, func(e string, _ int) string {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		return e
	})
	return lo.Uniq(lo.Filter(out, func(e string, _ int) bool { return e != "" }))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated variable.
func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		return strings.Split(v, ",")
	}
	return fallback
}
