package builder

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docsearch/internal/config"
	"github.com/dgallion1/docsearch/internal/index"
	"github.com/dgallion1/docsearch/internal/parser"
	"github.com/samber/lo"
)

// ErrNoSourceDir is returned when the source directory cannot be listed.
var ErrNoSourceDir = errors.New("source directory unavailable")

// Options controls a build.
type Options struct {
	SourceDir  string
	OutputPath string
	Extensions []string

	URLPrefix string
	URLSuffix string

	Fields []index.Field
	Parser parser.Options
}

// OptionsFromConfig maps service configuration onto build options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		SourceDir:  cfg.SourceDir,
		OutputPath: cfg.OutputPath,
		Extensions: cfg.Extensions,
		URLPrefix:  cfg.URLPrefix,
		URLSuffix:  cfg.URLSuffix,
		Fields: []index.Field{
			{Name: index.TitleField, Boost: cfg.TitleBoost},
			{Name: index.TextField, Boost: cfg.TextBoost},
		},
		Parser: parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
	}
}

// Skipped records a source file left out of the index.
type Skipped struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Report summarizes a finished build.
type Report struct {
	SourceDir   string        `json:"source_dir"`
	OutputPath  string        `json:"output_path"`
	Indexed     int           `json:"indexed"`
	Skipped     []Skipped     `json:"skipped"`
	Fingerprint string        `json:"fingerprint"`
	Duration    time.Duration `json:"duration"`
}

// Builder turns a directory of documents into an index artifact.
type Builder struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options, log *slog.Logger) *Builder {
	opts.Extensions = config.NormalizeExtensions(opts.Extensions)
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".md"}
	}
	if len(opts.Fields) == 0 {
		opts.Fields = index.DefaultFields()
	}
	return &Builder{opts: opts, log: log}
}

// Build reads every matching file directly inside the source directory,
// indexes them in name order and writes the artifact. Files that cannot be
// read or parsed are skipped and listed in the report. Nothing is written
// when the directory itself cannot be read.
func (b *Builder) Build() (*Report, error) {
	start := time.Now()
	log := b.log.With("source_dir", b.opts.SourceDir, "output", b.opts.OutputPath)

	for _, ext := range b.opts.Extensions {
		if !parser.IsSupportedExtension("x" + ext) {
			return nil, fmt.Errorf("unsupported document extension: %s", ext)
		}
	}

	files, err := b.sourceFiles()
	if err != nil {
		return nil, err
	}
	log.Info("found documents", "files", len(files))

	report := &Report{
		SourceDir:  b.opts.SourceDir,
		OutputPath: b.opts.OutputPath,
		Skipped:    []Skipped{},
	}

	var records []index.Record
	for _, name := range files {
		rec, err := b.readDocument(name)
		if err != nil {
			log.Warn("skipping document", "file", name, "error", err)
			report.Skipped = append(report.Skipped, Skipped{File: name, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}

	ix, err := index.New(b.opts.Fields)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	defer ix.Close()

	if err := ix.AddAll(records); err != nil {
		return nil, fmt.Errorf("index documents: %w", err)
	}
	if err := index.SaveFile(b.opts.OutputPath, ix); err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}

	report.Indexed = ix.Len()
	report.Fingerprint = ix.Artifact().Fingerprint
	report.Duration = time.Since(start)

	log.Info("build complete",
		"indexed", report.Indexed,
		"skipped", len(report.Skipped),
		"fingerprint", report.Fingerprint[:12],
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// sourceFiles lists regular files with a configured extension, sorted by
// name. Subdirectories are not descended into.
func (b *Builder) sourceFiles() ([]string, error) {
	entries, err := os.ReadDir(b.opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSourceDir, err)
	}

	candidates := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !e.IsDir() && b.wants(e.Name())
	})
	names := lo.Map(candidates, func(e os.DirEntry, _ int) string { return e.Name() })
	return lo.Filter(names, func(name string, _ int) bool {
		info, err := os.Stat(filepath.Join(b.opts.SourceDir, name))
		return err == nil && info.Mode().IsRegular()
	}), nil
}

func (b *Builder) wants(name string) bool {
	return lo.Contains(b.opts.Extensions, strings.ToLower(filepath.Ext(name)))
}

func (b *Builder) readDocument(name string) (index.Record, error) {
	data, err := os.ReadFile(filepath.Join(b.opts.SourceDir, name))
	if err != nil {
		return index.Record{}, fmt.Errorf("read: %w", err)
	}
	return b.Document(name, data)
}

// Document parses one source file into the record that gets indexed.
func (b *Builder) Document(name string, data []byte) (index.Record, error) {
	p, err := parser.ForFile(name, b.opts.Parser)
	if err != nil {
		return index.Record{}, err
	}
	tree, err := p.Parse(bytes.NewReader(data), name)
	if err != nil {
		return index.Record{}, fmt.Errorf("parse: %w", err)
	}
	return index.Record{
		ID:    name,
		Title: tree.Title,
		URL:   RecordURL(name, b.opts.URLPrefix, b.opts.URLSuffix),
		Text:  tree.PlainText(),
	}, nil
}

// RecordURL derives the published page URL of a source file: the file's
// base name without its extension, between prefix and suffix.
func RecordURL(id, prefix, suffix string) string {
	base := path.Base(filepath.ToSlash(id))
	return prefix + strings.TrimSuffix(base, path.Ext(base)) + suffix
}
