package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/docsearch/internal/doctree"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// Raw HTML is rendered so its text is indexed.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, meta.Meta),
	goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
)

var utf8BOM = []byte("\xef\xbb\xbf")

// MarkdownParser renders Markdown to HTML with goldmark and extracts the
// sections and plain text from the rendered HTML. A leading "---" delimited
// YAML block is read as front matter.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	src = bytes.TrimPrefix(src, utf8BOM)

	ctx := gmparser.NewContext()
	var rendered bytes.Buffer
	if err := markdown.Convert(src, &rendered, gmparser.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	fm, err := meta.TryGet(ctx)
	if err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}

	doc, err := html.Parse(&rendered)
	if err != nil {
		return nil, fmt.Errorf("parse rendered markdown: %w", err)
	}

	tree := sectionsFromHTML(doc)
	tree.Title = firstNonEmpty(frontMatterTitle(fm), tree.FirstHeading(), stem(filename))
	return tree, nil
}

func frontMatterTitle(fm map[string]interface{}) string {
	switch t := fm["title"].(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
