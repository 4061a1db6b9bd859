package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docsearch/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs and
// the whole file becomes the tree's intro.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := newSectionBuilder()
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			b.paragraph(current.String())
			current.Reset()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	b.paragraph(current.String())

	tree := b.tree()
	tree.Title = stem(filename)
	return tree, nil
}
