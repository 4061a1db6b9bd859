package parser

import (
	"strings"

	"github.com/dgallion1/docsearch/internal/doctree"
)

// sectionBuilder nests text under the most recent heading of a lower level.
// Text seen before any heading becomes the tree's intro.
type sectionBuilder struct {
	root  *doctree.DocNode
	stack []sectionEntry
	text  strings.Builder
}

type sectionEntry struct {
	node  *doctree.DocNode
	level int
}

func newSectionBuilder() *sectionBuilder {
	root := &doctree.DocNode{}
	return &sectionBuilder{
		root:  root,
		stack: []sectionEntry{{node: root, level: 0}},
	}
}

// heading opens a new section at level (1 = top).
func (b *sectionBuilder) heading(level int, title string) {
	b.flush()
	node := &doctree.DocNode{Title: title}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, node)
	b.stack = append(b.stack, sectionEntry{node: node, level: level})
}

// paragraph appends a block of text to the current section.
func (b *sectionBuilder) paragraph(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(t)
}

// page appends a standalone node carrying a page number.
func (b *sectionBuilder) page(n int, t string) {
	b.flush()
	b.root.Children = append(b.root.Children, &doctree.DocNode{Text: t, Page: n})
}

func (b *sectionBuilder) flush() {
	t := strings.TrimSpace(b.text.String())
	b.text.Reset()
	if t == "" {
		return
	}
	top := b.stack[len(b.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// tree finishes the build. The title is left for the caller to decide.
func (b *sectionBuilder) tree() *doctree.DocTree {
	b.flush()
	return &doctree.DocTree{
		Intro:    b.root.Text,
		Children: b.root.Children,
	}
}
