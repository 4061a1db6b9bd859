package doctree

import "strings"

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (front matter, first heading, or filename)
	Intro    string     // Text that appears before the first heading
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page (0 if N/A)
	Children []*DocNode // Subsections
}

// PlainText flattens the tree into the body text that gets indexed.
// Section headings are included so they stay searchable.
func (t *DocTree) PlainText() string {
	var sb strings.Builder
	write := func(s string) {
		if s == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s)
	}
	write(t.Intro)
	var walk func(nodes []*DocNode)
	walk = func(nodes []*DocNode) {
		for _, n := range nodes {
			write(n.Title)
			write(n.Text)
			walk(n.Children)
		}
	}
	walk(t.Children)
	return sb.String()
}

// FirstHeading returns the title of the first section that has one.
func (t *DocTree) FirstHeading() string {
	var find func(nodes []*DocNode) string
	find = func(nodes []*DocNode) string {
		for _, n := range nodes {
			if n.Title != "" {
				return n.Title
			}
			if h := find(n.Children); h != "" {
				return h
			}
		}
		return ""
	}
	return find(t.Children)
}
