package widget

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Nodes builds the list items that replace the results container's content.
// Query and result text only ever become text nodes or attribute values, so
// markup in either is escaped on render.
func Nodes(results []Result, query string) []*html.Node {
	if len(results) == 0 {
		li := element(atom.Li)
		li.AppendChild(text(fmt.Sprintf("No results found for \"%s\"", query)))
		return []*html.Node{li}
	}

	nodes := make([]*html.Node, 0, len(results))
	for _, r := range results {
		a := element(atom.A)
		a.Attr = []html.Attribute{{Key: "href", Val: r.URL}}
		a.AppendChild(text(r.Title))

		li := element(atom.Li)
		li.AppendChild(a)
		nodes = append(nodes, li)
	}
	return nodes
}

// Render writes the results as an HTML fragment.
func Render(w io.Writer, results []Result, query string) error {
	for _, n := range Nodes(results, query) {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
