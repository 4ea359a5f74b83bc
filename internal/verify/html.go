package verify

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Footer: true, atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true, atom.Hr: true,
	atom.Li: true, atom.Main: true, atom.Nav: true, atom.Ol: true, atom.P: true,
	atom.Section: true, atom.Table: true, atom.Td: true, atom.Th: true, atom.Title: true,
	atom.Tr: true, atom.Ul: true,
}

// visibleText renders the text content of n roughly the way a browser lays it
// out: block elements start new lines, script and style are dropped.
func visibleText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
		}
		block := n.Type == html.ElementNode && blockElements[n.DataAtom]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	walk(n)

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

type matcher func(*html.Node) bool

func byTag(tag atom.Atom) matcher {
	return func(n *html.Node) bool { return n.DataAtom == tag }
}

func byClassContains(fragment string) matcher {
	return func(n *html.Node) bool {
		return strings.Contains(attr(n, "class"), fragment)
	}
}

func byAttr(key, value string) matcher {
	return func(n *html.Node) bool { return attr(n, key) == value }
}

// selectFirst returns the first element, in document order, matched by the
// earliest matcher that matches anything.
func selectFirst(root *html.Node, matchers ...matcher) *html.Node {
	for _, match := range matchers {
		if found := findElement(root, match); found != nil {
			return found
		}
	}
	return nil
}

func findElement(n *html.Node, match matcher) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(visibleText(n)), " ")
}

func parseHTML(raw string) *html.Node {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return &html.Node{Type: html.DocumentNode}
	}
	return doc
}
