package view

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads an HTML document.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// Render writes the document rooted at n.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// ByID returns the first element under n whose id attribute is id, or nil.
func ByID(n *html.Node, id string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode {
		if v, ok := Attr(n, "id"); ok && v == id {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := ByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// Attr returns the value of key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key on n, replacing any previous value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr drops key from n.
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// SetDisplay writes an inline display style.
func SetDisplay(n *html.Node, visible bool) {
	if visible {
		SetAttr(n, "style", "display:block")
		return
	}
	SetAttr(n, "style", "display:none")
}

// Visible reports whether n carries no display:none inline style.
func Visible(n *html.Node) bool {
	style, _ := Attr(n, "style")
	return !strings.Contains(strings.ReplaceAll(style, " ", ""), "display:none")
}

// Clear removes every child of n.
func Clear(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, text string) {
	Clear(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Text concatenates the text nodes under n.
func Text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// NewElement builds a detached element.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// Children returns the element children of n named tag.
func Children(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
		}
	}
	return out
}
