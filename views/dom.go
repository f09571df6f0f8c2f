// Package views builds the catalog page as an x/net/html node tree.
// Renderers are pure functions of data; the page package owns the live document.
// File: views/dom.go
package views

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	_ "embed"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ------------------- construction -------------------

// Attr is a name/value pair for El.
type Attr struct{ Key, Val string }

// A is shorthand for an attribute.
func A(key, val string) Attr { return Attr{Key: key, Val: val} }

// El creates an element with attributes and children. Children may be *html.Node,
// string (text) or nil (skipped).
func El(tag string, attrs []Attr, children ...interface{}) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for _, a := range attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range children {
		switch v := c.(type) {
		case nil:
		case *html.Node:
			if v != nil {
				n.AppendChild(v)
			}
		case string:
			n.AppendChild(Text(v))
		default:
			panic(fmt.Sprintf("views.El: unsupported child %T", c))
		}
	}
	return n
}

// Text creates a text node; the renderer escapes it.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// ------------------- queries -------------------

// FindByID returns the first element with the given id, or nil.
func FindByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && GetAttr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindAllByClass returns elements carrying class, in document order.
func FindAllByClass(root *html.Node, class string) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && HasClass(n, class) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindFirstByClass returns the first element carrying class, or nil.
func FindFirstByClass(root *html.Node, class string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && HasClass(n, class) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindFirstByTag returns the first element with the given tag name, or nil.
func FindFirstByTag(root *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

// walk visits nodes depth-first; visit returns false to stop.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

// ------------------- attributes & classes -------------------

func attrIndex(n *html.Node, key string) (int, bool) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return i, true
		}
	}
	return -1, false
}

// GetAttr returns the attribute value or "".
func GetAttr(n *html.Node, key string) string {
	if i, ok := attrIndex(n, key); ok {
		return n.Attr[i].Val
	}
	return ""
}

// SetAttr sets or adds an attribute.
func SetAttr(n *html.Node, key, val string) {
	if i, ok := attrIndex(n, key); ok {
		n.Attr[i].Val = val
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	if i, ok := attrIndex(n, key); ok {
		n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
	}
}

// Classes returns the class list.
func Classes(n *html.Node) []string {
	return strings.Fields(GetAttr(n, "class"))
}

// HasClass reports whether n carries class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds class once.
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	SetAttr(n, "class", strings.TrimSpace(GetAttr(n, "class")+" "+class))
}

// RemoveClass drops every occurrence of class.
func RemoveClass(n *html.Node, class string) {
	cs := Classes(n)
	kept := cs[:0]
	for _, c := range cs {
		if c != class {
			kept = append(kept, c)
		}
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// ToggleClass flips class and reports whether it is now present.
func ToggleClass(n *html.Node, class string) bool {
	if HasClass(n, class) {
		RemoveClass(n, class)
		return false
	}
	AddClass(n, class)
	return true
}

// ------------------- content -------------------

// ClearChildren removes every child of n.
func ClearChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// SetChildren replaces n's children.
func SetChildren(n *html.Node, children ...*html.Node) {
	ClearChildren(n)
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
}

// SetText replaces n's children with a single text node.
func SetText(n *html.Node, s string) {
	SetChildren(n, Text(s))
}

// TextContent concatenates the text beneath n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// ElementChildren lists n's element children.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// ------------------- rendering & parsing -------------------

// Render writes n as HTML.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// RenderString renders n to a string.
func RenderString(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

//go:embed skeleton.html
var defaultSkeleton []byte

// ParseSkeleton parses the page markup. An empty path uses the embedded skeleton.
func ParseSkeleton(path string) (*html.Node, error) {
	src := defaultSkeleton
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read skeleton: %w", err)
		}
		src = data
	}
	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse skeleton: %w", err)
	}
	return doc, nil
}

// CloneTree deep-copies n.
func CloneTree(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(CloneTree(ch))
	}
	return c
}
