// File: views/mutator.go
package views

import "golang.org/x/net/html"

// Mutator applies changes to a live document. Direct edits the tree only; the page
// package wraps the same edits and reports each one to the browser.
type Mutator interface {
	SetAttr(n *html.Node, key, val string)
	RemoveAttr(n *html.Node, key string)
	AddClass(n *html.Node, class string)
	RemoveClass(n *html.Node, class string)
	ToggleClass(n *html.Node, class string) bool
	SetText(n *html.Node, s string)
	SetChildren(n *html.Node, children ...*html.Node)
}

// Direct mutates the tree in place.
type Direct struct{}

func (Direct) SetAttr(n *html.Node, key, val string)       { SetAttr(n, key, val) }
func (Direct) RemoveAttr(n *html.Node, key string)         { RemoveAttr(n, key) }
func (Direct) AddClass(n *html.Node, class string)         { AddClass(n, class) }
func (Direct) RemoveClass(n *html.Node, class string)      { RemoveClass(n, class) }
func (Direct) ToggleClass(n *html.Node, class string) bool { return ToggleClass(n, class) }
func (Direct) SetText(n *html.Node, s string)              { SetText(n, s) }
func (Direct) SetChildren(n *html.Node, children ...*html.Node) {
	SetChildren(n, children...)
}
