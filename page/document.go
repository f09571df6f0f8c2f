// File: page/document.go
package page

import (
	"strconv"
	"strings"

	"ctf-catalog/views"
	"golang.org/x/net/html"
)

// Op names a patch operation understood by static/ui.js.
type Op string

const (
	// OpInner replaces the target's children with HTML.
	OpInner Op = "inner"
	// OpText replaces the target's children with a text node.
	OpText Op = "text"
	// OpAttr sets attribute Name to Value.
	OpAttr Op = "attr"
	// OpRemoveAttr removes attribute Name.
	OpRemoveAttr Op = "remove-attr"
	// OpScroll scrolls the target into view.
	OpScroll Op = "scroll"
)

// Patch is one DOM change sent to the browser. Targets are element ids.
type Patch struct {
	Op     Op     `json:"op"`
	Target string `json:"target"`
	HTML   string `json:"html,omitempty"`
	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`
}

const autoIDPrefix = "auto-"

// Document is the live page tree. Every change made through it is applied to the tree and
// queued as a Patch, so the browser copy stays identical to the server copy.
type Document struct {
	root    *html.Node
	nextID  int
	pending []Patch
}

// NewDocument takes ownership of root and gives every element an id.
func NewDocument(root *html.Node) *Document {
	d := &Document{root: root}
	d.assignIDs(root)
	return d
}

// Root is the document node.
func (d *Document) Root() *html.Node { return d.root }

// HTML renders the whole document.
func (d *Document) HTML() string { return views.RenderString(d.root) }

// Pending reports the queued patches without draining them.
func (d *Document) Pending() []Patch { return d.pending }

// Drain returns and clears the queued patches.
func (d *Document) Drain() []Patch {
	out := d.pending
	d.pending = nil
	return out
}

// assignIDs gives an id to every element beneath n that has none.
func (d *Document) assignIDs(n *html.Node) {
	if n.Type == html.ElementNode && views.GetAttr(n, "id") == "" {
		d.nextID++
		views.SetAttr(n, "id", autoIDPrefix+strconv.Itoa(d.nextID))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.assignIDs(c)
	}
}

func (d *Document) emit(p Patch) {
	d.pending = append(d.pending, p)
}

// Scroll queues a scroll-into-view for the element with id.
func (d *Document) Scroll(id string) {
	d.emit(Patch{Op: OpScroll, Target: id})
}

// ------------------- views.Mutator -------------------

func (d *Document) SetAttr(n *html.Node, key, val string) {
	views.SetAttr(n, key, val)
	d.emit(Patch{Op: OpAttr, Target: views.GetAttr(n, "id"), Name: key, Value: val})
}

func (d *Document) RemoveAttr(n *html.Node, key string) {
	views.RemoveAttr(n, key)
	d.emit(Patch{Op: OpRemoveAttr, Target: views.GetAttr(n, "id"), Name: key})
}

func (d *Document) AddClass(n *html.Node, class string) {
	if views.HasClass(n, class) {
		return
	}
	views.AddClass(n, class)
	d.classPatch(n)
}

func (d *Document) RemoveClass(n *html.Node, class string) {
	if !views.HasClass(n, class) {
		return
	}
	views.RemoveClass(n, class)
	d.classPatch(n)
}

func (d *Document) ToggleClass(n *html.Node, class string) bool {
	on := views.ToggleClass(n, class)
	d.classPatch(n)
	return on
}

func (d *Document) classPatch(n *html.Node) {
	d.emit(Patch{Op: OpAttr, Target: views.GetAttr(n, "id"), Name: "class", Value: views.GetAttr(n, "class")})
}

func (d *Document) SetText(n *html.Node, s string) {
	views.SetText(n, s)
	d.emit(Patch{Op: OpText, Target: views.GetAttr(n, "id"), Value: s})
}

// SetChildren ids the new subtree before rendering it, so later patches can address it.
func (d *Document) SetChildren(n *html.Node, children ...*html.Node) {
	var b strings.Builder
	for _, c := range children {
		if c == nil {
			continue
		}
		d.assignIDs(c)
		b.WriteString(views.RenderString(c))
	}
	views.SetChildren(n, children...)
	d.emit(Patch{Op: OpInner, Target: views.GetAttr(n, "id"), HTML: b.String()})
}

var _ views.Mutator = (*Document)(nil)
