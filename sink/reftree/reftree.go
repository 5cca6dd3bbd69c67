// Package reftree is a minimal implementation of sink.Tree, with an
// exported Node type, used to exercise the treebuild package in tests. It is
// deliberately not a DOM: no live collections, no CSSOM hooks, no event
// dispatch. Its node shape is a plain child/parent/sibling structure
// tagged with a node kind, stripped down to exactly what tree
// construction needs.
package reftree

import (
	"strings"

	"github.com/jsimonetti/html5parser/sink"
)

type kind int

const (
	documentKind kind = iota
	elementKind
	textKind
	commentKind
	doctypeKind
)

// Node is the concrete node type behind every sink.Node handle this
// package hands back. The engine never assumes anything about its shape;
// it only ever holds it opaquely.
type Node struct {
	Kind      kind
	Namespace sink.Namespace
	Name      string
	Data      string
	Attrs     []sink.Attribute
	PublicID  string
	SystemID  string
	Missing   sink.DoctypeMissingFlags

	refcount int
	parent   *Node
	children []*Node
}

func (n *Node) Parent() *Node       { return n.parent }
func (n *Node) Children() []*Node   { return n.children }
func (n *Node) IsElement() bool     { return n.Kind == elementKind }
func (n *Node) IsText() bool        { return n.Kind == textKind }
func (n *Node) IsComment() bool     { return n.Kind == commentKind }
func (n *Node) IsDoctype() bool     { return n.Kind == doctypeKind }
func (n *Node) IsDocument() bool    { return n.Kind == documentKind }
func (n *Node) Refcount() int       { return n.refcount }
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// String renders the subtree as an indented outline, used by tests that
// want a human-readable diff of the resulting tree shape.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n *Node) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	switch n.Kind {
	case documentKind:
		b.WriteString("#document\n")
	case elementKind:
		b.WriteString("<" + n.Name + ">\n")
	case textKind:
		b.WriteString("\"" + n.Data + "\"\n")
	case commentKind:
		b.WriteString("<!--" + n.Data + "-->\n")
	case doctypeKind:
		b.WriteString("<!DOCTYPE " + n.Name + ">\n")
	}
	for _, c := range n.children {
		c.write(b, depth+1)
	}
}

// Tree is a sink.Tree backed by Node. The zero value is not usable; call
// New.
type Tree struct {
	Root         *Node
	QuirksMode   sink.QuirksMode
	FormPointers map[*Node]*Node
	Encoding     string
}

// New returns a fresh reference tree rooted at an empty #document node,
// whose Document method returns that node as the parser's root.
func New() *Tree {
	return &Tree{
		Root:         &Node{Kind: documentKind, refcount: 1},
		FormPointers: map[*Node]*Node{},
	}
}

func asNode(n sink.Node) *Node {
	if n == nil {
		return nil
	}
	return n.(*Node)
}

func (t *Tree) CreateComment(data string) (sink.Node, sink.Status) {
	return &Node{Kind: commentKind, Data: data, refcount: 1}, sink.OK
}

func (t *Tree) CreateDoctype(name, publicID, systemID string, missingFlags sink.DoctypeMissingFlags) (sink.Node, sink.Status) {
	return &Node{Kind: doctypeKind, Name: name, PublicID: publicID, SystemID: systemID, Missing: missingFlags, refcount: 1}, sink.OK
}

func (t *Tree) CreateElement(spec sink.ElementSpec) (sink.Node, sink.Status) {
	attrs := make([]sink.Attribute, len(spec.Attributes))
	copy(attrs, spec.Attributes)
	return &Node{Kind: elementKind, Namespace: spec.Namespace, Name: spec.LocalName, Attrs: attrs, refcount: 1}, sink.OK
}

func (t *Tree) CreateText(data string) (sink.Node, sink.Status) {
	return &Node{Kind: textKind, Data: data, refcount: 1}, sink.OK
}

func (t *Tree) Document() (sink.Node, sink.Status) {
	return t.Root, sink.OK
}

func (t *Tree) RefNode(n sink.Node) sink.Status {
	nd := asNode(n)
	if nd == nil {
		return sink.Err
	}
	nd.refcount++
	return sink.OK
}

func (t *Tree) UnrefNode(n sink.Node) sink.Status {
	nd := asNode(n)
	if nd == nil {
		return sink.Err
	}
	nd.refcount--
	return sink.OK
}

func detach(n *Node) {
	if n.parent == nil {
		return
	}
	p := n.parent
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// AppendChild fulfils the text-coalescing contract from the tree data model: if
// the last child of parent is a text node and child is also a text node,
// its data is merged into the existing node instead of appending a
// sibling.
func (t *Tree) AppendChild(parent, child sink.Node) (sink.Node, sink.Status) {
	p, c := asNode(parent), asNode(child)
	if p == nil || c == nil {
		return nil, sink.Err
	}
	if c.Kind == textKind && len(p.children) > 0 {
		if last := p.children[len(p.children)-1]; last.Kind == textKind {
			last.Data += c.Data
			return last, sink.OK
		}
	}
	detach(c)
	c.parent = p
	p.children = append(p.children, c)
	return c, sink.OK
}

func (t *Tree) InsertBefore(parent, child, ref sink.Node) (sink.Node, sink.Status) {
	p, c, r := asNode(parent), asNode(child), asNode(ref)
	if p == nil || c == nil {
		return nil, sink.Err
	}
	if r == nil {
		return t.AppendChild(p, c)
	}
	idx := -1
	for i, sib := range p.children {
		if sib == r {
			idx = i
			break
		}
	}
	if idx == -1 {
		return t.AppendChild(p, c)
	}
	if c.Kind == textKind && idx > 0 {
		if prev := p.children[idx-1]; prev.Kind == textKind {
			prev.Data += c.Data
			return prev, sink.OK
		}
	}
	detach(c)
	c.parent = p
	p.children = append(p.children, nil)
	copy(p.children[idx+1:], p.children[idx:])
	p.children[idx] = c
	return c, sink.OK
}

func (t *Tree) RemoveChild(parent, child sink.Node) sink.Status {
	p, c := asNode(parent), asNode(child)
	if p == nil || c == nil {
		return sink.Err
	}
	detach(c)
	return sink.OK
}

func (t *Tree) CloneNode(n sink.Node, deep bool) (sink.Node, sink.Status) {
	src := asNode(n)
	if src == nil {
		return nil, sink.Err
	}
	clone := &Node{Kind: src.Kind, Namespace: src.Namespace, Name: src.Name, Data: src.Data, PublicID: src.PublicID, SystemID: src.SystemID, refcount: 1}
	clone.Attrs = append(clone.Attrs, src.Attrs...)
	if deep {
		for _, ch := range src.children {
			clonedChild, _ := t.CloneNode(ch, true)
			t.AppendChild(clone, clonedChild)
		}
	}
	return clone, sink.OK
}

func (t *Tree) ReparentChildren(src, dst sink.Node) sink.Status {
	s, d := asNode(src), asNode(dst)
	if s == nil || d == nil {
		return sink.Err
	}
	for _, c := range append([]*Node{}, s.children...) {
		t.AppendChild(d, c)
	}
	return sink.OK
}

func (t *Tree) GetParent(n sink.Node, elementOnly bool) (sink.Node, sink.Status) {
	nd := asNode(n)
	if nd == nil || nd.parent == nil {
		return nil, sink.OK
	}
	if elementOnly && nd.parent.Kind != elementKind {
		return nil, sink.OK
	}
	return nd.parent, sink.OK
}

func (t *Tree) HasChildren(n sink.Node) (bool, sink.Status) {
	nd := asNode(n)
	if nd == nil {
		return false, sink.Err
	}
	return len(nd.children) > 0, sink.OK
}

func (t *Tree) FormAssociate(form, node sink.Node) sink.Status {
	f, n := asNode(form), asNode(node)
	if f == nil || n == nil {
		return sink.Err
	}
	t.FormPointers[n] = f
	return sink.OK
}

func (t *Tree) AddAttributes(n sink.Node, attrs []sink.Attribute) sink.Status {
	nd := asNode(n)
	if nd == nil {
		return sink.Err
	}
	existing := map[string]bool{}
	for _, a := range nd.Attrs {
		existing[a.Name] = true
	}
	for _, a := range attrs {
		if !existing[a.Name] {
			nd.Attrs = append(nd.Attrs, a)
			existing[a.Name] = true
		}
	}
	return sink.OK
}

func (t *Tree) SetQuirksMode(mode sink.QuirksMode) sink.Status {
	t.QuirksMode = mode
	return sink.OK
}

func (t *Tree) ChangeEncoding(label string) sink.Status {
	t.Encoding = label
	return sink.OK
}

var _ sink.Tree = (*Tree)(nil)
