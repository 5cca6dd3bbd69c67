// Package treebuild implements the tree construction algorithm: the stack of open
// elements, the active formatting element list, the insertion-mode
// dispatch table, and the adoption agency algorithm that together turn
// a token stream into calls against a sink.Tree.
//
// Scope queries and mode dispatch operate over opaque sink.Node handles
// rather than a concrete DOM-node type, so the same logic drives any
// tree implementation behind the sink.Tree contract.
package treebuild

import (
	"github.com/jsimonetti/html5parser/elements"
	"github.com/jsimonetti/html5parser/sink"
)

// entry pairs a stack-resident node with the element name treebuild
// needs for scope queries, since sink.Node is opaque.
type entry struct {
	node      sink.Node
	name      string
	namespace sink.Namespace
}

// stack is the tree construction algorithm's stack of open elements: entry 0 is always the
// <html> element once one exists, and the "current node" is the last
// entry.
type stack struct {
	entries []entry
	tree    sink.Tree
}

// ref and unref call through to the sink's node reference-counting
// protocol; every push acquires a reference and every pop releases it,
// per the tree construction algorithm's node-lifetime invariant. A
// non-OK Status is not treated as fatal here, matching the rest of this
// package's Tree call sites: the stack's own bookkeeping must stay
// consistent with the tree regardless of what the sink reports.
func (s *stack) ref(n sink.Node) {
	if s.tree != nil {
		s.tree.RefNode(n)
	}
}

func (s *stack) unref(n sink.Node) {
	if s.tree != nil {
		s.tree.UnrefNode(n)
	}
}

func (s *stack) push(n sink.Node, name string, ns sink.Namespace) {
	s.ref(n)
	s.entries = append(s.entries, entry{n, name, ns})
}

func (s *stack) pop() entry {
	last := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	s.unref(last.node)
	return last
}

// replaceNodeAt swaps the node held at position i for n, releasing the
// old node's reference and acquiring one on n; used by the adoption
// agency algorithm when a stack entry is cloned in place.
func (s *stack) replaceNodeAt(i int, n sink.Node) {
	s.unref(s.entries[i].node)
	s.ref(n)
	s.entries[i].node = n
}

// insertNodeAt splices a new entry into position i, acquiring a
// reference on n; used by the adoption agency algorithm to reinsert the
// cloned formatting element at its bookmark position.
func (s *stack) insertNodeAt(i int, n sink.Node, name string, ns sink.Namespace) {
	s.ref(n)
	s.entries = append(s.entries, entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = entry{n, name, ns}
}

// releaseAll unrefs every entry still on the stack and empties it,
// used when a mid-parse encoding restart discards this stack's view of
// the tree without ever popping through the normal insertion-mode
// handlers.
func (s *stack) releaseAll() {
	for _, e := range s.entries {
		s.unref(e.node)
	}
	s.entries = nil
}

func (s *stack) top() entry { return s.entries[len(s.entries)-1] }

func (s *stack) empty() bool { return len(s.entries) == 0 }

func (s *stack) len() int { return len(s.entries) }

func (s *stack) at(i int) entry { return s.entries[i] }

// contains reports whether node is anywhere on the stack.
func (s *stack) contains(n sink.Node) bool {
	for _, e := range s.entries {
		if e.node == n {
			return true
		}
	}
	return false
}

// containsName reports whether an element with name is anywhere on the
// stack, used by tree construction's "the stack of open elements has an
// X element" checks.
func (s *stack) containsName(name string) bool {
	for _, e := range s.entries {
		if e.name == name {
			return true
		}
	}
	return false
}

// removeNode removes the first stack entry referencing n, used by the
// adoption agency algorithm and by end-tag handling for elements not at
// the top of the stack.
func (s *stack) removeNode(n sink.Node) {
	for i, e := range s.entries {
		if e.node == n {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.unref(n)
			return
		}
	}
}

// indexOf returns the stack position of n, or -1.
func (s *stack) indexOf(n sink.Node) int {
	for i, e := range s.entries {
		if e.node == n {
			return i
		}
	}
	return -1
}

// popUntil pops elements (inclusive) until one named name has been
// popped, per the many "pop elements from the stack of open elements
// until an X element has been popped" steps.
func (s *stack) popUntil(names ...string) {
	for !s.empty() {
		e := s.pop()
		for _, n := range names {
			if e.name == n {
				return
			}
		}
	}
}

// popUntilNode pops elements (inclusive) until n has been popped.
func (s *stack) popUntilNode(n sink.Node) {
	for !s.empty() {
		e := s.pop()
		if e.node == n {
			return
		}
	}
}

// defaultScopeStop is the tree construction algorithm's boundary set for the plain "has an
// element in scope" query, grounded in Hubbub's element-type.h Scoping
// flag group.
func defaultScopeStop(name string, ns sink.Namespace) bool {
	if ns != sink.HTML {
		_, f := elements.Lookup(name, ns)
		return f.Scoping && (ns == sink.MathML || ns == sink.SVG)
	}
	_, f := elements.Lookup(name, ns)
	return f.Scoping
}

// hasInScope walks down from the current node looking for target,
// stopping at the first scope-boundary element (exclusive of target
// itself), per the tree construction algorithm.
func (s *stack) hasInScope(target string, stop func(name string, ns sink.Namespace) bool) bool {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.name == target {
			return true
		}
		if stop(e.name, e.namespace) {
			return false
		}
	}
	return false
}

func (s *stack) hasInScopeNode(target sink.Node, stop func(name string, ns sink.Namespace) bool) bool {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.node == target {
			return true
		}
		if stop(e.name, e.namespace) {
			return false
		}
	}
	return false
}

// HasElementInScope implements the default scope.
func (s *stack) HasElementInScope(name string) bool {
	return s.hasInScope(name, defaultScopeStop)
}

// HasElementInButtonScope adds "button" to the boundary set.
func (s *stack) HasElementInButtonScope(name string) bool {
	return s.hasInScope(name, func(n string, ns sink.Namespace) bool {
		return n == "button" || defaultScopeStop(n, ns)
	})
}

// HasElementInListItemScope adds "ol"/"ul".
func (s *stack) HasElementInListItemScope(name string) bool {
	return s.hasInScope(name, func(n string, ns sink.Namespace) bool {
		return n == "ol" || n == "ul" || defaultScopeStop(n, ns)
	})
}

// HasElementInTableScope narrows the boundary set to
// html/table/template.
func (s *stack) HasElementInTableScope(name string) bool {
	return s.hasInScope(name, func(n string, ns sink.Namespace) bool {
		return n == "html" || n == "table" || n == "template"
	})
}

// HasElementInSelectScope is the inverted "everything but optgroup/
// option" scope used by </select> handling.
func (s *stack) HasElementInSelectScope(name string) bool {
	return s.hasInScope(name, func(n string, ns sink.Namespace) bool {
		return n != "optgroup" && n != "option"
	})
}

// HasNumberedHeaderInScope reports whether any of h1-h6 is in scope,
// used by the "have a heading element in scope" family of checks.
func (s *stack) HasNumberedHeaderInScope() bool {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		switch e.name {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			return true
		}
		if defaultScopeStop(e.name, e.namespace) {
			return false
		}
	}
	return false
}

// generateImpliedEndTags pops elements matching the implied-end-tags
// set, per the tree construction algorithm, optionally excluding one name.
func (s *stack) generateImpliedEndTags(except string) []string {
	implied := map[string]bool{
		"dd": true, "dt": true, "li": true, "optgroup": true, "option": true,
		"p": true, "rb": true, "rp": true, "rt": true, "rtc": true,
	}
	var popped []string
	for !s.empty() {
		top := s.top()
		if top.name == except || !implied[top.name] {
			break
		}
		popped = append(popped, s.pop().name)
	}
	return popped
}
