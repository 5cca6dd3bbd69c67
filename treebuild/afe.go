package treebuild

import "github.com/jsimonetti/html5parser/sink"

// afeEntry is either a live formatting element or a marker (Node == nil
// with isMarker set), per the tree construction algorithm's active formatting element list.
type afeEntry struct {
	node      sink.Node
	name      string
	namespace sink.Namespace
	attrs     []sink.Attribute
	isMarker  bool
}

// afeList is the active formatting element list plus the Noah's Ark
// clause bookkeeping, built around opaque sink.Node handles rather than
// a concrete DOM type.
type afeList struct {
	entries []afeEntry
	tree    sink.Tree
}

// ref and unref call through to the sink's node reference-counting
// protocol; every push acquires a reference and every removal (Noah's
// Ark eviction, removeAt, replaceAt, clearToLastMarker) releases it.
func (a *afeList) ref(n sink.Node) {
	if a.tree != nil {
		a.tree.RefNode(n)
	}
}

func (a *afeList) unref(n sink.Node) {
	if a.tree != nil {
		a.tree.UnrefNode(n)
	}
}

func (a *afeList) pushMarker() {
	a.entries = append(a.entries, afeEntry{isMarker: true})
}

// push implements the Noah's Ark clause: if there are already three
// elements after the last marker with the same tag name, namespace, and
// attributes, the earliest is removed before the new one is appended.
func (a *afeList) push(n sink.Node, name string, ns sink.Namespace, attrs []sink.Attribute) {
	matchCount := 0
	firstMatch := -1
	for i := len(a.entries) - 1; i >= 0; i-- {
		e := a.entries[i]
		if e.isMarker {
			break
		}
		if e.name == name && e.namespace == ns && attrsEqual(e.attrs, attrs) {
			matchCount++
			firstMatch = i
			if matchCount == 3 {
				a.unref(a.entries[firstMatch].node)
				a.entries = append(a.entries[:firstMatch], a.entries[firstMatch+1:]...)
				break
			}
		}
	}
	a.ref(n)
	a.entries = append(a.entries, afeEntry{node: n, name: name, namespace: ns, attrs: attrs})
}

func attrsEqual(a, b []sink.Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	seen := map[string]string{}
	for _, at := range a {
		seen[at.Name] = at.Value
	}
	for _, bt := range b {
		v, ok := seen[bt.Name]
		if !ok || v != bt.Value {
			return false
		}
	}
	return true
}

// clearToLastMarker implements "clear the list of active formatting
// elements up to the last marker".
func (a *afeList) clearToLastMarker() {
	for len(a.entries) > 0 {
		last := a.entries[len(a.entries)-1]
		a.entries = a.entries[:len(a.entries)-1]
		if last.isMarker {
			return
		}
		a.unref(last.node)
	}
}

// releaseAll unrefs every non-marker entry and empties the list, used
// when a mid-parse encoding restart discards this list's view of the
// tree without running clearToLastMarker's normal marker-by-marker walk.
func (a *afeList) releaseAll() {
	for _, e := range a.entries {
		if !e.isMarker {
			a.unref(e.node)
		}
	}
	a.entries = nil
}

// indexOfNode returns the position of the entry referencing n, or -1.
func (a *afeList) indexOfNode(n sink.Node) int {
	for i, e := range a.entries {
		if !e.isMarker && e.node == n {
			return i
		}
	}
	return -1
}

// lastBeforeMarkerNamed finds the most recent non-marker entry named
// name before hitting a marker or the list start, per the "reconstruct
// the active formatting elements" and adoption-agency "look for the
// formatting element" steps.
func (a *afeList) lastBeforeMarkerNamed(name string) (afeEntry, int, bool) {
	for i := len(a.entries) - 1; i >= 0; i-- {
		e := a.entries[i]
		if e.isMarker {
			return afeEntry{}, -1, false
		}
		if e.name == name {
			return e, i, true
		}
	}
	return afeEntry{}, -1, false
}

func (a *afeList) removeAt(i int) {
	a.unref(a.entries[i].node)
	a.entries = append(a.entries[:i], a.entries[i+1:]...)
}

func (a *afeList) replaceAt(i int, n sink.Node, name string, ns sink.Namespace, attrs []sink.Attribute) {
	a.unref(a.entries[i].node)
	a.ref(n)
	a.entries[i] = afeEntry{node: n, name: name, namespace: ns, attrs: attrs}
}

func (a *afeList) insertAt(i int, n sink.Node, name string, ns sink.Namespace, attrs []sink.Attribute) {
	a.ref(n)
	e := afeEntry{node: n, name: name, namespace: ns, attrs: attrs}
	a.entries = append(a.entries, afeEntry{})
	copy(a.entries[i+1:], a.entries[i:])
	a.entries[i] = e
}
