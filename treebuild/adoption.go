package treebuild

import "github.com/jsimonetti/html5parser/sink"

// adoptionAgency implements the tree construction algorithm's adoption
// agency algorithm for a formatting end tag named subject, bounded to
// 8 outer loop
// iterations as the HTML5 algorithm specifies. Grounded in the shape of
// Hubbub's treebuilder/in_body.c adoption-agency handling, generalized
// to the afeList/stack pair defined in afe.go/stack.go.
func (tb *TreeBuilder) adoptionAgency(subject string) {
	for outer := 0; outer < 8; outer++ {
		fmtEntry, fmtIdx, ok := tb.afe.lastBeforeMarkerNamed(subject)
		if !ok {
			tb.simpleEndTagFallback(subject)
			return
		}
		stackIdx := tb.stack.indexOf(fmtEntry.node)
		if stackIdx == -1 {
			tb.parseError("adoption-agency-orphan-formatting-element")
			tb.afe.removeAt(fmtIdx)
			return
		}
		if !tb.stack.hasInScopeNode(fmtEntry.node, defaultScopeStop) {
			tb.parseError("adoption-agency-not-in-scope")
			return
		}
		if tb.stack.at(stackIdx).name != subject {
			tb.parseError("adoption-agency-mismatch")
		}

		furthestBlockIdx := -1
		for i := stackIdx + 1; i < tb.stack.len(); i++ {
			if elementFlags(tb.stack.at(i).name, tb.stack.at(i).namespace).Special {
				furthestBlockIdx = i
				break
			}
		}
		if furthestBlockIdx == -1 {
			tb.stack.popUntilNode(fmtEntry.node)
			tb.afe.removeAt(fmtIdx)
			return
		}

		commonAncestor := tb.stack.at(stackIdx - 1)
		furthestBlock := tb.stack.at(furthestBlockIdx)

		bookmark := fmtIdx
		node := furthestBlock
		nodeIdx := furthestBlockIdx
		lastNode := furthestBlock

		for inner := 0; inner < 3; inner++ {
			nodeIdx--
			if nodeIdx <= stackIdx {
				break
			}
			node = tb.stack.at(nodeIdx)
			nodeAFEIdx := tb.afe.indexOfNode(node.node)
			if nodeAFEIdx == -1 {
				tb.stack.removeNode(node.node)
				continue
			}
			clone, status := tb.tree.CloneNode(node.node, false)
			if status != sink.OK {
				continue
			}
			tb.afe.replaceAt(nodeAFEIdx, clone, node.name, node.namespace, tb.afe.entries[nodeAFEIdx].attrs)
			tb.stack.replaceNodeAt(nodeIdx, clone)
			node.node = clone
			if lastNode.node == furthestBlock.node {
				bookmark = nodeAFEIdx + 1
			}
			tb.tree.AppendChild(clone, lastNode.node)
			lastNode = node
		}

		parent, before := tb.appropriatePlaceForInsertion(commonAncestor.node)
		if before != nil {
			tb.tree.InsertBefore(parent, lastNode.node, before)
		} else {
			tb.tree.AppendChild(parent, lastNode.node)
		}

		clone, status := tb.tree.CloneNode(fmtEntry.node, false)
		if status != sink.OK {
			return
		}
		tb.tree.ReparentChildren(furthestBlock.node, clone)
		tb.tree.AppendChild(furthestBlock.node, clone)

		tb.afe.removeAt(fmtIdx)
		if bookmark > fmtIdx {
			bookmark--
		}
		tb.afe.insertAt(bookmark, clone, fmtEntry.name, fmtEntry.namespace, fmtEntry.attrs)

		tb.stack.removeNode(fmtEntry.node)
		insertAt := tb.stack.indexOf(furthestBlock.node) + 1
		tb.stack.insertNodeAt(insertAt, clone, fmtEntry.name, fmtEntry.namespace)
	}
}

// simpleEndTagFallback implements the "any other end tag" behaviour the
// adoption agency algorithm defers to when the formatting element is not
// found in the active formatting element list.
func (tb *TreeBuilder) simpleEndTagFallback(name string) {
	for i := tb.stack.len() - 1; i >= 0; i-- {
		e := tb.stack.at(i)
		if e.name == name {
			tb.stack.generateImpliedEndTags("")
			tb.stack.popUntilNode(e.node)
			return
		}
		if elementFlags(e.name, e.namespace).Special {
			tb.parseError("unexpected-end-tag")
			return
		}
	}
}
