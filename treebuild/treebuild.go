package treebuild

import (
	"github.com/sirupsen/logrus"

	"github.com/jsimonetti/html5parser/elements"
	"github.com/jsimonetti/html5parser/sink"
	"github.com/jsimonetti/html5parser/tokenizer"
)

// insertionMode is the tree construction algorithm's named machine state, dispatched over
// in ProcessToken the same way tokenizer.state is dispatched over in
// Tokenizer.Run.
type insertionMode int

const (
	modeInitial insertionMode = iota
	modeBeforeHTML
	modeBeforeHead
	modeInHead
	modeInHeadNoscript
	modeAfterHead
	modeInBody
	modeText
	modeInTable
	modeInTableText
	modeInCaption
	modeInColumnGroup
	modeInTableBody
	modeInRow
	modeInCell
	modeInSelect
	modeInSelectInTable
	modeInTemplate
	modeAfterBody
	modeInFrameset
	modeAfterFrameset
	modeAfterAfterBody
	modeAfterAfterFrameset
)

// Option configures a TreeBuilder, following the functional-options
// idiom instream and the root package also use.
type Option func(*TreeBuilder)

// WithScripting sets the scripting flag the fragment parsing setup uses to decide
// between the "in head noscript" branch and treating <noscript> as
// ordinary content.
func WithScripting(v bool) Option {
	return func(tb *TreeBuilder) { tb.scripting = v }
}

// WithLogger overrides the default logrus entry.
func WithLogger(l *logrus.Entry) Option {
	return func(tb *TreeBuilder) { tb.log = l }
}

// WithErrorHandler installs a parse-error observer, per the client-facing parser interface.
func WithErrorHandler(f sink.ErrorHandler) Option {
	return func(tb *TreeBuilder) { tb.onErr = f }
}

// WithFragmentContext puts the builder into fragment-parsing mode
// (the fragment parsing setup's "HTML fragment parsing algorithm"), seeded with a
// context element that already exists outside the document.
func WithFragmentContext(name string, ns sink.Namespace) Option {
	return func(tb *TreeBuilder) {
		tb.fragmentCase = true
		tb.contextName = name
		tb.contextNamespace = ns
	}
}

// TreeBuilder drives a sink.Tree through the tree construction algorithm's insertion
// modes, adoption agency, and foster parenting, consuming tokens off a
// *tokenizer.Tokenizer it also reaches back into to switch content
// models (RCDATA/RAWTEXT/script data) and the foreign-content CDATA
// gate.
type TreeBuilder struct {
	tree sink.Tree
	tok  *tokenizer.Tokenizer

	document sink.Node
	stack    stack
	afe      afeList

	mode         insertionMode
	originalMode insertionMode

	headPtr sink.Node
	formPtr sink.Node

	scripting   bool
	framesetOK  bool
	fosterParenting bool

	fragmentCase     bool
	contextName      string
	contextNamespace sink.Namespace

	pendingTableChars []rune
	pendingTableNonWS bool

	quirksSet bool

	onErr sink.ErrorHandler
	log   *logrus.Entry
}

// New constructs a TreeBuilder targeting tree, whose tokens will arrive
// through ProcessToken (typically wired as a tokenizer's emit callback).
func New(tree sink.Tree, tok *tokenizer.Tokenizer, opts ...Option) *TreeBuilder {
	tb := &TreeBuilder{
		tree:       tree,
		tok:        tok,
		mode:       modeInitial,
		framesetOK: true,
		log:        logrus.NewEntry(logrus.StandardLogger()).WithField("component", "treebuild"),
		onErr:      func(int, int, string) {},
	}
	for _, o := range opts {
		o(tb)
	}
	tb.stack.tree = tree
	tb.afe.tree = tree
	tb.document, _ = tb.tree.Document()
	if tb.fragmentCase {
		tb.setupFragmentContext()
	}
	return tb
}

// Reset releases every node reference this tree builder currently holds
// on the stack and the active formatting element list and reinitializes
// insertion-mode state to what New would produce, for the encoding
// restart path: a mid-parse ChangeCharset discards the tokeniser's and
// tree builder's progress and re-feeds the buffered bytes from the top
// under the corrected decoder. Nodes already appended into the sink's
// document are not retracted: the sink contract has no operation to
// undo an AppendChild/InsertBefore, so a restart can only release the
// handles this package was holding, not erase what was already built.
func (tb *TreeBuilder) Reset() {
	tb.stack.releaseAll()
	tb.afe.releaseAll()
	tb.mode = modeInitial
	tb.originalMode = 0
	tb.headPtr = nil
	tb.formPtr = nil
	tb.framesetOK = true
	tb.fosterParenting = false
	tb.pendingTableChars = nil
	tb.pendingTableNonWS = false
	tb.quirksSet = false
	tb.document, _ = tb.tree.Document()
	if tb.fragmentCase {
		tb.setupFragmentContext()
	}
}

// setupFragmentContext implements the fragment parsing setup's fragment parsing
// algorithm setup: a detached <html> root is pushed as the sole stack
// entry standing in for the context element's own document, and the
// insertion mode is reset from that shape exactly as it would be for a
// full document parse.
func (tb *TreeBuilder) setupFragmentContext() {
	root, status := tb.tree.CreateElement(sink.ElementSpec{Namespace: sink.HTML, LocalName: "html"})
	if status == sink.OK {
		tb.tree.AppendChild(tb.document, root)
		tb.stack.push(root, "html", sink.HTML)
	}
	tb.resetInsertionModeAppropriately()
}

func (tb *TreeBuilder) parseError(id string) {
	tb.log.WithField("error", id).Debug("parse error")
	tb.onErr(0, 0, id)
}

func (tb *TreeBuilder) currentNode() entry {
	return tb.stack.top()
}

// adjustedCurrentNode implements the foreign-content dispatch rules' fragment-case override:
// when parsing a fragment and the stack has exactly one entry (the
// context element itself is not pushed, only its stand-in html root),
// the context element is used in place of the real current node.
func (tb *TreeBuilder) adjustedCurrentNode() entry {
	if tb.fragmentCase && tb.stack.len() == 1 {
		return entry{name: tb.contextName, namespace: tb.contextNamespace}
	}
	return tb.currentNode()
}

// ProcessToken is the tree construction dispatcher of the foreign-content dispatch rules:
// tokens are routed either to the current insertion mode directly, or
// through the "foreign content" branch, depending on the adjusted
// current node's namespace and integration-point status.
func (tb *TreeBuilder) ProcessToken(tok tokenizer.Token) {
	if tb.useForeignContent(tok) {
		tb.processForeignContent(tok)
		return
	}
	tb.dispatch(tok)
}

func (tb *TreeBuilder) useForeignContent(tok tokenizer.Token) bool {
	if tb.stack.empty() {
		return false
	}
	cur := tb.adjustedCurrentNode()
	if cur.namespace == sink.HTML {
		return false
	}
	if isMathMLTextIntegrationPoint(cur.name, cur.namespace) {
		if tok.Type == tokenizer.Character {
			return false
		}
		if tok.Type == tokenizer.StartTag && tok.TagName != "mglyph" && tok.TagName != "malignmark" {
			return false
		}
	}
	if cur.namespace == sink.MathML && cur.name == "annotation-xml" && tok.Type == tokenizer.StartTag && tok.TagName == "svg" {
		return false
	}
	attrs := make([]sink.Attribute, 0)
	if isHTMLIntegrationPoint(cur.name, cur.namespace, attrs) {
		if tok.Type == tokenizer.StartTag || tok.Type == tokenizer.Character {
			return false
		}
	}
	if tok.Type == tokenizer.EOFToken {
		return false
	}
	return true
}

func (tb *TreeBuilder) dispatch(tok tokenizer.Token) {
	switch tb.mode {
	case modeInitial:
		tb.modeInitial(tok)
	case modeBeforeHTML:
		tb.modeBeforeHTML(tok)
	case modeBeforeHead:
		tb.modeBeforeHead(tok)
	case modeInHead:
		tb.modeInHead(tok)
	case modeInHeadNoscript:
		tb.modeInHeadNoscript(tok)
	case modeAfterHead:
		tb.modeAfterHead(tok)
	case modeInBody:
		tb.modeInBody(tok)
	case modeText:
		tb.modeText(tok)
	case modeInTable:
		tb.modeInTable(tok)
	case modeInTableText:
		tb.modeInTableText(tok)
	case modeInCaption:
		tb.modeInCaption(tok)
	case modeInColumnGroup:
		tb.modeInColumnGroup(tok)
	case modeInTableBody:
		tb.modeInTableBody(tok)
	case modeInRow:
		tb.modeInRow(tok)
	case modeInCell:
		tb.modeInCell(tok)
	case modeInSelect:
		tb.modeInSelect(tok)
	case modeInSelectInTable:
		tb.modeInSelectInTable(tok)
	case modeInTemplate:
		tb.modeInBody(tok) // simplified: template contents behave like body content
	case modeAfterBody:
		tb.modeAfterBody(tok)
	case modeInFrameset:
		tb.modeInFrameset(tok)
	case modeAfterFrameset:
		tb.modeAfterFrameset(tok)
	case modeAfterAfterBody:
		tb.modeAfterAfterBody(tok)
	case modeAfterAfterFrameset:
		tb.modeAfterAfterFrameset(tok)
	}
}

// ---- insertion helpers, the tree construction algorithm ----

func (tb *TreeBuilder) appropriatePlaceForInsertion(override sink.Node) (parent sink.Node, before sink.Node) {
	target := override
	if target == nil {
		target = tb.currentNode().node
	}
	if tb.fosterParenting && tb.currentNodeIsTableFamily() {
		return tb.fosterParent()
	}
	return target, nil
}

func (tb *TreeBuilder) currentNodeIsTableFamily() bool {
	switch tb.currentNode().name {
	case "table", "tbody", "tfoot", "thead", "tr":
		return true
	}
	return false
}

// fosterParent implements foster parenting: the
// new node is inserted immediately before the nearest table ancestor
// (or as the last child of the stack's bottom entry if there is none).
func (tb *TreeBuilder) fosterParent() (parent sink.Node, before sink.Node) {
	tableIdx := -1
	for i := tb.stack.len() - 1; i >= 0; i-- {
		if tb.stack.at(i).name == "table" {
			tableIdx = i
			break
		}
	}
	if tableIdx == -1 {
		return tb.stack.at(0).node, nil
	}
	tableNode := tb.stack.at(tableIdx).node
	p, status := tb.tree.GetParent(tableNode, false)
	if status == sink.OK && p != nil {
		return p, tableNode
	}
	if tableIdx == 0 {
		return tb.stack.at(0).node, nil
	}
	return tb.stack.at(tableIdx-1).node, nil
}

func (tb *TreeBuilder) insertComment(tok tokenizer.Token, override sink.Node) {
	n, status := tb.tree.CreateComment(tok.CommentData)
	if status != sink.OK {
		return
	}
	parent, before := tb.appropriatePlaceForInsertion(override)
	if before != nil {
		tb.tree.InsertBefore(parent, n, before)
	} else {
		tb.tree.AppendChild(parent, n)
	}
}

func (tb *TreeBuilder) insertCharacter(r rune) {
	parent, before := tb.appropriatePlaceForInsertion(nil)
	n, status := tb.tree.CreateText(string(r))
	if status != sink.OK {
		return
	}
	if before != nil {
		tb.tree.InsertBefore(parent, n, before)
	} else {
		tb.tree.AppendChild(parent, n)
	}
}

// createElementForToken builds a sink.Node for a start tag without
// pushing it onto the stack, per the tree construction algorithm's "create an element for a
// token" step, applying namespace-specific attribute adjustment.
func (tb *TreeBuilder) createElementForToken(tok tokenizer.Token, ns sink.Namespace) sink.Node {
	name := tok.TagName
	if ns == sink.SVG {
		name = adjustSVGTagName(name)
	}
	attrs := adjustForeignAttributes(ns, tok.Attributes)
	n, status := tb.tree.CreateElement(sink.ElementSpec{Namespace: ns, LocalName: name, Attributes: attrs})
	if status != sink.OK {
		return nil
	}
	if tb.formPtr != nil && ns == sink.HTML {
		switch tok.TagName {
		case "input", "button", "select", "textarea", "output", "fieldset", "object":
			tb.tree.FormAssociate(tb.formPtr, n)
		}
	}
	return n
}

func (tb *TreeBuilder) insertHTMLElement(tok tokenizer.Token) sink.Node {
	return tb.insertForeignElement(tok, sink.HTML)
}

func (tb *TreeBuilder) insertForeignElement(tok tokenizer.Token, ns sink.Namespace) sink.Node {
	n := tb.createElementForToken(tok, ns)
	if n == nil {
		return nil
	}
	parent, before := tb.appropriatePlaceForInsertion(nil)
	if before != nil {
		tb.tree.InsertBefore(parent, n, before)
	} else {
		tb.tree.AppendChild(parent, n)
	}
	name := tok.TagName
	if ns == sink.SVG {
		name = adjustSVGTagName(name)
	}
	tb.stack.push(n, name, ns)
	return n
}

// insertSelfContainedHTMLElement pushes then immediately pops a void or
// self-closing element, per the many "insert an HTML element... then
// immediately pop it" steps for area/base/br/etc.
func (tb *TreeBuilder) insertSelfContainedHTMLElement(tok tokenizer.Token) sink.Node {
	n := tb.insertHTMLElement(tok)
	tb.stack.pop()
	return n
}

// closePElement implements the "close a p element" steps used
// throughout in-body handling.
func (tb *TreeBuilder) closePElement() {
	tb.stack.generateImpliedEndTags("p")
	if tb.currentNode().name != "p" {
		tb.parseError("unexpected-end-tag-implied-p")
	}
	tb.stack.popUntil("p")
}

// reconstructActiveFormattingElements implements the tree construction algorithm's
// algorithm of the same name, re-inserting formatting elements that
// table/list insertion cleared out from the tree without clearing them
// from the afe list.
func (tb *TreeBuilder) reconstructActiveFormattingElements() {
	if len(tb.afe.entries) == 0 {
		return
	}
	last := len(tb.afe.entries) - 1
	if tb.afe.entries[last].isMarker || tb.stack.contains(tb.afe.entries[last].node) {
		return
	}
	i := last
	for i > 0 {
		i--
		if tb.afe.entries[i].isMarker || tb.stack.contains(tb.afe.entries[i].node) {
			i++
			break
		}
	}
	for ; i <= last; i++ {
		e := tb.afe.entries[i]
		clone, status := tb.tree.CloneNode(e.node, false)
		if status != sink.OK {
			continue
		}
		parent, before := tb.appropriatePlaceForInsertion(nil)
		if before != nil {
			tb.tree.InsertBefore(parent, clone, before)
		} else {
			tb.tree.AppendChild(parent, clone)
		}
		tb.stack.push(clone, e.name, e.namespace)
		tb.afe.replaceAt(i, clone, e.name, e.namespace, e.attrs)
	}
}

// resetInsertionModeAppropriately implements the "reset the insertion
// mode appropriately" algorithm, used after popping the stack in
// several places (fragment setup, </select>, </table> and </template>
// handling) to recompute the mode from the
// stack shape rather than tracking it incrementally.
func (tb *TreeBuilder) resetInsertionModeAppropriately() {
	for i := tb.stack.len() - 1; i >= 0; i-- {
		last := i == 0
		e := tb.stack.at(i)
		name := e.name
		if last && tb.fragmentCase {
			name = tb.contextName
		}
		switch name {
		case "select":
			for j := i; j > 0; j-- {
				anc := tb.stack.at(j - 1)
				if anc.name == "template" {
					break
				}
				if anc.name == "table" {
					tb.mode = modeInSelectInTable
					return
				}
			}
			tb.mode = modeInSelect
			return
		case "td", "th":
			if !last {
				tb.mode = modeInCell
				return
			}
		case "tr":
			tb.mode = modeInRow
			return
		case "tbody", "thead", "tfoot":
			tb.mode = modeInTableBody
			return
		case "caption":
			tb.mode = modeInCaption
			return
		case "colgroup":
			tb.mode = modeInColumnGroup
			return
		case "table":
			tb.mode = modeInTable
			return
		case "template":
			tb.mode = modeInTemplate
			return
		case "head":
			if !last {
				tb.mode = modeInHead
				return
			}
		case "body":
			tb.mode = modeInBody
			return
		case "frameset":
			tb.mode = modeInFrameset
			return
		case "html":
			if tb.headPtr == nil {
				tb.mode = modeBeforeHead
			} else {
				tb.mode = modeAfterHead
			}
			return
		}
		if last {
			tb.mode = modeInBody
			return
		}
	}
}

func (tb *TreeBuilder) stopParsing() {
	for !tb.stack.empty() {
		tb.stack.pop()
	}
}

// switchTokenizerFor is called after inserting a start-tag element whose
// content model differs from PCDATA, per the tree construction algorithm's "generic raw
// text/RCDATA element parsing algorithm".
func (tb *TreeBuilder) switchTokenizerFor(model tokenizer.ContentModel) {
	if tb.tok == nil {
		return
	}
	tb.originalMode = tb.mode
	tb.tok.SwitchTo(model)
	tb.mode = modeText
}

func (tb *TreeBuilder) syncForeignContentGate() {
	if tb.tok == nil {
		return
	}
	tb.tok.SetNonHTMLCurrentNode(!tb.stack.empty() && tb.currentNode().namespace != sink.HTML)
}

func elementFlags(name string, ns sink.Namespace) elements.Flags {
	_, f := elements.Lookup(name, ns)
	return f
}

// tokenRune decodes the single rune a Character token carries. The
// tokenizer always emits exactly one rune per Character token
// (tokenizer.characterToken), so a range loop's first iteration is
// sufficient and avoids importing unicode/utf8 just for this.
func tokenRune(tok tokenizer.Token) rune {
	for _, r := range tok.Data {
		return r
	}
	return 0
}
