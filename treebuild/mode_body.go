package treebuild

import (
	"github.com/jsimonetti/html5parser/sink"
	"github.com/jsimonetti/html5parser/tokenizer"
)

var headingNames = map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true}

// closeParagraphIfInButtonScope implements the many "if the stack has a
// p element in button scope, close a p element" preambles in-body start
// tag handling repeats for block-level elements.
func (tb *TreeBuilder) closeParagraphIfInButtonScope() {
	if tb.stack.HasElementInButtonScope("p") {
		tb.closePElement()
	}
}

// modeInBody implements the tree construction algorithm's "in body" mode, the workhorse
// insertion mode covering headings, lists, formatting elements, and the
// adoption agency dispatch for their end tags.
func (tb *TreeBuilder) modeInBody(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.Character:
		r := tokenRune(tok)
		if r == 0 {
			tb.parseError("unexpected-null-character")
			return
		}
		tb.reconstructActiveFormattingElements()
		tb.insertCharacter(r)
		if !isWS(r) {
			tb.framesetOK = false
		}
		return
	case tokenizer.Comment:
		tb.insertComment(tok, nil)
		return
	case tokenizer.Doctype:
		tb.parseError("unexpected-doctype")
		return
	case tokenizer.EOFToken:
		tb.stopParsing()
		return
	case tokenizer.StartTag:
		tb.inBodyStartTag(tok)
		return
	case tokenizer.EndTag:
		tb.inBodyEndTag(tok)
		return
	}
}

func (tb *TreeBuilder) inBodyStartTag(tok tokenizer.Token) {
	switch tok.TagName {
	case "html":
		tb.inBodyStartHTML(tok)
		return
	case "base", "basefont", "bgsound", "link", "meta", "noframes", "script",
		"style", "template", "title":
		tb.modeInHead(tok)
		return
	case "body":
		tb.parseError("unexpected-start-tag-body")
		if tb.stack.len() > 1 {
			tb.tree.AddAttributes(tb.stack.at(1).node, adjustForeignAttributes(sink.HTML, tok.Attributes))
			tb.framesetOK = false
		}
		return
	case "frameset":
		tb.parseError("unexpected-start-tag-frameset")
		if tb.stack.len() < 2 || !tb.framesetOK {
			return
		}
		bodyNode := tb.stack.at(1).node
		if parent, status := tb.tree.GetParent(bodyNode, false); status == sink.OK && parent != nil {
			tb.tree.RemoveChild(parent, bodyNode)
		}
		for tb.stack.len() > 1 {
			tb.stack.pop()
		}
		tb.insertHTMLElement(tok)
		tb.mode = modeInFrameset
		return
	case "address", "article", "aside", "blockquote", "center", "details",
		"dialog", "dir", "div", "dl", "fieldset", "figcaption", "figure",
		"footer", "header", "hgroup", "main", "menu", "nav", "ol", "p",
		"section", "summary", "ul":
		tb.closeParagraphIfInButtonScope()
		tb.insertHTMLElement(tok)
		return
	case "h1", "h2", "h3", "h4", "h5", "h6":
		tb.closeParagraphIfInButtonScope()
		if headingNames[tb.currentNode().name] {
			tb.parseError("nested-heading")
			tb.stack.pop()
		}
		tb.insertHTMLElement(tok)
		return
	case "pre", "listing":
		tb.closeParagraphIfInButtonScope()
		tb.insertHTMLElement(tok)
		tb.framesetOK = false
		return
	case "form":
		if tb.formPtr != nil && !tb.stack.containsName("template") {
			tb.parseError("unexpected-start-tag-form")
			return
		}
		tb.closeParagraphIfInButtonScope()
		n := tb.insertHTMLElement(tok)
		if !tb.stack.containsName("template") {
			tb.formPtr = n
		}
		return
	case "li":
		tb.framesetOK = false
		for i := tb.stack.len() - 1; i >= 0; i-- {
			e := tb.stack.at(i)
			if e.name == "li" {
				tb.stack.generateImpliedEndTags("li")
				tb.stack.popUntil("li")
				break
			}
			if elementFlags(e.name, e.namespace).Special && e.name != "address" && e.name != "div" && e.name != "p" {
				break
			}
		}
		tb.closeParagraphIfInButtonScope()
		tb.insertHTMLElement(tok)
		return
	case "dd", "dt":
		tb.framesetOK = false
		for i := tb.stack.len() - 1; i >= 0; i-- {
			e := tb.stack.at(i)
			if e.name == "dd" || e.name == "dt" {
				tb.stack.generateImpliedEndTags(e.name)
				tb.stack.popUntil(e.name)
				break
			}
			if elementFlags(e.name, e.namespace).Special && e.name != "address" && e.name != "div" && e.name != "p" {
				break
			}
		}
		tb.closeParagraphIfInButtonScope()
		tb.insertHTMLElement(tok)
		return
	case "plaintext":
		tb.closeParagraphIfInButtonScope()
		tb.insertHTMLElement(tok)
		if tb.tok != nil {
			tb.tok.SwitchTo(tokenizer.PlaintextModel)
		}
		return
	case "button":
		if tb.stack.HasElementInScope("button") {
			tb.parseError("nested-button")
			tb.stack.generateImpliedEndTags("")
			tb.stack.popUntil("button")
		}
		tb.reconstructActiveFormattingElements()
		tb.insertHTMLElement(tok)
		tb.framesetOK = false
		return
	case "a":
		if e, i, ok := tb.afe.lastBeforeMarkerNamed("a"); ok {
			tb.parseError("unexpected-start-tag-a")
			tb.adoptionAgency("a")
			if tb.stack.contains(e.node) {
				tb.stack.removeNode(e.node)
			}
			tb.afe.removeAt(i)
		}
		tb.reconstructActiveFormattingElements()
		n := tb.insertHTMLElement(tok)
		tb.afe.push(n, "a", sink.HTML, adjustForeignAttributes(sink.HTML, tok.Attributes))
		return
	case "b", "big", "code", "em", "font", "i", "s", "small", "strike", "strong", "tt", "u":
		tb.reconstructActiveFormattingElements()
		n := tb.insertHTMLElement(tok)
		tb.afe.push(n, tok.TagName, sink.HTML, adjustForeignAttributes(sink.HTML, tok.Attributes))
		return
	case "nobr":
		tb.reconstructActiveFormattingElements()
		if tb.stack.HasElementInScope("nobr") {
			tb.parseError("nested-nobr")
			tb.adoptionAgency("nobr")
			tb.reconstructActiveFormattingElements()
		}
		n := tb.insertHTMLElement(tok)
		tb.afe.push(n, "nobr", sink.HTML, adjustForeignAttributes(sink.HTML, tok.Attributes))
		return
	case "applet", "marquee", "object":
		tb.reconstructActiveFormattingElements()
		tb.insertHTMLElement(tok)
		tb.afe.pushMarker()
		tb.framesetOK = false
		return
	case "table":
		if !tb.quirksSet {
			tb.closeParagraphIfInButtonScope()
		}
		tb.insertHTMLElement(tok)
		tb.framesetOK = false
		tb.mode = modeInTable
		return
	case "area", "br", "embed", "img", "keygen", "wbr":
		tb.reconstructActiveFormattingElements()
		tb.insertSelfContainedHTMLElement(tok)
		tb.framesetOK = false
		return
	case "input":
		tb.reconstructActiveFormattingElements()
		tb.insertSelfContainedHTMLElement(tok)
		if !hasAttr(tok, "type", "hidden") {
			tb.framesetOK = false
		}
		return
	case "param", "source", "track":
		tb.insertSelfContainedHTMLElement(tok)
		return
	case "hr":
		tb.closeParagraphIfInButtonScope()
		tb.insertSelfContainedHTMLElement(tok)
		tb.framesetOK = false
		return
	case "image":
		tb.parseError("image-tag")
		tok.TagName = "img"
		tb.inBodyStartTag(tok)
		return
	case "textarea":
		tb.insertHTMLElement(tok)
		tb.framesetOK = false
		tb.switchTokenizerFor(tokenizer.RCDATAModel)
		return
	case "xmp":
		tb.closeParagraphIfInButtonScope()
		tb.reconstructActiveFormattingElements()
		tb.framesetOK = false
		tb.insertHTMLElement(tok)
		tb.switchTokenizerFor(tokenizer.RawTextModel)
		return
	case "iframe":
		tb.framesetOK = false
		tb.insertHTMLElement(tok)
		tb.switchTokenizerFor(tokenizer.RawTextModel)
		return
	case "noembed":
		tb.insertHTMLElement(tok)
		tb.switchTokenizerFor(tokenizer.RawTextModel)
		return
	case "select":
		tb.reconstructActiveFormattingElements()
		tb.insertHTMLElement(tok)
		tb.framesetOK = false
		switch tb.mode {
		case modeInTable, modeInCaption, modeInTableBody, modeInRow, modeInCell:
			tb.mode = modeInSelectInTable
		default:
			tb.mode = modeInSelect
		}
		return
	case "optgroup", "option":
		if tb.currentNode().name == "option" {
			tb.stack.pop()
		}
		tb.reconstructActiveFormattingElements()
		tb.insertHTMLElement(tok)
		return
	case "rb", "rtc":
		if tb.stack.HasElementInScope("ruby") {
			tb.stack.generateImpliedEndTags("")
		}
		tb.insertHTMLElement(tok)
		return
	case "rp", "rt":
		if tb.stack.HasElementInScope("ruby") {
			tb.stack.generateImpliedEndTags("rtc")
		}
		tb.insertHTMLElement(tok)
		return
	case "math":
		tb.reconstructActiveFormattingElements()
		tb.insertForeignElement(tok, sink.MathML)
		if tok.SelfClosing {
			tb.stack.pop()
		}
		tb.syncForeignContentGate()
		return
	case "svg":
		tb.reconstructActiveFormattingElements()
		tb.insertForeignElement(tok, sink.SVG)
		if tok.SelfClosing {
			tb.stack.pop()
		}
		tb.syncForeignContentGate()
		return
	case "caption", "col", "colgroup", "frame", "head", "tbody", "td", "tfoot", "th", "thead", "tr":
		tb.parseError("unexpected-start-tag")
		return
	}
	tb.reconstructActiveFormattingElements()
	tb.insertHTMLElement(tok)
}

func hasAttr(tok tokenizer.Token, name, value string) bool {
	for _, a := range tok.Attributes {
		if a.Name == name {
			return a.Value == value
		}
	}
	return false
}

func (tb *TreeBuilder) inBodyEndTag(tok tokenizer.Token) {
	switch tok.TagName {
	case "template":
		tb.modeInHead(tok)
		return
	case "body":
		if !tb.stack.HasElementInScope("body") {
			tb.parseError("unexpected-end-tag-body")
			return
		}
		tb.mode = modeAfterBody
		return
	case "html":
		if !tb.stack.HasElementInScope("body") {
			tb.parseError("unexpected-end-tag-html")
			return
		}
		tb.mode = modeAfterBody
		tb.dispatch(tok)
		return
	case "address", "article", "aside", "blockquote", "button", "center",
		"details", "dialog", "dir", "div", "dl", "fieldset", "figcaption",
		"figure", "footer", "header", "hgroup", "listing", "main", "menu",
		"nav", "ol", "pre", "section", "summary", "ul":
		if !tb.stack.HasElementInScope(tok.TagName) {
			tb.parseError("unexpected-end-tag")
			return
		}
		tb.stack.generateImpliedEndTags("")
		if tb.currentNode().name != tok.TagName {
			tb.parseError("unexpected-end-tag-mismatch")
		}
		tb.stack.popUntil(tok.TagName)
		return
	case "form":
		if !tb.stack.containsName("template") {
			node := tb.formPtr
			tb.formPtr = nil
			if node == nil || !tb.stack.hasInScopeNode(node, defaultScopeStop) {
				tb.parseError("unexpected-end-tag-form")
				return
			}
			tb.stack.generateImpliedEndTags("")
			if tb.currentNode().node != node {
				tb.parseError("unexpected-end-tag-mismatch")
			}
			tb.stack.removeNode(node)
			return
		}
		if !tb.stack.HasElementInScope("form") {
			tb.parseError("unexpected-end-tag-form")
			return
		}
		tb.stack.generateImpliedEndTags("")
		if tb.currentNode().name != "form" {
			tb.parseError("unexpected-end-tag-mismatch")
		}
		tb.stack.popUntil("form")
		return
	case "p":
		if !tb.stack.HasElementInButtonScope("p") {
			tb.parseError("unexpected-end-tag-p")
			fake := tokenizer.Token{Type: tokenizer.StartTag, TagName: "p"}
			tb.insertHTMLElement(fake)
		}
		tb.closePElement()
		return
	case "li":
		if !tb.stack.HasElementInListItemScope("li") {
			tb.parseError("unexpected-end-tag-li")
			return
		}
		tb.stack.generateImpliedEndTags("li")
		if tb.currentNode().name != "li" {
			tb.parseError("unexpected-end-tag-mismatch")
		}
		tb.stack.popUntil("li")
		return
	case "dd", "dt":
		if !tb.stack.HasElementInScope(tok.TagName) {
			tb.parseError("unexpected-end-tag")
			return
		}
		tb.stack.generateImpliedEndTags(tok.TagName)
		if tb.currentNode().name != tok.TagName {
			tb.parseError("unexpected-end-tag-mismatch")
		}
		tb.stack.popUntil(tok.TagName)
		return
	case "h1", "h2", "h3", "h4", "h5", "h6":
		if !tb.stack.HasNumberedHeaderInScope() {
			tb.parseError("unexpected-end-tag")
			return
		}
		tb.stack.generateImpliedEndTags("")
		if tb.currentNode().name != tok.TagName {
			tb.parseError("unexpected-end-tag-mismatch")
		}
		tb.stack.popUntil("h1", "h2", "h3", "h4", "h5", "h6")
		return
	case "a", "b", "big", "code", "em", "font", "i", "nobr", "s", "small",
		"strike", "strong", "tt", "u":
		tb.adoptionAgency(tok.TagName)
		return
	case "applet", "marquee", "object":
		if !tb.stack.HasElementInScope(tok.TagName) {
			tb.parseError("unexpected-end-tag")
			return
		}
		tb.stack.generateImpliedEndTags("")
		if tb.currentNode().name != tok.TagName {
			tb.parseError("unexpected-end-tag-mismatch")
		}
		tb.stack.popUntil(tok.TagName)
		tb.afe.clearToLastMarker()
		return
	case "br":
		tb.parseError("unexpected-end-tag-br")
		tb.reconstructActiveFormattingElements()
		fake := tokenizer.Token{Type: tokenizer.StartTag, TagName: "br"}
		tb.insertSelfContainedHTMLElement(fake)
		tb.framesetOK = false
		return
	}
	// "any other end tag": walk the stack looking for a match, generating
	// implied end tags along the way, per the tree construction algorithm.
	for i := tb.stack.len() - 1; i >= 0; i-- {
		e := tb.stack.at(i)
		if e.name == tok.TagName {
			tb.stack.generateImpliedEndTags(tok.TagName)
			if tb.currentNode().name != tok.TagName {
				tb.parseError("unexpected-end-tag-mismatch")
			}
			tb.stack.popUntilNode(e.node)
			return
		}
		if elementFlags(e.name, e.namespace).Special {
			tb.parseError("unexpected-end-tag")
			return
		}
	}
}

// modeText implements the tree construction algorithm's "text" mode, used while consuming
// RCDATA/RAWTEXT/script-data element contents.
func (tb *TreeBuilder) modeText(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.Character:
		tb.insertCharacter(tokenRune(tok))
		return
	case tokenizer.EOFToken:
		tb.parseError("eof-in-text-mode")
		tb.stack.pop()
		tb.mode = tb.originalMode
		tb.dispatch(tok)
		return
	case tokenizer.EndTag:
		tb.stack.pop()
		tb.mode = tb.originalMode
		return
	}
}
