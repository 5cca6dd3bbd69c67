package treebuild

import (
	"github.com/jsimonetti/html5parser/sink"
	"github.com/jsimonetti/html5parser/tokenizer"
)

func isWS(r rune) bool {
	switch r {
	case '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

// modeInitial implements the tree construction algorithm's "initial" insertion mode: it
// only ever sees whitespace, a DOCTYPE, or falls through to quirks
// mode with an implied DOCTYPE.
func (tb *TreeBuilder) modeInitial(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.Character:
		if isWS(tokenRune(tok)) {
			return
		}
	case tokenizer.Comment:
		tb.insertComment(tok, tb.document)
		return
	case tokenizer.Doctype:
		missing := sink.DoctypeMissingFlags{
			Name:     tok.NameMissing,
			PublicID: tok.PublicIDMissing,
			SystemID: tok.SystemIDMissing,
		}
		n, status := tb.tree.CreateDoctype(tok.DoctypeName, tok.PublicID, tok.SystemID, missing)
		if status == sink.OK {
			tb.tree.AppendChild(tb.document, n)
		}
		tb.tree.SetQuirksMode(quirksModeForDoctype(tok))
		tb.quirksSet = true
		tb.mode = modeBeforeHTML
		return
	}
	if !tb.quirksSet {
		tb.tree.SetQuirksMode(sink.Quirks)
		tb.quirksSet = true
	}
	tb.mode = modeBeforeHTML
	tb.dispatch(tok)
}

// modeBeforeHTML implements the tree construction algorithm's "before html" mode: its job
// is purely to find or manufacture the <html> root.
func (tb *TreeBuilder) modeBeforeHTML(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.Doctype:
		tb.parseError("unexpected-doctype")
		return
	case tokenizer.Comment:
		tb.insertComment(tok, tb.document)
		return
	case tokenizer.Character:
		if isWS(tokenRune(tok)) {
			return
		}
	case tokenizer.StartTag:
		if tok.TagName == "html" {
			n := tb.createElementForToken(tok, sink.HTML)
			tb.tree.AppendChild(tb.document, n)
			tb.stack.push(n, "html", sink.HTML)
			tb.mode = modeBeforeHead
			return
		}
	case tokenizer.EndTag:
		switch tok.TagName {
		case "head", "body", "html", "br":
		default:
			tb.parseError("unexpected-end-tag")
			return
		}
	}
	n, _ := tb.tree.CreateElement(sink.ElementSpec{Namespace: sink.HTML, LocalName: "html"})
	tb.tree.AppendChild(tb.document, n)
	tb.stack.push(n, "html", sink.HTML)
	tb.mode = modeBeforeHead
	tb.dispatch(tok)
}

// modeBeforeHead implements the tree construction algorithm's "before head" mode.
func (tb *TreeBuilder) modeBeforeHead(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.Character:
		if isWS(tokenRune(tok)) {
			return
		}
	case tokenizer.Comment:
		tb.insertComment(tok, nil)
		return
	case tokenizer.Doctype:
		tb.parseError("unexpected-doctype")
		return
	case tokenizer.StartTag:
		switch tok.TagName {
		case "html":
			tb.inBodyStartHTML(tok)
			return
		case "head":
			n := tb.insertHTMLElement(tok)
			tb.headPtr = n
			tb.mode = modeInHead
			return
		}
	case tokenizer.EndTag:
		switch tok.TagName {
		case "head", "body", "html", "br":
		default:
			tb.parseError("unexpected-end-tag")
			return
		}
	}
	fake := tokenizer.Token{Type: tokenizer.StartTag, TagName: "head"}
	n := tb.insertHTMLElement(fake)
	tb.headPtr = n
	tb.mode = modeInHead
	tb.dispatch(tok)
}

// modeInHead implements the tree construction algorithm's "in head" mode.
func (tb *TreeBuilder) modeInHead(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.Character:
		if isWS(tokenRune(tok)) {
			tb.insertCharacter(tokenRune(tok))
			return
		}
	case tokenizer.Comment:
		tb.insertComment(tok, nil)
		return
	case tokenizer.Doctype:
		tb.parseError("unexpected-doctype")
		return
	case tokenizer.StartTag:
		switch tok.TagName {
		case "html":
			tb.inBodyStartHTML(tok)
			return
		case "base", "basefont", "bgsound", "link", "meta":
			tb.insertSelfContainedHTMLElement(tok)
			return
		case "title":
			tb.insertHTMLElement(tok)
			tb.switchTokenizerFor(tokenizer.RCDATAModel)
			return
		case "noscript":
			if !tb.scripting {
				tb.insertHTMLElement(tok)
				tb.mode = modeInHeadNoscript
				return
			}
			tb.insertHTMLElement(tok)
			tb.switchTokenizerFor(tokenizer.RawTextModel)
			return
		case "noframes", "style":
			tb.insertHTMLElement(tok)
			tb.switchTokenizerFor(tokenizer.RawTextModel)
			return
		case "script":
			tb.insertHTMLElement(tok)
			tb.switchTokenizerFor(tokenizer.ScriptDataModel)
			return
		case "template":
			tb.insertHTMLElement(tok)
			tb.afe.pushMarker()
			tb.framesetOK = false
			tb.mode = modeInTemplate
			return
		case "head":
			tb.parseError("unexpected-start-tag")
			return
		}
	case tokenizer.EndTag:
		switch tok.TagName {
		case "head":
			tb.stack.pop()
			tb.mode = modeAfterHead
			return
		case "body", "html", "br":
		case "template":
			if !tb.stack.containsName("template") {
				tb.parseError("unexpected-end-tag")
				return
			}
			tb.stack.popUntil("template")
			tb.afe.clearToLastMarker()
			tb.resetInsertionModeAppropriately()
			return
		default:
			tb.parseError("unexpected-end-tag")
			return
		}
	}
	tb.stack.pop()
	tb.mode = modeAfterHead
	tb.dispatch(tok)
}

// modeInHeadNoscript implements the tree construction algorithm's "in head noscript" mode,
// only reachable with scripting disabled.
func (tb *TreeBuilder) modeInHeadNoscript(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.Doctype:
		tb.parseError("unexpected-doctype")
		return
	case tokenizer.StartTag:
		switch tok.TagName {
		case "html":
			tb.inBodyStartHTML(tok)
			return
		case "basefont", "bgsound", "link", "meta", "noframes", "style":
			tb.modeInHead(tok)
			return
		case "head", "noscript":
			tb.parseError("unexpected-start-tag")
			return
		}
	case tokenizer.EndTag:
		switch tok.TagName {
		case "noscript":
			tb.stack.pop()
			tb.mode = modeInHead
			return
		case "br":
		default:
			tb.parseError("unexpected-end-tag")
			return
		}
	case tokenizer.Comment:
		tb.modeInHead(tok)
		return
	case tokenizer.Character:
		if isWS(tokenRune(tok)) {
			tb.modeInHead(tok)
			return
		}
	}
	tb.parseError("unexpected-token-in-head-noscript")
	tb.stack.pop()
	tb.mode = modeInHead
	tb.dispatch(tok)
}

// modeAfterHead implements the tree construction algorithm's "after head" mode.
func (tb *TreeBuilder) modeAfterHead(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.Character:
		if isWS(tokenRune(tok)) {
			tb.insertCharacter(tokenRune(tok))
			return
		}
	case tokenizer.Comment:
		tb.insertComment(tok, nil)
		return
	case tokenizer.Doctype:
		tb.parseError("unexpected-doctype")
		return
	case tokenizer.StartTag:
		switch tok.TagName {
		case "html":
			tb.inBodyStartHTML(tok)
			return
		case "body":
			tb.insertHTMLElement(tok)
			tb.framesetOK = false
			tb.mode = modeInBody
			return
		case "frameset":
			tb.insertHTMLElement(tok)
			tb.mode = modeInFrameset
			return
		case "base", "basefont", "bgsound", "link", "meta", "noframes", "script",
			"style", "template", "title":
			tb.parseError("unexpected-start-tag-after-head")
			tb.stack.push(tb.headPtr, "head", sink.HTML)
			tb.modeInHead(tok)
			tb.stack.removeNode(tb.headPtr)
			return
		case "head":
			tb.parseError("unexpected-start-tag")
			return
		}
	case tokenizer.EndTag:
		switch tok.TagName {
		case "template":
			tb.modeInHead(tok)
			return
		case "body", "html", "br":
		default:
			tb.parseError("unexpected-end-tag")
			return
		}
	}
	fake := tokenizer.Token{Type: tokenizer.StartTag, TagName: "body"}
	tb.insertHTMLElement(fake)
	tb.mode = modeInBody
	tb.dispatch(tok)
}

// inBodyStartHTML implements the shared "html" start-tag handling used
// by several early insertion modes: attributes merge onto the existing
// root rather than creating a second one.
func (tb *TreeBuilder) inBodyStartHTML(tok tokenizer.Token) {
	tb.parseError("unexpected-start-tag-html")
	if tb.stack.containsName("template") {
		return
	}
	if tb.stack.empty() {
		return
	}
	attrs := adjustForeignAttributes(sink.HTML, tok.Attributes)
	tb.tree.AddAttributes(tb.stack.at(0).node, attrs)
}
