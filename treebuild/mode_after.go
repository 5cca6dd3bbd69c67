package treebuild

import "github.com/jsimonetti/html5parser/tokenizer"

// modeAfterBody implements the tree construction algorithm's "after body" mode.
func (tb *TreeBuilder) modeAfterBody(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.Character:
		if isWS(tokenRune(tok)) {
			tb.modeInBody(tok)
			return
		}
	case tokenizer.Comment:
		tb.insertComment(tok, tb.stack.at(0).node)
		return
	case tokenizer.Doctype:
		tb.parseError("unexpected-doctype")
		return
	case tokenizer.StartTag:
		if tok.TagName == "html" {
			tb.inBodyStartHTML(tok)
			return
		}
	case tokenizer.EndTag:
		if tok.TagName == "html" {
			if tb.fragmentCase {
				tb.parseError("unexpected-end-tag")
				return
			}
			tb.mode = modeAfterAfterBody
			return
		}
	case tokenizer.EOFToken:
		tb.stopParsing()
		return
	}
	tb.parseError("unexpected-token-after-body")
	tb.mode = modeInBody
	tb.dispatch(tok)
}

// modeInFrameset implements the tree construction algorithm's "in frameset" mode.
func (tb *TreeBuilder) modeInFrameset(tok tokenizer.Token) {
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
		case "frameset":
			tb.insertHTMLElement(tok)
			return
		case "frame":
			tb.insertSelfContainedHTMLElement(tok)
			return
		case "noframes":
			tb.modeInHead(tok)
			return
		}
	case tokenizer.EndTag:
		if tok.TagName == "frameset" {
			if tb.stack.len() == 1 && tb.stack.at(0).name == "html" {
				tb.parseError("unexpected-end-tag-frameset")
				return
			}
			tb.stack.pop()
			if !tb.fragmentCase && tb.currentNode().name != "frameset" {
				tb.mode = modeAfterFrameset
			}
			return
		}
	case tokenizer.EOFToken:
		if tb.stack.len() != 1 {
			tb.parseError("eof-in-frameset")
		}
		tb.stopParsing()
		return
	}
	tb.parseError("unexpected-token-in-frameset")
}

// modeAfterFrameset implements the tree construction algorithm's "after frameset" mode.
func (tb *TreeBuilder) modeAfterFrameset(tok tokenizer.Token) {
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
		case "noframes":
			tb.modeInHead(tok)
			return
		}
	case tokenizer.EndTag:
		if tok.TagName == "html" {
			tb.mode = modeAfterAfterFrameset
			return
		}
	case tokenizer.EOFToken:
		tb.stopParsing()
		return
	}
	tb.parseError("unexpected-token-after-frameset")
}

// modeAfterAfterBody implements the tree construction algorithm's "after after body" mode.
func (tb *TreeBuilder) modeAfterAfterBody(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.Comment:
		tb.insertComment(tok, tb.document)
		return
	case tokenizer.Doctype:
		tb.modeInBody(tok)
		return
	case tokenizer.Character:
		if isWS(tokenRune(tok)) {
			tb.modeInBody(tok)
			return
		}
	case tokenizer.StartTag:
		if tok.TagName == "html" {
			tb.modeInBody(tok)
			return
		}
	case tokenizer.EOFToken:
		tb.stopParsing()
		return
	}
	tb.parseError("unexpected-token-after-after-body")
	tb.mode = modeInBody
	tb.dispatch(tok)
}

// modeAfterAfterFrameset implements the tree construction algorithm's "after after
// frameset" mode.
func (tb *TreeBuilder) modeAfterAfterFrameset(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.Comment:
		tb.insertComment(tok, tb.document)
		return
	case tokenizer.Doctype:
		tb.modeInBody(tok)
		return
	case tokenizer.Character:
		if isWS(tokenRune(tok)) {
			tb.modeInBody(tok)
			return
		}
	case tokenizer.StartTag:
		switch tok.TagName {
		case "html":
			tb.modeInBody(tok)
			return
		case "noframes":
			tb.modeInHead(tok)
			return
		}
	case tokenizer.EOFToken:
		tb.stopParsing()
		return
	}
	tb.parseError("unexpected-token-after-after-frameset")
}
