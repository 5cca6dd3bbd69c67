package treebuild

import "github.com/jsimonetti/html5parser/tokenizer"

// modeInTable implements the tree construction algorithm's "in table" mode, whose
// distinguishing feature is that most character/unexpected content
// triggers foster parenting instead of being inserted where the current
// node sits, grounded in Hubbub's in_table.c dispatch shape.
func (tb *TreeBuilder) modeInTable(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.Character:
		if tableFamily(tb.currentNode().name) {
			tb.pendingTableChars = tb.pendingTableChars[:0]
			tb.pendingTableNonWS = false
			tb.originalMode = tb.mode
			tb.mode = modeInTableText
			tb.dispatch(tok)
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
		case "caption":
			tb.clearStackToTableContext()
			tb.afe.pushMarker()
			tb.insertHTMLElement(tok)
			tb.mode = modeInCaption
			return
		case "colgroup":
			tb.clearStackToTableContext()
			tb.insertHTMLElement(tok)
			tb.mode = modeInColumnGroup
			return
		case "col":
			tb.clearStackToTableContext()
			fake := tokenizer.Token{Type: tokenizer.StartTag, TagName: "colgroup"}
			tb.insertHTMLElement(fake)
			tb.mode = modeInColumnGroup
			tb.dispatch(tok)
			return
		case "tbody", "tfoot", "thead":
			tb.clearStackToTableContext()
			tb.insertHTMLElement(tok)
			tb.mode = modeInTableBody
			return
		case "td", "th", "tr":
			tb.clearStackToTableContext()
			fake := tokenizer.Token{Type: tokenizer.StartTag, TagName: "tbody"}
			tb.insertHTMLElement(fake)
			tb.mode = modeInTableBody
			tb.dispatch(tok)
			return
		case "table":
			tb.parseError("nested-table")
			if !tb.stack.HasElementInTableScope("table") {
				return
			}
			tb.stack.popUntil("table")
			tb.resetInsertionModeAppropriately()
			tb.dispatch(tok)
			return
		case "style", "script", "template":
			tb.modeInHead(tok)
			return
		case "input":
			if hasAttr(tok, "type", "hidden") {
				tb.parseError("unexpected-hidden-input-in-table")
				tb.insertSelfContainedHTMLElement(tok)
				return
			}
		case "form":
			tb.parseError("unexpected-form-in-table")
			if tb.formPtr != nil || tb.stack.containsName("template") {
				return
			}
			n := tb.insertSelfContainedHTMLElement(tok)
			tb.formPtr = n
			return
		}
	case tokenizer.EndTag:
		switch tok.TagName {
		case "table":
			if !tb.stack.HasElementInTableScope("table") {
				tb.parseError("unexpected-end-tag-table")
				return
			}
			tb.stack.popUntil("table")
			tb.resetInsertionModeAppropriately()
			return
		case "body", "caption", "col", "colgroup", "html", "tbody", "td",
			"tfoot", "th", "thead", "tr":
			tb.parseError("unexpected-end-tag")
			return
		case "template":
			tb.modeInHead(tok)
			return
		}
	case tokenizer.EOFToken:
		tb.modeInBody(tok)
		return
	}
	tb.parseError("foster-parented-content-in-table")
	tb.fosterParenting = true
	tb.modeInBody(tok)
	tb.fosterParenting = false
}

func tableFamily(name string) bool {
	switch name {
	case "table", "tbody", "tfoot", "thead", "tr":
		return true
	}
	return false
}

// clearStackToTableContext implements the repeated "clear the stack
// back to a table context" step.
func (tb *TreeBuilder) clearStackToTableContext() {
	for !tb.stack.empty() {
		switch tb.currentNode().name {
		case "table", "template", "html":
			return
		}
		tb.stack.pop()
	}
}

func (tb *TreeBuilder) clearStackToTableBodyContext() {
	for !tb.stack.empty() {
		switch tb.currentNode().name {
		case "tbody", "tfoot", "thead", "template", "html":
			return
		}
		tb.stack.pop()
	}
}

func (tb *TreeBuilder) clearStackToTableRowContext() {
	for !tb.stack.empty() {
		switch tb.currentNode().name {
		case "tr", "template", "html":
			return
		}
		tb.stack.pop()
	}
}

// modeInTableText implements the tree construction algorithm's "in table text" mode: it
// buffers character tokens so a run containing any non-whitespace can
// be redirected through foster parenting as a whole.
func (tb *TreeBuilder) modeInTableText(tok tokenizer.Token) {
	if tok.Type == tokenizer.Character {
		r := tokenRune(tok)
		if r == 0 {
			tb.parseError("unexpected-null-character")
			return
		}
		tb.pendingTableChars = append(tb.pendingTableChars, r)
		if !isWS(r) {
			tb.pendingTableNonWS = true
		}
		return
	}
	if tb.pendingTableNonWS {
		tb.fosterParenting = true
		for _, r := range tb.pendingTableChars {
			tb.reconstructActiveFormattingElements()
			tb.insertCharacter(r)
			tb.framesetOK = false
		}
		tb.fosterParenting = false
	} else {
		for _, r := range tb.pendingTableChars {
			tb.insertCharacter(r)
		}
	}
	tb.mode = tb.originalMode
	tb.dispatch(tok)
}

// modeInCaption implements the tree construction algorithm's "in caption" mode.
func (tb *TreeBuilder) modeInCaption(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.StartTag:
		switch tok.TagName {
		case "caption", "col", "colgroup", "tbody", "td", "tfoot", "th", "thead", "tr":
			tb.endCaption(tok)
			return
		}
	case tokenizer.EndTag:
		switch tok.TagName {
		case "caption":
			tb.endCaption(tok)
			return
		case "table":
			tb.endCaption(tok)
			return
		case "body", "col", "colgroup", "html", "tbody", "td", "tfoot", "th", "thead", "tr":
			tb.parseError("unexpected-end-tag")
			return
		}
	}
	tb.modeInBody(tok)
}

func (tb *TreeBuilder) endCaption(tok tokenizer.Token) {
	if !tb.stack.HasElementInTableScope("caption") {
		tb.parseError("unexpected-end-tag-caption")
		return
	}
	tb.stack.generateImpliedEndTags("")
	if tb.currentNode().name != "caption" {
		tb.parseError("unexpected-end-tag-mismatch")
	}
	tb.stack.popUntil("caption")
	tb.afe.clearToLastMarker()
	tb.mode = modeInTable
	if tok.TagName != "caption" {
		tb.dispatch(tok)
	}
}

// modeInColumnGroup implements the tree construction algorithm's "in column group" mode.
func (tb *TreeBuilder) modeInColumnGroup(tok tokenizer.Token) {
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
		case "col":
			tb.insertSelfContainedHTMLElement(tok)
			return
		case "template":
			tb.modeInHead(tok)
			return
		}
	case tokenizer.EndTag:
		switch tok.TagName {
		case "colgroup":
			if tb.currentNode().name != "colgroup" {
				tb.parseError("unexpected-end-tag")
				return
			}
			tb.stack.pop()
			tb.mode = modeInTable
			return
		case "col":
			tb.parseError("unexpected-end-tag")
			return
		case "template":
			tb.modeInHead(tok)
			return
		}
	case tokenizer.EOFToken:
		tb.modeInBody(tok)
		return
	}
	if tb.currentNode().name != "colgroup" {
		tb.parseError("unexpected-token-in-column-group")
		return
	}
	tb.stack.pop()
	tb.mode = modeInTable
	tb.dispatch(tok)
}

// modeInTableBody implements the tree construction algorithm's "in table body" mode.
func (tb *TreeBuilder) modeInTableBody(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.StartTag:
		switch tok.TagName {
		case "tr":
			tb.clearStackToTableBodyContext()
			tb.insertHTMLElement(tok)
			tb.mode = modeInRow
			return
		case "th", "td":
			tb.parseError("unexpected-cell-in-table-body")
			tb.clearStackToTableBodyContext()
			fake := tokenizer.Token{Type: tokenizer.StartTag, TagName: "tr"}
			tb.insertHTMLElement(fake)
			tb.mode = modeInRow
			tb.dispatch(tok)
			return
		case "caption", "col", "colgroup", "tbody", "tfoot", "thead":
			if !tb.stack.HasElementInTableScope("tbody") && !tb.stack.HasElementInTableScope("thead") && !tb.stack.HasElementInTableScope("tfoot") {
				tb.parseError("unexpected-start-tag")
				return
			}
			tb.clearStackToTableBodyContext()
			tb.stack.pop()
			tb.mode = modeInTable
			tb.dispatch(tok)
			return
		}
	case tokenizer.EndTag:
		switch tok.TagName {
		case "tbody", "tfoot", "thead":
			if !tb.stack.HasElementInTableScope(tok.TagName) {
				tb.parseError("unexpected-end-tag")
				return
			}
			tb.clearStackToTableBodyContext()
			tb.stack.pop()
			tb.mode = modeInTable
			return
		case "table":
			if !tb.stack.HasElementInTableScope("tbody") && !tb.stack.HasElementInTableScope("thead") && !tb.stack.HasElementInTableScope("tfoot") {
				tb.parseError("unexpected-end-tag")
				return
			}
			tb.clearStackToTableBodyContext()
			tb.stack.pop()
			tb.mode = modeInTable
			tb.dispatch(tok)
			return
		case "body", "caption", "col", "colgroup", "html", "td", "th", "tr":
			tb.parseError("unexpected-end-tag")
			return
		}
	}
	tb.modeInTable(tok)
}

// modeInRow implements the tree construction algorithm's "in row" mode.
func (tb *TreeBuilder) modeInRow(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.StartTag:
		switch tok.TagName {
		case "th", "td":
			tb.clearStackToTableRowContext()
			tb.insertHTMLElement(tok)
			tb.mode = modeInCell
			tb.afe.pushMarker()
			return
		case "caption", "col", "colgroup", "tbody", "tfoot", "thead", "tr":
			if !tb.stack.HasElementInTableScope("tr") {
				tb.parseError("unexpected-start-tag")
				return
			}
			tb.clearStackToTableRowContext()
			tb.stack.pop()
			tb.mode = modeInTableBody
			tb.dispatch(tok)
			return
		}
	case tokenizer.EndTag:
		switch tok.TagName {
		case "tr":
			if !tb.stack.HasElementInTableScope("tr") {
				tb.parseError("unexpected-end-tag")
				return
			}
			tb.clearStackToTableRowContext()
			tb.stack.pop()
			tb.mode = modeInTableBody
			return
		case "table":
			if !tb.stack.HasElementInTableScope("tr") {
				tb.parseError("unexpected-end-tag")
				return
			}
			tb.clearStackToTableRowContext()
			tb.stack.pop()
			tb.mode = modeInTableBody
			tb.dispatch(tok)
			return
		case "tbody", "tfoot", "thead":
			if !tb.stack.HasElementInTableScope(tok.TagName) || !tb.stack.HasElementInTableScope("tr") {
				tb.parseError("unexpected-end-tag")
				return
			}
			tb.clearStackToTableRowContext()
			tb.stack.pop()
			tb.mode = modeInTableBody
			tb.dispatch(tok)
			return
		case "body", "caption", "col", "colgroup", "html", "td", "th":
			tb.parseError("unexpected-end-tag")
			return
		}
	}
	tb.modeInTable(tok)
}

// modeInCell implements the tree construction algorithm's "in cell" mode.
func (tb *TreeBuilder) modeInCell(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.StartTag:
		switch tok.TagName {
		case "caption", "col", "colgroup", "tbody", "td", "tfoot", "th", "thead", "tr":
			tb.closeCell(tok)
			return
		}
	case tokenizer.EndTag:
		switch tok.TagName {
		case "td", "th":
			if !tb.stack.HasElementInTableScope(tok.TagName) {
				tb.parseError("unexpected-end-tag")
				return
			}
			tb.stack.generateImpliedEndTags("")
			if tb.currentNode().name != tok.TagName {
				tb.parseError("unexpected-end-tag-mismatch")
			}
			tb.stack.popUntil(tok.TagName)
			tb.afe.clearToLastMarker()
			tb.mode = modeInRow
			return
		case "body", "caption", "col", "colgroup", "html":
			tb.parseError("unexpected-end-tag")
			return
		case "table", "tbody", "tfoot", "thead", "tr":
			if !tb.stack.HasElementInTableScope(tok.TagName) {
				tb.parseError("unexpected-end-tag")
				return
			}
			tb.closeCell(tok)
			return
		}
	}
	tb.modeInBody(tok)
}

func (tb *TreeBuilder) closeCell(tok tokenizer.Token) {
	closing := "td"
	if tb.stack.HasElementInTableScope("th") && !tb.stack.HasElementInTableScope("td") {
		closing = "th"
	}
	tb.stack.generateImpliedEndTags("")
	tb.stack.popUntil(closing)
	tb.afe.clearToLastMarker()
	tb.mode = modeInRow
	tb.dispatch(tok)
}

// modeInSelect implements the tree construction algorithm's "in select" mode.
func (tb *TreeBuilder) modeInSelect(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.Character:
		r := tokenRune(tok)
		if r == 0 {
			tb.parseError("unexpected-null-character")
			return
		}
		tb.insertCharacter(r)
		return
	case tokenizer.Comment:
		tb.insertComment(tok, nil)
		return
	case tokenizer.Doctype:
		tb.parseError("unexpected-doctype")
		return
	case tokenizer.EOFToken:
		tb.modeInBody(tok)
		return
	case tokenizer.StartTag:
		switch tok.TagName {
		case "html":
			tb.inBodyStartHTML(tok)
			return
		case "option":
			if tb.currentNode().name == "option" {
				tb.stack.pop()
			}
			tb.insertHTMLElement(tok)
			return
		case "optgroup":
			if tb.currentNode().name == "option" {
				tb.stack.pop()
			}
			if tb.currentNode().name == "optgroup" {
				tb.stack.pop()
			}
			tb.insertHTMLElement(tok)
			return
		case "select":
			tb.parseError("nested-select")
			if !tb.stack.HasElementInSelectScope("select") {
				return
			}
			tb.stack.popUntil("select")
			tb.resetInsertionModeAppropriately()
			return
		case "input", "keygen", "textarea":
			tb.parseError("unexpected-start-tag-in-select")
			if !tb.stack.HasElementInSelectScope("select") {
				return
			}
			tb.stack.popUntil("select")
			tb.resetInsertionModeAppropriately()
			tb.dispatch(tok)
			return
		case "script", "template":
			tb.modeInHead(tok)
			return
		}
	case tokenizer.EndTag:
		switch tok.TagName {
		case "optgroup":
			if tb.currentNode().name == "option" && tb.stack.len() > 1 && tb.stack.at(tb.stack.len()-2).name == "optgroup" {
				tb.stack.pop()
			}
			if tb.currentNode().name == "optgroup" {
				tb.stack.pop()
				return
			}
			tb.parseError("unexpected-end-tag")
			return
		case "option":
			if tb.currentNode().name == "option" {
				tb.stack.pop()
				return
			}
			tb.parseError("unexpected-end-tag")
			return
		case "select":
			if !tb.stack.HasElementInSelectScope("select") {
				tb.parseError("unexpected-end-tag")
				return
			}
			tb.stack.popUntil("select")
			tb.resetInsertionModeAppropriately()
			return
		case "template":
			tb.modeInHead(tok)
			return
		}
	}
	tb.parseError("unexpected-token-in-select")
}

// modeInSelectInTable implements the tree construction algorithm's "in select in table"
// mode, grounded directly in original_source/src/treebuilder/in_select.c's
// table-context handling.
func (tb *TreeBuilder) modeInSelectInTable(tok tokenizer.Token) {
	switch tok.Type {
	case tokenizer.StartTag:
		switch tok.TagName {
		case "caption", "table", "tbody", "tfoot", "thead", "tr", "td", "th":
			tb.parseError("unexpected-start-tag-in-select-in-table")
			tb.stack.popUntil("select")
			tb.resetInsertionModeAppropriately()
			tb.dispatch(tok)
			return
		}
	case tokenizer.EndTag:
		switch tok.TagName {
		case "caption", "table", "tbody", "tfoot", "thead", "tr", "td", "th":
			tb.parseError("unexpected-end-tag-in-select-in-table")
			if !tb.stack.HasElementInTableScope(tok.TagName) {
				return
			}
			tb.stack.popUntil("select")
			tb.resetInsertionModeAppropriately()
			tb.dispatch(tok)
			return
		}
	}
	tb.modeInSelect(tok)
}
