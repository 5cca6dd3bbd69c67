package tokenizer

import (
	"github.com/sirupsen/logrus"

	"github.com/jsimonetti/html5parser/instream"
)

//go:generate stringer -type=state
type state int

const (
	dataState state = iota
	rcDataState
	rawTextState
	scriptDataState
	plaintextState
	tagOpenState
	endTagOpenState
	tagNameState
	rcDataLessThanSignState
	rcDataEndTagOpenState
	rcDataEndTagNameState
	rawTextLessThanSignState
	rawTextEndTagOpenState
	rawTextEndTagNameState
	scriptDataLessThanSignState
	scriptDataEndTagOpenState
	scriptDataEndTagNameState
	scriptDataEscapeStartState
	scriptDataEscapeStartDashState
	scriptDataEscapedState
	scriptDataEscapedDashState
	scriptDataEscapedDashDashState
	scriptDataEscapedLessThanSignState
	scriptDataEscapedEndTagOpenState
	scriptDataEscapedEndTagNameState
	scriptDataDoubleEscapeStartState
	scriptDataDoubleEscapedState
	scriptDataDoubleEscapedDashState
	scriptDataDoubleEscapedDashDashState
	scriptDataDoubleEscapedLessThanSignState
	scriptDataDoubleEscapeEndState
	beforeAttributeNameState
	attributeNameState
	afterAttributeNameState
	beforeAttributeValueState
	attributeValueDoubleQuotedState
	attributeValueSingleQuotedState
	attributeValueUnquotedState
	afterAttributeValueQuotedState
	selfClosingStartTagState
	bogusCommentState
	markupDeclarationOpenState
	commentStartState
	commentStartDashState
	commentState
	commentLessThanSignState
	commentLessThanSignBangState
	commentLessThanSignBangDashState
	commentLessThanSignBangDashDashState
	commentEndDashState
	commentEndState
	commentEndBangState
	doctypeState
	beforeDoctypeNameState
	doctypeNameState
	afterDoctypeNameState
	afterDoctypePublicKeywordState
	beforeDoctypePublicIdentifierState
	doctypePublicIdentifierDoubleQuotedState
	doctypePublicIdentifierSingleQuotedState
	afterDoctypePublicIdentifierState
	betweenDoctypePublicAndSystemIdentifiersState
	afterDoctypeSystemKeywordState
	beforeDoctypeSystemIdentifierState
	doctypeSystemIdentifierDoubleQuotedState
	doctypeSystemIdentifierSingleQuotedState
	afterDoctypeSystemIdentifierState
	bogusDoctypeState
	cdataSectionState
	cdataSectionBracketState
	cdataSectionEndState
	characterReferenceState
	namedCharacterReferenceState
	ambiguousAmpersandState
	numericCharacterReferenceState
	hexadecimalCharacterReferenceStartState
	decimalCharacterReferenceStartState
	hexadecimalCharacterReferenceState
	decimalCharacterReferenceState
	numericCharacterReferenceEndState
)

// ContentModel selects which state the tokeniser enters when leaving
// the data state, per the tokeniser's content-model switching.
type ContentModel int

const (
	PCDATA ContentModel = iota
	RCDATAModel
	RawTextModel
	ScriptDataModel
	PlaintextModel
)

// Signal reports why Run stopped without more tokens to hand back.
type Signal int

const (
	NeedsData Signal = iota
	Done
	// EncodingChanged reports that the input stream restarted under a
	// newly-committed decoder mid-parse; Run stops immediately without
	// having consumed the rune it was about to decode, and the caller
	// must Reset the tokeniser (and the tree builder driving it) before
	// resuming.
	EncodingChanged
)

type handler func(r rune, eof bool) (reprocess bool, next state)

// ErrorFunc is the PARSE_ERR reporting hook: purely
// observational, never required to act.
type ErrorFunc func(line, col int, messageID string)

// Tokenizer drives the HTML5 tokeniser state machine.
type Tokenizer struct {
	stream *instream.Stream
	state  state
	returnState state

	b *builder

	pending []rune // rune-granularity pushback/peek queue

	lastEmittedStartTagName string
	nonHTMLCurrentNode      bool // true when the tree builder's adjusted current node is foreign
	pendingEndTag           bool // true while tagNameState is building an end tag, not a start tag

	line, col int

	emit  func(Token)
	onErr ErrorFunc
	log   *logrus.Entry
}

// New creates a Tokenizer reading from stream, starting in the data
// state (PCDATA content model), delivering tokens to emit.
func New(stream *instream.Stream, emit func(Token)) *Tokenizer {
	return &Tokenizer{
		stream: stream,
		state:  dataState,
		b:      newBuilder(),
		emit:   emit,
		onErr:  func(int, int, string) {},
		log:    logrus.NewEntry(logrus.StandardLogger()).WithField("component", "tokenizer"),
		line:   1,
		col:    0,
	}
}

// SetErrorHandler installs the parser's error-handler callback.
func (t *Tokenizer) SetErrorHandler(f ErrorFunc) {
	if f != nil {
		t.onErr = f
	}
}

// SetLogger overrides the logrus entry used for Debug-level tracing.
func (t *Tokenizer) SetLogger(l *logrus.Entry) {
	if l != nil {
		t.log = l
	}
}

// SwitchTo implements the tokeniser's content-model switch, invoked by
// the tree builder before resuming the tokeniser (e.g. entering
// RCDATAModel for a <title>, ScriptDataModel for <script>).
func (t *Tokenizer) SwitchTo(m ContentModel) {
	switch m {
	case RCDATAModel:
		t.state = rcDataState
	case RawTextModel:
		t.state = rawTextState
	case ScriptDataModel:
		t.state = scriptDataState
	case PlaintextModel:
		t.state = plaintextState
	default:
		t.state = dataState
	}
}

// SetNonHTMLCurrentNode records whether the tree builder's adjusted
// current node is in a foreign namespace, consulted by
// markupDeclarationOpenStateParser when deciding whether "[CDATA[" opens
// a real CDATA section (the foreign-content carve-out).
func (t *Tokenizer) SetNonHTMLCurrentNode(v bool) { t.nonHTMLCurrentNode = v }

// Reset reinitializes the tokeniser to the state New leaves it in,
// discarding any pending pushback/peek queue and the in-progress token
// builder. Used for the encoding restart path: once the input stream
// has committed a new decoder mid-parse, whatever the tokeniser had
// already decoded under the old one is no longer valid.
func (t *Tokenizer) Reset() {
	t.state = dataState
	t.returnState = dataState
	t.pending = nil
	t.b = newBuilder()
	t.lastEmittedStartTagName = ""
	t.nonHTMLCurrentNode = false
	t.pendingEndTag = false
	t.line, t.col = 1, 0
}

// LastStartTagName reports the last start tag name emitted, used by the
// tree builder to select the "appropriate end tag token" check the
// raw-text/RCDATA end-tag states rely on.
func (t *Tokenizer) LastStartTagName() string { return t.lastEmittedStartTagName }

// --- rune source with peek/pushback -----------------------------------

func (t *Tokenizer) nextRune() (rune, bool, instream.Signal) {
	if t.stream.PendingRestart() {
		return 0, false, instream.EncodingChanged
	}
	if len(t.pending) > 0 {
		r := t.pending[0]
		t.pending = t.pending[1:]
		return r, true, 0
	}
	r, ok, sig := t.stream.Next(t.inScriptDataContentModel())
	if ok {
		t.advancePos(r)
	}
	return r, ok, sig
}

// inScriptDataContentModel reports whether the tokeniser is currently
// somewhere within the script-data content model (the outer script data
// state plus its escape/double-escape submachine), the one family of
// states that preserves a literal NUL rather than having the input
// stream replace it with U+FFFD before it ever arrives.
func (t *Tokenizer) inScriptDataContentModel() bool {
	return t.state == scriptDataState ||
		(t.state >= scriptDataLessThanSignState && t.state <= scriptDataDoubleEscapeEndState)
}

func (t *Tokenizer) advancePos(r rune) {
	if r == '\n' {
		t.line++
		t.col = 0
	} else {
		t.col++
	}
}

func (t *Tokenizer) pushback(r rune) {
	t.pending = append([]rune{r}, t.pending...)
}

// peek returns up to n runes without consuming them, plus whether it
// managed to gather all n (false if the stream needs more data or hit
// EOF first).
func (t *Tokenizer) peek(n int) ([]rune, bool) {
	for len(t.pending) < n {
		r, ok, _ := t.stream.Next(t.inScriptDataContentModel())
		if !ok {
			return append([]rune{}, t.pending...), false
		}
		t.pending = append(t.pending, r)
	}
	return append([]rune{}, t.pending[:n]...), true
}

func (t *Tokenizer) discard(n int) {
	if n > len(t.pending) {
		n = len(t.pending)
	}
	t.pending = t.pending[n:]
}

func (t *Tokenizer) parseError(msg string) {
	t.onErr(t.line, t.col, msg)
}

func (t *Tokenizer) emitOne(tok Token) {
	if tok.Type == EndTag {
		tok.Attributes = nil
		tok.SelfClosing = false
	} else if tok.Type == StartTag {
		t.lastEmittedStartTagName = tok.TagName
	}
	t.emit(tok)
}

func (t *Tokenizer) emitMany(toks ...Token) {
	for _, tok := range toks {
		t.emitOne(tok)
	}
}

// Run drives the state machine, consuming characters and emitting tokens
// until the input stream signals NeedsData, the stream reports a charset
// restart (EncodingChanged), or a genuine EOF token has been emitted
// (Done), a single-goroutine "pump until it blocks" model with
// no internal concurrency.
func (t *Tokenizer) Run() Signal {
	for {
		r, ok, sig := t.nextRune()
		eof := false
		if !ok {
			switch sig {
			case instream.NeedsData:
				return NeedsData
			case instream.EncodingChanged:
				return EncodingChanged
			}
			eof = true
		}

		h := t.stateToHandler(t.state)
		reprocess, next := h(r, eof)
		t.state = next

		if eof && !reprocess {
			// Most EOF handlers emit an EOF token and settle back into
			// dataState; a caller sees Done exactly once the state
			// machine has nothing left to do with no data available.
			if sig != instream.NeedsData {
				return Done
			}
		}

		if reprocess && !eof {
			t.pushback(r)
		} else if reprocess && eof {
			// Reconsume the EOF condition itself; loop again with the
			// new state, still observing eof.
			continue
		}
	}
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func toLower(r rune) rune {
	if isUpper(r) {
		return r + 0x20
	}
	return r
}
func isAlpha(r rune) bool { return (r >= 'a' && r <= 'z') || isUpper(r) }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
func isWhitespace(r rune) bool {
	switch r {
	case '\t', '\n', '\f', ' ':
		return true
	}
	return false
}

func (t *Tokenizer) stateToHandler(s state) handler {
	switch s {
	case dataState:
		return t.dataStateParser
	case rcDataState:
		return t.rcDataStateParser
	case rawTextState:
		return t.rawTextStateParser
	case scriptDataState:
		return t.scriptDataStateParser
	case plaintextState:
		return t.plaintextStateParser
	case tagOpenState:
		return t.tagOpenStateParser
	case endTagOpenState:
		return t.endTagOpenStateParser
	case tagNameState:
		return t.tagNameStateParser
	case rcDataLessThanSignState:
		return t.rcDataLessThanSignStateParser
	case rcDataEndTagOpenState:
		return t.rcDataEndTagOpenStateParser
	case rcDataEndTagNameState:
		return t.rcDataEndTagNameStateParser
	case rawTextLessThanSignState:
		return t.rawTextLessThanSignStateParser
	case rawTextEndTagOpenState:
		return t.rawTextEndTagOpenStateParser
	case rawTextEndTagNameState:
		return t.rawTextEndTagNameStateParser
	case scriptDataLessThanSignState:
		return t.scriptDataLessThanSignStateParser
	case scriptDataEndTagOpenState:
		return t.scriptDataEndTagOpenStateParser
	case scriptDataEndTagNameState:
		return t.scriptDataEndTagNameStateParser
	case scriptDataEscapeStartState:
		return t.scriptDataEscapeStartStateParser
	case scriptDataEscapeStartDashState:
		return t.scriptDataEscapeStartDashStateParser
	case scriptDataEscapedState:
		return t.scriptDataEscapedStateParser
	case scriptDataEscapedDashState:
		return t.scriptDataEscapedDashStateParser
	case scriptDataEscapedDashDashState:
		return t.scriptDataEscapedDashDashStateParser
	case scriptDataEscapedLessThanSignState:
		return t.scriptDataEscapedLessThanSignStateParser
	case scriptDataEscapedEndTagOpenState:
		return t.scriptDataEscapedEndTagOpenStateParser
	case scriptDataEscapedEndTagNameState:
		return t.scriptDataEscapedEndTagNameStateParser
	case scriptDataDoubleEscapeStartState:
		return t.scriptDataDoubleEscapeStartStateParser
	case scriptDataDoubleEscapedState:
		return t.scriptDataDoubleEscapedStateParser
	case scriptDataDoubleEscapedDashState:
		return t.scriptDataDoubleEscapedDashStateParser
	case scriptDataDoubleEscapedDashDashState:
		return t.scriptDataDoubleEscapedDashDashStateParser
	case scriptDataDoubleEscapedLessThanSignState:
		return t.scriptDataDoubleEscapedLessThanSignStateParser
	case scriptDataDoubleEscapeEndState:
		return t.scriptDataDoubleEscapeEndStateParser
	case beforeAttributeNameState:
		return t.beforeAttributeNameStateParser
	case attributeNameState:
		return t.attributeNameStateParser
	case afterAttributeNameState:
		return t.afterAttributeNameStateParser
	case beforeAttributeValueState:
		return t.beforeAttributeValueStateParser
	case attributeValueDoubleQuotedState:
		return t.attributeValueDoubleQuotedStateParser
	case attributeValueSingleQuotedState:
		return t.attributeValueSingleQuotedStateParser
	case attributeValueUnquotedState:
		return t.attributeValueUnquotedStateParser
	case afterAttributeValueQuotedState:
		return t.afterAttributeValueQuotedStateParser
	case selfClosingStartTagState:
		return t.selfClosingStartTagStateParser
	case bogusCommentState:
		return t.bogusCommentStateParser
	case markupDeclarationOpenState:
		return t.markupDeclarationOpenStateParser
	case commentStartState:
		return t.commentStartStateParser
	case commentStartDashState:
		return t.commentStartDashStateParser
	case commentState:
		return t.commentStateParser
	case commentLessThanSignState:
		return t.commentLessThanSignStateParser
	case commentLessThanSignBangState:
		return t.commentLessThanSignBangStateParser
	case commentLessThanSignBangDashState:
		return t.commentLessThanSignBangDashStateParser
	case commentLessThanSignBangDashDashState:
		return t.commentLessThanSignBangDashDashStateParser
	case commentEndDashState:
		return t.commentEndDashStateParser
	case commentEndState:
		return t.commentEndStateParser
	case commentEndBangState:
		return t.commentEndBangStateParser
	case doctypeState:
		return t.doctypeStateParser
	case beforeDoctypeNameState:
		return t.beforeDoctypeNameStateParser
	case doctypeNameState:
		return t.doctypeNameStateParser
	case afterDoctypeNameState:
		return t.afterDoctypeNameStateParser
	case afterDoctypePublicKeywordState:
		return t.afterDoctypePublicKeywordStateParser
	case beforeDoctypePublicIdentifierState:
		return t.beforeDoctypePublicIdentifierStateParser
	case doctypePublicIdentifierDoubleQuotedState:
		return t.doctypePublicIdentifierDoubleQuotedStateParser
	case doctypePublicIdentifierSingleQuotedState:
		return t.doctypePublicIdentifierSingleQuotedStateParser
	case afterDoctypePublicIdentifierState:
		return t.afterDoctypePublicIdentifierStateParser
	case betweenDoctypePublicAndSystemIdentifiersState:
		return t.betweenDoctypePublicAndSystemIdentifiersStateParser
	case afterDoctypeSystemKeywordState:
		return t.afterDoctypeSystemKeywordStateParser
	case beforeDoctypeSystemIdentifierState:
		return t.beforeDoctypeSystemIdentifierStateParser
	case doctypeSystemIdentifierDoubleQuotedState:
		return t.doctypeSystemIdentifierDoubleQuotedStateParser
	case doctypeSystemIdentifierSingleQuotedState:
		return t.doctypeSystemIdentifierSingleQuotedStateParser
	case afterDoctypeSystemIdentifierState:
		return t.afterDoctypeSystemIdentifierStateParser
	case bogusDoctypeState:
		return t.bogusDoctypeStateParser
	case cdataSectionState:
		return t.cdataSectionStateParser
	case cdataSectionBracketState:
		return t.cdataSectionBracketStateParser
	case cdataSectionEndState:
		return t.cdataSectionEndStateParser
	case characterReferenceState:
		return t.characterReferenceStateParser
	case namedCharacterReferenceState:
		return t.namedCharacterReferenceStateParser
	case ambiguousAmpersandState:
		return t.ambiguousAmpersandStateParser
	case numericCharacterReferenceState:
		return t.numericCharacterReferenceStateParser
	case hexadecimalCharacterReferenceStartState:
		return t.hexadecimalCharacterReferenceStartStateParser
	case decimalCharacterReferenceStartState:
		return t.decimalCharacterReferenceStartStateParser
	case hexadecimalCharacterReferenceState:
		return t.hexadecimalCharacterReferenceStateParser
	case decimalCharacterReferenceState:
		return t.decimalCharacterReferenceStateParser
	case numericCharacterReferenceEndState:
		return t.numericCharacterReferenceEndStateParser
	}
	panic("tokenizer: unhandled state")
}

// --- data / rawtext / rcdata / script-data / plaintext -----------------

func (t *Tokenizer) dataStateParser(r rune, eof bool) (bool, state) {
	if eof {
		t.emitOne(eofToken())
		return false, dataState
	}
	switch r {
	case '&':
		t.returnState = dataState
		return false, characterReferenceState
	case '<':
		return false, tagOpenState
	case 0:
		t.parseError("unexpected-null-character")
		t.emitOne(characterToken(r))
		return false, dataState
	default:
		t.emitOne(characterToken(r))
		return false, dataState
	}
}

func (t *Tokenizer) rcDataStateParser(r rune, eof bool) (bool, state) {
	if eof {
		t.emitOne(eofToken())
		return false, dataState
	}
	switch r {
	case '&':
		t.returnState = rcDataState
		return false, characterReferenceState
	case '<':
		return false, rcDataLessThanSignState
	case '\x00':
		t.parseError("unexpected-null-character")
		t.emitOne(characterToken('�'))
		return false, rcDataState
	default:
		t.emitOne(characterToken(r))
		return false, rcDataState
	}
}

func (t *Tokenizer) rawTextStateParser(r rune, eof bool) (bool, state) {
	if eof {
		t.emitOne(eofToken())
		return false, dataState
	}
	switch r {
	case '<':
		return false, rawTextLessThanSignState
	case '\x00':
		t.parseError("unexpected-null-character")
		t.emitOne(characterToken('�'))
		return false, rawTextState
	default:
		t.emitOne(characterToken(r))
		return false, rawTextState
	}
}

func (t *Tokenizer) scriptDataStateParser(r rune, eof bool) (bool, state) {
	if eof {
		t.emitOne(eofToken())
		return false, dataState
	}
	switch r {
	case '<':
		return false, scriptDataLessThanSignState
	default:
		// NUL falls through here: unlike every other content model, the
		// script-data family preserves it verbatim instead of
		// substituting U+FFFD.
		t.emitOne(characterToken(r))
		return false, scriptDataState
	}
}

func (t *Tokenizer) plaintextStateParser(r rune, eof bool) (bool, state) {
	if eof {
		t.emitOne(eofToken())
		return false, dataState
	}
	if r == '\x00' {
		t.emitOne(characterToken('�'))
		return false, plaintextState
	}
	t.emitOne(characterToken(r))
	return false, plaintextState
}

// --- tag open family -----------------------------------------------------

func (t *Tokenizer) tagOpenStateParser(r rune, eof bool) (bool, state) {
	if eof {
		t.emitMany(characterToken('<'), eofToken())
		return false, dataState
	}
	switch {
	case r == '!':
		return false, markupDeclarationOpenState
	case r == '/':
		return false, endTagOpenState
	case isAlpha(r):
		t.b.reset()
		t.pendingEndTag = false
		return true, tagNameState
	case r == '?':
		t.parseError("unexpected-question-mark-instead-of-tag-name")
		t.b.reset()
		return true, bogusCommentState
	default:
		t.parseError("invalid-first-character-of-tag-name")
		t.emitOne(characterToken('<'))
		return true, dataState
	}
}

func (t *Tokenizer) endTagOpenStateParser(r rune, eof bool) (bool, state) {
	if eof {
		t.emitMany(characterToken('<'), characterToken('/'), eofToken())
		return false, dataState
	}
	switch {
	case isAlpha(r):
		t.b.reset()
		t.pendingEndTag = true
		return true, tagNameState
	case r == '>':
		t.parseError("missing-end-tag-name")
		return false, dataState
	default:
		t.parseError("invalid-first-character-of-tag-name")
		t.b.reset()
		return true, bogusCommentState
	}
}

func (t *Tokenizer) tagNameStateParser(r rune, eof bool) (bool, state) {
	if eof {
		t.parseError("eof-in-tag")
		t.emitOne(eofToken())
		return false, dataState
	}
	switch {
	case isWhitespace(r):
		return false, beforeAttributeNameState
	case r == '/':
		return false, selfClosingStartTagState
	case r == '>':
		return false, t.emitCurrentTag()
	case isUpper(r):
		t.b.writeName(toLower(r))
		return false, tagNameState
	case r == '\x00':
		t.parseError("unexpected-null-character")
		t.b.writeName('�')
		return false, tagNameState
	default:
		t.b.writeName(r)
		return false, tagNameState
	}
}

func (t *Tokenizer) emitCurrentTag() state {
	t.b.commitAttribute()
	t.state = dataState
	if t.pendingEndTag {
		t.emitOne(t.b.endTagToken())
	} else {
		t.emitOne(t.b.startTagToken())
	}
	// A SwitchTo made by the emit callback has set t.state; keep it.
	return t.state
}
