// Package tokenizer implements the HTML5 tokeniser: the ~70-state
// machine that turns a stream of characters into HTML tokens. States
// are dispatched one per handler method, building tokens up field by
// field (ordered, deduplicated attributes; explicit missing-flags on
// DOCTYPE) and reading from instream.Stream rather than a plain reader.
package tokenizer

import "github.com/jsimonetti/html5parser/sink"

// Type identifies which variant of Token this is, per the tree data model.
type Type int

const (
	Character Type = iota
	StartTag
	EndTag
	Comment
	Doctype
	EOFToken
)

func (t Type) String() string {
	switch t {
	case StartTag:
		return "StartTag"
	case EndTag:
		return "EndTag"
	case Comment:
		return "Comment"
	case Doctype:
		return "Doctype"
	case EOFToken:
		return "EOF"
	default:
		return "Character"
	}
}

// Attribute is a single attribute as accumulated by the tokeniser,
// before any namespace adjustment tree construction may apply.
type Attribute struct {
	Name  string
	Value string
}

// Token is the tree data model's tagged variant, flattened into one struct: only
// the fields relevant to Type are meaningful for any given token.
type Token struct {
	Type Type

	// StartTag / EndTag
	TagName     string
	Attributes  []Attribute
	SelfClosing bool

	// Comment
	CommentData string

	// Character
	Data string

	// Doctype
	DoctypeName          string
	PublicID             string
	SystemID             string
	NameMissing          bool
	PublicIDMissing      bool
	SystemIDMissing      bool
	ForceQuirks          bool
}

// AttrOrNamespace pairs an Attribute with the namespace tree
// construction assigns it (HTML by default; MathML/SVG adjustment
// tables may promote specific names to xlink/xml/xmlns).
type AttrOrNamespace struct {
	Attribute
	Namespace sink.Namespace
}

// builder accumulates the pieces of a token across states before it is
// emitted.
type builder struct {
	name        []rune
	data        []rune
	tempBuffer  []rune
	publicID    []rune
	systemID    []rune
	attrName    []rune
	attrValue   []rune

	attrs        []Attribute
	seenAttrs    map[string]bool
	dropCurAttr  bool

	selfClosing     bool
	forceQuirks     bool
	publicIDMissing bool
	systemIDMissing bool

	charRefCode int
}

func newBuilder() *builder {
	return &builder{seenAttrs: map[string]bool{}}
}

func (b *builder) reset() {
	b.name = b.name[:0]
	b.data = b.data[:0]
	b.publicID = b.publicID[:0]
	b.systemID = b.systemID[:0]
	b.attrName = b.attrName[:0]
	b.attrValue = b.attrValue[:0]
	b.attrs = nil
	b.seenAttrs = map[string]bool{}
	b.selfClosing = false
	b.forceQuirks = false
	b.publicIDMissing = true
	b.systemIDMissing = true
	b.dropCurAttr = false
	b.tempBuffer = b.tempBuffer[:0]
}

func (b *builder) writeName(r rune)      { b.name = append(b.name, r) }
func (b *builder) writeData(r rune)      { b.data = append(b.data, r) }
func (b *builder) writeTemp(r rune)      { b.tempBuffer = append(b.tempBuffer, r) }
func (b *builder) resetTemp()            { b.tempBuffer = b.tempBuffer[:0] }
func (b *builder) tempString() string    { return string(b.tempBuffer) }
func (b *builder) writePublicID(r rune)  { b.publicIDMissing = false; b.publicID = append(b.publicID, r) }
func (b *builder) writeSystemID(r rune)  { b.systemIDMissing = false; b.systemID = append(b.systemID, r) }
func (b *builder) beginPublicID()        { b.publicIDMissing = false }
func (b *builder) beginSystemID()        { b.systemIDMissing = false }
func (b *builder) writeAttrName(r rune)  { b.attrName = append(b.attrName, r) }
func (b *builder) writeAttrValue(r rune) { b.attrValue = append(b.attrValue, r) }

// commitAttribute closes out the current attribute name/value pair,
// applying the tree data model's "duplicate attribute names within a single tag
// are dropped (first wins)" rule.
func (b *builder) commitAttribute() {
	name := string(b.attrName)
	value := string(b.attrValue)
	b.attrName = b.attrName[:0]
	b.attrValue = b.attrValue[:0]
	if name == "" {
		return
	}
	if b.seenAttrs[name] {
		return
	}
	b.seenAttrs[name] = true
	b.attrs = append(b.attrs, Attribute{Name: name, Value: value})
}

// hasCurrentDuplicateName reports (without committing) whether the name
// built so far duplicates an already-committed attribute. Nothing calls
// it; duplicates are dropped by commitAttribute.
func (b *builder) hasCurrentDuplicateName() bool {
	return b.seenAttrs[string(b.attrName)]
}

func (b *builder) startTagToken() Token {
	return Token{Type: StartTag, TagName: string(b.name), Attributes: b.attrs, SelfClosing: b.selfClosing}
}
func (b *builder) endTagToken() Token {
	return Token{Type: EndTag, TagName: string(b.name), Attributes: b.attrs, SelfClosing: b.selfClosing}
}
func (b *builder) commentToken() Token { return Token{Type: Comment, CommentData: string(b.data)} }
func (b *builder) doctypeToken() Token {
	return Token{
		Type:            Doctype,
		DoctypeName:     string(b.name),
		PublicID:        string(b.publicID),
		SystemID:        string(b.systemID),
		NameMissing:     len(b.name) == 0,
		PublicIDMissing: b.publicIDMissing,
		SystemIDMissing: b.systemIDMissing,
		ForceQuirks:     b.forceQuirks,
	}
}

func characterToken(r rune) Token { return Token{Type: Character, Data: string(r)} }
func eofToken() Token             { return Token{Type: EOFToken} }
