// Package elements implements the element classification scheme: a closed enumeration of the
// HTML5 element names the parser treats specially, with per-type flags
// consulted throughout tree construction (scope queries, the adoption
// agency algorithm, foster parenting).
//
// The enumeration and its special/scoping/formatting grouping are lifted
// directly from Hubbub's src/treebuilder/element-type.h — the same
// element list this spec's tree-construction algorithm was distilled
// from.
package elements

import (
	"sort"

	"github.com/jsimonetti/html5parser/sink"
)

// Type is a closed enumeration of recognized element names, plus
// Unknown for anything not in the table.
type Type int

const (
	Unknown Type = iota

	// Special
	Address
	Area
	Article
	Aside
	Base
	Basefont
	Bgsound
	Blockquote
	Body
	Br
	Center
	Col
	Colgroup
	Command
	Dd
	Details
	Dialog
	Dir
	Div
	Dl
	Dt
	Embed
	Fieldset
	Figcaption
	Figure
	Footer
	Form
	Frame
	Frameset
	H1
	H2
	H3
	H4
	H5
	H6
	Head
	Header
	Hr
	Iframe
	Image
	Img
	Input
	Isindex
	Li
	Link
	Listing
	Main
	Menu
	Meta
	Nav
	Noembed
	Noframes
	Noscript
	Ol
	Optgroup
	Option
	P
	Param
	Plaintext
	Pre
	Script
	Section
	Select
	Source
	Style
	Summary
	Tbody
	Textarea
	Tfoot
	Thead
	Title
	Tr
	Ul
	Wbr

	// Scoping
	Applet
	Button
	Caption
	Html
	Marquee
	Object
	Table
	Td
	Template
	Th

	// Formatting
	A
	B
	Big
	Code
	Em
	Font
	I
	Nobr
	S
	Small
	Strike
	Strong
	Tt
	U

	// Phrasing
	Label
	Output
	Rp
	Rt
	Ruby
	Span
	Sub
	Sup
	Var
	Xmp

	// MathML
	Math
	Mglyph
	Malignmark
	Mi
	Mo
	Mn
	Ms
	Mtext
	AnnotationXML

	// SVG
	Svg
	ForeignObject
	Desc
)

// Flags carries the boolean metadata the tree data model attaches to every
// element type.
type Flags struct {
	Special                bool
	Scoping                bool
	Formatting             bool
	Phrasing               bool
	MathMLTextIntegration  bool
	HTMLIntegration        bool
}

// entry is keyed by (name, ns): HTML and foreign-namespace elements can
// share a tag name (title, style, script...) with entirely different
// flags, so name alone is not a unique key.
type entry struct {
	name  string
	ns    sink.Namespace
	typ   Type
	flags Flags
}

// table is sorted by (name, ns) so Lookup can binary-search it: the
// sorted-array alternative to a perfect hash when no offline
// hash-table generator is available in the dependency stack.
var table = buildTable()

func buildTable() []entry {
	special := func(name string, t Type) entry { return entry{name, sink.HTML, t, Flags{Special: true}} }
	scoping := func(name string, t Type) entry {
		return entry{name, sink.HTML, t, Flags{Special: true, Scoping: true}}
	}
	formatting := func(name string, t Type) entry { return entry{name, sink.HTML, t, Flags{Formatting: true}} }
	phrasing := func(name string, t Type) entry { return entry{name, sink.HTML, t, Flags{Phrasing: true}} }
	mathText := func(name string, t Type) entry {
		return entry{name, sink.MathML, t, Flags{MathMLTextIntegration: true}}
	}

	entries := []entry{
		special("address", Address), special("area", Area), special("article", Article),
		special("aside", Aside), special("base", Base), special("basefont", Basefont),
		special("bgsound", Bgsound), special("blockquote", Blockquote), special("body", Body),
		special("br", Br), special("center", Center), special("col", Col),
		special("colgroup", Colgroup), special("command", Command), special("dd", Dd),
		special("details", Details), special("dialog", Dialog), special("dir", Dir),
		special("div", Div), special("dl", Dl), special("dt", Dt), special("embed", Embed),
		special("fieldset", Fieldset), special("figcaption", Figcaption), special("figure", Figure),
		special("footer", Footer), special("form", Form), special("frame", Frame),
		special("frameset", Frameset), special("h1", H1), special("h2", H2), special("h3", H3),
		special("h4", H4), special("h5", H5), special("h6", H6), special("head", Head),
		special("header", Header), special("hr", Hr), special("iframe", Iframe),
		special("image", Image), special("img", Img), special("input", Input),
		special("isindex", Isindex), special("li", Li), special("link", Link),
		special("listing", Listing), special("main", Main), special("menu", Menu),
		special("meta", Meta), special("nav", Nav), special("noembed", Noembed),
		special("noframes", Noframes), special("noscript", Noscript), special("ol", Ol),
		special("optgroup", Optgroup), special("option", Option), special("p", P),
		special("param", Param), special("plaintext", Plaintext), special("pre", Pre),
		special("script", Script), special("section", Section), special("select", Select),
		special("source", Source), special("style", Style), special("summary", Summary),
		special("tbody", Tbody), special("textarea", Textarea), special("tfoot", Tfoot),
		special("thead", Thead), special("title", Title), special("tr", Tr),
		special("ul", Ul), special("wbr", Wbr),

		scoping("applet", Applet), scoping("button", Button), scoping("caption", Caption),
		scoping("html", Html), scoping("marquee", Marquee), scoping("object", Object),
		scoping("table", Table), scoping("td", Td), scoping("template", Template), scoping("th", Th),

		formatting("a", A), formatting("b", B), formatting("big", Big), formatting("code", Code),
		formatting("em", Em), formatting("font", Font), formatting("i", I), formatting("nobr", Nobr),
		formatting("s", S), formatting("small", Small), formatting("strike", Strike),
		formatting("strong", Strong), formatting("tt", Tt), formatting("u", U),

		phrasing("label", Label), phrasing("output", Output), phrasing("rp", Rp),
		phrasing("rt", Rt), phrasing("ruby", Ruby), phrasing("span", Span), phrasing("sub", Sub),
		phrasing("sup", Sup), phrasing("var", Var), phrasing("xmp", Xmp),

		mathText("mi", Mi), mathText("mo", Mo), mathText("mn", Mn), mathText("ms", Ms),
		mathText("mtext", Mtext),
		{"math", sink.MathML, Math, Flags{}},
		{"mglyph", sink.MathML, Mglyph, Flags{}},
		{"malignmark", sink.MathML, Malignmark, Flags{}},
		{"annotation-xml", sink.MathML, AnnotationXML, Flags{Scoping: true}},

		{"svg", sink.SVG, Svg, Flags{}},
		{"foreignObject", sink.SVG, ForeignObject, Flags{Scoping: true, HTMLIntegration: true}},
		{"desc", sink.SVG, Desc, Flags{Scoping: true, HTMLIntegration: true}},
		{"title", sink.SVG, Title, Flags{Scoping: true, HTMLIntegration: true}},
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].name != entries[j].name {
			return entries[i].name < entries[j].name
		}
		return entries[i].ns < entries[j].ns
	})
	return entries
}

// Lookup maps a lowercased tag name plus its namespace to the element
// Type and metadata flags via binary search over the sorted table. If no
// entry matches the exact namespace, the first entry for that name is
// returned instead — HTML is the fallback namespace for any name not
// otherwise classified.
func Lookup(name string, ns sink.Namespace) (Type, Flags) {
	i := sort.Search(len(table), func(i int) bool { return table[i].name >= name })
	for j := i; j < len(table) && table[j].name == name; j++ {
		if table[j].ns == ns {
			return table[j].typ, table[j].flags
		}
	}
	if i < len(table) && table[i].name == name {
		return table[i].typ, table[i].flags
	}
	return Unknown, Flags{}
}

// IsSpecial reports whether name is one of the "special" category
// elements used throughout HTML5's "have an element in scope" family of
// predicates.
func IsSpecial(name string, ns sink.Namespace) bool {
	_, f := Lookup(name, ns)
	return f.Special
}

// IsFormatting reports whether name participates in the adoption agency
// algorithm's active formatting element list.
func IsFormatting(name string, ns sink.Namespace) bool {
	_, f := Lookup(name, ns)
	return f.Formatting
}
