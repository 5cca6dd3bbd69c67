package treebuild_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsimonetti/html5parser/instream"
	"github.com/jsimonetti/html5parser/sink"
	"github.com/jsimonetti/html5parser/sink/reftree"
	"github.com/jsimonetti/html5parser/tokenizer"
	"github.com/jsimonetti/html5parser/treebuild"
)

func parse(t *testing.T, src string, opts ...treebuild.Option) *reftree.Tree {
	t.Helper()
	stream := instream.New()
	stream.Append([]byte(src))
	stream.Complete()

	tree := reftree.New()
	var tb *treebuild.TreeBuilder
	tok := tokenizer.New(stream, func(tk tokenizer.Token) { tb.ProcessToken(tk) })
	tb = treebuild.New(tree, tok, opts...)

	for {
		if sig := tok.Run(); sig == tokenizer.Done {
			break
		}
	}
	return tree
}

func findFirst(n *reftree.Node, name string) *reftree.Node {
	if n.IsElement() && n.Name == name {
		return n
	}
	for _, c := range n.Children() {
		if found := findFirst(c, name); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *reftree.Node) string {
	if n.IsText() {
		return n.Data
	}
	var s string
	for _, c := range n.Children() {
		s += textContent(c)
	}
	return s
}

func TestMinimalDocumentStructure(t *testing.T) {
	tree := parse(t, "<html><head><title>Hi</title></head><body><p>Hello</p></body></html>")
	html := findFirst(tree.Root, "html")
	require.NotNil(t, html)
	head := findFirst(html, "head")
	body := findFirst(html, "body")
	require.NotNil(t, head)
	require.NotNil(t, body)
	title := findFirst(head, "title")
	require.NotNil(t, title)
	assert.Equal(t, "Hi", textContent(title))
	p := findFirst(body, "p")
	require.NotNil(t, p)
	assert.Equal(t, "Hello", textContent(p))
}

func TestImpliedHeadAndBody(t *testing.T) {
	tree := parse(t, "<p>no head or body tags</p>")
	html := findFirst(tree.Root, "html")
	require.NotNil(t, html)
	require.NotNil(t, findFirst(html, "head"))
	body := findFirst(html, "body")
	require.NotNil(t, body)
	assert.NotNil(t, findFirst(body, "p"))
}

func TestQuirksModeFromMissingDoctype(t *testing.T) {
	tree := parse(t, "<p>x</p>")
	assert.Equal(t, sink.Quirks, tree.QuirksMode)
}

func TestNoQuirksModeFromHTML5Doctype(t *testing.T) {
	tree := parse(t, "<!DOCTYPE html><p>x</p>")
	assert.Equal(t, sink.NoQuirks, tree.QuirksMode)
}

func TestLimitedQuirksFromTransitionalDoctype(t *testing.T) {
	tree := parse(t, `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "x"><p>x</p>`)
	assert.Equal(t, sink.LimitedQuirks, tree.QuirksMode)
}

func TestParagraphAutoClosesOnBlockStartTag(t *testing.T) {
	tree := parse(t, "<body><p>one<div>two</div></body>")
	body := findFirst(tree.Root, "body")
	require.NotNil(t, body)
	p := findFirst(body, "p")
	div := findFirst(body, "div")
	require.NotNil(t, p)
	require.NotNil(t, div)
	assert.Equal(t, "one", textContent(p))
	// the div must be a sibling of p, not nested inside it
	for _, c := range p.Children() {
		assert.False(t, c.IsElement() && c.Name == "div")
	}
}

func TestTableTextFosterParented(t *testing.T) {
	tree := parse(t, "<body><table>a<tr><td>b</td></tr></table></body>")
	body := findFirst(tree.Root, "body")
	table := findFirst(body, "table")
	require.NotNil(t, table)
	// "a" is not valid table content and must be foster-parented to be a
	// sibling of <table>, not a child of it.
	var sawFostered bool
	for _, c := range body.Children() {
		if c.IsText() && c.Data == "a" {
			sawFostered = true
		}
	}
	assert.True(t, sawFostered)
	td := findFirst(table, "td")
	require.NotNil(t, td)
	assert.Equal(t, "b", textContent(td))
}

func TestAdoptionAgencyReparentsMisnestedFormatting(t *testing.T) {
	tree := parse(t, "<body><b>1<i>2</b>3</i>4</body>")
	body := findFirst(tree.Root, "body")
	require.NotNil(t, body)

	want := "<body>\n" +
		"  <b>\n" +
		"    \"1\"\n" +
		"    <i>\n" +
		"      \"2\"\n" +
		"  <i>\n" +
		"    \"3\"\n" +
		"  \"4\"\n"
	assert.Equal(t, want, body.String())
}

func TestSVGForeignObjectSwitchesBackToHTML(t *testing.T) {
	tree := parse(t, "<body><svg><foreignObject><div>x</div></foreignObject></svg></body>")
	body := findFirst(tree.Root, "body")
	svg := findFirst(body, "svg")
	require.NotNil(t, svg)
	assert.Equal(t, sink.SVG, svg.Namespace)
	div := findFirst(svg, "div")
	require.NotNil(t, div)
	assert.Equal(t, sink.HTML, div.Namespace)
}

func TestVoidElementsDoNotNestFollowingContent(t *testing.T) {
	tree := parse(t, "<body><br>after</body>")
	body := findFirst(tree.Root, "body")
	br := findFirst(body, "br")
	require.NotNil(t, br)
	assert.Empty(t, br.Children())
	assert.Contains(t, textContent(body), "after")
}

func TestScriptDataContentModelStaysRaw(t *testing.T) {
	tree := parse(t, "<body><script>var x = \"<div>\";</script></body>")
	body := findFirst(tree.Root, "body")
	script := findFirst(body, "script")
	require.NotNil(t, script)
	assert.Contains(t, textContent(script), "<div>")
	assert.Nil(t, findFirst(script, "div"))
}
