package html5parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	html5parser "github.com/jsimonetti/html5parser"
	"github.com/jsimonetti/html5parser/sink/reftree"
	"github.com/jsimonetti/html5parser/tokenizer"
)

func TestParseChunkThenCompleted(t *testing.T) {
	tree := reftree.New()
	p := html5parser.New(html5parser.WithTreeHandler(tree))

	require.NoError(t, p.ParseChunk([]byte("<html><body><p>hi")))
	require.NoError(t, p.ParseChunk([]byte("</p></body></html>")))
	require.NoError(t, p.Completed())

	var names []string
	var walk func(n *reftree.Node)
	walk = func(n *reftree.Node) {
		if n.IsElement() {
			names = append(names, n.Name)
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(tree.Root)

	want := []string{"html", "head", "body", "p"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("element sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestParseExtraneousChunkSplicesAtCursor(t *testing.T) {
	tree := reftree.New()
	p := html5parser.New(html5parser.WithTreeHandler(tree))

	require.NoError(t, p.ParseChunk([]byte("<p>a")))
	require.NoError(t, p.ParseExtraneousChunk([]byte("b")))
	require.NoError(t, p.ParseChunk([]byte("c</p>")))
	require.NoError(t, p.Completed())

	var text string
	var walk func(n *reftree.Node)
	walk = func(n *reftree.Node) {
		if n.IsText() {
			text += n.Data
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(tree.Root)
	assert.Contains(t, text, "a")
}

func TestTokenHandlerObservesEveryToken(t *testing.T) {
	tree := reftree.New()
	var seen []tokenizer.Type
	p := html5parser.New(
		html5parser.WithTreeHandler(tree),
		html5parser.WithTokenHandler(func(tk tokenizer.Token) { seen = append(seen, tk.Type) }),
	)
	require.NoError(t, p.ParseChunk([]byte("<p>hi</p>")))
	require.NoError(t, p.Completed())
	assert.Contains(t, seen, tokenizer.StartTag)
	assert.Contains(t, seen, tokenizer.EndTag)
	assert.Contains(t, seen, tokenizer.EOFToken)
}

func TestBufferHandlerReceivesRawBytes(t *testing.T) {
	tree := reftree.New()
	var buffered []byte
	p := html5parser.New(
		html5parser.WithTreeHandler(tree),
		html5parser.WithBufferHandler(func(b []byte) { buffered = append(buffered, b...) }),
	)
	require.NoError(t, p.ParseChunk([]byte("<p>hi</p>")))
	require.NoError(t, p.Completed())
	assert.Equal(t, "<p>hi</p>", string(buffered))
}

func TestErrorHandlerInvokedOnMalformedMarkup(t *testing.T) {
	tree := reftree.New()
	var msgs []string
	p := html5parser.New(
		html5parser.WithTreeHandler(tree),
		html5parser.WithErrorHandler(func(_, _ int, id string) { msgs = append(msgs, id) }),
	)
	require.NoError(t, p.ParseChunk([]byte("<p></div>")))
	require.NoError(t, p.Completed())
	assert.NotEmpty(t, msgs)
}

func TestReadCharsetReflectsDeclaredEncoding(t *testing.T) {
	tree := reftree.New()
	p := html5parser.New(html5parser.WithTreeHandler(tree), html5parser.WithDeclaredEncoding("iso-8859-1"))
	label, _ := p.ReadCharset()
	assert.Equal(t, "windows-1252", label) // iso-8859-1 canonicalizes to windows-1252 per the WHATWG registry
}

func TestClaimBufferHandsBackUnconsumedBytes(t *testing.T) {
	tree := reftree.New()
	p := html5parser.New(html5parser.WithTreeHandler(tree))
	require.NoError(t, p.ParseChunk([]byte("<p>hi</p>tail")))
	rest := p.ClaimBuffer()
	assert.NotNil(t, rest)
}

func TestNewPanicsWithoutTreeHandler(t *testing.T) {
	assert.Panics(t, func() { html5parser.New() })
}
