package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsimonetti/html5parser/instream"
)

func runAll(t *testing.T, src string) []Token {
	t.Helper()
	stream := instream.New()
	stream.Append([]byte(src))
	stream.Complete()

	var toks []Token
	tok := New(stream, func(tk Token) { toks = append(toks, tk) })
	for {
		switch tok.Run() {
		case Done:
			return toks
		case NeedsData:
			require.Fail(t, "stream signalled NeedsData after Complete")
		}
	}
}

func TestDataStateEmitsCharacters(t *testing.T) {
	toks := runAll(t, "hi")
	require.GreaterOrEqual(t, len(toks), 3)
	assert.Equal(t, Character, toks[0].Type)
	assert.Equal(t, "h", toks[0].Data)
	assert.Equal(t, Character, toks[1].Type)
	assert.Equal(t, "i", toks[1].Data)
	assert.Equal(t, EOFToken, toks[len(toks)-1].Type)
}

func TestSimpleStartAndEndTag(t *testing.T) {
	toks := runAll(t, "<p>hi</p>")
	require.NotEmpty(t, toks)
	assert.Equal(t, StartTag, toks[0].Type)
	assert.Equal(t, "p", toks[0].TagName)

	var end Token
	for _, tk := range toks {
		if tk.Type == EndTag {
			end = tk
		}
	}
	assert.Equal(t, "p", end.TagName)
}

func TestAttributesOrderedAndDeduplicated(t *testing.T) {
	toks := runAll(t, `<a href="x" HREF="y" class="c">`)
	require.NotEmpty(t, toks)
	tag := toks[0]
	require.Equal(t, StartTag, tag.Type)
	require.Len(t, tag.Attributes, 2)
	assert.Equal(t, "href", tag.Attributes[0].Name)
	assert.Equal(t, "x", tag.Attributes[0].Value)
	assert.Equal(t, "class", tag.Attributes[1].Name)
}

func TestSelfClosingFlag(t *testing.T) {
	toks := runAll(t, `<br/>`)
	require.NotEmpty(t, toks)
	assert.True(t, toks[0].SelfClosing)
}

func TestCommentToken(t *testing.T) {
	toks := runAll(t, "<!-- hello -->")
	require.NotEmpty(t, toks)
	assert.Equal(t, Comment, toks[0].Type)
	assert.Equal(t, " hello ", toks[0].CommentData)
}

func TestDoctypeToken(t *testing.T) {
	toks := runAll(t, "<!DOCTYPE html>")
	require.NotEmpty(t, toks)
	assert.Equal(t, Doctype, toks[0].Type)
	assert.Equal(t, "html", toks[0].DoctypeName)
	assert.True(t, toks[0].PublicIDMissing)
	assert.True(t, toks[0].SystemIDMissing)
	assert.False(t, toks[0].ForceQuirks)
}

func TestQuirksDoctypeMissingName(t *testing.T) {
	toks := runAll(t, "<!DOCTYPE>")
	require.NotEmpty(t, toks)
	assert.True(t, toks[0].ForceQuirks)
}

func TestNamedCharacterReferenceInText(t *testing.T) {
	toks := runAll(t, "a&amp;b")
	var s string
	for _, tk := range toks {
		if tk.Type == Character {
			s += tk.Data
		}
	}
	assert.Equal(t, "a&b", s)
}

func TestNumericCharacterReference(t *testing.T) {
	toks := runAll(t, "&#65;&#x42;")
	var s string
	for _, tk := range toks {
		if tk.Type == Character {
			s += tk.Data
		}
	}
	assert.Equal(t, "AB", s)
}

func TestAmbiguousAmpersandPassesThrough(t *testing.T) {
	toks := runAll(t, "&notarealref;")
	var s string
	for _, tk := range toks {
		if tk.Type == Character {
			s += tk.Data
		}
	}
	assert.Equal(t, "&notarealref;", s)
}

func TestRawTextModeIgnoresTags(t *testing.T) {
	stream := instream.New()
	stream.Append([]byte("<div>x</div>"))
	stream.Complete()

	var toks []Token
	tok := New(stream, func(tk Token) { toks = append(toks, tk) })
	tok.SwitchTo(RawTextModel)
	for {
		if sig := tok.Run(); sig == Done {
			break
		}
	}
	// In raw text mode the first '<' does not open a tag; it is only
	// recognised as an end-tag sequence once it matches the last start
	// tag name, which here is empty, so everything is character data.
	var s string
	for _, tk := range toks {
		if tk.Type == Character {
			s += tk.Data
		}
	}
	assert.Contains(t, s, "x")
}

func TestScriptStartTagRecognized(t *testing.T) {
	toks := runAll(t, "<script>var x = 1;</script>")
	require.NotEmpty(t, toks)
	assert.Equal(t, StartTag, toks[0].Type)
	assert.Equal(t, "script", toks[0].TagName)
}

func TestCDATASectionInForeignContent(t *testing.T) {
	stream := instream.New()
	stream.Append([]byte("<![CDATA[hi]]>"))
	stream.Complete()

	var toks []Token
	tok := New(stream, func(tk Token) { toks = append(toks, tk) })
	tok.SetNonHTMLCurrentNode(true)
	for {
		if sig := tok.Run(); sig == Done {
			break
		}
	}
	var s string
	for _, tk := range toks {
		if tk.Type == Character {
			s += tk.Data
		}
	}
	assert.Equal(t, "hi", s)
}

func TestParseErrorHandlerInvoked(t *testing.T) {
	stream := instream.New()
	stream.Append([]byte("<>"))
	stream.Complete()

	var messages []string
	tok := New(stream, func(Token) {})
	tok.SetErrorHandler(func(_, _ int, id string) { messages = append(messages, id) })
	for {
		if sig := tok.Run(); sig == Done {
			break
		}
	}
	assert.NotEmpty(t, messages)
}
