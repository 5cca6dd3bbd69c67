// Package html5parser ties instream, tokenizer, and treebuild together
// into the single client-facing engine: create, parse_chunk,
// parse_extraneous_chunk, change_charset, read_charset, and
// claim_buffer, plus the token/buffer/error/tree callback hooks from
// Hubbub's hubbub_parser_optparams (include/hubbub/functypes.h).
package html5parser

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jsimonetti/html5parser/instream"
	"github.com/jsimonetti/html5parser/sink"
	"github.com/jsimonetti/html5parser/tokenizer"
	"github.com/jsimonetti/html5parser/treebuild"
)

// ErrAborted is returned by ParseChunk, ParseExtraneousChunk and
// Completed once ClaimBuffer has been called, the only operation that
// puts the Parser into its terminal state. Non-OK Status values returned
// by the sink are not checked and do not abort the parse.
var ErrAborted = errors.New("html5parser: parse aborted after sink error")

// Option configures a Parser at construction, following the same
// functional-options idiom instream.Option and treebuild.Option use.
type Option func(*Parser)

// WithDeclaredEncoding pins a client-declared charset, per the client-facing parser interface's
// create(charset, ...).
func WithDeclaredEncoding(label string) Option {
	return func(p *Parser) { p.declaredEncoding = label }
}

// WithScripting enables the scripting flag, which selects how
// <noscript> is handled in the head.
func WithScripting(v bool) Option {
	return func(p *Parser) { p.scripting = v }
}

// WithErrorHandler installs a parse-error observer shared by the
// tokenizer and tree construction stages, mirroring
// hubbub_error_handler.
func WithErrorHandler(f sink.ErrorHandler) Option {
	return func(p *Parser) { p.onErr = f }
}

// WithTokenHandler installs an observer invoked with every token before
// tree construction consumes it, mirroring hubbub_token_handler. This is
// purely observational: returning from it does not affect parsing.
func WithTokenHandler(f func(tokenizer.Token)) Option {
	return func(p *Parser) { p.onToken = f }
}

// WithBufferHandler installs an observer invoked with the raw bytes
// handed to ParseChunk/ParseExtraneousChunk before they are decoded,
// mirroring hubbub_buffer_handler's "document buffer handling function".
func WithBufferHandler(f func([]byte)) Option {
	return func(p *Parser) { p.onBuffer = f }
}

// WithContentModel forces the tokenizer's initial content model,
// bypassing the normal PCDATA start used for a fresh document; intended
// for fragment parsing against a context element whose content model is
// already known (e.g. a <textarea> context implies RCDATA).
func WithContentModel(m tokenizer.ContentModel) Option {
	return func(p *Parser) { p.initialContentModel = &m }
}

// WithTreeHandler supplies the sink.Tree the parser drives. Required:
// New panics if no tree has been supplied by the time it returns.
func WithTreeHandler(tree sink.Tree) Option {
	return func(p *Parser) { p.tree = tree }
}

// WithFragmentContext parses as an HTML fragment against a context
// element, per the fragment parsing setup's fragment parsing algorithm.
func WithFragmentContext(name string, ns sink.Namespace) Option {
	return func(p *Parser) { p.fragmentName, p.fragmentNS, p.isFragment = name, ns, true }
}

// WithLogger overrides the default logrus entry used by every stage.
func WithLogger(l *logrus.Entry) Option {
	return func(p *Parser) { p.log = l }
}

// Parser is the client-facing HTML5 parsing engine: it owns the input
// stream, the tokenizer, and the tree builder, and wires them together
// the way create() does in the reference C API.
type Parser struct {
	stream *instream.Stream
	tok    *tokenizer.Tokenizer
	tb     *treebuild.TreeBuilder
	tree   sink.Tree

	declaredEncoding    string
	scripting           bool
	isFragment          bool
	fragmentName        string
	fragmentNS          sink.Namespace
	initialContentModel *tokenizer.ContentModel

	onErr    sink.ErrorHandler
	onToken  func(tokenizer.Token)
	onBuffer func([]byte)

	log     *logrus.Entry
	aborted bool
}

// New constructs a Parser. WithTreeHandler must be among opts; New
// panics otherwise, since a parser with nowhere to send tree mutations
// cannot do anything useful.
func New(opts ...Option) *Parser {
	p := &Parser{
		onErr: func(int, int, string) {},
		log:   logrus.NewEntry(logrus.StandardLogger()).WithField("component", "html5parser"),
	}
	for _, o := range opts {
		o(p)
	}
	if p.tree == nil {
		panic("html5parser: New requires WithTreeHandler")
	}

	streamOpts := []instream.Option{instream.WithLogger(p.log.WithField("component", "instream"))}
	if p.declaredEncoding != "" {
		streamOpts = append(streamOpts, instream.WithDeclaredEncoding(p.declaredEncoding))
	}
	p.stream = instream.New(streamOpts...)

	p.tok = tokenizer.New(p.stream, func(tk tokenizer.Token) { p.handleToken(tk) })
	p.tok.SetErrorHandler(p.onErr)
	p.tok.SetLogger(p.log.WithField("component", "tokenizer"))
	if p.initialContentModel != nil {
		p.tok.SwitchTo(*p.initialContentModel)
	}

	tbOpts := []treebuild.Option{
		treebuild.WithScripting(p.scripting),
		treebuild.WithErrorHandler(p.onErr),
		treebuild.WithLogger(p.log.WithField("component", "treebuild")),
	}
	if p.isFragment {
		tbOpts = append(tbOpts, treebuild.WithFragmentContext(p.fragmentName, p.fragmentNS))
	}
	p.tb = treebuild.New(p.tree, p.tok, tbOpts...)

	return p
}

func (p *Parser) handleToken(tk tokenizer.Token) {
	if p.onToken != nil {
		p.onToken(tk)
	}
	if p.aborted {
		return
	}
	p.tb.ProcessToken(tk)
}

// ParseChunk implements the client-facing parser interface's parse_chunk: bytes are appended to
// the input stream and the tokenizer/tree-builder pipeline drains as far
// as it can before signalling NeedsData.
func (p *Parser) ParseChunk(data []byte) error {
	if p.aborted {
		return ErrAborted
	}
	if p.onBuffer != nil {
		p.onBuffer(data)
	}
	p.stream.Append(data)
	return p.drain()
}

// ParseExtraneousChunk implements the client-facing parser interface's parse_extraneous_chunk:
// bytes are spliced in at the stream's current read position rather
// than appended at the end, the re-entrant path document.write uses
// while a script is executing mid-parse.
func (p *Parser) ParseExtraneousChunk(data []byte) error {
	if p.aborted {
		return ErrAborted
	}
	if p.onBuffer != nil {
		p.onBuffer(data)
	}
	p.stream.Insert(data)
	return p.drain()
}

func (p *Parser) drain() error {
	for {
		switch p.tok.Run() {
		case tokenizer.NeedsData:
			return nil
		case tokenizer.Done:
			return nil
		case tokenizer.EncodingChanged:
			p.restart()
		}
	}
}

// restart reinitializes the tokeniser and tree builder after a
// mid-parse encoding change fires the tentative-decode restart: the
// stream's own read cursor is already back at the top of the buffer
// (instream.ChangeCharset does that), so once the tokeniser and tree
// builder are put back to their fresh-New state, drain's loop re-feeds
// the same bytes through both stages under the newly committed decoder.
// Nodes the tree builder already appended into the sink's document
// before the restart are not retracted, since the sink protocol offers
// no operation to undo an AppendChild: only the reference-counted
// handles this engine held on them are released.
func (p *Parser) restart() {
	p.tok.Reset()
	if p.initialContentModel != nil {
		p.tok.SwitchTo(*p.initialContentModel)
	}
	p.tb.Reset()
}

// Completed implements the client-facing parser interface's completed(): the client signals no
// more bytes are coming, and any buffered content is flushed through as
// if followed by EOF.
func (p *Parser) Completed() error {
	if p.aborted {
		return ErrAborted
	}
	p.stream.Complete()
	return p.drain()
}

// ChangeCharset implements the client-facing parser interface's change_charset, used when an
// out-of-band signal (an HTTP Content-Type header arriving late, or a
// user override) supersedes the stream's own detection. It takes effect
// only while the stream's charset is not yet detected or tentative.
func (p *Parser) ChangeCharset(label string) error {
	return p.stream.ChangeCharset(label, instream.Confident)
}

// ReadCharset implements the client-facing parser interface's read_charset.
func (p *Parser) ReadCharset() (string, instream.Source) {
	return p.stream.ReadCharset()
}

// ClaimBuffer implements the client-facing parser interface's claim_buffer: it hands ownership
// of whatever bytes the input stream has not yet decoded back to the
// caller. The Parser must not be used again afterward.
func (p *Parser) ClaimBuffer() []byte {
	p.aborted = true
	return p.stream.ClaimBuffer()
}
