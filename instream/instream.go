// Package instream implements the input stream: the byte buffer, decoder,
// and charset auto-detection stage that sits in front of the tokeniser.
// It is grounded in Hubbub's input/inputstream design (referenced from
// src/parser.c's hubbub_inputstream_create) and, for the actual label
// resolution and decoding, on golang.org/x/text/encoding/htmlindex —
// the pack carries no hand-rolled Windows-1252/ISO-8859 table, and
// x/text already implements the WHATWG encoding-label registry this
// component needs.
package instream

import (
	"bytes"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Source records how confident the stream is in its detected charset,
// per the input stream's four-stage detection ladder.
type Source int

const (
	Unknown Source = iota
	Tentative
	Confident
	Certain
)

func (s Source) String() string {
	switch s {
	case Tentative:
		return "tentative"
	case Confident:
		return "confident"
	case Certain:
		return "certain"
	default:
		return "unknown"
	}
}

// sniffWindow bounds the meta-tag sniff pass to the first N bytes, per
// the input stream's detection stage 3 (meta-tag prescan).
const sniffWindow = 1024

// Signal is returned by Next when the stream cannot immediately hand
// back a character.
type Signal int

const (
	// NeedsData indicates the buffer is exhausted; the caller must
	// Append more bytes and try again.
	NeedsData Signal = iota
	// EOF indicates the client has called Complete and every buffered
	// byte has been consumed.
	EOF
	// EncodingChanged indicates a meta-tag sniff (or client
	// ChangeCharset call) fired mid-tentative-decode and the stream
	// must be restarted from the top under the new decoder.
	EncodingChanged
)

// ErrUnknownEncoding is returned by ChangeCharset when label does not
// resolve to a known encoding.
var ErrUnknownEncoding = errors.New("instream: unknown encoding label")

// Stream is a growable byte buffer with a read cursor, decoder state,
// and script-insertion re-entrancy (the insert-chunk operation).
type Stream struct {
	buf       []byte
	pos       int // byte offset of the next byte to decode
	completed bool

	insertBuf []byte // pending parse_extraneous_chunk data, consumed before buf resumes
	insertPos int

	label     string
	enc       encoding.Encoding
	source    Source
	certainAt int // not set or read by any method

	restartPending bool // set when a tentative decode is superseded mid-parse; consumed by PendingRestart

	declared string // client-declared encoding, if any, from create(charset, ...)
	log      *logrus.Entry

	// pendingCR is set when a decoded CR was the last byte available in
	// buf: the CR is folded to LF immediately, but whether a following
	// LF must be swallowed can only be known once more bytes arrive,
	// possibly in a later Append. The next Next() call checks this
	// before decoding anything else, so a CRLF pair split across a
	// chunk boundary still folds to a single LF.
	pendingCR bool
}

// Option configures a Stream at construction.
type Option func(*Stream)

// WithDeclaredEncoding pins the client-declared charset from
// create(charset, ...); this is stage 2 of the detection
// ladder and immediately yields Certain confidence.
func WithDeclaredEncoding(label string) Option {
	return func(s *Stream) { s.declared = label }
}

// WithLogger attaches a logrus entry for Debug-level charset-transition
// tracing; nil is legal and disables logging.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Stream) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates an empty Stream. Charset detection stages run lazily as
// bytes arrive; see detectBOM and sniffMeta, both called from Append.
func New(opts ...Option) *Stream {
	s := &Stream{
		source: Unknown,
		log:    logrus.NewEntry(logrus.StandardLogger()).WithField("component", "instream"),
	}
	for _, o := range opts {
		o(s)
	}
	if s.declared != "" {
		if err := s.ChangeCharset(s.declared, Certain); err == nil {
			s.log.WithField("label", s.declared).Debug("charset: client-declared, certain")
		}
	}
	return s
}

// Append adds bytes to the end of the stream, per
// parse_chunk. If no charset has been pinned yet, the BOM and (within
// the first sniffWindow bytes) a meta charset declaration are checked.
func (s *Stream) Append(b []byte) {
	s.buf = append(s.buf, b...)
	if s.source == Unknown {
		s.detectBOM()
	}
	if s.source == Unknown || s.source == Tentative {
		s.sniffMeta()
	}
	if s.source == Unknown {
		// detection stage 4: default to windows-1252, tentative.
		s.ChangeCharset("windows-1252", Tentative)
	}
}

// Insert places script-inserted bytes at the current read point (the
// parse_extraneous_chunk operation), ahead of whatever is
// still buffered from Append.
func (s *Stream) Insert(b []byte) {
	rest := s.insertBuf[s.insertPos:]
	s.insertBuf = append(append([]byte{}, b...), rest...)
	s.insertPos = 0
}

// Complete signals EOF: after all currently buffered bytes are consumed,
// Next reports EOF instead of NeedsData.
func (s *Stream) Complete() { s.completed = true }

func (s *Stream) detectBOM() {
	if len(s.buf) < 2 {
		return
	}
	switch {
	case bytes.HasPrefix(s.buf, []byte{0xEF, 0xBB, 0xBF}):
		s.commitEncoding("utf-8", Certain)
		s.pos = 3
	case bytes.HasPrefix(s.buf, []byte{0xFE, 0xFF}):
		s.commitEncoding("utf-16be", Certain)
		s.pos = 2
	case bytes.HasPrefix(s.buf, []byte{0xFF, 0xFE}):
		s.commitEncoding("utf-16le", Certain)
		s.pos = 2
	}
}

// metaCharsetRE-equivalent scan without regexp: HTML5's prescan
// algorithm is itself a small state machine over raw bytes, not a
// regular expression, so a byte scanner matches that shape more
// closely than importing a regex.
func (s *Stream) sniffMeta() {
	end := len(s.buf)
	if end > sniffWindow {
		end = sniffWindow
	} else if !s.completed && s.source == Unknown {
		// Wait for either more bytes or EOF before giving up on the
		// sniff window, unless we already have the full window.
		if end < sniffWindow {
			return
		}
	}
	window := s.buf[:end]
	label := scanMetaCharset(window)
	if label != "" {
		s.ChangeCharset(label, Confident)
	}
}

// scanMetaCharset looks for <meta charset="..."> or
// <meta http-equiv=Content-Type content="...;charset=...">, case
// insensitively, within window.
func scanMetaCharset(window []byte) string {
	lower := bytes.ToLower(window)
	for i := 0; i < len(lower); i++ {
		idx := bytes.Index(lower[i:], []byte("<meta"))
		if idx == -1 {
			return ""
		}
		start := i + idx
		end := bytes.IndexByte(lower[start:], '>')
		if end == -1 {
			return ""
		}
		tag := lower[start : start+end]
		if label := extractAttr(tag, "charset"); label != "" {
			return label
		}
		if content := extractAttr(tag, "content"); content != "" {
			if label := extractCharsetFromContent(content); label != "" {
				return label
			}
		}
		i = start + end
	}
	return ""
}

func extractAttr(tag []byte, name string) string {
	needle := []byte(name + "=")
	idx := bytes.Index(tag, needle)
	if idx == -1 {
		return ""
	}
	rest := tag[idx+len(needle):]
	return readAttrValue(rest)
}

func readAttrValue(rest []byte) string {
	if len(rest) == 0 {
		return ""
	}
	if rest[0] == '"' || rest[0] == '\'' {
		quote := rest[0]
		end := bytes.IndexByte(rest[1:], quote)
		if end == -1 {
			return ""
		}
		return string(rest[1 : 1+end])
	}
	end := bytes.IndexAny(rest, " \t\n\r\f>\"';")
	if end == -1 {
		return string(rest)
	}
	return string(rest[:end])
}

func extractCharsetFromContent(content string) string {
	idx := bytes.Index([]byte(content), []byte("charset="))
	if idx == -1 {
		return ""
	}
	rest := content[idx+len("charset="):]
	return readAttrValue([]byte(rest))
}

// lookupLabel resolves an encoding label to its encoding.Encoding and
// canonical name, mirroring the lookup htmlindex.Get + htmlindex.Name
// together perform (this version of x/text/encoding/htmlindex does not
// expose a combined LookupLabel helper).
func lookupLabel(label string) (encoding.Encoding, string, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, "", err
	}
	canon, err := htmlindex.Name(enc)
	if err != nil {
		return nil, "", err
	}
	return enc, canon, nil
}

// commitEncoding resolves label to an encoding.Encoding and installs it
// without triggering a restart signal; used for the initial detection
// passes before any bytes have been decoded.
func (s *Stream) commitEncoding(label string, src Source) {
	enc, canon, err := lookupLabel(label)
	if err != nil {
		enc, canon = encoding.Nop, "windows-1252"
	}
	s.enc = enc
	s.label = canon
	s.source = src
	s.log.WithFields(logrus.Fields{"label": canon, "source": src.String()}).Debug("charset: committed")
}

// ChangeCharset implements change_charset. Once
// the stream is Confident or Certain, a change is a no-op: only an
// unknown or tentative charset may be overridden. Otherwise the new
// decoder is installed and the read cursor rewinds to the top; replacing
// a different tentative label also sets the restart PendingRestart
// reports.
func (s *Stream) ChangeCharset(label string, src Source) error {
	enc, canon, err := lookupLabel(label)
	if err != nil {
		return errors.Wrapf(ErrUnknownEncoding, "label %q", label)
	}

	if s.source == Certain || s.source == Confident {
		return nil // confident and certain charsets cannot change once committed
	}

	wasTentative := s.source == Tentative && s.label != ""
	changed := canon != s.label
	s.enc = enc
	s.label = canon
	s.source = src
	s.pos = 0 // restart: re-feed buffered bytes under the new decoder

	if wasTentative && changed {
		s.restartPending = true
		s.log.WithFields(logrus.Fields{"label": canon}).Debug("charset: tentative restart")
	}
	return nil
}

// PendingRestart reports and clears whether a tentative decode was just
// superseded, signalling that the caller must discard whatever it had
// already derived from this stream and restart from the top under the
// newly-committed decoder. It is consumed exactly once per restart.
func (s *Stream) PendingRestart() bool {
	p := s.restartPending
	s.restartPending = false
	return p
}

// ReadCharset implements read_charset.
func (s *Stream) ReadCharset() (string, Source) { return s.label, s.source }

// Next decodes and returns the next character in the pre-processing
// order HTML5 input preprocessing mandates: CRLF and lone CR fold to LF,
// and NUL becomes U+FFFD, except when preserveNUL is set, in which case
// NUL passes through unchanged (the tokeniser sets this while its
// content model is script-data, the one state family that keeps literal
// NUL bytes rather than replacing them). It returns (rune, true,
// EOF-ish-signal-ignored) on success, or a zero rune plus a Signal when
// it cannot proceed.
func (s *Stream) Next(preserveNUL bool) (rune, bool, Signal) {
	if s.pendingCR {
		if s.pos < len(s.buf) {
			if s.buf[s.pos] == '\n' {
				s.pos++
			}
			s.pendingCR = false
		} else if s.completed {
			s.pendingCR = false
		} else {
			return 0, false, NeedsData
		}
	}

	if len(s.insertBuf) > s.insertPos {
		r, sz := utf8.DecodeRune(s.insertBuf[s.insertPos:])
		s.insertPos += sz
		if r == '\r' {
			if s.insertPos < len(s.insertBuf) && s.insertBuf[s.insertPos] == '\n' {
				s.insertPos++
			}
			return '\n', true, 0
		}
		return normalizeChar(r, preserveNUL), true, 0
	}

	if s.pos >= len(s.buf) {
		if s.completed {
			return 0, false, EOF
		}
		return 0, false, NeedsData
	}

	// The decoder consumes from the raw byte buffer starting at pos.
	// Nop-encoding (already UTF-8/ASCII) is decoded directly; any other
	// declared encoding is decoded rune-by-rune via its Decoder,
	// buffering enough bytes for one code point at a time.
	if s.enc == nil || s.enc == encoding.Nop {
		r, sz := utf8.DecodeRune(s.buf[s.pos:])
		if r == utf8.RuneError && sz <= 1 {
			s.pos++
			return 0xFFFD, true, 0
		}
		s.pos += sz
		if r == '\r' {
			if s.pos < len(s.buf) {
				if s.buf[s.pos] == '\n' {
					s.pos++
				}
			} else {
				s.pendingCR = true
			}
			return '\n', true, 0
		}
		return normalizeChar(r, preserveNUL), true, 0
	}

	dec := s.enc.NewDecoder()
	dst := make([]byte, 4)
	for n := 1; n <= 4 && s.pos+n <= len(s.buf); n++ {
		nDst, nSrc, err := dec.Transform(dst, s.buf[s.pos:s.pos+n], false)
		if err == nil && nDst > 0 {
			r, _ := utf8.DecodeRune(dst[:nDst])
			s.pos += nSrc
			if r == '\r' {
				if s.pos < len(s.buf) {
					if s.buf[s.pos] == '\n' {
						s.pos++
					}
				} else {
					s.pendingCR = true
				}
				return '\n', true, 0
			}
			return normalizeChar(r, preserveNUL), true, 0
		}
	}
	// Undecodable byte: skip it and emit replacement, matching the
	// tokeniser's own null/invalid handling in spirit.
	s.pos++
	return 0xFFFD, true, 0
}

func normalizeChar(r rune, preserveNUL bool) rune {
	if r == 0 && !preserveNUL {
		return 0xFFFD
	}
	return r
}

// ClaimBuffer implements claim_buffer: it transfers
// ownership of the remaining undecoded bytes to the caller. The stream
// must not be used again afterward.
func (s *Stream) ClaimBuffer() []byte {
	rest := s.buf[s.pos:]
	s.buf = nil
	return rest
}
