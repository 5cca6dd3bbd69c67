package tokenizer

import "github.com/jsimonetti/html5parser/charref"

// Character reference sub-machine, per the character-reference matching algorithm, delegating the
// actual table lookup to package charref rather than the tokeniser
// carrying its own copy of the WHATWG table.

// maxNamedRefLen bounds how far ahead the named-character-reference
// match looks; the representative charref table tops out well under
// this, and a full WHATWG table would still fit comfortably.
const maxNamedRefLen = 32

func (t *Tokenizer) isInAttribute() bool {
	switch t.returnState {
	case attributeValueDoubleQuotedState, attributeValueSingleQuotedState, attributeValueUnquotedState:
		return true
	}
	return false
}

func (t *Tokenizer) flushCodePoints(rs []rune) {
	if t.isInAttribute() {
		for _, r := range rs {
			t.b.writeAttrValue(r)
		}
		return
	}
	for _, r := range rs {
		t.emitOne(characterToken(r))
	}
}

func (t *Tokenizer) characterReferenceStateParser(r rune, eof bool) (bool, state) {
	t.b.resetTemp()
	t.b.writeTemp('&')
	if !eof {
		if r == '#' {
			t.b.writeTemp('#')
			return false, numericCharacterReferenceState
		}
		if isAlpha(r) || isDigit(r) {
			return true, namedCharacterReferenceState
		}
	}
	t.flushCodePoints([]rune(t.b.tempString()))
	return true, t.returnState
}

func (t *Tokenizer) namedCharacterReferenceStateParser(r rune, eof bool) (bool, state) {
	if eof {
		t.flushCodePoints([]rune(t.b.tempString()))
		return true, t.returnState
	}

	extra, _ := t.peek(maxNamedRefLen - 1)
	candidate := append([]rune{r}, extra...)
	matched, runes, terminated, found := charref.LongestMatch(string(candidate))
	if !found {
		t.flushCodePoints([]rune(t.b.tempString()))
		return true, ambiguousAmpersandState
	}

	// Historical reasons: an unterminated match consumed inside an
	// attribute value is rejected, not resolved, when the character
	// right after the match could extend it into a longer attribute
	// token (e.g. "&notit=2" or "&amp=2") — otherwise legacy pages
	// relying on a bare ampersand inside an attribute would silently
	// have part of their value replaced.
	if !terminated && t.isInAttribute() {
		matchedLen := len([]rune(matched))
		if matchedLen < len(candidate) {
			next := candidate[matchedLen]
			if next == '=' || isAlpha(next) || isDigit(next) {
				t.flushCodePoints([]rune(t.b.tempString()))
				return true, ambiguousAmpersandState
			}
		}
	}

	t.discard(len(matched) - 1)
	if !terminated {
		t.parseError("missing-semicolon-after-character-reference")
	}
	t.flushCodePoints(runes)
	return false, t.returnState
}

func (t *Tokenizer) ambiguousAmpersandStateParser(r rune, eof bool) (bool, state) {
	if eof {
		return true, t.returnState
	}
	switch {
	case isAlpha(r) || isDigit(r):
		if t.isInAttribute() {
			t.b.writeAttrValue(r)
		} else {
			t.emitOne(characterToken(r))
		}
		return false, ambiguousAmpersandState
	case r == ';':
		t.parseError("unknown-named-character-reference")
		return true, t.returnState
	default:
		return true, t.returnState
	}
}

func (t *Tokenizer) numericCharacterReferenceStateParser(r rune, eof bool) (bool, state) {
	t.b.charRefCode = 0
	if !eof && (r == 'x' || r == 'X') {
		t.b.writeTemp(r)
		return false, hexadecimalCharacterReferenceStartState
	}
	return true, decimalCharacterReferenceStartState
}

func (t *Tokenizer) hexadecimalCharacterReferenceStartStateParser(r rune, eof bool) (bool, state) {
	if !eof && isHexDigit(r) {
		return true, hexadecimalCharacterReferenceState
	}
	t.parseError("absence-of-digits-in-numeric-character-reference")
	t.flushCodePoints([]rune(t.b.tempString()))
	return true, t.returnState
}

func (t *Tokenizer) decimalCharacterReferenceStartStateParser(r rune, eof bool) (bool, state) {
	if !eof && isDigit(r) {
		return true, decimalCharacterReferenceState
	}
	t.parseError("absence-of-digits-in-numeric-character-reference")
	t.flushCodePoints([]rune(t.b.tempString()))
	return true, t.returnState
}

func (t *Tokenizer) hexadecimalCharacterReferenceStateParser(r rune, eof bool) (bool, state) {
	if !eof {
		switch {
		case isDigit(r):
			t.b.charRefCode = t.b.charRefCode*16 + int(r-'0')
			return false, hexadecimalCharacterReferenceState
		case r >= 'a' && r <= 'f':
			t.b.charRefCode = t.b.charRefCode*16 + int(r-'a') + 10
			return false, hexadecimalCharacterReferenceState
		case r >= 'A' && r <= 'F':
			t.b.charRefCode = t.b.charRefCode*16 + int(r-'A') + 10
			return false, hexadecimalCharacterReferenceState
		case r == ';':
			return false, numericCharacterReferenceEndState
		}
	}
	return true, numericCharacterReferenceEndState
}

func (t *Tokenizer) decimalCharacterReferenceStateParser(r rune, eof bool) (bool, state) {
	if !eof {
		if isDigit(r) {
			t.b.charRefCode = t.b.charRefCode*10 + int(r-'0')
			return false, decimalCharacterReferenceState
		}
		if r == ';' {
			return false, numericCharacterReferenceEndState
		}
	}
	return true, numericCharacterReferenceEndState
}

func (t *Tokenizer) numericCharacterReferenceEndStateParser(r rune, eof bool) (bool, state) {
	if t.b.charRefCode > 0x10FFFF {
		t.parseError("character-reference-outside-unicode-range")
	} else if t.b.charRefCode >= 0xD800 && t.b.charRefCode <= 0xDFFF {
		t.parseError("surrogate-character-reference")
	} else if t.b.charRefCode == 0 {
		t.parseError("null-character-reference")
	}
	resolved := charref.ResolveNumeric(t.b.charRefCode)
	t.b.resetTemp()
	t.flushCodePoints([]rune{resolved})
	return true, t.returnState
}
