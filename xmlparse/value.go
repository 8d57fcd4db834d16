package xmlparse

import (
	"unicode/utf8"

	"go4.org/mem"
)

// escapePhase tracks progress through a backslash escape that may itself
// span a chunk boundary (spec §4.4). It is the only sub-state a value scan
// needs beyond the accumulated bytes themselves, because exactly one
// escape can be in flight at a time. Entity references in text do not use
// it: consumeTextEntity leaves the '&' unconsumed until the whole
// reference is available.
type escapePhase int

const (
	escapeNone escapePhase = iota
	escapeBackslash
	escapeUnicodeHex
	escapeLowBackslash
	escapeLowU
)

// maxEntityLookahead bounds how far scanText will search for the ';' that
// closes an entity reference before giving up and reporting INVALID_TEXT
// outright, rather than suspending forever waiting for a ';' that will
// never come on garbage input. "&apos;" and "&quot;" are the longest of
// the five permitted entities, at six bytes.
const maxEntityLookahead = 8

var textEntities = map[string]byte{
	"lt":   '<',
	"gt":   '>',
	"amp":  '&',
	"apos": '\'',
	"quot": '"',
}

var backslashLiterals = map[byte]byte{
	'b': '\b',
	'f': '\f',
	'n': '\n',
	'r': '\r',
	't': '\t',
	'v': '\v',
}

// resetValueScan clears every field scanValue uses once a value has been
// fully decoded (or abandoned after a hard error), so the next scan starts
// clean.
func (p *Parser) resetValueScan() {
	p.pendingValue = p.pendingValue[:0]
	p.pendingValueActive = false
	p.escPhase = escapeNone
	p.hexLen = 0
	p.haveHighSurrogate = false
	p.highSurrogate = 0
}

// scanQuotedString decodes an attribute value opened by quote (spec
// §4.4). The opening quote has already been consumed by the caller.
func (p *Parser) scanQuotedString(quote byte) (string, result, error) {
	return p.scanValue(false, quote)
}

// scanText decodes a text node's character data, stopping before (not
// consuming) the next '<' (spec §4.4).
func (p *Parser) scanText() (string, result, error) {
	return p.scanValue(true, 0)
}

// scanValue is the shared resumable scanner behind scanQuotedString and
// scanText. isText selects entity decoding (text nodes) over backslash
// escape decoding (quoted attribute values); quote is the terminating
// quote byte for the latter.
func (p *Parser) scanValue(isText bool, quote byte) (string, result, error) {
	if p.escPhase == escapeNone && !p.pendingValueActive {
		if value, ok := p.tryZeroCopyValue(isText, quote); ok {
			return value, resOK, nil
		}
		p.pendingValueActive = true
	}

	for {
		switch p.escPhase {
		case escapeNone:
			res, done, err := p.scanLiteralRun(isText, quote)
			if err != nil {
				p.resetValueScan()
				return "", resOK, err
			}
			if res == resCancelled {
				return "", resCancelled, nil
			}
			if done {
				value := string(p.pendingValue)
				p.resetValueScan()
				return value, resOK, nil
			}
			// A trigger byte (backslash or '&') was consumed and escPhase
			// advanced; loop to resolve it.
		case escapeBackslash:
			b, have := p.cur.peek()
			if !have {
				return "", resCancelled, nil
			}
			p.cur.advance(1)
			if err := p.applyBackslashEscape(b); err != nil {
				p.resetValueScan()
				return "", resOK, err
			}
		case escapeUnicodeHex:
			res, err := p.collectHexDigit()
			if err != nil {
				p.resetValueScan()
				return "", resOK, err
			}
			if res == resCancelled {
				return "", resCancelled, nil
			}
		case escapeLowBackslash:
			b, have := p.cur.peek()
			if !have {
				return "", resCancelled, nil
			}
			if b != '\\' {
				if err := p.resolveUnpairedHighSurrogate(); err != nil {
					p.resetValueScan()
					return "", resOK, err
				}
				continue
			}
			p.cur.advance(1)
			p.escPhase = escapeLowU
		case escapeLowU:
			b, have := p.cur.peek()
			if !have {
				return "", resCancelled, nil
			}
			if b != 'u' {
				snippet, caret := snippetAround(p.cur.buf, p.cur.pos)
				p.resetValueScan()
				return "", resOK, newError(KindInvalidLowSurrogate, snippet, caret,
					"Invalid low surrogate: expected \\u escape after high surrogate.")
			}
			p.cur.advance(1)
			p.hexLen = 0
			p.escPhase = escapeUnicodeHex
		}
	}
}

// tryZeroCopyValue attempts the fast path of spec §4.4: if the value's
// terminator is found within the current window before any escape trigger,
// the decoded value aliases the input directly (invariant I6) and no
// pendingValue accumulation is needed at all.
func (p *Parser) tryZeroCopyValue(isText bool, quote byte) (string, bool) {
	cur := &p.cur
	trigger := byte('\\')
	terminator := quote
	if isText {
		trigger = '&'
		terminator = '<'
	}
	termIdx := cur.indexByteFrom(terminator)
	if termIdx < 0 {
		return "", false
	}
	triggerIdx := cur.indexByteFrom(trigger)
	if triggerIdx >= 0 && triggerIdx < termIdx {
		return "", false
	}
	value := string(cur.buf[cur.pos : cur.pos+termIdx])
	cur.advance(termIdx)
	if !isText {
		cur.advance(1) // consume the closing quote
	}
	return value, true
}

// scanLiteralRun consumes bytes up to the next trigger or terminator
// within the currently available window, appending literal bytes to
// pendingValue as it goes. done reports whether the terminator itself was
// reached (the value is complete); otherwise a trigger byte was consumed
// and the caller should resolve it (escPhase has been advanced) before
// calling scanLiteralRun again.
func (p *Parser) scanLiteralRun(isText bool, quote byte) (res result, done bool, err error) {
	cur := &p.cur
	trigger := byte('\\')
	terminator := quote
	if isText {
		trigger = '&'
		terminator = '<'
	}
	start := cur.pos
	termIdx := cur.indexByteFrom(terminator)
	triggerIdx := cur.indexByteFrom(trigger)

	nearest := -1
	switch {
	case termIdx < 0 && triggerIdx < 0:
		nearest = -1
	case termIdx < 0:
		nearest = triggerIdx
	case triggerIdx < 0:
		nearest = termIdx
	case triggerIdx < termIdx:
		nearest = triggerIdx
	default:
		nearest = termIdx
	}

	if nearest < 0 {
		p.pendingValue = append(p.pendingValue, cur.buf[start:cur.limit]...)
		cur.advance(cur.limit - cur.pos)
		return resCancelled, false, nil
	}

	p.pendingValue = append(p.pendingValue, cur.buf[start:start+nearest]...)
	cur.advance(nearest)

	if nearest == termIdx && (triggerIdx < 0 || termIdx <= triggerIdx) {
		if !isText {
			cur.advance(1) // consume the closing quote
		}
		return resOK, true, nil
	}

	// The trigger was hit first.
	if isText {
		res, err := p.consumeTextEntity()
		if err != nil {
			return resOK, false, err
		}
		return res, false, nil
	}
	cur.advance(1) // consume '\\'
	p.escPhase = escapeBackslash
	return resOK, false, nil
}

// consumeTextEntity decodes one of the five predefined entity references
// starting at the cursor's current '&' (spec §4.4). It does not consume
// the '&' unless the whole reference, including its closing ';', is
// available — so a chunk boundary inside an entity reference looks like
// ordinary suspension, not a hard error.
func (p *Parser) consumeTextEntity() (result, error) {
	cur := &p.cur
	semi := cur.indexByteFrom(';')
	if semi < 0 {
		if cur.remaining() > maxEntityLookahead {
			snippet, caret := snippetAround(cur.buf, cur.pos)
			return resOK, newError(KindInvalidText, snippet, caret,
				"Invalid text: unterminated entity reference.")
		}
		return resCancelled, nil
	}
	name := string(cur.buf[cur.pos+1 : cur.pos+semi])
	ch, ok := textEntities[name]
	if !ok {
		snippet, caret := snippetAround(cur.buf, cur.pos)
		return resOK, newError(KindInvalidText, snippet, caret,
			"Invalid text: unrecognized entity reference '&%s;'.", name)
	}
	p.pendingValue = append(p.pendingValue, ch)
	cur.advance(semi + 1)
	return resOK, nil
}

// applyBackslashEscape resolves the character following a backslash
// already consumed by the caller (spec §4.4): the six literal mappings,
// the \u unicode escape, or "any other \c yields c".
func (p *Parser) applyBackslashEscape(b byte) error {
	if b == 'u' {
		p.hexLen = 0
		p.escPhase = escapeUnicodeHex
		return nil
	}
	if mapped, ok := backslashLiterals[b]; ok {
		p.pendingValue = append(p.pendingValue, mapped)
		p.escPhase = escapeNone
		return nil
	}
	if b >= utf8.RuneSelf {
		// A non-ASCII byte directly after a backslash: decode the rune it
		// starts so multi-byte "any other \c" escapes are handled, but
		// reject outright invalid UTF-8 rather than silently emitting it.
		rest := p.cur.buf[p.cur.pos-1:]
		r, size := mem.DecodeRune(mem.B(rest))
		if r == utf8.RuneError && size <= 1 {
			snippet, caret := snippetAround(p.cur.buf, p.cur.pos-1)
			return newError(KindInvalidEscapeSequence, snippet, caret,
				"Invalid escape sequence: backslash followed by invalid UTF-8.")
		}
		p.pendingValue = append(p.pendingValue, rest[:size]...)
		p.cur.advance(size - 1)
		p.escPhase = escapeNone
		return nil
	}
	p.pendingValue = append(p.pendingValue, b)
	p.escPhase = escapeNone
	return nil
}

// collectHexDigit consumes one hex digit of a \uXXXX escape. Once four
// digits have been collected it resolves the code unit: a literal BMP
// rune, the second half of a surrogate pair, or the first half (which
// then requires a second \u escape to complete, tracked via
// escapeLowBackslash/escapeLowU).
func (p *Parser) collectHexDigit() (result, error) {
	b, have := p.cur.peek()
	if !have {
		return resCancelled, nil
	}
	digit, ok := hexDigitValue(b)
	if !ok {
		snippet, caret := snippetAround(p.cur.buf, p.cur.pos)
		return resOK, newError(KindIllegalHexString, snippet, caret,
			"Illegal hex string: %q is not a valid hex digit.", b)
	}
	p.cur.advance(1)
	p.hexBuf[p.hexLen] = digit
	p.hexLen++
	if p.hexLen < 4 {
		return resOK, nil
	}
	var cu uint16
	for _, d := range p.hexBuf[:4] {
		cu = cu<<4 | uint16(d)
	}
	return resOK, p.resolveCodeUnit(cu)
}

func hexDigitValue(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}

const (
	highSurrogateStart = 0xD800
	highSurrogateEnd   = 0xDBFF
	lowSurrogateStart  = 0xDC00
	lowSurrogateEnd    = 0xDFFF
)

// resolveCodeUnit finishes decoding a single \uXXXX escape (spec §4.4):
// a plain code point, the low half completing a pending high surrogate, or
// a fresh high surrogate awaiting its pair.
func (p *Parser) resolveCodeUnit(cu uint16) error {
	switch {
	case p.haveHighSurrogate:
		if cu < lowSurrogateStart || cu > lowSurrogateEnd {
			snippet, caret := snippetAround(p.cur.buf, p.cur.pos)
			return newError(KindInvalidLowSurrogate, snippet, caret,
				"Invalid low surrogate: \\u%04x is not a low surrogate.", cu)
		}
		cp := ((p.highSurrogate & 0x3FF) << 10 | (rune(cu) & 0x3FF)) + 0x10000
		p.pendingValue = utf8.AppendRune(p.pendingValue, cp)
		p.haveHighSurrogate = false
		p.escPhase = escapeNone
		return nil
	case cu >= highSurrogateStart && cu <= highSurrogateEnd:
		p.haveHighSurrogate = true
		p.highSurrogate = rune(cu)
		p.escPhase = escapeLowBackslash
		return nil
	case cu >= lowSurrogateStart && cu <= lowSurrogateEnd:
		snippet, caret := snippetAround(p.cur.buf, p.cur.pos)
		return newError(KindInvalidLowSurrogate, snippet, caret,
			"Invalid low surrogate: \\u%04x has no preceding high surrogate.", cu)
	default:
		p.pendingValue = utf8.AppendRune(p.pendingValue, rune(cu))
		p.escPhase = escapeNone
		return nil
	}
}

// resolveUnpairedHighSurrogate is reached once it is clear no \u low
// surrogate follows a pending high surrogate (spec §4.4): fail, unless
// UTF-8 coercion is enabled, in which case the lone surrogate is replaced
// by the Unicode replacement character rather than the caller's configured
// byte-level UTF8Replacement string (that setting is specifically about
// raw invalid bytes in leftover, spec §4.5, not this escape-level case).
func (p *Parser) resolveUnpairedHighSurrogate() error {
	if p.opts.coerceToUTF8 {
		p.pendingValue = utf8.AppendRune(p.pendingValue, utf8.RuneError)
		p.haveHighSurrogate = false
		p.escPhase = escapeNone
		return nil
	}
	snippet, caret := snippetAround(p.cur.buf, p.cur.pos)
	return newError(KindMissingLowSurrogate, snippet, caret,
		"Missing low surrogate: unpaired high surrogate \\u%04x.", uint16(p.highSurrogate))
}
