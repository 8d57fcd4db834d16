// Package xmlparse implements the CORE chunked XML stream parser: a
// hand-rolled, resumable tokenizer and pushdown-automaton parser for the
// dialect documented in the package's design notes (the "_list_" prefix
// for repeated fields, "anonymous" wrapping for list primitives, and
// "root" for the outer envelope). It drives an xmlevent.Sink in strict
// source order and never blocks: Parse accepts one chunk at a time and
// suspends at its end if more input is needed, resuming seamlessly on the
// next call.
package xmlparse

import "github.com/williammuji/pb-xml-util/xmlevent"

// result is the internal outcome of a single parse step: either it made
// progress (resOK, possibly having pushed follow-up states) or it ran out
// of validated input and needs another chunk (resCancelled). resCancelled
// is never returned to a caller of Parse or FinishParse; it is purely an
// internal suspension marker (spec §5's "cancelled sentinel").
type result int

const (
	resOK result = iota
	resCancelled
)

// Parser is a resumable, chunk-at-a-time decoder for the XML dialect this
// package implements. One Parser decodes exactly one document; after
// FinishParse succeeds, or after any method returns an error, the
// instance must be discarded (spec §7: "the caller discards it"). A
// malformed-input *Error poisons the instance, so every later Parse or
// FinishParse returns it again; an error returned by the Sink is passed
// through without being recorded.
type Parser struct {
	opts Options
	sink xmlevent.Sink

	cur   cursor
	stack []parseType

	tags  []elementFrame
	depth int

	// Name accumulation, shared by tag names, attribute keys, and close
	// tag names (spec's "persists any partial key ... into owned
	// storage"). Only one name can be mid-scan at a time, since only the
	// top-of-stack state is ever actively advancing.
	pendingName       []byte
	pendingNameActive bool

	// Value accumulation for the attribute value or text node currently
	// being scanned (spec I6). See value.go.
	pendingValue       []byte
	pendingValueActive bool
	valueQuote         byte // the quote byte terminating the active ATTR_VALUE scan
	attrKey            string

	escPhase          escapePhase
	hexBuf            [4]byte
	hexLen            int
	haveHighSurrogate bool
	highSurrogate     rune

	skippingComment     bool
	skippingDeclaration bool
	commentDashesSeen   bool
	commentDashIdx      int

	done bool
	err  *Error
}

// New returns a Parser that drives sink as it decodes a document, combined
// from opts in declaration order (spec §6.2).
func New(sink xmlevent.Sink, opts ...Options) *Parser {
	return &Parser{
		sink:  sink,
		opts:  JoinOptions(opts...),
		stack: []parseType{stateBeginElement},
	}
}

// Parse feeds one chunk of input to the parser. It returns nil if the
// chunk was fully consumed (whether or not that completed the document),
// or the hard error that poisoned the parser. Parse never blocks: if the
// chunk ends mid-construct, the unresolved work is stashed internally and
// picked up by the next call (spec §4.2's suspension semantics, P1).
func (p *Parser) Parse(chunk []byte) error {
	if p.err != nil {
		return p.err
	}
	p.cur.feed(chunk)
	return p.run(false)
}

// FinishParse signals that no further chunks are coming. Any suspended
// work that cannot be resolved from the bytes already buffered is
// promoted to a hard error; on success every stack is empty and leftover
// is fully consumed (invariant I3).
func (p *Parser) FinishParse() error {
	if p.err != nil {
		return p.err
	}
	if p.done {
		return nil
	}
	if p.opts.coerceToUTF8 {
		p.coerceTrailingUTF8()
	} else if p.cur.limit < len(p.cur.buf) {
		// No more chunks can arrive to complete or correct this tail (spec
		// §4.5), and it falls outside the longest valid UTF-8 prefix: it is
		// not truncation, it is invalid.
		snippet, caret := snippetAround(p.cur.buf, p.cur.limit)
		return p.poison(newError(KindNonUTF8, snippet, caret, "Input is not valid UTF-8."))
	}
	if err := p.run(true); err != nil {
		return err
	}
	if tail := p.cur.leftover(); len(tail) > 0 {
		snippet, caret := snippetAround(p.cur.buf, p.cur.pos)
		return p.poison(newError(KindParsingTerminatedBeforeEndOfInput, snippet, caret,
			"Parsing terminated before end of input."))
	}
	p.done = true
	return nil
}

// coerceTrailingUTF8 rewrites any buffered bytes beyond the last validated
// UTF-8 prefix using the configured replacement sequence (spec §4.5),
// so FinishParse's final run over the document sees only valid UTF-8.
func (p *Parser) coerceTrailingUTF8() {
	cur := &p.cur
	if cur.limit >= len(cur.buf) {
		return
	}
	fixed := coerceUTF8(cur.buf[cur.limit:], p.opts.replacement())
	cur.buf = append(cur.buf[:cur.limit], fixed...)
	cur.limit = len(cur.buf)
}

// run drives the explicit-stack pushdown automaton until it either
// suspends for more input, exhausts the stack (the document is
// complete), or hits a hard error. During finishing, a suspension is
// immediately promoted to the error its context implies, since no more
// chunks can arrive to resolve it.
func (p *Parser) run(finishing bool) error {
	for len(p.stack) > 0 {
		st := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]

		res, err := p.step(st, finishing)
		if err != nil {
			return p.poison(err)
		}
		if res == resCancelled {
			p.stack = append(p.stack, st)
			if finishing {
				return p.poison(p.promote(st))
			}
			return nil
		}
	}
	p.skipTrailingWhitespace()
	return nil
}

// skipTrailingWhitespace discards insignificant whitespace once the
// document's root element has closed, so a trailing newline (common after
// pretty-printed input) does not count as unparsed leftover at
// FinishParse.
func (p *Parser) skipTrailingWhitespace() {
	cur := &p.cur
	for cur.pos < cur.limit && isInsignificantWhitespace(cur.buf[cur.pos]) {
		cur.pos++
	}
}

// poison records err as the parser's terminal state (spec §7: "the
// instance is poisoned; the caller discards it") and returns it.
func (p *Parser) poison(err error) error {
	if xe, ok := err.(*Error); ok {
		p.err = xe
		return xe
	}
	// A Sink method rejected a value; propagate it verbatim (it is not an
	// *Error) without poisoning future Parse calls on structural grounds,
	// but the caller is expected to stop driving this instance regardless.
	return err
}

// step dispatches one parse-stack frame to its handler.
func (p *Parser) step(st parseType, finishing bool) (result, error) {
	switch st {
	case stateBeginElement:
		return p.stepBeginElement()
	case stateStartTag:
		return p.stepStartTag(finishing)
	case stateBeginElementMid:
		return p.stepBeginElementMid()
	case stateAttrKey:
		return p.stepAttrKey()
	case stateAttrMid:
		return p.stepAttrMid()
	case stateAttrValue:
		return p.stepAttrValue()
	case stateBeginElementClose:
		return p.stepBeginElementClose()
	case stateText:
		return p.stepText()
	case stateEndElement:
		return p.stepEndElement()
	case stateEndElementMid:
		return p.stepEndElementMid()
	case stateEndTag:
		return p.stepEndTag()
	case stateEndElementClose:
		return p.stepEndElementClose()
	default:
		panic("xmlparse: unknown parse state")
	}
}

// promote chooses the hard error a given state's suspension becomes once
// FinishParse establishes no further chunks are coming.
func (p *Parser) promote(st parseType) error {
	snippet, caret := snippetAround(p.cur.buf, p.cur.pos)
	switch st {
	case stateBeginElement:
		return newError(KindExpectedOpenTag, snippet, caret, "Expected an open tag.")
	case stateStartTag:
		return newError(KindExpectedTagName, snippet, caret, "Expected a tag name.")
	case stateBeginElementMid:
		return newError(KindExpectedSpaceOrCloseTag, snippet, caret, "Expected a space or a close tag.")
	case stateAttrKey:
		return newError(KindExpectedBeginKeyOrSlash, snippet, caret, "Expected a begin key or a slash.")
	case stateAttrMid:
		return newError(KindExpectedEqualMark, snippet, caret, "Expected an equal mark.")
	case stateAttrValue:
		if p.pendingValueActive || p.escPhase != escapeNone {
			return newError(KindExpectedClosingQuote, snippet, caret, "Expected a closing quote.")
		}
		return newError(KindExpectedQuoteBeforeAttrValue, snippet, caret, "Expected a quote before the attribute value.")
	case stateBeginElementClose:
		return newError(KindExpectedCloseTagInBeginElement, snippet, caret, "Expected a close tag in begin element.")
	case stateEndElement:
		return newError(KindExpectedOpenTagInEndElement, snippet, caret, "Expected an open tag in end element.")
	case stateEndElementMid:
		return newError(KindExpectedEndTagSlash, snippet, caret, "Expected an end tag slash.")
	case stateEndTag:
		return newError(KindExpectedTagNameInEndTag, snippet, caret, "Expected a tag name in end tag.")
	case stateEndElementClose:
		return newError(KindExpectedCloseInEndElement, snippet, caret, "Expected a close in end element.")
	default: // stateText
		return newError(KindParsingTerminatedBeforeEndOfInput, snippet, caret, "Parsing terminated before end of input.")
	}
}
