package xmlparse

// stepBeginElement implements BEGIN_ELEMENT (spec §4.2): wait for the next
// tag's opening '<'.
func (p *Parser) stepBeginElement() (result, error) {
	cur := &p.cur
	switch classify(cur, stateBeginElement) {
	case tokenUnknown:
		return resCancelled, nil
	case tokenOpenTag:
		cur.advance(1)
		p.stack = append(p.stack, stateStartTag)
		return resOK, nil
	default:
		snippet, caret := snippetAround(cur.buf, cur.pos)
		return resOK, newError(KindExpectedOpenTag, snippet, caret, "Expected an open tag.")
	}
}

// stepStartTag implements START_TAG: a tag name, a "</" close, or a
// comment/declaration to skip before trying again (spec §4.2, §4.6).
func (p *Parser) stepStartTag(finishing bool) (result, error) {
	cur := &p.cur

	if p.skippingComment {
		res, err := p.skipComment(finishing)
		if err != nil {
			return resOK, err
		}
		if res == resCancelled {
			return resCancelled, nil
		}
		p.skippingComment = false
		p.stack = append(p.stack, stateBeginElement)
		return resOK, nil
	}
	if p.skippingDeclaration {
		res, err := p.skipDeclaration(finishing)
		if err != nil {
			return resOK, err
		}
		if res == resCancelled {
			return resCancelled, nil
		}
		p.skippingDeclaration = false
		p.stack = append(p.stack, stateBeginElement)
		return resOK, nil
	}
	if p.pendingNameActive {
		nameStart := cur.pos
		name, res := p.scanName()
		if res == resCancelled {
			return resCancelled, nil
		}
		if err := p.openElement(name, nameStart); err != nil {
			return resOK, err
		}
		p.stack = append(p.stack, stateBeginElementMid)
		return resOK, nil
	}

	switch classify(cur, stateStartTag) {
	case tokenUnknown:
		return resCancelled, nil
	case tokenDeclaration:
		cur.advance(1)
		p.skippingDeclaration = true
		return p.stepStartTag(finishing)
	case tokenComment:
		cur.advance(1)
		p.skippingComment = true
		return p.stepStartTag(finishing)
	case tokenEndTagSlash:
		cur.advance(1)
		p.stack = append(p.stack, stateEndTag)
		return resOK, nil
	case tokenBeginKey:
		nameStart := cur.pos
		name, res := p.scanName()
		if res == resCancelled {
			return resCancelled, nil
		}
		if err := p.openElement(name, nameStart); err != nil {
			return resOK, err
		}
		p.stack = append(p.stack, stateBeginElementMid)
		return resOK, nil
	default:
		snippet, caret := snippetAround(cur.buf, cur.pos)
		return resOK, newError(KindExpectedTagName, snippet, caret, "Expected a tag name.")
	}
}

// stepBeginElementMid implements BEGIN_ELEMENT_MID: after a tag name, either
// an attribute follows or the tag closes.
func (p *Parser) stepBeginElementMid() (result, error) {
	cur := &p.cur
	switch classify(cur, stateBeginElementMid) {
	case tokenUnknown:
		return resCancelled, nil
	case tokenAttrSeparator:
		cur.advance(1)
		p.stack = append(p.stack, stateAttrKey)
		return resOK, nil
	case tokenCloseTag:
		cur.advance(1)
		p.stack = append(p.stack, stateText)
		return resOK, nil
	default:
		snippet, caret := snippetAround(cur.buf, cur.pos)
		return resOK, newError(KindExpectedSpaceOrCloseTag, snippet, caret, "Expected a space or a close tag.")
	}
}

// stepAttrKey implements ATTR_KEY: an attribute name, or the "/" that
// self-closes the element.
func (p *Parser) stepAttrKey() (result, error) {
	cur := &p.cur
	if p.pendingNameActive {
		key, res := p.scanName()
		if res == resCancelled {
			return resCancelled, nil
		}
		p.attrKey = key
		p.stack = append(p.stack, stateAttrMid)
		return resOK, nil
	}
	switch classify(cur, stateAttrKey) {
	case tokenUnknown:
		return resCancelled, nil
	case tokenBeginKey:
		key, res := p.scanName()
		if res == resCancelled {
			return resCancelled, nil
		}
		p.attrKey = key
		p.stack = append(p.stack, stateAttrMid)
		return resOK, nil
	case tokenEndTagSlash:
		cur.advance(1)
		p.stack = append(p.stack, stateBeginElementClose)
		return resOK, nil
	default:
		snippet, caret := snippetAround(cur.buf, cur.pos)
		return resOK, newError(KindExpectedBeginKeyOrSlash, snippet, caret, "Expected a begin key or a slash.")
	}
}

// stepAttrMid implements ATTR_MID: the '=' between an attribute's key and
// value.
func (p *Parser) stepAttrMid() (result, error) {
	cur := &p.cur
	switch classify(cur, stateAttrMid) {
	case tokenUnknown:
		return resCancelled, nil
	case tokenAttrValueSeparator:
		cur.advance(1)
		p.stack = append(p.stack, stateAttrValue)
		return resOK, nil
	default:
		snippet, caret := snippetAround(cur.buf, cur.pos)
		return resOK, newError(KindExpectedEqualMark, snippet, caret, "Expected an equal mark.")
	}
}

// stepAttrValue implements ATTR_VALUE: the quoted, possibly escaped
// attribute value itself (spec §4.4).
func (p *Parser) stepAttrValue() (result, error) {
	cur := &p.cur
	if !p.pendingValueActive && p.escPhase == escapeNone {
		switch classify(cur, stateAttrValue) {
		case tokenUnknown:
			return resCancelled, nil
		case tokenBeginString:
			q, _ := cur.peek()
			cur.advance(1)
			p.valueQuote = q
		default:
			snippet, caret := snippetAround(cur.buf, cur.pos)
			return resOK, newError(KindExpectedQuoteBeforeAttrValue, snippet, caret,
				"Expected a quote before the attribute value.")
		}
	}
	value, res, err := p.scanQuotedString(p.valueQuote)
	if err != nil {
		return resOK, err
	}
	if res == resCancelled {
		return resCancelled, nil
	}
	if err := p.sink.RenderScalar(p.attrKey, value); err != nil {
		return resOK, err
	}
	p.stack = append(p.stack, stateBeginElementMid)
	return resOK, nil
}

// stepBeginElementClose implements BEGIN_ELEMENT_CLOSE: the '>' that
// self-closes an element opened with a trailing '/' — closed directly here,
// since no explicit "</tag>" will ever arrive for it.
func (p *Parser) stepBeginElementClose() (result, error) {
	cur := &p.cur
	switch classify(cur, stateBeginElementClose) {
	case tokenUnknown:
		return resCancelled, nil
	case tokenCloseTag:
		cur.advance(1)
		closeTag := p.tags[len(p.tags)-1].closeTagName()
		if err := p.closeElement(closeTag, cur.pos); err != nil {
			return resOK, err
		}
		return resOK, nil
	default:
		snippet, caret := snippetAround(cur.buf, cur.pos)
		return resOK, newError(KindExpectedCloseTagInBeginElement, snippet, caret,
			"Expected a close tag in begin element.")
	}
}

// stepText implements TEXT: either a child element opens, the current
// element's own close tag follows immediately (no text at all), or
// character data runs up to the next '<' (spec §4.2, §4.4). Whitespace is
// significant here, so this bypasses classify's whitespace-skipping
// entirely rather than risk losing literal text content.
func (p *Parser) stepText() (result, error) {
	cur := &p.cur
	if p.pendingValueActive || p.escPhase != escapeNone {
		return p.finishTextScan()
	}
	b, have := cur.peek()
	if !have {
		return resCancelled, nil
	}
	if b == '<' {
		b2, have2 := cur.peekAt(1)
		if !have2 {
			return resCancelled, nil
		}
		if b2 == '/' {
			// No content between the open and close tags: go straight to
			// END_TAG. Pushing TEXT here (per the naive reading of the
			// transition table) would leave a TEXT frame that nothing ever
			// pops for every empty sibling element in the document.
			cur.advance(2)
			p.stack = append(p.stack, stateEndTag)
			return resOK, nil
		}
		cur.advance(1)
		p.stack = append(p.stack, stateText)
		p.stack = append(p.stack, stateStartTag)
		return resOK, nil
	}
	return p.finishTextScan()
}

func (p *Parser) finishTextScan() (result, error) {
	value, res, err := p.scanText()
	if err != nil {
		return resOK, err
	}
	if res == resCancelled {
		return resCancelled, nil
	}
	if err := p.sink.RenderScalar("", value); err != nil {
		return resOK, err
	}
	p.stack = append(p.stack, stateEndElement)
	return resOK, nil
}

// stepEndElement implements END_ELEMENT: the '<' that follows a text node
// and introduces its closing tag.
func (p *Parser) stepEndElement() (result, error) {
	cur := &p.cur
	b, have := cur.peek()
	if !have {
		return resCancelled, nil
	}
	if b != '<' {
		snippet, caret := snippetAround(cur.buf, cur.pos)
		return resOK, newError(KindExpectedOpenTagInEndElement, snippet, caret,
			"Expected an open tag in end element.")
	}
	cur.advance(1)
	p.stack = append(p.stack, stateEndElementMid)
	return resOK, nil
}

// stepEndElementMid implements END_ELEMENT_MID: the '/' of a closing tag.
func (p *Parser) stepEndElementMid() (result, error) {
	cur := &p.cur
	b, have := cur.peek()
	if !have {
		return resCancelled, nil
	}
	if b != '/' {
		snippet, caret := snippetAround(cur.buf, cur.pos)
		return resOK, newError(KindExpectedEndTagSlash, snippet, caret, "Expected an end tag slash.")
	}
	cur.advance(1)
	p.stack = append(p.stack, stateEndTag)
	return resOK, nil
}

// stepEndTag implements END_TAG: the closing tag's name, validated against
// the tag stack.
func (p *Parser) stepEndTag() (result, error) {
	cur := &p.cur
	if p.pendingNameActive {
		nameStart := cur.pos
		name, res := p.scanName()
		if res == resCancelled {
			return resCancelled, nil
		}
		return resOK, p.finishEndTag(name, nameStart)
	}
	switch classify(cur, stateEndTag) {
	case tokenUnknown:
		return resCancelled, nil
	case tokenBeginKey:
		nameStart := cur.pos
		name, res := p.scanName()
		if res == resCancelled {
			return resCancelled, nil
		}
		return resOK, p.finishEndTag(name, nameStart)
	default:
		snippet, caret := snippetAround(cur.buf, cur.pos)
		return resOK, newError(KindExpectedTagNameInEndTag, snippet, caret, "Expected a tag name in end tag.")
	}
}

func (p *Parser) finishEndTag(name string, nameStart int) error {
	if len(p.tags) == 0 {
		snippet, caret := snippetAround(p.cur.buf, nameStart)
		return newError(KindTagNameNotMatch, snippet, caret,
			"Unexpected closing tag '%s': no open element.", name)
	}
	if err := p.closeElement(name, nameStart); err != nil {
		return err
	}
	p.stack = append(p.stack, stateEndElementClose)
	return nil
}

// stepEndElementClose implements END_ELEMENT_CLOSE: the '>' that finishes a
// closing tag.
func (p *Parser) stepEndElementClose() (result, error) {
	cur := &p.cur
	switch classify(cur, stateEndElementClose) {
	case tokenUnknown:
		return resCancelled, nil
	case tokenCloseTag:
		cur.advance(1)
		return resOK, nil
	default:
		snippet, caret := snippetAround(cur.buf, cur.pos)
		return resOK, newError(KindExpectedCloseInEndElement, snippet, caret, "Expected a close in end element.")
	}
}
