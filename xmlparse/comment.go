package xmlparse

import "bytes"

// skipComment consumes a "<!--...-->" construct (spec §4.6). The caller
// has already consumed "<!"; skipComment requires the two leading dashes,
// then discards everything up to and including the closing "-->". It is
// resumable: on a cut-off mid-comment it returns resCancelled without
// advancing past what it has confirmed is not part of the terminator.
func (p *Parser) skipComment(finishing bool) (result, error) {
	cur := &p.cur
	if !p.commentDashesSeen {
		for p.commentDashIdx < 2 {
			b, have := cur.peek()
			if !have {
				if finishing {
					snippet, caret := snippetAround(cur.buf, cur.pos)
					return resOK, newError(KindExpectedDashInComment, snippet, caret,
						"Expected a dash in comment.")
				}
				return resCancelled, nil
			}
			if b != '-' {
				snippet, caret := snippetAround(cur.buf, cur.pos)
				if p.commentDashIdx == 0 {
					return resOK, newError(KindIllegalComment, snippet, caret,
						"Illegal comment: expected \"<!--\".")
				}
				return resOK, newError(KindExpectedDashInComment, snippet, caret,
					"Expected a dash in comment.")
			}
			cur.advance(1)
			p.commentDashIdx++
		}
		p.commentDashesSeen = true
	}
	idx := bytes.Index(cur.buf[cur.pos:cur.limit], []byte("-->"))
	if idx < 0 {
		if finishing {
			snippet, caret := snippetAround(cur.buf, cur.pos)
			return resOK, newError(KindExpectedCloseDashInComment, snippet, caret,
				"Expected the closing \"-->\" of a comment.")
		}
		return resCancelled, nil
	}
	cur.advance(idx + 3)
	p.commentDashesSeen = false
	p.commentDashIdx = 0
	return resOK, nil
}

// skipDeclaration consumes a "<?...?>" construct (spec §4.6). The caller
// has already consumed "<?".
func (p *Parser) skipDeclaration(finishing bool) (result, error) {
	cur := &p.cur
	idx := bytes.Index(cur.buf[cur.pos:cur.limit], []byte("?>"))
	if idx < 0 {
		if finishing {
			snippet, caret := snippetAround(cur.buf, cur.pos)
			return resOK, newError(KindExpectedCloseQuestionMarkInDeclaration, snippet, caret,
				"Expected the closing \"?>\" of a declaration.")
		}
		return resCancelled, nil
	}
	cur.advance(idx + 2)
	return resOK, nil
}
