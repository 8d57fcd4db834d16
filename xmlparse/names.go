package xmlparse

// scanName consumes a run of name bytes (spec §4.1's identifier lexical
// rule: the caller has already confirmed the first byte is a valid name
// start) starting at the cursor, and reports the accumulated name once a
// non-name byte is found. It is resumable: if the window runs out before a
// terminator appears, the consumed prefix is stashed in pendingName and
// scanName reports resCancelled.
func (p *Parser) scanName() (string, result) {
	cur := &p.cur
	start := cur.pos
	for cur.pos < cur.limit && isNameByte(cur.buf[cur.pos]) {
		cur.pos++
	}
	if cur.pos < cur.limit {
		seg := cur.buf[start:cur.pos]
		if p.pendingNameActive {
			p.pendingName = append(p.pendingName, seg...)
			name := string(p.pendingName)
			p.pendingName = p.pendingName[:0]
			p.pendingNameActive = false
			return name, resOK
		}
		return string(seg), resOK
	}
	p.pendingName = append(p.pendingName, cur.buf[start:cur.pos]...)
	p.pendingNameActive = true
	return "", resCancelled
}
