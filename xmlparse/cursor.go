package xmlparse

import (
	"unicode/utf8"

	"go4.org/mem"
)

// cursor holds the parser's view of the logical input stream assembled
// from successive Parse(chunk) calls (spec §3's Chunk/leftover model).
//
// buf accumulates every byte not yet consumed by the state machine: the
// previous call's leftover, followed by the newest chunk. pos is the
// read cursor into buf. limit is recomputed at the top of every Parse
// call and is the length of the longest structurally valid UTF-8 prefix
// of buf (spec §4.5) — the tokenizer is never allowed to read past limit,
// so a chunk boundary that lands mid-rune, or a chunk that ends in
// outright invalid UTF-8, both look exactly like "no more data yet" to
// the state machine and trigger ordinary suspension instead of a hard
// error. NON_UTF_8 is only ever raised from FinishParse, once no more
// chunks can arrive to complete or correct the tail (spec §4.5).
type cursor struct {
	buf   []byte
	pos   int
	limit int
}

// feed appends chunk to the unconsumed tail and recomputes limit.
func (c *cursor) feed(chunk []byte) {
	if c.pos > 0 {
		c.buf = append(c.buf[:0], c.buf[c.pos:]...)
		c.pos = 0
	}
	c.buf = append(c.buf, chunk...)
	c.limit = validUTF8PrefixLen(c.buf)
}

// leftover reports the bytes not yet consumed by the tokenizer, valid or
// not (spec's I5: leftover never contains bytes already consumed by p).
func (c *cursor) leftover() []byte {
	return c.buf[c.pos:]
}

// empty reports whether the cursor has no more bytes available to read,
// within the current chunk's validated boundary.
func (c *cursor) empty() bool {
	return c.pos >= c.limit
}

// peek returns the byte at the cursor without advancing, and whether one
// was available.
func (c *cursor) peek() (byte, bool) {
	if c.empty() {
		return 0, false
	}
	return c.buf[c.pos], true
}

// peekAt returns the byte at offset n from the cursor without advancing.
func (c *cursor) peekAt(n int) (byte, bool) {
	idx := c.pos + n
	if idx >= c.limit {
		return 0, false
	}
	return c.buf[idx], true
}

// advance consumes n bytes from the cursor.
func (c *cursor) advance(n int) {
	c.pos += n
}

// remaining reports how many validated bytes are left to read.
func (c *cursor) remaining() int {
	return c.limit - c.pos
}

// hasPrefix reports whether the validated remainder begins with s.
func (c *cursor) hasPrefix(s string) bool {
	if c.remaining() < len(s) {
		return false
	}
	return string(c.buf[c.pos:c.pos+len(s)]) == s
}

// indexByteFrom returns the index (relative to the cursor) of the first
// occurrence of b at or after the cursor, within the validated window, or
// -1 if not found. Delegates to go4.org/mem's zero-copy RO scan, the same
// scan-for-trigger-byte idiom creachadair-jtree's escape unquoter uses to
// find the next backslash without allocating.
func (c *cursor) indexByteFrom(b byte) int {
	return mem.IndexByte(mem.B(c.buf[c.pos:c.limit]), b)
}

// validUTF8PrefixLen returns the length of the longest prefix of data
// that is structurally valid UTF-8, treating a rune truncated by the end
// of data as "not yet decided" rather than invalid — exactly the
// distinction utf8.FullRune draws, which is what makes this safe to call
// on a chunk that may end mid-rune.
func validUTF8PrefixLen(data []byte) int {
	i := 0
	for i < len(data) {
		if !utf8.FullRune(data[i:]) {
			break
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			break
		}
		i += size
	}
	return i
}

// coerceUTF8 rewrites data, replacing each byte that cannot begin (or
// continue) a valid UTF-8 rune with replacement, byte at a time, per
// spec §4.5's FinishParse coercion rule.
func coerceUTF8(data []byte, replacement string) []byte {
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size <= 1 {
			out = append(out, replacement...)
			if len(data) > 0 {
				data = data[1:]
			}
			continue
		}
		out = append(out, data[:size]...)
		data = data[size:]
	}
	return out
}
