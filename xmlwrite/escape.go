package xmlwrite

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// escapeAttr escapes an attribute value the way the parser's quoted-string
// scanner expects to read it back (spec §4.4's backslash escapes): the
// active quote character, backslash, and the named control escapes.
// '<' and '>' pass through literally — the attribute scanner only
// terminates a value on its matching quote, never on '<'/'>', so escaping
// them buys nothing here (see DESIGN.md's Open Question decision).
// Control characters outside the named set fall back to \uXXXX; other
// runes pass through unescaped.
func escapeAttr(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '<':
			b.WriteString(`<`)
		case '>':
			b.WriteString(`>`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// escapeText escapes a text-node (or <anonymous>-wrapped list primitive)
// value. Unlike attribute position, the parser's text scanner (spec §4.4)
// does not interpret backslash at all — only the five predefined entity
// references and a literal '<' terminator — so the only escapes that
// round-trip here are the entity forms, not \uXXXX.
func escapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EncodeBytes base64-encodes data for the bytes-field wire representation
// (spec §4.7, §6.4). The web-safe variant uses '-'/'_' and keeps '='
// padding, matching base64.URLEncoding exactly (as opposed to
// base64.RawURLEncoding, which would strip the padding the spec requires
// be preserved).
func EncodeBytes(data []byte, websafe bool) string {
	if websafe {
		return base64.URLEncoding.EncodeToString(data)
	}
	return base64.StdEncoding.EncodeToString(data)
}
