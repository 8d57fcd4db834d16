package xmlparse

// tokenKind is the result of classifying the next significant byte under
// the tokenizer rules of spec §4.1.
type tokenKind int

const (
	tokenUnknown tokenKind = iota
	tokenOpenTag
	tokenCloseTag
	tokenEndTagSlash
	tokenDeclaration
	tokenComment
	tokenBeginString
	tokenAttrSeparator
	tokenAttrValueSeparator
	tokenBeginKey
	tokenBeginText
)

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameByte(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9') || b == '-'
}

func isInsignificantWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// classify skips insignificant whitespace (subject to the BEGIN_ELEMENT_MID
// trailing-space exception, spec §4.1) and reports the kind of the next
// significant byte, without consuming it. Callers consume whatever bytes
// the chosen production actually needs. A tokenUnknown result means the
// cursor ran out of validated bytes and the caller must suspend.
func classify(cur *cursor, state parseType) tokenKind {
	for {
		b, ok := cur.peek()
		if !ok {
			return tokenUnknown
		}
		if state == stateBeginElementMid && b == ' ' && cur.remaining() == 1 {
			// A single trailing space that might be an attribute
			// separator is ambiguous at the very end of a chunk: we
			// cannot yet tell whether more attributes follow. Leave it
			// in leftover for the next chunk to decide (spec §4.1).
			return tokenUnknown
		}
		if state != stateBeginElementMid && isInsignificantWhitespace(b) {
			cur.advance(1)
			continue
		}
		switch {
		case b == '<':
			return tokenOpenTag
		case b == '>':
			return tokenCloseTag
		case b == '/':
			return tokenEndTagSlash
		case b == '?':
			return tokenDeclaration
		case b == '!':
			return tokenComment
		case b == '"' || b == '\'':
			return tokenBeginString
		case b == ' ':
			return tokenAttrSeparator
		case b == '=':
			return tokenAttrValueSeparator
		case isNameStart(b):
			return tokenBeginKey
		default:
			return tokenBeginText
		}
	}
}
