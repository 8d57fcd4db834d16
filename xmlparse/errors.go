package xmlparse

import "fmt"

// Kind is the closed set of error causes a Parser can report (spec §7).
// Every hard error the parser returns carries exactly one Kind.
type Kind int

const (
	// structural
	KindExpectedOpenTag Kind = iota
	KindExpectedCloseTag
	KindExpectedCloseTagInBeginElement
	KindExpectedOpenTagInEndElement
	KindExpectedCloseInEndElement
	KindExpectedSlash
	KindExpectedEndTagSlash
	KindExpectedSpaceOrCloseTag
	KindExpectedEqualMark
	KindExpectedQuoteBeforeAttrValue
	KindExpectedBeginKeyOrSlash
	KindExpectedTagName
	KindExpectedTagNameInEndTag
	KindTagNameNotMatch

	// lexical
	KindInvalidKey
	KindInvalidTagName
	KindInvalidEndTagName
	KindInvalidText
	KindExpectedClosingQuote
	KindIllegalHexString
	KindInvalidEscapeSequence
	KindMissingLowSurrogate
	KindInvalidLowSurrogate
	KindInvalidUnicode

	// stream
	KindNonUTF8
	KindParsingTerminatedBeforeEndOfInput
	KindMessageTooDeep

	// comment / declaration
	KindIllegalComment
	KindExpectedDashInComment
	KindIllegalCloseComment
	KindExpectedCloseDashInComment
	KindIllegalDeclaration
	KindExpectedQuestionMarkInComment
	KindIllegalCloseDeclaration
	KindExpectedCloseQuestionMarkInDeclaration
)

var kindNames = map[Kind]string{
	KindExpectedOpenTag:                        "EXPECTED_OPEN_TAG",
	KindExpectedCloseTag:                       "EXPECTED_CLOSE_TAG",
	KindExpectedCloseTagInBeginElement:         "EXPECTED_CLOSE_TAG_IN_BEGIN_ELEMENT",
	KindExpectedOpenTagInEndElement:            "EXPECTED_OPEN_TAG_IN_END_ELEMENT",
	KindExpectedCloseInEndElement:              "EXPECTED_CLOSE_IN_END_ELEMENT",
	KindExpectedSlash:                          "EXPECTED_SLASH",
	KindExpectedEndTagSlash:                    "EXPECTED_END_TAG_SLASH",
	KindExpectedSpaceOrCloseTag:                "EXPECTED_SPACE_OR_CLOSE_TAG",
	KindExpectedEqualMark:                      "EXPECTED_EQUAL_MARK",
	KindExpectedQuoteBeforeAttrValue:           "EXPECTED_QUOTE_BEFORE_ATTR_VALUE",
	KindExpectedBeginKeyOrSlash:                "EXPECTED_BEGIN_KEY_OR_SLASH",
	KindExpectedTagName:                        "EXPECTED_TAG_NAME",
	KindExpectedTagNameInEndTag:                "EXPECTED_TAG_NAME_IN_END_TAG",
	KindTagNameNotMatch:                        "TAG_NAME_NOT_MATCH",
	KindInvalidKey:                             "INVALID_KEY",
	KindInvalidTagName:                         "INVALID_TAG_NAME",
	KindInvalidEndTagName:                      "INVALID_END_TAG_NAME",
	KindInvalidText:                            "INVALID_TEXT",
	KindExpectedClosingQuote:                   "EXPECTED_CLOSING_QUOTE",
	KindIllegalHexString:                       "ILLEGAL_HEX_STRING",
	KindInvalidEscapeSequence:                  "INVALID_ESCAPE_SEQUENCE",
	KindMissingLowSurrogate:                    "MISSING_LOW_SURROGATE",
	KindInvalidLowSurrogate:                    "INVALID_LOW_SURROGATE",
	KindInvalidUnicode:                         "INVALID_UNICODE",
	KindNonUTF8:                                "NON_UTF_8",
	KindParsingTerminatedBeforeEndOfInput:      "PARSING_TERMINATED_BEFORE_END_OF_INPUT",
	KindMessageTooDeep:                         "MESSAGE_TOO_DEEP",
	KindIllegalComment:                         "ILLEGAL_COMMENT",
	KindExpectedDashInComment:                  "EXPECTED_DASH_IN_COMMENT",
	KindIllegalCloseComment:                    "ILLEGAL_CLOSE_COMMENT",
	KindExpectedCloseDashInComment:             "EXPECTED_CLOSE_DASH_IN_COMMENT",
	KindIllegalDeclaration:                     "ILLEGAL_DECLARATION",
	KindExpectedQuestionMarkInComment:          "EXPECTED_QUESTION_MARK_IN_COMMENT",
	KindIllegalCloseDeclaration:                "ILLEGAL_CLOSE_DECLARATION",
	KindExpectedCloseQuestionMarkInDeclaration: "EXPECTED_CLOSE_QUESTION_MARK_IN_DECLARATION",
}

// String returns the spec's identifier for the kind, e.g. "NON_UTF_8".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN_ERROR"
}

// contextWindow is the number of bytes of source context shown around the
// error position in Error.Snippet (spec §7: "20-byte context snippet").
const contextWindow = 20

// Error is the error type returned by Parser.Parse and Parser.FinishParse.
// It carries a closed Kind, a human-readable Message, and location context
// suitable for the "<message>\n<context>\n<caret>" display format spec §7
// requires.
type Error struct {
	Kind    Kind
	Message string
	Snippet []byte
	Caret   int
}

// Error implements error, rendering the three-line format from spec §7.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	caret := make([]byte, e.Caret)
	for i := range caret {
		caret[i] = ' '
	}
	return fmt.Sprintf("%s\n%s\n%s^", e.Message, e.Snippet, caret)
}

func newError(kind Kind, snippet []byte, caret int, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Snippet: snippet,
		Caret:   caret,
	}
}

// snippetAround returns up to contextWindow bytes of buf centered so that
// pos falls within the window, plus the caret offset of pos within that
// window. It never slices past buf's bounds.
func snippetAround(buf []byte, pos int) ([]byte, int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(buf) {
		pos = len(buf)
	}
	start := pos - contextWindow/2
	if start < 0 {
		start = 0
	}
	end := start + contextWindow
	if end > len(buf) {
		end = len(buf)
		start = end - contextWindow
		if start < 0 {
			start = 0
		}
	}
	return buf[start:end], pos - start
}
