package xmlparse

// parseType enumerates the pushdown automaton's states (spec §4.2). The
// parse stack (Parser.stack) holds a sequence of these; popping yields the
// next state to advance, pushing defers work for later.
type parseType int

const (
	stateBeginElement parseType = iota
	stateStartTag
	stateBeginElementMid
	stateAttrKey
	stateAttrMid
	stateAttrValue
	stateBeginElementClose
	stateText
	stateEndElement
	stateEndElementMid
	stateEndTag
	stateEndElementClose
)

func (s parseType) String() string {
	switch s {
	case stateBeginElement:
		return "BEGIN_ELEMENT"
	case stateStartTag:
		return "START_TAG"
	case stateBeginElementMid:
		return "BEGIN_ELEMENT_MID"
	case stateAttrKey:
		return "ATTR_KEY"
	case stateAttrMid:
		return "ATTR_MID"
	case stateAttrValue:
		return "ATTR_VALUE"
	case stateBeginElementClose:
		return "BEGIN_ELEMENT_CLOSE"
	case stateText:
		return "TEXT"
	case stateEndElement:
		return "END_ELEMENT"
	case stateEndElementMid:
		return "END_ELEMENT_MID"
	case stateEndTag:
		return "END_TAG"
	case stateEndElementClose:
		return "END_ELEMENT_CLOSE"
	default:
		return "UNKNOWN_STATE"
	}
}

// elementKind labels an open element the way spec §3's element-kind stack
// does, steering how StartObject/StartList events get emitted.
type elementKind int

const (
	elementObject elementKind = iota
	elementList
)

// elementFrame is one entry of the combined tag/element-kind stack (spec
// §3's "Tag stack" and "Element-kind stack" are always the same depth —
// invariant I1 — so one stack of paired fields satisfies both without
// risking the two getting out of sync).
type elementFrame struct {
	name      string
	isList    bool
	kind      elementKind
	anonymous bool
}
