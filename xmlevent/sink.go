// Package xmlevent defines the event-stream seam shared by the parser in
// xmlparse and the writer in xmlwrite. It is the only contract either side
// needs to know about; neither depends on the other.
package xmlevent

// Sink receives structured events describing an XML document's content in
// the dialect documented by xmlparse and xmlwrite: objects, lists, and
// scalars, with list-primitive members wrapped under an implicit
// "anonymous" element and repeated-message fields distinguished by a
// "_list_" tag prefix on the wire.
//
// Implementations are driven in strict source order: every StartObject is
// eventually followed by a matching EndObject, and every StartList by a
// matching EndList, unless the driver itself fails first. A Sink method
// that returns a non-nil error stops the driver immediately; the error is
// never wrapped and propagates to the driver's caller verbatim, so callers
// can tell "malformed input" (an *xmlparse.Error) apart from "the sink
// rejected this value" (whatever the Sink method returned).
type Sink interface {
	// StartObject begins a message-typed value. name == "" means the
	// object is anonymous: the enclosing context (the list element it is
	// a member of, or the document root) names it instead.
	StartObject(name string) error

	// EndObject ends the most recently started object.
	EndObject() error

	// StartList begins a repeated field named name. Lists are always
	// named; name is never empty.
	StartList(name string) error

	// EndList ends the most recently started list.
	EndList() error

	// RenderScalar delivers a single scalar value. name == "" means the
	// value is a text node (the enclosing object's character data);
	// otherwise it is an attribute named name.
	RenderScalar(name, value string) error
}
