// Package xmlwrite serializes an xmlevent.Sink-shaped event stream into
// the XML dialect xmlparse decodes: the root envelope, "_list_"-prefixed
// repeated fields, and "anonymous"-wrapped list primitives (spec §4.7).
package xmlwrite

import (
	"fmt"
	"io"
	"strings"

	"github.com/williammuji/pb-xml-util/xmlevent"
)

const (
	listPrefix    = "_list_"
	anonymousName = "anonymous"
	rootName      = "root"
	indentUnit    = " "
)

type elementKind int

const (
	kindObject elementKind = iota
	kindList
)

// element is one node of the writer's parent chain (spec §3's
// "Writer-side element"), tracking enough state to know whether its start
// tag is still accepting attributes and whether it needs indentation on
// close.
type element struct {
	parent    *element
	name      string
	kind      elementKind
	depth     int
	anonymous bool
	startOpen bool // start tag written, not yet closed with '>'
	hasChild  bool
	hasText   bool
}

// Writer implements xmlevent.Sink, turning events into XML bytes on dst
// (spec §4.7). A Writer is single-use: once an error occurs, every
// subsequent call returns it unchanged.
type Writer struct {
	dst  io.Writer
	opts Options
	cur  *element
	err  error
}

var _ xmlevent.Sink = (*Writer)(nil)

// New returns a Writer serializing events onto dst per opts.
func New(dst io.Writer, opts ...Options) *Writer {
	return &Writer{dst: dst, opts: JoinOptions(opts...)}
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.dst, s)
}

// closeStartTag flushes e's pending '>' if its start tag is still open for
// attributes (spec §4.7's "flushes any open start tag").
func (w *Writer) closeStartTag(e *element) {
	if e != nil && e.startOpen {
		w.write(">")
		e.startOpen = false
	}
}

func (w *Writer) writeIndent(depth int) {
	if !w.opts.addWhitespace {
		return
	}
	w.write("\n")
	if depth > 0 {
		w.write(strings.Repeat(indentUnit, depth))
	}
}

// openChild prepares to write a new child of the current element: it
// flushes the parent's start tag, marks the parent as having a child (so
// its own closing tag gets indentation), and writes the indentation that
// precedes the child itself.
func (w *Writer) openChild() int {
	if w.cur == nil {
		return 0
	}
	w.closeStartTag(w.cur)
	w.cur.hasChild = true
	depth := w.cur.depth + 1
	w.writeIndent(depth)
	return depth
}

// StartObject implements xmlevent.Sink (spec §4.3, §4.7). An empty name
// means "let the parent decide": root when there is no parent, or the
// enclosing list's field name when the parent is a LIST.
func (w *Writer) StartObject(name string) error {
	if w.err != nil {
		return w.err
	}
	depth := w.openChild()
	effectiveName := name
	if name == "" {
		switch {
		case w.cur == nil:
			effectiveName = rootName
		case w.cur.kind == kindList:
			effectiveName = w.cur.name
		}
	}
	w.write("<" + effectiveName)
	w.cur = &element{parent: w.cur, name: effectiveName, kind: kindObject, depth: depth, startOpen: true}
	return w.err
}

// EndObject implements xmlevent.Sink. At the root, it appends a trailing
// newline when indentation is enabled (spec §4.7's closing rule).
func (w *Writer) EndObject() error {
	if w.err != nil {
		return w.err
	}
	e := w.cur
	w.closeStartTag(e)
	if e.hasChild {
		w.writeIndent(e.depth)
	}
	w.write("</" + e.name + ">")
	w.cur = e.parent
	if w.cur == nil {
		w.writeIndent(0)
	}
	return w.err
}

// StartList implements xmlevent.Sink, writing the "_list_"-prefixed tag.
// List tags never carry attributes, so they are written whole.
func (w *Writer) StartList(name string) error {
	if w.err != nil {
		return w.err
	}
	depth := w.openChild()
	w.write("<" + listPrefix + name + ">")
	w.cur = &element{parent: w.cur, name: name, kind: kindList, depth: depth}
	return w.err
}

// EndList implements xmlevent.Sink.
func (w *Writer) EndList() error {
	if w.err != nil {
		return w.err
	}
	e := w.cur
	if e.hasChild {
		w.writeIndent(e.depth)
	}
	w.write("</" + listPrefix + e.name + ">")
	w.cur = e.parent
	if w.cur == nil {
		w.writeIndent(0)
	}
	return w.err
}

// RenderScalar implements xmlevent.Sink: an attribute when name is
// non-empty, otherwise the enclosing element's text (or, inside a LIST,
// an <anonymous> wrapper per spec §4.7's list-primitive rule).
func (w *Writer) RenderScalar(name, value string) error {
	if w.err != nil {
		return w.err
	}
	if name != "" {
		if w.cur == nil || !w.cur.startOpen {
			w.err = fmt.Errorf("xmlwrite: attribute %q rendered outside an open start tag", name)
			return w.err
		}
		w.write(" " + name + "=\"" + escapeAttr(value) + "\"")
		return w.err
	}
	if w.cur != nil && w.cur.kind == kindList {
		w.openChild()
		w.write("<" + anonymousName + ">" + escapeText(value) + "</" + anonymousName + ">")
		return w.err
	}
	w.closeStartTag(w.cur)
	if w.cur != nil {
		w.cur.hasText = true
	}
	w.write(escapeText(value))
	return w.err
}
