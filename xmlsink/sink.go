// Package xmlsink adapts the XML writer's byte stream onto a
// chunked-buffer output abstraction (spec §4.8): a caller supplies buffers
// on demand via Next and reclaims an unused tail via BackUp, in the style
// of protobuf's CodedOutputStream/ZeroCopyOutputStream pair.
package xmlsink

// BufferSource supplies output buffers on demand and reclaims unused
// space, mirroring the teacher pack's zero-copy output stream contracts.
type BufferSource interface {
	// Next returns a new buffer to write into. It may be shorter than any
	// previously returned buffer. Next returns false if no further space
	// is available.
	Next() ([]byte, bool)
	// BackUp returns the last n bytes of the most recently obtained
	// buffer to the source, because the sink did not end up using them.
	BackUp(n int)
}

// Sink accumulates bytes written by an xmlwrite.Writer and flushes them
// into buffers obtained from a BufferSource, preserving order across
// buffer boundaries (spec §4.8's "all bytes must be preserved in order").
// Sink implements io.Writer so it can be passed directly to xmlwrite.New.
type Sink struct {
	src    BufferSource
	buf    []byte
	off    int
	failed bool
}

// New returns a Sink drawing buffers from src.
func New(src BufferSource) *Sink {
	return &Sink{src: src}
}

// Write implements io.Writer, copying p into buffers obtained from the
// underlying BufferSource, requesting new ones as needed. Once the source
// is exhausted, Write silently drops further output (spec §4.8: "the
// event-stream producer carries the error signal") but still reports a
// short write so callers relying on io.Writer's contract notice.
func (s *Sink) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		if s.off >= len(s.buf) {
			buf, ok := s.src.Next()
			if !ok {
				s.failed = true
				return written, errShortOutput
			}
			s.buf = buf
			s.off = 0
		}
		n := copy(s.buf[s.off:], p)
		s.off += n
		p = p[n:]
		written += n
	}
	return written, nil
}

// Close backs up any unused tail of the current buffer so the
// BufferSource can reclaim it (spec §4.8: "backing up any unused tail on
// destruction").
func (s *Sink) Close() error {
	if s.buf != nil && s.off < len(s.buf) {
		s.src.BackUp(len(s.buf) - s.off)
	}
	s.buf = nil
	s.off = 0
	return nil
}

// errShortOutput is returned by Write once the BufferSource can supply no
// further buffers. It is never an xmlparse.Error; it signals purely at
// the output-stream layer.
var errShortOutput = shortOutputError{}

type shortOutputError struct{}

func (shortOutputError) Error() string { return "xmlsink: buffer source exhausted" }
