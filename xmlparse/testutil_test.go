package xmlparse_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/williammuji/pb-xml-util/xmlevent"
	"github.com/williammuji/pb-xml-util/xmlparse"
)

// parseAll drives a fresh Parser with chunks in order and finishes it,
// returning the recorded events and the first error encountered (from
// either Parse or FinishParse).
func parseAll(chunks [][]byte, opts ...xmlparse.Options) (*xmlevent.Recorder, error) {
	rec := &xmlevent.Recorder{}
	p := xmlparse.New(rec, opts...)
	for _, c := range chunks {
		if err := p.Parse(c); err != nil {
			return rec, err
		}
	}
	if err := p.FinishParse(); err != nil {
		return rec, err
	}
	return rec, nil
}

// chunkSplits verifies P1: every single-split partition of input, and a
// one-byte-at-a-time partition, produce the identical recorded event
// sequence and terminal error as parsing input whole.
func chunkSplits(t *testing.T, input string, opts ...xmlparse.Options) {
	t.Helper()
	data := []byte(input)

	whole, wholeErr := parseAll([][]byte{data}, opts...)

	for i := 1; i < len(data); i++ {
		split, splitErr := parseAll([][]byte{data[:i], data[i:]}, opts...)
		if diff := cmp.Diff(whole.Events, split.Events); diff != "" {
			t.Fatalf("split at byte %d: event mismatch (-whole +split):\n%s", i, diff)
		}
		assertSameErrorKind(t, wholeErr, splitErr, i)
	}

	var perByte [][]byte
	for i := range data {
		perByte = append(perByte, data[i:i+1])
	}
	byteRec, byteErr := parseAll(perByte, opts...)
	if diff := cmp.Diff(whole.Events, byteRec.Events); diff != "" {
		t.Fatalf("byte-at-a-time: event mismatch (-whole +byte):\n%s", diff)
	}
	assertSameErrorKind(t, wholeErr, byteErr, -1)
}

func assertSameErrorKind(t *testing.T, want, got error, at int) {
	t.Helper()
	if want == nil || got == nil {
		if want != got {
			t.Fatalf("split at %d: error mismatch: whole=%v split=%v", at, want, got)
		}
		return
	}
	we, ok1 := want.(*xmlparse.Error)
	ge, ok2 := got.(*xmlparse.Error)
	if !ok1 || !ok2 || we.Kind != ge.Kind {
		t.Fatalf("split at %d: error kind mismatch: whole=%v split=%v", at, want, got)
	}
}
