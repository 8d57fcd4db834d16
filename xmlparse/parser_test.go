package xmlparse_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williammuji/pb-xml-util/xmlevent"
	"github.com/williammuji/pb-xml-util/xmlparse"
)

func TestScenarios(t *testing.T) {
	cases := []struct {
		name string
		xml  string
		want []xmlevent.Event
	}{
		{
			name: "empty root",
			xml:  `<root></root>`,
			want: []xmlevent.Event{
				{Kind: xmlevent.KindStartObject, Name: ""},
				{Kind: xmlevent.KindEndObject},
			},
		},
		{
			// Self-closing requires a space before '/': BEGIN_ELEMENT_MID
			// only transitions on ATTR_SEPARATOR or CLOSE_TAG, so the
			// slash is only ever recognized once ATTR_KEY is reached.
			name: "self-closing root",
			xml:  `<root />`,
			want: []xmlevent.Event{
				{Kind: xmlevent.KindStartObject, Name: ""},
				{Kind: xmlevent.KindEndObject},
			},
		},
		{
			name: "empty list",
			xml:  `<_list_empty></_list_empty>`,
			want: []xmlevent.Event{
				{Kind: xmlevent.KindStartList, Name: "empty"},
				{Kind: xmlevent.KindEndList},
			},
		},
		{
			name: "single attribute",
			xml:  `<root test="Some String"></root>`,
			want: []xmlevent.Event{
				{Kind: xmlevent.KindStartObject, Name: ""},
				{Kind: xmlevent.KindScalar, Name: "test", Value: "Some String"},
				{Kind: xmlevent.KindEndObject},
			},
		},
		{
			name: "text content",
			xml:  `<root>true</root>`,
			want: []xmlevent.Event{
				{Kind: xmlevent.KindStartObject, Name: ""},
				{Kind: xmlevent.KindScalar, Value: "true"},
				{Kind: xmlevent.KindEndObject},
			},
		},
		{
			name: "nested message field",
			xml:  `<root><nested><value>5</value></nested></root>`,
			want: []xmlevent.Event{
				{Kind: xmlevent.KindStartObject, Name: ""},
				{Kind: xmlevent.KindStartObject, Name: "nested"},
				{Kind: xmlevent.KindStartObject, Name: "value"},
				{Kind: xmlevent.KindScalar, Value: "5"},
				{Kind: xmlevent.KindEndObject},
				{Kind: xmlevent.KindEndObject},
				{Kind: xmlevent.KindEndObject},
			},
		},
		{
			name: "list of messages",
			xml:  `<root><_list_item><item><a>1</a></item><item><a>2</a></item></_list_item></root>`,
			want: []xmlevent.Event{
				{Kind: xmlevent.KindStartObject, Name: ""},
				{Kind: xmlevent.KindStartList, Name: "item"},
				{Kind: xmlevent.KindStartObject, Name: ""},
				{Kind: xmlevent.KindStartObject, Name: "a"},
				{Kind: xmlevent.KindScalar, Value: "1"},
				{Kind: xmlevent.KindEndObject},
				{Kind: xmlevent.KindEndObject},
				{Kind: xmlevent.KindStartObject, Name: ""},
				{Kind: xmlevent.KindStartObject, Name: "a"},
				{Kind: xmlevent.KindScalar, Value: "2"},
				{Kind: xmlevent.KindEndObject},
				{Kind: xmlevent.KindEndObject},
				{Kind: xmlevent.KindEndList},
				{Kind: xmlevent.KindEndObject},
			},
		},
		{
			name: "list of primitives",
			xml:  `<root><_list_item><anonymous>1</anonymous><anonymous>2</anonymous></_list_item></root>`,
			want: []xmlevent.Event{
				{Kind: xmlevent.KindStartObject, Name: ""},
				{Kind: xmlevent.KindStartList, Name: "item"},
				{Kind: xmlevent.KindScalar, Value: "1"},
				{Kind: xmlevent.KindScalar, Value: "2"},
				{Kind: xmlevent.KindEndList},
				{Kind: xmlevent.KindEndObject},
			},
		},
		{
			name: "text entities",
			xml:  `<root>a &amp; b &lt;c&gt;</root>`,
			want: []xmlevent.Event{
				{Kind: xmlevent.KindStartObject, Name: ""},
				{Kind: xmlevent.KindScalar, Value: "a & b <c>"},
				{Kind: xmlevent.KindEndObject},
			},
		},
		{
			name: "attribute backslash escapes",
			xml:  `<root test="a\tb\nc\\d\"e"></root>`,
			want: []xmlevent.Event{
				{Kind: xmlevent.KindStartObject, Name: ""},
				{Kind: xmlevent.KindScalar, Name: "test", Value: "a\tb\nc\\d\"e"},
				{Kind: xmlevent.KindEndObject},
			},
		},
		{
			name: "comment and declaration are skipped",
			xml:  `<?xml version="1.0"?><!-- a comment --><root></root>`,
			want: []xmlevent.Event{
				{Kind: xmlevent.KindStartObject, Name: ""},
				{Kind: xmlevent.KindEndObject},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := parseAll([][]byte{[]byte(tc.xml)})
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, rec.Events); diff != "" {
				t.Fatalf("events mismatch (-want +got):\n%s", diff)
			}
			chunkSplits(t, tc.xml)
		})
	}
}

func TestSelfClosingRequiresPrecedingSpace(t *testing.T) {
	// BEGIN_ELEMENT_MID has no END_TAG_SLASH transition of its own; "/"
	// is only recognized from ATTR_KEY, reached via a space.
	_, err := parseAll([][]byte{[]byte(`<root/>`)})
	require.Error(t, err)
	xerr, ok := err.(*xmlparse.Error)
	require.True(t, ok)
	assert.Equal(t, xmlparse.KindExpectedSpaceOrCloseTag, xerr.Kind)
}

func TestAttributeKeyMustStartWithNameStart(t *testing.T) {
	xml := `<root 01234="x"></root>`
	_, err := parseAll([][]byte{[]byte(xml)})
	require.Error(t, err)
	xerr, ok := err.(*xmlparse.Error)
	require.True(t, ok)
	assert.Equal(t, xmlparse.KindExpectedBeginKeyOrSlash, xerr.Kind)
	chunkSplits(t, xml)
}

func TestTagNameMismatch(t *testing.T) {
	xml := `<root><a></b></root>`
	_, err := parseAll([][]byte{[]byte(xml)})
	require.Error(t, err)
	xerr, ok := err.(*xmlparse.Error)
	require.True(t, ok)
	assert.Equal(t, xmlparse.KindTagNameNotMatch, xerr.Kind)
	chunkSplits(t, xml)
}

func TestListCloseTagMustKeepPrefix(t *testing.T) {
	xml := `<root><_list_item></item></root>`
	_, err := parseAll([][]byte{[]byte(xml)})
	require.Error(t, err)
	xerr, ok := err.(*xmlparse.Error)
	require.True(t, ok)
	assert.Equal(t, xmlparse.KindTagNameNotMatch, xerr.Kind)
}

// buildNested returns a document with n non-list objects nested inside
// root, each named "nN" except the last, which is named finalName if
// non-empty. It is its own closing-tag mirror so it always parses to a
// valid, well-formed document regardless of n.
func buildNested(n int, finalName string) string {
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = fmt.Sprintf("n%d", i)
	}
	if n > 0 && finalName != "" {
		names[n-1] = finalName
	}
	var b strings.Builder
	b.WriteString("<root>")
	for _, name := range names {
		b.WriteString("<" + name + ">")
	}
	for i := len(names) - 1; i >= 0; i-- {
		b.WriteString("</" + names[i] + ">")
	}
	b.WriteString("</root>")
	return b.String()
}

func TestRecursionDepth(t *testing.T) {
	t.Run("at the default cap succeeds", func(t *testing.T) {
		xml := buildNested(xmlparse.DefaultMaxRecursionDepth-1, "")
		_, err := parseAll([][]byte{[]byte(xml)})
		require.NoError(t, err)
	})
	t.Run("one past the default cap fails", func(t *testing.T) {
		// Scenario 7: the (k+1)-th opener past the cap is the one named in
		// the error.
		xml := buildNested(xmlparse.DefaultMaxRecursionDepth, "nest23")
		_, err := parseAll([][]byte{[]byte(xml)})
		require.Error(t, err)
		xerr, ok := err.(*xmlparse.Error)
		require.True(t, ok)
		assert.Equal(t, xmlparse.KindMessageTooDeep, xerr.Kind)
		assert.True(t, strings.HasPrefix(xerr.Message,
			"Message too deep. Max recursion depth reached for tag 'nest23'"))
	})
	t.Run("custom cap is honored", func(t *testing.T) {
		xml := buildNested(5, "nest23")
		_, err := parseAll([][]byte{[]byte(xml)}, xmlparse.MaxRecursionDepth(5))
		require.Error(t, err)
		xerr, ok := err.(*xmlparse.Error)
		require.True(t, ok)
		assert.Equal(t, xmlparse.KindMessageTooDeep, xerr.Kind)
	})
	t.Run("anonymous and list frames are not counted", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("<root>")
		for i := 0; i < xmlparse.DefaultMaxRecursionDepth-1; i++ {
			b.WriteString("<_list_item><anonymous>")
		}
		b.WriteString("x")
		for i := 0; i < xmlparse.DefaultMaxRecursionDepth-1; i++ {
			b.WriteString("</anonymous></_list_item>")
		}
		b.WriteString("</root>")
		_, err := parseAll([][]byte{[]byte(b.String())})
		require.NoError(t, err)
	})
}

func TestInvalidUTF8(t *testing.T) {
	var bad []byte
	bad = append(bad, []byte(`<root test="`)...)
	bad = append(bad, 0xFF)
	bad = append(bad, []byte(`"></root>`)...)

	t.Run("fails without coercion", func(t *testing.T) {
		_, err := parseAll([][]byte{bad})
		require.Error(t, err)
		xerr, ok := err.(*xmlparse.Error)
		require.True(t, ok)
		assert.Equal(t, xmlparse.KindNonUTF8, xerr.Kind)
	})
	t.Run("coerces in place when enabled", func(t *testing.T) {
		rec, err := parseAll([][]byte{bad}, xmlparse.CoerceToUTF8(true))
		require.NoError(t, err)
		require.Len(t, rec.Events, 3)
		assert.Equal(t, xmlevent.KindScalar, rec.Events[1].Kind)
		assert.Contains(t, rec.Events[1].Value, xmlparse.DefaultUTF8Replacement)
	})
	t.Run("custom replacement is honored", func(t *testing.T) {
		rec, err := parseAll([][]byte{bad},
			xmlparse.CoerceToUTF8(true), xmlparse.UTF8Replacement("?"))
		require.NoError(t, err)
		assert.Equal(t, "?", rec.Events[1].Value)
	})
}

func TestSurrogatePairs(t *testing.T) {
	t.Run("escaped surrogate pair decodes to the intended rune", func(t *testing.T) {
		xml := `<root test="\uD83D\uDC1D"></root>`
		rec, err := parseAll([][]byte{[]byte(xml)})
		require.NoError(t, err)
		want := []xmlevent.Event{
			{Kind: xmlevent.KindStartObject, Name: ""},
			{Kind: xmlevent.KindScalar, Name: "test", Value: "\U0001F41D"},
			{Kind: xmlevent.KindEndObject},
		}
		if diff := cmp.Diff(want, rec.Events); diff != "" {
			t.Fatalf("events mismatch (-want +got):\n%s", diff)
		}
		chunkSplits(t, xml)
	})
	t.Run("literal UTF-8 rune passes through the zero-copy path", func(t *testing.T) {
		xml := `<root test="🐝"></root>`
		rec, err := parseAll([][]byte{[]byte(xml)})
		require.NoError(t, err)
		want := []xmlevent.Event{
			{Kind: xmlevent.KindStartObject, Name: ""},
			{Kind: xmlevent.KindScalar, Name: "test", Value: "\U0001F41D"},
			{Kind: xmlevent.KindEndObject},
		}
		if diff := cmp.Diff(want, rec.Events); diff != "" {
			t.Fatalf("events mismatch (-want +got):\n%s", diff)
		}
		chunkSplits(t, xml)
	})
	t.Run("unpaired high surrogate fails", func(t *testing.T) {
		xml := `<root test="\uD83D"></root>`
		_, err := parseAll([][]byte{[]byte(xml)})
		require.Error(t, err)
		xerr, ok := err.(*xmlparse.Error)
		require.True(t, ok)
		assert.Equal(t, xmlparse.KindMissingLowSurrogate, xerr.Kind)
	})
	t.Run("unpaired high surrogate coerces to the replacement rune", func(t *testing.T) {
		xml := `<root test="\uD83D"></root>`
		rec, err := parseAll([][]byte{[]byte(xml)}, xmlparse.CoerceToUTF8(true))
		require.NoError(t, err)
		assert.Contains(t, rec.Events[1].Value, "�")
	})
	t.Run("low surrogate without a preceding high surrogate fails", func(t *testing.T) {
		xml := `<root test="\uDC1D"></root>`
		_, err := parseAll([][]byte{[]byte(xml)})
		require.Error(t, err)
		xerr, ok := err.(*xmlparse.Error)
		require.True(t, ok)
		assert.Equal(t, xmlparse.KindInvalidLowSurrogate, xerr.Kind)
	})
}

func TestTrailingWhitespaceIsIgnored(t *testing.T) {
	xml := "<root></root>\n"
	_, err := parseAll([][]byte{[]byte(xml)})
	require.NoError(t, err)
}

func TestTrailingGarbageFails(t *testing.T) {
	xml := "<root></root>garbage"
	_, err := parseAll([][]byte{[]byte(xml)})
	require.Error(t, err)
	xerr, ok := err.(*xmlparse.Error)
	require.True(t, ok)
	assert.Equal(t, xmlparse.KindParsingTerminatedBeforeEndOfInput, xerr.Kind)
}

func TestSinkErrorStopsImmediately(t *testing.T) {
	sentinel := fmt.Errorf("rejected")
	p := xmlparse.New(rejectingSink{err: sentinel})
	err := p.Parse([]byte(`<root test="x"></root>`))
	require.Error(t, err)
	assert.Equal(t, sentinel, err)
}

type rejectingSink struct{ err error }

func (rejectingSink) StartObject(string) error  { return nil }
func (rejectingSink) EndObject() error          { return nil }
func (rejectingSink) StartList(string) error    { return nil }
func (rejectingSink) EndList() error            { return nil }
func (s rejectingSink) RenderScalar(string, string) error {
	return s.err
}
