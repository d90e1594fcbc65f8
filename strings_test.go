package binread

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/transform"
)

// encodeText produces the charset encoding of s, for building fixtures.
func encodeText(t *testing.T, cs *Charset, s string) []byte {
	t.Helper()
	b, _, err := transform.Bytes(cs.enc.NewEncoder(), []byte(s))
	require.NoError(t, err)
	return b
}

// prefixed produces a length-prefixed string record: 7-bit encoded byte
// count followed by the encoded text.
func prefixed(t *testing.T, cs *Charset, s string) []byte {
	t.Helper()
	enc := encodeText(t, cs, s)
	return append(AppendUvarint7(nil, uint32(len(enc))), enc...)
}

func TestReadStringScenario(t *testing.T) {
	// Length prefix 5 followed by "Hello" in a single-byte encoding.
	data := []byte{0x05, 0x48, 0x65, 0x6C, 0x6C, 0x6F}
	r, _ := NewReader(NewBytesReader(data), Latin1)
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "Hello", s)
	assert.EqualValues(t, len(data), r.Count())
}

func TestReadStringRoundTrip(t *testing.T) {
	long := strings.Repeat("héllö wörld €42 ", 64) // far beyond one chunk
	cases := []struct {
		name string
		cs   *Charset
		in   string
	}{
		{"Empty", UTF8, ""},
		{"ASCII", UTF8, "Hello"},
		{"MultiByte", UTF8, "héllö €"},
		{"Astral", UTF8, "a\U0001F600b"},
		{"LongMultiChunk", UTF8, long},
		{"UTF16LE", UTF16LE, "héllö wörld"},
		{"UTF16LESurrogates", UTF16LE, "a\U0001F600b"},
		{"UTF16BE", UTF16BE, "héllö"},
		{"UTF16LELong", UTF16LE, long},
		{"Latin1", Latin1, "héllö"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := prefixed(t, tc.cs, tc.in)

			r, _ := NewReader(NewBytesReader(data), tc.cs)
			got, err := r.ReadString()
			require.NoError(t, err)
			assert.Equal(t, tc.in, got)
			assert.EqualValues(t, len(data), r.Count())

			// The same bytes one fragment at a time must decode the same.
			fr, _ := NewReader(&fragmentedReader{r: NewBytesReader(data)}, tc.cs)
			got, err = fr.ReadString()
			require.NoError(t, err)
			assert.Equal(t, tc.in, got)
		})
	}
}

func TestReadStringSequence(t *testing.T) {
	var data []byte
	words := []string{"alpha", "", "béta", strings.Repeat("γ", 200)}
	for _, w := range words {
		data = append(data, prefixed(t, UTF8, w)...)
	}
	r, _ := NewReader(NewBytesReader(data), UTF8)
	for _, w := range words {
		got, err := r.ReadString()
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}
	_, err := r.ReadString()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadStringTruncated(t *testing.T) {
	t.Run("BodyShorterThanDeclared", func(t *testing.T) {
		data := prefixed(t, UTF8, "Hello")[:4] // prefix declares 5, only 3 arrive
		r, _ := NewReader(NewBytesReader(data), UTF8)
		_, err := r.ReadString()
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
	t.Run("MissingBody", func(t *testing.T) {
		r, _ := NewReader(NewBytesReader([]byte{0x05}), UTF8)
		_, err := r.ReadString()
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestReadChar(t *testing.T) {
	t.Run("SingleByte", func(t *testing.T) {
		r, _ := NewReader(NewBytesReader([]byte("Az")), UTF8)
		ch, err := r.ReadChar()
		require.NoError(t, err)
		assert.Equal(t, 'A', ch)
		ch, err = r.ReadChar()
		require.NoError(t, err)
		assert.Equal(t, 'z', ch)
	})
	t.Run("MultiByte", func(t *testing.T) {
		r, _ := NewReader(NewBytesReader(encodeText(t, UTF8, "€")), UTF8)
		ch, err := r.ReadChar()
		require.NoError(t, err)
		assert.Equal(t, '€', ch)
	})
	t.Run("SplitAcrossFragments", func(t *testing.T) {
		// One byte per source read: the character assembles across calls.
		r, _ := NewReader(&fragmentedReader{r: NewBytesReader(encodeText(t, UTF8, "€A"))}, UTF8)
		ch, err := r.ReadChar()
		require.NoError(t, err)
		assert.Equal(t, '€', ch)
		ch, err = r.ReadChar()
		require.NoError(t, err)
		assert.Equal(t, 'A', ch)
	})
	t.Run("UTF16Pair", func(t *testing.T) {
		r, _ := NewReader(NewBytesReader(encodeText(t, UTF16LE, "\U0001F600")), UTF16LE)
		ch, err := r.ReadChar()
		require.NoError(t, err)
		assert.Equal(t, '\U0001F600', ch)
	})
	t.Run("EndOfInput", func(t *testing.T) {
		r, _ := NewReader(NewBytesReader(nil), UTF8)
		_, err := r.ReadChar()
		assert.ErrorIs(t, err, io.EOF)
	})
	t.Run("EOFMidCharacter", func(t *testing.T) {
		r, _ := NewReader(NewBytesReader([]byte{0xE2, 0x82}), UTF8) // truncated €
		_, err := r.ReadChar()
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
	t.Run("LiteralReplacementChar", func(t *testing.T) {
		// A real U+FFFD in the stream is a character, not an error.
		r, _ := NewReader(NewBytesReader(encodeText(t, UTF8, "�")), UTF8)
		ch, err := r.ReadChar()
		require.NoError(t, err)
		assert.Equal(t, '�', ch)
	})
}

func TestReadCharPushback(t *testing.T) {
	t.Run("SeekableSourceRewinds", func(t *testing.T) {
		src := NewBytesReader([]byte{0xFF, 'A'})
		r, _ := NewReader(src, UTF8)

		_, err := r.ReadChar()
		require.ErrorIs(t, err, ErrInvalidChar)
		assert.Equal(t, 0, src.N, "failed bytes must not be consumed")
		assert.EqualValues(t, 0, r.Count())

		// The stream is at a well-defined point: skip the bad byte and
		// the next character decodes.
		require.NoError(t, r.Skip(1))
		ch, err := r.ReadChar()
		require.NoError(t, err)
		assert.Equal(t, 'A', ch)
	})
	t.Run("NonSeekableSourceStillFails", func(t *testing.T) {
		r, _ := NewReader(&fragmentedReader{r: NewBytesReader([]byte{0xFF, 'A'})}, UTF8)
		_, err := r.ReadChar()
		assert.ErrorIs(t, err, ErrInvalidChar)
	})
}

func TestReadChars(t *testing.T) {
	t.Run("ExactCount", func(t *testing.T) {
		r, _ := NewReader(NewBytesReader(encodeText(t, UTF8, "héllö")), UTF8)
		dst := make([]rune, 5)
		n, err := r.ReadChars(dst)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, []rune("héllö"), dst)
	})
	t.Run("ShortAtEndOfInput", func(t *testing.T) {
		r, _ := NewReader(NewBytesReader(encodeText(t, UTF8, "ab")), UTF8)
		dst := make([]rune, 10)
		n, err := r.ReadChars(dst)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []rune("ab"), dst[:n])
	})
	t.Run("EmptySource", func(t *testing.T) {
		r, _ := NewReader(NewBytesReader(nil), UTF8)
		n, err := r.ReadChars(make([]rune, 4))
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
	t.Run("FragmentedMatchesContiguous", func(t *testing.T) {
		text := strings.Repeat("héllö €", 30)
		enc := encodeText(t, UTF8, text)

		whole, _ := NewReader(NewBytesReader(enc), UTF8)
		frag, _ := NewReader(&fragmentedReader{r: NewBytesReader(enc)}, UTF8)

		want := []rune(text)
		for _, r := range []*Reader{whole, frag} {
			dst := make([]rune, len(want))
			n, err := r.ReadChars(dst)
			require.NoError(t, err)
			assert.Equal(t, len(want), n)
			assert.Equal(t, want, dst)
		}
	})
	t.Run("UTF16SplitPair", func(t *testing.T) {
		// A surrogate pair split across one-byte fragments decodes
		// identically to the pair delivered whole.
		enc := encodeText(t, UTF16LE, "a\U0001F600b")
		r, _ := NewReader(&fragmentedReader{r: NewBytesReader(enc)}, UTF16LE)
		dst := make([]rune, 3)
		n, err := r.ReadChars(dst)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, []rune("a\U0001F600b"), dst)
	})
	t.Run("SuccessiveCallsShareState", func(t *testing.T) {
		// 16 four-byte characters, drained two at a time so the chunk
		// boundary keeps landing mid-character.
		text := strings.Repeat("\U0001F600", 16)
		r, _ := NewReader(NewBytesReader(encodeText(t, UTF8, text)), UTF8)
		var got []rune
		for {
			dst := make([]rune, 2)
			n, err := r.ReadChars(dst)
			require.NoError(t, err)
			if n == 0 {
				break
			}
			got = append(got, dst[:n]...)
		}
		assert.Equal(t, []rune(text), got)
	})
}

func TestCharsetRegistry(t *testing.T) {
	cs, err := LookupCharset("utf-16le")
	require.NoError(t, err)
	assert.Equal(t, UTF16LE, cs)
	assert.True(t, cs.fixed2)
	assert.Equal(t, 4, cs.MaxLen())

	_, err = LookupCharset("klingon")
	assert.ErrorIs(t, err, ErrUnknownCharset)
}
