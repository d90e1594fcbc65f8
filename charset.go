package binread

import (
	"unicode/utf8"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset describes a text encoding a Reader can decode characters and
// strings from. The zero value is not usable; construct charsets with
// NewCharset or use one of the built-ins.
type Charset struct {
	name        string
	enc         encoding.Encoding
	maxLen      int    // max encoded bytes per character
	fixed2      bool   // exactly two bytes per BMP character (UTF-16 family)
	replacement []byte // this charset's encoding of utf8.RuneError
}

// Built-in charsets, registered under their canonical names.
var (
	UTF8        = NewCharset("utf-8", unicode.UTF8, utf8.UTFMax, false)
	UTF16LE     = NewCharset("utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), 4, true)
	UTF16BE     = NewCharset("utf-16be", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), 4, true)
	Latin1      = NewCharset("latin-1", charmap.ISO8859_1, 1, false)
	Windows1252 = NewCharset("windows-1252", charmap.Windows1252, 1, false)
)

// NewCharset wraps an encoding for use by a Reader. maxLen is the
// maximum number of encoded bytes one character can occupy (it sizes
// the Reader's scratch buffers); fixed2 marks encodings whose BMP
// characters always occupy exactly two bytes, which lets bulk reads
// double their byte quota.
func NewCharset(name string, enc encoding.Encoding, maxLen int, fixed2 bool) *Charset {
	cs := &Charset{
		name:   name,
		enc:    enc,
		maxLen: maxLen,
		fixed2: fixed2,
	}
	// Pre-encode the replacement character so a decode that yields it can
	// be told apart from a stream that legitimately contains one.
	e := encoding.ReplaceUnsupported(enc.NewEncoder())
	if b, _, err := transform.Bytes(e, []byte(string(utf8.RuneError))); err == nil {
		cs.replacement = b
	}
	return cs
}

// Name returns the name the charset was constructed with.
func (cs *Charset) Name() string { return cs.name }

// MaxLen returns the maximum number of encoded bytes per character.
func (cs *Charset) MaxLen() int { return cs.maxLen }

// newDecoder returns a fresh stateful transformer for one Reader.
// Decoders are not shared: the pending partial-sequence state they and
// the owning Reader carry is per stream.
func (cs *Charset) newDecoder() transform.Transformer {
	d := cs.enc.NewDecoder()
	d.Reset()
	return d
}

// charsets is the process-wide registry of named charsets, so stream
// formats can carry an encoding by name.
var charsets = xsync.NewMap[string, *Charset]()

// RegisterCharset makes cs available to LookupCharset under its name.
// Registering a second charset with the same name replaces the first.
func RegisterCharset(cs *Charset) {
	charsets.Store(cs.name, cs)
}

// LookupCharset returns the charset registered under name.
func LookupCharset(name string) (*Charset, error) {
	if cs, ok := charsets.Load(name); ok {
		return cs, nil
	}
	return nil, ErrUnknownCharset
}

func init() {
	for _, cs := range []*Charset{UTF8, UTF16LE, UTF16BE, Latin1, Windows1252} {
		RegisterCharset(cs)
	}
}
