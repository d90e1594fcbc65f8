package binread

import (
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/text/transform"
)

// scratchSize is the fixed scratch used by fixed-width reads. 16 bytes
// covers the widest primitive (the decimal).
const scratchSize = 16

// charChunkSize caps how many encoded bytes one character/string
// iteration pulls from the source.
const charChunkSize = 128

// Reader decodes typed binary values from a byte-oriented source:
// little-endian fixed-width primitives, 7-bit length-prefixed strings,
// and raw byte or character blocks under a pluggable charset.
//
// A Reader owns its source and buffers exclusively. It is not safe for
// concurrent use: the scratch buffers, the charset decoder's pending
// state and the source's read cursor are all mutated in place, so
// callers sharing one Reader across goroutines must synchronize
// externally. Sequential calls observe a strictly advancing byte
// cursor.
type Reader struct {
	src       io.Reader
	byteSrc   io.ByteReader // non-nil when the source has a one-byte fast path
	seeker    io.Seeker     // non-nil when the source supports pushback
	slicer    Slicer        // non-nil when the source exposes direct views
	closer    io.Closer
	leaveOpen bool

	charset *Charset
	dec     transform.Transformer
	count   int64 // total bytes consumed from the source

	scratch [scratchSize]byte // fixed-width reads only; disjoint from the char path

	// Char/string scratch, allocated on first use. chbuf holds encoded
	// bytes with any pending partial multi-byte sequence at its front;
	// utf8buf receives transformer output; spill holds characters
	// decoded but not yet delivered.
	chbuf   []byte
	nPend   int
	utf8buf []byte
	spill   []rune
}

// NewReader creates a Reader over src decoding text as cs. A nil cs
// selects UTF8. The source's optional capabilities (io.ByteReader,
// io.Seeker, io.Closer, Slicer) are discovered here and used
// opportunistically.
func NewReader(src io.Reader, cs *Charset) (*Reader, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if cs == nil {
		cs = UTF8
	}
	r := &Reader{
		src:     src,
		charset: cs,
		dec:     cs.newDecoder(),
	}
	if br, ok := src.(io.ByteReader); ok {
		r.byteSrc = br
	}
	if sk, ok := src.(io.Seeker); ok {
		r.seeker = sk
	}
	if sl, ok := src.(Slicer); ok {
		r.slicer = sl
	}
	if c, ok := src.(io.Closer); ok {
		r.closer = c
	}
	return r, nil
}

// WithLeaveOpen configures Close to detach from the source without
// closing it, and returns the Reader for chaining.
func (r *Reader) WithLeaveOpen() *Reader {
	r.leaveOpen = true
	return r
}

// Charset returns the charset the Reader decodes text with.
func (r *Reader) Charset() *Charset { return r.charset }

// Count returns the total number of bytes consumed from the source.
func (r *Reader) Count() int64 { return r.count }

// Close releases the source (closing it unless WithLeaveOpen was set)
// and discards all buffers. Closing an already-closed Reader is a
// no-op. Any read after Close fails with ErrClosed.
func (r *Reader) Close() error {
	if r.src == nil {
		return nil
	}
	var err error
	if r.closer != nil && !r.leaveOpen {
		err = r.closer.Close()
	}
	r.src = nil
	r.byteSrc = nil
	r.seeker = nil
	r.slicer = nil
	r.closer = nil
	r.dec = nil
	r.chbuf = nil
	r.utf8buf = nil
	r.spill = nil
	r.nPend = 0
	return err
}

// Read implements the io.Reader interface, passing through to the
// source while tracking the byte count.
func (r *Reader) Read(p []byte) (int, error) {
	if r.src == nil {
		return 0, ErrClosed
	}
	n, err := r.src.Read(p)
	if n < 0 || n > len(p) {
		return 0, ErrInvalidRead
	}
	r.count += int64(n)
	return n, err
}

// readSome issues one logical read of up to len(p) bytes. It returns
// (0, nil) when the source is exhausted, so callers treat zero as
// end-of-input rather than juggling io.EOF.
func (r *Reader) readSome(p []byte) (int, error) {
	for {
		n, err := r.src.Read(p)
		if n < 0 || n > len(p) {
			return 0, ErrInvalidRead
		}
		if n > 0 {
			r.count += int64(n)
			return n, nil
		}
		if err == io.EOF {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		// (0, nil) from the source: try again.
	}
}

// fill obtains exactly k bytes, looping over short reads. The returned
// slice is either a direct view from a Slicer source or the shared
// scratch buffer; its contents are invalidated by the next read call.
// A clean end of input before the first byte is io.EOF; running out
// mid-value is io.ErrUnexpectedEOF.
func (r *Reader) fill(k int) ([]byte, error) {
	if r.src == nil {
		return nil, ErrClosed
	}
	if r.slicer != nil {
		view, err := r.slicer.Next(k)
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		r.count += int64(len(view))
		if len(view) < k {
			return nil, io.ErrUnexpectedEOF
		}
		return view, nil
	}

	buf := r.scratch[:k]
	n, err := io.ReadFull(r.src, buf)
	r.count += int64(n)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err // io.ReadFull already reports partial fills as ErrUnexpectedEOF
	}
	return buf, nil
}

// ReadByte reads a single byte, preferring the source's own one-byte
// fast path.
func (r *Reader) ReadByte() (byte, error) {
	if r.src == nil {
		return 0, ErrClosed
	}
	if r.byteSrc != nil {
		b, err := r.byteSrc.ReadByte()
		if err == nil {
			r.count++
		}
		return b, err
	}
	buf, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadBool reads one byte; any nonzero value is true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	return r.ReadByte()
}

// ReadInt8 reads a signed 8-bit integer.
func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.ReadByte()
	return int8(b), err
}

// ReadUint16 reads a little-endian unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadInt16 reads a little-endian signed 16-bit integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a little-endian unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadInt32 reads a little-endian signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a little-endian unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadInt64 reads a little-endian signed 64-bit integer.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads an IEEE-754 binary32 value by exact bit
// reinterpretation.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads an IEEE-754 binary64 value by exact bit
// reinterpretation.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadBytes reads up to n bytes into a fresh slice, looping over short
// reads and trimming the result to what the source actually delivered.
// A short result at end of input is not an error.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.src == nil {
		return nil, ErrClosed
	}
	if n < 0 {
		return nil, ErrNegativeCount
	}
	if n == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, n)
	got := 0
	for got < n {
		k, err := r.readSome(buf[got:])
		if err != nil {
			return buf[:got], err
		}
		if k == 0 {
			break
		}
		got += k
	}
	return buf[:got], nil
}

// ReadFull fills dst completely, failing with io.ErrUnexpectedEOF when
// the source runs out first (io.EOF when it was already exhausted).
func (r *Reader) ReadFull(dst []byte) error {
	if r.src == nil {
		return ErrClosed
	}
	got := 0
	for got < len(dst) {
		k, err := r.readSome(dst[got:])
		if err != nil {
			return err
		}
		if k == 0 {
			if got == 0 {
				return io.EOF
			}
			return io.ErrUnexpectedEOF
		}
		got += k
	}
	return nil
}

// Skip discards n bytes, failing with io.ErrUnexpectedEOF when fewer
// remain.
func (r *Reader) Skip(n int64) error {
	if r.src == nil {
		return ErrClosed
	}
	skipped, err := Discard(r.src, n)
	r.count += skipped
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Align discards bytes until the consumed count is a multiple of n.
func (r *Reader) Align(n int) error {
	if n > 1 {
		return r.Skip(Roundup(r.count, int64(n)) - r.count)
	}
	return nil
}
