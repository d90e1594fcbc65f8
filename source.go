package binread

import "io"

// Slicer is an optional capability a source can expose when it already
// holds its bytes contiguously in memory: Next returns a direct view of
// up to n unread bytes and advances past them. The Reader uses it
// opportunistically to skip the copy into its scratch buffer; generic
// sources simply do not implement it.
type Slicer interface {
	Next(n int) ([]byte, error)
}

// BytesReader is a seekable in-memory source over a pre-allocated byte
// slice. It implements Slicer, so a Reader on top of it decodes
// fixed-width values straight out of the backing slice.
type BytesReader struct {
	B []byte // backing slice
	N int    // current read position
}

// NewBytesReader creates a new BytesReader.
func NewBytesReader(b []byte) *BytesReader {
	return &BytesReader{B: b}
}

// Read implements the [io.Reader] interface.
func (r *BytesReader) Read(p []byte) (int, error) {
	if r.N >= len(r.B) {
		return 0, io.EOF
	}
	n := copy(p, r.B[r.N:])
	r.N += n
	return n, nil
}

// ReadByte implements the [io.ByteReader] interface.
func (r *BytesReader) ReadByte() (byte, error) {
	if r.N >= len(r.B) {
		return 0, io.EOF
	}
	b := r.B[r.N]
	r.N++
	return b, nil
}

// Next implements the Slicer capability. The returned slice aliases the
// backing array and may be shorter than n when fewer bytes remain; at
// the end of the slice it returns io.EOF.
func (r *BytesReader) Next(n int) ([]byte, error) {
	if r.N >= len(r.B) {
		return nil, io.EOF
	}
	rest := len(r.B) - r.N
	if n > rest {
		n = rest
	}
	view := r.B[r.N : r.N+n]
	r.N += n
	return view, nil
}

// Seek implements the [io.Seeker] interface.
func (r *BytesReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(r.N) + offset
	case io.SeekEnd:
		abs = int64(len(r.B)) + offset
	default:
		return 0, ErrInvalidWhence
	}

	if abs < 0 {
		return 0, ErrInvalidSeek
	}

	r.N = int(abs)
	return abs, nil
}

// Reset allows the underlying byte slice to be reused.
func (r *BytesReader) Reset() {
	r.N = 0
}

// Len returns the number of bytes read.
func (r *BytesReader) Len() int {
	return r.N
}

// Size returns the size of the underlying byte slice.
func (r *BytesReader) Size() int {
	return len(r.B)
}

// Available returns the number of bytes available for reading.
func (r *BytesReader) Available() int {
	length := len(r.B) - r.N
	if length <= 0 {
		return 0
	}
	return length
}
