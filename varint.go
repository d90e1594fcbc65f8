package binread

import "io"

// maxUvarint7Len is the longest valid 7-bit group encoding of a 32-bit
// value: five bytes carry 35 bits.
const maxUvarint7Len = 5

// ReadUvarint7 decodes a 7-bit group encoded unsigned integer: each
// byte contributes its low seven bits, low-order group first, and the
// high bit marks a continuation. More than five bytes, or magnitude
// bits beyond 32, fail with ErrIntTooLong. End of input mid-value is
// io.ErrUnexpectedEOF, not a format error.
func (r *Reader) ReadUvarint7() (uint32, error) {
	var v uint32
	var shift uint
	for i := 0; i < maxUvarint7Len; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && i > 0 {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if i == maxUvarint7Len-1 && b&0xF0 != 0 {
			// Fifth byte: only four magnitude bits fit, and it must
			// terminate the encoding.
			return 0, ErrIntTooLong
		}
		v |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
	return 0, ErrIntTooLong
}

// readLength decodes a string length prefix. The prefix is a 32-bit
// signed magnitude in 7-bit group form; negative values are a format
// error.
func (r *Reader) readLength() (int, error) {
	v, err := r.ReadUvarint7()
	if err != nil {
		return 0, err
	}
	n := int32(v)
	if n < 0 {
		return 0, ErrNegativeLength
	}
	return int(n), nil
}

// AppendUvarint7 appends the 7-bit group encoding of v to p and returns
// the extended slice. It is the exact inverse of ReadUvarint7; the
// symmetric writer lives elsewhere, but length prefixes are needed to
// produce test vectors and fixtures.
func AppendUvarint7(p []byte, v uint32) []byte {
	for v >= 0x80 {
		p = append(p, byte(v)|0x80)
		v >>= 7
	}
	return append(p, byte(v))
}
