package binread

import "errors"

var (
	// ErrNilSource indicates that NewReader was called with a nil io.Reader.
	ErrNilSource = errors.New("binread: NewReader called with a nil io.Reader")

	// ErrClosed indicates a read was attempted on a closed Reader.
	ErrClosed = errors.New("binread: reader is closed")

	// ErrNegativeCount indicates a read was requested with a negative count.
	ErrNegativeCount = errors.New("binread: negative count")

	// ErrIntTooLong indicates a 7-bit encoded integer ran past its maximum
	// of five bytes. This bounds the cost of decoding corrupt or hostile input.
	ErrIntTooLong = errors.New("binread: 7-bit encoded integer too long")

	// ErrNegativeLength indicates a string length prefix that decoded to a
	// negative value.
	ErrNegativeLength = errors.New("binread: negative length prefix")

	// ErrInvalidDecimal indicates a 16-byte decimal with flag bits outside
	// the sign and scale fields, or a scale above 28.
	ErrInvalidDecimal = errors.New("binread: invalid decimal bit pattern")

	// ErrInvalidChar indicates a byte sequence that does not decode to a
	// character under the configured charset.
	ErrInvalidChar = errors.New("binread: invalid character sequence")

	// ErrInvalidRead indicates that an io.Reader returned an invalid
	// (negative or out of bounds) count from Read.
	ErrInvalidRead = errors.New("binread: reader returned invalid count from Read")

	// ErrDiscardNegative indicates a Skip was attempted with a negative
	// byte count.
	ErrDiscardNegative = errors.New("binread: cannot discard negative number of bytes")

	// ErrInvalidSeek indicates a seek was attempted to an invalid position.
	ErrInvalidSeek = errors.New("binread: seek to an invalid position")

	// ErrInvalidWhence indicates that an invalid 'whence' parameter was
	// provided to a Seek operation.
	ErrInvalidWhence = errors.New("binread: unsupported whence for seek")

	// ErrUnknownCharset is returned by LookupCharset for names that were
	// never registered.
	ErrUnknownCharset = errors.New("binread: unknown charset")
)
