package binread

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/vmihailenco/bufpool"
	"golang.org/x/text/transform"
)

// strBufPool recycles the growable accumulator used by multi-chunk
// string reads. Single-chunk strings never touch it.
var strBufPool bufpool.Pool

func (r *Reader) ensureCharBufs() {
	if r.chbuf == nil {
		r.chbuf = make([]byte, charChunkSize)
		// Transformer output is UTF-8; a single source byte expands to at
		// most three bytes under the built-in charsets.
		r.utf8buf = make([]byte, 3*charChunkSize+utf8.UTFMax)
	}
}

// transformChunk decodes src into UTF-8 without flushing decoder state:
// a trailing partial multi-byte sequence is left unconsumed for the
// caller to carry over. Returns the UTF-8 output (backed by the shared
// scratch, invalidated by the next call) and the bytes consumed.
func (r *Reader) transformChunk(src []byte) ([]byte, int, error) {
	dst := r.utf8buf
	written, consumed := 0, 0
	for {
		nDst, nSrc, err := r.dec.Transform(dst[written:], src[consumed:], false)
		written += nDst
		consumed += nSrc
		switch err {
		case nil, transform.ErrShortSrc:
			return dst[:written], consumed, nil
		case transform.ErrShortDst:
			grown := make([]byte, 2*len(dst))
			copy(grown, dst[:written])
			dst = grown
			r.utf8buf = grown
		default:
			return dst[:written], consumed, fmt.Errorf("%w: %v", ErrInvalidChar, err)
		}
	}
}

// setPending moves the undecoded tail of src to the front of the chunk
// buffer so the next read completes the split character. src may alias
// the chunk buffer itself.
func (r *Reader) setPending(src []byte, consumed int) {
	r.nPend = copy(r.chbuf, src[consumed:])
}

// pushback rewinds the source to pos and un-counts the n bytes read
// since, so a failed decode leaves the stream at the start of the
// failed character. Best effort: non-seekable sources are left where
// they are.
func (r *Reader) pushback(pos int64, n int) {
	if r.seeker == nil || pos < 0 {
		return
	}
	if _, err := r.seeker.Seek(pos, io.SeekStart); err == nil {
		r.count -= int64(n)
	}
}

// ReadChar decodes a single character. A clean end of input before the
// first byte returns io.EOF; end of input inside a multi-byte sequence
// is io.ErrUnexpectedEOF. On an invalid sequence the source position is
// rewound to where it stood before the call when the source seeks and
// ErrInvalidChar is returned; on non-seekable sources the error is the
// same but the stream position is undefined.
func (r *Reader) ReadChar() (rune, error) {
	if r.src == nil {
		return 0, ErrClosed
	}
	if len(r.spill) > 0 {
		ch := r.spill[0]
		r.spill = r.spill[1:]
		return ch, nil
	}
	r.ensureCharBufs()

	startPos := int64(-1)
	if r.seeker != nil {
		if pos, err := r.seeker.Seek(0, io.SeekCurrent); err == nil {
			startPos = pos
		}
	}

	step := 1
	if r.charset.fixed2 {
		step = 2
	}
	pendStart := r.nPend
	n := r.nPend
	readThisCall := 0

	for {
		k, err := r.readSome(r.chbuf[n : n+step])
		if err != nil {
			return 0, err
		}
		if k == 0 {
			if n == 0 {
				return 0, io.EOF // nothing started, nothing lost
			}
			r.pushback(startPos, readThisCall)
			r.nPend = pendStart
			return 0, io.ErrUnexpectedEOF
		}
		n += k
		readThisCall += k

		out, consumed, terr := r.transformChunk(r.chbuf[:n])
		if terr != nil {
			r.pushback(startPos, readThisCall)
			r.nPend = pendStart
			return 0, terr
		}
		if len(out) > 0 {
			ch, size := utf8.DecodeRune(out)
			if ch == utf8.RuneError && !bytes.HasPrefix(r.chbuf[:n], r.charset.replacement) {
				r.pushback(startPos, readThisCall)
				r.nPend = pendStart
				return 0, ErrInvalidChar
			}
			for _, extra := range string(out[size:]) {
				r.spill = append(r.spill, extra)
			}
			r.setPending(r.chbuf[:n], consumed)
			return ch, nil
		}
		// No character yet: every byte so far is a prefix of one.
		if n-pendStart >= r.charset.maxLen {
			r.pushback(startPos, readThisCall)
			r.nPend = pendStart
			return 0, ErrInvalidChar
		}
	}
}

// ReadChars decodes characters into dst until it is full or the source
// is exhausted, returning how many were written. A short result is the
// normal end-of-stream outcome, not an error. A multi-byte character
// split across source reads is carried as pending state between
// iterations.
func (r *Reader) ReadChars(dst []rune) (int, error) {
	if r.src == nil {
		return 0, ErrClosed
	}
	r.ensureCharBufs()

	total := 0
	for total < len(dst) && len(r.spill) > 0 {
		dst[total] = r.spill[0]
		r.spill = r.spill[1:]
		total++
	}

	for total < len(dst) {
		// Byte quota for this pass: one byte per character still needed,
		// doubled for fixed two-byte charsets, reduced by the pending
		// tail already occupying the buffer, capped at the buffer.
		quota := len(dst) - total
		if r.charset.fixed2 {
			quota *= 2
		}
		if quota > len(r.chbuf)-r.nPend {
			quota = len(r.chbuf) - r.nPend
		}
		if quota < 1 {
			quota = 1
		}

		k, err := r.readSome(r.chbuf[r.nPend : r.nPend+quota])
		if err != nil {
			return total, err
		}
		if k == 0 {
			return total, nil
		}

		n := r.nPend + k
		out, consumed, terr := r.transformChunk(r.chbuf[:n])
		r.setPending(r.chbuf[:n], consumed)
		if terr != nil {
			return total, terr
		}
		for _, ch := range string(out) {
			if total < len(dst) {
				dst[total] = ch
				total++
			} else {
				r.spill = append(r.spill, ch)
			}
		}
	}
	return total, nil
}

// ReadString reads a length-prefixed string: a 7-bit encoded byte count
// followed by exactly that many bytes of encoded text. A zero length
// yields "" without touching the source further. The declared length
// promises that many bytes, so running out of input mid-string is
// io.ErrUnexpectedEOF. Strings whose bytes arrive in the first chunk
// are built without the growable accumulator.
func (r *Reader) ReadString() (string, error) {
	if r.src == nil {
		return "", ErrClosed
	}
	length, err := r.readLength()
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}
	r.ensureCharBufs()

	var acc *bufpool.Buffer
	defer func() {
		if acc != nil {
			strBufPool.Put(acc)
		}
	}()

	remaining := length
	for {
		quota := remaining
		if quota > len(r.chbuf)-r.nPend {
			quota = len(r.chbuf) - r.nPend
		}
		k, err := r.readSome(r.chbuf[r.nPend : r.nPend+quota])
		if err != nil {
			return "", err
		}
		if k == 0 {
			return "", io.ErrUnexpectedEOF
		}
		remaining -= k

		n := r.nPend + k
		out, consumed, terr := r.transformChunk(r.chbuf[:n])
		r.setPending(r.chbuf[:n], consumed)
		if terr != nil {
			return "", terr
		}

		if acc == nil {
			if remaining == 0 {
				// The whole declared length arrived in one chunk.
				return string(out), nil
			}
			acc = strBufPool.Get()
		}
		acc.Write(out)
		if remaining == 0 {
			return acc.String(), nil
		}
	}
}
