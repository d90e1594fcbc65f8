package binread

import (
	"encoding/binary"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimal wire layout: 16 bytes little-endian, a 96-bit unsigned
// magnitude in three 32-bit words (low, mid, high) followed by a flags
// word carrying the scale in bits 16..23 and the sign in bit 31. All
// other flag bits must be zero and the scale at most 28.
const (
	decimalSize      = 16
	decimalScaleMax  = 28
	decimalSignMask  = 0x8000_0000
	decimalScaleMask = 0x00FF_0000
)

// ReadDecimal reads a 16-byte decimal value. An invalid flags word is
// ErrInvalidDecimal, a format error, never an error from the decimal
// library itself.
func (r *Reader) ReadDecimal() (decimal.Decimal, error) {
	buf, err := r.fill(decimalSize)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decodeDecimal(buf)
}

func decodeDecimal(buf []byte) (decimal.Decimal, error) {
	lo := binary.LittleEndian.Uint32(buf[0:4])
	mid := binary.LittleEndian.Uint32(buf[4:8])
	hi := binary.LittleEndian.Uint32(buf[8:12])
	flags := binary.LittleEndian.Uint32(buf[12:16])

	if flags&^(decimalSignMask|decimalScaleMask) != 0 {
		return decimal.Decimal{}, ErrInvalidDecimal
	}
	scale := (flags & decimalScaleMask) >> 16
	if scale > decimalScaleMax {
		return decimal.Decimal{}, ErrInvalidDecimal
	}

	mant := new(big.Int).SetUint64(uint64(hi))
	mant.Lsh(mant, 64)
	mant.Or(mant, new(big.Int).SetUint64(uint64(mid)<<32|uint64(lo)))
	if flags&decimalSignMask != 0 {
		mant.Neg(mant)
	}
	return decimal.NewFromBigInt(mant, -int32(scale)), nil
}

// AppendDecimal appends the 16-byte encoding of d to p, the inverse of
// ReadDecimal for producing fixtures. Values needing more than 96
// magnitude bits or a scale above 28 do not fit the layout and are
// reported as ErrInvalidDecimal.
func AppendDecimal(p []byte, d decimal.Decimal) ([]byte, error) {
	exp := d.Exponent()
	if exp > 0 {
		// Normalize positive exponents into the magnitude.
		d = decimal.NewFromBigInt(new(big.Int).Mul(d.Coefficient(), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)), 0)
		exp = 0
	}
	scale := -exp
	if scale > decimalScaleMax {
		return p, ErrInvalidDecimal
	}

	mant := d.Coefficient()
	var flags uint32 = uint32(scale) << 16
	if mant.Sign() < 0 {
		flags |= decimalSignMask
		mant = new(big.Int).Neg(mant)
	}
	if mant.BitLen() > 96 {
		return p, ErrInvalidDecimal
	}

	var words [12]byte
	mant.FillBytes(words[:]) // big-endian 96-bit magnitude

	var out [decimalSize]byte
	binary.LittleEndian.PutUint32(out[0:4], binary.BigEndian.Uint32(words[8:12]))
	binary.LittleEndian.PutUint32(out[4:8], binary.BigEndian.Uint32(words[4:8]))
	binary.LittleEndian.PutUint32(out[8:12], binary.BigEndian.Uint32(words[0:4]))
	binary.LittleEndian.PutUint32(out[12:16], flags)
	return append(p, out[:]...), nil
}
