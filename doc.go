// Package binread decodes typed binary values from a byte-oriented
// source: little-endian fixed-width integers and floats, booleans,
// 16-byte decimals, 7-bit length-prefixed strings, and raw byte or
// character blocks under a pluggable text encoding.
//
// The Reader assembles exact byte counts for fixed-width reads despite
// sources that return partial reads, and carries a pending partial
// multi-byte character across calls so a character split between two
// source reads decodes the same as one delivered whole. Sources that
// hold their bytes in memory can expose the Slicer capability to let
// fixed-width reads decode without copying.
package binread
