package vorbis

import "math"

// ilog returns the 1-based position of the highest set bit of x, or 0 if
// x <= 0. This matches the Vorbis I specification's ilog(), which is used
// throughout setup-header parsing to size bit fields (e.g. the width of a
// coupling channel index is ilog(channels-1)).
func ilog(x int64) int {
	n := 0
	for x > 0 {
		n++
		x >>= 1
	}
	return n
}

// float32Unpack decodes a packed 32-bit float as used by codebook VQ
// lookup tables: a sign bit (31), an 10-bit exponent (21..30) biased by
// 788, and a 21-bit mantissa (0..20).
func float32Unpack(x uint32) float64 {
	mantissa := int64(x & 0x1fffff)
	sign := x & 0x80000000
	exponent := int((x & 0x7fe00000) >> 21)
	if sign != 0 {
		mantissa = -mantissa
	}
	return math.Ldexp(float64(mantissa), exponent-788)
}

// lookup1Values returns the largest integer r such that r^dimensions <=
// entries, used to size lookup_type 1 VQ tables.
func lookup1Values(entries, dimensions int) int {
	if dimensions <= 0 {
		return 0
	}
	r := int(math.Floor(math.Pow(float64(entries), 1.0/float64(dimensions))))
	if r < 1 {
		r = 1
	}
	for ipow(r+1, dimensions) <= entries {
		r++
	}
	for r > 1 && ipow(r, dimensions) > entries {
		r--
	}
	return r
}

func ipow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		if base > 0 && result > math.MaxInt/base {
			// overflowed past entries' plausible range; callers only ever
			// compare against entries which fits in 24 bits, so saturate.
			return math.MaxInt
		}
		result *= base
	}
	return result
}

// bitReverse reverses the 32 bits of x. Huffman codewords are stored
// bit-reversed so that decode can prefix-match bits delivered LSB-first by
// the Bit Reader, but buildHuffmanCodewords reverses them as strings
// (reversedBitString) and does not call this function.
func bitReverse(x uint32) uint32 {
	var v uint32
	for i := 0; i < 32; i++ {
		v <<= 1
		v |= x & 1
		x >>= 1
	}
	return v
}
