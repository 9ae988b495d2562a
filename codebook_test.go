package vorbis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// reverseString undoes the bit-reversal buildHuffmanCodewords applies for
// storage, so tests can compare against the spec's natural-order examples.
func reverseString(s string) string {
	b := []byte(s)
	for l, r := 0, len(b)-1; l < r; l, r = l+1, r-1 {
		b[l], b[r] = b[r], b[l]
	}
	return string(b)
}

func TestBuildHuffmanCodewordsDenseExample(t *testing.T) {
	lengths := []CodewordLength{
		{Used: true, Length: 1},
		{Used: true, Length: 3},
		{Used: true, Length: 4},
		{Used: true, Length: 7},
		{Used: true, Length: 2},
		{Used: true, Length: 5},
		{Used: true, Length: 6},
		{Used: true, Length: 7},
	}
	codewords, err := buildHuffmanCodewords(lengths)
	require.NoError(t, err)
	require.True(t, checkHuffmanComplete(lengths))

	want := []string{"0", "100", "1010", "1011000", "11", "10111", "101101", "1011001"}
	for i, w := range want {
		require.Equal(t, w, reverseString(codewords[i]), "entry %d", i)
	}
}

func TestBuildHuffmanCodewordsSparseExample(t *testing.T) {
	lengths := []CodewordLength{
		{Used: true, Length: 1},
		{Used: true, Length: 5},
		{Used: true, Length: 5},
		{}, // unused
		{Used: true, Length: 5},
		{Used: true, Length: 5},
		{}, // unused
		{Used: true, Length: 5},
	}
	codewords, err := buildHuffmanCodewords(lengths)
	require.NoError(t, err)

	want := []string{"0", "10000", "10001", "", "10010", "10011", "", "10100"}
	for i, w := range want {
		if !lengths[i].Used {
			require.Equal(t, "", codewords[i], "entry %d", i)
			continue
		}
		require.Equal(t, w, reverseString(codewords[i]), "entry %d", i)
	}
}

func TestDecodeCodewordLengthsOrderedExample(t *testing.T) {
	// initial length 2, run 3, then run 5 (length 3): [2,2,2,3,3,3,3,3,...]
	entries := 49
	br := NewBitReader(encodeOrderedLengthsFixture(entries))
	lengths, err := decodeCodewordLengths(br, entries, true, false)
	require.NoError(t, err)
	require.True(t, lengths[0].Used)
	require.Equal(t, 2, lengths[0].Length)
	require.Equal(t, 2, lengths[1].Length)
	require.Equal(t, 2, lengths[2].Length)
	require.Equal(t, 3, lengths[3].Length)
	require.Equal(t, 3, lengths[7].Length)
}

// encodeOrderedLengthsFixture builds the bit-packed body decodeCodewordLengths
// expects for an ordered codeword-length vector: initial length (5 bits,
// minus 1), then repeated run-length fields sized ilog(entries-i).
func encodeOrderedLengthsFixture(entries int) []byte {
	var bits []int
	appendUint := func(v, n int) {
		for i := 0; i < n; i++ {
			bits = append(bits, (v>>uint(i))&1)
		}
	}
	appendUint(1, 5) // current_length = 2

	runs := []int{3, 5} // 3 entries of length 2, 5 of length 3
	i := 0
	for _, run := range runs {
		width := ilog(int64(entries - i))
		appendUint(run, width)
		i += run
	}
	// cover the remaining entries with one final run (length 4).
	for i < entries {
		width := ilog(int64(entries - i))
		remaining := entries - i
		appendUint(remaining, width)
		i += remaining
	}

	buf := make([]byte, (len(bits)+7)/8)
	for idx, b := range bits {
		if b == 1 {
			buf[idx/8] |= 1 << uint(idx%8)
		}
	}
	return buf
}

func TestDecodeCodebookRejectsSingleEntry(t *testing.T) {
	buf := packCodebookHeader(1, 1)
	br := NewBitReader(buf)
	_, err := decodeCodebook(br)
	require.True(t, isKind(err, KindCorrupted))
}

// packCodebookHeader builds the sync+dimensions+entries prefix of a
// codebook packet body; ReadBytes reconstructs a byte-aligned literal
// byte unchanged, so the sync pattern needs no bit packing.
func packCodebookHeader(dimensions, entries int) []byte {
	var buf []byte
	buf = append(buf, 'B', 'C', 'V')
	buf = append(buf, packLE(uint64(dimensions), 16)...)
	buf = append(buf, packLE(uint64(entries), 24)...)
	return buf
}

// packLE packs v into ceil(n/8) bytes using the bitstream's LSB-first
// convention, matching what BitReader.ReadUint(n) would reconstruct.
func packLE(v uint64, n int) []byte {
	buf := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		if (v>>uint(i))&1 == 1 {
			buf[i/8] |= 1 << uint(i%8)
		}
	}
	return buf
}
