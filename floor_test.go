package vorbis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildFloor1Body packs a floor type 1 body (without the leading 16-bit
// floor type field) for classes with subclasses=0 (a single, unused
// subclass-book slot each, no masterbook).
func buildFloor1Body(partitions int, partitionClassList, classDims []int, rangebits, multiplier int, xvals []int) []byte {
	w := &bitWriter{}
	w.WriteUint(uint64(partitions), 5)
	for _, c := range partitionClassList {
		w.WriteUint(uint64(c), 4)
	}
	for _, dims := range classDims {
		w.WriteUint(uint64(dims-1), 3)
		w.WriteUint(0, 2) // subclasses = 0
		w.WriteUint(0, 8) // single subclass-book slot, unused
	}
	w.WriteUint(uint64(multiplier-1), 2)
	w.WriteUint(uint64(rangebits), 4)
	for _, v := range xvals {
		w.WriteUint(uint64(v), rangebits)
	}
	return w.Bytes()
}

func TestDecodeFloor1XListConstruction(t *testing.T) {
	partitions := 3
	partitionClassList := []int{0, 1, 1}
	classDims := []int{2, 3} // class 0 has 2 dims, class 1 has 3 dims
	rangebits := 4
	// partition0 (class0, 2 dims) + partition1 (class1, 3 dims) + partition2
	// (class1, 3 dims) = 8 values, distinct and within [1,15] so they never
	// collide with the initial [0, 1<<rangebits] entries.
	xvals := []int{1, 2, 3, 4, 5, 6, 7, 8}
	body := buildFloor1Body(partitions, partitionClassList, classDims, rangebits, 1, xvals)

	br := NewBitReader(body)
	f, err := decodeFloor1(br, 1)
	require.NoError(t, err)
	require.Equal(t, 3, f.Partitions)
	require.Equal(t, 4, f.Rangebits)
	require.Equal(t, 10, f.Values) // 2 initial + 8 partition-contributed
	require.Equal(t, []int{0, 16, 1, 2, 3, 4, 5, 6, 7, 8}, f.XList)
}

func TestDecodeFloor1RejectsTooManyXListEntries(t *testing.T) {
	partitions := 31
	partitionClassList := make([]int, partitions)
	classDims := []int{3} // every partition uses class 0, 3 dims each: 2+93=95 > 65
	xvals := make([]int, partitions*3)
	for i := range xvals {
		xvals[i] = i % 4
	}
	body := buildFloor1Body(partitions, partitionClassList, classDims, 2, 1, xvals)

	br := NewBitReader(body)
	_, err := decodeFloor1(br, 1)
	require.True(t, isKind(err, KindCorrupted))
}

func TestDecodeFloor1RejectsDuplicateXListValue(t *testing.T) {
	partitions := 1
	partitionClassList := []int{0}
	classDims := []int{2}
	rangebits := 4
	xvals := []int{0, 3} // 0 duplicates the initial entry
	body := buildFloor1Body(partitions, partitionClassList, classDims, rangebits, 1, xvals)

	br := NewBitReader(body)
	_, err := decodeFloor1(br, 1)
	require.True(t, isKind(err, KindCorrupted))
}

func TestDecodeFloor1RejectsMasterbookOutOfRange(t *testing.T) {
	w := &bitWriter{}
	w.WriteUint(1, 5)    // partitions = 1
	w.WriteUint(0, 4)    // partition_class_list[0] = 0
	w.WriteUint(1, 3)    // dims - 1 = 1, so dims = 2
	w.WriteUint(1, 2)    // subclasses = 1
	w.WriteUint(7, 8)    // masterbook = 7, out of range for numCodebooks=1
	w.WriteUint(0, 8)    // subclass book slot 0, unused
	w.WriteUint(0, 8)    // subclass book slot 1, unused
	w.WriteUint(0, 2)    // multiplier - 1
	w.WriteUint(4, 4)    // rangebits = 4
	w.WriteUint(1, 4)    // x value for partition 0's class: first of 2 dims
	w.WriteUint(2, 4)    // second of 2 dims

	br := NewBitReader(w.Bytes())
	_, err := decodeFloor1(br, 1)
	require.True(t, isKind(err, KindCorrupted))
}

func TestDecodeFloorType0NotSupported(t *testing.T) {
	w := &bitWriter{}
	w.WriteUint(0, 16) // floor type 0
	br := NewBitReader(w.Bytes())
	_, err := decodeFloor(br, 1)
	require.True(t, isKind(err, KindNotSupported))
}
