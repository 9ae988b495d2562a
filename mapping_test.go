package vorbis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildMappingBody packs one mapping (type 0) with no coupling and a
// single implicit submap, for a given channel count.
func buildMappingBody(channels int, floorIndex, residueIndex int) []byte {
	w := &bitWriter{}
	w.WriteUint(0, 16) // mapping type
	w.WriteBit(0)      // no explicit submap count
	w.WriteBit(0)      // no coupling steps
	w.WriteUint(0, 2)  // reserved
	w.WriteUint(0, 8)  // unused placeholder
	w.WriteUint(uint64(floorIndex), 8)
	w.WriteUint(uint64(residueIndex), 8)
	return w.Bytes()
}

func TestDecodeMappingSingleSubmap(t *testing.T) {
	br := NewBitReader(buildMappingBody(2, 0, 0))
	m, err := decodeMapping(br, 2, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, m.Submaps)
	require.Nil(t, m.CouplingSteps)
	require.Nil(t, m.ChannelMux)
	require.Equal(t, []Submap{{FloorIndex: 0, ResidueIndex: 0}}, m.SubmapConfigs)
}

func TestDecodeMappingRejectsNonZeroType(t *testing.T) {
	w := &bitWriter{}
	w.WriteUint(1, 16)
	br := NewBitReader(w.Bytes())
	_, err := decodeMapping(br, 2, 1, 1)
	require.True(t, isKind(err, KindCorrupted))
}

func TestDecodeMappingRejectsReservedBitsSet(t *testing.T) {
	w := &bitWriter{}
	w.WriteUint(0, 16)
	w.WriteBit(0)
	w.WriteBit(0)
	w.WriteUint(1, 2) // reserved nonzero
	br := NewBitReader(w.Bytes())
	_, err := decodeMapping(br, 2, 1, 1)
	require.True(t, isKind(err, KindCorrupted))
}

func TestDecodeMappingCouplingStepValidation(t *testing.T) {
	w := &bitWriter{}
	w.WriteUint(0, 16)
	w.WriteBit(0) // implicit 1 submap
	w.WriteBit(1) // has coupling
	w.WriteUint(0, 8)
	width := ilog(int64(2 - 1)) // channels=2
	w.WriteUint(0, width)             // magnitude = 0
	w.WriteUint(0, width)             // angle = 0, same as magnitude: invalid
	br := NewBitReader(w.Bytes())
	_, err := decodeMapping(br, 2, 1, 1)
	require.True(t, isKind(err, KindCorrupted))
}

func TestDecodeMappingCouplingStepValid(t *testing.T) {
	w := &bitWriter{}
	w.WriteUint(0, 16)
	w.WriteBit(0)
	w.WriteBit(1)
	w.WriteUint(0, 8) // 1 coupling step
	width := ilog(int64(2 - 1))
	w.WriteUint(0, width) // magnitude = 0
	w.WriteUint(1, width) // angle = 1
	w.WriteUint(0, 2)     // reserved
	w.WriteUint(0, 8)     // unused placeholder
	w.WriteUint(0, 8)     // floor index
	w.WriteUint(0, 8)     // residue index
	br := NewBitReader(w.Bytes())
	m, err := decodeMapping(br, 2, 1, 1)
	require.NoError(t, err)
	require.Equal(t, []CouplingStep{{Magnitude: 0, Angle: 1}}, m.CouplingSteps)
}

func TestDecodeMappingChannelMuxOutOfRange(t *testing.T) {
	w := &bitWriter{}
	w.WriteUint(0, 16)
	w.WriteBit(1) // explicit submap count
	w.WriteUint(1, 4) // submaps = 2
	w.WriteBit(0)     // no coupling
	w.WriteUint(0, 2) // reserved
	// channel mux: 2 channels, second value out of range for submaps=2
	w.WriteUint(0, 4)
	w.WriteUint(5, 4)
	br := NewBitReader(w.Bytes())
	_, err := decodeMapping(br, 2, 1, 1)
	require.True(t, isKind(err, KindCorrupted))
}

func TestDecodeMappingSubmapFloorIndexOutOfRange(t *testing.T) {
	br := NewBitReader(buildMappingBody(2, 5, 0))
	_, err := decodeMapping(br, 2, 1, 1)
	require.True(t, isKind(err, KindCorrupted))
}

func TestDecodeMappingSubmapResidueIndexOutOfRange(t *testing.T) {
	br := NewBitReader(buildMappingBody(2, 0, 5))
	_, err := decodeMapping(br, 2, 1, 1)
	require.True(t, isKind(err, KindCorrupted))
}
