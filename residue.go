package vorbis

// ResidueConfig is a decoded residue configuration (§4.3.3.d), covering
// residue types 0, 1 and 2 uniformly: the three wire types differ only in
// how the audio-decode phase walks partitions, not in header layout.
type ResidueConfig struct {
	Begin           int
	End             int
	PartitionSize   int
	Classifications int
	Classbook       int
	// Cascade holds the classification×book bitmask read for each
	// classification; Books[i][j] is populated iff bit j of Cascade[i] is set.
	Cascade []int
	Books   [][8]OptionalIndex
}

// decodeResidues reads the setup header's residue list (§4.3.3.d).
// codebooks must already be fully decoded so referenced indices and their
// properties (dimensions, lookup_type) can be cross-checked.
func decodeResidues(br *BitReader, codebooks []*Codebook) ([]ResidueEntry, error) {
	countVal, err := br.ReadUint(6)
	if err != nil {
		return nil, toCorrupted(err)
	}
	count := int(countVal) + 1
	residues := make([]ResidueEntry, count)
	for i := 0; i < count; i++ {
		entry, err := decodeResidue(br, codebooks)
		if err != nil {
			return nil, err
		}
		residues[i] = entry
	}
	return residues, nil
}

func decodeResidue(br *BitReader, codebooks []*Codebook) (ResidueEntry, error) {
	typeVal, err := br.ReadUint(16)
	if err != nil {
		return ResidueEntry{}, toCorrupted(err)
	}
	residueType := int(typeVal)
	if residueType < 0 || residueType > 2 {
		return ResidueEntry{}, corrupted(br.Offset(), "unknown residue type %d", residueType)
	}

	beginVal, err := br.ReadUint(24)
	if err != nil {
		return ResidueEntry{}, toCorrupted(err)
	}
	endVal, err := br.ReadUint(24)
	if err != nil {
		return ResidueEntry{}, toCorrupted(err)
	}
	partSizeVal, err := br.ReadUint(24)
	if err != nil {
		return ResidueEntry{}, toCorrupted(err)
	}
	classificationsVal, err := br.ReadUint(6)
	if err != nil {
		return ResidueEntry{}, toCorrupted(err)
	}
	classbookVal, err := br.ReadUint(8)
	if err != nil {
		return ResidueEntry{}, toCorrupted(err)
	}

	partitionSize := int(partSizeVal) + 1
	classifications := int(classificationsVal) + 1
	classbook := int(classbookVal)

	if classbook >= len(codebooks) {
		return ResidueEntry{}, corrupted(br.Offset(), "residue classbook index %d out of range", classbook)
	}
	shapeIdx := classbook ^ classifications
	if shapeIdx < 0 || shapeIdx >= len(codebooks) {
		return ResidueEntry{}, corrupted(br.Offset(), "residue classbook^classifications index %d out of range", shapeIdx)
	}
	if codebooks[shapeIdx].Dimensions > codebooks[classbook].Entries {
		return ResidueEntry{}, corrupted(br.Offset(), "residue classbook shaping invariant violated")
	}

	cascade := make([]int, classifications)
	for i := 0; i < classifications; i++ {
		lowVal, err := br.ReadUint(3)
		if err != nil {
			return ResidueEntry{}, toCorrupted(err)
		}
		bitflag, err := br.ReadBit()
		if err != nil {
			return ResidueEntry{}, toCorrupted(err)
		}
		high := 0
		if bitflag != 0 {
			hv, err := br.ReadUint(5)
			if err != nil {
				return ResidueEntry{}, toCorrupted(err)
			}
			high = int(hv)
		}
		cascade[i] = high*8 + int(lowVal)
	}

	books := make([][8]OptionalIndex, classifications)
	for i := 0; i < classifications; i++ {
		for j := 0; j < 8; j++ {
			if cascade[i]&(1<<uint(j)) == 0 {
				continue
			}
			bv, err := br.ReadUint(8)
			if err != nil {
				return ResidueEntry{}, toCorrupted(err)
			}
			idx := int(bv)
			if idx >= len(codebooks) {
				return ResidueEntry{}, corrupted(br.Offset(), "residue book index %d out of range", idx)
			}
			if codebooks[idx].LookupType == 0 {
				return ResidueEntry{}, corrupted(br.Offset(), "residue book %d has lookup_type 0", idx)
			}
			books[i][j] = OptionalIndex{Valid: true, Index: idx}
		}
	}

	return ResidueEntry{
		ResidueType: residueType,
		Residue: &ResidueConfig{
			Begin:           int(beginVal),
			End:             int(endVal),
			PartitionSize:   partitionSize,
			Classifications: classifications,
			Classbook:       classbook,
			Cascade:         cascade,
			Books:           books,
		},
	}, nil
}
