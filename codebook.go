package vorbis

// CodewordLength is an option-style representation of one codebook entry's
// codeword length: either unused, or a length in 1..32. Kept as a sum type
// rather than the wire format's bare "-1 means unused" so nothing in this
// package's public surface encodes absence as a magic integer.
type CodewordLength struct {
	Used   bool
	Length int
}

// Codebook is a decoded Vorbis codebook: a canonical Huffman code over
// `Entries` codewords, plus an optional vector-quantization lookup table.
type Codebook struct {
	Dimensions int
	Entries    int

	CodewordLengths []CodewordLength
	// Codewords holds one bit string per entry, stored bit-reversed
	// relative to the natural Huffman tree so that matching a codeword
	// during decode is a direct prefix test against bits delivered
	// LSB-first by the Bit Reader. Unused entries hold "".
	Codewords []string

	LookupType int

	// Populated only when LookupType != 0.
	MinValue      float64
	DeltaValue    float64
	ValueBits     int
	SequenceP     bool
	Multiplicands []uint32
	VQTable       [][]float64
}

const codebookSync = "BCV"

// decodeCodebook reads one codebook from the setup header, per §4.3.3.a.
func decodeCodebook(br *BitReader) (*Codebook, error) {
	sync, err := br.ReadBytes(3)
	if err != nil {
		return nil, toCorrupted(err)
	}
	if string(sync) != codebookSync {
		return nil, corrupted(br.Offset(), "codebook sync pattern mismatch")
	}

	dimVal, err := br.ReadUint(16)
	if err != nil {
		return nil, toCorrupted(err)
	}
	entriesVal, err := br.ReadUint(24)
	if err != nil {
		return nil, toCorrupted(err)
	}
	dimensions := int(dimVal)
	entries := int(entriesVal)
	if entries == 1 {
		return nil, corrupted(br.Offset(), "codebook entries must not equal 1")
	}
	if entries > maxReasonableCount {
		return nil, corrupted(br.Offset(), "codebook entries count %d exceeds sanity bound", entries)
	}

	orderedBit, err := br.ReadBit()
	if err != nil {
		return nil, toCorrupted(err)
	}
	ordered := orderedBit != 0
	sparse := false
	if !ordered {
		sparseBit, err := br.ReadBit()
		if err != nil {
			return nil, toCorrupted(err)
		}
		sparse = sparseBit != 0
	}

	lengths, err := decodeCodewordLengths(br, entries, ordered, sparse)
	if err != nil {
		return nil, err
	}

	codewords, err := buildHuffmanCodewords(lengths)
	if err != nil {
		return nil, err
	}
	if !checkHuffmanComplete(lengths) {
		return nil, corrupted(br.Offset(), "codebook Huffman tree is incomplete")
	}

	lookupTypeVal, err := br.ReadUint(4)
	if err != nil {
		return nil, toCorrupted(err)
	}
	lookupType := int(lookupTypeVal)

	cb := &Codebook{
		Dimensions:      dimensions,
		Entries:         entries,
		CodewordLengths: lengths,
		Codewords:       codewords,
		LookupType:      lookupType,
	}

	switch lookupType {
	case 0:
		// No VQ lookup table.
	case 1, 2:
		if err := decodeVQLookup(br, cb); err != nil {
			return nil, err
		}
	default:
		return nil, corrupted(br.Offset(), "codebook lookup_type %d is invalid", lookupType)
	}
	return cb, nil
}

// decodeCodewordLengths reads the `entries`-length codeword-length vector,
// per the three wire encodings (ordered / dense / sparse) in §4.3.3.a.
func decodeCodewordLengths(br *BitReader, entries int, ordered, sparse bool) ([]CodewordLength, error) {
	lengths := make([]CodewordLength, entries)

	if ordered {
		cur, err := br.ReadUint(5)
		if err != nil {
			return nil, toCorrupted(err)
		}
		currentLength := int(cur) + 1
		i := 0
		for i < entries {
			width := uint(ilog(int64(entries - i)))
			number := 0
			if width > 0 {
				n, err := br.ReadUint(width)
				if err != nil {
					return nil, toCorrupted(err)
				}
				number = int(n)
			}
			if i+number > entries {
				return nil, corrupted(br.Offset(), "codebook ordered length run overflows entry count")
			}
			if currentLength > 32 {
				return nil, corrupted(br.Offset(), "codebook codeword length %d exceeds 32", currentLength)
			}
			for k := i; k < i+number; k++ {
				lengths[k] = CodewordLength{Used: true, Length: currentLength}
			}
			i += number
			currentLength++
		}
		return lengths, nil
	}

	for i := 0; i < entries; i++ {
		if sparse {
			flag, err := br.ReadBit()
			if err != nil {
				return nil, toCorrupted(err)
			}
			if flag == 0 {
				continue // lengths[i] retains the zero value: Used == false
			}
		}
		n, err := br.ReadUint(5)
		if err != nil {
			return nil, toCorrupted(err)
		}
		length := int(n) + 1
		if length > 32 {
			return nil, corrupted(br.Offset(), "codebook codeword length %d exceeds 32", length)
		}
		lengths[i] = CodewordLength{Used: true, Length: length}
	}
	return lengths, nil
}

// buildHuffmanCodewords assigns a codeword to every used entry using the
// canonical "available-branches" construction (§4.3.3.a step 5, §9).
// available[k] holds, left-justified in a 32-bit word, the next unclaimed
// codeword at depth k; a zero slot means the subtree at that depth is
// already fully claimed.
func buildHuffmanCodewords(lengths []CodewordLength) ([]string, error) {
	var available [33]uint32
	codewords := make([]string, len(lengths))
	started := false

	for i, cl := range lengths {
		if !cl.Used {
			continue
		}
		L := cl.Length
		if L < 1 || L > 32 {
			return nil, corrupted(0, "codebook codeword length %d out of range", L)
		}

		var code uint32
		if !started {
			for k := 1; k <= L; k++ {
				available[k] = uint32(1) << uint(32-k)
			}
			started = true
		} else {
			branch := L
			for branch > 0 && available[branch] == 0 {
				branch--
			}
			if branch == 0 {
				return nil, corrupted(0, "codebook Huffman tree exhausted before all codewords were assigned")
			}
			old := available[branch]
			code = old >> uint(32-L)
			available[branch] = 0
			for d := branch + 1; d <= L; d++ {
				available[d] = old + (uint32(1) << uint(32-d))
			}
		}
		codewords[i] = reversedBitString(code, L)
	}
	return codewords, nil
}

// checkHuffmanComplete verifies the Kraft equality sum(2^-length) == 1 over
// every used entry, i.e. the tree covers every leaf with no gaps and no
// overlaps. Scaled by 2^32 so the comparison is exact integer arithmetic.
func checkHuffmanComplete(lengths []CodewordLength) bool {
	var total uint64
	used := false
	for _, cl := range lengths {
		if !cl.Used {
			continue
		}
		used = true
		total += uint64(1) << uint(32-cl.Length)
	}
	if !used {
		return true
	}
	return total == uint64(1)<<32
}

// reversedBitString renders the natural (MSB-first) `length`-bit value
// code as a bit string, then reverses it for storage (see Codebook.Codewords).
func reversedBitString(code uint32, length int) string {
	bits := make([]byte, length)
	for i := 0; i < length; i++ {
		shift := uint(length - 1 - i)
		if (code>>shift)&1 == 1 {
			bits[i] = '1'
		} else {
			bits[i] = '0'
		}
	}
	for l, r := 0, length-1; l < r; l, r = l+1, r-1 {
		bits[l], bits[r] = bits[r], bits[l]
	}
	return string(bits)
}

// decodeVQLookup reads a codebook's vector-quantization lookup table
// (§4.3.3.a step 6), populating cb in place.
func decodeVQLookup(br *BitReader, cb *Codebook) error {
	minRaw, err := br.ReadUint(32)
	if err != nil {
		return toCorrupted(err)
	}
	deltaRaw, err := br.ReadUint(32)
	if err != nil {
		return toCorrupted(err)
	}
	valueBitsRaw, err := br.ReadUint(4)
	if err != nil {
		return toCorrupted(err)
	}
	seqBit, err := br.ReadBit()
	if err != nil {
		return toCorrupted(err)
	}

	cb.MinValue = float32Unpack(uint32(minRaw))
	cb.DeltaValue = float32Unpack(uint32(deltaRaw))
	cb.ValueBits = int(valueBitsRaw) + 1
	cb.SequenceP = seqBit != 0

	if cb.LookupType == 2 && cb.SequenceP {
		return notSupported(br.Offset(), "codebook lookup_type 2 with sequence_p is not supported")
	}

	var lookupValues int
	if cb.LookupType == 1 {
		lookupValues = lookup1Values(cb.Entries, cb.Dimensions)
	} else {
		lookupValues = cb.Entries * cb.Dimensions
	}
	if lookupValues < 0 || lookupValues > maxReasonableCount {
		return corrupted(br.Offset(), "codebook VQ lookup table size %d exceeds sanity bound", lookupValues)
	}
	if lookupValues <= 0 && cb.Dimensions > 0 {
		return corrupted(br.Offset(), "codebook VQ lookup table has no usable values for dimensions %d", cb.Dimensions)
	}

	multiplicands := make([]uint32, lookupValues)
	for i := range multiplicands {
		v, err := br.ReadUint(uint(cb.ValueBits))
		if err != nil {
			return toCorrupted(err)
		}
		multiplicands[i] = uint32(v)
	}
	cb.Multiplicands = multiplicands

	vqTable := make([][]float64, cb.Entries)
	for n := 0; n < cb.Entries; n++ {
		vec := make([]float64, cb.Dimensions)
		last := 0.0
		if cb.LookupType == 1 {
			indexDivisor := 1
			for i := 0; i < cb.Dimensions; i++ {
				idx := (n / indexDivisor) % lookupValues
				val := float64(multiplicands[idx])*cb.DeltaValue + cb.MinValue + last
				vec[i] = val
				if cb.SequenceP {
					last = val
				}
				indexDivisor *= lookupValues
			}
		} else {
			for i := 0; i < cb.Dimensions; i++ {
				idx := n*cb.Dimensions + i
				val := float64(multiplicands[idx])*cb.DeltaValue + cb.MinValue + last
				vec[i] = val
				if cb.SequenceP {
					last = val
				}
			}
		}
		vqTable[n] = vec
	}
	cb.VQTable = vqTable
	return nil
}
