package vorbis

// ModeConfig is a decoded mode (§4.3.3.f): a per-frame switch between
// window sizes, bound to one mapping.
type ModeConfig struct {
	Blockflag     bool
	WindowType    int
	TransformType int
	MappingIndex  int
}

// decodeModes reads the setup header's mode list (§4.3.3.f).
func decodeModes(br *BitReader, numMappings int) ([]*ModeConfig, error) {
	countVal, err := br.ReadUint(6)
	if err != nil {
		return nil, toCorrupted(err)
	}
	count := int(countVal) + 1
	modes := make([]*ModeConfig, count)
	for i := 0; i < count; i++ {
		m, err := decodeMode(br, numMappings)
		if err != nil {
			return nil, err
		}
		modes[i] = m
	}
	return modes, nil
}

func decodeMode(br *BitReader, numMappings int) (*ModeConfig, error) {
	bf, err := br.ReadBit()
	if err != nil {
		return nil, toCorrupted(err)
	}
	wt, err := br.ReadUint(16)
	if err != nil {
		return nil, toCorrupted(err)
	}
	tt, err := br.ReadUint(16)
	if err != nil {
		return nil, toCorrupted(err)
	}
	mi, err := br.ReadUint(8)
	if err != nil {
		return nil, toCorrupted(err)
	}

	if wt != 0 {
		return nil, corrupted(br.Offset(), "mode window_type %d must be 0", wt)
	}
	if tt != 0 {
		return nil, corrupted(br.Offset(), "mode transform_type %d must be 0", tt)
	}
	if int(mi) >= numMappings {
		return nil, corrupted(br.Offset(), "mode mapping_index %d out of range", mi)
	}

	return &ModeConfig{
		Blockflag:     bf != 0,
		WindowType:    int(wt),
		TransformType: int(tt),
		MappingIndex:  int(mi),
	}, nil
}
