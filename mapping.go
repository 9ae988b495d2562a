package vorbis

// CouplingStep is one channel-coupling pair read from a mapping's coupling
// table; Magnitude and Angle index distinct channels.
type CouplingStep struct {
	Magnitude int
	Angle     int
}

// Submap binds one submap slot to a floor and a residue.
type Submap struct {
	FloorIndex   int
	ResidueIndex int
}

// MappingConfig is a decoded mapping type 0 configuration (§4.3.3.e).
type MappingConfig struct {
	Submaps       int
	CouplingSteps []CouplingStep
	// ChannelMux is nil unless Submaps > 1, in which case it has one entry
	// per audio channel selecting that channel's submap.
	ChannelMux    []int
	SubmapConfigs []Submap
}

// decodeMappings reads the setup header's mapping list (§4.3.3.e).
func decodeMappings(br *BitReader, channels, numFloors, numResidues int) ([]*MappingConfig, error) {
	countVal, err := br.ReadUint(6)
	if err != nil {
		return nil, toCorrupted(err)
	}
	count := int(countVal) + 1
	mappings := make([]*MappingConfig, count)
	for i := 0; i < count; i++ {
		m, err := decodeMapping(br, channels, numFloors, numResidues)
		if err != nil {
			return nil, err
		}
		mappings[i] = m
	}
	return mappings, nil
}

func decodeMapping(br *BitReader, channels, numFloors, numResidues int) (*MappingConfig, error) {
	typeVal, err := br.ReadUint(16)
	if err != nil {
		return nil, toCorrupted(err)
	}
	if typeVal != 0 {
		return nil, corrupted(br.Offset(), "mapping type %d must be 0", typeVal)
	}

	hasSubmaps, err := br.ReadBit()
	if err != nil {
		return nil, toCorrupted(err)
	}
	submaps := 1
	if hasSubmaps != 0 {
		sv, err := br.ReadUint(4)
		if err != nil {
			return nil, toCorrupted(err)
		}
		submaps = int(sv) + 1
	}

	hasCoupling, err := br.ReadBit()
	if err != nil {
		return nil, toCorrupted(err)
	}
	var couplingSteps []CouplingStep
	if hasCoupling != 0 {
		csv, err := br.ReadUint(8)
		if err != nil {
			return nil, toCorrupted(err)
		}
		steps := int(csv) + 1
		width := uint(ilog(int64(channels - 1)))
		couplingSteps = make([]CouplingStep, steps)
		for i := 0; i < steps; i++ {
			mv, err := br.ReadUint(width)
			if err != nil {
				return nil, toCorrupted(err)
			}
			av, err := br.ReadUint(width)
			if err != nil {
				return nil, toCorrupted(err)
			}
			magnitude, angle := int(mv), int(av)
			if magnitude >= channels || angle >= channels || angle == magnitude {
				return nil, corrupted(br.Offset(), "mapping coupling step (%d,%d) invalid for %d channels", magnitude, angle, channels)
			}
			couplingSteps[i] = CouplingStep{Magnitude: magnitude, Angle: angle}
		}
	}

	reserved, err := br.ReadUint(2)
	if err != nil {
		return nil, toCorrupted(err)
	}
	if reserved != 0 {
		return nil, corrupted(br.Offset(), "mapping reserved field is nonzero")
	}

	var mux []int
	if submaps > 1 {
		mux = make([]int, channels)
		for c := 0; c < channels; c++ {
			mv, err := br.ReadUint(4)
			if err != nil {
				return nil, toCorrupted(err)
			}
			if int(mv) > submaps-1 {
				return nil, corrupted(br.Offset(), "mapping channel mux %d exceeds submap count", mv)
			}
			mux[c] = int(mv)
		}
	}

	submapConfigs := make([]Submap, submaps)
	for s := 0; s < submaps; s++ {
		if _, err := br.ReadUint(8); err != nil { // unused placeholder
			return nil, toCorrupted(err)
		}
		fv, err := br.ReadUint(8)
		if err != nil {
			return nil, toCorrupted(err)
		}
		rv, err := br.ReadUint(8)
		if err != nil {
			return nil, toCorrupted(err)
		}
		if int(fv) >= numFloors {
			return nil, corrupted(br.Offset(), "mapping submap floor index %d out of range", fv)
		}
		if int(rv) >= numResidues {
			return nil, corrupted(br.Offset(), "mapping submap residue index %d out of range", rv)
		}
		submapConfigs[s] = Submap{FloorIndex: int(fv), ResidueIndex: int(rv)}
	}

	return &MappingConfig{
		Submaps:       submaps,
		CouplingSteps: couplingSteps,
		ChannelMux:    mux,
		SubmapConfigs: submapConfigs,
	}, nil
}
