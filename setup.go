package vorbis

// parseSetupHeader drives the setup packet's sub-parsers in wire order
// (§4.3.3): codebooks, time-domain placeholders, floors, residues,
// mappings, modes, then a closing framing bit. info.AudioChannels must
// already be populated (from the identification header) before this runs,
// since mapping decode needs the channel count. The packet type byte and
// "vorbis" sync are already consumed by the caller.
func parseSetupHeader(br *BitReader, info *LogicalStreamInfo) error {
	cbCountVal, err := br.ReadUint(8)
	if err != nil {
		return toCorrupted(err)
	}
	cbCount := int(cbCountVal) + 1
	if cbCount > maxReasonableCount {
		return corrupted(br.Offset(), "codebook count %d exceeds sanity bound", cbCount)
	}
	codebooks := make([]*Codebook, cbCount)
	for i := 0; i < cbCount; i++ {
		cb, err := decodeCodebook(br)
		if err != nil {
			return err
		}
		codebooks[i] = cb
	}
	info.Codebooks = codebooks

	if err := parseTimeDomainPlaceholders(br); err != nil {
		return err
	}

	floors, err := decodeFloors(br, len(codebooks))
	if err != nil {
		return err
	}
	info.Floors = floors

	residues, err := decodeResidues(br, codebooks)
	if err != nil {
		return err
	}
	info.Residues = residues

	mappings, err := decodeMappings(br, int(info.AudioChannels), len(floors), len(residues))
	if err != nil {
		return err
	}
	info.Mappings = mappings

	modes, err := decodeModes(br, len(mappings))
	if err != nil {
		return err
	}
	info.Modes = modes

	framingBit, err := br.ReadBit()
	if err != nil {
		return toCorrupted(err)
	}
	if framingBit == 0 {
		return corrupted(br.Offset(), "setup header framing bit must be 1")
	}
	return nil
}

// parseTimeDomainPlaceholders consumes the vestigial time-domain transform
// count (§4.3.3.b): every Vorbis I encoder writes zero here, but the field
// is still present on the wire and each entry must be checked.
func parseTimeDomainPlaceholders(br *BitReader) error {
	countVal, err := br.ReadUint(6)
	if err != nil {
		return toCorrupted(err)
	}
	count := int(countVal) + 1
	for i := 0; i < count; i++ {
		v, err := br.ReadUint(16)
		if err != nil {
			return toCorrupted(err)
		}
		if v != 0 {
			return corrupted(br.Offset(), "time-domain placeholder %d must be zero", v)
		}
	}
	return nil
}
