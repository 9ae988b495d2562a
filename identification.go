package vorbis

var validBlocksizes = map[uint16]bool{
	64: true, 128: true, 256: true, 512: true,
	1024: true, 2048: true, 4096: true, 8192: true,
}

// parseIdentificationHeader reads the identification packet body (§4.3.1)
// into info. The packet type byte and "vorbis" sync are already consumed
// by the caller.
func parseIdentificationHeader(br *BitReader, info *LogicalStreamInfo) error {
	version, err := br.ReadUint(32)
	if err != nil {
		return toCorrupted(err)
	}
	if version != 0 {
		return corrupted(br.Offset(), "identification header vorbis_version %d must be 0", version)
	}

	channels, err := br.ReadUint(8)
	if err != nil {
		return toCorrupted(err)
	}
	sampleRate, err := br.ReadUint(32)
	if err != nil {
		return toCorrupted(err)
	}
	bitrateMax, err := br.ReadSint(32)
	if err != nil {
		return toCorrupted(err)
	}
	bitrateNominal, err := br.ReadSint(32)
	if err != nil {
		return toCorrupted(err)
	}
	bitrateMin, err := br.ReadSint(32)
	if err != nil {
		return toCorrupted(err)
	}
	bs0exp, err := br.ReadUint(4)
	if err != nil {
		return toCorrupted(err)
	}
	bs1exp, err := br.ReadUint(4)
	if err != nil {
		return toCorrupted(err)
	}
	framingBit, err := br.ReadBit()
	if err != nil {
		return toCorrupted(err)
	}

	if channels == 0 {
		return corrupted(br.Offset(), "identification header audio_channels must be >= 1")
	}
	if sampleRate == 0 {
		return corrupted(br.Offset(), "identification header audio_sample_rate must be >= 1")
	}
	if framingBit == 0 {
		return corrupted(br.Offset(), "identification header framing bit must be 1")
	}

	blocksize0 := uint16(1) << uint(bs0exp)
	blocksize1 := uint16(1) << uint(bs1exp)
	if !validBlocksizes[blocksize0] || !validBlocksizes[blocksize1] {
		return corrupted(br.Offset(), "identification header blocksizes %d/%d are not valid powers of two", blocksize0, blocksize1)
	}
	if blocksize0 > blocksize1 {
		return corrupted(br.Offset(), "identification header blocksize_0 %d exceeds blocksize_1 %d", blocksize0, blocksize1)
	}

	info.AudioChannels = uint8(channels)
	info.AudioSampleRate = uint32(sampleRate)
	info.BitrateMax = int32(bitrateMax)
	info.BitrateNominal = int32(bitrateNominal)
	info.BitrateMin = int32(bitrateMin)
	info.Blocksize0 = blocksize0
	info.Blocksize1 = blocksize1
	return nil
}
