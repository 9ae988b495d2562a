package vorbis

// LogicalStreamInfo is the fully decoded description of one Vorbis I
// logical bitstream's three setup headers. It is built incrementally by
// Parser.ProcessHeaders and is read-only once returned; on any fatal
// error no partial LogicalStreamInfo is exposed.
type LogicalStreamInfo struct {
	// Identification header fields.
	AudioChannels    uint8
	AudioSampleRate  uint32
	BitrateMax       int32
	BitrateNominal   int32
	BitrateMin       int32
	Blocksize0       uint16
	Blocksize1       uint16

	// Comment header fields.
	VendorString               string
	UserComments                []string
	CommentHeaderDecodingFailed bool

	// Setup header fields.
	Codebooks []*Codebook
	Floors    []FloorEntry
	Residues  []ResidueEntry
	Mappings  []*MappingConfig
	Modes     []*ModeConfig
}

// FloorEntry pairs a floor's wire-level type with its decoded
// configuration. Floor type 0 is never populated: it is reported as
// NotSupported, per spec.
type FloorEntry struct {
	FloorType int
	Floor1    *Floor1Config
}

// ResidueEntry pairs a residue's wire-level type with its decoded
// configuration.
type ResidueEntry struct {
	ResidueType int
	Residue     *ResidueConfig
}

const maxReasonableCount = 1 << 16

// OptionalIndex is an option-style index into a sibling slice (a codebook,
// floor, residue, mapping, or mode list). Several wire fields encode
// "unused" as -1 or another sentinel; this type is how every such field
// is represented in this package's public surface instead (§9 Design Notes).
type OptionalIndex struct {
	Valid bool
	Index int
}
