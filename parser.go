package vorbis

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	packetTypeIdentification = 0x01
	packetTypeComment        = 0x03
	packetTypeSetup          = 0x05
)

const vorbisSync = "vorbis"

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithLogger attaches a zerolog logger; Parser operations log at Debug
// level. A nil logger (the default) disables logging entirely.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// WithChecksumVerification enables the Ogg page CRC-32 check. It is off by
// default, matching §9's reference design, which omits the check for speed
// and relies on structural checks instead.
func WithChecksumVerification(enabled bool) Option {
	return func(p *Parser) { p.verifyChecksums = enabled }
}

// Parser drives an Ogg Page Reader and a Bit Reader over exactly one
// Vorbis I logical bitstream, producing a LogicalStreamInfo. It owns one
// open file handle and is not safe for concurrent use; parse independent
// files with independent Parsers.
type Parser struct {
	path            string
	pages           *PageReader
	logger          *zerolog.Logger
	verifyChecksums bool

	headerPackets [3]*Packet
}

// Open opens path, verifies it is an Ogg container, and runs the basic
// format probe from §4.3: the first three packets must begin with the
// Vorbis identification/comment/setup type bytes and the "vorbis" sync
// pattern. Any probe failure is reported as NotVorbis rather than
// Corrupted, per spec.
func Open(path string, opts ...Option) (*Parser, error) {
	p := &Parser{path: path}
	for _, opt := range opts {
		opt(p)
	}

	pages, err := OpenPageReader(path, p.verifyChecksums, p.logger)
	if err != nil {
		return nil, err
	}
	p.pages = pages

	if err := p.probe(); err != nil {
		pages.Close()
		return nil, err
	}
	return p, nil
}

func (p *Parser) probe() error {
	wantTypes := [3]byte{packetTypeIdentification, packetTypeComment, packetTypeSetup}
	for i, wantType := range wantTypes {
		pkt, err := p.pages.ReadPacket()
		if err != nil {
			return notVorbis(p.path)
		}
		if !hasVorbisSync(pkt.Bytes, wantType) {
			return notVorbis(p.path)
		}
		p.headerPackets[i] = pkt
	}
	return nil
}

func hasVorbisSync(b []byte, wantType byte) bool {
	return len(b) >= 7 && b[0] == wantType && string(b[1:7]) == vorbisSync
}

// ProcessHeaders parses the identification, comment and setup headers
// (buffered during Open's probe) into a LogicalStreamInfo, then advances
// past any trailing header-type packets until the first audio packet,
// leaving the Page Reader positioned there. No partial LogicalStreamInfo
// is ever returned: a fatal error anywhere in the three headers returns
// (nil, err).
func (p *Parser) ProcessHeaders() (*LogicalStreamInfo, error) {
	info := &LogicalStreamInfo{}

	idReader := NewBitReader(p.headerPackets[0].Bytes[7:])
	if err := parseIdentificationHeader(idReader, info); err != nil {
		return nil, err
	}
	if p.logger != nil {
		p.logger.Debug().
			Int("channels", int(info.AudioChannels)).
			Uint32("sample_rate", info.AudioSampleRate).
			Msg("parsed identification header")
	}

	commentReader := NewBitReader(p.headerPackets[1].Bytes[7:])
	if err := parseCommentHeader(commentReader, info); err != nil {
		return nil, err
	}

	setupReader := NewBitReader(p.headerPackets[2].Bytes[7:])
	if err := parseSetupHeader(setupReader, info); err != nil {
		return nil, err
	}
	if p.logger != nil {
		p.logger.Debug().
			Int("codebooks", len(info.Codebooks)).
			Int("floors", len(info.Floors)).
			Int("residues", len(info.Residues)).
			Int("mappings", len(info.Mappings)).
			Int("modes", len(info.Modes)).
			Msg("parsed setup header")
	}

	if err := p.skipToAudioPacket(); err != nil {
		return nil, err
	}
	return info, nil
}

// skipToAudioPacket advances the Page Reader until it reaches a packet
// whose type bit (bit 0) is clear, per §4.3's "after setup, skip until an
// audio packet is reached" rule. A second identification header (a
// chained bitstream) is reported as NotSupported. The audio packet itself
// is not consumed: the next ReadPacket returns it.
func (p *Parser) skipToAudioPacket() error {
	for {
		saved := *p.pages
		off, err := p.pages.f.Seek(0, io.SeekCurrent)
		if err != nil {
			return errors.WithStack(err)
		}
		pkt, err := p.pages.ReadPacket()
		if err != nil {
			if isKind(err, KindEndOfFile) {
				return nil
			}
			return err
		}
		if len(pkt.Bytes) == 0 {
			return corrupted(0, "empty packet after setup header")
		}
		if pkt.Bytes[0]&1 == 0 {
			*p.pages = saved
			if _, err := p.pages.f.Seek(off, io.SeekStart); err != nil {
				return errors.WithStack(err)
			}
			return nil
		}
		if hasVorbisSync(pkt.Bytes, packetTypeIdentification) {
			return notSupported(0, "chained bitstreams are not supported")
		}
	}
}

// Pages exposes the underlying Page Reader for direct seeking.
func (p *Parser) Pages() *PageReader { return p.pages }

// Close releases the underlying file handle.
func (p *Parser) Close() error {
	return p.pages.Close()
}
