// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vorbis

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	oggMagic = "OggS"

	// pageHeaderTailSize is the fixed portion of the page header after the
	// 4-byte capture pattern: version(1) + header type(1) + granule(8) +
	// serial(4) + sequence(4) + checksum(4) + segment count(1).
	pageHeaderTailSize = 23

	headerFlagContinuation = 0x1
	headerFlagBOS          = 0x2
	headerFlagEOS          = 0x4
)

// Packet is a reassembled Vorbis packet: its payload bytes, plus the
// ordinal (page_sequence) indices of every Ogg page that contributed bytes
// to it, in order. A Packet is immutable once returned by ReadPacket.
type Packet struct {
	Bytes []byte
	Pages []int
}

// PageReader is a random-access, page-granular reader over an Ogg
// bitstream. It reconstructs logical packets from one or more pages and
// supports repositioning to an arbitrary byte offset (PageReader.Seek).
//
// A PageReader owns one open file handle; it is not safe for concurrent
// use. This mirrors the teacher's readPackets (dhowden-tag/ogg.go), which
// this type generalizes to support backward seeking, page-sequence
// validation and the Corrupted/EndOfFile distinction required by spec §4.1.
type PageReader struct {
	f    *os.File
	path string

	verifyChecksums bool
	logger          *zerolog.Logger

	// state of the currently buffered page
	loaded     bool
	headerType byte
	seq        uint32
	segments   []byte
	segIdx     int
	payload    []byte
	payloadOff int

	haveExpectSeq bool
	expectSeq     uint32
}

// OpenPageReader opens path, verifying the first four bytes are the Ogg
// capture pattern "OggS". verifyChecksums enables the optional page CRC
// check (see DESIGN.md; the Vorbis I spec's reference design leaves this
// off by default). logger may be nil.
func OpenPageReader(path string, verifyChecksums bool, logger *zerolog.Logger) (*PageReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		f.Close()
		return nil, notAnOggContainer(path)
	}
	if string(magic) != oggMagic {
		f.Close()
		return nil, notAnOggContainer(path)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, errors.WithStack(err)
	}
	return &PageReader{
		f:               f,
		path:            path,
		verifyChecksums: verifyChecksums,
		logger:          logger,
	}, nil
}

// Close releases the underlying file handle.
func (r *PageReader) Close() error {
	return r.f.Close()
}

func (r *PageReader) isContinuation() bool { return r.headerType&headerFlagContinuation != 0 }
func (r *PageReader) isLastOfStream() bool { return r.headerType&headerFlagEOS != 0 }

// loadNextPage reads one Ogg page starting at the file's current offset
// and makes it the reader's current page. Any failure to find a capture
// pattern, or truncation anywhere in the header/segment table/data, is
// reported as Corrupted: loadNextPage is only ever called when another
// page is structurally expected, so running out of bytes here is always a
// truncated stream, never a clean end-of-stream (that is detected by the
// caller via the last-page-of-stream flag before loadNextPage is called).
func (r *PageReader) loadNextPage() error {
	off, err := r.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.WithStack(err)
	}

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.f, magic); err != nil {
		return corrupted(off, "truncated stream: expected Ogg page capture pattern")
	}
	if string(magic) != oggMagic {
		return corrupted(off, "missing Ogg capture pattern")
	}

	tail, err := readBytes(r.f, pageHeaderTailSize)
	if err != nil {
		return corrupted(off, "truncated page header")
	}
	version := tail[0]
	headerType := tail[1]
	serial := binary.LittleEndian.Uint32(tail[10:14])
	seq := binary.LittleEndian.Uint32(tail[14:18])
	checksum := binary.LittleEndian.Uint32(tail[18:22])
	segCount := int(tail[22])
	_ = serial
	_ = version

	segments, err := readBytes(r.f, uint(segCount))
	if err != nil {
		return corrupted(off, "truncated segment table")
	}

	payloadLen := 0
	for _, s := range segments {
		payloadLen += int(s)
	}
	payload, err := readBytes(r.f, uint(payloadLen))
	if err != nil {
		return corrupted(off, "truncated page data")
	}

	if r.verifyChecksums {
		computed := oggChecksum(magic, tail, segments, payload)
		if computed != checksum {
			return corrupted(off, "page checksum mismatch")
		}
	}

	if r.haveExpectSeq && seq != r.expectSeq {
		return corrupted(off, "non-consecutive page sequence: expected %d, got %d", r.expectSeq, seq)
	}
	r.expectSeq = seq + 1
	r.haveExpectSeq = true

	r.headerType = headerType
	r.seq = seq
	r.segments = segments
	r.segIdx = 0
	r.payload = payload
	r.payloadOff = 0
	r.loaded = true

	if r.logger != nil {
		r.logger.Debug().Int64("offset", off).Uint32("sequence", seq).Msg("loaded ogg page")
	}
	return nil
}

// ReadPacket returns the next reassembled packet, or ErrEndOfFile if the
// just-read page had the last-page-of-stream flag set and no partial
// packet is pending.
func (r *PageReader) ReadPacket() (*Packet, error) {
	var buf []byte
	var pages []int
	appendPage := func(idx int) {
		if len(pages) == 0 || pages[len(pages)-1] != idx {
			pages = append(pages, idx)
		}
	}

	for {
		if !r.loaded {
			if err := r.loadNextPage(); err != nil {
				return nil, err
			}
			if r.isContinuation() {
				return nil, corrupted(0, "stream starts with a continued packet")
			}
		}

		if r.segIdx >= len(r.segments) {
			if r.isLastOfStream() && len(buf) == 0 {
				return nil, endOfFile()
			}
			requireContinuation := len(buf) > 0
			r.loaded = false
			if err := r.loadNextPage(); err != nil {
				return nil, err
			}
			if requireContinuation && !r.isContinuation() {
				return nil, corrupted(0, "packet spans pages but the next page is not marked continued")
			}
			if !requireContinuation && r.isContinuation() {
				return nil, corrupted(0, "page marked continued but no packet was pending")
			}
		}

		appendPage(int(r.seq))
		for r.segIdx < len(r.segments) {
			segLen := int(r.segments[r.segIdx])
			r.segIdx++
			buf = append(buf, r.payload[r.payloadOff:r.payloadOff+segLen]...)
			r.payloadOff += segLen
			if segLen < 255 {
				return &Packet{Bytes: buf, Pages: pages}, nil
			}
		}
		// Every segment in this page was 255: the packet continues onto
		// the next page, which must have the continuation flag set.
	}
}

// Seek repositions the reader to offset, then scans backward for the
// nearest page that starts a fresh packet (continuation flag clear),
// resetting the page-sequence expectation from that page. It fails with
// Corrupted if the scan reaches byte 0 while the continuation flag is
// still set.
func (r *PageReader) Seek(offset int64) error {
	pos := offset
	for {
		capPos, err := r.findCapturePatternBackward(pos)
		if err != nil {
			return err
		}
		headerTypeByte, err := r.readByteAt(capPos + 5)
		if err != nil {
			return corrupted(capPos, "truncated page header during seek scan")
		}
		if headerTypeByte&headerFlagContinuation == 0 {
			if _, err := r.f.Seek(capPos, io.SeekStart); err != nil {
				return errors.WithStack(err)
			}
			r.loaded = false
			r.haveExpectSeq = false
			return nil
		}
		if capPos == 0 {
			return corrupted(0, "seek scan reached start of file while continuation flag was still set")
		}
		pos = capPos - 1
	}
}

func (r *PageReader) fileSize() (int64, error) {
	fi, err := r.f.Stat()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return fi.Size(), nil
}

func (r *PageReader) readByteAt(pos int64) (byte, error) {
	b := make([]byte, 1)
	if _, err := r.f.ReadAt(b, pos); err != nil {
		return 0, errors.WithStack(err)
	}
	return b[0], nil
}

// findCapturePatternBackward returns the largest offset <= pos at which
// the "OggS" capture pattern begins, scanning backward in bounded chunks.
func (r *PageReader) findCapturePatternBackward(pos int64) (int64, error) {
	const chunkSize = 8192

	fileSize, err := r.fileSize()
	if err != nil {
		return 0, err
	}
	searchEnd := pos + 4
	if searchEnd > fileSize {
		searchEnd = fileSize
	}

	for searchEnd > 0 {
		windowStart := searchEnd - chunkSize
		if windowStart < 0 {
			windowStart = 0
		}
		buf := make([]byte, searchEnd-windowStart)
		if _, err := r.f.ReadAt(buf, windowStart); err != nil && err != io.EOF {
			return 0, errors.WithStack(err)
		}
		for i := len(buf) - 4; i >= 0; i-- {
			global := windowStart + int64(i)
			if global > pos {
				continue
			}
			if buf[i] == 'O' && buf[i+1] == 'g' && buf[i+2] == 'g' && buf[i+3] == 'S' {
				return global, nil
			}
		}
		if windowStart == 0 {
			break
		}
		// Overlap by 3 bytes so a pattern straddling the window boundary
		// is not missed.
		searchEnd = windowStart + 3
	}
	return 0, corrupted(0, "no Ogg capture pattern found scanning backward from offset %d", pos)
}

// crcTable is the CRC-32 lookup table for polynomial 0x04C11DB7, computed
// without bit reflection. This is Ogg's checksum algorithm; it is not the
// IEEE polynomial or reflection used by hash/crc32 (see DESIGN.md), so the
// table is generated by hand the way every pack member that implements
// Ogg CRC verification does.
var crcTable [256]uint32

func init() {
	const poly = 0x04c11db7
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

// oggChecksum computes the Ogg page CRC-32 over the capture pattern, the
// header tail (with the checksum field zeroed), the segment table, and the
// payload, in that order.
func oggChecksum(magic, tail, segments, payload []byte) uint32 {
	var crc uint32
	update := func(b byte) {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	for _, b := range magic {
		update(b)
	}
	zeroed := make([]byte, len(tail))
	copy(zeroed, tail)
	// tail layout: version(1) headerType(1) granule(8) serial(4) seq(4)
	// checksum(4) segCount(1), so the checksum field is tail[18:22].
	for i := 18; i < 22 && i < len(zeroed); i++ {
		zeroed[i] = 0
	}
	for _, b := range zeroed {
		update(b)
	}
	for _, b := range segments {
		update(b)
	}
	for _, b := range payload {
		update(b)
	}
	return crc
}
