package vorbis

import (
	"fmt"

	"github.com/pkg/errors"
)

// Debug controls whether errors produced by this package carry the byte
// offset of the failure. It is off by default; tools that want more
// diagnostic detail (e.g. vorbisprobe with --debug) can set it once at
// startup. The parser is not safe for concurrent use regardless, so this
// is a plain package variable rather than an atomic.
var Debug = false

// Kind is an enumeration of the error dispositions described in spec §7.
type Kind int

const (
	// KindNotAnOggContainer means the input's first four bytes were not "OggS".
	KindNotAnOggContainer Kind = iota
	// KindNotVorbis means the input is a valid Ogg container but its first
	// packets do not look like Vorbis headers.
	KindNotVorbis
	// KindCorrupted means a structural invariant of the Ogg or Vorbis
	// bitstream was violated.
	KindCorrupted
	// KindEndOfPacket means the bit reader was exhausted mid-field.
	KindEndOfPacket
	// KindEndOfFile means no further packet exists at a packet boundary.
	KindEndOfFile
	// KindNotSupported means the input uses a feature this package
	// deliberately does not implement (floor type 0, chained streams, ...).
	KindNotSupported
)

func (k Kind) String() string {
	switch k {
	case KindNotAnOggContainer:
		return "not an Ogg container"
	case KindNotVorbis:
		return "not Vorbis"
	case KindCorrupted:
		return "corrupted"
	case KindEndOfPacket:
		return "end of packet"
	case KindEndOfFile:
		return "end of file"
	case KindNotSupported:
		return "not supported"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every fallible operation in this
// package, except operating-system I/O failures, which are returned
// stack-wrapped but otherwise unchanged. Callers that need to branch on
// the disposition should use
// errors.As to recover an *Error and inspect its Kind, rather than
// matching on the message text.
type Error struct {
	Kind   Kind
	Reason string
	// Offset is the byte offset of the failure, populated only when Debug
	// is true; it is -1 otherwise.
	Offset int64
}

func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s (offset %d)", e.Kind, e.Reason, e.Offset)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is lets errors.Is(err, someKindSentinel) match on Kind alone, ignoring
// Reason and Offset. Sentinels for each kind are defined below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Kind-only sentinels for use with errors.Is.
var (
	ErrNotAnOggContainer = &Error{Kind: KindNotAnOggContainer}
	ErrNotVorbis         = &Error{Kind: KindNotVorbis}
	ErrCorrupted         = &Error{Kind: KindCorrupted}
	ErrEndOfPacket       = &Error{Kind: KindEndOfPacket}
	ErrEndOfFile         = &Error{Kind: KindEndOfFile}
	ErrNotSupported      = &Error{Kind: KindNotSupported}
)

func newError(kind Kind, offset int64, format string, args ...interface{}) error {
	reason := fmt.Sprintf(format, args...)
	e := &Error{Kind: kind, Reason: reason, Offset: -1}
	if Debug {
		e.Offset = offset
	}
	return errors.WithStack(e)
}

func notAnOggContainer(path string) error {
	return newError(KindNotAnOggContainer, 0, "%s is not an Ogg container", path)
}

func notVorbis(path string) error {
	return newError(KindNotVorbis, 0, "file format is not vorbis: %s", path)
}

func corrupted(offset int64, format string, args ...interface{}) error {
	return newError(KindCorrupted, offset, format, args...)
}

func endOfPacket(offset int64) error {
	return newError(KindEndOfPacket, offset, "end of packet")
}

func endOfFile() error {
	return newError(KindEndOfFile, -1, "no further packet")
}

func notSupported(offset int64, format string, args ...interface{}) error {
	return newError(KindNotSupported, offset, format, args...)
}

// isKind reports whether err (or something it wraps) is an *Error of kind k.
func isKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// toCorrupted converts a bit-reader EndOfPacket into Corrupted, per spec's
// error table: every header parser except the comment header treats
// running out of packet bits mid-field as structural corruption, not a
// recoverable condition. err is returned unchanged if it is already
// something else (including nil).
func toCorrupted(err error) error {
	if err == nil {
		return nil
	}
	if isKind(err, KindEndOfPacket) {
		return corrupted(0, "unexpected end of packet while reading a required field")
	}
	return err
}
