// Package container implements the special .mmm file format: an
// XOR-encrypted, CRC32-checksummed payload carrying program source,
// volatility parameters and a list of side effects.
package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Format Constants
// ---------------------------------------------------------------------------

// Magic is the 8-byte header identifying a special .mmm file.
var Magic = [8]byte{0xDE, 0xAD, 0xBE, 0xEF, 0xCA, 0xFE, 0xBA, 0xBE}

// Separator terminates the source code inside a decrypted payload.
var Separator = [8]byte{}

const (
	// RateScale converts the stored rate numerator into a float rate.
	RateScale = 10000.0

	rateSize     = 4
	seedSize     = 4
	checksumSize = 4

	// trailerSize is the fixed part following the separator, excluding tags.
	trailerSize = rateSize + seedSize + checksumSize
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidMagic     = errors.New("not a special .mmm file (missing magic header)")
	ErrNoSeparator      = errors.New("invalid special file format: no separator found")
	ErrTruncated        = errors.New("invalid special file format: truncated trailer")
	ErrChecksumMismatch = errors.New("checksum mismatch! file corrupted or tampered with")
	ErrRateRange        = errors.New("volatility rate outside [0, 1]")
)

// ---------------------------------------------------------------------------
// Side effects
// ---------------------------------------------------------------------------

// SideEffect is one of the fixed set of load-time effects a special file
// can request. The value is the tag byte stored in the file.
type SideEffect byte

const (
	Insult           SideEffect = 0x01
	DeleteRandomFile SideEffect = 0x02
	FlashScreen      SideEffect = 0x03
	PlaySound        SideEffect = 0x04
	ReverseCode      SideEffect = 0x05
	Halt             SideEffect = 0xFF
)

// ParseSideEffect maps a tag byte to its side effect. Unknown tags
// report false.
func ParseSideEffect(tag byte) (SideEffect, bool) {
	switch e := SideEffect(tag); e {
	case Insult, DeleteRandomFile, FlashScreen, PlaySound, ReverseCode, Halt:
		return e, true
	}
	return 0, false
}

func (e SideEffect) String() string {
	switch e {
	case Insult:
		return "insult"
	case DeleteRandomFile:
		return "delete-random-file"
	case FlashScreen:
		return "flash-screen"
	case PlaySound:
		return "play-sound"
	case ReverseCode:
		return "reverse-code"
	case Halt:
		return "halt"
	}
	return fmt.Sprintf("unknown(0x%02x)", byte(e))
}

// ---------------------------------------------------------------------------
// Record
// ---------------------------------------------------------------------------

// Record is a decoded special file. Loaded is only true when every
// validation step succeeded; a record that failed validation carries no
// code or side effects.
type Record struct {
	Code           string
	VolatilityRate float64
	VolatilitySeed uint32
	SideEffects    []SideEffect
	Checksum       uint32
	Loaded         bool
}

// IsSpecial reports whether data starts with the special file magic.
func IsSpecial(data []byte) bool {
	return bytes.HasPrefix(data, Magic[:])
}

func readUint32(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

func appendUint32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}
