package container

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"strings"
)

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Decode parses a decrypted payload:
//
//	<code> <8 zero bytes> <rate u32> <seed u32> <tags...> <crc32 u32>
//
// The checksum covers every byte before it. Unknown tag bytes are
// skipped. On error the returned record is nil.
func Decode(plain []byte) (*Record, error) {
	codeEnd := bytes.Index(plain, Separator[:])
	if codeEnd < 0 {
		return nil, ErrNoSeparator
	}

	off := codeEnd + len(Separator)
	if len(plain)-off < trailerSize {
		return nil, fmt.Errorf("%w: %d bytes after separator", ErrTruncated, len(plain)-off)
	}

	body := plain[:len(plain)-checksumSize]
	checksum := readUint32(plain[len(plain)-checksumSize:])
	if calculated := crc32.ChecksumIEEE(body); calculated != checksum {
		return nil, fmt.Errorf("%w: stored %08x, calculated %08x", ErrChecksumMismatch, checksum, calculated)
	}

	rec := &Record{
		Code:           strings.ToValidUTF8(string(plain[:codeEnd]), ""),
		VolatilityRate: float64(readUint32(plain[off:])) / RateScale,
		VolatilitySeed: readUint32(plain[off+rateSize:]),
		Checksum:       checksum,
	}

	for _, tag := range body[off+rateSize+seedSize:] {
		if e, ok := ParseSideEffect(tag); ok {
			rec.SideEffects = append(rec.SideEffects, e)
		}
	}

	rec.Loaded = true
	return rec, nil
}

// Open checks the magic, decrypts the payload with key and decodes it.
func Open(data, key []byte) (*Record, error) {
	if !IsSpecial(data) {
		return nil, ErrInvalidMagic
	}
	return Decode(XOR(data[len(Magic):], key))
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Encode produces the plaintext payload for rec, checksum included. The
// rate is clamped to [0, 1] and stored truncated to four decimal places.
func Encode(rec *Record) []byte {
	buf := make([]byte, 0, len(rec.Code)+len(Separator)+trailerSize+len(rec.SideEffects))
	buf = append(buf, rec.Code...)
	buf = append(buf, Separator[:]...)
	buf = appendUint32(buf, rateField(rec.VolatilityRate))
	buf = appendUint32(buf, rec.VolatilitySeed)
	for _, e := range rec.SideEffects {
		buf = append(buf, byte(e))
	}
	return appendUint32(buf, crc32.ChecksumIEEE(buf))
}

// rateField scales rate for storage. NaN stores as 0.
func rateField(rate float64) uint32 {
	switch {
	case !(rate > 0):
		return 0
	case rate > 1:
		rate = 1
	}
	return uint32(rate * RateScale)
}

// Seal encodes rec, encrypts it with key and prepends the magic.
func Seal(rec *Record, key []byte) []byte {
	out := make([]byte, 0, len(Magic)+len(rec.Code)+len(Separator)+trailerSize+len(rec.SideEffects))
	out = append(out, Magic[:]...)
	return append(out, XOR(Encode(rec), key)...)
}
