package container

import "encoding/binary"

// KeySize is the length of a derived key in bytes.
const KeySize = 16

// KeySource supplies the host facts a key is derived from.
type KeySource interface {
	// NowMillis returns the wall-clock time in milliseconds since the epoch.
	NowMillis() int64
	// LoginName returns the current user's login name.
	LoginName() (string, error)
}

// DeriveKey builds the 16-byte XOR key:
//
//	len(filename) as uint32 LE | unixMillis as uint64 LE | sum of login runes as uint32 LE
//
// The timestamp term means a key derived when a file is written will
// generally differ from the key derived when it is read back.
func DeriveKey(filename string, unixMillis int64, login string) []byte {
	key := make([]byte, 0, KeySize)
	key = binary.LittleEndian.AppendUint32(key, uint32(len(filename)))
	key = binary.LittleEndian.AppendUint64(key, uint64(unixMillis))
	var sum uint32
	for _, r := range login {
		sum += uint32(r)
	}
	key = binary.LittleEndian.AppendUint32(key, sum)
	return key
}

// KeyFor derives the key for filename using src. An unavailable login
// name contributes zero.
func KeyFor(filename string, src KeySource) []byte {
	login, err := src.LoginName()
	if err != nil {
		login = ""
	}
	return DeriveKey(filename, src.NowMillis(), login)
}

// XOR applies key cyclically over data and returns a new slice. It both
// encrypts and decrypts.
func XOR(data, key []byte) []byte {
	out := make([]byte, len(data))
	if len(key) == 0 {
		copy(out, data)
		return out
	}
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}
