package hashfunc

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
)

// Func - Hash function over a key. Any implementation must be stable across process restarts since bucket
// addresses derived from it are persisted in the hash file.
type Func func(key []byte) uint64

// Bytes - Default key hash, xxhash over the key bytes
func Bytes(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// String - Hashes a string key without copying it
func String(key string) uint64 {
	return xxhash.Sum64String(key)
}

// Uint64 - Hashes an integer key by its big endian byte representation
func Uint64(key uint64) uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], key)
	return xxhash.Sum64(buf[:])
}

// CRC32 - Alternative key hash using crc32.ChecksumIEEE, kept for keys whose distribution has been tuned for it
func CRC32(key []byte) uint64 {
	return uint64(crc32.ChecksumIEEE(key))
}
