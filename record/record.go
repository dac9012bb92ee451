package record

// Codec - Capability every record type stored by the engine has to provide. The engine never inspects a record
// beyond what this interface offers, and it only ever replaces a stored record wholesale.
type Codec[T any] interface {
	// Size - Returns the fixed number of bytes a record occupies in a block slot. Unused slots take the same space
	// so that blocks keep a constant size.
	Size() int

	// Encode - Writes the record into buf, which is exactly Size bytes long and zeroed
	Encode(record T, buf []byte) error

	// Decode - Builds a record from exactly Size bytes
	Decode(buf []byte) (T, error)

	// KeyEquals - Returns true if a and b have the same key
	KeyEquals(a, b T) bool

	// KeyHash - Returns a stable hash of the key of the record. Records with equal keys must return equal hashes.
	KeyHash(record T) uint64
}
