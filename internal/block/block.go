package block

import (
	"encoding/binary"

	"github.com/gostonefire/linhashfile/internal/conf"
	"github.com/gostonefire/linhashfile/record"
	"github.com/pkg/errors"
)

// Interface - What the heap file needs from a block regardless of its header layout
type Interface[T any] interface {
	Capacity() int
	ValidCount() int
	IsEmpty() bool
	IsFull() bool
	AddRecord(record T) bool
	RemoveRecord(key T) bool
	EditRecord(record T) bool
	Find(key T) (T, bool)
	RecordAt(slot int) (T, bool)
	Records() []T
	Size() int
	Encode(buf []byte) error
	Decode(buf []byte) error
}

// Block - A fixed number of record slots where slots [0, validCount) hold live records
type Block[T any] struct {
	codec      record.Codec[T]
	records    []T
	validCount int
}

// New - Returns an empty block with room for capacity records
func New[T any](codec record.Codec[T], capacity int) *Block[T] {
	return &Block[T]{
		codec:   codec,
		records: make([]T, capacity),
	}
}

// Capacity - Returns how many records of recordSize fit in blockSize bytes after a header of headerLength bytes
func Capacity(blockSize, headerLength, recordSize int) int {
	if recordSize <= 0 || blockSize <= headerLength {
		return 0
	}

	return (blockSize - headerLength) / recordSize
}

// Capacity - Returns the number of record slots
func (B *Block[T]) Capacity() int {
	return len(B.records)
}

// ValidCount - Returns the number of live records
func (B *Block[T]) ValidCount() int {
	return B.validCount
}

// IsEmpty - Returns true if the block holds no records
func (B *Block[T]) IsEmpty() bool {
	return B.validCount == 0
}

// IsFull - Returns true if every slot holds a record
func (B *Block[T]) IsFull() bool {
	return B.validCount == len(B.records)
}

// IsPartial - Returns true if the block holds records but still has room
func (B *Block[T]) IsPartial() bool {
	return B.validCount > 0 && B.validCount < len(B.records)
}

// AddRecord - Appends record after the last live one, returns false if the block is full
func (B *Block[T]) AddRecord(record T) bool {
	if B.IsFull() {
		return false
	}

	B.records[B.validCount] = record
	B.validCount++

	return true
}

// RemoveRecord - Removes the record with the same key as key. The last live record is moved into the freed slot,
// so slot order is not preserved.
func (B *Block[T]) RemoveRecord(key T) bool {
	i := B.indexOf(key)
	if i < 0 {
		return false
	}

	last := B.validCount - 1
	B.records[i] = B.records[last]
	var zero T
	B.records[last] = zero
	B.validCount--

	return true
}

// EditRecord - Replaces the record with the same key as record
func (B *Block[T]) EditRecord(record T) bool {
	i := B.indexOf(record)
	if i < 0 {
		return false
	}

	B.records[i] = record

	return true
}

// Find - Returns the record with the same key as key
func (B *Block[T]) Find(key T) (record T, found bool) {
	i := B.indexOf(key)
	if i < 0 {
		return
	}

	return B.records[i], true
}

// RecordAt - Returns the live record in slot
func (B *Block[T]) RecordAt(slot int) (record T, found bool) {
	if slot < 0 || slot >= B.validCount {
		return
	}

	return B.records[slot], true
}

// Records - Returns a copy of the live records in slot order
func (B *Block[T]) Records() []T {
	r := make([]T, B.validCount)
	copy(r, B.records[:B.validCount])

	return r
}

// Clear - Removes all records and returns them
func (B *Block[T]) Clear() []T {
	r := B.Records()
	var zero T
	for i := range B.records {
		B.records[i] = zero
	}
	B.validCount = 0

	return r
}

// Size - Returns the encoded length of the block
func (B *Block[T]) Size() int {
	return B.sizeWith(conf.BlockHeaderLength)
}

// Encode - Writes the block into buf which must be at least Size bytes
func (B *Block[T]) Encode(buf []byte) error {
	return B.encodeWith(buf, conf.BlockHeaderLength)
}

// Decode - Reads the block from buf which must be at least Size bytes
func (B *Block[T]) Decode(buf []byte) error {
	return B.decodeWith(buf, conf.BlockHeaderLength)
}

// indexOf - Linear scan of the live slots for key, returns -1 if not found
func (B *Block[T]) indexOf(key T) int {
	for i := 0; i < B.validCount; i++ {
		if B.codec.KeyEquals(B.records[i], key) {
			return i
		}
	}

	return -1
}

func (B *Block[T]) sizeWith(headerLength int) int {
	return headerLength + len(B.records)*B.codec.Size()
}

// encodeWith - Writes valid count first and the record slots after headerLength, unused slots are left zeroed
func (B *Block[T]) encodeWith(buf []byte, headerLength int) (err error) {
	size := B.sizeWith(headerLength)
	if len(buf) < size {
		return errors.Errorf("length of buf (%d) less than block size (%d)", len(buf), size)
	}

	clear(buf[:size])
	binary.BigEndian.PutUint32(buf, uint32(B.validCount))

	recordSize := B.codec.Size()
	start := headerLength
	for i := 0; i < B.validCount; i++ {
		err = B.codec.Encode(B.records[i], buf[start:start+recordSize])
		if err != nil {
			return errors.Wrapf(err, "error while encoding record in slot %d", i)
		}
		start += recordSize
	}

	return
}

// decodeWith - Inverse of encodeWith
func (B *Block[T]) decodeWith(buf []byte, headerLength int) (err error) {
	size := B.sizeWith(headerLength)
	if len(buf) < size {
		return errors.Errorf("length of data in buf (%d) less than block size (%d)", len(buf), size)
	}

	validCount := int(binary.BigEndian.Uint32(buf))
	if validCount > len(B.records) {
		return errors.Errorf("valid count %d exceeds block capacity %d", validCount, len(B.records))
	}

	var zero T
	recordSize := B.codec.Size()
	start := headerLength
	for i := range B.records {
		if i < validCount {
			B.records[i], err = B.codec.Decode(buf[start : start+recordSize])
			if err != nil {
				return errors.Wrapf(err, "error while decoding record in slot %d", i)
			}
		} else {
			B.records[i] = zero
		}
		start += recordSize
	}
	B.validCount = validCount

	return
}
