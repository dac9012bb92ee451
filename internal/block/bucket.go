package block

import (
	"encoding/binary"

	"github.com/gostonefire/linhashfile/hferr"
	"github.com/gostonefire/linhashfile/internal/conf"
	"github.com/gostonefire/linhashfile/record"
	"github.com/pkg/errors"
)

// Bucket - A Chained block addressed by hash, which also counts the records reachable from it (own slots plus
// overflow chain) and the length of its overflow chain
type Bucket[T any] struct {
	Chained[T]
	recordCount        int
	overflowBlockCount int
}

// NewBucket - Returns an empty bucket without overflow chain
func NewBucket[T any](codec record.Codec[T], capacity int) *Bucket[T] {
	return &Bucket[T]{
		Chained: Chained[T]{
			Block: Block[T]{codec: codec, records: make([]T, capacity)},
			next:  conf.NoBlock,
		},
	}
}

// RecordCount - Returns number of records in own slots and overflow chain
func (B *Bucket[T]) RecordCount() int {
	return B.recordCount
}

// OverflowBlockCount - Returns the number of blocks in the overflow chain
func (B *Bucket[T]) OverflowBlockCount() int {
	return B.overflowBlockCount
}

// IncrementRecordCount - Counts one more record in the chain
func (B *Bucket[T]) IncrementRecordCount() {
	B.recordCount++
}

// DecrementRecordCount - Counts one record less in the chain, a bucket already counting zero records is an
// invariant violation
func (B *Bucket[T]) DecrementRecordCount() (err error) {
	if B.recordCount < 1 {
		return hferr.NewInvariantViolation("bucket record count would go below zero")
	}
	B.recordCount--

	return
}

// IncrementOverflowBlockCount - Counts one more overflow block
func (B *Bucket[T]) IncrementOverflowBlockCount() {
	B.overflowBlockCount++
}

// SetCounters - Sets both counters, used after a chain has been rebuilt
func (B *Bucket[T]) SetCounters(recordCount, overflowBlockCount int) {
	B.recordCount = recordCount
	B.overflowBlockCount = overflowBlockCount
}

// Clear - Removes all records, the overflow link and resets both counters
func (B *Bucket[T]) Clear() []T {
	B.recordCount = 0
	B.overflowBlockCount = 0
	return B.Chained.Clear()
}

// Size - Returns the encoded length of the bucket
func (B *Bucket[T]) Size() int {
	return B.sizeWith(conf.BucketHeaderLength)
}

// Encode - Writes the bucket into buf which must be at least Size bytes
func (B *Bucket[T]) Encode(buf []byte) (err error) {
	err = B.encodeWith(buf, conf.BucketHeaderLength)
	if err != nil {
		return
	}
	binary.BigEndian.PutUint32(buf[conf.NextBlockOffset:], uint32(B.next))
	binary.BigEndian.PutUint32(buf[conf.RecordCountOffset:], uint32(B.recordCount))
	binary.BigEndian.PutUint32(buf[conf.OverflowBlockCountOffset:], uint32(B.overflowBlockCount))

	return
}

// Decode - Reads the bucket from buf which must be at least Size bytes, and checks that the counters agree with
// the slots and the overflow link
func (B *Bucket[T]) Decode(buf []byte) (err error) {
	err = B.decodeWith(buf, conf.BucketHeaderLength)
	if err != nil {
		return
	}
	B.next = int32(binary.BigEndian.Uint32(buf[conf.NextBlockOffset:]))
	B.recordCount = int(binary.BigEndian.Uint32(buf[conf.RecordCountOffset:]))
	B.overflowBlockCount = int(binary.BigEndian.Uint32(buf[conf.OverflowBlockCountOffset:]))

	if B.recordCount < B.validCount {
		return errors.Errorf("bucket record count %d less than valid count %d", B.recordCount, B.validCount)
	}
	if (B.overflowBlockCount == 0) != (B.next == conf.NoBlock) {
		return errors.Errorf("bucket overflow block count %d disagrees with next block %d", B.overflowBlockCount, B.next)
	}

	return
}
