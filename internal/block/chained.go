package block

import (
	"encoding/binary"

	"github.com/gostonefire/linhashfile/internal/conf"
	"github.com/gostonefire/linhashfile/record"
)

// Chained - A Block that links to a next block in the same file, used for overflow chains
type Chained[T any] struct {
	Block[T]
	next int32
}

// NewChained - Returns an empty chained block with no successor
func NewChained[T any](codec record.Codec[T], capacity int) *Chained[T] {
	return &Chained[T]{
		Block: Block[T]{codec: codec, records: make([]T, capacity)},
		next:  conf.NoBlock,
	}
}

// Next - Returns the index of the next block in the chain, conf.NoBlock if this is the last one
func (C *Chained[T]) Next() int32 {
	return C.next
}

// HasNext - Returns true if the block links to another block
func (C *Chained[T]) HasNext() bool {
	return C.next != conf.NoBlock
}

// SetNext - Links the block to blockIndex
func (C *Chained[T]) SetNext(blockIndex int32) {
	C.next = blockIndex
}

// ClearNext - Makes this the last block of its chain
func (C *Chained[T]) ClearNext() {
	C.next = conf.NoBlock
}

// Clear - Removes all records and the link to the next block. A recycled overflow block must never carry a pointer
// into a chain it is no longer part of.
func (C *Chained[T]) Clear() []T {
	C.next = conf.NoBlock
	return C.Block.Clear()
}

// Size - Returns the encoded length of the block
func (C *Chained[T]) Size() int {
	return C.sizeWith(conf.ChainedHeaderLength)
}

// Encode - Writes the block into buf which must be at least Size bytes
func (C *Chained[T]) Encode(buf []byte) (err error) {
	err = C.encodeWith(buf, conf.ChainedHeaderLength)
	if err != nil {
		return
	}
	binary.BigEndian.PutUint32(buf[conf.NextBlockOffset:], uint32(C.next))

	return
}

// Decode - Reads the block from buf which must be at least Size bytes
func (C *Chained[T]) Decode(buf []byte) (err error) {
	err = C.decodeWith(buf, conf.ChainedHeaderLength)
	if err != nil {
		return
	}
	C.next = int32(binary.BigEndian.Uint32(buf[conf.NextBlockOffset:]))

	return
}
