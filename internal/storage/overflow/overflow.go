package overflow

import (
	"io"
	"log/slog"

	"github.com/gostonefire/linhashfile/hferr"
	"github.com/gostonefire/linhashfile/internal/block"
	"github.com/gostonefire/linhashfile/internal/conf"
	"github.com/gostonefire/linhashfile/internal/storage/heap"
	"github.com/gostonefire/linhashfile/record"
)

// Conf - Is a struct to be passed in the call to Open and contains configuration that affects file processing.
//   - Name is the name to base data and metadata file names on
//   - BlockSize is the number of bytes each overflow block occupies in the data file
//   - Codec encodes and compares the records stored
//   - Logger is an optional structured logger
type Conf[T any] struct {
	Name      string
	BlockSize int
	Codec     record.Codec[T]
	Logger    *slog.Logger
}

// File - Storage for overflow chains. Chains are singly linked lists of blocks that are only ever reached from a
// head index kept by the caller, the file is never addressed by hash.
type File[T any] struct {
	heap            *heap.File[T, *block.Chained[T]]
	recordsPerBlock int
	logger          *slog.Logger
}

// Open - Opens, or creates if missing, an overflow file
//   - overflowConf is a Conf struct with the parameters of the file
//
// It returns:
//   - overflowFile which is a pointer to the opened instance
//   - err which is either a hferr.ConfigError, a hferr.CorruptMetadata or an I/O error
func Open[T any](overflowConf Conf[T]) (overflowFile *File[T], err error) {
	if overflowConf.Codec == nil {
		err = hferr.NewConfigError("a record codec is required")
		return
	}

	recordsPerBlock := block.Capacity(overflowConf.BlockSize, conf.ChainedHeaderLength, overflowConf.Codec.Size())
	if recordsPerBlock < 1 {
		err = hferr.NewConfigError("overflow block size %d is too small to hold one record of %d bytes",
			overflowConf.BlockSize, overflowConf.Codec.Size())
		return
	}

	h, err := heap.Open[T](heap.Conf[*block.Chained[T]]{
		Name:      overflowConf.Name,
		BlockSize: overflowConf.BlockSize,
		NewBlock: func() *block.Chained[T] {
			return block.NewChained[T](overflowConf.Codec, recordsPerBlock)
		},
		Logger: overflowConf.Logger,
	})
	if err != nil {
		return
	}

	overflowFile = &File[T]{
		heap:            h,
		recordsPerBlock: recordsPerBlock,
		logger:          h.Logger(),
	}

	return
}

// InsertToStart - Stores record in a new block which becomes the head of a new chain
//
// It returns:
//   - blockIndex is the index of the new head
//   - err is a standard error, if something went wrong
func (O *File[T]) InsertToStart(record T) (blockIndex int32, err error) {
	b := O.heap.NewBlock()
	b.AddRecord(record)

	return O.heap.AllocateBlock(b)
}

// InsertToChain - Stores record in the first block of the chain starting at head that has room. If every block is
// full a new block is linked in as the tail of the chain.
//
// It returns:
//   - added is true if a new block was linked into the chain
//   - err is a standard error, if something went wrong
func (O *File[T]) InsertToChain(head int32, record T) (added bool, err error) {
	var blockIndex int32
	var b *block.Chained[T]

	iter := O.Chain(head)
	for iter.HasNext() {
		blockIndex, b, err = iter.Next()
		if err != nil {
			return
		}
		if b.AddRecord(record) {
			err = O.heap.WriteBlock(blockIndex, b)
			return
		}
	}
	if b == nil {
		err = hferr.NewInvariantViolation("overflow chain head %d has no blocks", head)
		return
	}

	tail, err := O.InsertToStart(record)
	if err != nil {
		return
	}
	b.SetNext(tail)
	err = O.heap.WriteBlock(blockIndex, b)
	if err != nil {
		return
	}
	added = true

	O.logger.Debug("extended overflow chain", "head", head, "tail", tail)

	return
}

// Find - Returns the record with the same key as key from the chain starting at head
func (O *File[T]) Find(head int32, key T) (record T, found bool, err error) {
	var b *block.Chained[T]

	iter := O.Chain(head)
	for iter.HasNext() {
		_, b, err = iter.Next()
		if err != nil {
			return
		}
		if record, found = b.Find(key); found {
			return
		}
	}

	return
}

// Edit - Replaces the record with the same key as record in the chain starting at head
func (O *File[T]) Edit(head int32, record T) (edited bool, err error) {
	var blockIndex int32
	var b *block.Chained[T]

	iter := O.Chain(head)
	for iter.HasNext() {
		blockIndex, b, err = iter.Next()
		if err != nil {
			return
		}
		if b.EditRecord(record) {
			err = O.heap.WriteBlock(blockIndex, b)
			edited = err == nil
			return
		}
	}

	return
}

// Delete - Removes the first record with the same key as key from the chain starting at head. The chain keeps its
// length even if a block becomes empty, compacting it is up to the owner of the chain.
func (O *File[T]) Delete(head int32, key T) (removed bool, err error) {
	var blockIndex int32
	var b *block.Chained[T]

	iter := O.Chain(head)
	for iter.HasNext() {
		blockIndex, b, err = iter.Next()
		if err != nil {
			return
		}
		if b.RemoveRecord(key) {
			err = O.heap.WriteBlock(blockIndex, b)
			removed = err == nil
			return
		}
	}

	return
}

// GetChain - Reads every block of the chain starting at head
//
// It returns:
//   - blocks are the blocks in chain order
//   - indices are the block indices in the same order
//   - err is a standard error, if something went wrong
func (O *File[T]) GetChain(head int32) (blocks []*block.Chained[T], indices []int32, err error) {
	var blockIndex int32
	var b *block.Chained[T]

	iter := O.Chain(head)
	for iter.HasNext() {
		blockIndex, b, err = iter.Next()
		if err != nil {
			return
		}
		blocks = append(blocks, b)
		indices = append(indices, blockIndex)
	}

	return
}

// RemoveChain - Drains the chain starting at head, gives its blocks back to the file and returns the records
func (O *File[T]) RemoveChain(head int32) (records []T, err error) {
	blocks, indices, err := O.GetChain(head)
	if err != nil {
		return
	}

	for _, b := range blocks {
		records = append(records, b.Records()...)
	}

	err = O.Release(indices)

	return
}

// EditBlockChain - Writes blocks to the given indices and links them in order, the last block ends the chain.
// The indices must belong to the caller, typically taken from GetChain or Allocate.
func (O *File[T]) EditBlockChain(indices []int32, blocks []*block.Chained[T]) (err error) {
	if len(indices) != len(blocks) {
		return hferr.NewInvariantViolation("got %d blocks for %d chain positions", len(blocks), len(indices))
	}

	for i, b := range blocks {
		if i+1 < len(indices) {
			b.SetNext(indices[i+1])
		} else {
			b.ClearNext()
		}
		err = O.heap.WriteBlock(indices[i], b)
		if err != nil {
			return
		}
	}

	return
}

// Allocate - Reserves an empty block, the lowest empty one if there is any, else one appended to the file
func (O *File[T]) Allocate() (blockIndex int32, err error) {
	return O.heap.AllocateBlock(O.heap.NewBlock())
}

// Release - Clears the given blocks, tracks them as empty and truncates trailing empty blocks from the file
func (O *File[T]) Release(indices []int32) (err error) {
	for _, blockIndex := range indices {
		err = O.heap.Release(blockIndex)
		if err != nil {
			return
		}
	}

	if len(indices) > 0 {
		O.logger.Debug("released overflow blocks", "blocks", indices)
	}

	return O.heap.TruncateEmptyTail()
}

// Chain - Returns an iterator over the blocks of the chain starting at head
func (O *File[T]) Chain(head int32) *Chain[T] {
	return NewChain[T](O.heap.ReadBlock, head, O.heap.BlockCount())
}

// NewBlock - Returns an empty overflow block
func (O *File[T]) NewBlock() *block.Chained[T] {
	return O.heap.NewBlock()
}

// Capacity - Returns the number of record slots in blocks that are in use by some chain
func (O *File[T]) Capacity() int {
	return (int(O.heap.BlockCount()) - O.heap.EmptyCount()) * O.recordsPerBlock
}

// RecordsPerBlock - Returns the number of record slots of each overflow block
func (O *File[T]) RecordsPerBlock() int {
	return O.recordsPerBlock
}

// BlockCount - Returns the number of blocks in the overflow file, including empty ones
func (O *File[T]) BlockCount() int32 {
	return O.heap.BlockCount()
}

// UsedBlockCount - Returns the number of blocks that are part of a chain
func (O *File[T]) UsedBlockCount() int {
	return int(O.heap.BlockCount()) - O.heap.EmptyCount()
}

// FileSize - Returns the size of the overflow data file
func (O *File[T]) FileSize() (int64, error) {
	return O.heap.FileSize()
}

// Dump - Writes a human readable listing of every overflow block to w
func (O *File[T]) Dump(w io.Writer) error {
	return O.heap.Dump(w)
}

// Close - Writes the metadata file and closes the data file
func (O *File[T]) Close() error {
	return O.heap.Close()
}

// RemoveFiles - Removes data and metadata files, make sure to close the file first
func (O *File[T]) RemoveFiles() error {
	return O.heap.RemoveFiles()
}
