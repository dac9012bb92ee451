package heap

import (
	"log/slog"
	"os"

	"github.com/gostonefire/linhashfile/hferr"
	"github.com/gostonefire/linhashfile/internal/block"
	"github.com/gostonefire/linhashfile/internal/conf"
	"github.com/gostonefire/linhashfile/internal/logging"
	"github.com/pkg/errors"
)

// Conf - Is a struct to be passed in the call to Open and contains configuration that affects file processing.
//   - Name is the name to base data and metadata file names on
//   - BlockSize is the number of bytes each block occupies in the data file
//   - NewBlock returns an empty block of the kind stored in the file, its encoded size must fit in BlockSize
//   - Logger is an optional structured logger
type Conf[B any] struct {
	Name      string
	BlockSize int
	NewBlock  func() B
	Logger    *slog.Logger
}

// File - A file of fixed size blocks. Block i lives at offset i*BlockSize. Blocks that are empty or only partially
// filled are tracked so that inserts can reuse them, lowest index first.
type File[T any, B block.Interface[T]] struct {
	dataFileName string
	metaFileName string
	file         *os.File
	blockSize    int64
	newBlock     func() B
	blockCount   int32
	empty        *indexSet
	partial      *indexSet
	logger       *slog.Logger
}

// Open - Opens, or creates if missing, the data file <name>.dat together with its metadata <name>_heap.dat.
// A missing metadata file means the file is new and any existing data file is truncated to zero length.
//   - heapConf is a Conf struct with the parameters of the file
//
// It returns:
//   - heapFile which is a pointer to the opened instance
//   - err which is either a hferr.ConfigError, a hferr.CorruptMetadata or an I/O error
func Open[T any, B block.Interface[T]](heapConf Conf[B]) (heapFile *File[T, B], err error) {
	if heapConf.Name == "" {
		err = hferr.NewConfigError("name can not be empty, it will be used to name physical files")
		return
	}
	if heapConf.NewBlock == nil {
		err = hferr.NewConfigError("a block constructor is required")
		return
	}
	sample := heapConf.NewBlock()
	if sample.Capacity() < 1 {
		err = hferr.NewConfigError("block size %d is too small to hold one record", heapConf.BlockSize)
		return
	}
	if sample.Size() > heapConf.BlockSize {
		err = hferr.NewConfigError("encoded block size %d exceeds block size %d", sample.Size(), heapConf.BlockSize)
		return
	}

	heapFile = &File[T, B]{
		dataFileName: heapConf.Name + conf.DataFileSuffix,
		metaFileName: heapConf.Name + conf.HeapMetaFileSuffix,
		blockSize:    int64(heapConf.BlockSize),
		newBlock:     heapConf.NewBlock,
		empty:        newIndexSet(),
		partial:      newIndexSet(),
		logger:       logging.OrDiscard(heapConf.Logger).With("file", heapConf.Name+conf.DataFileSuffix),
	}

	err = heapFile.openFiles()
	if err != nil {
		heapFile = nil
		return
	}

	heapFile.logger.Info("opened heap file",
		"blocks", heapFile.blockCount, "empty", heapFile.empty.len(), "partial", heapFile.partial.len())

	return
}

// Insert - Stores record in the lowest partially filled block, else in the lowest empty block, else in a new block
// appended to the file.
//
// It returns:
//   - blockIndex is the index of the block the record was stored in
//   - err is a standard error, if something went wrong
func (H *File[T, B]) Insert(record T) (blockIndex int32, err error) {
	var b B
	var ok bool

	if blockIndex, ok = H.partial.min(); ok {
		b, err = H.ReadBlock(blockIndex)
		if err != nil {
			return
		}
		if !b.AddRecord(record) {
			err = hferr.NewInvariantViolation("block %d is tracked as partially filled but is full", blockIndex)
			return
		}
		err = H.WriteBlock(blockIndex, b)
		if err != nil {
			return
		}
		if b.IsFull() {
			H.partial.remove(blockIndex)
		}
		return
	}

	if blockIndex, ok = H.empty.min(); ok {
		b, err = H.ReadBlock(blockIndex)
		if err != nil {
			return
		}
		if !b.AddRecord(record) {
			err = hferr.NewInvariantViolation("block %d is tracked as empty but refuses a record", blockIndex)
			return
		}
		err = H.WriteBlock(blockIndex, b)
		if err != nil {
			return
		}
		H.empty.remove(blockIndex)
		if !b.IsFull() {
			H.partial.add(blockIndex)
		}
		return
	}

	b = H.newBlock()
	b.AddRecord(record)
	blockIndex, err = H.AppendBlock(b)
	if err != nil {
		return
	}
	if !b.IsFull() {
		H.partial.add(blockIndex)
	}

	return
}

// Get - Returns the record in block blockIndex having the same key as key
func (H *File[T, B]) Get(blockIndex int32, key T) (record T, found bool, err error) {
	b, err := H.ReadBlock(blockIndex)
	if err != nil {
		return
	}

	record, found = b.Find(key)

	return
}

// GetAt - Returns the live record in slot of block blockIndex
func (H *File[T, B]) GetAt(blockIndex int32, slot int) (record T, found bool, err error) {
	b, err := H.ReadBlock(blockIndex)
	if err != nil {
		return
	}

	record, found = b.RecordAt(slot)

	return
}

// Edit - Replaces the record in block blockIndex having the same key as record
func (H *File[T, B]) Edit(blockIndex int32, record T) (edited bool, err error) {
	b, err := H.ReadBlock(blockIndex)
	if err != nil {
		return
	}

	if !b.EditRecord(record) {
		return
	}

	err = H.WriteBlock(blockIndex, b)
	edited = err == nil

	return
}

// Delete - Removes the record with the same key as key from block blockIndex and then truncates any empty blocks
// at the end of the file.
func (H *File[T, B]) Delete(blockIndex int32, key T) (removed bool, err error) {
	b, err := H.ReadBlock(blockIndex)
	if err != nil {
		return
	}

	wasFull := b.IsFull()
	if !b.RemoveRecord(key) {
		return
	}

	err = H.WriteBlock(blockIndex, b)
	if err != nil {
		return
	}
	removed = true

	if b.IsEmpty() {
		H.partial.remove(blockIndex)
		H.empty.add(blockIndex)
	} else if wasFull {
		H.partial.add(blockIndex)
	}

	err = H.TruncateEmptyTail()

	return
}

// AllocateBlock - Writes b to the lowest empty block, or to a new block appended to the file if there is no empty
// block. The block is neither tracked as empty nor as partial afterwards, it belongs to the caller (an overflow
// chain) until given back with Release.
func (H *File[T, B]) AllocateBlock(b B) (blockIndex int32, err error) {
	var ok bool
	if blockIndex, ok = H.empty.min(); ok {
		err = H.WriteBlock(blockIndex, b)
		if err != nil {
			return
		}
		H.empty.remove(blockIndex)
		H.logger.Debug("reused empty block", "block", blockIndex)
		return
	}

	blockIndex, err = H.AppendBlock(b)
	if err == nil {
		H.logger.Debug("appended block", "block", blockIndex)
	}

	return
}

// Release - Overwrites the block with an empty one and tracks it as empty. Call TruncateEmptyTail afterwards to
// give trailing empty blocks back to the file system.
func (H *File[T, B]) Release(blockIndex int32) (err error) {
	err = H.WriteBlock(blockIndex, H.newBlock())
	if err != nil {
		return
	}

	H.partial.remove(blockIndex)
	H.empty.add(blockIndex)

	return
}

// AppendBlock - Writes b as a new block at the end of the file
func (H *File[T, B]) AppendBlock(b B) (blockIndex int32, err error) {
	blockIndex = H.blockCount
	err = H.writeBlock(blockIndex, b)
	if err != nil {
		return
	}
	H.blockCount++

	return
}

// TruncateEmptyTail - Shrinks the file to end with its last non-empty block
func (H *File[T, B]) TruncateEmptyTail() (err error) {
	newCount := H.blockCount
	for newCount > 0 && H.empty.contains(newCount-1) {
		newCount--
	}

	if newCount < H.blockCount {
		err = H.truncateTo(newCount)
	}

	return
}

// RemoveLast - Cuts the last block off the file whatever its content
func (H *File[T, B]) RemoveLast() (err error) {
	if H.blockCount == 0 {
		err = hferr.NewInvariantViolation("can not remove last block from an empty file")
		return
	}

	return H.truncateTo(H.blockCount - 1)
}

// BlockCount - Returns the number of blocks in the file
func (H *File[T, B]) BlockCount() int32 {
	return H.blockCount
}

// EmptyCount - Returns the number of blocks tracked as empty
func (H *File[T, B]) EmptyCount() int {
	return H.empty.len()
}

// EmptyBlocks - Returns the indices of blocks tracked as empty, ascending
func (H *File[T, B]) EmptyBlocks() []int32 {
	return H.empty.values()
}

// PartialBlocks - Returns the indices of blocks tracked as partially filled, ascending
func (H *File[T, B]) PartialBlocks() []int32 {
	return H.partial.values()
}

// RecordsPerBlock - Returns the number of record slots of each block
func (H *File[T, B]) RecordsPerBlock() int {
	return H.newBlock().Capacity()
}

// BlockSize - Returns the number of bytes each block occupies in the file
func (H *File[T, B]) BlockSize() int64 {
	return H.blockSize
}

// FileSize - Returns the size of the data file as reported by the file system
func (H *File[T, B]) FileSize() (size int64, err error) {
	stat, err := H.file.Stat()
	if err != nil {
		err = errors.WithStack(err)
		return
	}

	return stat.Size(), nil
}

// Logger - Returns the logger of the file, tagged with the data file name
func (H *File[T, B]) Logger() *slog.Logger {
	return H.logger
}

// NewBlock - Returns an empty block of the kind stored in the file
func (H *File[T, B]) NewBlock() B {
	return H.newBlock()
}

// Close - Writes the metadata file and closes the data file. Calling Close on a closed file is a no-op.
func (H *File[T, B]) Close() (err error) {
	if H.file == nil {
		return
	}

	err = H.saveMeta()

	if syncErr := H.file.Sync(); syncErr != nil && err == nil {
		err = errors.WithStack(syncErr)
	}
	if closeErr := H.file.Close(); closeErr != nil && err == nil {
		err = errors.WithStack(closeErr)
	}
	H.file = nil

	H.logger.Info("closed heap file", "blocks", H.blockCount)

	return
}

// RemoveFiles - Removes data and metadata files, make sure to close the file first
func (H *File[T, B]) RemoveFiles() (err error) {
	for _, fileName := range []string{H.dataFileName, H.metaFileName} {
		if stat, ok := os.Stat(fileName); ok == nil && !stat.IsDir() {
			err = os.Remove(fileName)
			if err != nil {
				return errors.Wrapf(err, "error while removing %s", fileName)
			}
		}
	}

	return
}

// truncateTo - Drops every block at or above blockCount from the file and from the tracking sets
func (H *File[T, B]) truncateTo(blockCount int32) (err error) {
	err = H.file.Truncate(int64(blockCount) * H.blockSize)
	if err != nil {
		return errors.Wrapf(err, "error while truncate file to %d blocks", blockCount)
	}

	H.logger.Debug("truncated file", "from", H.blockCount, "to", blockCount)

	H.empty.removeFrom(blockCount)
	H.partial.removeFrom(blockCount)
	H.blockCount = blockCount

	return
}
