package linhashfile

import (
	"io"
	"log/slog"

	"github.com/gostonefire/linhashfile/hferr"
	"github.com/gostonefire/linhashfile/internal/block"
	"github.com/gostonefire/linhashfile/internal/conf"
	"github.com/gostonefire/linhashfile/internal/storage/heap"
	"github.com/gostonefire/linhashfile/record"
)

// HeapFileConf - Is a struct to be passed in the call to NewHeapFile and contains configuration that affects file
// processing.
//   - Name is the name of the heap file and will be used to form file names
//   - BlockSize is the size in bytes of each block
//   - Logger is an optional structured logger, nil disables logging
type HeapFileConf struct {
	Name      string
	BlockSize int
	Logger    *slog.Logger
}

// HeapFile - An unordered file of records in fixed size blocks. Records are addressed by the block index returned
// from Insert, free space is reused lowest block first.
type HeapFile[T any] struct {
	file *heap.File[T, *block.Block[T]]
}

// NewHeapFile - Opens a heap file, creating it if its files don't exist
//   - heapFileConf is a HeapFileConf struct with the parameters of the file
//   - codec is the record codec, see record.Codec
func NewHeapFile[T any](heapFileConf HeapFileConf, codec record.Codec[T]) (heapFile *HeapFile[T], err error) {
	if codec == nil {
		err = hferr.NewConfigError("a record codec is required")
		return
	}

	recordsPerBlock := block.Capacity(heapFileConf.BlockSize, conf.BlockHeaderLength, codec.Size())
	f, err := heap.Open[T](heap.Conf[*block.Block[T]]{
		Name:      heapFileConf.Name,
		BlockSize: heapFileConf.BlockSize,
		NewBlock: func() *block.Block[T] {
			return block.New[T](codec, recordsPerBlock)
		},
		Logger: heapFileConf.Logger,
	})
	if err != nil {
		return
	}

	heapFile = &HeapFile[T]{file: f}

	return
}

// Insert - Stores record and returns the index of the block it was stored in
func (H *HeapFile[T]) Insert(record T) (blockIndex int, err error) {
	bi, err := H.file.Insert(record)

	return int(bi), err
}

// Get - Gets the record with the same key as key from block blockIndex
func (H *HeapFile[T]) Get(blockIndex int, key T) (record T, found bool, err error) {
	return H.file.Get(int32(blockIndex), key)
}

// GetAt - Gets the record in slot of block blockIndex
func (H *HeapFile[T]) GetAt(blockIndex, slot int) (record T, found bool, err error) {
	return H.file.GetAt(int32(blockIndex), slot)
}

// Edit - Replaces the record with the same key as record in block blockIndex
func (H *HeapFile[T]) Edit(blockIndex int, record T) (edited bool, err error) {
	return H.file.Edit(int32(blockIndex), record)
}

// Delete - Removes the record with the same key as key from block blockIndex
func (H *HeapFile[T]) Delete(blockIndex int, key T) (removed bool, err error) {
	return H.file.Delete(int32(blockIndex), key)
}

// BlockCount - Returns the number of blocks in the file
func (H *HeapFile[T]) BlockCount() int {
	return int(H.file.BlockCount())
}

// RecordsPerBlock - Returns the number of record slots in each block
func (H *HeapFile[T]) RecordsPerBlock() int {
	return H.file.RecordsPerBlock()
}

// Dump - Writes a human readable listing of every block to w
func (H *HeapFile[T]) Dump(w io.Writer) error {
	return H.file.Dump(w)
}

// Close - Persists block tracking and closes the file
func (H *HeapFile[T]) Close() error {
	return H.file.Close()
}

// RemoveFiles - Closes and removes all files of the heap file
func (H *HeapFile[T]) RemoveFiles() (err error) {
	_ = H.file.Close()

	return H.file.RemoveFiles()
}
