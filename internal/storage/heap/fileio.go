package heap

import (
	"io"
	"os"

	"github.com/gostonefire/linhashfile/hferr"
	"github.com/pkg/errors"
)

// openFiles - Opens the data file and loads the metadata file if there is one, otherwise the data file is created
// (or truncated) empty
func (H *File[T, B]) openFiles() (err error) {
	_, statErr := os.Stat(H.metaFileName)
	hasMeta := statErr == nil

	flags := os.O_CREATE | os.O_RDWR
	if !hasMeta {
		flags |= os.O_TRUNC
	}

	H.file, err = os.OpenFile(H.dataFileName, flags, 0644)
	if err != nil {
		return errors.Wrap(err, "unable to open data file")
	}

	if !hasMeta {
		return
	}

	err = H.loadMeta()
	if err != nil {
		_ = H.file.Close()
		H.file = nil
		return
	}

	size, err := H.FileSize()
	if err != nil {
		_ = H.file.Close()
		H.file = nil
		return
	}
	if size != int64(H.blockCount)*H.blockSize {
		_ = H.file.Close()
		H.file = nil
		return hferr.NewCorruptMetadata("data file size %d doesn't conform with %d blocks of %d bytes",
			size, H.blockCount, H.blockSize)
	}

	return
}

// ReadBlock - Reads and decodes block blockIndex
func (H *File[T, B]) ReadBlock(blockIndex int32) (b B, err error) {
	if blockIndex < 0 || blockIndex >= H.blockCount {
		err = errors.Errorf("block index %d outside file of %d blocks", blockIndex, H.blockCount)
		return
	}

	_, err = H.file.Seek(int64(blockIndex)*H.blockSize, io.SeekStart)
	if err != nil {
		err = errors.WithStack(err)
		return
	}

	buf := make([]byte, H.blockSize)
	_, err = io.ReadFull(H.file, buf)
	if err != nil {
		err = errors.Wrapf(err, "error while reading block %d", blockIndex)
		return
	}

	b = H.newBlock()
	err = b.Decode(buf)
	if err != nil {
		err = errors.Wrapf(err, "error while decoding block %d", blockIndex)
	}

	return
}

// WriteBlock - Encodes b and writes it over the existing block blockIndex
func (H *File[T, B]) WriteBlock(blockIndex int32, b B) (err error) {
	if blockIndex < 0 || blockIndex >= H.blockCount {
		return errors.Errorf("block index %d outside file of %d blocks", blockIndex, H.blockCount)
	}

	return H.writeBlock(blockIndex, b)
}

func (H *File[T, B]) writeBlock(blockIndex int32, b B) (err error) {
	buf := make([]byte, H.blockSize)
	err = b.Encode(buf)
	if err != nil {
		return errors.Wrapf(err, "error while encoding block %d", blockIndex)
	}

	_, err = H.file.Seek(int64(blockIndex)*H.blockSize, io.SeekStart)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = H.file.Write(buf)
	if err != nil {
		return errors.Wrapf(err, "error while writing block %d", blockIndex)
	}

	return
}

// saveMeta - Writes block count and the empty and partial block indices to the metadata file
func (H *File[T, B]) saveMeta() (err error) {
	buf := metaToBytes(H.blockCount, H.empty.values(), H.partial.values())

	err = os.WriteFile(H.metaFileName, buf, 0644)
	if err != nil {
		return errors.Wrap(err, "error while writing heap metadata file")
	}

	return
}

// loadMeta - Reads the metadata file written by saveMeta
func (H *File[T, B]) loadMeta() (err error) {
	buf, err := os.ReadFile(H.metaFileName)
	if err != nil {
		return errors.Wrap(err, "error while reading heap metadata file")
	}

	blockCount, empty, partial, err := bytesToMeta(buf)
	if err != nil {
		return
	}

	H.blockCount = blockCount
	for _, blockIndex := range empty {
		if blockIndex < 0 || blockIndex >= blockCount {
			return hferr.NewCorruptMetadata("empty block index %d outside file of %d blocks", blockIndex, blockCount)
		}
		H.empty.add(blockIndex)
	}
	for _, blockIndex := range partial {
		if blockIndex < 0 || blockIndex >= blockCount || H.empty.contains(blockIndex) {
			return hferr.NewCorruptMetadata("partial block index %d invalid for file of %d blocks", blockIndex, blockCount)
		}
		H.partial.add(blockIndex)
	}

	return
}
