package linhashfile

import (
	"fmt"
	"log/slog"

	"github.com/gostonefire/linhashfile/hashfunc"
	"github.com/gostonefire/linhashfile/internal/utils"
	"github.com/gostonefire/linhashfile/record"
)

// ReorgConf - Is a struct used in the call to ReorgFiles holding the layout of the existing files and configuration
// for the new file structure.
//   - KeyLength is the key length of the records in the existing files
//   - ValueLength is the value length of the records in the existing files
//   - BlockSize is the bucket size of the existing files
//   - OverflowBlockSize is the overflow block size of the existing files
//   - NewBlockSize is the bucket size of the new files, zero keeps BlockSize
//   - NewOverflowBlockSize is the overflow block size of the new files, zero keeps OverflowBlockSize
//   - KeyExtension is number of bytes to extend the key with
//   - PrependKeyExtension whether to prepend the extra space or append it
//   - ValueExtension is number of bytes to extend the value with
//   - PrependValueExtension whether to prepend the extra space or append it
//   - OldHashFunc is the key hash used in the existing files, nil for hashfunc.Bytes
//   - NewHashFunc is the key hash to use in the new files, nil for hashfunc.Bytes
//   - Logger is an optional structured logger
type ReorgConf struct {
	KeyLength             int
	ValueLength           int
	BlockSize             int
	OverflowBlockSize     int
	NewBlockSize          int
	NewOverflowBlockSize  int
	KeyExtension          int64
	PrependKeyExtension   bool
	ValueExtension        int64
	PrependValueExtension bool
	OldHashFunc           hashfunc.Func
	NewHashFunc           hashfunc.Func
	Logger                *slog.Logger
}

// ReorgFiles - Is used when existing key/value hash files need to reflect new conditions as compared to when they
// were first created. For instance if we need to store more data in each record, or bigger blocks would give
// shorter overflow chains, or a better hash function has been found for the particular set of data.
//
// The new files are created under the name "<name>-reorg", the old files are left untouched to prevent data loss
// due to mistakes.
//
// The reorganization happens only if the ReorgConf struct holds a change, that is a new block size, a key or value
// extension or a new hash function. To force a reorganization anyway, use the force flag in the call to the
// function. This rewrites every overflow chain densely and can be handy after lots of deletes.
//   - name is the name of existing hash files (including correct path)
//   - reorgConf is an instance of the ReorgConf struct
//   - force set to true forces a reorganization regardless of what is changed from the ReorgConf struct
func ReorgFiles(name string, reorgConf ReorgConf, force bool) (fromHashFileInfo, toHashFileInfo HashFileInfo, err error) {
	newName := fmt.Sprintf("%s-reorg", name)

	newBlockSize := reorgConf.BlockSize
	newOverflowBlockSize := reorgConf.OverflowBlockSize
	hasChanges := force
	if reorgConf.NewBlockSize > 0 && reorgConf.NewBlockSize != reorgConf.BlockSize {
		newBlockSize = reorgConf.NewBlockSize
		hasChanges = true
	}
	if reorgConf.NewOverflowBlockSize > 0 && reorgConf.NewOverflowBlockSize != reorgConf.OverflowBlockSize {
		newOverflowBlockSize = reorgConf.NewOverflowBlockSize
		hasChanges = true
	}
	if reorgConf.KeyExtension > 0 || reorgConf.ValueExtension > 0 || reorgConf.NewHashFunc != nil {
		hasChanges = true
	}
	if !hasChanges {
		return
	}

	from, fromHashFileInfo, err := NewKVHashFile(HashFileConf{
		Name:              name,
		BlockSize:         reorgConf.BlockSize,
		OverflowBlockSize: reorgConf.OverflowBlockSize,
		Logger:            reorgConf.Logger,
	}, reorgConf.KeyLength, reorgConf.ValueLength, reorgConf.OldHashFunc)
	if err != nil {
		return
	}
	defer func() { _ = from.Close() }()

	to, _, err := NewKVHashFile(HashFileConf{
		Name:              newName,
		BlockSize:         newBlockSize,
		OverflowBlockSize: newOverflowBlockSize,
		Logger:            reorgConf.Logger,
	},
		reorgConf.KeyLength+int(reorgConf.KeyExtension),
		reorgConf.ValueLength+int(reorgConf.ValueExtension),
		reorgConf.NewHashFunc)
	if err != nil {
		return
	}
	defer func() {
		if closeErr := to.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	err = reorgRecords(from, to, reorgConf)
	if err != nil {
		return
	}

	toHashFileInfo, err = to.Info()

	return
}

// reorgRecords - Reads bucket by bucket, record by record, transforms, and writes to new hash files
func reorgRecords(from, to *HashFile[record.KV], reorgConf ReorgConf) error {
	return from.forEachRecord(func(r record.KV) error {
		return to.Insert(record.KV{
			Key:   utils.ExtendByteSlice(r.Key, reorgConf.KeyExtension, reorgConf.PrependKeyExtension),
			Value: utils.ExtendByteSlice(r.Value, reorgConf.ValueExtension, reorgConf.PrependValueExtension),
		})
	})
}
