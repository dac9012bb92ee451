package linhash

import (
	"log/slog"
	"os"

	"github.com/gostonefire/linhashfile/hferr"
	"github.com/gostonefire/linhashfile/internal/block"
	"github.com/gostonefire/linhashfile/internal/conf"
	"github.com/gostonefire/linhashfile/internal/logging"
	"github.com/gostonefire/linhashfile/internal/storage/heap"
	"github.com/gostonefire/linhashfile/internal/storage/overflow"
	"github.com/gostonefire/linhashfile/record"
	"github.com/pkg/errors"
)

// Conf - Is a struct to be passed in the call to Open and contains configuration that affects file processing.
//   - Name is the name to base all file names on
//   - BlockSize is the number of bytes of each bucket in the hash file
//   - OverflowBlockSize is the number of bytes of each block in the overflow file, it must be less than BlockSize
//   - Logger is an optional structured logger
type Conf struct {
	Name              string
	BlockSize         int
	OverflowBlockSize int
	Logger            *slog.Logger
}

// File - A hash file growing and shrinking one bucket at a time by linear hashing. Bucket b lives at block b of the
// data file, buckets that overflow continue in chains stored in a separate overflow file.
type File[T any] struct {
	codec            record.Codec[T]
	heap             *heap.File[T, *block.Bucket[T]]
	overflow         *overflow.File[T]
	metaFileName     string
	recordsPerBucket int
	hashPower        int
	splitPointer     int
	recordCount      int
	closed           bool
	logger           *slog.Logger
}

// Open - Opens, or creates if missing, the hash file <name>.dat with metadata <name>_hash.dat and <name>_heap.dat,
// and its overflow file <name>_overflow.dat.
//   - hashConf is a Conf struct with the parameters of the file
//   - codec encodes, compares and hashes the records stored
//
// It returns:
//   - hashFile which is a pointer to the opened instance
//   - err which is either a hferr.ConfigError, a hferr.CorruptMetadata or an I/O error
func Open[T any](hashConf Conf, codec record.Codec[T]) (hashFile *File[T], err error) {
	if hashConf.Name == "" {
		err = hferr.NewConfigError("name can not be empty, it will be used to name physical files")
		return
	}
	if codec == nil {
		err = hferr.NewConfigError("a record codec is required")
		return
	}
	if hashConf.OverflowBlockSize >= hashConf.BlockSize {
		err = hferr.NewConfigError("block size %d must be greater than overflow block size %d",
			hashConf.BlockSize, hashConf.OverflowBlockSize)
		return
	}

	recordsPerBucket := block.Capacity(hashConf.BlockSize, conf.BucketHeaderLength, codec.Size())
	if recordsPerBucket < 1 {
		err = hferr.NewConfigError("block size %d is too small to hold one record of %d bytes",
			hashConf.BlockSize, codec.Size())
		return
	}

	logger := logging.OrDiscard(hashConf.Logger)

	ovfl, err := overflow.Open[T](overflow.Conf[T]{
		Name:      hashConf.Name + conf.OverflowNameSuffix,
		BlockSize: hashConf.OverflowBlockSize,
		Codec:     codec,
		Logger:    logger,
	})
	if err != nil {
		return
	}

	h, err := heap.Open[T](heap.Conf[*block.Bucket[T]]{
		Name:      hashConf.Name,
		BlockSize: hashConf.BlockSize,
		NewBlock: func() *block.Bucket[T] {
			return block.NewBucket[T](codec, recordsPerBucket)
		},
		Logger: logger,
	})
	if err != nil {
		_ = ovfl.Close()
		return
	}

	hashFile = &File[T]{
		codec:            codec,
		heap:             h,
		overflow:         ovfl,
		metaFileName:     hashConf.Name + conf.HashMetaFileSuffix,
		recordsPerBucket: recordsPerBucket,
		logger:           h.Logger(),
	}

	err = hashFile.openMeta()
	if err != nil {
		_ = h.Close()
		_ = ovfl.Close()
		hashFile = nil
		return
	}

	hashFile.logger.Info("opened hash file",
		"buckets", h.BlockCount(), "records", hashFile.recordCount,
		"hashPower", hashFile.hashPower, "splitPointer", hashFile.splitPointer)

	return
}

// openMeta - Loads hash power, split pointer and record count, creates the initial buckets of a new file and checks
// that the number of buckets agrees with the loaded state
func (F *File[T]) openMeta() (err error) {
	_, statErr := os.Stat(F.metaFileName)
	if statErr == nil {
		var buf []byte
		buf, err = os.ReadFile(F.metaFileName)
		if err != nil {
			return errors.Wrap(err, "error while reading hash metadata file")
		}
		F.hashPower, F.splitPointer, F.recordCount, err = bytesToMeta(buf)
		if err != nil {
			return
		}
	} else if F.heap.BlockCount() > 0 {
		return hferr.NewCorruptMetadata("hash metadata file %s is missing for %d existing buckets",
			F.metaFileName, F.heap.BlockCount())
	}

	if F.heap.BlockCount() == 0 && F.hashPower == 0 && F.splitPointer == 0 {
		if F.recordCount != 0 {
			return hferr.NewCorruptMetadata("hash file without buckets claims %d records", F.recordCount)
		}
		for i := 0; i < conf.InitialBuckets; i++ {
			_, err = F.heap.AppendBlock(F.heap.NewBlock())
			if err != nil {
				return
			}
		}
	}

	if F.hashPower < 0 || F.hashPower > 30 || F.splitPointer < 0 || F.splitPointer >= F.hashEdge() {
		return hferr.NewCorruptMetadata("hash power %d and split pointer %d are not a valid state",
			F.hashPower, F.splitPointer)
	}
	if int(F.heap.BlockCount()) != F.hashEdge()+F.splitPointer {
		return hferr.NewCorruptMetadata("hash file has %d buckets, expected %d from hash power %d and split pointer %d",
			F.heap.BlockCount(), F.hashEdge()+F.splitPointer, F.hashPower, F.splitPointer)
	}

	return
}

// Insert - Stores record in its bucket, or in the overflow chain of the bucket if it is full, and then splits
// buckets until the density is back under the upper threshold. No check is made for an existing record with the
// same key.
func (F *File[T]) Insert(record T) (err error) {
	bucketIndex := F.Address(F.codec.KeyHash(record))
	b, err := F.heap.ReadBlock(bucketIndex)
	if err != nil {
		return
	}

	if !b.AddRecord(record) {
		if b.HasNext() {
			var added bool
			added, err = F.overflow.InsertToChain(b.Next(), record)
			if err != nil {
				return
			}
			if added {
				b.IncrementOverflowBlockCount()
			}
		} else {
			var head int32
			head, err = F.overflow.InsertToStart(record)
			if err != nil {
				return
			}
			b.SetNext(head)
			b.IncrementOverflowBlockCount()
		}
	}
	b.IncrementRecordCount()

	err = F.heap.WriteBlock(bucketIndex, b)
	if err != nil {
		return
	}
	F.recordCount++

	for F.Density() > conf.MaxDensity {
		err = F.split()
		if err != nil {
			return
		}
	}

	return
}

// Get - Returns the record having the same key as key
func (F *File[T]) Get(key T) (record T, found bool, err error) {
	b, err := F.heap.ReadBlock(F.Address(F.codec.KeyHash(key)))
	if err != nil {
		return
	}

	if record, found = b.Find(key); found || !b.HasNext() {
		return
	}

	return F.overflow.Find(b.Next(), key)
}

// Edit - Replaces the record having the same key as record. The key must not change, a record with a new key is
// a Delete followed by an Insert.
func (F *File[T]) Edit(record T) (edited bool, err error) {
	bucketIndex := F.Address(F.codec.KeyHash(record))
	b, err := F.heap.ReadBlock(bucketIndex)
	if err != nil {
		return
	}

	if b.EditRecord(record) {
		err = F.heap.WriteBlock(bucketIndex, b)
		edited = err == nil
		return
	}
	if !b.HasNext() {
		return
	}

	return F.overflow.Edit(b.Next(), record)
}

// Delete - Removes the record having the same key as key, compacts the overflow chain of its bucket and then merges
// buckets while the density is under the lower threshold
func (F *File[T]) Delete(key T) (removed bool, err error) {
	bucketIndex := F.Address(F.codec.KeyHash(key))
	b, err := F.heap.ReadBlock(bucketIndex)
	if err != nil {
		return
	}

	removed = b.RemoveRecord(key)
	if !removed && b.HasNext() {
		removed, err = F.overflow.Delete(b.Next(), key)
		if err != nil {
			return
		}
	}
	if !removed {
		return
	}

	err = b.DecrementRecordCount()
	if err != nil {
		return
	}
	err = F.heap.WriteBlock(bucketIndex, b)
	if err != nil {
		return
	}
	F.recordCount--

	err = F.shake(bucketIndex, b)
	if err != nil {
		return
	}

	for int(F.heap.BlockCount()) > conf.InitialBuckets && F.Density() < conf.MinDensity {
		err = F.merge()
		if err != nil {
			return
		}
	}

	return
}

// Address - Returns the bucket of a key hash. Buckets below the split pointer have already been split in this round
// and are addressed with the next hash power.
func (F *File[T]) Address(keyHash uint64) int32 {
	return Address(keyHash, F.hashPower, F.splitPointer)
}

// Address - Returns the bucket of keyHash for a file with the given hash power and split pointer
func Address(keyHash uint64, hashPower, splitPointer int) int32 {
	edge := uint64(conf.InitialBuckets) << hashPower
	a := keyHash % edge
	if a < uint64(splitPointer) {
		a = keyHash % (edge << 1)
	}

	return int32(a)
}

// Density - Returns records divided by the record slots of all buckets and all overflow blocks in use
func (F *File[T]) Density() float64 {
	capacity := int(F.heap.BlockCount())*F.recordsPerBucket + F.overflow.Capacity()
	if capacity == 0 {
		return 0
	}

	return float64(F.recordCount) / float64(capacity)
}

// hashEdge - Returns the number of buckets at the start of the current round, M*2^i
func (F *File[T]) hashEdge() int {
	return conf.InitialBuckets << F.hashPower
}

// HashPower - Returns the number of completed split rounds
func (F *File[T]) HashPower() int {
	return F.hashPower
}

// SplitPointer - Returns the next bucket to split
func (F *File[T]) SplitPointer() int {
	return F.splitPointer
}

// HashEdge - Returns the number of buckets at the start of the current split round
func (F *File[T]) HashEdge() int {
	return F.hashEdge()
}

// RecordCount - Returns the number of records in the file
func (F *File[T]) RecordCount() int {
	return F.recordCount
}

// BucketCount - Returns the number of buckets
func (F *File[T]) BucketCount() int {
	return int(F.heap.BlockCount())
}

// RecordsPerBucket - Returns the number of record slots in a bucket
func (F *File[T]) RecordsPerBucket() int {
	return F.recordsPerBucket
}

// RecordsPerOverflowBlock - Returns the number of record slots in an overflow block
func (F *File[T]) RecordsPerOverflowBlock() int {
	return F.overflow.RecordsPerBlock()
}

// OverflowBlockCount - Returns the number of overflow blocks that are part of a chain
func (F *File[T]) OverflowBlockCount() int {
	return F.overflow.UsedBlockCount()
}

// FileSizes - Returns the sizes of the hash data file and the overflow data file
func (F *File[T]) FileSizes() (hashFileSize, overflowFileSize int64, err error) {
	hashFileSize, err = F.heap.FileSize()
	if err != nil {
		return
	}
	overflowFileSize, err = F.overflow.FileSize()

	return
}

// BucketRecords - Returns every record of a bucket, its own slots first and then its overflow chain in order
func (F *File[T]) BucketRecords(bucketIndex int32) (records []T, err error) {
	b, err := F.heap.ReadBlock(bucketIndex)
	if err != nil {
		return
	}
	records = b.Records()

	iter := F.overflow.Chain(b.Next())
	for iter.HasNext() {
		var c *block.Chained[T]
		_, c, err = iter.Next()
		if err != nil {
			return
		}
		records = append(records, c.Records()...)
	}

	return
}

// Close - Writes the hash metadata, then closes the hash data file and finally the overflow file. The overflow file
// is closed even if an earlier step failed, the first error is returned. Calling Close on a closed file is a no-op.
func (F *File[T]) Close() (err error) {
	if F.closed {
		return
	}
	F.closed = true

	err = F.saveMeta()

	if heapErr := F.heap.Close(); heapErr != nil && err == nil {
		err = heapErr
	}
	if ovflErr := F.overflow.Close(); ovflErr != nil && err == nil {
		err = ovflErr
	}

	F.logger.Info("closed hash file", "records", F.recordCount, "buckets", F.heap.BlockCount())

	return
}

// RemoveFiles - Removes every file of the hash file, make sure to close it first
func (F *File[T]) RemoveFiles() (err error) {
	err = F.heap.RemoveFiles()
	if err != nil {
		return
	}
	err = F.overflow.RemoveFiles()
	if err != nil {
		return
	}

	if stat, ok := os.Stat(F.metaFileName); ok == nil && !stat.IsDir() {
		err = os.Remove(F.metaFileName)
		if err != nil {
			return errors.Wrapf(err, "error while removing %s", F.metaFileName)
		}
	}

	return
}

// saveMeta - Writes hash power, split pointer and record count to the hash metadata file
func (F *File[T]) saveMeta() (err error) {
	err = os.WriteFile(F.metaFileName, metaToBytes(F.hashPower, F.splitPointer, F.recordCount), 0644)
	if err != nil {
		return errors.Wrap(err, "error while writing hash metadata file")
	}

	return
}
