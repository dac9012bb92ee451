package linhashfile

import (
	"io"
	"log/slog"

	"github.com/gostonefire/linhashfile/hashfunc"
	"github.com/gostonefire/linhashfile/internal/storage/linhash"
	"github.com/gostonefire/linhashfile/record"
)

// HashFileConf - Is a struct to be passed in the call to NewHashFile and contains configuration that affects file
// processing.
//   - Name is the name of the hash file and will be used to form file names
//   - BlockSize is the size in bytes of each bucket
//   - OverflowBlockSize is the size in bytes of each overflow block, it must be less than BlockSize
//   - Logger is an optional structured logger, nil disables logging
type HashFileConf struct {
	Name              string
	BlockSize         int
	OverflowBlockSize int
	Logger            *slog.Logger
}

// HashFileInfo - Information structure containing some information about the hash file
//   - RecordsPerBucket is the number of record slots in each bucket
//   - RecordsPerOverflowBlock is the number of record slots in each overflow block
//   - NumberOfBuckets is the current number of buckets
//   - FileSize is the size of the hash data file
//   - OverflowFileSize is the size of the overflow data file
type HashFileInfo struct {
	RecordsPerBucket        int
	RecordsPerOverflowBlock int
	NumberOfBuckets         int
	FileSize                int64
	OverflowFileSize        int64
}

// HashFileStat - Statistics on the overall usage and distribution over buckets
//   - Records is the total number of records stored
//   - BucketRecords is the number of records stored directly in buckets
//   - OverflowRecords is the number of records that have ended up in overflow chains
//   - Buckets is the number of buckets
//   - OverflowBlocks is the number of overflow blocks in use
//   - HashPower is the number of completed split rounds
//   - SplitPointer is the next bucket to split
//   - HashEdge is the number of buckets at the start of the current split round
//   - Density is records divided by available record slots
//   - ChainsWithOverflow is the number of buckets with an overflow chain
//   - MaxChainLength is the largest number of overflow blocks in one chain
//   - BucketDistribution is the number of records stored in each bucket
type HashFileStat struct {
	Records            int
	BucketRecords      int
	OverflowRecords    int
	Buckets            int
	OverflowBlocks     int
	HashPower          int
	SplitPointer       int
	HashEdge           int
	Density            float64
	ChainsWithOverflow int
	MaxChainLength     int
	BucketDistribution []int
}

// HashFile - A file of records addressed by the hash of their keys, growing and shrinking by linear hashing
type HashFile[T any] struct {
	file *linhash.File[T]
	name string
}

// NewHashFile - Opens a hash file, creating it if its files don't exist. Records are stored according to codec which
// also provides the key hash.
//   - hashFileConf is a HashFileConf struct with the parameters of the file
//   - codec is the record codec, see record.Codec
//
// It returns:
//   - hashFile is a pointer to a HashFile struct
//   - hashFileInfo is a HashFileInfo struct containing some data regarding the hash file opened
//   - err is either a hferr.ConfigError, a hferr.CorruptMetadata or a standard error
func NewHashFile[T any](hashFileConf HashFileConf, codec record.Codec[T]) (
	hashFile *HashFile[T],
	hashFileInfo HashFileInfo,
	err error,
) {
	f, err := linhash.Open[T](linhash.Conf{
		Name:              hashFileConf.Name,
		BlockSize:         hashFileConf.BlockSize,
		OverflowBlockSize: hashFileConf.OverflowBlockSize,
		Logger:            hashFileConf.Logger,
	}, codec)
	if err != nil {
		return
	}

	hashFile = &HashFile[T]{file: f, name: hashFileConf.Name}

	hashFileInfo, err = hashFile.Info()
	if err != nil {
		_ = f.Close()
		hashFile = nil
	}

	return
}

// NewKVHashFile - Opens a hash file of key/value records with fixed key and value lengths
//   - hashFileConf is a HashFileConf struct with the parameters of the file
//   - keyLength is the length of the key part in a record
//   - valueLength is the length of the value part in a record
//   - hash is an optional key hash function, hashfunc.Bytes is used if nil
func NewKVHashFile(hashFileConf HashFileConf, keyLength, valueLength int, hash hashfunc.Func) (
	hashFile *HashFile[record.KV],
	hashFileInfo HashFileInfo,
	err error,
) {
	codec, err := record.NewKVCodec(keyLength, valueLength, hash)
	if err != nil {
		return
	}

	return NewHashFile[record.KV](hashFileConf, codec)
}

// Insert - Adds record to the hash file. There is no check for an existing record with the same key, use Get and
// Edit for updates.
func (H *HashFile[T]) Insert(record T) error {
	return H.file.Insert(record)
}

// Get - Gets the record with the same key as key.
//
// It returns:
//   - record is the stored record if found
//   - found is false if there is no record with the key, which is not an error
//   - err is a standard error, if something went wrong
func (H *HashFile[T]) Get(key T) (record T, found bool, err error) {
	return H.file.Get(key)
}

// Edit - Replaces the stored record with the same key as record. Changing the key this way is not possible, do a
// Delete followed by an Insert instead.
func (H *HashFile[T]) Edit(record T) (edited bool, err error) {
	return H.file.Edit(record)
}

// Delete - Removes the record with the same key as key
func (H *HashFile[T]) Delete(key T) (removed bool, err error) {
	return H.file.Delete(key)
}

// RecordCount - Returns the number of records stored
func (H *HashFile[T]) RecordCount() int {
	return H.file.RecordCount()
}

// BucketNo - Returns the bucket that key currently addresses
func (H *HashFile[T]) BucketNo(keyHash uint64) int {
	return int(H.file.Address(keyHash))
}

// Info - Returns a HashFileInfo struct with current sizes
func (H *HashFile[T]) Info() (hashFileInfo HashFileInfo, err error) {
	hashFileInfo = HashFileInfo{
		RecordsPerBucket:        H.file.RecordsPerBucket(),
		RecordsPerOverflowBlock: H.file.RecordsPerOverflowBlock(),
		NumberOfBuckets:         H.file.BucketCount(),
	}
	hashFileInfo.FileSize, hashFileInfo.OverflowFileSize, err = H.file.FileSizes()

	return
}

// Stat - Walks through the entire set of buckets and produces a HashFileStat struct with information.
// If the files are very big, this can take a considerable amount of time and the HashFileStat.BucketDistribution
// slice can be memory heavy (there will be one entry per bucket).
//   - includeDistribution set to true will include a slice with number of records per bucket, false will set HashFileStat.BucketDistribution to nil.
func (H *HashFile[T]) Stat(includeDistribution bool) (hashFileStat *HashFileStat, err error) {
	s, err := H.file.Stat(includeDistribution)
	if err != nil {
		return
	}

	hashFileStat = &HashFileStat{
		Records:            s.Records,
		BucketRecords:      s.BucketRecords,
		OverflowRecords:    s.OverflowRecords,
		Buckets:            s.Buckets,
		OverflowBlocks:     s.OverflowBlocks,
		HashPower:          s.HashPower,
		SplitPointer:       s.SplitPointer,
		HashEdge:           s.HashEdge,
		Density:            s.Density,
		ChainsWithOverflow: s.ChainsWithOverflow,
		MaxChainLength:     s.MaxChainLength,
		BucketDistribution: s.BucketDistribution,
	}

	return
}

// Dump - Writes a human readable listing of the hashing state, every bucket and every overflow block to w
func (H *HashFile[T]) Dump(w io.Writer) error {
	return H.file.Dump(w)
}

// forEachRecord - Calls fn with every record, bucket by bucket
func (H *HashFile[T]) forEachRecord(fn func(T) error) (err error) {
	var records []T
	for i := 0; i < H.file.BucketCount(); i++ {
		records, err = H.file.BucketRecords(int32(i))
		if err != nil {
			return
		}
		for _, r := range records {
			err = fn(r)
			if err != nil {
				return
			}
		}
	}

	return
}

// Close - Persists hashing state and closes all files. Use this preferably in a "defer" directly after NewHashFile.
func (H *HashFile[T]) Close() error {
	return H.file.Close()
}

// RemoveFiles - Closes and removes all files of the hash file
func (H *HashFile[T]) RemoveFiles() (err error) {
	_ = H.file.Close()

	return H.file.RemoveFiles()
}
