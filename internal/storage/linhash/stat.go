package linhash

import (
	"fmt"
	"io"

	"github.com/gostonefire/linhashfile/internal/storage/heap"
)

// Stat - Statistics on the overall usage and distribution over buckets
//   - Records is the number of records counted by walking every bucket
//   - BucketRecords is the number of records stored in bucket slots
//   - OverflowRecords is the number of records stored in overflow chains
//   - Buckets is the number of buckets
//   - OverflowBlocks is the number of overflow blocks that are part of a chain
//   - HashPower, SplitPointer and HashEdge are the linear hashing state
//   - Density is records divided by record slots in buckets and used overflow blocks
//   - ChainsWithOverflow is the number of buckets having an overflow chain
//   - MaxChainLength is the largest number of overflow blocks of one bucket
//   - BucketDistribution is the number of records of each bucket, nil unless asked for
type Stat struct {
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

// Stat - Walks through every bucket and produces a Stat struct. Bucket counters are checked against the records
// actually found on the way.
//   - includeDistribution set to true will include a slice with number of records per bucket
func (F *File[T]) Stat(includeDistribution bool) (stat Stat, err error) {
	stat = Stat{
		Buckets:        F.BucketCount(),
		OverflowBlocks: F.overflow.UsedBlockCount(),
		HashPower:      F.hashPower,
		SplitPointer:   F.splitPointer,
		HashEdge:       F.hashEdge(),
		Density:        F.Density(),
	}
	if includeDistribution {
		stat.BucketDistribution = make([]int, stat.Buckets)
	}

	for i := int32(0); i < int32(stat.Buckets); i++ {
		b, err := F.heap.ReadBlock(i)
		if err != nil {
			return stat, err
		}
		_, _, err = F.drain(b)
		if err != nil {
			return stat, err
		}

		stat.Records += b.RecordCount()
		stat.BucketRecords += b.ValidCount()
		stat.OverflowRecords += b.RecordCount() - b.ValidCount()
		if b.OverflowBlockCount() > 0 {
			stat.ChainsWithOverflow++
		}
		stat.MaxChainLength = max(stat.MaxChainLength, b.OverflowBlockCount())
		if includeDistribution {
			stat.BucketDistribution[i] = b.RecordCount()
		}
	}

	return
}

// Dump - Writes the linear hashing state followed by a listing of every bucket and every overflow block to w
func (F *File[T]) Dump(w io.Writer) (err error) {
	_, err = fmt.Fprintf(w, "Hash power: %d\nSplit pointer: %d\nHash edge: %d\nRecords: %d\nDensity: %.3f\n\n",
		F.hashPower, F.splitPointer, F.hashEdge(), F.recordCount, F.Density())
	if err != nil {
		return
	}

	for i := int32(0); i < F.heap.BlockCount(); i++ {
		b, err := F.heap.ReadBlock(i)
		if err != nil {
			return err
		}
		err = heap.DumpBlock[T](w, i, b)
		if err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(w, "\nOverflow file\n")
	if err != nil {
		return
	}

	return F.overflow.Dump(w)
}
