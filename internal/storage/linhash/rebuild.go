package linhash

import (
	"github.com/gostonefire/linhashfile/hferr"
	"github.com/gostonefire/linhashfile/internal/block"
	"github.com/gostonefire/linhashfile/internal/utils"
)

// split - Splits the bucket at the split pointer into itself and a new bucket appended to the file, then advances
// the split pointer, starting a new round with a doubled hash edge when it reaches the current edge
func (F *File[T]) split() (err error) {
	oldIndex := int32(F.splitPointer)
	oldBucket, err := F.heap.ReadBlock(oldIndex)
	if err != nil {
		return
	}
	records, pool, err := F.drain(oldBucket)
	if err != nil {
		return
	}

	newBucket := F.heap.NewBlock()
	newIndex, err := F.heap.AppendBlock(newBucket)
	if err != nil {
		return
	}

	F.splitPointer++
	if F.splitPointer == F.hashEdge() {
		F.splitPointer = 0
		F.hashPower++
	}

	var oldRecords, newRecords []T
	for _, r := range records {
		switch F.Address(F.codec.KeyHash(r)) {
		case oldIndex:
			oldRecords = append(oldRecords, r)
		case newIndex:
			newRecords = append(newRecords, r)
		default:
			return hferr.NewInvariantViolation("record of bucket %d addresses neither bucket %d nor new bucket %d",
				oldIndex, oldIndex, newIndex)
		}
	}

	pool, err = F.refill(oldIndex, oldBucket, oldRecords, pool)
	if err != nil {
		return
	}
	pool, err = F.refill(newIndex, newBucket, newRecords, pool)
	if err != nil {
		return
	}
	err = F.overflow.Release(pool)
	if err != nil {
		return
	}

	F.logger.Debug("split bucket",
		"bucket", oldIndex, "newBucket", newIndex, "kept", len(oldRecords), "moved", len(newRecords),
		"hashPower", F.hashPower, "splitPointer", F.splitPointer)

	return
}

// merge - Undoes the last split: the last bucket is folded into the bucket it was split from and cut off the file.
// The chain of the last bucket is released up front, refill picks its blocks up again through Allocate.
func (F *File[T]) merge() (err error) {
	F.splitPointer--
	if F.splitPointer < 0 {
		F.hashPower--
		F.splitPointer = F.hashEdge() - 1
	}

	lastIndex := F.heap.BlockCount() - 1
	lastBucket, err := F.heap.ReadBlock(lastIndex)
	if err != nil {
		return
	}
	lastRecords := lastBucket.Records()
	if lastBucket.HasNext() {
		var chained []T
		chained, err = F.overflow.RemoveChain(lastBucket.Next())
		if err != nil {
			return
		}
		lastRecords = append(lastRecords, chained...)
	}
	if len(lastRecords) != lastBucket.RecordCount() {
		return hferr.NewInvariantViolation("bucket %d counts %d records, chain holds %d",
			lastIndex, lastBucket.RecordCount(), len(lastRecords))
	}

	targetIndex := int32(F.splitPointer)
	targetBucket, err := F.heap.ReadBlock(targetIndex)
	if err != nil {
		return
	}
	records, pool, err := F.drain(targetBucket)
	if err != nil {
		return
	}
	records = append(records, lastRecords...)

	for _, r := range records {
		if a := F.Address(F.codec.KeyHash(r)); a != targetIndex {
			return hferr.NewInvariantViolation("merged record addresses bucket %d instead of bucket %d", a, targetIndex)
		}
	}

	pool, err = F.refill(targetIndex, targetBucket, records, pool)
	if err != nil {
		return
	}
	err = F.heap.RemoveLast()
	if err != nil {
		return
	}
	err = F.overflow.Release(pool)
	if err != nil {
		return
	}

	F.logger.Debug("merged bucket",
		"bucket", lastIndex, "into", targetIndex, "records", len(records),
		"hashPower", F.hashPower, "splitPointer", F.splitPointer)

	return
}

// shake - Rewrites the bucket and its overflow chain densely if the chain holds more blocks than its records need
func (F *File[T]) shake(bucketIndex int32, b *block.Bucket[T]) (err error) {
	needed := utils.CeilDiv(b.RecordCount()-b.Capacity(), F.overflow.RecordsPerBlock())
	if needed >= b.OverflowBlockCount() {
		return
	}

	before := b.OverflowBlockCount()
	records, pool, err := F.drain(b)
	if err != nil {
		return
	}
	pool, err = F.refill(bucketIndex, b, records, pool)
	if err != nil {
		return
	}
	err = F.overflow.Release(pool)
	if err != nil {
		return
	}

	F.logger.Debug("shook overflow chain", "bucket", bucketIndex, "blocksBefore", before, "blocksAfter", b.OverflowBlockCount())

	return
}

// drain - Collects the records of a bucket and its overflow chain. The chain blocks are returned as a pool that
// stays owned by the caller, to be reused by refill or given back with Release.
func (F *File[T]) drain(b *block.Bucket[T]) (records []T, pool []int32, err error) {
	records = b.Records()
	if !b.HasNext() {
		return
	}

	blocks, pool, err := F.overflow.GetChain(b.Next())
	if err != nil {
		return
	}
	for _, c := range blocks {
		records = append(records, c.Records()...)
	}

	if len(records) != b.RecordCount() || len(pool) != b.OverflowBlockCount() {
		err = hferr.NewInvariantViolation("bucket counts %d records in %d overflow blocks, chain holds %d in %d",
			b.RecordCount(), b.OverflowBlockCount(), len(records), len(pool))
	}

	return
}

// refill - Writes records into the bucket, own slots first and then overflow blocks taken from pool in order, new
// blocks are allocated only when pool runs out. The unused part of pool is returned.
func (F *File[T]) refill(bucketIndex int32, b *block.Bucket[T], records []T, pool []int32) (rest []int32, err error) {
	b.Clear()

	n := 0
	for n < len(records) && b.AddRecord(records[n]) {
		n++
	}

	var blocks []*block.Chained[T]
	var indices []int32
	for n < len(records) {
		c := F.overflow.NewBlock()
		for n < len(records) && c.AddRecord(records[n]) {
			n++
		}

		var blockIndex int32
		if len(pool) > 0 {
			blockIndex, pool = pool[0], pool[1:]
		} else {
			blockIndex, err = F.overflow.Allocate()
			if err != nil {
				return
			}
		}
		blocks = append(blocks, c)
		indices = append(indices, blockIndex)
	}

	if len(blocks) > 0 {
		err = F.overflow.EditBlockChain(indices, blocks)
		if err != nil {
			return
		}
		b.SetNext(indices[0])
	}
	b.SetCounters(len(records), len(blocks))

	err = F.heap.WriteBlock(bucketIndex, b)
	if err != nil {
		return
	}

	return pool, nil
}
