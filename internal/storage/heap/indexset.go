package heap

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// indexSet - Ordered duplicate free set of block indices
type indexSet struct {
	rb *roaring.Bitmap
}

func newIndexSet() *indexSet {
	return &indexSet{rb: roaring.New()}
}

func (I *indexSet) add(blockIndex int32) {
	I.rb.Add(uint32(blockIndex))
}

func (I *indexSet) remove(blockIndex int32) {
	I.rb.Remove(uint32(blockIndex))
}

func (I *indexSet) contains(blockIndex int32) bool {
	return I.rb.Contains(uint32(blockIndex))
}

// min - Returns the lowest index, ok is false for an empty set
func (I *indexSet) min() (blockIndex int32, ok bool) {
	if I.rb.IsEmpty() {
		return
	}

	return int32(I.rb.Minimum()), true
}

func (I *indexSet) len() int {
	return int(I.rb.GetCardinality())
}

// removeFrom - Removes every index at or above blockIndex
func (I *indexSet) removeFrom(blockIndex int32) {
	I.rb.RemoveRange(uint64(blockIndex), uint64(1)<<32)
}

// values - Returns all indices in ascending order
func (I *indexSet) values() []int32 {
	a := I.rb.ToArray()
	r := make([]int32, len(a))
	for i, v := range a {
		r[i] = int32(v)
	}

	return r
}
