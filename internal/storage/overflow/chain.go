package overflow

import (
	"github.com/gostonefire/linhashfile/hferr"
	"github.com/gostonefire/linhashfile/internal/block"
	"github.com/gostonefire/linhashfile/internal/conf"
	"github.com/pkg/errors"
)

// Chain - Is used to iterate over the blocks of an overflow chain one by one.
type Chain[T any] struct {
	getBlockFunc func(int32) (*block.Chained[T], error)
	blockIndex   int32
	maxSteps     int32
	steps        int32
}

// NewChain - Returns a pointer to a new Chain starting at head.
//   - getBlockFunc reads one block from the overflow file
//   - head is the index of the first block, conf.NoBlock gives an iterator without blocks
//   - maxSteps is the number of blocks in the file, a chain longer than that must contain a cycle
func NewChain[T any](getBlockFunc func(int32) (*block.Chained[T], error), head int32, maxSteps int32) *Chain[T] {
	return &Chain[T]{
		getBlockFunc: getBlockFunc,
		blockIndex:   head,
		maxSteps:     maxSteps,
	}
}

// HasNext - Returns true if there are more blocks to be fetched from a call to Next.
func (C *Chain[T]) HasNext() bool {
	return C.blockIndex != conf.NoBlock
}

// Next - Returns the next block in the chain.
// It returns:
//   - blockIndex is the index of the returned block in the overflow file.
//   - b is the block itself.
//   - err is either a standard error or a hferr.InvariantViolation if the chain loops.
func (C *Chain[T]) Next() (blockIndex int32, b *block.Chained[T], err error) {
	if C.blockIndex == conf.NoBlock {
		err = errors.New("no more blocks in overflow chain")
		return
	}
	if C.steps >= C.maxSteps {
		err = hferr.NewInvariantViolation("overflow chain longer than the %d blocks of the file", C.maxSteps)
		return
	}

	b, err = C.getBlockFunc(C.blockIndex)
	if err != nil {
		err = errors.Wrap(err, "error while retrieving block from overflow file")
		return
	}

	blockIndex = C.blockIndex
	C.blockIndex = b.Next()
	C.steps++

	return
}
