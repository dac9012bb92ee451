package heap

import (
	"fmt"
	"io"
)

// Dump - Writes a human readable listing of every block to w
func (H *File[T, B]) Dump(w io.Writer) (err error) {
	_, err = fmt.Fprintf(w, "File: %s\nBlock size: %d\nRecords per block: %d\nEmpty blocks: %v\nPartially empty blocks: %v\nTotal blocks in file: %d\n",
		H.dataFileName, H.blockSize, H.RecordsPerBlock(), H.empty.values(), H.partial.values(), H.blockCount)
	if err != nil {
		return
	}

	var b B
	for i := int32(0); i < H.blockCount; i++ {
		b, err = H.ReadBlock(i)
		if err != nil {
			return
		}
		err = DumpBlock[T](w, i, b)
		if err != nil {
			return
		}
	}

	return
}

// DumpBlock - Writes a listing of one block, including chain pointer and bucket counters where the block has them
func DumpBlock[T any, B interface {
	Capacity() int
	ValidCount() int
	RecordAt(int) (T, bool)
}](w io.Writer, blockIndex int32, b B) (err error) {
	status := "partially empty"
	switch {
	case b.ValidCount() == 0:
		status = "empty"
	case b.ValidCount() == b.Capacity():
		status = "full"
	}

	_, err = fmt.Fprintf(w, "Block #%d - %s (valid=%d, capacity=%d)\n", blockIndex, status, b.ValidCount(), b.Capacity())
	if err != nil {
		return
	}

	for i := 0; i < b.Capacity(); i++ {
		if r, ok := b.RecordAt(i); ok {
			_, err = fmt.Fprintf(w, "  [%d]: %+v\n", i, r)
		} else {
			_, err = fmt.Fprintf(w, "  [%d]: EMPTY\n", i)
		}
		if err != nil {
			return
		}
	}

	if c, ok := any(b).(interface{ Next() int32 }); ok {
		_, err = fmt.Fprintf(w, "  Next block: %d\n", c.Next())
		if err != nil {
			return
		}
	}
	if c, ok := any(b).(interface {
		RecordCount() int
		OverflowBlockCount() int
	}); ok {
		_, err = fmt.Fprintf(w, "  Total records in chain: %d\n  Overflow blocks in chain: %d\n", c.RecordCount(), c.OverflowBlockCount())
	}

	return
}
