package heap

import (
	"encoding/binary"

	"github.com/gostonefire/linhashfile/hferr"
)

// metaToBytes - Converts heap metadata to block_count, empty_count, empty indices, partial_count, partial indices,
// each a big endian int32
func metaToBytes(blockCount int32, empty, partial []int32) (buf []byte) {
	buf = make([]byte, 0, 4*(3+len(empty)+len(partial)))

	buf = binary.BigEndian.AppendUint32(buf, uint32(blockCount))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(empty)))
	for _, v := range empty {
		buf = binary.BigEndian.AppendUint32(buf, uint32(v))
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(partial)))
	for _, v := range partial {
		buf = binary.BigEndian.AppendUint32(buf, uint32(v))
	}

	return
}

// bytesToMeta - Inverse of metaToBytes
func bytesToMeta(buf []byte) (blockCount int32, empty, partial []int32, err error) {
	pos := 0
	next := func() (v int32, ok bool) {
		if pos+4 > len(buf) {
			return
		}
		v = int32(binary.BigEndian.Uint32(buf[pos:]))
		pos += 4
		return v, true
	}
	list := func() (l []int32, ok bool) {
		var n, v int32
		if n, ok = next(); !ok || n < 0 || int(n)*4 > len(buf)-pos {
			return nil, false
		}
		l = make([]int32, 0, n)
		for i := int32(0); i < n; i++ {
			if v, ok = next(); !ok {
				return
			}
			l = append(l, v)
		}
		return l, true
	}

	var ok bool
	if blockCount, ok = next(); !ok || blockCount < 0 {
		err = hferr.NewCorruptMetadata("heap metadata has no valid block count")
		return
	}
	if empty, ok = list(); !ok {
		err = hferr.NewCorruptMetadata("heap metadata has a truncated empty block list")
		return
	}
	if partial, ok = list(); !ok {
		err = hferr.NewCorruptMetadata("heap metadata has a truncated partial block list")
		return
	}

	return
}
