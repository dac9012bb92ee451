package linhash

import (
	"encoding/binary"

	"github.com/gostonefire/linhashfile/hferr"
)

// hashMetaLength - hash_power, split_pointer and record_count, each a big endian int32
const hashMetaLength = 12

// metaToBytes - Converts hash metadata to its file format
func metaToBytes(hashPower, splitPointer, recordCount int) (buf []byte) {
	buf = make([]byte, 0, hashMetaLength)
	buf = binary.BigEndian.AppendUint32(buf, uint32(int32(hashPower)))
	buf = binary.BigEndian.AppendUint32(buf, uint32(int32(splitPointer)))
	buf = binary.BigEndian.AppendUint32(buf, uint32(int32(recordCount)))

	return
}

// bytesToMeta - Inverse of metaToBytes
func bytesToMeta(buf []byte) (hashPower, splitPointer, recordCount int, err error) {
	if len(buf) != hashMetaLength {
		err = hferr.NewCorruptMetadata("hash metadata has length %d, expected %d", len(buf), hashMetaLength)
		return
	}

	hashPower = int(int32(binary.BigEndian.Uint32(buf)))
	splitPointer = int(int32(binary.BigEndian.Uint32(buf[4:])))
	recordCount = int(int32(binary.BigEndian.Uint32(buf[8:])))
	if recordCount < 0 {
		err = hferr.NewCorruptMetadata("hash metadata has negative record count %d", recordCount)
	}

	return
}
