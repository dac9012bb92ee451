package record

import (
	"fmt"

	"github.com/gostonefire/linhashfile/hashfunc"
	"github.com/gostonefire/linhashfile/internal/utils"
)

// KV - A record made of a fixed length key and a fixed length value
type KV struct {
	Key   []byte
	Value []byte
}

// KVCodec - Codec for KV records. The encoded form is the key bytes directly followed by the value bytes.
type KVCodec struct {
	keyLength   int
	valueLength int
	hash        hashfunc.Func
}

// NewKVCodec - Returns a KVCodec for the given key and value lengths.
//   - keyLength is the length of the key part of a record
//   - valueLength is the length of the value part of a record
//   - hash is an optional key hash function, hashfunc.Bytes is used if nil
func NewKVCodec(keyLength, valueLength int, hash hashfunc.Func) (codec *KVCodec, err error) {
	if keyLength <= 0 {
		err = fmt.Errorf("key length must be a positive value higher than 0 (zero)")
		return
	}
	if valueLength < 0 {
		err = fmt.Errorf("value length can not be negative")
		return
	}
	if hash == nil {
		hash = hashfunc.Bytes
	}

	codec = &KVCodec{keyLength: keyLength, valueLength: valueLength, hash: hash}

	return
}

// KeyLength - Returns the fixed key length
func (K *KVCodec) KeyLength() int {
	return K.keyLength
}

// ValueLength - Returns the fixed value length
func (K *KVCodec) ValueLength() int {
	return K.valueLength
}

// Size - Returns key length plus value length
func (K *KVCodec) Size() int {
	return K.keyLength + K.valueLength
}

// Encode - Writes key and value into buf
func (K *KVCodec) Encode(record KV, buf []byte) (err error) {
	if len(record.Key) != K.keyLength {
		err = fmt.Errorf("wrong length of key, should be %d", K.keyLength)
		return
	}
	if len(record.Value) != K.valueLength {
		err = fmt.Errorf("wrong length of value, should be %d", K.valueLength)
		return
	}
	if len(buf) < K.Size() {
		err = fmt.Errorf("length of buf (%d) less than record size (%d)", len(buf), K.Size())
		return
	}

	copy(buf, record.Key)
	copy(buf[K.keyLength:], record.Value)

	return
}

// Decode - Reads key and value from buf, the returned record does not share memory with buf
func (K *KVCodec) Decode(buf []byte) (record KV, err error) {
	if len(buf) < K.Size() {
		err = fmt.Errorf("length of buf (%d) less than record size (%d)", len(buf), K.Size())
		return
	}

	record.Key = make([]byte, K.keyLength)
	record.Value = make([]byte, K.valueLength)
	copy(record.Key, buf[:K.keyLength])
	copy(record.Value, buf[K.keyLength:K.Size()])

	return
}

// KeyEquals - Compares keys byte by byte
func (K *KVCodec) KeyEquals(a, b KV) bool {
	return utils.IsEqual(a.Key, b.Key)
}

// KeyHash - Hashes the key with the configured hash function
func (K *KVCodec) KeyHash(record KV) uint64 {
	return K.hash(record.Key)
}
