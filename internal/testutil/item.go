package testutil

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// NameLength - Fixed number of bytes reserved for Item.Name
const NameLength = 12

// ItemSize - Encoded length of an Item
const ItemSize = 4 + NameLength

// Item - Small record keyed by ID, used by tests that need to predict bucket addresses
type Item struct {
	ID   uint32
	Name string
}

// NewItem - Returns an Item with a name derived from its ID
func NewItem(id uint32) Item {
	return Item{ID: id, Name: fmt.Sprintf("item-%d", id)}
}

// ItemCodec - Codec for Item with the identity function as key hash
type ItemCodec struct{}

// Size - Returns ItemSize
func (ItemCodec) Size() int {
	return ItemSize
}

// Encode - Writes ID big endian followed by the name, cut or zero padded to NameLength
func (ItemCodec) Encode(item Item, buf []byte) error {
	if len(buf) < ItemSize {
		return fmt.Errorf("length of buf (%d) less than item size (%d)", len(buf), ItemSize)
	}
	binary.BigEndian.PutUint32(buf, item.ID)
	name := buf[4:ItemSize]
	clear(name)
	copy(name, item.Name)

	return nil
}

// Decode - Inverse of Encode
func (ItemCodec) Decode(buf []byte) (Item, error) {
	if len(buf) < ItemSize {
		return Item{}, fmt.Errorf("length of buf (%d) less than item size (%d)", len(buf), ItemSize)
	}

	return Item{
		ID:   binary.BigEndian.Uint32(buf),
		Name: strings.TrimRight(string(buf[4:ItemSize]), "\x00"),
	}, nil
}

// KeyEquals - Compares IDs
func (ItemCodec) KeyEquals(a, b Item) bool {
	return a.ID == b.ID
}

// KeyHash - Returns the ID itself
func (ItemCodec) KeyHash(item Item) uint64 {
	return uint64(item.ID)
}

// BlockSizeFor - Returns the smallest block size holding capacity items after a header of headerLength bytes
func BlockSizeFor(headerLength, capacity int) int {
	return headerLength + capacity*ItemSize
}
