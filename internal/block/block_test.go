//go:build unit

package block

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gostonefire/linhashfile/hferr"
	"github.com/gostonefire/linhashfile/internal/conf"
	"github.com/gostonefire/linhashfile/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codec = testutil.ItemCodec{}

func TestCapacity(t *testing.T) {
	t.Run("computes records per block after header", func(t *testing.T) {
		assert.Equal(t, 31, Capacity(512, conf.BucketHeaderLength, testutil.ItemSize))
		assert.Equal(t, 15, Capacity(256, conf.ChainedHeaderLength, testutil.ItemSize))
		assert.Equal(t, 0, Capacity(16, conf.BucketHeaderLength, testutil.ItemSize))
		assert.Equal(t, 0, Capacity(8, conf.BucketHeaderLength, testutil.ItemSize))
	})
}

func TestBlock_AddRecord(t *testing.T) {
	t.Run("adds until full", func(t *testing.T) {
		// Prepare
		b := New[testutil.Item](codec, 3)

		// Execute and Check
		assert.True(t, b.IsEmpty())
		assert.True(t, b.AddRecord(testutil.NewItem(1)))
		assert.True(t, b.IsPartial())
		assert.True(t, b.AddRecord(testutil.NewItem(2)))
		assert.True(t, b.AddRecord(testutil.NewItem(3)))
		assert.True(t, b.IsFull())
		assert.False(t, b.AddRecord(testutil.NewItem(4)), "full block refuses record")
		assert.Equal(t, 3, b.ValidCount())
	})
}

func TestBlock_RemoveRecord(t *testing.T) {
	t.Run("swaps last record into removed slot", func(t *testing.T) {
		// Prepare
		b := New[testutil.Item](codec, 4)
		for i := uint32(1); i <= 4; i++ {
			b.AddRecord(testutil.NewItem(i))
		}

		// Execute
		removed := b.RemoveRecord(testutil.Item{ID: 2})

		// Check
		assert.True(t, removed)
		assert.Equal(t, 3, b.ValidCount())
		r, ok := b.RecordAt(1)
		assert.True(t, ok)
		assert.Equal(t, uint32(4), r.ID, "last record moved to freed slot")
		_, ok = b.RecordAt(3)
		assert.False(t, ok, "slot beyond valid count is not readable")
		assert.False(t, b.RemoveRecord(testutil.Item{ID: 2}), "second removal misses")
	})
}

func TestBlock_EditRecord(t *testing.T) {
	t.Run("replaces record in place", func(t *testing.T) {
		// Prepare
		b := New[testutil.Item](codec, 2)
		b.AddRecord(testutil.NewItem(7))

		// Execute
		edited := b.EditRecord(testutil.Item{ID: 7, Name: "changed"})

		// Check
		assert.True(t, edited)
		r, ok := b.Find(testutil.Item{ID: 7})
		assert.True(t, ok)
		assert.Equal(t, "changed", r.Name)
		assert.False(t, b.EditRecord(testutil.Item{ID: 8}), "unknown key is not edited")
	})
}

func TestBlock_EncodeDecode(t *testing.T) {
	t.Run("round trips valid count and records in slot order", func(t *testing.T) {
		// Prepare
		b := New[testutil.Item](codec, 3)
		b.AddRecord(testutil.NewItem(10))
		b.AddRecord(testutil.NewItem(20))
		buf := make([]byte, b.Size())

		// Execute
		err := b.Encode(buf)
		require.NoError(t, err)
		d := New[testutil.Item](codec, 3)
		err = d.Decode(buf)

		// Check
		require.NoError(t, err)
		assert.Equal(t, uint32(2), binary.BigEndian.Uint32(buf), "valid count leads the block")
		assert.Equal(t, b.Records(), d.Records())
		assert.Equal(t, conf.BlockHeaderLength+3*testutil.ItemSize, len(buf), "unused slots keep their space")
	})

	t.Run("refuses valid count above capacity", func(t *testing.T) {
		// Prepare
		buf := make([]byte, conf.BlockHeaderLength+2*testutil.ItemSize)
		binary.BigEndian.PutUint32(buf, 3)

		// Execute
		err := New[testutil.Item](codec, 2).Decode(buf)

		// Check
		assert.Error(t, err)
	})

	t.Run("refuses short buffer", func(t *testing.T) {
		b := New[testutil.Item](codec, 2)
		assert.Error(t, b.Encode(make([]byte, 10)))
		assert.Error(t, b.Decode(make([]byte, 10)))
	})
}

func TestChained_EncodeDecode(t *testing.T) {
	t.Run("round trips next pointer", func(t *testing.T) {
		// Prepare
		c := NewChained[testutil.Item](codec, 2)
		c.AddRecord(testutil.NewItem(5))
		c.SetNext(42)
		buf := make([]byte, c.Size())

		// Execute
		require.NoError(t, c.Encode(buf))
		d := NewChained[testutil.Item](codec, 2)
		err := d.Decode(buf)

		// Check
		require.NoError(t, err)
		assert.True(t, d.HasNext())
		assert.Equal(t, int32(42), d.Next())
		assert.Equal(t, c.Records(), d.Records())
	})

	t.Run("new block has no next", func(t *testing.T) {
		c := NewChained[testutil.Item](codec, 2)
		buf := make([]byte, c.Size())
		require.NoError(t, c.Encode(buf))
		assert.Equal(t, int32(-1), int32(binary.BigEndian.Uint32(buf[conf.NextBlockOffset:])))
	})

	t.Run("clear resets next pointer", func(t *testing.T) {
		// Prepare
		c := NewChained[testutil.Item](codec, 2)
		c.AddRecord(testutil.NewItem(1))
		c.SetNext(3)

		// Execute
		r := c.Clear()

		// Check
		assert.Len(t, r, 1)
		assert.True(t, c.IsEmpty())
		assert.False(t, c.HasNext())
	})
}

func TestBucket_EncodeDecode(t *testing.T) {
	t.Run("round trips counters", func(t *testing.T) {
		// Prepare
		b := NewBucket[testutil.Item](codec, 2)
		b.AddRecord(testutil.NewItem(1))
		b.AddRecord(testutil.NewItem(3))
		b.SetNext(0)
		b.SetCounters(5, 2)
		buf := make([]byte, b.Size())

		// Execute
		require.NoError(t, b.Encode(buf))
		d := NewBucket[testutil.Item](codec, 2)
		err := d.Decode(buf)

		// Check
		require.NoError(t, err)
		assert.Equal(t, 5, d.RecordCount())
		assert.Equal(t, 2, d.OverflowBlockCount())
		assert.Equal(t, int32(0), d.Next())
		assert.Equal(t, b.Records(), d.Records())
		assert.Equal(t, conf.BucketHeaderLength+2*testutil.ItemSize, b.Size())
	})

	t.Run("detects counters disagreeing with chain", func(t *testing.T) {
		// Prepare
		b := NewBucket[testutil.Item](codec, 2)
		b.SetCounters(0, 1)
		buf := make([]byte, b.Size())
		require.NoError(t, b.Encode(buf))

		// Execute
		err := NewBucket[testutil.Item](codec, 2).Decode(buf)

		// Check
		assert.Error(t, err, "overflow count without next block")
	})

	t.Run("refuses to count below zero records", func(t *testing.T) {
		// Prepare
		b := NewBucket[testutil.Item](codec, 2)
		b.IncrementRecordCount()

		// Execute
		err1 := b.DecrementRecordCount()
		err2 := b.DecrementRecordCount()

		// Check
		assert.NoError(t, err1)
		assert.True(t, errors.Is(err2, hferr.InvariantViolation{}), "record count already zero")
		assert.Zero(t, b.RecordCount())
	})

	t.Run("clear resets counters", func(t *testing.T) {
		b := NewBucket[testutil.Item](codec, 2)
		b.AddRecord(testutil.NewItem(1))
		b.SetNext(1)
		b.SetCounters(4, 1)
		r := b.Clear()
		assert.Len(t, r, 1)
		assert.Zero(t, b.RecordCount())
		assert.Zero(t, b.OverflowBlockCount())
		assert.False(t, b.HasNext())
	})
}
