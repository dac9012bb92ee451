//go:build unit

package heap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gostonefire/linhashfile/hferr"
	"github.com/gostonefire/linhashfile/internal/block"
	"github.com/gostonefire/linhashfile/internal/conf"
	"github.com/gostonefire/linhashfile/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemFile = File[testutil.Item, *block.Block[testutil.Item]]

// openTestFile - Opens a heap file of plain blocks holding two items each
func openTestFile(t *testing.T, name string) *itemFile {
	blockSize := testutil.BlockSizeFor(conf.BlockHeaderLength, 2) + 4
	f, err := Open[testutil.Item](Conf[*block.Block[testutil.Item]]{
		Name:      name,
		BlockSize: blockSize,
		NewBlock: func() *block.Block[testutil.Item] {
			return block.New[testutil.Item](testutil.ItemCodec{}, block.Capacity(blockSize, conf.BlockHeaderLength, testutil.ItemSize))
		},
	})
	require.NoError(t, err, "opens heap file")

	return f
}

func TestOpen(t *testing.T) {
	t.Run("refuses block size too small for one record", func(t *testing.T) {
		// Prepare
		name := filepath.Join(t.TempDir(), "heap")

		// Execute
		_, err := Open[testutil.Item](Conf[*block.Block[testutil.Item]]{
			Name:      name,
			BlockSize: 10,
			NewBlock: func() *block.Block[testutil.Item] {
				return block.New[testutil.Item](testutil.ItemCodec{}, block.Capacity(10, conf.BlockHeaderLength, testutil.ItemSize))
			},
		})

		// Check
		assert.True(t, errors.Is(err, hferr.ConfigError{}), "config error returned")
	})

	t.Run("creates empty files", func(t *testing.T) {
		// Prepare
		name := filepath.Join(t.TempDir(), "heap")

		// Execute
		f := openTestFile(t, name)
		defer func() { _ = f.Close() }()

		// Check
		assert.Equal(t, int32(0), f.BlockCount())
		assert.Equal(t, 2, f.RecordsPerBlock())
		stat, err := os.Stat(name + ".dat")
		assert.NoError(t, err, "data file exists")
		assert.Zero(t, stat.Size())
	})
}

func TestFile_Insert(t *testing.T) {
	t.Run("fills partial blocks before appending", func(t *testing.T) {
		// Prepare
		f := openTestFile(t, filepath.Join(t.TempDir(), "heap"))
		defer func() { _ = f.Close() }()

		// Execute
		indices := make([]int32, 5)
		for i := range indices {
			var err error
			indices[i], err = f.Insert(testutil.NewItem(uint32(i)))
			require.NoError(t, err)
		}

		// Check
		assert.Equal(t, []int32{0, 0, 1, 1, 2}, indices)
		assert.Equal(t, int32(3), f.BlockCount())
		assert.Equal(t, []int32{2}, f.PartialBlocks())
		assert.Empty(t, f.EmptyBlocks())
	})

	t.Run("reuses lowest partial block then lowest empty block", func(t *testing.T) {
		// Prepare
		f := openTestFile(t, filepath.Join(t.TempDir(), "heap"))
		defer func() { _ = f.Close() }()
		for i := uint32(0); i < 6; i++ {
			_, err := f.Insert(testutil.NewItem(i))
			require.NoError(t, err)
		}
		_, err := f.Delete(0, testutil.Item{ID: 0})
		require.NoError(t, err)
		_, err = f.Delete(0, testutil.Item{ID: 1})
		require.NoError(t, err)
		_, err = f.Delete(1, testutil.Item{ID: 2})
		require.NoError(t, err)
		assert.Equal(t, []int32{0}, f.EmptyBlocks())
		assert.Equal(t, []int32{1}, f.PartialBlocks())

		// Execute
		first, err := f.Insert(testutil.NewItem(10))
		require.NoError(t, err)
		second, err := f.Insert(testutil.NewItem(11))
		require.NoError(t, err)

		// Check
		assert.Equal(t, int32(1), first, "partial block first")
		assert.Equal(t, int32(0), second, "then empty block")
		assert.Empty(t, f.EmptyBlocks())
		assert.Equal(t, []int32{0}, f.PartialBlocks())
	})
}

func TestFile_Get(t *testing.T) {
	t.Run("gets by key and by slot", func(t *testing.T) {
		// Prepare
		f := openTestFile(t, filepath.Join(t.TempDir(), "heap"))
		defer func() { _ = f.Close() }()
		idx, err := f.Insert(testutil.NewItem(3))
		require.NoError(t, err)

		// Execute
		byKey, found, err := f.Get(idx, testutil.Item{ID: 3})
		require.NoError(t, err)
		require.True(t, found)
		bySlot, found, err := f.GetAt(idx, 0)
		require.NoError(t, err)
		require.True(t, found)
		_, missing, err := f.Get(idx, testutil.Item{ID: 4})
		require.NoError(t, err)

		// Check
		assert.Equal(t, testutil.NewItem(3), byKey)
		assert.Equal(t, testutil.NewItem(3), bySlot)
		assert.False(t, missing)
		_, _, err = f.Get(7, testutil.Item{ID: 3})
		assert.Error(t, err, "block outside file")
	})
}

func TestFile_Edit(t *testing.T) {
	t.Run("replaces record in place", func(t *testing.T) {
		// Prepare
		f := openTestFile(t, filepath.Join(t.TempDir(), "heap"))
		defer func() { _ = f.Close() }()
		idx, err := f.Insert(testutil.NewItem(3))
		require.NoError(t, err)

		// Execute
		edited, err := f.Edit(idx, testutil.Item{ID: 3, Name: "new"})
		require.NoError(t, err)

		// Check
		assert.True(t, edited)
		r, _, err := f.Get(idx, testutil.Item{ID: 3})
		require.NoError(t, err)
		assert.Equal(t, "new", r.Name)
	})
}

func TestFile_Delete(t *testing.T) {
	t.Run("truncates trailing empty blocks", func(t *testing.T) {
		// Prepare
		name := filepath.Join(t.TempDir(), "heap")
		f := openTestFile(t, name)
		defer func() { _ = f.Close() }()
		for i := uint32(0); i < 6; i++ {
			_, err := f.Insert(testutil.NewItem(i))
			require.NoError(t, err)
		}
		_, err := f.Delete(1, testutil.Item{ID: 2})
		require.NoError(t, err)
		_, err = f.Delete(1, testutil.Item{ID: 3})
		require.NoError(t, err)
		assert.Equal(t, int32(3), f.BlockCount(), "empty block in the middle is kept")

		// Execute
		_, err = f.Delete(2, testutil.Item{ID: 4})
		require.NoError(t, err)
		removed, err := f.Delete(2, testutil.Item{ID: 5})
		require.NoError(t, err)

		// Check
		assert.True(t, removed)
		assert.Equal(t, int32(1), f.BlockCount(), "blocks 1 and 2 truncated")
		assert.Empty(t, f.EmptyBlocks())
		assert.Empty(t, f.PartialBlocks())
		size, err := f.FileSize()
		require.NoError(t, err)
		assert.Equal(t, f.BlockSize(), size)
	})

	t.Run("truncates to zero when all records are deleted", func(t *testing.T) {
		// Prepare
		f := openTestFile(t, filepath.Join(t.TempDir(), "heap"))
		defer func() { _ = f.Close() }()
		for i := uint32(0); i < 3; i++ {
			_, err := f.Insert(testutil.NewItem(i))
			require.NoError(t, err)
		}

		// Execute
		for i := uint32(0); i < 3; i++ {
			removed, err := f.Delete(int32(i/2), testutil.Item{ID: i})
			require.NoError(t, err)
			assert.True(t, removed)
		}

		// Check
		assert.Equal(t, int32(0), f.BlockCount())
		size, err := f.FileSize()
		require.NoError(t, err)
		assert.Zero(t, size)
	})

	t.Run("miss is not an error", func(t *testing.T) {
		f := openTestFile(t, filepath.Join(t.TempDir(), "heap"))
		defer func() { _ = f.Close() }()
		_, err := f.Insert(testutil.NewItem(1))
		require.NoError(t, err)

		removed, err := f.Delete(0, testutil.Item{ID: 2})

		assert.NoError(t, err)
		assert.False(t, removed)
	})
}

func TestFile_Close(t *testing.T) {
	t.Run("persists block count and tracking sets", func(t *testing.T) {
		// Prepare
		name := filepath.Join(t.TempDir(), "heap")
		f := openTestFile(t, name)
		for i := uint32(0); i < 6; i++ {
			_, err := f.Insert(testutil.NewItem(i))
			require.NoError(t, err)
		}
		_, err := f.Delete(0, testutil.Item{ID: 0})
		require.NoError(t, err)
		_, err = f.Delete(0, testutil.Item{ID: 1})
		require.NoError(t, err)
		_, err = f.Delete(1, testutil.Item{ID: 3})
		require.NoError(t, err)

		// Execute
		require.NoError(t, f.Close())
		reopened := openTestFile(t, name)
		defer func() { _ = reopened.Close() }()

		// Check
		assert.Equal(t, int32(3), reopened.BlockCount())
		assert.Equal(t, []int32{0}, reopened.EmptyBlocks())
		assert.Equal(t, []int32{1}, reopened.PartialBlocks())
		r, found, err := reopened.Get(2, testutil.Item{ID: 5})
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, testutil.NewItem(5), r)
	})

	t.Run("missing metadata starts a new file", func(t *testing.T) {
		// Prepare
		name := filepath.Join(t.TempDir(), "heap")
		f := openTestFile(t, name)
		_, err := f.Insert(testutil.NewItem(1))
		require.NoError(t, err)
		require.NoError(t, f.Close())
		require.NoError(t, os.Remove(name+conf.HeapMetaFileSuffix))

		// Execute
		reopened := openTestFile(t, name)
		defer func() { _ = reopened.Close() }()

		// Check
		assert.Equal(t, int32(0), reopened.BlockCount())
		size, err := reopened.FileSize()
		require.NoError(t, err)
		assert.Zero(t, size, "data file truncated")
	})

	t.Run("detects metadata not matching data file", func(t *testing.T) {
		// Prepare
		name := filepath.Join(t.TempDir(), "heap")
		f := openTestFile(t, name)
		_, err := f.Insert(testutil.NewItem(1))
		require.NoError(t, err)
		require.NoError(t, f.Close())
		require.NoError(t, os.Truncate(name+conf.DataFileSuffix, 3))

		// Execute
		blockSize := testutil.BlockSizeFor(conf.BlockHeaderLength, 2) + 4
		_, err = Open[testutil.Item](Conf[*block.Block[testutil.Item]]{
			Name:      name,
			BlockSize: blockSize,
			NewBlock: func() *block.Block[testutil.Item] {
				return block.New[testutil.Item](testutil.ItemCodec{}, 2)
			},
		})

		// Check
		assert.True(t, errors.Is(err, hferr.CorruptMetadata{}))
	})

	t.Run("close twice is a no-op", func(t *testing.T) {
		f := openTestFile(t, filepath.Join(t.TempDir(), "heap"))
		assert.NoError(t, f.Close())
		assert.NoError(t, f.Close())
	})
}

func TestFile_RemoveFiles(t *testing.T) {
	t.Run("removes data and metadata files", func(t *testing.T) {
		// Prepare
		name := filepath.Join(t.TempDir(), "heap")
		f := openTestFile(t, name)
		require.NoError(t, f.Close())

		// Execute
		err := f.RemoveFiles()

		// Check
		assert.NoError(t, err)
		_, err = os.Stat(name + conf.DataFileSuffix)
		assert.True(t, os.IsNotExist(err), "data file removed")
		_, err = os.Stat(name + conf.HeapMetaFileSuffix)
		assert.True(t, os.IsNotExist(err), "metadata file removed")
	})
}

func TestMetaConverters(t *testing.T) {
	t.Run("converts between bytes and metadata", func(t *testing.T) {
		// Prepare
		buf := metaToBytes(7, []int32{1, 4}, []int32{2})

		// Execute
		blockCount, empty, partial, err := bytesToMeta(buf)

		// Check
		require.NoError(t, err)
		assert.Equal(t, 4*(3+3), len(buf))
		assert.Equal(t, int32(7), blockCount)
		assert.Equal(t, []int32{1, 4}, empty)
		assert.Equal(t, []int32{2}, partial)
	})

	t.Run("detects truncated metadata", func(t *testing.T) {
		buf := metaToBytes(7, []int32{1, 4}, []int32{2})
		_, _, _, err := bytesToMeta(buf[:len(buf)-2])
		assert.True(t, errors.Is(err, hferr.CorruptMetadata{}))
	})
}
