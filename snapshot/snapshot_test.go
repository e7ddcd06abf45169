package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/ledger"
	"github.com/mezonai/powchain/pow"
	"github.com/mezonai/powchain/service"
	"github.com/mezonai/powchain/store"
	"github.com/mezonai/powchain/utils"
	"github.com/mezonai/powchain/validator"
)

func newChain(t *testing.T) (*service.BlockService, store.BlockStore) {
	t.Helper()
	bs, err := store.CreateBlockStore(&store.StoreConfig{Type: store.MemoryStoreType})
	require.NoError(t, err)
	t.Cleanup(bs.MustClose)

	clock := utils.FixedClock{At: time.Unix(1_700_000_000, 0)}
	svc := service.NewBlockService(bs, validator.NewValidator(bs, clock, validator.DefaultConfig()),
		ledger.NewDifficultyLedger(bs), pow.NewMiner(1), clock, nil)
	return svc, bs
}

func TestWriteReadRestore(t *testing.T) {
	src, srcStore := newChain(t)
	genesis, err := src.Init(context.Background())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := src.MineNext(context.Background(), "snap", 2)
		require.NoError(t, err)
	}
	side, err := pow.NewMiner(1).Seal(context.Background(), block.New(1, 5, "side", genesis.Hash, 1))
	require.NoError(t, err)
	_, err = src.Submit(side)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.json"), []byte("{}"), 0o644))

	path, err := WriteSnapshot(dir, srcStore)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "old.json"))

	snap, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Meta.BlockCount)
	assert.Equal(t, src.Frontier().Hash, snap.Meta.Frontier)
	assert.Equal(t, uint32(0), snap.Blocks[0].Index)

	dst, _ := newChain(t)
	added, err := Restore(snap, dst.Submit, func(err error) bool { return errors.Is(err, service.ErrDuplicateBlock) })
	require.NoError(t, err)
	assert.Equal(t, 5, added)
	assert.Equal(t, src.Frontier(), dst.Frontier())
	require.NoError(t, RestoreTarget(snap, dst.Frontier()))

	// Replaying onto the same chain adds nothing.
	added, err = Restore(snap, dst.Submit, func(err error) bool { return errors.Is(err, service.ErrDuplicateBlock) })
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestRestore_RevalidatesBlocks(t *testing.T) {
	src, srcStore := newChain(t)
	_, err := src.Init(context.Background())
	require.NoError(t, err)
	_, err = src.MineNext(context.Background(), "honest", 6)
	require.NoError(t, err)

	snap, err := Collect(srcStore)
	require.NoError(t, err)
	snap.Blocks[1].Timestamp++

	dst, _ := newChain(t)
	added, err := Restore(snap, dst.Submit, nil)
	require.Error(t, err)
	assert.Equal(t, 1, added)
	_, isRejection := validator.ReasonOf(err)
	assert.True(t, isRejection)
	assert.Error(t, RestoreTarget(snap, dst.Frontier()))
}

func TestReadSnapshot_CountMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"meta":{"block_count":2},"blocks":[]}`), 0o644))
	_, err := ReadSnapshot(path)
	assert.Error(t, err)
}
