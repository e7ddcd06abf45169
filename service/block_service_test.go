package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/db"
	"github.com/mezonai/powchain/events"
	"github.com/mezonai/powchain/ledger"
	"github.com/mezonai/powchain/pow"
	"github.com/mezonai/powchain/store"
	"github.com/mezonai/powchain/utils"
	"github.com/mezonai/powchain/validator"
)

var testNow = time.Unix(1_700_000_000, 0)

type testNode struct {
	svc      *BlockService
	store    store.BlockStore
	provider db.DatabaseProvider
	bus      *events.EventBus
}

func newTestNode(t *testing.T) *testNode {
	t.Helper()
	provider, err := db.NewMemLevelDBProvider()
	require.NoError(t, err)
	bs, err := store.NewGenericBlockStore(provider)
	require.NoError(t, err)
	t.Cleanup(bs.MustClose)

	clock := utils.FixedClock{At: testNow}
	bus := events.NewEventBus()
	svc := NewBlockService(
		bs,
		validator.NewValidator(bs, clock, validator.DefaultConfig()),
		ledger.NewDifficultyLedger(bs),
		pow.NewMiner(1),
		clock,
		bus,
	)
	return &testNode{svc: svc, store: bs, provider: provider, bus: bus}
}

func (n *testNode) init(t *testing.T) *block.Block {
	t.Helper()
	genesis, err := n.svc.Init(context.Background())
	require.NoError(t, err)
	return genesis
}

func seal(t *testing.T, b *block.Block) *block.Block {
	t.Helper()
	sealed, err := pow.NewMiner(1).Seal(context.Background(), b)
	require.NoError(t, err)
	return sealed
}

func drain(ch <-chan events.BlockchainEvent) []events.EventType {
	var out []events.EventType
	for {
		select {
		case e := <-ch:
			out = append(out, e.Type())
		default:
			return out
		}
	}
}

func TestInit_MinesGenesisOnce(t *testing.T) {
	node := newTestNode(t)
	assert.Nil(t, node.svc.Frontier())

	genesis := node.init(t)
	assert.True(t, genesis.IsGenesis())
	assert.Equal(t, block.SentinelHash, genesis.Previous)
	assert.Equal(t, uint64(2), genesis.AccDiff)
	assert.Equal(t, genesis.Hash, node.svc.Frontier().Hash)

	again := node.init(t)
	assert.Equal(t, genesis.Hash, again.Hash)
	assert.Equal(t, uint64(1), node.store.Count())
}

func TestMineNext_ExtendsFrontier(t *testing.T) {
	node := newTestNode(t)
	genesis := node.init(t)
	ctx := context.Background()

	first, err := node.svc.MineNext(ctx, "first", 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), first.Index)
	assert.Equal(t, genesis.Hash, first.Previous)
	assert.Equal(t, uint64(testNow.Unix()), first.Timestamp)
	assert.Equal(t, uint64(2+16), first.AccDiff)

	// The clock is frozen, so the next block must step one second ahead.
	second, err := node.svc.MineNext(ctx, "second", 4)
	require.NoError(t, err)
	assert.Equal(t, first.Timestamp+1, second.Timestamp)
	assert.Equal(t, uint64(2+16+16), second.AccDiff)
	assert.Equal(t, second.Hash, node.svc.Frontier().Hash)
}

func TestMineNext_WithoutGenesis(t *testing.T) {
	node := newTestNode(t)
	_, err := node.svc.MineNext(context.Background(), "x", 1)
	assert.ErrorIs(t, err, ErrNoGenesis)
}

func TestMineNext_Cancelled(t *testing.T) {
	node := newTestNode(t)
	node.init(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := node.svc.MineNext(ctx, "x", 40)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubmit_RejectionLeavesChainUntouched(t *testing.T) {
	node := newTestNode(t)
	genesis := node.init(t)
	_, ch := node.bus.Subscribe()

	bad := seal(t, block.New(2, 100, "skip", genesis.Hash, 1))
	_, err := node.svc.Submit(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, validator.ErrInvalidIndex)

	assert.Equal(t, genesis.Hash, node.svc.Frontier().Hash)
	assert.Equal(t, uint64(1), node.store.Count())
	assert.Equal(t, []events.EventType{events.EventBlockRejected}, drain(ch))
}

func TestSubmit_Duplicate(t *testing.T) {
	node := newTestNode(t)
	genesis := node.init(t)

	b := seal(t, block.New(1, 100, "once", genesis.Hash, 2))
	_, err := node.svc.Submit(b)
	require.NoError(t, err)

	_, err = node.svc.Submit(b)
	assert.ErrorIs(t, err, ErrDuplicateBlock)
}

func TestSubmit_StampsBeforeStoring(t *testing.T) {
	node := newTestNode(t)
	genesis := node.init(t)

	b := seal(t, block.New(1, 100, "stamp me", genesis.Hash, 3))
	b.AccDiff = 999
	accepted, err := node.svc.Submit(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(2+8), accepted.AccDiff)
	assert.Equal(t, uint64(999), b.AccDiff, "caller's block is not modified")

	stored := node.svc.Block(b.Hash)
	require.NotNil(t, stored)
	assert.Equal(t, uint64(2+8), stored.AccDiff)
}

func TestSubmit_HeaviestChainWins(t *testing.T) {
	node := newTestNode(t)
	genesis := node.init(t)
	_, ch := node.bus.Subscribe()

	light := seal(t, block.New(1, 100, "light", genesis.Hash, 2))
	_, err := node.svc.Submit(light)
	require.NoError(t, err)
	assert.Equal(t, light.Hash, node.svc.Frontier().Hash)
	assert.Equal(t, []events.EventType{events.EventBlockAccepted, events.EventFrontierChanged}, drain(ch))

	heavy := seal(t, block.New(1, 101, "heavy", genesis.Hash, 5))
	_, err = node.svc.Submit(heavy)
	require.NoError(t, err)
	assert.Equal(t, heavy.Hash, node.svc.Frontier().Hash)
	drain(ch)

	// Equal weight keeps the incumbent.
	tie := seal(t, block.New(1, 102, "tie", genesis.Hash, 5))
	_, err = node.svc.Submit(tie)
	require.NoError(t, err)
	assert.Equal(t, heavy.Hash, node.svc.Frontier().Hash)
	assert.Equal(t, []events.EventType{events.EventBlockAccepted}, drain(ch))

	// A longer side chain overtakes once its work exceeds the frontier's.
	onLight := seal(t, block.New(2, 103, "catch up", light.Hash, 5))
	_, err = node.svc.Submit(onLight)
	require.NoError(t, err)
	assert.Equal(t, onLight.Hash, node.svc.Frontier().Hash)
	assert.Equal(t, uint64(2+4+32), node.svc.Frontier().AccDiff)
	assert.Equal(t, uint64(5), node.store.Count())
}

func TestRecent_WalksBackFromFrontier(t *testing.T) {
	node := newTestNode(t)
	genesis := node.init(t)
	for i := 0; i < 4; i++ {
		_, err := node.svc.MineNext(context.Background(), "b", 1)
		require.NoError(t, err)
	}

	recent := node.svc.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, uint32(4), recent[0].Index)
	assert.Equal(t, uint32(2), recent[2].Index)

	all := node.svc.Recent(100)
	require.Len(t, all, 5)
	assert.Equal(t, genesis.Hash, all[4].Hash)

	assert.Empty(t, newTestNode(t).svc.Recent(10))
}

func TestRecent_NonPositiveLimit(t *testing.T) {
	node := newTestNode(t)
	node.init(t)

	for _, limit := range []int{0, -1, -100} {
		require.NotPanics(t, func() { node.svc.Recent(limit) }, "limit %d", limit)
		got := node.svc.Recent(limit)
		assert.NotNil(t, got, "limit %d", limit)
		assert.Empty(t, got, "limit %d", limit)
	}
}

func TestVerify(t *testing.T) {
	node := newTestNode(t)
	node.init(t)
	var mined []*block.Block
	for i := 0; i < 3; i++ {
		b, err := node.svc.MineNext(context.Background(), "v", 3)
		require.NoError(t, err)
		mined = append(mined, b)
	}

	n, err := node.svc.Verify()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// Rewrite a stored block behind the store's back.
	tampered := mined[1].Clone()
	tampered.AccDiff++
	raw, err := block.Encode(tampered)
	require.NoError(t, err)
	require.NoError(t, node.provider.Put([]byte(store.PrefixBlock+string(tampered.Hash)), raw))

	_, err = node.svc.Verify()
	assert.ErrorIs(t, err, ErrAccDiffMismatch)
}

func TestVerify_MixedDifficulty(t *testing.T) {
	node := newTestNode(t)
	node.init(t)
	var want uint64 = 2
	for _, d := range []uint32{0, 5, 2, 7} {
		b, err := node.svc.MineNext(context.Background(), "mixed", d)
		require.NoError(t, err)
		want += uint64(1) << d
		assert.Equal(t, want, b.AccDiff)
	}

	n, err := node.svc.Verify()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestVerify_DetectsForgedData(t *testing.T) {
	node := newTestNode(t)
	node.init(t)
	b, err := node.svc.MineNext(context.Background(), "honest", 8)
	require.NoError(t, err)

	forged := b.Clone()
	forged.Data = "forged"
	raw, err := block.Encode(forged)
	require.NoError(t, err)
	require.NoError(t, node.provider.Put([]byte(store.PrefixBlock+string(b.Hash)), raw))

	_, err = node.svc.Verify()
	reason, ok := validator.ReasonOf(err)
	require.True(t, ok, "got %v", err)
	assert.Contains(t, []validator.Reason{validator.InvalidProofOfWork, validator.HashMismatch}, reason)
}

func TestVerify_EmptyChain(t *testing.T) {
	_, err := newTestNode(t).svc.Verify()
	assert.True(t, errors.Is(err, ErrNoGenesis))
}

func TestMineLoop_StopsOnCancel(t *testing.T) {
	node := newTestNode(t)
	node.init(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, node.svc.MineLoop(ctx, "loop", 1, 10*time.Millisecond))
	assert.Greater(t, node.store.Count(), uint64(1))
}

func TestHealthService_Check(t *testing.T) {
	node := newTestNode(t)
	hs := NewHealthService(node.store)

	status, err := hs.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Serving)

	genesis := node.init(t)
	status, err = hs.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Serving)
	assert.Equal(t, string(genesis.Hash), status.FrontierHash)
	assert.Equal(t, uint64(1), status.BlockCount)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = hs.Check(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
