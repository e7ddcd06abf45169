package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/events"
	"github.com/mezonai/powchain/ledger"
	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/monitoring"
	"github.com/mezonai/powchain/pow"
	"github.com/mezonai/powchain/store"
	"github.com/mezonai/powchain/utils"
	"github.com/mezonai/powchain/validator"
)

var (
	ErrDuplicateBlock  = errors.New("block already stored")
	ErrNoGenesis       = errors.New("chain has no genesis block")
	ErrAccDiffMismatch = errors.New("stored accumulated difficulty does not match chain")
	ErrBrokenChain     = errors.New("frontier chain does not reach genesis")
)

// BlockService owns the node's chain: it runs candidates through the
// validator, stamps them, stores them and keeps the frontier on the heaviest
// chain. Submissions are serialised; reads go straight to the store.
type BlockService struct {
	store     store.BlockStore
	validator *validator.Validator
	ledger    *ledger.DifficultyLedger
	miner     *pow.Miner
	clock     utils.Clock
	bus       *events.EventBus

	mu sync.Mutex
}

func NewBlockService(bs store.BlockStore, val *validator.Validator, ld *ledger.DifficultyLedger, miner *pow.Miner, clock utils.Clock, bus *events.EventBus) *BlockService {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if miner == nil {
		miner = pow.NewMiner(1)
	}
	reasons := validator.Reasons()
	labels := make([]string, 0, len(reasons))
	for _, r := range reasons {
		labels = append(labels, r.String())
	}
	monitoring.InitRejectedBlockReasons(labels)
	return &BlockService{
		store:     bs,
		validator: val,
		ledger:    ld,
		miner:     miner,
		clock:     clock,
		bus:       bus,
	}
}

// Init mines and stores the genesis block when the store is empty. On an
// existing chain it returns the current frontier.
func (s *BlockService) Init(ctx context.Context) (*block.Block, error) {
	if frontier := s.store.Frontier(); frontier != nil {
		logx.Info("BLOCKSERVICE", fmt.Sprintf("Chain already initialised frontier=%s height=%d", utils.ShortenLog(string(frontier.Hash)), frontier.Index))
		return frontier, nil
	}

	genesis, err := s.miner.Seal(ctx, block.GenesisTemplate())
	if err != nil {
		return nil, fmt.Errorf("mine genesis: %w", err)
	}
	accepted, err := s.Submit(genesis)
	if err != nil {
		return nil, fmt.Errorf("submit genesis: %w", err)
	}
	logx.Info("BLOCKSERVICE", fmt.Sprintf("Genesis mined nonce=%d hash=%s", accepted.Nonce, accepted.Hash))
	return accepted, nil
}

// Submit validates b, stamps its accumulated difficulty, stores it and moves
// the frontier when b ends a strictly heavier chain. The stored block is
// returned. Rejections are *validator.RejectionError.
func (s *BlockService) Submit(b *block.Block) (*block.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validator.Validate(b); err != nil {
		s.recordRejection(b, err)
		return nil, err
	}
	if s.store.HasBlock(b.Hash) {
		return nil, ErrDuplicateBlock
	}

	stamped, err := s.ledger.Stamp(b)
	if err != nil {
		return nil, fmt.Errorf("stamp block %d: %w", b.Index, err)
	}
	if err := s.store.AddBlock(stamped); err != nil {
		return nil, fmt.Errorf("store block %d: %w", b.Index, err)
	}

	monitoring.IncreaseAcceptedBlockCount()
	if prev := s.store.Block(stamped.Previous); prev != nil {
		monitoring.RecordBlockTime(stamped.Timestamp - prev.Timestamp)
	}
	s.bus.Publish(events.NewBlockAccepted(stamped))

	current := s.store.Frontier()
	if ledger.Heavier(stamped, current) {
		if err := s.store.SetFrontier(stamped.Hash); err != nil {
			return nil, fmt.Errorf("move frontier: %w", err)
		}
		var previous block.Hash
		if current != nil {
			previous = current.Hash
		}
		monitoring.SetBlockHeight(stamped.Index)
		monitoring.SetAccumulatedDifficulty(stamped.AccDiff)
		s.bus.Publish(events.NewFrontierChanged(previous, stamped))
		logx.Info("BLOCKSERVICE", fmt.Sprintf("Frontier moved height=%d acc_diff=%d hash=%s", stamped.Index, stamped.AccDiff, utils.ShortenLog(string(stamped.Hash))))
	} else {
		logx.Info("BLOCKSERVICE", fmt.Sprintf("Stored side block height=%d acc_diff=%d hash=%s", stamped.Index, stamped.AccDiff, utils.ShortenLog(string(stamped.Hash))))
	}

	return stamped.Clone(), nil
}

func (s *BlockService) recordRejection(b *block.Block, err error) {
	reason, ok := validator.ReasonOf(err)
	if !ok {
		return
	}
	detail := ""
	var rej *validator.RejectionError
	if errors.As(err, &rej) {
		detail = rej.Detail
	}
	var hash block.Hash
	if b != nil {
		hash = b.Hash
	}
	monitoring.RecordRejectedBlock(reason.String())
	s.bus.Publish(events.NewBlockRejected(hash, reason.String(), detail))
	logx.Warn("BLOCKSERVICE", fmt.Sprintf("Rejected block hash=%s reason=%s detail=%s", utils.ShortenLog(string(hash)), reason, detail))
}

// MineNext builds a block on top of the frontier, mines it and submits it.
// The timestamp is the current time, or one second after the frontier when
// the clock has not moved past it.
func (s *BlockService) MineNext(ctx context.Context, data string, diffBits uint32) (*block.Block, error) {
	frontier := s.store.Frontier()
	if frontier == nil {
		return nil, ErrNoGenesis
	}

	timestamp := utils.UnixSeconds(s.clock.Now())
	if timestamp <= frontier.Timestamp {
		timestamp = frontier.Timestamp + 1
	}
	candidate := block.New(frontier.Index+1, timestamp, data, frontier.Hash, diffBits)

	sealed, err := s.miner.Seal(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("mine block %d: %w", candidate.Index, err)
	}
	return s.Submit(sealed)
}

// MineLoop keeps mining blocks until ctx is done, pausing interval between
// blocks. A rejected block is logged and mining continues.
func (s *BlockService) MineLoop(ctx context.Context, data string, diffBits uint32, interval time.Duration) error {
	for {
		b, err := s.MineNext(ctx, data, diffBits)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			if _, rejected := validator.ReasonOf(err); !rejected {
				return err
			}
		default:
			logx.Debug("BLOCKSERVICE", fmt.Sprintf("Mined block height=%d nonce=%d", b.Index, b.Nonce))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// Frontier is the head of the heaviest known chain, nil before Init.
func (s *BlockService) Frontier() *block.Block {
	return s.store.Frontier()
}

func (s *BlockService) Block(hash block.Hash) *block.Block {
	return s.store.Block(hash)
}

// Recent walks back from the frontier and returns up to limit blocks,
// newest first.
// A limit below one yields an empty slice.
func (s *BlockService) Recent(limit int) []*block.Block {
	if limit < 1 {
		return []*block.Block{}
	}
	out := make([]*block.Block, 0, limit)
	cur := s.store.Frontier()
	for cur != nil && len(out) < limit {
		out = append(out, cur)
		if cur.Previous.IsSentinel() {
			break
		}
		cur = s.store.Block(cur.Previous)
	}
	return out
}

// Verify re-checks the whole frontier chain from genesis: every block must
// pass validation against its stored predecessor and carry the accumulated
// difficulty the ledger derives for it. It returns the chain length.
func (s *BlockService) Verify() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var chain []*block.Block
	for cur := s.store.Frontier(); cur != nil; cur = s.store.Block(cur.Previous) {
		chain = append(chain, cur)
		if cur.Previous.IsSentinel() {
			break
		}
	}
	if len(chain) == 0 {
		return 0, ErrNoGenesis
	}
	if !chain[len(chain)-1].IsGenesis() {
		return 0, ErrBrokenChain
	}

	// genesis first from here on
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	bits := make([]uint32, len(chain))
	for i, b := range chain {
		if err := s.validator.Validate(b); err != nil {
			return 0, fmt.Errorf("block %d (%s): %w", b.Index, utils.ShortenLog(string(b.Hash)), err)
		}
		bits[i] = b.DiffBits
	}
	want, err := ledger.PrefixWork(bits)
	if err != nil {
		return 0, fmt.Errorf("derive accumulated difficulty: %w", err)
	}
	for i, b := range chain {
		if want[i] != b.AccDiff {
			return 0, fmt.Errorf("block %d: stored %d, derived %d: %w", b.Index, b.AccDiff, want[i], ErrAccDiffMismatch)
		}
	}

	frontier := chain[len(chain)-1]
	logx.Info("BLOCKSERVICE", fmt.Sprintf("Verified %d blocks up to %s", len(chain), utils.ShortenLog(string(frontier.Hash))))
	return len(chain), nil
}
