package pow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/exception"
	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/monitoring"
)

// ErrWorkExhausted is returned when no nonce in the searched range meets the
// target.
var ErrWorkExhausted = errors.New("nonce space exhausted without meeting target")

// cancelCheckInterval is how many nonces are hashed between context checks.
const cancelCheckInterval = 1 << 12

// Mine returns the smallest nonce that makes b's hash meet b.DiffBits,
// searching the whole uint32 space in order. b is not modified.
func Mine(ctx context.Context, b *block.Block) (uint32, error) {
	return MineRange(ctx, b, FullNonceRange())
}

// MineRange searches the candidates of seq in order.
func MineRange(ctx context.Context, b *block.Block, seq *NonceRange) (uint32, error) {
	if b == nil {
		return 0, fmt.Errorf("block cannot be nil")
	}
	in := b.HashInput()
	var tried uint64
	defer func() { monitoring.AddHashAttempts(tried) }()

	for {
		nonce, ok := seq.Next()
		if !ok {
			return 0, ErrWorkExhausted
		}
		if tried%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		tried++
		if MeetsTarget(in.At(nonce), b.DiffBits) {
			return nonce, nil
		}
	}
}

// Miner searches for nonces, optionally on several goroutines.
type Miner struct {
	workers int
}

func NewMiner(workers int) *Miner {
	if workers < 1 {
		workers = 1
	}
	return &Miner{workers: workers}
}

func (m *Miner) Workers() int { return m.workers }

// Mine finds a nonce for b. With one worker the result is the smallest valid
// nonce; with more, worker i walks i, i+W, i+2W, ... and the first worker to
// succeed wins, so the nonce is valid but not necessarily the smallest.
// Cancelling ctx stops every worker.
func (m *Miner) Mine(ctx context.Context, b *block.Block) (uint32, error) {
	start := time.Now()
	defer func() { monitoring.RecordMiningDuration(time.Since(start)) }()

	if m.workers == 1 {
		return Mine(ctx, b)
	}
	if b == nil {
		return 0, fmt.Errorf("block cannot be nil")
	}

	type result struct {
		nonce uint32
		err   error
	}

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	template := b.Clone()
	results := make(chan result, m.workers)
	for i := 0; i < m.workers; i++ {
		seq := NewNonceRange(uint32(i), ^uint32(0), uint32(m.workers))
		logx.Debug("MINER", fmt.Sprintf("worker %d searching %d candidates index=%d", i, seq.Len(), b.Index))
		exception.SafeGo(fmt.Sprintf("pow-worker-%d", i), func() {
			res := result{err: ErrWorkExhausted}
			defer func() { results <- res }()
			res.nonce, res.err = MineRange(searchCtx, template, seq)
		})
	}

	for i := 0; i < m.workers; i++ {
		res := <-results
		if res.err == nil {
			cancel()
			logx.Debug("MINER", fmt.Sprintf("worker found nonce=%d index=%d diff_bits=%d", res.nonce, b.Index, b.DiffBits))
			return res.nonce, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return 0, ErrWorkExhausted
}

// Seal mines b and returns a copy carrying the nonce and its hash.
func (m *Miner) Seal(ctx context.Context, b *block.Block) (*block.Block, error) {
	nonce, err := m.Mine(ctx, b)
	if err != nil {
		return nil, err
	}
	sealed := b.Clone()
	sealed.Nonce = nonce
	sealed.Hash = sealed.ComputeHash()
	return sealed, nil
}
