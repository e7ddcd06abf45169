package ledger

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/interfaces"
)

// MaxDiffBits is the hard difficulty cap: 2^63 is the largest power of two a
// uint64 accumulator can hold. Blocks above it are rejected, not clamped.
const MaxDiffBits = 63

var (
	ErrDifficultyTooHigh   = fmt.Errorf("diff_bits above %d", MaxDiffBits)
	ErrAccumulatorOverflow = errors.New("accumulated difficulty overflows uint64")
)

// Work is the weight a single block adds to its chain: 2^diffBits.
func Work(diffBits uint32) (uint64, error) {
	if diffBits > MaxDiffBits {
		return 0, ErrDifficultyTooHigh
	}
	return uint64(1) << diffBits, nil
}

// DifficultyLedger stamps blocks with the accumulated difficulty of the chain
// they end.
type DifficultyLedger struct {
	store interfaces.BlockReader
}

func NewDifficultyLedger(store interfaces.BlockReader) *DifficultyLedger {
	return &DifficultyLedger{store: store}
}

// Stamp returns a copy of b whose AccDiff is the predecessor's AccDiff plus
// 2^b.DiffBits, or just 2^b.DiffBits when b has no stored predecessor.
// Neither b nor the predecessor is modified. Stamp must run before the block
// is persisted.
func (l *DifficultyLedger) Stamp(b *block.Block) (*block.Block, error) {
	if b == nil {
		return nil, fmt.Errorf("block cannot be nil")
	}
	work, err := Work(b.DiffBits)
	if err != nil {
		return nil, err
	}

	acc := uint256.NewInt(work)
	if prev := l.store.Block(b.Previous); prev != nil {
		var overflow bool
		acc, overflow = acc.AddOverflow(acc, uint256.NewInt(prev.AccDiff))
		if overflow || !acc.IsUint64() {
			return nil, ErrAccumulatorOverflow
		}
	}

	stamped := b.Clone()
	stamped.AccDiff = acc.Uint64()
	return stamped, nil
}

// Heavier reports whether a carries strictly more accumulated work than b.
// Equal weight keeps the incumbent.
func Heavier(a, b *block.Block) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.AccDiff > b.AccDiff
}

// PrefixWork returns the accumulated difficulty after each block of a chain
// whose blocks have the given diff_bits, genesis first.
func PrefixWork(bits []uint32) ([]uint64, error) {
	out := make([]uint64, 0, len(bits))
	acc := new(uint256.Int)
	for _, d := range bits {
		work, err := Work(d)
		if err != nil {
			return nil, err
		}
		var overflow bool
		acc, overflow = acc.AddOverflow(acc, uint256.NewInt(work))
		if overflow || !acc.IsUint64() {
			return nil, ErrAccumulatorOverflow
		}
		out = append(out, acc.Uint64())
	}
	return out, nil
}
