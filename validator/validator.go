package validator

import (
	"time"

	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/interfaces"
	"github.com/mezonai/powchain/ledger"
	"github.com/mezonai/powchain/pow"
	"github.com/mezonai/powchain/utils"
)

// DefaultMaxFutureDrift is how far ahead of the local clock a block
// timestamp may be.
const DefaultMaxFutureDrift = 600 * time.Second

// DataRule checks a block payload. Payload semantics are not defined yet, so
// the default rule accepts everything.
type DataRule func(data string) error

func AcceptAllData(string) error { return nil }

type Config struct {
	MaxFutureDrift time.Duration
	MaxDiffBits    uint32
	DataRule       DataRule
}

func DefaultConfig() Config {
	return Config{
		MaxFutureDrift: DefaultMaxFutureDrift,
		MaxDiffBits:    ledger.MaxDiffBits,
		DataRule:       AcceptAllData,
	}
}

// Validator decides whether a candidate block may extend the chain held by
// a block store. It holds no locks and never writes; callers serialise
// access to the store.
type Validator struct {
	store interfaces.BlockReader
	clock utils.Clock
	cfg   Config
}

func NewValidator(store interfaces.BlockReader, clock utils.Clock, cfg Config) *Validator {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if cfg.MaxFutureDrift <= 0 {
		cfg.MaxFutureDrift = DefaultMaxFutureDrift
	}
	if cfg.MaxDiffBits == 0 || cfg.MaxDiffBits > ledger.MaxDiffBits {
		cfg.MaxDiffBits = ledger.MaxDiffBits
	}
	if cfg.DataRule == nil {
		cfg.DataRule = AcceptAllData
	}
	return &Validator{store: store, clock: clock, cfg: cfg}
}

// Validate returns nil when candidate is a legitimate successor of a stored
// block (or a genesis block), otherwise a *RejectionError for the first rule
// it breaks. Rules run in a fixed order:
//
//  1. predecessor must exist unless the candidate has index 0
//  2. index is exactly predecessor index + 1
//  3. timestamp is after the predecessor's
//  4. timestamp is before now + max future drift
//  5. payload passes the data rule
//  6. diff_bits is within the ledger cap
//  7. hash at the claimed nonce meets diff_bits
//  8. stored hash equals the recomputed hash
func (v *Validator) Validate(candidate *block.Block) error {
	if candidate == nil {
		return reject(MissingPredecessor, "nil block")
	}

	prev := v.store.Block(candidate.Previous)
	if prev == nil && !candidate.IsGenesis() {
		return reject(MissingPredecessor, "previous=%s", candidate.Previous)
	}

	if prev != nil {
		if candidate.Index <= prev.Index || candidate.Index-prev.Index != 1 {
			return reject(InvalidIndex, "index %d after %d", candidate.Index, prev.Index)
		}
		if candidate.Timestamp <= prev.Timestamp {
			return reject(NonIncreasingTimestamp, "timestamp %d after %d", candidate.Timestamp, prev.Timestamp)
		}
	}

	now := utils.UnixSeconds(v.clock.Now())
	limit := now + uint64(v.cfg.MaxFutureDrift/time.Second)
	if candidate.Timestamp >= limit {
		return reject(FutureTimestamp, "timestamp %d, limit %d", candidate.Timestamp, limit)
	}

	if err := v.cfg.DataRule(candidate.Data); err != nil {
		return reject(InvalidData, "%v", err)
	}

	if candidate.DiffBits > v.cfg.MaxDiffBits {
		return reject(DifficultyOutOfRange, "diff_bits %d above %d", candidate.DiffBits, v.cfg.MaxDiffBits)
	}

	if !pow.IsWorkValid(candidate) {
		return reject(InvalidProofOfWork, "nonce %d, diff_bits %d", candidate.Nonce, candidate.DiffBits)
	}

	if computed := candidate.ComputeHash(); computed != candidate.Hash {
		return reject(HashMismatch, "stored %s, computed %s", candidate.Hash, computed)
	}

	return nil
}
