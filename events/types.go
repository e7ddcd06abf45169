package events

import (
	"time"

	"github.com/mezonai/powchain/block"
)

// EventType is an enum-like string type for blockchain events
type EventType string

const (
	EventBlockAccepted   EventType = "BlockAccepted"
	EventBlockRejected   EventType = "BlockRejected"
	EventFrontierChanged EventType = "FrontierChanged"
)

// BlockchainEvent represents any event that occurs in the blockchain
type BlockchainEvent interface {
	Type() EventType
	Timestamp() time.Time
	BlockHash() block.Hash
}

// BlockAccepted is published after a block is validated, stamped and stored.
type BlockAccepted struct {
	block     *block.Block
	timestamp time.Time
}

func NewBlockAccepted(b *block.Block) *BlockAccepted {
	return &BlockAccepted{block: b.Clone(), timestamp: time.Now()}
}

func (e *BlockAccepted) Type() EventType       { return EventBlockAccepted }
func (e *BlockAccepted) Timestamp() time.Time  { return e.timestamp }
func (e *BlockAccepted) BlockHash() block.Hash { return e.block.Hash }
func (e *BlockAccepted) Block() *block.Block   { return e.block.Clone() }

// BlockRejected carries the reason text of a failed submission.
type BlockRejected struct {
	hash      block.Hash
	reason    string
	detail    string
	timestamp time.Time
}

func NewBlockRejected(hash block.Hash, reason, detail string) *BlockRejected {
	return &BlockRejected{hash: hash, reason: reason, detail: detail, timestamp: time.Now()}
}

func (e *BlockRejected) Type() EventType       { return EventBlockRejected }
func (e *BlockRejected) Timestamp() time.Time  { return e.timestamp }
func (e *BlockRejected) BlockHash() block.Hash { return e.hash }
func (e *BlockRejected) Reason() string        { return e.reason }
func (e *BlockRejected) Detail() string        { return e.detail }

// FrontierChanged is published when a heavier block becomes the chain head.
type FrontierChanged struct {
	previous  block.Hash
	current   *block.Block
	timestamp time.Time
}

func NewFrontierChanged(previous block.Hash, current *block.Block) *FrontierChanged {
	return &FrontierChanged{previous: previous, current: current.Clone(), timestamp: time.Now()}
}

func (e *FrontierChanged) Type() EventType          { return EventFrontierChanged }
func (e *FrontierChanged) Timestamp() time.Time     { return e.timestamp }
func (e *FrontierChanged) BlockHash() block.Hash    { return e.current.Hash }
func (e *FrontierChanged) PreviousHash() block.Hash { return e.previous }
func (e *FrontierChanged) AccDiff() uint64          { return e.current.AccDiff }
