package block

import (
	"fmt"
)

// Block is a single link of the chain. Once mined, stamped and stored it is
// never modified.
type Block struct {
	Index     uint32 `json:"index"`
	Timestamp uint64 `json:"timestamp"` // seconds since 1970-01-01 00:00 UTC
	Data      string `json:"data"`
	Previous  Hash   `json:"previous"`
	Nonce     uint32 `json:"nonce"`
	Hash      Hash   `json:"hash"`
	DiffBits  uint32 `json:"diff_bits"` // required leading zero bits of Hash
	AccDiff   uint64 `json:"acc_diff"`  // sum of 2^diff_bits from genesis up to this block
}

// New builds an unmined candidate; Nonce, Hash and AccDiff are filled later
// by the miner and the difficulty ledger.
func New(index uint32, timestamp uint64, data string, previous Hash, diffBits uint32) *Block {
	return &Block{
		Index:     index,
		Timestamp: timestamp,
		Data:      data,
		Previous:  previous,
		DiffBits:  diffBits,
	}
}

// HashInput returns the nonce-independent hash preimage of b.
func (b *Block) HashInput() HashInput {
	return NewHashInput(b.Index, b.Timestamp, b.Data, b.Previous)
}

// ComputeHash derives the content hash from the block's own fields.
func (b *Block) ComputeHash() Hash {
	return DeriveHash(b.Index, b.Timestamp, b.Data, b.Previous, b.Nonce)
}

func (b *Block) IsGenesis() bool {
	return b.Index == 0
}

func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

func (b *Block) String() string {
	return fmt.Sprintf("Block(index=%d,hash=%s,diff_bits=%d,acc_diff=%d)", b.Index, b.Hash, b.DiffBits, b.AccDiff)
}
