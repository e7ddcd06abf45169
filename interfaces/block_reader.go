package interfaces

import "github.com/mezonai/powchain/block"

// BlockReader is the single lookup the consensus rules need from storage.
// Block returns nil when no block with that hash is stored.
type BlockReader interface {
	Block(hash block.Hash) *block.Block
}
