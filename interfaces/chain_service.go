package interfaces

import (
	"github.com/mezonai/powchain/block"
)

// ChainService is what the HTTP layer needs from a node.
type ChainService interface {
	BlockReader
	Frontier() *block.Block
	Recent(limit int) []*block.Block
	Submit(b *block.Block) (*block.Block, error)
}
