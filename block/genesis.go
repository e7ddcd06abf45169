package block

const (
	GenesisDiffBits = 1
	genesisAccDiff  = uint64(1) << GenesisDiffBits
)

// GenesisTemplate returns the unmined genesis block. Its Hash holds the
// sentinel until the block is sealed.
func GenesisTemplate() *Block {
	return &Block{
		Index:     0,
		Timestamp: 0,
		Data:      "",
		Previous:  SentinelHash,
		Nonce:     0,
		Hash:      SentinelHash,
		DiffBits:  GenesisDiffBits,
		AccDiff:   genesisAccDiff,
	}
}
