package store

// Declare database key prefix for objects
const (
	PrefixBlockMeta = "blk_meta:"
	PrefixBlock     = "blk:"

	BlockMetaKeyFrontier = "frontier"
	BlockMetaKeyCount    = "count"
)
