package block

import (
	"fmt"

	"github.com/mezonai/powchain/jsonx"
)

// Encode serializes b as a JSON object with the stable snake_case field names.
func Encode(b *Block) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("block cannot be nil")
	}
	return jsonx.Marshal(b)
}

// Decode parses a block produced by Encode. Unknown fields are rejected so a
// renamed field cannot silently decode to its zero value.
func Decode(raw []byte) (*Block, error) {
	var b Block
	if err := jsonx.UnmarshalStrict(raw, &b); err != nil {
		return nil, fmt.Errorf("decode block: %w", err)
	}
	return &b, nil
}
