package block

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/powchain/jsonx"
)

func TestEncode_FieldNames(t *testing.T) {
	b := &Block{
		Index:     7,
		Timestamp: 1700000000,
		Data:      "hello",
		Previous:  SentinelHash,
		Nonce:     99,
		Hash:      "abc",
		DiffBits:  3,
		AccDiff:   18,
	}
	raw, err := Encode(b)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, jsonx.Unmarshal(raw, &fields))
	assert.Len(t, fields, 8)
	for _, name := range []string{"index", "timestamp", "data", "previous", "nonce", "hash", "diff_bits", "acc_diff"} {
		assert.Contains(t, fields, name)
	}
	assert.Contains(t, string(raw), `"timestamp":1700000000`)
	assert.Contains(t, string(raw), `"acc_diff":18`)
}

func TestEncodeDecode_Lossless(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for i := 0; i < 50; i++ {
		var b Block
		f.Fuzz(&b)

		raw, err := Encode(&b)
		require.NoError(t, err)
		got, err := Decode(raw)
		require.NoError(t, err)
		require.Equal(t, b, *got)
	}
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "block"},
		{name: "unknown field", raw: `{"index":1,"height":2}`},
		{name: "negative index", raw: `{"index":-1}`},
		{name: "string nonce", raw: `{"nonce":"1"}`},
		{name: "trailing value", raw: `{"index":1} {"index":2}`},
		{name: "trailing bracket", raw: `{"index":1}]`},
		{name: "trailing brace", raw: `{"index":1}}`},
		{name: "trailing text", raw: "{\"index\":1}\nx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestEncode_Nil(t *testing.T) {
	_, err := Encode(nil)
	assert.Error(t, err)
}
