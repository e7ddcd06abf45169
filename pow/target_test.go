package pow

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"

	"github.com/mezonai/powchain/block"
)

func TestMeetsTarget_MatchesBitLength(t *testing.T) {
	f := fuzz.New()
	for i := 0; i < 500; i++ {
		var raw [32]byte
		var shift uint8
		f.Fuzz(&raw)
		f.Fuzz(&shift)

		// Shift right so every bit length gets exercised, not just ~256.
		v := new(big.Int).SetBytes(raw[:])
		v.Rsh(v, uint(shift))
		var buf [32]byte
		v.FillBytes(buf[:])
		h := block.Hash(hex.EncodeToString(buf[:]))

		for d := uint32(0); d < 64; d++ {
			want := v.BitLen() <= 256-int(d)
			if got := MeetsTarget(h, d); got != want {
				t.Fatalf("MeetsTarget(%s, %d) = %v, want %v (bitlen %d)", h, d, got, want, v.BitLen())
			}
		}
	}
}

func TestMeetsTarget_Edges(t *testing.T) {
	tests := []struct {
		name     string
		hash     block.Hash
		diffBits uint32
		want     bool
	}{
		{name: "zero difficulty accepts max value", hash: block.Hash(strings.Repeat("f", 64)), diffBits: 0, want: true},
		{name: "one bit rejects top bit set", hash: block.Hash("8" + strings.Repeat("0", 63)), diffBits: 1, want: false},
		{name: "one bit accepts top bit clear", hash: block.Hash("7" + strings.Repeat("f", 63)), diffBits: 1, want: true},
		{name: "eight bits", hash: block.Hash("00" + strings.Repeat("f", 62)), diffBits: 8, want: true},
		{name: "seven bits", hash: block.Hash("01" + strings.Repeat("f", 62)), diffBits: 7, want: true},
		{name: "eight bits rejects 0x01 prefix", hash: block.Hash("01" + strings.Repeat("f", 62)), diffBits: 8, want: false},
		{name: "uppercase hex", hash: block.Hash("0F" + strings.Repeat("F", 62)), diffBits: 4, want: true},
		{name: "zero hash meets 256", hash: block.SentinelHash, diffBits: 256, want: true},
		{name: "nothing meets 257", hash: block.SentinelHash, diffBits: 257, want: false},
		{name: "short hash", hash: "1", diffBits: 255, want: true},
		{name: "odd length", hash: "abc", diffBits: 244, want: true},
		{name: "leading zeros beyond 64 digits", hash: block.Hash("00" + strings.Repeat("f", 64)), diffBits: 0, want: true},
		{name: "wider than 256 bits", hash: block.Hash("1" + strings.Repeat("0", 64)), diffBits: 0, want: false},
		{name: "empty", hash: "", diffBits: 0, want: false},
		{name: "non hex", hash: "zz", diffBits: 0, want: false},
		{name: "prefixed", hash: "0x12", diffBits: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MeetsTarget(tt.hash, tt.diffBits))
		})
	}
}

func TestIsWorkValid(t *testing.T) {
	b := block.New(1, 100, "data", block.SentinelHash, 0)
	assert.True(t, IsWorkValid(b))
	assert.False(t, IsWorkValid(nil))

	b.DiffBits = 256
	assert.False(t, IsWorkValid(b))
}
