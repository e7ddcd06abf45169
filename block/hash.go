package block

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// HashSize is the width in bytes of every block hash. Changing the hash
// function invalidates every stored block.
const HashSize = sha256.Size

// Hash is the lowercase hex encoding of a SHA-256 digest.
type Hash string

// SentinelHash stands in for the missing predecessor of the genesis block.
const SentinelHash Hash = "0000000000000000000000000000000000000000000000000000000000000000"

func (h Hash) String() string { return string(h) }

func (h Hash) IsSentinel() bool { return h == SentinelHash }

// HashData is the pre-hash of a raw payload.
func HashData(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// DeriveHash computes the content hash of a block:
// sha256(index || timestamp || sha256(data) || previous || nonce) with every
// number written in decimal.
func DeriveHash(index uint32, timestamp uint64, data string, previous Hash, nonce uint32) Hash {
	return NewHashInput(index, timestamp, data, previous).At(nonce)
}

// HashInput holds the nonce-independent part of the hash preimage so a miner
// only pays for the payload pre-hash once.
type HashInput struct {
	prefix []byte
}

func NewHashInput(index uint32, timestamp uint64, data string, previous Hash) HashInput {
	prefix := make([]byte, 0, 10+20+2*HashSize+len(previous))
	prefix = strconv.AppendUint(prefix, uint64(index), 10)
	prefix = strconv.AppendUint(prefix, timestamp, 10)
	prefix = append(prefix, HashData(data)...)
	prefix = append(prefix, previous...)
	return HashInput{prefix: prefix}
}

// At returns the content hash for the given nonce. Safe for concurrent use.
func (in HashInput) At(nonce uint32) Hash {
	var buf [256]byte
	preimage := append(buf[:0], in.prefix...)
	preimage = strconv.AppendUint(preimage, uint64(nonce), 10)
	sum := sha256.Sum256(preimage)
	return Hash(hex.EncodeToString(sum[:]))
}
