package pow

import (
	"encoding/hex"
	"strings"

	"github.com/holiman/uint256"

	"github.com/mezonai/powchain/block"
)

// HashBits is the width of the integer a hash is compared as.
const HashBits = 256

// MeetsTarget reports whether h, read as a base-16 unsigned integer, fits in
// HashBits-diffBits bits, i.e. has at least diffBits leading zero bits.
// Text that is not hex never meets a target.
//
// Expected mining work doubles with every extra bit of diffBits; there is no
// upper special case.
func MeetsTarget(h block.Hash, diffBits uint32) bool {
	v, ok := hashValue(h)
	if !ok {
		return false
	}
	return v.BitLen() <= HashBits-int(diffBits)
}

// IsWorkValid recomputes b's hash at its claimed nonce and checks it against
// b.DiffBits.
func IsWorkValid(b *block.Block) bool {
	if b == nil {
		return false
	}
	return MeetsTarget(b.ComputeHash(), b.DiffBits)
}

func hashValue(h block.Hash) (*uint256.Int, bool) {
	if len(h) == 0 {
		return nil, false
	}
	digits := strings.TrimLeft(string(h), "0")
	if len(digits) > HashBits/4 {
		// Wider than 256 bits: above every target whether or not it is hex.
		return nil, false
	}
	raw, err := hex.DecodeString(evenLength(digits))
	if err != nil {
		return nil, false
	}
	return new(uint256.Int).SetBytes(raw), true
}

func evenLength(digits string) string {
	if len(digits)%2 == 1 {
		return "0" + digits
	}
	return digits
}
