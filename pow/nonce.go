package pow

import "math"

// NonceRange is a finite sequence of nonce candidates
// start, start+step, start+2*step, ... up to and including end.
type NonceRange struct {
	start uint64
	end   uint64
	step  uint64
	next  uint64
}

// FullNonceRange covers every uint32 nonce in ascending order.
func FullNonceRange() *NonceRange {
	return NewNonceRange(0, math.MaxUint32, 1)
}

// NewNonceRange panics on a zero step.
func NewNonceRange(start, end, step uint32) *NonceRange {
	if step == 0 {
		panic("nonce range step must be > 0")
	}
	return &NonceRange{
		start: uint64(start),
		end:   uint64(end),
		step:  uint64(step),
		next:  uint64(start),
	}
}

// Next returns the next candidate, or false once the range is exhausted.
func (r *NonceRange) Next() (uint32, bool) {
	if r.next > r.end {
		return 0, false
	}
	n := r.next
	r.next += r.step
	return uint32(n), true
}

// Len is the number of candidates the range yields from the start.
func (r *NonceRange) Len() uint64 {
	if r.start > r.end {
		return 0
	}
	return (r.end-r.start)/r.step + 1
}
