package validator

import (
	"errors"
	"fmt"
)

// Reason identifies the first consensus rule a rejected block broke.
type Reason uint8

const (
	MissingPredecessor Reason = iota + 1
	InvalidIndex
	NonIncreasingTimestamp
	FutureTimestamp
	InvalidData
	DifficultyOutOfRange
	InvalidProofOfWork
	HashMismatch
)

var reasonNames = map[Reason]string{
	MissingPredecessor:     "missing_predecessor",
	InvalidIndex:           "invalid_index",
	NonIncreasingTimestamp: "non_increasing_timestamp",
	FutureTimestamp:        "future_timestamp",
	InvalidData:            "invalid_data",
	DifficultyOutOfRange:   "difficulty_out_of_range",
	InvalidProofOfWork:     "invalid_proof_of_work",
	HashMismatch:           "hash_mismatch",
}

var reasonMessages = map[Reason]string{
	MissingPredecessor:     "no previous block",
	InvalidIndex:           "invalid block index",
	NonIncreasingTimestamp: "timestamp not increasing",
	FutureTimestamp:        "too far in the future",
	InvalidData:            "data not valid",
	DifficultyOutOfRange:   "difficulty out of range",
	InvalidProofOfWork:     "nonce not valid",
	HashMismatch:           "hash not valid",
}

// String is the stable snake_case name used in metrics and API error codes.
func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}

// Reasons lists every reason in rule evaluation order.
func Reasons() []Reason {
	return []Reason{
		MissingPredecessor,
		InvalidIndex,
		NonIncreasingTimestamp,
		FutureTimestamp,
		InvalidData,
		DifficultyOutOfRange,
		InvalidProofOfWork,
		HashMismatch,
	}
}

// RejectionError is the only error Validate returns.
type RejectionError struct {
	Reason Reason
	Detail string
}

func (e *RejectionError) Error() string {
	msg, ok := reasonMessages[e.Reason]
	if !ok {
		msg = e.Reason.String()
	}
	if e.Detail == "" {
		return msg
	}
	return msg + ": " + e.Detail
}

// Is matches any RejectionError carrying the same reason, so
// errors.Is(err, ErrInvalidIndex) works regardless of Detail.
func (e *RejectionError) Is(target error) bool {
	t, ok := target.(*RejectionError)
	return ok && t.Reason == e.Reason
}

var (
	ErrMissingPredecessor     = &RejectionError{Reason: MissingPredecessor}
	ErrInvalidIndex           = &RejectionError{Reason: InvalidIndex}
	ErrNonIncreasingTimestamp = &RejectionError{Reason: NonIncreasingTimestamp}
	ErrFutureTimestamp        = &RejectionError{Reason: FutureTimestamp}
	ErrInvalidData            = &RejectionError{Reason: InvalidData}
	ErrDifficultyOutOfRange   = &RejectionError{Reason: DifficultyOutOfRange}
	ErrInvalidProofOfWork     = &RejectionError{Reason: InvalidProofOfWork}
	ErrHashMismatch           = &RejectionError{Reason: HashMismatch}
)

// ReasonOf extracts the rejection reason from err, if it carries one.
func ReasonOf(err error) (Reason, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return 0, false
}

func reject(reason Reason, format string, args ...interface{}) error {
	return &RejectionError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
