package errors

import (
	"github.com/mezonai/powchain/jsonx"
)

// APIErrorCode is the machine-readable part of an API error. Block
// rejections use the validator reason name as their code.
type APIErrorCode string

const (
	ErrCodeInternal APIErrorCode = "internal_error"

	ErrCodeInvalidRequest APIErrorCode = "invalid_request"
	ErrCodeInvalidLimit   APIErrorCode = "invalid_limit"

	ErrCodeBlockNotFound  APIErrorCode = "block_not_found"
	ErrCodeNoGenesis      APIErrorCode = "no_genesis"
	ErrCodeDuplicateBlock APIErrorCode = "duplicate_block"

	ErrCodeRateLimited APIErrorCode = "rate_limited"
)

// APIError is the JSON body of every failed API call.
type APIError struct {
	Code    APIErrorCode `json:"code"`
	Message string       `json:"message"`
}

func (e *APIError) Error() string {
	err, _ := jsonx.Marshal(APIError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(err)
}

const (
	ErrMsgInvalidRequest   = "Request body is not a valid block"
	ErrMsgInvalidLimit     = "Limit must be an integer between 1 and %d"
	ErrMsgBlockNotFound    = "Block could not be found"
	ErrMsgNoGenesis        = "Chain has not been initialised"
	ErrMsgDuplicateBlock   = "This block already exists"
	ErrMsgInternal         = "Server error, please try again"
	ErrMsgRateLimited      = "Too many requests, please slow down"
)

// NewError creates a new APIError and returns it as error interface
func NewError(code APIErrorCode, message string) error {
	return &APIError{
		Code:    code,
		Message: message,
	}
}
