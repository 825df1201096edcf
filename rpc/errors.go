package rpc

import (
	"errors"
	"net/http"

	"escrowmarket/native/common"
	"escrowmarket/native/escrow"
	"escrowmarket/native/token"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000

	codeNotFound            = -32001
	codeUnauthorized        = -32002
	codeInvalidTransition   = -32003
	codeWindowExpired       = -32004
	codeWindowNotElapsed    = -32005
	codeNotCancellable      = -32006
	codeInsufficientBalance = -32010
	codeInsufficientEscrow  = -32011
	codeLedgerUnderflow     = -32012
	codeFaucetCooldown      = -32020
	codeCriticalInvariant   = -32050
	codeReentrancy          = -32060
)

// Error is the JSON-RPC error payload.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// translateError maps domain failures onto the wire taxonomy. Unrecognised
// errors surface as a generic server error.
func translateError(err error) (*Error, int) {
	var transition *escrow.InvalidTransitionError
	switch {
	case errors.Is(err, escrow.ErrOrderNotFound):
		return &Error{Code: codeNotFound, Message: err.Error()}, http.StatusNotFound
	case errors.Is(err, escrow.ErrUnauthorized):
		return &Error{Code: codeUnauthorized, Message: err.Error()}, http.StatusForbidden
	case errors.As(err, &transition):
		return &Error{Code: codeInvalidTransition, Message: transition.Error()}, http.StatusConflict
	case errors.Is(err, escrow.ErrWindowExpired):
		return &Error{Code: codeWindowExpired, Message: err.Error()}, http.StatusConflict
	case errors.Is(err, escrow.ErrWindowNotElapsed):
		return &Error{Code: codeWindowNotElapsed, Message: err.Error()}, http.StatusConflict
	case errors.Is(err, escrow.ErrNotCancellable):
		return &Error{Code: codeNotCancellable, Message: err.Error()}, http.StatusConflict
	case errors.Is(err, escrow.ErrInvalidArgument), errors.Is(err, escrow.ErrInvalidRecipient),
		errors.Is(err, token.ErrInvalidAmount), errors.Is(err, token.ErrInvalidAddress):
		return &Error{Code: codeInvalidParams, Message: err.Error()}, http.StatusBadRequest
	case errors.Is(err, escrow.ErrInsufficientBalance), errors.Is(err, token.ErrInsufficientBalance):
		return &Error{Code: codeInsufficientBalance, Message: err.Error()}, http.StatusConflict
	case errors.Is(err, escrow.ErrInsufficientEscrowBalance):
		return &Error{Code: codeInsufficientEscrow, Message: err.Error()}, http.StatusConflict
	case errors.Is(err, escrow.ErrLedgerUnderflow):
		return &Error{Code: codeLedgerUnderflow, Message: err.Error()}, http.StatusConflict
	case errors.Is(err, token.ErrFaucetCooldown):
		return &Error{Code: codeFaucetCooldown, Message: err.Error()}, http.StatusTooManyRequests
	case errors.Is(err, escrow.ErrCriticalInvariant):
		return &Error{Code: codeCriticalInvariant, Message: err.Error()}, http.StatusInternalServerError
	case errors.Is(err, common.ErrReentrancy):
		return &Error{Code: codeReentrancy, Message: err.Error()}, http.StatusConflict
	default:
		return &Error{Code: codeServerError, Message: err.Error()}, http.StatusInternalServerError
	}
}
