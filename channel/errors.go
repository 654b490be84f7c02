package channel

import "errors"

var (
	// ErrNotReady is returned when any channel side is not open on-chain.
	ErrNotReady = errors.New("channel is not ready")

	// ErrInsufficientBalance is returned when the paying side can not cover
	// the transfer amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrVersionMismatch is returned when the request version does not
	// immediately follow the local one.
	ErrVersionMismatch = errors.New("version mismatch")

	// ErrBalanceMismatch is returned when the claimed balances break
	// conservation of the channel total or do not reflect the transfer
	// amount.
	ErrBalanceMismatch = errors.New("balance mismatch")
)
