package ledger

import "errors"

var (
	// ErrInsufficientFunds indicates the pool does not hold enough of the
	// asset for the requested transfer.
	ErrInsufficientFunds = errors.New("ledger: insufficient pool balance")

	// ErrInvalidRecipient indicates a transfer to the null identifier.
	ErrInvalidRecipient = errors.New("ledger: recipient must not be empty")

	// ErrZeroAmount indicates a deposit or transfer of zero.
	ErrZeroAmount = errors.New("ledger: amount must be positive")

	// ErrBalanceOverflow indicates a deposit would overflow a balance.
	ErrBalanceOverflow = errors.New("ledger: balance overflow")
)
