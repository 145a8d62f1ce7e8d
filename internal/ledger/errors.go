package ledger

import "errors"

var (
	// ErrInsufficientBalance means a spend would take the balance below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrNegativeBalance means an adjust would leave the balance below zero.
	ErrNegativeBalance = errors.New("balance would become negative")
	// ErrInvalidAmount means the amount for an earn or spend is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")
)
