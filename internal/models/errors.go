package models

import "errors"

var (
	// ErrInvalidAmount is returned when a monetary argument is zero or negative.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientFunds is returned when a withdrawal exceeds what the account may release.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidIdentity is returned when a tax id or national id is malformed.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrCustomerNotFound is returned when no customer has the requested id.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrAccountNotFound is returned when no account has the requested number.
	ErrAccountNotFound = errors.New("account not found")
	// ErrSameAccount is returned when a transfer names one account as both ends.
	ErrSameAccount = errors.New("cannot transfer to same account")
	// ErrInvalidName is returned when a customer name cannot be stored as given.
	ErrInvalidName = errors.New("invalid customer name")
	// ErrInvalidAccountKind is returned for anything other than Savings or Current.
	ErrInvalidAccountKind = errors.New("invalid account type")
	// ErrUnsupportedOperation is returned when a variant does not offer an operation.
	ErrUnsupportedOperation = errors.New("operation not supported for account type")
)
