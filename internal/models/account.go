package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountKind is the closed set of account variants.
type AccountKind string

const (
	KindSavings AccountKind = "Savings"
	KindCurrent AccountKind = "Current"
)

var (
	// DefaultInterestRate applies to savings accounts.
	DefaultInterestRate = decimal.RequireFromString("0.035")
	// DefaultOverdraftLimit applies to current accounts.
	DefaultOverdraftLimit = decimal.RequireFromString("5000.00")
)

// ParseAccountKind accepts the variant name in any letter case.
func ParseAccountKind(s string) (AccountKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "savings":
		return KindSavings, nil
	case "current":
		return KindCurrent, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAccountKind, s)
}

// DefaultRate returns the fixed rate parameter of a variant.
func (k AccountKind) DefaultRate() decimal.Decimal {
	if k == KindCurrent {
		return DefaultOverdraftLimit
	}
	return DefaultInterestRate
}

// Valid reports whether k is one of the known variants.
func (k AccountKind) Valid() bool {
	return k == KindSavings || k == KindCurrent
}

// AccountCore holds the fields shared by every variant.
type AccountCore struct {
	Number     string
	CustomerID string
	balance    decimal.Decimal
}

// Balance returns the current balance.
func (c AccountCore) Balance() decimal.Decimal { return c.balance }

// Policy carries the variant tag and its rate parameter: the interest rate for
// savings and the overdraft limit for current accounts.
type Policy struct {
	Kind AccountKind
	Rate decimal.Decimal
}

// floor is the lowest balance the policy allows.
func (p Policy) floor() decimal.Decimal {
	switch p.Kind {
	case KindSavings:
		return decimal.Zero
	case KindCurrent:
		return p.Rate.Neg()
	}
	panic(fmt.Sprintf("models: unknown account kind %q", p.Kind))
}

// Account is a savings or current account. Only the balance mutates and only
// through Deposit, Withdraw and ApplyInterest.
type Account struct {
	core   AccountCore
	policy Policy
}

// NewAccount opens an account with a positive initial deposit and the
// variant's default rate.
func NewAccount(kind AccountKind, number, customerID string, initialDeposit decimal.Decimal) (*Account, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccountKind, kind)
	}
	if !initialDeposit.IsPositive() {
		return nil, fmt.Errorf("%w: initial deposit %s must be positive", ErrInvalidAmount, initialDeposit)
	}
	return &Account{
		core:   AccountCore{Number: number, CustomerID: customerID, balance: initialDeposit},
		policy: Policy{Kind: kind, Rate: kind.DefaultRate()},
	}, nil
}

// RestoreAccount rebuilds a persisted account. The balance must respect the
// variant floor and the rate must not be negative.
func RestoreAccount(number, customerID string, balance decimal.Decimal, policy Policy) (*Account, error) {
	if !policy.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccountKind, policy.Kind)
	}
	if policy.Rate.IsNegative() {
		return nil, fmt.Errorf("%w: negative rate %s for %s", ErrInvalidAmount, policy.Rate, number)
	}
	if balance.LessThan(policy.floor()) {
		return nil, fmt.Errorf("%w: balance %s of %s is below %s", ErrInsufficientFunds, balance, number, policy.floor())
	}
	return &Account{
		core:   AccountCore{Number: number, CustomerID: customerID, balance: balance},
		policy: policy,
	}, nil
}

func (a *Account) Number() string           { return a.core.Number }
func (a *Account) CustomerID() string       { return a.core.CustomerID }
func (a *Account) Balance() decimal.Decimal { return a.core.balance }
func (a *Account) Kind() AccountKind        { return a.policy.Kind }
func (a *Account) Policy() Policy           { return a.policy }

// InterestRate reports the rate of a savings account.
func (a *Account) InterestRate() (decimal.Decimal, bool) {
	return a.policy.Rate, a.policy.Kind == KindSavings
}

// OverdraftLimit reports the limit of a current account.
func (a *Account) OverdraftLimit() (decimal.Decimal, bool) {
	return a.policy.Rate, a.policy.Kind == KindCurrent
}

// Available is the largest amount Withdraw would accept.
func (a *Account) Available() decimal.Decimal {
	return a.core.balance.Sub(a.policy.floor())
}

// CheckDeposit validates a credit without applying it.
func (a *Account) CheckDeposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: deposit amount %s must be positive", ErrInvalidAmount, amount)
	}
	return nil
}

// CheckWithdraw validates a debit against the variant policy without applying it.
func (a *Account) CheckWithdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: withdrawal amount %s must be positive", ErrInvalidAmount, amount)
	}
	if available := a.Available(); available.LessThan(amount) {
		return fmt.Errorf("%w: account %s available %s, tried %s",
			ErrInsufficientFunds, a.core.Number, available.StringFixed(2), amount.StringFixed(2))
	}
	return nil
}

// Deposit adds a positive amount to the balance.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if err := a.CheckDeposit(amount); err != nil {
		return err
	}
	a.core.balance = a.core.balance.Add(amount)
	return nil
}

// Withdraw removes amount when the variant floor allows it.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if err := a.CheckWithdraw(amount); err != nil {
		return err
	}
	a.core.balance = a.core.balance.Sub(amount)
	return nil
}

// ApplyInterest credits balance*rate to a savings account and returns the
// interest credited. A non-positive balance earns nothing.
func (a *Account) ApplyInterest() (decimal.Decimal, error) {
	if a.policy.Kind != KindSavings {
		return decimal.Zero, fmt.Errorf("%w: interest on %s account %s", ErrUnsupportedOperation, a.policy.Kind, a.core.Number)
	}
	interest := a.core.balance.Mul(a.policy.Rate)
	if !interest.IsPositive() {
		return decimal.Zero, nil
	}
	a.core.balance = a.core.balance.Add(interest)
	return interest, nil
}

// Details renders a one-line summary.
func (a *Account) Details() string {
	return fmt.Sprintf("Account: %s (%s) | Balance: %s", a.core.Number, a.policy.Kind, a.core.balance.StringFixed(2))
}

// Clone returns an independent copy.
func (a *Account) Clone() *Account {
	cp := *a
	return &cp
}
