package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest customer name, in runes.
const MaxNameLength = 140

// Customer binds an id and display name to a validated identity.
type Customer struct {
	id       string
	name     string
	identity Identity
}

// NewCustomer builds a customer. Customer records are stored unescaped, so the
// name may not hold a comma or line break. It is capped at MaxNameLength runes.
func NewCustomer(id, name string, identity Identity) (Customer, error) {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, recordSeparators) {
		return Customer{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return Customer{}, fmt.Errorf("%w: %d characters, at most %d allowed", ErrInvalidName, n, MaxNameLength)
	}
	if identity == (Identity{}) {
		return Customer{}, fmt.Errorf("%w: identity not validated", ErrInvalidIdentity)
	}
	return Customer{id: id, name: name, identity: identity}, nil
}

func (c Customer) ID() string         { return c.id }
func (c Customer) Name() string       { return c.name }
func (c Customer) Identity() Identity { return c.identity }

// Details renders the customer the way the teller views show it.
func (c Customer) Details() string {
	return fmt.Sprintf("Customer: %s (ID: %s) | Tax ID: %s | National ID: %s",
		c.name, c.id, c.identity.TaxID(), c.identity.MaskedNationalID())
}
