package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	TaxIDLength      = 10
	NationalIDLength = 12
)

// recordSeparators may not appear in any stored text field.
const recordSeparators = ",\r\n"

// Identity is a validated pair of KYC credentials. The zero value is not a
// valid identity; use NewIdentity.
type Identity struct {
	taxID      string
	nationalID string
}

// NewIdentity checks the tax id and national id formats in order and returns
// the first failure. A tax id holding a comma or line break is malformed.
func NewIdentity(taxID, nationalID string) (Identity, error) {
	if utf8.RuneCountInString(taxID) != TaxIDLength || strings.ContainsAny(taxID, recordSeparators) {
		return Identity{}, fmt.Errorf("%w: bad tax id format", ErrInvalidIdentity)
	}
	if utf8.RuneCountInString(nationalID) != NationalIDLength {
		return Identity{}, fmt.Errorf("%w: bad national id format", ErrInvalidIdentity)
	}
	for _, r := range nationalID {
		if r < '0' || r > '9' {
			return Identity{}, fmt.Errorf("%w: national id must be numeric", ErrInvalidIdentity)
		}
	}
	return Identity{taxID: taxID, nationalID: nationalID}, nil
}

// TaxID returns the tax id in full.
func (i Identity) TaxID() string { return i.taxID }

// NationalID returns the unmasked national id.
func (i Identity) NationalID() string { return i.nationalID }

// MaskedNationalID keeps only the last four digits.
func (i Identity) MaskedNationalID() string {
	if len(i.nationalID) < 4 {
		return "..."
	}
	return "..." + i.nationalID[len(i.nationalID)-4:]
}
