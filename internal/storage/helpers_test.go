package storage

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ruralpay/ledger/internal/models"
)

func customer(t *testing.T, id, name, taxID, nationalID string) models.Customer {
	t.Helper()
	identity, err := models.NewIdentity(taxID, nationalID)
	require.NoError(t, err)
	c, err := models.NewCustomer(id, name, identity)
	require.NoError(t, err)
	return c
}

func account(t *testing.T, number, customerID, balance string, kind models.AccountKind, rate string) *models.Account {
	t.Helper()
	acc, err := models.RestoreAccount(number, customerID, decimal.RequireFromString(balance),
		models.Policy{Kind: kind, Rate: decimal.RequireFromString(rate)})
	require.NoError(t, err)
	return acc
}

func sampleSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	return &Snapshot{
		Customers: []models.Customer{
			customer(t, "CUST-1", "Asha Rao", "ABCDEFGHIJ", "123456789012"),
			customer(t, "CUST-2", "Vikram Iyer", "KLMNOPQRST", "210987654321"),
		},
		Accounts: []*models.Account{
			account(t, "ACCT-1001", "CUST-1", "1000.5", models.KindSavings, "0.035"),
			account(t, "ACCT-1002", "CUST-2", "-4900", models.KindCurrent, "5000"),
		},
	}
}

type accountView struct {
	Number, CustomerID, Balance, Kind, Rate string
}

type customerView struct {
	ID, Name, TaxID, NationalID string
}

func views(snap *Snapshot) ([]customerView, []accountView) {
	var cs []customerView
	for _, c := range snap.Customers {
		cs = append(cs, customerView{c.ID(), c.Name(), c.Identity().TaxID(), c.Identity().NationalID()})
	}
	var as []accountView
	for _, a := range snap.Accounts {
		as = append(as, accountView{a.Number(), a.CustomerID(), a.Balance().String(), string(a.Kind()), a.Policy().Rate.String()})
	}
	return cs, as
}
