package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralpay/ledger/internal/models"
)

func TestCodec_Customer(t *testing.T) {
	c := Codec{PreserveRates: true}
	cust := customer(t, "CUST-1", "Asha Rao", "ABCDEFGHIJ", "123456789012")

	line := c.EncodeCustomer(cust)
	assert.Equal(t, "CUST-1,Asha Rao,ABCDEFGHIJ,123456789012", line)

	got, err := c.DecodeCustomer(line)
	require.NoError(t, err)
	assert.Equal(t, cust, got)

	t.Run("wrong field count", func(t *testing.T) {
		_, err := c.DecodeCustomer("CUST-1,Asha")
		assert.Error(t, err)
	})

	t.Run("identity re-validated", func(t *testing.T) {
		_, err := c.DecodeCustomer("CUST-1,Asha,SHORT,123456789012")
		assert.ErrorIs(t, err, models.ErrInvalidIdentity)
	})
}

func TestCodec_Account(t *testing.T) {
	t.Run("encode includes rate", func(t *testing.T) {
		acc := account(t, "ACCT-1001", "CUST-1", "1000.50", models.KindSavings, "0.035")
		assert.Equal(t, "ACCT-1001,CUST-1,1000.5,Savings,0.035", Codec{}.EncodeAccount(acc))
	})

	t.Run("custom rate preserved", func(t *testing.T) {
		acc, err := Codec{PreserveRates: true}.DecodeAccount("ACCT-1002,CUST-1,-6000,Current,7500")
		require.NoError(t, err)
		limit, ok := acc.OverdraftLimit()
		assert.True(t, ok)
		assert.Equal(t, "7500", limit.String())
	})

	t.Run("custom rate reset to default", func(t *testing.T) {
		acc, err := Codec{PreserveRates: false}.DecodeAccount("ACCT-1001,CUST-1,100,Savings,0.05")
		require.NoError(t, err)
		rate, _ := acc.InterestRate()
		assert.True(t, rate.Equal(models.DefaultInterestRate))
	})

	t.Run("legacy four field record", func(t *testing.T) {
		acc, err := Codec{PreserveRates: true}.DecodeAccount("ACCT-1001,CUST-1,100.0,Current")
		require.NoError(t, err)
		assert.Equal(t, models.KindCurrent, acc.Kind())
		limit, _ := acc.OverdraftLimit()
		assert.True(t, limit.Equal(models.DefaultOverdraftLimit))
	})

	t.Run("bad records", func(t *testing.T) {
		c := Codec{PreserveRates: true}
		for _, line := range []string{
			"ACCT-1001,CUST-1",
			"ACCT-1001,CUST-1,abc,Savings",
			"ACCT-1001,CUST-1,10,Fixed",
			"ACCT-1001,CUST-1,10,Savings,x",
			"ACCT-1001,CUST-1,-1,Savings,0.035",
			"ACCT-1001,CUST-1,-5001,Current,5000",
		} {
			_, err := c.DecodeAccount(line)
			assert.Error(t, err, line)
		}
	})
}

func TestCodec_Snapshot(t *testing.T) {
	c := Codec{PreserveRates: true}
	snap := sampleSnapshot(t)

	customers, accounts := c.EncodeSnapshot(snap)
	require.Len(t, customers, 2)
	require.Len(t, accounts, 2)

	got, err := c.DecodeSnapshot(append(customers, ""), append([]string{"  "}, accounts...))
	require.NoError(t, err)
	wantC, wantA := views(snap)
	gotC, gotA := views(got)
	assert.ElementsMatch(t, wantC, gotC)
	assert.ElementsMatch(t, wantA, gotA)

	_, err = c.DecodeSnapshot([]string{"broken"}, nil)
	assert.Error(t, err)
}
