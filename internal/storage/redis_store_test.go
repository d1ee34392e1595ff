package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Save(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, "", true)

	mock.ExpectDel("ledger:customers:tmp").SetVal(0)
	mock.ExpectRPush("ledger:customers:tmp",
		"CUST-1,Asha Rao,ABCDEFGHIJ,123456789012",
		"CUST-2,Vikram Iyer,KLMNOPQRST,210987654321").SetVal(2)
	mock.ExpectRename("ledger:customers:tmp", "ledger:customers").SetVal("OK")
	mock.ExpectDel("ledger:accounts:tmp").SetVal(0)
	mock.ExpectRPush("ledger:accounts:tmp",
		"ACCT-1001,CUST-1,1000.5,Savings,0.035",
		"ACCT-1002,CUST-2,-4900,Current,5000").SetVal(2)
	mock.ExpectRename("ledger:accounts:tmp", "ledger:accounts").SetVal("OK")

	assert.NoError(t, store.Save(context.Background(), sampleSnapshot(t)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_SaveEmpty(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, "bank", true)

	mock.ExpectDel("bank:customers").SetVal(1)
	mock.ExpectDel("bank:accounts").SetVal(1)

	assert.NoError(t, store.Save(context.Background(), &Snapshot{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Load(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, "", true)

	t.Run("decodes lists", func(t *testing.T) {
		mock.ExpectLRange("ledger:customers", 0, -1).SetVal([]string{"CUST-1,Asha Rao,ABCDEFGHIJ,123456789012"})
		mock.ExpectLRange("ledger:accounts", 0, -1).SetVal([]string{"ACCT-1001,CUST-1,42,Savings,0.035"})

		snap, err := store.Load(context.Background())
		require.NoError(t, err)
		require.Len(t, snap.Customers, 1)
		require.Len(t, snap.Accounts, 1)
		assert.Equal(t, "CUST-1", snap.Accounts[0].CustomerID())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("read error", func(t *testing.T) {
		mock.ExpectLRange("ledger:customers", 0, -1).SetErr(errors.New("connection refused"))

		_, err := store.Load(context.Background())
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
