package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mW "github.com/ruralpay/ledger/internal/middleware"
	"github.com/ruralpay/ledger/internal/services"
	"github.com/ruralpay/ledger/internal/storage"
)

type testServer struct {
	handler http.Handler
	ledger  *services.LedgerService
	store   *storage.FileStore
	token   string
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewFileStore(filepath.Join(dir, "customers.csv"), filepath.Join(dir, "accounts.csv"), true)
	ledger := services.NewLedgerService(nil)
	receipts := services.NewReceiptService("INR", "RURALPAY")
	qr := services.NewQRService(ledger, nil, time.Minute)

	ts := &testServer{
		handler: NewRouter(RouterConfig{
			Ledger:    NewLedgerHandler(ledger, receipts, store, zerolog.Nop()),
			QR:        NewQRHandler(qr),
			JWTSecret: secret,
		}),
		ledger: ledger,
		store:  store,
	}
	if secret != "" {
		token, err := mW.GenerateToken(secret, "teller-1", time.Hour)
		require.NoError(t, err)
		ts.token = token
	}
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func (ts *testServer) seed(t *testing.T) {
	t.Helper()
	w, _ := ts.do(t, http.MethodPost, "/api/v1/customers", map[string]string{
		"name": "Asha Rao", "taxId": "ABCDEFGHIJ", "nationalId": "123456789012",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = ts.do(t, http.MethodPost, "/api/v1/accounts", map[string]any{
		"customerId": "CUST-1", "type": "Savings", "initialDeposit": 1000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = ts.do(t, http.MethodPost, "/api/v1/accounts", map[string]any{
		"customerId": "CUST-1", "type": "current", "initialDeposit": "200",
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestLedgerHandler_CreateCustomer(t *testing.T) {
	ts := newTestServer(t, "")

	t.Run("created", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/v1/customers", map[string]string{
			"name": "Asha Rao", "taxId": "ABCDEFGHIJ", "nationalId": "123456789012",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "CUST-1", resp["customerId"])
		assert.Equal(t, "...9012", resp["nationalId"])
	})

	t.Run("invalid identity", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/v1/customers", map[string]string{
			"name": "Asha Rao", "taxId": "ABCDEFGHIJ", "nationalId": "12345678901X",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, resp["error"], "national id must be numeric")
	})

	t.Run("missing fields", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/v1/customers", map[string]string{"name": "Asha"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Validation failed", resp["error"])
		assert.Contains(t, resp["details"], "TaxID")
	})

	t.Run("invalid request body", func(t *testing.T) {
		w, _ := ts.do(t, http.MethodPost, "/api/v1/customers", "invalid")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		w, _ := ts.do(t, http.MethodPost, "/api/v1/customers", map[string]string{
			"name": "Asha Rao", "taxId": "ABCDEFGHIJ", "nationalId": "123456789012", "pan": "x",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("two objects", func(t *testing.T) {
		body := `{"name":"A","taxId":"ABCDEFGHIJ","nationalId":"123456789012"}{}`
		w, resp := ts.do(t, http.MethodPost, "/api/v1/customers", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Request body must only contain a single JSON object", resp["error"])
	})
}

func TestLedgerHandler_Accounts(t *testing.T) {
	ts := newTestServer(t, "")
	ts.seed(t)

	t.Run("get account", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodGet, "/api/v1/accounts/ACCT-1002", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Current", resp["type"])
		assert.Equal(t, "200", resp["balance"])
		assert.Equal(t, "5200", resp["available"])
		assert.Equal(t, "5000", resp["overdraftLimit"])
		assert.NotContains(t, resp, "interestRate")
	})

	t.Run("unknown account", func(t *testing.T) {
		w, _ := ts.do(t, http.MethodGet, "/api/v1/accounts/ACCT-9", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("open for unknown customer", func(t *testing.T) {
		w, _ := ts.do(t, http.MethodPost, "/api/v1/accounts", map[string]any{
			"customerId": "CUST-9", "type": "Savings", "initialDeposit": 10,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("open with bad type", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/v1/accounts", map[string]any{
			"customerId": "CUST-1", "type": "Fixed", "initialDeposit": 10,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, resp["details"], "Type")
	})

	t.Run("open with zero deposit", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/v1/accounts", map[string]any{
			"customerId": "CUST-1", "type": "Savings", "initialDeposit": 0,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Validation failed", resp["error"])
		assert.Contains(t, resp["details"], "InitialDeposit")
	})

	t.Run("non-positive amounts rejected at the edge", func(t *testing.T) {
		for _, body := range []map[string]any{{"amount": 0}, {"amount": "-0.01"}, {}} {
			w, resp := ts.do(t, http.MethodPost, "/api/v1/accounts/ACCT-1001/deposit", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Validation failed", resp["error"])
			assert.Equal(t, map[string]any{"Amount": "Field Validation Failed on 'positive_amount' tag"}, resp["details"])

			w, resp = ts.do(t, http.MethodPost, "/api/v1/accounts/ACCT-1001/withdraw", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Validation failed", resp["error"])
		}

		acc, err := ts.ledger.FindAccount("ACCT-1001")
		require.NoError(t, err)
		assert.Equal(t, "1000", acc.Balance().String())
	})

	t.Run("deposit and withdraw", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/v1/accounts/ACCT-1001/deposit", map[string]any{"amount": "50.25"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1050.25", resp["balance"])

		w, _ = ts.do(t, http.MethodPost, "/api/v1/accounts/ACCT-1001/withdraw", map[string]any{"amount": 2000})
		assert.Equal(t, http.StatusConflict, w.Code)

		w, resp = ts.do(t, http.MethodPost, "/api/v1/accounts/ACCT-1002/withdraw", map[string]any{"amount": 5000})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "-4800", resp["balance"])

		w, _ = ts.do(t, http.MethodPost, "/api/v1/accounts/ACCT-1001/deposit", map[string]any{"amount": -1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("interest", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/v1/accounts/ACCT-1001/interest", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "36.75875", resp["interest"])

		w, _ = ts.do(t, http.MethodPost, "/api/v1/accounts/ACCT-1002/interest", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("customer details", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodGet, "/api/v1/customers/CUST-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		accounts, ok := resp["accounts"].([]any)
		require.True(t, ok)
		assert.Len(t, accounts, 2)

		w, _ = ts.do(t, http.MethodGet, "/api/v1/customers/CUST-2", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLedgerHandler_Transfer(t *testing.T) {
	ts := newTestServer(t, "")
	ts.seed(t)

	t.Run("moves funds", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/v1/transfers", map[string]any{
			"fromAccount": "ACCT-1001", "toAccount": "ACCT-1002", "amount": 500,
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, resp["reference"])
		assert.Equal(t, "500", resp["fromAccount"].(map[string]any)["balance"])
		assert.Equal(t, "700", resp["toAccount"].(map[string]any)["balance"])
		assert.NotContains(t, resp, "pacs008")
	})

	t.Run("insufficient funds leaves balances", func(t *testing.T) {
		w, _ := ts.do(t, http.MethodPost, "/api/v1/transfers", map[string]any{
			"fromAccount": "ACCT-1001", "toAccount": "ACCT-1002", "amount": 501,
		})
		assert.Equal(t, http.StatusConflict, w.Code)

		acc, err := ts.ledger.FindAccount("ACCT-1001")
		require.NoError(t, err)
		assert.Equal(t, "500", acc.Balance().String())
	})

	t.Run("same account", func(t *testing.T) {
		w, _ := ts.do(t, http.MethodPost, "/api/v1/transfers", map[string]any{
			"fromAccount": "ACCT-1001", "toAccount": "ACCT-1001", "amount": 1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("zero amount", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/v1/transfers", map[string]any{
			"fromAccount": "ACCT-1001", "toAccount": "ACCT-1002", "amount": 0,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Validation failed", resp["error"])
		assert.Contains(t, resp["details"], "Amount")
	})

	t.Run("unknown destination", func(t *testing.T) {
		w, _ := ts.do(t, http.MethodPost, "/api/v1/transfers", map[string]any{
			"fromAccount": "ACCT-1001", "toAccount": "ACCT-7", "amount": 1,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("iso20022 receipts", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/v1/transfers?format=iso20022", map[string]any{
			"fromAccount": "ACCT-1002", "toAccount": "ACCT-1001", "amount": "100",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, resp["pacs008"], "ACCT-1002")
		assert.Contains(t, resp["pacs008"], "Asha Rao")
		assert.Contains(t, resp["pacs002"], "ACSC")
	})
}

func TestLedgerHandler_Save(t *testing.T) {
	ts := newTestServer(t, "")
	ts.seed(t)

	w, resp := ts.do(t, http.MethodPost, "/api/v1/admin/save", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "saved", resp["status"])

	snap, err := ts.store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Customers, 1)
	assert.Len(t, snap.Accounts, 2)
}

func TestRouter_Auth(t *testing.T) {
	ts := newTestServer(t, "router-secret")

	t.Run("authorized", func(t *testing.T) {
		ts.seed(t)
	})

	t.Run("mutating route without token", func(t *testing.T) {
		anon := *ts
		anon.token = ""
		w, _ := anon.do(t, http.MethodPost, "/api/v1/accounts/ACCT-1001/deposit", map[string]any{"amount": 1})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w, _ = anon.do(t, http.MethodGet, "/api/v1/accounts/ACCT-1001", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("health", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", resp["status"])
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})
}
