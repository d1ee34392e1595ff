package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS customers (
	seq         INTEGER NOT NULL,
	customer_id VARCHAR(32) PRIMARY KEY,
	name        VARCHAR(140) NOT NULL,
	tax_id      VARCHAR(10) NOT NULL,
	national_id VARCHAR(12) NOT NULL
);
CREATE TABLE IF NOT EXISTS accounts (
	seq            INTEGER NOT NULL,
	account_number VARCHAR(32) PRIMARY KEY,
	customer_id    VARCHAR(32) NOT NULL,
	balance        NUMERIC(24,8) NOT NULL,
	account_type   VARCHAR(16) NOT NULL,
	rate           NUMERIC(24,8) NOT NULL
);`

// PostgresStore keeps the snapshot in the customers and accounts tables.
type PostgresStore struct {
	db    *sql.DB
	codec Codec
}

func NewPostgresStore(db *sql.DB, preserveRates bool) *PostgresStore {
	return &PostgresStore{db: db, codec: Codec{PreserveRates: preserveRates}}
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *PostgresStore) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT customer_id, name, tax_id, national_id
		FROM customers
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	for rows.Next() {
		var id, name, taxID, nationalID string
		if err := rows.Scan(&id, &name, &taxID, &nationalID); err != nil {
			rows.Close()
			return nil, err
		}
		cust, err := s.codec.CustomerFromFields(id, name, taxID, nationalID)
		if err != nil {
			rows.Close()
			return nil, err
		}
		snap.Customers = append(snap.Customers, cust)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT account_number, customer_id, balance, account_type, rate
		FROM accounts
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var number, customerID, kind string
		var balance, rate decimal.Decimal
		if err := rows.Scan(&number, &customerID, &balance, &kind, &rate); err != nil {
			return nil, err
		}
		acc, err := s.codec.AccountFromFields(number, customerID, balance, kind, &rate)
		if err != nil {
			return nil, err
		}
		snap.Accounts = append(snap.Accounts, acc)
	}
	return snap, rows.Err()
}

// Save replaces every row in a single transaction.
func (s *PostgresStore) Save(ctx context.Context, snap *Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM customers`); err != nil {
		return fmt.Errorf("clear customers: %w", err)
	}

	if snap != nil {
		for i, c := range snap.Customers {
			id := c.Identity()
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO customers (seq, customer_id, name, tax_id, national_id)
				VALUES ($1, $2, $3, $4, $5)`,
				i, c.ID(), c.Name(), id.TaxID(), id.NationalID()); err != nil {
				return fmt.Errorf("insert customer %s: %w", c.ID(), err)
			}
		}
		for i, a := range snap.Accounts {
			p := a.Policy()
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO accounts (seq, account_number, customer_id, balance, account_type, rate)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				i, a.Number(), a.CustomerID(), a.Balance().String(), string(p.Kind), p.Rate.String()); err != nil {
				return fmt.Errorf("insert account %s: %w", a.Number(), err)
			}
		}
	}

	return tx.Commit()
}
