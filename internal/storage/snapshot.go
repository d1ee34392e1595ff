// Package storage persists ledger state as flat comma-separated records and
// keeps them in files, PostgreSQL or Redis.
package storage

import (
	"context"

	"github.com/ruralpay/ledger/internal/models"
)

// Snapshot is the full persisted state of a ledger.
type Snapshot struct {
	Customers []models.Customer
	Accounts  []*models.Account
}

// Empty reports whether the snapshot holds no entities.
func (s *Snapshot) Empty() bool {
	return s == nil || (len(s.Customers) == 0 && len(s.Accounts) == 0)
}

// Store loads and saves snapshots. Save replaces everything previously stored.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}
