package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentity(t *testing.T) {
	tests := []struct {
		name       string
		taxID      string
		nationalID string
		wantMsg    string
	}{
		{"valid", "ABCDEFGHIJ", "123456789012", ""},
		{"short tax id", "ABCDEFGHI", "123456789012", "bad tax id format"},
		{"long tax id", "ABCDEFGHIJK", "123456789012", "bad tax id format"},
		{"empty tax id", "", "123456789012", "bad tax id format"},
		{"short national id", "ABCDEFGHIJ", "12345678901", "bad national id format"},
		{"empty national id", "ABCDEFGHIJ", "", "bad national id format"},
		{"non numeric national id", "ABCDEFGHIJ", "12345678901A", "national id must be numeric"},
		{"tax id checked first", "ABC", "xyz", "bad tax id format"},
		{"comma in tax id", "ABCDE,GHIJ", "123456789012", "bad tax id format"},
		{"line break in tax id", "ABCDE\nGHIJ", "123456789012", "bad tax id format"},
		{"carriage return in tax id", "ABCDEFGHI\r", "123456789012", "bad tax id format"},
		{"length before digits", "ABCDEFGHIJ", "ABC", "bad national id format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewIdentity(tt.taxID, tt.nationalID)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.taxID, id.TaxID())
				assert.Equal(t, tt.nationalID, id.NationalID())
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidIdentity))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, Identity{}, id)
		})
	}
}

func TestIdentity_MaskedNationalID(t *testing.T) {
	id, err := NewIdentity("ABCDEFGHIJ", "123456789012")
	require.NoError(t, err)
	assert.Equal(t, "...9012", id.MaskedNationalID())
}

func TestNewCustomer(t *testing.T) {
	id, err := NewIdentity("ABCDEFGHIJ", "123456789012")
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		c, err := NewCustomer("CUST-1", "Asha Rao", id)
		require.NoError(t, err)
		assert.Equal(t, "CUST-1", c.ID())
		assert.Equal(t, "Asha Rao", c.Name())
		assert.Equal(t, id, c.Identity())
		assert.Equal(t, "Customer: Asha Rao (ID: CUST-1) | Tax ID: ABCDEFGHIJ | National ID: ...9012", c.Details())
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := NewCustomer("CUST-1", "   ", id)
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("comma in name", func(t *testing.T) {
		_, err := NewCustomer("CUST-1", "Rao, Asha", id)
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("name length limit", func(t *testing.T) {
		_, err := NewCustomer("CUST-1", strings.Repeat("é", MaxNameLength), id)
		assert.NoError(t, err)

		_, err = NewCustomer("CUST-1", strings.Repeat("x", MaxNameLength+1), id)
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("unvalidated identity", func(t *testing.T) {
		_, err := NewCustomer("CUST-1", "Asha", Identity{})
		assert.ErrorIs(t, err, ErrInvalidIdentity)
	})
}
