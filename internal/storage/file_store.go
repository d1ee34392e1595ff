package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	DefaultCustomersFile = "bank_customers.csv"
	DefaultAccountsFile  = "bank_accounts.csv"

	// maxRecordBytes bounds a single line on read, well above any record the
	// ledger can produce.
	maxRecordBytes = 1 << 20
)

// FileStore keeps customers and accounts in two line-oriented files.
type FileStore struct {
	CustomersPath string
	AccountsPath  string
	codec         Codec
}

func NewFileStore(customersPath, accountsPath string, preserveRates bool) *FileStore {
	if customersPath == "" {
		customersPath = DefaultCustomersFile
	}
	if accountsPath == "" {
		accountsPath = DefaultAccountsFile
	}
	return &FileStore{
		CustomersPath: customersPath,
		AccountsPath:  accountsPath,
		codec:         Codec{PreserveRates: preserveRates},
	}
}

// Load reads both files. A missing file contributes no records.
func (s *FileStore) Load(ctx context.Context) (*Snapshot, error) {
	customers, err := readLines(s.CustomersPath)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	accounts, err := readLines(s.AccountsPath)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return s.codec.DecodeSnapshot(customers, accounts)
}

// Save overwrites both files. Each file is written to a temp file first and
// renamed into place. A cancelled context stops the save before either file
// is touched.
func (s *FileStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	customers, accounts := s.codec.EncodeSnapshot(snap)
	if err := writeLines(s.CustomersPath, customers); err != nil {
		return fmt.Errorf("save customers: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeLines(s.AccountsPath, accounts); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func writeLines(path string, lines []string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
