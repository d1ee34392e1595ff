package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/storage"
)

const (
	customerPrefix    = "CUST-"
	accountPrefix     = "ACCT-"
	accountNumberBase = 1000
)

// TransferResult describes a completed transfer. Both accounts are copies
// taken after the credit leg.
type TransferResult struct {
	Reference string
	From      *models.Account
	To        *models.Account
	Amount    decimal.Decimal
}

// LedgerService owns every customer and account of the branch. All reads and
// mutations hold mu; accounts handed to callers are copies.
type LedgerService struct {
	mu sync.Mutex

	customers   []models.Customer
	customerIdx map[string]int
	accounts    []*models.Account
	accountIdx  map[string]int

	customerSeq int
	accountSeq  int

	activity *ActivityLogger
	// credit applies the second leg of a transfer.
	credit func(*models.Account, decimal.Decimal) error
}

func NewLedgerService(activity *ActivityLogger) *LedgerService {
	if activity == nil {
		activity = NewActivityLogger(zerolog.Nop())
	}
	return &LedgerService{
		customerIdx: make(map[string]int),
		accountIdx:  make(map[string]int),
		activity:    activity,
		credit:      (*models.Account).Deposit,
	}
}

// OpenLedger loads the ledger from store. A load failure is logged and the
// ledger starts empty.
func OpenLedger(ctx context.Context, store storage.Store, activity *ActivityLogger, logger zerolog.Logger) *LedgerService {
	l := NewLedgerService(activity)
	snap, err := store.Load(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load ledger, starting empty")
		return l
	}
	if err := l.Restore(snap); err != nil {
		logger.Error().Err(err).Msg("failed to restore ledger, starting empty")
		return NewLedgerService(activity)
	}
	if !snap.Empty() {
		logger.Info().
			Int("customers", len(snap.Customers)).
			Int("accounts", len(snap.Accounts)).
			Msg("ledger loaded")
	}
	return l
}

func (l *LedgerService) CreateCustomer(name, taxID, nationalID string) (models.Customer, error) {
	identity, err := models.NewIdentity(taxID, nationalID)
	if err != nil {
		l.activity.LogError("CREATE_CUSTOMER", name, err)
		return models.Customer{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id := customerPrefix + strconv.Itoa(l.customerSeq+1)
	cust, err := models.NewCustomer(id, name, identity)
	if err != nil {
		l.activity.LogError("CREATE_CUSTOMER", name, err)
		return models.Customer{}, err
	}
	l.customerSeq++
	l.customerIdx[id] = len(l.customers)
	l.customers = append(l.customers, cust)

	l.activity.LogOperation("CREATE_CUSTOMER", id, "national id "+identity.MaskedNationalID())
	return cust, nil
}

func (l *LedgerService) OpenAccount(customerID string, kind models.AccountKind, initialDeposit decimal.Decimal) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.customerIdx[customerID]; !ok {
		err := fmt.Errorf("%w: %s", models.ErrCustomerNotFound, customerID)
		l.activity.LogError("OPEN_ACCOUNT", customerID, err)
		return nil, err
	}

	number := accountPrefix + strconv.Itoa(accountNumberBase+l.accountSeq+1)
	acc, err := models.NewAccount(kind, number, customerID, initialDeposit)
	if err != nil {
		l.activity.LogError("OPEN_ACCOUNT", customerID, err)
		return nil, err
	}
	l.accountSeq++
	l.accountIdx[number] = len(l.accounts)
	l.accounts = append(l.accounts, acc)

	l.activity.LogOperation("OPEN_ACCOUNT", number, fmt.Sprintf("%s for %s, initial %s", kind, customerID, initialDeposit))
	return acc.Clone(), nil
}

func (l *LedgerService) Deposit(number string, amount decimal.Decimal) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, err := l.account(number)
	if err == nil {
		err = acc.Deposit(amount)
	}
	if err != nil {
		l.activity.LogError("DEPOSIT", number, err)
		return nil, err
	}
	l.activity.LogOperation("DEPOSIT", number, "amount "+amount.String())
	return acc.Clone(), nil
}

func (l *LedgerService) Withdraw(number string, amount decimal.Decimal) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, err := l.account(number)
	if err == nil {
		err = acc.Withdraw(amount)
	}
	if err != nil {
		l.activity.LogError("WITHDRAW", number, err)
		return nil, err
	}
	l.activity.LogOperation("WITHDRAW", number, "amount "+amount.String())
	return acc.Clone(), nil
}

// Transfer moves amount between two accounts. Both legs are validated before
// either is applied, and a failed credit restores the debited account, so a
// failed transfer changes no balance.
func (l *LedgerService) Transfer(fromNumber, toNumber string, amount decimal.Decimal) (*TransferResult, error) {
	reference := uuid.New().String()

	l.mu.Lock()
	defer l.mu.Unlock()

	src, dst, err := l.transferLegs(fromNumber, toNumber, amount)
	if err != nil {
		l.activity.LogTransfer(reference, fromNumber, toNumber, amount, "REJECTED")
		l.activity.LogError("TRANSFER", fromNumber, err)
		return nil, err
	}

	srcBefore, dstBefore := src.Clone(), dst.Clone()
	if err := src.Withdraw(amount); err != nil {
		l.activity.LogError("TRANSFER", fromNumber, err)
		return nil, err
	}
	if err := l.credit(dst, amount); err != nil {
		*src, *dst = *srcBefore, *dstBefore
		err = fmt.Errorf("credit %s: %w", toNumber, err)
		l.activity.LogTransfer(reference, fromNumber, toNumber, amount, "REVERSED")
		l.activity.LogError("TRANSFER", toNumber, err)
		return nil, err
	}

	l.activity.LogTransfer(reference, fromNumber, toNumber, amount, "COMPLETED")
	return &TransferResult{
		Reference: reference,
		From:      src.Clone(),
		To:        dst.Clone(),
		Amount:    amount,
	}, nil
}

func (l *LedgerService) transferLegs(fromNumber, toNumber string, amount decimal.Decimal) (*models.Account, *models.Account, error) {
	src, err := l.account(fromNumber)
	if err != nil {
		return nil, nil, err
	}
	dst, err := l.account(toNumber)
	if err != nil {
		return nil, nil, err
	}
	if fromNumber == toNumber {
		return nil, nil, fmt.Errorf("%w: %s", models.ErrSameAccount, fromNumber)
	}
	if err := src.CheckWithdraw(amount); err != nil {
		return nil, nil, err
	}
	if err := dst.CheckDeposit(amount); err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

// ApplyInterest credits one period of interest to a savings account and
// returns the account with the interest credited.
func (l *LedgerService) ApplyInterest(number string) (*models.Account, decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, err := l.account(number)
	if err != nil {
		l.activity.LogError("APPLY_INTEREST", number, err)
		return nil, decimal.Zero, err
	}
	interest, err := acc.ApplyInterest()
	if err != nil {
		l.activity.LogError("APPLY_INTEREST", number, err)
		return nil, decimal.Zero, err
	}
	l.activity.LogOperation("APPLY_INTEREST", number, "interest "+interest.String())
	return acc.Clone(), interest, nil
}

func (l *LedgerService) FindCustomer(id string) (models.Customer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.customerIdx[id]
	if !ok {
		return models.Customer{}, fmt.Errorf("%w: %s", models.ErrCustomerNotFound, id)
	}
	return l.customers[i], nil
}

func (l *LedgerService) FindAccount(number string) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, err := l.account(number)
	if err != nil {
		return nil, err
	}
	return acc.Clone(), nil
}

// CustomerAccounts returns a customer and the accounts linked to it in the
// order they were opened.
func (l *LedgerService) CustomerAccounts(id string) (models.Customer, []*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.customerIdx[id]
	if !ok {
		return models.Customer{}, nil, fmt.Errorf("%w: %s", models.ErrCustomerNotFound, id)
	}
	var linked []*models.Account
	for _, acc := range l.accounts {
		if acc.CustomerID() == id {
			linked = append(linked, acc.Clone())
		}
	}
	return l.customers[i], linked, nil
}

// Snapshot copies the full state for persistence.
func (l *LedgerService) Snapshot() *storage.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := &storage.Snapshot{
		Customers: append([]models.Customer(nil), l.customers...),
		Accounts:  make([]*models.Account, 0, len(l.accounts)),
	}
	for _, acc := range l.accounts {
		snap.Accounts = append(snap.Accounts, acc.Clone())
	}
	return snap
}

// Restore replaces the ledger state with snap. Duplicate identifiers are
// rejected and leave the ledger unchanged.
func (l *LedgerService) Restore(snap *storage.Snapshot) error {
	if snap == nil {
		snap = &storage.Snapshot{}
	}

	customerIdx := make(map[string]int, len(snap.Customers))
	customerSeq := len(snap.Customers)
	for i, c := range snap.Customers {
		if _, dup := customerIdx[c.ID()]; dup {
			return fmt.Errorf("restore: duplicate customer %s", c.ID())
		}
		customerIdx[c.ID()] = i
		if n, ok := idSuffix(c.ID(), customerPrefix); ok && n > customerSeq {
			customerSeq = n
		}
	}

	accountIdx := make(map[string]int, len(snap.Accounts))
	accountSeq := len(snap.Accounts)
	accounts := make([]*models.Account, 0, len(snap.Accounts))
	for i, acc := range snap.Accounts {
		if _, dup := accountIdx[acc.Number()]; dup {
			return fmt.Errorf("restore: duplicate account %s", acc.Number())
		}
		accountIdx[acc.Number()] = i
		accounts = append(accounts, acc.Clone())
		if n, ok := idSuffix(acc.Number(), accountPrefix); ok && n-accountNumberBase > accountSeq {
			accountSeq = n - accountNumberBase
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.customers = append([]models.Customer(nil), snap.Customers...)
	l.customerIdx = customerIdx
	l.customerSeq = customerSeq
	l.accounts = accounts
	l.accountIdx = accountIdx
	l.accountSeq = accountSeq

	for _, acc := range accounts {
		if _, ok := customerIdx[acc.CustomerID()]; !ok {
			l.activity.LogError("RESTORE", acc.Number(), fmt.Errorf("%w: %s", models.ErrCustomerNotFound, acc.CustomerID()))
		}
	}
	return nil
}

// Save persists a snapshot through store. The lock is released before any I/O.
func (l *LedgerService) Save(ctx context.Context, store storage.Store) error {
	snap := l.Snapshot()
	if err := store.Save(ctx, snap); err != nil {
		l.activity.LogError("SAVE", "ledger", err)
		return fmt.Errorf("save ledger: %w", err)
	}
	l.activity.LogOperation("SAVE", "ledger", fmt.Sprintf("%d customers, %d accounts", len(snap.Customers), len(snap.Accounts)))
	return nil
}

// account looks up a live account; callers hold mu.
func (l *LedgerService) account(number string) (*models.Account, error) {
	i, ok := l.accountIdx[number]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrAccountNotFound, number)
	}
	return l.accounts[i], nil
}

func idSuffix(id, prefix string) (int, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
	if err != nil {
		return 0, false
	}
	return n, true
}
