package storage

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ruralpay/ledger/internal/models"
)

// Codec converts entities to and from single-line records:
//
//	customerId,name,taxId,nationalId
//	accountNumber,customerId,balance,accountType,rate
//
// Fields are not escaped. When PreserveRates is false the trailing rate is
// ignored on decode and the variant default is used.
type Codec struct {
	PreserveRates bool
}

func (c Codec) EncodeCustomer(cust models.Customer) string {
	id := cust.Identity()
	return strings.Join([]string{cust.ID(), cust.Name(), id.TaxID(), id.NationalID()}, ",")
}

func (c Codec) DecodeCustomer(line string) (models.Customer, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return models.Customer{}, fmt.Errorf("customer record: want 4 fields, got %d", len(parts))
	}
	return c.CustomerFromFields(parts[0], parts[1], parts[2], parts[3])
}

// CustomerFromFields rebuilds a customer, re-validating its identity.
func (c Codec) CustomerFromFields(id, name, taxID, nationalID string) (models.Customer, error) {
	identity, err := models.NewIdentity(taxID, nationalID)
	if err != nil {
		return models.Customer{}, fmt.Errorf("customer record %s: %w", id, err)
	}
	cust, err := models.NewCustomer(id, name, identity)
	if err != nil {
		return models.Customer{}, fmt.Errorf("customer record %s: %w", id, err)
	}
	return cust, nil
}

func (c Codec) EncodeAccount(acc *models.Account) string {
	p := acc.Policy()
	return strings.Join([]string{
		acc.Number(),
		acc.CustomerID(),
		acc.Balance().String(),
		string(p.Kind),
		p.Rate.String(),
	}, ",")
}

func (c Codec) DecodeAccount(line string) (*models.Account, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 && len(parts) != 5 {
		return nil, fmt.Errorf("account record: want 4 or 5 fields, got %d", len(parts))
	}
	balance, err := decimal.NewFromString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("account record %s: balance: %w", parts[0], err)
	}
	var rate *decimal.Decimal
	if len(parts) == 5 {
		r, err := decimal.NewFromString(parts[4])
		if err != nil {
			return nil, fmt.Errorf("account record %s: rate: %w", parts[0], err)
		}
		rate = &r
	}
	return c.AccountFromFields(parts[0], parts[1], balance, parts[3], rate)
}

// AccountFromFields rebuilds an account. A nil rate, or any rate when
// PreserveRates is off, means the variant default.
func (c Codec) AccountFromFields(number, customerID string, balance decimal.Decimal, kind string, rate *decimal.Decimal) (*models.Account, error) {
	k, err := models.ParseAccountKind(kind)
	if err != nil {
		return nil, fmt.Errorf("account record %s: %w", number, err)
	}
	policy := models.Policy{Kind: k, Rate: k.DefaultRate()}
	if c.PreserveRates && rate != nil {
		policy.Rate = *rate
	}
	acc, err := models.RestoreAccount(number, customerID, balance, policy)
	if err != nil {
		return nil, fmt.Errorf("account record %s: %w", number, err)
	}
	return acc, nil
}

// EncodeSnapshot renders all customer and account records.
func (c Codec) EncodeSnapshot(snap *Snapshot) (customers, accounts []string) {
	if snap == nil {
		return nil, nil
	}
	customers = make([]string, 0, len(snap.Customers))
	for _, cust := range snap.Customers {
		customers = append(customers, c.EncodeCustomer(cust))
	}
	accounts = make([]string, 0, len(snap.Accounts))
	for _, acc := range snap.Accounts {
		accounts = append(accounts, c.EncodeAccount(acc))
	}
	return customers, accounts
}

// DecodeSnapshot parses record lines. Blank lines are skipped; any malformed
// record fails the whole snapshot.
func (c Codec) DecodeSnapshot(customers, accounts []string) (*Snapshot, error) {
	snap := &Snapshot{}
	for i, line := range customers {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cust, err := c.DecodeCustomer(line)
		if err != nil {
			return nil, fmt.Errorf("customers line %d: %w", i+1, err)
		}
		snap.Customers = append(snap.Customers, cust)
	}
	for i, line := range accounts {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		acc, err := c.DecodeAccount(line)
		if err != nil {
			return nil, fmt.Errorf("accounts line %d: %w", i+1, err)
		}
		snap.Accounts = append(snap.Accounts, acc)
	}
	return snap, nil
}
