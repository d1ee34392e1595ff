// Package shell is the interactive teller menu over a ledger.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/services"
	"github.com/ruralpay/ledger/internal/storage"
)

type Shell struct {
	ledger *services.LedgerService
	store  storage.Store
	in     *bufio.Scanner
	out    io.Writer

	title *color.Color
	ok    *color.Color
	fail  *color.Color
}

func New(ledger *services.LedgerService, store storage.Store, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		ledger: ledger,
		store:  store,
		in:     bufio.NewScanner(in),
		out:    out,
		title:  color.New(color.FgCyan, color.Bold),
		ok:     color.New(color.FgGreen),
		fail:   color.New(color.FgRed),
	}
}

// Run shows the menu until the operator picks save and exit or input ends.
// Both paths save the ledger.
func (s *Shell) Run(ctx context.Context) error {
	for {
		s.printMenu()
		choice, err := s.readInt("Enter your choice: ")
		if err != nil {
			return s.saveAndExit(ctx)
		}

		switch choice {
		case 1:
			err = s.createCustomer()
		case 2:
			err = s.openAccount()
		case 3:
			err = s.deposit()
		case 4:
			err = s.withdraw()
		case 5:
			err = s.transfer()
		case 6:
			err = s.accountDetails()
		case 7:
			err = s.customerDetails()
		case 8:
			err = s.applyInterest()
		case 9:
			return s.saveAndExit(ctx)
		default:
			s.fail.Fprintln(s.out, "Invalid choice. Please try again.")
		}
		if errors.Is(err, io.EOF) {
			return s.saveAndExit(ctx)
		}
	}
}

func (s *Shell) printMenu() {
	fmt.Fprintln(s.out)
	s.title.Fprintln(s.out, "--- Branch Ledger ---")
	fmt.Fprintln(s.out, "1. Create New Customer (with KYC)")
	fmt.Fprintln(s.out, "2. Open New Bank Account")
	fmt.Fprintln(s.out, "3. Deposit Funds")
	fmt.Fprintln(s.out, "4. Withdraw Funds")
	fmt.Fprintln(s.out, "5. Transfer Funds")
	fmt.Fprintln(s.out, "6. Check Account Balance & Details")
	fmt.Fprintln(s.out, "7. View Customer Details")
	fmt.Fprintln(s.out, "8. Apply Savings Interest")
	fmt.Fprintln(s.out, "9. Save and Exit")
}

func (s *Shell) createCustomer() error {
	name, err := s.readLine("Enter customer name: ")
	if err != nil {
		return err
	}
	taxID, err := s.readLine("Enter tax id (10 characters): ")
	if err != nil {
		return err
	}
	nationalID, err := s.readLine("Enter 12-digit national id: ")
	if err != nil {
		return err
	}

	cust, err := s.ledger.CreateCustomer(name, taxID, nationalID)
	if err != nil {
		s.fail.Fprintf(s.out, "Customer creation failed: %v\n", err)
		return nil
	}
	s.ok.Fprintf(s.out, "Customer created successfully! ID: %s\n", cust.ID())
	return nil
}

func (s *Shell) openAccount() error {
	customerID, err := s.readLine("Enter existing Customer ID: ")
	if err != nil {
		return err
	}
	if _, err := s.ledger.FindCustomer(customerID); err != nil {
		s.fail.Fprintf(s.out, "Error: %v\n", err)
		return nil
	}

	choice, err := s.readLine("Enter account type (1: Savings, 2: Current): ")
	if err != nil {
		return err
	}
	deposit, err := s.readAmount("Enter initial deposit amount: ")
	if err != nil {
		return err
	}
	if !deposit.IsPositive() {
		s.fail.Fprintln(s.out, "Initial deposit must be positive.")
		return nil
	}

	var kind models.AccountKind
	switch choice {
	case "1":
		kind = models.KindSavings
	case "2":
		kind = models.KindCurrent
	default:
		s.fail.Fprintln(s.out, "Invalid account type.")
		return nil
	}

	acc, err := s.ledger.OpenAccount(customerID, kind, deposit)
	if err != nil {
		s.fail.Fprintf(s.out, "Error: %v\n", err)
		return nil
	}
	s.ok.Fprintf(s.out, "Account opened successfully! Number: %s\n", acc.Number())
	return nil
}

func (s *Shell) deposit() error {
	number, amount, found, err := s.readAccountAndAmount("Enter amount to deposit: ")
	if err != nil || !found {
		return err
	}
	acc, err := s.ledger.Deposit(number, amount)
	if err != nil {
		s.fail.Fprintf(s.out, "Error: %v\n", err)
		return nil
	}
	s.ok.Fprintf(s.out, "Deposited %s. New balance: %s\n", amount.StringFixed(2), acc.Balance().StringFixed(2))
	return nil
}

func (s *Shell) withdraw() error {
	number, amount, found, err := s.readAccountAndAmount("Enter amount to withdraw: ")
	if err != nil || !found {
		return err
	}
	acc, err := s.ledger.Withdraw(number, amount)
	if err != nil {
		s.fail.Fprintf(s.out, "Error: %v\n", err)
		return nil
	}
	s.ok.Fprintf(s.out, "Withdrew %s. New balance: %s\n", amount.StringFixed(2), acc.Balance().StringFixed(2))
	return nil
}

func (s *Shell) readAccountAndAmount(prompt string) (string, decimal.Decimal, bool, error) {
	number, err := s.readLine("Enter Account Number: ")
	if err != nil {
		return "", decimal.Zero, false, err
	}
	if _, err := s.ledger.FindAccount(number); err != nil {
		s.fail.Fprintf(s.out, "Error: %v\n", err)
		return "", decimal.Zero, false, nil
	}
	amount, err := s.readAmount(prompt)
	if err != nil {
		return "", decimal.Zero, false, err
	}
	return number, amount, true, nil
}

func (s *Shell) transfer() error {
	from, err := s.readLine("Enter YOUR Account Number: ")
	if err != nil {
		return err
	}
	to, err := s.readLine("Enter Recipient Account Number: ")
	if err != nil {
		return err
	}
	amount, err := s.readAmount("Enter amount to transfer: ")
	if err != nil {
		return err
	}

	if _, err := s.ledger.Transfer(from, to, amount); err != nil {
		s.fail.Fprintf(s.out, "Transfer Failed: %v\n", err)
		return nil
	}
	s.ok.Fprintln(s.out, "Transfer successful!")
	return nil
}

func (s *Shell) accountDetails() error {
	number, err := s.readLine("Enter Account Number: ")
	if err != nil {
		return err
	}
	acc, err := s.ledger.FindAccount(number)
	if err != nil {
		s.fail.Fprintf(s.out, "Error: %v\n", err)
		return nil
	}
	fmt.Fprintln(s.out, acc.Details())
	return nil
}

func (s *Shell) customerDetails() error {
	id, err := s.readLine("Enter Customer ID: ")
	if err != nil {
		return err
	}
	cust, accounts, err := s.ledger.CustomerAccounts(id)
	if err != nil {
		s.fail.Fprintf(s.out, "Error: %v\n", err)
		return nil
	}
	fmt.Fprintln(s.out, cust.Details())
	fmt.Fprintln(s.out, "Associated Accounts:")
	for _, acc := range accounts {
		fmt.Fprintf(s.out, " -> %s\n", acc.Details())
	}
	return nil
}

func (s *Shell) applyInterest() error {
	number, err := s.readLine("Enter Account Number: ")
	if err != nil {
		return err
	}
	acc, interest, err := s.ledger.ApplyInterest(number)
	if err != nil {
		s.fail.Fprintf(s.out, "Error: %v\n", err)
		return nil
	}
	s.ok.Fprintf(s.out, "Interest of %s credited. New balance: %s\n", interest.StringFixed(2), acc.Balance().StringFixed(2))
	return nil
}

func (s *Shell) saveAndExit(ctx context.Context) error {
	if err := s.ledger.Save(ctx, s.store); err != nil {
		s.fail.Fprintf(s.out, "Error saving data: %v\n", err)
		return err
	}
	fmt.Fprintln(s.out, "Thank you for banking with us. Data saved.")
	return nil
}

func (s *Shell) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) readInt(prompt string) (int, error) {
	for {
		line, err := s.readLine(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil {
			return n, nil
		}
		s.fail.Fprintln(s.out, "Invalid input. Please enter a whole number.")
	}
}

func (s *Shell) readAmount(prompt string) (decimal.Decimal, error) {
	for {
		line, err := s.readLine(prompt)
		if err != nil {
			return decimal.Zero, err
		}
		amount, err := decimal.NewFromString(line)
		if err == nil {
			return amount, nil
		}
		s.fail.Fprintln(s.out, "Invalid input. Please enter a number (e.g., 500.00).")
	}
}
