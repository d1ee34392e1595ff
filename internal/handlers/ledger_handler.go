package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/services"
	"github.com/ruralpay/ledger/internal/storage"
)

type LedgerHandler struct {
	ledger    *services.LedgerService
	receipts  *services.ReceiptService
	store     storage.Store
	validator *services.ValidationHelper
	logger    zerolog.Logger
}

func NewLedgerHandler(ledger *services.LedgerService, receipts *services.ReceiptService, store storage.Store, logger zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledger:    ledger,
		receipts:  receipts,
		store:     store,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

type CreateCustomerRequest struct {
	Name       string `json:"name" validate:"required"`
	TaxID      string `json:"taxId" validate:"required"`
	NationalID string `json:"nationalId" validate:"required"`
}

type OpenAccountRequest struct {
	CustomerID     string          `json:"customerId" validate:"required"`
	Type           string          `json:"type" validate:"required,account_kind"`
	InitialDeposit decimal.Decimal `json:"initialDeposit" validate:"positive_amount"`
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"positive_amount"`
}

type TransferRequest struct {
	FromAccount string          `json:"fromAccount" validate:"required"`
	ToAccount   string          `json:"toAccount" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"positive_amount"`
}

type CustomerDetailsResponse struct {
	Customer CustomerResponse  `json:"customer"`
	Accounts []AccountResponse `json:"accounts"`
}

type InterestResponse struct {
	Account  AccountResponse `json:"account"`
	Interest decimal.Decimal `json:"interest"`
}

type TransferResponse struct {
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	FromAccount AccountResponse `json:"fromAccount"`
	ToAccount   AccountResponse `json:"toAccount"`
	Pacs008     string          `json:"pacs008,omitempty"`
	Pacs002     string          `json:"pacs002,omitempty"`
}

// CreateCustomer registers a customer after KYC validation
// @Summary Create customer
// @Description Create a customer with a validated tax id and national id
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCustomerRequest true "Customer details"
// @Success 201 {object} CustomerResponse
// @Failure 400 {object} services.ErrorResponse
// @Router /customers [post]
func (h *LedgerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	cust, err := h.ledger.CreateCustomer(req.Name, req.TaxID, req.NationalID)
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, customerResponse(cust))
}

// GetCustomer returns a customer and its accounts
// @Summary Customer details
// @Tags customers
// @Produce json
// @Param customerId path string true "Customer ID"
// @Success 200 {object} CustomerDetailsResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /customers/{customerId} [get]
func (h *LedgerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	cust, accounts, err := h.ledger.CustomerAccounts(chi.URLParam(r, "customerId"))
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	resp := CustomerDetailsResponse{Customer: customerResponse(cust), Accounts: []AccountResponse{}}
	for _, acc := range accounts {
		resp.Accounts = append(resp.Accounts, accountResponse(acc))
	}
	writeJSON(w, http.StatusOK, resp)
}

// OpenAccount opens a savings or current account
// @Summary Open account
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OpenAccountRequest true "Account details"
// @Success 201 {object} AccountResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts [post]
func (h *LedgerHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req OpenAccountRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	kind, err := models.ParseAccountKind(req.Type)
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	acc, err := h.ledger.OpenAccount(req.CustomerID, kind, req.InitialDeposit)
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, accountResponse(acc))
}

// GetAccount returns balance and details of an account
// @Summary Account details
// @Tags accounts
// @Produce json
// @Param accountNumber path string true "Account number"
// @Success 200 {object} AccountResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{accountNumber} [get]
func (h *LedgerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := h.ledger.FindAccount(chi.URLParam(r, "accountNumber"))
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse(acc))
}

// Deposit credits an account
// @Summary Deposit
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountNumber path string true "Account number"
// @Param request body AmountRequest true "Amount"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{accountNumber}/deposit [post]
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	acc, err := h.ledger.Deposit(chi.URLParam(r, "accountNumber"), req.Amount)
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse(acc))
}

// Withdraw debits an account within its variant limit
// @Summary Withdraw
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountNumber path string true "Account number"
// @Param request body AmountRequest true "Amount"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /accounts/{accountNumber}/withdraw [post]
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	acc, err := h.ledger.Withdraw(chi.URLParam(r, "accountNumber"), req.Amount)
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse(acc))
}

// ApplyInterest credits one period of interest to a savings account
// @Summary Apply interest
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param accountNumber path string true "Account number"
// @Success 200 {object} InterestResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{accountNumber}/interest [post]
func (h *LedgerHandler) ApplyInterest(w http.ResponseWriter, r *http.Request) {
	acc, interest, err := h.ledger.ApplyInterest(chi.URLParam(r, "accountNumber"))
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, InterestResponse{Account: accountResponse(acc), Interest: interest})
}

// Transfer moves funds between two accounts atomically
// @Summary Transfer
// @Description Transfer funds; format=iso20022 adds pacs.008 and pacs.002 XML to the response
// @Tags transfers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param format query string false "iso20022"
// @Param request body TransferRequest true "Transfer"
// @Success 200 {object} TransferResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /transfers [post]
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	res, err := h.ledger.Transfer(req.FromAccount, req.ToAccount, req.Amount)
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	resp := TransferResponse{
		Reference:   res.Reference,
		Amount:      res.Amount,
		FromAccount: accountResponse(res.From),
		ToAccount:   accountResponse(res.To),
	}
	if r.URL.Query().Get("format") == "iso20022" {
		if err := h.attachReceipts(&resp, res); err != nil {
			h.logger.Error().Err(err).Str("reference", res.Reference).Msg("transfer receipt")
			services.SendErrorResponse(w, "Transfer completed but receipt could not be built", http.StatusInternalServerError, nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) attachReceipts(resp *TransferResponse, res *services.TransferResult) error {
	debtor, err := h.ledger.FindCustomer(res.From.CustomerID())
	if err != nil {
		return err
	}
	creditor, err := h.ledger.FindCustomer(res.To.CustomerID())
	if err != nil {
		return err
	}
	pacs008, err := h.receipts.CreditTransfer(res, debtor, creditor)
	if err != nil {
		return err
	}
	if resp.Pacs008, err = h.receipts.ToXML(pacs008); err != nil {
		return err
	}
	status := h.receipts.StatusReport(res.Reference, res.From.Number(), res.To.Number(), services.StatusAccepted)
	resp.Pacs002, err = h.receipts.ToXML(status)
	return err
}

// Save persists the ledger through the configured store
// @Summary Save ledger
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{status=string}
// @Failure 500 {object} services.ErrorResponse
// @Router /admin/save [post]
func (h *LedgerHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Save(r.Context(), h.store); err != nil {
		h.logger.Error().Err(err).Msg("save ledger")
		services.SendErrorResponse(w, "Failed to save ledger", http.StatusInternalServerError, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
