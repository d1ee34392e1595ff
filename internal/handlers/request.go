package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ruralpay/ledger/internal/models"
	"github.com/ruralpay/ledger/internal/services"
)

const maxBodyBytes = 1_048_576

// decodeJSON reads exactly one JSON object into dst and validates it. It
// writes the error response itself and reports whether the handler may go on.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *services.ValidationHelper, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}

	if err := v.ValidateStruct(dst); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type CustomerResponse struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	TaxID      string `json:"taxId"`
	NationalID string `json:"nationalId"`
	Details    string `json:"details"`
}

func customerResponse(c models.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID: c.ID(),
		Name:       c.Name(),
		TaxID:      c.Identity().TaxID(),
		NationalID: c.Identity().MaskedNationalID(),
		Details:    c.Details(),
	}
}

type AccountResponse struct {
	AccountNumber  string           `json:"accountNumber"`
	CustomerID     string           `json:"customerId"`
	Type           string           `json:"type"`
	Balance        decimal.Decimal  `json:"balance"`
	Available      decimal.Decimal  `json:"available"`
	InterestRate   *decimal.Decimal `json:"interestRate,omitempty"`
	OverdraftLimit *decimal.Decimal `json:"overdraftLimit,omitempty"`
	Details        string           `json:"details"`
}

func accountResponse(a *models.Account) AccountResponse {
	resp := AccountResponse{
		AccountNumber: a.Number(),
		CustomerID:    a.CustomerID(),
		Type:          string(a.Kind()),
		Balance:       a.Balance(),
		Available:     a.Available(),
		Details:       a.Details(),
	}
	if rate, ok := a.InterestRate(); ok {
		resp.InterestRate = &rate
	}
	if limit, ok := a.OverdraftLimit(); ok {
		resp.OverdraftLimit = &limit
	}
	return resp
}
