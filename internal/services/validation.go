package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ruralpay/ledger/internal/models"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper. Decimal fields are
// validated through their string form, and two ledger tags are registered:
// positive_amount and account_kind.
func NewValidationHelper() *ValidationHelper {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("positive_amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})
	_ = v.RegisterValidation("account_kind", func(fl validator.FieldLevel) bool {
		_, err := models.ParseAccountKind(fl.Field().String())
		return err == nil
	})
	return &ValidationHelper{
		validator: v,
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	var fieldErrs validator.ValidationErrors
	if errors.As(validationErr, &fieldErrs) {
		errorResp.Details = make(map[string]string)
		for _, err := range fieldErrs {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}

// StatusForError maps ledger errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrCustomerNotFound), errors.Is(err, models.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidIdentity),
		errors.Is(err, models.ErrInvalidName),
		errors.Is(err, models.ErrInvalidAccountKind),
		errors.Is(err, models.ErrSameAccount),
		errors.Is(err, models.ErrUnsupportedOperation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// SendLedgerError writes err with the status StatusForError picks.
func SendLedgerError(w http.ResponseWriter, err error) {
	SendErrorResponse(w, err.Error(), StatusForError(err), nil)
}
