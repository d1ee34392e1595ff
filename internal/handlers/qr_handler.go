package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ruralpay/ledger/internal/services"
)

type QRHandler struct {
	service   *services.QRService
	validator *services.ValidationHelper
}

func NewQRHandler(service *services.QRService) *QRHandler {
	return &QRHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

type ProcessQRRequest struct {
	QRData string `json:"qrData" validate:"required"`
}

// GenerateQR issues a receive code for an account
// @Summary Generate QR Code
// @Description Generate a single-use QR code that resolves to the account, optionally with a requested amount
// @Tags QR
// @Produce json
// @Param accountNumber path string true "Account number"
// @Param amount query string false "Requested amount"
// @Success 200 {object} services.QRCode
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{accountNumber}/qr [get]
func (h *QRHandler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	var amount *decimal.Decimal
	if raw := r.URL.Query().Get("amount"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			services.SendErrorResponse(w, "Invalid amount", http.StatusBadRequest, nil)
			return
		}
		amount = &parsed
	}

	code, err := h.service.GenerateQRCode(r.Context(), chi.URLParam(r, "accountNumber"), amount)
	if err != nil {
		services.SendLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, code)
}

// ProcessQR resolves a scanned QR code
// @Summary Process QR Code
// @Description Resolve a scanned QR code to the receiving account. Codes are single use.
// @Tags QR
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProcessQRRequest true "QR processing request"
// @Success 200 {object} services.QRPayload
// @Failure 400 {object} services.ErrorResponse
// @Router /qr/resolve [post]
func (h *QRHandler) ProcessQR(w http.ResponseWriter, r *http.Request) {
	var req ProcessQRRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	payload, err := h.service.ProcessQRCode(r.Context(), req.QRData)
	if errors.Is(err, services.ErrInvalidQRCode) {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err != nil {
		services.SendErrorResponse(w, "Failed to resolve QR code", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}
