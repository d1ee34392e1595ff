package services

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ActivityLogger writes one structured line per ledger mutation. Nothing is
// kept in memory.
type ActivityLogger struct {
	logger zerolog.Logger
}

func NewActivityLogger(logger zerolog.Logger) *ActivityLogger {
	return &ActivityLogger{logger: logger.With().Str("component", "ledger").Logger()}
}

func (a *ActivityLogger) LogTransfer(reference, fromAccount, toAccount string, amount decimal.Decimal, status string) {
	a.logger.Info().
		Str("event_type", "TRANSFER").
		Str("reference", reference).
		Str("from_account", fromAccount).
		Str("to_account", toAccount).
		Str("amount", amount.String()).
		Str("status", status).
		Msg("transfer")
}

func (a *ActivityLogger) LogError(operation, subject string, err error) {
	a.logger.Warn().
		Str("event_type", operation).
		Str("subject", subject).
		Str("status", "FAILED").
		Err(err).
		Msg("operation rejected")
}

func (a *ActivityLogger) LogOperation(operation, subject, details string) {
	a.logger.Info().
		Str("event_type", operation).
		Str("subject", subject).
		Str("status", "SUCCESS").
		Str("details", details).
		Msg("operation applied")
}
