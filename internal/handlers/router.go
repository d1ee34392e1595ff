package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	mW "github.com/ruralpay/ledger/internal/middleware"
)

type RouterConfig struct {
	Ledger *LedgerHandler
	QR     *QRHandler

	// JWTSecret protects the mutating routes when set.
	JWTSecret      string
	SwaggerURL     string
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	if cfg.SwaggerURL != "" {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(cfg.SwaggerURL)))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/customers/{customerId}", cfg.Ledger.GetCustomer)
		r.Get("/accounts/{accountNumber}", cfg.Ledger.GetAccount)
		r.Get("/accounts/{accountNumber}/qr", cfg.QR.GenerateQR)

		r.Group(func(r chi.Router) {
			r.Use(mW.NewAuthMiddleware(cfg.JWTSecret))

			r.Post("/customers", cfg.Ledger.CreateCustomer)
			r.Post("/accounts", cfg.Ledger.OpenAccount)
			r.Post("/accounts/{accountNumber}/deposit", cfg.Ledger.Deposit)
			r.Post("/accounts/{accountNumber}/withdraw", cfg.Ledger.Withdraw)
			r.Post("/accounts/{accountNumber}/interest", cfg.Ledger.ApplyInterest)
			r.Post("/transfers", cfg.Ledger.Transfer)
			r.Post("/qr/resolve", cfg.QR.ProcessQR)
			r.Post("/admin/save", cfg.Ledger.Save)
		})
	})

	return r
}
