package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"github.com/ruralpay/ledger/internal/models"
)

var ErrInvalidQRCode = errors.New("invalid or expired QR code")

const DefaultQRTTL = 5 * time.Minute

// QRPayload is what a scanned receive code resolves to.
type QRPayload struct {
	AccountNumber string `json:"accountNumber"`
	CustomerName  string `json:"customerName"`
	Amount        string `json:"amount,omitempty"`
}

type QRCode struct {
	Token     string    `json:"qrCode"`
	Image     string    `json:"qrImage"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// QRService issues single-use codes that let a payer find the account to
// transfer into. Payloads live in Redis under a TTL; without a client they are
// kept in process memory.
type QRService struct {
	ledger *LedgerService
	redis  *redis.Client
	ttl    time.Duration

	mu     sync.Mutex
	memory map[string]memoryEntry

	newToken func() string
	now      func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewQRService(ledger *LedgerService, client *redis.Client, ttl time.Duration) *QRService {
	if ttl <= 0 {
		ttl = DefaultQRTTL
	}
	return &QRService{
		ledger:   ledger,
		redis:    client,
		ttl:      ttl,
		memory:   make(map[string]memoryEntry),
		newToken: func() string { return uuid.New().String() },
		now:      time.Now,
	}
}

// GenerateQRCode issues a code for accountNumber. A nil amount leaves the
// amount to the payer.
func (s *QRService) GenerateQRCode(ctx context.Context, accountNumber string, amount *decimal.Decimal) (*QRCode, error) {
	acc, err := s.ledger.FindAccount(accountNumber)
	if err != nil {
		return nil, err
	}
	cust, err := s.ledger.FindCustomer(acc.CustomerID())
	if err != nil {
		return nil, err
	}

	payload := QRPayload{AccountNumber: acc.Number(), CustomerName: cust.Name()}
	if amount != nil {
		if !amount.IsPositive() {
			return nil, fmt.Errorf("%w: QR amount %s must be positive", models.ErrInvalidAmount, amount)
		}
		payload.Amount = amount.String()
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	token := s.newToken()
	if err := s.put(ctx, token, jsonData); err != nil {
		return nil, err
	}

	qr, err := qrcode.New(token, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return nil, err
	}

	return &QRCode{
		Token:     token,
		Image:     base64.StdEncoding.EncodeToString(buf.Bytes()),
		ExpiresAt: s.now().Add(s.ttl),
	}, nil
}

// ProcessQRCode resolves and consumes a code.
func (s *QRService) ProcessQRCode(ctx context.Context, token string) (*QRPayload, error) {
	data, err := s.take(ctx, token)
	if err != nil {
		return nil, err
	}

	var payload QRPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func qrKey(token string) string {
	return fmt.Sprintf("qr:%s", token)
}

func (s *QRService) put(ctx context.Context, token string, data []byte) error {
	if s.redis != nil {
		return s.redis.Set(ctx, qrKey(token), string(data), s.ttl).Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	s.memory[token] = memoryEntry{data: data, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *QRService) take(ctx context.Context, token string) ([]byte, error) {
	if s.redis != nil {
		data, err := s.redis.GetDel(ctx, qrKey(token)).Bytes()
		if err == redis.Nil {
			return nil, ErrInvalidQRCode
		}
		if err != nil {
			return nil, err
		}
		return data, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.memory[token]
	delete(s.memory, token)
	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, ErrInvalidQRCode
	}
	return entry.data, nil
}

// sweep drops expired in-memory codes; callers hold mu.
func (s *QRService) sweep(now time.Time) {
	for token, entry := range s.memory {
		if !now.Before(entry.expiresAt) {
			delete(s.memory, token)
		}
	}
}
