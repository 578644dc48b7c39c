package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"userhub/internal/model"
	"userhub/internal/repository"
	ws "userhub/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validation errors raised before any storage access.
var (
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
)

// ErrInsufficientCredits is re-exported so handlers can branch on it
// without importing the repository package.
var ErrInsufficientCredits = repository.ErrInsufficientCredits

// --- DTOs ---

type AdjustCreditsRequest struct {
	// Signed amount: positive adds credits, negative spends them. Spends
	// still run through the conditional balance check.
	Amount      int64  `json:"amount" binding:"required"`
	Type        string `json:"transaction_type" binding:"required"`
	Description string `json:"description"`
}

type PurchasePackRequest struct {
	PackID string `json:"pack_id" binding:"required"`
}

type CreatePackRequest struct {
	Name     string `json:"name" binding:"required"`
	Credits  int64  `json:"credits" binding:"required,gt=0"`
	Price    string `json:"price" binding:"required"`
	Currency string `json:"currency" binding:"omitempty,len=3"`
}

type CreditTransactionResponse struct {
	ID          int64  `json:"id"`
	UserID      string `json:"user_id"`
	Amount      int64  `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

type BalanceResponse struct {
	UserID  string `json:"user_id"`
	Credits int64  `json:"credits"`
}

type CreditPackResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Credits  int64           `json:"credits"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// CreditEvent is broadcast over the websocket hub after every successful
// balance mutation.
type CreditEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// CreditService owns all credit balance mutations. Both operations validate
// amounts up front, then delegate to the repository's atomic
// balance-update-plus-ledger-insert transaction.
type CreditService interface {
	AddCredits(ctx context.Context, userID string, amount int64, txType, description string) (*CreditTransactionResponse, error)
	SpendCredits(ctx context.Context, userID string, amount int64, txType, description string) (*CreditTransactionResponse, error)
	Adjust(ctx context.Context, userID string, req AdjustCreditsRequest) (*CreditTransactionResponse, error)
	GetBalance(ctx context.Context, userID string) (*BalanceResponse, error)
	ListTransactions(ctx context.Context, userID string, page, limit int) ([]CreditTransactionResponse, int64, error)

	ListPacks(ctx context.Context) ([]CreditPackResponse, error)
	CreatePack(ctx context.Context, req CreatePackRequest) (*CreditPackResponse, error)
	PurchasePack(ctx context.Context, userID string, req PurchasePackRequest) (*CreditTransactionResponse, error)
}

type creditService struct {
	credits  repository.CreditRepository
	services repository.ServiceRepository
	hub      *ws.Hub
}

func NewCreditService(credits repository.CreditRepository, services repository.ServiceRepository, hub *ws.Hub) CreditService {
	return &creditService{credits: credits, services: services, hub: hub}
}

func (s *creditService) AddCredits(ctx context.Context, userID string, amount int64, txType, description string) (*CreditTransactionResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !model.ValidTxType(txType) {
		return nil, ErrInvalidTransactionType
	}

	entry, err := s.credits.AddCredits(ctx, uid, amount, txType, description)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, entry)
	return toTransactionResponse(entry), nil
}

func (s *creditService) SpendCredits(ctx context.Context, userID string, amount int64, txType, description string) (*CreditTransactionResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !model.ValidTxType(txType) {
		return nil, ErrInvalidTransactionType
	}

	entry, err := s.credits.SpendCredits(ctx, uid, amount, txType, description)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, entry)
	return toTransactionResponse(entry), nil
}

// Adjust is the admin path. The caller supplies a signed amount; the sign
// decides whether it routes through Add or Spend, so negative adjustments
// never bypass the conditional balance check.
func (s *creditService) Adjust(ctx context.Context, userID string, req AdjustCreditsRequest) (*CreditTransactionResponse, error) {
	if !model.ValidTxType(req.Type) {
		return nil, ErrInvalidTransactionType
	}
	if req.Amount > 0 {
		return s.AddCredits(ctx, userID, req.Amount, req.Type, req.Description)
	}
	return s.SpendCredits(ctx, userID, -req.Amount, req.Type, req.Description)
}

func (s *creditService) GetBalance(ctx context.Context, userID string) (*BalanceResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	balance, err := s.credits.GetBalance(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{UserID: userID, Credits: balance}, nil
}

func (s *creditService) ListTransactions(ctx context.Context, userID string, page, limit int) ([]CreditTransactionResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid user id: %w", err)
	}

	entries, total, err := s.credits.ListTransactions(ctx, uid, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]CreditTransactionResponse, 0, len(entries))
	for i := range entries {
		res = append(res, *toTransactionResponse(&entries[i]))
	}
	return res, total, nil
}

func (s *creditService) ListPacks(ctx context.Context) ([]CreditPackResponse, error) {
	packs, err := s.services.ListActiveCreditPacks(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]CreditPackResponse, 0, len(packs))
	for _, p := range packs {
		res = append(res, CreditPackResponse{
			ID:       p.ID.String(),
			Name:     p.Name,
			Credits:  p.Credits,
			Price:    p.Price,
			Currency: p.Currency,
		})
	}
	return res, nil
}

func (s *creditService) CreatePack(ctx context.Context, req CreatePackRequest) (*CreditPackResponse, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}
	if price.IsNegative() {
		return nil, errors.New("price must not be negative")
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	pack := &model.CreditPack{
		Name:     req.Name,
		Credits:  req.Credits,
		Price:    price,
		Currency: currency,
		Active:   true,
	}
	if err := s.services.CreateCreditPack(ctx, pack); err != nil {
		return nil, fmt.Errorf("failed to create credit pack: %w", err)
	}

	return &CreditPackResponse{
		ID:       pack.ID.String(),
		Name:     pack.Name,
		Credits:  pack.Credits,
		Price:    pack.Price,
		Currency: pack.Currency,
	}, nil
}

func (s *creditService) PurchasePack(ctx context.Context, userID string, req PurchasePackRequest) (*CreditTransactionResponse, error) {
	packID, err := uuid.Parse(req.PackID)
	if err != nil {
		return nil, fmt.Errorf("invalid pack id: %w", err)
	}

	pack, err := s.services.FindCreditPackByID(ctx, packID)
	if err != nil {
		return nil, fmt.Errorf("credit pack not found: %w", err)
	}
	if !pack.Active {
		return nil, errors.New("credit pack is no longer available")
	}

	description := fmt.Sprintf("Pack %q (%s %s)", pack.Name, pack.Price.StringFixed(2), pack.Currency)
	return s.AddCredits(ctx, userID, pack.Credits, model.TxTypePurchase, description)
}

func (s *creditService) publishEvent(ctx context.Context, entry *model.CreditTransaction) {
	if s.hub == nil {
		return
	}

	balance, err := s.credits.GetBalance(ctx, entry.UserID)
	if err != nil {
		log.Printf("credit event: balance refresh failed: %v", err)
		return
	}

	payload, err := json.Marshal(CreditEvent{
		Event: "credit.transaction",
		Data: map[string]interface{}{
			"user_id": entry.UserID.String(),
			"amount":  entry.Amount,
			"type":    entry.Type,
			"balance": balance,
		},
	})
	if err != nil {
		log.Printf("credit event: marshal failed: %v", err)
		return
	}
	s.hub.Broadcast <- payload
}

func toTransactionResponse(entry *model.CreditTransaction) *CreditTransactionResponse {
	return &CreditTransactionResponse{
		ID:          entry.ID,
		UserID:      entry.UserID.String(),
		Amount:      entry.Amount,
		Type:        entry.Type,
		Description: entry.Description,
		CreatedAt:   entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
