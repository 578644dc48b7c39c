package repository

import (
	"context"
	"errors"

	"userhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInsufficientCredits is returned by SpendCredits when the conditional
// balance check fails. Callers must be able to tell this apart from a
// storage failure, so it is a sentinel rather than a wrapped gorm error.
var ErrInsufficientCredits = errors.New("insufficient credits")

// CreditRepository is the single writer for User.Credits and the
// credit_transactions ledger. No other code path mutates either.
type CreditRepository interface {
	// AddCredits increments the balance and appends a positive ledger row,
	// both inside one transaction. amount must be > 0 (enforced by the service).
	AddCredits(ctx context.Context, userID uuid.UUID, amount int64, txType, description string) (*model.CreditTransaction, error)
	// SpendCredits decrements the balance if and only if it is at least
	// amount, and appends a negative ledger row in the same transaction.
	// Returns ErrInsufficientCredits without any state change otherwise.
	SpendCredits(ctx context.Context, userID uuid.UUID, amount int64, txType, description string) (*model.CreditTransaction, error)
	// GetBalance re-reads the authoritative credits column.
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
	// ListTransactions returns ledger rows newest first by (created_at, id).
	ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.CreditTransaction, int64, error)
}

type creditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepository{db: db}
}

func (r *creditRepository) AddCredits(ctx context.Context, userID uuid.UUID, amount int64, txType, description string) (*model.CreditTransaction, error) {
	entry := &model.CreditTransaction{
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Description: description,
	}

	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ?", userID).
			UpdateColumn("credits", gorm.Expr("credits + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *creditRepository) SpendCredits(ctx context.Context, userID uuid.UUID, amount int64, txType, description string) (*model.CreditTransaction, error) {
	entry := &model.CreditTransaction{
		UserID:      userID,
		Amount:      -amount,
		Type:        txType,
		Description: description,
	}

	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		// Conditional update: the balance check and the decrement are one
		// statement, so two concurrent spends can never both pass the check.
		res := tx.Model(&model.User{}).
			Where("id = ? AND credits >= ?", userID, amount).
			UpdateColumn("credits", gorm.Expr("credits - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrInsufficientCredits
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *creditRepository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := GetDB(ctx, r.db).Model(&model.User{}).
		Where("id = ?", userID).
		Select("credits").
		Take(&balance).Error
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *creditRepository) ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.CreditTransaction, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.CreditTransaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.CreditTransaction
	offset := (page - 1) * limit
	err := db.Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Offset(offset).Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
