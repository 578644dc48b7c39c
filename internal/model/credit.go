package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Credit transaction types.
const (
	TxTypePurchase   = "purchase"
	TxTypeSpend      = "spend"
	TxTypeAdjustment = "adjustment"
	TxTypeRefund     = "refund"
)

// ValidTxType reports whether t is one of the supported transaction types.
func ValidTxType(t string) bool {
	switch t {
	case TxTypePurchase, TxTypeSpend, TxTypeAdjustment, TxTypeRefund:
		return true
	}
	return false
}

// CreditTransaction is one immutable row of the credit ledger. Amount is
// signed: positive rows add credits, negative rows spend them. Rows are
// never updated or deleted after creation; User.Credits always equals the
// sum of the user's amounts.
type CreditTransaction struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_credit_tx_user_created,priority:1" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Type        string    `gorm:"type:varchar(32);not null" json:"type"`
	Description string    `gorm:"type:varchar(255);not null;default:''" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_credit_tx_user_created,priority:2,sort:desc" json:"created_at"`
}

// CreditPack is a purchasable credit bundle. Price is money (decimal over a
// numeric column), distinct from the integer credit amount it grants.
type CreditPack struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Credits   int64           `gorm:"not null" json:"credits"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Currency  string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Active    bool            `gorm:"default:true" json:"active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
