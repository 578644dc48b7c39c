package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock
}

func TestSpendCreditsConditionalUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCreditRepository(db)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "credits"=credits - \$1 WHERE id = \$2 AND credits >= \$3`).
		WithArgs(int64(30), userID, int64(30)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "credit_transactions"`).
		WithArgs(userID, int64(-30), "spend", "qr generation", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()

	entry, err := repo.SpendCredits(context.Background(), userID, 30, "spend", "qr generation")
	if err != nil {
		t.Fatalf("SpendCredits: %v", err)
	}
	if entry.Amount != -30 {
		t.Fatalf("expected ledger amount -30, got %d", entry.Amount)
	}
	if entry.ID != 7 {
		t.Fatalf("expected ledger id 7, got %d", entry.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSpendCreditsInsufficientRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCreditRepository(db)
	userID := uuid.New()

	// RowsAffected 0 means the balance guard failed: the transaction rolls
	// back and no ledger insert is ever attempted.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "credits"=credits - \$1 WHERE id = \$2 AND credits >= \$3`).
		WithArgs(int64(50), userID, int64(50)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.SpendCredits(context.Background(), userID, 50, "spend", "too much")
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddCreditsUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCreditRepository(db)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "credits"=credits \+ \$1 WHERE id = \$2`).
		WithArgs(int64(10), userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.AddCredits(context.Background(), userID, 10, "purchase", "")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
