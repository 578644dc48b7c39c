package service

import (
	"context"
	"sync"
	"testing"

	"userhub/internal/model"
	"userhub/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCreditServiceForTest(db *gorm.DB) CreditService {
	return NewCreditService(repository.NewCreditRepository(db), repository.NewServiceRepository(db), nil)
}

func ledgerSum(t *testing.T, db *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()
	var sum int64
	require.NoError(t, db.Model(&model.CreditTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error)
	return sum
}

func TestAddAndSpendCredits(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "ledger@example.com", 0)
	svc := newCreditServiceForTest(db)

	added, err := svc.AddCredits(ctx, user.ID.String(), 100, model.TxTypePurchase, "initial top up")
	require.NoError(t, err)
	assert.Equal(t, int64(100), added.Amount)
	assert.Equal(t, model.TxTypePurchase, added.Type)

	spent, err := svc.SpendCredits(ctx, user.ID.String(), 30, model.TxTypeSpend, "qr generation")
	require.NoError(t, err)
	assert.Equal(t, int64(-30), spent.Amount)

	balance, err := svc.GetBalance(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance.Credits)
	assert.Equal(t, balance.Credits, ledgerSum(t, db, user.ID))

	entries, total, err := svc.ListTransactions(ctx, user.ID.String(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, int64(-30), entries[0].Amount)
	assert.Equal(t, int64(100), entries[1].Amount)
}

func TestSpendCreditsInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "poor@example.com", 10)
	svc := newCreditServiceForTest(db)

	_, err := svc.SpendCredits(ctx, user.ID.String(), 50, model.TxTypeSpend, "too expensive")
	require.ErrorIs(t, err, ErrInsufficientCredits)

	// Neither the balance nor the ledger moved.
	balance, err := svc.GetBalance(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance.Credits)

	_, total, err := svc.ListTransactions(ctx, user.ID.String(), 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSpendCreditsExactBalance(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "exact@example.com", 40)
	svc := newCreditServiceForTest(db)

	// credits >= amount is inclusive: spending the whole balance succeeds.
	_, err := svc.SpendCredits(ctx, user.ID.String(), 40, model.TxTypeSpend, "drain")
	require.NoError(t, err)

	balance, err := svc.GetBalance(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Zero(t, balance.Credits)

	_, err = svc.SpendCredits(ctx, user.ID.String(), 1, model.TxTypeSpend, "one more")
	require.ErrorIs(t, err, ErrInsufficientCredits)
}

func TestCreditValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "validate@example.com", 100)
	svc := newCreditServiceForTest(db)

	_, err := svc.AddCredits(ctx, user.ID.String(), 0, model.TxTypePurchase, "")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.SpendCredits(ctx, user.ID.String(), -5, model.TxTypeSpend, "")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.AddCredits(ctx, user.ID.String(), 10, "bonus", "")
	require.ErrorIs(t, err, ErrInvalidTransactionType)

	_, err = svc.Adjust(ctx, user.ID.String(), AdjustCreditsRequest{Amount: 10, Type: "bonus"})
	require.ErrorIs(t, err, ErrInvalidTransactionType)

	// Rejected requests leave no trace.
	balance, err := svc.GetBalance(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.Credits)
	assert.Zero(t, ledgerSum(t, db, user.ID))
}

func TestAdjustRoutesBySign(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "adjust@example.com", 0)
	svc := newCreditServiceForTest(db)

	up, err := svc.Adjust(ctx, user.ID.String(), AdjustCreditsRequest{Amount: 25, Type: model.TxTypeAdjustment, Description: "goodwill"})
	require.NoError(t, err)
	assert.Equal(t, int64(25), up.Amount)

	down, err := svc.Adjust(ctx, user.ID.String(), AdjustCreditsRequest{Amount: -10, Type: model.TxTypeAdjustment, Description: "correction"})
	require.NoError(t, err)
	assert.Equal(t, int64(-10), down.Amount)

	balance, err := svc.GetBalance(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(15), balance.Credits)

	// A negative adjustment still goes through the conditional check.
	_, err = svc.Adjust(ctx, user.ID.String(), AdjustCreditsRequest{Amount: -100, Type: model.TxTypeAdjustment})
	require.ErrorIs(t, err, ErrInsufficientCredits)
}

func TestConcurrentSpendsSingleWinner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "race@example.com", 100)
	svc := newCreditServiceForTest(db)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SpendCredits(ctx, user.ID.String(), 70, model.TxTypeSpend, "contended")
		}(i)
	}
	wg.Wait()

	var failed int
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, ErrInsufficientCredits)
			failed++
		}
	}
	assert.Equal(t, 1, failed, "exactly one spend must lose the race")

	balance, err := svc.GetBalance(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(30), balance.Credits)

	var count int64
	require.NoError(t, db.Model(&model.CreditTransaction{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPurchasePack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "buyer@example.com", 0)
	svc := newCreditServiceForTest(db)

	pack := &model.CreditPack{
		ID:       uuid.New(),
		Name:     "Starter",
		Credits:  500,
		Price:    decimal.NewFromFloat(9.99),
		Currency: "USD",
		Active:   true,
	}
	require.NoError(t, db.Create(pack).Error)

	retired := &model.CreditPack{
		ID:       uuid.New(),
		Name:     "Legacy",
		Credits:  50,
		Price:    decimal.NewFromFloat(1.99),
		Currency: "USD",
		Active:   false,
	}
	require.NoError(t, db.Create(retired).Error)

	entry, err := svc.PurchasePack(ctx, user.ID.String(), PurchasePackRequest{PackID: pack.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(500), entry.Amount)
	assert.Equal(t, model.TxTypePurchase, entry.Type)
	assert.Contains(t, entry.Description, "Starter")

	balance, err := svc.GetBalance(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance.Credits)

	_, err = svc.PurchasePack(ctx, user.ID.String(), PurchasePackRequest{PackID: retired.ID.String()})
	require.Error(t, err)

	packs, err := svc.ListPacks(ctx)
	require.NoError(t, err)
	require.Len(t, packs, 1)
	assert.Equal(t, "Starter", packs[0].Name)
}

func TestCreditsInvalidUserID(t *testing.T) {
	db := newTestDB(t)
	svc := newCreditServiceForTest(db)

	_, err := svc.AddCredits(context.Background(), "not-a-uuid", 10, model.TxTypePurchase, "")
	require.Error(t, err)
	_, err = svc.GetBalance(context.Background(), "not-a-uuid")
	require.Error(t, err)
}
