package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/clubbill/backend/internal/domain/billing"
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/clubbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupRecurringFeeTestDB creates an in-memory SQLite database for testing
func setupRecurringFeeTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE recurring_fees (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			club_id TEXT NOT NULL,
			member_id TEXT NOT NULL,
			fee_plan_id TEXT NOT NULL,
			amount TEXT NOT NULL,
			discount_amount TEXT NOT NULL DEFAULT '0',
			amount_due TEXT NOT NULL,
			paid_amount TEXT NOT NULL DEFAULT '0',
			status TEXT NOT NULL DEFAULT 'PENDING',
			period_start DATETIME NOT NULL,
			period_end DATETIME NOT NULL,
			due_date DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func newStoredRecurringFee(t *testing.T, repo *GormRecurringFeeRepository, clubID, memberID uuid.UUID, amount float64, dueDate time.Time) *billing.RecurringFee {
	t.Helper()
	fee, err := billing.NewRecurringFee(clubID, memberID, uuid.New(),
		valueobject.NewMoneyEURFromFloat(amount), valueobject.ZeroEUR(),
		dueDate.AddDate(0, -1, 0), dueDate.AddDate(0, 0, -10), dueDate)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), fee))
	return fee
}

func TestGormRecurringFeeRepository_SaveAndFind(t *testing.T) {
	db := setupRecurringFeeTestDB(t)
	repo := NewGormRecurringFeeRepository(db)
	ctx := context.Background()

	clubID := uuid.New()
	memberID := uuid.New()
	dueDate := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	fee := newStoredRecurringFee(t, repo, clubID, memberID, 45, dueDate)

	t.Run("round trips through the database", func(t *testing.T) {
		found, err := repo.FindByIDForClub(ctx, clubID, fee.ID)

		require.NoError(t, err)
		assert.Equal(t, fee.ID, found.ID)
		assert.Equal(t, memberID, found.MemberID)
		assert.True(t, found.AmountDue.Equal(decimal.NewFromInt(45)))
		assert.True(t, found.PaidAmount.IsZero())
		assert.Equal(t, billing.FeeStatusPending, found.Status)
		assert.Equal(t, 1, found.Version)
	})

	t.Run("another club cannot see the fee", func(t *testing.T) {
		_, err := repo.FindByIDForClub(ctx, uuid.New(), fee.ID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("save persists ledger mutations", func(t *testing.T) {
		require.NoError(t, fee.Ledger().Apply(decimal.NewFromInt(20)))
		fee.Touch()
		require.NoError(t, repo.Save(ctx, fee))

		found, err := repo.FindByIDForClub(ctx, clubID, fee.ID)

		require.NoError(t, err)
		assert.True(t, found.PaidAmount.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, billing.FeeStatusPartiallyPaid, found.Status)
	})
}

func TestGormRecurringFeeRepository_FindOutstanding(t *testing.T) {
	db := setupRecurringFeeTestDB(t)
	repo := NewGormRecurringFeeRepository(db)
	ctx := context.Background()

	clubID := uuid.New()
	memberID := uuid.New()

	later := newStoredRecurringFee(t, repo, clubID, memberID, 50,
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	earlier := newStoredRecurringFee(t, repo, clubID, memberID, 50,
		time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))

	settled := newStoredRecurringFee(t, repo, clubID, memberID, 30,
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, settled.Ledger().Apply(decimal.NewFromInt(30)))
	settled.Touch()
	require.NoError(t, repo.Save(ctx, settled))

	newStoredRecurringFee(t, repo, clubID, uuid.New(), 99,
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	fees, err := repo.FindOutstanding(ctx, clubID, memberID)

	require.NoError(t, err)
	require.Len(t, fees, 2)
	assert.Equal(t, earlier.ID, fees[0].ID)
	assert.Equal(t, later.ID, fees[1].ID)
}

func TestGormRecurringFeeRepository_FindByMember(t *testing.T) {
	db := setupRecurringFeeTestDB(t)
	repo := NewGormRecurringFeeRepository(db)
	ctx := context.Background()

	clubID := uuid.New()
	memberID := uuid.New()

	pending := newStoredRecurringFee(t, repo, clubID, memberID, 50,
		time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
	overdue := newStoredRecurringFee(t, repo, clubID, memberID, 50,
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, overdue.Ledger().MarkOverdue())
	overdue.Touch()
	require.NoError(t, repo.Save(ctx, overdue))

	t.Run("status filter", func(t *testing.T) {
		status := billing.FeeStatusOverdue
		filter := billing.ObligationFilter{Filter: shared.DefaultFilter(), Status: &status}

		fees, err := repo.FindByMember(ctx, clubID, memberID, filter)

		require.NoError(t, err)
		require.Len(t, fees, 1)
		assert.Equal(t, overdue.ID, fees[0].ID)
	})

	t.Run("due date range filter", func(t *testing.T) {
		from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		filter := billing.ObligationFilter{Filter: shared.DefaultFilter(), DueFrom: &from}

		fees, err := repo.FindByMember(ctx, clubID, memberID, filter)

		require.NoError(t, err)
		require.Len(t, fees, 1)
		assert.Equal(t, pending.ID, fees[0].ID)
	})
}

func TestGormRecurringFeeRepository_SaveWithLock(t *testing.T) {
	db := setupRecurringFeeTestDB(t)
	repo := NewGormRecurringFeeRepository(db)
	ctx := context.Background()

	clubID := uuid.New()
	fee := newStoredRecurringFee(t, repo, clubID, uuid.New(), 50,
		time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))

	t.Run("succeeds when version is current", func(t *testing.T) {
		require.NoError(t, fee.Ledger().MarkOverdue())
		fee.Touch()

		require.NoError(t, repo.SaveWithLock(ctx, fee))

		found, err := repo.FindByIDForClub(ctx, clubID, fee.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.FeeStatusOverdue, found.Status)
		assert.Equal(t, 2, found.Version)
	})

	t.Run("stale version rejected", func(t *testing.T) {
		stale := *fee
		stale.Version = 5

		err := repo.SaveWithLock(ctx, &stale)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", domainErr.Code)
	})
}
