package billing

import (
	"context"
	"testing"
	"time"

	"github.com/clubbill/backend/internal/domain/billing"
	clubdomain "github.com/clubbill/backend/internal/domain/club"
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentServiceFixture(t *testing.T) (*PaymentService, *billingFixture, *clubdomain.Club) {
	t.Helper()
	f := newBillingFixture()
	c, err := clubdomain.NewClub("SV Musterstadt", "kasse@sv-musterstadt.example", decimal.NewFromInt(5))
	require.NoError(t, err)
	require.NoError(t, f.clubs.Save(context.Background(), c))

	clock := fixedClock{t: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	service := NewPaymentService(f.scope, f.clubs, NewPaymentAllocator(nil), clock, nil)
	return service, f, c
}

func TestPaymentService_CreatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("payment without fee ids stays unallocated", func(t *testing.T) {
		service, f, c := newPaymentServiceFixture(t)
		memberID := uuid.New()

		result, err := service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:   c.ID,
			MemberID: memberID,
			Amount:   decimal.NewFromInt(75),
			Method:   billing.PaymentMethodCash,
		})

		require.NoError(t, err)
		assert.True(t, result.Payment.IsPending())
		assert.Empty(t, result.Allocations)
		assert.Len(t, f.payments.payments, 1)
		assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), result.Payment.PaymentDate)
	})

	t.Run("payment allocates across given fees", func(t *testing.T) {
		service, f, c := newPaymentServiceFixture(t)
		memberID := uuid.New()
		recurring := seedRecurringFee(t, f, c.ID, memberID, 100)
		special := seedSpecialFee(t, f, c.ID, memberID, 50)

		result, err := service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:          c.ID,
			MemberID:        memberID,
			Amount:          decimal.NewFromInt(120),
			Method:          billing.PaymentMethodBankTransfer,
			RecurringFeeIDs: []uuid.UUID{recurring.ID},
			SpecialFeeIDs:   []uuid.UUID{special.ID},
		})

		require.NoError(t, err)
		require.Len(t, result.Allocations, 2)
		assert.Equal(t, billing.FeeStatusPaid, recurring.Status)
		assert.Equal(t, billing.FeeStatusPartiallyPaid, special.Status)
		assert.True(t, billing.SumApplied(result.Allocations).Equal(decimal.NewFromInt(120)))
	})

	t.Run("explicit payment date wins over the clock", func(t *testing.T) {
		service, _, c := newPaymentServiceFixture(t)
		date := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

		result, err := service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:      c.ID,
			MemberID:    uuid.New(),
			Amount:      decimal.NewFromInt(10),
			Method:      billing.PaymentMethodCash,
			PaymentDate: &date,
		})

		require.NoError(t, err)
		assert.Equal(t, date, result.Payment.PaymentDate)
	})

	t.Run("invalid amount saves nothing", func(t *testing.T) {
		service, f, c := newPaymentServiceFixture(t)

		_, err := service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:   c.ID,
			MemberID: uuid.New(),
			Amount:   decimal.Zero,
			Method:   billing.PaymentMethodCash,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
		assert.Empty(t, f.payments.payments)
	})
}

func TestPaymentService_ApprovePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("approval snapshots the commission", func(t *testing.T) {
		service, f, c := newPaymentServiceFixture(t)
		created, err := service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:   c.ID,
			MemberID: uuid.New(),
			Amount:   decimal.NewFromInt(120),
			Method:   billing.PaymentMethodCash,
		})
		require.NoError(t, err)

		result, err := service.ApprovePayment(ctx, c.ID, created.Payment.ID)

		require.NoError(t, err)
		assert.True(t, result.Payment.IsApproved())
		assert.True(t, result.Commission.CommissionAmount.Equal(decimal.NewFromInt(6)))
		assert.True(t, result.Commission.ClubNetAmount.Equal(decimal.NewFromInt(114)))
		assert.True(t, result.Commission.CommissionPercentage.Equal(decimal.NewFromInt(5)))
		assert.Len(t, f.commissions.commissions, 1)
	})

	t.Run("rate change after approval leaves the snapshot", func(t *testing.T) {
		service, f, c := newPaymentServiceFixture(t)
		created, err := service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:   c.ID,
			MemberID: uuid.New(),
			Amount:   decimal.NewFromInt(100),
			Method:   billing.PaymentMethodCash,
		})
		require.NoError(t, err)
		_, err = service.ApprovePayment(ctx, c.ID, created.Payment.ID)
		require.NoError(t, err)

		require.NoError(t, c.SetCommissionPercentage(decimal.NewFromInt(10)))
		require.NoError(t, f.clubs.Save(ctx, c))

		records, err := f.commissions.FindByPayment(ctx, created.Payment.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].CommissionPercentage.Equal(decimal.NewFromInt(5)))
	})

	t.Run("double approval rejected without a second commission", func(t *testing.T) {
		service, f, c := newPaymentServiceFixture(t)
		created, err := service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:   c.ID,
			MemberID: uuid.New(),
			Amount:   decimal.NewFromInt(100),
			Method:   billing.PaymentMethodCash,
		})
		require.NoError(t, err)
		_, err = service.ApprovePayment(ctx, c.ID, created.Payment.ID)
		require.NoError(t, err)

		_, err = service.ApprovePayment(ctx, c.ID, created.Payment.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_APPROVED", domainErr.Code)
		assert.Len(t, f.commissions.commissions, 1)
	})

	t.Run("approving a cancelled payment adds another commission", func(t *testing.T) {
		service, f, c := newPaymentServiceFixture(t)
		created, err := service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:   c.ID,
			MemberID: uuid.New(),
			Amount:   decimal.NewFromInt(100),
			Method:   billing.PaymentMethodCash,
		})
		require.NoError(t, err)
		_, err = service.ApprovePayment(ctx, c.ID, created.Payment.ID)
		require.NoError(t, err)
		_, err = service.CancelPayment(ctx, c.ID, created.Payment.ID, "reversed")
		require.NoError(t, err)

		result, err := service.ApprovePayment(ctx, c.ID, created.Payment.ID)

		require.NoError(t, err)
		assert.True(t, result.Payment.IsApproved())
		assert.Len(t, f.commissions.commissions, 2)
	})

	t.Run("unknown payment", func(t *testing.T) {
		service, _, c := newPaymentServiceFixture(t)

		_, err := service.ApprovePayment(ctx, c.ID, uuid.New())

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PAYMENT_NOT_FOUND", domainErr.Code)
	})
}

func TestPaymentService_CancelPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("cancellation reverts ledgers but keeps rows", func(t *testing.T) {
		service, f, c := newPaymentServiceFixture(t)
		memberID := uuid.New()
		recurring := seedRecurringFee(t, f, c.ID, memberID, 100)
		special := seedSpecialFee(t, f, c.ID, memberID, 50)
		created, err := service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:          c.ID,
			MemberID:        memberID,
			Amount:          decimal.NewFromInt(120),
			Method:          billing.PaymentMethodBankTransfer,
			RecurringFeeIDs: []uuid.UUID{recurring.ID},
			SpecialFeeIDs:   []uuid.UUID{special.ID},
		})
		require.NoError(t, err)
		_, err = service.ApprovePayment(ctx, c.ID, created.Payment.ID)
		require.NoError(t, err)

		payment, err := service.CancelPayment(ctx, c.ID, created.Payment.ID, "booked twice")

		require.NoError(t, err)
		assert.True(t, payment.IsCancelled())
		assert.Contains(t, payment.Notes, "Cancellation reason: booked twice")

		assert.Equal(t, billing.FeeStatusPending, recurring.Status)
		assert.True(t, recurring.PaidAmount.IsZero())
		assert.Equal(t, billing.FeeStatusPending, special.Status)
		assert.True(t, special.PaidAmount.IsZero())

		allocations, err := f.allocations.FindByPayment(ctx, payment.ID)
		require.NoError(t, err)
		assert.Len(t, allocations, 2)
		assert.Len(t, f.commissions.commissions, 1)
	})

	t.Run("pending payment cancels and reverts too", func(t *testing.T) {
		service, f, c := newPaymentServiceFixture(t)
		memberID := uuid.New()
		recurring := seedRecurringFee(t, f, c.ID, memberID, 80)
		created, err := service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:          c.ID,
			MemberID:        memberID,
			Amount:          decimal.NewFromInt(30),
			Method:          billing.PaymentMethodCash,
			RecurringFeeIDs: []uuid.UUID{recurring.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, billing.FeeStatusPartiallyPaid, recurring.Status)

		_, err = service.CancelPayment(ctx, c.ID, created.Payment.ID, "")

		require.NoError(t, err)
		assert.Equal(t, billing.FeeStatusPending, recurring.Status)
		assert.True(t, recurring.PaidAmount.IsZero())
	})

	t.Run("partial revert leaves other payments applied", func(t *testing.T) {
		service, f, c := newPaymentServiceFixture(t)
		memberID := uuid.New()
		recurring := seedRecurringFee(t, f, c.ID, memberID, 100)

		first, err := service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:          c.ID,
			MemberID:        memberID,
			Amount:          decimal.NewFromInt(60),
			Method:          billing.PaymentMethodCash,
			RecurringFeeIDs: []uuid.UUID{recurring.ID},
		})
		require.NoError(t, err)
		_, err = service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:          c.ID,
			MemberID:        memberID,
			Amount:          decimal.NewFromInt(40),
			Method:          billing.PaymentMethodCash,
			RecurringFeeIDs: []uuid.UUID{recurring.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, billing.FeeStatusPaid, recurring.Status)

		_, err = service.CancelPayment(ctx, c.ID, first.Payment.ID, "wrong member")

		require.NoError(t, err)
		assert.Equal(t, billing.FeeStatusPartiallyPaid, recurring.Status)
		assert.True(t, recurring.PaidAmount.Equal(decimal.NewFromInt(40)))
	})

	t.Run("double cancel rejected", func(t *testing.T) {
		service, _, c := newPaymentServiceFixture(t)
		created, err := service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:   c.ID,
			MemberID: uuid.New(),
			Amount:   decimal.NewFromInt(10),
			Method:   billing.PaymentMethodCash,
		})
		require.NoError(t, err)
		_, err = service.CancelPayment(ctx, c.ID, created.Payment.ID, "first")
		require.NoError(t, err)

		_, err = service.CancelPayment(ctx, c.ID, created.Payment.ID, "second")

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_CANCELLED", domainErr.Code)
	})

	t.Run("unknown payment", func(t *testing.T) {
		service, _, c := newPaymentServiceFixture(t)

		_, err := service.CancelPayment(ctx, c.ID, uuid.New(), "whatever")

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PAYMENT_NOT_FOUND", domainErr.Code)
	})
}

func TestPaymentService_GetPayment(t *testing.T) {
	ctx := context.Background()
	service, f, c := newPaymentServiceFixture(t)
	memberID := uuid.New()
	recurring := seedRecurringFee(t, f, c.ID, memberID, 40)
	created, err := service.CreatePayment(ctx, CreatePaymentRequest{
		ClubID:          c.ID,
		MemberID:        memberID,
		Amount:          decimal.NewFromInt(40),
		Method:          billing.PaymentMethodCash,
		RecurringFeeIDs: []uuid.UUID{recurring.ID},
	})
	require.NoError(t, err)

	t.Run("returns payment with allocations", func(t *testing.T) {
		result, err := service.GetPayment(ctx, c.ID, created.Payment.ID)

		require.NoError(t, err)
		assert.Equal(t, created.Payment.ID, result.Payment.ID)
		assert.Len(t, result.Allocations, 1)
		assert.Empty(t, result.Commissions)
	})

	t.Run("includes commission after approval", func(t *testing.T) {
		_, err := service.ApprovePayment(ctx, c.ID, created.Payment.ID)
		require.NoError(t, err)

		result, err := service.GetPayment(ctx, c.ID, created.Payment.ID)

		require.NoError(t, err)
		require.Len(t, result.Commissions, 1)
		assert.Equal(t, created.Payment.ID, result.Commissions[0].PaymentID)
	})

	t.Run("other club cannot see it", func(t *testing.T) {
		_, err := service.GetPayment(ctx, uuid.New(), created.Payment.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PAYMENT_NOT_FOUND", domainErr.Code)
	})
}

func TestPaymentService_ListCommissions(t *testing.T) {
	ctx := context.Background()
	service, _, c := newPaymentServiceFixture(t)
	created, err := service.CreatePayment(ctx, CreatePaymentRequest{
		ClubID:   c.ID,
		MemberID: uuid.New(),
		Amount:   decimal.NewFromInt(80),
		Method:   billing.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)
	_, err = service.ApprovePayment(ctx, c.ID, created.Payment.ID)
	require.NoError(t, err)

	t.Run("returns club commissions", func(t *testing.T) {
		commissions, err := service.ListCommissions(ctx, c.ID)

		require.NoError(t, err)
		require.Len(t, commissions, 1)
		assert.Equal(t, created.Payment.ID, commissions[0].PaymentID)
		assert.True(t, commissions[0].CommissionAmount.Equal(decimal.NewFromInt(4)))
	})

	t.Run("other club sees none", func(t *testing.T) {
		commissions, err := service.ListCommissions(ctx, uuid.New())

		require.NoError(t, err)
		assert.Empty(t, commissions)
	})
}

func TestPaymentService_UpdatePaymentDetails(t *testing.T) {
	ctx := context.Background()
	service, _, c := newPaymentServiceFixture(t)
	created, err := service.CreatePayment(ctx, CreatePaymentRequest{
		ClubID:   c.ID,
		MemberID: uuid.New(),
		Amount:   decimal.NewFromInt(10),
		Method:   billing.PaymentMethodCash,
	})
	require.NoError(t, err)

	ref := "TRX-100"
	payment, err := service.UpdatePaymentDetails(ctx, c.ID, created.Payment.ID, &ref, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "TRX-100", payment.ReferenceNumber)
}

func TestPaymentService_GetSummary(t *testing.T) {
	ctx := context.Background()
	service, _, c := newPaymentServiceFixture(t)
	memberID := uuid.New()

	for _, amount := range []int64{120, 80} {
		created, err := service.CreatePayment(ctx, CreatePaymentRequest{
			ClubID:   c.ID,
			MemberID: memberID,
			Amount:   decimal.NewFromInt(amount),
			Method:   billing.PaymentMethodCash,
		})
		require.NoError(t, err)
		_, err = service.ApprovePayment(ctx, c.ID, created.Payment.ID)
		require.NoError(t, err)
	}
	// A pending payment stays out of the totals
	_, err := service.CreatePayment(ctx, CreatePaymentRequest{
		ClubID:   c.ID,
		MemberID: memberID,
		Amount:   decimal.NewFromInt(999),
		Method:   billing.PaymentMethodCash,
	})
	require.NoError(t, err)

	summary, err := service.GetSummary(ctx, c.ID, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalPayments)
	assert.True(t, summary.TotalAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, summary.TotalCommission.Equal(decimal.NewFromInt(10)))
	assert.True(t, summary.TotalClubNet.Equal(decimal.NewFromInt(190)))
	assert.True(t, summary.AveragePayment.Equal(decimal.NewFromInt(100)))
}
