package billing

import (
	"testing"
	"time"

	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/clubbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentStatus_IsValid(t *testing.T) {
	tests := []struct {
		status   PaymentStatus
		expected bool
	}{
		{PaymentStatusPending, true},
		{PaymentStatusApproved, true},
		{PaymentStatusRejected, true},
		{PaymentStatusCancelled, true},
		{PaymentStatus("UNKNOWN"), false},
		{PaymentStatus(""), false},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.status.IsValid())
		})
	}
}

func TestPaymentMethod_IsValid(t *testing.T) {
	tests := []struct {
		method   PaymentMethod
		expected bool
	}{
		{PaymentMethodCash, true},
		{PaymentMethodBankTransfer, true},
		{PaymentMethodCreditCard, true},
		{PaymentMethodDebitCard, true},
		{PaymentMethodOnlineGateway, true},
		{PaymentMethodOther, true},
		{PaymentMethod("BARTER"), false},
	}

	for _, tc := range tests {
		t.Run(string(tc.method), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.method.IsValid())
		})
	}
}

func newTestPayment(t *testing.T) *Payment {
	t.Helper()
	payment, err := NewPayment(uuid.New(), uuid.New(),
		valueobject.NewMoneyEURFromFloat(120),
		PaymentMethodBankTransfer, time.Now())
	require.NoError(t, err)
	return payment
}

func TestNewPayment(t *testing.T) {
	t.Run("valid payment starts pending", func(t *testing.T) {
		payment := newTestPayment(t)

		assert.Equal(t, PaymentStatusPending, payment.Status)
		assert.True(t, payment.IsPending())
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(120)))
		assert.Equal(t, 1, payment.Version)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), uuid.New(),
			valueobject.ZeroEUR(), PaymentMethodCash, time.Now())

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), uuid.New(),
			valueobject.NewMoneyEURFromFloat(-5), PaymentMethodCash, time.Now())

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	})

	t.Run("nil member rejected", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), uuid.Nil,
			valueobject.NewMoneyEURFromFloat(10), PaymentMethodCash, time.Now())

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_MEMBER", domainErr.Code)
	})

	t.Run("unknown method rejected", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), uuid.New(),
			valueobject.NewMoneyEURFromFloat(10), PaymentMethod("BARTER"), time.Now())

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_METHOD", domainErr.Code)
	})
}

func TestPayment_Approve(t *testing.T) {
	t.Run("pending payment approves", func(t *testing.T) {
		payment := newTestPayment(t)

		err := payment.Approve()

		require.NoError(t, err)
		assert.True(t, payment.IsApproved())
		assert.Equal(t, 2, payment.Version)
	})

	t.Run("double approve rejected", func(t *testing.T) {
		payment := newTestPayment(t)
		require.NoError(t, payment.Approve())

		err := payment.Approve()

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_APPROVED", domainErr.Code)
		assert.Equal(t, 2, payment.Version)
	})

	t.Run("cancelled payment may be approved again", func(t *testing.T) {
		payment := newTestPayment(t)
		require.NoError(t, payment.Cancel("entered by mistake"))

		err := payment.Approve()

		require.NoError(t, err)
		assert.True(t, payment.IsApproved())
	})
}

func TestPayment_Cancel(t *testing.T) {
	t.Run("cancel appends reason to notes", func(t *testing.T) {
		payment := newTestPayment(t)

		err := payment.Cancel("duplicate entry")

		require.NoError(t, err)
		assert.True(t, payment.IsCancelled())
		assert.Equal(t, "Cancellation reason: duplicate entry", payment.Notes)
	})

	t.Run("existing notes are preserved", func(t *testing.T) {
		payment := newTestPayment(t)
		notes := "paid at the front desk"
		payment.UpdateDetails(nil, nil, &notes)

		require.NoError(t, payment.Cancel("duplicate entry"))

		assert.Equal(t, "paid at the front desk\nCancellation reason: duplicate entry", payment.Notes)
	})

	t.Run("approved payment can be cancelled", func(t *testing.T) {
		payment := newTestPayment(t)
		require.NoError(t, payment.Approve())

		err := payment.Cancel("charge reversed")

		require.NoError(t, err)
		assert.True(t, payment.IsCancelled())
	})

	t.Run("double cancel rejected", func(t *testing.T) {
		payment := newTestPayment(t)
		require.NoError(t, payment.Cancel("first"))

		err := payment.Cancel("second")

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_CANCELLED", domainErr.Code)
		assert.Equal(t, "Cancellation reason: first", payment.Notes)
	})
}

func TestPayment_UpdateDetails(t *testing.T) {
	payment := newTestPayment(t)
	ref := "TRX-2026-0042"
	receipt := "https://receipts.example.com/42.pdf"

	payment.UpdateDetails(&ref, &receipt, nil)

	assert.Equal(t, ref, payment.ReferenceNumber)
	assert.Equal(t, receipt, payment.ReceiptURL)
	assert.Empty(t, payment.Notes)
	assert.Equal(t, 2, payment.Version)
}
