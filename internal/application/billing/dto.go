package billing

import (
	"time"

	"github.com/clubbill/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest carries everything needed to create a payment and
// allocate it against outstanding fees
type CreatePaymentRequest struct {
	ClubID          uuid.UUID
	MemberID        uuid.UUID
	Amount          decimal.Decimal
	Method          billing.PaymentMethod
	PaymentDate     *time.Time // Defaults to the clock's now
	RecurringFeeIDs []uuid.UUID
	SpecialFeeIDs   []uuid.UUID
	ReferenceNumber string
	ReceiptURL      string
	Notes           string
}

// PaymentResult is a payment together with its allocations and commissions
type PaymentResult struct {
	Payment     *billing.Payment     `json:"payment"`
	Allocations []billing.Allocation `json:"allocations"`
	Commissions []billing.Commission `json:"commissions,omitempty"`
}

// ApprovePaymentResult is an approved payment with its commission snapshot
type ApprovePaymentResult struct {
	Payment    *billing.Payment    `json:"payment"`
	Commission *billing.Commission `json:"commission"`
}

// PaymentSummary aggregates approved payments and commissions for a club
type PaymentSummary struct {
	TotalPayments   int64           `json:"total_payments"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	TotalClubNet    decimal.Decimal `json:"total_club_net"`
	AveragePayment  decimal.Decimal `json:"average_payment"`
}
