package billing

import (
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation records the portion of a payment's amount applied to one
// obligation. One row per (payment, obligation) pair touched. Immutable
// after creation: cancellation reverts the obligation's ledger, never the
// allocation row, so the sum of a payment's allocations is a durable record
// of what the payment settled.
type Allocation struct {
	shared.BaseEntity
	ClubID         uuid.UUID       `json:"club_id"`
	PaymentID      uuid.UUID       `json:"payment_id"`
	ObligationKind ObligationKind  `json:"obligation_kind"`
	ObligationID   uuid.UUID       `json:"obligation_id"`
	AmountApplied  decimal.Decimal `json:"amount_applied"`
}

// NewAllocation creates an allocation of amountApplied against one obligation
func NewAllocation(
	clubID, paymentID uuid.UUID,
	kind ObligationKind,
	obligationID uuid.UUID,
	amountApplied decimal.Decimal,
) (*Allocation, error) {
	if paymentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_OBLIGATION_KIND", "Obligation kind is not valid")
	}
	if obligationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OBLIGATION", "Obligation ID cannot be empty")
	}
	if amountApplied.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Applied amount must be positive")
	}

	return &Allocation{
		BaseEntity:     shared.NewBaseEntity(),
		ClubID:         clubID,
		PaymentID:      paymentID,
		ObligationKind: kind,
		ObligationID:   obligationID,
		AmountApplied:  amountApplied,
	}, nil
}

// SumApplied returns the total amount the given allocations applied
func SumApplied(allocations []Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.AmountApplied)
	}
	return total
}
