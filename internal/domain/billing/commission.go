package billing

import (
	"fmt"
	"time"

	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/clubbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Commission is the platform's cut of an approved payment. Created exactly
// once at approval with a snapshot of the club's rate at that moment;
// immutable for accounting purposes. Cancelling the payment later does not
// void or amend the record.
type Commission struct {
	shared.BaseEntity
	ClubID               uuid.UUID       `json:"club_id"`
	PaymentID            uuid.UUID       `json:"payment_id"`
	PaymentAmount        decimal.Decimal `json:"payment_amount"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	CommissionAmount     decimal.Decimal `json:"commission_amount"`
	ClubNetAmount        decimal.Decimal `json:"club_net_amount"`
	CalculatedAt         time.Time       `json:"calculated_at"`
}

// NewCommission computes the platform commission for an approved payment.
// The commission is the percentage of the amount rounded half-up to the
// smallest currency unit; the club net is the exact remainder, so
// commission + net == payment amount with no rounding loss.
func NewCommission(payment *Payment, percentage decimal.Decimal, calculatedAt time.Time) (*Commission, error) {
	if payment == nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment cannot be nil")
	}
	if percentage.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PERCENTAGE", "Commission percentage cannot be negative")
	}
	if percentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_PERCENTAGE",
			fmt.Sprintf("Commission percentage %s exceeds 100", percentage.String()))
	}

	amount := payment.GetAmountMoney()
	cut := amount.ApplyPercentage(percentage)
	net, err := amount.Sub(cut)
	if err != nil {
		return nil, err
	}

	return &Commission{
		BaseEntity:           shared.NewBaseEntity(),
		ClubID:               payment.ClubID,
		PaymentID:            payment.ID,
		PaymentAmount:        amount.Amount(),
		CommissionPercentage: percentage,
		CommissionAmount:     cut.Amount(),
		ClubNetAmount:        net.Amount(),
		CalculatedAt:         calculatedAt,
	}, nil
}

// GetCommissionAmountMoney returns the commission amount as Money
func (c *Commission) GetCommissionAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(c.CommissionAmount)
}

// GetClubNetAmountMoney returns the club net amount as Money
func (c *Commission) GetClubNetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(c.ClubNetAmount)
}
