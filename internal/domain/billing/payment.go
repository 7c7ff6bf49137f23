package billing

import (
	"fmt"
	"time"

	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/clubbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusApproved  PaymentStatus = "APPROVED"
	PaymentStatusRejected  PaymentStatus = "REJECTED" // Valid value, no transition trigger in this core
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusApproved, PaymentStatusRejected, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "CASH"
	PaymentMethodBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCreditCard    PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard     PaymentMethod = "DEBIT_CARD"
	PaymentMethodOnlineGateway PaymentMethod = "ONLINE_GATEWAY"
	PaymentMethodOther         PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCreditCard,
		PaymentMethodDebitCard, PaymentMethodOnlineGateway, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is a member payment that may settle several obligations at once.
// Amount is immutable after creation; status moves only through Approve and
// Cancel. Payments are never physically deleted.
// Multi-tenant: isolated by club.
type Payment struct {
	shared.TenantAggregateRoot
	MemberID        uuid.UUID       `json:"member_id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          PaymentMethod   `json:"method"`
	Status          PaymentStatus   `json:"status"`
	PaymentDate     time.Time       `json:"payment_date"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	ReceiptURL      string          `json:"receipt_url,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// NewPayment creates a payment in PENDING status
func NewPayment(
	clubID, memberID uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	paymentDate time.Time,
) (*Payment, error) {
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Unknown payment method %q", method))
	}

	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(clubID),
		MemberID:            memberID,
		Amount:              amount.Amount(),
		Method:              method,
		Status:              PaymentStatusPending,
		PaymentDate:         paymentDate,
	}, nil
}

// Approve marks the payment approved. Only a re-approval is rejected;
// approving from REJECTED or CANCELLED is deliberately not guarded and is
// documented behavior.
func (p *Payment) Approve() error {
	if p.Status == PaymentStatusApproved {
		return shared.NewDomainError("ALREADY_APPROVED", "Payment is already approved")
	}
	p.Status = PaymentStatusApproved
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Cancel marks the payment cancelled, appending the reason to notes
func (p *Payment) Cancel(reason string) error {
	if p.Status == PaymentStatusCancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "Payment is already cancelled")
	}
	p.Status = PaymentStatusCancelled
	if reason != "" {
		if p.Notes != "" {
			p.Notes += "\n"
		}
		p.Notes += "Cancellation reason: " + reason
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// UpdateDetails mutates the only legitimately mutable descriptive fields.
// Amount, method and dates are immutable after creation.
func (p *Payment) UpdateDetails(referenceNumber, receiptURL, notes *string) {
	if referenceNumber != nil {
		p.ReferenceNumber = *referenceNumber
	}
	if receiptURL != nil {
		p.ReceiptURL = *receiptURL
	}
	if notes != nil {
		p.Notes = *notes
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IsPending returns true if the payment is awaiting approval
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// IsApproved returns true if the payment is approved
func (p *Payment) IsApproved() bool {
	return p.Status == PaymentStatusApproved
}

// IsCancelled returns true if the payment is cancelled
func (p *Payment) IsCancelled() bool {
	return p.Status == PaymentStatusCancelled
}

// GetAmountMoney returns the amount as Money value object
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(p.Amount)
}
