package billing

import (
	"fmt"
	"time"

	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/clubbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeStatus represents the payment status of an obligation
type FeeStatus string

const (
	FeeStatusPending       FeeStatus = "PENDING"        // Nothing paid yet
	FeeStatusPartiallyPaid FeeStatus = "PARTIALLY_PAID" // 0 < paid < due
	FeeStatusPaid          FeeStatus = "PAID"           // Fully paid
	FeeStatusOverdue       FeeStatus = "OVERDUE"        // Past due date, assigned by the scheduler only
)

// IsValid checks if the status is a valid FeeStatus
func (s FeeStatus) IsValid() bool {
	switch s {
	case FeeStatusPending, FeeStatusPartiallyPaid, FeeStatusPaid, FeeStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of FeeStatus
func (s FeeStatus) String() string {
	return string(s)
}

// ObligationKind identifies the obligation variant an allocation points at
type ObligationKind string

const (
	ObligationKindRecurringFee ObligationKind = "RECURRING_FEE"
	ObligationKindSpecialFee   ObligationKind = "SPECIAL_FEE"
)

// IsValid checks if the kind is valid
func (k ObligationKind) IsValid() bool {
	return k == ObligationKindRecurringFee || k == ObligationKindSpecialFee
}

// FeeLedger is the paid/owed bookkeeping state of a single obligation.
// It is the only place that mutates PaidAmount and derives the
// PENDING/PARTIALLY_PAID/PAID statuses. OVERDUE is assigned externally by
// the due-date scheduler and is overwritten by the derivation rule as soon
// as an amount is applied or reverted.
type FeeLedger struct {
	AmountDue  decimal.Decimal // Fixed total owed
	PaidAmount decimal.Decimal // Amount applied so far
	Status     FeeStatus
}

// NewFeeLedger creates a ledger for an obligation owing amountDue
func NewFeeLedger(amountDue decimal.Decimal) FeeLedger {
	return FeeLedger{
		AmountDue:  amountDue,
		PaidAmount: decimal.Zero,
		Status:     FeeStatusPending,
	}
}

// Outstanding returns the amount still owed
func (l *FeeLedger) Outstanding() decimal.Decimal {
	return l.AmountDue.Sub(l.PaidAmount)
}

// IsSettled returns true if nothing is owed anymore
func (l *FeeLedger) IsSettled() bool {
	return l.PaidAmount.GreaterThanOrEqual(l.AmountDue)
}

// Apply adds amount to PaidAmount and re-derives the status.
// The allocator bounds amounts to the outstanding balance, so crossing
// AmountDue signals a caller bug and is rejected without mutation.
func (l *FeeLedger) Apply(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Applied amount must be positive")
	}
	newPaid := l.PaidAmount.Add(amount)
	if newPaid.GreaterThan(l.AmountDue) {
		return shared.NewDomainError("LEDGER_OVERPAYMENT",
			fmt.Sprintf("Applying %s would exceed amount due %s (paid %s)",
				amount.StringFixed(2), l.AmountDue.StringFixed(2), l.PaidAmount.StringFixed(2)))
	}
	l.PaidAmount = newPaid
	if l.PaidAmount.GreaterThanOrEqual(l.AmountDue) {
		l.Status = FeeStatusPaid
	} else if l.PaidAmount.GreaterThan(decimal.Zero) {
		l.Status = FeeStatusPartiallyPaid
	}
	return nil
}

// Revert subtracts amount from PaidAmount and re-derives the status.
// PaidAmount never goes negative: a stale caller is clamped to zero and
// reported as a consistency error so the operation aborts visibly.
func (l *FeeLedger) Revert(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Reverted amount must be positive")
	}
	if amount.GreaterThan(l.PaidAmount) {
		prior := l.PaidAmount
		l.PaidAmount = decimal.Zero
		l.Status = FeeStatusPending
		return shared.NewDomainError("LEDGER_UNDERFLOW",
			fmt.Sprintf("Reverting %s exceeds paid amount %s; clamped to zero",
				amount.StringFixed(2), prior.StringFixed(2)))
	}
	l.PaidAmount = l.PaidAmount.Sub(amount)
	if l.PaidAmount.LessThanOrEqual(decimal.Zero) {
		l.Status = FeeStatusPending
	} else {
		l.Status = FeeStatusPartiallyPaid
	}
	return nil
}

// MarkOverdue flags the obligation as past due. Called by the due-date
// scheduler collaborator, never by the ledger itself.
func (l *FeeLedger) MarkOverdue() error {
	if l.Status == FeeStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Cannot mark a fully paid obligation overdue")
	}
	l.Status = FeeStatusOverdue
	return nil
}

// Obligation is the common view over the two fee variants
type Obligation interface {
	shared.Entity
	ObligationKind() ObligationKind
	GetClubID() uuid.UUID
	GetMemberID() uuid.UUID
	Ledger() *FeeLedger
	Touch()
}

// RecurringFee is a fee instance generated from a recurring plan.
// Multi-tenant: isolated by club.
type RecurringFee struct {
	shared.TenantAggregateRoot
	MemberID       uuid.UUID       `json:"member_id"`
	FeePlanID      uuid.UUID       `json:"fee_plan_id"`
	Amount         decimal.Decimal `json:"amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	DueDate        time.Time       `json:"due_date"`
	FeeLedger
}

// NewRecurringFee creates a recurring fee for a plan period.
// The ledger's amount due is the plan amount minus the member discount.
func NewRecurringFee(
	clubID, memberID, feePlanID uuid.UUID,
	amount, discount valueobject.Money,
	periodStart, periodEnd, dueDate time.Time,
) (*RecurringFee, error) {
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member ID cannot be empty")
	}
	if feePlanID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FEE_PLAN", "Fee plan ID cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Fee amount cannot be negative")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Discount amount cannot be negative")
	}
	final, err := amount.Sub(discount)
	if err != nil {
		return nil, err
	}
	if final.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Discount cannot exceed fee amount")
	}
	if periodEnd.Before(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end cannot precede period start")
	}

	return &RecurringFee{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(clubID),
		MemberID:            memberID,
		FeePlanID:           feePlanID,
		Amount:              amount.Amount(),
		DiscountAmount:      discount.Amount(),
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
		DueDate:             dueDate,
		FeeLedger:           NewFeeLedger(final.Amount()),
	}, nil
}

// ObligationKind returns the variant tag for allocations
func (f *RecurringFee) ObligationKind() ObligationKind {
	return ObligationKindRecurringFee
}

// GetClubID returns the owning club
func (f *RecurringFee) GetClubID() uuid.UUID {
	return f.ClubID
}

// GetMemberID returns the debtor member
func (f *RecurringFee) GetMemberID() uuid.UUID {
	return f.MemberID
}

// Ledger returns the paid/owed bookkeeping state
func (f *RecurringFee) Ledger() *FeeLedger {
	return &f.FeeLedger
}

// Touch updates the modification timestamp and version
func (f *RecurringFee) Touch() {
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// FinalAmount returns the amount due after discount
func (f *RecurringFee) FinalAmount() decimal.Decimal {
	return f.AmountDue
}

// SpecialFeeType classifies one-off fees
type SpecialFeeType string

const (
	SpecialFeeTypeEventRegistration    SpecialFeeType = "EVENT_REGISTRATION"
	SpecialFeeTypeTransport            SpecialFeeType = "TRANSPORT"
	SpecialFeeTypeFood                 SpecialFeeType = "FOOD"
	SpecialFeeTypeFoundingContribution SpecialFeeType = "FOUNDING_CONTRIBUTION"
	SpecialFeeTypeExtraordinary        SpecialFeeType = "EXTRAORDINARY"
	SpecialFeeTypeDonation             SpecialFeeType = "DONATION"
	SpecialFeeTypeOther                SpecialFeeType = "OTHER"
)

// IsValid checks if the special fee type is valid
func (t SpecialFeeType) IsValid() bool {
	switch t {
	case SpecialFeeTypeEventRegistration, SpecialFeeTypeTransport, SpecialFeeTypeFood,
		SpecialFeeTypeFoundingContribution, SpecialFeeTypeExtraordinary,
		SpecialFeeTypeDonation, SpecialFeeTypeOther:
		return true
	}
	return false
}

// SpecialFee is a one-off fee (event registration, donation, ...).
// Multi-tenant: isolated by club.
type SpecialFee struct {
	shared.TenantAggregateRoot
	MemberID    uuid.UUID      `json:"member_id"`
	EventID     *uuid.UUID     `json:"event_id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	FeeType     SpecialFeeType `json:"fee_type"`
	DueDate     time.Time      `json:"due_date"`
	FeeLedger
}

// NewSpecialFee creates a one-off fee owed by a member
func NewSpecialFee(
	clubID, memberID uuid.UUID,
	eventID *uuid.UUID,
	name string,
	feeType SpecialFeeType,
	amount valueobject.Money,
	dueDate time.Time,
) (*SpecialFee, error) {
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Fee name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Fee name cannot exceed 200 characters")
	}
	if !feeType.IsValid() {
		return nil, shared.NewDomainError("INVALID_FEE_TYPE", "Special fee type is not valid")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Fee amount cannot be negative")
	}

	return &SpecialFee{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(clubID),
		MemberID:            memberID,
		EventID:             eventID,
		Name:                name,
		FeeType:             feeType,
		DueDate:             dueDate,
		FeeLedger:           NewFeeLedger(amount.Amount()),
	}, nil
}

// ObligationKind returns the variant tag for allocations
func (f *SpecialFee) ObligationKind() ObligationKind {
	return ObligationKindSpecialFee
}

// GetClubID returns the owning club
func (f *SpecialFee) GetClubID() uuid.UUID {
	return f.ClubID
}

// GetMemberID returns the debtor member
func (f *SpecialFee) GetMemberID() uuid.UUID {
	return f.MemberID
}

// Ledger returns the paid/owed bookkeeping state
func (f *SpecialFee) Ledger() *FeeLedger {
	return &f.FeeLedger
}

// Touch updates the modification timestamp and version
func (f *SpecialFee) Touch() {
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

var _ Obligation = (*RecurringFee)(nil)
var _ Obligation = (*SpecialFee)(nil)
