package billing

import (
	"context"
	"time"

	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	MemberID *uuid.UUID     // Filter by member
	Status   *PaymentStatus // Filter by status
	FromDate *time.Time     // Filter by payment date range start
	ToDate   *time.Time     // Filter by payment date range end
}

// ObligationFilter defines filtering options for fee queries
type ObligationFilter struct {
	shared.Filter
	MemberID *uuid.UUID // Filter by member
	Status   *FeeStatus // Filter by status
	DueFrom  *time.Time // Filter by due date range start
	DueTo    *time.Time // Filter by due date range end
}

// RecurringFeeRepository persists generated recurring fees
type RecurringFeeRepository interface {
	// FindByIDForClub finds a recurring fee by ID for a specific club
	FindByIDForClub(ctx context.Context, clubID, id uuid.UUID) (*RecurringFee, error)

	// FindByIDForUpdate finds a recurring fee and takes an exclusive row
	// lock for the duration of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, clubID, id uuid.UUID) (*RecurringFee, error)

	// FindByMember finds recurring fees for a member with filtering
	FindByMember(ctx context.Context, clubID, memberID uuid.UUID, filter ObligationFilter) ([]RecurringFee, error)

	// FindOutstanding finds fees with an unpaid balance for a member
	FindOutstanding(ctx context.Context, clubID, memberID uuid.UUID) ([]RecurringFee, error)

	// Save creates or updates a recurring fee
	Save(ctx context.Context, fee *RecurringFee) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, fee *RecurringFee) error
}

// SpecialFeeRepository persists one-off special fees
type SpecialFeeRepository interface {
	// FindByIDForClub finds a special fee by ID for a specific club
	FindByIDForClub(ctx context.Context, clubID, id uuid.UUID) (*SpecialFee, error)

	// FindByIDForUpdate finds a special fee and takes an exclusive row
	// lock for the duration of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, clubID, id uuid.UUID) (*SpecialFee, error)

	// FindByMember finds special fees for a member with filtering
	FindByMember(ctx context.Context, clubID, memberID uuid.UUID, filter ObligationFilter) ([]SpecialFee, error)

	// FindOutstanding finds fees with an unpaid balance for a member
	FindOutstanding(ctx context.Context, clubID, memberID uuid.UUID) ([]SpecialFee, error)

	// Save creates or updates a special fee
	Save(ctx context.Context, fee *SpecialFee) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, fee *SpecialFee) error
}

// PaymentRepository persists payments
type PaymentRepository interface {
	// FindByIDForClub finds a payment by ID for a specific club
	FindByIDForClub(ctx context.Context, clubID, id uuid.UUID) (*Payment, error)

	// FindByIDForUpdate finds a payment and takes an exclusive row lock
	// for the duration of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, clubID, id uuid.UUID) (*Payment, error)

	// FindAllForClub finds payments for a club with filtering, ordered by
	// payment date descending
	FindAllForClub(ctx context.Context, clubID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// CountForClub counts payments for a club with the same filters
	CountForClub(ctx context.Context, clubID uuid.UUID, filter PaymentFilter) (int64, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, payment *Payment) error

	// SumApprovedForClub sums the amount of approved payments in a date range
	SumApprovedForClub(ctx context.Context, clubID uuid.UUID, from, to *time.Time) (decimal.Decimal, int64, error)
}

// AllocationRepository persists payment allocations. Rows are append-only.
type AllocationRepository interface {
	// Create inserts a new allocation row
	Create(ctx context.Context, allocation *Allocation) error

	// FindByPayment returns all allocations of a payment in insertion order
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]Allocation, error)
}

// CommissionRepository persists commission records. Rows are append-only.
type CommissionRepository interface {
	// Create inserts a new commission row
	Create(ctx context.Context, commission *Commission) error

	// FindByPayment returns the commission records of a payment, oldest first
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]Commission, error)

	// FindAllForClub returns all commissions of a club
	FindAllForClub(ctx context.Context, clubID uuid.UUID) ([]Commission, error)

	// SumForClub sums commission and club net amounts for a club
	SumForClub(ctx context.Context, clubID uuid.UUID) (commission, clubNet decimal.Decimal, err error)
}
