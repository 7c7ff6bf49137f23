package billing

import (
	"context"
	"time"

	"github.com/clubbill/backend/internal/domain/billing"
	clubdomain "github.com/clubbill/backend/internal/domain/club"
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fixedClock pins time for deterministic assertions
type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

type memRecurringFeeRepo struct {
	fees map[uuid.UUID]*billing.RecurringFee
}

func newMemRecurringFeeRepo() *memRecurringFeeRepo {
	return &memRecurringFeeRepo{fees: make(map[uuid.UUID]*billing.RecurringFee)}
}

func (r *memRecurringFeeRepo) FindByIDForClub(_ context.Context, clubID, id uuid.UUID) (*billing.RecurringFee, error) {
	fee, ok := r.fees[id]
	if !ok || fee.ClubID != clubID {
		return nil, shared.ErrNotFound
	}
	return fee, nil
}

func (r *memRecurringFeeRepo) FindByIDForUpdate(ctx context.Context, clubID, id uuid.UUID) (*billing.RecurringFee, error) {
	return r.FindByIDForClub(ctx, clubID, id)
}

func (r *memRecurringFeeRepo) FindByMember(_ context.Context, clubID, memberID uuid.UUID, _ billing.ObligationFilter) ([]billing.RecurringFee, error) {
	var out []billing.RecurringFee
	for _, fee := range r.fees {
		if fee.ClubID == clubID && fee.MemberID == memberID {
			out = append(out, *fee)
		}
	}
	return out, nil
}

func (r *memRecurringFeeRepo) FindOutstanding(_ context.Context, clubID, memberID uuid.UUID) ([]billing.RecurringFee, error) {
	var out []billing.RecurringFee
	for _, fee := range r.fees {
		if fee.ClubID == clubID && fee.MemberID == memberID && !fee.IsSettled() {
			out = append(out, *fee)
		}
	}
	return out, nil
}

func (r *memRecurringFeeRepo) Save(_ context.Context, fee *billing.RecurringFee) error {
	r.fees[fee.ID] = fee
	return nil
}

func (r *memRecurringFeeRepo) SaveWithLock(ctx context.Context, fee *billing.RecurringFee) error {
	return r.Save(ctx, fee)
}

type memSpecialFeeRepo struct {
	fees map[uuid.UUID]*billing.SpecialFee
}

func newMemSpecialFeeRepo() *memSpecialFeeRepo {
	return &memSpecialFeeRepo{fees: make(map[uuid.UUID]*billing.SpecialFee)}
}

func (r *memSpecialFeeRepo) FindByIDForClub(_ context.Context, clubID, id uuid.UUID) (*billing.SpecialFee, error) {
	fee, ok := r.fees[id]
	if !ok || fee.ClubID != clubID {
		return nil, shared.ErrNotFound
	}
	return fee, nil
}

func (r *memSpecialFeeRepo) FindByIDForUpdate(ctx context.Context, clubID, id uuid.UUID) (*billing.SpecialFee, error) {
	return r.FindByIDForClub(ctx, clubID, id)
}

func (r *memSpecialFeeRepo) FindByMember(_ context.Context, clubID, memberID uuid.UUID, _ billing.ObligationFilter) ([]billing.SpecialFee, error) {
	var out []billing.SpecialFee
	for _, fee := range r.fees {
		if fee.ClubID == clubID && fee.MemberID == memberID {
			out = append(out, *fee)
		}
	}
	return out, nil
}

func (r *memSpecialFeeRepo) FindOutstanding(_ context.Context, clubID, memberID uuid.UUID) ([]billing.SpecialFee, error) {
	var out []billing.SpecialFee
	for _, fee := range r.fees {
		if fee.ClubID == clubID && fee.MemberID == memberID && !fee.IsSettled() {
			out = append(out, *fee)
		}
	}
	return out, nil
}

func (r *memSpecialFeeRepo) Save(_ context.Context, fee *billing.SpecialFee) error {
	r.fees[fee.ID] = fee
	return nil
}

func (r *memSpecialFeeRepo) SaveWithLock(ctx context.Context, fee *billing.SpecialFee) error {
	return r.Save(ctx, fee)
}

type memPaymentRepo struct {
	payments map[uuid.UUID]*billing.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[uuid.UUID]*billing.Payment)}
}

func (r *memPaymentRepo) FindByIDForClub(_ context.Context, clubID, id uuid.UUID) (*billing.Payment, error) {
	payment, ok := r.payments[id]
	if !ok || payment.ClubID != clubID {
		return nil, shared.ErrNotFound
	}
	return payment, nil
}

func (r *memPaymentRepo) FindByIDForUpdate(ctx context.Context, clubID, id uuid.UUID) (*billing.Payment, error) {
	return r.FindByIDForClub(ctx, clubID, id)
}

func (r *memPaymentRepo) FindAllForClub(_ context.Context, clubID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	var out []billing.Payment
	for _, payment := range r.payments {
		if payment.ClubID != clubID {
			continue
		}
		if filter.MemberID != nil && payment.MemberID != *filter.MemberID {
			continue
		}
		if filter.Status != nil && payment.Status != *filter.Status {
			continue
		}
		out = append(out, *payment)
	}
	return out, nil
}

func (r *memPaymentRepo) CountForClub(ctx context.Context, clubID uuid.UUID, filter billing.PaymentFilter) (int64, error) {
	payments, err := r.FindAllForClub(ctx, clubID, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(payments)), nil
}

func (r *memPaymentRepo) Save(_ context.Context, payment *billing.Payment) error {
	r.payments[payment.ID] = payment
	return nil
}

func (r *memPaymentRepo) SaveWithLock(ctx context.Context, payment *billing.Payment) error {
	return r.Save(ctx, payment)
}

func (r *memPaymentRepo) SumApprovedForClub(_ context.Context, clubID uuid.UUID, from, to *time.Time) (decimal.Decimal, int64, error) {
	total := decimal.Zero
	var count int64
	for _, payment := range r.payments {
		if payment.ClubID != clubID || payment.Status != billing.PaymentStatusApproved {
			continue
		}
		if from != nil && payment.PaymentDate.Before(*from) {
			continue
		}
		if to != nil && payment.PaymentDate.After(*to) {
			continue
		}
		total = total.Add(payment.Amount)
		count++
	}
	return total, count, nil
}

type memAllocationRepo struct {
	allocations []billing.Allocation
}

func newMemAllocationRepo() *memAllocationRepo {
	return &memAllocationRepo{}
}

func (r *memAllocationRepo) Create(_ context.Context, allocation *billing.Allocation) error {
	r.allocations = append(r.allocations, *allocation)
	return nil
}

func (r *memAllocationRepo) FindByPayment(_ context.Context, paymentID uuid.UUID) ([]billing.Allocation, error) {
	var out []billing.Allocation
	for _, a := range r.allocations {
		if a.PaymentID == paymentID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memCommissionRepo struct {
	commissions []billing.Commission
}

func newMemCommissionRepo() *memCommissionRepo {
	return &memCommissionRepo{}
}

func (r *memCommissionRepo) Create(_ context.Context, commission *billing.Commission) error {
	r.commissions = append(r.commissions, *commission)
	return nil
}

func (r *memCommissionRepo) FindByPayment(_ context.Context, paymentID uuid.UUID) ([]billing.Commission, error) {
	var out []billing.Commission
	for _, c := range r.commissions {
		if c.PaymentID == paymentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCommissionRepo) FindAllForClub(_ context.Context, clubID uuid.UUID) ([]billing.Commission, error) {
	var out []billing.Commission
	for _, c := range r.commissions {
		if c.ClubID == clubID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCommissionRepo) SumForClub(_ context.Context, clubID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	commission := decimal.Zero
	clubNet := decimal.Zero
	for _, c := range r.commissions {
		if c.ClubID == clubID {
			commission = commission.Add(c.CommissionAmount)
			clubNet = clubNet.Add(c.ClubNetAmount)
		}
	}
	return commission, clubNet, nil
}

type memClubRepo struct {
	clubs map[uuid.UUID]*clubdomain.Club
}

func newMemClubRepo() *memClubRepo {
	return &memClubRepo{clubs: make(map[uuid.UUID]*clubdomain.Club)}
}

func (r *memClubRepo) FindByID(_ context.Context, id uuid.UUID) (*clubdomain.Club, error) {
	c, ok := r.clubs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *memClubRepo) GetCommissionPercentage(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return c.CommissionPercentage, nil
}

func (r *memClubRepo) Save(_ context.Context, c *clubdomain.Club) error {
	r.clubs[c.ID] = c
	return nil
}

// billingFixture wires the in-memory repositories into a transaction scope
type billingFixture struct {
	recurringFees *memRecurringFeeRepo
	specialFees   *memSpecialFeeRepo
	payments      *memPaymentRepo
	allocations   *memAllocationRepo
	commissions   *memCommissionRepo
	clubs         *memClubRepo
	scope         *NoOpTransactionScope
}

func newBillingFixture() *billingFixture {
	f := &billingFixture{
		recurringFees: newMemRecurringFeeRepo(),
		specialFees:   newMemSpecialFeeRepo(),
		payments:      newMemPaymentRepo(),
		allocations:   newMemAllocationRepo(),
		commissions:   newMemCommissionRepo(),
		clubs:         newMemClubRepo(),
	}
	f.scope = NewNoOpTransactionScope(f.payments, f.recurringFees, f.specialFees, f.allocations, f.commissions)
	return f
}

var _ billing.RecurringFeeRepository = (*memRecurringFeeRepo)(nil)
var _ billing.SpecialFeeRepository = (*memSpecialFeeRepo)(nil)
var _ billing.PaymentRepository = (*memPaymentRepo)(nil)
var _ billing.AllocationRepository = (*memAllocationRepo)(nil)
var _ billing.CommissionRepository = (*memCommissionRepo)(nil)
var _ clubdomain.Repository = (*memClubRepo)(nil)
