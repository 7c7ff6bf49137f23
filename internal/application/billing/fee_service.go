package billing

import (
	"context"
	"errors"
	"time"

	"github.com/clubbill/backend/internal/domain/billing"
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/clubbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateRecurringFeeRequest carries the data for one generated plan fee
type CreateRecurringFeeRequest struct {
	ClubID         uuid.UUID
	MemberID       uuid.UUID
	FeePlanID      uuid.UUID
	Amount         valueobject.Money
	DiscountAmount valueobject.Money
	PeriodStart    time.Time
	PeriodEnd      time.Time
	DueDate        time.Time
}

// CreateSpecialFeeRequest carries the data for a one-off fee
type CreateSpecialFeeRequest struct {
	ClubID   uuid.UUID
	MemberID uuid.UUID
	EventID  *uuid.UUID
	Name     string
	FeeType  billing.SpecialFeeType
	Amount   valueobject.Money
	DueDate  time.Time
}

// OutstandingFees groups a member's unpaid obligations by kind
type OutstandingFees struct {
	RecurringFees []billing.RecurringFee `json:"recurring_fees"`
	SpecialFees   []billing.SpecialFee   `json:"special_fees"`
}

// FeeService manages obligations: creation, queries and the overdue
// transition. Ledger mutations driven by payments stay in PaymentService.
type FeeService struct {
	scope  TransactionScope
	clock  Clock
	logger *zap.Logger
}

// NewFeeService creates a FeeService
func NewFeeService(scope TransactionScope, clock Clock, logger *zap.Logger) *FeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = NewRealClock()
	}
	return &FeeService{scope: scope, clock: clock, logger: logger}
}

// CreateRecurringFee persists a fee instance generated from a plan period
func (s *FeeService) CreateRecurringFee(ctx context.Context, req CreateRecurringFeeRequest) (*billing.RecurringFee, error) {
	fee, err := billing.NewRecurringFee(
		req.ClubID, req.MemberID, req.FeePlanID,
		req.Amount, req.DiscountAmount,
		req.PeriodStart, req.PeriodEnd, req.DueDate,
	)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.RecurringFees().Save(ctx, fee)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recurring fee created",
		zap.String("fee_id", fee.ID.String()),
		zap.String("club_id", fee.ClubID.String()),
		zap.String("member_id", fee.MemberID.String()),
		zap.String("amount_due", fee.AmountDue.StringFixed(2)),
	)
	return fee, nil
}

// CreateSpecialFee persists a one-off fee owed by a member
func (s *FeeService) CreateSpecialFee(ctx context.Context, req CreateSpecialFeeRequest) (*billing.SpecialFee, error) {
	fee, err := billing.NewSpecialFee(
		req.ClubID, req.MemberID, req.EventID,
		req.Name, req.FeeType, req.Amount, req.DueDate,
	)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.SpecialFees().Save(ctx, fee)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("special fee created",
		zap.String("fee_id", fee.ID.String()),
		zap.String("club_id", fee.ClubID.String()),
		zap.String("member_id", fee.MemberID.String()),
		zap.String("fee_type", string(fee.FeeType)),
		zap.String("amount_due", fee.AmountDue.StringFixed(2)),
	)
	return fee, nil
}

// ListOutstanding returns every obligation of a member that still has an
// unpaid balance, recurring fees and special fees alike
func (s *FeeService) ListOutstanding(ctx context.Context, clubID, memberID uuid.UUID) (*OutstandingFees, error) {
	var out OutstandingFees
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		recurring, err := repos.RecurringFees().FindOutstanding(ctx, clubID, memberID)
		if err != nil {
			return err
		}
		special, err := repos.SpecialFees().FindOutstanding(ctx, clubID, memberID)
		if err != nil {
			return err
		}
		out.RecurringFees = recurring
		out.SpecialFees = special
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByMember returns a member's fees of both kinds with filtering
func (s *FeeService) ListByMember(ctx context.Context, clubID, memberID uuid.UUID, filter billing.ObligationFilter) (*OutstandingFees, error) {
	var out OutstandingFees
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		recurring, err := repos.RecurringFees().FindByMember(ctx, clubID, memberID, filter)
		if err != nil {
			return err
		}
		special, err := repos.SpecialFees().FindByMember(ctx, clubID, memberID, filter)
		if err != nil {
			return err
		}
		out.RecurringFees = recurring
		out.SpecialFees = special
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkRecurringFeeOverdue flags a past-due recurring fee. Driven by the
// due-date scheduler, never by payment processing.
func (s *FeeService) MarkRecurringFeeOverdue(ctx context.Context, clubID, feeID uuid.UUID) (*billing.RecurringFee, error) {
	var fee *billing.RecurringFee
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		fee, err = repos.RecurringFees().FindByIDForUpdate(ctx, clubID, feeID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("FEE_NOT_FOUND", "Recurring fee not found")
			}
			return err
		}
		if err := fee.Ledger().MarkOverdue(); err != nil {
			return err
		}
		fee.Touch()
		return repos.RecurringFees().SaveWithLock(ctx, fee)
	})
	if err != nil {
		return nil, err
	}
	return fee, nil
}

// MarkSpecialFeeOverdue flags a past-due special fee
func (s *FeeService) MarkSpecialFeeOverdue(ctx context.Context, clubID, feeID uuid.UUID) (*billing.SpecialFee, error) {
	var fee *billing.SpecialFee
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		fee, err = repos.SpecialFees().FindByIDForUpdate(ctx, clubID, feeID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("FEE_NOT_FOUND", "Special fee not found")
			}
			return err
		}
		if err := fee.Ledger().MarkOverdue(); err != nil {
			return err
		}
		fee.Touch()
		return repos.SpecialFees().SaveWithLock(ctx, fee)
	})
	if err != nil {
		return nil, err
	}
	return fee, nil
}
