package billing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/clubbill/backend/internal/domain/billing"
	clubdomain "github.com/clubbill/backend/internal/domain/club"
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/clubbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService is the state machine over a payment's lifecycle. It owns
// the three transitions the core implements (create, approve, cancel) and
// runs each inside one transaction scope so the payment row, every ledger
// mutation and every allocation/commission insert land atomically.
type PaymentService struct {
	scope     TransactionScope
	clubs     clubdomain.Repository
	allocator *PaymentAllocator
	clock     Clock
	logger    *zap.Logger
}

// NewPaymentService creates a PaymentService
func NewPaymentService(
	scope TransactionScope,
	clubs clubdomain.Repository,
	allocator *PaymentAllocator,
	clock Clock,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = NewRealClock()
	}
	return &PaymentService{
		scope:     scope,
		clubs:     clubs,
		allocator: allocator,
		clock:     clock,
		logger:    logger,
	}
}

// CreatePayment creates a PENDING payment and, when fee ids are given,
// immediately allocates the amount across them. Allocation happens at
// creation time, independent of approval; approval only affects the
// commission.
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*PaymentResult, error) {
	paymentDate := s.clock.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	payment, err := billing.NewPayment(
		req.ClubID,
		req.MemberID,
		valueobject.NewMoneyEUR(req.Amount),
		req.Method,
		paymentDate,
	)
	if err != nil {
		return nil, err
	}
	if req.ReferenceNumber != "" || req.ReceiptURL != "" || req.Notes != "" {
		payment.ReferenceNumber = req.ReferenceNumber
		payment.ReceiptURL = req.ReceiptURL
		payment.Notes = req.Notes
	}

	var allocations []billing.Allocation
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if len(req.RecurringFeeIDs) > 0 || len(req.SpecialFeeIDs) > 0 {
			allocations, err = s.allocator.Allocate(ctx, repos, payment, req.RecurringFeeIDs, req.SpecialFeeIDs)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("club_id", payment.ClubID.String()),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.Int("allocations", len(allocations)),
	)

	return &PaymentResult{Payment: payment, Allocations: allocations}, nil
}

// ApprovePayment moves the payment to APPROVED and records the commission
// snapshot, atomically. Re-approval fails; approving from REJECTED or
// CANCELLED is deliberately permitted, matching the platform's observed
// behavior.
func (s *PaymentService) ApprovePayment(ctx context.Context, clubID, paymentID uuid.UUID) (*ApprovePaymentResult, error) {
	var (
		payment    *billing.Payment
		commission *billing.Commission
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.Payments().FindByIDForUpdate(ctx, clubID, paymentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
			}
			return fmt.Errorf("failed to load payment: %w", err)
		}

		if err := payment.Approve(); err != nil {
			return err
		}

		pct, err := s.clubs.GetCommissionPercentage(ctx, clubID)
		if err != nil {
			return fmt.Errorf("failed to read commission percentage: %w", err)
		}
		commission, err = billing.NewCommission(payment, pct, s.clock.Now())
		if err != nil {
			return err
		}

		if err := repos.Payments().SaveWithLock(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if err := repos.Commissions().Create(ctx, commission); err != nil {
			return fmt.Errorf("failed to create commission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment approved",
		zap.String("payment_id", payment.ID.String()),
		zap.String("commission_amount", commission.CommissionAmount.StringFixed(2)),
		zap.String("club_net_amount", commission.ClubNetAmount.StringFixed(2)),
	)

	return &ApprovePaymentResult{Payment: payment, Commission: commission}, nil
}

// CancelPayment moves the payment to CANCELLED and reverts every allocation
// it made. Allocation happens at creation, so cancellation always reverts,
// whatever the prior status was. The commission record, if one exists, is
// left untouched (immutable accounting trail).
func (s *PaymentService) CancelPayment(ctx context.Context, clubID, paymentID uuid.UUID, reason string) (*billing.Payment, error) {
	var payment *billing.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.Payments().FindByIDForUpdate(ctx, clubID, paymentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
			}
			return fmt.Errorf("failed to load payment: %w", err)
		}

		if err := payment.Cancel(reason); err != nil {
			return err
		}

		allocations, err := repos.Allocations().FindByPayment(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load allocations: %w", err)
		}
		if err := s.revertAllocations(ctx, repos, payment, allocations); err != nil {
			return err
		}

		if err := repos.Payments().SaveWithLock(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment cancelled",
		zap.String("payment_id", payment.ID.String()),
		zap.String("club_id", payment.ClubID.String()),
	)

	return payment, nil
}

// revertAllocations undoes the ledger effect of each allocation. Obligation
// rows are locked in ascending id order, the same canonical order the
// allocator uses, before any mutation.
func (s *PaymentService) revertAllocations(
	ctx context.Context,
	repos TransactionalRepositories,
	payment *billing.Payment,
	allocations []billing.Allocation,
) error {
	refs := make([]obligationRef, 0, len(allocations))
	for _, a := range allocations {
		refs = append(refs, obligationRef{kind: a.ObligationKind, id: a.ObligationID})
	}
	sort.Slice(refs, func(i, j int) bool {
		return bytes.Compare(refs[i].id[:], refs[j].id[:]) < 0
	})

	obligations := make(map[obligationRef]billing.Obligation, len(refs))
	for _, ref := range refs {
		if _, done := obligations[ref]; done {
			continue
		}
		var (
			obligation billing.Obligation
			err        error
		)
		switch ref.kind {
		case billing.ObligationKindRecurringFee:
			obligation, err = repos.RecurringFees().FindByIDForUpdate(ctx, payment.ClubID, ref.id)
		case billing.ObligationKindSpecialFee:
			obligation, err = repos.SpecialFees().FindByIDForUpdate(ctx, payment.ClubID, ref.id)
		}
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("allocated obligation missing during cancellation",
					zap.String("payment_id", payment.ID.String()),
					zap.String("obligation_id", ref.id.String()),
				)
				continue
			}
			return fmt.Errorf("failed to lock obligation %s: %w", ref.id, err)
		}
		obligations[ref] = obligation
	}

	for _, a := range allocations {
		ref := obligationRef{kind: a.ObligationKind, id: a.ObligationID}
		obligation, ok := obligations[ref]
		if !ok {
			continue
		}
		if err := obligation.Ledger().Revert(a.AmountApplied); err != nil {
			if shared.IsConsistencyError(err) {
				s.logger.Error("ledger consistency violation during cancellation",
					zap.String("payment_id", payment.ID.String()),
					zap.String("obligation_id", ref.id.String()),
					zap.Error(err),
				)
			}
			return err
		}
		obligation.Touch()
		if err := s.allocator.saveObligation(ctx, repos, obligation); err != nil {
			return fmt.Errorf("failed to save obligation %s: %w", ref.id, err)
		}
	}
	return nil
}

// GetPayment returns a payment with its allocations and commission records
func (s *PaymentService) GetPayment(ctx context.Context, clubID, paymentID uuid.UUID) (*PaymentResult, error) {
	var result PaymentResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.Payments().FindByIDForClub(ctx, clubID, paymentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
			}
			return err
		}
		allocations, err := repos.Allocations().FindByPayment(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load allocations: %w", err)
		}
		commissions, err := repos.Commissions().FindByPayment(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load commissions: %w", err)
		}
		result = PaymentResult{Payment: payment, Allocations: allocations, Commissions: commissions}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListPayments returns payments for a club with filtering and pagination
func (s *PaymentService) ListPayments(ctx context.Context, clubID uuid.UUID, filter billing.PaymentFilter) (shared.Paginated[billing.Payment], error) {
	var page shared.Paginated[billing.Payment]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payments, err := repos.Payments().FindAllForClub(ctx, clubID, filter)
		if err != nil {
			return err
		}
		total, err := repos.Payments().CountForClub(ctx, clubID, filter)
		if err != nil {
			return err
		}
		page = shared.NewPaginated(payments, total, filter.Page, filter.PageSize)
		return nil
	})
	if err != nil {
		return shared.Paginated[billing.Payment]{}, err
	}
	return page, nil
}

// ListCommissions returns the commission records recorded for a club,
// newest first
func (s *PaymentService) ListCommissions(ctx context.Context, clubID uuid.UUID) ([]billing.Commission, error) {
	var commissions []billing.Commission
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		commissions, err = repos.Commissions().FindAllForClub(ctx, clubID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return commissions, nil
}

// UpdatePaymentDetails mutates the descriptive fields that remain mutable
// after creation (reference number, receipt URL, notes)
func (s *PaymentService) UpdatePaymentDetails(
	ctx context.Context,
	clubID, paymentID uuid.UUID,
	referenceNumber, receiptURL, notes *string,
) (*billing.Payment, error) {
	var payment *billing.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.Payments().FindByIDForUpdate(ctx, clubID, paymentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
			}
			return err
		}
		payment.UpdateDetails(referenceNumber, receiptURL, notes)
		return repos.Payments().SaveWithLock(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// GetSummary aggregates approved payments and commission totals for a club
func (s *PaymentService) GetSummary(ctx context.Context, clubID uuid.UUID, from, to *time.Time) (*PaymentSummary, error) {
	var summary PaymentSummary
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		totalAmount, count, err := repos.Payments().SumApprovedForClub(ctx, clubID, from, to)
		if err != nil {
			return fmt.Errorf("failed to sum approved payments: %w", err)
		}
		commission, clubNet, err := repos.Commissions().SumForClub(ctx, clubID)
		if err != nil {
			return fmt.Errorf("failed to sum commissions: %w", err)
		}

		summary = PaymentSummary{
			TotalPayments:   count,
			TotalAmount:     totalAmount,
			TotalCommission: commission,
			TotalClubNet:    clubNet,
			AveragePayment:  decimal.Zero,
		}
		if count > 0 {
			summary.AveragePayment = totalAmount.Div(decimal.NewFromInt(count)).Round(valueobject.CentPlaces)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
