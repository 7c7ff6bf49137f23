package billing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/clubbill/backend/internal/domain/billing"
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentAllocator distributes a payment's fixed total across an ordered
// list of obligations: recurring fees first, then special fees, preserving
// caller order within each group. That ordering is a policy choice, not an
// accident of storage.
//
// Unknown fee ids are skipped silently. This leniency is deliberate and
// must not be tightened: a payment may reference a fee that was removed
// between the client reading it and submitting the payment.
type PaymentAllocator struct {
	logger *zap.Logger
}

// NewPaymentAllocator creates a PaymentAllocator
func NewPaymentAllocator(logger *zap.Logger) *PaymentAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentAllocator{logger: logger}
}

// obligationRef identifies one obligation in allocation order
type obligationRef struct {
	kind billing.ObligationKind
	id   uuid.UUID
}

// Allocate walks the fee ids in order, applying min(remaining, outstanding)
// to each obligation's ledger and recording one Allocation row per
// obligation touched. Any remaining amount after the list is exhausted is
// left unassigned; it belongs to the payment's total but to no obligation.
//
// All obligation rows are locked up front in ascending obligation-id order,
// independent of allocation order, so two payments allocating overlapping
// fee sets in different orders cannot deadlock.
func (a *PaymentAllocator) Allocate(
	ctx context.Context,
	repos TransactionalRepositories,
	payment *billing.Payment,
	recurringFeeIDs, specialFeeIDs []uuid.UUID,
) ([]billing.Allocation, error) {
	refs := make([]obligationRef, 0, len(recurringFeeIDs)+len(specialFeeIDs))
	for _, id := range recurringFeeIDs {
		refs = append(refs, obligationRef{kind: billing.ObligationKindRecurringFee, id: id})
	}
	for _, id := range specialFeeIDs {
		refs = append(refs, obligationRef{kind: billing.ObligationKindSpecialFee, id: id})
	}

	obligations, err := a.lockObligations(ctx, repos, payment.ClubID, refs)
	if err != nil {
		return nil, err
	}

	allocations := make([]billing.Allocation, 0, len(refs))
	remaining := payment.Amount

	for _, ref := range refs {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		obligation, ok := obligations[ref]
		if !ok {
			// Lenient by design: unknown ids are tolerated, not errors
			a.logger.Debug("skipping unknown obligation during allocation",
				zap.String("payment_id", payment.ID.String()),
				zap.String("obligation_id", ref.id.String()),
				zap.String("obligation_kind", string(ref.kind)),
			)
			continue
		}

		owed := obligation.Ledger().Outstanding()
		if owed.LessThanOrEqual(decimal.Zero) {
			continue
		}
		apply := decimal.Min(remaining, owed)

		if err := obligation.Ledger().Apply(apply); err != nil {
			return nil, fmt.Errorf("failed to apply %s to obligation %s: %w",
				apply.StringFixed(2), ref.id, err)
		}
		obligation.Touch()
		if err := a.saveObligation(ctx, repos, obligation); err != nil {
			return nil, fmt.Errorf("failed to save obligation %s: %w", ref.id, err)
		}

		allocation, err := billing.NewAllocation(payment.ClubID, payment.ID, ref.kind, ref.id, apply)
		if err != nil {
			return nil, err
		}
		if err := repos.Allocations().Create(ctx, allocation); err != nil {
			return nil, fmt.Errorf("failed to create allocation: %w", err)
		}

		allocations = append(allocations, *allocation)
		remaining = remaining.Sub(apply)
	}

	if remaining.GreaterThan(decimal.Zero) && len(allocations) > 0 {
		a.logger.Info("payment carries unassigned surplus",
			zap.String("payment_id", payment.ID.String()),
			zap.String("surplus", remaining.StringFixed(2)),
		)
	}

	return allocations, nil
}

// lockObligations fetches the referenced obligations with exclusive row
// locks, acquiring them in canonical ascending obligation-id order. Unknown
// ids are simply absent from the returned map.
func (a *PaymentAllocator) lockObligations(
	ctx context.Context,
	repos TransactionalRepositories,
	clubID uuid.UUID,
	refs []obligationRef,
) (map[obligationRef]billing.Obligation, error) {
	ordered := make([]obligationRef, len(refs))
	copy(ordered, refs)
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i].id[:], ordered[j].id[:]) < 0
	})

	obligations := make(map[obligationRef]billing.Obligation, len(ordered))
	for _, ref := range ordered {
		if _, done := obligations[ref]; done {
			continue
		}
		var (
			obligation billing.Obligation
			err        error
		)
		switch ref.kind {
		case billing.ObligationKindRecurringFee:
			obligation, err = repos.RecurringFees().FindByIDForUpdate(ctx, clubID, ref.id)
		case billing.ObligationKindSpecialFee:
			obligation, err = repos.SpecialFees().FindByIDForUpdate(ctx, clubID, ref.id)
		}
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to lock obligation %s: %w", ref.id, err)
		}
		obligations[ref] = obligation
	}
	return obligations, nil
}

// saveObligation persists an obligation through the repository matching its kind
func (a *PaymentAllocator) saveObligation(
	ctx context.Context,
	repos TransactionalRepositories,
	obligation billing.Obligation,
) error {
	switch o := obligation.(type) {
	case *billing.RecurringFee:
		return repos.RecurringFees().Save(ctx, o)
	case *billing.SpecialFee:
		return repos.SpecialFees().Save(ctx, o)
	default:
		return shared.NewDomainError("INVALID_OBLIGATION_KIND", "Unknown obligation variant")
	}
}
