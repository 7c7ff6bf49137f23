package billing

import (
	"context"

	"github.com/clubbill/backend/internal/domain/billing"
)

// TransactionScope provides transactional access to billing repositories.
// Every lifecycle operation (create, approve, cancel) runs inside one
// Execute call so that payment mutations, ledger mutations and
// allocation/commission inserts commit or roll back as a unit; a failure
// mid-loop never leaves some obligations updated and others not.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all billing repositories
// sharing one underlying database transaction.
type TransactionalRepositories interface {
	// Payments returns the payment repository scoped to the current transaction
	Payments() billing.PaymentRepository
	// RecurringFees returns the recurring fee repository scoped to the current transaction
	RecurringFees() billing.RecurringFeeRepository
	// SpecialFees returns the special fee repository scoped to the current transaction
	SpecialFees() billing.SpecialFeeRepository
	// Allocations returns the allocation repository scoped to the current transaction
	Allocations() billing.AllocationRepository
	// Commissions returns the commission repository scoped to the current transaction
	Commissions() billing.CommissionRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests with in-memory repositories.
type NoOpTransactionScope struct {
	payments      billing.PaymentRepository
	recurringFees billing.RecurringFeeRepository
	specialFees   billing.SpecialFeeRepository
	allocations   billing.AllocationRepository
	commissions   billing.CommissionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	payments billing.PaymentRepository,
	recurringFees billing.RecurringFeeRepository,
	specialFees billing.SpecialFeeRepository,
	allocations billing.AllocationRepository,
	commissions billing.CommissionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		payments:      payments,
		recurringFees: recurringFees,
		specialFees:   specialFees,
		allocations:   allocations,
		commissions:   commissions,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Payments returns the payment repository
func (s *NoOpTransactionScope) Payments() billing.PaymentRepository { return s.payments }

// RecurringFees returns the recurring fee repository
func (s *NoOpTransactionScope) RecurringFees() billing.RecurringFeeRepository {
	return s.recurringFees
}

// SpecialFees returns the special fee repository
func (s *NoOpTransactionScope) SpecialFees() billing.SpecialFeeRepository { return s.specialFees }

// Allocations returns the allocation repository
func (s *NoOpTransactionScope) Allocations() billing.AllocationRepository { return s.allocations }

// Commissions returns the commission repository
func (s *NoOpTransactionScope) Commissions() billing.CommissionRepository { return s.commissions }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
