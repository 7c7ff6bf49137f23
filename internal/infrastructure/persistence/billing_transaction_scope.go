package persistence

import (
	"context"

	appbilling "github.com/clubbill/backend/internal/application/billing"
	"github.com/clubbill/backend/internal/domain/billing"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all billing repositories
// scoped to the current transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Payments returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Payments() billing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// RecurringFees returns the recurring fee repository scoped to the current transaction.
func (r *gormTransactionalRepositories) RecurringFees() billing.RecurringFeeRepository {
	return NewGormRecurringFeeRepository(r.tx)
}

// SpecialFees returns the special fee repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SpecialFees() billing.SpecialFeeRepository {
	return NewGormSpecialFeeRepository(r.tx)
}

// Allocations returns the allocation repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Allocations() billing.AllocationRepository {
	return NewGormAllocationRepository(r.tx)
}

// Commissions returns the commission repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Commissions() billing.CommissionRepository {
	return NewGormCommissionRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appbilling.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appbilling.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
