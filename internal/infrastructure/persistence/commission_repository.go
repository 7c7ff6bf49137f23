package persistence

import (
	"context"

	"github.com/clubbill/backend/internal/domain/billing"
	"github.com/clubbill/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCommissionRepository implements CommissionRepository using GORM.
// Commission rows are append-only: cancellation never deletes or amends
// them, and a re-approved payment gains an additional record.
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewGormCommissionRepository creates a new GormCommissionRepository
func NewGormCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// Create inserts a new commission row
func (r *GormCommissionRepository) Create(ctx context.Context, commission *billing.Commission) error {
	model := models.CommissionModelFromDomain(commission)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByPayment returns the commission records of a payment, oldest first
func (r *GormCommissionRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]billing.Commission, error) {
	var commissionModels []models.CommissionModel
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("calculated_at ASC").
		Find(&commissionModels).Error; err != nil {
		return nil, err
	}
	commissions := make([]billing.Commission, len(commissionModels))
	for i, model := range commissionModels {
		commissions[i] = *model.ToDomain()
	}
	return commissions, nil
}

// FindAllForClub returns all commissions of a club
func (r *GormCommissionRepository) FindAllForClub(ctx context.Context, clubID uuid.UUID) ([]billing.Commission, error) {
	var commissionModels []models.CommissionModel
	if err := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("calculated_at DESC").
		Find(&commissionModels).Error; err != nil {
		return nil, err
	}
	commissions := make([]billing.Commission, len(commissionModels))
	for i, model := range commissionModels {
		commissions[i] = *model.ToDomain()
	}
	return commissions, nil
}

// SumForClub sums commission and club net amounts for a club
func (r *GormCommissionRepository) SumForClub(ctx context.Context, clubID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	type row struct {
		Commission decimal.Decimal
		ClubNet    decimal.Decimal
	}
	var result row
	if err := r.db.WithContext(ctx).Model(&models.CommissionModel{}).
		Select("COALESCE(SUM(commission_amount), 0) AS commission, COALESCE(SUM(club_net_amount), 0) AS club_net").
		Where("club_id = ?", clubID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return result.Commission, result.ClubNet, nil
}

var _ billing.CommissionRepository = (*GormCommissionRepository)(nil)
