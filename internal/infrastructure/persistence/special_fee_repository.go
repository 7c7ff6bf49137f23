package persistence

import (
	"context"
	"errors"

	"github.com/clubbill/backend/internal/domain/billing"
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/clubbill/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSpecialFeeRepository implements SpecialFeeRepository using GORM
type GormSpecialFeeRepository struct {
	db *gorm.DB
}

// NewGormSpecialFeeRepository creates a new GormSpecialFeeRepository
func NewGormSpecialFeeRepository(db *gorm.DB) *GormSpecialFeeRepository {
	return &GormSpecialFeeRepository{db: db}
}

// FindByIDForClub finds a special fee by ID for a specific club
func (r *GormSpecialFeeRepository) FindByIDForClub(ctx context.Context, clubID, id uuid.UUID) (*billing.SpecialFee, error) {
	var model models.SpecialFeeModel
	if err := r.db.WithContext(ctx).
		Where("club_id = ? AND id = ?", clubID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a special fee and takes an exclusive row lock.
// Must run inside a transaction; the lock is released at commit or rollback.
func (r *GormSpecialFeeRepository) FindByIDForUpdate(ctx context.Context, clubID, id uuid.UUID) (*billing.SpecialFee, error) {
	var model models.SpecialFeeModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("club_id = ? AND id = ?", clubID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMember finds special fees for a member with filtering
func (r *GormSpecialFeeRepository) FindByMember(ctx context.Context, clubID, memberID uuid.UUID, filter billing.ObligationFilter) ([]billing.SpecialFee, error) {
	var feeModels []models.SpecialFeeModel
	query := r.db.WithContext(ctx).Model(&models.SpecialFeeModel{}).
		Where("club_id = ? AND member_id = ?", clubID, memberID)
	query = r.applyObligationFilter(query, filter)

	if err := query.Find(&feeModels).Error; err != nil {
		return nil, err
	}
	fees := make([]billing.SpecialFee, len(feeModels))
	for i, model := range feeModels {
		fees[i] = *model.ToDomain()
	}
	return fees, nil
}

// FindOutstanding finds fees with an unpaid balance for a member
func (r *GormSpecialFeeRepository) FindOutstanding(ctx context.Context, clubID, memberID uuid.UUID) ([]billing.SpecialFee, error) {
	var feeModels []models.SpecialFeeModel
	if err := r.db.WithContext(ctx).
		Where("club_id = ? AND member_id = ? AND status IN ?", clubID, memberID,
			[]billing.FeeStatus{billing.FeeStatusPending, billing.FeeStatusPartiallyPaid, billing.FeeStatusOverdue}).
		Order("due_date ASC").
		Find(&feeModels).Error; err != nil {
		return nil, err
	}
	fees := make([]billing.SpecialFee, len(feeModels))
	for i, model := range feeModels {
		fees[i] = *model.ToDomain()
	}
	return fees, nil
}

// Save creates or updates a special fee
func (r *GormSpecialFeeRepository) Save(ctx context.Context, fee *billing.SpecialFee) error {
	model := models.SpecialFeeModelFromDomain(fee)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormSpecialFeeRepository) SaveWithLock(ctx context.Context, fee *billing.SpecialFee) error {
	model := models.SpecialFeeModelFromDomain(fee)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", fee.ID, fee.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// applyObligationFilter applies common obligation filters to the query
func (r *GormSpecialFeeRepository) applyObligationFilter(query *gorm.DB, filter billing.ObligationFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	query = query.Order("due_date ASC")
	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

var _ billing.SpecialFeeRepository = (*GormSpecialFeeRepository)(nil)
