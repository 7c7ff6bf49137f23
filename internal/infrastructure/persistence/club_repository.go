package persistence

import (
	"context"
	"errors"

	"github.com/clubbill/backend/internal/domain/club"
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/clubbill/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormClubRepository implements club.Repository using GORM
type GormClubRepository struct {
	db *gorm.DB
}

// NewGormClubRepository creates a new GormClubRepository
func NewGormClubRepository(db *gorm.DB) *GormClubRepository {
	return &GormClubRepository{db: db}
}

// FindByID finds a club by ID
func (r *GormClubRepository) FindByID(ctx context.Context, id uuid.UUID) (*club.Club, error) {
	var model models.ClubModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetCommissionPercentage returns the club's current platform rate
func (r *GormClubRepository) GetCommissionPercentage(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var model models.ClubModel
	if err := r.db.WithContext(ctx).
		Select("commission_percentage").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, shared.ErrNotFound
		}
		return decimal.Zero, err
	}
	return model.CommissionPercentage, nil
}

// Save creates or updates a club
func (r *GormClubRepository) Save(ctx context.Context, c *club.Club) error {
	model := models.ClubModelFromDomain(c)
	return r.db.WithContext(ctx).Save(model).Error
}

var _ club.Repository = (*GormClubRepository)(nil)
