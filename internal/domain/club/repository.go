package club

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the tenant registry consumed by the billing core
type Repository interface {
	// FindByID finds a club by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Club, error)

	// GetCommissionPercentage returns the club's current platform rate
	GetCommissionPercentage(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)

	// Save creates or updates a club
	Save(ctx context.Context, c *Club) error
}
