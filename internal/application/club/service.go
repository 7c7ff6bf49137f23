package club

import (
	"context"
	"errors"

	clubdomain "github.com/clubbill/backend/internal/domain/club"
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateClubRequest carries the data to register a club
type CreateClubRequest struct {
	Name                 string
	ContactEmail         string
	CommissionPercentage *decimal.Decimal // Defaults to the platform rate when nil
}

// Service manages the tenant registry. Club administration proper lives in
// a separate system; this service covers what the billing core needs:
// registration, lookup and the commission rate.
type Service struct {
	clubs  clubdomain.Repository
	logger *zap.Logger
}

// NewService creates a club Service
func NewService(clubs clubdomain.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{clubs: clubs, logger: logger}
}

// CreateClub registers a club, defaulting the commission percentage
func (s *Service) CreateClub(ctx context.Context, req CreateClubRequest) (*clubdomain.Club, error) {
	pct := clubdomain.DefaultCommissionPercentage
	if req.CommissionPercentage != nil {
		pct = *req.CommissionPercentage
	}

	c, err := clubdomain.NewClub(req.Name, req.ContactEmail, pct)
	if err != nil {
		return nil, err
	}
	if err := s.clubs.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("club registered",
		zap.String("club_id", c.ID.String()),
		zap.String("name", c.Name),
		zap.String("commission_percentage", c.CommissionPercentage.StringFixed(2)),
	)
	return c, nil
}

// GetClub looks up a club by ID
func (s *Service) GetClub(ctx context.Context, id uuid.UUID) (*clubdomain.Club, error) {
	c, err := s.clubs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CLUB_NOT_FOUND", "Club not found")
		}
		return nil, err
	}
	return c, nil
}

// UpdateCommissionPercentage changes the rate applied to future approvals.
// Existing commission records keep the snapshot they were created with.
func (s *Service) UpdateCommissionPercentage(ctx context.Context, id uuid.UUID, pct decimal.Decimal) (*clubdomain.Club, error) {
	c, err := s.clubs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CLUB_NOT_FOUND", "Club not found")
		}
		return nil, err
	}
	if err := c.SetCommissionPercentage(pct); err != nil {
		return nil, err
	}
	if err := s.clubs.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("club commission percentage updated",
		zap.String("club_id", c.ID.String()),
		zap.String("commission_percentage", pct.StringFixed(2)),
	)
	return c, nil
}
