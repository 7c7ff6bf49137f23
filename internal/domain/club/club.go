package club

import (
	"time"

	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the operating status of a club
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusInactive  Status = "INACTIVE"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusSuspended || s == StatusInactive
}

// DefaultCommissionPercentage is applied to clubs created without a rate
var DefaultCommissionPercentage = decimal.NewFromFloat(5.0)

// Club is a tenant: the isolation boundary for all obligations, payments
// and commissions. Club management itself lives outside this service; the
// billing core reads the commission rate from here at approval time.
type Club struct {
	shared.BaseAggregateRoot
	Name                 string          `json:"name"`
	ContactEmail         string          `json:"contact_email"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	Status               Status          `json:"status"`
	RegistrationDate     time.Time       `json:"registration_date"`
}

// NewClub creates an active club with the given commission rate
func NewClub(name, contactEmail string, commissionPercentage decimal.Decimal) (*Club, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Club name cannot be empty")
	}
	if contactEmail == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Contact email cannot be empty")
	}
	if commissionPercentage.IsNegative() || commissionPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_PERCENTAGE", "Commission percentage must be within [0, 100]")
	}

	return &Club{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		Name:                 name,
		ContactEmail:         contactEmail,
		CommissionPercentage: commissionPercentage,
		Status:               StatusActive,
		RegistrationDate:     time.Now(),
	}, nil
}

// IsActive returns true if the club may process payments
func (c *Club) IsActive() bool {
	return c.Status == StatusActive
}

// SetCommissionPercentage updates the platform rate for future approvals.
// Existing commission records keep their snapshot.
func (c *Club) SetCommissionPercentage(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_PERCENTAGE", "Commission percentage must be within [0, 100]")
	}
	c.CommissionPercentage = pct
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}
