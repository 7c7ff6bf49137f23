package models

import (
	"time"

	"github.com/clubbill/backend/internal/domain/club"
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ClubModel is the persistence model for the Club aggregate root.
type ClubModel struct {
	AggregateModel
	Name                 string          `gorm:"type:varchar(200);not null"`
	ContactEmail         string          `gorm:"type:varchar(200);not null"`
	CommissionPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Status               club.Status     `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	RegistrationDate     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ClubModel) TableName() string {
	return "clubs"
}

// ToDomain converts the persistence model to a domain Club entity.
func (m *ClubModel) ToDomain() *club.Club {
	return &club.Club{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Name:                 m.Name,
		ContactEmail:         m.ContactEmail,
		CommissionPercentage: m.CommissionPercentage,
		Status:               m.Status,
		RegistrationDate:     m.RegistrationDate,
	}
}

// FromDomain populates the persistence model from a domain Club entity.
func (m *ClubModel) FromDomain(c *club.Club) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.ContactEmail = c.ContactEmail
	m.CommissionPercentage = c.CommissionPercentage
	m.Status = c.Status
	m.RegistrationDate = c.RegistrationDate
}

// ClubModelFromDomain creates a new persistence model from a domain Club.
func ClubModelFromDomain(c *club.Club) *ClubModel {
	m := &ClubModel{}
	m.FromDomain(c)
	return m
}
