package models

import (
	"time"

	"github.com/clubbill/backend/internal/domain/billing"
	"github.com/clubbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurringFeeModel is the persistence model for the RecurringFee aggregate root.
type RecurringFeeModel struct {
	TenantAggregateModel
	MemberID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	FeePlanID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal   `gorm:"type:decimal(10,2);not null"`
	DiscountAmount decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0"`
	AmountDue      decimal.Decimal   `gorm:"type:decimal(10,2);not null"`
	PaidAmount     decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0"`
	Status         billing.FeeStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PeriodStart    time.Time         `gorm:"not null"`
	PeriodEnd      time.Time         `gorm:"not null"`
	DueDate        time.Time         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (RecurringFeeModel) TableName() string {
	return "recurring_fees"
}

// ToDomain converts the persistence model to a domain RecurringFee entity.
func (m *RecurringFeeModel) ToDomain() *billing.RecurringFee {
	fee := &billing.RecurringFee{
		MemberID:       m.MemberID,
		FeePlanID:      m.FeePlanID,
		Amount:         m.Amount,
		DiscountAmount: m.DiscountAmount,
		PeriodStart:    m.PeriodStart,
		PeriodEnd:      m.PeriodEnd,
		DueDate:        m.DueDate,
		FeeLedger: billing.FeeLedger{
			AmountDue:  m.AmountDue,
			PaidAmount: m.PaidAmount,
			Status:     m.Status,
		},
	}
	m.PopulateTenantAggregateRoot(&fee.TenantAggregateRoot)
	return fee
}

// FromDomain populates the persistence model from a domain RecurringFee entity.
func (m *RecurringFeeModel) FromDomain(fee *billing.RecurringFee) {
	m.FromDomainTenantAggregateRoot(fee.TenantAggregateRoot)
	m.MemberID = fee.MemberID
	m.FeePlanID = fee.FeePlanID
	m.Amount = fee.Amount
	m.DiscountAmount = fee.DiscountAmount
	m.AmountDue = fee.AmountDue
	m.PaidAmount = fee.PaidAmount
	m.Status = fee.Status
	m.PeriodStart = fee.PeriodStart
	m.PeriodEnd = fee.PeriodEnd
	m.DueDate = fee.DueDate
}

// RecurringFeeModelFromDomain creates a new persistence model from a domain RecurringFee.
func RecurringFeeModelFromDomain(fee *billing.RecurringFee) *RecurringFeeModel {
	m := &RecurringFeeModel{}
	m.FromDomain(fee)
	return m
}

// SpecialFeeModel is the persistence model for the SpecialFee aggregate root.
type SpecialFeeModel struct {
	TenantAggregateModel
	MemberID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	EventID     *uuid.UUID             `gorm:"type:uuid;index"`
	Name        string                 `gorm:"type:varchar(200);not null"`
	Description string                 `gorm:"type:text"`
	FeeType     billing.SpecialFeeType `gorm:"type:varchar(30);not null"`
	AmountDue   decimal.Decimal        `gorm:"type:decimal(10,2);not null"`
	PaidAmount  decimal.Decimal        `gorm:"type:decimal(10,2);not null;default:0"`
	Status      billing.FeeStatus      `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	DueDate     time.Time              `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SpecialFeeModel) TableName() string {
	return "special_fees"
}

// ToDomain converts the persistence model to a domain SpecialFee entity.
func (m *SpecialFeeModel) ToDomain() *billing.SpecialFee {
	fee := &billing.SpecialFee{
		MemberID:    m.MemberID,
		EventID:     m.EventID,
		Name:        m.Name,
		Description: m.Description,
		FeeType:     m.FeeType,
		DueDate:     m.DueDate,
		FeeLedger: billing.FeeLedger{
			AmountDue:  m.AmountDue,
			PaidAmount: m.PaidAmount,
			Status:     m.Status,
		},
	}
	m.PopulateTenantAggregateRoot(&fee.TenantAggregateRoot)
	return fee
}

// FromDomain populates the persistence model from a domain SpecialFee entity.
func (m *SpecialFeeModel) FromDomain(fee *billing.SpecialFee) {
	m.FromDomainTenantAggregateRoot(fee.TenantAggregateRoot)
	m.MemberID = fee.MemberID
	m.EventID = fee.EventID
	m.Name = fee.Name
	m.Description = fee.Description
	m.FeeType = fee.FeeType
	m.AmountDue = fee.AmountDue
	m.PaidAmount = fee.PaidAmount
	m.Status = fee.Status
	m.DueDate = fee.DueDate
}

// SpecialFeeModelFromDomain creates a new persistence model from a domain SpecialFee.
func SpecialFeeModelFromDomain(fee *billing.SpecialFee) *SpecialFeeModel {
	m := &SpecialFeeModel{}
	m.FromDomain(fee)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	TenantAggregateModel
	MemberID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal       `gorm:"type:decimal(10,2);not null"`
	Method          billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	Status          billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentDate     time.Time             `gorm:"not null;index"`
	ReferenceNumber string                `gorm:"type:varchar(100)"`
	ReceiptURL      string                `gorm:"type:varchar(500)"`
	Notes           string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	payment := &billing.Payment{
		MemberID:        m.MemberID,
		Amount:          m.Amount,
		Method:          m.Method,
		Status:          m.Status,
		PaymentDate:     m.PaymentDate,
		ReferenceNumber: m.ReferenceNumber,
		ReceiptURL:      m.ReceiptURL,
		Notes:           m.Notes,
	}
	m.PopulateTenantAggregateRoot(&payment.TenantAggregateRoot)
	return payment
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(payment *billing.Payment) {
	m.FromDomainTenantAggregateRoot(payment.TenantAggregateRoot)
	m.MemberID = payment.MemberID
	m.Amount = payment.Amount
	m.Method = payment.Method
	m.Status = payment.Status
	m.PaymentDate = payment.PaymentDate
	m.ReferenceNumber = payment.ReferenceNumber
	m.ReceiptURL = payment.ReceiptURL
	m.Notes = payment.Notes
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(payment *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(payment)
	return m
}

// AllocationModel is the persistence model for payment allocations.
// Rows are append-only and never updated after insert.
type AllocationModel struct {
	BaseModel
	ClubID         uuid.UUID              `gorm:"type:uuid;not null;index"`
	PaymentID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	ObligationKind billing.ObligationKind `gorm:"type:varchar(20);not null"`
	ObligationID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	AmountApplied  decimal.Decimal        `gorm:"type:decimal(10,2);not null"`
}

// TableName returns the table name for GORM
func (AllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain Allocation entity.
func (m *AllocationModel) ToDomain() *billing.Allocation {
	return &billing.Allocation{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ClubID:         m.ClubID,
		PaymentID:      m.PaymentID,
		ObligationKind: m.ObligationKind,
		ObligationID:   m.ObligationID,
		AmountApplied:  m.AmountApplied,
	}
}

// FromDomain populates the persistence model from a domain Allocation entity.
func (m *AllocationModel) FromDomain(a *billing.Allocation) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.ClubID = a.ClubID
	m.PaymentID = a.PaymentID
	m.ObligationKind = a.ObligationKind
	m.ObligationID = a.ObligationID
	m.AmountApplied = a.AmountApplied
}

// AllocationModelFromDomain creates a new persistence model from a domain Allocation.
func AllocationModelFromDomain(a *billing.Allocation) *AllocationModel {
	m := &AllocationModel{}
	m.FromDomain(a)
	return m
}

// CommissionModel is the persistence model for commission records.
// Rows are append-only: the payment_id index is deliberately non-unique
// because a payment re-approved after cancellation earns a second record.
type CommissionModel struct {
	BaseModel
	ClubID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentAmount        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CommissionPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	CommissionAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ClubNetAmount        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CalculatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CommissionModel) TableName() string {
	return "commissions"
}

// ToDomain converts the persistence model to a domain Commission entity.
func (m *CommissionModel) ToDomain() *billing.Commission {
	return &billing.Commission{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ClubID:               m.ClubID,
		PaymentID:            m.PaymentID,
		PaymentAmount:        m.PaymentAmount,
		CommissionPercentage: m.CommissionPercentage,
		CommissionAmount:     m.CommissionAmount,
		ClubNetAmount:        m.ClubNetAmount,
		CalculatedAt:         m.CalculatedAt,
	}
}

// FromDomain populates the persistence model from a domain Commission entity.
func (m *CommissionModel) FromDomain(c *billing.Commission) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.ClubID = c.ClubID
	m.PaymentID = c.PaymentID
	m.PaymentAmount = c.PaymentAmount
	m.CommissionPercentage = c.CommissionPercentage
	m.CommissionAmount = c.CommissionAmount
	m.ClubNetAmount = c.ClubNetAmount
	m.CalculatedAt = c.CalculatedAt
}

// CommissionModelFromDomain creates a new persistence model from a domain Commission.
func CommissionModelFromDomain(c *billing.Commission) *CommissionModel {
	m := &CommissionModel{}
	m.FromDomain(c)
	return m
}
