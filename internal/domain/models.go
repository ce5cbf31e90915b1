package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Enumerations
const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"

	DebtActive    DebtStatus = "active"
	DebtCompleted DebtStatus = "completed"
	DebtCancelled DebtStatus = "cancelled"

	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentOverdue InstallmentStatus = "overdue"

	PaymentPaid    PaymentStatus = "paid"
	PaymentNotPaid PaymentStatus = "not_paid"
	PaymentAbsent  PaymentStatus = "client_absent"

	AssignmentPending AssignmentStatus = "pending"
	AssignmentVisited AssignmentStatus = "visited"
)

type Frequency string
type DebtStatus string
type InstallmentStatus string
type PaymentStatus string
type AssignmentStatus string

// Valid reports whether the frequency is a known value.
func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// Step is the number of days between two consecutive installments.
func (f Frequency) Step() int {
	if f == FrequencyWeekly {
		return 7
	}
	return 1
}

func (s PaymentStatus) Valid() bool {
	return s == PaymentPaid || s == PaymentNotPaid || s == PaymentAbsent
}

func (s DebtStatus) Valid() bool {
	return s == DebtActive || s == DebtCompleted || s == DebtCancelled
}

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string
	Role         Role
	PasswordHash *string
	IsProvider   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type Client struct {
	ID         uuid.UUID
	Name       string
	DocumentID string
	Phone      string
	Address    string
	CreatedBy  *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

type Debt struct {
	ID                uuid.UUID
	ClientID          uuid.UUID
	ClientName        string
	TotalAmount       decimal.Decimal
	InstallmentAmount decimal.Decimal
	Frequency         Frequency
	StartDate         time.Time
	Status            DebtStatus
	CreatedBy         *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ScheduleItem is one due installment of a debt's amortization plan.
// Generated once at debt creation; only Status changes afterward.
type ScheduleItem struct {
	ID                uuid.UUID
	DebtID            uuid.UUID
	InstallmentNumber int
	DueDate           time.Time
	Amount            decimal.Decimal
	Status            InstallmentStatus
}

type Route struct {
	ID          uuid.UUID
	CollectorID uuid.UUID
	Collector   string
	RouteDate   time.Time
	Notes       string
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

type RouteAssignment struct {
	ID             uuid.UUID
	RouteID        uuid.UUID
	ClientID       uuid.UUID
	ScheduleItemID *uuid.UUID
	Position       int
	Status         AssignmentStatus
	Client         *Client
	DueItem        *ScheduleItem
	CreatedAt      time.Time
}

type Payment struct {
	ID             uuid.UUID
	AssignmentID   uuid.UUID
	DebtID         uuid.UUID
	ScheduleItemID *uuid.UUID
	Status         PaymentStatus
	AmountPaid     *decimal.Decimal
	EvidencePhoto  *string
	Notes          string
	RecordedBy     uuid.UUID
	RecordedAt     time.Time
	UpdatedAt      time.Time
}
