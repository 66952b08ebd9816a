package payment

import (
	"fmt"
	"time"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType identifies what a payment request pays for
type PaymentType string

const (
	// TypeParticipationFee is the upfront payment required to bid on
	// certain auction types
	TypeParticipationFee PaymentType = "participation_fee"
	// TypeWinnerPayment is the amount a reserve-auction winner pays
	// beyond the participation fee
	TypeWinnerPayment PaymentType = "winner_payment"
)

// IsValid returns true if the payment type is known
func (t PaymentType) IsValid() bool {
	return t == TypeParticipationFee || t == TypeWinnerPayment
}

// VerificationStatus tracks the admin verification outcome of a request
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// IsResolved returns true once an admin has approved or rejected
func (s VerificationStatus) IsResolved() bool {
	return s == VerificationApproved || s == VerificationRejected
}

// PaymentRequest is an append-only record of a payment claim submitted
// by a user and verified by an admin. A rejected request is never
// mutated back to pending; resubmission creates a new record so the
// ledger preserves its audit trail.
type PaymentRequest struct {
	shared.BaseAggregateRoot
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_payment_requests_user_auction"`
	UserName  string    `gorm:"type:varchar(200);not null"` // Denormalized for admin display
	UserPhone string    `gorm:"type:varchar(30)"`
	UserEmail string    `gorm:"type:varchar(200)"`

	AuctionID    uuid.UUID           `gorm:"type:uuid;not null;index:idx_payment_requests_user_auction"`
	AuctionTitle string              `gorm:"type:varchar(200);not null"`
	AuctionType  auction.AuctionType `gorm:"type:varchar(20);not null"`

	PaymentType       PaymentType        `gorm:"type:varchar(30);not null;index"`
	PaymentAmount     decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Currency          string             `gorm:"type:varchar(3);not null;default:'INR'"`
	PaymentMethod     string             `gorm:"type:varchar(50);not null"` // Free text, e.g. "UPI"
	TransactionID     string             `gorm:"type:varchar(100);not null"`
	PaymentScreenshot string             `gorm:"type:varchar(500)"` // Opaque URI
	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	AdminNotes        *string            `gorm:"type:varchar(500)"`
	SubmittedAt       time.Time          `gorm:"not null"`
	VerifiedAt        *time.Time
	VerifiedBy        *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentRequest) TableName() string {
	return "payment_requests"
}

// NewPaymentRequestInput carries the submission payload
type NewPaymentRequestInput struct {
	UserID        uuid.UUID
	UserName      string
	UserPhone     string
	UserEmail     string
	AuctionID     uuid.UUID
	AuctionTitle  string
	AuctionType   auction.AuctionType
	PaymentType   PaymentType
	Amount        valueobject.Money
	Method        string
	TransactionID string
	Screenshot    string
}

// NewPaymentRequest creates a pending payment request
func NewPaymentRequest(input NewPaymentRequestInput, now time.Time) (*PaymentRequest, error) {
	if input.UserID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "User is required")
	}
	if input.AuctionID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Auction is required")
	}
	if !input.PaymentType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown payment type %q", input.PaymentType))
	}
	if !input.Amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment amount must be positive")
	}
	if input.Method == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment method is required")
	}
	if input.TransactionID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Transaction ID is required")
	}

	pr := &PaymentRequest{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		UserID:             input.UserID,
		UserName:           input.UserName,
		UserPhone:          input.UserPhone,
		UserEmail:          input.UserEmail,
		AuctionID:          input.AuctionID,
		AuctionTitle:       input.AuctionTitle,
		AuctionType:        input.AuctionType,
		PaymentType:        input.PaymentType,
		PaymentAmount:      input.Amount.Amount(),
		Currency:           string(input.Amount.Currency()),
		PaymentMethod:      input.Method,
		TransactionID:      input.TransactionID,
		PaymentScreenshot:  input.Screenshot,
		VerificationStatus: VerificationPending,
		SubmittedAt:        now,
	}

	pr.AddDomainEvent(NewPaymentRequestSubmittedEvent(pr))

	return pr, nil
}

// Approve marks the request approved. The transition happens exactly
// once; an approved record is immutable afterwards.
func (pr *PaymentRequest) Approve(adminID uuid.UUID, notes string, now time.Time) error {
	if pr.VerificationStatus.IsResolved() {
		return shared.NewDomainError("ALREADY_RESOLVED",
			fmt.Sprintf("Payment request is already %s", pr.VerificationStatus))
	}
	if adminID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Verifying admin ID is required")
	}

	pr.VerificationStatus = VerificationApproved
	if notes != "" {
		pr.AdminNotes = &notes
	}
	pr.VerifiedAt = &now
	pr.VerifiedBy = &adminID
	pr.UpdatedAt = now
	pr.IncrementVersion()

	pr.AddDomainEvent(NewPaymentRequestApprovedEvent(pr))

	return nil
}

// Reject marks the request rejected. Admin notes are required so the
// payer learns why; the record itself stays in the ledger and a new
// pending record carries any resubmission.
func (pr *PaymentRequest) Reject(adminID uuid.UUID, notes string, now time.Time) error {
	if notes == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Admin notes are required when rejecting a payment request")
	}
	if pr.VerificationStatus.IsResolved() {
		return shared.NewDomainError("ALREADY_RESOLVED",
			fmt.Sprintf("Payment request is already %s", pr.VerificationStatus))
	}
	if adminID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Verifying admin ID is required")
	}

	pr.VerificationStatus = VerificationRejected
	pr.AdminNotes = &notes
	pr.VerifiedAt = &now
	pr.VerifiedBy = &adminID
	pr.UpdatedAt = now
	pr.IncrementVersion()

	pr.AddDomainEvent(NewPaymentRequestRejectedEvent(pr))

	return nil
}

// IsPending returns true while no admin has resolved the request
func (pr *PaymentRequest) IsPending() bool {
	return pr.VerificationStatus == VerificationPending
}

// IsApproved returns true once an admin approved the request
func (pr *PaymentRequest) IsApproved() bool {
	return pr.VerificationStatus == VerificationApproved
}

// GetAmountMoney returns the payment amount as Money value object
func (pr *PaymentRequest) GetAmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(pr.PaymentAmount, valueobject.Currency(pr.Currency))
	return m
}
