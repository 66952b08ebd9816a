package payment

import (
	"time"

	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequestSubmittedEvent is raised when a user submits proof of payment
type PaymentRequestSubmittedEvent struct {
	shared.BaseDomainEvent
	RequestID   uuid.UUID       `json:"request_id"`
	UserID      uuid.UUID       `json:"user_id"`
	AuctionID   uuid.UUID       `json:"auction_id"`
	PaymentType PaymentType     `json:"payment_type"`
	Amount      decimal.Decimal `json:"amount"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// EventType returns the event type name
func (e *PaymentRequestSubmittedEvent) EventType() string {
	return "PaymentRequestSubmitted"
}

// NewPaymentRequestSubmittedEvent creates a new PaymentRequestSubmittedEvent
func NewPaymentRequestSubmittedEvent(pr *PaymentRequest) *PaymentRequestSubmittedEvent {
	return &PaymentRequestSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRequestSubmitted", "PaymentRequest", pr.ID),
		RequestID:       pr.ID,
		UserID:          pr.UserID,
		AuctionID:       pr.AuctionID,
		PaymentType:     pr.PaymentType,
		Amount:          pr.PaymentAmount,
		SubmittedAt:     pr.SubmittedAt,
	}
}

// PaymentRequestApprovedEvent is raised when an admin verifies a payment
type PaymentRequestApprovedEvent struct {
	shared.BaseDomainEvent
	RequestID   uuid.UUID   `json:"request_id"`
	UserID      uuid.UUID   `json:"user_id"`
	AuctionID   uuid.UUID   `json:"auction_id"`
	PaymentType PaymentType `json:"payment_type"`
	VerifiedBy  uuid.UUID   `json:"verified_by"`
}

// EventType returns the event type name
func (e *PaymentRequestApprovedEvent) EventType() string {
	return "PaymentRequestApproved"
}

// NewPaymentRequestApprovedEvent creates a new PaymentRequestApprovedEvent
func NewPaymentRequestApprovedEvent(pr *PaymentRequest) *PaymentRequestApprovedEvent {
	var verifiedBy uuid.UUID
	if pr.VerifiedBy != nil {
		verifiedBy = *pr.VerifiedBy
	}
	return &PaymentRequestApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRequestApproved", "PaymentRequest", pr.ID),
		RequestID:       pr.ID,
		UserID:          pr.UserID,
		AuctionID:       pr.AuctionID,
		PaymentType:     pr.PaymentType,
		VerifiedBy:      verifiedBy,
	}
}

// PaymentRequestRejectedEvent is raised when an admin rejects a payment
type PaymentRequestRejectedEvent struct {
	shared.BaseDomainEvent
	RequestID   uuid.UUID   `json:"request_id"`
	UserID      uuid.UUID   `json:"user_id"`
	AuctionID   uuid.UUID   `json:"auction_id"`
	PaymentType PaymentType `json:"payment_type"`
	VerifiedBy  uuid.UUID   `json:"verified_by"`
	Notes       string      `json:"notes"`
}

// EventType returns the event type name
func (e *PaymentRequestRejectedEvent) EventType() string {
	return "PaymentRequestRejected"
}

// NewPaymentRequestRejectedEvent creates a new PaymentRequestRejectedEvent
func NewPaymentRequestRejectedEvent(pr *PaymentRequest) *PaymentRequestRejectedEvent {
	var verifiedBy uuid.UUID
	if pr.VerifiedBy != nil {
		verifiedBy = *pr.VerifiedBy
	}
	notes := ""
	if pr.AdminNotes != nil {
		notes = *pr.AdminNotes
	}
	return &PaymentRequestRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRequestRejected", "PaymentRequest", pr.ID),
		RequestID:       pr.ID,
		UserID:          pr.UserID,
		AuctionID:       pr.AuctionID,
		PaymentType:     pr.PaymentType,
		VerifiedBy:      verifiedBy,
		Notes:           notes,
	}
}
