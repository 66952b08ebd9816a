package auction

import (
	"time"

	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionCreatedEvent is raised when a new auction is submitted
type AuctionCreatedEvent struct {
	shared.BaseDomainEvent
	AuctionID        uuid.UUID       `json:"auction_id"`
	Title            string          `json:"title"`
	AuctionType      AuctionType     `json:"auction_type"`
	SellerID         uuid.UUID       `json:"seller_id"`
	StartingPrice    decimal.Decimal `json:"starting_price"`
	RequiresApproval bool            `json:"requires_approval"`
	StartAt          time.Time       `json:"start_at"`
	EndAt            time.Time       `json:"end_at"`
}

// EventType returns the event type name
func (e *AuctionCreatedEvent) EventType() string {
	return "AuctionCreated"
}

// NewAuctionCreatedEvent creates a new AuctionCreatedEvent
func NewAuctionCreatedEvent(a *Auction) *AuctionCreatedEvent {
	return &AuctionCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("AuctionCreated", "Auction", a.ID),
		AuctionID:        a.ID,
		Title:            a.Title,
		AuctionType:      a.AuctionType,
		SellerID:         a.SellerID,
		StartingPrice:    a.StartingPrice,
		RequiresApproval: a.RequiresApproval(),
		StartAt:          a.StartAt,
		EndAt:            a.EndAt,
	}
}

// AuctionApprovedEvent is raised when an admin approves a reserve auction
type AuctionApprovedEvent struct {
	shared.BaseDomainEvent
	AuctionID  uuid.UUID `json:"auction_id"`
	SellerID   uuid.UUID `json:"seller_id"`
	ApprovedBy uuid.UUID `json:"approved_by"`
}

// EventType returns the event type name
func (e *AuctionApprovedEvent) EventType() string {
	return "AuctionApproved"
}

// NewAuctionApprovedEvent creates a new AuctionApprovedEvent
func NewAuctionApprovedEvent(a *Auction, adminID uuid.UUID) *AuctionApprovedEvent {
	return &AuctionApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AuctionApproved", "Auction", a.ID),
		AuctionID:       a.ID,
		SellerID:        a.SellerID,
		ApprovedBy:      adminID,
	}
}

// AuctionRejectedEvent is raised when an admin rejects a reserve auction
type AuctionRejectedEvent struct {
	shared.BaseDomainEvent
	AuctionID  uuid.UUID `json:"auction_id"`
	SellerID   uuid.UUID `json:"seller_id"`
	RejectedBy uuid.UUID `json:"rejected_by"`
	Reason     string    `json:"reason"`
}

// EventType returns the event type name
func (e *AuctionRejectedEvent) EventType() string {
	return "AuctionRejected"
}

// NewAuctionRejectedEvent creates a new AuctionRejectedEvent
func NewAuctionRejectedEvent(a *Auction, adminID uuid.UUID, reason string) *AuctionRejectedEvent {
	return &AuctionRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AuctionRejected", "Auction", a.ID),
		AuctionID:       a.ID,
		SellerID:        a.SellerID,
		RejectedBy:      adminID,
		Reason:          reason,
	}
}

// BidPlacedEvent is raised when a bid is accepted
type BidPlacedEvent struct {
	shared.BaseDomainEvent
	AuctionID uuid.UUID       `json:"auction_id"`
	BidID     uuid.UUID       `json:"bid_id"`
	BidderID  uuid.UUID       `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	PlacedAt  time.Time       `json:"placed_at"`
}

// EventType returns the event type name
func (e *BidPlacedEvent) EventType() string {
	return "BidPlaced"
}

// NewBidPlacedEvent creates a new BidPlacedEvent
func NewBidPlacedEvent(a *Auction, bid *Bid) *BidPlacedEvent {
	return &BidPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BidPlaced", "Auction", a.ID),
		AuctionID:       a.ID,
		BidID:           bid.ID,
		BidderID:        bid.BidderID,
		Amount:          bid.Amount,
		PlacedAt:        bid.PlacedAt,
	}
}

// AuctionEndedEvent is raised when an auction passes its end time
type AuctionEndedEvent struct {
	shared.BaseDomainEvent
	AuctionID  uuid.UUID       `json:"auction_id"`
	SellerID   uuid.UUID       `json:"seller_id"`
	WinnerID   *uuid.UUID      `json:"winner_id,omitempty"`
	FinalPrice decimal.Decimal `json:"final_price"`
}

// EventType returns the event type name
func (e *AuctionEndedEvent) EventType() string {
	return "AuctionEnded"
}

// NewAuctionEndedEvent creates a new AuctionEndedEvent
func NewAuctionEndedEvent(a *Auction) *AuctionEndedEvent {
	return &AuctionEndedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AuctionEnded", "Auction", a.ID),
		AuctionID:       a.ID,
		SellerID:        a.SellerID,
		WinnerID:        a.WinnerID,
		FinalPrice:      a.CurrentBid,
	}
}

// AuctionStoppedEvent is raised when an admin suspends an auction
type AuctionStoppedEvent struct {
	shared.BaseDomainEvent
	AuctionID uuid.UUID `json:"auction_id"`
	StoppedBy uuid.UUID `json:"stopped_by"`
}

// EventType returns the event type name
func (e *AuctionStoppedEvent) EventType() string {
	return "AuctionStopped"
}

// NewAuctionStoppedEvent creates a new AuctionStoppedEvent
func NewAuctionStoppedEvent(a *Auction, adminID uuid.UUID) *AuctionStoppedEvent {
	return &AuctionStoppedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AuctionStopped", "Auction", a.ID),
		AuctionID:       a.ID,
		StoppedBy:       adminID,
	}
}

// AuctionContinuedEvent is raised when an admin resumes a stopped auction
type AuctionContinuedEvent struct {
	shared.BaseDomainEvent
	AuctionID   uuid.UUID `json:"auction_id"`
	ContinuedBy uuid.UUID `json:"continued_by"`
	NewStatus   Status    `json:"new_status"`
}

// EventType returns the event type name
func (e *AuctionContinuedEvent) EventType() string {
	return "AuctionContinued"
}

// NewAuctionContinuedEvent creates a new AuctionContinuedEvent
func NewAuctionContinuedEvent(a *Auction, adminID uuid.UUID) *AuctionContinuedEvent {
	return &AuctionContinuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AuctionContinued", "Auction", a.ID),
		AuctionID:       a.ID,
		ContinuedBy:     adminID,
		NewStatus:       a.Status,
	}
}

// AuctionDeletedEvent is raised when an auction is soft-deleted
type AuctionDeletedEvent struct {
	shared.BaseDomainEvent
	AuctionID uuid.UUID `json:"auction_id"`
	DeletedBy uuid.UUID `json:"deleted_by"`
}

// EventType returns the event type name
func (e *AuctionDeletedEvent) EventType() string {
	return "AuctionDeleted"
}

// NewAuctionDeletedEvent creates a new AuctionDeletedEvent
func NewAuctionDeletedEvent(a *Auction, byUser uuid.UUID) *AuctionDeletedEvent {
	return &AuctionDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AuctionDeleted", "Auction", a.ID),
		AuctionID:       a.ID,
		DeletedBy:       byUser,
	}
}
