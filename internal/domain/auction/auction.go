package auction

import (
	"fmt"
	"time"

	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// MinMediaCount is the minimum number of images per auction and
	// certificates per reserve auction
	MinMediaCount = 1
	// MaxMediaCount is the maximum number of images per auction and
	// certificates per reserve auction
	MaxMediaCount = 5
)

// Bid represents a single accepted bid. Bids are append-only; insertion
// order is chronological order.
type Bid struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	AuctionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	BidderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	BidderName string          `gorm:"type:varchar(200);not null"` // Denormalized for display
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PlacedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Bid) TableName() string {
	return "bids"
}

// GetAmountMoney returns the bid amount as Money value object
func (b *Bid) GetAmountMoney(currency valueobject.Currency) valueobject.Money {
	m, _ := valueobject.NewMoney(b.Amount, currency)
	return m
}

// Auction is the aggregate root for a single auction listing.
// It owns approval state, temporal state, and the bid list.
type Auction struct {
	shared.BaseAggregateRoot
	Title          string          `gorm:"type:varchar(200);not null"`
	Description    string          `gorm:"type:text"`
	Category       string          `gorm:"type:varchar(100);not null;index"`
	AuctionType    AuctionType     `gorm:"type:varchar(20);not null;index"`
	ApprovalStatus ApprovalStatus  `gorm:"type:varchar(20);not null;default:'approved';index"`
	Status         Status          `gorm:"type:varchar(20);not null;index"`
	StartingPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CurrentBid     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MinimumPrice   decimal.Decimal `gorm:"type:decimal(18,4)"` // Reserve auctions only
	ReservePrice   decimal.Decimal `gorm:"type:decimal(18,4)"` // Sealed auctions only
	BidIncrement   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'INR'"`

	SellerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SellerName  string    `gorm:"type:varchar(200);not null"`
	SellerPhone string    `gorm:"type:varchar(30)"` // Disclosure-gated, never serialized by default
	SellerEmail string    `gorm:"type:varchar(200)"`

	CurrentHighestBidderID *uuid.UUID `gorm:"type:uuid"`
	WinnerID               *uuid.UUID `gorm:"type:uuid;index"` // Set when the auction ends

	StartAt time.Time `gorm:"not null;index"`
	EndAt   time.Time `gorm:"not null;index"`

	Images       MediaList `gorm:"type:text"`
	Certificates MediaList `gorm:"type:text"` // Ownership certificates, reserve only

	Bids []Bid `gorm:"foreignKey:AuctionID;references:ID"`

	ApprovedAt    *time.Time
	ApprovedBy    *uuid.UUID `gorm:"type:uuid"`
	AdminNotes    string     `gorm:"type:varchar(500)"`
	RejectReason  string     `gorm:"type:varchar(500)"`
	StoppedAt     *time.Time
	DeletedByUser *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Auction) TableName() string {
	return "auctions"
}

// NewAuctionInput carries the per-type creation payload.
// MinimumPrice and Certificates apply to reserve auctions only;
// ReservePrice applies to sealed auctions only.
type NewAuctionInput struct {
	Title         string
	Description   string
	Category      string
	AuctionType   AuctionType
	StartingPrice valueobject.Money
	BidIncrement  valueobject.Money
	MinimumPrice  *valueobject.Money
	ReservePrice  *valueobject.Money
	SellerID      uuid.UUID
	SellerName    string
	SellerPhone   string
	SellerEmail   string
	StartAt       time.Time
	EndAt         time.Time
	Images        []string
	Certificates  []string
}

// NewAuction creates a new auction from a validated per-type payload.
// Reserve auctions are created approval-pending; all other types are
// immediately approved with status derived from the start time.
func NewAuction(input NewAuctionInput, now time.Time) (*Auction, error) {
	if input.Title == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Title is required")
	}
	if len(input.Title) > 200 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Title cannot exceed 200 characters")
	}
	if input.Category == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Category is required")
	}
	if !input.AuctionType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown auction type %q", input.AuctionType))
	}
	if input.SellerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Seller is required")
	}
	if !input.StartingPrice.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Starting price must be positive")
	}
	if !input.BidIncrement.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Bid increment must be positive")
	}
	if !input.EndAt.After(input.StartAt) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "End time must be after start time")
	}
	if len(input.Images) < MinMediaCount || len(input.Images) > MaxMediaCount {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Auctions require between %d and %d images", MinMediaCount, MaxMediaCount))
	}

	a := &Auction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             input.Title,
		Description:       input.Description,
		Category:          input.Category,
		AuctionType:       input.AuctionType,
		StartingPrice:     input.StartingPrice.Amount(),
		CurrentBid:        input.StartingPrice.Amount(),
		BidIncrement:      input.BidIncrement.Amount(),
		Currency:          string(input.StartingPrice.Currency()),
		SellerID:          input.SellerID,
		SellerName:        input.SellerName,
		SellerPhone:       input.SellerPhone,
		SellerEmail:       input.SellerEmail,
		StartAt:           input.StartAt,
		EndAt:             input.EndAt,
		Images:            MediaList(input.Images),
		Certificates:      MediaList{},
		Bids:              make([]Bid, 0),
	}

	switch input.AuctionType {
	case TypeReserve:
		if input.MinimumPrice == nil || !input.MinimumPrice.IsPositive() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Reserve auctions require a positive minimum price")
		}
		if len(input.Certificates) < MinMediaCount || len(input.Certificates) > MaxMediaCount {
			return nil, shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Reserve auctions require between %d and %d ownership certificates", MinMediaCount, MaxMediaCount))
		}
		if input.ReservePrice != nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Reserve price is only valid for sealed auctions")
		}
		a.MinimumPrice = input.MinimumPrice.Amount()
		a.Certificates = MediaList(input.Certificates)
		a.ApprovalStatus = ApprovalPending
		a.Status = StatusUpcoming
	case TypeSealed:
		if input.MinimumPrice != nil || len(input.Certificates) > 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Minimum price and certificates are only valid for reserve auctions")
		}
		if input.ReservePrice != nil {
			a.ReservePrice = input.ReservePrice.Amount()
		}
		a.ApprovalStatus = ApprovalApproved
		a.Status = statusForWindow(input.StartAt, now)
	default:
		if input.MinimumPrice != nil || len(input.Certificates) > 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Minimum price and certificates are only valid for reserve auctions")
		}
		if input.ReservePrice != nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Reserve price is only valid for sealed auctions")
		}
		a.ApprovalStatus = ApprovalApproved
		a.Status = statusForWindow(input.StartAt, now)
	}

	a.AddDomainEvent(NewAuctionCreatedEvent(a))

	return a, nil
}

func statusForWindow(startAt, now time.Time) Status {
	if now.Before(startAt) {
		return StatusUpcoming
	}
	return StatusActive
}

// RequiresApproval returns true if this auction is still waiting for
// admin approval
func (a *Auction) RequiresApproval() bool {
	return a.AuctionType.RequiresApproval() && a.ApprovalStatus == ApprovalPending
}

// IsLive returns true if the auction has been approved and not soft-deleted
func (a *Auction) IsLive() bool {
	return a.ApprovalStatus == ApprovalApproved && a.Status != StatusDeleted
}

// Approve transitions a pending reserve auction into a live auction.
// Approval is admin-only; authorization is enforced at the service layer.
func (a *Auction) Approve(adminID uuid.UUID, notes string, now time.Time) error {
	if !a.AuctionType.RequiresApproval() {
		return shared.NewDomainError("INVALID_STATE", "Only reserve auctions require approval")
	}
	if a.ApprovalStatus != ApprovalPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve auction in %s approval state", a.ApprovalStatus))
	}
	if adminID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Approving admin ID is required")
	}

	a.ApprovalStatus = ApprovalApproved
	a.ApprovedAt = &now
	a.ApprovedBy = &adminID
	a.AdminNotes = notes
	a.Status = statusForWindow(a.StartAt, now)
	a.UpdatedAt = now
	a.IncrementVersion()

	a.AddDomainEvent(NewAuctionApprovedEvent(a, adminID))

	return nil
}

// Reject rejects a pending reserve auction. Rejection is terminal; there
// is no re-submission path for the same auction record.
func (a *Auction) Reject(adminID uuid.UUID, reason string, now time.Time) error {
	if !a.AuctionType.RequiresApproval() {
		return shared.NewDomainError("INVALID_STATE", "Only reserve auctions require approval")
	}
	if a.ApprovalStatus != ApprovalPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject auction in %s approval state", a.ApprovalStatus))
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Rejection reason is required")
	}

	a.ApprovalStatus = ApprovalRejected
	a.RejectReason = reason
	a.ApprovedBy = &adminID
	a.UpdatedAt = now
	a.IncrementVersion()

	a.AddDomainEvent(NewAuctionRejectedEvent(a, adminID, reason))

	return nil
}

// EvaluateClock applies lazy temporal transitions: upcoming auctions
// become active once the start time passes and active auctions become
// ended once the end time passes. An ended status never reverts.
// Returns true if the auction changed state.
func (a *Auction) EvaluateClock(now time.Time) bool {
	if a.ApprovalStatus != ApprovalApproved {
		return false
	}
	if a.Status.IsTerminal() || a.Status == StatusStopped {
		return false
	}

	changed := false
	if a.Status == StatusUpcoming && !now.Before(a.StartAt) {
		a.Status = StatusActive
		changed = true
	}
	if a.Status == StatusActive && now.After(a.EndAt) {
		a.end(now)
		changed = true
	}
	if changed {
		a.UpdatedAt = now
		a.IncrementVersion()
	}
	return changed
}

// end finalizes the auction and declares the current highest bidder,
// if any, as winner.
func (a *Auction) end(now time.Time) {
	a.Status = StatusEnded
	a.WinnerID = a.CurrentHighestBidderID
	a.AddDomainEvent(NewAuctionEndedEvent(a))
}

// PlaceBid validates and appends a bid. Callers must persist the result
// with an optimistic lock so that concurrent bids serialize; on a version
// conflict the aggregate is reloaded and PlaceBid re-evaluated.
func (a *Auction) PlaceBid(bidderID uuid.UUID, bidderName string, amount valueobject.Money, now time.Time) (*Bid, error) {
	if bidderID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Bidder is required")
	}
	if bidderID == a.SellerID {
		return nil, shared.NewDomainError("FORBIDDEN", "Sellers cannot bid on their own auction")
	}
	if a.ApprovalStatus != ApprovalApproved {
		return nil, shared.NewDomainError("INVALID_BID", "Auction is not open for bidding")
	}

	a.EvaluateClock(now)

	if !a.Status.CanAcceptBids() {
		return nil, shared.NewDomainError("INVALID_BID", fmt.Sprintf("Auction is %s and not accepting bids", a.Status))
	}
	if string(amount.Currency()) != a.Currency {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Bid currency must be %s", a.Currency))
	}

	minAcceptable := a.minimumAcceptableBid()
	if amount.Amount().LessThan(minAcceptable) {
		return nil, shared.NewDomainError("INVALID_BID",
			fmt.Sprintf("Bid must be at least %s; current bid is %s",
				minAcceptable.StringFixed(2), a.CurrentBid.StringFixed(2)))
	}

	bid := Bid{
		ID:         uuid.New(),
		AuctionID:  a.ID,
		BidderID:   bidderID,
		BidderName: bidderName,
		Amount:     amount.Amount(),
		PlacedAt:   now,
	}
	a.Bids = append(a.Bids, bid)
	a.CurrentBid = amount.Amount()
	a.CurrentHighestBidderID = &bid.BidderID
	a.UpdatedAt = now
	a.IncrementVersion()

	a.AddDomainEvent(NewBidPlacedEvent(a, &bid))

	return &bid, nil
}

// minimumAcceptableBid returns the lowest amount the next bid may carry.
// CurrentBid starts at the starting price, so every bid, the first one
// included, must top it by at least the bid increment.
func (a *Auction) minimumAcceptableBid() decimal.Decimal {
	return a.CurrentBid.Add(a.BidIncrement)
}

// Stop suspends an upcoming or active auction
func (a *Auction) Stop(adminID uuid.UUID, now time.Time) error {
	if a.Status != StatusUpcoming && a.Status != StatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot stop auction in %s status", a.Status))
	}
	a.Status = StatusStopped
	a.StoppedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()

	a.AddDomainEvent(NewAuctionStoppedEvent(a, adminID))

	return nil
}

// Continue resumes a stopped auction into upcoming or active depending
// on the current time. A stopped auction whose end time already passed
// ends immediately.
func (a *Auction) Continue(adminID uuid.UUID, now time.Time) error {
	if a.Status != StatusStopped {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot continue auction in %s status", a.Status))
	}
	a.StoppedAt = nil
	if now.After(a.EndAt) {
		a.end(now)
	} else {
		a.Status = statusForWindow(a.StartAt, now)
	}
	a.UpdatedAt = now
	a.IncrementVersion()

	a.AddDomainEvent(NewAuctionContinuedEvent(a, adminID))

	return nil
}

// SoftDelete marks the auction deleted. The record is retained; the
// transition is irreversible from the user's perspective.
func (a *Auction) SoftDelete(byUser uuid.UUID, now time.Time) error {
	if a.Status == StatusDeleted {
		return shared.NewDomainError("INVALID_STATE", "Auction is already deleted")
	}
	a.Status = StatusDeleted
	a.DeletedByUser = &byUser
	a.UpdatedAt = now
	a.IncrementVersion()

	a.AddDomainEvent(NewAuctionDeletedEvent(a, byUser))

	return nil
}

// HasWinner returns true once the auction has ended with at least one bid
func (a *Auction) HasWinner() bool {
	return a.Status == StatusEnded && a.WinnerID != nil
}

// IsWinner returns true if the given user won this auction
func (a *Auction) IsWinner(userID uuid.UUID) bool {
	return a.HasWinner() && *a.WinnerID == userID
}

// GetCurrentBidMoney returns the current bid as Money value object
func (a *Auction) GetCurrentBidMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(a.CurrentBid, valueobject.Currency(a.Currency))
	return m
}

// HighestBid returns the highest accepted bid, or nil if none exist
func (a *Auction) HighestBid() *Bid {
	var best *Bid
	for i := range a.Bids {
		if best == nil || a.Bids[i].Amount.GreaterThan(best.Amount) {
			best = &a.Bids[i]
		}
	}
	return best
}
