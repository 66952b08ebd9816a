package auction

import (
	"context"
	"time"

	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter defines filtering options for auction queries
type Filter struct {
	shared.Filter
	SellerID       *uuid.UUID      // Filter by seller
	AuctionType    *AuctionType    // Filter by auction type
	Status         *Status         // Filter by temporal status
	ApprovalStatus *ApprovalStatus // Filter by approval status
	Category       string          // Filter by category
	IncludeDeleted bool            // Include soft-deleted auctions
}

// Repository defines the interface for auction persistence
type Repository interface {
	// FindByID finds an auction with its bids preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*Auction, error)

	// FindAll finds auctions with filtering. Soft-deleted auctions are
	// excluded unless the filter asks for them.
	FindAll(ctx context.Context, filter Filter) ([]Auction, error)

	// FindBySeller finds auctions owned by a seller
	FindBySeller(ctx context.Context, sellerID uuid.UUID, filter Filter) ([]Auction, error)

	// FindWonByUser finds ended auctions the given user won
	FindWonByUser(ctx context.Context, userID uuid.UUID) ([]Auction, error)

	// FindParticipatedByUser finds auctions the given user has bid on
	FindParticipatedByUser(ctx context.Context, userID uuid.UUID) ([]Auction, error)

	// FindPendingApproval finds reserve auctions awaiting admin review
	FindPendingApproval(ctx context.Context, filter Filter) ([]Auction, error)

	// FindDueForTransition finds approved, non-terminal auctions whose
	// start or end time has passed relative to now
	FindDueForTransition(ctx context.Context, now time.Time, limit int) ([]Auction, error)

	// Save creates or updates an auction along with new bids
	Save(ctx context.Context, a *Auction) error

	// SaveWithLock saves with optimistic locking (version check).
	// Returns shared.ErrConcurrencyConflict if the stored version moved.
	SaveWithLock(ctx context.Context, a *Auction) error

	// Count counts auctions matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)
}
