package payment

import (
	"context"

	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter defines filtering options for payment request queries
type Filter struct {
	shared.Filter
	UserID      *uuid.UUID
	AuctionID   *uuid.UUID
	PaymentType *PaymentType
	Status      *VerificationStatus
}

// StatusCounts holds per-verification-status totals for a result set
type StatusCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// TypeCounts holds per-payment-type totals for a result set
type TypeCounts struct {
	ParticipationFee int64 `json:"participation_fee"`
	WinnerPayment    int64 `json:"winner_payment"`
}

// Repository defines the interface for payment request persistence
type Repository interface {
	// FindByID finds a payment request by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentRequest, error)

	// FindAll finds payment requests with filtering, newest first
	FindAll(ctx context.Context, filter Filter) ([]PaymentRequest, error)

	// FindLatestForUserAuction finds the most recent request of the given
	// type for a (user, auction) pair, or nil if none exists
	FindLatestForUserAuction(ctx context.Context, userID, auctionID uuid.UUID, paymentType PaymentType) (*PaymentRequest, error)

	// ExistsPending reports whether an unresolved request of the given
	// type already exists for the (user, auction) pair
	ExistsPending(ctx context.Context, userID, auctionID uuid.UUID, paymentType PaymentType) (bool, error)

	// HasApprovedWinnerPayment reports whether an approved winner_payment
	// record exists for the (user, auction) pair
	HasApprovedWinnerPayment(ctx context.Context, userID, auctionID uuid.UUID) (bool, error)

	// Save creates or updates a payment request
	Save(ctx context.Context, pr *PaymentRequest) error

	// ResolveIfPending persists an approve/reject transition with an
	// atomic conditional update: the row is written only if it is still
	// pending. Returns shared.ErrAlreadyResolved when zero rows match.
	ResolveIfPending(ctx context.Context, pr *PaymentRequest) error

	// Count counts payment requests matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// CountByStatus returns per-status totals for the filter (ignoring
	// its status field)
	CountByStatus(ctx context.Context, filter Filter) (StatusCounts, error)

	// CountByType returns per-payment-type totals for the filter
	// (ignoring its payment type field)
	CountByType(ctx context.Context, filter Filter) (TypeCounts, error)

	// CountByStatusForAuction returns per-status totals for one auction
	CountByStatusForAuction(ctx context.Context, auctionID uuid.UUID) (StatusCounts, error)
}
