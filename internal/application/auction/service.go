// Package auction implements the application service for auction
// listings: creation, approval, bidding, lifecycle administration, and
// disclosure-gated detail queries.
package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/identity"
	"github.com/auctionhouse/backend/internal/domain/payment"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/auctionhouse/backend/internal/infrastructure/storage"
	"github.com/auctionhouse/backend/internal/infrastructure/telemetry"
)

// maxBidAttempts bounds the reload-and-retry loop for concurrent bids
const maxBidAttempts = 3

// Service coordinates auction use cases over the domain repositories
type Service struct {
	auctions   auction.Repository
	payments   payment.Repository
	users      identity.Repository
	media      storage.ObjectStorage
	publisher  shared.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
	presignTTL time.Duration
}

// ServiceOption configures the auction service
type ServiceOption func(*Service)

// WithPublisher sets the domain event publisher
func WithPublisher(p shared.EventPublisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithPresignTTL sets the lifetime of generated upload URLs
func WithPresignTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.presignTTL = ttl }
}

// NewService creates a new auction application service
func NewService(
	auctions auction.Repository,
	payments payment.Repository,
	users identity.Repository,
	media storage.ObjectStorage,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		auctions:   auctions,
		payments:   payments,
		users:      users,
		media:      media,
		logger:     zap.NewNop(),
		now:        time.Now,
		presignTTL: 15 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAuction validates and stores a new listing on behalf of a seller
func (s *Service) CreateAuction(ctx context.Context, input CreateAuctionInput) (*AuctionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auction", "create")
	defer span.End()

	seller, err := s.users.FindByID(ctx, input.SellerID)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Seller not found")
	}

	currency := valueobject.Currency(input.Currency)
	if input.Currency == "" {
		currency = valueobject.INR
	}
	startingPrice, err := valueobject.NewMoney(input.StartingPrice, currency)
	if err != nil {
		return nil, err
	}
	bidIncrement, err := valueobject.NewMoney(input.BidIncrement, currency)
	if err != nil {
		return nil, err
	}
	var minimumPrice, reservePrice *valueobject.Money
	if input.MinimumPrice != nil {
		m, err := valueobject.NewMoney(*input.MinimumPrice, currency)
		if err != nil {
			return nil, err
		}
		minimumPrice = &m
	}
	if input.ReservePrice != nil {
		m, err := valueobject.NewMoney(*input.ReservePrice, currency)
		if err != nil {
			return nil, err
		}
		reservePrice = &m
	}

	a, err := auction.NewAuction(auction.NewAuctionInput{
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		AuctionType:   auction.AuctionType(input.AuctionType),
		StartingPrice: startingPrice,
		BidIncrement:  bidIncrement,
		MinimumPrice:  minimumPrice,
		ReservePrice:  reservePrice,
		SellerID:      seller.ID,
		SellerName:    seller.Name,
		SellerPhone:   seller.Phone,
		SellerEmail:   seller.Email,
		StartAt:       input.StartAt,
		EndAt:         input.EndAt,
		Images:        input.Images,
		Certificates:  input.Certificates,
	}, s.now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.auctions.Save(ctx, a); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, a)

	s.logger.Info("auction created",
		zap.String("auction_id", a.ID.String()),
		zap.String("auction_type", string(a.AuctionType)),
		zap.String("seller_id", seller.ID.String()),
	)

	resp := toAuctionResponse(a)
	return &resp, nil
}

// GetAuction returns the auction detail for the given viewer. Temporal
// transitions that have become due are applied and persisted on read, so
// a page load alone is enough to end an expired auction.
func (s *Service) GetAuction(ctx context.Context, id uuid.UUID, viewer *Viewer) (*AuctionDetailResponse, error) {
	a, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := viewer != nil && viewer.ID == a.SellerID
	isAdmin := viewer != nil && viewer.IsAdmin
	if !a.IsLive() && !isOwner && !isAdmin {
		return nil, shared.NewDomainError("NOT_FOUND", "Auction not found")
	}

	return s.buildDetail(ctx, a, viewer)
}

// loadFresh loads an auction and applies any due temporal transition,
// persisting it with the optimistic lock. On a version conflict another
// writer already advanced the auction, so it is simply reloaded.
func (s *Service) loadFresh(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	a, err := s.auctions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Auction not found")
	}

	if a.EvaluateClock(s.now()) {
		if err := s.auctions.SaveWithLock(ctx, a); err != nil {
			if !errors.Is(err, shared.ErrConcurrencyConflict) {
				return nil, err
			}
			return s.auctions.FindByID(ctx, id)
		}
		s.publish(ctx, a)
	}
	return a, nil
}

func (s *Service) buildDetail(ctx context.Context, a *auction.Auction, viewer *Viewer) (*AuctionDetailResponse, error) {
	isOwner := viewer != nil && viewer.ID == a.SellerID
	isAdmin := viewer != nil && viewer.IsAdmin

	detail := &AuctionDetailResponse{AuctionResponse: toAuctionResponse(a)}

	// Sealed auctions keep the bid book closed while bidding is open
	hideBids := a.AuctionType == auction.TypeSealed && a.Status != auction.StatusEnded && !isAdmin
	if hideBids {
		detail.CurrentBid = a.StartingPrice
		detail.CurrentHighestBidderID = nil
		detail.Bids = []BidResponse{}
	} else {
		detail.Bids = make([]BidResponse, 0, len(a.Bids))
		for i := range a.Bids {
			detail.Bids = append(detail.Bids, toBidResponse(&a.Bids[i]))
		}
	}

	if isOwner || isAdmin {
		if a.MinimumPrice.IsPositive() {
			mp := a.MinimumPrice
			detail.MinimumPrice = &mp
		}
		if a.ReservePrice.IsPositive() {
			rp := a.ReservePrice
			detail.ReservePrice = &rp
		}
		detail.Certificates = []string(a.Certificates)
		detail.RejectReason = a.RejectReason
		detail.SellerEmail = a.SellerEmail
	}

	if err := s.applyDisclosure(ctx, a, viewer, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// applyDisclosure fills the gated contact fields. The gate is recomputed
// from the ledger on every query; nothing is stored.
func (s *Service) applyDisclosure(ctx context.Context, a *auction.Auction, viewer *Viewer, detail *AuctionDetailResponse) error {
	if viewer == nil || !a.HasWinner() {
		return nil
	}

	hasApproved, err := s.payments.HasApprovedWinnerPayment(ctx, *a.WinnerID, a.ID)
	if err != nil {
		return err
	}

	if payment.CanWinnerSeeSellerPhone(a, viewer.ID, hasApproved) {
		phone := a.SellerPhone
		detail.SellerPhone = &phone
	}

	isSeller := viewer.ID == a.SellerID
	if (isSeller || viewer.IsAdmin) && payment.CanSellerSeeWinnerPhone(a, hasApproved) {
		winner, err := s.users.FindByID(ctx, *a.WinnerID)
		if err != nil {
			return err
		}
		if winner != nil {
			phone := winner.Phone
			detail.WinnerPhone = &phone
		}
	}
	return nil
}

// ListAuctions returns the public catalog: approved, non-deleted
// listings. Due transitions are reflected in the response but persisted
// only by detail reads and the background sweep.
func (s *Service) ListAuctions(ctx context.Context, f ListFilter) (*shared.Paginated[AuctionResponse], error) {
	filter, err := s.toDomainFilter(f)
	if err != nil {
		return nil, err
	}
	approved := auction.ApprovalApproved
	filter.ApprovalStatus = &approved

	auctions, err := s.auctions.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.auctions.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]AuctionResponse, 0, len(auctions))
	for i := range auctions {
		auctions[i].EvaluateClock(now)
		items = append(items, toAuctionResponse(&auctions[i]))
	}

	p := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &p, nil
}

// ListMyAuctions returns a seller's own listings, deleted ones included
func (s *Service) ListMyAuctions(ctx context.Context, sellerID uuid.UUID, f ListFilter) (*shared.Paginated[AuctionResponse], error) {
	filter, err := s.toDomainFilter(f)
	if err != nil {
		return nil, err
	}
	filter.SellerID = &sellerID
	filter.IncludeDeleted = true

	auctions, err := s.auctions.FindBySeller(ctx, sellerID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.auctions.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]AuctionResponse, 0, len(auctions))
	for i := range auctions {
		auctions[i].EvaluateClock(now)
		items = append(items, toAuctionResponse(&auctions[i]))
	}

	p := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &p, nil
}

// ListWonAuctions returns ended auctions the user won, with the winner
// payment state a reserve winner needs to act on
func (s *Service) ListWonAuctions(ctx context.Context, userID uuid.UUID) ([]WonAuctionResponse, error) {
	auctions, err := s.auctions.FindWonByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]WonAuctionResponse, 0, len(auctions))
	for i := range auctions {
		a := &auctions[i]
		entry := WonAuctionResponse{
			AuctionResponse: toAuctionResponse(a),
			WinningBid:      a.CurrentBid,
		}
		if a.AuctionType == auction.TypeReserve {
			entry.RequiresWinnerPayment = true
			approved, err := s.payments.HasApprovedWinnerPayment(ctx, userID, a.ID)
			if err != nil {
				return nil, err
			}
			entry.WinnerPaymentApproved = approved
		}
		items = append(items, entry)
	}
	return items, nil
}

// ListParticipatedAuctions returns auctions the user has bid on along
// with where they stand in each
func (s *Service) ListParticipatedAuctions(ctx context.Context, userID uuid.UUID) ([]ParticipatedAuctionResponse, error) {
	auctions, err := s.auctions.FindParticipatedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]ParticipatedAuctionResponse, 0, len(auctions))
	for i := range auctions {
		a := &auctions[i]
		a.EvaluateClock(now)

		var myHighest decimal.Decimal
		for j := range a.Bids {
			if a.Bids[j].BidderID == userID && a.Bids[j].Amount.GreaterThan(myHighest) {
				myHighest = a.Bids[j].Amount
			}
		}

		items = append(items, ParticipatedAuctionResponse{
			AuctionResponse: toAuctionResponse(a),
			MyHighestBid:    myHighest,
			Leading:         a.CurrentHighestBidderID != nil && *a.CurrentHighestBidderID == userID,
			Won:             a.IsWinner(userID),
		})
	}
	return items, nil
}

// PlaceBid validates and records a bid. Concurrent bids serialize on the
// aggregate version: a conflicting write triggers a reload so the bid is
// re-validated against the fresh state before giving up.
func (s *Service) PlaceBid(ctx context.Context, input PlaceBidInput) (*BidResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auction", "place_bid")
	defer span.End()

	bidder, err := s.users.FindByID(ctx, input.BidderID)
	if err != nil {
		return nil, err
	}
	if bidder == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Bidder not found")
	}

	currency := input.Currency
	if currency == "" {
		currency = string(valueobject.INR)
	}
	amount, err := valueobject.NewMoney(input.Amount, valueobject.Currency(currency))
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxBidAttempts; attempt++ {
		a, err := s.auctions.FindByID(ctx, input.AuctionID)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Auction not found")
		}
		if !a.IsLive() {
			return nil, shared.NewDomainError("NOT_FOUND", "Auction not found")
		}

		bid, err := a.PlaceBid(bidder.ID, bidder.Name, amount, s.now())
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		if err := s.auctions.SaveWithLock(ctx, a); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				s.logger.Debug("bid lost version race, retrying",
					zap.String("auction_id", a.ID.String()),
					zap.Int("attempt", attempt+1),
				)
				continue
			}
			telemetry.RecordError(span, err)
			return nil, err
		}

		s.publish(ctx, a)
		s.logger.Info("bid placed",
			zap.String("auction_id", a.ID.String()),
			zap.String("bidder_id", bidder.ID.String()),
			zap.String("amount", bid.Amount.StringFixed(2)),
		)
		resp := toBidResponse(bid)
		return &resp, nil
	}

	return nil, shared.ErrConcurrencyConflict
}

// ApproveAuction approves a pending reserve auction (admin only)
func (s *Service) ApproveAuction(ctx context.Context, auctionID, adminID uuid.UUID, notes string) (*AuctionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auction", "approve")
	defer span.End()

	return s.transition(ctx, auctionID, func(a *auction.Auction) error {
		return a.Approve(adminID, notes, s.now())
	})
}

// RejectAuction rejects a pending reserve auction (admin only)
func (s *Service) RejectAuction(ctx context.Context, auctionID, adminID uuid.UUID, reason string) (*AuctionResponse, error) {
	return s.transition(ctx, auctionID, func(a *auction.Auction) error {
		return a.Reject(adminID, reason, s.now())
	})
}

// StopAuction suspends an upcoming or active auction (admin only)
func (s *Service) StopAuction(ctx context.Context, auctionID, adminID uuid.UUID) (*AuctionResponse, error) {
	return s.transition(ctx, auctionID, func(a *auction.Auction) error {
		return a.Stop(adminID, s.now())
	})
}

// ContinueAuction resumes a stopped auction (admin only)
func (s *Service) ContinueAuction(ctx context.Context, auctionID, adminID uuid.UUID) (*AuctionResponse, error) {
	return s.transition(ctx, auctionID, func(a *auction.Auction) error {
		return a.Continue(adminID, s.now())
	})
}

// DeleteAuction soft-deletes a listing. Only the owning seller or an
// admin may delete.
func (s *Service) DeleteAuction(ctx context.Context, auctionID uuid.UUID, requester Viewer) error {
	a, err := s.auctions.FindByID(ctx, auctionID)
	if err != nil {
		return err
	}
	if a == nil {
		return shared.NewDomainError("NOT_FOUND", "Auction not found")
	}
	if !requester.IsAdmin && requester.ID != a.SellerID {
		return shared.NewDomainError("FORBIDDEN", "Only the seller or an admin can delete an auction")
	}

	if err := a.SoftDelete(requester.ID, s.now()); err != nil {
		return err
	}
	if err := s.auctions.SaveWithLock(ctx, a); err != nil {
		return err
	}
	s.publish(ctx, a)

	s.logger.Info("auction deleted",
		zap.String("auction_id", a.ID.String()),
		zap.String("deleted_by", requester.ID.String()),
	)
	return nil
}

// ListPendingApproval returns reserve auctions awaiting review (admin only)
func (s *Service) ListPendingApproval(ctx context.Context, f ListFilter) (*shared.Paginated[AuctionResponse], error) {
	filter, err := s.toDomainFilter(f)
	if err != nil {
		return nil, err
	}
	pending := auction.ApprovalPending
	filter.ApprovalStatus = &pending

	auctions, err := s.auctions.FindPendingApproval(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.auctions.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]AuctionResponse, 0, len(auctions))
	for i := range auctions {
		items = append(items, toAuctionResponse(&auctions[i]))
	}
	p := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &p, nil
}

// PrepareMediaUpload issues a presigned upload URL for an auction image
// or ownership certificate. The client uploads directly to storage and
// submits the returned key with the listing.
func (s *Service) PrepareMediaUpload(ctx context.Context, sellerID uuid.UUID, kind, filename, contentType string) (*UploadTarget, error) {
	if filename == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Filename is required")
	}

	var key string
	switch kind {
	case "image":
		key = storage.AuctionImageKey(sellerID, filename)
	case "certificate":
		key = storage.AuctionCertificateKey(sellerID, filename)
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown media kind %q", kind))
	}

	url, expiresAt, err := s.media.GenerateUploadURL(ctx, key, contentType, s.presignTTL)
	if err != nil {
		return nil, err
	}
	return &UploadTarget{StorageKey: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}

// transition loads an auction, applies a domain transition, and persists
// it under the optimistic lock
func (s *Service) transition(ctx context.Context, auctionID uuid.UUID, apply func(*auction.Auction) error) (*AuctionResponse, error) {
	a, err := s.auctions.FindByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Auction not found")
	}

	if err := apply(a); err != nil {
		return nil, err
	}
	if err := s.auctions.SaveWithLock(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, a)

	resp := toAuctionResponse(a)
	return &resp, nil
}

func (s *Service) toDomainFilter(f ListFilter) (auction.Filter, error) {
	filter := auction.Filter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		},
		Category: f.Category,
	}
	filter.Normalize()

	if f.AuctionType != "" {
		t := auction.AuctionType(f.AuctionType)
		if !t.IsValid() {
			return auction.Filter{}, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown auction type %q", f.AuctionType))
		}
		filter.AuctionType = &t
	}
	if f.Status != "" {
		st := auction.Status(f.Status)
		filter.Status = &st
	}
	return filter, nil
}

func (s *Service) publish(ctx context.Context, a *auction.Auction) {
	if s.publisher == nil {
		a.ClearDomainEvents()
		return
	}
	if err := s.publisher.Publish(ctx, a.GetDomainEvents()...); err != nil {
		s.logger.Error("failed to publish auction events",
			zap.String("auction_id", a.ID.String()),
			zap.Error(err),
		)
	}
	a.ClearDomainEvents()
}
