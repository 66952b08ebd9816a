package auction

import (
	"time"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Viewer identifies the authenticated caller of a query, if any
type Viewer struct {
	ID      uuid.UUID
	IsAdmin bool
}

// CreateAuctionInput carries the listing submission payload
type CreateAuctionInput struct {
	Title         string
	Description   string
	Category      string
	AuctionType   string
	StartingPrice decimal.Decimal
	BidIncrement  decimal.Decimal
	MinimumPrice  *decimal.Decimal
	ReservePrice  *decimal.Decimal
	Currency      string
	SellerID      uuid.UUID
	StartAt       time.Time
	EndAt         time.Time
	Images        []string
	Certificates  []string
}

// PlaceBidInput carries a bid submission
type PlaceBidInput struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
	Currency  string
}

// ListFilter defines filtering options for auction list queries
type ListFilter struct {
	Search      string `form:"search"`
	Category    string `form:"category"`
	AuctionType string `form:"auction_type"`
	Status      string `form:"status"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir"`
}

// BidResponse represents a bid in API responses
type BidResponse struct {
	ID         uuid.UUID       `json:"id"`
	BidderID   uuid.UUID       `json:"bidder_id"`
	BidderName string          `json:"bidder_name"`
	Amount     decimal.Decimal `json:"amount"`
	PlacedAt   time.Time       `json:"placed_at"`
}

// AuctionResponse represents an auction in list responses. Seller phone
// and reserve figures are deliberately absent; the detail response adds
// them subject to ownership and disclosure rules.
type AuctionResponse struct {
	ID                     uuid.UUID       `json:"id"`
	Title                  string          `json:"title"`
	Description            string          `json:"description,omitempty"`
	Category               string          `json:"category"`
	AuctionType            string          `json:"auction_type"`
	ApprovalStatus         string          `json:"approval_status"`
	Status                 string          `json:"status"`
	StartingPrice          decimal.Decimal `json:"starting_price"`
	CurrentBid             decimal.Decimal `json:"current_bid"`
	BidIncrement           decimal.Decimal `json:"bid_increment"`
	Currency               string          `json:"currency"`
	SellerID               uuid.UUID       `json:"seller_id"`
	SellerName             string          `json:"seller_name"`
	CurrentHighestBidderID *uuid.UUID      `json:"current_highest_bidder_id,omitempty"`
	WinnerID               *uuid.UUID      `json:"winner_id,omitempty"`
	StartAt                time.Time       `json:"start_at"`
	EndAt                  time.Time       `json:"end_at"`
	Images                 []string        `json:"images"`
	BidCount               int             `json:"bid_count"`
	CreatedAt              time.Time       `json:"created_at"`
}

// AuctionDetailResponse adds bids, media, and gated contact details
type AuctionDetailResponse struct {
	AuctionResponse
	MinimumPrice *decimal.Decimal `json:"minimum_price,omitempty"` // Owner and admins only
	ReservePrice *decimal.Decimal `json:"reserve_price,omitempty"` // Owner and admins only
	Certificates []string         `json:"certificates,omitempty"`
	RejectReason string           `json:"reject_reason,omitempty"`
	Bids         []BidResponse    `json:"bids"`
	SellerPhone  *string          `json:"seller_phone,omitempty"` // Disclosure-gated
	WinnerPhone  *string          `json:"winner_phone,omitempty"` // Disclosure-gated
	SellerEmail  string           `json:"seller_email,omitempty"`
}

// WonAuctionResponse is an entry in the winner's notification list
type WonAuctionResponse struct {
	AuctionResponse
	WinningBid            decimal.Decimal `json:"winning_bid"`
	RequiresWinnerPayment bool            `json:"requires_winner_payment"`
	WinnerPaymentApproved bool            `json:"winner_payment_approved"`
}

// ParticipatedAuctionResponse is an entry in a bidder's activity list
type ParticipatedAuctionResponse struct {
	AuctionResponse
	MyHighestBid decimal.Decimal `json:"my_highest_bid"`
	Leading      bool            `json:"leading"`
	Won          bool            `json:"won"`
}

// UploadTarget carries a presigned upload URL for auction media
type UploadTarget struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func toBidResponse(b *auction.Bid) BidResponse {
	return BidResponse{
		ID:         b.ID,
		BidderID:   b.BidderID,
		BidderName: b.BidderName,
		Amount:     b.Amount,
		PlacedAt:   b.PlacedAt,
	}
}

func toAuctionResponse(a *auction.Auction) AuctionResponse {
	return AuctionResponse{
		ID:                     a.ID,
		Title:                  a.Title,
		Description:            a.Description,
		Category:               a.Category,
		AuctionType:            string(a.AuctionType),
		ApprovalStatus:         string(a.ApprovalStatus),
		Status:                 string(a.Status),
		StartingPrice:          a.StartingPrice,
		CurrentBid:             a.CurrentBid,
		BidIncrement:           a.BidIncrement,
		Currency:               a.Currency,
		SellerID:               a.SellerID,
		SellerName:             a.SellerName,
		CurrentHighestBidderID: a.CurrentHighestBidderID,
		WinnerID:               a.WinnerID,
		StartAt:                a.StartAt,
		EndAt:                  a.EndAt,
		Images:                 []string(a.Images),
		BidCount:               len(a.Bids),
		CreatedAt:              a.CreatedAt,
	}
}
