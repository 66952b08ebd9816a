package payment

import (
	"time"

	"github.com/auctionhouse/backend/internal/domain/payment"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Viewer identifies the authenticated caller of a query
type Viewer struct {
	ID      uuid.UUID
	IsAdmin bool
}

// SubmitInput carries a payment request submission
type SubmitInput struct {
	UserID        uuid.UUID
	AuctionID     uuid.UUID
	PaymentType   string
	Amount        decimal.Decimal
	Currency      string
	Method        string
	TransactionID string
	Screenshot    string
}

// ListFilter defines filtering options for payment request list queries
type ListFilter struct {
	UserID      string `form:"user_id"`
	AuctionID   string `form:"auction_id"`
	PaymentType string `form:"payment_type"`
	Status      string `form:"status"`
	Search      string `form:"search"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir"`
}

// Response represents a payment request in API responses
type Response struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             uuid.UUID       `json:"user_id"`
	UserName           string          `json:"user_name"`
	UserEmail          string          `json:"user_email,omitempty"`
	AuctionID          uuid.UUID       `json:"auction_id"`
	AuctionTitle       string          `json:"auction_title"`
	AuctionType        string          `json:"auction_type"`
	PaymentType        string          `json:"payment_type"`
	PaymentAmount      decimal.Decimal `json:"payment_amount"`
	Currency           string          `json:"currency"`
	PaymentMethod      string          `json:"payment_method"`
	TransactionID      string          `json:"transaction_id"`
	PaymentScreenshot  string          `json:"payment_screenshot,omitempty"`
	VerificationStatus string          `json:"verification_status"`
	AdminNotes         *string         `json:"admin_notes,omitempty"`
	SubmittedAt        time.Time       `json:"submitted_at"`
	VerifiedAt         *time.Time      `json:"verified_at,omitempty"`
}

// ListResult is a paginated admin listing with ledger-wide counters
type ListResult struct {
	shared.Paginated[Response]
	StatusCounts payment.StatusCounts `json:"status_counts"`
	TypeCounts   payment.TypeCounts   `json:"type_counts"`
}

// WinnerStatus reports where a winner stands with their payment for one
// auction. Status is empty when nothing has been submitted yet. For the
// auction's creator the fields describe the winner's payment instead,
// with IsAuctionCreator set.
type WinnerStatus struct {
	IsAuctionCreator bool       `json:"is_auction_creator"`
	Submitted        bool       `json:"submitted"`
	Status           string     `json:"status,omitempty"`
	RequestID        *uuid.UUID `json:"request_id,omitempty"`
	AdminNotes       *string    `json:"admin_notes,omitempty"`
	CanResubmit      bool       `json:"can_resubmit"`
}

// UploadTarget carries a presigned upload URL for a payment screenshot
type UploadTarget struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func toResponse(pr *payment.PaymentRequest) Response {
	return Response{
		ID:                 pr.ID,
		UserID:             pr.UserID,
		UserName:           pr.UserName,
		UserEmail:          pr.UserEmail,
		AuctionID:          pr.AuctionID,
		AuctionTitle:       pr.AuctionTitle,
		AuctionType:        string(pr.AuctionType),
		PaymentType:        string(pr.PaymentType),
		PaymentAmount:      pr.PaymentAmount,
		Currency:           pr.Currency,
		PaymentMethod:      pr.PaymentMethod,
		TransactionID:      pr.TransactionID,
		PaymentScreenshot:  pr.PaymentScreenshot,
		VerificationStatus: string(pr.VerificationStatus),
		AdminNotes:         pr.AdminNotes,
		SubmittedAt:        pr.SubmittedAt,
		VerifiedAt:         pr.VerifiedAt,
	}
}
