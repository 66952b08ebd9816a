// Package payment implements the application service for the payment
// request ledger: submission, admin verification, and the winner-payment
// status queries the disclosure gate depends on.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/identity"
	"github.com/auctionhouse/backend/internal/domain/payment"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/auctionhouse/backend/internal/infrastructure/storage"
	"github.com/auctionhouse/backend/internal/infrastructure/telemetry"
)

// Service coordinates payment request use cases over the ledger
type Service struct {
	payments   payment.Repository
	auctions   auction.Repository
	users      identity.Repository
	media      storage.ObjectStorage
	publisher  shared.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
	presignTTL time.Duration
}

// ServiceOption configures the payment service
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

// NewService creates a new payment application service
func NewService(
	payments payment.Repository,
	auctions auction.Repository,
	users identity.Repository,
	media storage.ObjectStorage,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		payments:   payments,
		auctions:   auctions,
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

// Submit records a new pending payment request. The ledger is
// append-only: a rejected request is never reopened, the payer submits
// again and the new record supersedes it for verification purposes.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*Response, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "submit")
	defer span.End()

	user, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "User not found")
	}

	a, err := s.auctions.FindByID(ctx, input.AuctionID)
	if err != nil {
		return nil, err
	}
	if a == nil || !a.IsLive() {
		return nil, shared.NewDomainError("NOT_FOUND", "Auction not found")
	}
	if a.SellerID == user.ID {
		return nil, shared.NewDomainError("FORBIDDEN", "Sellers cannot submit payments for their own auction")
	}

	ptype := payment.PaymentType(input.PaymentType)
	if !ptype.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown payment type %q", input.PaymentType))
	}

	if ptype == payment.TypeWinnerPayment {
		a.EvaluateClock(s.now())
		if !a.IsWinner(user.ID) {
			return nil, shared.NewDomainError("FORBIDDEN", "Only the auction winner can submit a winner payment")
		}
		approved, err := s.payments.HasApprovedWinnerPayment(ctx, user.ID, a.ID)
		if err != nil {
			return nil, err
		}
		if approved {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Winner payment is already approved for this auction")
		}
	}

	pending, err := s.payments.ExistsPending(ctx, user.ID, a.ID, ptype)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, shared.ErrDuplicatePendingRequest
	}

	currency := valueobject.Currency(a.Currency)
	if input.Currency != "" && input.Currency != a.Currency {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Payment currency must be %s", a.Currency))
	}
	amount, err := valueobject.NewMoney(input.Amount, currency)
	if err != nil {
		return nil, err
	}

	pr, err := payment.NewPaymentRequest(payment.NewPaymentRequestInput{
		UserID:        user.ID,
		UserName:      user.Name,
		UserPhone:     user.Phone,
		UserEmail:     user.Email,
		AuctionID:     a.ID,
		AuctionTitle:  a.Title,
		AuctionType:   a.AuctionType,
		PaymentType:   ptype,
		Amount:        amount,
		Method:        input.Method,
		TransactionID: input.TransactionID,
		Screenshot:    input.Screenshot,
	}, s.now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.payments.Save(ctx, pr); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, pr)

	s.logger.Info("payment request submitted",
		zap.String("request_id", pr.ID.String()),
		zap.String("auction_id", a.ID.String()),
		zap.String("payment_type", string(ptype)),
	)

	resp := toResponse(pr)
	return &resp, nil
}

// Get returns a single payment request. Only the submitting user and
// admins may read it.
func (s *Service) Get(ctx context.Context, id uuid.UUID, viewer Viewer) (*Response, error) {
	pr, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment request not found")
	}
	if !viewer.IsAdmin && pr.UserID != viewer.ID {
		return nil, shared.NewDomainError("FORBIDDEN", "Access to this payment request is forbidden")
	}

	resp := toResponse(pr)
	return &resp, nil
}

// List returns the admin verification queue with per-status and
// per-type counters computed over the same filter
func (s *Service) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	filter, err := s.toDomainFilter(f)
	if err != nil {
		return nil, err
	}

	requests, err := s.payments.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.payments.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	statusCounts, err := s.payments.CountByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}
	typeCounts, err := s.payments.CountByType(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]Response, 0, len(requests))
	for i := range requests {
		items = append(items, toResponse(&requests[i]))
	}

	return &ListResult{
		Paginated:    shared.NewPaginated(items, total, filter.Page, filter.PageSize),
		StatusCounts: statusCounts,
		TypeCounts:   typeCounts,
	}, nil
}

// ListMine returns the caller's own payment requests
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, f ListFilter) (*shared.Paginated[Response], error) {
	f.UserID = userID.String()
	filter, err := s.toDomainFilter(f)
	if err != nil {
		return nil, err
	}

	requests, err := s.payments.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.payments.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]Response, 0, len(requests))
	for i := range requests {
		items = append(items, toResponse(&requests[i]))
	}
	p := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &p, nil
}

// Approve resolves a pending request as approved. The conditional
// update in the repository makes the transition first-writer-wins; a
// second admin acting on the same request gets ALREADY_RESOLVED.
func (s *Service) Approve(ctx context.Context, id, adminID uuid.UUID, notes string) (*Response, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "approve")
	defer span.End()

	return s.resolve(ctx, id, func(pr *payment.PaymentRequest) error {
		return pr.Approve(adminID, notes, s.now())
	})
}

// Reject resolves a pending request as rejected. Notes are mandatory so
// the payer learns what to fix before resubmitting.
func (s *Service) Reject(ctx context.Context, id, adminID uuid.UUID, notes string) (*Response, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "reject")
	defer span.End()

	return s.resolve(ctx, id, func(pr *payment.PaymentRequest) error {
		return pr.Reject(adminID, notes, s.now())
	})
}

func (s *Service) resolve(ctx context.Context, id uuid.UUID, apply func(*payment.PaymentRequest) error) (*Response, error) {
	pr, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment request not found")
	}

	if err := apply(pr); err != nil {
		return nil, err
	}
	if err := s.payments.ResolveIfPending(ctx, pr); err != nil {
		return nil, err
	}
	s.publish(ctx, pr)

	s.logger.Info("payment request resolved",
		zap.String("request_id", pr.ID.String()),
		zap.String("status", string(pr.VerificationStatus)),
	)

	resp := toResponse(pr)
	return &resp, nil
}

// WinnerPaymentStatus reports where the caller stands with the winner
// payment for one auction. The auction's seller gets the winner's
// payment state instead (the view the disclosure gate feeds); everyone
// else gets their own. The latest record decides, so a rejection
// followed by a fresh submission reads as pending again.
func (s *Service) WinnerPaymentStatus(ctx context.Context, userID, auctionID uuid.UUID) (*WinnerStatus, error) {
	a, err := s.auctions.FindByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if a == nil || !a.IsLive() {
		return nil, shared.NewDomainError("NOT_FOUND", "Auction not found")
	}

	if a.SellerID == userID {
		return s.sellerWinnerView(ctx, a)
	}

	pr, err := s.payments.FindLatestForUserAuction(ctx, userID, auctionID, payment.TypeWinnerPayment)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return &WinnerStatus{Submitted: false, CanResubmit: true}, nil
	}
	return &WinnerStatus{
		Submitted:   true,
		Status:      string(pr.VerificationStatus),
		RequestID:   &pr.ID,
		AdminNotes:  pr.AdminNotes,
		CanResubmit: pr.VerificationStatus == payment.VerificationRejected,
	}, nil
}

// sellerWinnerView reports the winner's payment state to the auction
// creator. Sellers never resubmit; they only watch.
func (s *Service) sellerWinnerView(ctx context.Context, a *auction.Auction) (*WinnerStatus, error) {
	status := &WinnerStatus{IsAuctionCreator: true}
	if a.WinnerID == nil {
		return status, nil
	}

	pr, err := s.payments.FindLatestForUserAuction(ctx, *a.WinnerID, a.ID, payment.TypeWinnerPayment)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return status, nil
	}
	status.Submitted = true
	status.Status = string(pr.VerificationStatus)
	status.RequestID = &pr.ID
	status.AdminNotes = pr.AdminNotes
	return status, nil
}

// AuctionSummary returns per-status totals for one auction's ledger
func (s *Service) AuctionSummary(ctx context.Context, auctionID uuid.UUID) (*payment.Summary, error) {
	counts, err := s.payments.CountByStatusForAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	summary := payment.NewSummary(counts.Pending, counts.Approved, counts.Rejected)
	return &summary, nil
}

// PrepareScreenshotUpload issues a presigned upload URL for a payment
// proof screenshot
func (s *Service) PrepareScreenshotUpload(ctx context.Context, userID uuid.UUID, filename, contentType string) (*UploadTarget, error) {
	if filename == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Filename is required")
	}

	key := storage.PaymentScreenshotKey(userID, filename)
	url, expiresAt, err := s.media.GenerateUploadURL(ctx, key, contentType, s.presignTTL)
	if err != nil {
		return nil, err
	}
	return &UploadTarget{StorageKey: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}

func (s *Service) toDomainFilter(f ListFilter) (payment.Filter, error) {
	filter := payment.Filter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		},
	}
	filter.Normalize()

	if f.UserID != "" {
		id, err := uuid.Parse(f.UserID)
		if err != nil {
			return payment.Filter{}, shared.NewDomainError("VALIDATION_ERROR", "Invalid user ID")
		}
		filter.UserID = &id
	}
	if f.AuctionID != "" {
		id, err := uuid.Parse(f.AuctionID)
		if err != nil {
			return payment.Filter{}, shared.NewDomainError("VALIDATION_ERROR", "Invalid auction ID")
		}
		filter.AuctionID = &id
	}
	if f.PaymentType != "" {
		pt := payment.PaymentType(f.PaymentType)
		if !pt.IsValid() {
			return payment.Filter{}, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown payment type %q", f.PaymentType))
		}
		filter.PaymentType = &pt
	}
	if f.Status != "" {
		st := payment.VerificationStatus(f.Status)
		filter.Status = &st
	}
	return filter, nil
}

func (s *Service) publish(ctx context.Context, pr *payment.PaymentRequest) {
	if s.publisher == nil {
		pr.ClearDomainEvents()
		return
	}
	if err := s.publisher.Publish(ctx, pr.GetDomainEvents()...); err != nil {
		s.logger.Error("failed to publish payment events",
			zap.String("request_id", pr.ID.String()),
			zap.Error(err),
		)
	}
	pr.ClearDomainEvents()
}
