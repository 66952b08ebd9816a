package persistence

import (
	"context"
	"errors"

	"github.com/auctionhouse/backend/internal/domain/payment"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRequestRepository implements payment.Repository using GORM
type GormPaymentRequestRepository struct {
	db *gorm.DB
}

// NewGormPaymentRequestRepository creates a new GormPaymentRequestRepository
func NewGormPaymentRequestRepository(db *gorm.DB) *GormPaymentRequestRepository {
	return &GormPaymentRequestRepository{db: db}
}

var _ payment.Repository = (*GormPaymentRequestRepository)(nil)

// FindByID finds a payment request by ID
func (r *GormPaymentRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.PaymentRequest, error) {
	var pr payment.PaymentRequest
	if err := r.db.WithContext(ctx).First(&pr, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pr, nil
}

// applyFilter applies payment request filter conditions to a query
func (r *GormPaymentRequestRepository) applyFilter(query *gorm.DB, filter payment.Filter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.AuctionID != nil {
		query = query.Where("auction_id = ?", *filter.AuctionID)
	}
	if filter.PaymentType != nil {
		query = query.Where("payment_type = ?", *filter.PaymentType)
	}
	if filter.Status != nil {
		query = query.Where("verification_status = ?", *filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("user_name ILIKE ? OR auction_title ILIKE ? OR transaction_id ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	return query
}

// FindAll finds payment requests with filtering, newest first
func (r *GormPaymentRequestRepository) FindAll(ctx context.Context, filter payment.Filter) ([]payment.PaymentRequest, error) {
	filter.Normalize()
	if filter.OrderBy == "" || filter.OrderBy == "created_at" {
		filter.OrderBy = "submitted_at"
	}

	var requests []payment.PaymentRequest
	query := r.applyFilter(r.db.WithContext(ctx), filter).
		Order(sortClause("payment_requests", filter.OrderBy, filter.OrderDir)).
		Limit(filter.PageSize).
		Offset(filter.Offset())

	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// FindLatestForUserAuction finds the most recent request of the given
// type for a (user, auction) pair, or nil if none exists
func (r *GormPaymentRequestRepository) FindLatestForUserAuction(ctx context.Context, userID, auctionID uuid.UUID, paymentType payment.PaymentType) (*payment.PaymentRequest, error) {
	var pr payment.PaymentRequest
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND auction_id = ? AND payment_type = ?", userID, auctionID, paymentType).
		Order("submitted_at DESC").
		First(&pr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pr, nil
}

// ExistsPending reports whether an unresolved request of the given type
// already exists for the (user, auction) pair
func (r *GormPaymentRequestRepository) ExistsPending(ctx context.Context, userID, auctionID uuid.UUID, paymentType payment.PaymentType) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&payment.PaymentRequest{}).
		Where("user_id = ? AND auction_id = ? AND payment_type = ? AND verification_status = ?",
			userID, auctionID, paymentType, payment.VerificationPending).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasApprovedWinnerPayment reports whether an approved winner_payment
// record exists for the (user, auction) pair
func (r *GormPaymentRequestRepository) HasApprovedWinnerPayment(ctx context.Context, userID, auctionID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&payment.PaymentRequest{}).
		Where("user_id = ? AND auction_id = ? AND payment_type = ? AND verification_status = ?",
			userID, auctionID, payment.TypeWinnerPayment, payment.VerificationApproved).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a payment request
func (r *GormPaymentRequestRepository) Save(ctx context.Context, pr *payment.PaymentRequest) error {
	return r.db.WithContext(ctx).Save(pr).Error
}

// ResolveIfPending persists an approve/reject transition with an atomic
// conditional update: the row is written only while it is still pending,
// so two admins racing on the same request cannot both win.
func (r *GormPaymentRequestRepository) ResolveIfPending(ctx context.Context, pr *payment.PaymentRequest) error {
	result := r.db.WithContext(ctx).
		Model(&payment.PaymentRequest{}).
		Where("id = ? AND verification_status = ?", pr.ID, payment.VerificationPending).
		Updates(map[string]any{
			"verification_status": pr.VerificationStatus,
			"admin_notes":         pr.AdminNotes,
			"verified_at":         pr.VerifiedAt,
			"verified_by":         pr.VerifiedBy,
			"updated_at":          pr.UpdatedAt,
			"version":             pr.Version,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyResolved
	}
	return nil
}

// Count counts payment requests matching the filter
func (r *GormPaymentRequestRepository) Count(ctx context.Context, filter payment.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&payment.PaymentRequest{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type statusCountRow struct {
	VerificationStatus payment.VerificationStatus
	Count              int64
}

// CountByStatus returns per-status totals for the filter (ignoring its
// status field)
func (r *GormPaymentRequestRepository) CountByStatus(ctx context.Context, filter payment.Filter) (payment.StatusCounts, error) {
	filter.Status = nil

	var rows []statusCountRow
	query := r.applyFilter(r.db.WithContext(ctx).Model(&payment.PaymentRequest{}), filter)
	if err := query.
		Select("verification_status, count(*) as count").
		Group("verification_status").
		Scan(&rows).Error; err != nil {
		return payment.StatusCounts{}, err
	}

	var counts payment.StatusCounts
	for _, row := range rows {
		switch row.VerificationStatus {
		case payment.VerificationPending:
			counts.Pending = row.Count
		case payment.VerificationApproved:
			counts.Approved = row.Count
		case payment.VerificationRejected:
			counts.Rejected = row.Count
		}
	}
	return counts, nil
}

type typeCountRow struct {
	PaymentType payment.PaymentType
	Count       int64
}

// CountByType returns per-payment-type totals for the filter (ignoring
// its payment type field)
func (r *GormPaymentRequestRepository) CountByType(ctx context.Context, filter payment.Filter) (payment.TypeCounts, error) {
	filter.PaymentType = nil

	var rows []typeCountRow
	query := r.applyFilter(r.db.WithContext(ctx).Model(&payment.PaymentRequest{}), filter)
	if err := query.
		Select("payment_type, count(*) as count").
		Group("payment_type").
		Scan(&rows).Error; err != nil {
		return payment.TypeCounts{}, err
	}

	var counts payment.TypeCounts
	for _, row := range rows {
		switch row.PaymentType {
		case payment.TypeParticipationFee:
			counts.ParticipationFee = row.Count
		case payment.TypeWinnerPayment:
			counts.WinnerPayment = row.Count
		}
	}
	return counts, nil
}

// CountByStatusForAuction returns per-status totals for one auction
func (r *GormPaymentRequestRepository) CountByStatusForAuction(ctx context.Context, auctionID uuid.UUID) (payment.StatusCounts, error) {
	return r.CountByStatus(ctx, payment.Filter{AuctionID: &auctionID})
}
