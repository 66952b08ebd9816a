package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAuctionRepository implements auction.Repository using GORM
type GormAuctionRepository struct {
	db *gorm.DB
}

// NewGormAuctionRepository creates a new GormAuctionRepository
func NewGormAuctionRepository(db *gorm.DB) *GormAuctionRepository {
	return &GormAuctionRepository{db: db}
}

var _ auction.Repository = (*GormAuctionRepository)(nil)

// FindByID finds an auction with its bids preloaded
func (r *GormAuctionRepository) FindByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	var a auction.Auction
	if err := r.db.WithContext(ctx).
		Preload("Bids", func(db *gorm.DB) *gorm.DB {
			return db.Order("placed_at ASC")
		}).
		First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// applyFilter applies auction filter conditions to a query
func (r *GormAuctionRepository) applyFilter(query *gorm.DB, filter auction.Filter) *gorm.DB {
	if !filter.IncludeDeleted {
		query = query.Where("status <> ?", auction.StatusDeleted)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.AuctionType != nil {
		query = query.Where("auction_type = ?", *filter.AuctionType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ApprovalStatus != nil {
		query = query.Where("approval_status = ?", *filter.ApprovalStatus)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// FindAll finds auctions with filtering
func (r *GormAuctionRepository) FindAll(ctx context.Context, filter auction.Filter) ([]auction.Auction, error) {
	filter.Normalize()

	var auctions []auction.Auction
	query := r.applyFilter(r.db.WithContext(ctx), filter).
		Order(sortClause("auctions", filter.OrderBy, filter.OrderDir)).
		Limit(filter.PageSize).
		Offset(filter.Offset())

	if err := query.Preload("Bids").Find(&auctions).Error; err != nil {
		return nil, err
	}
	return auctions, nil
}

// FindBySeller finds auctions owned by a seller
func (r *GormAuctionRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter auction.Filter) ([]auction.Auction, error) {
	filter.SellerID = &sellerID
	filter.IncludeDeleted = true // Sellers see their own deleted listings
	return r.FindAll(ctx, filter)
}

// FindWonByUser finds ended auctions the given user won
func (r *GormAuctionRepository) FindWonByUser(ctx context.Context, userID uuid.UUID) ([]auction.Auction, error) {
	var auctions []auction.Auction
	if err := r.db.WithContext(ctx).
		Where("winner_id = ? AND status = ?", userID, auction.StatusEnded).
		Order("end_at DESC").
		Preload("Bids").
		Find(&auctions).Error; err != nil {
		return nil, err
	}
	return auctions, nil
}

// FindParticipatedByUser finds auctions the given user has bid on
func (r *GormAuctionRepository) FindParticipatedByUser(ctx context.Context, userID uuid.UUID) ([]auction.Auction, error) {
	bidSubquery := r.db.Model(&auction.Bid{}).
		Select("auction_id").
		Where("bidder_id = ?", userID)

	var auctions []auction.Auction
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", bidSubquery).
		Where("status <> ?", auction.StatusDeleted).
		Order("end_at DESC").
		Preload("Bids").
		Find(&auctions).Error; err != nil {
		return nil, err
	}
	return auctions, nil
}

// FindPendingApproval finds reserve auctions awaiting admin review
func (r *GormAuctionRepository) FindPendingApproval(ctx context.Context, filter auction.Filter) ([]auction.Auction, error) {
	pending := auction.ApprovalPending
	filter.ApprovalStatus = &pending
	return r.FindAll(ctx, filter)
}

// FindDueForTransition finds approved, non-terminal auctions whose start
// or end time has passed relative to now. Used by the auction clock sweep.
func (r *GormAuctionRepository) FindDueForTransition(ctx context.Context, now time.Time, limit int) ([]auction.Auction, error) {
	var auctions []auction.Auction
	if err := r.db.WithContext(ctx).
		Where("approval_status = ?", auction.ApprovalApproved).
		Where(
			r.db.Where("status = ? AND start_at <= ?", auction.StatusUpcoming, now).
				Or("status = ? AND end_at < ?", auction.StatusActive, now),
		).
		Order("end_at ASC").
		Limit(limit).
		Find(&auctions).Error; err != nil {
		return nil, err
	}
	return auctions, nil
}

// Save creates or updates an auction along with new bids
func (r *GormAuctionRepository) Save(ctx context.Context, a *auction.Auction) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// SaveWithLock saves with optimistic locking against the version the
// aggregate was loaded with. Concurrent writers race on the version
// column; losers get ErrConcurrencyConflict and are expected to reload
// and retry.
func (r *GormAuctionRepository) SaveWithLock(ctx context.Context, a *auction.Auction) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&auction.Auction{}).
			Where("id = ? AND version = ?", a.ID, a.StoredVersion()).
			Select("*").
			Omit("id", "created_at", "Bids").
			Updates(a)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		// Bids are append-only; existing rows are left untouched
		if len(a.Bids) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&a.Bids).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	a.SyncStoredVersion()
	return nil
}

// Count counts auctions matching the filter
func (r *GormAuctionRepository) Count(ctx context.Context, filter auction.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&auction.Auction{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
