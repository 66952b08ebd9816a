package auction

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/identity"
	"github.com/auctionhouse/backend/internal/domain/payment"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/auctionhouse/backend/internal/infrastructure/storage"
)

// memAuctionRepo is an in-memory auction.Repository for service tests.
// FindByID returns a detached copy so a failed save does not leak
// uncommitted state back into the next load.
type memAuctionRepo struct {
	auction.Repository
	byID          map[uuid.UUID]*auction.Auction
	conflictsLeft int
}

func newMemAuctionRepo() *memAuctionRepo {
	return &memAuctionRepo{byID: make(map[uuid.UUID]*auction.Auction)}
}

func (r *memAuctionRepo) put(a *auction.Auction) {
	r.byID[a.ID] = a
}

func (r *memAuctionRepo) FindByID(_ context.Context, id uuid.UUID) (*auction.Auction, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	cp.Bids = append([]auction.Bid(nil), a.Bids...)
	cp.SyncStoredVersion()
	return &cp, nil
}

func (r *memAuctionRepo) Save(_ context.Context, a *auction.Auction) error {
	r.byID[a.ID] = a
	return nil
}

// SaveWithLock mirrors the conditional update in the Gorm repository:
// the write only lands while the stored row still carries the version
// the aggregate was loaded with, regardless of how many times the
// mutation bumped it since.
func (r *memAuctionRepo) SaveWithLock(_ context.Context, a *auction.Auction) error {
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return shared.ErrConcurrencyConflict
	}
	if stored, ok := r.byID[a.ID]; ok && stored.Version != a.StoredVersion() {
		return shared.ErrConcurrencyConflict
	}
	a.SyncStoredVersion()
	r.byID[a.ID] = a
	return nil
}

func (r *memAuctionRepo) FindWonByUser(_ context.Context, userID uuid.UUID) ([]auction.Auction, error) {
	var out []auction.Auction
	for _, a := range r.byID {
		if a.IsWinner(userID) {
			out = append(out, *a)
		}
	}
	return out, nil
}

type memPaymentRepo struct {
	payment.Repository
	approvedWinner map[string]bool
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{approvedWinner: make(map[string]bool)}
}

func winnerKey(userID, auctionID uuid.UUID) string {
	return userID.String() + "/" + auctionID.String()
}

func (r *memPaymentRepo) HasApprovedWinnerPayment(_ context.Context, userID, auctionID uuid.UUID) (bool, error) {
	return r.approvedWinner[winnerKey(userID, auctionID)], nil
}

type memUserRepo struct {
	identity.Repository
	byID map[uuid.UUID]*identity.User
}

func newMemUserRepo(users ...*identity.User) *memUserRepo {
	r := &memUserRepo{byID: make(map[uuid.UUID]*identity.User)}
	for _, u := range users {
		r.byID[u.ID] = u
	}
	return r
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	return r.byID[id], nil
}

func newTestUser(t *testing.T, name, phone string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(name, name+"@example.com", phone, "password123", identity.RoleUser)
	require.NoError(t, err)
	return u
}

type serviceFixture struct {
	svc      *Service
	auctions *memAuctionRepo
	payments *memPaymentRepo
	users    *memUserRepo
	now      time.Time
}

func newServiceFixture(t *testing.T, users ...*identity.User) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		auctions: newMemAuctionRepo(),
		payments: newMemPaymentRepo(),
		users:    newMemUserRepo(users...),
		now:      time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.auctions, f.payments, f.users, storage.NewStubObjectStorage(),
		WithClock(func() time.Time { return f.now }),
	)
	return f
}

func (f *serviceFixture) englishAuction(t *testing.T, seller *identity.User, startOffset, endOffset time.Duration) *auction.Auction {
	t.Helper()
	a, err := auction.NewAuction(auction.NewAuctionInput{
		Title:         "Vintage Watch",
		Category:      "collectibles",
		AuctionType:   auction.TypeEnglish,
		StartingPrice: valueobject.NewMoneyINRFromFloat(1000),
		BidIncrement:  valueobject.NewMoneyINRFromFloat(100),
		SellerID:      seller.ID,
		SellerName:    seller.Name,
		SellerPhone:   seller.Phone,
		StartAt:       f.now.Add(startOffset),
		EndAt:         f.now.Add(endOffset),
		Images:        []string{"watch.jpg"},
	}, f.now.Add(startOffset))
	require.NoError(t, err)
	a.ClearDomainEvents()
	f.auctions.put(a)
	return a
}

func (f *serviceFixture) reserveAuction(t *testing.T, seller *identity.User) *auction.Auction {
	t.Helper()
	min := valueobject.NewMoneyINRFromFloat(5000)
	a, err := auction.NewAuction(auction.NewAuctionInput{
		Title:         "Estate Painting",
		Category:      "art",
		AuctionType:   auction.TypeReserve,
		StartingPrice: valueobject.NewMoneyINRFromFloat(2000),
		BidIncrement:  valueobject.NewMoneyINRFromFloat(200),
		MinimumPrice:  &min,
		SellerID:      seller.ID,
		SellerName:    seller.Name,
		SellerPhone:   seller.Phone,
		StartAt:       f.now.Add(time.Hour),
		EndAt:         f.now.Add(48 * time.Hour),
		Images:        []string{"painting.jpg"},
		Certificates:  []string{"provenance.pdf"},
	}, f.now)
	require.NoError(t, err)
	a.ClearDomainEvents()
	f.auctions.put(a)
	return a
}

func TestCreateAuction(t *testing.T) {
	seller := newTestUser(t, "seller", "+911234567890")

	t.Run("creates an english auction as immediately approved", func(t *testing.T) {
		f := newServiceFixture(t, seller)

		resp, err := f.svc.CreateAuction(context.Background(), CreateAuctionInput{
			Title:         "Old Coin",
			Category:      "collectibles",
			AuctionType:   "english",
			StartingPrice: decimal.NewFromInt(500),
			BidIncrement:  decimal.NewFromInt(50),
			SellerID:      seller.ID,
			StartAt:       f.now.Add(-time.Minute),
			EndAt:         f.now.Add(24 * time.Hour),
			Images:        []string{"coin.jpg"},
		})

		require.NoError(t, err)
		assert.Equal(t, "approved", resp.ApprovalStatus)
		assert.Equal(t, "active", resp.Status)
		assert.Equal(t, seller.Name, resp.SellerName)
		assert.NotNil(t, f.auctions.byID[resp.ID])
	})

	t.Run("creates a reserve auction as approval pending", func(t *testing.T) {
		f := newServiceFixture(t, seller)
		min := decimal.NewFromInt(5000)

		resp, err := f.svc.CreateAuction(context.Background(), CreateAuctionInput{
			Title:         "Estate Painting",
			Category:      "art",
			AuctionType:   "reserve",
			StartingPrice: decimal.NewFromInt(2000),
			BidIncrement:  decimal.NewFromInt(200),
			MinimumPrice:  &min,
			SellerID:      seller.ID,
			StartAt:       f.now.Add(time.Hour),
			EndAt:         f.now.Add(48 * time.Hour),
			Images:        []string{"painting.jpg"},
			Certificates:  []string{"provenance.pdf"},
		})

		require.NoError(t, err)
		assert.Equal(t, "pending", resp.ApprovalStatus)
		assert.Equal(t, "upcoming", resp.Status)
	})

	t.Run("rejects unknown seller", func(t *testing.T) {
		f := newServiceFixture(t, seller)

		_, err := f.svc.CreateAuction(context.Background(), CreateAuctionInput{
			Title:    "Ghost Lot",
			SellerID: uuid.New(),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestGetAuction(t *testing.T) {
	seller := newTestUser(t, "seller", "+911234567890")
	buyer := newTestUser(t, "buyer", "+919876543210")

	t.Run("ends an expired auction on read and persists it", func(t *testing.T) {
		f := newServiceFixture(t, seller, buyer)
		a := f.englishAuction(t, seller, -2*time.Hour, -time.Hour)

		resp, err := f.svc.GetAuction(context.Background(), a.ID, nil)

		require.NoError(t, err)
		assert.Equal(t, "ended", resp.Status)
		assert.Equal(t, auction.StatusEnded, f.auctions.byID[a.ID].Status)
	})

	t.Run("hides a pending reserve auction from strangers", func(t *testing.T) {
		f := newServiceFixture(t, seller, buyer)
		a := f.reserveAuction(t, seller)

		_, err := f.svc.GetAuction(context.Background(), a.ID, &Viewer{ID: buyer.ID})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)

		resp, err := f.svc.GetAuction(context.Background(), a.ID, &Viewer{ID: seller.ID})
		require.NoError(t, err)
		assert.Equal(t, "pending", resp.ApprovalStatus)
		require.NotNil(t, resp.MinimumPrice)
	})

	t.Run("hides reserve figures from non-owners", func(t *testing.T) {
		f := newServiceFixture(t, seller, buyer)
		a := f.reserveAuction(t, seller)
		require.NoError(t, a.Approve(uuid.New(), "", f.now))
		a.ClearDomainEvents()
		f.auctions.put(a)

		resp, err := f.svc.GetAuction(context.Background(), a.ID, &Viewer{ID: buyer.ID})

		require.NoError(t, err)
		assert.Nil(t, resp.MinimumPrice)
		assert.Empty(t, resp.Certificates)
	})

	t.Run("not found", func(t *testing.T) {
		f := newServiceFixture(t, seller)
		_, err := f.svc.GetAuction(context.Background(), uuid.New(), nil)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestDisclosureGate(t *testing.T) {
	seller := newTestUser(t, "seller", "+911234567890")
	winner := newTestUser(t, "winner", "+919876543210")

	endedReserveWithWinner := func(t *testing.T, f *serviceFixture) *auction.Auction {
		a := f.reserveAuction(t, seller)
		require.NoError(t, a.Approve(uuid.New(), "", f.now))
		a.Status = auction.StatusActive
		_, err := a.PlaceBid(winner.ID, winner.Name, valueobject.NewMoneyINRFromFloat(6000), f.now)
		require.NoError(t, err)
		a.EndAt = f.now.Add(-time.Minute)
		require.True(t, a.EvaluateClock(f.now))
		a.ClearDomainEvents()
		f.auctions.put(a)
		return a
	}

	t.Run("no phones before the winner payment is approved", func(t *testing.T) {
		f := newServiceFixture(t, seller, winner)
		a := endedReserveWithWinner(t, f)

		asWinner, err := f.svc.GetAuction(context.Background(), a.ID, &Viewer{ID: winner.ID})
		require.NoError(t, err)
		assert.Nil(t, asWinner.SellerPhone)

		asSeller, err := f.svc.GetAuction(context.Background(), a.ID, &Viewer{ID: seller.ID})
		require.NoError(t, err)
		assert.Nil(t, asSeller.WinnerPhone)
	})

	t.Run("phones unlock once the winner payment is approved", func(t *testing.T) {
		f := newServiceFixture(t, seller, winner)
		a := endedReserveWithWinner(t, f)
		f.payments.approvedWinner[winnerKey(winner.ID, a.ID)] = true

		asWinner, err := f.svc.GetAuction(context.Background(), a.ID, &Viewer{ID: winner.ID})
		require.NoError(t, err)
		require.NotNil(t, asWinner.SellerPhone)
		assert.Equal(t, seller.Phone, *asWinner.SellerPhone)

		asSeller, err := f.svc.GetAuction(context.Background(), a.ID, &Viewer{ID: seller.ID})
		require.NoError(t, err)
		require.NotNil(t, asSeller.WinnerPhone)
		assert.Equal(t, winner.Phone, *asSeller.WinnerPhone)
	})

	t.Run("english auctions disclose without payment", func(t *testing.T) {
		f := newServiceFixture(t, seller, winner)
		a := f.englishAuction(t, seller, -2*time.Hour, time.Hour)
		_, err := a.PlaceBid(winner.ID, winner.Name, valueobject.NewMoneyINRFromFloat(1100), f.now)
		require.NoError(t, err)
		a.EndAt = f.now.Add(-time.Minute)
		require.True(t, a.EvaluateClock(f.now))
		a.ClearDomainEvents()
		f.auctions.put(a)

		asWinner, err := f.svc.GetAuction(context.Background(), a.ID, &Viewer{ID: winner.ID})
		require.NoError(t, err)
		require.NotNil(t, asWinner.SellerPhone)
	})
}

func TestPlaceBid(t *testing.T) {
	seller := newTestUser(t, "seller", "+911234567890")
	bidder := newTestUser(t, "bidder", "+919876543210")

	t.Run("accepts a valid first bid", func(t *testing.T) {
		f := newServiceFixture(t, seller, bidder)
		a := f.englishAuction(t, seller, -time.Hour, time.Hour)

		bid, err := f.svc.PlaceBid(context.Background(), PlaceBidInput{
			AuctionID: a.ID,
			BidderID:  bidder.ID,
			Amount:    decimal.NewFromInt(1100),
		})

		require.NoError(t, err)
		assert.Equal(t, bidder.ID, bid.BidderID)
		assert.Equal(t, bidder.Name, bid.BidderName)
		stored := f.auctions.byID[a.ID]
		assert.True(t, stored.CurrentBid.Equal(decimal.NewFromInt(1100)))
		require.NotNil(t, stored.CurrentHighestBidderID)
		assert.Equal(t, bidder.ID, *stored.CurrentHighestBidderID)
	})

	t.Run("first bid activates an overdue upcoming auction", func(t *testing.T) {
		f := newServiceFixture(t, seller, bidder)
		a, err := auction.NewAuction(auction.NewAuctionInput{
			Title:         "Vintage Watch",
			Category:      "collectibles",
			AuctionType:   auction.TypeEnglish,
			StartingPrice: valueobject.NewMoneyINRFromFloat(1000),
			BidIncrement:  valueobject.NewMoneyINRFromFloat(100),
			SellerID:      seller.ID,
			SellerName:    seller.Name,
			SellerPhone:   seller.Phone,
			StartAt:       f.now.Add(time.Hour),
			EndAt:         f.now.Add(3 * time.Hour),
			Images:        []string{"watch.jpg"},
		}, f.now)
		require.NoError(t, err)
		require.Equal(t, auction.StatusUpcoming, a.Status)
		a.ClearDomainEvents()
		f.auctions.put(a)

		// Past the start time the bid both activates the auction and
		// records itself, bumping the version twice in one operation.
		f.now = f.now.Add(2 * time.Hour)
		bid, err := f.svc.PlaceBid(context.Background(), PlaceBidInput{
			AuctionID: a.ID,
			BidderID:  bidder.ID,
			Amount:    decimal.NewFromInt(1100),
		})

		require.NoError(t, err)
		assert.Equal(t, bidder.ID, bid.BidderID)
		stored := f.auctions.byID[a.ID]
		assert.Equal(t, auction.StatusActive, stored.Status)
		assert.Len(t, stored.Bids, 1)
	})

	t.Run("retries once after a version conflict", func(t *testing.T) {
		f := newServiceFixture(t, seller, bidder)
		a := f.englishAuction(t, seller, -time.Hour, time.Hour)
		f.auctions.conflictsLeft = 1

		_, err := f.svc.PlaceBid(context.Background(), PlaceBidInput{
			AuctionID: a.ID,
			BidderID:  bidder.ID,
			Amount:    decimal.NewFromInt(1100),
		})

		require.NoError(t, err)
		assert.Len(t, f.auctions.byID[a.ID].Bids, 1)
	})

	t.Run("gives up after repeated conflicts", func(t *testing.T) {
		f := newServiceFixture(t, seller, bidder)
		a := f.englishAuction(t, seller, -time.Hour, time.Hour)
		f.auctions.conflictsLeft = maxBidAttempts

		_, err := f.svc.PlaceBid(context.Background(), PlaceBidInput{
			AuctionID: a.ID,
			BidderID:  bidder.ID,
			Amount:    decimal.NewFromInt(1100),
		})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("rejects the seller bidding on their own auction", func(t *testing.T) {
		f := newServiceFixture(t, seller, bidder)
		a := f.englishAuction(t, seller, -time.Hour, time.Hour)

		_, err := f.svc.PlaceBid(context.Background(), PlaceBidInput{
			AuctionID: a.ID,
			BidderID:  seller.ID,
			Amount:    decimal.NewFromInt(1000),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
	})

	t.Run("rejects a first bid at the starting price", func(t *testing.T) {
		f := newServiceFixture(t, seller, bidder)
		a := f.englishAuction(t, seller, -time.Hour, time.Hour)

		_, err := f.svc.PlaceBid(context.Background(), PlaceBidInput{
			AuctionID: a.ID,
			BidderID:  bidder.ID,
			Amount:    decimal.NewFromInt(1000),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_BID", domainErr.Code)
	})

	t.Run("rejects a bid on a pending reserve auction", func(t *testing.T) {
		f := newServiceFixture(t, seller, bidder)
		a := f.reserveAuction(t, seller)

		_, err := f.svc.PlaceBid(context.Background(), PlaceBidInput{
			AuctionID: a.ID,
			BidderID:  bidder.ID,
			Amount:    decimal.NewFromInt(5000),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestAdminTransitions(t *testing.T) {
	seller := newTestUser(t, "seller", "+911234567890")
	adminID := uuid.New()

	t.Run("approve pending reserve auction", func(t *testing.T) {
		f := newServiceFixture(t, seller)
		a := f.reserveAuction(t, seller)

		resp, err := f.svc.ApproveAuction(context.Background(), a.ID, adminID, "looks legitimate")

		require.NoError(t, err)
		assert.Equal(t, "approved", resp.ApprovalStatus)
		assert.Equal(t, "upcoming", resp.Status)
	})

	t.Run("approve is not repeatable", func(t *testing.T) {
		f := newServiceFixture(t, seller)
		a := f.reserveAuction(t, seller)
		_, err := f.svc.ApproveAuction(context.Background(), a.ID, adminID, "")
		require.NoError(t, err)

		_, err = f.svc.ApproveAuction(context.Background(), a.ID, adminID, "")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("stop and continue", func(t *testing.T) {
		f := newServiceFixture(t, seller)
		a := f.englishAuction(t, seller, -time.Hour, time.Hour)

		stopped, err := f.svc.StopAuction(context.Background(), a.ID, adminID)
		require.NoError(t, err)
		assert.Equal(t, "stopped", stopped.Status)

		resumed, err := f.svc.ContinueAuction(context.Background(), a.ID, adminID)
		require.NoError(t, err)
		assert.Equal(t, "active", resumed.Status)
	})

	t.Run("continuing past the end time ends the auction", func(t *testing.T) {
		f := newServiceFixture(t, seller)
		a := f.englishAuction(t, seller, -time.Hour, time.Hour)
		_, err := f.svc.StopAuction(context.Background(), a.ID, adminID)
		require.NoError(t, err)

		f.now = f.now.Add(2 * time.Hour)
		resumed, err := f.svc.ContinueAuction(context.Background(), a.ID, adminID)
		require.NoError(t, err)
		assert.Equal(t, "ended", resumed.Status)
	})
}

func TestDeleteAuction(t *testing.T) {
	seller := newTestUser(t, "seller", "+911234567890")
	stranger := newTestUser(t, "stranger", "+910000000000")

	t.Run("seller deletes own auction", func(t *testing.T) {
		f := newServiceFixture(t, seller, stranger)
		a := f.englishAuction(t, seller, -time.Hour, time.Hour)

		err := f.svc.DeleteAuction(context.Background(), a.ID, Viewer{ID: seller.ID})

		require.NoError(t, err)
		assert.Equal(t, auction.StatusDeleted, f.auctions.byID[a.ID].Status)
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		f := newServiceFixture(t, seller, stranger)
		a := f.englishAuction(t, seller, -time.Hour, time.Hour)

		err := f.svc.DeleteAuction(context.Background(), a.ID, Viewer{ID: stranger.ID})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
	})

	t.Run("admin can delete any auction", func(t *testing.T) {
		f := newServiceFixture(t, seller, stranger)
		a := f.englishAuction(t, seller, -time.Hour, time.Hour)

		err := f.svc.DeleteAuction(context.Background(), a.ID, Viewer{ID: stranger.ID, IsAdmin: true})

		require.NoError(t, err)
	})
}

func TestListWonAuctions(t *testing.T) {
	seller := newTestUser(t, "seller", "+911234567890")
	winner := newTestUser(t, "winner", "+919876543210")
	f := newServiceFixture(t, seller, winner)

	a := f.reserveAuction(t, seller)
	require.NoError(t, a.Approve(uuid.New(), "", f.now))
	a.Status = auction.StatusActive
	_, err := a.PlaceBid(winner.ID, winner.Name, valueobject.NewMoneyINRFromFloat(6000), f.now)
	require.NoError(t, err)
	a.EndAt = f.now.Add(-time.Minute)
	require.True(t, a.EvaluateClock(f.now))
	a.ClearDomainEvents()
	f.auctions.put(a)

	won, err := f.svc.ListWonAuctions(context.Background(), winner.ID)

	require.NoError(t, err)
	require.Len(t, won, 1)
	assert.True(t, won[0].RequiresWinnerPayment)
	assert.False(t, won[0].WinnerPaymentApproved)
	assert.True(t, won[0].WinningBid.Equal(decimal.NewFromInt(6000)))

	f.payments.approvedWinner[winnerKey(winner.ID, a.ID)] = true
	won, err = f.svc.ListWonAuctions(context.Background(), winner.ID)
	require.NoError(t, err)
	require.Len(t, won, 1)
	assert.True(t, won[0].WinnerPaymentApproved)
}

func TestPrepareMediaUpload(t *testing.T) {
	seller := newTestUser(t, "seller", "+911234567890")
	f := newServiceFixture(t, seller)

	t.Run("image upload", func(t *testing.T) {
		target, err := f.svc.PrepareMediaUpload(context.Background(), seller.ID, "image", "watch.jpg", "image/jpeg")

		require.NoError(t, err)
		assert.Contains(t, target.StorageKey, "images/")
		assert.NotEmpty(t, target.UploadURL)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := f.svc.PrepareMediaUpload(context.Background(), seller.ID, "video", "clip.mp4", "video/mp4")

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})
}
