package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auctionapp "github.com/auctionhouse/backend/internal/application/auction"
	paymentapp "github.com/auctionhouse/backend/internal/application/payment"
	"github.com/auctionhouse/backend/internal/domain/identity"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence"
	"github.com/auctionhouse/backend/internal/infrastructure/storage"
	"github.com/auctionhouse/backend/tests/testutil"
)

// testClock is a mutable clock shared by all services in a test
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type flowFixture struct {
	db        *TestDB
	clock     *testClock
	published *testutil.CapturePublisher
	auctions  *auctionapp.Service
	payments  *paymentapp.Service
	users     *persistence.GormUserRepository
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()

	db := NewTestDB(t)
	clock := newTestClock(time.Now().Truncate(time.Second))
	published := &testutil.CapturePublisher{}

	auctionRepo := persistence.NewGormAuctionRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRequestRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	media := storage.NewStubObjectStorage()

	return &flowFixture{
		db:        db,
		clock:     clock,
		published: published,
		users:     userRepo,
		auctions: auctionapp.NewService(auctionRepo, paymentRepo, userRepo, media,
			auctionapp.WithPublisher(published),
			auctionapp.WithClock(clock.Now),
		),
		payments: paymentapp.NewService(paymentRepo, auctionRepo, userRepo, media,
			paymentapp.WithPublisher(published),
			paymentapp.WithClock(clock.Now),
		),
	}
}

func (f *flowFixture) createUser(t *testing.T, name, email, phone string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(name, email, phone, "integration-pass", identity.RoleUser)
	require.NoError(t, err)
	require.NoError(t, f.users.Save(context.Background(), u))
	return u
}

// TestReserveAuctionLifecycle drives a reserve auction from submission
// through approval, bidding, closing, winner payment, and contact
// disclosure against a real database.
func TestReserveAuctionLifecycle(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	seller := f.createUser(t, "Seller", "seller@example.com", "+911111111111")
	bidder := f.createUser(t, "Bidder", "bidder@example.com", "+912222222222")
	rival := f.createUser(t, "Rival", "rival@example.com", "+913333333333")
	admin, err := identity.NewUser("Admin", "admin@example.com", "+914444444444", "integration-pass", identity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, f.users.Save(ctx, admin))

	now := f.clock.Now()
	minimum := decimal.NewFromInt(5000)
	created, err := f.auctions.CreateAuction(ctx, auctionapp.CreateAuctionInput{
		Title:         "Antique bronze lamp",
		Description:   "Early 20th century",
		Category:      "antiques",
		AuctionType:   "reserve",
		StartingPrice: decimal.NewFromInt(1000),
		BidIncrement:  decimal.NewFromInt(100),
		MinimumPrice:  &minimum,
		SellerID:      seller.ID,
		StartAt:       now.Add(time.Hour),
		EndAt:         now.Add(48 * time.Hour),
		Images:        []string{"auctions/images/lamp.jpg"},
		Certificates:  []string{"auctions/certificates/provenance.pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", created.ApprovalStatus)
	assert.Equal(t, "upcoming", created.Status)

	// Hidden from the public while pending
	adminViewer := &auctionapp.Viewer{ID: admin.ID, IsAdmin: true}
	bidderViewer := &auctionapp.Viewer{ID: bidder.ID}
	_, err = f.auctions.GetAuction(ctx, created.ID, bidderViewer)
	require.Error(t, err)

	_, err = f.auctions.ApproveAuction(ctx, created.ID, admin.ID, "provenance verified")
	require.NoError(t, err)

	// Start the auction and bid
	f.clock.Advance(2 * time.Hour)
	_, err = f.auctions.PlaceBid(ctx, auctionapp.PlaceBidInput{
		AuctionID: created.ID,
		BidderID:  rival.ID,
		Amount:    decimal.NewFromInt(5200),
	})
	require.NoError(t, err)

	bid, err := f.auctions.PlaceBid(ctx, auctionapp.PlaceBidInput{
		AuctionID: created.ID,
		BidderID:  bidder.ID,
		Amount:    decimal.NewFromInt(6000),
	})
	require.NoError(t, err)
	assert.True(t, bid.Amount.Equal(decimal.NewFromInt(6000)))

	// Close the auction via the lazy clock on read
	f.clock.Advance(72 * time.Hour)
	detail, err := f.auctions.GetAuction(ctx, created.ID, bidderViewer)
	require.NoError(t, err)
	assert.Equal(t, "ended", detail.Status)
	require.NotNil(t, detail.WinnerID)
	assert.Equal(t, bidder.ID, *detail.WinnerID)

	// Reserve auction: no contact details before payment approval
	assert.Nil(t, detail.SellerPhone)

	won, err := f.auctions.ListWonAuctions(ctx, bidder.ID)
	require.NoError(t, err)
	require.Len(t, won, 1)
	assert.True(t, won[0].RequiresWinnerPayment)
	assert.False(t, won[0].WinnerPaymentApproved)

	// Winner submits payment proof
	submitted, err := f.payments.Submit(ctx, paymentapp.SubmitInput{
		UserID:        bidder.ID,
		AuctionID:     created.ID,
		PaymentType:   "winner_payment",
		Amount:        decimal.NewFromInt(6000),
		Method:        "UPI",
		TransactionID: "TXN-INTEGRATION-1",
		Screenshot:    "payments/screenshots/txn1.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", submitted.VerificationStatus)

	// A duplicate pending submission is rejected
	_, err = f.payments.Submit(ctx, paymentapp.SubmitInput{
		UserID:        bidder.ID,
		AuctionID:     created.ID,
		PaymentType:   "winner_payment",
		Amount:        decimal.NewFromInt(6000),
		Method:        "UPI",
		TransactionID: "TXN-INTEGRATION-2",
	})
	require.Error(t, err)

	_, err = f.payments.Approve(ctx, submitted.ID, admin.ID, "verified against bank export")
	require.NoError(t, err)

	// Disclosure gate opens both ways
	detail, err = f.auctions.GetAuction(ctx, created.ID, bidderViewer)
	require.NoError(t, err)
	require.NotNil(t, detail.SellerPhone)
	assert.Equal(t, "+911111111111", *detail.SellerPhone)

	sellerDetail, err := f.auctions.GetAuction(ctx, created.ID, &auctionapp.Viewer{ID: seller.ID})
	require.NoError(t, err)
	require.NotNil(t, sellerDetail.WinnerPhone)
	assert.Equal(t, "+912222222222", *sellerDetail.WinnerPhone)

	// Admins see the same disclosure
	adminDetail, err := f.auctions.GetAuction(ctx, created.ID, adminViewer)
	require.NoError(t, err)
	assert.NotNil(t, adminDetail.WinnerPhone)

	// The lifecycle produced the expected events
	assert.NotEmpty(t, f.published.EventsOfType("AuctionCreated"))
	assert.NotEmpty(t, f.published.EventsOfType("AuctionApproved"))
	assert.NotEmpty(t, f.published.EventsOfType("BidPlaced"))
	assert.NotEmpty(t, f.published.EventsOfType("AuctionEnded"))
	assert.NotEmpty(t, f.published.EventsOfType("PaymentRequestApproved"))
}

// TestSealedAuctionHidesBidBook verifies the bid book stays hidden on a
// sealed auction until it ends.
func TestSealedAuctionHidesBidBook(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	seller := f.createUser(t, "Seller", "seller2@example.com", "+915555555555")
	alice := f.createUser(t, "Alice", "alice@example.com", "+916666666666")
	bob := f.createUser(t, "Bob", "bob@example.com", "+917777777777")

	now := f.clock.Now()
	created, err := f.auctions.CreateAuction(ctx, auctionapp.CreateAuctionInput{
		Title:         "Signed first edition",
		Category:      "books",
		AuctionType:   "sealed",
		StartingPrice: decimal.NewFromInt(2000),
		BidIncrement:  decimal.NewFromInt(50),
		SellerID:      seller.ID,
		StartAt:       now.Add(-time.Minute),
		EndAt:         now.Add(24 * time.Hour),
		Images:        []string{"auctions/images/book.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "active", created.Status)

	_, err = f.auctions.PlaceBid(ctx, auctionapp.PlaceBidInput{
		AuctionID: created.ID, BidderID: alice.ID, Amount: decimal.NewFromInt(2500),
	})
	require.NoError(t, err)
	_, err = f.auctions.PlaceBid(ctx, auctionapp.PlaceBidInput{
		AuctionID: created.ID, BidderID: bob.ID, Amount: decimal.NewFromInt(3000),
	})
	require.NoError(t, err)

	// While live, another bidder sees no bids and no running price
	detail, err := f.auctions.GetAuction(ctx, created.ID, &auctionapp.Viewer{ID: alice.ID})
	require.NoError(t, err)
	assert.Empty(t, detail.Bids)
	assert.True(t, detail.CurrentBid.Equal(decimal.NewFromInt(2000)), "sealed auctions show the starting price while live")
	assert.Nil(t, detail.CurrentHighestBidderID)

	// After the end the book opens
	f.clock.Advance(25 * time.Hour)
	detail, err = f.auctions.GetAuction(ctx, created.ID, &auctionapp.Viewer{ID: alice.ID})
	require.NoError(t, err)
	assert.Equal(t, "ended", detail.Status)
	assert.Len(t, detail.Bids, 2)
	assert.True(t, detail.CurrentBid.Equal(decimal.NewFromInt(3000)))
	require.NotNil(t, detail.WinnerID)
	assert.Equal(t, bob.ID, *detail.WinnerID)

	// Non-reserve auctions disclose to the winner without a payment gate
	winnerDetail, err := f.auctions.GetAuction(ctx, created.ID, &auctionapp.Viewer{ID: bob.ID})
	require.NoError(t, err)
	require.NotNil(t, winnerDetail.SellerPhone)
	assert.Equal(t, "+915555555555", *winnerDetail.SellerPhone)
}
