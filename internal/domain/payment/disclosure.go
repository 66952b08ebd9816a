package payment

import (
	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/google/uuid"
)

// Disclosure gate: pure decisions about when counterparties' contact
// details become visible. The gate holds no state of its own; callers
// pass the current auction and ledger facts and the answer is
// recomputed on every query.

// CanWinnerSeeSellerPhone reports whether the winning bidder may see the
// seller's phone number. Non-reserve auctions disclose unconditionally
// once the auction has ended with a winner. Reserve auctions disclose
// only after an admin has approved the winner's winner_payment record.
func CanWinnerSeeSellerPhone(a *auction.Auction, winnerID uuid.UUID, hasApprovedWinnerPayment bool) bool {
	if !a.IsWinner(winnerID) {
		return false
	}
	if a.AuctionType != auction.TypeReserve {
		return true
	}
	return hasApprovedWinnerPayment
}

// CanSellerSeeWinnerPhone reports whether the seller may see the
// winner's phone number. It mirrors the winner-side gate: for reserve
// auctions the winner's payment must be approved before the seller
// dashboard reveals the phone number. The winner's email is not gated.
func CanSellerSeeWinnerPhone(a *auction.Auction, hasApprovedWinnerPayment bool) bool {
	if !a.HasWinner() {
		return false
	}
	if a.AuctionType != auction.TypeReserve {
		return true
	}
	return hasApprovedWinnerPayment
}

// Summary aggregates verification counts for one auction, used for
// dashboard badges
type Summary struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

// NewSummary builds a Summary from per-status counts
func NewSummary(pending, approved, rejected int64) Summary {
	return Summary{
		Pending:  pending,
		Approved: approved,
		Rejected: rejected,
		Total:    pending + approved + rejected,
	}
}
